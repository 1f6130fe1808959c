package service

import (
	"fmt"
	"strings"

	"github.com/tazhate/couplebot/internal/dates"
	"github.com/tazhate/couplebot/internal/domain"
	"github.com/tazhate/couplebot/internal/storage"
)

type EventService struct {
	storage *storage.Storage
}

func NewEventService(s *storage.Storage) *EventService {
	return &EventService{storage: s}
}

// EventInput carries a user-entered event before normalisation
type EventInput struct {
	Title         string `json:"title" yaml:"title" validate:"max=100"`
	Description   string `json:"description" yaml:"description" validate:"max=1000"`
	Date          string `json:"date" yaml:"date" validate:"required,date"`
	EndDate       string `json:"end_date" yaml:"end_date" validate:"omitempty,date"`
	Time          string `json:"time" yaml:"time" validate:"omitempty,timerange"`
	IsAnniversary bool   `json:"is_anniversary" yaml:"is_anniversary"`
	NotifyEnabled bool   `json:"notify_enabled" yaml:"notify_enabled"`
	Category      int    `json:"category" yaml:"category" validate:"omitempty,category"`
	Icon          string `json:"icon" yaml:"icon" validate:"omitempty,icon"`
	Color         string `json:"color" yaml:"color" validate:"hexcolor_or_blank"`
}

// Create validates, normalises and stores a new event
func (s *EventService) Create(in EventInput) (*domain.Event, error) {
	e, err := buildEvent(in)
	if err != nil {
		return nil, err
	}
	if err := s.storage.CreateEvent(e); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return e, nil
}

// Update replaces the editable fields of an existing event
func (s *EventService) Update(id int64, in EventInput) (*domain.Event, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	e, err := buildEvent(in)
	if err != nil {
		return nil, err
	}
	e.ID = existing.ID
	e.CreatedAt = existing.CreatedAt
	if err := s.storage.UpdateEvent(e); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return e, nil
}

// Delete removes an event
func (s *EventService) Delete(id int64) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.storage.DeleteEvent(id)
}

// Get returns an event by ID
func (s *EventService) Get(id int64) (*domain.Event, error) {
	e, err := s.storage.GetEvent(id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if e == nil {
		return nil, ErrEventNotFound
	}
	return e, nil
}

// List returns all events ordered by date
func (s *EventService) List() ([]*domain.Event, error) {
	return s.storage.ListEvents()
}

// ListAnniversaries returns anniversary-flagged events
func (s *EventService) ListAnniversaries() ([]*domain.Event, error) {
	return s.storage.ListAnniversaryEvents()
}

// ListOnDate returns events whose range covers the date
func (s *EventService) ListOnDate(date string) ([]*domain.Event, error) {
	d := dates.ParseDateOrNull(date)
	if d == nil {
		return nil, invalid("bad date %q", date)
	}
	return s.storage.ListEventsOnDate(dates.Format(*d))
}

// ListInRange returns events overlapping [from, to]; reversed bounds are
// resolved the same way event ranges are
func (s *EventService) ListInRange(from, to string) ([]*domain.Event, error) {
	start := dates.ParseDateOrNull(from)
	if start == nil {
		return nil, invalid("bad date %q", from)
	}
	end := dates.ParseDateOrNull(to)
	if end == nil {
		return nil, invalid("bad date %q", to)
	}
	r := dates.ResolveRange(*start, end)
	return s.storage.ListEventsInRange(dates.Format(r.Start), dates.Format(r.End))
}

// buildEvent applies the write-side invariants: a valid start date, an end
// date not before the start, known category and icon, a normalised colour.
func buildEvent(in EventInput) (*domain.Event, error) {
	in.Date = normalizeDate(in.Date)
	in.EndDate = normalizeDate(in.EndDate)
	in.Time = strings.TrimSpace(in.Time)
	in.Color = strings.TrimSpace(in.Color)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	start := dates.ParseDateOrNull(in.Date)
	r := dates.ResolveRange(*start, dates.ParseDateOrNull(in.EndDate))

	e := &domain.Event{
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		Date:          dates.Format(r.Start),
		EndDate:       dates.Format(r.End),
		IsAnniversary: in.IsAnniversary,
		NotifyEnabled: in.NotifyEnabled,
		Category:      domain.CategoryFromID(in.Category),
		Icon:          domain.IconFromID(in.Icon),
	}
	if tr, ok := domain.ParseTimeRange(in.Time); ok {
		e.Time = tr.String()
	}

	switch {
	case in.Color != "":
		e.Color, _ = domain.ParseColor(in.Color)
	case in.IsAnniversary:
		e.Color = domain.Palette[0]
	}
	return e, nil
}
