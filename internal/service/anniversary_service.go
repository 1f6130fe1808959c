package service

import (
	"fmt"
	"time"

	"github.com/tazhate/couplebot/internal/anniversary"
	"github.com/tazhate/couplebot/internal/dates"
	"github.com/tazhate/couplebot/internal/domain"
	"github.com/tazhate/couplebot/internal/storage"
)

// AnniversaryService reads a fresh snapshot on every call and runs it
// through reconciliation and projection. Nothing is cached.
type AnniversaryService struct {
	storage  *storage.Storage
	timezone *time.Location
	now      func() time.Time
}

func NewAnniversaryService(s *storage.Storage, tz *time.Location) *AnniversaryService {
	if tz == nil {
		tz = time.UTC
	}
	return &AnniversaryService{storage: s, timezone: tz, now: time.Now}
}

// SetClock replaces the wall clock, used by tests
func (s *AnniversaryService) SetClock(now func() time.Time) {
	s.now = now
}

// Today returns the current calendar date in the configured timezone
func (s *AnniversaryService) Today() time.Time {
	return dates.Day(s.now().In(s.timezone))
}

// Snapshot is one consistent read of everything the engine needs
type Snapshot struct {
	Profile  *domain.Profile
	Events   []*domain.Event
	Today    time.Time
	Combined []domain.AnniversaryItem
}

// Snapshot loads the profile and anniversary events and reconciles them
func (s *AnniversaryService) Snapshot() (*Snapshot, error) {
	p, err := s.storage.GetProfile()
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	events, err := s.storage.ListAnniversaryEvents()
	if err != nil {
		return nil, fmt.Errorf("list anniversaries: %w", err)
	}
	today := s.Today()
	return &Snapshot{
		Profile:  p,
		Events:   events,
		Today:    today,
		Combined: anniversary.Reconcile(events, p, today),
	}, nil
}

// Combined returns manual and generated anniversaries sorted by date
func (s *AnniversaryService) Combined() ([]domain.AnniversaryItem, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Combined, nil
}

// List returns the anniversaries shown under a tab
func (s *AnniversaryService) List(tab domain.FilterTab) ([]domain.AnniversaryItem, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return anniversary.FilterByTab(snap.Combined, tab, snap.Today), nil
}

// Upcoming returns up to limit anniversaries from today on
func (s *AnniversaryService) Upcoming(limit int) ([]domain.AnniversaryItem, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return anniversary.Upcoming(snap.Combined, snap.Today, limit), nil
}

// Projection returns the calendar projection of the current snapshot
func (s *AnniversaryService) Projection() (*anniversary.Projection, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return anniversary.ProjectToCalendar(snap.Events, snap.Combined), nil
}

// OnDate returns the anniversaries active on a date
func (s *AnniversaryService) OnDate(date time.Time) ([]domain.AnniversaryItem, error) {
	proj, err := s.Projection()
	if err != nil {
		return nil, err
	}
	return proj.ItemsOnDate(date), nil
}

// InRange returns the anniversaries active anywhere in [from, to]
func (s *AnniversaryService) InRange(from, to time.Time) ([]domain.AnniversaryItem, error) {
	proj, err := s.Projection()
	if err != nil {
		return nil, err
	}
	return proj.ItemsInRange(from, to), nil
}

// Month returns the month grid
func (s *AnniversaryService) Month(year int, month time.Month) ([]anniversary.DayCell, error) {
	proj, err := s.Projection()
	if err != nil {
		return nil, err
	}
	return proj.Month(year, month), nil
}

// DayColors returns the colour of every day in the month that has an item
func (s *AnniversaryService) DayColors(year int, month time.Month) (map[string]string, error) {
	cells, err := s.Month(year, month)
	if err != nil {
		return nil, err
	}
	colors := make(map[string]string)
	for _, c := range cells {
		if c.HasItems {
			colors[dates.Format(c.Date)] = c.Color
		}
	}
	return colors, nil
}
