package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tazhate/couplebot/internal/anniversary"
	"github.com/tazhate/couplebot/internal/clients/caldav"
	"github.com/tazhate/couplebot/internal/domain"
	"github.com/tazhate/couplebot/internal/ics"
	"github.com/tazhate/couplebot/internal/logger"
)

// CalendarBackend is the part of the CalDAV client the sync needs
type CalendarBackend interface {
	IsConfigured() bool
	ListEvents(ctx context.Context, calendarPath string) ([]caldav.Event, error)
	PutEvent(ctx context.Context, calendarPath string, event *caldav.Event) error
	DeleteEvent(ctx context.Context, calendarPath string, event caldav.Event) error
}

// CalendarService mirrors the derived anniversaries into a CalDAV calendar.
// Only objects whose UID ends in ics.UIDSuffix are touched.
type CalendarService struct {
	anniversaries *AnniversaryService
	backend       CalendarBackend
	calendarPath  string
	logger        *logger.Logger
}

func NewCalendarService(a *AnniversaryService, backend CalendarBackend, calendarPath string, log *logger.Logger) *CalendarService {
	if log == nil {
		log = logger.Nop()
	}
	return &CalendarService{
		anniversaries: a,
		backend:       backend,
		calendarPath:  calendarPath,
		logger:        log.WithComponent("calendar"),
	}
}

// IsConfigured returns true if a CalDAV backend is set up
func (s *CalendarService) IsConfigured() bool {
	return s.backend != nil && s.backend.IsConfigured()
}

// SyncResult contains sync operation results
type SyncResult struct {
	Added   int      `json:"added"`
	Updated int      `json:"updated"`
	Deleted int      `json:"deleted"`
	Errors  []string `json:"errors,omitempty"`
}

// Desired returns the events the remote calendar should hold: every
// anniversary up to the generation horizon.
func (s *CalendarService) Desired() ([]caldav.Event, error) {
	snap, err := s.anniversaries.Snapshot()
	if err != nil {
		return nil, err
	}
	horizon := anniversary.Horizon(snap.Today)

	var out []caldav.Event
	for _, e := range ics.Entries(snap.Combined, snap.Events) {
		if e.Start.After(horizon) {
			continue
		}
		out = append(out, caldav.Event{
			UID:         e.UID,
			Summary:     e.Summary,
			Description: e.Description,
			Category:    e.Category,
			Color:       domain.CSSColorName(e.Color),
			StartTime:   e.Start,
			EndTime:     e.End,
			AllDay:      true,
		})
	}
	return out, nil
}

// Sync pushes new and changed anniversaries and removes stale ones
func (s *CalendarService) Sync(ctx context.Context) (*SyncResult, error) {
	if !s.IsConfigured() {
		return nil, fmt.Errorf("CalDAV: %w", ErrNotConfigured)
	}
	if s.calendarPath == "" {
		return nil, fmt.Errorf("calendar path not set")
	}

	desired, err := s.Desired()
	if err != nil {
		return nil, fmt.Errorf("derive anniversaries: %w", err)
	}

	remote, err := s.backend.ListEvents(ctx, s.calendarPath)
	if err != nil {
		return nil, fmt.Errorf("list remote events: %w", err)
	}
	remoteByUID := make(map[string]caldav.Event)
	for _, e := range remote {
		if strings.HasSuffix(e.UID, ics.UIDSuffix) {
			remoteByUID[e.UID] = e
		}
	}

	result := &SyncResult{}
	seen := make(map[string]bool, len(desired))

	for i := range desired {
		want := desired[i]
		seen[want.UID] = true

		existing, exists := remoteByUID[want.UID]
		if exists && !eventChanged(existing, want) {
			continue
		}
		if exists {
			want.Path = existing.Path
		}
		if err := s.backend.PutEvent(ctx, s.calendarPath, &want); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("put %s: %v", want.UID, err))
			continue
		}
		if exists {
			result.Updated++
		} else {
			result.Added++
		}
	}

	for uid, e := range remoteByUID {
		if seen[uid] {
			continue
		}
		if err := s.backend.DeleteEvent(ctx, s.calendarPath, e); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("delete %s: %v", uid, err))
			continue
		}
		result.Deleted++
	}

	s.logger.Infow("CalDAV sync finished",
		"added", result.Added,
		"updated", result.Updated,
		"deleted", result.Deleted,
		"errors", len(result.Errors),
	)
	return result, nil
}

// eventChanged checks if the remote copy differs from what we would write
func eventChanged(remote, want caldav.Event) bool {
	return remote.Summary != want.Summary ||
		remote.Description != want.Description ||
		remote.Category != want.Category ||
		!strings.EqualFold(remote.Color, want.Color) ||
		!sameDay(remote.StartTime, want.StartTime) ||
		!sameDay(remote.EndTime, want.EndTime) ||
		remote.AllDay != want.AllDay
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
