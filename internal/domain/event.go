package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/tazhate/couplebot/internal/dates"
)

// Event is a user-entered calendar entry. Anniversary-flagged events take
// part in anniversary reconciliation.
type Event struct {
	ID            int64
	Title         string
	Description   string
	Date          string // start, YYYY-MM-DD
	EndDate       string // YYYY-MM-DD, blank for a single day
	Time          string // "HH:MM-HH:MM" or "HH:MM", blank for all day
	IsAnniversary bool
	NotifyEnabled bool
	Category      Category
	Icon          Icon
	Color         string // hex, blank for the category fallback
	CreatedAt     time.Time
}

// StartDate returns the parsed start date
func (e *Event) StartDate() *time.Time {
	return dates.ParseDateOrNull(e.Date)
}

// Range returns the inclusive span of the event. A blank end means the start
// day and an unparseable end falls back to the start day.
func (e *Event) Range() (dates.Range, bool) {
	start := e.StartDate()
	if start == nil {
		return dates.Range{}, false
	}
	return dates.ResolveRange(*start, dates.ParseDateOrNull(e.EndDate)), true
}

// IsMultiDay returns true if the event spans more than one day
func (e *Event) IsMultiDay() bool {
	r, ok := e.Range()
	return ok && r.Len() > 1
}

// IsAllDay returns true if no time of day is set
func (e *Event) IsAllDay() bool {
	_, ok := e.TimeRange()
	return !ok
}

// TimeOfDay is a wall-clock time without a date
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// TimeRange is a start and optional end time of day
type TimeRange struct {
	Start TimeOfDay
	End   *TimeOfDay
}

func (r TimeRange) String() string {
	if r.End == nil {
		return r.Start.String()
	}
	return r.Start.String() + "-" + r.End.String()
}

// TimeRange parses the Time field
func (e *Event) TimeRange() (TimeRange, bool) {
	return ParseTimeRange(e.Time)
}

// ParseTimeRange parses "HH:MM-HH:MM" or a lone "HH:MM".
func ParseTimeRange(s string) (TimeRange, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TimeRange{}, false
	}
	startStr, endStr, hasEnd := strings.Cut(s, "-")
	start, ok := parseTimeOfDay(startStr)
	if !ok {
		return TimeRange{}, false
	}
	r := TimeRange{Start: start}
	if hasEnd {
		end, ok := parseTimeOfDay(endStr)
		if !ok {
			return TimeRange{}, false
		}
		r.End = &end
	}
	return r, true
}

func parseTimeOfDay(s string) (TimeOfDay, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return TimeOfDay{}, false
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, true
}

// FormatDates returns "2024-03-10" or "2024-03-10 ~ 2024-03-12"
func (e *Event) FormatDates() string {
	r, ok := e.Range()
	if !ok {
		return e.Date
	}
	if !e.IsMultiDay() {
		return dates.Format(r.Start)
	}
	return dates.Format(r.Start) + " ~ " + dates.Format(r.End)
}

// ResolvedColor returns the display colour of the event
func (e *Event) ResolvedColor() string {
	return ResolveColor(e.Color, e.Category)
}
