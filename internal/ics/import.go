package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/tazhate/couplebot/internal/dates"
)

// Imported is a VEVENT reduced to what an event can hold
type Imported struct {
	UID         string
	Summary     string
	Description string
	Date        string // YYYY-MM-DD
	EndDate     string // YYYY-MM-DD, inclusive
	Time        string // "HH:MM-HH:MM", "HH:MM" or blank for all day
}

// Import reads every VEVENT from an iCalendar stream. Timed events are
// converted to loc; events without a usable DTSTART are skipped.
func Import(r io.Reader, loc *time.Location) ([]Imported, error) {
	if loc == nil {
		loc = time.UTC
	}
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	var out []Imported
	for _, ve := range cal.Events() {
		if ev, ok := importEvent(ve, loc); ok {
			out = append(out, ev)
		}
	}
	return out, nil
}

// importEvent reads one VEVENT. TEXT values arrive already unescaped from
// the parser.
func importEvent(ve *ical.VEvent, loc *time.Location) (Imported, bool) {
	var ev Imported
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		ev.UID = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		ev.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		ev.Description = p.Value
	}

	startProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil {
		return ev, false
	}

	if isAllDay(startProp) {
		start, ok := parseDateValue(startProp.Value)
		if !ok {
			return ev, false
		}
		end := start
		if endProp := ve.GetProperty(ical.ComponentPropertyDtEnd); endProp != nil {
			if exclusive, ok := parseDateValue(endProp.Value); ok && exclusive.After(start) {
				end = exclusive.AddDate(0, 0, -1)
			}
		}
		ev.Date = dates.Format(start)
		ev.EndDate = dates.Format(end)
		return ev, true
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return ev, false
	}
	start = start.In(loc)
	ev.Date = dates.Format(dates.Day(start))
	ev.EndDate = ev.Date
	ev.Time = start.Format("15:04")

	if end, err := ve.GetEndAt(); err == nil && end.After(start) {
		end = end.In(loc)
		endDay := dates.Day(end)
		if endDay.Equal(dates.Day(start)) {
			ev.Time += "-" + end.Format("15:04")
		} else {
			// an end at midnight still belongs to the previous day
			if end.Hour() == 0 && end.Minute() == 0 {
				endDay = endDay.AddDate(0, 0, -1)
			}
			ev.EndDate = dates.Format(endDay)
		}
	}
	return ev, true
}

func isAllDay(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func parseDateValue(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if len(v) < 8 {
		return time.Time{}, false
	}
	t, err := time.Parse("20060102", v[:8])
	if err != nil {
		return time.Time{}, false
	}
	return dates.Day(t), true
}
