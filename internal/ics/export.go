// Package ics converts anniversaries to iCalendar and reads events from
// iCalendar files.
package ics

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/tazhate/couplebot/internal/dates"
	"github.com/tazhate/couplebot/internal/domain"
)

const (
	// UIDSuffix marks every object this program owns on a remote calendar
	UIDSuffix = "@couplebot"
	ProductID = "-//couplebot//Anniversaries//KO"
	propColor = "COLOR" // RFC 7986, takes a CSS3 colour name
	propName  = "X-WR-CALNAME"
)

// Entry is one all-day VEVENT derived from an anniversary
type Entry struct {
	UID         string
	Summary     string
	Description string
	Category    string
	Color       string
	Start       time.Time
	End         time.Time // exclusive
}

// UID returns the stable iCalendar UID for an anniversary key
func UID(key string) string {
	return key + UIDSuffix
}

// Entries maps anniversaries to VEVENTs. Manual anniversaries span their
// event's range, generated ones a single day.
func Entries(items []domain.AnniversaryItem, events []*domain.Event) []Entry {
	byID := make(map[int64]*domain.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}

	entries := make([]Entry, 0, len(items))
	for _, it := range items {
		end := it.Date
		if it.SourceEventID != nil {
			if e, ok := byID[*it.SourceEventID]; ok {
				if r, ok := e.Range(); ok {
					end = r.End
				}
			}
		}

		description := it.Description
		if it.IsAuto {
			description = it.AutoTag
		}

		entries = append(entries, Entry{
			UID:         UID(it.Key),
			Summary:     it.Category.Emoji() + " " + it.Title,
			Description: description,
			Category:    it.Category.Label(),
			Color:       it.ResolvedColor(),
			Start:       it.Date,
			End:         end.AddDate(0, 0, 1),
		})
	}
	return entries
}

// Filter keeps entries starting within [from, to]
func Filter(entries []Entry, from, to time.Time) []Entry {
	r := dates.ResolveRange(from, &to)
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if r.Contains(e.Start) {
			out = append(out, e)
		}
	}
	return out
}

// NewCalendar builds a VCALENDAR holding the entries
func NewCalendar(name string, entries []Entry, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)
	if name != "" {
		cal.Props.SetText(propName, name)
	}

	for _, e := range entries {
		cal.Children = append(cal.Children, NewEvent(e, now).Component)
	}
	return cal
}

// NewEvent builds one all-day VEVENT
func NewEvent(e Entry, now time.Time) *ical.Event {
	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, e.UID)
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	vevent.Props.SetText(ical.PropSummary, e.Summary)
	if e.Description != "" {
		vevent.Props.SetText(ical.PropDescription, e.Description)
	}
	if e.Category != "" {
		vevent.Props.SetText(ical.PropCategories, e.Category)
	}
	if name := domain.CSSColorName(e.Color); name != "" {
		vevent.Props.SetText(propColor, name)
	}
	vevent.Props.SetDate(ical.PropDateTimeStart, e.Start)
	vevent.Props.SetDate(ical.PropDateTimeEnd, e.End)
	vevent.Props.SetText(ical.PropTransparency, "TRANSPARENT")
	return vevent
}

// Encode writes the entries as an iCalendar feed
func Encode(w io.Writer, name string, entries []Entry, now time.Time) error {
	if err := ical.NewEncoder(w).Encode(NewCalendar(name, entries, now)); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}
