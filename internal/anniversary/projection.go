package anniversary

import (
	"time"

	"github.com/tazhate/couplebot/internal/dates"
	"github.com/tazhate/couplebot/internal/domain"
)

// Projection indexes anniversary items by calendar day
type Projection struct {
	days map[time.Time][]domain.AnniversaryItem
}

// ProjectToCalendar spreads the combined list over calendar days. A manual
// item is placed on every day of its event's range, each copy dated that
// day; generated items sit on their own date. Within a day manual items come
// first, then generated ones, each group in combined order. Items of unsaved
// events cannot be matched to their event and sit on their start date.
func ProjectToCalendar(events []*domain.Event, combined []domain.AnniversaryItem) *Projection {
	byID := make(map[int64]*domain.Event, len(events))
	for _, e := range events {
		if e != nil && e.IsAnniversary && e.ID != 0 {
			byID[e.ID] = e
		}
	}

	p := &Projection{days: make(map[time.Time][]domain.AnniversaryItem)}
	for _, it := range combined {
		if it.IsAuto {
			continue
		}
		var ev *domain.Event
		if it.SourceEventID != nil {
			ev = byID[*it.SourceEventID]
		}
		r, ok := dates.Range{}, false
		if ev != nil {
			r, ok = ev.Range()
		}
		if !ok {
			p.put(it.Date, it)
			continue
		}
		r.Each(func(d time.Time) {
			occ := it
			occ.Date = d
			p.put(d, occ)
		})
	}
	for _, it := range combined {
		if it.IsAuto {
			p.put(it.Date, it)
		}
	}
	return p
}

func (p *Projection) put(d time.Time, it domain.AnniversaryItem) {
	d = dates.Day(d)
	p.days[d] = append(p.days[d], it)
}

// ByDate returns a copy of the per-day index
func (p *Projection) ByDate() map[time.Time][]domain.AnniversaryItem {
	out := make(map[time.Time][]domain.AnniversaryItem, len(p.days))
	for d, items := range p.days {
		out[d] = append([]domain.AnniversaryItem(nil), items...)
	}
	return out
}

// ItemsOnDate returns the items active on d. A manual event shows up once
// no matter how many of its days match.
func (p *Projection) ItemsOnDate(d time.Time) []domain.AnniversaryItem {
	items := p.days[dates.Day(d)]
	out := make([]domain.AnniversaryItem, 0, len(items))
	seen := make(map[int64]struct{})
	for _, it := range items {
		if it.SourceEventID != nil && !unsaved(it) {
			if _, ok := seen[*it.SourceEventID]; ok {
				continue
			}
			seen[*it.SourceEventID] = struct{}{}
		}
		out = append(out, it)
	}
	return out
}

// ItemsInRange returns every item active on some day between start and end,
// each key once, dated at its first day inside the range.
func (p *Projection) ItemsInRange(start, end time.Time) []domain.AnniversaryItem {
	r := dates.ResolveRange(start, &end)
	var out []domain.AnniversaryItem
	seen := make(map[string]struct{})
	r.Each(func(d time.Time) {
		for _, it := range p.days[d] {
			if unsaved(it) {
				out = append(out, it)
				continue
			}
			if _, ok := seen[it.Key]; ok {
				continue
			}
			seen[it.Key] = struct{}{}
			out = append(out, it)
		}
	})
	return out
}

// DayColor returns the colour of the first item on d. Generated items use
// the auto colour; days without items use the default fallback.
func (p *Projection) DayColor(d time.Time) string {
	items := p.days[dates.Day(d)]
	if len(items) == 0 {
		return domain.ColorDefaultFallback
	}
	first := items[0]
	if first.IsAuto {
		return domain.ColorAuto
	}
	return first.ResolvedColor()
}

// DayCell is one square of a month grid
type DayCell struct {
	Date     time.Time
	Items    []domain.AnniversaryItem
	Color    string
	HasItems bool
}

// Month returns one cell per day of the month
func (p *Projection) Month(year int, month time.Month) []DayCell {
	days := dates.MonthRange(year, month).Days()
	cells := make([]DayCell, 0, len(days))
	for _, d := range days {
		items := p.ItemsOnDate(d)
		cells = append(cells, DayCell{
			Date:     d,
			Items:    items,
			Color:    p.DayColor(d),
			HasItems: len(items) > 0,
		})
	}
	return cells
}
