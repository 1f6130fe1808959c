package dates

import "time"

// Range is an inclusive span of calendar dates with Start <= End.
type Range struct {
	Start time.Time
	End   time.Time
}

// ResolveRange builds the effective span of an event. A missing end collapses
// the range to the start day and an end before the start is clamped to it.
func ResolveRange(start time.Time, end *time.Time) Range {
	start = Day(start)
	if end == nil {
		return Range{Start: start, End: start}
	}
	return Range{Start: start, End: Max(start, Day(*end))}
}

// Overlaps reports whether day falls inside r, bounds included.
func Overlaps(day time.Time, r Range) bool {
	day = Day(day)
	return !day.Before(r.Start) && !day.After(r.End)
}

// Contains is Overlaps with the receiver first.
func (r Range) Contains(day time.Time) bool {
	return Overlaps(day, r)
}

// Len is the number of days covered by r.
func (r Range) Len() int {
	return DaysBetween(r.Start, r.End) + 1
}

// Days lists every date in r in ascending order.
func (r Range) Days() []time.Time {
	out := make([]time.Time, 0, r.Len())
	r.Each(func(d time.Time) {
		out = append(out, d)
	})
	return out
}

// Each calls fn for every date in r in ascending order.
func (r Range) Each(fn func(time.Time)) {
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// MonthRange covers every day of the given month.
func MonthRange(year int, month time.Month) Range {
	first := Date(year, month, 1)
	return Range{Start: first, End: first.AddDate(0, 1, -1)}
}
