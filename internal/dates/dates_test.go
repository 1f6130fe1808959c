package dates

import (
	"testing"
	"time"
)

func TestParseDateOrNull(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-02-14", "2024-02-14"},
		{"  2024-02-14 ", "2024-02-14"},
		{"", ""},
		{"   ", ""},
		{"garbage", ""},
		{"2024-13-01", ""},
		{"2023-02-29", ""},
		{"14.02.2024", ""},
	}
	for _, tt := range tests {
		got := ""
		if d := ParseDateOrNull(tt.in); d != nil {
			got = Format(*d)
		}
		if got != tt.want {
			t.Errorf("ParseDateOrNull(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveRange(t *testing.T) {
	start := Date(2024, 3, 10)
	later := Date(2024, 3, 12)
	earlier := Date(2024, 3, 8)

	tests := []struct {
		name      string
		end       *time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"missing end", nil, start, start},
		{"later end", &later, start, later},
		{"end before start", &earlier, start, start},
		{"same day", &start, start, start},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ResolveRange(start, tt.end)
			if !r.Start.Equal(tt.wantStart) || !r.End.Equal(tt.wantEnd) {
				t.Errorf("got [%s, %s], want [%s, %s]", Format(r.Start), Format(r.End), Format(tt.wantStart), Format(tt.wantEnd))
			}
			if r.End.Before(r.Start) {
				t.Errorf("end before start")
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	r := Range{Start: Date(2024, 3, 10), End: Date(2024, 3, 12)}
	tests := []struct {
		day  time.Time
		want bool
	}{
		{Date(2024, 3, 9), false},
		{Date(2024, 3, 10), true},
		{Date(2024, 3, 11), true},
		{Date(2024, 3, 12), true},
		{Date(2024, 3, 13), false},
		{time.Date(2024, 3, 12, 23, 59, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		if got := Overlaps(tt.day, r); got != tt.want {
			t.Errorf("Overlaps(%s) = %v, want %v", tt.day, got, tt.want)
		}
	}
}

func TestRangeDays(t *testing.T) {
	r := ResolveRange(Date(2024, 2, 28), ptr(Date(2024, 3, 1)))
	days := r.Days()
	want := []string{"2024-02-28", "2024-02-29", "2024-03-01"}
	if len(days) != len(want) {
		t.Fatalf("got %d days, want %d", len(days), len(want))
	}
	for i, d := range days {
		if Format(d) != want[i] {
			t.Errorf("day %d = %s, want %s", i, Format(d), want[i])
		}
	}
	if r.Len() != 3 {
		t.Errorf("Len = %d, want 3", r.Len())
	}
}

func TestAddYears(t *testing.T) {
	tests := []struct {
		from time.Time
		n    int
		want string
	}{
		{Date(2020, 5, 1), 1, "2021-05-01"},
		{Date(2020, 2, 29), 1, "2021-02-28"},
		{Date(2020, 2, 29), 4, "2024-02-29"},
		{Date(2024, 12, 31), 2, "2026-12-31"},
	}
	for _, tt := range tests {
		if got := Format(AddYears(tt.from, tt.n)); got != tt.want {
			t.Errorf("AddYears(%s, %d) = %s, want %s", Format(tt.from), tt.n, got, tt.want)
		}
	}
}

func TestMonthRange(t *testing.T) {
	r := MonthRange(2024, time.February)
	if Format(r.Start) != "2024-02-01" || Format(r.End) != "2024-02-29" {
		t.Errorf("got [%s, %s]", Format(r.Start), Format(r.End))
	}
}

func TestSet(t *testing.T) {
	s := NewSet(Date(2024, 1, 1))
	if !s.Has(time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)) {
		t.Error("expected set to contain 2024-01-01")
	}
	if s.Has(Date(2024, 1, 2)) {
		t.Error("unexpected 2024-01-02")
	}
}

func TestDaysBetween(t *testing.T) {
	if got := DaysBetween(Date(2024, 1, 1), Date(2024, 4, 10)); got != 100 {
		t.Errorf("DaysBetween = %d, want 100", got)
	}
	if got := DaysBetween(Date(2024, 1, 10), Date(2024, 1, 1)); got != -9 {
		t.Errorf("DaysBetween = %d, want -9", got)
	}
}

func ptr(t time.Time) *time.Time { return &t }
