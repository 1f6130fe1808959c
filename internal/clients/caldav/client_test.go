package caldav

import (
	"strings"
	"testing"
	"time"
)

func TestEventToICSAllDay(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ev := &Event{
		UID:         "auto-year-1@couplebot",
		Summary:     "1주년",
		Description: "자동·주년",
		Category:    "기념일",
		Color:       "lavenderblush",
		StartTime:   start,
		AllDay:      true,
	}

	cal := eventToICS(ev, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	text := serializeCalendar(cal)
	for _, want := range []string{
		"PRODID:" + ProductID,
		"DTSTART;VALUE=DATE:20250101",
		"DTEND;VALUE=DATE:20250102",
		"UID:auto-year-1@couplebot",
		"COLOR:lavenderblush",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in\n%s", want, text)
		}
	}

	got, err := parseCalendar(cal)
	if err != nil {
		t.Fatalf("parseCalendar: %v", err)
	}
	if got.UID != ev.UID || got.Summary != ev.Summary || got.Description != ev.Description || got.Category != ev.Category || got.Color != ev.Color {
		t.Errorf("got %+v", got)
	}
	if !got.AllDay || !got.StartTime.Equal(start) || !got.EndTime.Equal(start.AddDate(0, 0, 1)) {
		t.Errorf("dates: allDay=%v %s %s", got.AllDay, got.StartTime, got.EndTime)
	}
}

func TestEventToICSTimed(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	ev := &Event{UID: "x@couplebot", Summary: "데이트", StartTime: start, EndTime: start.Add(2 * time.Hour)}

	got, err := parseCalendar(eventToICS(ev, start))
	if err != nil {
		t.Fatal(err)
	}
	if got.AllDay || !got.StartTime.Equal(start) || !got.EndTime.Equal(start.Add(2*time.Hour)) {
		t.Errorf("got %+v", got)
	}
}

func TestObjectPath(t *testing.T) {
	tests := []struct {
		cal, uid, want string
	}{
		{"/cal/home", "a@b", "/cal/home/a@b.ics"},
		{"/cal/home/", "a@b", "/cal/home/a@b.ics"},
	}
	for _, tt := range tests {
		if got := objectPath(tt.cal, tt.uid); got != tt.want {
			t.Errorf("objectPath(%q, %q) = %q", tt.cal, tt.uid, got)
		}
	}
}

func TestIsConfigured(t *testing.T) {
	if NewClient("", "u", "p").IsConfigured() {
		t.Error("no url should not be configured")
	}
	if !NewClient("https://dav.example.com", "u", "p").IsConfigured() {
		t.Error("expected configured")
	}
}
