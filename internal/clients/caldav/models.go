package caldav

import "time"

// Calendar is a remote calendar collection
type Calendar struct {
	Path        string
	DisplayName string
	Description string
}

// Event is an all-day or timed VEVENT as stored on the server
type Event struct {
	UID         string
	Path        string // object path on the server, empty before the first PUT
	Summary     string
	Description string
	Category    string
	Color       string // RFC 7986 COLOR, a CSS3 colour name
	StartTime   time.Time
	EndTime     time.Time // exclusive for all-day events
	AllDay      bool
}
