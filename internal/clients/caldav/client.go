package caldav

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
)

// ProductID is written into every calendar object we create
const ProductID = "-//couplebot//CalDAV//KO"

// propColor is the RFC 7986 COLOR property
const propColor = "COLOR"

// Client talks to one CalDAV account
type Client struct {
	baseURL  string
	username string
	password string
	client   *caldav.Client
}

// NewClient creates a CalDAV client, nothing is contacted until first use
func NewClient(baseURL, username, password string) *Client {
	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
	}
}

// IsConfigured returns true if the client has an endpoint and credentials
func (c *Client) IsConfigured() bool {
	return c.baseURL != "" && c.username != "" && c.password != ""
}

func (c *Client) connect() (*caldav.Client, error) {
	if c.client != nil {
		return c.client, nil
	}

	httpClient := &http.Client{
		Transport: &basicAuthTransport{
			username: c.username,
			password: c.password,
		},
		Timeout: 30 * time.Second,
	}

	client, err := caldav.NewClient(httpClient, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to CalDAV: %w", err)
	}

	c.client = client
	return client, nil
}

type basicAuthTransport struct {
	username string
	password string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.username, t.password)
	return http.DefaultTransport.RoundTrip(req)
}

// DiscoverCalendars returns all calendars for the user
func (c *Client) DiscoverCalendars(ctx context.Context) ([]Calendar, error) {
	client, err := c.connect()
	if err != nil {
		return nil, err
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("find principal: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("find home set: %w", err)
	}

	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("find calendars: %w", err)
	}

	result := make([]Calendar, 0, len(cals))
	for _, cal := range cals {
		result = append(result, Calendar{
			Path:        cal.Path,
			DisplayName: cal.Name,
			Description: cal.Description,
		})
	}
	return result, nil
}

// ResolveCalendar turns a configured name into a calendar path. Values that
// already look like a path are returned as they are.
func (c *Client) ResolveCalendar(ctx context.Context, name string) (string, error) {
	if strings.HasPrefix(name, "/") {
		return name, nil
	}
	cals, err := c.DiscoverCalendars(ctx)
	if err != nil {
		return "", err
	}
	for _, cal := range cals {
		if strings.EqualFold(cal.DisplayName, name) || strings.EqualFold(path.Base(strings.TrimSuffix(cal.Path, "/")), name) {
			return cal.Path, nil
		}
	}
	return "", fmt.Errorf("calendar %q not found", name)
}

func (c *Client) calendarPath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("calendar path not specified")
	}
	return p, nil
}

// ListEvents returns every VEVENT in the calendar
func (c *Client) ListEvents(ctx context.Context, calendarPath string) ([]Event, error) {
	return c.queryEvents(ctx, calendarPath, caldav.CompFilter{Name: "VEVENT"})
}

func (c *Client) queryEvents(ctx context.Context, calendarPath string, filter caldav.CompFilter) ([]Event, error) {
	client, err := c.connect()
	if err != nil {
		return nil, err
	}
	calendarPath, err = c.calendarPath(calendarPath)
	if err != nil {
		return nil, err
	}

	query := &caldav.CalendarQuery{
		CompFilter: caldav.CompFilter{
			Name:  "VCALENDAR",
			Comps: []caldav.CompFilter{filter},
		},
	}

	objects, err := client.QueryCalendar(ctx, calendarPath, query)
	if err != nil {
		return nil, fmt.Errorf("query calendar: %w", err)
	}

	var events []Event
	for _, obj := range objects {
		event, err := parseCalendarObject(&obj)
		if err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// PutEvent creates or replaces the event stored at {calendar}/{UID}.ics
func (c *Client) PutEvent(ctx context.Context, calendarPath string, event *Event) error {
	client, err := c.connect()
	if err != nil {
		return err
	}
	calendarPath, err = c.calendarPath(calendarPath)
	if err != nil {
		return err
	}
	if event.UID == "" {
		return fmt.Errorf("event UID is required")
	}

	eventPath := event.Path
	if eventPath == "" {
		eventPath = objectPath(calendarPath, event.UID)
	}

	obj, err := client.PutCalendarObject(ctx, eventPath, eventToICS(event, time.Now()))
	if err != nil {
		return fmt.Errorf("put event: %w", err)
	}
	if obj != nil && obj.Path != "" {
		event.Path = obj.Path
	} else {
		event.Path = eventPath
	}
	return nil
}

// DeleteEvent removes an event by its object path, or by UID when the path
// is unknown
func (c *Client) DeleteEvent(ctx context.Context, calendarPath string, event Event) error {
	client, err := c.connect()
	if err != nil {
		return err
	}

	eventPath := event.Path
	if eventPath == "" {
		calendarPath, err = c.calendarPath(calendarPath)
		if err != nil {
			return err
		}
		eventPath = objectPath(calendarPath, event.UID)
	}

	if err := client.RemoveAll(ctx, eventPath); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func objectPath(calendarPath, uid string) string {
	if !strings.HasSuffix(calendarPath, "/") {
		calendarPath += "/"
	}
	return calendarPath + uid + ".ics"
}

func parseCalendarObject(obj *caldav.CalendarObject) (Event, error) {
	if obj.Data == nil {
		return Event{}, fmt.Errorf("no data in calendar object")
	}
	event, err := parseCalendar(obj.Data)
	if err != nil {
		return Event{}, err
	}
	event.Path = obj.Path
	return event, nil
}

func parseCalendar(cal *ical.Calendar) (Event, error) {
	for _, comp := range cal.Children {
		if comp.Name != ical.CompEvent {
			continue
		}

		event := Event{}
		if prop := comp.Props.Get(ical.PropUID); prop != nil {
			event.UID = prop.Value
		}
		event.Summary, _ = comp.Props.Text(ical.PropSummary)
		event.Description, _ = comp.Props.Text(ical.PropDescription)
		if prop := comp.Props.Get(propColor); prop != nil {
			event.Color = prop.Value
		}
		if prop := comp.Props.Get(ical.PropCategories); prop != nil {
			event.Category = prop.Value
		}
		if prop := comp.Props.Get(ical.PropDateTimeStart); prop != nil {
			if t, err := prop.DateTime(time.UTC); err == nil {
				event.StartTime = t
			}
			if prop.Params.Get(ical.ParamValue) == string(ical.ValueDate) {
				event.AllDay = true
			}
		}
		if prop := comp.Props.Get(ical.PropDateTimeEnd); prop != nil {
			if t, err := prop.DateTime(time.UTC); err == nil {
				event.EndTime = t
			}
		}
		return event, nil
	}
	return Event{}, fmt.Errorf("no VEVENT in calendar object")
}

func eventToICS(event *Event, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)

	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, event.UID)
	vevent.Props.SetText(ical.PropSummary, event.Summary)
	if event.Description != "" {
		vevent.Props.SetText(ical.PropDescription, event.Description)
	}
	if event.Category != "" {
		vevent.Props.SetText(ical.PropCategories, event.Category)
	}
	if event.Color != "" {
		vevent.Props.SetText(propColor, event.Color)
	}

	if event.AllDay {
		vevent.Props.SetDate(ical.PropDateTimeStart, event.StartTime)
		end := event.EndTime
		if end.IsZero() {
			end = event.StartTime.AddDate(0, 0, 1)
		}
		vevent.Props.SetDate(ical.PropDateTimeEnd, end)
	} else {
		vevent.Props.SetDateTime(ical.PropDateTimeStart, event.StartTime.UTC())
		if !event.EndTime.IsZero() {
			vevent.Props.SetDateTime(ical.PropDateTimeEnd, event.EndTime.UTC())
		}
	}
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())

	cal.Children = append(cal.Children, vevent.Component)
	return cal
}

// serializeCalendar renders a calendar as text
func serializeCalendar(cal *ical.Calendar) string {
	var buf bytes.Buffer
	_ = ical.NewEncoder(&buf).Encode(cal)
	return buf.String()
}
