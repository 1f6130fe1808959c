package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tazhate/couplebot/internal/dates"
	"github.com/tazhate/couplebot/internal/domain"
	"github.com/tazhate/couplebot/internal/ics"
	"github.com/tazhate/couplebot/internal/service"
)

const (
	defaultUpcomingLimit = 10
	maxRangeDays         = 800
	feedName             = "couplebot"
)

func success(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, APIResponse{Success: true, Data: data})
}

func paramID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func parseDay(s string) (time.Time, error) {
	d := dates.ParseDateOrNull(s)
	if d == nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid date %q, want YYYY-MM-DD", s))
	}
	return *d, nil
}

// bindInput binds the body and runs the validate tags
func bindInput(c echo.Context, in interface{}) error {
	if err := c.Bind(in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	return c.Validate(in)
}

// Profile

func (s *Server) getProfile(c echo.Context) error {
	p, err := s.svc.Profiles.Get()
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, profileToResponse(p, s.svc.Anniversaries.Today()))
}

func (s *Server) saveProfile(c echo.Context) error {
	var in service.ProfileInput
	if err := bindInput(c, &in); err != nil {
		return err
	}
	p, err := s.svc.Profiles.Save(in)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, profileToResponse(p, s.svc.Anniversaries.Today()))
}

// Events

func (s *Server) listEvents(c echo.Context) error {
	var (
		events []*domain.Event
		err    error
	)
	date, from, to := c.QueryParam("date"), c.QueryParam("from"), c.QueryParam("to")
	switch {
	case date != "":
		events, err = s.svc.Events.ListOnDate(date)
	case from != "" || to != "":
		events, err = s.svc.Events.ListInRange(from, to)
	case c.QueryParam("anniversary") == "true":
		events, err = s.svc.Events.ListAnniversaries()
	default:
		events, err = s.svc.Events.List()
	}
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, eventsToResponse(events))
}

func (s *Server) createEvent(c echo.Context) error {
	var in service.EventInput
	if err := bindInput(c, &in); err != nil {
		return err
	}
	e, err := s.svc.Events.Create(in)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, eventToResponse(e))
}

func (s *Server) getEvent(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	e, err := s.svc.Events.Get(id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, eventToResponse(e))
}

func (s *Server) updateEvent(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var in service.EventInput
	if err := bindInput(c, &in); err != nil {
		return err
	}
	e, err := s.svc.Events.Update(id, in)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, eventToResponse(e))
}

func (s *Server) deleteEvent(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := s.svc.Events.Delete(id); err != nil {
		return err
	}
	return success(c, http.StatusOK, map[string]int64{"deleted": id})
}

// Anniversaries

func (s *Server) listAnniversaries(c echo.Context) error {
	tab := domain.ParseFilterTab(c.QueryParam("tab"))
	items, err := s.svc.Anniversaries.List(tab)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, anniversariesToResponse(items, s.svc.Anniversaries.Today()))
}

func (s *Server) upcomingAnniversaries(c echo.Context) error {
	limit := defaultUpcomingLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}
	items, err := s.svc.Anniversaries.Upcoming(limit)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, anniversariesToResponse(items, s.svc.Anniversaries.Today()))
}

// anniversariesFeed serves the anniversaries as an iCalendar subscription,
// optionally limited to entries starting within ?from=&to=
func (s *Server) anniversariesFeed(c echo.Context) error {
	snap, err := s.svc.Anniversaries.Snapshot()
	if err != nil {
		return err
	}
	entries := ics.Entries(snap.Combined, snap.Events)

	if from, to := c.QueryParam("from"), c.QueryParam("to"); from != "" || to != "" {
		start, err := parseDay(from)
		if err != nil {
			return err
		}
		end, err := parseDay(to)
		if err != nil {
			return err
		}
		entries = ics.Filter(entries, start, end)
	}

	var buf bytes.Buffer
	if err := ics.Encode(&buf, feedName, entries, time.Now()); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="anniversaries.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

// Calendar

func (s *Server) calendarDay(c echo.Context) error {
	d, err := parseDay(c.Param("date"))
	if err != nil {
		return err
	}
	items, err := s.svc.Anniversaries.OnDate(d)
	if err != nil {
		return err
	}
	events, err := s.svc.Events.ListOnDate(dates.Format(d))
	if err != nil {
		return err
	}
	memories, err := s.svc.Memories.ListByDate(dates.Format(d))
	if err != nil {
		return err
	}

	mems := make([]MemoryResponse, 0, len(memories))
	for _, m := range memories {
		mems = append(mems, memoryToResponse(m))
	}
	return success(c, http.StatusOK, map[string]interface{}{
		"date":          dates.Format(d),
		"anniversaries": anniversariesToResponse(items, s.svc.Anniversaries.Today()),
		"events":        eventsToResponse(events),
		"memories":      mems,
	})
}

func (s *Server) calendarRange(c echo.Context) error {
	from, err := parseDay(c.QueryParam("from"))
	if err != nil {
		return err
	}
	to, err := parseDay(c.QueryParam("to"))
	if err != nil {
		return err
	}
	if to.Before(from) {
		return echo.NewHTTPError(http.StatusBadRequest, "to is before from")
	}
	if dates.DaysBetween(from, to) > maxRangeDays {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("range longer than %d days", maxRangeDays))
	}
	items, err := s.svc.Anniversaries.InRange(from, to)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, anniversariesToResponse(items, s.svc.Anniversaries.Today()))
}

func parseMonth(c echo.Context) (time.Time, error) {
	t, err := time.Parse("2006-01", c.Param("month"))
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "invalid month, want YYYY-MM")
	}
	return t, nil
}

func (s *Server) calendarMonth(c echo.Context) error {
	t, err := parseMonth(c)
	if err != nil {
		return err
	}
	cells, err := s.svc.Anniversaries.Month(t.Year(), t.Month())
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, monthToResponse(cells, s.svc.Anniversaries.Today()))
}

// calendarColors maps each day of the month that has an item to its colour
func (s *Server) calendarColors(c echo.Context) error {
	t, err := parseMonth(c)
	if err != nil {
		return err
	}
	colors, err := s.svc.Anniversaries.DayColors(t.Year(), t.Month())
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, colors)
}

func (s *Server) calendarSync(c echo.Context) error {
	if s.svc.Calendar == nil {
		return fmt.Errorf("CalDAV: %w", service.ErrNotConfigured)
	}
	res, err := s.svc.Calendar.Sync(c.Request().Context())
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, res)
}

// Memories

func (s *Server) listMemories(c echo.Context) error {
	var (
		memories []*domain.Memory
		err      error
	)
	if date := c.QueryParam("date"); date != "" {
		d, perr := parseDay(date)
		if perr != nil {
			return perr
		}
		memories, err = s.svc.Memories.ListByDate(dates.Format(d))
	} else {
		memories, err = s.svc.Memories.List()
	}
	if err != nil {
		return err
	}
	result := make([]MemoryResponse, 0, len(memories))
	for _, m := range memories {
		result = append(result, memoryToResponse(m))
	}
	return success(c, http.StatusOK, result)
}

func (s *Server) createMemory(c echo.Context) error {
	var in service.MemoryInput
	if err := bindInput(c, &in); err != nil {
		return err
	}
	m, err := s.svc.Memories.Create(in)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, memoryToResponse(m))
}

func (s *Server) getMemory(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	m, err := s.svc.Memories.Get(id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, memoryToResponse(m))
}

func (s *Server) updateMemory(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var in service.MemoryInput
	if err := bindInput(c, &in); err != nil {
		return err
	}
	m, err := s.svc.Memories.Update(id, in)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, memoryToResponse(m))
}

func (s *Server) deleteMemory(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := s.svc.Memories.Delete(id); err != nil {
		return err
	}
	return success(c, http.StatusOK, map[string]int64{"deleted": id})
}

// Favorites

func (s *Server) listFavorites(c echo.Context) error {
	var (
		favorites []*domain.Favorite
		err       error
	)
	if cat := c.QueryParam("category"); cat != "" {
		dislike := strings.EqualFold(c.QueryParam("dislike"), "true")
		favorites, err = s.svc.Favorites.ListByCategory(domain.FavoriteCategoryFromID(cat), dislike)
	} else {
		favorites, err = s.svc.Favorites.List()
	}
	if err != nil {
		return err
	}
	result := make([]FavoriteResponse, 0, len(favorites))
	for _, f := range favorites {
		result = append(result, favoriteToResponse(f))
	}
	return success(c, http.StatusOK, result)
}

func (s *Server) createFavorite(c echo.Context) error {
	var in service.FavoriteInput
	if err := bindInput(c, &in); err != nil {
		return err
	}
	f, err := s.svc.Favorites.Create(in)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, favoriteToResponse(f))
}

func (s *Server) getFavorite(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	f, err := s.svc.Favorites.Get(id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, favoriteToResponse(f))
}

func (s *Server) updateFavorite(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var in service.FavoriteInput
	if err := bindInput(c, &in); err != nil {
		return err
	}
	f, err := s.svc.Favorites.Update(id, in)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, favoriteToResponse(f))
}

func (s *Server) deleteFavorite(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := s.svc.Favorites.Delete(id); err != nil {
		return err
	}
	return success(c, http.StatusOK, map[string]int64{"deleted": id})
}

// export returns the whole store as YAML
func (s *Server) export(c echo.Context) error {
	if s.svc.Export == nil {
		return echo.NewHTTPError(http.StatusNotFound, "export disabled")
	}
	var buf bytes.Buffer
	if err := s.svc.Export.Export(&buf); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="couplebot-export.yaml"`)
	return c.Blob(http.StatusOK, "application/yaml", buf.Bytes())
}
