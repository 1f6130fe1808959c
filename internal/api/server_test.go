package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/tazhate/couplebot/config"
	"github.com/tazhate/couplebot/internal/dates"
	"github.com/tazhate/couplebot/internal/domain"
	"github.com/tazhate/couplebot/internal/service"
	"github.com/tazhate/couplebot/internal/storage"
)

type rawResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := storage.New(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	anniv := service.NewAnniversaryService(s, time.UTC)
	today := dates.Date(2024, time.April, 15)
	anniv.SetClock(func() time.Time { return today.Add(10 * time.Hour) })

	cfg := &config.Config{Timezone: time.UTC}
	cfg.API.Username = "us"
	cfg.API.Password = "secret"
	cfg.Metrics.Enabled = true

	return New(cfg, Services{
		Profiles:      service.NewProfileService(s),
		Events:        service.NewEventService(s),
		Anniversaries: anniv,
		Memories:      service.NewMemoryService(s),
		Favorites:     service.NewFavoriteService(s),
		Export:        service.NewExportService(s, anniv),
	}, s, nil, nil)
}

func do(t *testing.T, srv *Server, method, path, body string, auth bool) (*httptest.ResponseRecorder, rawResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.SetBasicAuth("us", "secret")
	}
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	var resp rawResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec, resp
}

func TestHealthAndAuth(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := do(t, srv, http.MethodGet, "/health", "", false)
	if rec.Code != http.StatusOK {
		t.Errorf("health = %d", rec.Code)
	}

	rec, _ = do(t, srv, http.MethodGet, "/api/profile", "", false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no auth = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.SetBasicAuth("us", "wrong")
	rec = httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password = %d", rec.Code)
	}

	rec, resp := do(t, srv, http.MethodGet, "/api/profile", "", true)
	if rec.Code != http.StatusOK || !resp.Success {
		t.Errorf("profile = %d %+v", rec.Code, resp)
	}
}

func TestAPIDisabledWithoutCredentials(t *testing.T) {
	srv := newTestServer(t)
	srv.config.API.Password = ""
	srv = New(srv.config, srv.svc, nil, nil, nil)

	rec, _ := do(t, srv, http.MethodGet, "/api/profile", "", true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestProfileAndAnniversaries(t *testing.T) {
	srv := newTestServer(t)

	rec, resp := do(t, srv, http.MethodPut, "/api/profile", `{"nickname":"곰돌이","relationship_start_date":"2024-01-01"}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("save profile = %d %s", rec.Code, resp.Error)
	}
	var p ProfileResponse
	json.Unmarshal(resp.Data, &p)
	if p.DisplayName != "곰돌이" || p.DaysTogether == nil || *p.DaysTogether != 105 {
		t.Errorf("profile = %+v", p)
	}

	rec, _ = do(t, srv, http.MethodPut, "/api/profile", `{"birthday":"1999-02-30"}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad birthday = %d", rec.Code)
	}

	_, resp = do(t, srv, http.MethodGet, "/api/anniversaries/upcoming?limit=1", "", true)
	var upcoming []AnniversaryResponse
	json.Unmarshal(resp.Data, &upcoming)
	if len(upcoming) != 1 || upcoming[0].Key != "auto-day-200" || upcoming[0].Date != "2024-07-19" || upcoming[0].DDay != "D-95" {
		t.Errorf("upcoming = %+v", upcoming)
	}

	_, resp = do(t, srv, http.MethodGet, "/api/anniversaries?tab=past", "", true)
	var past []AnniversaryResponse
	json.Unmarshal(resp.Data, &past)
	if len(past) != 1 || past[0].Key != "auto-day-100" || !past[0].IsAuto {
		t.Errorf("past = %+v", past)
	}

	rec, _ = do(t, srv, http.MethodGet, "/api/anniversaries/upcoming?limit=x", "", true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit = %d", rec.Code)
	}
}

func TestEventsCRUD(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := do(t, srv, http.MethodPost, "/api/events", `{"title":"여행","date":"2024-13-01"}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date = %d", rec.Code)
	}

	rec, resp := do(t, srv, http.MethodPost, "/api/events",
		`{"title":"제주 여행","date":"2024-05-03","end_date":"2024-05-01","is_anniversary":true,"category":3}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rec.Code, resp.Error)
	}
	var e EventResponse
	json.Unmarshal(resp.Data, &e)
	if e.ID == 0 || e.EndDate != "2024-05-03" || e.CategoryLabel != "데이트" || !e.AllDay {
		t.Errorf("created = %+v", e)
	}

	rec, resp = do(t, srv, http.MethodPut, "/api/events/"+strconv.FormatInt(e.ID, 10),
		`{"title":"제주 여행","date":"2024-05-03","end_date":"2024-05-05","time":"10:00-18:00","is_anniversary":true,"category":3}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d %s", rec.Code, resp.Error)
	}

	_, resp = do(t, srv, http.MethodGet, "/api/events?date=2024-05-04", "", true)
	var onDate []EventResponse
	json.Unmarshal(resp.Data, &onDate)
	if len(onDate) != 1 || onDate[0].Time != "10:00-18:00" {
		t.Errorf("on date = %+v", onDate)
	}

	_, resp = do(t, srv, http.MethodGet, "/api/calendar/day/2024-05-05", "", true)
	if !strings.Contains(string(resp.Data), "제주 여행") {
		t.Errorf("day = %s", resp.Data)
	}

	_, resp = do(t, srv, http.MethodGet, "/api/calendar/range?from=2024-05-01&to=2024-05-31", "", true)
	var inRange []AnniversaryResponse
	json.Unmarshal(resp.Data, &inRange)
	if len(inRange) != 1 || inRange[0].Date != "2024-05-03" {
		t.Errorf("range = %+v", inRange)
	}

	rec, _ = do(t, srv, http.MethodDelete, "/api/events/"+strconv.FormatInt(e.ID, 10), "", true)
	if rec.Code != http.StatusOK {
		t.Errorf("delete = %d", rec.Code)
	}
	rec, resp = do(t, srv, http.MethodGet, "/api/events/"+strconv.FormatInt(e.ID, 10), "", true)
	if rec.Code != http.StatusNotFound || resp.Success {
		t.Errorf("get deleted = %d %+v", rec.Code, resp)
	}
	rec, _ = do(t, srv, http.MethodGet, "/api/events/abc", "", true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id = %d", rec.Code)
	}
}

func TestCalendarMonthAndFeed(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPut, "/api/profile", `{"relationship_start_date":"2024-01-01"}`, true)

	rec, resp := do(t, srv, http.MethodGet, "/api/calendar/month/2024-07", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("month = %d", rec.Code)
	}
	var days []DayResponse
	json.Unmarshal(resp.Data, &days)
	if len(days) != 31 {
		t.Fatalf("days = %d", len(days))
	}
	if !days[18].HasItems || days[18].Items[0].Key != "auto-day-200" || days[18].Color == "" {
		t.Errorf("2024-07-19 = %+v", days[18])
	}

	rec, _ = do(t, srv, http.MethodGet, "/api/calendar/month/July", "", true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad month = %d", rec.Code)
	}
	rec, _ = do(t, srv, http.MethodGet, "/api/calendar/range?from=2024-05-31&to=2024-05-01", "", true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("reversed range = %d", rec.Code)
	}

	rec, _ = do(t, srv, http.MethodGet, "/api/anniversaries.ics", "", true)
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/calendar") {
		t.Fatalf("feed = %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	body := rec.Body.String()
	if !strings.Contains(body, "BEGIN:VCALENDAR") || !strings.Contains(body, "auto-day-200@couplebot") {
		t.Errorf("feed body = %s", body)
	}

	rec, _ = do(t, srv, http.MethodGet, "/api/anniversaries.ics?from=2024-07-01&to=2024-07-31", "", true)
	body = rec.Body.String()
	if rec.Code != http.StatusOK || !strings.Contains(body, "auto-day-200@couplebot") ||
		strings.Contains(body, "auto-day-300@couplebot") || strings.Contains(body, "auto-year-1@couplebot") {
		t.Errorf("filtered feed = %d %s", rec.Code, body)
	}
	rec, _ = do(t, srv, http.MethodGet, "/api/anniversaries.ics?from=2024-07-01", "", true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("feed without to = %d", rec.Code)
	}

	rec, resp = do(t, srv, http.MethodGet, "/api/calendar/colors/2024-07", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("colors = %d", rec.Code)
	}
	var colors map[string]string
	json.Unmarshal(resp.Data, &colors)
	if len(colors) != 1 || colors["2024-07-19"] != domain.ColorAuto {
		t.Errorf("colors = %v", colors)
	}
}

func TestMemoriesFavoritesExport(t *testing.T) {
	srv := newTestServer(t)

	rec, resp := do(t, srv, http.MethodPost, "/api/memories", `{"date":"2024-04-01","title":"벚꽃"}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create memory = %d %s", rec.Code, resp.Error)
	}
	rec, _ = do(t, srv, http.MethodPost, "/api/memories", `{"date":"2024-04-01"}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("memory without title = %d", rec.Code)
	}

	_, resp = do(t, srv, http.MethodGet, "/api/memories?date=2024-04-01", "", true)
	var mems []MemoryResponse
	json.Unmarshal(resp.Data, &mems)
	if len(mems) != 1 || mems[0].Title != "벚꽃" {
		t.Errorf("memories = %+v", mems)
	}

	do(t, srv, http.MethodPost, "/api/favorites", `{"category":"food","title":"떡볶이"}`, true)
	do(t, srv, http.MethodPost, "/api/favorites", `{"category":"food","title":"오이","is_dislike":true}`, true)

	_, resp = do(t, srv, http.MethodGet, "/api/favorites?category=food&dislike=true", "", true)
	var favs []FavoriteResponse
	json.Unmarshal(resp.Data, &favs)
	if len(favs) != 1 || favs[0].Title != "오이" || favs[0].CategoryLabel != "음식" {
		t.Errorf("dislikes = %+v", favs)
	}

	rec, _ = do(t, srv, http.MethodGet, "/api/export", "", true)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "벚꽃") {
		t.Errorf("export = %d %s", rec.Code, rec.Body.String())
	}
}

func TestSyncNotConfigured(t *testing.T) {
	srv := newTestServer(t)
	rec, resp := do(t, srv, http.MethodPost, "/api/calendar/sync", "", true)
	if rec.Code != http.StatusServiceUnavailable || resp.Success {
		t.Errorf("sync = %d %+v", rec.Code, resp)
	}
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodGet, "/health", "", false)

	rec, _ := do(t, srv, http.MethodGet, "/metrics", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `http_requests_total{method="GET",path="/health",status="200"} 1`) {
		t.Errorf("metrics body missing health counter:\n%s", body)
	}
	if !strings.Contains(body, "couplebot_anniversaries") {
		t.Errorf("metrics body missing anniversaries gauge")
	}
}

