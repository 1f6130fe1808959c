package api

import (
	"time"

	"github.com/tazhate/couplebot/internal/anniversary"
	"github.com/tazhate/couplebot/internal/dates"
	"github.com/tazhate/couplebot/internal/domain"
)

// APIResponse wraps every JSON reply
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type ProfileResponse struct {
	Name                  string `json:"name"`
	Nickname              string `json:"nickname"`
	DisplayName           string `json:"display_name"`
	RelationshipStartDate string `json:"relationship_start_date,omitempty"`
	Birthday              string `json:"birthday,omitempty"`
	DaysTogether          *int   `json:"days_together,omitempty"`
	Age                   *int   `json:"age,omitempty"`
	PhoneNumber           string `json:"phone_number,omitempty"`
	MBTI                  string `json:"mbti,omitempty"`
	PhotoURI              string `json:"photo_uri,omitempty"`
	Favorites             string `json:"favorites,omitempty"`
	Hobbies               string `json:"hobbies,omitempty"`
	Mood                  string `json:"mood,omitempty"`
	Note                  string `json:"note,omitempty"`
}

type EventResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Date          string `json:"date"`
	EndDate       string `json:"end_date,omitempty"`
	Time          string `json:"time,omitempty"`
	AllDay        bool   `json:"all_day"`
	IsAnniversary bool   `json:"is_anniversary"`
	NotifyEnabled bool   `json:"notify_enabled"`
	Category      int    `json:"category"`
	CategoryLabel string `json:"category_label"`
	Icon          string `json:"icon"`
	Color         string `json:"color"`
	CreatedAt     string `json:"created_at"`
}

type AnniversaryResponse struct {
	Key           string `json:"key"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Date          string `json:"date"`
	DDay          string `json:"d_day"`
	Category      int    `json:"category"`
	CategoryLabel string `json:"category_label"`
	Icon          string `json:"icon"`
	Color         string `json:"color"`
	IsAuto        bool   `json:"is_auto"`
	AutoTag       string `json:"auto_tag,omitempty"`
	SourceEventID *int64 `json:"source_event_id,omitempty"`
}

type DayResponse struct {
	Date     string                `json:"date"`
	Color    string                `json:"color,omitempty"`
	HasItems bool                  `json:"has_items"`
	Items    []AnniversaryResponse `json:"items"`
}

type MemoryResponse struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	PhotoURI    string `json:"photo_uri,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type FavoriteResponse struct {
	ID            int64  `json:"id"`
	Category      string `json:"category"`
	CategoryLabel string `json:"category_label"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	PhotoURI      string `json:"photo_uri,omitempty"`
	IsDislike     bool   `json:"is_dislike"`
	CreatedAt     string `json:"created_at"`
}

func profileToResponse(p *domain.Profile, today time.Time) ProfileResponse {
	resp := ProfileResponse{
		Name:                  p.Name,
		Nickname:              p.Nickname,
		DisplayName:           p.DisplayName(),
		RelationshipStartDate: p.RelationshipStartDate,
		Birthday:              p.Birthday,
		PhoneNumber:           p.PhoneNumber,
		MBTI:                  p.MBTI,
		PhotoURI:              p.PhotoURI,
		Favorites:             p.Favorites,
		Hobbies:               p.Hobbies,
		Mood:                  p.Mood,
		Note:                  p.Note,
	}
	if n, ok := p.DaysTogether(today); ok {
		resp.DaysTogether = &n
	}
	if age, ok := p.Age(today); ok {
		resp.Age = &age
	}
	return resp
}

func eventToResponse(e *domain.Event) EventResponse {
	return EventResponse{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		Date:          e.Date,
		EndDate:       e.EndDate,
		Time:          e.Time,
		AllDay:        e.IsAllDay(),
		IsAnniversary: e.IsAnniversary,
		NotifyEnabled: e.NotifyEnabled,
		Category:      e.Category.ID(),
		CategoryLabel: e.Category.Label(),
		Icon:          string(e.Icon),
		Color:         e.ResolvedColor(),
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}

func eventsToResponse(events []*domain.Event) []EventResponse {
	result := make([]EventResponse, 0, len(events))
	for _, e := range events {
		result = append(result, eventToResponse(e))
	}
	return result
}

func anniversaryToResponse(it domain.AnniversaryItem, today time.Time) AnniversaryResponse {
	return AnniversaryResponse{
		Key:           it.Key,
		Title:         it.Title,
		Description:   it.Description,
		Date:          dates.Format(it.Date),
		DDay:          it.DDay(today),
		Category:      it.Category.ID(),
		CategoryLabel: it.Category.Label(),
		Icon:          string(it.Icon),
		Color:         it.ResolvedColor(),
		IsAuto:        it.IsAuto,
		AutoTag:       it.AutoTag,
		SourceEventID: it.SourceEventID,
	}
}

func anniversariesToResponse(items []domain.AnniversaryItem, today time.Time) []AnniversaryResponse {
	result := make([]AnniversaryResponse, 0, len(items))
	for _, it := range items {
		result = append(result, anniversaryToResponse(it, today))
	}
	return result
}

func monthToResponse(cells []anniversary.DayCell, today time.Time) []DayResponse {
	result := make([]DayResponse, 0, len(cells))
	for _, c := range cells {
		result = append(result, DayResponse{
			Date:     dates.Format(c.Date),
			Color:    c.Color,
			HasItems: c.HasItems,
			Items:    anniversariesToResponse(c.Items, today),
		})
	}
	return result
}

func memoryToResponse(m *domain.Memory) MemoryResponse {
	return MemoryResponse{
		ID:          m.ID,
		Date:        m.Date,
		Title:       m.Title,
		Description: m.Description,
		PhotoURI:    m.PhotoURI,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
	}
}

func favoriteToResponse(f *domain.Favorite) FavoriteResponse {
	return FavoriteResponse{
		ID:            f.ID,
		Category:      string(f.Category),
		CategoryLabel: f.Category.Label(),
		Title:         f.Title,
		Description:   f.Description,
		PhotoURI:      f.PhotoURI,
		IsDislike:     f.IsDislike,
		CreatedAt:     f.CreatedAt.Format(time.RFC3339),
	}
}
