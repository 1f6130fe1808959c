package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/tazhate/couplebot/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

type Storage struct {
	db   *sqlx.DB
	path string
}

// New opens the database and applies pending migrations
func New(dbPath string) (*Storage, error) {
	s, err := Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := s.MigrateUp(); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Open opens the database without touching the schema
func Open(dbPath string) (*Storage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sqlx.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// sqlite has a single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &Storage{db: db, path: dbPath}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.path
}

// Ping checks the connection
func (s *Storage) Ping() error {
	return s.db.Ping()
}

// BackupTo writes a consistent copy of the database to dst
func (s *Storage) BackupTo(dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	tmp := dst + ".tmp"
	_ = os.Remove(tmp)
	if _, err := s.db.Exec(`VACUUM INTO ?`, tmp); err != nil {
		return fmt.Errorf("vacuum into: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("replace backup: %w", err)
	}
	return nil
}

// === Profile ===

type profileRow struct {
	Name                  string    `db:"name"`
	Nickname              string    `db:"nickname"`
	RelationshipStartDate string    `db:"relationship_start_date"`
	Birthday              string    `db:"birthday"`
	PhoneNumber           string    `db:"phone_number"`
	MBTI                  string    `db:"mbti"`
	PhotoURI              string    `db:"photo_uri"`
	Favorites             string    `db:"favorites"`
	Hobbies               string    `db:"hobbies"`
	Mood                  string    `db:"mood"`
	Note                  string    `db:"note"`
	UpdatedAt             time.Time `db:"updated_at"`
}

func (r profileRow) toDomain() *domain.Profile {
	return &domain.Profile{
		Name:                  r.Name,
		Nickname:              r.Nickname,
		RelationshipStartDate: r.RelationshipStartDate,
		Birthday:              r.Birthday,
		PhoneNumber:           r.PhoneNumber,
		MBTI:                  r.MBTI,
		PhotoURI:              r.PhotoURI,
		Favorites:             r.Favorites,
		Hobbies:               r.Hobbies,
		Mood:                  r.Mood,
		Note:                  r.Note,
		UpdatedAt:             r.UpdatedAt,
	}
}

// GetProfile returns the profile, nil if none has been saved yet
func (s *Storage) GetProfile() (*domain.Profile, error) {
	var r profileRow
	err := s.db.Get(&r, `SELECT name, nickname, relationship_start_date, birthday, phone_number, mbti,
		photo_uri, favorites, hobbies, mood, note, updated_at FROM profile WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.toDomain(), nil
}

// SaveProfile inserts or replaces the single profile row
func (s *Storage) SaveProfile(p *domain.Profile) error {
	_, err := s.db.NamedExec(`
		INSERT INTO profile (id, name, nickname, relationship_start_date, birthday, phone_number, mbti,
			photo_uri, favorites, hobbies, mood, note, updated_at)
		VALUES (1, :name, :nickname, :relationship_start_date, :birthday, :phone_number, :mbti,
			:photo_uri, :favorites, :hobbies, :mood, :note, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			nickname = excluded.nickname,
			relationship_start_date = excluded.relationship_start_date,
			birthday = excluded.birthday,
			phone_number = excluded.phone_number,
			mbti = excluded.mbti,
			photo_uri = excluded.photo_uri,
			favorites = excluded.favorites,
			hobbies = excluded.hobbies,
			mood = excluded.mood,
			note = excluded.note,
			updated_at = CURRENT_TIMESTAMP`,
		profileRow{
			Name:                  p.Name,
			Nickname:              p.Nickname,
			RelationshipStartDate: p.RelationshipStartDate,
			Birthday:              p.Birthday,
			PhoneNumber:           p.PhoneNumber,
			MBTI:                  p.MBTI,
			PhotoURI:              p.PhotoURI,
			Favorites:             p.Favorites,
			Hobbies:               p.Hobbies,
			Mood:                  p.Mood,
			Note:                  p.Note,
		})
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	return nil
}

// === Events ===

const eventColumns = `id, title, description, date, end_date, time, is_anniversary, notify_enabled,
	category, icon, color, created_at`

type eventRow struct {
	ID            int64     `db:"id"`
	Title         string    `db:"title"`
	Description   string    `db:"description"`
	Date          string    `db:"date"`
	EndDate       string    `db:"end_date"`
	Time          string    `db:"time"`
	IsAnniversary bool      `db:"is_anniversary"`
	NotifyEnabled bool      `db:"notify_enabled"`
	Category      int       `db:"category"`
	Icon          string    `db:"icon"`
	Color         string    `db:"color"`
	CreatedAt     time.Time `db:"created_at"`
}

func newEventRow(e *domain.Event) eventRow {
	return eventRow{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		Date:          e.Date,
		EndDate:       e.EndDate,
		Time:          e.Time,
		IsAnniversary: e.IsAnniversary,
		NotifyEnabled: e.NotifyEnabled,
		Category:      int(e.Category),
		Icon:          string(e.Icon),
		Color:         e.Color,
	}
}

func (r eventRow) toDomain() *domain.Event {
	return &domain.Event{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Date:          r.Date,
		EndDate:       r.EndDate,
		Time:          r.Time,
		IsAnniversary: r.IsAnniversary,
		NotifyEnabled: r.NotifyEnabled,
		Category:      domain.Category(r.Category),
		Icon:          domain.Icon(r.Icon),
		Color:         r.Color,
		CreatedAt:     r.CreatedAt,
	}
}

func (s *Storage) CreateEvent(e *domain.Event) error {
	res, err := s.db.NamedExec(`
		INSERT INTO events (title, description, date, end_date, time, is_anniversary, notify_enabled, category, icon, color)
		VALUES (:title, :description, :date, :end_date, :time, :is_anniversary, :notify_enabled, :category, :icon, :color)`,
		newEventRow(e))
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	e.ID = id
	e.CreatedAt = time.Now()
	return nil
}

func (s *Storage) GetEvent(id int64) (*domain.Event, error) {
	var r eventRow
	err := s.db.Get(&r, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.toDomain(), nil
}

func (s *Storage) UpdateEvent(e *domain.Event) error {
	_, err := s.db.NamedExec(`
		UPDATE events SET title = :title, description = :description, date = :date, end_date = :end_date,
			time = :time, is_anniversary = :is_anniversary, notify_enabled = :notify_enabled,
			category = :category, icon = :icon, color = :color
		WHERE id = :id`,
		newEventRow(e))
	return err
}

func (s *Storage) DeleteEvent(id int64) error {
	_, err := s.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	return err
}

// ListEvents returns all events ordered by start, end and time
func (s *Storage) ListEvents() ([]*domain.Event, error) {
	return s.queryEvents(`SELECT ` + eventColumns + ` FROM events ORDER BY date, end_date, time, id`)
}

// ListAnniversaryEvents returns events flagged as anniversaries
func (s *Storage) ListAnniversaryEvents() ([]*domain.Event, error) {
	return s.queryEvents(`SELECT ` + eventColumns + ` FROM events WHERE is_anniversary = 1 ORDER BY date, end_date, time, id`)
}

// ListEventsOnDate returns events whose span contains date (YYYY-MM-DD)
func (s *Storage) ListEventsOnDate(date string) ([]*domain.Event, error) {
	return s.queryEvents(`SELECT `+eventColumns+` FROM events
		WHERE date <= ? AND COALESCE(NULLIF(end_date, ''), date) >= ?
		ORDER BY date, end_date, time, id`, date, date)
}

// ListEventsInRange returns events overlapping [from, to]
func (s *Storage) ListEventsInRange(from, to string) ([]*domain.Event, error) {
	return s.queryEvents(`SELECT `+eventColumns+` FROM events
		WHERE date <= ? AND COALESCE(NULLIF(end_date, ''), date) >= ?
		ORDER BY date, end_date, time, id`, to, from)
}

func (s *Storage) queryEvents(query string, args ...interface{}) ([]*domain.Event, error) {
	var rows []eventRow
	if err := s.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	events := make([]*domain.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.toDomain())
	}
	return events, nil
}

// === Memories ===

type memoryRow struct {
	ID          int64     `db:"id"`
	Date        string    `db:"date"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	PhotoURI    string    `db:"photo_uri"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r memoryRow) toDomain() *domain.Memory {
	return &domain.Memory{
		ID:          r.ID,
		Date:        r.Date,
		Title:       r.Title,
		Description: r.Description,
		PhotoURI:    r.PhotoURI,
		CreatedAt:   r.CreatedAt,
	}
}

func (s *Storage) CreateMemory(m *domain.Memory) error {
	res, err := s.db.Exec(
		`INSERT INTO memories (date, title, description, photo_uri) VALUES (?, ?, ?, ?)`,
		m.Date, m.Title, m.Description, m.PhotoURI,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	m.ID = id
	m.CreatedAt = time.Now()
	return nil
}

func (s *Storage) GetMemory(id int64) (*domain.Memory, error) {
	var r memoryRow
	err := s.db.Get(&r, `SELECT id, date, title, description, photo_uri, created_at FROM memories WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.toDomain(), nil
}

func (s *Storage) UpdateMemory(m *domain.Memory) error {
	_, err := s.db.Exec(
		`UPDATE memories SET date = ?, title = ?, description = ?, photo_uri = ? WHERE id = ?`,
		m.Date, m.Title, m.Description, m.PhotoURI, m.ID,
	)
	return err
}

func (s *Storage) DeleteMemory(id int64) error {
	_, err := s.db.Exec(`DELETE FROM memories WHERE id = ?`, id)
	return err
}

// ListMemories returns memories newest first
func (s *Storage) ListMemories() ([]*domain.Memory, error) {
	return s.queryMemories(`SELECT id, date, title, description, photo_uri, created_at FROM memories ORDER BY date DESC, id DESC`)
}

// ListMemoriesByDate returns memories of one day
func (s *Storage) ListMemoriesByDate(date string) ([]*domain.Memory, error) {
	return s.queryMemories(`SELECT id, date, title, description, photo_uri, created_at FROM memories WHERE date = ? ORDER BY id DESC`, date)
}

func (s *Storage) queryMemories(query string, args ...interface{}) ([]*domain.Memory, error) {
	var rows []memoryRow
	if err := s.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]*domain.Memory, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// === Favorites ===

type favoriteRow struct {
	ID          int64     `db:"id"`
	Category    string    `db:"category"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	PhotoURI    string    `db:"photo_uri"`
	IsDislike   bool      `db:"is_dislike"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r favoriteRow) toDomain() *domain.Favorite {
	return &domain.Favorite{
		ID:          r.ID,
		Category:    domain.FavoriteCategoryFromID(r.Category),
		Title:       r.Title,
		Description: r.Description,
		PhotoURI:    r.PhotoURI,
		IsDislike:   r.IsDislike,
		CreatedAt:   r.CreatedAt,
	}
}

func (s *Storage) CreateFavorite(f *domain.Favorite) error {
	res, err := s.db.Exec(
		`INSERT INTO favorites (category, title, description, photo_uri, is_dislike) VALUES (?, ?, ?, ?, ?)`,
		string(f.Category), f.Title, f.Description, f.PhotoURI, f.IsDislike,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	f.ID = id
	f.CreatedAt = time.Now()
	return nil
}

func (s *Storage) GetFavorite(id int64) (*domain.Favorite, error) {
	var r favoriteRow
	err := s.db.Get(&r, `SELECT id, category, title, description, photo_uri, is_dislike, created_at FROM favorites WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.toDomain(), nil
}

func (s *Storage) UpdateFavorite(f *domain.Favorite) error {
	_, err := s.db.Exec(
		`UPDATE favorites SET category = ?, title = ?, description = ?, photo_uri = ?, is_dislike = ? WHERE id = ?`,
		string(f.Category), f.Title, f.Description, f.PhotoURI, f.IsDislike, f.ID,
	)
	return err
}

func (s *Storage) DeleteFavorite(id int64) error {
	_, err := s.db.Exec(`DELETE FROM favorites WHERE id = ?`, id)
	return err
}

// ListFavorites returns every like and dislike, newest first
func (s *Storage) ListFavorites() ([]*domain.Favorite, error) {
	return s.queryFavorites(`SELECT id, category, title, description, photo_uri, is_dislike, created_at FROM favorites ORDER BY id DESC`)
}

// ListFavoritesByCategory returns likes or dislikes of one category
func (s *Storage) ListFavoritesByCategory(category domain.FavoriteCategory, dislike bool) ([]*domain.Favorite, error) {
	return s.queryFavorites(`SELECT id, category, title, description, photo_uri, is_dislike, created_at FROM favorites
		WHERE category = ? AND is_dislike = ? ORDER BY id DESC`, string(category), dislike)
}

func (s *Storage) queryFavorites(query string, args ...interface{}) ([]*domain.Favorite, error) {
	var rows []favoriteRow
	if err := s.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]*domain.Favorite, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}
