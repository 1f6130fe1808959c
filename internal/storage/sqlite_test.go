package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tazhate/couplebot/internal/domain"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationVersion(t *testing.T) {
	s := newTestStorage(t)
	v, dirty, err := s.MigrationVersion()
	if err != nil {
		t.Fatalf("MigrationVersion: %v", err)
	}
	if v != 3 || dirty {
		t.Errorf("version = %d dirty = %v, want 3 clean", v, dirty)
	}
	// applying again is a no-op
	if err := s.MigrateUp(); err != nil {
		t.Errorf("second MigrateUp: %v", err)
	}
}

func TestProfileUpsert(t *testing.T) {
	s := newTestStorage(t)

	p, err := s.GetProfile()
	if err != nil || p != nil {
		t.Fatalf("empty db: profile = %v, err = %v", p, err)
	}

	if err := s.SaveProfile(&domain.Profile{Name: "지민", RelationshipStartDate: "2024-01-01"}); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	if err := s.SaveProfile(&domain.Profile{Name: "지민", Nickname: "곰돌이", RelationshipStartDate: "2024-01-01", Birthday: "1996-05-20"}); err != nil {
		t.Fatalf("SaveProfile update: %v", err)
	}

	p, err = s.GetProfile()
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.Nickname != "곰돌이" || p.Birthday != "1996-05-20" || p.RelationshipStartDate != "2024-01-01" {
		t.Errorf("profile = %+v", p)
	}

	var count int
	if err := s.db.Get(&count, `SELECT COUNT(*) FROM profile`); err != nil || count != 1 {
		t.Errorf("profile rows = %d, err = %v", count, err)
	}
}

func TestEventCRUD(t *testing.T) {
	s := newTestStorage(t)

	e := &domain.Event{
		Title:         "여행",
		Date:          "2024-05-01",
		EndDate:       "2024-05-03",
		Time:          "10:00-18:00",
		IsAnniversary: true,
		Category:      domain.CategoryDate,
		Icon:          domain.IconHeart,
		Color:         "#E6F0F5",
	}
	if err := s.CreateEvent(e); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if e.ID == 0 {
		t.Fatal("expected id")
	}

	got, err := s.GetEvent(e.ID)
	if err != nil || got == nil {
		t.Fatalf("GetEvent: %v %v", got, err)
	}
	if got.Title != "여행" || got.EndDate != "2024-05-03" || !got.IsAnniversary || got.Category != domain.CategoryDate || got.Icon != domain.IconHeart || got.Color != "#E6F0F5" {
		t.Errorf("event = %+v", got)
	}

	got.Title = "제주 여행"
	if err := s.UpdateEvent(got); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	again, _ := s.GetEvent(e.ID)
	if again.Title != "제주 여행" {
		t.Errorf("title = %q", again.Title)
	}

	if err := s.DeleteEvent(e.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}
	if gone, err := s.GetEvent(e.ID); err != nil || gone != nil {
		t.Errorf("after delete: %v %v", gone, err)
	}
}

func TestEventDateQueries(t *testing.T) {
	s := newTestStorage(t)
	for _, e := range []*domain.Event{
		{Title: "span", Date: "2024-05-01", EndDate: "2024-05-03"},
		{Title: "single", Date: "2024-05-02"},
		{Title: "blank end", Date: "2024-05-05", EndDate: ""},
		{Title: "anniv", Date: "2024-06-01", IsAnniversary: true},
	} {
		if err := s.CreateEvent(e); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	titles := func(events []*domain.Event) []string {
		var out []string
		for _, e := range events {
			out = append(out, e.Title)
		}
		return out
	}

	onDate, err := s.ListEventsOnDate("2024-05-03")
	if err != nil {
		t.Fatal(err)
	}
	if got := titles(onDate); len(got) != 1 || got[0] != "span" {
		t.Errorf("on 05-03 = %v", got)
	}

	onDate, _ = s.ListEventsOnDate("2024-05-05")
	if got := titles(onDate); len(got) != 1 || got[0] != "blank end" {
		t.Errorf("on 05-05 = %v", got)
	}

	inRange, _ := s.ListEventsInRange("2024-05-02", "2024-05-04")
	if got := titles(inRange); len(got) != 2 || got[0] != "span" || got[1] != "single" {
		t.Errorf("range = %v", got)
	}

	all, _ := s.ListEvents()
	if len(all) != 4 {
		t.Errorf("all = %d", len(all))
	}
	anniv, _ := s.ListAnniversaryEvents()
	if got := titles(anniv); len(got) != 1 || got[0] != "anniv" {
		t.Errorf("anniversaries = %v", got)
	}
}

func TestMemoriesAndFavorites(t *testing.T) {
	s := newTestStorage(t)

	for _, m := range []*domain.Memory{
		{Date: "2024-03-01", Title: "첫 데이트"},
		{Date: "2024-04-10", Title: "100일"},
	} {
		if err := s.CreateMemory(m); err != nil {
			t.Fatal(err)
		}
	}
	list, err := s.ListMemories()
	if err != nil || len(list) != 2 || list[0].Title != "100일" {
		t.Errorf("memories = %v, %v", list, err)
	}
	byDate, _ := s.ListMemoriesByDate("2024-03-01")
	if len(byDate) != 1 || byDate[0].Title != "첫 데이트" {
		t.Errorf("by date = %v", byDate)
	}

	like := &domain.Favorite{Category: domain.FavoriteFood, Title: "떡볶이"}
	dislike := &domain.Favorite{Category: domain.FavoriteFood, Title: "오이", IsDislike: true}
	for _, f := range []*domain.Favorite{like, dislike} {
		if err := s.CreateFavorite(f); err != nil {
			t.Fatal(err)
		}
	}
	likes, _ := s.ListFavoritesByCategory(domain.FavoriteFood, false)
	if len(likes) != 1 || likes[0].Title != "떡볶이" {
		t.Errorf("likes = %v", likes)
	}
	dislikes, _ := s.ListFavoritesByCategory(domain.FavoriteFood, true)
	if len(dislikes) != 1 || !dislikes[0].IsDislike {
		t.Errorf("dislikes = %v", dislikes)
	}
	if err := s.DeleteFavorite(like.ID); err != nil {
		t.Fatal(err)
	}
	all, _ := s.ListFavorites()
	if len(all) != 1 {
		t.Errorf("favorites after delete = %d", len(all))
	}
}

func TestBackupTo(t *testing.T) {
	s := newTestStorage(t)
	if err := s.CreateEvent(&domain.Event{Title: "x", Date: "2024-01-01"}); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(t.TempDir(), "backup", "copy.db")
	if err := s.BackupTo(dst); err != nil {
		t.Fatalf("BackupTo: %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("backup missing: %v", err)
	}

	copyStore, err := New(dst)
	if err != nil {
		t.Fatalf("open backup: %v", err)
	}
	defer copyStore.Close()
	events, err := copyStore.ListEvents()
	if err != nil || len(events) != 1 {
		t.Errorf("backup events = %v, %v", events, err)
	}
}
