package bot

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tazhate/couplebot/config"
	"github.com/tazhate/couplebot/internal/dates"
	"github.com/tazhate/couplebot/internal/domain"
	"github.com/tazhate/couplebot/internal/service"
	"github.com/tazhate/couplebot/internal/storage"
)

var testToday = dates.Date(2024, time.April, 15)

func TestParseDateArg(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "2024-04-15"},
		{in: "오늘", want: "2024-04-15"},
		{in: "tomorrow", want: "2024-04-16"},
		{in: "어제", want: "2024-04-14"},
		{in: "2023-12-24", want: "2023-12-24"},
		{in: "12-24", want: "2024-12-24"},
		{in: "2024-02-30", wantErr: true},
		{in: "hello", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDateArg(tt.in, testToday)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %s", dates.Format(got))
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDateArg: %v", err)
			}
			if dates.Format(got) != tt.want {
				t.Errorf("got %s, want %s", dates.Format(got), tt.want)
			}
		})
	}
}

func TestParseAddEventArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    service.EventInput
		wantErr bool
	}{
		{
			name: "title only",
			args: "2024-05-01 한강 피크닉",
			want: service.EventInput{Title: "한강 피크닉", Date: "2024-05-01", EndDate: "2024-05-01", Category: 3},
		},
		{
			name: "time and category",
			args: "2024-05-01~2024-05-03 19:00-21:00 중요 부산 여행",
			want: service.EventInput{Title: "부산 여행", Date: "2024-05-01", EndDate: "2024-05-03", Time: "19:00-21:00", Category: 4},
		},
		{
			name: "category word alone is the title",
			args: "2024-05-01 데이트",
			want: service.EventInput{Title: "데이트", Date: "2024-05-01", EndDate: "2024-05-01", Category: 3},
		},
		{name: "missing title", args: "2024-05-01 19:00", wantErr: true},
		{name: "bad date", args: "2024-13-01 영화", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAddEventArgs(tt.args, testToday)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAddEventArgs: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseMemoryAndFavoriteArgs(t *testing.T) {
	m, err := parseMemoryArgs("2024-03-02 첫 캠핑 | 별이 많았다", testToday)
	if err != nil {
		t.Fatalf("parseMemoryArgs: %v", err)
	}
	if m.Date != "2024-03-02" || m.Title != "첫 캠핑" || m.Description != "별이 많았다" {
		t.Errorf("memory = %+v", m)
	}
	if _, err := parseMemoryArgs("2024-03-02", testToday); !errors.Is(err, errUsage) {
		t.Errorf("missing title err = %v", err)
	}

	f, err := parseFavoriteArgs("음식 떡볶이", true)
	if err != nil {
		t.Fatalf("parseFavoriteArgs: %v", err)
	}
	if f.Category != string(domain.FavoriteFood) || f.Title != "떡볶이" || !f.IsDislike {
		t.Errorf("favorite = %+v", f)
	}
}

func TestParseMonthArg(t *testing.T) {
	y, m, err := parseMonthArg("", testToday)
	if err != nil || y != 2024 || m != time.April {
		t.Errorf("blank = %d-%d, %v", y, m, err)
	}
	y, m, err = parseMonthArg("2025-01", testToday)
	if err != nil || y != 2025 || m != time.January {
		t.Errorf("2025-01 = %d-%d, %v", y, m, err)
	}
	if _, _, err := parseMonthArg("January", testToday); err == nil {
		t.Error("expected error")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("우리의 첫 번째 여행", 5); got != "우리의 …" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("짧다", 5); got != "짧다" {
		t.Errorf("truncate = %q", got)
	}
}

func TestTabKeyboard(t *testing.T) {
	kb := tabKeyboard(domain.TabBirthday)
	var n int
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			n++
			if *btn.CallbackData == "tab:birthday" && !strings.HasPrefix(btn.Text, "• ") {
				t.Errorf("active tab not marked: %q", btn.Text)
			}
		}
	}
	if n != len(domain.FilterTabs) {
		t.Errorf("buttons = %d, want %d", n, len(domain.FilterTabs))
	}
}

type fakeMessenger struct {
	sent []string
}

func (f *fakeMessenger) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	switch m := c.(type) {
	case tgbotapi.MessageConfig:
		f.sent = append(f.sent, m.Text)
	case tgbotapi.EditMessageTextConfig:
		f.sent = append(f.sent, m.Text)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeMessenger) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeMessenger) last() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

func newTestBot(t *testing.T) (*Bot, *fakeMessenger) {
	t.Helper()
	s, err := storage.New(filepath.Join(t.TempDir(), "bot.db"))
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	anniv := service.NewAnniversaryService(s, time.UTC)
	anniv.SetClock(func() time.Time { return testToday.Add(9 * time.Hour) })

	cfg := &config.Config{Timezone: time.UTC}
	cfg.Telegram.OwnerTelegramID = 1

	fake := &fakeMessenger{}
	b := newBot(fake, cfg, Services{
		Profiles:      service.NewProfileService(s),
		Events:        service.NewEventService(s),
		Anniversaries: anniv,
		Memories:      service.NewMemoryService(s),
		Favorites:     service.NewFavoriteService(s),
	}, nil)
	return b, fake
}

func command(from int64, text string) tgbotapi.Update {
	cmd, _, _ := strings.Cut(text, " ")
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From:     &tgbotapi.User{ID: from},
		Chat:     &tgbotapi.Chat{ID: from},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func TestCommands(t *testing.T) {
	b, fake := newTestBot(t)

	steps := []struct {
		text string
		want []string
	}{
		{"/upcoming", []string{"다가오는 기념일이 없어요"}},
		{"/setstart 2024-01-01", []string{"2024-01-01"}},
		{"/start", []string{"<b>106일째</b>"}},
		{"/upcoming", []string{"200일", "2024-07-19", "D-95"}},
		{"/addanniv 2024-07-19 바다 여행", []string{"바다 여행", "#1"}},
		{"/anniv anniversary", []string{"바다 여행", "1주년"}},
		{"/day 2024-07-19", []string{"바다 여행"}},
		{"/month 2024-07", []string{"19일", "바다 여행"}},
		{"/addevent 2024-04-20 19:00-21:00 영화", []string{"영화", "19:00-21:00", "#2"}},
		{"/addmemory 2024-04-20 첫 영화 | 재밌었다", []string{"첫 영화"}},
		{"/day 2024-04-20", []string{"</b> · 2024-04-20 19:00-21:00 #2", "첫 영화"}},
		{"/like 음식 떡볶이", []string{"떡볶이", "음식"}},
		{"/likes food", []string{"떡볶이"}},
		{"/del 1", []string{"#1 삭제"}},
		{"/del 1", []string{"찾을 수 없어요"}},
		{"/setbirthday 2024-02-30", []string{"잘못된 날짜"}},
		{"/sync", []string{"캘린더가 설정되지 않았어요"}},
		{"/nope", []string{"알 수 없는 명령"}},
	}
	for _, st := range steps {
		b.HandleUpdate(command(1, st.text))
		got := fake.last()
		for _, w := range st.want {
			if !strings.Contains(got, w) {
				t.Errorf("%s: reply %q missing %q", st.text, got, w)
			}
		}
	}
}

func TestUnknownUserRejected(t *testing.T) {
	b, fake := newTestBot(t)
	b.HandleUpdate(command(99, "/profile"))
	if !strings.Contains(fake.last(), "⛔") {
		t.Errorf("reply = %q", fake.last())
	}
}

func TestTabCallback(t *testing.T) {
	b, fake := newTestBot(t)
	b.HandleUpdate(command(1, "/setstart 2024-01-01"))

	b.HandleUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: 1},
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: 1}},
		Data:    "tab:past",
	}})
	got := fake.last()
	if !strings.Contains(got, "지난 날") || !strings.Contains(got, "100일") {
		t.Errorf("past tab = %q", got)
	}
	if strings.Contains(got, "200일") {
		t.Errorf("past tab shows a future item: %q", got)
	}
}
