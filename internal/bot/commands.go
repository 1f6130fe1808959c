package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tazhate/couplebot/internal/dates"
	"github.com/tazhate/couplebot/internal/domain"
	"github.com/tazhate/couplebot/internal/service"
)

const upcomingLimit = 7

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())

	switch cmd {
	case "start", "menu":
		b.cmdStart(chatID)
	case "help":
		b.cmdHelp(chatID)
	case "profile":
		b.cmdProfile(chatID)
	case "setstart":
		b.cmdSetDate(chatID, args, b.svc.Profiles.SetStartDate, "💑 사귄 날")
	case "setbirthday":
		b.cmdSetDate(chatID, args, b.svc.Profiles.SetBirthday, "🎂 생일")
	case "setnick":
		b.cmdSetNick(chatID, args)
	case "anniv":
		b.cmdAnniversaries(chatID, args)
	case "upcoming":
		b.cmdUpcoming(chatID)
	case "day", "today":
		b.cmdDay(chatID, args)
	case "month":
		b.cmdMonth(chatID, args)
	case "addanniv":
		b.cmdAddAnniversary(chatID, args)
	case "addevent":
		b.cmdAddEvent(chatID, args)
	case "del":
		b.cmdDelete(chatID, args)
	case "memories":
		b.cmdMemories(chatID)
	case "addmemory":
		b.cmdAddMemory(chatID, args)
	case "likes":
		b.cmdLikes(chatID, args)
	case "like":
		b.cmdAddFavorite(chatID, args, false)
	case "dislike":
		b.cmdAddFavorite(chatID, args, true)
	case "sync":
		b.cmdSync(chatID)
	default:
		b.SendMessage(chatID, "알 수 없는 명령이에요. /help 로 명령 목록을 볼 수 있어요")
	}
}

func (b *Bot) today() time.Time {
	return b.svc.Anniversaries.Today()
}

func (b *Bot) cmdStart(chatID int64) {
	p, err := b.svc.Profiles.Get()
	if err != nil {
		b.replyError(chatID, err)
		return
	}

	text := fmt.Sprintf("💑 안녕하세요! %s와(과)의 기념일을 챙겨 드릴게요.", html.EscapeString(p.DisplayName()))
	if n, ok := p.DaysTogether(b.today()); ok {
		text += fmt.Sprintf("\n\n오늘은 함께한 지 <b>%d일째</b>예요", n+1)
	} else {
		text += "\n\n먼저 /setstart YYYY-MM-DD 로 사귄 날을 알려 주세요"
	}
	b.SendMessageWithKeyboard(chatID, text, mainMenuKeyboard())
}

func (b *Bot) cmdHelp(chatID int64) {
	text := `<b>명령어</b>

<b>프로필</b>
/profile - 프로필 보기
/setstart YYYY-MM-DD - 사귄 날
/setbirthday YYYY-MM-DD - 생일
/setnick 애칭 - 애칭

<b>기념일</b>
/anniv [all|anniversary|birthday|date|important|past] - 목록
/upcoming - 다가오는 날
/addanniv 날짜[~날짜] 제목 - 기념일 추가
/del ID - 삭제

<b>달력</b>
/day [날짜] - 하루 보기
/month [YYYY-MM] - 월별 보기
/addevent 날짜[~날짜] [HH:MM-HH:MM] [데이트|생일|중요] 제목 - 일정 추가

<b>추억 / 취향</b>
/memories - 추억 목록
/addmemory 날짜 제목 | 내용 - 추억 남기기
/likes [카테고리] - 취향 보기
/like 카테고리 내용, /dislike 카테고리 내용

/sync - 캘린더 동기화`
	b.SendMessage(chatID, text)
}

func (b *Bot) cmdProfile(chatID int64) {
	p, err := b.svc.Profiles.Get()
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.SendMessage(chatID, formatProfile(p, b.today()))
}

func (b *Bot) cmdSetDate(chatID int64, args string, set func(string) (*domain.Profile, error), label string) {
	if args == "" {
		b.SendMessage(chatID, "날짜를 입력해 주세요: YYYY-MM-DD")
		return
	}
	d, err := parseDateArg(args, b.today())
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}
	if _, err := set(dates.Format(d)); err != nil {
		b.replyError(chatID, err)
		return
	}
	b.SendMessage(chatID, fmt.Sprintf("✅ %s: %s", label, dates.Format(d)))
}

func (b *Bot) cmdSetNick(chatID int64, args string) {
	if args == "" {
		b.SendMessage(chatID, "애칭을 입력해 주세요: /setnick 애칭")
		return
	}
	if _, err := b.svc.Profiles.SetNickname(args); err != nil {
		b.replyError(chatID, err)
		return
	}
	b.SendMessage(chatID, "✅ 애칭: "+html.EscapeString(args))
}

func (b *Bot) anniversaryListText(tab domain.FilterTab) (string, error) {
	items, err := b.svc.Anniversaries.List(tab)
	if err != nil {
		return "", err
	}
	return formatAnniversaryList(items, tab, b.today()), nil
}

func (b *Bot) cmdAnniversaries(chatID int64, args string) {
	tab := domain.ParseFilterTab(strings.ToLower(args))
	text, err := b.anniversaryListText(tab)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.SendMessageWithKeyboard(chatID, text, tabKeyboard(tab))
}

func (b *Bot) cmdUpcoming(chatID int64) {
	items, err := b.svc.Anniversaries.Upcoming(upcomingLimit)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.SendMessage(chatID, formatUpcoming(items, b.today()))
}

func (b *Bot) dayText(d time.Time) (string, error) {
	items, err := b.svc.Anniversaries.OnDate(d)
	if err != nil {
		return "", err
	}
	events, err := b.svc.Events.ListOnDate(dates.Format(d))
	if err != nil {
		return "", err
	}
	memories, err := b.svc.Memories.ListByDate(dates.Format(d))
	if err != nil {
		return "", err
	}
	return formatDayView(d, items, events, memories, b.today()), nil
}

func (b *Bot) cmdDay(chatID int64, args string) {
	d, err := parseDateArg(args, b.today())
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}
	text, err := b.dayText(d)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.SendMessage(chatID, text)
}

func (b *Bot) monthText(year int, month time.Month) (string, error) {
	cells, err := b.svc.Anniversaries.Month(year, month)
	if err != nil {
		return "", err
	}
	return formatMonth(year, month, cells, b.today()), nil
}

func (b *Bot) cmdMonth(chatID int64, args string) {
	year, month, err := parseMonthArg(args, b.today())
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}
	text, err := b.monthText(year, month)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.SendMessageWithKeyboard(chatID, text, monthKeyboard(year, int(month)))
}

func (b *Bot) cmdAddAnniversary(chatID int64, args string) {
	in, err := parseAddAnnivArgs(args, b.today())
	if errors.Is(err, errUsage) {
		b.SendMessage(chatID, "사용법: /addanniv 2024-05-01[~2024-05-03] 제목")
		return
	}
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}
	b.createEvent(chatID, in)
}

func (b *Bot) cmdAddEvent(chatID int64, args string) {
	in, err := parseAddEventArgs(args, b.today())
	if errors.Is(err, errUsage) {
		b.SendMessage(chatID, "사용법: /addevent 2024-05-01 [19:00-21:00] [데이트|생일|중요] 제목")
		return
	}
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}
	b.createEvent(chatID, in)
}

func (b *Bot) createEvent(chatID int64, in service.EventInput) {
	e, err := b.svc.Events.Create(in)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.logger.WithChat(chatID).Infow("Event created", "id", e.ID, "anniversary", e.IsAnniversary)
	b.SendMessageWithKeyboard(chatID, "✅ 추가했어요\n\n"+formatEvent(e), eventKeyboard(e.ID))
}

func (b *Bot) cmdDelete(chatID int64, args string) {
	id, err := strconv.ParseInt(strings.TrimPrefix(args, "#"), 10, 64)
	if err != nil {
		b.SendMessage(chatID, "사용법: /del ID")
		return
	}
	b.SendMessage(chatID, b.deleteEvent(id))
}

func (b *Bot) deleteEvent(id int64) string {
	if err := b.svc.Events.Delete(id); err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			return fmt.Sprintf("❌ #%d 일정을 찾을 수 없어요", id)
		}
		b.logger.WithError(err).Errorw("Delete event failed", "id", id)
		return "❌ 삭제하지 못했어요"
	}
	return fmt.Sprintf("🗑 #%d 삭제했어요", id)
}

func (b *Bot) cmdMemories(chatID int64) {
	memories, err := b.svc.Memories.List()
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.SendMessage(chatID, formatMemories(memories))
}

func (b *Bot) cmdAddMemory(chatID int64, args string) {
	in, err := parseMemoryArgs(args, b.today())
	if errors.Is(err, errUsage) {
		b.SendMessage(chatID, "사용법: /addmemory 2024-05-01 제목 | 내용")
		return
	}
	if err != nil {
		b.SendMessage(chatID, "❌ "+err.Error())
		return
	}
	m, err := b.svc.Memories.Create(in)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.SendMessage(chatID, "✅ 추억을 남겼어요\n\n"+formatMemory(m))
}

func (b *Bot) favoritesText(category string) (string, error) {
	var (
		list []*domain.Favorite
		err  error
	)
	if category == "" {
		list, err = b.svc.Favorites.List()
	} else {
		c := domain.FavoriteCategoryFromID(category)
		var likes, dislikes []*domain.Favorite
		if likes, err = b.svc.Favorites.ListByCategory(c, false); err == nil {
			dislikes, err = b.svc.Favorites.ListByCategory(c, true)
		}
		list = append(likes, dislikes...)
	}
	if err != nil {
		return "", err
	}
	return formatFavorites(list), nil
}

func (b *Bot) cmdLikes(chatID int64, args string) {
	text, err := b.favoritesText(args)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.SendMessageWithKeyboard(chatID, text, favoriteCategoryKeyboard())
}

func (b *Bot) cmdAddFavorite(chatID int64, args string, dislike bool) {
	in, err := parseFavoriteArgs(args, dislike)
	if err != nil {
		b.SendMessage(chatID, "사용법: /like 음식 떡볶이")
		return
	}
	f, err := b.svc.Favorites.Create(in)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.SendMessage(chatID, fmt.Sprintf("✅ %s %s · %s", f.Emoji(), html.EscapeString(f.Title), f.Category.Label()))
}

func (b *Bot) cmdSync(chatID int64) {
	if b.svc.Calendar == nil || !b.svc.Calendar.IsConfigured() {
		b.SendMessage(chatID, "캘린더가 설정되지 않았어요 (CALDAV_URL)")
		return
	}
	ctx, cancel := context.WithTimeout(b.baseCtx, 2*time.Minute)
	defer cancel()

	res, err := b.svc.Calendar.Sync(ctx)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	text := fmt.Sprintf("🔄 동기화 완료\n추가 %d · 변경 %d · 삭제 %d", res.Added, res.Updated, res.Deleted)
	if len(res.Errors) > 0 {
		text += fmt.Sprintf("\n⚠️ 실패 %d", len(res.Errors))
	}
	b.SendMessage(chatID, text)
}

// replyError logs err and tells the user; validation errors are shown as is
func (b *Bot) replyError(chatID int64, err error) {
	if errors.Is(err, service.ErrInvalidInput) {
		b.SendMessage(chatID, "❌ 입력을 확인해 주세요: "+html.EscapeString(err.Error()))
		return
	}
	b.logger.WithChat(chatID).WithError(err).Error("Command failed")
	b.SendMessage(chatID, "❌ 오류가 발생했어요")
}
