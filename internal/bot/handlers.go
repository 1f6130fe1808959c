package bot

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tazhate/couplebot/internal/domain"
)

// HandleUpdate dispatches one update from polling or the webhook
func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorw("Panic while handling update", "update_id", update.UpdateID, "panic", r)
		}
	}()

	if update.Message != nil {
		b.handleMessage(update.Message)
	} else if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.From == nil || !b.cfg.IsAllowedUser(msg.From.ID) {
		b.SendMessage(chatID, "⛔ 접근 권한이 없어요")
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}

	// A bare date shows that day
	if d, err := parseDateArg(text, b.today()); err == nil {
		body, err := b.dayText(d)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.SendMessage(chatID, body)
		return
	}

	b.SendMessageWithKeyboard(chatID, "무엇을 볼까요?", mainMenuKeyboard())
}

func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	msgID := callback.Message.MessageID

	if !b.cfg.IsAllowedUser(callback.From.ID) {
		b.api.Request(tgbotapi.NewCallback(callback.ID, "⛔ 접근 권한이 없어요"))
		return
	}

	action, arg, _ := strings.Cut(callback.Data, ":")
	answer := ""

	switch action {
	case "tab":
		tab := domain.ParseFilterTab(arg)
		text, err := b.anniversaryListText(tab)
		if err != nil {
			b.replyError(chatID, err)
			break
		}
		kb := tabKeyboard(tab)
		b.editMessage(chatID, msgID, text, &kb)
		answer = tab.Label()

	case "month":
		year, month, err := parseMonthArg(arg, b.today())
		if err != nil {
			break
		}
		text, err := b.monthText(year, month)
		if err != nil {
			b.replyError(chatID, err)
			break
		}
		kb := monthKeyboard(year, int(month))
		b.editMessage(chatID, msgID, text, &kb)

	case "likes":
		text, err := b.favoritesText(arg)
		if err != nil {
			b.replyError(chatID, err)
			break
		}
		kb := favoriteCategoryKeyboard()
		b.editMessage(chatID, msgID, text, &kb)

	case "del":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			break
		}
		answer = b.deleteEvent(id)
		b.editMessage(chatID, msgID, answer, nil)

	case "menu":
		switch arg {
		case "anniv":
			b.cmdAnniversaries(chatID, "")
		case "upcoming":
			b.cmdUpcoming(chatID)
		case "today":
			b.cmdDay(chatID, "")
		case "month":
			b.cmdMonth(chatID, "")
		}

	default:
		b.logger.Warnw("Unknown callback", "data", callback.Data)
	}

	b.api.Request(tgbotapi.NewCallback(callback.ID, answer))
}
