package bot

import (
	"context"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tazhate/couplebot/config"
	"github.com/tazhate/couplebot/internal/logger"
	"github.com/tazhate/couplebot/internal/service"
)

// messenger is the part of tgbotapi.BotAPI the handlers use
type messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Services are the collaborators the bot commands call into
type Services struct {
	Profiles      *service.ProfileService
	Events        *service.EventService
	Anniversaries *service.AnniversaryService
	Memories      *service.MemoryService
	Favorites     *service.FavoriteService
	Calendar      *service.CalendarService
}

type Bot struct {
	client *tgbotapi.BotAPI
	api    messenger
	cfg    *config.Config
	logger *logger.Logger
	svc    Services

	baseCtx context.Context
}

func New(cfg *config.Config, svc Services, log *logger.Logger) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	bot := newBot(client, cfg, svc, log)
	bot.client = client
	bot.logger.Infow("Authorized", "username", client.Self.UserName)

	bot.setCommands()
	return bot, nil
}

func newBot(api messenger, cfg *config.Config, svc Services, log *logger.Logger) *Bot {
	if log == nil {
		log = logger.Nop()
	}
	return &Bot{
		api:    api,
		cfg:    cfg,
		logger: log.WithComponent("bot"),
		svc:    svc,

		baseCtx: context.Background(),
	}
}

func (b *Bot) setCommands() {
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "💑 시작"},
		{Command: "anniv", Description: "💝 기념일 목록"},
		{Command: "upcoming", Description: "⏳ 다가오는 날"},
		{Command: "day", Description: "📅 오늘 / 날짜별 보기"},
		{Command: "month", Description: "🗓 월별 달력"},
		{Command: "addanniv", Description: "➕ 기념일 추가"},
		{Command: "addevent", Description: "➕ 일정 추가"},
		{Command: "memories", Description: "📔 추억"},
		{Command: "likes", Description: "👍 좋아하는 것"},
		{Command: "profile", Description: "👤 프로필"},
		{Command: "help", Description: "❓ 도움말"},
	}

	cfg := tgbotapi.NewSetMyCommands(commands...)
	if _, err := b.api.Request(cfg); err != nil {
		b.logger.WithError(err).Warn("Failed to set bot commands")
	}
}

// SetupWebhook registers WEBHOOK_URL/bot with Telegram
func (b *Bot) SetupWebhook() error {
	wh, err := tgbotapi.NewWebhook(b.cfg.Telegram.WebhookURL + "/bot")
	if err != nil {
		return fmt.Errorf("create webhook: %w", err)
	}

	if _, err := b.client.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	info, err := b.client.GetWebhookInfo()
	if err != nil {
		return fmt.Errorf("get webhook info: %w", err)
	}

	if info.LastErrorDate != 0 {
		b.logger.Warnw("Webhook last error", "message", info.LastErrorMessage)
	}

	b.logger.Infow("Webhook set", "url", b.cfg.Telegram.WebhookURL+"/bot")
	return nil
}

// Start receives updates until ctx is cancelled. With a webhook URL the
// updates arrive through HandleWebhook, otherwise they are long polled.
func (b *Bot) Start(ctx context.Context) error {
	b.baseCtx = ctx
	if b.cfg.Telegram.WebhookURL != "" {
		if err := b.SetupWebhook(); err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	}

	if _, err := b.client.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		b.logger.WithError(err).Warn("Failed to remove webhook")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.client.GetUpdatesChan(u)
	b.logger.Info("Long polling started")

	for {
		select {
		case <-ctx.Done():
			b.client.StopReceivingUpdates()
			return nil
		case update := <-updates:
			go b.HandleUpdate(update)
		}
	}
}

// HandleWebhook decodes an update posted by Telegram and handles it in the
// background
func (b *Bot) HandleWebhook(r *http.Request) error {
	update, err := b.client.HandleUpdate(r)
	if err != nil {
		return err
	}
	go b.HandleUpdate(*update)
	return nil
}

func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	if err != nil {
		b.logger.WithChat(chatID).WithError(err).Error("Failed to send message")
	}
	return err
}

func (b *Bot) SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = keyboard
	_, err := b.api.Send(msg)
	if err != nil {
		b.logger.WithChat(chatID).WithError(err).Error("Failed to send message")
	}
	return err
}

func (b *Bot) editMessage(chatID int64, msgID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.ReplyMarkup = keyboard
	if _, err := b.api.Send(edit); err != nil {
		b.logger.WithChat(chatID).WithError(err).Warn("Failed to edit message")
	}
}
