package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tazhate/couplebot/internal/api"
	"github.com/tazhate/couplebot/internal/bot"
	"github.com/tazhate/couplebot/internal/clients/caldav"
	"github.com/tazhate/couplebot/internal/scheduler"
	"github.com/tazhate/couplebot/internal/service"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot, HTTP server and scheduler",
		Long:  "Run the Telegram bot (when a token is set), the HTTP server and the backup and calendar sync jobs until SIGINT or SIGTERM",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg
	log := a.logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// untyped nil keeps CalendarService.IsConfigured false
	var backend service.CalendarBackend
	calendarPath := ""
	if cfg.CalDAVEnabled() {
		client := caldav.NewClient(cfg.CalDAV.URL, cfg.CalDAV.Username, cfg.CalDAV.Password)
		backend = client

		resolveCtx, resolveCancel := context.WithTimeout(ctx, 30*time.Second)
		calendarPath, err = client.ResolveCalendar(resolveCtx, cfg.CalDAV.Calendar)
		resolveCancel()
		if err != nil {
			log.WithError(err).Warnw("Failed to resolve CalDAV calendar, sync will fail until it exists",
				"calendar", cfg.CalDAV.Calendar)
		}
	}
	calendarSvc := service.NewCalendarService(a.anniversaries, backend, calendarPath, log)

	sched := scheduler.New(cfg, a.backup, calendarSvc, log)

	var (
		tgBot   *bot.Bot
		webhook api.WebhookHandler
	)
	if cfg.BotEnabled() {
		tgBot, err = bot.New(cfg, bot.Services{
			Profiles:      a.profiles,
			Events:        a.events,
			Anniversaries: a.anniversaries,
			Memories:      a.memories,
			Favorites:     a.favorites,
			Calendar:      calendarSvc,
		}, log)
		if err != nil {
			return err
		}
		if cfg.Telegram.WebhookURL != "" {
			webhook = tgBot
		}
	} else {
		log.Info("TELEGRAM_BOT_TOKEN not set, bot disabled")
	}

	server := api.New(cfg, api.Services{
		Profiles:      a.profiles,
		Events:        a.events,
		Anniversaries: a.anniversaries,
		Memories:      a.memories,
		Favorites:     a.favorites,
		Calendar:      calendarSvc,
		Export:        a.export,
	}, a.store, webhook, log)

	go func() {
		if err := sched.Start(ctx); err != nil {
			log.WithError(err).Error("Scheduler error")
		}
	}()

	if tgBot != nil {
		go func() {
			if err := tgBot.Start(ctx); err != nil {
				log.WithError(err).Error("Bot error")
			}
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	log.Infow("couplebot started", "bot", tgBot != nil, "api", cfg.APIEnabled(), "caldav", calendarSvc.IsConfigured())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Infow("Shutting down", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			log.WithError(err).Error("Server error")
		}
	}

	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Error stopping server")
	}

	log.Info("couplebot stopped")
	return nil
}
