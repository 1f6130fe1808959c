package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tazhate/couplebot/config"
	"github.com/tazhate/couplebot/internal/logger"
	"github.com/tazhate/couplebot/internal/service"
)

// Backupper writes a database backup
type Backupper interface {
	Backup() (string, error)
}

// Syncer pushes anniversaries to a remote calendar
type Syncer interface {
	IsConfigured() bool
	Sync(ctx context.Context) (*service.SyncResult, error)
}

type Scheduler struct {
	cron    *cron.Cron
	cfg     *config.Config
	backup  Backupper
	syncer  Syncer
	logger  *logger.Logger
	baseCtx context.Context
}

func New(cfg *config.Config, backup Backupper, syncer Syncer, log *logger.Logger) *Scheduler {
	location := cfg.Timezone
	if location == nil {
		location = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Scheduler{
		cron:    cron.New(cron.WithLocation(location)),
		cfg:     cfg,
		backup:  backup,
		syncer:  syncer,
		logger:  log.WithComponent("scheduler"),
		baseCtx: context.Background(),
	}
}

// Register adds the configured jobs without starting the cron loop
func (s *Scheduler) Register() error {
	if s.backup != nil && s.cfg.Backup.Cron != "" {
		if _, err := s.cron.AddFunc(s.cfg.Backup.Cron, s.runBackup); err != nil {
			return fmt.Errorf("add backup job: %w", err)
		}
	}

	if s.syncer != nil && s.syncer.IsConfigured() && s.cfg.CalDAV.SyncCron != "" {
		if _, err := s.cron.AddFunc(s.cfg.CalDAV.SyncCron, s.runSync); err != nil {
			return fmt.Errorf("add calendar sync job: %w", err)
		}
	}
	return nil
}

// Jobs returns the number of registered jobs
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Start registers the jobs and runs them until ctx is cancelled
func (s *Scheduler) Start(ctx context.Context) error {
	s.baseCtx = ctx
	if err := s.Register(); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Infow("Scheduler started",
		"timezone", s.cfg.Timezone.String(),
		"backup_cron", s.cfg.Backup.Cron,
		"sync_cron", s.cfg.CalDAV.SyncCron,
		"jobs", s.Jobs(),
	)

	<-ctx.Done()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runBackup() {
	if _, err := s.backup.Backup(); err != nil {
		s.logger.WithError(err).Error("Scheduled backup failed")
	}
}

func (s *Scheduler) runSync() {
	ctx, cancel := context.WithTimeout(s.baseCtx, 2*time.Minute)
	defer cancel()

	res, err := s.syncer.Sync(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled calendar sync failed")
		return
	}
	for _, e := range res.Errors {
		s.logger.Warnw("Calendar sync item failed", "detail", e)
	}
}
