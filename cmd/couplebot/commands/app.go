package commands

import (
	"fmt"

	"github.com/tazhate/couplebot/config"
	"github.com/tazhate/couplebot/internal/logger"
	"github.com/tazhate/couplebot/internal/service"
	"github.com/tazhate/couplebot/internal/storage"
)

// app bundles what every subcommand opens
type app struct {
	cfg    *config.Config
	logger *logger.Logger
	store  *storage.Storage

	profiles      *service.ProfileService
	events        *service.EventService
	anniversaries *service.AnniversaryService
	memories      *service.MemoryService
	favorites     *service.FavoriteService
	backup        *service.BackupService
	export        *service.ExportService
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	restored, err := service.RestoreIfNeeded(cfg.Database.Path, cfg.Backup.Dir)
	if err != nil {
		appLogger.Close()
		return nil, fmt.Errorf("restore backup: %w", err)
	}
	if restored {
		appLogger.Infow("Database restored from backup", "path", cfg.Database.Path)
	}

	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		appLogger.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: appLogger,
		store:  store,
	}
	a.profiles = service.NewProfileService(store)
	a.events = service.NewEventService(store)
	a.anniversaries = service.NewAnniversaryService(store, cfg.Timezone)
	a.memories = service.NewMemoryService(store)
	a.favorites = service.NewFavoriteService(store)
	a.backup = service.NewBackupService(store, cfg.Backup.Dir, appLogger)
	a.export = service.NewExportService(store, a.anniversaries)
	return a, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.WithError(err).Warn("Failed to close storage")
	}
	a.logger.Close()
}
