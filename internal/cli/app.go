package cli

import (
	"context"
	"errors"
	"fmt"

	"wastelog/internal/attachments"
	"wastelog/internal/backend"
	"wastelog/internal/cache"
	"wastelog/internal/config"
	applog "wastelog/internal/log"
	"wastelog/internal/metrics"
	"wastelog/internal/services"
	"wastelog/internal/session"
)

// App holds everything a command needs, opened from one configuration.
type App struct {
	Config  *config.Config
	Logger  *applog.Logger
	Service *services.WasteService
	Caches  *cache.Manager

	cleanup backend.CleanupFunc
}

// Open creates the configured store, loads the log and builds the service.
func Open(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*App, error) {
	if logger == nil {
		logger = applog.Discard()
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).Create(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", bcfg.Type, err)
	}

	sess := session.New(res.Store, cfg.StorageKey, logger)
	if err := sess.Load(ctx); err != nil {
		if res.Cleanup != nil {
			err = errors.Join(err, res.Cleanup())
		}
		return nil, fmt.Errorf("load waste log: %w", err)
	}

	reports := cache.NewLRUCache[metrics.Report](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	caches := cache.NewManager(logger)
	caches.Register(reports)

	loader := attachments.NewLoader(cfg.MaxAttachmentBytes, logger)
	svc := services.NewWasteService(sess, loader, reports, cfg.TrendWindow, logger)

	logger.Debug("Waste log opened",
		"backend", bcfg.Type.String(),
		applog.FieldStorageKey, cfg.StorageKey,
		applog.FieldEntries, svc.EntryCount())

	return &App{
		Config:  cfg,
		Logger:  logger,
		Service: svc,
		Caches:  caches,
		cleanup: res.Cleanup,
	}, nil
}

// Close stops cache sweeping and releases the store.
func (a *App) Close() error {
	a.Caches.Stop()
	if a.cleanup != nil {
		return a.cleanup()
	}
	return nil
}
