package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	partnerapp "github.com/tileshop/backend/internal/application/partner"
	"github.com/tileshop/backend/internal/infrastructure/config"
	"github.com/tileshop/backend/internal/infrastructure/logger"
	"github.com/tileshop/backend/internal/infrastructure/migration"
	"github.com/tileshop/backend/internal/infrastructure/persistence"
	"github.com/tileshop/backend/internal/infrastructure/printing"
	"github.com/tileshop/backend/internal/infrastructure/scheduler"
	"github.com/tileshop/backend/internal/infrastructure/storage"
	"github.com/tileshop/backend/internal/infrastructure/telemetry"
)

// openDatabase connects, installs DB tracing and brings the schema up to
// date. Postgres runs the embedded SQL migrations; sqlite and mysql use
// AutoMigrate.
func openDatabase(ctx context.Context, cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	var gormOpts []logger.GormLoggerOption
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		gormOpts = append(gormOpts, logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	}
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), gormOpts...)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return nil, err
	}

	dbSystem := "postgresql"
	if cfg.Database.Driver != "" && cfg.Database.Driver != "postgres" {
		dbSystem = cfg.Database.Driver
	}
	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        dbSystem,
	}, log)
	if err := plugin.Register(db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("register db tracing: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if cfg.Database.Driver != "" && cfg.Database.Driver != "postgres" {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	m, err := migration.New(sqlDB, "", log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := m.Up(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	if version, dirty, err := m.Version(); err == nil {
		log.Info("Schema migrated", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}
	return db, nil
}

// newRenderer builds the invoice renderer for printing.strategy
func newRenderer(cfg config.PrintingConfig, metrics *telemetry.InvoiceMetrics, log *zap.Logger) (printing.InvoiceRenderer, error) {
	switch cfg.Strategy {
	case printing.StrategyHTML:
		return printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.ChromeTimeout,
			NoSandbox:      cfg.ChromeNoSandbox,
			Engine:         printing.NewTemplateEngine(),
			Logger:         log,
		})
	default:
		tmap, err := printing.LoadTemplateMap(cfg.TemplateMap)
		if err != nil {
			return nil, err
		}
		return printing.NewOverlayRenderer(tmap, printing.OverlayConfig{
			Background:     cfg.Background,
			FontPath:       cfg.FontPath,
			ThumbnailWidth: cfg.ThumbnailWidth,
			Logger:         log,
			OnThumbnailFailure: func() {
				metrics.ThumbnailSkipped(context.Background())
			},
		})
	}
}

func newArchive(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (printing.PDFStorage, error) {
	archive, err := storage.NewPDFStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("PDF archive enabled", zap.String("type", cfg.Type))
	return archive, nil
}

// startMaintenance runs the nightly pending-balance reconciliation. The
// returned stop function is safe to call when the scheduler is disabled.
func startMaintenance(ctx context.Context, cfg *config.Config, customers *partnerapp.CustomerService, log *zap.Logger) (func(context.Context), error) {
	if !cfg.Scheduler.Enabled {
		return func(context.Context) {}, nil
	}
	hour, minute, err := cfg.Scheduler.ReconcileClock()
	if err != nil {
		return nil, err
	}

	sched := scheduler.NewScheduler(scheduler.Config{
		JobTimeout:    cfg.Scheduler.JobTimeout,
		RetryAttempts: cfg.Scheduler.RetryAttempts,
		RetryDelay:    cfg.Scheduler.RetryDelay,
	}, log.Named("scheduler"))

	reconcile := scheduler.TaskFunc{
		TaskName: "reconcile_pending_balances",
		Fn: func(ctx context.Context) error {
			checked, corrected, err := customers.ReconcileAll(ctx)
			if err != nil {
				return err
			}
			log.Info("Pending balances reconciled", zap.Int("checked", checked), zap.Int("corrected", corrected))
			return nil
		},
	}
	trigger := scheduler.NewDailyTrigger(scheduler.DailyTriggerConfig{
		Hour:          hour,
		Minute:        minute,
		Location:      cfg.App.Location(),
		CheckInterval: cfg.Scheduler.CheckInterval,
	}, sched, log.Named("scheduler"), reconcile)

	if err := sched.Start(ctx); err != nil {
		return nil, err
	}
	if err := trigger.Start(ctx); err != nil {
		return nil, err
	}

	return func(ctx context.Context) {
		if err := trigger.Stop(ctx); err != nil {
			log.Error("Error stopping daily trigger", zap.Error(err))
		}
		if err := sched.Stop(ctx); err != nil {
			log.Error("Error stopping scheduler", zap.Error(err))
		}
	}, nil
}
