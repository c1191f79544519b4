package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"scholartrack/internal/config"
	"scholartrack/internal/infrastructure/scheduler"
	"scholartrack/internal/infrastructure/scholar"
	"scholartrack/internal/infrastructure/storage"
	"scholartrack/internal/infrastructure/telegram"
	"scholartrack/internal/logging"
	"scholartrack/internal/openalex"
	"scholartrack/internal/ports"
	"scholartrack/internal/report"
	"scholartrack/internal/source"
	"scholartrack/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *sql.DB
	tracker  *usecase.Tracker
	reporter *usecase.Reporter
	driver   ports.Scheduler
}

// New builds a runnable application instance. Configuration problems are
// fatal here, before any adapter exists that could write.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect storage: %w", err)
	}

	registry := source.NewRegistry()
	registry.Register(openalex.NewClient(cfg.OpenAlex, nil, baseLogger.With("component", "source.openalex")))
	registry.Register(scholar.NewScanner(nil, baseLogger.With("component", "source.scholar")))

	activitySource, err := registry.Resolve(cfg.Tracker.Source)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("select activity source: %w", err)
	}

	roster := storage.NewRosterStore(db)

	tracker := usecase.NewTracker(usecase.TrackerDeps{
		Roster:         roster,
		Source:         activitySource,
		Snapshots:      storage.NewSnapshotStore(db),
		Log:            storage.NewActivityLog(db),
		DropUnresolved: cfg.Tracker.DropUnresolved,
		Logger:         baseLogger.With("component", "tracker"),
	})

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	reporter := usecase.NewReporter(usecase.ReporterDeps{
		Roster:   roster,
		Sink:     storage.NewAggregateSink(db),
		Archive:  storage.NewRosterArchive(db),
		Notifier: notifier,
		Options: report.Options{
			Countries:       cfg.Report.Countries,
			PriorityDays:    cfg.Report.PriorityDays,
			TopUniversities: cfg.Report.TopUniversities,
			TopMachines:     cfg.Report.TopMachines,
		},
		Logger: baseLogger.With("component", "reporter"),
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		db:       db,
		tracker:  tracker,
		reporter: reporter,
		driver:   scheduler.NewTickScheduler(cfg.Scheduler.Location()),
	}, nil
}

// RunDaily executes one delta pass for today.
func (a *Application) RunDaily(ctx context.Context) error {
	_, err := a.tracker.ProcessDay(ctx, time.Now().In(a.cfg.Scheduler.Location()))
	return err
}

// RunMonthly executes one aggregation pass for the current month.
func (a *Application) RunMonthly(ctx context.Context) error {
	_, err := a.reporter.ProcessMonth(ctx, time.Now().In(a.cfg.Scheduler.Location()))
	return err
}

// RunScheduled keeps the process alive, firing the daily job every 24h and
// the monthly job on the first of the month, until ctx is cancelled.
func (a *Application) RunScheduled(ctx context.Context) error {
	daily := func(t time.Time) {
		if _, err := a.tracker.ProcessDay(ctx, t); err != nil {
			a.logger.Error("daily run failed", "error", err)
		}
	}
	monthly := func(t time.Time) {
		if _, err := a.reporter.ProcessMonth(ctx, t); err != nil {
			a.logger.Error("monthly run failed", "error", err)
		}
	}

	if err := a.driver.Start(ctx, daily, monthly); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	return a.driver.Stop(context.Background())
}

// Close releases the storage handle.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
