package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"calendar-sync/core/config"
	"calendar-sync/core/database"
	"calendar-sync/core/journal"
	"calendar-sync/core/logger"
	"calendar-sync/core/metrics"
	"calendar-sync/core/reconcile"
	"calendar-sync/core/report"
	"calendar-sync/core/storage"
	"calendar-sync/feature/alert"
	"calendar-sync/feature/calendar/gcal"
	"calendar-sync/feature/calendar/icsfile"
	"calendar-sync/feature/ledger"
	"calendar-sync/feature/ledger/sheets"
	"calendar-sync/feature/ledger/sqlstore"
	"calendar-sync/feature/mirror"

	"go.uber.org/zap"
)

// runtime holds the collaborators a command works with.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	engine  *reconcile.Orchestrator
	ledger  reconcile.Ledger
	journal *journal.Journal
	archive *report.Archive
	closers []func() error

	// breakers maps a backend name to its circuit breaker state.
	breakers map[string]func() string
}

// breakerReporter is implemented by backends guarded by a circuit breaker.
type breakerReporter interface {
	BreakerState() string
}

// health returns the state reported by /healthz.
func (r *runtime) health() map[string]any {
	out := map[string]any{}
	if r.journal != nil {
		if n, err := r.journal.Len(); err == nil {
			out["journal_pending"] = n
		}
	}
	if len(r.breakers) > 0 {
		states := make(map[string]string, len(r.breakers))
		for name, state := range r.breakers {
			states[name] = state()
		}
		out["breakers"] = states
	}
	return out
}

func (r *runtime) trackBreaker(name string, v any) {
	b, ok := v.(breakerReporter)
	if !ok {
		return
	}
	if r.breakers == nil {
		r.breakers = map[string]func() string{}
	}
	r.breakers[name] = b.BreakerState
}

// Close releases everything opened by the runtime.
func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			r.logger.Warn("Close failed", zap.Error(err))
		}
	}
	_ = r.logger.Sync()
}

// service wraps the engine for pass execution.
func (r *runtime) service(recorder *metrics.Recorder) *mirror.Service {
	return mirror.NewService(r.engine, r.archive, recorder, r.logger)
}

// loadBase reads the configuration and builds the logger.
func loadBase() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}

// newRuntime builds the full engine from configuration.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, l, err := loadBase()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: l}
	ok := false
	defer func() {
		if !ok {
			rt.Close()
		}
	}()

	cal, err := newCalendar(ctx, cfg, l)
	if err != nil {
		return nil, err
	}
	rt.trackBreaker("calendar", cal)

	rt.ledger, err = newLedger(ctx, cfg, l, rt)
	if err != nil {
		return nil, err
	}
	rt.trackBreaker("ledger", rt.ledger)

	rt.journal, err = openJournal(cfg.Sync.JournalPath, l)
	if err != nil {
		return nil, err
	}
	if rt.journal != nil {
		rt.closers = append(rt.closers, rt.journal.Close)
	}

	if cfg.Report.Enabled {
		rt.archive, err = newArchive(ctx, cfg, l)
		if err != nil {
			return nil, err
		}
	}

	rt.engine = reconcile.New(cal, rt.ledger, alert.New(cfg.Alert, l), cfg.Sync.Options(),
		engineOptions(l, rt.journal)...)

	l.Info("Sync engine ready",
		zap.String("calendar_a", cfg.Sync.CalendarA),
		zap.String("calendar_b", cfg.Sync.CalendarB),
		zap.String("calendar_backend", cfg.Calendar.Backend),
		zap.String("ledger_backend", cfg.Ledger.Backend),
		zap.Bool("reports", cfg.Report.Enabled))

	ok = true
	return rt, nil
}

// errJournalDisabled is returned by journal commands when sync.journal_path is empty.
var errJournalDisabled = errors.New("recovery journal is disabled (sync.journal_path is empty)")

// openJournal opens the recovery journal. An empty path disables it and returns nil.
func openJournal(path string, l *zap.Logger) (*journal.Journal, error) {
	if strings.TrimSpace(path) == "" {
		l.Warn("Recovery journal disabled; failed ledger inserts will only be logged")
		return nil, nil
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return j, nil
}

// engineOptions never hands the engine a typed nil journal.
func engineOptions(l *zap.Logger, j *journal.Journal) []reconcile.Option {
	opts := []reconcile.Option{reconcile.WithLogger(l)}
	if j != nil {
		opts = append(opts, reconcile.WithJournal(j))
	}
	return opts
}

func newCalendar(ctx context.Context, cfg *config.Config, l *zap.Logger) (reconcile.Calendar, error) {
	switch cfg.Calendar.Backend {
	case config.CalendarICS:
		store, err := icsfile.New(cfg.Calendar.ICSDir, l)
		if err != nil {
			return nil, fmt.Errorf("failed to open ics calendars: %w", err)
		}
		return store, nil
	default:
		client, err := gcal.New(ctx, cfg.Google, l)
		if err != nil {
			return nil, fmt.Errorf("failed to create calendar client: %w", err)
		}
		return client, nil
	}
}

func newLedger(ctx context.Context, cfg *config.Config, l *zap.Logger, rt *runtime) (reconcile.Ledger, error) {
	switch cfg.Ledger.Backend {
	case ledger.BackendSQL:
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			rt.closers = append(rt.closers, sqlDB.Close)
		}
		store := sqlstore.New(db, l)
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		if err := store.CheckSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		store, err := sheets.New(ctx, cfg.Google, cfg.Ledger.SpreadsheetID, cfg.Ledger.SheetName, l)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureHeader(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}
}

func newArchive(ctx context.Context, cfg *config.Config, l *zap.Logger) (*report.Archive, error) {
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to storage: %w", err)
	}
	if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
		return nil, err
	}
	return report.NewArchive(client, cfg.Storage.Bucket, cfg.Report, l), nil
}

// errPassFailed marks a pass that ran but reported errors.
var errPassFailed = errors.New("sync pass finished with errors")
