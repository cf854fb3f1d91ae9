package reconcile

import (
	"errors"
	"strings"
	"time"

	"calendar-sync/core/batch"
)

// Config holds the sync section of the configuration.
type Config struct {
	// CalendarA is the identifier of the first calendar.
	CalendarA string `mapstructure:"calendar_a" default:""`
	// CalendarB is the identifier of the second calendar.
	CalendarB string `mapstructure:"calendar_b" default:""`
	// PrefixA is prepended to the title of copies of calendar A events.
	PrefixA string `mapstructure:"prefix_a" default:"[A]"`
	// PrefixB is prepended to the title of copies of calendar B events.
	PrefixB string `mapstructure:"prefix_b" default:"[B]"`
	// DaysAhead is the length of the sync window starting now.
	DaysAhead int `mapstructure:"days_ahead" default:"30"`
	// MaxEvents caps the number of events fetched per calendar.
	MaxEvents int `mapstructure:"max_events" default:"250"`
	// BatchSize is the number of concurrent calendar writes.
	BatchSize int `mapstructure:"batch_size" default:"5"`
	// BatchDelayMs is the pause between two write batches, in milliseconds.
	BatchDelayMs int `mapstructure:"batch_delay_ms" default:"1000"`
	// Schedule is the cron expression used by the serve command.
	Schedule string `mapstructure:"schedule" default:"*/15 * * * *"`
	// JournalPath is the bbolt file holding unrecorded mappings. Empty disables it.
	JournalPath string `mapstructure:"journal_path" default:"data/journal.db"`
	// DryRun reports the plan instead of running a pass.
	DryRun bool `mapstructure:"dry_run" default:"false"`
}

// Validate checks the values a pass cannot run without.
func (c Config) Validate() error {
	var errs []error
	a, b := strings.TrimSpace(c.CalendarA), strings.TrimSpace(c.CalendarB)
	if a == "" || b == "" {
		errs = append(errs, errors.New("sync.calendar_a and sync.calendar_b are required"))
	} else if strings.EqualFold(a, b) {
		errs = append(errs, errors.New("sync.calendar_a and sync.calendar_b must differ"))
	}
	if c.DaysAhead <= 0 {
		errs = append(errs, errors.New("sync.days_ahead must be positive"))
	}
	if c.MaxEvents <= 0 {
		errs = append(errs, errors.New("sync.max_events must be positive"))
	}
	if c.BatchSize <= 0 {
		errs = append(errs, errors.New("sync.batch_size must be positive"))
	}
	if c.BatchDelayMs < 0 {
		errs = append(errs, errors.New("sync.batch_delay_ms must not be negative"))
	}
	return errors.Join(errs...)
}

// Options converts the configuration into engine options.
func (c Config) Options() Options {
	return Options{
		CalendarA: strings.TrimSpace(c.CalendarA),
		CalendarB: strings.TrimSpace(c.CalendarB),
		PrefixA:   c.PrefixA,
		PrefixB:   c.PrefixB,
		DaysAhead: c.DaysAhead,
		MaxEvents: c.MaxEvents,
		Batch: batch.Options{
			Size:  c.BatchSize,
			Delay: time.Duration(c.BatchDelayMs) * time.Millisecond,
		},
	}
}

// Options parameterizes an Orchestrator.
type Options struct {
	CalendarA string
	CalendarB string
	PrefixA   string
	PrefixB   string
	DaysAhead int
	MaxEvents int
	Batch     batch.Options
}

// AToB is the direction copying calendar A onto calendar B.
func (o Options) AToB() Direction {
	return Direction{SourceCalendarID: o.CalendarA, TargetCalendarID: o.CalendarB, TitlePrefix: o.PrefixA}
}

// BToA is the direction copying calendar B onto calendar A.
func (o Options) BToA() Direction {
	return Direction{SourceCalendarID: o.CalendarB, TargetCalendarID: o.CalendarA, TitlePrefix: o.PrefixB}
}
