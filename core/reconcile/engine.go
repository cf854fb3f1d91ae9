package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Orchestrator sequences reconciliation passes between two calendars.
// It assumes a single active pass per ledger; callers serialize RunPass.
type Orchestrator struct {
	calendar Calendar
	ledger   Ledger
	notifier Notifier
	journal  Journal
	opts     Options
	logger   *zap.Logger
	now      func() time.Time

	syncer  *Syncer
	writer  *LedgerWriter
	orphans *OrphanDetector
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used by the orchestrator and its components.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithJournal enables the recovery journal for failed ledger inserts.
func WithJournal(j Journal) Option {
	return func(o *Orchestrator) {
		o.journal = j
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an Orchestrator. A nil notifier disables alerts.
func New(calendar Calendar, ledger Ledger, notifier Notifier, opts Options, options ...Option) *Orchestrator {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	o := &Orchestrator{
		calendar: calendar,
		ledger:   ledger,
		notifier: notifier,
		opts:     opts,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range options {
		opt(o)
	}

	o.syncer = NewSyncer(calendar, opts.Batch, o.logger)
	o.syncer.now = o.now
	o.writer = NewLedgerWriter(ledger, o.logger)
	o.orphans = NewOrphanDetector(calendar, opts.Batch, o.logger)
	return o
}

// Window returns the fetch window of a pass starting at now.
func (o *Orchestrator) Window() Window {
	start := o.now().UTC()
	return Window{Start: start, End: start.AddDate(0, 0, o.opts.DaysAhead)}
}

// fetchResult is the listing of one calendar.
type fetchResult struct {
	calendarID string
	events     []CalendarEvent
	err        error
	// truncated is set when the listing hit MaxEvents and may be missing events.
	truncated bool
}

// complete reports whether the listing can be trusted to reflect deletions.
func (f fetchResult) complete() bool {
	return f.err == nil && !f.truncated
}

// fetchBoth lists both calendars concurrently. A failed side degrades to an empty set.
func (o *Orchestrator) fetchBoth(ctx context.Context, window Window) (a, b fetchResult) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		a = o.fetch(ctx, o.opts.CalendarA, window)
	}()

	go func() {
		defer wg.Done()
		b = o.fetch(ctx, o.opts.CalendarB, window)
	}()

	wg.Wait()
	return a, b
}

func (o *Orchestrator) fetch(ctx context.Context, calendarID string, window Window) fetchResult {
	events, err := o.calendar.ListEvents(ctx, calendarID, window, o.opts.MaxEvents)
	if err != nil {
		o.logger.Error("Failed to fetch calendar, continuing with no events",
			zap.String("calendar_id", calendarID),
			zap.Error(err))
		return fetchResult{calendarID: calendarID, err: err}
	}

	truncated := o.opts.MaxEvents > 0 && len(events) >= o.opts.MaxEvents
	if truncated {
		o.logger.Warn("Fetch hit max events, orphan detection skipped for this calendar",
			zap.String("calendar_id", calendarID),
			zap.Int("max_events", o.opts.MaxEvents))
	}
	return fetchResult{calendarID: calendarID, events: events, truncated: truncated}
}

// RunPass executes one reconciliation pass.
//
// The ledger is loaded once after both calendars are fetched; the same snapshot
// drives A->B, B->A and orphan detection. Pending rows are flushed after each
// direction and orphan rows are deleted last. Errors of individual items are
// counted in the summary and trigger an alert; only a failed ledger load is
// returned as an error.
func (o *Orchestrator) RunPass(ctx context.Context) (*PassSummary, error) {
	summary := &PassSummary{StartedAt: o.now().UTC()}
	window := o.Window()

	o.logger.Info("Starting pass",
		zap.String("calendar_a", o.opts.CalendarA),
		zap.String("calendar_b", o.opts.CalendarB),
		zap.Time("window_start", window.Start),
		zap.Time("window_end", window.End))

	replayed, err := o.ReplayJournal(ctx)
	if err != nil {
		summary.LedgerErrors++
		o.logger.Error("Failed to replay journal", zap.Error(err))
	}
	summary.Replayed = replayed

	a, b := o.fetchBoth(ctx, window)
	for _, f := range []fetchResult{a, b} {
		if f.err != nil {
			summary.FetchErrors++
		}
	}

	records, err := o.ledger.LoadAll(ctx)
	if err != nil {
		err = fmt.Errorf("load ledger: %w", err)
		summary.FinishedAt = o.now().UTC()
		o.notifier.Notify(ctx, fmt.Sprintf("Calendar sync pass aborted: %v", err))
		return summary, err
	}
	// Mappings still journaled (replay failed) count as tracked.
	records = o.withJournaled(records)

	aToB := o.syncer.SyncDirection(ctx, a.events, records, o.opts.AToB())
	summary.AToB = aToB.Stats
	o.flush(ctx, aToB, summary)

	// Same snapshot: the directions key on disjoint primary calendars.
	bToA := o.syncer.SyncDirection(ctx, b.events, records, o.opts.BToA())
	summary.BToA = bToA.Stats
	o.flush(ctx, bToA, summary)

	orphans := o.orphans.deleteOrphans(ctx, o.orphanCandidates(a, b, records, window))
	summary.OrphansDeleted = orphans.Deleted
	summary.OrphanErrors = orphans.Errors

	if len(orphans.PendingDeletes) > 0 {
		if err := o.deleteRows(ctx, orphans.PendingDeletes); err != nil {
			summary.LedgerErrors++
			o.logger.Error("Failed to delete orphan rows; mirrors already removed",
				zap.Ints("row_ids", orphans.PendingDeletes),
				zap.Error(err))
		}
	}

	summary.FinishedAt = o.now().UTC()
	o.logSummary(summary)

	if n := summary.TotalErrors(); n > 0 {
		o.notifier.Notify(ctx, alertMessage(summary))
	}

	return summary, nil
}

// flush writes the pending rows of one direction. Inserts that fail are journaled.
func (o *Orchestrator) flush(ctx context.Context, res DirectionResult, summary *PassSummary) {
	if err := o.writer.BatchInsert(ctx, res.PendingInserts); err != nil {
		summary.LedgerErrors++
		o.logger.Error("Ledger insert failed", zap.Error(err))

		var werr *LedgerWriteError
		if o.journal != nil && errors.As(err, &werr) {
			if jerr := o.journal.Record(werr.Records); jerr != nil {
				o.logger.Error("Failed to journal unrecorded mappings", zap.Error(jerr))
			}
		}
	}

	updates := res.PendingUpdates
	if o.journal != nil {
		var unrecorded []LedgerRecord
		updates, unrecorded = splitUnrecorded(updates)
		if err := o.journal.Record(unrecorded); err != nil {
			summary.LedgerErrors++
			o.logger.Error("Failed to journal refreshed mappings", zap.Error(err))
		}
	}

	if err := o.writer.BatchUpdate(ctx, updates); err != nil {
		summary.LedgerErrors++
		o.logger.Error("Ledger update failed; mirrors will be rewritten next pass", zap.Error(err))
	}
}

// withJournaled appends the journaled mappings that records does not hold yet.
// They carry no row id.
func (o *Orchestrator) withJournaled(records []LedgerRecord) []LedgerRecord {
	if o.journal == nil {
		return records
	}
	pending, err := o.journal.Pending()
	if err != nil {
		o.logger.Warn("Failed to read journal", zap.Error(err))
		return records
	}
	if len(pending) == 0 {
		return records
	}

	index := IndexRecords(records)
	for _, r := range pending {
		if _, ok := index[r.Key()]; ok {
			continue
		}
		r.RowID = 0
		records = append(records, r)
	}
	return records
}

// splitUnrecorded separates rows that only exist in the journal.
func splitUnrecorded(records []LedgerRecord) (rows, unrecorded []LedgerRecord) {
	for _, r := range records {
		if r.RowID == 0 {
			unrecorded = append(unrecorded, r)
			continue
		}
		rows = append(rows, r)
	}
	return rows, unrecorded
}

// deleteRows fetches the structural id once and removes rowIDs in a single call.
func (o *Orchestrator) deleteRows(ctx context.Context, rowIDs []int) error {
	structuralID, err := o.ledger.StructuralID(ctx)
	if err != nil {
		return fmt.Errorf("resolve structural id: %w", err)
	}
	return o.writer.BatchDelete(ctx, structuralID, rowIDs)
}

// orphanCandidates narrows records to those whose absence from a listing proves
// deletion: the listing of their primary calendar must be complete and their stored
// times must overlap the window.
func (o *Orchestrator) orphanCandidates(a, b fetchResult, records []LedgerRecord, window Window) []LedgerRecord {
	trusted := map[string]bool{
		a.calendarID: a.complete(),
		b.calendarID: b.complete(),
	}

	eligible := make([]LedgerRecord, 0, len(records))
	for _, r := range records {
		// Journaled mappings have no row to delete; they are judged once replayed.
		if r.RowID == 0 {
			continue
		}
		if !trusted[r.PrimaryCalendarID] {
			continue
		}
		if !InWindow(r, window) {
			continue
		}
		eligible = append(eligible, r)
	}

	return FindOrphans(a.events, b.events, eligible, a.calendarID, b.calendarID)
}

// ReplayJournal inserts the mappings journaled by an earlier pass and clears them.
// It returns the number of rows written.
func (o *Orchestrator) ReplayJournal(ctx context.Context) (int, error) {
	if o.journal == nil {
		return 0, nil
	}

	pending, err := o.journal.Pending()
	if err != nil {
		return 0, fmt.Errorf("read journal: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	if err := o.writer.BatchInsert(ctx, pending); err != nil {
		return 0, err
	}
	if err := o.journal.Clear(pending); err != nil {
		return len(pending), fmt.Errorf("clear journal: %w", err)
	}

	o.logger.Info("Replayed journaled mappings", zap.Int("count", len(pending)))
	return len(pending), nil
}

func (o *Orchestrator) logSummary(s *PassSummary) {
	o.logger.Info("Pass finished",
		zap.Duration("duration", s.FinishedAt.Sub(s.StartedAt)),
		zap.Int("a_to_b_created", s.AToB.Created),
		zap.Int("a_to_b_updated", s.AToB.Updated),
		zap.Int("a_to_b_unchanged", s.AToB.Unchanged),
		zap.Int("b_to_a_created", s.BToA.Created),
		zap.Int("b_to_a_updated", s.BToA.Updated),
		zap.Int("b_to_a_unchanged", s.BToA.Unchanged),
		zap.Int("orphans_deleted", s.OrphansDeleted),
		zap.Int("replayed", s.Replayed),
		zap.Int("errors", s.TotalErrors()))
}

func alertMessage(s *PassSummary) string {
	return fmt.Sprintf(
		"Calendar sync pass finished with %d errors (A->B: %d, B->A: %d, orphans: %d, fetch: %d, ledger: %d)",
		s.TotalErrors(), s.AToB.Errors, s.BToA.Errors, s.OrphanErrors, s.FetchErrors, s.LedgerErrors)
}
