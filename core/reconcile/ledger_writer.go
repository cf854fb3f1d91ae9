package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// LedgerWriteError is returned when a batched insert fails after the calendar copies
// were created. Records lists every mapping that is now untracked.
type LedgerWriteError struct {
	Records []LedgerRecord
	Err     error
}

func (e *LedgerWriteError) Error() string {
	pairs := make([]string, 0, len(e.Records))
	for _, r := range e.Records {
		pairs = append(pairs, fmt.Sprintf("%s/%s=>%s/%s", r.PrimaryCalendarID, r.PrimaryEventID, r.SecondaryCalendarID, r.SecondaryEventID))
	}
	return fmt.Sprintf("ledger insert of %d records failed [%s]: %v", len(e.Records), strings.Join(pairs, ", "), e.Err)
}

func (e *LedgerWriteError) Unwrap() error {
	return e.Err
}

// LedgerWriter turns pending mutations into the fewest possible ledger calls.
type LedgerWriter struct {
	ledger Ledger
	logger *zap.Logger
}

// NewLedgerWriter wraps ledger. A nil logger discards logs.
func NewLedgerWriter(ledger Ledger, logger *zap.Logger) *LedgerWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerWriter{ledger: ledger, logger: logger}
}

// BatchInsert appends records in one call. A failure returns a *LedgerWriteError.
func (w *LedgerWriter) BatchInsert(ctx context.Context, records []LedgerRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := w.ledger.BatchInsert(ctx, records); err != nil {
		werr := &LedgerWriteError{Records: records, Err: err}
		for _, r := range records {
			w.logger.Error("Mirror created but not recorded",
				zap.String("calendar_id", r.PrimaryCalendarID),
				zap.String("event_id", r.PrimaryEventID),
				zap.String("secondary_calendar_id", r.SecondaryCalendarID),
				zap.String("secondary_event_id", r.SecondaryEventID))
		}
		return werr
	}
	w.logger.Debug("Ledger rows inserted", zap.Int("count", len(records)))
	return nil
}

// BatchUpdate rewrites records in place in one call.
func (w *LedgerWriter) BatchUpdate(ctx context.Context, records []LedgerRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := w.ledger.BatchUpdate(ctx, records); err != nil {
		return fmt.Errorf("ledger update of %d records: %w", len(records), err)
	}
	w.logger.Debug("Ledger rows updated", zap.Int("count", len(records)))
	return nil
}

// BatchDelete removes rowIDs in one structural call, highest row first so earlier
// removals never shift the rows still to be removed.
func (w *LedgerWriter) BatchDelete(ctx context.Context, structuralID int64, rowIDs []int) error {
	if len(rowIDs) == 0 {
		return nil
	}
	ordered := DescendingRows(rowIDs)
	if err := w.ledger.BatchDelete(ctx, structuralID, ordered); err != nil {
		return fmt.Errorf("ledger delete of rows %v: %w", ordered, err)
	}
	w.logger.Debug("Ledger rows deleted", zap.Ints("row_ids", ordered))
	return nil
}

// DescendingRows returns the distinct row ids sorted from highest to lowest.
func DescendingRows(rowIDs []int) []int {
	seen := make(map[int]struct{}, len(rowIDs))
	out := make([]int, 0, len(rowIDs))
	for _, id := range rowIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}
