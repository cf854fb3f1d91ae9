package reconcile

import (
	"context"
	"time"

	"calendar-sync/core/batch"

	"go.uber.org/zap"
)

// DeleteTolerant deletes eventID and treats ErrEventGone as success.
func DeleteTolerant(ctx context.Context, cal Calendar, calendarID, eventID string) error {
	if err := cal.DeleteEvent(ctx, calendarID, eventID); err != nil && !IsGone(err) {
		return err
	}
	return nil
}

// OrphanDetector removes the copies of primary events that no longer exist.
type OrphanDetector struct {
	calendar Calendar
	logger   *zap.Logger
	batch    batch.Options
}

// NewOrphanDetector creates a detector. A nil logger discards logs.
func NewOrphanDetector(calendar Calendar, opts batch.Options, logger *zap.Logger) *OrphanDetector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrphanDetector{calendar: calendar, logger: logger, batch: opts}
}

// FindOrphans returns the records whose primary calendar is calendarAID or
// calendarBID and whose primary event is missing from that calendar's events.
// Records of any other calendar are never orphans.
func FindOrphans(eventsA, eventsB []CalendarEvent, records []LedgerRecord, calendarAID, calendarBID string) []LedgerRecord {
	present := map[string]map[string]struct{}{
		calendarAID: idSet(eventsA),
		calendarBID: idSet(eventsB),
	}

	var orphans []LedgerRecord
	for _, r := range records {
		ids, known := present[r.PrimaryCalendarID]
		if !known {
			continue
		}
		if _, ok := ids[r.PrimaryEventID]; !ok {
			orphans = append(orphans, r)
		}
	}
	return orphans
}

// DetectOrphans deletes the secondary copy of every orphan. A row id is returned
// for deletion only once its copy is confirmed gone; a failed delete keeps the row
// so the next pass retries it.
func (d *OrphanDetector) DetectOrphans(ctx context.Context, eventsA, eventsB []CalendarEvent, records []LedgerRecord, calendarAID, calendarBID string) OrphanResult {
	return d.deleteOrphans(ctx, FindOrphans(eventsA, eventsB, records, calendarAID, calendarBID))
}

func (d *OrphanDetector) deleteOrphans(ctx context.Context, orphans []LedgerRecord) OrphanResult {
	var result OrphanResult
	if len(orphans) == 0 {
		return result
	}

	results := batch.ProcessInBatches(ctx, orphans, d.batch,
		func(ctx context.Context, r LedgerRecord) (struct{}, error) {
			if r.SecondaryEventID == "" {
				return struct{}{}, nil
			}
			return struct{}{}, DeleteTolerant(ctx, d.calendar, r.SecondaryCalendarID, r.SecondaryEventID)
		})

	for i, res := range results {
		r := orphans[i]
		if res.Err != nil {
			result.Errors++
			d.logger.Error("Failed to delete orphaned mirror",
				zap.String("calendar_id", r.PrimaryCalendarID),
				zap.String("event_id", r.PrimaryEventID),
				zap.String("secondary_event_id", r.SecondaryEventID),
				zap.Int("row_id", r.RowID),
				zap.Error(res.Err))
			continue
		}
		result.Deleted++
		result.PendingDeletes = append(result.PendingDeletes, r.RowID)
	}

	d.logger.Info("Orphans processed",
		zap.Int("deleted", result.Deleted),
		zap.Int("errors", result.Errors))

	return result
}

// InWindow reports whether the stored times of r overlap window. Records whose
// times cannot be parsed count as inside.
func InWindow(r LedgerRecord, window Window) bool {
	start, err := ParseEventTime(r.Start)
	if err != nil || start == nil {
		return true
	}
	end, err := ParseEventTime(r.End)
	if err != nil || end == nil {
		end = start
	}

	endAt := end.Time()
	if _, allDay := end.(AllDay); !allDay && endAt.Equal(start.Time()) {
		// Zero-length events still occupy their instant.
		endAt = endAt.Add(time.Nanosecond)
	}
	return endAt.After(window.Start) && start.Time().Before(window.End)
}

func idSet(events []CalendarEvent) map[string]struct{} {
	set := make(map[string]struct{}, len(events))
	for _, e := range events {
		if e.ID != "" {
			set[e.ID] = struct{}{}
		}
	}
	return set
}
