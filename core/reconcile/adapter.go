package reconcile

import (
	"context"
	"errors"
)

// ErrEventGone is returned by Calendar implementations when the event no longer exists
// or has been cancelled. Deletes treat it as success.
var ErrEventGone = errors.New("event already gone")

// Calendar defines the calendar operations the engine needs.
// Implementations must map "not found", "gone" and tombstoned responses to ErrEventGone.
type Calendar interface {
	// ListEvents returns up to maxResults events of calendarID overlapping window.
	ListEvents(ctx context.Context, calendarID string, window Window, maxResults int) ([]CalendarEvent, error)

	// CreateEvent creates event on calendarID and returns the id assigned to it.
	CreateEvent(ctx context.Context, calendarID string, event CalendarEvent) (string, error)

	// UpdateEvent replaces the event eventID on calendarID.
	UpdateEvent(ctx context.Context, calendarID, eventID string, event CalendarEvent) error

	// DeleteEvent removes eventID from calendarID.
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// Ledger defines the tracking store. Every method maps to a single call against the
// backing store, whatever the number of rows.
type Ledger interface {
	// LoadAll returns every tracked record with its RowID populated.
	LoadAll(ctx context.Context) ([]LedgerRecord, error)

	// BatchInsert appends records. RowID is ignored.
	BatchInsert(ctx context.Context, records []LedgerRecord) error

	// BatchUpdate rewrites each record in place, addressed by RowID.
	BatchUpdate(ctx context.Context, records []LedgerRecord) error

	// BatchDelete removes rows in the order given. Callers pass descending row ids.
	BatchDelete(ctx context.Context, structuralID int64, rowIDs []int) error

	// StructuralID returns the identifier of the structure rows live in (a sheet id).
	StructuralID(ctx context.Context) (int64, error)
}

// Notifier is the alerting collaborator. Notify is best effort and must not panic
// or block for longer than its own transport timeout.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Journal keeps ledger rows whose insert failed after the calendar copy was created,
// so the next pass can write them before loading the ledger.
type Journal interface {
	Record(records []LedgerRecord) error
	Pending() ([]LedgerRecord, error)
	Clear(records []LedgerRecord) error
}

// IsGone reports whether err means the event no longer exists.
func IsGone(err error) bool {
	return errors.Is(err, ErrEventGone)
}

// nopNotifier is used when no Notifier is configured.
type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string) {}
