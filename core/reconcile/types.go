package reconcile

import (
	"encoding/json"
	"time"
)

// Transparency reports whether an event blocks time on the calendar.
type Transparency string

const (
	// TransparencyOpaque marks the time as busy. It is the default when unset.
	TransparencyOpaque Transparency = "opaque"
	// TransparencyTransparent marks the time as free.
	TransparencyTransparent Transparency = "transparent"
)

// Attendee is one guest of an event. Meeting rooms are attendees with IsResource set.
type Attendee struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	IsResource  bool   `json:"is_resource,omitempty"`
}

// CalendarEvent is one event as seen from an external calendar.
// The engine never persists it; it only reads and writes it through a Calendar.
type CalendarEvent struct {
	// ID is assigned by the calendar that owns the event and never changes.
	ID string `json:"id"`

	Summary     string    `json:"summary"`
	Start       EventTime `json:"-"`
	End         EventTime `json:"-"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`

	Attendees      []Attendee   `json:"attendees,omitempty"`
	ConferenceLink string       `json:"conference_link,omitempty"`
	Transparency   Transparency `json:"transparency,omitempty"`
	Status         string       `json:"status,omitempty"`
}

// MarshalJSON renders Start and End in their ledger serialization.
func (e CalendarEvent) MarshalJSON() ([]byte, error) {
	type plain CalendarEvent
	return json.Marshal(struct {
		plain
		Start string `json:"start,omitempty"`
		End   string `json:"end,omitempty"`
	}{plain(e), formatEventTime(e.Start), formatEventTime(e.End)})
}

// LedgerRecord is one tracked primary -> secondary mapping.
// At most one live record exists per (PrimaryCalendarID, PrimaryEventID).
type LedgerRecord struct {
	// RowID addresses the record in the backing store for updates and deletes.
	// It carries no meaning beyond that.
	RowID int `json:"row_id"`

	PrimaryCalendarID   string `json:"primary_calendar_id"`
	PrimaryEventID      string `json:"primary_event_id"`
	SecondaryCalendarID string `json:"secondary_calendar_id"`
	SecondaryEventID    string `json:"secondary_event_id"`

	Summary   string `json:"summary"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Signature string `json:"signature"`

	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
	LastChecked time.Time `json:"last_checked"`
}

// Key returns the identity of the primary event the record tracks.
func (r LedgerRecord) Key() RecordKey {
	return RecordKey{CalendarID: r.PrimaryCalendarID, EventID: r.PrimaryEventID}
}

// RecordKey identifies a primary event across both calendars.
type RecordKey struct {
	CalendarID string
	EventID    string
}

// PendingUpdate pairs a changed source event with the ledger record tracking it.
type PendingUpdate struct {
	Event  CalendarEvent `json:"event"`
	Record LedgerRecord  `json:"record"`
}

// SyncAnalysis is the per-direction classification of source events. Never persisted.
type SyncAnalysis struct {
	ToCreate         []CalendarEvent `json:"to_create"`
	ToUpdate         []PendingUpdate `json:"to_update"`
	Unchanged        int             `json:"unchanged"`
	SkippedDuplicate int             `json:"skipped_duplicate"`
}

// Direction names one side of a pass: events flow from Source onto Target.
type Direction struct {
	SourceCalendarID string
	TargetCalendarID string
	// TitlePrefix is prepended to the title of every copy written to Target.
	TitlePrefix string
}

// String returns "source->target" for logs.
func (d Direction) String() string {
	return d.SourceCalendarID + "->" + d.TargetCalendarID
}

// DirectionStats counts the outcome of one direction.
type DirectionStats struct {
	Created          int `json:"created"`
	Updated          int `json:"updated"`
	Unchanged        int `json:"unchanged"`
	SkippedDuplicate int `json:"skipped_duplicate"`
	Errors           int `json:"errors"`
}

// DirectionResult is the output of SyncDirection. The pending rows have not been
// written to the ledger yet.
type DirectionResult struct {
	Stats          DirectionStats
	PendingInserts []LedgerRecord
	PendingUpdates []LedgerRecord
}

// OrphanResult is the output of DetectOrphans.
type OrphanResult struct {
	Deleted int `json:"deleted"`
	Errors  int `json:"errors"`
	// PendingDeletes holds the ledger row ids whose secondary copy is confirmed gone.
	PendingDeletes []int `json:"pending_deletes"`
}

// Window is the half-open time range [Start, End) a pass fetches events for.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// PassSummary aggregates the statistics of one reconciliation pass.
type PassSummary struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// AToB and BToA hold the per-direction outcome.
	AToB DirectionStats `json:"a_to_b"`
	BToA DirectionStats `json:"b_to_a"`

	OrphansDeleted int `json:"orphans_deleted"`
	OrphanErrors   int `json:"orphan_errors"`

	// FetchErrors counts calendars whose listing failed and degraded to an empty set.
	FetchErrors int `json:"fetch_errors"`

	// LedgerErrors counts batched ledger writes that failed.
	LedgerErrors int `json:"ledger_errors"`

	// Replayed counts journal entries written to the ledger before the pass started.
	Replayed int `json:"replayed"`
}

// TotalErrors returns the sum of every error counter.
func (s PassSummary) TotalErrors() int {
	return s.AToB.Errors + s.BToA.Errors + s.OrphanErrors + s.FetchErrors + s.LedgerErrors
}

// Mutations returns the number of calendar-side creates, updates and deletes.
func (s PassSummary) Mutations() int {
	return s.AToB.Created + s.AToB.Updated + s.BToA.Created + s.BToA.Updated + s.OrphansDeleted
}

// PassPlan is the read-only result of Plan.
type PassPlan struct {
	AToB SyncAnalysis `json:"a_to_b"`
	BToA SyncAnalysis `json:"b_to_a"`

	// Orphans lists ledger records whose primary event disappeared.
	Orphans []LedgerRecord `json:"orphans"`
}
