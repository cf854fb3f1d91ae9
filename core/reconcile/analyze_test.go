package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	tracked := standup()
	changed := standup()
	changed.ID = "e2"
	untracked := standup()
	untracked.ID = "e3"
	copyOfB := standup()
	copyOfB.ID = "e4"
	copyOfB.Description = "x\n\n" + SyncMarker
	invited := standup()
	invited.ID = "e5"
	invited.Attendees = []Attendee{{Email: "b@example.com"}}
	noID := standup()
	noID.ID = ""

	records := []LedgerRecord{
		{RowID: 2, PrimaryCalendarID: "a@example.com", PrimaryEventID: "e1", Signature: ComputeSignature(tracked)},
		{RowID: 3, PrimaryCalendarID: "a@example.com", PrimaryEventID: "e2", Signature: "stale"},
		// Same event id on the other calendar must not match.
		{RowID: 4, PrimaryCalendarID: "b@example.com", PrimaryEventID: "e3", Signature: ComputeSignature(untracked)},
	}

	analysis := Analyze([]CalendarEvent{tracked, changed, untracked, copyOfB, invited, noID}, records, "a@example.com", "b@example.com")

	require.Len(t, analysis.ToCreate, 1)
	assert.Equal(t, "e3", analysis.ToCreate[0].ID)

	require.Len(t, analysis.ToUpdate, 1)
	assert.Equal(t, "e2", analysis.ToUpdate[0].Event.ID)
	assert.Equal(t, 3, analysis.ToUpdate[0].Record.RowID)

	assert.Equal(t, 1, analysis.Unchanged)
	assert.Equal(t, 2, analysis.SkippedDuplicate)
}

func TestAnalyze_EmptyInputs(t *testing.T) {
	analysis := Analyze(nil, nil, "a", "b")
	assert.Empty(t, analysis.ToCreate)
	assert.Empty(t, analysis.ToUpdate)
	assert.Zero(t, analysis.Unchanged)
}
