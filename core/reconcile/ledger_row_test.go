package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRecord_RowRoundTrip(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	record := LedgerRecord{
		RowID:               5,
		PrimaryCalendarID:   "a@example.com",
		PrimaryEventID:      "e1",
		SecondaryCalendarID: "b@example.com",
		SecondaryEventID:    "m1",
		Summary:             "Standup",
		Start:               "2026-10-19T09:00:00Z",
		End:                 "2026-10-19T09:30:00Z",
		Signature:           "abc",
		CreatedAt:           now,
		LastUpdated:         now,
		LastChecked:         now,
	}

	row := record.Row()
	require.Len(t, row, LedgerColumnCount)
	require.Len(t, LedgerHeader, LedgerColumnCount)

	parsed, err := RecordFromRow(5, row)
	require.NoError(t, err)
	assert.Equal(t, record, parsed)
}

func TestRecordFromRow_ShortAndInvalid(t *testing.T) {
	parsed, err := RecordFromRow(3, []string{"a@example.com", " e1 ", "b@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "e1", parsed.PrimaryEventID)
	assert.Empty(t, parsed.Signature)
	assert.True(t, parsed.CreatedAt.IsZero())

	_, err = RecordFromRow(4, []string{"a@example.com"})
	assert.Error(t, err)

	_, err = RecordFromRow(4, nil)
	assert.Error(t, err)
}

func TestRecordFromRow_MalformedTimestamp(t *testing.T) {
	row := make([]string, LedgerColumnCount)
	row[0], row[1], row[8] = "a", "e1", "yesterday"

	parsed, err := RecordFromRow(2, row)
	require.NoError(t, err)
	assert.True(t, parsed.CreatedAt.IsZero())
}
