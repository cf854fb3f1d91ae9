package reconcile

import (
	"fmt"
	"strings"
	"time"
)

// LedgerColumnCount is the width of a ledger row.
const LedgerColumnCount = 11

// LedgerHeader names the ledger columns in storage order.
var LedgerHeader = []string{
	"Primary Calendar",
	"Primary Event ID",
	"Secondary Calendar",
	"Secondary Event ID",
	"Summary",
	"Start",
	"End",
	"Signature",
	"Created At",
	"Last Updated",
	"Last Checked",
}

// Row returns the record as a fixed 11-column row.
func (r LedgerRecord) Row() []string {
	return []string{
		r.PrimaryCalendarID,
		r.PrimaryEventID,
		r.SecondaryCalendarID,
		r.SecondaryEventID,
		r.Summary,
		r.Start,
		r.End,
		r.Signature,
		formatTimestamp(r.CreatedAt),
		formatTimestamp(r.LastUpdated),
		formatTimestamp(r.LastChecked),
	}
}

// RecordFromRow parses an 11-column row. Short rows are padded; rows without a
// primary calendar or event id are rejected.
func RecordFromRow(rowID int, cells []string) (LedgerRecord, error) {
	padded := make([]string, LedgerColumnCount)
	copy(padded, cells)
	for i := range padded {
		padded[i] = strings.TrimSpace(padded[i])
	}

	if padded[0] == "" || padded[1] == "" {
		return LedgerRecord{}, fmt.Errorf("row %d: missing primary calendar or event id", rowID)
	}

	return LedgerRecord{
		RowID:               rowID,
		PrimaryCalendarID:   padded[0],
		PrimaryEventID:      padded[1],
		SecondaryCalendarID: padded[2],
		SecondaryEventID:    padded[3],
		Summary:             padded[4],
		Start:               padded[5],
		End:                 padded[6],
		Signature:           padded[7],
		CreatedAt:           parseTimestamp(padded[8]),
		LastUpdated:         parseTimestamp(padded[9]),
		LastChecked:         parseTimestamp(padded[10]),
	}, nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// parseTimestamp returns the zero time for empty or malformed cells; timestamps are
// informational and must not make a row unreadable.
func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
