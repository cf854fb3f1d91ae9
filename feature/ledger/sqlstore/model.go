package sqlstore

import (
	"time"

	"calendar-sync/core/reconcile"
)

// TableName is the ledger table.
const TableName = "sync_ledger"

// Row is one ledger record as stored. The primary pair is unique.
type Row struct {
	ID                  uint      `gorm:"primaryKey;autoIncrement"`
	PrimaryCalendarID   string    `gorm:"size:255;not null;uniqueIndex:idx_sync_ledger_primary,priority:1"`
	PrimaryEventID      string    `gorm:"size:255;not null;uniqueIndex:idx_sync_ledger_primary,priority:2"`
	SecondaryCalendarID string    `gorm:"size:255;not null"`
	SecondaryEventID    string    `gorm:"size:255"`
	Summary             string    `gorm:"type:text"`
	Start               string    `gorm:"size:64"`
	End                 string    `gorm:"size:64"`
	Signature           string    `gorm:"size:64"`
	CreatedAt           time.Time `gorm:"autoCreateTime:false"`
	LastUpdated         time.Time
	LastChecked         time.Time
}

func (Row) TableName() string {
	return TableName
}

// Columns lists the columns the store reads and writes.
var Columns = []string{
	"id",
	"primary_calendar_id",
	"primary_event_id",
	"secondary_calendar_id",
	"secondary_event_id",
	"summary",
	"start",
	"end",
	"signature",
	"created_at",
	"last_updated",
	"last_checked",
}

func fromRecord(r reconcile.LedgerRecord) Row {
	return Row{
		PrimaryCalendarID:   r.PrimaryCalendarID,
		PrimaryEventID:      r.PrimaryEventID,
		SecondaryCalendarID: r.SecondaryCalendarID,
		SecondaryEventID:    r.SecondaryEventID,
		Summary:             r.Summary,
		Start:               r.Start,
		End:                 r.End,
		Signature:           r.Signature,
		CreatedAt:           r.CreatedAt.UTC(),
		LastUpdated:         r.LastUpdated.UTC(),
		LastChecked:         r.LastChecked.UTC(),
	}
}

func (r Row) record() reconcile.LedgerRecord {
	return reconcile.LedgerRecord{
		RowID:               int(r.ID),
		PrimaryCalendarID:   r.PrimaryCalendarID,
		PrimaryEventID:      r.PrimaryEventID,
		SecondaryCalendarID: r.SecondaryCalendarID,
		SecondaryEventID:    r.SecondaryEventID,
		Summary:             r.Summary,
		Start:               r.Start,
		End:                 r.End,
		Signature:           r.Signature,
		CreatedAt:           r.CreatedAt.UTC(),
		LastUpdated:         r.LastUpdated.UTC(),
		LastChecked:         r.LastChecked.UTC(),
	}
}
