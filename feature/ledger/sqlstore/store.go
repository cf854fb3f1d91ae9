package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"calendar-sync/core/database"
	"calendar-sync/core/reconcile"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is a reconcile.Ledger backed by the sync_ledger table.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ reconcile.Ledger = (*Store)(nil)

// New creates a store on db.
func New(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Migrate creates or extends the ledger table.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Row{}); err != nil {
		return fmt.Errorf("migrate %s: %w", TableName, err)
	}
	return nil
}

// CheckSchema fails when the table lacks any column the store uses.
func (s *Store) CheckSchema(ctx context.Context) error {
	missing, err := database.MissingColumns(s.db.WithContext(ctx), TableName, Columns)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s is missing columns: %s", TableName, strings.Join(missing, ", "))
	}
	return nil
}

// LoadAll returns every row ordered by id.
func (s *Store) LoadAll(ctx context.Context) ([]reconcile.LedgerRecord, error) {
	var rows []Row
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	records := make([]reconcile.LedgerRecord, len(rows))
	for i, r := range rows {
		records[i] = r.record()
	}
	return records, nil
}

// BatchInsert inserts records in one statement. A record whose primary pair already
// exists overwrites that row, so a replayed journal entry cannot duplicate it.
func (s *Store) BatchInsert(ctx context.Context, records []reconcile.LedgerRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = fromRecord(r)
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "primary_calendar_id"}, {Name: "primary_event_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"secondary_calendar_id", "secondary_event_id", "summary", "start", "end",
				"signature", "last_updated", "last_checked",
			}),
		}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("insert %d ledger rows: %w", len(records), err)
	}
	return nil
}

// BatchUpdate rewrites rows by id in one transaction.
func (s *Store) BatchUpdate(ctx context.Context, records []reconcile.LedgerRecord) error {
	if len(records) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range records {
			if r.RowID <= 0 {
				return fmt.Errorf("invalid row id %d", r.RowID)
			}
			row := fromRecord(r)
			res := tx.Model(&Row{}).Where("id = ?", r.RowID).Updates(map[string]any{
				"secondary_calendar_id": row.SecondaryCalendarID,
				"secondary_event_id":    row.SecondaryEventID,
				"summary":               row.Summary,
				"start":                 row.Start,
				"end":                   row.End,
				"signature":             row.Signature,
				"last_updated":          row.LastUpdated,
				"last_checked":          row.LastChecked,
			})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				s.logger.Warn("Ledger row vanished before update", zap.Int("row_id", r.RowID))
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update %d ledger rows: %w", len(records), err)
	}
	return nil
}

// BatchDelete removes rows by id in one statement. The structural id is ignored.
func (s *Store) BatchDelete(ctx context.Context, _ int64, rowIDs []int) error {
	if len(rowIDs) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", rowIDs).Delete(&Row{}).Error; err != nil {
		return fmt.Errorf("delete %d ledger rows: %w", len(rowIDs), err)
	}
	return nil
}

// StructuralID is always zero for a table.
func (s *Store) StructuralID(context.Context) (int64, error) {
	return 0, nil
}
