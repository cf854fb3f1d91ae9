package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"calendar-sync/core/gapi"
	"calendar-sync/core/reconcile"
	"calendar-sync/core/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	lastColumn   = "K"
	firstDataRow = 2
)

// Store is a reconcile.Ledger backed by one sheet of a spreadsheet.
type Store struct {
	svc           *sheets.Service
	guard         *gapi.Guard
	logger        *zap.Logger
	spreadsheetID string
	sheetName     string

	sf      singleflight.Group
	mu      sync.Mutex
	sheetID *int64
}

var _ reconcile.Ledger = (*Store)(nil)

// New creates a store for sheetName in spreadsheetID.
func New(ctx context.Context, cfg gapi.Config, spreadsheetID, sheetName string, logger *zap.Logger, opts ...option.ClientOption) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc, err := sheets.NewService(ctx, append(cfg.ClientOptions(sheets.SpreadsheetsScope), opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Store{
		svc:           svc,
		guard:         gapi.NewGuard("google-sheets", cfg, logger),
		logger:        logger,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// a1 returns an A1 range on the ledger sheet.
func (s *Store) a1(cells string) string {
	return "'" + strings.ReplaceAll(s.sheetName, "'", "''") + "'!" + cells
}

// EnsureHeader writes the column header when row 1 is empty.
func (s *Store) EnsureHeader(ctx context.Context) error {
	var vr *sheets.ValueRange
	err := s.guard.Do(ctx, func() error {
		var err error
		vr, err = s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.a1("A1:"+lastColumn+"1")).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("read ledger header: %w", err)
	}
	if len(vr.Values) > 0 && len(vr.Values[0]) > 0 {
		return nil
	}

	header := &sheets.ValueRange{Values: [][]interface{}{toCells(reconcile.LedgerHeader)}}
	err = s.guard.Do(ctx, func() error {
		_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.a1("A1:"+lastColumn+"1"), header).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("write ledger header: %w", err)
	}
	s.logger.Info("Wrote ledger header", zap.String("sheet", s.sheetName))
	return nil
}

// LoadAll reads every record row. Rows without primary ids are skipped.
func (s *Store) LoadAll(ctx context.Context) ([]reconcile.LedgerRecord, error) {
	var vr *sheets.ValueRange
	err := s.guard.Do(ctx, func() error {
		var err error
		vr, err = s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.a1(fmt.Sprintf("A%d:%s", firstDataRow, lastColumn))).
			ValueRenderOption("FORMATTED_VALUE").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	records := make([]reconcile.LedgerRecord, 0, len(vr.Values))
	for i, row := range vr.Values {
		rowID := i + firstDataRow
		record, err := reconcile.RecordFromRow(rowID, utils.ToStrings(row))
		if err != nil {
			if len(row) > 0 {
				s.logger.Warn("Skipping invalid ledger row", zap.Int("row", rowID), zap.Error(err))
			}
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// BatchInsert appends records in one request.
func (s *Store) BatchInsert(ctx context.Context, records []reconcile.LedgerRecord) error {
	if len(records) == 0 {
		return nil
	}
	values := make([][]interface{}, len(records))
	for i, r := range records {
		values[i] = toCells(r.Row())
	}

	err := s.guard.Do(ctx, func() error {
		_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.a1("A1:"+lastColumn), &sheets.ValueRange{Values: values}).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("append %d ledger rows: %w", len(records), err)
	}
	return nil
}

// BatchUpdate rewrites rows in place in one request.
func (s *Store) BatchUpdate(ctx context.Context, records []reconcile.LedgerRecord) error {
	if len(records) == 0 {
		return nil
	}
	data := make([]*sheets.ValueRange, 0, len(records))
	for _, r := range records {
		if r.RowID < firstDataRow {
			return fmt.Errorf("update ledger: invalid row id %d", r.RowID)
		}
		data = append(data, &sheets.ValueRange{
			Range:  s.a1(fmt.Sprintf("A%d:%s%d", r.RowID, lastColumn, r.RowID)),
			Values: [][]interface{}{toCells(r.Row())},
		})
	}

	req := &sheets.BatchUpdateValuesRequest{ValueInputOption: "RAW", Data: data}
	err := s.guard.Do(ctx, func() error {
		_, err := s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("update %d ledger rows: %w", len(records), err)
	}
	return nil
}

// BatchDelete removes rows with one DeleteDimension request each, applied in the
// order given. Descending ids keep the remaining targets at their positions.
func (s *Store) BatchDelete(ctx context.Context, structuralID int64, rowIDs []int) error {
	if len(rowIDs) == 0 {
		return nil
	}
	requests := make([]*sheets.Request, 0, len(rowIDs))
	for _, row := range rowIDs {
		if row < firstDataRow {
			return fmt.Errorf("delete ledger rows: invalid row id %d", row)
		}
		requests = append(requests, &sheets.Request{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    structuralID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		})
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}
	err := s.guard.Do(ctx, func() error {
		_, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete %d ledger rows: %w", len(rowIDs), err)
	}
	return nil
}

// StructuralID returns the numeric sheet id of the ledger tab. It is looked up once
// and cached; concurrent callers share one request.
func (s *Store) StructuralID(ctx context.Context) (int64, error) {
	s.mu.Lock()
	if s.sheetID != nil {
		id := *s.sheetID
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	v, err, _ := s.sf.Do("sheet-id", func() (interface{}, error) {
		id, err := s.lookupSheetID(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.sheetID = &id
		s.mu.Unlock()
		return id, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

func (s *Store) lookupSheetID(ctx context.Context) (int64, error) {
	var doc *sheets.Spreadsheet
	err := s.guard.Do(ctx, func() error {
		var err error
		doc, err = s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet %s: %w", s.spreadsheetID, err)
	}
	for _, sh := range doc.Sheets {
		if sh.Properties != nil && sh.Properties.Title == s.sheetName {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet %s", s.sheetName, s.spreadsheetID)
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

// BreakerState reports the circuit breaker state for health checks.
func (s *Store) BreakerState() string {
	return s.guard.State().String()
}
