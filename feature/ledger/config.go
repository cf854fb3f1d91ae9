package ledger

import (
	"errors"
	"fmt"
)

// Backend names a ledger implementation.
const (
	BackendSheets = "sheets"
	BackendSQL    = "sql"
)

// Config holds the ledger section of the configuration.
type Config struct {
	// Backend selects the store: "sheets" or "sql".
	Backend string `mapstructure:"backend" default:"sheets"`
	// SpreadsheetID is the spreadsheet holding the ledger sheet.
	SpreadsheetID string `mapstructure:"spreadsheet_id" default:""`
	// SheetName is the tab rows live in.
	SheetName string `mapstructure:"sheet_name" default:"Ledger"`
}

// Validate checks the fields the selected backend needs.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendSheets:
		if c.SpreadsheetID == "" {
			return errors.New("ledger.spreadsheet_id is required for the sheets backend")
		}
		if c.SheetName == "" {
			return errors.New("ledger.sheet_name is required for the sheets backend")
		}
		return nil
	case BackendSQL:
		return nil
	default:
		return fmt.Errorf("unknown ledger backend %q", c.Backend)
	}
}
