package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ledgerCmd groups ledger maintenance commands.
var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect and repair the sync ledger",
}

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every ledger record as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		records, err := rt.ledger.LoadAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to load ledger: %w", err)
		}
		rt.logger.Info("Ledger loaded", zap.Int("records", len(records)))
		return printJSON(records)
	},
}

var ledgerPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Print journaled rows waiting to be written to the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(context.Background())
		if err != nil {
			return err
		}
		defer rt.Close()
		if rt.journal == nil {
			return errJournalDisabled
		}

		pending, err := rt.journal.Pending()
		if err != nil {
			return err
		}
		rt.logger.Info("Journal read", zap.Int("pending", len(pending)))
		return printJSON(pending)
	},
}

var ledgerReplayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Write journaled rows to the ledger now",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()
		if rt.journal == nil {
			return errJournalDisabled
		}

		n, err := rt.engine.ReplayJournal(ctx)
		if err != nil {
			return fmt.Errorf("failed to replay journal: %w", err)
		}
		rt.logger.Info("Journal replayed", zap.Int("rows", n))
		return nil
	},
}

func init() {
	ledgerCmd.AddCommand(ledgerListCmd, ledgerPendingCmd, ledgerReplayCmd)
	RootCmd.AddCommand(ledgerCmd)
}
