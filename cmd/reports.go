package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reportsLimit int

// reportsCmd groups commands on archived pass reports.
var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List and prune archived pass reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print archived reports, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rt, err := newReportsRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		entries, err := rt.archive.List(ctx, reportsLimit)
		if err != nil {
			return err
		}
		return printJSON(entries)
	},
}

var reportsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete reports beyond report.keep",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rt, err := newReportsRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		removed, err := rt.archive.Prune(ctx)
		if err != nil {
			return err
		}
		rt.logger.Info("Reports pruned", zap.Int("removed", removed), zap.Int("keep", rt.cfg.Report.Keep))
		return nil
	},
}

// newReportsRuntime builds only the archive; no calendar or ledger access is needed.
func newReportsRuntime(ctx context.Context) (*runtime, error) {
	cfg, l, err := loadBase()
	if err != nil {
		return nil, err
	}
	if !cfg.Report.Enabled {
		return nil, errors.New("report archiving is disabled (report.enabled=false)")
	}
	archive, err := newArchive(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to open report archive: %w", err)
	}
	return &runtime{cfg: cfg, logger: l, archive: archive}, nil
}

func init() {
	reportsListCmd.Flags().IntVar(&reportsLimit, "limit", 20, "Maximum number of reports to print")
	reportsCmd.AddCommand(reportsListCmd, reportsPruneCmd)
	RootCmd.AddCommand(reportsCmd)
}
