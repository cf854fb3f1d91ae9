package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"calendar-sync/core/reconcile"
	"calendar-sync/feature/mirror"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncDryRun bool
	syncJSON   bool
)

// syncCmd runs a single pass.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one reconciliation pass",
	Long: `Mirrors events between the two configured calendars once and exits.

With --dry-run nothing is written: the command prints what each direction would
create or update and which ledger records would be removed as orphans.

Examples:
  # Run a pass
  calendar-sync sync

  # Show the plan only
  calendar-sync sync --dry-run --json`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Plan only, write nothing")
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "Print the result as JSON on stdout")
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if syncDryRun || rt.cfg.Sync.DryRun {
		plan, err := rt.engine.Plan(ctx)
		if err != nil {
			return fmt.Errorf("failed to plan: %w", err)
		}
		printPlan(rt.logger, plan)
		if syncJSON {
			return printJSON(plan)
		}
		return nil
	}

	result, err := rt.service(nil).Run(ctx, mirror.TriggerCLI)
	if err != nil {
		return err
	}
	if syncJSON {
		if err := printJSON(result); err != nil {
			return err
		}
	}
	if result.Error != "" {
		return fmt.Errorf("%w: %s", errPassFailed, result.Error)
	}
	if result.Summary.TotalErrors() > 0 {
		return fmt.Errorf("%w: %d errors", errPassFailed, result.Summary.TotalErrors())
	}
	return nil
}

// printPlan logs the plan counts per direction.
func printPlan(l *zap.Logger, plan *reconcile.PassPlan) {
	directions := []struct {
		name     string
		analysis reconcile.SyncAnalysis
	}{{"a_to_b", plan.AToB}, {"b_to_a", plan.BToA}}

	for _, d := range directions {
		a := d.analysis
		l.Info("Planned direction",
			zap.String("direction", d.name),
			zap.Int("create", len(a.ToCreate)),
			zap.Int("update", len(a.ToUpdate)),
			zap.Int("unchanged", a.Unchanged),
			zap.Int("skipped_duplicate", a.SkippedDuplicate))
	}
	l.Info("Planned orphan cleanup", zap.Int("orphans", len(plan.Orphans)))
	l.Info("Dry-run mode: No changes were made.")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
