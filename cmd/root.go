package cmd

import (
	"os"

	"calendar-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "calendar-sync",
	Short: "Two-way calendar mirroring",
	Long: `calendar-sync keeps two calendars in step: every event on one side gets a
prefixed, attendee-free copy on the other. A ledger tracks which copy belongs to
which original so edits propagate and deletions clean up after themselves.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		l := logger.CLI()
		l.Error("command failed", zap.Error(err))
		_ = l.Sync()
		os.Exit(1)
	}
}
