package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/tfanalyzer/internal/analyzer"
	"github.com/lucasnoah/tfanalyzer/internal/config"
	"github.com/lucasnoah/tfanalyzer/internal/db"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent analysis runs from the history store",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListRuns(limit)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
			return nil
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-6s %-22s %-8s %-8s %-8s %s\n", "ID", "CREATED", "STATUS", "ISSUES", "TIME", "SOURCE")
		for _, run := range runs {
			fmt.Fprintf(w, "%-6d %-22s %-8s %-8d %-8s %s\n",
				run.ID,
				run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				run.Status,
				len(run.Findings),
				(time.Duration(run.DurationMs) * time.Millisecond).String(),
				run.Source,
			)
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().Int("limit", 20, "Maximum number of runs to show")
}

// openHistory opens the run-history store, failing when DATABASE_URL is unset.
func openHistory() (*db.DB, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if settings.DatabaseURL == "" {
		return nil, fmt.Errorf("run history requires DATABASE_URL to be set")
	}
	store, err := db.Open(settings.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open run history store: %w", err)
	}
	return store, nil
}

// recordRun writes one run to the history store when it is configured.
// History is best effort from the CLI: failures are logged, never fatal.
func recordRun(settings *config.Settings, source string, result *analyzer.Result, durationMs int) {
	if settings.DatabaseURL == "" {
		return
	}
	store, err := db.Open(settings.DatabaseURL)
	if err != nil {
		slog.Warn("open run history store", "error", err)
		return
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		slog.Warn("migrate run history store", "error", err)
		return
	}
	if _, err := store.InsertRun(source, result, durationMs); err != nil {
		slog.Warn("record run", "error", err)
	}
}
