package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/tfanalyzer/internal/analyzer"
	"github.com/lucasnoah/tfanalyzer/internal/config"
	"github.com/lucasnoah/tfanalyzer/internal/llm"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze a local directory or zip archive of Terraform code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		settings, err := config.Load()
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		if errs := config.Validate(settings); len(errs) > 0 {
			return fmt.Errorf("invalid settings: %s", errs[0])
		}
		if err := config.CheckRequiredBinaries(); err != nil {
			return err
		}

		chain, err := llm.NewChainFromSettings(settings)
		if err != nil {
			return fmt.Errorf("configure extraction chain: %w", err)
		}
		an, err := analyzer.New(chain, analyzer.Options{TmpRoot: settings.TmpDir})
		if err != nil {
			return err
		}

		start := time.Now()
		result, err := an.Analyze(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("analyze %s: %w", args[0], err)
		}

		recordRun(settings, args[0], result, int(time.Since(start).Milliseconds()))
		return printResult(cmd, result, format)
	},
}

func init() {
	analyzeCmd.Flags().String("format", "text", "Output format: text, json, or legacy")
}

// printResult renders the analysis result in the requested format.
// Findings are data, not failure: the exit code stays zero either way.
func printResult(cmd *cobra.Command, result *analyzer.Result, format string) error {
	w := cmd.OutOrStdout()

	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case "legacy":
		fmt.Fprintln(w, result.Legacy())
	case "text":
		if result.Status == analyzer.StatusAborted {
			fmt.Fprintln(w, "Analysis aborted before summarization; no findings.")
			return nil
		}
		if len(result.Findings) == 0 {
			fmt.Fprintln(w, "No issues found.")
			return nil
		}
		for _, f := range result.Findings {
			fmt.Fprintf(w, "%s: %s\n", f.FileName, f.Description)
		}
	default:
		return fmt.Errorf("unknown format %q: must be text, json, or legacy", format)
	}
	return nil
}
