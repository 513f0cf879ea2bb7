package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/tfanalyzer/internal/analyzer"
	"github.com/lucasnoah/tfanalyzer/internal/config"
	"github.com/lucasnoah/tfanalyzer/internal/db"
	"github.com/lucasnoah/tfanalyzer/internal/llm"
	"github.com/lucasnoah/tfanalyzer/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		if cmd.Flags().Changed("host") {
			settings.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			settings.Port, _ = cmd.Flags().GetInt("port")
		}
		if errs := config.Validate(settings); len(errs) > 0 {
			msgs := make([]string, len(errs))
			for i, e := range errs {
				msgs[i] = e.Error()
			}
			return fmt.Errorf("invalid settings:\n  %s", strings.Join(msgs, "\n  "))
		}
		if err := config.CheckRequiredBinaries(); err != nil {
			return err
		}

		var history *db.DB
		if settings.DatabaseURL != "" {
			history, err = db.Open(settings.DatabaseURL)
			if err != nil {
				return fmt.Errorf("open run history store: %w", err)
			}
			defer history.Close()
			if err := history.Migrate(); err != nil {
				return fmt.Errorf("migrate run history store: %w", err)
			}
			slog.Info("run history enabled")
		}

		chain, err := llm.NewChainFromSettings(settings)
		if err != nil {
			return fmt.Errorf("configure extraction chain: %w", err)
		}
		an, err := analyzer.New(chain, analyzer.Options{TmpRoot: settings.TmpDir})
		if err != nil {
			return err
		}

		server := web.NewServer(an, web.GithubFetcher{}, settings, history)
		return server.Start()
	},
}

func init() {
	serveCmd.Flags().String("host", "", "Bind address (overrides settings)")
	serveCmd.Flags().Int("port", 0, "Bind port (overrides settings)")
}
