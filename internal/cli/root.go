package cli

import (
	"github.com/spf13/cobra"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "tfanalyzer",
	Short: "LLM-assisted static analysis for Terraform and OpenTofu code",
	Long: `tfanalyzer runs terraform validate and tflint over a source tree (a local
directory, a zip archive, or a GitHub repository) and condenses their raw
output into a clean, deduplicated list of error findings via an LLM.

LLM credentials are read from the environment or a .env file; provide either
OPENAI_API_KEY or the full AZURE_OPENAI_* set. Set DATABASE_URL to keep a
history of analysis runs in Postgres.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(dbCmd)
}
