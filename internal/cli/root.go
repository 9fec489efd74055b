package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "wfr",
	Short: "Workflow Radar - workflow canonicalization and reconciliation",
	Long: `Workflow Radar (wfr) tracks business workflows inferred from upstream
communication extracts. It canonicalizes noisy per-run instances against
curated catalogs, enriches them with progress and health signals, and
reconciles them into a persistent cross-run workflow store.

It provides CLI commands for enriching run instances, reconciling them
into the store, inspecting the compiled catalogs, and summarizing the
tracked workflows.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wfr %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
