package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/workflow-radar/internal/observability"
)

var runCmd = &cobra.Command{
	Use:   "run <run-dir>",
	Short: "Enrich and reconcile one run end to end",
	Long: `Run the full pipeline against a run directory: enrich the raw
instances against the catalogs, then reconcile the enriched instances
into the persistent workflow store and write the run reports.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runDir := args[0]
		runID := uuid.NewString()
		logEvent(observability.EventRunStarted, runID, map[string]any{"run_dir": runDir})

		stats, count, err := runEnrich(runDir)
		if err != nil {
			logEvent(observability.EventRunFailed, runID, map[string]any{
				"run_dir": runDir,
				"stage":   "enrich",
				"error":   err.Error(),
			})
			return fmt.Errorf("enriching run: %w", err)
		}
		fmt.Printf("Enriched %d instances (process %.1f%%, steps %.1f%%, health %.1f%%)\n",
			count,
			stats.Coverage.CanonicalProcessPct*100,
			stats.Coverage.StepsStatePct*100,
			stats.Coverage.HealthPct*100)

		result, err := runReconcile(runDir)
		if err != nil {
			logEvent(observability.EventRunFailed, runID, map[string]any{
				"run_dir": runDir,
				"stage":   "reconcile",
				"error":   err.Error(),
			})
			return fmt.Errorf("reconciling run: %w", err)
		}
		if result == nil {
			fmt.Println("Reconciliation is disabled; store left untouched.")
			return nil
		}
		printReconcileSummary(result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
