package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/workflow-radar/internal/core"
	"github.com/valter-silva-au/workflow-radar/internal/observability"
	"github.com/valter-silva-au/workflow-radar/pkg/models"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <run-dir>",
	Short: "Canonicalize and enrich the instances of one run",
	Long: `Enrich the raw instances in a run directory against the compiled
catalogs: canonicalize client, role, and process; match the current step;
fill the per-step state map; and compute health from the last-activity
timestamp. Writes the enriched instances and an enrichment stats summary
back into the run directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, count, err := runEnrich(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Enriched %d instances in %s\n", count, args[0])
		fmt.Printf("  canonical process: %.1f%%\n", stats.Coverage.CanonicalProcessPct*100)
		fmt.Printf("  steps state:       %.1f%%\n", stats.Coverage.StepsStatePct*100)
		fmt.Printf("  health known:      %.1f%%\n", stats.Coverage.HealthPct*100)
		return nil
	},
}

// runEnrich executes the enrichment stage against one run directory and
// returns the stats and the instance count.
func runEnrich(runDir string) (*models.EnrichmentStats, int, error) {
	if RunStore == nil {
		return nil, 0, fmt.Errorf("run store not initialized")
	}
	processes, clients, roles, err := loadCatalogs()
	if err != nil {
		return nil, 0, err
	}
	instances, err := RunStore.LoadInstances(runDir)
	if err != nil {
		return nil, 0, fmt.Errorf("loading instances: %w", err)
	}

	enricher := core.NewInstanceEnricher(processes, clients, roles)
	enriched, stats := enricher.Enrich(instances, time.Now().UTC())

	if err := RunStore.SaveInstances(runDir, enriched); err != nil {
		return nil, 0, fmt.Errorf("saving enriched instances: %w", err)
	}
	if err := RunStore.WriteEnrichmentStats(runDir, stats); err != nil {
		return nil, 0, fmt.Errorf("writing enrichment stats: %w", err)
	}

	logEvent(observability.EventRunEnriched, "", map[string]any{
		"run_dir":   runDir,
		"instances": len(enriched),
	})
	return stats, len(enriched), nil
}

// logEvent writes one event if the event log is enabled.
func logEvent(eventType, runID string, data map[string]any) {
	if EventLog == nil {
		return
	}
	_ = EventLog.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   "INFO",
		Type:    eventType,
		RunID:   runID,
		Message: eventType,
		Data:    data,
	})
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}
