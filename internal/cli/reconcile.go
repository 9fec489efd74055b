package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/workflow-radar/internal/core"
	"github.com/valter-silva-au/workflow-radar/internal/observability"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <run-dir>",
	Short: "Reconcile enriched instances into the workflow store",
	Long: `Reconcile the enriched instances of a run directory into the
persistent workflow store. Instances match existing workflows by exact
canonical key, then by fuzzy display-key similarity; unmatched in-scope
instances create new workflows with stable content-derived ids.

Writes the updated store atomically, a run-scoped snapshot, and the
coverage, reconciliation, and mapping-drift reports.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runReconcile(args[0])
		if err != nil {
			return err
		}
		if result == nil {
			fmt.Println("Reconciliation is disabled; nothing written.")
			return nil
		}
		printReconcileSummary(result)
		return nil
	},
}

// runReconcile executes the reconciliation stage against one run
// directory. A nil result with nil error means reconciliation is
// disabled by configuration.
func runReconcile(runDir string) (*core.ReconcileResult, error) {
	if RunStore == nil || StoreMgr == nil || Config == nil {
		return nil, fmt.Errorf("stores not initialized")
	}
	if !Config.Enabled {
		return nil, nil
	}

	def, err := loadDefinition()
	if err != nil {
		return nil, err
	}
	instances, err := RunStore.LoadInstances(runDir)
	if err != nil {
		return nil, fmt.Errorf("loading instances: %w", err)
	}
	timeline, err := RunStore.LoadTimeline(runDir)
	if err != nil {
		return nil, fmt.Errorf("loading timeline: %w", err)
	}
	store, err := StoreMgr.Load()
	if err != nil {
		return nil, fmt.Errorf("loading workflow store: %w", err)
	}

	engine := core.NewReconciliationEngine(def, *Config)
	result := engine.Reconcile(instances, timeline, store.Workflows)

	store.Workflows = result.Workflows
	if err := StoreMgr.Save(store); err != nil {
		return nil, fmt.Errorf("saving workflow store: %w", err)
	}
	if err := StoreMgr.SaveSnapshot(runDir, store); err != nil {
		return nil, fmt.Errorf("saving store snapshot: %w", err)
	}
	if err := RunStore.WriteReport(runDir, Config.Reports.CoverageName, result.Coverage); err != nil {
		return nil, err
	}
	if err := RunStore.WriteReport(runDir, Config.Reports.ReconciliationName, result.Reconciliation); err != nil {
		return nil, err
	}
	if err := RunStore.WriteReport(runDir, Config.Reports.DriftName, result.Drift); err != nil {
		return nil, err
	}

	matchCounts := make(map[string]any, len(result.Reconciliation.MatchCounts))
	for k, v := range result.Reconciliation.MatchCounts {
		matchCounts[k] = v
	}
	logEvent(observability.EventRunReconciled, result.Reconciliation.RunID, map[string]any{
		"run_dir":           runDir,
		"workflows_written": result.Reconciliation.WorkflowsWritten,
		"match_counts":      matchCounts,
	})
	return result, nil
}

func printReconcileSummary(result *core.ReconcileResult) {
	fmt.Printf("Reconciled run %s\n", result.Reconciliation.RunID)
	fmt.Printf("  workflows written: %d\n", result.Reconciliation.WorkflowsWritten)
	for _, matchType := range []string{core.WorkflowMatchExact, core.WorkflowMatchFuzzy, core.WorkflowMatchCreated} {
		fmt.Printf("  %-18s %d\n", matchType+":", result.Reconciliation.MatchCounts[matchType])
	}
	funnel := result.Coverage.Funnel
	fmt.Printf("  in scope:          %d of %d incoming\n",
		funnel.IncomingInScopeTotal, result.Coverage.Global.IncomingTotal)
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}
