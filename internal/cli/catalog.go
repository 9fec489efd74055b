package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var catalogVerbose bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Display the compiled process catalog",
	Long: `Display a summary of the compiled unified process catalog: every
process with its step and phase counts, alias counts, and health
thresholds. Use --verbose to list the steps of each process with their
per-step alias counts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		processes, clients, roles, err := loadCatalogs()
		if err != nil {
			return err
		}

		fmt.Printf("Catalog sources\n")
		fmt.Printf("  definition: %s\n", resolvePath(Config.Catalog.DefinitionPath))
		fmt.Printf("  processes:  %s\n", resolvePath(Config.Catalog.CatalogPath))
		if Config.Catalog.OverridePath != "" {
			fmt.Printf("  overrides:  %s\n", resolvePath(Config.Catalog.OverridePath))
		}
		fmt.Printf("  clients:    %s (%d known)\n", resolvePath(Config.Catalog.ClientsPath), len(clients.Clients))
		fmt.Printf("  roles:      %s (%d canonical)\n", resolvePath(Config.Catalog.RolesPath), len(roles.Canonical))

		fmt.Printf("\nProcesses (%d)\n", len(processes.ProcessIDs))
		for _, id := range processes.ProcessIDs {
			proc := processes.Processes[id]
			marker := ""
			if id == Config.Scope.PrimaryProcess {
				marker = " (primary)"
			}
			stepAliases := 0
			for _, aliases := range proc.StepAliases {
				stepAliases += len(aliases)
			}
			fmt.Printf("\n  %s%s - %s\n", id, marker, proc.DisplayName)
			fmt.Printf("    steps: %d, phases: %d, process aliases: %d, step aliases: %d\n",
				len(proc.Steps), len(proc.Phases), len(proc.ProcessAliases), stepAliases)
			fmt.Printf("    health: at risk after %dd, overdue after %dd\n",
				proc.Health.AtRiskAfterDays, proc.Health.OverdueAfterDays)
			if catalogVerbose {
				for _, step := range proc.Steps {
					phase := proc.StepToPhase[step]
					if phase == "" {
						phase = "-"
					}
					fmt.Printf("    %-28s phase=%-14s aliases=%d\n", step, phase, len(proc.StepAliases[step]))
				}
			}
		}
		return nil
	},
}

func init() {
	catalogCmd.Flags().BoolVarP(&catalogVerbose, "verbose", "v", false, "List each step with its phase and alias count")
	rootCmd.AddCommand(catalogCmd)
}
