package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/workflow-radar/pkg/models"
)

var statusHealthFilter string

// Style definitions.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	healthOnTrack = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	healthAtRisk  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	healthOverdue = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	healthUnknown = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display tracked workflows grouped by health",
	Long: `Display the workflows of the persistent store organized by their
health bucket (on_track, at_risk, overdue, unknown).

Optionally filter to a single bucket using --health (e.g. --health overdue).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if StoreMgr == nil {
			return fmt.Errorf("workflow store not initialized")
		}
		store, err := StoreMgr.Load()
		if err != nil {
			return fmt.Errorf("loading workflow store: %w", err)
		}
		if len(store.Workflows) == 0 {
			fmt.Println("No workflows tracked yet.")
			return nil
		}

		grouped := make(map[string][]models.Workflow)
		for _, wf := range store.Workflows {
			health := wf.Observability.Health
			if health == "" {
				health = models.HealthUnknown
			}
			grouped[health] = append(grouped[health], wf)
		}

		healthOrder := []string{
			models.HealthOverdue,
			models.HealthAtRisk,
			models.HealthOnTrack,
			models.HealthUnknown,
		}
		for _, health := range healthOrder {
			if statusHealthFilter != "" && health != statusHealthFilter {
				continue
			}
			group, ok := grouped[health]
			if !ok || len(group) == 0 {
				continue
			}
			printHealthGroup(health, group)
			fmt.Println()
		}
		fmt.Println(dimStyle.Render(fmt.Sprintf("%d workflows in %s (updated %s)",
			len(store.Workflows), StoreMgr.Path(), store.UpdatedAt)))
		return nil
	},
}

// printHealthGroup prints a table of workflows under a health heading.
func printHealthGroup(health string, workflows []models.Workflow) {
	style := styleForHealth(health)
	fmt.Println(headerStyle.Render(fmt.Sprintf("== %s (%d) ==", health, len(workflows))))
	fmt.Printf("  %-15s %-12s %-14s %-30s %s\n", "ID", "PROCESS", "PHASE", "NAME", "UPDATED")
	for _, wf := range workflows {
		phase := wf.PhaseID
		if phase == "" {
			phase = "-"
		}
		fmt.Printf("  %-15s %-12s %-14s %-30s %s\n",
			style.Render(wf.WorkflowID), wf.ProcessID, phase,
			truncate(wf.DisplayName, 30), wf.Observability.LastUpdatedAt)
	}
}

func styleForHealth(health string) lipgloss.Style {
	switch health {
	case models.HealthOnTrack:
		return healthOnTrack
	case models.HealthAtRisk:
		return healthAtRisk
	case models.HealthOverdue:
		return healthOverdue
	default:
		return healthUnknown
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func init() {
	statusCmd.Flags().StringVar(&statusHealthFilter, "health", "", "Filter by health (on_track, at_risk, overdue, unknown)")
	rootCmd.AddCommand(statusCmd)
}
