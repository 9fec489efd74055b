package models

// DefaultAtRiskDays and DefaultOverdueDays are the global health
// thresholds applied when a process does not declare its own.
const (
	DefaultAtRiskDays  = 7
	DefaultOverdueDays = 14
)

// HealthSpec holds the staleness thresholds for one process, in days.
// Invariant: OverdueAfterDays >= AtRiskAfterDays.
type HealthSpec struct {
	AtRiskAfterDays  int `yaml:"at_risk_after_days" json:"at_risk_after_days"`
	OverdueAfterDays int `yaml:"overdue_after_days" json:"overdue_after_days"`
}

// DefaultHealthSpec returns the global default thresholds.
func DefaultHealthSpec() HealthSpec {
	return HealthSpec{
		AtRiskAfterDays:  DefaultAtRiskDays,
		OverdueAfterDays: DefaultOverdueDays,
	}
}

// CatalogProcess is one compiled process: its ordered steps, alias sets,
// and health thresholds. Steps order is load-bearing; it defines the
// positional semantics used for progress inference.
type CatalogProcess struct {
	ProcessID      string              `json:"process_id"`
	DisplayName    string              `json:"display_name"`
	Owner          string              `json:"owner,omitempty"`
	Steps          []string            `json:"steps"`
	ProcessAliases []string            `json:"process_aliases,omitempty"`
	StepAliases    map[string][]string `json:"step_aliases,omitempty"`
	Health         HealthSpec          `json:"health"`
	Phases         []string            `json:"phases,omitempty"`
	StepToPhase    map[string]string   `json:"step_to_phase,omitempty"`
}

// ProcessCatalog maps process ids to compiled processes. ProcessIDs
// preserves document order so matchers iterate deterministically.
type ProcessCatalog struct {
	ProcessIDs []string
	Processes  map[string]CatalogProcess
}

// Process returns the compiled process for id, if present.
func (c *ProcessCatalog) Process(id string) (CatalogProcess, bool) {
	if c == nil {
		return CatalogProcess{}, false
	}
	p, ok := c.Processes[id]
	return p, ok
}

// Client is one known client with its alias set.
type Client struct {
	Name    string   `yaml:"name" json:"name"`
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// ClientsCatalog is the read-only list of known clients.
type ClientsCatalog struct {
	Clients []Client `yaml:"clients" json:"clients"`
}

// RolesCatalog is the read-only list of canonical roles and their aliases.
type RolesCatalog struct {
	Canonical []string            `yaml:"canonical" json:"canonical"`
	Aliases   map[string][]string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}
