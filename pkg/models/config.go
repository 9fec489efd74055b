// Package models defines the shared data records of Workflow Radar:
// catalogs, source documents, per-run instances, persistent workflows,
// reports, and run configuration.
package models

// CatalogConfig locates the catalog source documents, relative to the
// base path.
type CatalogConfig struct {
	DefinitionPath string
	CatalogPath    string
	OverridePath   string
	ClientsPath    string
	RolesPath      string
}

// StoreConfig locates the persistent workflow store and its run snapshot.
type StoreConfig struct {
	PersistentPath string
	SnapshotName   string
}

// ScopeConfig restricts persistent writes to a set of canonical
// processes. Out-of-scope instances still feed coverage and drift.
type ScopeConfig struct {
	ScopedOnly  bool
	ProcessKeys []string
	// PrimaryProcess is the process compiled from the workflow
	// definition document; ReservedKeys are never taken from the flat
	// catalog document.
	PrimaryProcess string
	ReservedKeys   []string
}

// MatchConfig controls workflow matching.
type MatchConfig struct {
	Method         string
	ExactKeyFields []string
	FuzzyThreshold float64
}

// EvidenceConfig caps evidence-id merging.
type EvidenceConfig struct {
	MaxIDsPerInstance   int
	TimelineFallbackMax int
}

// InferenceConfig controls positional step/phase inference.
type InferenceConfig struct {
	PositionalEnabled bool
	CompletedLabel    string
}

// ReportsConfig names the report output files.
type ReportsConfig struct {
	CoverageName       string
	ReconciliationName string
	DriftName          string
}

// ReconcileConfig is the full reconciliation run configuration.
type ReconcileConfig struct {
	Enabled   bool
	Catalog   CatalogConfig
	Store     StoreConfig
	Scope     ScopeConfig
	Match     MatchConfig
	Evidence  EvidenceConfig
	Inference InferenceConfig
	Reports   ReportsConfig
}
