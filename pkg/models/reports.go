package models

// RoleMetrics breaks role detection into strict/other/missing buckets.
type RoleMetrics struct {
	RoleDetectedPct        float64 `json:"role_detected_pct"`
	RoleCanonicalStrictPct float64 `json:"role_canonical_strict_pct"`
	RoleOtherPct           float64 `json:"role_other_pct"`
	RoleMissingPct         float64 `json:"role_missing_pct"`
}

// GlobalCoverage is the all-instances coverage section.
type GlobalCoverage struct {
	IncomingTotal              int         `json:"incoming_total"`
	CanonicalProcessPct        float64     `json:"canonical_process_pct"`
	CanonicalClientPct         float64     `json:"canonical_client_pct"`
	CurrentStepPct             float64     `json:"current_step_pct"`
	HealthKnownPct             float64     `json:"health_known_pct"`
	EvidenceIDsPct             float64     `json:"evidence_ids_pct"`
	CanonicalCurrentStepIDPct  float64     `json:"canonical_current_step_id_pct"`
	RoleMetrics                RoleMetrics `json:"role_metrics"`
}

// ScopeFunnel reports how many instances fell inside the configured
// in-scope process set.
type ScopeFunnel struct {
	IncomingInScopeTotal     int     `json:"incoming_in_scope_total"`
	IncomingOutOfScopeTotal  int     `json:"incoming_out_of_scope_total"`
	PctInScopeAmongTotal     float64 `json:"pct_in_scope_among_total"`
	PctInScopeAmongKnown     float64 `json:"pct_in_scope_among_known_process"`
	MissingCanonicalProcess  int     `json:"missing_canonical_process"`
	CanonicalProcessNotScope int     `json:"canonical_process_not_in_scope"`
}

// ScopeReconciliation reports population rates among written workflows.
type ScopeReconciliation struct {
	WrittenTotal  int            `json:"written_total"`
	MatchCounts   map[string]int `json:"match_counts"`
	StepsListPct  float64        `json:"steps_list_pct"`
	PhaseKnownPct float64        `json:"phase_known_pct"`
	EvidenceIDPct float64        `json:"evidence_ids_pct"`
}

// CoverageReport is the run-level canonicalization coverage document.
type CoverageReport struct {
	Global         GlobalCoverage      `json:"global"`
	Funnel         ScopeFunnel         `json:"scope_funnel"`
	Reconciliation ScopeReconciliation `json:"scope_reconciliation"`
}

// ReconciliationReport summarizes one reconciliation run.
type ReconciliationReport struct {
	RunID            string         `json:"run_id,omitempty"`
	WorkflowsWritten int            `json:"workflows_written"`
	MatchCounts      map[string]int `json:"match_counts"`
	UpdatedAt        string         `json:"updated_at"`
}

// DriftEntry is one raw value that failed canonicalization, with its
// occurrence count.
type DriftEntry struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// DriftReport lists the most frequent unresolved raw values, the
// diagnostic feed for catalog and alias maintenance.
type DriftReport struct {
	CandidateClientRaw         []DriftEntry `json:"candidate_client_raw"`
	CandidateRoleRaw           []DriftEntry `json:"candidate_role_raw"`
	CandidateProcessRaw        []DriftEntry `json:"candidate_process_raw"`
	RawStepsUnmatched          []DriftEntry `json:"raw_steps_unmatched"`
	CanonicalStepMatchFailures []DriftEntry `json:"canonical_step_match_failures"`
}

// EnrichmentStats is the aggregate coverage summary of one enrichment
// pass, used for observability only.
type EnrichmentStats struct {
	Coverage EnrichmentCoverage `json:"coverage"`
	Counts   EnrichmentCounts   `json:"counts"`
}

// EnrichmentCoverage holds enrichment coverage percentages.
type EnrichmentCoverage struct {
	CanonicalProcessPct float64 `json:"canonical_process_pct"`
	StepsStatePct       float64 `json:"steps_state_pct"`
	HealthPct           float64 `json:"health_pct"`
}

// EnrichmentCounts holds the enrichment health histogram.
type EnrichmentCounts struct {
	ByHealth map[string]int `json:"by_health"`
}
