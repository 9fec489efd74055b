package models

// StepStatus is one positionally inferred step of a persistent workflow.
type StepStatus struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Status string `json:"status"`
}

// PhaseStatus is one derived phase of a persistent workflow.
type PhaseStatus struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Status string `json:"status"`
}

// ReconciliationAudit records how the last run matched this workflow.
type ReconciliationAudit struct {
	MatchType         string  `json:"match_type"`
	MatchScore        float64 `json:"match_score"`
	MatchedWorkflowID string  `json:"matched_workflow_id"`
}

// Observability carries the merge metadata for one workflow: evidence
// trail, canonical identities, and the latest reconciliation audit.
type Observability struct {
	SourceInstanceKey  string              `json:"source_instance_key,omitempty"`
	LastUpdatedAt      string              `json:"last_updated_at,omitempty"`
	Confidence         float64             `json:"confidence,omitempty"`
	Health             string              `json:"health,omitempty"`
	EvidenceMessageIDs []string            `json:"evidence_message_ids,omitempty"`
	CanonicalProcess   string              `json:"canonical_process,omitempty"`
	CanonicalClient    string              `json:"canonical_client,omitempty"`
	CanonicalRole      string              `json:"canonical_role,omitempty"`
	Reconciliation     ReconciliationAudit `json:"reconciliation"`
}

// Workflow is the cross-run persistent entity for one tracked process
// occurrence. Created on first unmatched instance, mutated on every
// matching instance afterwards, never deleted by the engine.
type Workflow struct {
	WorkflowID    string        `json:"workflow_id"`
	ProcessID     string        `json:"process_id,omitempty"`
	PhaseID       string        `json:"phase_id,omitempty"`
	Client        string        `json:"client,omitempty"`
	Role          string        `json:"role,omitempty"`
	DisplayName   string        `json:"display_name,omitempty"`
	Steps         []StepStatus  `json:"steps"`
	Phases        []PhaseStatus `json:"phases"`
	Observability Observability `json:"observability"`
}

// WorkflowStore is the persistent cross-run store document. The engine
// receives the full workflow list and returns a fully updated
// replacement; it never mutates the store file in place.
type WorkflowStore struct {
	Version   int        `json:"version"`
	UpdatedAt string     `json:"updated_at"`
	Workflows []Workflow `json:"workflows"`
}
