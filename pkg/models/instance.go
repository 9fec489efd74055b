package models

// Instance status values as emitted by the extraction stage.
const (
	StatusBlocked   = "blocked"
	StatusDone      = "done"
	StatusCompleted = "completed"
)

// Step state tags computed by the enricher.
const (
	StepCompleted  = "completed"
	StepInProgress = "in_progress"
	StepBlocked    = "blocked"
	StepNotStarted = "not_started"
	StepUnknown    = "unknown"
)

// Health classifications.
const (
	HealthOnTrack = "on_track"
	HealthAtRisk  = "at_risk"
	HealthOverdue = "overdue"
	HealthUnknown = "unknown"
)

// Step match types produced by the canonicalizer.
const (
	MatchExact = "exact"
	MatchAlias = "alias"
	MatchFuzzy = "fuzzy"
	MatchNone  = "none"
)

// InstanceState is the extracted point-in-time state of one instance.
type InstanceState struct {
	Status        string  `json:"status,omitempty"`
	Step          string  `json:"step,omitempty"`
	Confidence    float64 `json:"confidence,omitempty"`
	LastUpdatedAt string  `json:"last_updated_at,omitempty"`
	Summary       string  `json:"summary,omitempty"`
}

// EvidenceItem is one extracted supporting message reference.
type EvidenceItem struct {
	MessageID  string  `json:"message_id,omitempty"`
	Timestamp  string  `json:"timestamp,omitempty"`
	EventType  string  `json:"event_type,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Snippet    string  `json:"snippet,omitempty"`
}

// TimelineEvent is one message-id timeline entry for an instance.
type TimelineEvent struct {
	MessageID string `json:"message_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	EventType string `json:"event_type,omitempty"`
}

// Instance is one per-run detected workflow occurrence. Candidate fields
// come from the extraction stage; canonical and computed fields are
// filled by the enricher. Empty canonical strings mean "unresolved".
type Instance struct {
	InstanceKey string `json:"instance_key"`

	CandidateClient  string `json:"candidate_client,omitempty"`
	CandidateProcess string `json:"candidate_process,omitempty"`
	CandidateRole    string `json:"candidate_role,omitempty"`

	// Raw copies of the candidate fields, preserved on first enrichment
	// and never overwritten after that.
	CandidateClientRaw  string `json:"candidate_client_raw,omitempty"`
	CandidateProcessRaw string `json:"candidate_process_raw,omitempty"`
	CandidateRoleRaw    string `json:"candidate_role_raw,omitempty"`

	CanonicalClient  string `json:"canonical_client,omitempty"`
	CanonicalProcess string `json:"canonical_process,omitempty"`
	CanonicalRole    string `json:"canonical_role,omitempty"`
	Owner            string `json:"owner,omitempty"`

	State InstanceState `json:"state"`

	Evidence           []EvidenceItem `json:"evidence,omitempty"`
	EvidenceMessageIDs []string       `json:"evidence_message_ids,omitempty"`

	StepsTotal *int              `json:"steps_total"`
	StepsDone  *int              `json:"steps_done"`
	StepsState map[string]string `json:"steps_state"`

	CanonicalCurrentStepID           string  `json:"canonical_current_step_id,omitempty"`
	CanonicalCurrentStepMatchType    string  `json:"canonical_current_step_match_type,omitempty"`
	CanonicalCurrentStepMatchScore   float64 `json:"canonical_current_step_match_score"`
	CanonicalCurrentStepMatchedAlias string  `json:"canonical_current_step_matched_alias,omitempty"`

	Health string `json:"health,omitempty"`
}

// InstancesDoc is the run-directory instances document.
type InstancesDoc struct {
	Instances []Instance `json:"instances"`
}

// TimelineDoc is the optional per-instance message-id timeline document.
type TimelineDoc struct {
	ByInstance map[string][]TimelineEvent `json:"by_instance"`
}
