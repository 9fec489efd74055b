package core

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"github.com/valter-silva-au/workflow-radar/pkg/models"
)

// Workflow match types.
const (
	WorkflowMatchExact   = "exact"
	WorkflowMatchFuzzy   = "fuzzy"
	WorkflowMatchCreated = "created"
)

// ReconciliationEngine merges enriched per-run instances into the
// persistent cross-run workflow set. Matching is layered: exact key,
// then fuzzy display-key similarity, then creation with a
// content-derived stable id. The caller owns the full workflow list and
// receives back a fully updated replacement; no shared mutable state.
type ReconciliationEngine interface {
	Reconcile(instances []models.Instance, timelineByInstance map[string][]models.TimelineEvent, storeWorkflows []models.Workflow) *ReconcileResult
}

// ReconcileResult bundles the updated workflow set and the run reports.
type ReconcileResult struct {
	Workflows      []models.Workflow
	Coverage       *models.CoverageReport
	Reconciliation *models.ReconciliationReport
	Drift          *models.DriftReport
}

type reconciliationEngine struct {
	def *WorkflowDefinition
	cfg models.ReconcileConfig
	now func() time.Time
}

// NewReconciliationEngine creates a ReconciliationEngine over a compiled
// workflow definition and run configuration. The definition is read-only
// and safely shared.
func NewReconciliationEngine(def *WorkflowDefinition, cfg models.ReconcileConfig) ReconciliationEngine {
	return &reconciliationEngine{def: def, cfg: cfg, now: time.Now}
}

// GenerateWorkflowID derives a stable workflow id. A complete canonical
// triple hashes alone, so repeated runs with identical inputs recreate
// the same id; incomplete triples mix in the instance key and raw fields
// to avoid collisions between partially resolved instances.
func GenerateWorkflowID(canonicalProcess, canonicalClient, canonicalRole, instanceKey, rawClient, rawRole string) string {
	var base string
	if canonicalProcess != "" && canonicalClient != "" && canonicalRole != "" {
		base = canonicalProcess + "|" + canonicalClient + "|" + canonicalRole
	} else {
		base = instanceKey + "|" + canonicalProcess + "|" + rawClient + "|" + rawRole
	}
	sum := sha1.Sum([]byte(base))
	return "wf_" + hex.EncodeToString(sum[:])[:12]
}

// displayName synthesizes the human-facing workflow name.
func displayName(role, client string) string {
	if role == "" {
		role = "Unknown Role"
	}
	if client == "" {
		client = "Unknown Client"
	}
	return role + " - " + client
}

// displayKey synthesizes the fuzzy-match identity key.
func displayKey(role, client, processID string) string {
	if role == "" {
		role = "Unknown Role"
	}
	if client == "" {
		client = "Unknown Client"
	}
	if processID == "" {
		processID = "unknown"
	}
	return role + " - " + client + " - " + processID
}

// similarity is a normalized Levenshtein ratio in [0, 1], case folded.
func similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1.0
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}

// mergeEvidenceIDs unions id lists preserving first-seen order, capped.
func mergeEvidenceIDs(existing, incoming []string, maxIDs int) []string {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	var merged []string
	for _, mid := range append(append([]string(nil), existing...), incoming...) {
		if mid == "" {
			continue
		}
		if _, ok := seen[mid]; ok {
			continue
		}
		seen[mid] = struct{}{}
		merged = append(merged, mid)
		if len(merged) >= maxIDs {
			break
		}
	}
	return merged
}

// chooseLatestTS keeps the later of two ISO timestamps, favoring the
// incoming value when either side is unparsable.
func chooseLatestTS(existing, incoming string) string {
	if incoming == "" {
		return existing
	}
	if existing == "" {
		return incoming
	}
	ex, okEx := ParseISOTime(existing)
	inc, okInc := ParseISOTime(incoming)
	if !okEx || !okInc {
		return incoming
	}
	if inc.Before(ex) {
		return existing
	}
	return incoming
}

// extractEvidenceIDs collects an instance's evidence message ids,
// falling back to the evidence list, then to the tail of its timeline.
func extractEvidenceIDs(inst *models.Instance, timelineByInstance map[string][]models.TimelineEvent, maxIDs, fallbackMax int) []string {
	var ids []string
	for _, mid := range inst.EvidenceMessageIDs {
		if mid != "" {
			ids = append(ids, mid)
		}
	}
	if len(ids) == 0 {
		for _, ev := range inst.Evidence {
			if ev.MessageID != "" {
				ids = append(ids, ev.MessageID)
			}
		}
	}
	if len(ids) == 0 && timelineByInstance != nil {
		timeline := timelineByInstance[inst.InstanceKey]
		var timelineIDs []string
		for _, t := range timeline {
			if t.MessageID != "" {
				timelineIDs = append(timelineIDs, t.MessageID)
			}
		}
		if len(timelineIDs) > fallbackMax {
			timelineIDs = timelineIDs[len(timelineIDs)-fallbackMax:]
		}
		ids = timelineIDs
	}
	return mergeEvidenceIDs(nil, ids, maxIDs)
}

// counter tallies string occurrences preserving first-seen order for
// deterministic tie-breaks in top-N reporting.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(value string) {
	if _, ok := c.counts[value]; !ok {
		c.order = append(c.order, value)
	}
	c.counts[value]++
}

// top returns the n most frequent values, count descending, first-seen
// ascending on ties.
func (c *counter) top(n int) []models.DriftEntry {
	entries := make([]models.DriftEntry, 0, len(c.order))
	for _, v := range c.order {
		entries = append(entries, models.DriftEntry{Value: v, Count: c.counts[v]})
	}
	// Stable selection keeps first-seen order among equal counts.
	for i := 0; i < len(entries) && i < n; i++ {
		best := i
		for j := i + 1; j < len(entries); j++ {
			if entries[j].Count > entries[best].Count {
				best = j
			}
		}
		if best != i {
			picked := entries[best]
			copy(entries[i+1:best+1], entries[i:best])
			entries[i] = picked
		}
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// isKnownRole reports whether a canonical role carries real identity
// signal (not empty and not a fallback bucket).
func isKnownRole(canonRole string) bool {
	return canonRole != "" && canonRole != RoleOther && canonRole != RoleUnknown
}

// instanceKeyField maps an exact-key field name onto the instance.
func instanceKeyField(inst *models.Instance, field string) string {
	switch field {
	case "canonical_process":
		return inst.CanonicalProcess
	case "canonical_client":
		return inst.CanonicalClient
	case "canonical_role":
		return inst.CanonicalRole
	case "instance_key":
		return inst.InstanceKey
	default:
		return ""
	}
}

// workflowKeyField maps an exact-key field name onto a workflow,
// preferring the observability canonical fields over the display fields.
func workflowKeyField(wf *models.Workflow, field string) string {
	switch field {
	case "canonical_process":
		if wf.Observability.CanonicalProcess != "" {
			return wf.Observability.CanonicalProcess
		}
		return wf.ProcessID
	case "canonical_client":
		if wf.Observability.CanonicalClient != "" {
			return wf.Observability.CanonicalClient
		}
		return wf.Client
	case "canonical_role":
		if wf.Observability.CanonicalRole != "" {
			return wf.Observability.CanonicalRole
		}
		return wf.Role
	case "instance_key":
		return wf.Observability.SourceInstanceKey
	default:
		return ""
	}
}

// exactKey builds the joined exact-match key, or "" when any configured
// field is missing.
func exactKey(fields []string, lookup func(string) string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		v := lookup(f)
		if v == "" {
			return ""
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, "\x1f")
}

// fuzzyEntry pairs a workflow index in the working set with its
// precomputed display key.
type fuzzyEntry struct {
	index      int
	displayKey string
}

// Reconcile runs the single-writer reconciliation pass. Instances are
// processed sequentially: fuzzy matching must see workflows created
// earlier in the same run, so the working set mutates as it goes.
func (e *reconciliationEngine) Reconcile(instances []models.Instance, timelineByInstance map[string][]models.TimelineEvent, storeWorkflows []models.Workflow) *ReconcileResult {
	cfg := e.cfg
	scopeKeys := cfg.Scope.ProcessKeys
	scopeSet := make(map[string]struct{}, len(scopeKeys))
	for _, k := range scopeKeys {
		scopeSet[k] = struct{}{}
	}

	// Partition the store: in-scope workflows form the working set,
	// out-of-scope ones pass through untouched (the engine never
	// deletes what it does not manage).
	var workflows []models.Workflow
	var passthrough []models.Workflow
	if cfg.Scope.ScopedOnly {
		for _, wf := range storeWorkflows {
			if _, ok := scopeSet[wf.ProcessID]; ok {
				workflows = append(workflows, wf)
			} else {
				passthrough = append(passthrough, wf)
			}
		}
	} else {
		workflows = append(workflows, storeWorkflows...)
	}

	existingExact := make(map[string]int)
	for i := range workflows {
		wf := &workflows[i]
		if key := exactKey(cfg.Match.ExactKeyFields, func(f string) string { return workflowKeyField(wf, f) }); key != "" {
			existingExact[key] = i
		}
	}
	existingFuzzy := make([]fuzzyEntry, 0, len(workflows))
	for i := range workflows {
		existingFuzzy = append(existingFuzzy, fuzzyEntry{
			index:      i,
			displayKey: displayKey(workflows[i].Role, workflows[i].Client, workflows[i].ProcessID),
		})
	}

	// Coverage and drift counters.
	total := len(instances)
	covProcess, covClient, covStep, covHealth, covEvidence := 0, 0, 0, 0, 0
	roleDetected, roleStrict, roleOther, roleMissing := 0, 0, 0, 0
	canonicalStepPresent := 0
	scopeTotal := 0
	missingProcess := 0
	notInScope := 0
	driftClient := newCounter()
	driftRole := newCounter()
	driftProcess := newCounter()
	driftStep := newCounter()
	stepMatchFailures := newCounter()

	matchCounts := map[string]int{
		WorkflowMatchExact:   0,
		WorkflowMatchFuzzy:   0,
		WorkflowMatchCreated: 0,
	}
	writtenTotal := 0
	stepsPopulated := 0
	phaseKnown := 0
	evidencePopulated := 0

	for i := range instances {
		inst := &instances[i]
		canonProcess := inst.CanonicalProcess
		canonClient := inst.CanonicalClient
		canonRole := inst.CanonicalRole

		if canonProcess != "" {
			covProcess++
		}
		if canonClient != "" {
			covClient++
		}
		canonRoleNorm := strings.TrimSpace(canonRole)
		switch {
		case canonRoleNorm == "" || canonRoleNorm == RoleUnknown:
			roleMissing++
		case canonRoleNorm == RoleOther:
			roleDetected++
			roleOther++
		default:
			roleDetected++
			roleStrict++
		}

		evidenceIDs := extractEvidenceIDs(inst, timelineByInstance, cfg.Evidence.MaxIDsPerInstance, cfg.Evidence.TimelineFallbackMax)
		if len(evidenceIDs) > 0 {
			covEvidence++
		}

		switch inst.Health {
		case models.HealthOnTrack, models.HealthAtRisk, models.HealthOverdue:
			covHealth++
		}

		processID := canonProcess
		if processID == "" {
			processID = "unknown"
		}
		definitionPID := e.def.ResolveProcessID(canonProcess, scopeKeys)
		currentStepID := e.def.DeriveCurrentStepID(inst, definitionPID)
		if currentStepID != "" {
			covStep++
		}

		if inst.CanonicalCurrentStepID != "" {
			canonicalStepPresent++
		}
		if inst.CanonicalCurrentStepMatchType == models.MatchNone && inst.State.Step != "" {
			stepMatchFailures.add(inst.State.Step)
		}

		_, inScope := scopeSet[canonProcess]
		if inScope {
			scopeTotal++
		} else if canonProcess == "" {
			missingProcess++
		} else {
			notInScope++
		}

		countDrift := func() {
			if canonClient == "" && inst.CandidateClientRaw != "" {
				driftClient.add(inst.CandidateClientRaw)
			}
			if !isKnownRole(canonRole) && inst.CandidateRoleRaw != "" {
				driftRole.add(inst.CandidateRoleRaw)
			}
			if canonProcess == "" && inst.CandidateProcessRaw != "" {
				driftProcess.add(inst.CandidateProcessRaw)
			}
			if inst.State.Step != "" && currentStepID == "" {
				driftStep.add(inst.State.Step)
			}
		}

		if cfg.Scope.ScopedOnly && !inScope {
			// Out-of-scope instances feed coverage and drift only.
			countDrift()
			continue
		}

		// Layered matching: exact key, fuzzy display key, create.
		instKey := exactKey(cfg.Match.ExactKeyFields, func(f string) string { return instanceKeyField(inst, f) })
		matchedIdx := -1
		matchType := WorkflowMatchCreated
		matchScore := 0.0
		if instKey != "" {
			if idx, ok := existingExact[instKey]; ok {
				matchedIdx = idx
				matchType = WorkflowMatchExact
				matchScore = 1.0
			}
		}
		if matchedIdx < 0 {
			display := displayKey(
				firstNonEmpty(canonRole, inst.CandidateRoleRaw),
				firstNonEmpty(canonClient, inst.CandidateClientRaw),
				processID,
			)
			bestIdx := -1
			bestScore := 0.0
			for _, entry := range existingFuzzy {
				if score := similarity(display, entry.displayKey); score > bestScore {
					bestIdx = entry.index
					bestScore = score
				}
			}
			if bestIdx >= 0 && bestScore >= cfg.Match.FuzzyThreshold {
				matchedIdx = bestIdx
				matchType = WorkflowMatchFuzzy
				matchScore = bestScore
			}
		}
		if matchedIdx < 0 {
			workflowID := GenerateWorkflowID(canonProcess, canonClient, canonRole, inst.InstanceKey, inst.CandidateClientRaw, inst.CandidateRoleRaw)
			workflows = append(workflows, models.Workflow{WorkflowID: workflowID})
			matchedIdx = len(workflows) - 1
			existingFuzzy = append(existingFuzzy, fuzzyEntry{
				index: matchedIdx,
				displayKey: displayKey(
					firstNonEmpty(canonRole, inst.CandidateRoleRaw),
					firstNonEmpty(canonClient, inst.CandidateClientRaw),
					processID,
				),
			})
			if instKey != "" {
				existingExact[instKey] = matchedIdx
			}
			matchType = WorkflowMatchCreated
			matchScore = 1.0
		}

		matchCounts[matchType]++
		writtenTotal++

		// Positional inference.
		var steps []models.StepStatus
		if cfg.Inference.PositionalEnabled {
			steps = e.def.InferStepsFromPosition(definitionPID, currentStepID, inst.State.Status, cfg.Inference.CompletedLabel)
		}
		phaseID := e.def.InferPhaseID(definitionPID, currentStepID)
		var phases []models.PhaseStatus
		if cfg.Inference.PositionalEnabled {
			phases = e.def.InferPhasesFromSteps(definitionPID, steps, cfg.Inference.CompletedLabel)
		}

		if len(steps) > 0 {
			stepsPopulated++
		}
		if phaseID != PhaseUnknown {
			phaseKnown++
		}
		if len(evidenceIDs) > 0 {
			evidencePopulated++
		}

		// Atomic update of the matched workflow's working copy.
		wf := &workflows[matchedIdx]
		wf.ProcessID = processID
		wf.PhaseID = phaseID
		wf.Client = firstNonEmpty(canonClient, inst.CandidateClientRaw, inst.CandidateClient)
		wf.Role = firstNonEmpty(canonRole, inst.CandidateRoleRaw, inst.CandidateRole)
		wf.DisplayName = displayName(wf.Role, wf.Client)
		wf.Steps = steps
		wf.Phases = phases

		obs := &wf.Observability
		obs.SourceInstanceKey = inst.InstanceKey
		obs.LastUpdatedAt = chooseLatestTS(obs.LastUpdatedAt, inst.State.LastUpdatedAt)
		obs.Confidence = inst.State.Confidence
		obs.Health = firstNonEmpty(inst.Health, models.HealthUnknown)
		obs.EvidenceMessageIDs = mergeEvidenceIDs(obs.EvidenceMessageIDs, evidenceIDs, cfg.Evidence.MaxIDsPerInstance)
		obs.CanonicalProcess = canonProcess
		obs.CanonicalClient = canonClient
		obs.CanonicalRole = canonRole
		obs.Reconciliation = models.ReconciliationAudit{
			MatchType:         matchType,
			MatchScore:        round4(matchScore),
			MatchedWorkflowID: wf.WorkflowID,
		}

		countDrift()
	}

	coverage := &models.CoverageReport{
		Global: models.GlobalCoverage{
			IncomingTotal:             total,
			CanonicalProcessPct:       coveragePct(covProcess, total),
			CanonicalClientPct:        coveragePct(covClient, total),
			CurrentStepPct:            coveragePct(covStep, total),
			HealthKnownPct:            coveragePct(covHealth, total),
			EvidenceIDsPct:            coveragePct(covEvidence, total),
			CanonicalCurrentStepIDPct: coveragePct(canonicalStepPresent, total),
			RoleMetrics: models.RoleMetrics{
				RoleDetectedPct:        coveragePct(roleDetected, total),
				RoleCanonicalStrictPct: coveragePct(roleStrict, total),
				RoleOtherPct:           coveragePct(roleOther, total),
				RoleMissingPct:         coveragePct(roleMissing, total),
			},
		},
		Funnel: models.ScopeFunnel{
			IncomingInScopeTotal:     scopeTotal,
			IncomingOutOfScopeTotal:  total - scopeTotal,
			PctInScopeAmongTotal:     coveragePct(scopeTotal, total),
			PctInScopeAmongKnown:     coveragePct(scopeTotal, covProcess),
			MissingCanonicalProcess:  missingProcess,
			CanonicalProcessNotScope: notInScope,
		},
		Reconciliation: models.ScopeReconciliation{
			WrittenTotal:  writtenTotal,
			MatchCounts:   matchCounts,
			StepsListPct:  coveragePct(stepsPopulated, writtenTotal),
			PhaseKnownPct: coveragePct(phaseKnown, writtenTotal),
			EvidenceIDPct: coveragePct(evidencePopulated, writtenTotal),
		},
	}

	reconciliation := &models.ReconciliationReport{
		RunID:            uuid.NewString(),
		WorkflowsWritten: writtenTotal,
		MatchCounts:      matchCounts,
		UpdatedAt:        e.now().UTC().Format(time.RFC3339),
	}

	const topN = 10
	drift := &models.DriftReport{
		CandidateClientRaw:         driftClient.top(topN),
		CandidateRoleRaw:           driftRole.top(topN),
		CandidateProcessRaw:        driftProcess.top(topN),
		RawStepsUnmatched:          driftStep.top(topN),
		CanonicalStepMatchFailures: stepMatchFailures.top(topN),
	}

	return &ReconcileResult{
		Workflows:      append(workflows, passthrough...),
		Coverage:       coverage,
		Reconciliation: reconciliation,
		Drift:          drift,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
