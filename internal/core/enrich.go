package core

import (
	"math"
	"strings"
	"time"

	"github.com/valter-silva-au/workflow-radar/pkg/models"
)

// InstanceEnricher canonicalizes the identity fields of raw instances,
// derives per-step state and completion counters, and classifies health
// from recency. It never mutates its catalogs.
type InstanceEnricher interface {
	Enrich(instances []models.Instance, now time.Time) ([]models.Instance, *models.EnrichmentStats)
}

type instanceEnricher struct {
	processes *models.ProcessCatalog
	clients   *models.ClientsCatalog
	roles     *models.RolesCatalog
}

// NewInstanceEnricher creates an InstanceEnricher over the given
// read-only catalogs. Any catalog may be nil; the corresponding
// canonicalization then degrades to its fallback.
func NewInstanceEnricher(processes *models.ProcessCatalog, clients *models.ClientsCatalog, roles *models.RolesCatalog) InstanceEnricher {
	return &instanceEnricher{
		processes: processes,
		clients:   clients,
		roles:     roles,
	}
}

// Enrich returns enriched copies of the instances plus aggregate
// coverage stats. Per-instance data issues degrade locally; they never
// abort the pass.
func (e *instanceEnricher) Enrich(instances []models.Instance, now time.Time) ([]models.Instance, *models.EnrichmentStats) {
	total := len(instances)
	countsByHealth := map[string]int{
		models.HealthOnTrack: 0,
		models.HealthAtRisk:  0,
		models.HealthOverdue: 0,
		models.HealthUnknown: 0,
	}
	covProcess := 0
	covSteps := 0
	covHealth := 0

	enriched := make([]models.Instance, 0, total)
	for _, inst := range instances {
		obj := inst
		attachRawFields(&obj)
		e.canonicalizeFields(&obj)
		e.computeSteps(&obj)
		e.computeHealth(&obj, now)

		if obj.CanonicalProcess != "" {
			covProcess++
		}
		if obj.StepsState != nil {
			covSteps++
		}
		h := obj.Health
		if h == "" {
			h = models.HealthUnknown
		}
		if _, ok := countsByHealth[h]; ok {
			countsByHealth[h]++
		}
		if h != models.HealthUnknown {
			covHealth++
		}
		enriched = append(enriched, obj)
	}

	stats := &models.EnrichmentStats{
		Coverage: models.EnrichmentCoverage{
			CanonicalProcessPct: coveragePct(covProcess, total),
			StepsStatePct:       coveragePct(covSteps, total),
			HealthPct:           coveragePct(covHealth, total),
		},
		Counts: models.EnrichmentCounts{ByHealth: countsByHealth},
	}
	return enriched, stats
}

// attachRawFields preserves the original candidate fields under the
// *_raw names on first enrichment only.
func attachRawFields(inst *models.Instance) {
	if inst.CandidateProcessRaw == "" {
		inst.CandidateProcessRaw = inst.CandidateProcess
	}
	if inst.CandidateClientRaw == "" {
		inst.CandidateClientRaw = inst.CandidateClient
	}
	if inst.CandidateRoleRaw == "" {
		inst.CandidateRoleRaw = inst.CandidateRole
	}
}

func (e *instanceEnricher) canonicalizeFields(inst *models.Instance) {
	inst.CanonicalProcess = CanonicalizeProcess(inst.CandidateProcessRaw, e.processes)
	inst.CanonicalClient = CanonicalizeClient(inst.CandidateClientRaw, e.clients)
	inst.CanonicalRole = CanonicalizeRole(inst.CandidateRoleRaw, e.roles)

	inst.Owner = ""
	if inst.CanonicalProcess != "" && e.processes != nil {
		if proc, ok := e.processes.Process(inst.CanonicalProcess); ok {
			inst.Owner = proc.Owner
		}
	}
}

// computeSteps fills the per-step state map and completion counters from
// the matched current step's position in the catalog step order.
func (e *instanceEnricher) computeSteps(inst *models.Instance) {
	var proc models.CatalogProcess
	ok := false
	if inst.CanonicalProcess != "" && e.processes != nil {
		proc, ok = e.processes.Process(inst.CanonicalProcess)
	}
	if !ok {
		inst.StepsTotal = nil
		inst.StepsDone = nil
		inst.StepsState = nil
		inst.CanonicalCurrentStepID = ""
		inst.CanonicalCurrentStepMatchType = models.MatchNone
		inst.CanonicalCurrentStepMatchScore = 0.0
		inst.CanonicalCurrentStepMatchedAlias = ""
		return
	}

	steps := proc.Steps
	match := MatchStep(inst.State.Step, inst.CanonicalProcess, e.processes)
	inst.CanonicalCurrentStepID = match.StepID
	inst.CanonicalCurrentStepMatchType = match.MatchType
	inst.CanonicalCurrentStepMatchScore = match.Score
	inst.CanonicalCurrentStepMatchedAlias = match.MatchedAlias

	total := len(steps)
	inst.StepsTotal = &total

	if match.StepID == "" {
		stepsState := make(map[string]string, total)
		for _, s := range steps {
			stepsState[s] = models.StepUnknown
		}
		zero := 0
		inst.StepsDone = &zero
		inst.StepsState = stepsState
		return
	}

	status := strings.ToLower(inst.State.Status)
	stepsState := make(map[string]string, total)
	stepsDone := 0
	seenMatched := false
	for _, s := range steps {
		switch {
		case s == match.StepID:
			switch status {
			case models.StatusBlocked:
				stepsState[s] = models.StepBlocked
			case models.StatusDone, models.StatusCompleted:
				stepsState[s] = models.StepCompleted
				stepsDone++
			default:
				stepsState[s] = models.StepInProgress
			}
			seenMatched = true
		case !seenMatched:
			stepsState[s] = models.StepCompleted
			stepsDone++
		default:
			stepsState[s] = models.StepNotStarted
		}
	}
	inst.StepsDone = &stepsDone
	inst.StepsState = stepsState
}

// computeHealth classifies staleness from the instance's last update
// timestamp against the matched process's thresholds, falling back to
// the global defaults when no process matched.
func (e *instanceEnricher) computeHealth(inst *models.Instance, now time.Time) {
	lastUpdated, ok := ParseISOTime(inst.State.LastUpdatedAt)
	if !ok {
		inst.Health = models.HealthUnknown
		return
	}
	elapsedDays := now.Sub(lastUpdated).Hours() / 24.0

	health := models.DefaultHealthSpec()
	if inst.CanonicalProcess != "" && e.processes != nil {
		if proc, found := e.processes.Process(inst.CanonicalProcess); found {
			health = proc.Health
		}
	}

	status := strings.ToLower(inst.State.Status)
	switch {
	case elapsedDays >= float64(health.OverdueAfterDays):
		inst.Health = models.HealthOverdue
	case status == models.StatusBlocked:
		inst.Health = models.HealthAtRisk
	case elapsedDays >= float64(health.AtRiskAfterDays):
		inst.Health = models.HealthAtRisk
	default:
		inst.Health = models.HealthOnTrack
	}
}

// ParseISOTime parses the ISO-8601 timestamp shapes the extraction stage
// emits. Naive timestamps are taken as UTC. Returns false for anything
// unparsable.
func ParseISOTime(ts string) (time.Time, bool) {
	if ts == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, ts); err == nil {
			// Layouts without a zone parse as UTC, matching the
			// naive-means-UTC convention of the source documents.
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func coveragePct(n, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return round4(float64(n) / float64(total))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
