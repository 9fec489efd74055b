package core

import (
	"strings"

	"github.com/valter-silva-au/workflow-radar/pkg/models"
)

// PhaseUnknown is the phase id used when no step resolves to a phase.
const PhaseUnknown = "unknown"

// ProcessStep keys a (process, step) pair; ProcessPhase keys a
// (process, phase) pair.
type ProcessStep struct {
	Process string
	Step    string
}

type ProcessPhase struct {
	Process string
	Phase   string
}

// NameMeta is the id/display-name lookup entry for steps and phases.
type NameMeta struct {
	ID   string
	Name string
}

// WorkflowDefinition is the compiled ordinal-truth structure: ordered
// steps and phases per process plus position lookup tables. It carries
// no aliases; callers resolve process ids through the canonicalizer
// before using it.
type WorkflowDefinition struct {
	ProcessIDs    []string
	ProcessesByID map[string]models.DefinitionProcess
	StepsInOrder  map[string][]string
	StepToPhase   map[ProcessStep]string
	PhaseToSteps  map[ProcessPhase][]string
	PhasesInOrder map[string][]string
	PhaseInfo     map[ProcessPhase]NameMeta
	StepInfo      map[ProcessStep]NameMeta
}

// BuildWorkflowDefinition walks processes -> phases -> steps and builds
// the lookup tables used by positional inference.
func BuildWorkflowDefinition(doc *models.WorkflowDefinitionDoc) *WorkflowDefinition {
	def := &WorkflowDefinition{
		ProcessesByID: make(map[string]models.DefinitionProcess),
		StepsInOrder:  make(map[string][]string),
		StepToPhase:   make(map[ProcessStep]string),
		PhaseToSteps:  make(map[ProcessPhase][]string),
		PhasesInOrder: make(map[string][]string),
		PhaseInfo:     make(map[ProcessPhase]NameMeta),
		StepInfo:      make(map[ProcessStep]NameMeta),
	}
	if doc == nil {
		return def
	}
	for _, proc := range doc.Processes {
		if proc.ID == "" {
			continue
		}
		def.ProcessIDs = append(def.ProcessIDs, proc.ID)
		def.ProcessesByID[proc.ID] = proc
		def.PhasesInOrder[proc.ID] = nil
		var stepsFlat []string
		for _, phase := range proc.Phases {
			if phase.ID == "" {
				continue
			}
			def.PhasesInOrder[proc.ID] = append(def.PhasesInOrder[proc.ID], phase.ID)
			def.PhaseInfo[ProcessPhase{proc.ID, phase.ID}] = NameMeta{ID: phase.ID, Name: phase.Name}
			var phaseSteps []string
			for _, step := range phase.Steps {
				if step.ID == "" {
					continue
				}
				def.StepInfo[ProcessStep{proc.ID, step.ID}] = NameMeta{ID: step.ID, Name: step.Name}
				def.StepToPhase[ProcessStep{proc.ID, step.ID}] = phase.ID
				phaseSteps = append(phaseSteps, step.ID)
				stepsFlat = append(stepsFlat, step.ID)
			}
			def.PhaseToSteps[ProcessPhase{proc.ID, phase.ID}] = phaseSteps
		}
		def.StepsInOrder[proc.ID] = stepsFlat
	}
	return def
}

// ResolveProcessID maps a canonical process id onto a definition process
// id: direct hit, normalized id or name match, then the first definition
// process that belongs to the in-scope key set. Returns "" when nothing
// resolves.
func (d *WorkflowDefinition) ResolveProcessID(canonicalProcess string, scopeKeys []string) string {
	if canonicalProcess == "" {
		return ""
	}
	if _, ok := d.ProcessesByID[canonicalProcess]; ok {
		return canonicalProcess
	}
	canonNorm := NormalizeText(canonicalProcess)
	for _, pid := range d.ProcessIDs {
		proc := d.ProcessesByID[pid]
		if NormalizeText(pid) == canonNorm || NormalizeText(proc.Name) == canonNorm {
			return pid
		}
	}
	scope := make(map[string]struct{}, len(scopeKeys))
	for _, k := range scopeKeys {
		scope[k] = struct{}{}
	}
	for _, pid := range d.ProcessIDs {
		if _, ok := scope[pid]; ok {
			return pid
		}
	}
	return ""
}

// MatchStepInDefinition resolves a raw step string against the
// definition's step ids and names: exact normalized match first, then
// bidirectional containment with a unique winner.
func (d *WorkflowDefinition) MatchStepInDefinition(rawStep, processID string) string {
	if rawStep == "" || processID == "" {
		return ""
	}
	steps := d.StepsInOrder[processID]
	if len(steps) == 0 {
		return ""
	}
	rawNorm := NormalizeText(rawStep)
	if rawNorm == "" {
		return ""
	}
	var candidates []string
	for _, stepID := range steps {
		meta := d.StepInfo[ProcessStep{processID, stepID}]
		stepNorm := NormalizeText(stepID)
		nameNorm := NormalizeText(meta.Name)
		if stepNorm == rawNorm || (nameNorm != "" && nameNorm == rawNorm) {
			return stepID
		}
		if stepNorm != "" && (strings.Contains(rawNorm, stepNorm) || strings.Contains(stepNorm, rawNorm)) {
			candidates = append(candidates, stepID)
		} else if nameNorm != "" && (strings.Contains(rawNorm, nameNorm) || strings.Contains(nameNorm, rawNorm)) {
			candidates = append(candidates, stepID)
		}
	}
	candidates = uniqueStrings(candidates)
	if len(candidates) == 1 {
		return candidates[0]
	}
	return ""
}

// DeriveCurrentStepID recovers the current step of an instance: an
// explicit canonical step id when it belongs to the process, else a
// steps-state scan (first in_progress/blocked, falling back to the last
// completed), else a definition-level match on the free-text step.
func (d *WorkflowDefinition) DeriveCurrentStepID(inst *models.Instance, processID string) string {
	if processID == "" {
		return ""
	}
	steps := d.StepsInOrder[processID]
	if len(steps) == 0 {
		return ""
	}
	inSteps := func(id string) bool {
		for _, s := range steps {
			if s == id {
				return true
			}
		}
		return false
	}

	if inst.CanonicalCurrentStepID != "" && inSteps(inst.CanonicalCurrentStepID) {
		return inst.CanonicalCurrentStepID
	}

	if inst.StepsState != nil {
		for _, stepID := range steps {
			state := inst.StepsState[stepID]
			if state == models.StepInProgress || state == models.StepBlocked {
				return stepID
			}
		}
		lastCompleted := ""
		for _, stepID := range steps {
			state := inst.StepsState[stepID]
			if state == models.StepCompleted || strings.HasPrefix(state, models.StepCompleted+"_") {
				lastCompleted = stepID
			}
		}
		if lastCompleted != "" {
			return lastCompleted
		}
	}

	return d.MatchStepInDefinition(inst.State.Step, processID)
}

// InferStepsFromPosition labels every step of the process from one
// current-step signal: earlier steps take the configured inferred
// complete label, the current step takes a status derived from the
// instance status, later steps are not started.
func (d *WorkflowDefinition) InferStepsFromPosition(processID, currentStepID, status, completedLabel string) []models.StepStatus {
	if processID == "" || currentStepID == "" {
		return nil
	}
	steps := d.StepsInOrder[processID]
	index := -1
	for i, s := range steps {
		if s == currentStepID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil
	}

	statusNorm := strings.ToLower(status)
	out := make([]models.StepStatus, 0, len(steps))
	for i, stepID := range steps {
		meta := d.StepInfo[ProcessStep{processID, stepID}]
		var stepStatus string
		switch {
		case i < index:
			stepStatus = completedLabel
		case i == index:
			switch statusNorm {
			case models.StatusBlocked:
				stepStatus = models.StepBlocked
			case models.StatusDone, models.StatusCompleted:
				stepStatus = models.StepCompleted
			default:
				stepStatus = models.StepInProgress
			}
		default:
			stepStatus = models.StepNotStarted
		}
		out = append(out, models.StepStatus{ID: stepID, Name: meta.Name, Status: stepStatus})
	}
	return out
}

// InferPhaseID returns the phase of the current step, or "unknown".
func (d *WorkflowDefinition) InferPhaseID(processID, currentStepID string) string {
	if processID == "" || currentStepID == "" {
		return PhaseUnknown
	}
	if phase, ok := d.StepToPhase[ProcessStep{processID, currentStepID}]; ok {
		return phase
	}
	return PhaseUnknown
}

// InferPhasesFromSteps derives phase statuses bottom-up from inferred
// step statuses: complete when all steps are complete or inferred
// complete, in progress when any step is in progress or blocked,
// unknown when the phase has no resolvable steps, else not started.
func (d *WorkflowDefinition) InferPhasesFromSteps(processID string, steps []models.StepStatus, completedLabel string) []models.PhaseStatus {
	if processID == "" || len(steps) == 0 {
		return nil
	}
	phases := d.PhasesInOrder[processID]
	if len(phases) == 0 {
		return nil
	}
	statusByStep := make(map[string]string, len(steps))
	for _, s := range steps {
		statusByStep[s.ID] = s.Status
	}
	out := make([]models.PhaseStatus, 0, len(phases))
	for _, phaseID := range phases {
		phaseSteps := d.PhaseToSteps[ProcessPhase{processID, phaseID}]
		var phaseStatus string
		switch {
		case len(phaseSteps) == 0:
			phaseStatus = PhaseUnknown
		case allComplete(phaseSteps, statusByStep, completedLabel):
			phaseStatus = completedLabel
		case anyActive(phaseSteps, statusByStep):
			phaseStatus = models.StepInProgress
		default:
			phaseStatus = models.StepNotStarted
		}
		meta := d.PhaseInfo[ProcessPhase{processID, phaseID}]
		out = append(out, models.PhaseStatus{ID: phaseID, Name: meta.Name, Status: phaseStatus})
	}
	return out
}

func allComplete(stepIDs []string, statusByStep map[string]string, completedLabel string) bool {
	for _, id := range stepIDs {
		s := statusByStep[id]
		if s != models.StepCompleted && s != completedLabel {
			return false
		}
	}
	return true
}

func anyActive(stepIDs []string, statusByStep map[string]string) bool {
	for _, id := range stepIDs {
		s := statusByStep[id]
		if s == models.StepInProgress || s == models.StepBlocked {
			return true
		}
	}
	return false
}
