package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/valter-silva-au/workflow-radar/pkg/models"
)

// addAlias appends alias with its normalized key, skipping empty forms.
func addAlias(aliases []keyedAlias, alias string) []keyedAlias {
	if alias == "" {
		return aliases
	}
	key := NormalizeText(alias)
	if key == "" {
		return aliases
	}
	return append(aliases, keyedAlias{alias: alias, key: key})
}

// seedStepAliases derives the initial alias set of one definition step:
// its name, short name, id, simple separator variants of the id, and
// lowercase copies, deduplicated by normalized key (first literal wins).
func seedStepAliases(step models.DefinitionStep) []string {
	var aliases []keyedAlias
	aliases = addAlias(aliases, step.Name)
	aliases = addAlias(aliases, step.ShortName)
	aliases = addAlias(aliases, step.ID)
	if step.ID != "" {
		aliases = addAlias(aliases, strings.ReplaceAll(step.ID, "-", " "))
		aliases = addAlias(aliases, strings.ReplaceAll(step.ID, "_", " "))
	}
	if step.Name != "" {
		aliases = addAlias(aliases, strings.ToLower(step.Name))
	}
	if step.ShortName != "" {
		aliases = addAlias(aliases, strings.ToLower(step.ShortName))
	}
	return dedupeKeyed(aliases)
}

// seedProcessAliases derives the initial process alias set from the
// process id (with separator variants) and its display name.
func seedProcessAliases(processID, name string) []keyedAlias {
	var aliases []keyedAlias
	aliases = addAlias(aliases, processID)
	aliases = addAlias(aliases, strings.ReplaceAll(processID, "-", " "))
	aliases = addAlias(aliases, strings.ReplaceAll(processID, "_", " "))
	aliases = addAlias(aliases, name)
	return aliases
}

// CompileProcess extracts one process from the workflow definition
// document into a CatalogProcess: ordered steps flattened across phases,
// seeded step and process aliases, step-to-phase mapping, and default
// health thresholds. Override aliases are merged after seeding and only
// add new normalized forms. Fails when the named process is absent.
func CompileProcess(def *models.WorkflowDefinitionDoc, processID string, override *models.AliasOverridesDoc) (models.CatalogProcess, error) {
	var process *models.DefinitionProcess
	for i := range def.Processes {
		if def.Processes[i].ID == processID {
			process = &def.Processes[i]
			break
		}
	}
	if process == nil {
		return models.CatalogProcess{}, fmt.Errorf("%w: workflow definition is missing process id %q", ErrConfig, processID)
	}

	var phaseIDs []string
	var steps []string
	stepToPhase := make(map[string]string)
	stepAliases := make(map[string][]string)

	for _, phase := range process.Phases {
		if phase.ID != "" {
			phaseIDs = append(phaseIDs, phase.ID)
		}
		for _, step := range phase.Steps {
			if step.ID == "" {
				continue
			}
			steps = append(steps, step.ID)
			if phase.ID != "" {
				stepToPhase[step.ID] = phase.ID
			}
			stepAliases[step.ID] = seedStepAliases(step)
		}
	}

	processAliases := seedProcessAliases(processID, process.Name)

	if override != nil {
		if ovr, ok := override.Processes[processID]; ok {
			for _, alias := range ovr.ProcessAliases {
				processAliases = addAlias(processAliases, alias)
			}
			for _, stepID := range sortedOverrideSteps(ovr.StepAliases) {
				existing := make([]keyedAlias, 0, len(stepAliases[stepID]))
				for _, a := range stepAliases[stepID] {
					existing = append(existing, keyedAlias{alias: a, key: NormalizeText(a)})
				}
				for _, alias := range ovr.StepAliases[stepID] {
					existing = addAlias(existing, alias)
				}
				stepAliases[stepID] = dedupeKeyed(existing)
			}
		}
	}

	displayName := process.Name
	if displayName == "" {
		displayName = processID
	}
	owner := process.Owner
	if owner == "" {
		owner = process.OwnerRole
	}

	return models.CatalogProcess{
		ProcessID:      processID,
		DisplayName:    displayName,
		Owner:          owner,
		Steps:          steps,
		ProcessAliases: dedupeKeyed(processAliases),
		StepAliases:    stepAliases,
		Health:         models.DefaultHealthSpec(),
		Phases:         phaseIDs,
		StepToPhase:    stepToPhase,
	}, nil
}

// CompileFromSpec builds a process from a flat declarative spec: an
// explicit step list plus aliases and health thresholds. It fails when
// the step list is empty, when normalized steps collide, or when the
// health thresholds are inverted.
func CompileFromSpec(processID string, spec models.ProcessSpec) (models.CatalogProcess, error) {
	if len(spec.Steps) == 0 {
		return models.CatalogProcess{}, fmt.Errorf("%w: process %q must define non-empty steps", ErrValidation, processID)
	}
	seen := make(map[string]struct{}, len(spec.Steps))
	for _, s := range spec.Steps {
		key := NormalizeText(s)
		if _, ok := seen[key]; ok {
			return models.CatalogProcess{}, fmt.Errorf("%w: process %q steps must be unique after normalization", ErrValidation, processID)
		}
		seen[key] = struct{}{}
	}

	health := models.DefaultHealthSpec()
	if spec.Health != nil {
		health = *spec.Health
	}
	if health.OverdueAfterDays < health.AtRiskAfterDays {
		return models.CatalogProcess{}, fmt.Errorf("%w: process %q health thresholds invalid: overdue %d < at_risk %d",
			ErrValidation, processID, health.OverdueAfterDays, health.AtRiskAfterDays)
	}

	stepAliases := make(map[string][]string, len(spec.StepAliases))
	for stepID, aliases := range spec.StepAliases {
		stepAliases[stepID] = DedupeAliases(aliases)
	}

	displayName := spec.DisplayName
	if displayName == "" {
		displayName = processID
	}

	return models.CatalogProcess{
		ProcessID:      processID,
		DisplayName:    displayName,
		Owner:          spec.Owner,
		Steps:          append([]string(nil), spec.Steps...),
		ProcessAliases: DedupeAliases(spec.ProcessAliases),
		StepAliases:    stepAliases,
		Health:         health,
	}, nil
}

// BuildUnifiedCatalog merges the specially compiled primary process with
// the flat-spec processes into one catalog. Reserved ids are never taken
// from the flat-spec document; the primary process always comes from the
// definition-compiled path.
func BuildUnifiedCatalog(primary models.CatalogProcess, doc *models.ProcessCatalogDoc, reserved []string) (*models.ProcessCatalog, error) {
	reservedSet := make(map[string]struct{}, len(reserved))
	for _, id := range reserved {
		reservedSet[id] = struct{}{}
	}

	catalog := &models.ProcessCatalog{
		ProcessIDs: []string{primary.ProcessID},
		Processes:  map[string]models.CatalogProcess{primary.ProcessID: primary},
	}
	if doc == nil {
		return catalog, nil
	}
	for _, processID := range doc.ProcessIDs {
		if _, ok := reservedSet[processID]; ok {
			continue
		}
		compiled, err := CompileFromSpec(processID, doc.Processes[processID])
		if err != nil {
			return nil, err
		}
		catalog.ProcessIDs = append(catalog.ProcessIDs, processID)
		catalog.Processes[processID] = compiled
	}
	return catalog, nil
}

// sortedOverrideSteps returns override step ids in a stable order.
func sortedOverrideSteps(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	// Lexical order keeps override application deterministic; the YAML
	// map loses document order.
	sort.Strings(out)
	return out
}
