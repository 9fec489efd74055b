package core

import (
	"reflect"
	"testing"

	"github.com/valter-silva-au/workflow-radar/pkg/models"
)

func testWorkflowDefinition() *WorkflowDefinition {
	return BuildWorkflowDefinition(testDefinitionDoc())
}

func TestBuildWorkflowDefinition(t *testing.T) {
	def := testWorkflowDefinition()

	if !reflect.DeepEqual(def.ProcessIDs, []string{"recruiting"}) {
		t.Errorf("process ids = %v", def.ProcessIDs)
	}
	wantSteps := []string{"role-details", "sourcing", "interviewing", "offer"}
	if !reflect.DeepEqual(def.StepsInOrder["recruiting"], wantSteps) {
		t.Errorf("steps in order = %v, want %v", def.StepsInOrder["recruiting"], wantSteps)
	}
	if !reflect.DeepEqual(def.PhasesInOrder["recruiting"], []string{"prep", "active"}) {
		t.Errorf("phases in order = %v", def.PhasesInOrder["recruiting"])
	}
	if got := def.StepToPhase[ProcessStep{"recruiting", "offer"}]; got != "active" {
		t.Errorf("step to phase = %q, want active", got)
	}
	wantActive := []string{"sourcing", "interviewing", "offer"}
	if !reflect.DeepEqual(def.PhaseToSteps[ProcessPhase{"recruiting", "active"}], wantActive) {
		t.Errorf("phase to steps = %v", def.PhaseToSteps[ProcessPhase{"recruiting", "active"}])
	}
	if def.StepInfo[ProcessStep{"recruiting", "sourcing"}].Name != "Candidate Sourcing" {
		t.Error("step info name not recorded")
	}
}

func TestBuildWorkflowDefinition_NilDoc(t *testing.T) {
	def := BuildWorkflowDefinition(nil)
	if len(def.ProcessIDs) != 0 {
		t.Errorf("expected empty definition, got %v", def.ProcessIDs)
	}
}

func TestResolveProcessID(t *testing.T) {
	def := testWorkflowDefinition()
	tests := []struct {
		name      string
		canonical string
		scopeKeys []string
		want      string
	}{
		{"empty", "", nil, ""},
		{"direct hit", "recruiting", nil, "recruiting"},
		{"normalized name match", "Recruiting Pipeline", nil, "recruiting"},
		{"scope fallback", "hiring", []string{"recruiting", "hiring"}, "recruiting"},
		{"no resolution", "payroll", []string{"payroll"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := def.ResolveProcessID(tt.canonical, tt.scopeKeys); got != tt.want {
				t.Errorf("ResolveProcessID(%q) = %q, want %q", tt.canonical, got, tt.want)
			}
		})
	}
}

func TestMatchStepInDefinition(t *testing.T) {
	def := testWorkflowDefinition()
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"exact id", "role-details", "role-details"},
		{"exact name", "Candidate Sourcing", "sourcing"},
		{"containment unique", "now interviewing panel", "interviewing"},
		{"ambiguous abstains", "sourcing then interviewing", ""},
		{"no match", "budget approval", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := def.MatchStepInDefinition(tt.raw, "recruiting"); got != tt.want {
				t.Errorf("MatchStepInDefinition(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDeriveCurrentStepID_ExplicitCanonicalWins(t *testing.T) {
	def := testWorkflowDefinition()
	inst := &models.Instance{
		CanonicalCurrentStepID: "interviewing",
		StepsState:             map[string]string{"sourcing": models.StepInProgress},
	}
	if got := def.DeriveCurrentStepID(inst, "recruiting"); got != "interviewing" {
		t.Errorf("got %q, want interviewing", got)
	}
}

func TestDeriveCurrentStepID_StepsStateScan(t *testing.T) {
	def := testWorkflowDefinition()

	inst := &models.Instance{StepsState: map[string]string{
		"role-details": models.StepCompleted,
		"sourcing":     models.StepBlocked,
	}}
	if got := def.DeriveCurrentStepID(inst, "recruiting"); got != "sourcing" {
		t.Errorf("first active step: got %q, want sourcing", got)
	}

	inst = &models.Instance{StepsState: map[string]string{
		"role-details": models.StepCompleted,
		"sourcing":     "completed_inferred",
	}}
	if got := def.DeriveCurrentStepID(inst, "recruiting"); got != "sourcing" {
		t.Errorf("last completed fallback: got %q, want sourcing", got)
	}
}

func TestDeriveCurrentStepID_FreeTextFallback(t *testing.T) {
	def := testWorkflowDefinition()
	inst := &models.Instance{State: models.InstanceState{Step: "sent the offer today"}}
	if got := def.DeriveCurrentStepID(inst, "recruiting"); got != "offer" {
		t.Errorf("got %q, want offer", got)
	}
}

func TestDeriveCurrentStepID_UnknownProcess(t *testing.T) {
	def := testWorkflowDefinition()
	inst := &models.Instance{CanonicalCurrentStepID: "offer"}
	if got := def.DeriveCurrentStepID(inst, ""); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestInferStepsFromPosition(t *testing.T) {
	def := testWorkflowDefinition()
	steps := def.InferStepsFromPosition("recruiting", "interviewing", "blocked", "completed_inferred")

	wantStatuses := []string{"completed_inferred", "completed_inferred", models.StepBlocked, models.StepNotStarted}
	if len(steps) != len(wantStatuses) {
		t.Fatalf("got %d steps, want %d", len(steps), len(wantStatuses))
	}
	for i, want := range wantStatuses {
		if steps[i].Status != want {
			t.Errorf("step %d (%s) status = %q, want %q", i, steps[i].ID, steps[i].Status, want)
		}
	}
}

func TestInferStepsFromPosition_StatusMapping(t *testing.T) {
	def := testWorkflowDefinition()
	tests := []struct {
		status string
		want   string
	}{
		{"done", models.StepCompleted},
		{"completed", models.StepCompleted},
		{"blocked", models.StepBlocked},
		{"active", models.StepInProgress},
		{"", models.StepInProgress},
	}
	for _, tt := range tests {
		steps := def.InferStepsFromPosition("recruiting", "sourcing", tt.status, "completed_inferred")
		if steps[1].Status != tt.want {
			t.Errorf("status %q: current step = %q, want %q", tt.status, steps[1].Status, tt.want)
		}
	}
}

func TestInferStepsFromPosition_UnknownCurrentStep(t *testing.T) {
	def := testWorkflowDefinition()
	if steps := def.InferStepsFromPosition("recruiting", "nonexistent", "active", "completed_inferred"); steps != nil {
		t.Errorf("expected nil for unknown current step, got %v", steps)
	}
	if steps := def.InferStepsFromPosition("recruiting", "", "active", "completed_inferred"); steps != nil {
		t.Errorf("expected nil for empty current step, got %v", steps)
	}
}

func TestInferPhaseID(t *testing.T) {
	def := testWorkflowDefinition()
	if got := def.InferPhaseID("recruiting", "sourcing"); got != "active" {
		t.Errorf("got %q, want active", got)
	}
	if got := def.InferPhaseID("recruiting", "nonexistent"); got != PhaseUnknown {
		t.Errorf("got %q, want %q", got, PhaseUnknown)
	}
	if got := def.InferPhaseID("", ""); got != PhaseUnknown {
		t.Errorf("got %q, want %q", got, PhaseUnknown)
	}
}

func TestInferPhasesFromSteps(t *testing.T) {
	def := testWorkflowDefinition()
	steps := def.InferStepsFromPosition("recruiting", "interviewing", "active", "completed_inferred")
	phases := def.InferPhasesFromSteps("recruiting", steps, "completed_inferred")

	if len(phases) != 2 {
		t.Fatalf("got %d phases, want 2", len(phases))
	}
	if phases[0].ID != "prep" || phases[0].Status != "completed_inferred" {
		t.Errorf("prep phase = %+v", phases[0])
	}
	if phases[1].ID != "active" || phases[1].Status != models.StepInProgress {
		t.Errorf("active phase = %+v", phases[1])
	}
}

func TestInferPhasesFromSteps_NotStarted(t *testing.T) {
	def := testWorkflowDefinition()
	steps := def.InferStepsFromPosition("recruiting", "role-details", "active", "completed_inferred")
	phases := def.InferPhasesFromSteps("recruiting", steps, "completed_inferred")

	if phases[0].Status != models.StepInProgress {
		t.Errorf("prep phase = %+v", phases[0])
	}
	if phases[1].Status != models.StepNotStarted {
		t.Errorf("active phase = %+v", phases[1])
	}
}
