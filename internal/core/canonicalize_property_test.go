package core

import (
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/valter-silva-au/workflow-radar/pkg/models"
)

// An exact step-id hit always wins the ladder, even when the same text
// is registered as an alias of a different step.
func TestProperty_MatchStepExactBeatsAlias(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		steps := rapid.SliceOfNDistinct(
			rapid.StringMatching(`[a-z]{3,10}`), 2, 6, rapid.ID[string],
		).Draw(rt, "steps")
		target := rapid.IntRange(0, len(steps)-1).Draw(rt, "target")
		other := (target + 1) % len(steps)

		catalog := &models.ProcessCatalog{
			ProcessIDs: []string{"proc"},
			Processes: map[string]models.CatalogProcess{
				"proc": {
					ProcessID: "proc",
					Steps:     steps,
					StepAliases: map[string][]string{
						steps[other]: {steps[target]},
					},
				},
			},
		}

		got := MatchStep(steps[target], "proc", catalog)
		if got.StepID != steps[target] {
			t.Fatalf("matched %q, want exact id %q", got.StepID, steps[target])
		}
		if got.MatchType != models.MatchExact || got.Score != 1.0 {
			t.Fatalf("match = %+v, want exact with score 1.0", got)
		}
	})
}

// A unique alias embedded in arbitrary surrounding noise still resolves
// to its step via the containment rung, with the length-ratio score.
func TestProperty_MatchStepContainmentSurvivesPadding(t *testing.T) {
	catalog := testProcessCatalog()

	rapid.Check(t, func(rt *rapid.T) {
		// Digit-only padding cannot collide with any catalog text.
		prefix := rapid.SliceOfN(rapid.StringMatching(`[0-9]{1,5}`), 0, 3).Draw(rt, "prefix")
		suffix := rapid.SliceOfN(rapid.StringMatching(`[0-9]{1,5}`), 0, 3).Draw(rt, "suffix")

		parts := append(append(append([]string{}, prefix...), "candidate sourcing"), suffix...)
		raw := strings.Join(parts, " ")

		got := MatchStep(raw, "recruiting", catalog)
		if got.StepID != "sourcing" {
			t.Fatalf("MatchStep(%q) = %+v, want sourcing", raw, got)
		}
		if len(prefix) == 0 && len(suffix) == 0 {
			if got.MatchType != models.MatchAlias {
				t.Fatalf("bare alias should hit the alias rung, got %+v", got)
			}
			return
		}
		if got.MatchType != models.MatchFuzzy {
			t.Fatalf("padded alias should hit the containment rung, got %+v", got)
		}
		want := float64(len("candidate sourcing")) / float64(len(NormalizeText(raw)))
		if diff := got.Score - want; diff < -1e-9 || diff > 1e-9 {
			t.Fatalf("score = %v, want %v", got.Score, want)
		}
	})
}
