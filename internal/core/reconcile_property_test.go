package core

import (
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/valter-silva-au/workflow-radar/pkg/models"
)

// Workflow id generation is a pure function of its inputs: same inputs,
// same id, with the stable wf_ + 12 hex shape.
func TestProperty_GenerateWorkflowIDPurity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		process := rapid.StringMatching(`[a-z_]{0,12}`).Draw(rt, "process")
		client := rapid.String().Draw(rt, "client")
		role := rapid.String().Draw(rt, "role")
		key := rapid.StringMatching(`[a-z0-9-]{1,20}`).Draw(rt, "key")
		rawClient := rapid.String().Draw(rt, "rawClient")
		rawRole := rapid.String().Draw(rt, "rawRole")

		a := GenerateWorkflowID(process, client, role, key, rawClient, rawRole)
		b := GenerateWorkflowID(process, client, role, key, rawClient, rawRole)
		if a != b {
			t.Fatalf("id not deterministic: %q vs %q", a, b)
		}
		if !strings.HasPrefix(a, "wf_") || len(a) != 15 {
			t.Fatalf("id shape wrong: %q", a)
		}
		for _, r := range a[3:] {
			if !strings.ContainsRune("0123456789abcdef", r) {
				t.Fatalf("id suffix not hex: %q", a)
			}
		}
	})
}

// Reconciling the same instances against the output of a previous
// reconciliation must not create new workflows: every instance with a
// complete canonical triple finds its workflow by exact key.
func TestProperty_ReconcileIdempotent(t *testing.T) {
	clients := []string{"Acme Corp", "Initech Corp", "Globex"}
	roles := []string{"Data Engineer", "Product Manager", "Designer"}
	steps := []string{"role-details", "sourcing", "interviewing", "offer"}

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(rt, "n")
		var instances []models.Instance
		for i := 0; i < n; i++ {
			instances = append(instances, models.Instance{
				InstanceKey:            rapid.StringMatching(`inst-[a-z0-9]{4}`).Draw(rt, "key"),
				CanonicalProcess:       "recruiting",
				CanonicalClient:        rapid.SampledFrom(clients).Draw(rt, "client"),
				CanonicalRole:          rapid.SampledFrom(roles).Draw(rt, "role"),
				CanonicalCurrentStepID: rapid.SampledFrom(steps).Draw(rt, "step"),
				State: models.InstanceState{
					Status:        rapid.SampledFrom([]string{"active", "blocked", "done"}).Draw(rt, "status"),
					LastUpdatedAt: "2026-03-01T10:00:00Z",
				},
				Health: models.HealthOnTrack,
			})
		}

		cfg := *DefaultReconcileConfig()
		engine := NewReconciliationEngine(testWorkflowDefinition(), cfg)

		first := engine.Reconcile(instances, nil, nil)
		second := engine.Reconcile(instances, nil, first.Workflows)

		if len(second.Workflows) != len(first.Workflows) {
			t.Fatalf("workflow count changed: %d -> %d", len(first.Workflows), len(second.Workflows))
		}
		if created := second.Reconciliation.MatchCounts[WorkflowMatchCreated]; created != 0 {
			t.Fatalf("second run created %d workflows", created)
		}
	})
}

// Evidence merging never exceeds the cap and never reorders the
// first-seen sequence.
func TestProperty_MergeEvidenceIDs(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		existing := rapid.SliceOfN(rapid.StringMatching(`m[0-9]{1,3}`), 0, 30).Draw(rt, "existing")
		incoming := rapid.SliceOfN(rapid.StringMatching(`m[0-9]{1,3}`), 0, 30).Draw(rt, "incoming")
		maxIDs := rapid.IntRange(1, 25).Draw(rt, "maxIDs")

		merged := mergeEvidenceIDs(existing, incoming, maxIDs)

		if len(merged) > maxIDs {
			t.Fatalf("merged %d ids, cap %d", len(merged), maxIDs)
		}
		seen := make(map[string]struct{}, len(merged))
		for _, id := range merged {
			if _, dup := seen[id]; dup {
				t.Fatalf("duplicate id %q in %v", id, merged)
			}
			seen[id] = struct{}{}
		}
	})
}
