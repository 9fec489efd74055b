package observability

import (
	"path/filepath"
	"testing"
	"time"
)

func TestMetricsCalculator_Aggregates(t *testing.T) {
	log, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatalf("opening log: %v", err)
	}
	defer log.Close()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	seed := []Event{
		{Time: base, Type: EventRunStarted, RunID: "run-a"},
		{Time: base.Add(time.Minute), Type: EventRunEnriched, RunID: "run-a",
			Data: map[string]any{"instances": 12}},
		{Time: base.Add(2 * time.Minute), Type: EventRunReconciled, RunID: "run-a",
			Data: map[string]any{
				"workflows_written": 5,
				"match_counts":      map[string]any{"exact": 3, "fuzzy": 1, "created": 1},
			}},
		{Time: base.Add(time.Hour), Type: EventRunStarted, RunID: "run-b"},
		{Time: base.Add(time.Hour + time.Minute), Type: EventRunEnriched, RunID: "run-b",
			Data: map[string]any{"instances": 8}},
		{Time: base.Add(time.Hour + 2*time.Minute), Type: EventRunReconciled, RunID: "run-b",
			Data: map[string]any{
				"workflows_written": 2,
				"match_counts":      map[string]any{"exact": 2},
			}},
		{Time: base.Add(2 * time.Hour), Type: EventRunStarted, RunID: "run-c"},
		{Time: base.Add(2*time.Hour + time.Minute), Type: EventRunFailed, RunID: "run-c",
			Data: map[string]any{"stage": "enrich"}},
	}
	for _, e := range seed {
		if err := log.Write(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	calc := NewMetricsCalculator(log)
	m, err := calc.Calculate(base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	if m.EventCount != 8 {
		t.Errorf("event count = %d, want 8", m.EventCount)
	}
	if m.RunsStarted != 3 || m.RunsReconciled != 2 || m.RunsFailed != 1 {
		t.Errorf("run counts = started %d reconciled %d failed %d",
			m.RunsStarted, m.RunsReconciled, m.RunsFailed)
	}
	if m.InstancesEnriched != 20 {
		t.Errorf("instances enriched = %d, want 20", m.InstancesEnriched)
	}
	if m.WorkflowsWritten != 7 {
		t.Errorf("workflows written = %d, want 7", m.WorkflowsWritten)
	}
	if m.MatchCounts["exact"] != 5 || m.MatchCounts["fuzzy"] != 1 || m.MatchCounts["created"] != 1 {
		t.Errorf("match counts = %v", m.MatchCounts)
	}
	if m.OldestEvent == nil || !m.OldestEvent.Equal(base) {
		t.Errorf("oldest event = %v, want %v", m.OldestEvent, base)
	}
	wantNewest := base.Add(2*time.Hour + time.Minute)
	if m.NewestEvent == nil || !m.NewestEvent.Equal(wantNewest) {
		t.Errorf("newest event = %v, want %v", m.NewestEvent, wantNewest)
	}
}

func TestMetricsCalculator_SinceExcludesOlderEvents(t *testing.T) {
	log, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatalf("opening log: %v", err)
	}
	defer log.Close()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{Time: base, Type: EventRunStarted},
		{Time: base.Add(24 * time.Hour), Type: EventRunStarted},
		{Time: base.Add(48 * time.Hour), Type: EventRunStarted},
	}
	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	calc := NewMetricsCalculator(log)
	m, err := calc.Calculate(base.Add(12 * time.Hour))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if m.RunsStarted != 2 {
		t.Errorf("runs started = %d, want 2", m.RunsStarted)
	}
	if m.OldestEvent == nil || !m.OldestEvent.Equal(base.Add(24*time.Hour)) {
		t.Errorf("oldest event = %v", m.OldestEvent)
	}
}

func TestMetricsCalculator_EmptyLog(t *testing.T) {
	log, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatalf("opening log: %v", err)
	}
	defer log.Close()

	calc := NewMetricsCalculator(log)
	m, err := calc.Calculate(time.Time{})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if m.EventCount != 0 || m.RunsStarted != 0 {
		t.Errorf("metrics = %+v, want zeroes", m)
	}
	if m.OldestEvent != nil || m.NewestEvent != nil {
		t.Errorf("event bounds should be nil: %v %v", m.OldestEvent, m.NewestEvent)
	}
}
