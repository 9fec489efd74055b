package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestLog(t *testing.T) (EventLog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("opening log: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log, path
}

func TestEventLog_WriteReadRoundTrip(t *testing.T) {
	log, _ := newTestLog(t)

	event := Event{
		Time:    time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Level:   "INFO",
		Type:    EventRunStarted,
		RunID:   "run-1",
		Message: "run started",
		Data:    map[string]any{"run_dir": "runs/001"},
	}
	if err := log.Write(event); err != nil {
		t.Fatalf("write: %v", err)
	}

	events, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	got := events[0]
	if got.Type != EventRunStarted || got.RunID != "run-1" || got.Message != "run started" {
		t.Errorf("event = %+v", got)
	}
	if !got.Time.Equal(event.Time) {
		t.Errorf("time = %v, want %v", got.Time, event.Time)
	}
	if got.Data["run_dir"] != "runs/001" {
		t.Errorf("data = %v", got.Data)
	}
}

func TestEventLog_WriteStampsZeroTime(t *testing.T) {
	log, _ := newTestLog(t)

	before := time.Now().UTC().Add(-time.Second)
	if err := log.Write(Event{Type: EventRunStarted}); err != nil {
		t.Fatalf("write: %v", err)
	}

	events, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Time.Before(before) {
		t.Errorf("zero time not stamped: %v", events[0].Time)
	}
}

func TestEventLog_Filters(t *testing.T) {
	log, _ := newTestLog(t)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	seed := []Event{
		{Time: base, Type: EventRunStarted, RunID: "run-a"},
		{Time: base.Add(time.Hour), Type: EventRunReconciled, RunID: "run-a"},
		{Time: base.Add(2 * time.Hour), Type: EventRunStarted, RunID: "run-b"},
		{Time: base.Add(3 * time.Hour), Type: EventRunFailed, RunID: "run-b"},
	}
	for _, e := range seed {
		if err := log.Write(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	since := base.Add(90 * time.Minute)
	until := base.Add(time.Hour)

	tests := []struct {
		name   string
		filter EventFilter
		want   int
	}{
		{"no filter", EventFilter{}, 4},
		{"since", EventFilter{Since: &since}, 2},
		{"until", EventFilter{Until: &until}, 2},
		{"by type", EventFilter{Type: EventRunStarted}, 2},
		{"by run id", EventFilter{RunID: "run-b"}, 2},
		{"type and run id", EventFilter{Type: EventRunFailed, RunID: "run-b"}, 1},
		{"no match", EventFilter{RunID: "run-c"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := log.Read(tt.filter)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if len(events) != tt.want {
				t.Errorf("got %d events, want %d", len(events), tt.want)
			}
		})
	}
}

func TestEventLog_SkipsMalformedLines(t *testing.T) {
	log, path := newTestLog(t)

	if err := log.Write(Event{Type: EventRunStarted, RunID: "run-a"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("opening log: %v", err)
	}
	if _, err := f.WriteString("{broken json\n\n"); err != nil {
		t.Fatalf("appending garbage: %v", err)
	}
	f.Close()
	if err := log.Write(Event{Type: EventRunReconciled, RunID: "run-a"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	events, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2 (malformed lines skipped)", len(events))
	}
}

func TestEventLog_AppendsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")

	first, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("opening log: %v", err)
	}
	if err := first.Write(Event{Type: EventRunStarted}); err != nil {
		t.Fatalf("write: %v", err)
	}
	first.Close()

	second, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("reopening log: %v", err)
	}
	defer second.Close()
	if err := second.Write(Event{Type: EventRunReconciled}); err != nil {
		t.Fatalf("write: %v", err)
	}

	events, err := second.Read(EventFilter{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2", len(events))
	}
}
