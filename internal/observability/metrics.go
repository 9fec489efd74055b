package observability

import (
	"fmt"
	"time"
)

// RunMetrics holds calculated metrics derived from the event log.
type RunMetrics struct {
	RunsStarted       int            `json:"runs_started"`
	RunsReconciled    int            `json:"runs_reconciled"`
	RunsFailed        int            `json:"runs_failed"`
	WorkflowsWritten  int            `json:"workflows_written"`
	MatchCounts       map[string]int `json:"match_counts"`
	InstancesEnriched int            `json:"instances_enriched"`
	EventCount        int            `json:"event_count"`
	OldestEvent       *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent       *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives run metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*RunMetrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator that reads from the
// given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them.
func (mc *metricsCalculator) Calculate(since time.Time) (*RunMetrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &RunMetrics{
		MatchCounts: make(map[string]int),
	}
	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case EventRunStarted:
			m.RunsStarted++
		case EventRunEnriched:
			if n, ok := asInt(event.Data["instances"]); ok {
				m.InstancesEnriched += n
			}
		case EventRunReconciled:
			m.RunsReconciled++
			if n, ok := asInt(event.Data["workflows_written"]); ok {
				m.WorkflowsWritten += n
			}
			if counts, ok := event.Data["match_counts"].(map[string]any); ok {
				for key, raw := range counts {
					if n, ok := asInt(raw); ok {
						m.MatchCounts[key] += n
					}
				}
			}
		case EventRunFailed:
			m.RunsFailed++
		}
	}

	return m, nil
}

// asInt converts the JSON number shapes an event round-trip can produce.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
