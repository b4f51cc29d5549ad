// Package metrics exposes Prometheus counters for account workflows.
package metrics

import (
	"context"

	auth "github.com/goliatone/go-auth-confirm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "account"

// Recorder counts workflow outcomes and activity events.
type Recorder struct {
	outcomes *prometheus.CounterVec
	activity *prometheus.CounterVec
}

var (
	_ auth.OutcomeRecorder = (*Recorder)(nil)
	_ auth.ActivitySink    = (*Recorder)(nil)
)

// NewRecorder registers the counters with reg. A nil reg uses the default
// registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		outcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workflow_outcomes_total",
				Help:      "Total number of terminal account workflow outcomes",
			},
			[]string{"workflow", "outcome"},
		),
		activity: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "activity_events_total",
				Help:      "Total number of recorded account activity events",
			},
			[]string{"event"},
		),
	}
}

// RecordOutcome implements auth.OutcomeRecorder.
func (r *Recorder) RecordOutcome(workflow, outcome string) {
	r.outcomes.WithLabelValues(workflow, outcome).Inc()
}

// Record implements auth.ActivitySink.
func (r *Recorder) Record(_ context.Context, event auth.ActivityEvent) error {
	r.activity.WithLabelValues(string(event.EventType)).Inc()
	return nil
}
