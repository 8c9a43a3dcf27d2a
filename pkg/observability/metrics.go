package observability

import (
	"context"

	"github.com/aretw0/planner/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the journal collectors. One Metrics serves every workspace of a host;
// series are labelled by workspace.
type Metrics struct {
	Commands     *prometheus.CounterVec
	Failures     *prometheus.CounterVec
	Depth        *prometheus.GaugeVec
	ItemsChanged *prometheus.CounterVec
	Recomputes   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planner_history_events_total",
				Help: "History events by type (execute, record, undo, redo, evict)",
			},
			[]string{"workspace", "event"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planner_history_backend_failures_total",
				Help: "Commands applied with a registry backend failure",
			},
			[]string{"workspace", "event"},
		),
		Depth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "planner_history_depth",
				Help: "Current depth of the undo and redo stacks",
			},
			[]string{"workspace", "stack"},
		),
		ItemsChanged: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planner_registry_changes_total",
				Help: "Registry membership change broadcasts",
			},
			[]string{"workspace", "registry"},
		),
		Recomputes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planner_coverage_recomputes_total",
				Help: "Deferred overlay recomputations by outcome (ok, skipped, failed)",
			},
			[]string{"workspace", "outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Commands, m.Failures, m.Depth, m.ItemsChanged, m.Recomputes)
	}
	return m
}

// Hooks returns lifecycle hooks recording into m for one workspace.
func (m *Metrics) Hooks(workspace string) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommand: func(ctx context.Context, e *domain.CommandEvent) {
			m.Commands.WithLabelValues(workspace, string(e.Type)).Inc()
			if e.Err != nil {
				m.Failures.WithLabelValues(workspace, string(e.Type)).Inc()
			}
		},
		OnHistoryChange: func(ctx context.Context, s domain.HistoryState) {
			m.Depth.WithLabelValues(workspace, "undo").Set(float64(s.UndoDepth))
			m.Depth.WithLabelValues(workspace, "redo").Set(float64(s.RedoDepth))
		},
		OnItemsChanged: func(ctx context.Context, e *domain.ItemsChangedEvent) {
			for _, name := range e.Registries {
				m.ItemsChanged.WithLabelValues(workspace, string(name)).Inc()
			}
		},
		OnRecompute: func(ctx context.Context, e *domain.RecomputeEvent) {
			outcome := "ok"
			switch {
			case e.Err != nil:
				outcome = "failed"
			case e.Skipped:
				outcome = "skipped"
			}
			m.Recomputes.WithLabelValues(workspace, outcome).Inc()
		},
	}
}

// Forget drops the series of a closed workspace.
func (m *Metrics) Forget(workspace string) {
	labels := prometheus.Labels{"workspace": workspace}
	m.Commands.DeletePartialMatch(labels)
	m.Failures.DeletePartialMatch(labels)
	m.Depth.DeletePartialMatch(labels)
	m.ItemsChanged.DeletePartialMatch(labels)
	m.Recomputes.DeletePartialMatch(labels)
}
