// Package metrics holds the Prometheus collectors of the registrar data layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Guarded write outcomes.
const (
	OutcomeCommitted = "committed"
	OutcomeConflict  = "conflict"
	OutcomeFailed    = "failed"
)

// Metrics groups the counters updated by services and the concurrency guard.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	reconcileChanges  *prometheus.CounterVec
	invalidSelections prometheus.Counter
	pageQueries       *prometheus.CounterVec
	guardedWrites     *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		reconcileChanges: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registrar_reconcile_changes_total",
				Help: "Associations added or removed by reconciliation",
			},
			[]string{"op"},
		),
		invalidSelections: f.NewCounter(prometheus.CounterOpts{
			Name: "registrar_invalid_selections_total",
			Help: "Selected identifiers skipped because they did not parse or did not exist",
		}),
		pageQueries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registrar_page_queries_total",
				Help: "Pages served per entity",
			},
			[]string{"entity"},
		),
		guardedWrites: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registrar_guarded_writes_total",
				Help: "Writes through the concurrency guard by outcome",
			},
			[]string{"entity", "outcome"},
		),
	}
}

// Reconciled records one reconciliation.
func (m *Metrics) Reconciled(added, removed int) {
	if m == nil {
		return
	}
	m.reconcileChanges.WithLabelValues("add").Add(float64(added))
	m.reconcileChanges.WithLabelValues("remove").Add(float64(removed))
}

// InvalidSelections records skipped selection entries.
func (m *Metrics) InvalidSelections(n int) {
	if m == nil || n == 0 {
		return
	}
	m.invalidSelections.Add(float64(n))
}

// PageServed records one page query.
func (m *Metrics) PageServed(entity string) {
	if m == nil {
		return
	}
	m.pageQueries.WithLabelValues(entity).Inc()
}

// GuardedWrite records the outcome of one guarded write.
func (m *Metrics) GuardedWrite(entity, outcome string) {
	if m == nil {
		return
	}
	m.guardedWrites.WithLabelValues(entity, outcome).Inc()
}
