package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Reconciled(2, 1)
	m.Reconciled(1, 0)
	m.InvalidSelections(0)
	m.InvalidSelections(3)
	m.PageServed("student")
	m.GuardedWrite("department", OutcomeConflict)
	m.GuardedWrite("department", OutcomeCommitted)
	m.GuardedWrite("department", OutcomeCommitted)

	require.Equal(t, 3.0, testutil.ToFloat64(m.reconcileChanges.WithLabelValues("add")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.reconcileChanges.WithLabelValues("remove")))
	require.Equal(t, 3.0, testutil.ToFloat64(m.invalidSelections))
	require.Equal(t, 1.0, testutil.ToFloat64(m.pageQueries.WithLabelValues("student")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.guardedWrites.WithLabelValues("department", OutcomeCommitted)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.guardedWrites.WithLabelValues("department", OutcomeConflict)))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.Reconciled(1, 1)
		m.InvalidSelections(1)
		m.PageServed("student")
		m.GuardedWrite("department", OutcomeFailed)
	})
}
