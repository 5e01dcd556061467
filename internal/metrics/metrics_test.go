package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewSyncMetrics(reg)
	require.NoError(t, err)

	m.ObserveRun("completed", 2*time.Second)
	m.ObserveRun("skipped", 0)
	m.EventOutcome("created")
	m.EventOutcome("created")
	m.EventOutcome("failed")
	m.Matched("mysideline_id")
	m.Deactivated(3)
	m.Deactivated(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsTotal.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsTotal.WithLabelValues("skipped")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.eventsTotal.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.matchesTotal.WithLabelValues("mysideline_id")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.deactivatedTotal))
	assert.Greater(t, testutil.ToFloat64(m.lastSuccessTimestamp), 0.0)
}

func TestSyncMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewSyncMetrics(reg)
	require.NoError(t, err)
	_, err = NewSyncMetrics(reg)
	assert.Error(t, err)
}

func TestSyncMetrics_NilSafe(t *testing.T) {
	var m *SyncMetrics
	assert.NotPanics(t, func() {
		m.ObserveRun("failed", time.Second)
		m.EventOutcome("updated")
		m.Matched("date_title")
		m.Deactivated(1)
	})
}
