package metrics_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/dashboard-gateway/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.Decision("edge", "verified")
	m.Decision("edge", "verified")
	m.CacheLookup("hit")
	m.Refresh("endpoint", "failed")
	m.ObserveIdentity("verify", time.Now())

	require.Equal(t, 2.0, testutil.ToFloat64(m.GateDecisions.WithLabelValues("edge", "verified")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Refreshes.WithLabelValues("endpoint", "failed")))
	require.Equal(t, 1, testutil.CollectAndCount(m.IdentityLatency))
}

func TestMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := metrics.New(reg)
	require.NoError(t, err)
	second, err := metrics.New(reg)
	require.NoError(t, err)

	first.CacheLookup("miss")
	require.Equal(t, 1.0, testutil.ToFloat64(second.CacheLookups.WithLabelValues("miss")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics
	require.NotPanics(t, func() {
		m.Decision("edge", "cached")
		m.CacheLookup("hit")
		m.Refresh("edge", "ok")
		m.ObserveIdentity("refresh", time.Now())
	})
}
