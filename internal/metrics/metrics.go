// Package metrics holds the Prometheus collectors of the session gateway.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gateway"

// Metrics exposes Prometheus collectors for gate decisions, cache usage and identity calls.
type Metrics struct {
	GateDecisions   *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
	Refreshes       *prometheus.CounterVec
	IdentityLatency *prometheus.HistogramVec
}

// New constructs the collectors and registers them with reg (the default registerer when nil).
// Collectors that are already registered are reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		GateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_decisions_total",
			Help:      "Decisions taken by the session gates partitioned by gate and decision.",
		}, []string{"gate", "decision"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_cache_lookups_total",
			Help:      "Token validation cache lookups partitioned by result.",
		}, []string{"result"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refresh_total",
			Help:      "Token refresh attempts partitioned by gate and result.",
		}, []string{"gate", "result"}),
		IdentityLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "identity_request_duration_seconds",
			Help:      "Latency of identity provider calls partitioned by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	var err error
	if m.GateDecisions, err = register(reg, m.GateDecisions); err != nil {
		return nil, err
	}
	if m.CacheLookups, err = register(reg, m.CacheLookups); err != nil {
		return nil, err
	}
	if m.Refreshes, err = register(reg, m.Refreshes); err != nil {
		return nil, err
	}
	if m.IdentityLatency, err = register(reg, m.IdentityLatency); err != nil {
		return nil, err
	}
	return m, nil
}

// NewNop returns collectors registered on a private registry, for tests and tools.
func NewNop() *Metrics {
	m, _ := New(prometheus.NewRegistry())
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return c, fmt.Errorf("register collector: %w", err)
		}
		existing, ok := already.ExistingCollector.(C)
		if !ok {
			return c, fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
		}
		return existing, nil
	}
	return c, nil
}

// Decision counts a gate outcome. Nil receivers are ignored.
func (m *Metrics) Decision(gate, decision string) {
	if m == nil {
		return
	}
	m.GateDecisions.WithLabelValues(gate, decision).Inc()
}

// CacheLookup counts a validation cache lookup ("hit", "miss", "negative" or "error").
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// Refresh counts a refresh attempt ("ok" or "failed").
func (m *Metrics) Refresh(gate, result string) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(gate, result).Inc()
}

// ObserveIdentity records how long an identity provider operation took.
func (m *Metrics) ObserveIdentity(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.IdentityLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
