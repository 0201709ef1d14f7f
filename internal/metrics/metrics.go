// Package metrics exposes the bot's Prometheus instruments.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ramdeus"

// Metrics groups every collector the service records into.
type Metrics struct {
	AttacksTotal        *prometheus.CounterVec
	BossHealth          prometheus.Gauge
	StoreErrorsTotal    *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		AttacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attacks_total",
			Help:      "Attack attempts by outcome.",
		}, []string{"outcome"}),
		BossHealth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "boss_health",
			Help:      "Last observed health of the possessed Ram Deus.",
		}),
		StoreErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Battle operations that failed with a persistence error.",
		}, []string{"op"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		m.AttacksTotal,
		m.BossHealth,
		m.StoreErrorsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// ObserveAttack records an attack outcome ("hit", "already_attacked",
// "already_defeated") and the health it left behind.
func (m *Metrics) ObserveAttack(outcome string, health int) {
	if m == nil {
		return
	}
	m.AttacksTotal.WithLabelValues(outcome).Inc()
	m.BossHealth.Set(float64(health))
}

// ObserveHealth records health seen outside of an attack, e.g. after a reset.
func (m *Metrics) ObserveHealth(health int) {
	if m == nil {
		return
	}
	m.BossHealth.Set(float64(health))
}

func (m *Metrics) ObserveStoreError(op string) {
	if m == nil {
		return
	}
	m.StoreErrorsTotal.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
