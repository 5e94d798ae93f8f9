// Package metric provides Prometheus metrics for SecureSnap.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "securesnap"

// Registry holds all application metrics.
type Registry struct {
	// Message lifecycle metrics
	MessagesCreated  prometheus.Counter
	MessagesConsumed prometheus.Counter
	MessagesDeleted  prometheus.Counter
	MessagesExpired  prometheus.Counter
	MessagesSwept    prometheus.Counter

	// Divergence counts marker/record disagreements that were
	// self-healed (stray marker without record, orphaned record).
	Divergence prometheus.Counter

	// SweepDuration observes the duration of reconciliation passes.
	SweepDuration prometheus.Histogram

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	reg *prometheus.Registry
}

// New creates a metrics registry and registers all collectors,
// including the standard Go and process collectors.
func New() *Registry {
	r := newRegistry()
	r.reg = prometheus.NewRegistry()

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.MessagesCreated,
		r.MessagesConsumed,
		r.MessagesDeleted,
		r.MessagesExpired,
		r.MessagesSwept,
		r.Divergence,
		r.SweepDuration,
		r.RequestsTotal,
		r.RequestDuration,
	)

	return r
}

// Nop creates a registry whose collectors are never registered or
// scraped. Used as the default when no metrics are wired, and in tests.
func Nop() *Registry {
	return newRegistry()
}

func newRegistry() *Registry {
	return &Registry{
		MessagesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_created_total",
			Help:      "Total messages accepted by the create operation",
		}),
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total messages consumed by a successful read",
		}),
		MessagesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_deleted_total",
			Help:      "Total messages removed by explicit delete",
		}),
		MessagesExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_expired_total",
			Help:      "Total messages rejected on read because their expiry had passed",
		}),
		MessagesSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_swept_total",
			Help:      "Total expired records reclaimed by the reconciliation sweep",
		}),
		Divergence: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_divergence_total",
			Help:      "Total self-healed disagreements between the record store and the marker cache",
		}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of reconciliation sweep passes",
			Buckets:   prometheus.DefBuckets,
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by method and route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Handler returns an HTTP handler serving the /metrics endpoint.
// For a Nop registry the handler serves an empty exposition.
func (r *Registry) Handler() http.Handler {
	if r.reg == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Register adds an extra collector to the underlying registry.
// No-op for a Nop registry.
func (r *Registry) Register(c prometheus.Collector) {
	if r.reg != nil {
		r.reg.MustRegister(c)
	}
}

// Registerer returns the underlying prometheus registerer, for
// components that register their own collectors. For a Nop registry
// the returned registerer discards registrations.
func (r *Registry) Registerer() prometheus.Registerer {
	if r.reg == nil {
		return nopRegisterer{}
	}
	return r.reg
}

type nopRegisterer struct{}

func (nopRegisterer) Register(prometheus.Collector) error  { return nil }
func (nopRegisterer) MustRegister(...prometheus.Collector) {}
func (nopRegisterer) Unregister(prometheus.Collector) bool { return true }

