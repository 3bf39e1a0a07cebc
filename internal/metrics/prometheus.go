package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "todo"

// PrometheusRecorder exports counters through a private Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	entriesCreated   prometheus.Counter
	entriesUpdated   prometheus.Counter
	entriesDeleted   prometheus.Counter
	entriesCompleted prometheus.Counter
	updatesRejected  *prometheus.CounterVec
	cacheRequests    *prometheus.CounterVec
}

// NewPrometheus creates a PrometheusRecorder with Go runtime and process collectors.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()

	p := &PrometheusRecorder{
		registry: reg,
		entriesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_created_total",
			Help:      "Number of entries created.",
		}),
		entriesUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_updated_total",
			Help:      "Number of entries updated.",
		}),
		entriesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_deleted_total",
			Help:      "Number of entries deleted.",
		}),
		entriesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_completed_total",
			Help:      "Number of updates that marked an entry complete.",
		}),
		updatesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_rejected_total",
			Help:      "Number of updates refused by a business rule.",
		}, []string{"reason"}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Read-through cache lookups by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.entriesCreated,
		p.entriesUpdated,
		p.entriesDeleted,
		p.entriesCompleted,
		p.updatesRejected,
		p.cacheRequests,
	)

	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry returns the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

// IncEntryCreated increments entry created counter.
func (p *PrometheusRecorder) IncEntryCreated() { p.entriesCreated.Inc() }

// IncEntryUpdated increments entry updated counter.
func (p *PrometheusRecorder) IncEntryUpdated() { p.entriesUpdated.Inc() }

// IncEntryDeleted increments entry deleted counter.
func (p *PrometheusRecorder) IncEntryDeleted() { p.entriesDeleted.Inc() }

// IncEntryCompleted increments entry completed counter.
func (p *PrometheusRecorder) IncEntryCompleted() { p.entriesCompleted.Inc() }

// IncUpdateRejected increments the rejection counter for reason.
func (p *PrometheusRecorder) IncUpdateRejected(reason string) {
	p.updatesRejected.WithLabelValues(reason).Inc()
}

// IncCacheHit increments cache hit counter.
func (p *PrometheusRecorder) IncCacheHit() { p.cacheRequests.WithLabelValues("hit").Inc() }

// IncCacheMiss increments cache miss counter.
func (p *PrometheusRecorder) IncCacheMiss() { p.cacheRequests.WithLabelValues("miss").Inc() }
