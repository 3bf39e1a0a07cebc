package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/penshort/todo/internal/metrics"
)

// MetricsHandler exposes recorder counters at /metrics.
type MetricsHandler struct {
	exporter    http.Handler
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler. A recorder with its own
// exposition handler (Prometheus) is served directly; a Snapshotter is
// rendered as text.
func NewMetricsHandler(recorder metrics.Recorder) *MetricsHandler {
	h := &MetricsHandler{}
	if exp, ok := recorder.(interface{ Handler() http.Handler }); ok {
		h.exporter = exp.Handler()
	}
	if snap, ok := recorder.(metrics.Snapshotter); ok {
		h.snapshotter = snap
	}
	return h
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.exporter != nil {
		h.exporter.ServeHTTP(w, r)
		return
	}
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "todo_entries_created_total %d\n", snap.EntriesCreated)
	writeMetric(w, "todo_entries_updated_total %d\n", snap.EntriesUpdated)
	writeMetric(w, "todo_entries_deleted_total %d\n", snap.EntriesDeleted)
	writeMetric(w, "todo_entries_completed_total %d\n", snap.EntriesCompleted)

	reasons := make([]string, 0, len(snap.UpdatesRejected))
	for reason := range snap.UpdatesRejected {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		writeMetric(w, "todo_updates_rejected_total{reason=%q} %d\n", reason, snap.UpdatesRejected[reason])
	}

	writeMetric(w, "todo_cache_requests_total{result=\"hit\"} %d\n", snap.CacheHits)
	writeMetric(w, "todo_cache_requests_total{result=\"miss\"} %d\n", snap.CacheMisses)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
