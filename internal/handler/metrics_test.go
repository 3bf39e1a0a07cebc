package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/penshort/todo/internal/metrics"
)

func TestMetricsHandler_Snapshot(t *testing.T) {
	recorder := metrics.NewInMemory()
	recorder.IncEntryCreated()
	recorder.IncEntryCreated()
	recorder.IncUpdateRejected("due_date_past")
	recorder.IncCacheHit()

	h := NewMetricsHandler(recorder)
	rec := httptest.NewRecorder()
	h.Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"todo_entries_created_total 2",
		`todo_updates_rejected_total{reason="due_date_past"} 1`,
		`todo_cache_requests_total{result="hit"} 1`,
		`todo_cache_requests_total{result="miss"} 0`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q:\n%s", want, body)
		}
	}
}

func TestMetricsHandler_Prometheus(t *testing.T) {
	recorder := metrics.NewPrometheus()
	recorder.IncEntryUpdated()

	h := NewMetricsHandler(recorder)
	rec := httptest.NewRecorder()
	h.Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "todo_entries_updated_total 1") {
		t.Errorf("prometheus output missing counter:\n%s", rec.Body.String())
	}
}

func TestMetricsHandler_Unavailable(t *testing.T) {
	h := NewMetricsHandler(metrics.NewNoop())
	rec := httptest.NewRecorder()
	h.Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}
}
