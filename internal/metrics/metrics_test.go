package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInMemoryRecorder_Snapshot(t *testing.T) {
	m := NewInMemory()

	m.IncEntryCreated()
	m.IncEntryCreated()
	m.IncEntryUpdated()
	m.IncEntryDeleted()
	m.IncEntryCompleted()
	m.IncUpdateRejected("not_found")
	m.IncUpdateRejected("not_found")
	m.IncUpdateRejected("due_date_past")
	m.IncCacheHit()
	m.IncCacheMiss()
	m.IncCacheMiss()

	snap := m.Snapshot()

	if snap.EntriesCreated != 2 {
		t.Errorf("EntriesCreated = %d, want 2", snap.EntriesCreated)
	}
	if snap.EntriesUpdated != 1 || snap.EntriesDeleted != 1 || snap.EntriesCompleted != 1 {
		t.Errorf("unexpected lifecycle counters: %+v", snap)
	}
	if snap.UpdatesRejected["not_found"] != 2 || snap.UpdatesRejected["due_date_past"] != 1 {
		t.Errorf("unexpected rejections: %v", snap.UpdatesRejected)
	}
	if snap.CacheHits != 1 || snap.CacheMisses != 2 {
		t.Errorf("cache counters = %d/%d, want 1/2", snap.CacheHits, snap.CacheMisses)
	}
}

func TestInMemoryRecorder_SnapshotIsCopy(t *testing.T) {
	m := NewInMemory()
	m.IncUpdateRejected("not_found")

	snap := m.Snapshot()
	snap.UpdatesRejected["not_found"] = 100

	if got := m.Snapshot().UpdatesRejected["not_found"]; got != 1 {
		t.Errorf("recorder mutated through snapshot: %d", got)
	}
}

func TestNoopRecorder_ImplementsRecorder(t *testing.T) {
	var r Recorder = NewNoop()
	r.IncEntryCreated()
	r.IncUpdateRejected("anything")
}

func TestPrometheusRecorder_Counters(t *testing.T) {
	p := NewPrometheus()

	p.IncEntryCreated()
	p.IncEntryUpdated()
	p.IncEntryUpdated()
	p.IncUpdateRejected("due_date_past")
	p.IncCacheHit()

	if got := testutil.ToFloat64(p.entriesCreated); got != 1 {
		t.Errorf("entries_created_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.entriesUpdated); got != 2 {
		t.Errorf("entries_updated_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(p.updatesRejected.WithLabelValues("due_date_past")); got != 1 {
		t.Errorf("updates_rejected_total{reason=due_date_past} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.cacheRequests.WithLabelValues("hit")); got != 1 {
		t.Errorf("cache_requests_total{result=hit} = %v, want 1", got)
	}
}

func TestPrometheusRecorder_Handler(t *testing.T) {
	p := NewPrometheus()
	p.IncEntryDeleted()

	srv := httptest.NewServer(p.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "todo_entries_deleted_total 1") {
		t.Errorf("metrics output missing deleted counter:\n%s", body)
	}
}
