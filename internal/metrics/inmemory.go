package metrics

import (
	"sync"
	"sync/atomic"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	EntriesCreated   uint64
	EntriesUpdated   uint64
	EntriesDeleted   uint64
	EntriesCompleted uint64
	UpdatesRejected  map[string]uint64
	CacheHits        uint64
	CacheMisses      uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	entriesCreated   uint64
	entriesUpdated   uint64
	entriesDeleted   uint64
	entriesCompleted uint64
	cacheHits        uint64
	cacheMisses      uint64

	mu       sync.Mutex
	rejected map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{rejected: make(map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	rejected := make(map[string]uint64, len(m.rejected))
	for reason, n := range m.rejected {
		rejected[reason] = n
	}
	m.mu.Unlock()

	return Snapshot{
		EntriesCreated:   atomic.LoadUint64(&m.entriesCreated),
		EntriesUpdated:   atomic.LoadUint64(&m.entriesUpdated),
		EntriesDeleted:   atomic.LoadUint64(&m.entriesDeleted),
		EntriesCompleted: atomic.LoadUint64(&m.entriesCompleted),
		UpdatesRejected:  rejected,
		CacheHits:        atomic.LoadUint64(&m.cacheHits),
		CacheMisses:      atomic.LoadUint64(&m.cacheMisses),
	}
}

// IncEntryCreated increments entry created counter.
func (m *InMemoryRecorder) IncEntryCreated() {
	atomic.AddUint64(&m.entriesCreated, 1)
}

// IncEntryUpdated increments entry updated counter.
func (m *InMemoryRecorder) IncEntryUpdated() {
	atomic.AddUint64(&m.entriesUpdated, 1)
}

// IncEntryDeleted increments entry deleted counter.
func (m *InMemoryRecorder) IncEntryDeleted() {
	atomic.AddUint64(&m.entriesDeleted, 1)
}

// IncEntryCompleted increments entry completed counter.
func (m *InMemoryRecorder) IncEntryCompleted() {
	atomic.AddUint64(&m.entriesCompleted, 1)
}

// IncUpdateRejected increments the rejection counter for reason.
func (m *InMemoryRecorder) IncUpdateRejected(reason string) {
	m.mu.Lock()
	m.rejected[reason]++
	m.mu.Unlock()
}

// IncCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncCacheHit() {
	atomic.AddUint64(&m.cacheHits, 1)
}

// IncCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncCacheMiss() {
	atomic.AddUint64(&m.cacheMisses, 1)
}
