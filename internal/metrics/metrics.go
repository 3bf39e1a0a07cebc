// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Entry lifecycle metrics
	IncEntryCreated()
	IncEntryUpdated()
	IncEntryDeleted()
	IncEntryCompleted()

	// IncUpdateRejected counts updates refused by a business rule.
	// reason: "not_found", "due_date_past", "due_date_unparsable"
	IncUpdateRejected(reason string)

	// Read-through cache metrics
	IncCacheHit()
	IncCacheMiss()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
