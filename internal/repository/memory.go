package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/penshort/todo/internal/model"
)

// MemoryStore keeps entries in process memory. Used for tests and
// STORAGE_DRIVER=memory. Storage order is insertion order.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	order   []int64
	entries map[int64]*model.TodoEntry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:  1,
		entries: make(map[int64]*model.TodoEntry),
	}
}

// Ping always succeeds.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() {}

// FindAll returns copies of every entry ordered by sort.
func (m *MemoryStore) FindAll(ctx context.Context, s model.Sort) ([]*model.TodoEntry, error) {
	key, err := sortKey(s.Field)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	entries := make([]*model.TodoEntry, 0, len(m.order))
	for _, id := range m.order {
		entries = append(entries, m.entries[id].Clone())
	}
	m.mu.RUnlock()

	desc := s.Direction == model.SortDesc
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := key(entries[i]), key(entries[j])
		if desc {
			return a.After(b)
		}
		return a.Before(b)
	})

	return entries, nil
}

// FindByID returns a copy of the entry with id.
func (m *MemoryStore) FindByID(ctx context.Context, id int64) (*model.TodoEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[id]
	if !ok {
		return nil, ErrEntryNotFound
	}
	return entry.Clone(), nil
}

// Save inserts the entry when ID is zero, otherwise replaces the stored entry.
func (m *MemoryStore) Save(ctx context.Context, entry *model.TodoEntry) (*model.TodoEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := entry.Clone()
	if stored.ID == 0 {
		stored.ID = m.nextID
		m.nextID++
		m.order = append(m.order, stored.ID)
		m.entries[stored.ID] = stored
		return stored.Clone(), nil
	}

	existing, ok := m.entries[stored.ID]
	if !ok {
		return nil, ErrEntryNotFound
	}
	// created_at is never rewritten, matching the Postgres update.
	stored.CreatedAt = existing.CreatedAt
	m.entries[stored.ID] = stored

	return stored.Clone(), nil
}

// DeleteByID removes the entry with id.
func (m *MemoryStore) DeleteByID(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return ErrEntryNotFound
	}
	delete(m.entries, id)

	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}

	return nil
}

// sortKey returns the timestamp accessor for a sortable field.
func sortKey(field string) (func(*model.TodoEntry) time.Time, error) {
	switch field {
	case "createdAt":
		return func(e *model.TodoEntry) time.Time { return e.CreatedAt }, nil
	case "dueOn":
		return func(e *model.TodoEntry) time.Time { return e.DueOn }, nil
	case "completedOn":
		return func(e *model.TodoEntry) time.Time { return e.CompletedOn }, nil
	case "lastModified":
		return func(e *model.TodoEntry) time.Time { return e.LastModified }, nil
	case "id":
		return func(e *model.TodoEntry) time.Time { return time.Unix(e.ID, 0) }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSort, field)
	}
}
