// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/penshort/todo/internal/cache"
	"github.com/penshort/todo/internal/clock"
	"github.com/penshort/todo/internal/metrics"
	"github.com/penshort/todo/internal/model"
	"github.com/penshort/todo/internal/repository"
)

// Service errors.
var (
	ErrEntryNotFound = model.ErrEntryNotFound
)

// Due date rejection reasons.
const (
	reasonDueDateUnparsable = "Due Date could not be parsed"
	reasonDueDateInPast     = "Due Date is in the past"
)

const listFlightKey = "list:"

// Store is the keyed entry storage the service depends on.
type Store interface {
	FindAll(ctx context.Context, sort model.Sort) ([]*model.TodoEntry, error)
	FindByID(ctx context.Context, id int64) (*model.TodoEntry, error)
	Save(ctx context.Context, entry *model.TodoEntry) (*model.TodoEntry, error)
	DeleteByID(ctx context.Context, id int64) error
}

// EntryCache is an optional read-through cache in front of the Store.
type EntryCache interface {
	GetEntry(ctx context.Context, id int64) (*model.TodoEntry, error)
	SetEntry(ctx context.Context, entry *model.TodoEntry) error
	GetList(ctx context.Context) ([]*model.TodoEntry, error)
	SetList(ctx context.Context, entries []*model.TodoEntry) error
	InvalidateEntry(ctx context.Context, id int64) error
	InvalidateList(ctx context.Context) error
}

// TodoService handles entry business logic.
type TodoService struct {
	store   Store
	cache   EntryCache
	clock   clock.Clock
	metrics metrics.Recorder
	logger  *slog.Logger
	flight  singleflight.Group

	// generation advances on every write. Backfills read before a write
	// must not outlive it in the cache.
	generation atomic.Uint64
}

// NewTodoService creates a new TodoService. A nil cache disables caching.
func NewTodoService(store Store, entryCache EntryCache, clk clock.Clock, recorder metrics.Recorder, logger *slog.Logger) *TodoService {
	if clk == nil {
		clk = clock.System()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TodoService{
		store:   store,
		cache:   entryCache,
		clock:   clk,
		metrics: recorder,
		logger:  logger,
	}
}

// ListEntries returns every entry, newest first.
func (s *TodoService) ListEntries(ctx context.Context) ([]*model.TodoEntry, error) {
	if s.cache != nil {
		entries, err := s.cache.GetList(ctx)
		if err == nil {
			s.metrics.IncCacheHit()
			return entries, nil
		}
		s.cacheLookupFailed(err, "list")
	}

	// Keyed by generation so a caller never joins a load that started
	// before its own write.
	gen := s.generation.Load()
	result, err, _ := s.flight.Do(listFlightKey+strconv.FormatUint(gen, 10), func() (any, error) {
		// Shared by every waiter, so one caller going away must not cancel it.
		loadCtx := context.WithoutCancel(ctx)

		entries, err := s.store.FindAll(loadCtx, model.SortByCreatedAtDesc)
		if err != nil {
			return nil, fmt.Errorf("failed to list entries: %w", err)
		}

		s.backfillList(loadCtx, gen, entries)
		return entries, nil
	})
	if err != nil {
		return nil, err
	}

	shared := result.([]*model.TodoEntry)
	entries := make([]*model.TodoEntry, len(shared))
	for i, entry := range shared {
		entries[i] = entry.Clone()
	}
	return entries, nil
}

// GetEntry retrieves an entry by ID.
func (s *TodoService) GetEntry(ctx context.Context, id int64) (*model.TodoEntry, error) {
	if s.cache != nil {
		entry, err := s.cache.GetEntry(ctx, id)
		if err == nil {
			s.metrics.IncCacheHit()
			return entry, nil
		}
		s.cacheLookupFailed(err, "entry")
	}

	gen := s.generation.Load()
	entry, err := s.findEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	s.backfillEntry(ctx, gen, entry)

	return entry, nil
}

// CreateEntry persists a new entry. Creation-time fields are always
// assigned here and never taken from the draft.
func (s *TodoService) CreateEntry(ctx context.Context, draft *model.TodoEntry) (*model.TodoEntry, error) {
	entry := draft.Clone()
	entry.ID = 0
	entry.CreatedAt = s.clock.Now().UTC()
	entry.DueOn = model.Epoch
	entry.CompletedOn = model.Epoch
	entry.LastModified = model.Epoch

	saved, err := s.store.Save(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	s.metrics.IncEntryCreated()
	s.invalidate(ctx, saved.ID)

	return saved, nil
}

// UpdateEntry applies changes to an existing entry and persists it.
// Nothing is written when a rule rejects the changes.
func (s *TodoService) UpdateEntry(ctx context.Context, changes model.TodoEntryChanges) (*model.TodoEntry, error) {
	entry, err := s.findEntry(ctx, changes.ID)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			s.metrics.IncUpdateRejected("not_found")
		}
		return nil, err
	}

	wasComplete := entry.IsComplete()
	if err := applyChanges(entry, changes, s.clock.Now().UTC()); err != nil {
		s.metrics.IncUpdateRejected(rejectionReason(err))
		return nil, err
	}

	saved, err := s.store.Save(ctx, entry)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}

	s.metrics.IncEntryUpdated()
	if saved.IsComplete() && !wasComplete {
		s.metrics.IncEntryCompleted()
	}
	s.invalidate(ctx, saved.ID)

	return saved, nil
}

// DeleteEntry removes an entry.
func (s *TodoService) DeleteEntry(ctx context.Context, id int64) error {
	if _, err := s.findEntry(ctx, id); err != nil {
		return err
	}

	if err := s.store.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	s.metrics.IncEntryDeleted()
	s.invalidate(ctx, id)

	return nil
}

// applyChanges runs the field rules in order against entry. now is the
// single instant used for every timestamp the update assigns.
func applyChanges(entry *model.TodoEntry, changes model.TodoEntryChanges, now time.Time) error {
	modified := false

	if title, ok := changes.Title.Get(); ok {
		entry.Title = title
		modified = true
	}

	if description, ok := changes.Description.Get(); ok {
		entry.Description = description
		modified = true
	}

	// createdAt is immutable after creation.

	if raw, ok := changes.DueOn.Get(); ok {
		supplied, err := model.ParseInstant(raw)
		if err != nil {
			return model.NewValidationError(model.ErrInvalidDueDate, "dueOn", reasonDueDateUnparsable)
		}
		if !supplied.After(entry.CreatedAt) {
			return model.NewValidationError(model.ErrInvalidDueDate, "dueOn", reasonDueDateInPast)
		}
		entry.DueOn = dueOnValue(now, supplied)
	}

	if completed, ok := changes.Completed.Get(); ok {
		entry.Completed = completed
		if completed {
			entry.CompletedOn = now
		} else {
			entry.CompletedOn = model.Epoch
		}
		modified = true
	}

	// completedOn and lastModified are derived, never taken from input.

	if modified {
		entry.LastModified = now
	}

	return nil
}

// rejectionReason labels an applyChanges failure for metrics.
func rejectionReason(err error) string {
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		return "unknown"
	}
	switch verr.Reason {
	case reasonDueDateUnparsable:
		return "due_date_unparsable"
	case reasonDueDateInPast:
		return "due_date_past"
	default:
		return "unknown"
	}
}

// dueOnValue returns the instant stored for an accepted due date. It stores
// the update instant rather than the supplied date; existing clients depend
// on this, so the supplied value is only used for the createdAt check.
func dueOnValue(now, supplied time.Time) time.Time {
	return now
}

// findEntry reads an entry from the store, bypassing the cache.
func (s *TodoService) findEntry(ctx context.Context, id int64) (*model.TodoEntry, error) {
	entry, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

// invalidate drops cached copies after a write. Failures are logged only;
// the TTL bounds staleness. The generation moves before the delete so a
// backfill racing the write either sees it or is deleted by it.
func (s *TodoService) invalidate(ctx context.Context, id int64) {
	s.generation.Add(1)
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateEntry(ctx, id); err != nil {
		s.logger.Warn("cache invalidation failed", "entry_id", id, "error", err)
	}
}

// backfillList caches entries read at generation gen, unless a write
// has happened since.
func (s *TodoService) backfillList(ctx context.Context, gen uint64, entries []*model.TodoEntry) {
	if s.cache == nil || s.generation.Load() != gen {
		return
	}
	if err := s.cache.SetList(ctx, entries); err != nil {
		s.logger.Warn("cache list backfill failed", "error", err)
		return
	}
	// A write between the check and SetList may have missed our copy.
	if s.generation.Load() != gen {
		if err := s.cache.InvalidateList(ctx); err != nil {
			s.logger.Warn("cache invalidation failed", "error", err)
		}
	}
}

// backfillEntry caches entry read at generation gen, unless a write has
// happened since.
func (s *TodoService) backfillEntry(ctx context.Context, gen uint64, entry *model.TodoEntry) {
	if s.cache == nil || s.generation.Load() != gen {
		return
	}
	if err := s.cache.SetEntry(ctx, entry); err != nil {
		s.logger.Warn("cache entry backfill failed", "entry_id", entry.ID, "error", err)
		return
	}
	if s.generation.Load() != gen {
		if err := s.cache.InvalidateEntry(ctx, entry.ID); err != nil {
			s.logger.Warn("cache invalidation failed", "entry_id", entry.ID, "error", err)
		}
	}
}

func (s *TodoService) cacheLookupFailed(err error, kind string) {
	s.metrics.IncCacheMiss()
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("cache lookup failed", "kind", kind, "error", err)
	}
}
