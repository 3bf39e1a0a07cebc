package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/penshort/todo/internal/model"
)

// Cache keys.
const (
	entryKeyPrefix = "todo:entry:"
	listKey        = "todo:list"
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// GetEntry retrieves an entry from cache by ID.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetEntry(ctx context.Context, id int64) (*model.TodoEntry, error) {
	raw, err := c.client.Get(ctx, entryKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var entry model.TodoEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode cached entry: %w", err)
	}

	return &entry, nil
}

// SetEntry stores an entry in cache.
func (c *Cache) SetEntry(ctx context.Context, entry *model.TodoEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}

	if err := c.client.Set(ctx, entryKey(entry.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache entry: %w", err)
	}

	return nil
}

// GetList retrieves the cached default-ordered entry list.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetList(ctx context.Context) ([]*model.TodoEntry, error) {
	raw, err := c.client.Get(ctx, listKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	entries := make([]*model.TodoEntry, 0)
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode cached list: %w", err)
	}

	return entries, nil
}

// SetList stores the default-ordered entry list.
func (c *Cache) SetList(ctx context.Context, entries []*model.TodoEntry) error {
	if entries == nil {
		entries = []*model.TodoEntry{}
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode list: %w", err)
	}

	if err := c.client.Set(ctx, listKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache list: %w", err)
	}

	return nil
}

// InvalidateEntry removes an entry and the list from cache.
func (c *Cache) InvalidateEntry(ctx context.Context, id int64) error {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, entryKey(id))
	pipe.Del(ctx, listKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate entry: %w", err)
	}

	return nil
}

// InvalidateList removes the cached list.
func (c *Cache) InvalidateList(ctx context.Context) error {
	if err := c.client.Del(ctx, listKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate list: %w", err)
	}
	return nil
}

func entryKey(id int64) string {
	return entryKeyPrefix + strconv.FormatInt(id, 10)
}
