package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/penshort/todo/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// OpenAPISpecPath returns the path of the bundled OpenAPI document.
func OpenAPISpecPath() (string, error) {
	if path := os.Getenv("OPENAPI_SPEC_PATH"); path != "" {
		return path, nil
	}
	root, err := ProjectRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "docs", "api", "openapi.yaml"), nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestEntry creates an unsaved entry with sensible defaults.
func NewTestEntry(t testing.TB, title string) *model.TodoEntry {
	t.Helper()
	// Postgres keeps microseconds.
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.TodoEntry{
		Title:        title,
		Description:  "description for " + title,
		CreatedAt:    now,
		DueOn:        model.Epoch,
		CompletedOn:  model.Epoch,
		LastModified: model.Epoch,
	}
}

// NewCompletedTestEntry creates an unsaved entry completed at completedOn.
func NewCompletedTestEntry(t testing.TB, title string, completedOn time.Time) *model.TodoEntry {
	t.Helper()
	entry := NewTestEntry(t, title)
	entry.Completed = true
	entry.CompletedOn = completedOn.UTC()
	entry.LastModified = completedOn.UTC()
	return entry
}
