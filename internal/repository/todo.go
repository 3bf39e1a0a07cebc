package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/penshort/todo/internal/model"
)

// Common errors for entry repository operations.
var (
	ErrEntryNotFound   = errors.New("entry not found")
	ErrUnsupportedSort = errors.New("unsupported sort field")
)

// sortColumns maps sortable entry fields to their columns.
var sortColumns = map[string]string{
	"createdAt":    "created_at",
	"dueOn":        "due_on",
	"completedOn":  "completed_on",
	"lastModified": "last_modified",
	"id":           "id",
}

const entryColumns = `id, title, description, completed, created_at, due_on, completed_on, last_modified`

// FindAll returns every entry ordered by sort. Ties fall back to id order.
func (r *Repository) FindAll(ctx context.Context, sort model.Sort) ([]*model.TodoEntry, error) {
	orderBy, err := orderClause(sort)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + entryColumns + ` FROM todo_entries ORDER BY ` + orderBy

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*model.TodoEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}

// FindByID retrieves an entry by its ID.
func (r *Repository) FindByID(ctx context.Context, id int64) (*model.TodoEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM todo_entries WHERE id = $1`

	entry, err := scanEntry(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get entry by ID: %w", err)
	}

	return entry, nil
}

// Save inserts the entry when it has no ID yet, otherwise updates it.
// It returns the stored row.
func (r *Repository) Save(ctx context.Context, entry *model.TodoEntry) (*model.TodoEntry, error) {
	if entry.ID == 0 {
		return r.insert(ctx, entry)
	}
	return r.update(ctx, entry)
}

func (r *Repository) insert(ctx context.Context, entry *model.TodoEntry) (*model.TodoEntry, error) {
	query := `
		INSERT INTO todo_entries (title, description, completed, created_at, due_on, completed_on, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + entryColumns

	saved, err := scanEntry(r.pool.QueryRow(ctx, query,
		entry.Title,
		entry.Description,
		entry.Completed,
		entry.CreatedAt,
		entry.DueOn,
		entry.CompletedOn,
		entry.LastModified,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	return saved, nil
}

func (r *Repository) update(ctx context.Context, entry *model.TodoEntry) (*model.TodoEntry, error) {
	query := `
		UPDATE todo_entries
		SET title = $2, description = $3, completed = $4, due_on = $5, completed_on = $6, last_modified = $7
		WHERE id = $1
		RETURNING ` + entryColumns

	saved, err := scanEntry(r.pool.QueryRow(ctx, query,
		entry.ID,
		entry.Title,
		entry.Description,
		entry.Completed,
		entry.DueOn,
		entry.CompletedOn,
		entry.LastModified,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to update entry: %w", err)
	}

	return saved, nil
}

// DeleteByID removes an entry.
func (r *Repository) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM todo_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrEntryNotFound
	}

	return nil
}

// scanEntry scans a single row into a TodoEntry, normalizing timestamps to UTC.
func scanEntry(row pgx.Row) (*model.TodoEntry, error) {
	var entry model.TodoEntry
	err := row.Scan(
		&entry.ID,
		&entry.Title,
		&entry.Description,
		&entry.Completed,
		&entry.CreatedAt,
		&entry.DueOn,
		&entry.CompletedOn,
		&entry.LastModified,
	)
	if err != nil {
		return nil, err
	}

	entry.CreatedAt = entry.CreatedAt.UTC()
	entry.DueOn = entry.DueOn.UTC()
	entry.CompletedOn = entry.CompletedOn.UTC()
	entry.LastModified = entry.LastModified.UTC()

	return &entry, nil
}

// orderClause builds a whitelisted ORDER BY for sort.
func orderClause(sort model.Sort) (string, error) {
	column, ok := sortColumns[sort.Field]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedSort, sort.Field)
	}

	direction := "ASC"
	if sort.Direction == model.SortDesc {
		direction = "DESC"
	}

	if column == "id" {
		return "id " + direction, nil
	}
	return column + " " + direction + ", id ASC", nil
}
