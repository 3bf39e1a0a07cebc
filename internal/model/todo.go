// Package model defines domain entities for the application.
package model

import (
	"time"
)

// Column limits for entry text fields, in characters.
const (
	MaxTitleLength       = 65535
	MaxDescriptionLength = 16777215
)

// Epoch is the sentinel stored in timestamp columns that have not been set.
var Epoch = time.Unix(0, 0).UTC()

// IsUnset reports whether t is the unset sentinel.
func IsUnset(t time.Time) bool {
	return t.Equal(Epoch)
}

// ParseInstant parses an ISO-8601 instant such as 2024-03-01T12:00:00.000Z.
// A zone designator is required. The result is in UTC.
func ParseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// TodoEntry represents a persisted to-do item.
type TodoEntry struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Completed    bool      `json:"completed"`
	CreatedAt    time.Time `json:"createdAt"`
	DueOn        time.Time `json:"dueOn"`
	CompletedOn  time.Time `json:"completedOn"`
	LastModified time.Time `json:"lastModified"`
}

// IsComplete returns true if the entry has been marked done.
func (e *TodoEntry) IsComplete() bool {
	return e.Completed
}

// Clone returns a copy of the entry that can be mutated independently.
func (e *TodoEntry) Clone() *TodoEntry {
	c := *e
	return &c
}

// TodoEntryInput is the raw body of a create or update request.
// A nil field was either omitted or sent as null; both mean "not supplied".
type TodoEntryInput struct {
	Title        *string `json:"title,omitempty" validate:"omitnil,max=65535"`
	Description  *string `json:"description,omitempty" validate:"omitnil,max=16777215"`
	Completed    *bool   `json:"completed,omitempty"`
	CreatedAt    *string `json:"createdAt,omitempty" validate:"omitnil,instant"`
	DueOn        *string `json:"dueOn,omitempty" validate:"omitnil,instant"`
	CompletedOn  *string `json:"completedOn,omitempty" validate:"omitnil,instant"`
	LastModified *string `json:"lastModified,omitempty" validate:"omitnil,instant"`
}

// TodoEntryChanges is a validated partial update for a single entry.
// Fields left absent are not touched.
type TodoEntryChanges struct {
	ID           int64
	Title        Optional[string]
	Description  Optional[string]
	CreatedAt    Optional[string]
	DueOn        Optional[string]
	CompletedOn  Optional[string]
	LastModified Optional[string]
	Completed    Optional[bool]
}

// SortDirection orders query results.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Sort describes how a store should order entries.
type Sort struct {
	Field     string
	Direction SortDirection
}

// SortByCreatedAtDesc lists newest entries first.
var SortByCreatedAtDesc = Sort{Field: "createdAt", Direction: SortDesc}
