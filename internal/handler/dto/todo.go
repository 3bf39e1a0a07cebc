// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"github.com/penshort/todo/internal/model"
)

// TodoEntryRequest is the body of create and update requests.
type TodoEntryRequest = model.TodoEntryInput

// TodoEntryResponse represents an entry in API responses.
type TodoEntryResponse = model.TodoEntry

// TodoListResponse represents the full entry list.
type TodoListResponse struct {
	Data []*TodoEntryResponse `json:"data"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToTodoListResponse wraps entries for the list endpoint.
func ToTodoListResponse(entries []*model.TodoEntry) *TodoListResponse {
	if entries == nil {
		entries = []*model.TodoEntry{}
	}
	return &TodoListResponse{Data: entries}
}
