package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Task represents a single task item.
type Task struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthResponse is the body returned by the login and signup endpoints.
type AuthResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Token   string `json:"token,omitempty"`
}

// ErrNotFound is returned when a task id is not in the list.
var ErrNotFound = errors.New("task not found")

// ErrUnauthorized is returned when the backend rejects the session.
var ErrUnauthorized = errors.New("session rejected")

// ValidationError reports field-level input problems detected before any
// persistence or network call.
type ValidationError struct {
	Fields map[string]string // field name -> message
}

// NewValidationError returns a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, e.Fields[name])
	}
	return strings.Join(parts, "; ")
}

// NormalizeText trims task text and rejects empty input.
func NormalizeText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", NewValidationError("text", "task text required")
	}
	return text, nil
}

// FindTask returns the index of the task with the given id, or -1.
func FindTask(tasks []Task, id int64) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
