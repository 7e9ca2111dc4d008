// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service is the task store. It owns the current task list and mediates
// persistence, either against the remote API or local storage.
// Commands and the interactive view never touch a backend directly.
type Service interface {
	// Load replaces the in-memory list with the persisted one.
	// On failure the previous list is kept.
	Load(ctx context.Context) ([]Task, error)

	// Tasks returns a copy of the current list in insertion order.
	Tasks() []Task

	// Create adds a task with the given text.
	// Empty or whitespace-only text returns a *ValidationError and
	// leaves the list unchanged.
	Create(ctx context.Context, text string) error

	// Toggle flips the completion flag of the task with the given id.
	// Returns ErrNotFound if no such task exists.
	Toggle(ctx context.Context, id int64) error

	// Delete removes the task with the given id.
	// Unknown ids are a no-op.
	Delete(ctx context.Context, id int64) error

	// Close releases backend resources.
	Close() error
}

// Authenticator is the external login/signup collaborator.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (AuthResponse, error)
	Signup(ctx context.Context, email, password string) (AuthResponse, error)
}

// Preferences holds small client-side flags kept in local storage.
type Preferences interface {
	CookieConsent(ctx context.Context) (bool, error)
	AcceptCookieConsent(ctx context.Context) error
}
