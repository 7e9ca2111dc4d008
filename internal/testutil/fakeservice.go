// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"
	"time"

	"taskr/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task
	nextID int64
	closed bool

	// Error injection for testing
	LoadErr   error
	CreateErr error
	ToggleErr error
	DeleteErr error

	// Loads counts Load invocations.
	Loads int
}

var _ service.Service = (*FakeService)(nil)

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{nextID: 1}
}

// AddTask seeds a task and returns it.
func (f *FakeService) AddTask(text string, completed bool) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	task := service.Task{
		ID:        f.nextID,
		Text:      text,
		Completed: completed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.nextID++
	f.tasks = append(f.tasks, task)
	return task
}

// Closed reports whether Close was called.
func (f *FakeService) Closed() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.closed
}

// Load implements service.Service.
func (f *FakeService) Load(ctx context.Context) ([]service.Task, error) {
	f.mu.Lock()
	f.Loads++
	f.mu.Unlock()
	if f.LoadErr != nil {
		return f.Tasks(), f.LoadErr
	}
	return f.Tasks(), nil
}

// Tasks implements service.Service.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Create implements service.Service.
func (f *FakeService) Create(ctx context.Context, text string) error {
	text, err := service.NormalizeText(text)
	if err != nil {
		return err
	}
	if f.CreateErr != nil {
		return f.CreateErr
	}
	f.AddTask(text, false)
	return nil
}

// Toggle implements service.Service.
func (f *FakeService) Toggle(ctx context.Context, id int64) error {
	if f.ToggleErr != nil {
		return f.ToggleErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := service.FindTask(f.tasks, id)
	if i < 0 {
		return service.ErrNotFound
	}
	f.tasks[i].Completed = !f.tasks[i].Completed
	f.tasks[i].UpdatedAt = time.Now()
	return nil
}

// Delete implements service.Service.
func (f *FakeService) Delete(ctx context.Context, id int64) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if i := service.FindTask(f.tasks, id); i >= 0 {
		f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	}
	return nil
}

// Close implements service.Service.
func (f *FakeService) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// FakeAuthenticator is a scripted service.Authenticator.
type FakeAuthenticator struct {
	mu sync.Mutex

	// Response and Err are returned from both Login and Signup.
	Response service.AuthResponse
	Err      error

	// Calls records "login:<email>" and "signup:<email>".
	Calls []string
}

var _ service.Authenticator = (*FakeAuthenticator)(nil)

// Login implements service.Authenticator.
func (f *FakeAuthenticator) Login(ctx context.Context, email, password string) (service.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "login:"+email)
	return f.Response, f.Err
}

// Signup implements service.Authenticator.
func (f *FakeAuthenticator) Signup(ctx context.Context, email, password string) (service.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "signup:"+email)
	return f.Response, f.Err
}

// CallCount returns the number of Login and Signup calls.
func (f *FakeAuthenticator) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

// FakePreferences is an in-memory service.Preferences.
type FakePreferences struct {
	Consent bool
}

// CookieConsent implements service.Preferences.
func (f *FakePreferences) CookieConsent(ctx context.Context) (bool, error) {
	return f.Consent, nil
}

// AcceptCookieConsent implements service.Preferences.
func (f *FakePreferences) AcceptCookieConsent(ctx context.Context) error {
	f.Consent = true
	return nil
}
