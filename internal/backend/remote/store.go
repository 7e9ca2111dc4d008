package remote

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"taskr/internal/logging"
	"taskr/internal/service"
)

// Store implements service.Service on top of the REST API.
//
// The server is authoritative for creates (the list is reloaded after every
// POST). Toggle and delete update the local list even when the request
// fails; the error is logged and returned but the local change is not
// rolled back.
type Store struct {
	api *Client
	log *slog.Logger
	now func() time.Time

	mu    sync.Mutex
	tasks []service.Task
}

var _ service.Service = (*Store)(nil)

// NewStore creates an empty store backed by api.
func NewStore(api *Client, log *slog.Logger) *Store {
	return &Store{
		api: api,
		log: logging.OrDiscard(log),
		now: time.Now,
	}
}

// Load implements service.Service.
func (s *Store) Load(ctx context.Context) ([]service.Task, error) {
	tasks, err := s.api.ListTasks(ctx)
	if err != nil {
		s.log.Warn("load tasks failed, keeping previous list", "err", err)
		return s.Tasks(), err
	}

	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
	return s.Tasks(), nil
}

// Tasks implements service.Service.
func (s *Store) Tasks() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]service.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Create implements service.Service. The list is reloaded from the server
// whether or not the POST succeeded.
func (s *Store) Create(ctx context.Context, text string) error {
	text, err := service.NormalizeText(text)
	if err != nil {
		return err
	}

	_, postErr := s.api.CreateTask(ctx, text)
	if postErr != nil {
		s.log.Warn("create task failed", "err", postErr)
	}

	if _, err := s.Load(ctx); err != nil && postErr == nil {
		return err
	}
	return postErr
}

// Toggle implements service.Service.
func (s *Store) Toggle(ctx context.Context, id int64) error {
	s.mu.Lock()
	i := service.FindTask(s.tasks, id)
	if i < 0 {
		s.mu.Unlock()
		return service.ErrNotFound
	}
	current := s.tasks[i]
	s.mu.Unlock()

	completed := !current.Completed
	updated, err := s.api.UpdateTask(ctx, id, current.Text, completed)

	s.mu.Lock()
	defer s.mu.Unlock()

	// The task may have been deleted while the request was in flight.
	i = service.FindTask(s.tasks, id)
	if i < 0 {
		return err
	}

	if err == nil && updated.ID == id {
		s.tasks[i] = updated
		return nil
	}

	task := s.tasks[i]
	task.Completed = completed
	task.UpdatedAt = laterOf(s.now(), task.UpdatedAt)
	s.tasks[i] = task

	if err != nil {
		s.log.Warn("toggle task failed, local state kept", "id", id, "err", err)
	}
	return err
}

// Delete implements service.Service. Unknown ids are a no-op and send no
// request.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	known := service.FindTask(s.tasks, id) >= 0
	s.mu.Unlock()
	if !known {
		return nil
	}

	err := s.api.DeleteTask(ctx, id)
	if err != nil {
		s.log.Warn("delete task failed, removing locally anyway", "id", id, "err", err)
	}

	s.mu.Lock()
	if i := service.FindTask(s.tasks, id); i >= 0 {
		s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	}
	s.mu.Unlock()
	return err
}

// Close implements service.Service.
func (s *Store) Close() error {
	return nil
}

func laterOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return b
	}
	return a
}
