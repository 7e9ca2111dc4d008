package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"taskr/internal/logging"
	"taskr/internal/service"
)

// Store implements service.Service on local storage. Every mutation replaces
// the in-memory list and then writes the whole list back under TasksKey.
type Store struct {
	storage *Storage
	log     *slog.Logger
	now     func() time.Time
	ids     *idGenerator

	mu    sync.Mutex
	tasks []service.Task
}

var _ service.Service = (*Store)(nil)

// NewStore creates an empty store on storage. Call Load to read persisted
// tasks. The store takes ownership of storage.
func NewStore(storage *Storage, log *slog.Logger) *Store {
	return &Store{
		storage: storage,
		log:     logging.OrDiscard(log),
		now:     time.Now,
		ids:     newIDGenerator(time.Now),
	}
}

// Load implements service.Service. A corrupt blob resets the list to empty
// and is only logged.
func (s *Store) Load(ctx context.Context) ([]service.Task, error) {
	raw, err := s.storage.GetItem(ctx, TasksKey)
	if errors.Is(err, ErrNoItem) {
		raw = ""
	} else if err != nil {
		s.log.Warn("read tasks failed, keeping previous list", "err", err)
		return s.Tasks(), err
	}

	var tasks []service.Task
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
			s.log.Warn("stored tasks are corrupt, resetting to empty list", "err", err)
			tasks = nil
		}
	}

	s.mu.Lock()
	s.tasks = tasks
	for _, t := range tasks {
		s.ids.observe(t.ID)
	}
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

// Create implements service.Service.
func (s *Store) Create(ctx context.Context, text string) error {
	text, err := service.NormalizeText(text)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	task := service.Task{
		ID:        s.ids.next(),
		Text:      text,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.tasks = append(s.tasks, task)
	return s.persistLocked(ctx)
}

// Toggle implements service.Service.
func (s *Store) Toggle(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if service.FindTask(s.tasks, id) < 0 {
		return service.ErrNotFound
	}

	now := s.now()
	next := make([]service.Task, len(s.tasks))
	for i, t := range s.tasks {
		if t.ID == id {
			t.Completed = !t.Completed
			if now.After(t.UpdatedAt) {
				t.UpdatedAt = now
			}
		}
		next[i] = t
	}
	s.tasks = next
	return s.persistLocked(ctx)
}

// Delete implements service.Service.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if service.FindTask(s.tasks, id) < 0 {
		return nil
	}

	next := make([]service.Task, 0, len(s.tasks)-1)
	for _, t := range s.tasks {
		if t.ID != id {
			next = append(next, t)
		}
	}
	s.tasks = next
	return s.persistLocked(ctx)
}

// Close implements service.Service.
func (s *Store) Close() error {
	return s.storage.Close()
}

func (s *Store) persistLocked(ctx context.Context) error {
	tasks := s.tasks
	if tasks == nil {
		tasks = []service.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := s.storage.SetItem(ctx, TasksKey, string(data)); err != nil {
		s.log.Warn("persist tasks failed", "err", err)
		return fmt.Errorf("persist tasks: %w", err)
	}
	return nil
}
