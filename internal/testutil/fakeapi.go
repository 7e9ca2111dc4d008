package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"taskr/internal/service"
)

// FakeAPI is an in-memory implementation of the tasks REST API served over
// httptest. Tests point a remote.Client at URL.
type FakeAPI struct {
	*httptest.Server

	mu       sync.Mutex
	tasks    []service.Task
	nextID   int64
	users    map[string]string // email -> password
	failures map[string]int    // method -> status
	requests []string

	lastAuth      string
	lastRequestID string

	// Token is returned with successful login/signup responses.
	Token string
}

// NewFakeAPI starts a FakeAPI that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		nextID:   1,
		users:    make(map[string]string),
		failures: make(map[string]int),
	}

	r := chi.NewRouter()
	r.Use(f.record)
	r.Route("/api", func(r chi.Router) {
		r.Get("/tasks", f.listTasks)
		r.Post("/tasks", f.createTask)
		r.Put("/tasks/{id}", f.updateTask)
		r.Delete("/tasks/{id}", f.deleteTask)
		r.Post("/login", f.login)
		r.Post("/signup", f.signup)
	})

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// AddUser registers credentials accepted by /api/login.
func (f *FakeAPI) AddUser(email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email] = password
}

// AddTask seeds a task and returns it.
func (f *FakeAPI) AddTask(text string, completed bool) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertLocked(text, completed)
}

// StoredTasks returns a copy of the server-side task list.
func (f *FakeAPI) StoredTasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Fail makes every request with the given method answer with status.
// A zero status clears the failure.
func (f *FakeAPI) Fail(method string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status == 0 {
		delete(f.failures, method)
		return
	}
	f.failures[method] = status
}

// Requests returns "METHOD /path" for every request received.
func (f *FakeAPI) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.requests))
	copy(out, f.requests)
	return out
}

// LastAuthorization returns the Authorization header of the latest request.
func (f *FakeAPI) LastAuthorization() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAuth
}

// LastRequestID returns the X-Request-ID header of the latest request.
func (f *FakeAPI) LastRequestID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastRequestID
}

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		f.lastAuth = r.Header.Get("Authorization")
		f.lastRequestID = r.Header.Get("X-Request-ID")
		status, failing := f.failures[r.Method]
		f.mu.Unlock()

		if failing {
			writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) listTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, f.StoredTasks())
}

func (f *FakeAPI) createTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	f.mu.Lock()
	task := f.insertLocked(body.Text, false)
	f.mu.Unlock()
	writeJSON(w, http.StatusCreated, task)
}

func (f *FakeAPI) updateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var body struct {
		Text      string `json:"text"`
		Completed bool   `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	i := service.FindTask(f.tasks, id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}
	f.tasks[i].Text = body.Text
	f.tasks[i].Completed = body.Completed
	f.tasks[i].UpdatedAt = time.Now().UTC()
	writeJSON(w, http.StatusOK, f.tasks[i])
}

func (f *FakeAPI) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	i := service.FindTask(f.tasks, id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, service.AuthResponse{Error: "invalid body"})
		return
	}

	f.mu.Lock()
	password, ok := f.users[body.Username]
	token := f.Token
	f.mu.Unlock()

	if !ok || password != body.Password {
		writeJSON(w, http.StatusUnauthorized, service.AuthResponse{Error: "Invalid email or password"})
		return
	}
	writeJSON(w, http.StatusOK, service.AuthResponse{Success: true, Token: token})
}

func (f *FakeAPI) signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, service.AuthResponse{Error: "invalid body"})
		return
	}

	f.mu.Lock()
	_, exists := f.users[body.Email]
	if !exists {
		f.users[body.Email] = body.Password
	}
	token := f.Token
	f.mu.Unlock()

	if exists {
		writeJSON(w, http.StatusConflict, service.AuthResponse{Error: "Email already registered"})
		return
	}
	writeJSON(w, http.StatusCreated, service.AuthResponse{Success: true, Token: token})
}

func (f *FakeAPI) insertLocked(text string, completed bool) service.Task {
	now := time.Now().UTC()
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

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
