// Package remote implements the task store against the tasks REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"taskr/internal/logging"
	"taskr/internal/service"
)

const (
	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	tasksPath  = "/api/tasks"
	loginPath  = "/api/login"
	signupPath = "/api/signup"
)

// Client talks to the tasks REST API. It also serves as the login/signup
// collaborator.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

var _ service.Authenticator = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithBearerToken authenticates every request with the given token.
func WithBearerToken(ctx context.Context, tok *oauth2.Token) Option {
	return func(c *Client) {
		if tok == nil || tok.AccessToken == "" {
			return
		}
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
		c.http = oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.log = logging.OrDiscard(l)
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListTasks fetches all tasks of the current user.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.call(ctx, http.MethodGet, tasksPath, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a task with the given text.
func (c *Client) CreateTask(ctx context.Context, text string) (service.Task, error) {
	var task service.Task
	body := map[string]any{"text": text}
	if err := c.call(ctx, http.MethodPost, tasksPath, body, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// UpdateTask replaces the text and completion flag of a task.
// The returned task is zero if the server sent no body.
func (c *Client) UpdateTask(ctx context.Context, id int64, text string, completed bool) (service.Task, error) {
	var task service.Task
	body := map[string]any{"text": text, "completed": completed}
	if err := c.call(ctx, http.MethodPut, taskPath(id), body, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// DeleteTask deletes a task by id.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

// Login implements service.Authenticator. The login endpoint names the
// email field "username".
func (c *Client) Login(ctx context.Context, email, password string) (service.AuthResponse, error) {
	return c.authenticate(ctx, loginPath, map[string]string{
		"username": email,
		"password": password,
	})
}

// Signup implements service.Authenticator.
func (c *Client) Signup(ctx context.Context, email, password string) (service.AuthResponse, error) {
	return c.authenticate(ctx, signupPath, map[string]string{
		"email":    email,
		"password": password,
	})
}

// authenticate posts credentials. Auth endpoints answer failures with a JSON
// body even on non-2xx statuses, so the body is decoded before the status
// is considered.
func (c *Client) authenticate(ctx context.Context, path string, body any) (service.AuthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	resp, data, err := c.send(ctx, http.MethodPost, path, body)
	if err != nil {
		return service.AuthResponse{}, wrapError(err)
	}

	var out service.AuthResponse
	if jsonErr := json.Unmarshal(data, &out); jsonErr == nil {
		return out, nil
	}
	if err := checkResponse(resp, data); err != nil {
		return service.AuthResponse{}, wrapError(err)
	}
	return service.AuthResponse{}, fmt.Errorf("invalid response from %s", path)
}

// call performs a JSON request and decodes the response into out, if any.
// An empty response body leaves out untouched.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	resp, data, err := c.send(ctx, method, path, body)
	if err != nil {
		return wrapError(err)
	}
	if err := checkResponse(resp, data); err != nil {
		return wrapError(err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// send issues the request and reads the whole response body.
func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, err
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("api request failed", "method", method, "path", path, "request_id", requestID, "err", err)
		return nil, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	c.log.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start),
	)
	return resp, data, nil
}

// checkResponse turns a non-2xx response into a *googleapi.Error.
func checkResponse(resp *http.Response, data []byte) error {
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return googleapi.CheckResponse(resp)
}

func taskPath(id int64) string {
	return tasksPath + "/" + strconv.FormatInt(id, 10)
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("cancelled: %w", context.Canceled)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w (run: taskr login)", service.ErrUnauthorized)
		case http.StatusNotFound:
			return service.ErrNotFound
		default:
			return fmt.Errorf("server returned status %d", apiErr.Code)
		}
	}

	return err
}
