// Package auth holds the authenticated/unauthenticated state of the client
// and the login, signup and logout transitions between them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"taskr/internal/logging"
	"taskr/internal/service"
)

// Messages shown when the server gives no reason.
const (
	MsgLoginFailed  = "Login failed"
	MsgSignupFailed = "Signup failed"
	MsgUnexpected   = "An unexpected error occurred."
)

// PrivacyNotice is shown on signup until the user acknowledges it.
const PrivacyNotice = "We collect your email address to allow you to sign in to your account. " +
	"Your email is stored securely and never shared."

// ErrNoAuthenticator is returned by Login and Signup on a gate without an
// authenticator.
var ErrNoAuthenticator = errors.New("this backend has no login")

// Result is the outcome of a login or signup attempt.
type Result struct {
	// Authenticated reports the gate state after the attempt.
	Authenticated bool
	// Fields holds per-field validation messages. No request was made.
	Fields map[string]string
	// Message is the form-level message, usually from the server.
	Message string
	// Navigate is set after a successful signup.
	Navigate bool
}

// Gate tracks whether the user is logged in.
type Gate struct {
	session SessionStore
	auth    service.Authenticator
	log     *slog.Logger
	now     func() time.Time

	mu    sync.Mutex
	token *oauth2.Token
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the gate's logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) { g.log = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// Open reads the stored session and returns a gate in the matching state.
// An expired, empty or unreadable session counts as logged out. The session
// is not re-checked after Open.
func Open(session SessionStore, a service.Authenticator, opts ...Option) *Gate {
	g := &Gate{session: session, auth: a, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	g.log = logging.OrDiscard(g.log)

	tok, err := session.Load()
	switch {
	case errors.Is(err, ErrNoSession):
	case err != nil:
		g.log.Warn("ignoring unreadable session", "err", err)
	case !sessionValid(tok, g.now()):
		g.log.Debug("session expired", "expiry", tok.Expiry)
	default:
		g.token = tok
	}
	return g
}

// Authenticated reports whether a valid session is held.
func (g *Gate) Authenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token != nil
}

// Token returns a copy of the session token, or nil when logged out.
func (g *Gate) Token() *oauth2.Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.token == nil {
		return nil
	}
	tok := *g.token
	return &tok
}

// Login validates the form and, if it passes, calls the server. A failure
// response leaves the state unchanged and its reason in Result.Message.
func (g *Gate) Login(ctx context.Context, email, password string) (Result, error) {
	return g.attempt(ctx, email, password, false)
}

// Signup is Login for new accounts. Success also sets Result.Navigate.
func (g *Gate) Signup(ctx context.Context, email, password string) (Result, error) {
	return g.attempt(ctx, email, password, true)
}

func (g *Gate) attempt(ctx context.Context, email, password string, signup bool) (Result, error) {
	if verr := Validate(email, password); verr != nil {
		return Result{Authenticated: g.Authenticated(), Fields: verr.Fields}, nil
	}
	if g.auth == nil {
		return Result{Authenticated: g.Authenticated()}, ErrNoAuthenticator
	}

	call, fallback, op := g.auth.Login, MsgLoginFailed, "login"
	if signup {
		call, fallback, op = g.auth.Signup, MsgSignupFailed, "signup"
	}

	resp, err := call(ctx, email, password)
	if err != nil {
		g.log.Warn(op+" request failed", "err", err)
		return Result{Authenticated: g.Authenticated(), Message: MsgUnexpected}, fmt.Errorf("%s: %w", op, err)
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = fallback
		}
		g.log.Debug(op+" rejected", "reason", msg)
		return Result{Authenticated: g.Authenticated(), Message: msg}, nil
	}

	tok := NewSession(resp.Token, g.now())
	if err := g.session.Save(tok); err != nil {
		return Result{Authenticated: g.Authenticated(), Message: MsgUnexpected}, err
	}

	g.mu.Lock()
	g.token = tok
	g.mu.Unlock()

	return Result{Authenticated: true, Message: resp.Error, Navigate: signup}, nil
}

// Logout removes the session.
func (g *Gate) Logout() error {
	g.mu.Lock()
	g.token = nil
	g.mu.Unlock()
	return g.session.Clear()
}
