// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"
	"log/slog"

	"taskr/internal/auth"
	"taskr/internal/config"
	"taskr/internal/logging"
	"taskr/internal/service"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command works on the task store.
	// The dispatcher refuses to run it without a session when the backend
	// requires login, and loads the store before Run.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// env is always provided.
	// svc is nil if NeedsAuth() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int
}

// Env is the application state handed to every command.
type Env struct {
	Config *config.Config
	Gate   *auth.Gate
	Log    *slog.Logger

	// OpenTasks builds a task store for the current session. Commands that
	// do not get a store from the dispatcher (ui) call it themselves.
	OpenTasks func(ctx context.Context) (service.Service, error)

	// OpenPreferences opens the local preference store. May be nil.
	OpenPreferences func(ctx context.Context) (service.Preferences, error)

	prefs service.Preferences
}

// Logger returns env.Log, or a discarding logger.
func (e *Env) Logger() *slog.Logger {
	return logging.OrDiscard(e.Log)
}

// Preferences opens the preference store once and caches it.
func (e *Env) Preferences(ctx context.Context) (service.Preferences, error) {
	if e.prefs != nil {
		return e.prefs, nil
	}
	if e.OpenPreferences == nil {
		return nil, nil
	}
	p, err := e.OpenPreferences(ctx)
	if err != nil {
		return nil, err
	}
	e.prefs = p
	return p, nil
}

// Close releases anything opened through the Env.
func (e *Env) Close() error {
	if c, ok := e.prefs.(io.Closer); ok {
		e.prefs = nil
		return c.Close()
	}
	return nil
}
