package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"taskr/internal/auth"
	"taskr/internal/commands"
	"taskr/internal/config"
	"taskr/internal/exitcode"
	"taskr/internal/logging"
	"taskr/internal/service"
)

// ServiceFactory creates the task store for the configured backend.
// gate carries the current session, if any.
type ServiceFactory func(ctx context.Context, cfg *config.Config, gate *auth.Gate, log *slog.Logger) (service.Service, error)

// AuthenticatorFactory returns the login/signup collaborator, or nil for
// backends without one.
type AuthenticatorFactory func(cfg *config.Config, log *slog.Logger) service.Authenticator

// PreferencesFactory opens the local preference store.
type PreferencesFactory func(ctx context.Context, cfg *config.Config) (service.Preferences, error)

// Backend bundles the factories the dispatcher wires into every command.
type Backend struct {
	Tasks       ServiceFactory
	Auth        AuthenticatorFactory
	Preferences PreferencesFactory
}

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	backend  Backend
}

// NewDispatcher creates a new dispatcher with the given registry and backend.
func NewDispatcher(registry *commands.Registry, backend Backend) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		backend:  backend,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		return reportFlagError(errOut, err)
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	log := logging.New(errOut, debug)
	env := d.newEnv(cfg, log)
	defer func() {
		if err := env.Close(); err != nil {
			log.Warn("close preferences failed", "err", err)
		}
	}()

	var svc service.Service
	if cmd.NeedsAuth() {
		if cfg.RequiresLogin() && !env.Gate.Authenticated() {
			fmt.Fprintln(errOut, "error: not logged in (run: taskr login)")
			return exitcode.AuthError
		}
		if env.OpenTasks == nil {
			fmt.Fprintln(errOut, "error: no task backend configured")
			return exitcode.BackendError
		}

		svc, err = env.OpenTasks(ctx)
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
		defer func() {
			if err := svc.Close(); err != nil {
				log.Warn("close task store failed", "err", err)
			}
		}()

		if _, err := svc.Load(ctx); err != nil {
			return commands.Report(errOut, err)
		}
	}

	return cmd.Run(ctx, env, svc, positionalArgs, out, errOut)
}

// newEnv opens the auth gate and binds the backend factories to cfg.
func (d *Dispatcher) newEnv(cfg *config.Config, log *slog.Logger) *commands.Env {
	var authn service.Authenticator
	if d.backend.Auth != nil && cfg.RequiresLogin() {
		authn = d.backend.Auth(cfg, log)
	}
	gate := auth.Open(auth.NewFileSession(cfg.SessionPath()), authn, auth.WithLogger(log))

	env := &commands.Env{Config: cfg, Gate: gate, Log: log}
	if d.backend.Tasks != nil {
		env.OpenTasks = func(ctx context.Context) (service.Service, error) {
			return d.backend.Tasks(ctx, cfg, gate, log)
		}
	}
	if d.backend.Preferences != nil {
		env.OpenPreferences = func(ctx context.Context) (service.Preferences, error) {
			return d.backend.Preferences(ctx, cfg)
		}
	}
	return env
}

// reportFlagError prints a flag parsing error and returns the exit code.
func reportFlagError(errOut io.Writer, err error) int {
	errStr := err.Error()

	// Check for missing flag value
	if strings.HasPrefix(errStr, "flag needs an argument:") {
		flagName := strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
		fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", flagName)
		return exitcode.UserError
	}

	// Check for unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", flagName)
		return exitcode.UserError
	}

	fmt.Fprintf(errOut, "error: %s\n", errStr)
	return exitcode.UserError
}
