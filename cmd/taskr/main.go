// Package main is the entry point for the taskr CLI.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"taskr/internal/auth"
	"taskr/internal/backend/local"
	"taskr/internal/backend/remote"
	"taskr/internal/cli"
	"taskr/internal/commands"
	"taskr/internal/config"
	"taskr/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newBackend())

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// newBackend wires the configured backend into the dispatcher.
func newBackend() cli.Backend {
	return cli.Backend{
		Tasks:       openTasks,
		Auth:        openAuthenticator,
		Preferences: openPreferences,
	}
}

func openTasks(ctx context.Context, cfg *config.Config, gate *auth.Gate, log *slog.Logger) (service.Service, error) {
	if cfg.Backend == config.BackendLocal {
		st, err := local.Open(cfg.StoragePath())
		if err != nil {
			return nil, err
		}
		return local.NewStore(st, log), nil
	}

	opts := []remote.Option{remote.WithLogger(log)}
	if tok := auth.BearerToken(gate.Token()); tok != nil {
		opts = append(opts, remote.WithBearerToken(ctx, tok))
	}
	return remote.NewStore(remote.New(cfg.APIURL, opts...), log), nil
}

func openAuthenticator(cfg *config.Config, log *slog.Logger) service.Authenticator {
	return remote.New(cfg.APIURL, remote.WithLogger(log))
}

func openPreferences(ctx context.Context, cfg *config.Config) (service.Preferences, error) {
	st, err := local.Open(cfg.StoragePath())
	if err != nil {
		return nil, err
	}
	return st, nil
}
