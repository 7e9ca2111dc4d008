package cli_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"taskr/internal/auth"
	"taskr/internal/cli"
	"taskr/internal/commands"
	"taskr/internal/config"
	"taskr/internal/exitcode"
	"taskr/internal/service"
	"taskr/internal/testutil"
)

// testBackend returns a Backend whose task store is svc.
func testBackend(svc *testutil.FakeService, fa *testutil.FakeAuthenticator) cli.Backend {
	return cli.Backend{
		Tasks: func(ctx context.Context, cfg *config.Config, gate *auth.Gate, log *slog.Logger) (service.Service, error) {
			return svc, nil
		},
		Auth: func(cfg *config.Config, log *slog.Logger) service.Authenticator {
			return fa
		},
	}
}

// isolate keeps the developer's environment out of config loading.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("TASKR_BACKEND", "")
	t.Setenv("TASKR_API_URL", "")
	t.Setenv("TASKR_STORAGE", "")
	return t.TempDir()
}

func run(d *cli.Dispatcher, args ...string) (stdout, stderr string, code int) {
	var out, errOut bytes.Buffer
	code = d.Run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testBackend(testutil.NewFakeService(), nil))

	_, stderr, code := run(dispatcher, "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testBackend(testutil.NewFakeService(), nil))

	_, stderr, code := run(dispatcher, "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	dir := isolate(t)
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testBackend(testutil.NewFakeService(), nil))

	stdout, stderr, code := run(dispatcher, "help", "--config", dir)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	dir := isolate(t)
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testBackend(testutil.NewFakeService(), nil))

	stdout, stderr, code := run(dispatcher, "version", "--config", dir)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskr 0.1.0\n" {
		t.Errorf("expected 'taskr 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testBackend(testutil.NewFakeService(), nil))

	_, stderr, code := run(dispatcher, "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagNeedsArgument(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testBackend(testutil.NewFakeService(), nil))

	_, stderr, code := run(dispatcher, "list", "--config")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -config\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_RemoteRequiresLogin(t *testing.T) {
	dir := isolate(t)
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testBackend(svc, &testutil.FakeAuthenticator{}))

	_, stderr, code := run(dispatcher, "list", "--config", dir)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: taskr login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Loads != 0 {
		t.Error("store should not be loaded without a session")
	}
}

func TestDispatcher_DefaultListsLocalTasks(t *testing.T) {
	dir := isolate(t)
	t.Setenv("TASKR_BACKEND", "local")
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", true)
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testBackend(svc, nil))

	// No args dispatches to list; the config dir comes from XDG.
	t.Setenv("XDG_CONFIG_HOME", dir)
	stdout, stderr, code := run(dispatcher)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	expected := "Completed 1 of 1 (100%)\n   1  [x] Buy milk\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
	if svc.Loads != 1 {
		t.Errorf("expected one load, got %d", svc.Loads)
	}
	if !svc.Closed() {
		t.Error("expected store closed after command")
	}
}

func TestDispatcher_LoggedInRemote(t *testing.T) {
	dir := isolate(t)
	session := auth.NewFileSession(filepath.Join(dir, config.SessionFile))
	if err := session.Save(auth.NewSession("", time.Now())); err != nil {
		t.Fatal(err)
	}
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testBackend(svc, &testutil.FakeAuthenticator{}))

	stdout, stderr, code := run(dispatcher, "add", "--config", dir, "Buy", "milk")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	if tasks := svc.Tasks(); len(tasks) != 1 || tasks[0].Text != "Buy milk" {
		t.Errorf("unexpected tasks %+v", tasks)
	}
}

func TestDispatcher_LoadRejected(t *testing.T) {
	dir := isolate(t)
	t.Setenv("TASKR_BACKEND", "local")
	svc := testutil.NewFakeService()
	svc.LoadErr = fmt.Errorf("list tasks: %w", service.ErrUnauthorized)
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testBackend(svc, nil))

	_, stderr, code := run(dispatcher, "list", "--config", dir)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.HasPrefix(stderr, "error: auth error:") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	dir := isolate(t)
	t.Setenv("TASKR_BACKEND", "local")
	backend := cli.Backend{
		Tasks: func(ctx context.Context, cfg *config.Config, gate *auth.Gate, log *slog.Logger) (service.Service, error) {
			return nil, errors.New("open storage: disk full")
		},
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, backend)

	_, stderr, code := run(dispatcher, "list", "--config", dir)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: open storage: disk full\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_BadBackendConfig(t *testing.T) {
	dir := isolate(t)
	t.Setenv("TASKR_BACKEND", "cloud")
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testBackend(testutil.NewFakeService(), nil))

	_, stderr, code := run(dispatcher, "list", "--config", dir)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "unknown backend: cloud") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_LoginUsesAuthenticator(t *testing.T) {
	dir := isolate(t)
	fa := &testutil.FakeAuthenticator{Response: service.AuthResponse{Success: true}}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testBackend(testutil.NewFakeService(), fa))

	_, stderr, code := run(dispatcher, "login", "--config", dir, "--email", "a@b.co", "--password", "secret1")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if fa.CallCount() != 1 {
		t.Errorf("expected one login call, got %v", fa.Calls)
	}

	_, _, code = run(dispatcher, "list", "--config", dir)
	if code != exitcode.Success {
		t.Errorf("expected list to pass the gate after login, got %d", code)
	}
}
