package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taskr/internal/config"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("TASKR_BACKEND", "")
	t.Setenv("TASKR_API_URL", "")
	dir := t.TempDir()

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.Backend != config.BackendRemote {
		t.Errorf("expected backend %q, got %q", config.BackendRemote, cfg.Backend)
	}
	if cfg.APIURL != config.DefaultAPIURL {
		t.Errorf("expected api url %q, got %q", config.DefaultAPIURL, cfg.APIURL)
	}
	if got, want := cfg.StoragePath(), filepath.Join(dir, "local.db"); got != want {
		t.Errorf("expected storage path %q, got %q", want, got)
	}
	if !cfg.RequiresLogin() {
		t.Error("remote backend should require login")
	}
}

func TestNew_ReadsConfigFile(t *testing.T) {
	t.Setenv("TASKR_BACKEND", "")
	t.Setenv("TASKR_API_URL", "")
	dir := t.TempDir()
	content := "backend: local\napi_url: https://tasks.example.com/\nstorage: data/tasks.db\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.Backend != config.BackendLocal {
		t.Errorf("expected local backend, got %q", cfg.Backend)
	}
	if cfg.APIURL != "https://tasks.example.com" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.APIURL)
	}
	if got, want := cfg.StoragePath(), filepath.Join(dir, "data", "tasks.db"); got != want {
		t.Errorf("expected storage path %q, got %q", want, got)
	}
	if cfg.RequiresLogin() {
		t.Error("local backend should not require login")
	}
}

func TestNew_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api_url: http://file\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TASKR_API_URL", "http://env")
	t.Setenv("TASKR_BACKEND", "")

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.APIURL != "http://env" {
		t.Errorf("expected env override, got %q", cfg.APIURL)
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	t.Setenv("TASKR_BACKEND", "carrier-pigeon")

	_, err := config.New(t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "unknown backend") {
		t.Fatalf("expected unknown backend error, got %v", err)
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := config.DefaultConfigDir(); got != filepath.Join("/tmp/xdg", "taskr") {
		t.Errorf("unexpected dir %q", got)
	}
}

func TestWriteDefault(t *testing.T) {
	t.Setenv("TASKR_BACKEND", "")
	t.Setenv("TASKR_API_URL", "")
	dir := filepath.Join(t.TempDir(), "nested")
	cfg := &config.Config{Dir: dir}

	if err := cfg.WriteDefault(); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if err := cfg.WriteDefault(); !errors.Is(err, config.ErrConfigExists) {
		t.Errorf("expected ErrConfigExists on second write, got %v", err)
	}

	loaded, err := config.New(dir)
	if err != nil {
		t.Fatalf("New after WriteDefault: %v", err)
	}
	if loaded.Settings != config.DefaultSettings() {
		t.Errorf("expected default settings, got %+v", loaded.Settings)
	}
}
