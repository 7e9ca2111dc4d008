// Package config handles XDG configuration directory, file paths and the
// optional config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "taskr"

	// ConfigFile is the optional settings filename.
	ConfigFile = "config.yaml"

	// SessionFile is the stored session filename.
	SessionFile = "session.json"

	// StorageFile is the default local storage database filename.
	StorageFile = "local.db"

	// EnvPrefix prefixes environment overrides (TASKR_API_URL, ...).
	EnvPrefix = "TASKR"
)

// Backend names.
const (
	BackendRemote = "remote"
	BackendLocal  = "local"
)

// DefaultAPIURL is the API base URL used when none is configured.
const DefaultAPIURL = "http://localhost:3000"

// Settings are the values read from config.yaml and the environment.
type Settings struct {
	Backend string `yaml:"backend" mapstructure:"backend"`
	APIURL  string `yaml:"api_url" mapstructure:"api_url"`
	Storage string `yaml:"storage,omitempty" mapstructure:"storage"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Backend: BackendRemote,
		APIURL:  DefaultAPIURL,
	}
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	Settings
}

// New creates a new Config with the default or specified config directory
// and loads config.yaml from it, if present.
// If configDir is empty, uses XDG_CONFIG_HOME/taskr or $HOME/.config/taskr.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir, Settings: DefaultSettings()}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) load() error {
	v := viper.New()
	v.SetDefault("backend", c.Backend)
	v.SetDefault("api_url", c.APIURL)
	v.SetDefault("storage", c.Storage)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	path := c.ConfigPath()
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	s.APIURL = strings.TrimRight(strings.TrimSpace(s.APIURL), "/")

	switch s.Backend {
	case BackendRemote, BackendLocal:
	default:
		return fmt.Errorf("unknown backend: %s", s.Backend)
	}
	c.Settings = s
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// SessionPath returns the path to the stored session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// StoragePath returns the local storage database path.
// A relative storage setting is resolved against the config directory.
func (c *Config) StoragePath() string {
	if c.Storage == "" {
		return filepath.Join(c.Dir, StorageFile)
	}
	if filepath.IsAbs(c.Storage) {
		return c.Storage
	}
	return filepath.Join(c.Dir, c.Storage)
}

// RequiresLogin reports whether task commands are gated by a session.
// Only the remote backend has an auth collaborator.
func (c *Config) RequiresLogin() bool {
	return c.Backend == BackendRemote
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasSession checks if the session file exists.
func (c *Config) HasSession() bool {
	_, err := os.Stat(c.SessionPath())
	return err == nil
}

// Marshal renders the effective settings as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c.Settings)
}

// ErrConfigExists is returned by WriteDefault when config.yaml already exists.
var ErrConfigExists = errors.New("config file already exists")

// WriteDefault writes a config.yaml with default settings.
// It refuses to overwrite an existing file.
func (c *Config) WriteDefault() error {
	if err := c.EnsureDir(); err != nil {
		return err
	}
	path := c.ConfigPath()
	if _, err := os.Stat(path); err == nil {
		return ErrConfigExists
	}

	data, err := yaml.Marshal(DefaultSettings())
	if err != nil {
		return err
	}
	header := "# taskr configuration\n# backend: remote (REST API) or local (on-disk storage)\n"
	return os.WriteFile(path, append([]byte(header), data...), 0600)
}
