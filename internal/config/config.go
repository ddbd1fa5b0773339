// Package config handles the configuration directory, settings file and
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// SettingsFile is the settings filename inside the config directory.
	SettingsFile = "config.toml"

	// OAuthClientFile is the Google OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored session token filename.
	TokenFile = "token.json"
)

// Backend names.
const (
	BackendREST        = "rest"
	BackendGoogleTasks = "googletasks"
)

// Settings are the values read from config.toml and the environment.
type Settings struct {
	Backend    string        `toml:"backend" env:"TODO_BACKEND" env-default:"rest"`
	ServerURL  string        `toml:"server_url" env:"TODO_SERVER_URL" env-default:"http://localhost:3001/api"`
	Timeout    time.Duration `toml:"timeout" env:"TODO_TIMEOUT" env-default:"5s"`
	GoogleList string        `toml:"google_list" env:"TODO_GOOGLE_LIST" env-default:"@default"`
	LogFormat  string        `toml:"log_format" env:"TODO_LOG_FORMAT" env-default:"text"`
}

// Config holds configuration paths and settings.
type Config struct {
	Settings

	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a Config for configDir with default settings.
// If configDir is empty, uses XDG_CONFIG_HOME/todo or $HOME/.config/todo.
func New(configDir string) *Config {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{Dir: dir, Settings: DefaultSettings()}
}

// Load creates a Config for configDir and reads settings from a .env file
// in the working directory, config.toml and the environment, in that order
// of increasing precedence.
func Load(configDir string) (*Config, error) {
	cfg := New(configDir)
	_ = godotenv.Load()

	var s Settings
	path := cfg.SettingsPath()
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &s); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&s); err != nil {
			return nil, fmt.Errorf("read environment: %w", err)
		}
	}
	cfg.Settings = s

	if err := cfg.Settings.Check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		Backend:    BackendREST,
		ServerURL:  "http://localhost:3001/api",
		Timeout:    5 * time.Second,
		GoogleList: "@default",
		LogFormat:  "text",
	}
}

// Check rejects settings the client cannot run with.
func (s Settings) Check() error {
	switch s.Backend {
	case BackendREST, BackendGoogleTasks:
	default:
		return fmt.Errorf("unknown backend: %s", s.Backend)
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %s", s.LogFormat)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive: %s", s.Timeout)
	}
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
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SettingsPath returns the path to config.toml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// OAuthClientPath returns the path to the Google OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored session token.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory with mode 0700 if it doesn't exist.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// ErrSettingsExist is returned by WriteSettings when config.toml exists.
var ErrSettingsExist = errors.New("config.toml already exists")

// WriteSettings writes the current settings to config.toml (mode 0600).
// It refuses to overwrite an existing file unless force is set.
func (c *Config) WriteSettings(force bool) error {
	if err := c.EnsureDir(); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(c.SettingsPath(), flags, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrSettingsExist
		}
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c.Settings)
}
