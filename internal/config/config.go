// Package config provides configuration types and defaults for freelog.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Config holds all configuration options for freelog.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	I18n     I18nConfig     `mapstructure:"i18n"`
}

// ServerConfig holds HTTP listener options.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	BaseURL         string        `mapstructure:"base_url"` // public origin used for OAuth redirects
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	StaticDir       string        `mapstructure:"static_dir"` // built frontend; empty serves the API only
}

// DatabaseConfig holds SQLite options.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// AuthConfig holds identity provider and session options.
type AuthConfig struct {
	// Provider selects the identity provider.
	// Valid values: "google", "dev"
	Provider     string        `mapstructure:"provider"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"` // in-process session lookup cache
	CookieName   string        `mapstructure:"cookie_name"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
	// PurgeInterval is how often expired sessions are deleted.
	PurgeInterval time.Duration `mapstructure:"purge_interval"`
}

// StorageConfig holds deliverable upload options.
type StorageConfig struct {
	UploadDir      string `mapstructure:"upload_dir"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TracingConfig holds OpenTelemetry options.
type TracingConfig struct {
	// Exporter selects the span exporter.
	// Valid values: "none", "stdout", "otlp"
	Exporter    string `mapstructure:"exporter"`
	Endpoint    string `mapstructure:"endpoint"` // OTLP gRPC endpoint, e.g. localhost:4317
	ServiceName string `mapstructure:"service_name"`
}

// I18nConfig holds localization options.
type I18nConfig struct {
	DefaultLocale string `mapstructure:"default_locale"`
}

// Default limits.
const (
	DefaultMaxUploadBytes = 50 << 20
	DefaultSessionTTL     = 7 * 24 * time.Hour
)

// DefaultDir returns ~/.freelog, falling back to ./.freelog when the home
// directory cannot be determined.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".freelog"
	}
	return filepath.Join(home, ".freelog")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	dir := DefaultDir()
	return Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			BaseURL:         "http://127.0.0.1:8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(dir, "freelog.db"),
		},
		Auth: AuthConfig{
			Provider:      "dev",
			SessionTTL:    DefaultSessionTTL,
			CacheTTL:      time.Minute,
			CookieName:    "freelog_session",
			PurgeInterval: time.Hour,
		},
		Storage: StorageConfig{
			UploadDir:      filepath.Join(dir, "uploads"),
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
		Log: LogConfig{
			Level: "info",
		},
		Tracing: TracingConfig{
			Exporter:    "none",
			ServiceName: "freelog",
		},
		I18n: I18nConfig{
			DefaultLocale: "en",
		},
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if _, err := url.ParseRequestURI(c.Server.BaseURL); err != nil {
		return fmt.Errorf("server.base_url: %w", err)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	switch c.Auth.Provider {
	case "dev":
	case "google":
		if c.Auth.ClientID == "" || c.Auth.ClientSecret == "" {
			return fmt.Errorf("auth: client_id and client_secret are required for provider %q", c.Auth.Provider)
		}
	default:
		return fmt.Errorf("auth.provider: unknown provider %q", c.Auth.Provider)
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive")
	}
	if c.Auth.CookieName == "" {
		return fmt.Errorf("auth.cookie_name is required")
	}

	if c.Storage.UploadDir == "" {
		return fmt.Errorf("storage.upload_dir is required")
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("storage.max_upload_bytes must be positive")
	}

	switch c.Tracing.Exporter {
	case "", "none", "stdout":
	case "otlp":
		if c.Tracing.Endpoint == "" {
			return fmt.Errorf("tracing.endpoint is required for the otlp exporter")
		}
	default:
		return fmt.Errorf("tracing.exporter: unknown exporter %q", c.Tracing.Exporter)
	}

	switch c.I18n.DefaultLocale {
	case "en", "pt":
	default:
		return fmt.Errorf("i18n.default_locale: unsupported locale %q", c.I18n.DefaultLocale)
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Freelog Configuration

server:
  addr: 127.0.0.1:8080
  # Public origin; OAuth redirects go to {base_url}/auth/callback
  base_url: http://127.0.0.1:8080
  read_timeout: 15s
  write_timeout: 60s
  shutdown_timeout: 10s
  # Directory holding the built frontend (index.html and assets)
  # static_dir: ./web/dist

# database:
#   path: ~/.freelog/freelog.db

auth:
  # Identity provider: "google" or "dev" (dev treats the code as an email)
  provider: dev
  # client_id: ...
  # client_secret: ...
  session_ttl: 168h
  cache_ttl: 1m
  cookie_name: freelog_session
  cookie_secure: false
  purge_interval: 1h

storage:
  # upload_dir: ~/.freelog/uploads
  max_upload_bytes: 52428800  # 50MB

log:
  level: info   # debug, info, warn, error (reloaded on change)
  json: false

tracing:
  exporter: none  # none, stdout, otlp
  # endpoint: localhost:4317
  service_name: freelog

i18n:
  default_locale: en  # en, pt
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
