package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/freelog/freelog/internal/log"
)

// EnvPrefix is the prefix for environment overrides, e.g. FREELOG_SERVER_ADDR.
const EnvPrefix = "FREELOG"

// NewViper returns a viper instance seeded with Defaults and environment
// overrides. When configPath is empty, config.yaml is searched for in
// DefaultDir and the working directory; a missing file is not an error.
func NewViper(configPath string) *viper.Viper {
	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultDir())
		v.AddConfigPath(".")
	}
	return v
}

// Load reads configuration into a validated Config.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		log.Debug(log.CatConfig, "No config file found, using defaults")
	} else {
		log.Debug(log.CatConfig, "Loaded config file", "path", v.ConfigFileUsed())
	}
	return decode(v)
}

// Watch invokes onChange with the re-decoded config every time the config
// file changes. Decode or validation failures are logged and skipped so a
// half-written file never replaces a good config.
func Watch(v *viper.Viper, onChange func(Config)) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		if err != nil {
			log.Warn(log.CatConfig, "Ignoring invalid config change", "path", e.Name, "error", err)
			return
		}
		log.Info(log.CatConfig, "Config reloaded", "path", e.Name)
		onChange(cfg)
	})
	v.WatchConfig()
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.base_url", d.Server.BaseURL)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.static_dir", d.Server.StaticDir)

	v.SetDefault("database.path", d.Database.Path)

	v.SetDefault("auth.provider", d.Auth.Provider)
	v.SetDefault("auth.client_id", d.Auth.ClientID)
	v.SetDefault("auth.client_secret", d.Auth.ClientSecret)
	v.SetDefault("auth.session_ttl", d.Auth.SessionTTL)
	v.SetDefault("auth.cache_ttl", d.Auth.CacheTTL)
	v.SetDefault("auth.cookie_name", d.Auth.CookieName)
	v.SetDefault("auth.cookie_secure", d.Auth.CookieSecure)
	v.SetDefault("auth.purge_interval", d.Auth.PurgeInterval)

	v.SetDefault("storage.upload_dir", d.Storage.UploadDir)
	v.SetDefault("storage.max_upload_bytes", d.Storage.MaxUploadBytes)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)

	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)

	v.SetDefault("i18n.default_locale", d.I18n.DefaultLocale)
}
