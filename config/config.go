package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// EnvPrefix is prepended to every environment override, e.g.
// IPTV_CATALOG_SERVER_PORT or IPTV_CATALOG_IMPORT_SOURCES.
const EnvPrefix = "IPTV_CATALOG"

// Config holds the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Import   ImportConfig   `mapstructure:"import"`
	Classify ClassifyConfig `mapstructure:"classify"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// FetchConfig holds playlist download settings. An empty CacheDir
// disables the stale-playlist fallback.
type FetchConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxBytes    int64         `mapstructure:"max_bytes"`
	CacheDir    string        `mapstructure:"cache_dir"`
	CacheMaxAge time.Duration `mapstructure:"cache_max_age"`
}

// ImportConfig holds the playlists imported on start and on schedule
type ImportConfig struct {
	Sources    []string `mapstructure:"sources"`
	Schedule   string   `mapstructure:"schedule"`
	RunOnStart bool     `mapstructure:"run_on_start"`
}

// ClassifyConfig holds classification settings
type ClassifyConfig struct {
	DefaultGenre string `mapstructure:"default_genre"`
	Locale       string `mapstructure:"locale"`
	RulesFile    string `mapstructure:"rules_file"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Fetch: FetchConfig{
			Timeout:  30 * time.Second,
			MaxBytes: 64 << 20,
		},
		Import: ImportConfig{
			Sources: []string{},
		},
		Classify: ClassifyConfig{
			DefaultGenre: "Uncategorized",
			Locale:       "und",
		},
	}
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.iptv-catalog")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.path", d.Logging.Path)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)

	v.SetDefault("fetch.timeout", d.Fetch.Timeout)
	v.SetDefault("fetch.max_bytes", d.Fetch.MaxBytes)
	v.SetDefault("fetch.cache_dir", d.Fetch.CacheDir)
	v.SetDefault("fetch.cache_max_age", d.Fetch.CacheMaxAge)

	v.SetDefault("import.sources", d.Import.Sources)
	v.SetDefault("import.schedule", d.Import.Schedule)
	v.SetDefault("import.run_on_start", d.Import.RunOnStart)

	v.SetDefault("classify.default_genre", d.Classify.DefaultGenre)
	v.SetDefault("classify.locale", d.Classify.Locale)
	v.SetDefault("classify.rules_file", d.Classify.RulesFile)
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	var errors []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("server port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errors = append(errors, "server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errors = append(errors, "server write timeout must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errors = append(errors, "server shutdown timeout must be positive")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		errors = append(errors, fmt.Sprintf("logging format must be console or json, got %q", c.Logging.Format))
	}

	if c.Fetch.Timeout <= 0 {
		errors = append(errors, "fetch timeout must be positive")
	}
	if c.Fetch.MaxBytes <= 0 {
		errors = append(errors, "fetch max bytes must be positive")
	}
	if c.Fetch.CacheMaxAge < 0 {
		errors = append(errors, "fetch cache max age cannot be negative")
	}

	for i, src := range c.Import.Sources {
		if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
			errors = append(errors, fmt.Sprintf("import source %d: %q is not an http(s) URL", i, src))
		}
	}
	if (c.Import.Schedule != "" || c.Import.RunOnStart) && len(c.Import.Sources) == 0 {
		errors = append(errors, "scheduled or startup imports require at least one import source")
	}

	if strings.TrimSpace(c.Classify.DefaultGenre) == "" {
		errors = append(errors, "classify default genre is required")
	}
	if _, err := language.Parse(c.Classify.Locale); err != nil {
		errors = append(errors, fmt.Sprintf("classify locale %q: %v", c.Classify.Locale, err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Language returns the collation language for titles.
func (c *ClassifyConfig) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und
	}
	return tag
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
