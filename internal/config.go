package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "neospottr"
	configFileName = "config.yaml"
)

// Config holds everything the program can be configured with. Values are layered:
// defaults, then the YAML file, then environment variables, then command line flags.
type Config struct {
	Feed      FeedConfig      `yaml:"feed"`
	Auth      AuthConfig      `yaml:"auth"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Store     StoreConfig     `yaml:"store"`
	LogLevel  string          `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFile   string          `yaml:"log_file"`
	Notify    bool            `yaml:"notify"`
}

type FeedConfig struct {
	URL             string        `yaml:"url" validate:"required,url"`
	APIKey          string        `yaml:"api_key" validate:"required"`
	Timeout         time.Duration `yaml:"timeout" validate:"gt=0"`
	RequestsPerHour int           `yaml:"requests_per_hour" validate:"gte=0"`
	Burst           int           `yaml:"burst" validate:"gte=1"`
}

type AuthConfig struct {
	URL    string `yaml:"url" validate:"omitempty,url"`
	APIKey string `yaml:"api_key" validate:"required_with=URL"`
}

type DashboardConfig struct {
	WindowDays    int    `yaml:"window_days" validate:"gte=1,lte=7"`
	IncrementDays int    `yaml:"increment_days" validate:"gte=1,lte=7"`
	SortBy        string `yaml:"sort_by" validate:"oneof=date name distance velocity diameter"`
	HazardousOnly bool   `yaml:"hazardous_only"`
}

type StoreConfig struct {
	TTL time.Duration `yaml:"ttl" validate:"gt=0"`
}

// DefaultConfig returns the configuration used when nothing else is given.
func DefaultConfig() Config {
	return Config{
		Feed: FeedConfig{
			URL:             DefaultFeedURL,
			APIKey:          DemoAPIKey,
			Timeout:         30 * time.Second, //nolint: mnd // default
			RequestsPerHour: 1800, //nolint: mnd // one request every two seconds
			Burst:           2,    //nolint: mnd // initial load plus one page
		},
		Auth: AuthConfig{},
		Dashboard: DashboardConfig{
			WindowDays:    DefaultWindowDays,
			IncrementDays: DefaultIncrementDays,
			SortBy:        string(SortByDate),
			HazardousOnly: false,
		},
		Store:    StoreConfig{TTL: DefaultStoreTTL},
		LogLevel: "info",
		LogFile:  "neospottr.log",
		Notify:   false,
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/neospottr/config.yaml or its platform equivalent.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, configDirName, configFileName)
}

// LoadConfig builds the configuration from defaults, the YAML file at path and the
// environment. A missing file at the default location is not an error.
func LoadConfig(path string, explicit bool) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("loadConfig: parsing %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return cfg, fmt.Errorf("loadConfig: %w", err)
		}
	}

	cfg.applyEnv(os.LookupEnv)

	return cfg, nil
}

func (cfg *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("NASA_API_KEY"); ok && v != "" {
		cfg.Feed.APIKey = v
	}
	if v, ok := lookup("SUPABASE_URL"); ok && v != "" {
		cfg.Auth.URL = v
	}
	if v, ok := lookup("SUPABASE_KEY"); ok && v != "" {
		cfg.Auth.APIKey = v
	}
}

// Validate checks the configuration against its struct tags.
func (cfg *Config) Validate() error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

// RequestOptions derives the feed client options.
func (cfg *Config) RequestOptions() RequestOptions {
	limit := rate.Inf
	if cfg.Feed.RequestsPerHour > 0 {
		limit = rate.Every(time.Hour / time.Duration(cfg.Feed.RequestsPerHour))
	}

	return RequestOptions{
		FeedURL:   cfg.Feed.URL,
		APIKey:    cfg.Feed.APIKey,
		Timeout:   cfg.Feed.Timeout,
		RateLimit: limit,
		RateBurst: cfg.Feed.Burst,
	}
}

// AuthOptions derives the auth client options.
func (cfg *Config) AuthOptions() AuthOptions {
	return AuthOptions{URL: cfg.Auth.URL, APIKey: cfg.Auth.APIKey, Timeout: 0}
}

// AuthEnabled reports whether an auth service is configured.
func (cfg *Config) AuthEnabled() bool {
	return cfg.Auth.URL != ""
}

// QueryOptions derives the initial list presentation.
func (cfg *Config) QueryOptions() QueryOptions {
	return QueryOptions{
		HazardousOnly: cfg.Dashboard.HazardousOnly,
		SortBy:        ParseSortKey(cfg.Dashboard.SortBy),
	}
}

// SlogLevel maps LogLevel onto slog.
func (cfg *Config) SlogLevel() slog.Level {
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
