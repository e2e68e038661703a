package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	domainconfig "braingraph/domain/config"
	"braingraph/pkg/utils"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address" json:"server_address" toml:"server_address" validate:"required"`
	Environment   string `yaml:"environment" json:"environment" toml:"environment" validate:"oneof=development staging production test"`

	// Graph backend
	BackendURL       string        `yaml:"backend_url" json:"backend_url" toml:"backend_url" validate:"required,url"`
	BackendTimeout   time.Duration `yaml:"backend_timeout" json:"backend_timeout" toml:"backend_timeout" validate:"gte=0"`
	BreakerThreshold float64       `yaml:"breaker_threshold" json:"breaker_threshold" toml:"breaker_threshold" validate:"gt=0,lte=1"`
	BreakerMinReqs   uint32        `yaml:"breaker_min_requests" json:"breaker_min_requests" toml:"breaker_min_requests"`
	BreakerOpenFor   time.Duration `yaml:"breaker_open_for" json:"breaker_open_for" toml:"breaker_open_for" validate:"gte=0"`

	// Query cache
	CacheProvider string        `yaml:"cache_provider" json:"cache_provider" toml:"cache_provider" validate:"oneof=memory ristretto"`
	CacheStale    time.Duration `yaml:"cache_stale" json:"cache_stale" toml:"cache_stale" validate:"gte=0"`
	CacheMaxCost  int64         `yaml:"cache_max_cost" json:"cache_max_cost" toml:"cache_max_cost" validate:"gte=0"`

	// Engine tuning; zero keeps the environment default
	DefaultDepth      int           `yaml:"default_depth" json:"default_depth" toml:"default_depth" validate:"gte=0,lte=3"`
	SearchDebounce    time.Duration `yaml:"search_debounce" json:"search_debounce" toml:"search_debounce" validate:"gte=0"`
	RecenterDelay     time.Duration `yaml:"recenter_delay" json:"recenter_delay" toml:"recenter_delay" validate:"gte=0"`
	ThumbnailCapacity int           `yaml:"thumbnail_capacity" json:"thumbnail_capacity" toml:"thumbnail_capacity" validate:"gte=0"`

	// Layout presets file, hot reloaded when set
	PresetsFile string `yaml:"presets_file" json:"presets_file" toml:"presets_file"`

	// Preferences
	PreferencesBackend string `yaml:"preferences_backend" json:"preferences_backend" toml:"preferences_backend" validate:"oneof=none file badger"`
	PreferencesPath    string `yaml:"preferences_path" json:"preferences_path" toml:"preferences_path" validate:"required_unless=PreferencesBackend none"`

	// Renders allowed per client per minute on the preview server, 0 disables
	RenderRateLimit int `yaml:"render_rate_limit" json:"render_rate_limit" toml:"render_rate_limit" validate:"gte=0"`

	// Logging
	LogLevel string `yaml:"log_level" json:"log_level" toml:"log_level" validate:"oneof=debug info warn error"`

	// Feature flags
	EnableMetrics  bool     `yaml:"enable_metrics" json:"enable_metrics" toml:"enable_metrics"`
	EnableTracing  bool     `yaml:"enable_tracing" json:"enable_tracing" toml:"enable_tracing"`
	EnableCORS     bool     `yaml:"enable_cors" json:"enable_cors" toml:"enable_cors"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins" toml:"allowed_origins"`
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		ServerAddress:      ":8080",
		Environment:        "development",
		BackendURL:         "http://localhost:8000/api",
		BackendTimeout:     30 * time.Second,
		BreakerThreshold:   0.8,
		BreakerMinReqs:     5,
		BreakerOpenFor:     60 * time.Second,
		CacheProvider:      "memory",
		CacheStale:         30 * time.Second,
		CacheMaxCost:       1 << 26,
		PreferencesBackend: "file",
		PreferencesPath:    "braingraph-preferences.yaml",
		RenderRateLimit:    60,
		LogLevel:           "info",
		EnableMetrics:      true,
		EnableCORS:         true,
		AllowedOrigins:     []string{"*"},
	}
}

// LoadConfig loads configuration from environment variables. CONFIG_FILE,
// when set, is read first and environment variables override it.
func LoadConfig() (*Config, error) {
	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := NewLoader().LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is an alias for LoadConfig for backwards compatibility
func Load() (*Config, error) {
	return LoadConfig()
}

func applyEnv(cfg *Config) {
	cfg.ServerAddress = getEnv("SERVER_ADDRESS", cfg.ServerAddress)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)

	cfg.BackendURL = getEnv("BACKEND_URL", cfg.BackendURL)
	cfg.BackendTimeout = getEnvDuration("BACKEND_TIMEOUT", cfg.BackendTimeout)
	cfg.BreakerThreshold = getEnvFloat("BREAKER_THRESHOLD", cfg.BreakerThreshold)
	cfg.BreakerMinReqs = uint32(getEnvInt("BREAKER_MIN_REQUESTS", int(cfg.BreakerMinReqs)))
	cfg.BreakerOpenFor = getEnvDuration("BREAKER_OPEN_FOR", cfg.BreakerOpenFor)

	cfg.CacheProvider = getEnv("CACHE_PROVIDER", cfg.CacheProvider)
	cfg.CacheStale = getEnvDuration("CACHE_STALE", cfg.CacheStale)
	cfg.CacheMaxCost = int64(getEnvInt("CACHE_MAX_COST", int(cfg.CacheMaxCost)))

	cfg.DefaultDepth = getEnvInt("DEFAULT_DEPTH", cfg.DefaultDepth)
	cfg.SearchDebounce = getEnvDuration("SEARCH_DEBOUNCE", cfg.SearchDebounce)
	cfg.RecenterDelay = getEnvDuration("RECENTER_DELAY", cfg.RecenterDelay)
	cfg.ThumbnailCapacity = getEnvInt("THUMBNAIL_CAPACITY", cfg.ThumbnailCapacity)

	cfg.PresetsFile = getEnv("PRESETS_FILE", cfg.PresetsFile)
	cfg.PreferencesBackend = getEnv("PREFERENCES_BACKEND", cfg.PreferencesBackend)
	cfg.PreferencesPath = getEnv("PREFERENCES_PATH", cfg.PreferencesPath)

	cfg.RenderRateLimit = getEnvInt("RENDER_RATE_LIMIT", cfg.RenderRateLimit)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.EnableMetrics = getEnvBool("ENABLE_METRICS", cfg.EnableMetrics)
	cfg.EnableTracing = getEnvBool("ENABLE_TRACING", cfg.EnableTracing)
	cfg.EnableCORS = getEnvBool("ENABLE_CORS", cfg.EnableCORS)
	if origins := getEnv("ALLOWED_ORIGINS", ""); origins != "" {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DomainConfig returns the engine configuration for the environment with the
// tuning overrides applied
func (c *Config) DomainConfig() *domainconfig.DomainConfig {
	d := domainconfig.LoadDomainConfig(c.Environment)
	if c.DefaultDepth > 0 {
		d.DefaultDepth = c.DefaultDepth
	}
	if c.SearchDebounce > 0 {
		d.SearchDebounce = c.SearchDebounce
	}
	if c.RecenterDelay > 0 {
		d.RecenterDelay = c.RecenterDelay
	}
	if c.ThumbnailCapacity > 0 {
		d.ThumbnailCapacity = c.ThumbnailCapacity
	}
	return d
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
