package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	API       APIConfig
	Storage   StorageConfig
	Feed      FeedConfig
	Server    ServerConfig
	Logging   LoggingConfig
	Telemetry TelemetryConfig
}

// APIConfig holds remote BookVerse API configuration
type APIConfig struct {
	URL           string
	Token         string
	Timeout       time.Duration
	RatePerSecond float64
	PageSize      int
}

// StorageConfig selects the local key/value store backing the client cache
type StorageConfig struct {
	Backend     string // memory, redis, badger or postgres
	RedisURL    string
	BadgerPath  string
	DatabaseURL string
}

// FeedConfig holds feed and search behaviour
type FeedConfig struct {
	CurrentUser    string
	SearchDebounce time.Duration
	SyncInterval   time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
	Host string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Enabled           bool
	JaegerURL         string
	PrometheusEnabled bool
	PrometheusPort    int
	ServiceName       string
}

// Storage backends
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
)

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	setDefaults()

	viper.SetEnvPrefix("BOOKVERSE")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.bookverse")
	viper.AddConfigPath("/etc/bookverse")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found; this is OK if we have env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		API: APIConfig{
			URL:           getString("api_url", "http://localhost:5000/api"),
			Token:         getString("api_token", ""),
			Timeout:       GetDuration("api_timeout", 15*time.Second),
			RatePerSecond: getFloat("api_rate_per_second", 20),
			PageSize:      getInt("page_size", 10),
		},
		Storage: StorageConfig{
			Backend:     getString("storage_backend", BackendMemory),
			RedisURL:    getString("redis_url", ""),
			BadgerPath:  getString("badger_path", "./data/bookverse"),
			DatabaseURL: getString("database_url", ""),
		},
		Feed: FeedConfig{
			CurrentUser:    getString("current_user", ""),
			SearchDebounce: GetDuration("search_debounce", 400*time.Millisecond),
			SyncInterval:   GetDuration("sync_interval", time.Minute),
		},
		Server: ServerConfig{
			Port: getInt("http_server_port", 8080),
			Host: getString("http_server_host", "0.0.0.0"),
		},
		Logging: LoggingConfig{
			Level:  getString("log_level", "INFO"),
			Format: getString("log_format", "json"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           getBool("telemetry_enabled", false),
			JaegerURL:         getString("jaeger_url", ""),
			PrometheusEnabled: getBool("prometheus_enabled", true),
			PrometheusPort:    getInt("prometheus_port", 9090),
			ServiceName:       getString("service_name", "bookverse"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("api_url", "http://localhost:5000/api")
	viper.SetDefault("api_timeout", "15s")
	viper.SetDefault("api_rate_per_second", 20)
	viper.SetDefault("page_size", 10)
	viper.SetDefault("storage_backend", BackendMemory)
	viper.SetDefault("badger_path", "./data/bookverse")
	viper.SetDefault("search_debounce", "400ms")
	viper.SetDefault("sync_interval", "1m")
	viper.SetDefault("http_server_port", 8080)
	viper.SetDefault("http_server_host", "0.0.0.0")
	viper.SetDefault("log_level", "INFO")
	viper.SetDefault("log_format", "json")
	viper.SetDefault("telemetry_enabled", false)
	viper.SetDefault("prometheus_enabled", true)
	viper.SetDefault("prometheus_port", 9090)
	viper.SetDefault("service_name", "bookverse")
}

func getString(key, defaultValue string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	if val := os.Getenv("BOOKVERSE_" + toEnvKey(key)); val != "" {
		return val
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	if val := os.Getenv("BOOKVERSE_" + toEnvKey(key)); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if viper.IsSet(key) {
		return viper.GetFloat64(key)
	}
	if val := os.Getenv("BOOKVERSE_" + toEnvKey(key)); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	if val := os.Getenv("BOOKVERSE_" + toEnvKey(key)); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultValue
}

// toEnvKey converts snake_case or kebab-case keys to UPPER_SNAKE_CASE
func toEnvKey(key string) string {
	result := make([]rune, 0, len(key))
	for _, r := range key {
		switch {
		case r == '-':
			result = append(result, '_')
		case r >= 'a' && r <= 'z':
			result = append(result, r-'a'+'A')
		default:
			result = append(result, r)
		}
	}
	return string(result)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.URL == "" {
		return fmt.Errorf("api_url is required")
	}
	if c.API.PageSize <= 0 || c.API.PageSize > 100 {
		return fmt.Errorf("page_size must be between 1 and 100")
	}
	if c.API.RatePerSecond < 0 {
		return fmt.Errorf("api_rate_per_second must not be negative")
	}
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("redis_url is required for the redis backend")
		}
	case BackendBadger:
		if c.Storage.BadgerPath == "" {
			return fmt.Errorf("badger_path is required for the badger backend")
		}
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("database_url is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage_backend %q", c.Storage.Backend)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("http_server_port must be between 1 and 65535")
	}
	return nil
}

// GetDuration returns a duration from config key, with default
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	if viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	if val := os.Getenv("BOOKVERSE_" + toEnvKey(key)); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultValue
}
