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
	Database   DatabaseConfig
	Redis      RedisConfig
	Server     ServerConfig
	Board      BoardConfig
	Moderation ModerationConfig
	Quota      QuotaConfig
	Reaper     ReaperConfig
	Logging    LoggingConfig
	Telemetry  TelemetryConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL     string
	Enabled bool
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
	Host string
}

// BoardConfig holds confession board behavior configuration
type BoardConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	ExpiryDays      int
	MaxTags         int
}

// ModerationConfig holds moderation configuration
type ModerationConfig struct {
	AutoApproveConfessions bool
	AutoApproveComments    bool
}

// QuotaConfig holds rate limiting configuration (events per minute, per key)
type QuotaConfig struct {
	Enabled           bool
	VotesPerMinute    int
	CommentsPerMinute int
	PostsPerMinute    int
	Burst             int
}

// ReaperConfig holds background maintenance worker configuration
type ReaperConfig struct {
	IntervalSeconds int
	RepairBatch     int
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

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	// Load from environment
	viper.SetEnvPrefix("LIMBO")
	viper.AutomaticEnv()

	// Load from config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.limbo")
	viper.AddConfigPath("/etc/limbo")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found; this is OK if we have env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			URL: getString("database_url", "sqlite://limbo.db"),
		},
		Redis: RedisConfig{
			URL:     getString("redis_url", ""),
			Enabled: getString("redis_url", "") != "",
		},
		Server: ServerConfig{
			Port: getInt("http_server_port", 8080),
			Host: getString("http_server_host", "0.0.0.0"),
		},
		Board: BoardConfig{
			DefaultPageSize: getInt("default_page_size", 20),
			MaxPageSize:     getInt("max_page_size", 100),
			ExpiryDays:      getInt("expiry_days", 30),
			MaxTags:         getInt("max_tags", 5),
		},
		Moderation: ModerationConfig{
			AutoApproveConfessions: getBool("auto_approve_confessions", false),
			AutoApproveComments:    getBool("auto_approve_comments", true),
		},
		Quota: QuotaConfig{
			Enabled:           getBool("quota_enabled", true),
			VotesPerMinute:    getInt("quota_votes_per_minute", 30),
			CommentsPerMinute: getInt("quota_comments_per_minute", 10),
			PostsPerMinute:    getInt("quota_posts_per_minute", 5),
			Burst:             getInt("quota_burst", 5),
		},
		Reaper: ReaperConfig{
			IntervalSeconds: getInt("reaper_interval", 300),
			RepairBatch:     getInt("reaper_repair_batch", 200),
		},
		Logging: LoggingConfig{
			Level:  getString("log_level", "INFO"),
			Format: getString("log_format", "json"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           getBool("telemetry_enabled", true),
			JaegerURL:         getString("jaeger_url", "http://localhost:14268/api/traces"),
			PrometheusEnabled: getBool("prometheus_enabled", true),
			PrometheusPort:    getInt("prometheus_port", 9090),
			ServiceName:       getString("service_name", "limbo"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("database_url", "sqlite://limbo.db")
	viper.SetDefault("http_server_port", 8080)
	viper.SetDefault("http_server_host", "0.0.0.0")
	viper.SetDefault("log_level", "INFO")
	viper.SetDefault("log_format", "json")
	viper.SetDefault("default_page_size", 20)
	viper.SetDefault("max_page_size", 100)
	viper.SetDefault("expiry_days", 30)
	viper.SetDefault("max_tags", 5)
	viper.SetDefault("auto_approve_confessions", false)
	viper.SetDefault("auto_approve_comments", true)
	viper.SetDefault("quota_enabled", true)
	viper.SetDefault("quota_votes_per_minute", 30)
	viper.SetDefault("quota_comments_per_minute", 10)
	viper.SetDefault("quota_posts_per_minute", 5)
	viper.SetDefault("quota_burst", 5)
	viper.SetDefault("reaper_interval", 300)
	viper.SetDefault("reaper_repair_batch", 200)
	viper.SetDefault("telemetry_enabled", true)
	viper.SetDefault("prometheus_enabled", true)
	viper.SetDefault("prometheus_port", 9090)
	viper.SetDefault("service_name", "limbo")
}

func getString(key, defaultValue string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	// Also check environment variable directly
	if val := os.Getenv("LIMBO_" + toEnvKey(key)); val != "" {
		return val
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	if val := os.Getenv("LIMBO_" + toEnvKey(key)); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	if val := os.Getenv("LIMBO_" + toEnvKey(key)); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultValue
}

func toEnvKey(key string) string {
	// Convert snake_case to UPPER_SNAKE_CASE
	result := ""
	for i, r := range key {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result += "_"
		}
		if r == '-' || r == '_' {
			result += "_"
		} else {
			result += string(r)
		}
	}
	return result
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database_url is required")
	}
	if c.Board.MaxPageSize <= 0 || c.Board.MaxPageSize > 500 {
		return fmt.Errorf("max_page_size must be between 1 and 500")
	}
	if c.Board.DefaultPageSize <= 0 || c.Board.DefaultPageSize > c.Board.MaxPageSize {
		return fmt.Errorf("default_page_size must be between 1 and max_page_size")
	}
	if c.Board.ExpiryDays < 0 {
		return fmt.Errorf("expiry_days must not be negative")
	}
	if c.Board.MaxTags <= 0 || c.Board.MaxTags > 20 {
		return fmt.Errorf("max_tags must be between 1 and 20")
	}
	if c.Reaper.IntervalSeconds <= 0 {
		return fmt.Errorf("reaper_interval must be positive")
	}
	return nil
}

// GetDuration returns a duration from config key, with default
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	if viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	return defaultValue
}
