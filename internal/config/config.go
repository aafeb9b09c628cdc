// Package config provides application configuration management using Viper.
// Configuration is loaded from YAML files and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	TMDB     TMDBConfig     `mapstructure:"tmdb"`
	MDBList  MDBListConfig  `mapstructure:"mdblist"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cleanup  CleanupConfig  `mapstructure:"cleanup"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name  string `mapstructure:"name"`
	Env   string `mapstructure:"env"` // development, staging, production
	Port  int    `mapstructure:"port"`
	Debug bool   `mapstructure:"debug"`
}

// TMDBConfig holds the upstream metadata provider settings.
type TMDBConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retry   RetryConfig   `mapstructure:"retry"`
	CB      CBConfig      `mapstructure:"circuit_breaker"`
}

// MDBListConfig holds the curated list provider settings.
type MDBListConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
	Lists   []string      `mapstructure:"lists"` // list ids to advertise
}

// RetryConfig holds retry settings.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// CatalogConfig holds catalog assembly settings.
type CatalogConfig struct {
	AgeRating   string        `mapstructure:"age_rating"` // G, PG, PG-13, R or empty
	WatchRegion string        `mapstructure:"watch_region"`
	EnrichBatch int           `mapstructure:"enrich_batch"`
	EnrichDelay time.Duration `mapstructure:"enrich_delay"`
}

// CacheConfig holds caching settings. Backend selects the driver:
// "memory", "redis", "postgres" or "none".
type CacheConfig struct {
	Backend    string        `mapstructure:"backend"`
	CatalogTTL time.Duration `mapstructure:"catalog_ttl"`
	GenreTTL   time.Duration `mapstructure:"genre_ttl"`
	KeyPrefix  string        `mapstructure:"key_prefix"`
	Table      string        `mapstructure:"table"` // postgres backend only
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Name         string        `mapstructure:"name"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	SSLMode      string        `mapstructure:"ssl_mode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig holds Redis connection settings, used by the redis cache
// backend and by distributed locking.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CleanupConfig holds the expired-entry sweep settings for the
// relational cache backend.
type CleanupConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Limit     int           `mapstructure:"limit"`
	OnStartup bool          `mapstructure:"on_startup"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, file path
}

// SentryConfig holds Sentry error tracking settings.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// Load reads configuration from file and environment variables.
// Priority: env vars > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found, continue with defaults + env vars
	}

	// Environment variable settings
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "catalog-metadata-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.debug", true)

	// Upstream metadata provider defaults
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.timeout", "30s")
	v.SetDefault("tmdb.retry.max_retries", 3)
	v.SetDefault("tmdb.retry.base_delay", "1s")
	v.SetDefault("tmdb.circuit_breaker.max_requests", 3)
	v.SetDefault("tmdb.circuit_breaker.interval", "60s")
	v.SetDefault("tmdb.circuit_breaker.timeout", "30s")
	v.SetDefault("tmdb.circuit_breaker.failure_ratio", 0.5)

	// List provider defaults
	v.SetDefault("mdblist.base_url", "https://api.mdblist.com")
	v.SetDefault("mdblist.api_key", "")
	v.SetDefault("mdblist.timeout", "30s")
	v.SetDefault("mdblist.lists", []string{})

	// Catalog defaults
	v.SetDefault("catalog.age_rating", "")
	v.SetDefault("catalog.watch_region", "US")
	v.SetDefault("catalog.enrich_batch", 5)
	v.SetDefault("catalog.enrich_delay", "200ms")

	// Cache defaults
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.catalog_ttl", "24h")
	v.SetDefault("cache.genre_ttl", "168h")
	v.SetDefault("cache.key_prefix", "catalog-metadata")
	v.SetDefault("cache.table", "catalog_cache")

	// Database defaults (postgres cache backend)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "catalog_metadata")
	v.SetDefault("database.user", "app")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_lifetime", "5m")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Cleanup defaults
	v.SetDefault("cleanup.interval", "1h")
	v.SetDefault("cleanup.timeout", "30s")
	v.SetDefault("cleanup.limit", 500)
	v.SetDefault("cleanup.on_startup", false)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")

	// Sentry defaults
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)
}
