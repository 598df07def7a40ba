// Package config reads service configuration from the process
// environment. Every knob has a default that works for a local
// development checkout; production deployments are expected to set
// DATABASE_URL and FILESTORE_API_KEY explicitly.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment names the deployment tier.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config is the full service configuration.
type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	FileStore     FileStoreConfig
	Observability ObservabilityConfig
}

// AppConfig covers identity and lifecycle settings.
type AppConfig struct {
	Name            string
	Environment     Environment
	Debug           bool
	Version         string
	ShutdownTimeout time.Duration
}

// HTTPConfig covers the public API server.
type HTTPConfig struct {
	Host               string
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	EnableCORS         bool
	AllowedOrigins     []string
	RateLimitPerMinute int
}

// DatabaseConfig covers the PostgreSQL store. When DATABASE_URL is
// unset, a DSN is assembled from the DB_* variables if DB_HOST and
// DB_USER are both present.
type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	QueryTimeout    time.Duration
	MigrateOnStart  bool
}

// RedisConfig covers the cache. Setting REDIS_DISABLED=true skips the
// cache entirely; reads then go straight to the store.
type RedisConfig struct {
	URL          string
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Disabled     bool
}

// FileStoreConfig covers the external document storage service.
type FileStoreConfig struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	MaxFileSize    int64
}

// ObservabilityConfig covers logging and metrics.
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string
	MetricsEnabled bool
}

// Load reads and validates the configuration.
func Load() (*Config, error) {
	env := Environment(stringVar("APP_ENV", "development"))

	cfg := &Config{
		App: AppConfig{
			Name:            stringVar("APP_NAME", "admissions-hub"),
			Environment:     env,
			Debug:           env == EnvDevelopment || boolVar("APP_DEBUG", false),
			Version:         stringVar("APP_VERSION", "0.1.0"),
			ShutdownTimeout: durationVar("APP_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		HTTP: HTTPConfig{
			Host:               stringVar("HTTP_HOST", "0.0.0.0"),
			Port:               intVar("HTTP_PORT", 8080),
			ReadTimeout:        durationVar("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:       durationVar("HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:        durationVar("HTTP_IDLE_TIMEOUT", 60*time.Second),
			EnableCORS:         boolVar("HTTP_ENABLE_CORS", true),
			AllowedOrigins:     listVar("HTTP_ALLOWED_ORIGINS"),
			RateLimitPerMinute: intVar("HTTP_RATE_LIMIT_PER_MINUTE", 120),
		},
		Database: DatabaseConfig{
			URL:             databaseURL(),
			MaxConns:        intVar("DB_MAX_CONNS", 25),
			MinConns:        intVar("DB_MIN_CONNS", 5),
			ConnMaxLifetime: durationVar("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: durationVar("DB_CONN_MAX_IDLE_TIME", time.Minute),
			QueryTimeout:    durationVar("DB_QUERY_TIMEOUT", 30*time.Second),
			MigrateOnStart:  boolVar("DB_MIGRATE_ON_START", true),
		},
		Redis: RedisConfig{
			URL:          stringVar("REDIS_URL", ""),
			Host:         stringVar("REDIS_HOST", "localhost"),
			Port:         intVar("REDIS_PORT", 6379),
			Password:     stringVar("REDIS_PASSWORD", ""),
			DB:           intVar("REDIS_DB", 0),
			PoolSize:     intVar("REDIS_POOL_SIZE", 10),
			MinIdleConns: intVar("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationVar("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationVar("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationVar("REDIS_WRITE_TIMEOUT", 3*time.Second),
			Disabled:     boolVar("REDIS_DISABLED", false),
		},
		FileStore: FileStoreConfig{
			BaseURL:        stringVar("FILESTORE_BASE_URL", "http://localhost:9000"),
			APIKey:         stringVar("FILESTORE_API_KEY", ""),
			RequestTimeout: durationVar("FILESTORE_REQUEST_TIMEOUT", 30*time.Second),
			MaxFileSize:    int64Var("FILESTORE_MAX_FILE_SIZE", 10<<20),
		},
		Observability: ObservabilityConfig{
			LogLevel:       stringVar("LOG_LEVEL", "info"),
			LogFormat:      stringVar("LOG_FORMAT", "json"),
			MetricsEnabled: boolVar("METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}

	host := os.Getenv("DB_HOST")
	user := os.Getenv("DB_USER")
	if host == "" || user == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user,
		os.Getenv("DB_PASSWORD"),
		host,
		stringVar("DB_PORT", "5432"),
		stringVar("DB_NAME", "admissions"),
		stringVar("DB_SSLMODE", "require"),
	)
}

// Validate reports every problem at once rather than the first one.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, errors.New("HTTP_PORT must be between 1 and 65535"))
	}
	if c.FileStore.MaxFileSize <= 0 {
		errs = append(errs, errors.New("FILESTORE_MAX_FILE_SIZE must be positive"))
	}

	// Only production refuses to start without its backing services, so
	// a fresh checkout still runs.
	if c.App.Environment == EnvProduction {
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required in production"))
		}
		if c.FileStore.APIKey == "" {
			errs = append(errs, errors.New("FILESTORE_API_KEY is required in production"))
		}
	}

	return errors.Join(errs...)
}

// IsDevelopment reports whether the service runs in development.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

func stringVar(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func boolVar(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func intVar(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func int64Var(key string, fallback int64) int64 {
	n, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func durationVar(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return d
}

func listVar(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
