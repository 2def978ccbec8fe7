package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Cache backends selectable with CACHE_BACKEND.
const (
	CacheBackendPostgres = "postgres"
	CacheBackendRedis    = "redis"
	CacheBackendMemory   = "memory"
	CacheBackendNone     = "none"
)

const (
	DefaultSearchURL   = "https://api.perplexity.ai/chat/completions"
	DefaultSearchModel = "sonar"
	DefaultCacheTTL    = 24 * time.Hour
)

// Config is the full runtime configuration, read from the environment.
type Config struct {
	AppEnv string

	SearchAPIKey  string
	SearchURL     string
	SearchModel   string
	SearchTimeout time.Duration

	CacheBackend string
	CacheTTL     time.Duration

	DB    DBConfig
	Redis RedisConfig

	LogLevel  string
	LogFormat string
	HTTPAddr  string
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Configured reports whether enough settings exist to attempt a connection.
func (c DBConfig) Configured() bool {
	return c.Host != "" && c.Name != ""
}

// DSN renders the lib/pq connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Load reads the configuration from environment variables, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:       getenv("APP_ENV", "development"),
		SearchAPIKey: os.Getenv("SEARCH_API_KEY"),
		SearchURL:    getenv("SEARCH_API_URL", DefaultSearchURL),
		SearchModel:  getenv("SEARCH_MODEL", DefaultSearchModel),
		DB: DBConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     getenv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  getenv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			Prefix:   getenv("REDIS_PREFIX", "scanner:"),
		},
		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),
		HTTPAddr:  getenv("HTTP_ADDR", ":8080"),
	}

	var err error
	if cfg.SearchTimeout, err = durationEnv("SEARCH_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = durationEnv("CACHE_TTL", DefaultCacheTTL); err != nil {
		return nil, err
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if cfg.Redis.DB, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
	}

	cfg.CacheBackend = os.Getenv("CACHE_BACKEND")
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = CacheBackendNone
		if cfg.DB.Configured() {
			cfg.CacheBackend = CacheBackendPostgres
		}
	}
	switch cfg.CacheBackend {
	case CacheBackendPostgres, CacheBackendRedis, CacheBackendMemory, CacheBackendNone:
	default:
		return nil, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.CacheBackend)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
