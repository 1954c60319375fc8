// Package config centralizes all application configuration into typed structs.
//
// Go Learning Note — Configuration Management:
// Defaults live in NewDefaultConfig as plain struct literals. Load layers an
// optional .env file (via github.com/joho/godotenv) and the process
// environment on top of them, so local runs and containers share one code
// path. Typed structs instead of raw strings give compile-time safety.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends accepted in StoreConfig.Backend.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the top-level configuration container.
type Config struct {
	Server ServerConfig
	Geo    GeoConfig
	Store  StoreConfig
	Redis  RedisConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// GeoConfig controls the marker index. IndexPrecision 6 gives cells of
// roughly 810 m. SearchRadiusKm is used when a nearby query gives no radius.
type GeoConfig struct {
	IndexPrecision int
	SearchRadiusKm float64
}

// StoreConfig selects where markers are persisted.
type StoreConfig struct {
	Backend string
}

// RedisConfig is used when Store.Backend is "redis".
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LogConfig controls the slog handler: Level is debug/info/warn/error, Format
// is text or json.
type LogConfig struct {
	Level  string
	Format string
}

// NewDefaultConfig returns a Config populated with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Geo: GeoConfig{
			IndexPrecision: 6,
			SearchRadiusKm: 0.5,
		},
		Store: StoreConfig{
			Backend: BackendMemory,
		},
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load returns the defaults overridden by a .env file (if present) and the
// environment. A malformed value keeps its default and is reported in the
// returned error, together with any other malformed value; the Config is
// usable either way.
func Load(envFiles ...string) (*Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load(envFiles...)

	cfg := NewDefaultConfig()
	var errs []error

	if v := os.Getenv("PORT"); v != "" {
		if !strings.HasPrefix(v, ":") {
			v = ":" + v
		}
		cfg.Server.Port = v
	}
	errs = append(errs,
		envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout),
		envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout),
		envInt("GEO_INDEX_PRECISION", &cfg.Geo.IndexPrecision),
		envFloat("GEO_SEARCH_RADIUS_KM", &cfg.Geo.SearchRadiusKm),
		envInt("REDIS_DB", &cfg.Redis.DB),
	)

	if v := os.Getenv("STORE_BACKEND"); v != "" {
		switch b := strings.ToLower(v); b {
		case BackendMemory, BackendRedis:
			cfg.Store.Backend = b
		default:
			errs = append(errs, fmt.Errorf("STORE_BACKEND: unknown backend %q", v))
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}

	if cfg.Geo.IndexPrecision < 1 {
		errs = append(errs, fmt.Errorf("GEO_INDEX_PRECISION: must be at least 1, got %d", cfg.Geo.IndexPrecision))
		cfg.Geo.IndexPrecision = NewDefaultConfig().Geo.IndexPrecision
	}

	return cfg, errors.Join(errs...)
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envFloat(key string, dst *float64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
