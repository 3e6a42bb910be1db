// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq scheduler and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// WorkdayConfig provides the technician workday window used by the
// calendar slot model and availability checks. Hours are local whole
// hours, the slot width is fixed.
type WorkdayConfig interface {
	GetWorkStartHour() int
	GetWorkEndHour() int
	GetLunchStartHour() int
	GetLunchEndHour() int
	GetSlotMinutes() int
}

// GeocodeConfig provides settings for the best-effort geocoding client.
type GeocodeConfig interface {
	GetGeocodeBaseURL() string
	GetGeocodeBatchSize() int
	GetGeocodeBatchPause() time.Duration
	IsGeocodeEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env      string
	HTTPAddr string

	DatabaseURL string

	JWTAccessSecret string

	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool

	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int

	WorkStartHour  int
	WorkEndHour    int
	LunchStartHour int
	LunchEndHour   int
	SlotMinutes    int

	GeocodeBaseURL    string
	GeocodeBatchSize  int
	GeocodeBatchPause time.Duration
}

// Load reads configuration from environment variables, with a best-effort
// .env load for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTAccessSecret: os.Getenv("JWT_ACCESS_SECRET"),

		CORSAllowAll:   getEnvBool("CORS_ALLOW_ALL", false),
		CORSOrigins:    splitCSV(getEnv("CORS_ORIGINS", "")),
		CORSAllowCreds: getEnvBool("CORS_ALLOW_CREDENTIALS", true),

		RedisURL:         os.Getenv("REDIS_URL"),
		RedisTLSInsecure: getEnvBool("REDIS_TLS_INSECURE", false),
		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency: getEnvInt("ASYNQ_CONCURRENCY", 10),

		WorkStartHour:  getEnvInt("WORK_START_HOUR", 8),
		WorkEndHour:    getEnvInt("WORK_END_HOUR", 18),
		LunchStartHour: getEnvInt("LUNCH_START_HOUR", 12),
		LunchEndHour:   getEnvInt("LUNCH_END_HOUR", 13),
		SlotMinutes:    getEnvInt("SLOT_MINUTES", 60),

		GeocodeBaseURL:    os.Getenv("GEOCODE_BASE_URL"),
		GeocodeBatchSize:  getEnvInt("GEOCODE_BATCH_SIZE", 5),
		GeocodeBatchPause: getEnvDuration("GEOCODE_BATCH_PAUSE", 2*time.Second),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.WorkEndHour <= cfg.WorkStartHour {
		return nil, fmt.Errorf("WORK_END_HOUR must be after WORK_START_HOUR")
	}

	return cfg, nil
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

func (c *Config) GetRedisURL() string      { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

func (c *Config) GetWorkStartHour() int  { return c.WorkStartHour }
func (c *Config) GetWorkEndHour() int    { return c.WorkEndHour }
func (c *Config) GetLunchStartHour() int { return c.LunchStartHour }
func (c *Config) GetLunchEndHour() int   { return c.LunchEndHour }
func (c *Config) GetSlotMinutes() int    { return c.SlotMinutes }

func (c *Config) GetGeocodeBaseURL() string          { return c.GeocodeBaseURL }
func (c *Config) GetGeocodeBatchSize() int           { return c.GeocodeBatchSize }
func (c *Config) GetGeocodeBatchPause() time.Duration { return c.GeocodeBatchPause }
func (c *Config) IsGeocodeEnabled() bool             { return c.GeocodeBaseURL != "" }

// =============================================================================
// Helpers
// =============================================================================

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
