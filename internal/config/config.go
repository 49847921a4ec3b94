package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Ingestion limits
const (
	MaxDetailWorkers = 32
	MinBodyBytes     = 1 << 10
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Ingest   IngestConfig
	Redis    RedisConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host        string
	Port        string
	Name        string
	User        string
	Password    string
	PoolMin     int
	PoolMax     int
	AutoMigrate bool
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// IngestConfig controls the upload pipeline.
type IngestConfig struct {
	// DetailWorkers bounds how many nondh details are validated and stored concurrently.
	DetailWorkers int
	MaxBodyBytes  int64
	LockTTL       time.Duration
}

// RedisConfig holds the optional Redis connection used for upload locks.
// An empty URL disables Redis and falls back to in-process locks.
type RedisConfig struct {
	URL         string
	PoolSize    int
	DialTimeout time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("DB_HOST", "host.docker.internal")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "landrecords")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")
	v.SetDefault("INGEST_DETAIL_WORKERS", 1)
	v.SetDefault("INGEST_MAX_BODY_BYTES", 10<<20)
	v.SetDefault("UPLOAD_LOCK_TTL", "2m")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")

	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:     v.GetString("PORT"),
			Env:      v.GetString("ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			Name:        v.GetString("DB_NAME"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			PoolMin:     v.GetInt("DB_POOL_MIN"),
			PoolMax:     v.GetInt("DB_POOL_MAX"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Ingest: IngestConfig{
			DetailWorkers: v.GetInt("INGEST_DETAIL_WORKERS"),
			MaxBodyBytes:  v.GetInt64("INGEST_MAX_BODY_BYTES"),
			LockTTL:       v.GetDuration("UPLOAD_LOCK_TTL"),
		},
		Redis: RedisConfig{
			URL:         v.GetString("REDIS_URL"),
			PoolSize:    v.GetInt("REDIS_POOL_SIZE"),
			DialTimeout: v.GetDuration("REDIS_DIAL_TIMEOUT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	if c.Ingest.DetailWorkers < 1 || c.Ingest.DetailWorkers > MaxDetailWorkers {
		return fmt.Errorf("INGEST_DETAIL_WORKERS must be between 1 and %d", MaxDetailWorkers)
	}
	if c.Ingest.MaxBodyBytes < MinBodyBytes {
		return fmt.Errorf("INGEST_MAX_BODY_BYTES must be at least %d", MinBodyBytes)
	}
	if c.Ingest.LockTTL <= 0 {
		return fmt.Errorf("UPLOAD_LOCK_TTL must be positive")
	}

	if c.Redis.URL != "" && c.Redis.PoolSize < 1 {
		return fmt.Errorf("REDIS_POOL_SIZE must be at least 1")
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
