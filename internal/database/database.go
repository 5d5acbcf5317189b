// Package database manages the PostgreSQL connection pool.
package database

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds database connection configuration.
type Config struct {
	Host              string
	Port              int
	User              string
	Password          string
	Database          string
	SSLMode           string
	MaxConns          int
	MinConns          int
	ConnMaxLifetime   time.Duration
	HealthCheckPeriod time.Duration
}

// ConfigFromEnv builds a Config from DB_* environment variables, with
// local-development defaults.
func ConfigFromEnv() Config {
	return Config{
		Host:              envString("DB_HOST", "localhost"),
		Port:              envInt("DB_PORT", 5432),
		User:              envString("DB_USER", "commutewise"),
		Password:          envString("DB_PASSWORD", "localdev"),
		Database:          envString("DB_NAME", "commutewise"),
		SSLMode:           envString("DB_SSL_MODE", "disable"),
		MaxConns:          envInt("DB_MAX_CONNS", 10),
		MinConns:          envInt("DB_MIN_CONNS", 2),
		ConnMaxLifetime:   envDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		HealthCheckPeriod: envDuration("DB_HEALTH_CHECK_PERIOD", time.Minute),
	}
}

// ConnectionString returns the PostgreSQL connection URL. The password is
// escaped so generated secrets with URL metacharacters work.
func (c Config) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.Database,
		RawQuery: "sslmode=" + c.SSLMode + "&application_name=commutewise-api",
	}
	return u.String()
}

// Connect creates a connection pool and verifies it with a ping.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns) //nolint:gosec // pool sizes are small
	poolConfig.MinConns = int32(cfg.MinConns) //nolint:gosec // pool sizes are small
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
