// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/carejournal/carejournal/internal/database"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// DevJWTSecret is used when JWT_SECRET is unset in development.
const DevJWTSecret = "local-dev-signing-key-change-in-production"

// Config is the complete service configuration.
type Config struct {
	Port        int
	Environment string
	RequireTLS  bool

	JWTSecret      string
	FirstUserToken string
	FrontendURL    string

	Storage  string
	Database database.Config

	Redis RedisConfig
	Push  PushConfig
	OTel  OTelConfig
}

// RedisConfig configures the login throttle.
type RedisConfig struct {
	Addr             string
	LoginMaxFailures int
	LoginLockout     time.Duration
}

// PushConfig configures push delivery.
type PushConfig struct {
	FirebaseCredentialsFile string
	GCPProjectID            string
	Topic                   string
	Subscription            string
}

// Async reports whether push messages go through Pub/Sub.
func (p PushConfig) Async() bool {
	return p.GCPProjectID != "" && p.Topic != ""
}

// OTelConfig configures OpenTelemetry.
type OTelConfig struct {
	Enabled  bool
	Endpoint string

	// SampleRatio is the fraction of new traces recorded. Traces continued
	// from an incoming traceparent follow the caller's decision.
	SampleRatio float64
}

// Load reads a .env file if present and builds the configuration from the
// environment. Defaults apply to unset keys.
func Load() (*Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Environment:    getEnv("APP_ENV", "development"),
		RequireTLS:     getEnv("REQUIRE_TLS", "false") == "true",
		JWTSecret:      os.Getenv("JWT_SECRET"),
		FirstUserToken: os.Getenv("FIRST_USER_TOKEN"),
		FrontendURL:    os.Getenv("FRONTEND_URL"),
		Storage:        strings.ToLower(getEnv("STORAGE", StoragePostgres)),
		Database: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "carejournal"),
			Password: getEnv("DB_PASSWORD", "localdev"),
			Database: getEnv("DB_NAME", "carejournal"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Addr: os.Getenv("REDIS_ADDR"),
		},
		Push: PushConfig{
			FirebaseCredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
			GCPProjectID:            os.Getenv("GCP_PROJECT_ID"),
			Topic:                   os.Getenv("PUSH_TOPIC"),
			Subscription:            os.Getenv("PUSH_SUBSCRIPTION"),
		},
		OTel: OTelConfig{
			Enabled:  getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		},
	}

	var err error
	if cfg.Port, err = getEnvAsInt("APP_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.Database.Port, err = getEnvAsInt("DB_PORT", 5432); err != nil {
		return nil, err
	}
	if cfg.Database.MaxOpenConns, err = getEnvAsInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		return nil, err
	}
	if cfg.Database.MaxIdleConns, err = getEnvAsInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return nil, err
	}
	if cfg.Database.ConnMaxLifetime, err = getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Redis.LoginMaxFailures, err = getEnvAsInt("LOGIN_MAX_FAILURES", 5); err != nil {
		return nil, err
	}
	if cfg.Redis.LoginLockout, err = getEnvAsDuration("LOGIN_LOCKOUT", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.OTel.SampleRatio, err = getEnvAsFloat("OTEL_TRACES_SAMPLER_ARG", 1); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.JWTSecret = DevJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// UsesDevSecret reports whether the development JWT secret is in use.
func (c *Config) UsesDevSecret() bool {
	return c.JWTSecret == DevJWTSecret
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if !c.IsDevelopment() && c.UsesDevSecret() {
		errs = append(errs, errors.New("JWT_SECRET must not be the development default"))
	}
	switch c.Storage {
	case StoragePostgres, StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, c.Storage))
	}
	if c.Storage == StoragePostgres && c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.OTel.SampleRatio < 0 || c.OTel.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("OTEL_TRACES_SAMPLER_ARG must be between 0 and 1, got %g", c.OTel.SampleRatio))
	}
	if c.Push.Topic != "" && c.Push.GCPProjectID == "" {
		errs = append(errs, errors.New("GCP_PROJECT_ID is required when PUSH_TOPIC is set"))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
