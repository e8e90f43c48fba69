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

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Storage      StorageConfig
	Postgres     PostgresConfig
	SQLite       SQLiteConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Ticket       TicketConfig
	Seed         SeedConfig
	Notification NotificationConfig
}

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
	// ConnectAttempts bounds the startup ping retries.
	ConnectAttempts int
}

// SQLiteConfig holds the embedded database settings.
type SQLiteConfig struct {
	Path          string
	BusyTimeoutMS int
	RunMigrations bool
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	Stream    string
	StreamLen int64
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Format      string
	Development bool
	Service     string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// TicketConfig controls ticket numbering.
type TicketConfig struct {
	NumberPrefix string
}

// SeedConfig controls the startup bootstrap.
type SeedConfig struct {
	AdminUsername string
	AdminPassword string
	// File optionally points at a YAML file with extra roles and employees.
	File string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from the environment and an optional .env file.
// Malformed numeric or boolean values are reported rather than silently replaced.
func Load() (*Config, error) {
	_ = godotenv.Load()
	env := &envReader{}

	cfg := &Config{
		App: AppConfig{
			Name:                  env.get("APP_NAME", "helpdesk"),
			Env:                   env.get("APP_ENV", "development"),
			Host:                  env.get("APP_HOST", "0.0.0.0"),
			Port:                  env.get("APP_PORT", "8080"),
			Version:               env.get("APP_VERSION", "dev"),
			RequestTimeoutSeconds: env.getInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(env.get("STORAGE_DRIVER", DriverPostgres)),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			MaxConns:        int32(env.getInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:        int32(env.getInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:   env.getBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec:  int32(env.getInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec:  int32(env.getInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
			ConnectAttempts: env.getInt("POSTGRES_CONNECT_ATTEMPTS", 5),
		},
		SQLite: SQLiteConfig{
			Path:          env.get("SQLITE_PATH", "helpdesk.db"),
			BusyTimeoutMS: env.getInt("SQLITE_BUSY_TIMEOUT_MS", 5000),
			RunMigrations: env.getBool("SQLITE_RUN_MIGRATIONS", true),
		},
		Redis: RedisConfig{
			Addr:      os.Getenv("REDIS_ADDR"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        env.getInt("REDIS_DB", 0),
			Stream:    env.get("REDIS_EVENT_STREAM", "helpdesk:events"),
			StreamLen: int64(env.getInt("REDIS_EVENT_STREAM_MAXLEN", 10000)),
		},
		Logger: LoggerConfig{
			Level:       env.get("LOG_LEVEL", "info"),
			Format:      env.get("LOG_FORMAT", "json"),
			Development: env.getBool("LOG_DEVELOPMENT", false),
		},
		Auth: AuthConfig{
			JWTSecret:             env.get("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: env.getInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            env.getInt("AUTH_BCRYPT_COST", 12),
		},
		Ticket: TicketConfig{
			NumberPrefix: env.get("TICKET_NUMBER_PREFIX", "TCK-"),
		},
		Seed: SeedConfig{
			AdminUsername: env.get("SEED_ADMIN_USERNAME", "admin"),
			AdminPassword: env.get("SEED_ADMIN_PASSWORD", "password"),
			File:          os.Getenv("SEED_FILE"),
		},
		Notification: NotificationConfig{
			EmailFrom:  env.get("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
	}
	if err := env.err(); err != nil {
		return nil, err
	}

	cfg.Logger.Service = cfg.App.Name

	switch cfg.Storage.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q", cfg.Storage.Driver)
	}
	if cfg.Storage.Driver == DriverPostgres && cfg.Postgres.DSN == "" {
		return nil, errors.New("POSTGRES_DSN is required for the postgres storage driver")
	}
	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// envReader reads typed variables and collects every parse failure.
type envReader struct {
	errs []error
}

func (r *envReader) get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func (r *envReader) getInt(key string, fallback int) int {
	val := r.get(key, "")
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s %q: expected an integer", key, val))
		return fallback
	}
	return parsed
}

func (r *envReader) getBool(key string, fallback bool) bool {
	val := r.get(key, "")
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s %q: expected a boolean", key, val))
		return fallback
	}
	return parsed
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}
