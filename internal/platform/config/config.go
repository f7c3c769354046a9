package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"alyra/pkg/platform/sqlutil"
	"alyra/pkg/platform/strings"
)

// StoreBackend selects where ballot snapshots live.
type StoreBackend string

const (
	StoreMemory StoreBackend = "memory"
	StoreSQL    StoreBackend = "sql"
	StoreRedis  StoreBackend = "redis"
)

const devSigningKey = "dev-secret-key-change-in-production"

// Server captures process level configuration.
type Server struct {
	Addr      string
	LogLevel  string
	LogFormat string

	JWT      JWTConfig
	Store    StoreBackend
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Outbox   OutboxConfig
	Limits   RateLimitConfig

	// AdminTokenHash is a bcrypt hash guarding operator routes.
	AdminTokenHash string

	// SeedAdmin, when set, creates one ballot at startup owned by this identity.
	SeedAdmin  string
	SeedVoters []string
}

type JWTConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
	TTL        time.Duration
}

type DatabaseConfig struct {
	Type sqlutil.Dialect
	URL  string
}

// RedisConfig holds connection and pool settings.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig is shared by the server producer and the audit sink consumer.
type KafkaConfig struct {
	Brokers       []string
	AuditTopic    string
	ConsumerGroup string
}

// RateLimitConfig bounds requests per caller on the ballot API.
// Zero Requests disables limiting.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
}

// FromEnv builds a Server config from environment variables, loading a
// .env file first when one exists.
func FromEnv() (Server, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Server{}, fmt.Errorf("load .env: %w", err)
	}

	var errs []error
	cfg := Server{
		Addr:      getEnv("ALYRA_ADDR", ":8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		JWT: JWTConfig{
			SigningKey: getEnv("JWT_SIGNING_KEY", devSigningKey),
			Issuer:     getEnv("JWT_ISSUER", "alyra"),
			Audience:   getEnv("JWT_AUDIENCE", "alyra-voting"),
			TTL:        getDuration("JWT_TTL", time.Hour, &errs),
		},
		Store: StoreBackend(getEnv("STORE_BACKEND", string(StoreMemory))),
		Database: DatabaseConfig{
			Type: sqlutil.Dialect(getEnv("DATABASE_TYPE", string(sqlutil.Postgres))),
			URL:  os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10, &errs),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2, &errs),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second, &errs),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second, &errs),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second, &errs),
		},
		Kafka: KafkaConfig{
			Brokers:       strings.SplitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic:    getEnv("KAFKA_AUDIT_TOPIC", "alyra.voting.events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "alyra-audit-sink"),
		},
		Outbox: OutboxConfig{
			PollInterval: getDuration("OUTBOX_POLL_INTERVAL", time.Second, &errs),
			BatchSize:    getInt("OUTBOX_BATCH_SIZE", 100, &errs),
		},
		Limits: RateLimitConfig{
			Requests: getInt("RATE_LIMIT_REQUESTS", 120, &errs),
			Window:   getDuration("RATE_LIMIT_WINDOW", time.Minute, &errs),
		},
		AdminTokenHash: os.Getenv("ADMIN_TOKEN_HASH"),
		SeedAdmin:      os.Getenv("SEED_ADMIN"),
		SeedVoters:     strings.SplitListLower(os.Getenv("SEED_VOTERS")),
	}

	errs = append(errs, cfg.validate()...)
	return cfg, errors.Join(errs...)
}

// UsesDevSigningKey reports whether the built-in development key is in use.
func (c Server) UsesDevSigningKey() bool {
	return c.JWT.SigningKey == devSigningKey
}

func (c Server) validate() []error {
	var errs []error
	switch c.Store {
	case StoreMemory:
	case StoreSQL:
		if c.Database.Type != sqlutil.Postgres && c.Database.Type != sqlutil.SQLite {
			errs = append(errs, fmt.Errorf("DATABASE_TYPE must be postgres or sqlite, got %q", c.Database.Type))
		}
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORE_BACKEND=sql"))
		}
	case StoreRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when STORE_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be memory, sql or redis, got %q", c.Store))
	}
	if c.Outbox.BatchSize <= 0 {
		errs = append(errs, errors.New("OUTBOX_BATCH_SIZE must be positive"))
	}
	if c.Outbox.PollInterval <= 0 {
		errs = append(errs, errors.New("OUTBOX_POLL_INTERVAL must be positive"))
	}
	if c.Limits.Requests < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS cannot be negative"))
	}
	if c.Limits.Requests > 0 && c.Limits.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if len(c.SeedVoters) > 0 && c.SeedAdmin == "" {
		errs = append(errs, errors.New("SEED_VOTERS requires SEED_ADMIN"))
	}
	return errs
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int, errs *[]error) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}
