package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	DBDriver  string `env:"DB_DRIVER, default=mongo"`
	JWTSecret string `env:"JWT_SECRET"`

	Session  SessionConfig
	Mongo    MongoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Storage  StorageConfig
}

type SessionConfig struct {
	TTL          time.Duration `env:"SESSION_TTL,        default=24h"`
	CookieSecure bool          `env:"COOKIE_SECURE,      default=false"`
	MaxAttempts  int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	Window       time.Duration `env:"LOGIN_WINDOW,       default=15m"`
	// EmailHeuristic grants hr/super_admin on first login based on the email
	// address alone.
	EmailHeuristic bool `env:"PROVISION_EMAIL_HEURISTIC, default=true"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=hrportal"`
}

type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type StorageConfig struct {
	CloudinaryURL    string        `env:"CLOUDINARY_URL"`
	CloudinaryFolder string        `env:"CLOUDINARY_FOLDER, default=hrportal"`
	SignedURLTTL     time.Duration `env:"SIGNED_URL_TTL,    default=5m"`
	MaxResumeBytes   int64         `env:"MAX_RESUME_BYTES,  default=5242880"`
}

// Development reports whether the process runs with development defaults.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Load reads an optional .env file and then the environment.
func Load(ctx context.Context) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverMongo:
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		if !c.Development() {
			return errors.New("JWT_SECRET is required outside development")
		}
		c.JWTSecret = "dev-insecure-secret"
	}
	if c.Session.MaxAttempts <= 0 {
		return errors.New("LOGIN_MAX_ATTEMPTS must be positive")
	}
	return nil
}
