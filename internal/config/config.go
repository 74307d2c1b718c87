package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aahaara-data (HTTP API) configuration.
// Precedence: environment > CONFIG_FILE (yaml) > built-in defaults. A .env file in the
// working directory is loaded into the environment first when present.
type Config struct {
	// Env "production" turns unsafe development defaults into load errors.
	Env  string `yaml:"env"`
	HTTP struct {
		Addr           string        `yaml:"addr"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		CORSOrigins    []string      `yaml:"cors_origins"`
	} `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Auth    AuthConfig    `yaml:"auth"`
	Mirror  MirrorConfig  `yaml:"mirror"`
	Storage StorageConfig `yaml:"storage"`
}

// DatabaseConfig canonical Postgres store.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int    `yaml:"max_conns"`
	MaxIdle  int    `yaml:"max_idle"`
}

func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// DefaultJWTSecret signs tokens when JWT_SECRET is unset. Development only.
const DefaultJWTSecret = "dev-secret-change-me"

// AuthConfig bearer token settings.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	Issuer    string        `yaml:"issuer"`
}

// UsesDefaultSecret reports whether tokens would be signed with a publicly known key.
func (a AuthConfig) UsesDefaultSecret() bool {
	return a.JWTSecret == "" || a.JWTSecret == DefaultJWTSecret
}

// MirrorConfig secondary document store (Supabase PostgREST).
type MirrorConfig struct {
	Enabled bool `yaml:"enabled"`
	// Backend "postgrest" talks to Supabase; "memory" keeps rows in process for local runs.
	Backend string        `yaml:"backend"`
	URL     string        `yaml:"url"`
	Key     string        `yaml:"key"`
	Timeout time.Duration `yaml:"timeout"`
	// Breaker opens after this many consecutive failures and stays open for BreakerCooldown.
	BreakerFailures uint32        `yaml:"breaker_failures"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
}

// StorageConfig object storage for patient attachments.
type StorageConfig struct {
	Backend  string `yaml:"backend"` // "supabase" | "s3" | "" (disabled)
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"` // optional S3-compatible endpoint
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Env = getEnv("APP_ENV", cfg.Env)
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.RequestTimeout = parseDuration(os.Getenv("HTTP_REQUEST_TIMEOUT"), cfg.HTTP.RequestTimeout)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}

	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = parseInt(os.Getenv("DB_PORT"), cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Database = getEnv("DB_NAME", cfg.Database.Database)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)
	cfg.Database.MaxConns = parseInt(os.Getenv("DB_MAX_CONNS"), cfg.Database.MaxConns)
	cfg.Database.MaxIdle = parseInt(os.Getenv("DB_MAX_IDLE"), cfg.Database.MaxIdle)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = parseInt(os.Getenv("REDIS_DB"), cfg.Redis.DB)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.TokenTTL = parseDuration(os.Getenv("TOKEN_TTL"), cfg.Auth.TokenTTL)
	cfg.Auth.Issuer = getEnv("JWT_ISSUER", cfg.Auth.Issuer)

	cfg.Mirror.Backend = getEnv("MIRROR_BACKEND", cfg.Mirror.Backend)
	cfg.Mirror.URL = getEnv("SUPABASE_URL", cfg.Mirror.URL)
	cfg.Mirror.Key = getEnv("SUPABASE_KEY", cfg.Mirror.Key)
	cfg.Mirror.Timeout = parseDuration(os.Getenv("MIRROR_TIMEOUT"), cfg.Mirror.Timeout)
	cfg.Mirror.BreakerFailures = uint32(parseInt(os.Getenv("MIRROR_BREAKER_FAILURES"), int(cfg.Mirror.BreakerFailures)))
	cfg.Mirror.BreakerCooldown = parseDuration(os.Getenv("MIRROR_BREAKER_COOLDOWN"), cfg.Mirror.BreakerCooldown)
	if v := os.Getenv("MIRROR_ENABLED"); v != "" {
		cfg.Mirror.Enabled = v == "true"
	} else if cfg.Mirror.URL != "" && cfg.Mirror.Key != "" {
		cfg.Mirror.Enabled = true
	}

	cfg.Storage.Backend = getEnv("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.Bucket = getEnv("STORAGE_BUCKET", cfg.Storage.Bucket)
	cfg.Storage.Region = getEnv("AWS_REGION", cfg.Storage.Region)
	cfg.Storage.Endpoint = getEnv("STORAGE_ENDPOINT", cfg.Storage.Endpoint)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that must never reach production.
func (c *Config) Validate() error {
	if c.Env != "production" {
		return nil
	}
	if c.Auth.UsesDefaultSecret() {
		return errors.New("JWT_SECRET must be set to a private value when APP_ENV=production")
	}
	return nil
}

func defaults() *Config {
	cfg := &Config{Env: "development"}
	cfg.HTTP.Addr = ":8080"
	cfg.HTTP.RequestTimeout = 30 * time.Second

	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "aahaara"
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxConns = 20
	cfg.Database.MaxIdle = 5

	cfg.Redis.Addr = "localhost:6379"
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"

	cfg.Auth.JWTSecret = DefaultJWTSecret
	cfg.Auth.TokenTTL = 24 * time.Hour
	cfg.Auth.Issuer = "aahaara-data"

	cfg.HTTP.CORSOrigins = []string{"*"}

	cfg.Mirror.Backend = "postgrest"
	cfg.Mirror.Timeout = 3 * time.Second
	cfg.Mirror.BreakerFailures = 5
	cfg.Mirror.BreakerCooldown = 30 * time.Second

	cfg.Storage.Bucket = "REPORT"
	cfg.Storage.Region = "us-east-1"
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
