package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Stripe   StripeConfig
	PayPal   PayPalConfig
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
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// StripeConfig holds the Stripe secret. Both the server-only and the
// legacy client-exposed variable names are accepted, server-only first.
type StripeConfig struct {
	SecretKey string
}

// Configured reports whether a plausible secret key is present. Secret
// keys are expected to carry the sk_ prefix (test or live).
func (s StripeConfig) Configured() bool {
	return strings.HasPrefix(s.SecretKey, "sk_")
}

// PayPalConfig holds PayPal API credentials and endpoints. The live
// endpoint is tried first; auth failures fall back to sandbox.
type PayPalConfig struct {
	ClientID    string
	Secret      string
	LiveBase    string
	SandboxBase string
	BrandName   string
}

// Configured reports whether client credentials are present.
func (p PayPalConfig) Configured() bool {
	return p.ClientID != "" && p.Secret != ""
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "market-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Stripe: StripeConfig{
			SecretKey: firstEnv("STRIPE_SECRET_KEY", "STRIPE_SECRET", "VITE_STRIPE_SECRET_KEY"),
		},
		PayPal: PayPalConfig{
			ClientID:    firstEnv("PAYPAL_CLIENT_ID", "VITE_PAYPAL_CLIENT_ID"),
			Secret:      firstEnv("PAYPAL_CLIENT_SECRET", "VITE_PAYPAL_CLIENT_SECRET"),
			LiveBase:    getEnv("PAYPAL_API_BASE", "https://api-m.paypal.com"),
			SandboxBase: getEnv("PAYPAL_SANDBOX_API_BASE", "https://api-m.sandbox.paypal.com"),
			BrandName:   getEnv("PAYPAL_APP_NAME", "BrainrotMarket"),
		},
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

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return ""
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
