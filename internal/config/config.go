package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StrategyToken   = "token"
	StrategySession = "session"

	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"

	devJWTSecret     = "dev-secret-change-me"
	devSessionSecret = "dev-session-secret-change-me-32b"
)

type Config struct {
	Env   string
	Port  int
	DBURL string

	// auth
	AuthStrategy        string
	JWTSecret           string
	JWTAccessTTLMinutes int
	SessionSecret       string
	SessionTTLHours     int
	SessionStore        string
	BcryptCost          int

	// redis (session store)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// bootstrap admin
	AdminEmail    string
	AdminUsername string
	AdminPassword string

	// observability
	OTelEnabled  bool
	OTelEndpoint string

	AuthRateLimitPerMinute int

	// TrustedProxies lists the proxy addresses or CIDRs allowed to set
	// X-Forwarded-For. Empty trusts none, so the peer address is the client.
	TrustedProxies []string
}

func Load() Config {
	// a missing .env is fine, the real environment wins either way
	_ = godotenv.Load()

	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),

		AuthStrategy:        strings.ToLower(getEnv("AUTH_STRATEGY", StrategyToken)),
		JWTSecret:           getEnv("JWT_SECRET", devJWTSecret),
		JWTAccessTTLMinutes: getEnvInt("JWT_ACCESS_TTL_MINUTES", 60),
		SessionSecret:       getEnv("SESSION_SECRET", devSessionSecret),
		SessionTTLHours:     getEnvInt("SESSION_TTL_HOURS", 24),
		SessionStore:        strings.ToLower(getEnv("SESSION_STORE", SessionStoreRedis)),
		BcryptCost:          getEnvInt("BCRYPT_COST", 10),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		OTelEnabled:  getEnvBool("OTEL_ENABLED", false),
		OTelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		AuthRateLimitPerMinute: getEnvInt("RATE_LIMIT_AUTH_PER_MINUTE", 20),
		TrustedProxies:         getEnvList("TRUSTED_PROXIES"),
	}
}

func (c Config) IsProd() bool {
	return c.Env == "prod"
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.JWTAccessTTLMinutes) * time.Minute
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// Validate rejects configurations the api must not boot with.
func (c Config) Validate() error {
	var errs []error

	switch c.AuthStrategy {
	case StrategyToken, StrategySession:
	default:
		errs = append(errs, fmt.Errorf("AUTH_STRATEGY must be %q or %q, got %q", StrategyToken, StrategySession, c.AuthStrategy))
	}

	switch c.SessionStore {
	case SessionStoreRedis, SessionStoreMemory:
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE must be %q or %q, got %q", SessionStoreRedis, SessionStoreMemory, c.SessionStore))
	}

	if c.JWTAccessTTLMinutes <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TTL_MINUTES must be positive"))
	}

	if c.SessionTTLHours <= 0 {
		errs = append(errs, errors.New("SESSION_TTL_HOURS must be positive"))
	}

	if len(c.SessionSecret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 bytes"))
	}

	if c.IsProd() {
		if c.JWTSecret == "" || c.JWTSecret == devJWTSecret {
			errs = append(errs, errors.New("JWT_SECRET is required in prod"))
		}
		if c.SessionSecret == "" || c.SessionSecret == devSessionSecret {
			errs = append(errs, errors.New("SESSION_SECRET is required in prod"))
		}
	}

	return errors.Join(errs...)
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "recipehub")
	pass := getEnv("DB_PASSWORD", "recipehub")
	name := getEnv("DB_NAME", "recipehub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer env, using fallback", "key", key, "fallback", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return b
	}
	return fallback
}
