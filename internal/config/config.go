package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string
	AutoMigrate        bool

	JWTSecret    string
	JWTIssuer    string
	JWTAudience  string
	JWTClockSkew time.Duration
	JWTRoleClaim string
	AccessCookie string
	CSRFCookie   string
	CSRFHeader   string

	LogFormat        string
	LogLevel         string
	MetricsEnabled   bool
	MetricsNamespace string
	MetricsBuckets   string
	TracingEnabled   bool
	TracingExporter  string
	OTLPEndpoint     string
	TracingSampling  float64

	IdempotencyTTL time.Duration
	RequestMaxBody int64
	HSTSMaxAge     int

	CacheBreakerMinRequests int
	CacheBreakerOpenFor     time.Duration

	VoucherEnforceStartDate bool
	VoucherCacheTTL         time.Duration
	VoucherClaimLockTTL     time.Duration
	VoucherClaimRateLimit   string
	VoucherValidateLimit    string
	CurrencySymbol          string
	CurrencyLocale          string

	HealthDBTimeout    time.Duration
	HealthRedisTimeout time.Duration
	ShutdownTimeout    time.Duration
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		AutoMigrate:        parseBool(k.String("DB_AUTO_MIGRATE"), true),

		JWTSecret:    k.String("JWT_SECRET"),
		JWTIssuer:    strings.TrimSpace(k.String("JWT_ISSUER")),
		JWTAudience:  valueOrDefault(k.String("JWT_AUDIENCE"), "authenticated"),
		JWTClockSkew: parseDuration(k.String("JWT_CLOCK_SKEW"), "30s"),
		JWTRoleClaim: valueOrDefault(k.String("JWT_ROLE_CLAIM"), "app_role"),
		AccessCookie: strings.TrimSpace(k.String("AUTH_ACCESS_COOKIE")),
		CSRFCookie:   valueOrDefault(k.String("CSRF_COOKIE"), "csrf_token"),
		CSRFHeader:   valueOrDefault(k.String("CSRF_HEADER"), "X-CSRF-Token"),

		LogFormat:        valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
		LogLevel:         valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		MetricsEnabled:   parseBool(k.String("OBS_ENABLE_PROMETHEUS"), true),
		MetricsNamespace: valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "toko"),
		MetricsBuckets:   k.String("OBS_METRICS_BUCKETS_MS"),
		TracingEnabled:   parseBool(k.String("OBS_ENABLE_TRACING"), false),
		TracingExporter:  valueOrDefault(k.String("OBS_TRACING_EXPORTER"), "otlp"),
		OTLPEndpoint:     strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
		TracingSampling:  parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1),

		IdempotencyTTL: parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		RequestMaxBody: int64(parseInt(k.String("HTTP_MAX_BODY_BYTES"), 1<<20)),
		HSTSMaxAge:     parseInt(k.String("HTTP_HSTS_MAX_AGE"), 0),

		CacheBreakerMinRequests: parseInt(k.String("CACHE_BREAKER_MIN_REQUESTS"), 10),
		CacheBreakerOpenFor:     parseDuration(k.String("CACHE_BREAKER_OPEN_FOR"), "30s"),

		VoucherEnforceStartDate: parseBool(k.String("VOUCHER_ENFORCE_START_DATE"), true),
		VoucherCacheTTL:         parseDuration(k.String("VOUCHER_CACHE_TTL"), "60s"),
		VoucherClaimLockTTL:     parseDuration(k.String("VOUCHER_CLAIM_LOCK_TTL"), "5s"),
		VoucherClaimRateLimit:   valueOrDefault(k.String("VOUCHER_CLAIM_RATE_LIMIT"), "10-M"),
		VoucherValidateLimit:    valueOrDefault(k.String("VOUCHER_VALIDATE_RATE_LIMIT"), "60-M"),
		CurrencySymbol:          valueOrDefault(k.String("CURRENCY_SYMBOL"), "Rp"),
		CurrencyLocale:          valueOrDefault(k.String("CURRENCY_LOCALE"), "id-ID"),

		HealthDBTimeout:    parseDuration(k.String("HEALTH_READY_DB_TIMEOUT"), "500ms"),
		HealthRedisTimeout: parseDuration(k.String("HEALTH_READY_REDIS_TIMEOUT"), "300ms"),
		ShutdownTimeout:    parseDuration(k.String("SHUTDOWN_TIMEOUT"), "15s"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func parseFloat(value string, fallback float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
