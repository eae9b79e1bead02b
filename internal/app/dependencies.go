package app

import (
	"context"
	"fmt"

	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"

	"github.com/noah-isme/toko-voucher/internal/auth"
	"github.com/noah-isme/toko-voucher/internal/cache"
	"github.com/noah-isme/toko-voucher/internal/checkout"
	"github.com/noah-isme/toko-voucher/internal/common"
	"github.com/noah-isme/toko-voucher/internal/config"
	dbgen "github.com/noah-isme/toko-voucher/internal/db/gen"
	"github.com/noah-isme/toko-voucher/internal/events"
	"github.com/noah-isme/toko-voucher/internal/health"
	"github.com/noah-isme/toko-voucher/internal/lock"
	"github.com/noah-isme/toko-voucher/internal/obs"
	"github.com/noah-isme/toko-voucher/internal/ratelimit"
	"github.com/noah-isme/toko-voucher/internal/repo"
	"github.com/noah-isme/toko-voucher/internal/resilience"
	"github.com/noah-isme/toko-voucher/internal/security"
	"github.com/noah-isme/toko-voucher/internal/voucher"
)

// Dependencies holds the infrastructure clients shared by the HTTP surface.
type Dependencies struct {
	DB           *pgxpool.Pool
	Redis        *redis.Client
	LimiterStore limiter.Store
	Validator    *validator.Validate
}

// Connect opens Postgres and Redis and verifies both respond.
func Connect(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Dependencies, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "toko-voucher"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(rdb); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if cfg.MetricsEnabled {
		if err := redisotel.InstrumentMetrics(rdb); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		pool.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	store, err := ratelimit.NewRedisStore(rdb, cfg.MetricsNamespace+":ratelimit")
	if err != nil {
		pool.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("limiter store: %w", err)
	}

	return &Dependencies{
		DB:           pool,
		Redis:        rdb,
		LimiterStore: store,
		Validator:    voucher.NewValidator(),
	}, nil
}

// Close releases the infrastructure clients.
func (d *Dependencies) Close() error {
	if d == nil {
		return nil
	}
	if d.DB != nil {
		d.DB.Close()
	}
	if d.Redis != nil {
		return d.Redis.Close()
	}
	return nil
}

// Routes wires the domain services on top of deps.
func (d *Dependencies) Routes(cfg *config.Config, logger zerolog.Logger, httpMetrics *obs.HTTPMetrics) (Routes, error) {
	verifier, err := auth.NewVerifier(auth.VerifierConfig{
		Secret:    cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		Audience:  cfg.JWTAudience,
		ClockSkew: cfg.JWTClockSkew,
		RoleClaim: cfg.JWTRoleClaim,
	})
	if err != nil {
		return Routes{}, err
	}

	store := repo.NewVouchers(d.DB)
	bus := &events.Bus{
		Store:     dbgen.New(d.DB),
		Notifiers: []events.Notifier{events.NewLogNotifier(logger, events.DefaultTopics()...)},
	}
	cacheBreaker := resilience.NewBreaker("voucher_cache", cfg.CacheBreakerMinRequests, 0.5, cfg.CacheBreakerOpenFor)
	cacheBreaker.Logger = &logger
	svc := &voucher.Service{
		Store:   store,
		Money:   voucher.NewMoney(cfg.CurrencySymbol, cfg.CurrencyLocale),
		Rules:   voucher.Rules{EnforceStartDate: cfg.VoucherEnforceStartDate},
		Locker:  lock.Locker{R: d.Redis, Prefix: cfg.MetricsNamespace + ":lock:", MaxWait: cfg.VoucherClaimLockTTL},
		LockTTL: cfg.VoucherClaimLockTTL,
		Events:  bus,
		Cache:   cache.NewJSON(d.Redis, cfg.MetricsNamespace, cfg.VoucherCacheTTL).WithBreaker(cacheBreaker),
		Logger:  &logger,
	}

	claimPolicy, err := ratelimit.NewFixed(d.LimiterStore, cfg.VoucherClaimRateLimit)
	if err != nil {
		return Routes{}, err
	}
	validatePolicy, err := ratelimit.NewFixed(d.LimiterStore, cfg.VoucherValidateLimit)
	if err != nil {
		return Routes{}, err
	}

	return Routes{
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		MaxBodyBytes:   cfg.RequestMaxBody,
		Headers:        security.Headers{HSTSMaxAge: cfg.HSTSMaxAge, HSTSIncludeSubdomains: cfg.IsProduction()},
		CSRF:           security.CSRF{SessionCookie: cfg.AccessCookie, Header: cfg.CSRFHeader, Cookie: cfg.CSRFCookie},
		Metrics:        httpMetrics,
		Tracing:        cfg.TracingEnabled,
		Auth:           auth.Middleware{Verifier: verifier, AccessCookie: cfg.AccessCookie},
		Idem:           common.Idem{R: d.Redis, TTL: cfg.IdempotencyTTL},
		ClaimLimit:     claimPolicy,
		ValidateLimit:  validatePolicy,
		Vouchers:       &voucher.Handler{Svc: svc},
		Admin:          &voucher.AdminHandler{Admin: &voucher.Admin{Store: store, Validate: d.Validator, Service: svc, Events: bus}},
		Checkout:       &checkout.Handler{Svc: &checkout.Service{Vouchers: svc, Validate: d.Validator}},
		Health: health.Handler{
			Checker:      readinessChecker{db: d.DB, redis: d.Redis},
			DBTimeout:    cfg.HealthDBTimeout,
			RedisTimeout: cfg.HealthRedisTimeout,
		},
	}, nil
}
