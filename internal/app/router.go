package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-voucher/internal/auth"
	"github.com/noah-isme/toko-voucher/internal/checkout"
	"github.com/noah-isme/toko-voucher/internal/common"
	"github.com/noah-isme/toko-voucher/internal/health"
	"github.com/noah-isme/toko-voucher/internal/obs"
	"github.com/noah-isme/toko-voucher/internal/ratelimit"
	"github.com/noah-isme/toko-voucher/internal/security"
	"github.com/noah-isme/toko-voucher/internal/voucher"
)

// Routes collects everything the HTTP router mounts.
type Routes struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	MaxBodyBytes   int64
	Headers        security.Headers
	CSRF           security.CSRF
	Metrics        *obs.HTTPMetrics
	Tracing        bool
	// Extra is mounted at the root, e.g. the pprof mux.
	Extra map[string]http.Handler

	Auth          auth.Middleware
	Idem          common.Idem
	ClaimLimit    ratelimit.Policy
	ValidateLimit ratelimit.Policy

	Vouchers *voucher.Handler
	Admin    *voucher.AdminHandler
	Checkout *checkout.Handler
	Health   health.Handler
}

// Handler builds the chi router.
func (rt Routes) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if rt.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	if rt.Metrics != nil {
		r.Use(obs.HTTPObs{Metrics: rt.Metrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: rt.Logger}.Middleware)
	r.Use(rt.Headers.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(rt.AllowedOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", csrfHeader(rt.CSRF)},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(security.BodyLimit{Max: rt.MaxBodyBytes}.Middleware)

	if rt.Metrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}
	for pattern, h := range rt.Extra {
		r.Mount(pattern, h)
	}
	r.Get("/health/live", rt.Health.Live)
	r.Get("/health/ready", rt.Health.Ready)

	claimLimit := rt.limit("claim", rt.ClaimLimit)
	validateLimit := rt.limit("validate", rt.ValidateLimit)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(rt.CSRF.Middleware)
		v.Group(func(pub chi.Router) {
			pub.Use(rt.Auth.Authenticate)
			pub.Get("/vouchers/available", rt.Vouchers.Available)
			pub.With(validateLimit).Post("/vouchers/validate", rt.Vouchers.Validate)
			pub.Get("/vouchers/{code}", rt.Vouchers.Get)
			pub.Get("/checkout/delivery-methods", rt.Checkout.DeliveryMethods)
			pub.Post("/checkout/summary", rt.Checkout.Summary)
		})

		v.Route("/me/vouchers", func(me chi.Router) {
			me.Use(rt.Auth.RequireAuth)
			me.Get("/", rt.Vouchers.Mine)
			me.With(claimLimit, rt.Idem.Middleware).Post("/claim", rt.Vouchers.Claim)
			me.With(rt.Idem.Middleware).Post("/redeem", rt.Vouchers.Redeem)
			me.Post("/{voucherID}/use", rt.Vouchers.MarkUsed)
		})

		v.Route("/admin/vouchers", func(admin chi.Router) {
			admin.Use(rt.Auth.RequireAuth)
			admin.Use(auth.RequireRole("admin"))
			admin.Get("/", rt.Admin.List)
			admin.Post("/", rt.Admin.Create)
			admin.Put("/{id}", rt.Admin.Update)
			admin.Delete("/{id}", rt.Admin.Delete)
			admin.Patch("/{id}/active", rt.Admin.SetActive)
		})
	})
	return r
}

func (rt Routes) limit(scope string, policy ratelimit.Policy) func(http.Handler) http.Handler {
	return ratelimit.Handler{
		Policy: policy,
		Key:    ratelimit.UserOrIP(scope),
		OnError: func(r *http.Request, err error) {
			zerolog.Ctx(r.Context()).Warn().Err(err).Str("scope", scope).Msg("rate_limit_unavailable")
		},
	}.Middleware
}

func csrfHeader(c security.CSRF) string {
	if c.Header == "" {
		return "X-CSRF-Token"
	}
	return c.Header
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

type readinessChecker struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func (c readinessChecker) PingDB(ctx context.Context, timeout time.Duration) error {
	if c.db == nil {
		return errors.New("db not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.Ping(ctx)
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}
