package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/noah-isme/toko-voucher/internal/app"
	"github.com/noah-isme/toko-voucher/internal/config"
	"github.com/noah-isme/toko-voucher/internal/health"
	"github.com/noah-isme/toko-voucher/internal/obs"
	"github.com/noah-isme/toko-voucher/internal/resilience"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsEnabled {
		obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)
		resilience.MustRegisterMetrics(cfg.MetricsNamespace, nil)
	}

	tracingEnabled := cfg.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:    "toko-voucher",
			ServiceVersion: envOrDefault("APP_VERSION", "dev"),
			Endpoint:       cfg.OTLPEndpoint,
			Exporter:       cfg.TracingExporter,
			SamplingRatio:  cfg.TracingSampling,
			Environment:    cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}
	cfg.TracingEnabled = tracingEnabled

	if cfg.AutoMigrate {
		m, err := app.NewMigrator(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("open migrations")
		}
		if err := app.RunMigrations(m); err != nil {
			logger.Fatal().Err(err).Msg("run migrations")
		}
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("close migrator")
		}
		logger.Info().Msg("migrations applied")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	deps, err := app.Connect(connectCtx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("connect dependencies")
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Error().Err(err).Msg("close dependencies")
		}
	}()

	var httpMetrics *obs.HTTPMetrics
	if cfg.MetricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBuckets), nil)
	}

	routes, err := deps.Routes(cfg, logger, httpMetrics)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise routes")
	}
	if envBool("OBS_ENABLE_PPROF", false) {
		routes.Extra = map[string]http.Handler{
			"/debug/pprof": protectPprof(newPprofMux(), envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", ""), envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")),
		}
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           routes.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	health.SetReady(true)
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	health.SetReady(false)
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}
