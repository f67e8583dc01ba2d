// Command server starts the resume analysis HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpserver "github.com/punithkumar/resume-analyzer/internal/adapter/httpserver"
	"github.com/punithkumar/resume-analyzer/internal/adapter/observability"
	"github.com/punithkumar/resume-analyzer/internal/app"
	"github.com/punithkumar/resume-analyzer/internal/config"
)

func main() {
	config.LoadDotEnv(".env")
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()

	if missing := cfg.MissingGatewaySettings(); len(missing) > 0 {
		// Not fatal: every analysis request answers 500 until this is fixed.
		slog.Warn("upstream gateway not configured", slog.Any("missing", missing))
	}

	analyzeSvc, tikaPinger, err := app.NewAnalyzeService(ctx, cfg)
	if err != nil {
		slog.Error("analysis service init failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("analysis service ready",
		slog.String("provider", cfg.AIProvider),
		slog.String("model", cfg.AIGatewayModel),
		slog.String("extractor", cfg.TextExtractor))

	limiter, closeRedis, err := app.NewRateLimiter(cfg)
	if err != nil {
		slog.Error("rate limiter init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := closeRedis(); err != nil {
			slog.Error("failed to close redis client", slog.Any("error", err))
		}
	}()

	var redisPinger app.Pinger
	var handler http.Handler
	if limiter != nil {
		redisPinger = limiter
	}
	redisCheck, tikaCheck := app.BuildReadinessChecks(redisPinger, tikaPinger)
	srv := httpserver.NewServer(cfg, analyzeSvc, redisCheck, tikaCheck)
	if limiter != nil {
		handler = app.BuildRouter(cfg, srv, limiter)
	} else {
		handler = app.BuildRouter(cfg, srv, nil)
	}

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
