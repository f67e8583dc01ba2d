package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpserver "github.com/punithkumar/resume-analyzer/internal/adapter/httpserver"
	"github.com/punithkumar/resume-analyzer/internal/adapter/observability"
	"github.com/punithkumar/resume-analyzer/internal/config"
	"github.com/punithkumar/resume-analyzer/internal/service/ratelimiter"
)

// Route paths.
const (
	AnalyzeResumePath = "/functions/v1/analyze-resume"
	UploadResumePath  = "/v1/resume/analyze"
)

// CORSAllowedHeaders are the request headers browsers may send cross-origin.
var CORSAllowedHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

// ParseOrigins splits a comma-separated origin list into a slice, trimming spaces.
// If the input is empty, returns ["*"].
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middlewares and routes.
// A nil limiter selects the in-process httprate limiter.
func BuildRouter(cfg config.Config, srv *httpserver.Server, limiter ratelimiter.Limiter) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.RequestID())
	r.Use(httpserver.TraceMiddleware)
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   CORSAllowedHeaders,
		ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 75 * time.Second
	}

	r.Group(func(ar chi.Router) {
		ar.Use(rateLimit(cfg, srv, limiter))
		ar.Use(httpserver.TimeoutMiddleware(timeout))
		ar.Post(AnalyzeResumePath, srv.AnalyzeHandler())
		ar.Post(UploadResumePath, srv.UploadHandler())
	})

	r.Get("/healthz", srv.HealthzHandler())
	r.Get("/readyz", srv.ReadyzHandler())
	r.Handle("/metrics", promhttp.Handler())

	return httpserver.SecurityHeaders(r)
}

func rateLimit(cfg config.Config, srv *httpserver.Server, limiter ratelimiter.Limiter) func(http.Handler) http.Handler {
	if cfg.RateLimitPerMin <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if limiter != nil {
		return ratelimiter.Middleware(limiter, "analyze", httprate.KeyByIP, srv.RateLimitedHandler())
	}
	return httprate.Limit(cfg.RateLimitPerMin, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(srv.RateLimitedHandler()),
	)
}
