package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/punithkumar/resume-analyzer/internal/adapter/ai/gateway"
	"github.com/punithkumar/resume-analyzer/internal/adapter/ai/gemini"
	"github.com/punithkumar/resume-analyzer/internal/adapter/observability"
	"github.com/punithkumar/resume-analyzer/internal/adapter/textextractor/raw"
	"github.com/punithkumar/resume-analyzer/internal/adapter/textextractor/tika"
	"github.com/punithkumar/resume-analyzer/internal/config"
	"github.com/punithkumar/resume-analyzer/internal/domain"
	"github.com/punithkumar/resume-analyzer/internal/service/ratelimiter"
	"github.com/punithkumar/resume-analyzer/internal/usecase"
)

// NewScorer builds the scorer selected by AI_PROVIDER. It returns a nil
// scorer without error when the credential is missing; the analysis service
// reports that per request.
func NewScorer(ctx context.Context, cfg config.Config) (domain.ResumeScorer, error) {
	hc := observability.NewHTTPClient("ai."+cfg.AIProvider, cfg.AIGatewayTimeout)
	switch cfg.AIProvider {
	case config.ProviderGateway, "":
		return gateway.New(cfg.AIGatewayAPIKey, cfg.AIGatewayURL, cfg.AIGatewayModel, hc), nil
	case config.ProviderGemini:
		if len(cfg.MissingGatewaySettings()) > 0 {
			return nil, nil
		}
		c, err := gemini.New(ctx, cfg.AIGatewayAPIKey, cfg.AIGatewayURL, gemini.NormalizeModel(cfg.AIGatewayModel), hc)
		if err != nil {
			return nil, fmt.Errorf("op=app.NewScorer: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("op=app.NewScorer: %w: unknown AI_PROVIDER %q", domain.ErrInvalidArgument, cfg.AIProvider)
	}
}

// NewExtractor builds the extractor selected by TEXT_EXTRACTOR. The second
// return value is non-nil only for extractors backed by a remote service.
func NewExtractor(cfg config.Config) (domain.TextExtractor, Pinger, error) {
	switch cfg.TextExtractor {
	case config.ExtractorRaw, "":
		return raw.New(), nil, nil
	case config.ExtractorTika:
		c := tika.New(cfg.TikaURL, cfg.TikaTimeout, cfg.TikaMaxElapsed)
		return c, c, nil
	default:
		return nil, nil, fmt.Errorf("op=app.NewExtractor: %w: unknown TEXT_EXTRACTOR %q", domain.ErrInvalidArgument, cfg.TextExtractor)
	}
}

// NewRateLimiter connects the shared Redis limiter when REDIS_URL is set.
// It returns a nil limiter otherwise.
func NewRateLimiter(cfg config.Config) (*ratelimiter.RedisLuaLimiter, func() error, error) {
	if cfg.RedisURL == "" {
		return nil, func() error { return nil }, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("op=app.NewRateLimiter: %w", err)
	}
	rdb := redis.NewClient(opts)
	slog.Info("shared rate limiter enabled", slog.String("redis_addr", opts.Addr), slog.Int("per_min", cfg.RateLimitPerMin))
	return ratelimiter.NewRedisLuaLimiter(rdb, ratelimiter.NewBucketConfigFromPerMinute(cfg.RateLimitPerMin)), rdb.Close, nil
}

// NewAnalyzeService wires the analysis usecase from configuration.
func NewAnalyzeService(ctx context.Context, cfg config.Config) (usecase.AnalyzeService, Pinger, error) {
	scorer, err := NewScorer(ctx, cfg)
	if err != nil {
		return usecase.AnalyzeService{}, nil, err
	}
	extractor, tikaPinger, err := NewExtractor(cfg)
	if err != nil {
		return usecase.AnalyzeService{}, nil, err
	}
	svc := usecase.NewAnalyzeService(scorer, extractor, cfg.AIProvider, cfg.AIGatewayModel, cfg.MissingGatewaySettings)
	return svc, tikaPinger, nil
}
