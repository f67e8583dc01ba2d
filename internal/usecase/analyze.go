// Package usecase contains application business logic services.
package usecase

import (
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/punithkumar/resume-analyzer/internal/adapter/ai"
	"github.com/punithkumar/resume-analyzer/internal/adapter/ai/tokencount"
	"github.com/punithkumar/resume-analyzer/internal/adapter/observability"
	"github.com/punithkumar/resume-analyzer/internal/domain"
)

// AnalyzeService validates input, checks upstream configuration and asks the
// configured scorer for exactly one analysis per call.
type AnalyzeService struct {
	Scorer    domain.ResumeScorer
	Extractor domain.TextExtractor
	Provider  string
	Model     string
	// Missing reports required settings that are not configured. It is
	// evaluated per request so configuration problems surface as errors
	// instead of startup failures.
	Missing func() []string
	Tokens  *tokencount.Counter
}

// NewAnalyzeService constructs an AnalyzeService with its dependencies.
func NewAnalyzeService(scorer domain.ResumeScorer, extractor domain.TextExtractor, provider, model string, missing func() []string) AnalyzeService {
	return AnalyzeService{
		Scorer:    scorer,
		Extractor: extractor,
		Provider:  provider,
		Model:     model,
		Missing:   missing,
		Tokens:    tokencount.DefaultCounter,
	}
}

// Analyze scores resumeText. The upstream is called at most once.
func (s AnalyzeService) Analyze(ctx domain.Context, resumeText string) (domain.Analysis, error) {
	ctx, span := otel.Tracer("usecase.analyze").Start(ctx, "AnalyzeService.Analyze")
	defer span.End()
	lg := observability.LoggerFromContext(ctx)

	if err := s.Configured(); err != nil {
		lg.Error("analysis rejected: upstream not configured", "error", err)
		observability.ObserveAnalysis(outcomeFor(err), 0)
		return domain.Analysis{}, fmt.Errorf("op=usecase.Analyze: %w", err)
	}
	if resumeText == "" {
		observability.ObserveAnalysis(outcomeFor(domain.ErrInvalidArgument), 0)
		return domain.Analysis{}, fmt.Errorf("op=usecase.Analyze: %w", domain.Invalid("resumeText is required"))
	}

	span.SetAttributes(
		attribute.String("ai.provider", s.Provider),
		attribute.String("ai.model", s.Model),
		attribute.Int("resume.chars", len(resumeText)),
	)
	if s.Tokens != nil {
		tokens := s.Tokens.EstimatePrompt(ai.SystemPrompt, ai.UserPrompt(resumeText), s.Model)
		observability.ObservePromptTokens(s.Provider, tokens)
		span.SetAttributes(attribute.Int("ai.prompt_tokens_estimate", tokens))
	}

	lg.Info("analyzing resume", "provider", s.Provider, "model", s.Model, "chars", len(resumeText))
	start := time.Now()
	a, err := s.Scorer.Score(ctx, resumeText)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "score failed")
		observability.ObserveAnalysis(outcomeFor(err), 0)
		lg.Error("resume analysis failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return domain.Analysis{}, fmt.Errorf("op=usecase.Analyze: %w", err)
	}

	span.SetAttributes(attribute.Float64("analysis.score", a.Score))
	observability.ObserveAnalysis("ok", a.Score)
	lg.Info("resume analyzed", "score", a.Score, "duration_ms", time.Since(start).Milliseconds())
	return a, nil
}

// AnalyzeDocument checks an uploaded document, extracts its text and
// analyzes it.
func (s AnalyzeService) AnalyzeDocument(ctx domain.Context, fileName, mimeType string, data []byte) (domain.Analysis, error) {
	if err := ValidateDocument(mimeType, int64(len(data))); err != nil {
		observability.ObserveAnalysis(outcomeFor(err), 0)
		return domain.Analysis{}, fmt.Errorf("op=usecase.AnalyzeDocument: %w", err)
	}
	if s.Extractor == nil {
		return domain.Analysis{}, fmt.Errorf("op=usecase.AnalyzeDocument: %w: no text extractor", domain.ErrInternal)
	}
	text, err := s.Extractor.Extract(ctx, fileName, mimeType, data)
	if err != nil {
		observability.ObserveAnalysis(outcomeFor(err), 0)
		return domain.Analysis{}, fmt.Errorf("op=usecase.AnalyzeDocument: %w", err)
	}
	return s.Analyze(ctx, text)
}

// ValidateDocument applies the document type allow-list and size cap.
func ValidateDocument(mimeType string, size int64) error {
	if !domain.IsAllowedDocumentMIME(mimeType) {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedMedia, domain.BaseMIME(mimeType))
	}
	if size > domain.MaxDocumentBytes {
		return fmt.Errorf("%w: %d bytes", domain.ErrPayloadTooLarge, size)
	}
	return nil
}

// Configured reports the first missing upstream setting as a
// *domain.ConfigError, or nil when the service can reach a scorer.
func (s AnalyzeService) Configured() error {
	if s.Missing != nil {
		if missing := s.Missing(); len(missing) > 0 {
			return &domain.ConfigError{Var: missing[0]}
		}
	}
	if s.Scorer == nil {
		return fmt.Errorf("%w: no scorer", domain.ErrInternal)
	}
	return nil
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, domain.ErrUnsupportedMedia), errors.Is(err, domain.ErrPayloadTooLarge):
		return "rejected_document"
	case errors.Is(err, domain.ErrExtraction):
		return "extraction_failed"
	case errors.Is(err, domain.ErrUpstreamRateLimit):
		return "rate_limited"
	case errors.Is(err, domain.ErrPaymentRequired):
		return "payment_required"
	case errors.Is(err, domain.ErrNoToolCall):
		return "no_tool_call"
	case errors.Is(err, domain.ErrSchemaInvalid):
		return "schema_invalid"
	case errors.Is(err, domain.ErrUpstream):
		return "upstream_error"
	default:
		return "error"
	}
}
