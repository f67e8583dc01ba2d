// Package gemini scores resumes by calling the Gemini API directly with a
// function declaration and function calling mode ANY.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"google.golang.org/genai"

	"github.com/punithkumar/resume-analyzer/internal/adapter/ai"
	"github.com/punithkumar/resume-analyzer/internal/adapter/observability"
	"github.com/punithkumar/resume-analyzer/internal/domain"
)

// ProviderName labels logs and metrics emitted by this client.
const ProviderName = "gemini"

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements domain.ResumeScorer. It never retries.
type Client struct {
	api   contentGenerator
	model string
}

// New creates a Gemini API client. baseURL overrides the API host when
// non-empty; a "google/" prefix on model is dropped.
func New(ctx context.Context, apiKey, baseURL, model string, hc *http.Client) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("op=gemini.New: %w: api key", domain.ErrNotConfigured)
	}
	if hc == nil {
		hc = observability.NewHTTPClient("ai.gemini", 60*time.Second)
	}
	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("op=gemini.New: %w", err)
	}
	return &Client{api: client.Models, model: NormalizeModel(model)}, nil
}

// NormalizeModel strips the gateway-style "google/" prefix.
func NormalizeModel(model string) string {
	return strings.TrimPrefix(strings.TrimSpace(model), "google/")
}

// Model returns the model id sent upstream.
func (c *Client) Model() string { return c.model }

func ptr[T any](v T) *T { return &v }

func toolSchema() *genai.Schema {
	stringList := func() *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"score":           {Type: genai.TypeNumber, Minimum: ptr(float64(ai.ScoreMin)), Maximum: ptr(float64(ai.ScoreMax))},
			"summary":         {Type: genai.TypeString},
			"strengths":       stringList(),
			"improvements":    stringList(),
			"recommendations": stringList(),
		},
		Required: ai.RequiredFields,
	}
}

func buildConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: ai.SystemPrompt}}},
		Tools: []*genai.Tool{{
			FunctionDeclarations: []*genai.FunctionDeclaration{{
				Name:        ai.ToolName,
				Description: ai.ToolDescription,
				Parameters:  toolSchema(),
			}},
		}},
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{ai.ToolName},
			},
		},
	}
}

// Score sends one GenerateContent request and decodes the first function call.
func (c *Client) Score(ctx domain.Context, resumeText string) (domain.Analysis, error) {
	lg := observability.LoggerFromContext(ctx)
	start := time.Now()
	resp, err := c.api.GenerateContent(ctx, c.model, genai.Text(ai.UserPrompt(resumeText)), buildConfig())
	if err != nil {
		observability.ObserveAIRequest(ProviderName, "error", time.Since(start))
		return domain.Analysis{}, classify(lg, err)
	}
	observability.ObserveAIRequest(ProviderName, "ok", time.Since(start))

	call := firstFunctionCall(resp)
	attrs := []any{
		slog.String("provider", ProviderName),
		slog.String("model", c.model),
		slog.Bool("function_call", call != nil),
		slog.Duration("duration", time.Since(start)),
	}
	if resp != nil && resp.UsageMetadata != nil {
		attrs = append(attrs,
			slog.Int("prompt_tokens", int(resp.UsageMetadata.PromptTokenCount)),
			slog.Int("completion_tokens", int(resp.UsageMetadata.CandidatesTokenCount)))
	}
	lg.Info("ai response received", attrs...)

	if call == nil {
		return domain.Analysis{}, fmt.Errorf("op=gemini.Score: %w", domain.ErrNoToolCall)
	}
	a, err := DecodeArgs(call.Args)
	if err != nil {
		lg.Error("function call arguments rejected", slog.String("provider", ProviderName), slog.Any("error", err))
		return domain.Analysis{}, fmt.Errorf("op=gemini.Score: %w", err)
	}
	return a, nil
}

func firstFunctionCall(resp *genai.GenerateContentResponse) *genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return nil
	}
	for _, p := range cand.Content.Parts {
		if p != nil && p.FunctionCall != nil {
			return p.FunctionCall
		}
	}
	return nil
}

// DecodeArgs maps function call arguments onto an Analysis. Missing, null
// and unknown keys and invariant violations are rejected.
func DecodeArgs(args map[string]any) (domain.Analysis, error) {
	if err := ai.CheckPresent(args); err != nil {
		return domain.Analysis{}, err
	}
	var a domain.Analysis
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &a,
	})
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}
	if err := dec.Decode(args); err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: decode args: %v", domain.ErrSchemaInvalid, err)
	}
	if err := ai.ValidateAnalysis(a); err != nil {
		return domain.Analysis{}, err
	}
	return a, nil
}

func classify(lg *slog.Logger, err error) error {
	status := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Code
	case errors.As(err, &apiErrPtr):
		status = apiErrPtr.Code
	}
	if status == 0 {
		lg.Error("gemini transport error", slog.String("provider", ProviderName), slog.Any("error", err))
		return fmt.Errorf("op=gemini.Score: %w: %w", domain.ErrUpstream, err)
	}
	if status == http.StatusTooManyRequests || status == http.StatusPaymentRequired {
		lg.Warn("gemini refused request", slog.String("provider", ProviderName), slog.Int("status", status), slog.Any("error", err))
	} else {
		lg.Error("gemini api error", slog.String("provider", ProviderName), slog.Int("status", status), slog.Any("error", err))
	}
	return fmt.Errorf("op=gemini.Score: %w", &domain.UpstreamError{Provider: ProviderName, Status: status, Body: err.Error()})
}
