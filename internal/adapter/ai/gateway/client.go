// Package gateway scores resumes through an OpenAI-compatible chat
// completions gateway using a forced analyze_resume tool call.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/punithkumar/resume-analyzer/internal/adapter/ai"
	"github.com/punithkumar/resume-analyzer/internal/adapter/observability"
	"github.com/punithkumar/resume-analyzer/internal/domain"
)

// ProviderName labels logs and metrics emitted by this client.
const ProviderName = "gateway"

const maxBodySnippet = 512

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client implements domain.ResumeScorer. It never retries.
type Client struct {
	api   chatCompleter
	model string
}

// New builds a client for the gateway at baseURL (e.g. https://host/v1).
// A nil hc falls back to an instrumented client with a 60s timeout.
func New(apiKey, baseURL, model string, hc *http.Client) *Client {
	if hc == nil {
		hc = observability.NewHTTPClient("ai.gateway", 60*time.Second)
	}
	oc := openai.DefaultConfig(apiKey)
	oc.BaseURL = strings.TrimRight(baseURL, "/")
	oc.HTTPClient = hc
	return &Client{api: openai.NewClientWithConfig(oc), model: model}
}

// Model returns the model id sent upstream.
func (c *Client) Model() string { return c.model }

func (c *Client) buildRequest(resumeText string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: ai.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: ai.UserPrompt(resumeText)},
		},
		Tools: []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ai.ToolName,
				Description: ai.ToolDescription,
				Parameters:  ai.ParametersSchema(),
			},
		}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: ai.ToolName},
		},
	}
}

// Score sends one chat completion request and decodes the first tool call.
func (c *Client) Score(ctx domain.Context, resumeText string) (domain.Analysis, error) {
	lg := observability.LoggerFromContext(ctx)
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, c.buildRequest(resumeText))
	if err != nil {
		observability.ObserveAIRequest(ProviderName, "error", time.Since(start))
		return domain.Analysis{}, c.classify(lg, err)
	}
	observability.ObserveAIRequest(ProviderName, "ok", time.Since(start))

	var toolCalls []openai.ToolCall
	if len(resp.Choices) > 0 {
		toolCalls = resp.Choices[0].Message.ToolCalls
	}
	lg.Info("ai response received",
		slog.String("provider", ProviderName),
		slog.String("requested_model", c.model),
		slog.String("actual_model", resp.Model),
		slog.Int("choices", len(resp.Choices)),
		slog.Int("tool_calls", len(toolCalls)),
		slog.Int("prompt_tokens", resp.Usage.PromptTokens),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens),
		slog.Duration("duration", time.Since(start)))

	if len(toolCalls) == 0 {
		return domain.Analysis{}, fmt.Errorf("op=gateway.Score: %w", domain.ErrNoToolCall)
	}
	a, err := ai.DecodeArguments(toolCalls[0].Function.Arguments)
	if err != nil {
		lg.Error("tool call arguments rejected",
			slog.String("provider", ProviderName),
			slog.String("tool", toolCalls[0].Function.Name),
			slog.Any("error", err))
		return domain.Analysis{}, fmt.Errorf("op=gateway.Score: %w", err)
	}
	return a, nil
}

// classify turns a go-openai error into the domain taxonomy.
func (c *Client) classify(lg *slog.Logger, err error) error {
	status, detail := 0, ""
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status, detail = apiErr.HTTPStatusCode, apiErr.Message
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
		if reqErr.Err != nil {
			detail = reqErr.Err.Error()
		}
	}
	if status == 0 {
		lg.Error("ai gateway transport error", slog.String("provider", ProviderName), slog.Any("error", err))
		return fmt.Errorf("op=gateway.Score: %w: %w", domain.ErrUpstream, err)
	}
	if len(detail) > maxBodySnippet {
		detail = detail[:maxBodySnippet]
	}
	upErr := &domain.UpstreamError{Provider: ProviderName, Status: status, Body: detail}
	switch status {
	case http.StatusTooManyRequests, http.StatusPaymentRequired:
		lg.Warn("ai gateway refused request", slog.String("provider", ProviderName), slog.Int("status", status), slog.String("body", detail))
	default:
		lg.Error("ai gateway error", slog.String("provider", ProviderName), slog.Int("status", status), slog.String("body", detail))
	}
	return fmt.Errorf("op=gateway.Score: %w", upErr)
}
