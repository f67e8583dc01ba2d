package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/punithkumar/resume-analyzer/internal/domain"
)

// ErrNoAnalysis is returned when the backend answers 2xx without an analysis.
var ErrNoAnalysis = errors.New("No analysis data received") //nolint:staticcheck // shown to users verbatim

// APIError is a non-2xx answer from the analysis function.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("analysis function returned status %d", e.Status)
}

// RateLimited reports an HTTP 429 answer.
func (e *APIError) RateLimited() bool { return e.Status == http.StatusTooManyRequests }

// PaymentRequired reports an HTTP 402 answer.
func (e *APIError) PaymentRequired() bool { return e.Status == http.StatusPaymentRequired }

// Backend submits resume text for analysis.
type Backend interface {
	Analyze(ctx context.Context, resumeText string) (domain.Analysis, error)
}

// HTTPBackend posts {"resumeText": ...} to the analysis function.
type HTTPBackend struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

// NewHTTPBackend returns an HTTPBackend with its own http.Client.
func NewHTTPBackend(endpoint, apiKey string, timeout time.Duration) *HTTPBackend {
	return &HTTPBackend{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Client:   &http.Client{Timeout: timeout},
	}
}

const maxResponseBytes = 1 << 20

// Analyze makes exactly one request.
func (b *HTTPBackend) Analyze(ctx context.Context, resumeText string) (domain.Analysis, error) {
	body, err := json.Marshal(domain.AnalyzeRequest{ResumeText: resumeText})
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("op=client.Analyze: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.Endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("op=client.Analyze: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if key := strings.TrimSpace(b.APIKey); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
		req.Header.Set("apikey", key)
	}

	hc := b.Client
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("op=client.Analyze: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("op=client.Analyze: read response: %w", err)
	}
	var env domain.AnalyzeResponse
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Analysis{}, &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(env.Error)}
	}
	if decodeErr != nil || env.Analysis == nil {
		return domain.Analysis{}, ErrNoAnalysis
	}
	return *env.Analysis, nil
}
