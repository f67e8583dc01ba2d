// Package domain holds the resume analysis types, ports and error taxonomy.
package domain

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotConfigured     = errors.New("not configured")
	ErrRateLimited       = errors.New("rate limited")
	ErrUnsupportedMedia  = errors.New("unsupported media type")
	ErrPayloadTooLarge   = errors.New("payload too large")
	ErrUpstreamRateLimit = errors.New("upstream rate limit")
	ErrPaymentRequired   = errors.New("upstream payment required")
	ErrUpstream          = errors.New("upstream error")
	ErrNoToolCall        = errors.New("no tool call in ai response")
	ErrSchemaInvalid     = errors.New("schema invalid")
	ErrExtraction        = errors.New("text extraction failed")
	ErrInternal          = errors.New("internal error")
)

// MaxDocumentBytes is the largest document accepted for analysis.
const MaxDocumentBytes int64 = 20 * 1024 * 1024

// Accepted document MIME types.
const (
	MIMEPDF       = "application/pdf"
	MIMEDOC       = "application/msword"
	MIMEDOCX      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEPlainText = "text/plain"
)

// AllowedDocumentMIME lists the accepted document types in display order.
var AllowedDocumentMIME = []string{MIMEPDF, MIMEDOC, MIMEDOCX, MIMEPlainText}

// BaseMIME strips parameters (e.g. charset) and lowercases a media type.
func BaseMIME(m string) string {
	m = strings.TrimSpace(m)
	if m == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(m); err == nil {
		return strings.ToLower(mt)
	}
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	return strings.ToLower(strings.TrimSpace(m))
}

// IsAllowedDocumentMIME reports whether m (parameters ignored) is accepted.
func IsAllowedDocumentMIME(m string) bool {
	base := BaseMIME(m)
	for _, a := range AllowedDocumentMIME {
		if base == a {
			return true
		}
	}
	return false
}

// Analysis is the structured feedback produced for one resume.
// Invariants: Score in [0,100]; the three lists are present (may be empty).
type Analysis struct {
	Score           float64  `json:"score" yaml:"score" mapstructure:"score" validate:"gte=0,lte=100"`
	Summary         string   `json:"summary" yaml:"summary" mapstructure:"summary"`
	Strengths       []string `json:"strengths" yaml:"strengths" mapstructure:"strengths" validate:"required"`
	Improvements    []string `json:"improvements" yaml:"improvements" mapstructure:"improvements" validate:"required"`
	Recommendations []string `json:"recommendations" yaml:"recommendations" mapstructure:"recommendations" validate:"required"`
}

// AnalyzeRequest is the body accepted by the analysis function.
type AnalyzeRequest struct {
	ResumeText string `json:"resumeText" validate:"required"`
}

// AnalyzeResponse is the envelope returned by the analysis function.
// Exactly one of Analysis or Error is set.
type AnalyzeResponse struct {
	Analysis *Analysis `json:"analysis,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// UpstreamError describes a non-success answer from the upstream gateway.
// It unwraps to the sentinel matching its status code.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: status %d", e.Provider, e.Status)
}

// Unwrap maps the upstream status onto the error taxonomy.
func (e *UpstreamError) Unwrap() error {
	switch e.Status {
	case 429:
		return ErrUpstreamRateLimit
	case 402:
		return ErrPaymentRequired
	default:
		return ErrUpstream
	}
}

// ValidationError is a caller mistake with a message safe to return as-is.
// It unwraps to ErrInvalidArgument.
type ValidationError struct {
	Msg string
}

// Invalid returns a ValidationError carrying msg.
func Invalid(msg string) error { return &ValidationError{Msg: msg} }

func (e *ValidationError) Error() string { return ErrInvalidArgument.Error() + ": " + e.Msg }

// Unwrap returns ErrInvalidArgument.
func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }

// ConfigError names a required setting that is missing. It unwraps to
// ErrNotConfigured and its message is safe to return to callers.
type ConfigError struct {
	Var string
}

func (e *ConfigError) Error() string { return e.Var + " is not configured" }

// Unwrap returns ErrNotConfigured.
func (e *ConfigError) Unwrap() error { return ErrNotConfigured }

// Ports

// ResumeScorer asks an upstream model to score resume text. Implementations
// make exactly one upstream call per invocation.
type ResumeScorer interface {
	Score(ctx Context, resumeText string) (Analysis, error)
}

// TextExtractor turns an uploaded document into plain text.
type TextExtractor interface {
	Extract(ctx Context, fileName, mimeType string, data []byte) (string, error)
}

// Context is an alias to keep port signatures short.
type Context = context.Context
