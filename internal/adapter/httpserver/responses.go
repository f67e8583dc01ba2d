// Package httpserver contains HTTP handlers and middleware for the resume
// analysis function.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/punithkumar/resume-analyzer/internal/domain"
)

// User-facing messages. Internal details stay in the logs.
const (
	MsgRateLimited     = "Too many requests. Please try again later."
	MsgUpstreamLimited = "Rate limit exceeded. Please try again later."
	MsgPaymentRequired = "Payment required. Please add credits to your workspace."
	MsgUpstream        = "AI gateway error"
	MsgNoToolCall      = "No tool call in AI response"
	MsgAnalyzeFailed   = "Failed to analyze resume"
	MsgExtractFailed   = "Unable to extract text from file"
	MsgUnsupportedType = "Please upload a PDF, DOC, DOCX, or TXT file."
	MsgTooLarge        = "Please upload a file smaller than 20MB."
	MsgNotConfigured   = "AI gateway is not configured"
	MsgInvalidRequest  = "Invalid request body"
	MsgTimedOut        = "Request timed out"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error onto the HTTP status and the message returned in
// the {"error": ...} envelope.
func statusFor(err error) (int, string) {
	var ce *domain.ConfigError
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ce):
		return http.StatusInternalServerError, ce.Error()
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusInternalServerError, MsgNotConfigured
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Msg
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, MsgInvalidRequest
	case errors.Is(err, domain.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType, MsgUnsupportedType
	case errors.Is(err, domain.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, MsgTooLarge
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, MsgRateLimited
	case errors.Is(err, domain.ErrUpstreamRateLimit):
		return http.StatusTooManyRequests, MsgUpstreamLimited
	case errors.Is(err, domain.ErrPaymentRequired):
		return http.StatusPaymentRequired, MsgPaymentRequired
	case errors.Is(err, domain.ErrNoToolCall):
		return http.StatusInternalServerError, MsgNoToolCall
	case errors.Is(err, domain.ErrSchemaInvalid):
		return http.StatusInternalServerError, MsgAnalyzeFailed
	case errors.Is(err, domain.ErrExtraction):
		return http.StatusInternalServerError, MsgExtractFailed
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusInternalServerError, MsgUpstream
	default:
		return http.StatusInternalServerError, MsgAnalyzeFailed
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusFor(err)
	lg := LoggerFrom(r)
	if code >= http.StatusInternalServerError {
		lg.Error("request failed", "status", code, "error", err)
	} else {
		lg.Warn("request rejected", "status", code, "error", err)
	}
	writeJSON(w, code, domain.AnalyzeResponse{Error: msg})
}
