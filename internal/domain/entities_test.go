package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpstreamError_UnwrapsByStatus(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{429, ErrUpstreamRateLimit},
		{402, ErrPaymentRequired},
		{500, ErrUpstream},
		{400, ErrUpstream},
		{401, ErrUpstream},
	}
	for _, c := range cases {
		err := error(&UpstreamError{Provider: "gateway", Status: c.status})
		assert.True(t, errors.Is(err, c.want), "status %d", c.status)
	}
	assert.False(t, errors.Is(&UpstreamError{Status: 429}, ErrPaymentRequired))
	assert.Equal(t, "gateway: status 503", (&UpstreamError{Provider: "gateway", Status: 503}).Error())
}

func TestIsAllowedDocumentMIME(t *testing.T) {
	allowed := []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"text/plain",
		"text/plain; charset=utf-8",
		"Application/PDF",
	}
	for _, m := range allowed {
		assert.True(t, IsAllowedDocumentMIME(m), m)
	}
	rejected := []string{"", "text/html", "image/png", "application/octet-stream", "application/zip", "text/csv"}
	for _, m := range rejected {
		assert.False(t, IsAllowedDocumentMIME(m), m)
	}
}

func TestBaseMIME(t *testing.T) {
	assert.Equal(t, "text/plain", BaseMIME("text/plain; charset=utf-8"))
	assert.Equal(t, "application/pdf", BaseMIME(" application/pdf "))
	assert.Equal(t, "", BaseMIME(""))
	assert.Equal(t, "text/plain", BaseMIME("TEXT/PLAIN;;bad"))
}

func TestConfigError(t *testing.T) {
	err := error(&ConfigError{Var: "AI_GATEWAY_API_KEY"})
	assert.True(t, errors.Is(err, ErrNotConfigured))
	assert.Equal(t, "AI_GATEWAY_API_KEY is not configured", err.Error())

	var ce *ConfigError
	wrapped := fmt.Errorf("op=usecase.Analyze: %w", err)
	assert.True(t, errors.As(wrapped, &ce))
	assert.Equal(t, "AI_GATEWAY_API_KEY", ce.Var)
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("op=x: %w", Invalid("resumeText is required"))
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "resumeText is required", ve.Msg)
	assert.Equal(t, "op=x: invalid argument: resumeText is required", err.Error())
}
