package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punithkumar/resume-analyzer/internal/adapter/ai"
	"github.com/punithkumar/resume-analyzer/internal/domain"
)

type capturedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Tools []struct {
		Type     string `json:"type"`
		Function struct {
			Name       string         `json:"name"`
			Parameters map[string]any `json:"parameters"`
		} `json:"function"`
	} `json:"tools"`
	ToolChoice struct {
		Type     string `json:"type"`
		Function struct {
			Name string `json:"name"`
		} `json:"function"`
	} `json:"tool_choice"`
}

func toolCallResponse(args string) map[string]any {
	return map[string]any{
		"id":    "chatcmpl-1",
		"model": "google/gemini-2.5-flash",
		"choices": []map[string]any{{
			"index": 0,
			"message": map[string]any{
				"role": "assistant",
				"tool_calls": []map[string]any{{
					"id":       "call_1",
					"type":     "function",
					"function": map[string]any{"name": ai.ToolName, "arguments": args},
				}},
			},
			"finish_reason": "tool_calls",
		}},
		"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 40, "total_tokens": 160},
	}
}

func newGateway(t *testing.T, h http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(ts.Close)
	return New("test-key", ts.URL+"/v1/", "google/gemini-2.5-flash", ts.Client()), &calls
}

func TestScore_SendsForcedToolCallAndDecodesArguments(t *testing.T) {
	var got capturedRequest
	c, calls := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toolCallResponse(`{"score":77,"summary":"Good.","strengths":["a","b"],"improvements":["c"],"recommendations":["d","e","f"]}`))
	})

	a, err := c.Score(context.Background(), "Jane Doe\nGo developer")
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))

	assert.Equal(t, 77.0, a.Score)
	assert.Equal(t, []string{"a", "b"}, a.Strengths)
	assert.Equal(t, []string{"c"}, a.Improvements)
	assert.Equal(t, []string{"d", "e", "f"}, a.Recommendations)

	assert.Equal(t, "google/gemini-2.5-flash", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, ai.SystemPrompt, got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "Analyze this resume:\n\nJane Doe\nGo developer", got.Messages[1].Content)
	require.Len(t, got.Tools, 1)
	assert.Equal(t, "function", got.Tools[0].Type)
	assert.Equal(t, ai.ToolName, got.Tools[0].Function.Name)
	assert.Equal(t, false, got.Tools[0].Function.Parameters["additionalProperties"])
	assert.Equal(t, "function", got.ToolChoice.Type)
	assert.Equal(t, ai.ToolName, got.ToolChoice.Function.Name)
}

func TestScore_StatusMapping_NoRetry(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"rate limit json", http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit"}}`, domain.ErrUpstreamRateLimit},
		{"rate limit text", http.StatusTooManyRequests, `too many`, domain.ErrUpstreamRateLimit},
		{"payment json", http.StatusPaymentRequired, `{"error":{"message":"no credits"}}`, domain.ErrPaymentRequired},
		{"payment text", http.StatusPaymentRequired, `payment required`, domain.ErrPaymentRequired},
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom"}}`, domain.ErrUpstream},
		{"bad gateway", http.StatusBadGateway, `<html>bad gateway</html>`, domain.ErrUpstream},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, domain.ErrUpstream},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, calls := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := c.Score(context.Background(), "text")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			var up *domain.UpstreamError
			require.True(t, errors.As(err, &up))
			assert.Equal(t, tc.status, up.Status)
			assert.EqualValues(t, 1, atomic.LoadInt32(calls), "gateway must not be retried")
		})
	}
}

func TestScore_NoToolCall(t *testing.T) {
	c, _ := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": "Here is my analysis..."}}},
		})
	})
	_, err := c.Score(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoToolCall))
}

func TestScore_EmptyChoices(t *testing.T) {
	c, _ := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})
	_, err := c.Score(context.Background(), "text")
	assert.True(t, errors.Is(err, domain.ErrNoToolCall))
}

func TestScore_MalformedArguments(t *testing.T) {
	c, _ := newGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toolCallResponse(`{"score": 80, "summary": `))
	})
	_, err := c.Score(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSchemaInvalid))
}

func TestScore_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()
	c := New("k", url, "m", nil)
	_, err := c.Score(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))
	var up *domain.UpstreamError
	assert.False(t, errors.As(err, &up))
}
