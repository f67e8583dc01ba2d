package ratelimiter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeLimiter struct {
	allowed    bool
	retryAfter time.Duration
	err        error
	keys       []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string, _ int64) (bool, time.Duration, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.retryAfter, f.err
}

func keyByHeader(r *http.Request) (string, error) {
	if v := r.Header.Get("X-Client"); v != "" {
		return v, nil
	}
	return "", errors.New("no client")
}

func serve(l Limiter, header string) *httptest.ResponseRecorder {
	limited := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTooManyRequests) }
	h := Middleware(l, "analyze", keyByHeader, limited)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if header != "" {
		req.Header.Set("X-Client", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_Allows(t *testing.T) {
	l := &fakeLimiter{allowed: true}
	rec := serve(l, "1.2.3.4")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"analyze:1.2.3.4"}, l.keys)
}

func TestMiddleware_DeniesWithRetryAfter(t *testing.T) {
	l := &fakeLimiter{allowed: false, retryAfter: 1500 * time.Millisecond}
	rec := serve(l, "1.2.3.4")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
}

func TestMiddleware_FailOpen(t *testing.T) {
	l := &fakeLimiter{allowed: true, err: errors.New("redis down")}
	assert.Equal(t, http.StatusOK, serve(l, "1.2.3.4").Code)

	l = &fakeLimiter{allowed: false}
	assert.Equal(t, http.StatusOK, serve(l, "").Code, "key errors skip limiting")
	assert.Empty(t, l.keys)
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, retryAfterSeconds(0))
	assert.Equal(t, 20, retryAfterSeconds(20*time.Second))
}
