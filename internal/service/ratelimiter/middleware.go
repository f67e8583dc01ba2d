package ratelimiter

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/punithkumar/resume-analyzer/internal/adapter/observability"
)

// KeyFunc derives the bucket key for a request, e.g. httprate.KeyByIP.
type KeyFunc func(r *http.Request) (string, error)

// Middleware enforces l per key. Denied requests get a Retry-After header
// and are passed to onLimited. Key or limiter errors let the request through.
func Middleware(l Limiter, bucket string, keyFn KeyFunc, onLimited http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := keyFn(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			allowed, retryAfter, err := l.Allow(r.Context(), bucket+":"+subject, 1)
			if err != nil {
				observability.LoggerFromContext(r.Context()).Warn("rate limiter unavailable, allowing request",
					"bucket", bucket, "error", err)
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(retryAfter)))
				onLimited(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
