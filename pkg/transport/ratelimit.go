package transport

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/Janani-6874/dataagent/pkg/api"
	"github.com/Janani-6874/dataagent/pkg/observability"
)

// RateLimit returns middleware that admits requests through a token
// bucket refilled at rps with the given burst. Rejected requests get a
// 429 too_many_requests error. A non-positive rps disables the limit and
// returns nil, which Chain skips.
func RateLimit(rps float64, burst int) Middleware {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				observability.RateLimitRejectedTotal.Inc()
				w.Header().Set("Retry-After", "1")
				WriteAPIError(w, api.NewTooManyRequestsError("rate limit exceeded, retry later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
