package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	pkgerrors "braingraph/pkg/errors"
	"braingraph/pkg/ratelimit"
)

// RateLimit rejects clients over their budget with 429 and a Retry-After
// header. Clients are keyed by remote IP, so it must run after RealIP.
func RateLimit(limiter ratelimit.Limiter, errors *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			allowed, retryAfter, err := limiter.Allow(r.Context(), key)
			if err != nil {
				errors.Handle(w, r, err)
				return
			}
			if !allowed {
				logger.Debug("rate limited", zap.String("client", key), zap.Duration("retry_after", retryAfter))
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				errors.Handle(w, r, pkgerrors.NewRateLimitError(retryAfter))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
