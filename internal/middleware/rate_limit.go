package middleware

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/evyataryagoni/issflyover/internal/limiter"
	"github.com/evyataryagoni/issflyover/internal/models"
)

// RateLimitMiddleware rejects clients over their budget with 429
//
// The client is identified by the host part of r.RemoteAddr. Run chi's
// RealIP middleware first when the server sits behind a proxy.
func RateLimitMiddleware(lim limiter.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow(clientKey(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(models.ErrorResponse{
					Error: "Rate limit exceeded. Please try again later.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey strips the port from RemoteAddr; RealIP leaves a bare address
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
