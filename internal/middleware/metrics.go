package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/evyataryagoni/issflyover/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MetricsMiddleware records count, latency and sizes for each request
// Requests are labelled by chi route pattern so path parameters do not
// create new series; unmatched paths share the "unmatched" label.
func MetricsMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := routePattern(r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			code := strconv.Itoa(status)

			if r.ContentLength > 0 {
				m.HTTPRequestSize.WithLabelValues(r.Method, route).Observe(float64(r.ContentLength))
			}
			m.HTTPRequestsTotal.WithLabelValues(r.Method, route, code).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, route, code).Observe(time.Since(start).Seconds())
			m.HTTPResponseSize.WithLabelValues(r.Method, route, code).Observe(float64(ww.BytesWritten()))
		})
	}
}

// routePattern returns the matched chi pattern, read after the handler ran
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return "unmatched"
}
