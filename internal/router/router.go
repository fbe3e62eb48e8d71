package router

import (
	"net/http"

	_ "github.com/evyataryagoni/issflyover/docs" // Swagger docs
	"github.com/evyataryagoni/issflyover/internal/handler"
	"github.com/evyataryagoni/issflyover/internal/limiter"
	"github.com/evyataryagoni/issflyover/internal/logger"
	"github.com/evyataryagoni/issflyover/internal/metrics"
	custommiddleware "github.com/evyataryagoni/issflyover/internal/middleware"
	v1 "github.com/evyataryagoni/issflyover/internal/router/v1"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// SetupRouter creates the Chi router with all middleware and routes
//
// Parameters:
//   - issHandler: the ISS pipeline handler
//   - rateLimiter: inbound rate limiter (limiter.Unlimited when disabled)
//   - m: metrics collector
//   - log: structured logger
//
// Returns:
//   - chi.Router: configured router ready to use
func SetupRouter(issHandler *handler.ISSHandler, rateLimiter limiter.Limiter, m *metrics.Metrics, log *logger.Logger) chi.Router {
	r := chi.NewRouter()

	// Order matters: RequestID before logging, RealIP before rate limiting
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.LoggingMiddleware(log))
	r.Use(middleware.Recoverer)
	r.Use(custommiddleware.RateLimitMiddleware(rateLimiter))
	r.Use(custommiddleware.MetricsMiddleware(m))

	r.Mount("/v1", v1.SetupRoutes(issHandler))

	// Unversioned operational endpoints
	r.Get("/health", healthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	// Access at: http://localhost:3000/swagger/index.html
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}

// healthCheckHandler reports liveness only; upstreams are not probed
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
