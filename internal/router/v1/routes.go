package v1

import (
	"github.com/evyataryagoni/issflyover/internal/handler"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes configures the /v1 endpoints
//
//	GET /v1/my-ip
//	GET /v1/coordinates?ip=<ip>
//	GET /v1/flyovers?lat=<lat>&lon=<lon>
//	GET /v1/next-passes
func SetupRoutes(issHandler *handler.ISSHandler) chi.Router {
	r := chi.NewRouter()

	r.Get("/my-ip", issHandler.MyIP)
	r.Get("/coordinates", issHandler.Coordinates)
	r.Get("/flyovers", issHandler.Flyovers)
	r.Get("/next-passes", issHandler.NextPasses)

	return r
}
