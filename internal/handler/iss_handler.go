package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/evyataryagoni/issflyover/internal/fetcher"
	"github.com/evyataryagoni/issflyover/internal/models"
	"github.com/evyataryagoni/issflyover/internal/service"
)

// ISSHandler handles HTTP requests for the ISS pipeline
// This is the handler layer - it deals with HTTP concerns only
//
// Responsibilities:
//   - Parse query parameters
//   - Call service methods
//   - Map errors to status codes (400 invalid input, 502 upstream, 500 other)
//   - Format JSON responses
type ISSHandler struct {
	service *service.ISSService
}

// NewISSHandler creates a new handler with the given service
func NewISSHandler(service *service.ISSService) *ISSHandler {
	return &ISSHandler{
		service: service,
	}
}

// MyIP handles GET /v1/my-ip
// @Summary      Public IP of this server
// @Description  Asks the IP lookup service for the server's public IP address
// @Tags         ISS
// @Produce      json
// @Success      200  {object}   models.IPResponse
// @Failure      502  {object}   models.ErrorResponse  "Upstream failure"
// @Router       /v1/my-ip [get]
func (h *ISSHandler) MyIP(w http.ResponseWriter, r *http.Request) {
	ip, err := h.service.MyIP(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, models.IPResponse{IP: ip})
}

// Coordinates handles GET /v1/coordinates?ip=<ip>
// @Summary      Geolocate an IP address
// @Description  Returns approximate latitude and longitude for an IP address
// @Tags         ISS
// @Produce      json
// @Param        ip   query      string  true  "IP address (IPv4 or IPv6)"  example(162.245.144.188)
// @Success      200  {object}   models.Coordinates
// @Failure      400  {object}   models.ErrorResponse  "Invalid IP format"
// @Failure      502  {object}   models.ErrorResponse  "Upstream failure"
// @Router       /v1/coordinates [get]
func (h *ISSHandler) Coordinates(w http.ResponseWriter, r *http.Request) {
	ip := r.URL.Query().Get("ip")
	if ip == "" {
		h.respondError(w, http.StatusBadRequest, "Missing 'ip' query parameter")
		return
	}

	coords, err := h.service.Coordinates(r.Context(), ip)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, coords)
}

// Flyovers handles GET /v1/flyovers?lat=<lat>&lon=<lon>
// @Summary      ISS passes over a location
// @Description  Returns upcoming ISS flyover passes for the given coordinates
// @Tags         ISS
// @Produce      json
// @Param        lat  query      number  true  "Latitude (-90..90)"     example(38.0)
// @Param        lon  query      number  true  "Longitude (-180..180)"  example(-122.0)
// @Success      200  {object}   models.PassesResponse
// @Failure      400  {object}   models.ErrorResponse  "Invalid coordinates"
// @Failure      502  {object}   models.ErrorResponse  "Upstream failure"
// @Router       /v1/flyovers [get]
func (h *ISSHandler) Flyovers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	latStr, lonStr := query.Get("lat"), query.Get("lon")
	if latStr == "" || lonStr == "" {
		h.respondError(w, http.StatusBadRequest, "Missing 'lat' or 'lon' query parameter")
		return
	}

	lat, latErr := strconv.ParseFloat(latStr, 64)
	lon, lonErr := strconv.ParseFloat(lonStr, 64)
	if latErr != nil || lonErr != nil {
		h.respondError(w, http.StatusBadRequest, service.ErrInvalidCoordinates.Error())
		return
	}

	passes, err := h.service.Flyovers(r.Context(), lat, lon)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, newPassesResponse(passes))
}

// NextPasses handles GET /v1/next-passes
// @Summary      Next ISS passes over this server
// @Description  Runs IP lookup, geolocation and flyover prediction in sequence
// @Tags         ISS
// @Produce      json
// @Success      200  {object}   models.PassesResponse
// @Failure      502  {object}   models.ErrorResponse  "Upstream failure"
// @Router       /v1/next-passes [get]
func (h *ISSHandler) NextPasses(w http.ResponseWriter, r *http.Request) {
	passes, err := h.service.NextISSTimesForMyLocation(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, newPassesResponse(passes))
}

// newPassesResponse wraps passes, encoding a missing list as []
func newPassesResponse(passes []models.FlyoverPass) models.PassesResponse {
	if passes == nil {
		passes = []models.FlyoverPass{}
	}
	return models.PassesResponse{Passes: passes}
}

// respondServiceError maps a service error to a status code
func (h *ISSHandler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case service.IsInvalidInput(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case fetcher.IsUpstream(err):
		h.respondError(w, http.StatusBadGateway, err.Error())
	default:
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// respondJSON writes a JSON response with the given status code
func (h *ISSHandler) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent, nothing left to change
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondError writes an error response with consistent formatting
func (h *ISSHandler) respondError(w http.ResponseWriter, statusCode int, message string) {
	h.respondJSON(w, statusCode, models.ErrorResponse{Error: message})
}
