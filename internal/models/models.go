package models

// Coordinates is the approximate location of an IP address
// Latitude and longitude are copied verbatim from the geolocation source
type Coordinates struct {
	Latitude  float64 `json:"latitude"`  // Degrees north, -90..90
	Longitude float64 `json:"longitude"` // Degrees east, -180..180
}

// IPResponse is the body returned by the IP lookup service
// It is also what GET /v1/my-ip responds with
type IPResponse struct {
	IP string `json:"ip"` // Public IP address of the caller
}

// GeoResponse is the body returned by the geolocation service (ipwho.is format)
// Only the fields the pipeline reads are declared
type GeoResponse struct {
	Success   bool    `json:"success"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Message   string  `json:"message,omitempty"` // Set when success is false
	IP        string  `json:"ip,omitempty"`      // Echo of the requested IP
}

// FlyoverResponse is the body returned by the ISS flyover prediction service
type FlyoverResponse struct {
	Message  string        `json:"message"`  // "success" when the prediction worked
	Response []FlyoverPass `json:"response"` // Upcoming passes, upstream order
}

// PassesResponse wraps a list of flyover passes for API responses
type PassesResponse struct {
	Passes []FlyoverPass `json:"passes"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error string `json:"error"` // Error message
}
