package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/evyataryagoni/issflyover/internal/logger"
	"github.com/evyataryagoni/issflyover/internal/metrics"
	"github.com/evyataryagoni/issflyover/internal/models"
)

// Pipeline stages, used as log fields and metric labels
const (
	StageIP      = "ip"
	StageCoords  = "coords"
	StageFlyover = "flyover"
)

// Default upstream endpoints
const (
	DefaultIPLookupURL  = "https://api.ipify.org?format=json"
	DefaultGeoLookupURL = "http://ipwho.is/"
	DefaultFlyoverURL   = "https://iss-flyover.herokuapp.com/json/"
	DefaultUserAgent    = "issflyover/1.0"
)

// maxBodyBytes caps how much of an upstream response is read
const maxBodyBytes = 1 << 20

// maxErrorBody caps how much of a body is copied into an error message
const maxErrorBody = 512

// HTTPClient is the subset of *http.Client the fetcher needs
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures the upstream endpoints and transport
// Zero values fall back to the package defaults
type Options struct {
	IPLookupURL  string
	GeoLookupURL string // The IP is appended to this base URL
	FlyoverURL   string // lat/lon are added as query parameters
	UserAgent    string
	Timeout      time.Duration // Per-request timeout, 0 = none
	HTTPClient   HTTPClient    // Overrides the client built from Timeout
}

// Client fetches the caller's IP, its coordinates and ISS flyover passes
// Each method issues exactly one GET request and holds no state between calls
type Client struct {
	ipURL      string
	geoURL     string
	flyoverURL string
	userAgent  string
	httpClient HTTPClient
	metrics    *metrics.Metrics
	logger     *logger.Logger
}

// NewClient creates a new upstream client
//
// Parameters:
//   - opts: endpoints and transport settings
//   - m: metrics collector (optional, can be nil)
//   - log: logger (optional, can be nil)
func NewClient(opts Options, m *metrics.Metrics, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewDefault()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		ipURL:      valueOr(opts.IPLookupURL, DefaultIPLookupURL),
		geoURL:     valueOr(opts.GeoLookupURL, DefaultGeoLookupURL),
		flyoverURL: valueOr(opts.FlyoverURL, DefaultFlyoverURL),
		userAgent:  valueOr(opts.UserAgent, DefaultUserAgent),
		httpClient: httpClient,
		metrics:    m,
		logger:     log.WithComponent("Fetcher"),
	}
}

// FetchMyIP asks the IP lookup service for the caller's public IP address
// The returned address is trusted as-is
func (c *Client) FetchMyIP(ctx context.Context) (string, error) {
	log := c.logger.WithStage(StageIP)
	start := time.Now()

	status, body, err := c.get(ctx, c.ipURL)
	if err != nil {
		c.observe(StageIP, "transport_error", start)
		log.Error().Err(err).Str("url", c.ipURL).Msg("IP lookup request failed")
		return "", err
	}

	if status != http.StatusOK {
		c.observe(StageIP, "bad_status", start)
		log.Error().Int("status", status).Msg("IP lookup returned unexpected status")
		return "", fmt.Errorf("%w: status code %d when fetching IP. Response: %s",
			ErrUnexpectedStatus, status, truncate(body))
	}

	var resp models.IPResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.observe(StageIP, "decode_error", start)
		log.Error().Err(err).Msg("Failed to parse IP lookup response")
		return "", fmt.Errorf("%w: IP lookup: %v", ErrDecode, err)
	}

	c.observe(StageIP, "success", start)
	log.Debug().Str("ip", resp.IP).Msg("Fetched public IP")
	return resp.IP, nil
}

// FetchCoordsByIP geolocates ip
//
// The geolocation service answers 200 even for failed lookups, so the
// success flag in the body decides the outcome rather than the status code.
func (c *Client) FetchCoordsByIP(ctx context.Context, ip string) (*models.Coordinates, error) {
	log := c.logger.WithStage(StageCoords).WithIP(ip)
	start := time.Now()
	target := c.geoURL + url.PathEscape(ip)

	_, body, err := c.get(ctx, target)
	if err != nil {
		c.observe(StageCoords, "transport_error", start)
		log.Error().Err(err).Str("url", target).Msg("Geolocation request failed")
		return nil, err
	}

	var resp models.GeoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.observe(StageCoords, "decode_error", start)
		log.Error().Err(err).Msg("Failed to parse geolocation response")
		return nil, fmt.Errorf("%w: geolocation: %v", ErrDecode, err)
	}

	if !resp.Success {
		c.observe(StageCoords, "lookup_failed", start)
		log.Warn().Str("message", resp.Message).Msg("Geolocation lookup failed")
		return nil, fmt.Errorf("%w: success status was %t. Server message says: %s when fetching for IP %s",
			ErrLookupFailed, resp.Success, resp.Message, valueOr(resp.IP, ip))
	}

	c.observe(StageCoords, "success", start)
	log.Debug().
		Float64("latitude", resp.Latitude).
		Float64("longitude", resp.Longitude).
		Msg("Fetched coordinates")

	return &models.Coordinates{Latitude: resp.Latitude, Longitude: resp.Longitude}, nil
}

// FetchISSFlyOverTimes fetches upcoming ISS passes for coords
// The pass list is returned exactly as the service sent it
func (c *Client) FetchISSFlyOverTimes(ctx context.Context, coords models.Coordinates) ([]models.FlyoverPass, error) {
	log := c.logger.WithStage(StageFlyover)
	start := time.Now()

	target, err := flyoverURL(c.flyoverURL, coords)
	if err != nil {
		c.observe(StageFlyover, "transport_error", start)
		return nil, fmt.Errorf("%w: invalid flyover URL: %v", ErrTransport, err)
	}

	status, body, err := c.get(ctx, target)
	if err != nil {
		c.observe(StageFlyover, "transport_error", start)
		log.Error().Err(err).Str("url", target).Msg("Flyover request failed")
		return nil, err
	}

	if status != http.StatusOK {
		c.observe(StageFlyover, "bad_status", start)
		log.Error().Int("status", status).Msg("Flyover service returned unexpected status")
		return nil, fmt.Errorf("%w: status code %d when fetching ISS pass times: %s",
			ErrUnexpectedStatus, status, truncate(body))
	}

	var resp models.FlyoverResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.observe(StageFlyover, "decode_error", start)
		log.Error().Err(err).Msg("Failed to parse flyover response")
		return nil, fmt.Errorf("%w: flyover: %v", ErrDecode, err)
	}

	if resp.Message != "success" {
		c.observe(StageFlyover, "lookup_failed", start)
		log.Warn().Str("message", resp.Message).Msg("Flyover prediction failed")
		return nil, fmt.Errorf("%w: message status was %s", ErrLookupFailed, resp.Message)
	}

	c.observe(StageFlyover, "success", start)
	log.Debug().Int("passes", len(resp.Response)).Msg("Fetched flyover passes")
	return resp.Response, nil
}

// get issues a GET request and returns the status code and body
func (c *Client) get(ctx context.Context, target string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: failed to create request: %v", ErrTransport, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: there was an error: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: failed to read response: %v", ErrTransport, err)
	}

	return resp.StatusCode, body, nil
}

// observe records one upstream call
func (c *Client) observe(stage, result string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.UpstreamRequestsTotal.WithLabelValues(stage, result).Inc()
	c.metrics.UpstreamRequestDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// flyoverURL adds lat/lon to base, keeping any query it already has
func flyoverURL(base string, coords models.Coordinates) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
