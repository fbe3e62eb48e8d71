package service

import (
	"context"
	"errors"

	"github.com/evyataryagoni/issflyover/internal/fetcher"
	"github.com/evyataryagoni/issflyover/internal/logger"
	"github.com/evyataryagoni/issflyover/internal/metrics"
	"github.com/evyataryagoni/issflyover/internal/models"
	"github.com/go-playground/validator/v10"
)

// Input validation errors, reported to API clients as 400
var (
	ErrInvalidIP          = errors.New("invalid IP address format")
	ErrInvalidCoordinates = errors.New("invalid coordinates: latitude must be within [-90, 90] and longitude within [-180, 180]")
)

// IPFetcher returns the caller's public IP address
type IPFetcher interface {
	FetchMyIP(ctx context.Context) (string, error)
}

// CoordsFetcher geolocates an IP address
type CoordsFetcher interface {
	FetchCoordsByIP(ctx context.Context, ip string) (*models.Coordinates, error)
}

// FlyoverFetcher predicts ISS passes over a location
type FlyoverFetcher interface {
	FetchISSFlyOverTimes(ctx context.Context, coords models.Coordinates) ([]models.FlyoverPass, error)
}

// coordinatesInput carries user-supplied coordinates through the validator
type coordinatesInput struct {
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
}

// ISSService sits between the handlers/CLI and the upstream fetchers
//
// Responsibilities:
//   - Validate user input (IP format, coordinate ranges)
//   - Run the ip -> coords -> flyover pipeline in order
//   - Record pipeline metrics
type ISSService struct {
	ips       IPFetcher
	coords    CoordsFetcher
	flyovers  FlyoverFetcher
	validator *validator.Validate
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

// NewISSService creates a new ISS service
//
// Parameters:
//   - ips, coords, flyovers: the three pipeline stages (usually one *fetcher.Client,
//     or a StoreLocator in place of coords)
//   - m: metrics collector (optional, can be nil)
//   - log: logger (optional, can be nil)
func NewISSService(ips IPFetcher, coords CoordsFetcher, flyovers FlyoverFetcher, m *metrics.Metrics, log *logger.Logger) *ISSService {
	if log == nil {
		log = logger.NewDefault()
	}
	return &ISSService{
		ips:       ips,
		coords:    coords,
		flyovers:  flyovers,
		validator: validator.New(),
		metrics:   m,
		logger:    log.WithComponent("ISSService"),
	}
}

// MyIP returns the caller's public IP address
func (s *ISSService) MyIP(ctx context.Context) (string, error) {
	return s.ips.FetchMyIP(ctx)
}

// Coordinates validates ip and geolocates it
func (s *ISSService) Coordinates(ctx context.Context, ip string) (*models.Coordinates, error) {
	if err := s.validator.Var(ip, "required,ip"); err != nil {
		s.logger.Warn().Str("ip", ip).Msg("Invalid IP address format")
		return nil, ErrInvalidIP
	}

	return s.coords.FetchCoordsByIP(ctx, ip)
}

// Flyovers validates the coordinates and fetches passes over them
func (s *ISSService) Flyovers(ctx context.Context, latitude, longitude float64) ([]models.FlyoverPass, error) {
	input := coordinatesInput{Latitude: latitude, Longitude: longitude}
	if err := s.validator.Struct(input); err != nil {
		s.logger.Warn().
			Float64("latitude", latitude).
			Float64("longitude", longitude).
			Msg("Invalid coordinates")
		return nil, ErrInvalidCoordinates
	}

	return s.flyovers.FetchISSFlyOverTimes(ctx, models.Coordinates{Latitude: latitude, Longitude: longitude})
}

// NextISSTimesForMyLocation runs the full pipeline
//
// Flow:
//  1. Fetch the public IP
//  2. Geolocate it
//  3. Fetch flyover passes for those coordinates
//
// Each step starts only after the previous one returned. The first error is
// returned unchanged with a nil pass list; later stages are never called.
// The IP and coordinates from upstream are trusted and not re-validated.
func (s *ISSService) NextISSTimesForMyLocation(ctx context.Context) ([]models.FlyoverPass, error) {
	ip, err := s.ips.FetchMyIP(ctx)
	if err != nil {
		return nil, s.fail(fetcher.StageIP, err)
	}

	coords, err := s.coords.FetchCoordsByIP(ctx, ip)
	if err != nil {
		return nil, s.fail(fetcher.StageCoords, err)
	}

	passes, err := s.flyovers.FetchISSFlyOverTimes(ctx, *coords)
	if err != nil {
		return nil, s.fail(fetcher.StageFlyover, err)
	}

	s.logger.Info().
		Str("ip", ip).
		Float64("latitude", coords.Latitude).
		Float64("longitude", coords.Longitude).
		Int("passes", len(passes)).
		Msg("Next ISS passes fetched")

	if s.metrics != nil {
		s.metrics.PipelineRunsTotal.WithLabelValues("success").Inc()
		s.metrics.PassesReturned.Observe(float64(len(passes)))
	}

	return passes, nil
}

// fail records a pipeline stopped at stage and returns err untouched
func (s *ISSService) fail(stage string, err error) error {
	s.logger.Error().Err(err).Str("stage", stage).Msg("Pipeline stopped")
	if s.metrics != nil {
		s.metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
		s.metrics.PipelineStageFailures.WithLabelValues(stage).Inc()
	}
	return err
}

// IsInvalidInput reports whether err is a validation error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidIP) || errors.Is(err, ErrInvalidCoordinates)
}
