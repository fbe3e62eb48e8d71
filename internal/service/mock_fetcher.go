package service

import (
	"context"

	"github.com/evyataryagoni/issflyover/internal/models"
)

// MockFetcher is a test double for all three pipeline stages
// It returns configured values and records every call in order
type MockFetcher struct {
	IP     string
	Coords *models.Coordinates
	Passes []models.FlyoverPass

	IPError      error
	CoordsError  error
	FlyoverError error

	// Calls lists stage names in call order ("ip", "coords", "flyover")
	Calls             []string
	CoordsCalledWith  []string
	FlyoverCalledWith []models.Coordinates
}

// NewMockFetcher creates a mock that succeeds with the canonical test data
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		IP:     "162.245.144.188",
		Coords: &models.Coordinates{Latitude: 38.0, Longitude: -122.0},
		Passes: []models.FlyoverPass{models.NewFlyoverPass(100, 60)},
	}
}

// FetchMyIP implements IPFetcher
func (m *MockFetcher) FetchMyIP(ctx context.Context) (string, error) {
	m.Calls = append(m.Calls, "ip")
	if m.IPError != nil {
		return "", m.IPError
	}
	return m.IP, nil
}

// FetchCoordsByIP implements CoordsFetcher
func (m *MockFetcher) FetchCoordsByIP(ctx context.Context, ip string) (*models.Coordinates, error) {
	m.Calls = append(m.Calls, "coords")
	m.CoordsCalledWith = append(m.CoordsCalledWith, ip)
	if m.CoordsError != nil {
		return nil, m.CoordsError
	}
	return m.Coords, nil
}

// FetchISSFlyOverTimes implements FlyoverFetcher
func (m *MockFetcher) FetchISSFlyOverTimes(ctx context.Context, coords models.Coordinates) ([]models.FlyoverPass, error) {
	m.Calls = append(m.Calls, "flyover")
	m.FlyoverCalledWith = append(m.FlyoverCalledWith, coords)
	if m.FlyoverError != nil {
		return nil, m.FlyoverError
	}
	return m.Passes, nil
}
