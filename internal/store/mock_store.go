package store

import (
	"context"

	"github.com/evyataryagoni/issflyover/internal/models"
)

// MockStore is a test double for the Store interface
// It allows tests to control behavior and verify interactions
type MockStore struct {
	// Data holds the mock data (IP address -> coordinates)
	Data map[string]*models.Coordinates

	// Track method calls for verification in tests
	FindByIPCalls []string
	CloseCalled   bool

	// Control behavior for error scenarios
	FindByIPError error
	CloseError    error
}

// NewMockStore creates a mock store with a few known IPs
func NewMockStore() *MockStore {
	return &MockStore{
		Data: map[string]*models.Coordinates{
			"162.245.144.188": {Latitude: 38.0, Longitude: -122.0},
			"8.8.8.8":         {Latitude: 37.386, Longitude: -122.0838},
		},
		FindByIPCalls: []string{},
	}
}

// NewEmptyMockStore creates a mock store with no data
func NewEmptyMockStore() *MockStore {
	return &MockStore{
		Data:          map[string]*models.Coordinates{},
		FindByIPCalls: []string{},
	}
}

// FindByIP implements the Store interface
func (m *MockStore) FindByIP(_ context.Context, ip string) (*models.Coordinates, error) {
	m.FindByIPCalls = append(m.FindByIPCalls, ip)

	if m.FindByIPError != nil {
		return nil, m.FindByIPError
	}

	coords, exists := m.Data[ip]
	if !exists {
		return nil, ErrNotFound
	}

	return coords, nil
}

// Close implements the Store interface
func (m *MockStore) Close() error {
	m.CloseCalled = true
	return m.CloseError
}
