package store

import (
	"context"
	"errors"

	"github.com/evyataryagoni/issflyover/internal/models"
)

// ErrNotFound is returned when a backend has no coordinates for an IP
var ErrNotFound = errors.New("IP address not found")

// Store is an offline IP -> coordinates table
// Allows multiple implementations (CSV, MySQL, Redis, MaxMind) and easy testing with mocks
type Store interface {
	// FindByIP returns the coordinates recorded for ip, or ErrNotFound
	// Network backends abandon the query when ctx is done
	FindByIP(ctx context.Context, ip string) (*models.Coordinates, error)

	// Close cleans up resources (database connections, file handles, etc.)
	Close() error
}
