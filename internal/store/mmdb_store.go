package store

import (
	"context"
	"fmt"
	"net"

	"github.com/evyataryagoni/issflyover/internal/models"
	"github.com/oschwald/geoip2-golang"
)

// MMDBStore reads coordinates from a MaxMind GeoLite2/GeoIP2 City database
type MMDBStore struct {
	db *geoip2.Reader
}

// NewMMDBStore opens the .mmdb file at path
func NewMMDBStore(path string) (*MMDBStore, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MaxMind database: %w", err)
	}
	return &MMDBStore{db: db}, nil
}

// FindByIP returns the city-level location of ip
// Unparseable IPs and IPs without a location both count as not found
func (s *MMDBStore) FindByIP(_ context.Context, ip string) (*models.Coordinates, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, ErrNotFound
	}

	record, err := s.db.City(parsed)
	if err != nil {
		return nil, fmt.Errorf("MaxMind lookup failed: %w", err)
	}

	// An all-zero location means the database has no entry
	if record.Location.Latitude == 0 && record.Location.Longitude == 0 {
		return nil, ErrNotFound
	}

	return &models.Coordinates{
		Latitude:  record.Location.Latitude,
		Longitude: record.Location.Longitude,
	}, nil
}

// Close releases the memory-mapped database
func (s *MMDBStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
