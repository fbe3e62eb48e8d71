package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/evyataryagoni/issflyover/internal/models"
)

// CSVStore keeps an IP -> coordinates table loaded from a CSV file in memory
type CSVStore struct {
	data map[string]*models.Coordinates
}

// NewCSVStore creates a new CSV store by reading filePath
//
// CSV Format: ip,latitude,longitude (first row is a header)
// Example: 162.245.144.188,49.2827,-123.1207
//
// Rows with the wrong column count or unparseable numbers are skipped.
func NewCSVStore(filePath string) (*CSVStore, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return newCSVStoreFromReader(file)
}

func newCSVStoreFromReader(r io.Reader) (*CSVStore, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	store := &CSVStore{
		data: make(map[string]*models.Coordinates),
	}

	for i, record := range records {
		// Skip header row
		if i == 0 {
			continue
		}

		ip, coords, ok := parseRecord(record)
		if !ok {
			continue
		}
		store.data[ip] = coords
	}

	return store, nil
}

// parseRecord turns one ip,latitude,longitude row into coordinates
func parseRecord(record []string) (string, *models.Coordinates, bool) {
	if len(record) != 3 {
		return "", nil, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return "", nil, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return "", nil, false
	}

	return strings.TrimSpace(record[0]), &models.Coordinates{Latitude: lat, Longitude: lon}, true
}

// FindByIP looks up an IP address in the loaded table
func (s *CSVStore) FindByIP(_ context.Context, ip string) (*models.Coordinates, error) {
	coords, exists := s.data[ip]
	if !exists {
		return nil, ErrNotFound
	}

	// Copy so callers cannot mutate the table
	result := *coords
	return &result, nil
}

// Len returns the number of rows loaded
func (s *CSVStore) Len() int {
	return len(s.data)
}

// Close is a no-op, all data is in memory
func (s *CSVStore) Close() error {
	return nil
}
