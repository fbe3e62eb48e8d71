package store

import (
	"fmt"
	"strings"
)

// Config selects and configures an offline geolocation backend
type Config struct {
	Type string // "csv", "mysql", "redis" or "mmdb"

	CSVPath  string
	MySQLDSN string
	MMDBPath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// New opens the backend named by cfg.Type
func New(cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)

	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "csv":
		s, err = NewCSVStore(cfg.CSVPath)
	case "mysql":
		s, err = NewMySQLStore(cfg.MySQLDSN)
	case "redis":
		s, err = NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case "mmdb":
		s, err = NewMMDBStore(cfg.MMDBPath)
	default:
		return nil, fmt.Errorf("unknown datastore type: %s (supported: 'csv', 'mysql', 'redis', 'mmdb')", cfg.Type)
	}

	// Avoid handing back a typed nil inside a non-nil interface
	if err != nil {
		return nil, err
	}
	return s, nil
}
