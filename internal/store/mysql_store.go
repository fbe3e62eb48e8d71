package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evyataryagoni/issflyover/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// IPCoordinatesModel is the GORM model for the ip_coordinates table
type IPCoordinatesModel struct {
	IP        string  `gorm:"column:ip;primaryKey"`
	Latitude  float64 `gorm:"column:latitude"`
	Longitude float64 `gorm:"column:longitude"`
}

// TableName overrides GORM's pluralized default
func (IPCoordinatesModel) TableName() string {
	return "ip_coordinates"
}

// MySQLStore reads coordinates from MySQL through GORM
type MySQLStore struct {
	db *gorm.DB
}

// NewMySQLStore opens a MySQL store
//
// Parameters:
//   - dsn: Data Source Name
//     Format: user:password@tcp(host:port)/dbname?parseTime=true
//
// Returns:
//   - *MySQLStore: pointer to the created store
//   - error: any error that occurred during connection
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	return newMySQLStore(mysql.Open(dsn))
}

func newMySQLStore(dialector gorm.Dialector) (*MySQLStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	if err != nil {
		if db != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				sqlDB.Close()
			}
		}
		return nil, fmt.Errorf("failed to connect to MySQL with GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping MySQL database: %w", err)
	}

	return &MySQLStore{db: db}, nil
}

// FindByIP runs SELECT * FROM ip_coordinates WHERE ip = ? LIMIT 1
func (s *MySQLStore) FindByIP(ctx context.Context, ip string) (*models.Coordinates, error) {
	var record IPCoordinatesModel

	result := s.db.WithContext(ctx).Where("ip = ?", ip).First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database query failed: %w", result.Error)
	}

	return &models.Coordinates{
		Latitude:  record.Latitude,
		Longitude: record.Longitude,
	}, nil
}

// Close closes the database connection
func (s *MySQLStore) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
