package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// setupMockDB creates a mock database for testing
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open gorm db: %v", err)
	}

	return db, mock, sqlDB
}

// TestMySQLStore_FindByIP_Success tests successful lookup
func TestMySQLStore_FindByIP_Success(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := &MySQLStore{db: db}

	// GORM adds LIMIT 1 to First() queries
	rows := sqlmock.NewRows([]string{"ip", "latitude", "longitude"}).
		AddRow("162.245.144.188", 38.0, -122.0)

	mock.ExpectQuery("SELECT \\* FROM `ip_coordinates` WHERE ip = \\? .*").
		WithArgs("162.245.144.188", 1).
		WillReturnRows(rows)

	coords, err := store.FindByIP(context.Background(), "162.245.144.188")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coords.Latitude != 38.0 || coords.Longitude != -122.0 {
		t.Errorf("unexpected coordinates: %+v", coords)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestMySQLStore_FindByIP_NotFound tests IP not in the table
func TestMySQLStore_FindByIP_NotFound(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := &MySQLStore{db: db}

	mock.ExpectQuery("SELECT \\* FROM `ip_coordinates` WHERE ip = \\? .*").
		WithArgs("10.0.0.1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"ip", "latitude", "longitude"}))

	coords, err := store.FindByIP(context.Background(), "10.0.0.1")

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if coords != nil {
		t.Error("expected nil coordinates, got data")
	}
}

// TestMySQLStore_FindByIP_DatabaseError tests query failures
func TestMySQLStore_FindByIP_DatabaseError(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := &MySQLStore{db: db}

	mock.ExpectQuery("SELECT \\* FROM `ip_coordinates` WHERE ip = \\? .*").
		WithArgs("8.8.8.8", 1).
		WillReturnError(errors.New("connection reset"))

	_, err := store.FindByIP(context.Background(), "8.8.8.8")

	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("database errors must not be reported as not found")
	}
}

// TestMySQLStore_Close tests closing the connection
func TestMySQLStore_Close(t *testing.T) {
	db, mock, _ := setupMockDB(t)
	mock.ExpectClose()

	store := &MySQLStore{db: db}

	if err := store.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestMySQLStore_TableName tests the table mapping
func TestMySQLStore_TableName(t *testing.T) {
	if (IPCoordinatesModel{}).TableName() != "ip_coordinates" {
		t.Error("expected table name ip_coordinates")
	}
}

// TestMySQLStore_FindByIP_CanceledContext tests that the query honors ctx
func TestMySQLStore_FindByIP_CanceledContext(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := &MySQLStore{db: db}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.FindByIP(ctx, "8.8.8.8")

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestNewMySQLStore_PingFailureClosesPool tests that a failed ping
// releases the connection pool
func TestNewMySQLStore_PingFailureClosesPool(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()

	store, err := newMySQLStore(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}))

	if err == nil {
		t.Fatal("expected ping error, got nil")
	}
	if store != nil {
		t.Error("expected nil store on error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expected pool to be closed: %v", err)
	}
}
