package store

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/evyataryagoni/issflyover/internal/models"
)

// newTestRedisStore starts miniredis and connects a store to it
func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	store, err := NewRedisStore(mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("failed to connect to Redis: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store, mr
}

// TestRedisStore_ConnectionFailure tests connection errors
func TestRedisStore_ConnectionFailure(t *testing.T) {
	_, err := NewRedisStore("invalid:9999", "", 0)

	if err == nil {
		t.Error("expected connection error, got nil")
	}
}

// TestRedisStore_SetAndFind tests a round trip through Redis
func TestRedisStore_SetAndFind(t *testing.T) {
	store, mr := newTestRedisStore(t)

	if err := store.Set(context.Background(), "162.245.144.188", models.Coordinates{Latitude: 38, Longitude: -122}); err != nil {
		t.Fatalf("failed to set data: %v", err)
	}

	if !mr.Exists("geo:162.245.144.188") {
		t.Error("expected key geo:162.245.144.188 to exist")
	}

	coords, err := store.FindByIP(context.Background(), "162.245.144.188")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coords.Latitude != 38 || coords.Longitude != -122 {
		t.Errorf("unexpected coordinates: %+v", coords)
	}
}

// TestRedisStore_FindByIP_NotFound tests a missing key
func TestRedisStore_FindByIP_NotFound(t *testing.T) {
	store, _ := newTestRedisStore(t)

	coords, err := store.FindByIP(context.Background(), "192.168.1.1")

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if coords != nil {
		t.Error("expected nil coordinates, got data")
	}
}

// TestRedisStore_FindByIP_CorruptValue tests a value that is not JSON
func TestRedisStore_FindByIP_CorruptValue(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.Set("geo:1.1.1.1", "not-json")

	_, err := store.FindByIP(context.Background(), "1.1.1.1")

	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("expected decode error, got %v", err)
	}
}

// TestRedisStore_LoadFromCSV tests bulk loading and IsEmpty
func TestRedisStore_LoadFromCSV(t *testing.T) {
	store, _ := newTestRedisStore(t)

	empty, err := store.IsEmpty(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !empty {
		t.Error("expected fresh Redis to be empty")
	}

	csvPath := writeCSV(t, `ip,latitude,longitude
1.1.1.1,-33.86,151.2
8.8.8.8,37.386,-122.0838`)

	count, err := store.LoadFromCSV(context.Background(), csvPath)
	if err != nil {
		t.Fatalf("failed to load CSV: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 rows loaded, got %d", count)
	}

	empty, _ = store.IsEmpty(context.Background())
	if empty {
		t.Error("expected Redis not to be empty after load")
	}

	coords, err := store.FindByIP(context.Background(), "1.1.1.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coords.Latitude != -33.86 {
		t.Errorf("expected latitude -33.86, got %v", coords.Latitude)
	}
}

// TestRedisStore_LoadFromCSV_MissingFile tests loading a missing file
func TestRedisStore_LoadFromCSV_MissingFile(t *testing.T) {
	store, _ := newTestRedisStore(t)

	if _, err := store.LoadFromCSV(context.Background(), "/nonexistent.csv"); err == nil {
		t.Error("expected error for missing CSV, got nil")
	}
}

// TestRedisStore_IsEmpty_IgnoresOtherKeys tests that only geo:* keys count
func TestRedisStore_IsEmpty_IgnoresOtherKeys(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.Set("ratelimit:1.1.1.1:1", "3")

	empty, err := store.IsEmpty(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !empty {
		t.Error("expected store to be empty when only unrelated keys exist")
	}
}

// TestRedisStore_IsEmpty_ScansPastOtherKeys tests that a geo:* key is found
// when many unrelated keys come first
func TestRedisStore_IsEmpty_ScansPastOtherKeys(t *testing.T) {
	store, mr := newTestRedisStore(t)
	for i := 0; i < 500; i++ {
		mr.Set("other:"+strconv.Itoa(i), "x")
	}
	mr.Set("geo:8.8.8.8", `{"latitude":1,"longitude":2}`)

	empty, err := store.IsEmpty(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty {
		t.Error("expected a geo:* key to be found")
	}
}

// TestRedisStore_FindByIP_CanceledContext tests that the query honors ctx
func TestRedisStore_FindByIP_CanceledContext(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.Set("geo:8.8.8.8", `{"latitude":1,"longitude":2}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	coords, err := store.FindByIP(ctx, "8.8.8.8")
	if err == nil {
		t.Fatalf("expected error for canceled context, got %+v", coords)
	}
	if errors.Is(err, ErrNotFound) {
		t.Errorf("expected query failure, got ErrNotFound")
	}
}
