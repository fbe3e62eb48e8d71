package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/evyataryagoni/issflyover/internal/models"
	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces coordinate entries in Redis
const keyPrefix = "geo:"

// RedisStore reads coordinates from Redis
//
// Redis Key Format: geo:<ip_address>
// Value: JSON-encoded models.Coordinates
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and pings it
//
// Parameters:
//   - addr: Redis server address (e.g., "localhost:6379")
//   - password: Redis password (empty string if no password)
//   - db: Redis database number
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// FindByIP looks up an IP address in Redis
func (s *RedisStore) FindByIP(ctx context.Context, ip string) (*models.Coordinates, error) {
	val, err := s.client.Get(ctx, keyPrefix+ip).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("Redis query failed: %w", err)
	}

	var coords models.Coordinates
	if err := json.Unmarshal([]byte(val), &coords); err != nil {
		return nil, fmt.Errorf("failed to decode coordinates: %w", err)
	}

	return &coords, nil
}

// Set adds or updates the coordinates for ip (no expiration)
func (s *RedisStore) Set(ctx context.Context, ip string, coords models.Coordinates) error {
	data, err := json.Marshal(coords)
	if err != nil {
		return fmt.Errorf("failed to encode coordinates: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+ip, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store in Redis: %w", err)
	}

	return nil
}

// LoadFromCSV copies every row of a coordinates CSV into Redis
// Returns the number of rows written
func (s *RedisStore) LoadFromCSV(ctx context.Context, csvPath string) (int, error) {
	csvStore, err := NewCSVStore(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to load CSV: %w", err)
	}
	defer csvStore.Close()

	count := 0
	for ip, coords := range csvStore.data {
		if err := s.Set(ctx, ip, *coords); err != nil {
			return count, fmt.Errorf("failed to store IP %s: %w", ip, err)
		}
		count++
	}

	return count, nil
}

// IsEmpty reports whether no geo:* keys exist
// Walks SCAN pages and stops at the first match
func (s *RedisStore) IsEmpty(ctx context.Context) (bool, error) {
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	if iter.Next(ctx) {
		return false, nil
	}
	if err := iter.Err(); err != nil {
		return false, fmt.Errorf("failed to check Redis keys: %w", err)
	}
	return true, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
