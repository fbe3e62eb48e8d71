package main

import (
	"context"
	"fmt"
	"log"

	"github.com/evyataryagoni/issflyover/internal/config"
	"github.com/evyataryagoni/issflyover/internal/store"
)

// This tool loads the IP coordinates table from CSV into Redis
// Usage: go run cmd/load-redis/main.go
func main() {
	fmt.Println("🔄 Loading IP coordinates into Redis...")

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Printf("📡 Connecting to Redis at %s...\n", appConfig.RedisAddr)
	redisStore, err := store.NewRedisStore(appConfig.RedisAddr, appConfig.RedisPassword, appConfig.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisStore.Close()

	fmt.Printf("📁 Loading coordinates from %s...\n", appConfig.DatastorePath)
	loaded, err := redisStore.LoadFromCSV(context.Background(), appConfig.DatastorePath)
	if err != nil {
		log.Fatalf("Failed to load CSV data: %v", err)
	}

	fmt.Printf("✅ Loaded %d records\n", loaded)
	fmt.Println("\n💡 You can now start the server with GEO_BACKEND=redis")
}
