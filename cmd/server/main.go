package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evyataryagoni/issflyover/internal/config"
	"github.com/evyataryagoni/issflyover/internal/fetcher"
	"github.com/evyataryagoni/issflyover/internal/handler"
	"github.com/evyataryagoni/issflyover/internal/limiter"
	"github.com/evyataryagoni/issflyover/internal/logger"
	"github.com/evyataryagoni/issflyover/internal/metrics"
	"github.com/evyataryagoni/issflyover/internal/router"
	"github.com/evyataryagoni/issflyover/internal/service"
	"github.com/evyataryagoni/issflyover/internal/store"
)

//go:generate swag init --dir ../../ --generalInfo cmd/server/main.go --output ../../docs --outputTypes go

// @title           ISS Flyover API
// @version         1.0
// @description     Predicts the next International Space Station passes over the server's own location
// @termsOfService  http://swagger.io/terms/

// @contact.name   Evyatar Yagoni
// @contact.email  evyatar@example.com

// @license.name  MIT
// @license.url   http://opensource.org/licenses/MIT

// @host      localhost:3000
// @BasePath  /
func main() {
	appConfig, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	appLogger := setupLogger(appConfig)
	metricsCollector := setupMetrics(appLogger)

	client := fetcher.NewClient(fetcher.Options{
		IPLookupURL:  appConfig.IPLookupURL,
		GeoLookupURL: appConfig.GeoLookupURL,
		FlyoverURL:   appConfig.FlyoverURL,
		UserAgent:    appConfig.UserAgent,
		Timeout:      appConfig.RequestTimeout,
	}, metricsCollector, appLogger)

	coords, closeCoords := setupCoordsStage(appConfig, client, metricsCollector, appLogger)
	defer closeCoords()

	rateLimiter := setupRateLimiter(appConfig, appLogger)
	defer rateLimiter.Close()

	// Build application layers
	issService := service.NewISSService(client, coords, client, metricsCollector, appLogger)
	issHandler := handler.NewISSHandler(issService)
	appRouter := router.SetupRouter(issHandler, rateLimiter, metricsCollector, appLogger)

	startServer(appConfig, appRouter, appLogger)
}

// setupLogger initializes the structured logger
func setupLogger(appConfig *config.Config) *logger.Logger {
	appLogger := logger.New(logger.Config{
		Level:      appConfig.LogLevel,
		Pretty:     appConfig.LogPretty,
		OutputFile: appConfig.LogFile,
	})

	appLogger.Info().Msg("Starting ISS Flyover Server...")
	appLogger.Info().
		Str("port", appConfig.Port).
		Str("geo_backend", appConfig.GeoBackend).
		Dur("request_timeout", appConfig.RequestTimeout).
		Str("rate_limiter_type", appConfig.RateLimitType).
		Int("rate_limit", appConfig.RateLimit).
		Dur("rate_limit_window", appConfig.RateLimitWindow).
		Msg("Configuration loaded")

	return appLogger
}

// setupMetrics initializes the Prometheus metrics collector
func setupMetrics(log *logger.Logger) *metrics.Metrics {
	metricsCollector := metrics.New()
	log.Info().Msg("Metrics initialized")
	return metricsCollector
}

// setupCoordsStage picks the geolocation stage of the pipeline
// "http" asks the geolocation service; anything else reads an offline table.
// The returned func releases the backend.
func setupCoordsStage(appConfig *config.Config, client *fetcher.Client, m *metrics.Metrics, log *logger.Logger) (service.CoordsFetcher, func()) {
	if appConfig.GeoBackend == "http" {
		log.Info().Str("url", appConfig.GeoLookupURL).Msg("Geolocating with the HTTP service")
		return client, func() {}
	}

	dataStore, err := store.New(store.Config{
		Type:          appConfig.GeoBackend,
		CSVPath:       appConfig.DatastorePath,
		MySQLDSN:      appConfig.MySQLDSN,
		MMDBPath:      appConfig.MMDBPath,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
	})
	if err != nil {
		log.Fatal().Err(err).Str("type", appConfig.GeoBackend).Msg("Failed to initialize geolocation store")
	}

	if redisStore, ok := dataStore.(*store.RedisStore); ok {
		loadRedisDataIfEmpty(context.Background(), redisStore, appConfig.DatastorePath, log)
	}

	log.Info().Str("type", appConfig.GeoBackend).Msg("Geolocation store initialized")

	locator := service.NewStoreLocator(dataStore, appConfig.GeoBackend, m, log)
	return locator, func() {
		if err := locator.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close geolocation store")
		}
	}
}

// loadRedisDataIfEmpty seeds an empty Redis from the coordinates CSV
func loadRedisDataIfEmpty(ctx context.Context, redisStore *store.RedisStore, csvPath string, log *logger.Logger) {
	isEmpty, err := redisStore.IsEmpty(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to check if Redis is empty")
		return
	}
	if !isEmpty {
		return
	}

	log.Info().Str("path", csvPath).Msg("Redis is empty, loading coordinates from CSV")
	loaded, err := redisStore.LoadFromCSV(ctx, csvPath)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load coordinates")
		return
	}
	log.Info().Int("records", loaded).Msg("Coordinates loaded into Redis")
}

// setupRateLimiter initializes the inbound rate limiter ("none" by default)
func setupRateLimiter(appConfig *config.Config, log *logger.Logger) limiter.Limiter {
	rate := limiter.Rate{Requests: appConfig.RateLimit, Window: appConfig.RateLimitWindow}

	rateLimiter, err := limiter.New(limiter.Config{
		Type:          appConfig.RateLimitType,
		Rate:          rate,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize rate limiter")
	}

	log.Info().
		Str("type", appConfig.RateLimitType).
		Float64("requests_per_second", rate.PerSecond()).
		Msg("Rate limiter initialized")

	return rateLimiter
}

// startServer serves until SIGINT/SIGTERM, then drains in-flight requests
func startServer(appConfig *config.Config, appRouter http.Handler, log *logger.Logger) {
	server := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           appRouter,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	// A pipeline run makes three upstream calls, each bounded by RequestTimeout
	if appConfig.RequestTimeout > 0 {
		server.WriteTimeout = 3*appConfig.RequestTimeout + 10*time.Second
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().
			Str("port", appConfig.Port).
			Str("api_endpoint", "http://localhost:"+appConfig.Port+"/v1/next-passes").
			Str("health_check", "http://localhost:"+appConfig.Port+"/health").
			Str("metrics", "http://localhost:"+appConfig.Port+"/metrics").
			Str("swagger", "http://localhost:"+appConfig.Port+"/swagger/index.html").
			Msg("Server is running")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}
	log.Info().Msg("Server stopped")
}
