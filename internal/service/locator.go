package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evyataryagoni/issflyover/internal/fetcher"
	"github.com/evyataryagoni/issflyover/internal/logger"
	"github.com/evyataryagoni/issflyover/internal/metrics"
	"github.com/evyataryagoni/issflyover/internal/models"
	"github.com/evyataryagoni/issflyover/internal/store"
)

// StoreLocator serves the coords stage from an offline datastore instead of
// the geolocation HTTP service. Failures use the same error kinds as the
// HTTP fetcher so the pipeline and the handlers treat them identically.
type StoreLocator struct {
	store   store.Store
	name    string // Backend name for logs and metrics
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewStoreLocator wraps s as a CoordsFetcher
func NewStoreLocator(s store.Store, name string, m *metrics.Metrics, log *logger.Logger) *StoreLocator {
	if log == nil {
		log = logger.NewDefault()
	}
	return &StoreLocator{
		store:   s,
		name:    name,
		metrics: m,
		logger:  log.WithComponent("StoreLocator").WithStage(fetcher.StageCoords),
	}
}

// FetchCoordsByIP looks ip up in the datastore
func (l *StoreLocator) FetchCoordsByIP(ctx context.Context, ip string) (*models.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", fetcher.ErrTransport, err)
	}

	start := time.Now()
	coords, err := l.lookup(ctx, ip)
	l.observe(err, start)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			l.logger.Warn().Err(ctxErr).Str("ip", ip).Str("datastore", l.name).Msg("Datastore lookup abandoned")
			return nil, fmt.Errorf("%w: %s datastore: %v", fetcher.ErrTransport, l.name, ctxErr)
		}
		if errors.Is(err, store.ErrNotFound) {
			l.logger.Warn().Str("ip", ip).Str("datastore", l.name).Msg("IP address not found")
			return nil, fmt.Errorf("%w: success status was false. Server message says: %s when fetching for IP %s",
				fetcher.ErrLookupFailed, err.Error(), ip)
		}
		l.logger.Error().Err(err).Str("ip", ip).Str("datastore", l.name).Msg("Datastore error during lookup")
		return nil, fmt.Errorf("%w: %s datastore: %v", fetcher.ErrTransport, l.name, err)
	}

	return coords, nil
}

type lookupResult struct {
	coords *models.Coordinates
	err    error
}

// lookup runs the store query and returns early once ctx is done,
// even when the backend itself does not watch ctx
func (l *StoreLocator) lookup(ctx context.Context, ip string) (*models.Coordinates, error) {
	done := make(chan lookupResult, 1)
	go func() {
		coords, err := l.store.FindByIP(ctx, ip)
		done <- lookupResult{coords: coords, err: err}
	}()

	select {
	case res := <-done:
		return res.coords, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close closes the underlying datastore
func (l *StoreLocator) Close() error {
	return l.store.Close()
}

func (l *StoreLocator) observe(err error, start time.Time) {
	if l.metrics == nil {
		return
	}

	status := "success"
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}

	l.metrics.DatastoreQueriesTotal.WithLabelValues(l.name, status).Inc()
	l.metrics.DatastoreQueryDuration.WithLabelValues(l.name).Observe(time.Since(start).Seconds())
}
