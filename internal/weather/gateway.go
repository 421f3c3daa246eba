package weather

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/travel-assistant/internal/domain"
	"github.com/couchcryptid/travel-assistant/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Gateway resolves weather for a location, serving fresh snapshots from the
// cache and otherwise geocoding and fetching a forecast. It never returns a
// Go error: weather enrichment is best-effort.
type Gateway struct {
	geocoder   domain.Geocoder
	forecaster domain.Forecaster
	cache      *Cache
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewGateway wires a gateway. A nil clock uses real time.
func NewGateway(geocoder domain.Geocoder, forecaster domain.Forecaster, cache *Cache, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Gateway {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Gateway{
		geocoder:   geocoder,
		forecaster: forecaster,
		cache:      cache,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
	}
}

// Lookup returns weather for location.
func (g *Gateway) Lookup(ctx context.Context, location string) domain.WeatherResult {
	key := domain.NormalizeKey(location)

	if snapshot, ok := g.cache.Get(key); ok {
		g.metrics.WeatherCache.WithLabelValues("hit").Inc()
		g.logger.Debug("weather cache hit", "location", location)
		return domain.WeatherResult{Status: domain.WeatherFound, Snapshot: snapshot, CacheHit: true}
	}
	g.metrics.WeatherCache.WithLabelValues("miss").Inc()
	g.logger.Debug("weather cache miss", "location", location)

	result := g.fetch(ctx, location)
	g.metrics.WeatherFetches.WithLabelValues(result.Status.String()).Inc()

	switch result.Status {
	case domain.WeatherFound:
		g.cache.Set(key, result.Snapshot)
	case domain.WeatherNotFound:
		g.logger.Info("weather location not found", "location", location)
	case domain.WeatherFailed:
		g.logger.Warn("weather fetch failed", "location", location, "error", result.Err)
	}
	return result
}

// IsCached reports whether fresh weather for location is cached.
func (g *Gateway) IsCached(location string) bool {
	return g.cache.Has(domain.NormalizeKey(location))
}

// ClearCache drops every cached snapshot.
func (g *Gateway) ClearCache() {
	g.cache.Clear()
}

func (g *Gateway) fetch(ctx context.Context, location string) domain.WeatherResult {
	geo, found, err := g.geocoder.ForwardGeocode(ctx, location)
	if err != nil {
		return failed(fmt.Errorf("geocode %q: %w", location, err))
	}
	if !found {
		return domain.WeatherResult{Status: domain.WeatherNotFound}
	}
	g.logger.Debug("location geocoded",
		"location", location,
		"display_name", geo.DisplayName(),
		"lat", geo.Lat,
		"lon", geo.Lon,
	)

	current, daily, err := g.forecaster.Forecast(ctx, geo.Lat, geo.Lon)
	if err != nil {
		return failed(fmt.Errorf("forecast %q: %w", location, err))
	}

	snapshot := &domain.WeatherSnapshot{
		Location:  geo.DisplayName(),
		Current:   current,
		Forecast:  daily,
		FetchedAt: g.clock.Now(),
	}
	return domain.WeatherResult{Status: domain.WeatherFound, Snapshot: snapshot}
}

func failed(err error) domain.WeatherResult {
	return domain.WeatherResult{Status: domain.WeatherFailed, Err: err}
}
