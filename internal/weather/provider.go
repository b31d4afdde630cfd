package weather

import (
	"context"
	"errors"
)

// ErrGeocodeEmpty is returned when a provider resolves a city to no
// coordinates at all. Providers must report this rather than fabricate a
// position.
var ErrGeocodeEmpty = errors.New("geocode_empty")

// Geocoder resolves a city name to coordinates.
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, city string) (Coordinates, error)
}

// Provider fetches a normalized weather snapshot for a position.
type Provider interface {
	Name() string
	Forecast(ctx context.Context, coords Coordinates) (Snapshot, error)
}

// DailyProvider is the optional capability of returning a multi-day
// min/max/rain summary, used by the visualization endpoint.
type DailyProvider interface {
	Daily(ctx context.Context, coords Coordinates, days int) ([]DailySummary, error)
}
