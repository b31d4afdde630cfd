package weather

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"envirowatch/internal/fetch"
)

// Service tries geocoders and forecast providers in a fixed priority order and
// returns the first usable result. This is deliberate fallback, not load
// balancing: provider order is configured once and never reshuffled, and a
// provider that fails within a request is not retried in that request.
type Service struct {
	geocoders []Geocoder
	providers []Provider
	logger    *zap.Logger
}

func NewService(geocoders []Geocoder, providers []Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{geocoders: geocoders, providers: providers, logger: logger}
}

// Resolve maps a city name to coordinates using the first geocoder that
// answers. An empty geocode result from every provider surfaces as
// ErrGeocodeEmpty so callers can tell "unknown city" from "providers down".
func (s *Service) Resolve(ctx context.Context, city string) (Coordinates, error) {
	if len(s.geocoders) == 0 {
		return Coordinates{}, fmt.Errorf("no geocoders configured")
	}

	var firstErr error
	for _, g := range s.geocoders {
		coords, err := g.Geocode(ctx, city)
		if err != nil {
			s.logger.Warn("geocode failed",
				zap.String("provider", g.Name()),
				zap.String("city", city),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return coords, nil
	}
	return Coordinates{}, firstErr
}

// Fetch resolves the city and walks the forecast provider chain. The returned
// envelope reports which provider supplied the snapshot, or the first error
// reason when the whole chain is exhausted.
func (s *Service) Fetch(ctx context.Context, city string) (Snapshot, fetch.Result) {
	coords, err := s.Resolve(ctx, city)
	if err != nil {
		return Snapshot{}, fetch.Failure(err.Error())
	}
	return s.FetchAt(ctx, coords)
}

// FetchAt walks the forecast provider chain for already-resolved coordinates.
func (s *Service) FetchAt(ctx context.Context, coords Coordinates) (Snapshot, fetch.Result) {
	var firstErr error
	for _, p := range s.providers {
		snap, err := p.Forecast(ctx, coords)
		if err != nil {
			s.logger.Warn("weather fetch failed",
				zap.String("provider", p.Name()),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if snap.Empty() {
			s.logger.Warn("weather provider returned empty snapshot",
				zap.String("provider", p.Name()))
			if firstErr == nil {
				firstErr = fmt.Errorf("empty snapshot from %s", p.Name())
			}
			continue
		}
		snap.Source = p.Name()
		return snap, fetch.Success(p.Name())
	}

	reason := "no weather providers configured"
	if firstErr != nil {
		reason = firstErr.Error()
	}
	return Snapshot{}, fetch.Failure(reason)
}

// Daily returns the multi-day timeseries from the first provider supporting
// the capability.
func (s *Service) Daily(ctx context.Context, city string, days int) ([]DailySummary, error) {
	coords, err := s.Resolve(ctx, city)
	if err != nil {
		return nil, err
	}

	var firstErr error
	for _, p := range s.providers {
		dp, ok := p.(DailyProvider)
		if !ok {
			continue
		}
		series, err := dp.Daily(ctx, coords, days)
		if err != nil {
			s.logger.Warn("daily fetch failed",
				zap.String("provider", p.Name()),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if len(series) > 0 {
			return series, nil
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, fmt.Errorf("no provider supports daily forecasts")
}
