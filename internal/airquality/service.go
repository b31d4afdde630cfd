package airquality

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"envirowatch/internal/fetch"
)

// Service walks an ordered chain of air-quality providers and returns the
// first non-empty aggregated result. Priority is fixed (OpenAQ before the
// OpenWeather fallback); a failed provider is not retried within a request.
type Service struct {
	providers []Provider
	logger    *zap.Logger
}

func NewService(providers []Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{providers: providers, logger: logger}
}

// Fetch returns the aggregated air quality for a city together with the fetch
// envelope. When every provider fails the envelope carries the first error
// reason and the aggregate is nil.
func (s *Service) Fetch(ctx context.Context, city string) (*Aggregated, fetch.Result) {
	var firstErr error
	for _, p := range s.providers {
		readings, err := p.LatestMeasurements(ctx, city)
		if err != nil {
			s.logger.Warn("air-quality fetch failed",
				zap.String("provider", p.Name()),
				zap.String("city", city),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if len(readings) == 0 {
			if firstErr == nil {
				firstErr = fmt.Errorf("no measurements from %s", p.Name())
			}
			continue
		}
		return Aggregate(readings, p.Name()), fetch.Success(p.Name())
	}

	reason := "no air-quality providers configured"
	if firstErr != nil {
		reason = firstErr.Error()
	}
	return nil, fetch.Failure(reason)
}
