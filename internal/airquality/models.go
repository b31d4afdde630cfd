// Package airquality fetches pollutant measurements from redundant providers
// and reduces them to a single per-pollutant view with a combined AQI.
package airquality

import (
	"context"
	"time"
)

// Parameter identifies a pollutant we track.
type Parameter string

const (
	PM25 Parameter = "pm25"
	PM10 Parameter = "pm10"
	NO2  Parameter = "no2"
	SO2  Parameter = "so2"
	CO   Parameter = "co"
	O3   Parameter = "o3"
)

// KnownParameters lists the pollutants in canonical order.
var KnownParameters = []Parameter{PM25, PM10, NO2, SO2, CO, O3}

// PollutantReading is a single measurement as reported by a provider.
// Immutable once fetched.
type PollutantReading struct {
	Parameter      Parameter `json:"parameter"`
	Concentration  float64   `json:"value"`
	Unit           string    `json:"unit"`
	ObservedAt     time.Time `json:"observed_at"`
	SourceProvider string    `json:"source"`
	Location       string    `json:"location,omitempty"`
}

// Aggregated is the per-request reduction of provider readings: one
// concentration per pollutant plus the combined breakpoint index. Not
// persisted.
type Aggregated struct {
	Concentrations map[Parameter]float64 `json:"concentrations"`
	AQI            *int                  `json:"aqi"`
	Source         string                `json:"source"`
}

// Get returns the aggregated concentration for a pollutant, if present.
func (a *Aggregated) Get(p Parameter) (float64, bool) {
	if a == nil || a.Concentrations == nil {
		return 0, false
	}
	v, ok := a.Concentrations[p]
	return v, ok
}

// Provider returns the latest pollutant measurements for a city, newest
// first. Implementations must capture failures and return them as errors,
// never panic across this boundary.
type Provider interface {
	Name() string
	LatestMeasurements(ctx context.Context, city string) ([]PollutantReading, error)
}
