package airquality

import "envirowatch/internal/aqi"

// Aggregate reduces a provider's reading list to one concentration per
// pollutant. Providers return results pre-sorted newest-first, so the first
// occurrence of a parameter wins; values are never averaged across time. The
// combined breakpoint index is derived from the aggregated PM2.5/PM10 values.
func Aggregate(readings []PollutantReading, source string) *Aggregated {
	agg := &Aggregated{
		Concentrations: make(map[Parameter]float64, len(KnownParameters)),
		Source:         source,
	}

	for _, r := range readings {
		if _, seen := agg.Concentrations[r.Parameter]; seen {
			continue
		}
		switch r.Parameter {
		case PM25, PM10, NO2, SO2, CO, O3:
			agg.Concentrations[r.Parameter] = r.Concentration
		}
	}

	var pm25, pm10 *float64
	if v, ok := agg.Concentrations[PM25]; ok {
		pm25 = &v
	}
	if v, ok := agg.Concentrations[PM10]; ok {
		pm10 = &v
	}
	if idx, ok := aqi.CombinedIndex(pm25, pm10); ok {
		agg.AQI = &idx
	}

	return agg
}
