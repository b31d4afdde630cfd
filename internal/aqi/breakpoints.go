// Package aqi converts pollutant concentrations to a standardized air quality
// index using EPA-style piecewise-linear breakpoint tables.
package aqi

import "math"

// Breakpoint maps a concentration range onto an index range.
type Breakpoint struct {
	ConcLow   float64
	ConcHigh  float64
	IndexLow  int
	IndexHigh int
}

// PM25Breakpoints covers PM2.5 concentrations in µg/m³ up to index 500.
var PM25Breakpoints = []Breakpoint{
	{0.0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 350.4, 301, 400},
	{350.5, 500.4, 401, 500},
}

// PM10Breakpoints covers PM10 concentrations in µg/m³ up to index 500.
var PM10Breakpoints = []Breakpoint{
	{0, 54, 0, 50},
	{55, 154, 51, 100},
	{155, 254, 101, 150},
	{255, 354, 151, 200},
	{355, 424, 201, 300},
	{425, 504, 301, 400},
	{505, 604, 401, 500},
}

// IndexFromConcentration locates the bracket containing the concentration and
// linear-interpolates the index, rounded to the nearest integer. It returns
// (0, false) when the concentration is nil-equivalent (caller passes a pointer)
// or falls outside every bracket; there is no extrapolation.
func IndexFromConcentration(table []Breakpoint, conc *float64) (int, bool) {
	if conc == nil {
		return 0, false
	}
	c := *conc
	for _, bp := range table {
		if bp.ConcLow <= c && c <= bp.ConcHigh {
			idx := (float64(bp.IndexHigh-bp.IndexLow)/(bp.ConcHigh-bp.ConcLow))*(c-bp.ConcLow) + float64(bp.IndexLow)
			return int(math.Round(idx)), true
		}
	}
	return 0, false
}

// FromPM25 converts a PM2.5 concentration to its index.
func FromPM25(pm25 *float64) (int, bool) {
	return IndexFromConcentration(PM25Breakpoints, pm25)
}

// FromPM10 converts a PM10 concentration to its index.
func FromPM10(pm10 *float64) (int, bool) {
	return IndexFromConcentration(PM10Breakpoints, pm10)
}

// CombinedIndex returns the worst-pollutant index of PM2.5 and PM10, ignoring
// values without a defined index. Regulatory AQI is the maximum sub-index,
// never an average. Returns (0, false) when neither pollutant yields an index.
func CombinedIndex(pm25, pm10 *float64) (int, bool) {
	a, okA := FromPM25(pm25)
	b, okB := FromPM10(pm10)
	switch {
	case okA && okB:
		if b > a {
			return b, true
		}
		return a, true
	case okA:
		return a, true
	case okB:
		return b, true
	default:
		return 0, false
	}
}
