// Package features maps aggregated weather and air-quality data onto the
// fixed feature vector the rain classifier was trained with.
package features

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"envirowatch/internal/airquality"
	"envirowatch/internal/weather"
)

// Missing is the sentinel category for absent categorical values.
const Missing = "MISSING"

// ErrInvalidDate is returned when the request date is not an ISO
// YYYY-MM-DD string with numeric month and day components.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// CanonicalOrder is the training-time feature order of the rain classifier.
var CanonicalOrder = []string{
	"Location", "MinTemp", "MaxTemp", "Rainfall", "Evaporation", "Sunshine",
	"WindGustDir", "WindGustSpeed", "WindDir9am", "WindDir3pm",
	"WindSpeed9am", "WindSpeed3pm", "Humidity9am", "Humidity3pm",
	"Pressure9am", "Pressure3pm", "Cloud9am", "Cloud3pm", "Temp9am", "Temp3pm",
	"RainToday", "Date_month", "Date_day",
}

// CategoricalFeatures are the canonical features carrying category strings.
var CategoricalFeatures = []string{"Location", "WindGustDir", "WindDir9am", "WindDir3pm", "RainToday"}

// Vector is a feature-name → value mapping. Values are float64 or category
// strings; the model wrapper imposes the final column order.
type Vector map[string]any

var cardinalDirections = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// DegreesToCardinal converts wind direction degrees to one of the 16
// cardinal direction strings, or Missing when degrees is absent.
func DegreesToCardinal(deg *float64) string {
	if deg == nil {
		return Missing
	}
	ix := int(math.Floor(*deg/22.5+0.5)) % 16
	if ix < 0 {
		ix += 16
	}
	return cardinalDirections[ix]
}

// ParseDate decomposes an ISO YYYY-MM-DD string into month and day.
func ParseDate(date string) (month, day int, err error) {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return 0, 0, ErrInvalidDate
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, ErrInvalidDate
	}
	day, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, ErrInvalidDate
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, ErrInvalidDate
	}
	return month, day, nil
}

// Map builds the canonical feature vector from whatever data survived the
// fetch stage. It is pure: no network access, no clock reads, and identical
// inputs always produce an identical vector. Every canonical feature is
// present in the output; absent source data falls back to the documented
// defaults (0.0 for numerics, Missing for categories). Pollutant data does
// not enter the trained schema and is carried separately in response
// diagnostics, which is why the aggregate is accepted but unused here.
func Map(w *weather.Snapshot, air *airquality.Aggregated, city, date, timeOfDay string) (Vector, error) {
	_ = air
	_ = timeOfDay

	month, day, err := ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("map features: %w", err)
	}

	if city == "" {
		city = "Unknown"
	}

	num := func(v *float64) float64 {
		if v == nil {
			return 0.0
		}
		return *v
	}

	var snap weather.Snapshot
	if w != nil {
		snap = *w
	}

	rainfall := num(snap.Rainfall)
	rainToday := "No"
	if rainfall > 0 {
		rainToday = "Yes"
	}

	return Vector{
		"Location":      city,
		"MinTemp":       num(snap.MinTemp),
		"MaxTemp":       num(snap.MaxTemp),
		"Rainfall":      rainfall,
		"Evaporation":   num(snap.Evaporation),
		"Sunshine":      num(snap.Sunshine),
		"WindGustDir":   DegreesToCardinal(snap.WindGustDirDeg),
		"WindGustSpeed": num(snap.WindGustSpeed),
		"WindDir9am":    DegreesToCardinal(snap.WindDir9amDeg),
		"WindDir3pm":    DegreesToCardinal(snap.WindDir3pmDeg),
		"WindSpeed9am":  num(snap.WindSpeed9am),
		"WindSpeed3pm":  num(snap.WindSpeed3pm),
		"Humidity9am":   num(snap.Humidity9am),
		"Humidity3pm":   num(snap.Humidity3pm),
		"Pressure9am":   num(snap.Pressure9am),
		"Pressure3pm":   num(snap.Pressure3pm),
		"Cloud9am":      num(snap.Cloud9am),
		"Cloud3pm":      num(snap.Cloud3pm),
		"Temp9am":       num(snap.Temp9am),
		"Temp3pm":       num(snap.Temp3pm),
		"RainToday":     rainToday,
		"Date_month":    float64(month),
		"Date_day":      float64(day),
	}, nil
}

// Demo returns the deterministic sample vector served when upstream data or
// credentials are unavailable. Values mirror the documented demo feature set.
func Demo(city, date string) (Vector, error) {
	month, day, err := ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("demo features: %w", err)
	}
	if city == "" {
		city = "Unknown"
	}

	return Vector{
		"Location":      city,
		"MinTemp":       18.0,
		"MaxTemp":       30.0,
		"Rainfall":      0.0,
		"Evaporation":   0.0,
		"Sunshine":      7.0,
		"WindGustDir":   "N",
		"WindGustSpeed": 25.0,
		"WindDir9am":    Missing,
		"WindDir3pm":    Missing,
		"WindSpeed9am":  8.0,
		"WindSpeed3pm":  12.0,
		"Humidity9am":   70.0,
		"Humidity3pm":   55.0,
		"Pressure9am":   1016.0,
		"Pressure3pm":   1014.5,
		"Cloud9am":      2.0,
		"Cloud3pm":      1.0,
		"Temp9am":       20.0,
		"Temp3pm":       28.0,
		"RainToday":     "No",
		"Date_month":    float64(month),
		"Date_day":      float64(day),
	}, nil
}
