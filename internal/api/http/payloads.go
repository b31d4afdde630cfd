package httpapi

import (
	"envirowatch/internal/features"
)

// PredictPayload is the manual prediction request. Field names mirror the
// classifier's training schema; required fields and ranges follow the
// published API contract.
type PredictPayload struct {
	Location      string   `json:"Location" validate:"required"`
	MinTemp       *float64 `json:"MinTemp" validate:"required"`
	MaxTemp       *float64 `json:"MaxTemp" validate:"required"`
	Rainfall      *float64 `json:"Rainfall" validate:"required"`
	Evaporation   *float64 `json:"Evaporation"`
	Sunshine      *float64 `json:"Sunshine"`
	WindGustDir   *string  `json:"WindGustDir"`
	WindGustSpeed *float64 `json:"WindGustSpeed"`
	WindDir9am    *string  `json:"WindDir9am"`
	WindDir3pm    *string  `json:"WindDir3pm"`
	WindSpeed9am  *float64 `json:"WindSpeed9am"`
	WindSpeed3pm  *float64 `json:"WindSpeed3pm"`
	Humidity9am   *float64 `json:"Humidity9am"`
	Humidity3pm   *float64 `json:"Humidity3pm"`
	Pressure9am   *float64 `json:"Pressure9am"`
	Pressure3pm   *float64 `json:"Pressure3pm"`
	Cloud9am      *float64 `json:"Cloud9am"`
	Cloud3pm      *float64 `json:"Cloud3pm"`
	Temp9am       *float64 `json:"Temp9am"`
	Temp3pm       *float64 `json:"Temp3pm"`
	RainToday     *string  `json:"RainToday" validate:"omitempty,oneof=Yes No"`
	DateMonth     int      `json:"Date_month" validate:"required,min=1,max=12"`
	DateDay       int      `json:"Date_day" validate:"required,min=1,max=31"`
}

// ToVector converts the validated payload into the canonical feature vector,
// applying the documented defaults for absent optional fields.
func (p PredictPayload) ToVector() features.Vector {
	num := func(v *float64) float64 {
		if v == nil {
			return 0.0
		}
		return *v
	}
	cat := func(v *string) string {
		if v == nil || *v == "" {
			return features.Missing
		}
		return *v
	}

	rainToday := "No"
	if p.RainToday != nil {
		rainToday = *p.RainToday
	}

	return features.Vector{
		"Location":      p.Location,
		"MinTemp":       num(p.MinTemp),
		"MaxTemp":       num(p.MaxTemp),
		"Rainfall":      num(p.Rainfall),
		"Evaporation":   num(p.Evaporation),
		"Sunshine":      num(p.Sunshine),
		"WindGustDir":   cat(p.WindGustDir),
		"WindGustSpeed": num(p.WindGustSpeed),
		"WindDir9am":    cat(p.WindDir9am),
		"WindDir3pm":    cat(p.WindDir3pm),
		"WindSpeed9am":  num(p.WindSpeed9am),
		"WindSpeed3pm":  num(p.WindSpeed3pm),
		"Humidity9am":   num(p.Humidity9am),
		"Humidity3pm":   num(p.Humidity3pm),
		"Pressure9am":   num(p.Pressure9am),
		"Pressure3pm":   num(p.Pressure3pm),
		"Cloud9am":      num(p.Cloud9am),
		"Cloud3pm":      num(p.Cloud3pm),
		"Temp9am":       num(p.Temp9am),
		"Temp3pm":       num(p.Temp3pm),
		"RainToday":     rainToday,
		"Date_month":    float64(p.DateMonth),
		"Date_day":      float64(p.DateDay),
	}
}

// PredictAutoPayload is the automatic prediction request.
type PredictAutoPayload struct {
	City string `json:"city" validate:"required"`
	Date string `json:"date" validate:"required"`
	Time string `json:"time" validate:"required"`
}
