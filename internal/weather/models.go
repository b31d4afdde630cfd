package weather

import "time"

// Coordinates is a resolved geographic position for a city.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Snapshot is the normalized per-request weather view a provider produces.
// Every field is independently optional; nil means the provider had no value
// and the feature mapper applies its documented default instead. Wind
// directions are carried in degrees and converted to cardinal strings at
// feature-mapping time.
type Snapshot struct {
	MinTemp        *float64 `json:"min_temp,omitempty"`
	MaxTemp        *float64 `json:"max_temp,omitempty"`
	Temp9am        *float64 `json:"temp_9am,omitempty"`
	Temp3pm        *float64 `json:"temp_3pm,omitempty"`
	Humidity9am    *float64 `json:"humidity_9am,omitempty"`
	Humidity3pm    *float64 `json:"humidity_3pm,omitempty"`
	Pressure9am    *float64 `json:"pressure_9am,omitempty"`
	Pressure3pm    *float64 `json:"pressure_3pm,omitempty"`
	WindSpeed9am   *float64 `json:"wind_speed_9am,omitempty"`
	WindSpeed3pm   *float64 `json:"wind_speed_3pm,omitempty"`
	WindDir9amDeg  *float64 `json:"wind_dir_9am_deg,omitempty"`
	WindDir3pmDeg  *float64 `json:"wind_dir_3pm_deg,omitempty"`
	WindGustSpeed  *float64 `json:"wind_gust_speed,omitempty"`
	WindGustDirDeg *float64 `json:"wind_gust_dir_deg,omitempty"`
	Cloud9am       *float64 `json:"cloud_9am,omitempty"`
	Cloud3pm       *float64 `json:"cloud_3pm,omitempty"`
	Rainfall       *float64 `json:"rainfall,omitempty"`
	Evaporation    *float64 `json:"evaporation,omitempty"`
	Sunshine       *float64 `json:"sunshine,omitempty"`

	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Empty reports whether the snapshot carries no usable readings at all.
func (s Snapshot) Empty() bool {
	return s.MinTemp == nil && s.MaxTemp == nil && s.Temp9am == nil && s.Temp3pm == nil &&
		s.Humidity9am == nil && s.Humidity3pm == nil && s.Rainfall == nil
}

// DailySummary is one day of the min/max/rain timeseries served by the
// visualization endpoint.
type DailySummary struct {
	Date    time.Time `json:"date"`
	TempMin *float64  `json:"temp_min,omitempty"`
	TempMax *float64  `json:"temp_max,omitempty"`
	RainMM  *float64  `json:"rain_mm,omitempty"`
}
