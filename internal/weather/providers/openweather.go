package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"

	"envirowatch/internal/fetch"
	"envirowatch/internal/weather"
)

// OpenWeatherProvider implements geocoding and forecasts against
// OpenWeatherMap. It is the primary weather source and requires an API key.
type OpenWeatherProvider struct {
	name       string
	apiKey     string
	geocodeURL string
	onecallURL string
	client     *http.Client
	circuit    *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:       "openweather",
		apiKey:     apiKey,
		geocodeURL: "http://api.openweathermap.org/geo/1.0/direct",
		onecallURL: "https://api.openweathermap.org/data/2.5/onecall",
		client:     client,
		circuit:    fetch.NewBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string { return p.name }

// Geocode resolves a city via the OpenWeather direct geocoding endpoint.
// An empty result list surfaces as weather.ErrGeocodeEmpty, never as made-up
// coordinates.
func (p *OpenWeatherProvider) Geocode(ctx context.Context, city string) (weather.Coordinates, error) {
	if p.apiKey == "" {
		return weather.Coordinates{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", city)
		values.Set("limit", "1")
		values.Set("appid", p.apiKey)
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.geocodeURL, values.Encode()), nil)
	}

	resp, err := fetch.Do(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return weather.Coordinates{}, err
	}
	defer resp.Body.Close()

	var payload []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Coordinates{}, err
	}
	if len(payload) == 0 {
		return weather.Coordinates{}, weather.ErrGeocodeEmpty
	}
	return weather.Coordinates{Lat: payload[0].Lat, Lon: payload[0].Lon}, nil
}

type onecallHour struct {
	Dt        int64    `json:"dt"`
	Temp      *float64 `json:"temp"`
	Humidity  *float64 `json:"humidity"`
	Pressure  *float64 `json:"pressure"`
	WindSpeed *float64 `json:"wind_speed"`
	WindDeg   *float64 `json:"wind_deg"`
	Clouds    *float64 `json:"clouds"`
}

// Forecast maps the one-call payload onto the snapshot: daily min/max,
// current readings, and the hourly entries closest to 9am and 3pm UTC.
func (p *OpenWeatherProvider) Forecast(ctx context.Context, coords weather.Coordinates) (weather.Snapshot, error) {
	if p.apiKey == "" {
		return weather.Snapshot{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", coords.Lat))
		values.Set("lon", fmt.Sprintf("%f", coords.Lon))
		values.Set("exclude", "minutely,alerts")
		values.Set("units", "metric")
		values.Set("appid", p.apiKey)
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.onecallURL, values.Encode()), nil)
	}

	resp, err := fetch.Do(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return weather.Snapshot{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			Temp      *float64 `json:"temp"`
			Humidity  *float64 `json:"humidity"`
			Pressure  *float64 `json:"pressure"`
			WindSpeed *float64 `json:"wind_speed"`
			WindDeg   *float64 `json:"wind_deg"`
			WindGust  *float64 `json:"wind_gust"`
			Clouds    *float64 `json:"clouds"`
			Rain      struct {
				OneH *float64 `json:"1h"`
			} `json:"rain"`
		} `json:"current"`
		Hourly []onecallHour `json:"hourly"`
		Daily  []struct {
			Temp struct {
				Min *float64 `json:"min"`
				Max *float64 `json:"max"`
			} `json:"temp"`
			Rain *float64 `json:"rain"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Snapshot{}, err
	}

	cur := payload.Current
	hour9 := pickHourly(payload.Hourly, 9)
	hour15 := pickHourly(payload.Hourly, 15)

	snap := weather.Snapshot{
		MinTemp:        cur.Temp,
		MaxTemp:        cur.Temp,
		Rainfall:       cur.Rain.OneH,
		WindGustSpeed:  cur.WindGust,
		WindGustDirDeg: cur.WindDeg,
		FetchedAt:      time.Now().UTC(),
	}
	if len(payload.Daily) > 0 {
		d := payload.Daily[0]
		if d.Temp.Min != nil {
			snap.MinTemp = d.Temp.Min
		}
		if d.Temp.Max != nil {
			snap.MaxTemp = d.Temp.Max
		}
		if snap.Rainfall == nil {
			snap.Rainfall = d.Rain
		}
	}

	applyHour := func(h *onecallHour, temp, humidity, pressure, speed, dir, cloud **float64) {
		if h == nil {
			*temp, *humidity, *pressure = cur.Temp, cur.Humidity, cur.Pressure
			*speed, *cloud = cur.WindSpeed, cur.Clouds
			return
		}
		*temp, *humidity, *pressure = h.Temp, h.Humidity, h.Pressure
		*speed, *dir, *cloud = h.WindSpeed, h.WindDeg, h.Clouds
	}
	applyHour(hour9, &snap.Temp9am, &snap.Humidity9am, &snap.Pressure9am, &snap.WindSpeed9am, &snap.WindDir9amDeg, &snap.Cloud9am)
	applyHour(hour15, &snap.Temp3pm, &snap.Humidity3pm, &snap.Pressure3pm, &snap.WindSpeed3pm, &snap.WindDir3pmDeg, &snap.Cloud3pm)

	return snap, nil
}

// pickHourly returns the first forecast entry whose UTC hour matches target,
// or nil when the hourly series is empty or has no match in the next 48h.
func pickHourly(hours []onecallHour, target int) *onecallHour {
	limit := len(hours)
	if limit > 48 {
		limit = 48
	}
	for i := 0; i < limit; i++ {
		if time.Unix(hours[i].Dt, 0).UTC().Hour() == target {
			return &hours[i]
		}
	}
	if len(hours) > 0 {
		return &hours[0]
	}
	return nil
}
