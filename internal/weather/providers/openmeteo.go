package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"

	"envirowatch/internal/fetch"
	"envirowatch/internal/weather"
)

// OpenMeteoProvider is the keyless fallback weather source. It also serves as
// a fallback geocoder through the Open-Meteo geocoding API.
type OpenMeteoProvider struct {
	name        string
	forecastURL string
	geocodeURL  string
	client      *http.Client
	circuit     *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:        "openmeteo",
		forecastURL: "https://api.open-meteo.com/v1/forecast",
		geocodeURL:  "https://geocoding-api.open-meteo.com/v1/search",
		client:      client,
		circuit:     fetch.NewBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string { return p.name }

func (p *OpenMeteoProvider) Geocode(ctx context.Context, city string) (weather.Coordinates, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", city)
		values.Set("count", "1")
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.geocodeURL, values.Encode()), nil)
	}

	resp, err := fetch.Do(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return weather.Coordinates{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Coordinates{}, err
	}
	if len(payload.Results) == 0 {
		return weather.Coordinates{}, weather.ErrGeocodeEmpty
	}
	return weather.Coordinates{Lat: payload.Results[0].Latitude, Lon: payload.Results[0].Longitude}, nil
}

func (p *OpenMeteoProvider) Forecast(ctx context.Context, coords weather.Coordinates) (weather.Snapshot, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", coords.Lat))
		values.Set("longitude", fmt.Sprintf("%f", coords.Lon))
		values.Set("hourly", "temperature_2m,relativehumidity_2m,surface_pressure,windspeed_10m,winddirection_10m,cloudcover,precipitation")
		values.Set("daily", "temperature_2m_min,temperature_2m_max,precipitation_sum")
		values.Set("windspeed_unit", "ms")
		values.Set("timezone", "UTC")
		values.Set("forecast_days", "2")
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.forecastURL, values.Encode()), nil)
	}

	resp, err := fetch.Do(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return weather.Snapshot{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Hourly struct {
			Time          []string   `json:"time"`
			Temperature   []*float64 `json:"temperature_2m"`
			Humidity      []*float64 `json:"relativehumidity_2m"`
			Pressure      []*float64 `json:"surface_pressure"`
			WindSpeed     []*float64 `json:"windspeed_10m"`
			WindDirection []*float64 `json:"winddirection_10m"`
			CloudCover    []*float64 `json:"cloudcover"`
			Precipitation []*float64 `json:"precipitation"`
		} `json:"hourly"`
		Daily struct {
			TempMin          []*float64 `json:"temperature_2m_min"`
			TempMax          []*float64 `json:"temperature_2m_max"`
			PrecipitationSum []*float64 `json:"precipitation_sum"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Snapshot{}, err
	}

	snap := weather.Snapshot{FetchedAt: time.Now().UTC()}

	if len(payload.Daily.TempMin) > 0 {
		snap.MinTemp = payload.Daily.TempMin[0]
	}
	if len(payload.Daily.TempMax) > 0 {
		snap.MaxTemp = payload.Daily.TempMax[0]
	}
	if len(payload.Daily.PrecipitationSum) > 0 {
		snap.Rainfall = payload.Daily.PrecipitationSum[0]
	}

	idx9 := hourIndex(payload.Hourly.Time, 9)
	idx15 := hourIndex(payload.Hourly.Time, 15)

	at := func(vals []*float64, i int) *float64 {
		if i < 0 || i >= len(vals) {
			return nil
		}
		return vals[i]
	}

	snap.Temp9am = at(payload.Hourly.Temperature, idx9)
	snap.Humidity9am = at(payload.Hourly.Humidity, idx9)
	snap.Pressure9am = at(payload.Hourly.Pressure, idx9)
	snap.WindSpeed9am = at(payload.Hourly.WindSpeed, idx9)
	snap.WindDir9amDeg = at(payload.Hourly.WindDirection, idx9)
	snap.Cloud9am = at(payload.Hourly.CloudCover, idx9)

	snap.Temp3pm = at(payload.Hourly.Temperature, idx15)
	snap.Humidity3pm = at(payload.Hourly.Humidity, idx15)
	snap.Pressure3pm = at(payload.Hourly.Pressure, idx15)
	snap.WindSpeed3pm = at(payload.Hourly.WindSpeed, idx15)
	snap.WindDir3pmDeg = at(payload.Hourly.WindDirection, idx15)
	snap.Cloud3pm = at(payload.Hourly.CloudCover, idx15)

	return snap, nil
}

// Daily implements weather.DailyProvider for the visualization timeseries.
func (p *OpenMeteoProvider) Daily(ctx context.Context, coords weather.Coordinates, days int) ([]weather.DailySummary, error) {
	if days <= 0 || days > 16 {
		days = 7
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", coords.Lat))
		values.Set("longitude", fmt.Sprintf("%f", coords.Lon))
		values.Set("daily", "temperature_2m_min,temperature_2m_max,precipitation_sum")
		values.Set("timezone", "UTC")
		values.Set("forecast_days", strconv.Itoa(days))
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.forecastURL, values.Encode()), nil)
	}

	resp, err := fetch.Do(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Daily struct {
			Time             []string   `json:"time"`
			TempMin          []*float64 `json:"temperature_2m_min"`
			TempMax          []*float64 `json:"temperature_2m_max"`
			PrecipitationSum []*float64 `json:"precipitation_sum"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	series := make([]weather.DailySummary, 0, len(payload.Daily.Time))
	for i, dateStr := range payload.Daily.Time {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		entry := weather.DailySummary{Date: date}
		if i < len(payload.Daily.TempMin) {
			entry.TempMin = payload.Daily.TempMin[i]
		}
		if i < len(payload.Daily.TempMax) {
			entry.TempMax = payload.Daily.TempMax[i]
		}
		if i < len(payload.Daily.PrecipitationSum) {
			entry.RainMM = payload.Daily.PrecipitationSum[i]
		}
		series = append(series, entry)
	}
	return series, nil
}

// hourIndex finds the first hourly timestamp with the target UTC hour.
func hourIndex(times []string, target int) int {
	for i, ts := range times {
		t, err := time.Parse("2006-01-02T15:04", ts)
		if err != nil {
			continue
		}
		if t.Hour() == target {
			return i
		}
	}
	return -1
}
