package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"

	"envirowatch/internal/airquality"
	"envirowatch/internal/fetch"
)

// GeocodeFunc resolves a city name to coordinates. The weather service's
// resolver is injected here so the air-pollution fallback shares the same
// geocoding chain instead of owning one.
type GeocodeFunc func(ctx context.Context, city string) (lat, lon float64, err error)

// OpenWeatherAirProvider is the secondary air-quality source, backed by the
// OpenWeather air-pollution endpoint. It needs an API key and resolved
// coordinates.
type OpenWeatherAirProvider struct {
	name    string
	apiKey  string
	baseURL string
	geocode GeocodeFunc
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherAirProvider(client *http.Client, apiKey string, geocode GeocodeFunc) *OpenWeatherAirProvider {
	return &OpenWeatherAirProvider{
		name:    "openweather",
		apiKey:  apiKey,
		baseURL: "http://api.openweathermap.org/data/2.5/air_pollution",
		geocode: geocode,
		client:  client,
		circuit: fetch.NewBreaker("openweather-air"),
	}
}

func (p *OpenWeatherAirProvider) Name() string { return p.name }

// openWeatherParams maps air-pollution component keys onto our pollutant
// enum. Components outside the enum (no, nh3) are dropped.
var openWeatherParams = map[string]airquality.Parameter{
	"pm2_5": airquality.PM25,
	"pm10":  airquality.PM10,
	"no2":   airquality.NO2,
	"so2":   airquality.SO2,
	"co":    airquality.CO,
	"o3":    airquality.O3,
}

func (p *OpenWeatherAirProvider) LatestMeasurements(ctx context.Context, city string) ([]airquality.PollutantReading, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	lat, lon, err := p.geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", lat))
		values.Set("lon", fmt.Sprintf("%f", lon))
		values.Set("appid", p.apiKey)
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil)
	}

	resp, err := fetch.Do(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		List []struct {
			Dt         int64              `json:"dt"`
			Components map[string]float64 `json:"components"`
		} `json:"list"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if len(payload.List) == 0 {
		return nil, nil
	}

	row := payload.List[0]
	observed := time.Unix(row.Dt, 0).UTC()
	if row.Dt == 0 {
		observed = time.Now().UTC()
	}

	readings := make([]airquality.PollutantReading, 0, len(row.Components))
	for key, value := range row.Components {
		param, ok := openWeatherParams[key]
		if !ok {
			continue
		}
		readings = append(readings, airquality.PollutantReading{
			Parameter:      param,
			Concentration:  value,
			Unit:           "µg/m3",
			ObservedAt:     observed,
			SourceProvider: p.name,
			Location:       fmt.Sprintf("%s (openweather)", city),
		})
	}
	return readings, nil
}
