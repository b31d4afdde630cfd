// Package providers contains the concrete air-quality fetchers.
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

// OpenAQProvider is the primary air-quality source. OpenAQ needs no API key
// and reports raw pollutant measurements per monitoring location.
type OpenAQProvider struct {
	name    string
	baseURL string
	limit   int
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenAQProvider(client *http.Client) *OpenAQProvider {
	return &OpenAQProvider{
		name:    "openaq",
		baseURL: "https://api.openaq.org/v2/latest",
		limit:   1,
		client:  client,
		circuit: fetch.NewBreaker("openaq"),
	}
}

func (p *OpenAQProvider) Name() string { return p.name }

// LatestMeasurements queries OpenAQ /v2/latest for the city. Results arrive
// newest-first per location, which the aggregator relies on.
func (p *OpenAQProvider) LatestMeasurements(ctx context.Context, city string) ([]airquality.PollutantReading, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("city", city)
		values.Set("limit", fmt.Sprintf("%d", p.limit))
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil)
	}

	resp, err := fetch.Do(ctx, p.client, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Results []struct {
			Location     string `json:"location"`
			SourceName   string `json:"sourceName"`
			Measurements []struct {
				Parameter   string  `json:"parameter"`
				Value       float64 `json:"value"`
				Unit        string  `json:"unit"`
				LastUpdated string  `json:"lastUpdated"`
				SourceName  string  `json:"sourceName"`
			} `json:"measurements"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	var readings []airquality.PollutantReading
	limit := p.limit
	if limit > len(payload.Results) {
		limit = len(payload.Results)
	}
	for _, loc := range payload.Results[:limit] {
		for _, m := range loc.Measurements {
			observed, err := time.Parse(time.RFC3339, m.LastUpdated)
			if err != nil {
				observed = time.Now().UTC()
			}
			source := m.SourceName
			if source == "" {
				source = loc.SourceName
			}
			readings = append(readings, airquality.PollutantReading{
				Parameter:      airquality.Parameter(m.Parameter),
				Concentration:  m.Value,
				Unit:           m.Unit,
				ObservedAt:     observed,
				SourceProvider: source,
				Location:       loc.Location,
			})
		}
	}
	return readings, nil
}
