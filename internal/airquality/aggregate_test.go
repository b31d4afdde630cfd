package airquality

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestAggregateFirstReadingWins(t *testing.T) {
	now := time.Now()
	readings := []PollutantReading{
		{Parameter: PM25, Concentration: 40, ObservedAt: now},
		{Parameter: PM25, Concentration: 90, ObservedAt: now.Add(-time.Hour)},
		{Parameter: PM10, Concentration: 80, ObservedAt: now},
	}

	agg := Aggregate(readings, "openaq")
	if got := agg.Concentrations[PM25]; got != 40 {
		t.Fatalf("pm25 = %v, want the newest reading 40", got)
	}
	if agg.Source != "openaq" {
		t.Fatalf("source = %q, want openaq", agg.Source)
	}
}

func TestAggregateDerivesCombinedIndex(t *testing.T) {
	agg := Aggregate([]PollutantReading{
		{Parameter: PM25, Concentration: 40},
		{Parameter: PM10, Concentration: 80},
	}, "openaq")

	if agg.AQI == nil {
		t.Fatal("expected a combined AQI")
	}
	// PM2.5 sub-index 112 dominates PM10's 63.
	if *agg.AQI != 112 {
		t.Fatalf("aqi = %d, want 112", *agg.AQI)
	}
}

func TestAggregateIgnoresUnknownParameters(t *testing.T) {
	agg := Aggregate([]PollutantReading{
		{Parameter: Parameter("bc"), Concentration: 3},
		{Parameter: NO2, Concentration: 12},
	}, "openaq")

	if _, ok := agg.Concentrations[Parameter("bc")]; ok {
		t.Fatal("unknown parameter must not be aggregated")
	}
	if agg.AQI != nil {
		t.Fatal("no particulate readings means no combined index")
	}
}

type stubAirProvider struct {
	name     string
	readings []PollutantReading
	err      error
	calls    int
}

func (p *stubAirProvider) Name() string { return p.name }
func (p *stubAirProvider) LatestMeasurements(context.Context, string) ([]PollutantReading, error) {
	p.calls++
	return p.readings, p.err
}

func TestServiceFallsBackToSecondProvider(t *testing.T) {
	primary := &stubAirProvider{name: "openaq", err: errors.New("rate_limited")}
	fallback := &stubAirProvider{name: "openweather", readings: []PollutantReading{
		{Parameter: PM25, Concentration: 10},
	}}
	svc := NewService([]Provider{primary, fallback}, zap.NewNop())

	agg, res := svc.Fetch(context.Background(), "Delhi")
	if !res.Ok {
		t.Fatalf("fetch failed: %s", res.Error)
	}
	if agg.Source != "openweather" {
		t.Fatalf("source = %q, want the fallback provider", agg.Source)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Fatalf("calls = %d/%d, want each provider tried once", primary.calls, fallback.calls)
	}
}

func TestServiceReportsFirstErrorWhenChainExhausted(t *testing.T) {
	svc := NewService([]Provider{
		&stubAirProvider{name: "openaq", err: errors.New("rate_limited")},
		&stubAirProvider{name: "openweather", err: errors.New("server_error")},
	}, zap.NewNop())

	agg, res := svc.Fetch(context.Background(), "Delhi")
	if res.Ok || agg != nil {
		t.Fatal("exhausted chain must fail with a nil aggregate")
	}
	if res.Error != "rate_limited" {
		t.Fatalf("error = %q, want the first provider's reason", res.Error)
	}
}

func TestLeaderboardRanksWorstFirst(t *testing.T) {
	provider := &cityKeyedProvider{readings: map[string][]PollutantReading{
		"Delhi":  {{Parameter: PM25, Concentration: 120}},
		"Pune":   {{Parameter: PM25, Concentration: 10}},
		"Mumbai": {{Parameter: PM25, Concentration: 40}},
	}}
	svc := NewService([]Provider{provider}, zap.NewNop())
	lb := NewLeaderboard(svc, []string{"Pune", "Delhi", "Mumbai", "Ghost"}, time.Minute, zap.NewNop())

	board := lb.Get(context.Background())
	if len(board) != 4 {
		t.Fatalf("board size = %d, want 4", len(board))
	}
	if board[0].City != "Delhi" {
		t.Fatalf("worst city = %q, want Delhi", board[0].City)
	}
	last := board[len(board)-1]
	if last.City != "Ghost" || last.AQI != nil {
		t.Fatalf("failed city must stay on the board with a nil AQI, got %+v", last)
	}
}

func TestLeaderboardServesCacheWithinTTL(t *testing.T) {
	provider := &cityKeyedProvider{readings: map[string][]PollutantReading{
		"Delhi": {{Parameter: PM25, Concentration: 50}},
	}}
	svc := NewService([]Provider{provider}, zap.NewNop())
	lb := NewLeaderboard(svc, []string{"Delhi"}, time.Minute, zap.NewNop())

	lb.Get(context.Background())
	before := provider.calls
	lb.Get(context.Background())
	if provider.calls != before {
		t.Fatalf("second Get within TTL hit providers (%d -> %d calls)", before, provider.calls)
	}
}

type cityKeyedProvider struct {
	readings map[string][]PollutantReading
	calls    int
}

func (p *cityKeyedProvider) Name() string { return "stub" }
func (p *cityKeyedProvider) LatestMeasurements(_ context.Context, city string) ([]PollutantReading, error) {
	p.calls++
	r, ok := p.readings[city]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return r, nil
}
