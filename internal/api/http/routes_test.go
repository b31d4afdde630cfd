package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"envirowatch/internal/airquality"
	"envirowatch/internal/predict"
	"envirowatch/internal/store"
	"envirowatch/internal/weather"
)

type downGeocoder struct{ calls *int }

func (downGeocoder) Name() string { return "down-geo" }
func (g downGeocoder) Geocode(context.Context, string) (weather.Coordinates, error) {
	if g.calls != nil {
		*g.calls++
	}
	return weather.Coordinates{}, errors.New("connection refused")
}

type downAirProvider struct{ calls *int }

func (downAirProvider) Name() string { return "down-air" }
func (p downAirProvider) LatestMeasurements(context.Context, string) ([]airquality.PollutantReading, error) {
	if p.calls != nil {
		*p.calls++
	}
	return nil, errors.New("connection refused")
}

type testEnv struct {
	app           *fiber.App
	upstreamCalls *int
}

func newTestEnv(t *testing.T, modelDir string) *testEnv {
	t.Helper()

	calls := new(int)
	w := weather.NewService([]weather.Geocoder{downGeocoder{calls: calls}}, nil, zap.NewNop())
	air := airquality.NewService([]airquality.Provider{downAirProvider{calls: calls}}, zap.NewNop())
	memStore := store.NewMemoryStore(10)
	svc := predict.NewService(w, air, predict.NewModelHandle(modelDir), nil, zap.NewNop())

	app := fiber.New()
	RegisterRoutes(app, Deps{
		Predict:     svc,
		Air:         air,
		Leaderboard: airquality.NewLeaderboard(air, nil, 0, zap.NewNop()),
		Weather:     w,
		Store:       memStore,
	})
	return &testEnv{app: app, upstreamCalls: calls}
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestHealthAndPing(t *testing.T) {
	env := newTestEnv(t, t.TempDir())

	for _, path := range []string{"/api/health", "/api/ping"} {
		resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s returned %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestPredictRejectsMalformedPayload(t *testing.T) {
	env := newTestEnv(t, t.TempDir())

	// Unparsable numeric field and empty Location: validation must fail
	// before any upstream call is attempted.
	payload := `{"Location":"","MinTemp":"not-a-number"}`
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["ok"] != false {
		t.Fatal("response must carry ok:false")
	}
	if *env.upstreamCalls != 0 {
		t.Fatalf("validation failure made %d upstream calls, want 0", *env.upstreamCalls)
	}
}

func TestPredictWithEmptyModelDir(t *testing.T) {
	env := newTestEnv(t, t.TempDir())

	payload := `{"Location":"Sydney","MinTemp":15.0,"MaxTemp":25.0,"Rainfall":0.0,"Date_month":11,"Date_day":14}`
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["ok"] != false {
		t.Fatal("response must carry ok:false")
	}
	msg, _ := body["error"].(string)
	if !strings.Contains(msg, "model not found") {
		t.Fatalf("error = %q, want a model-not-found message", msg)
	}

	// The process keeps serving: health still succeeds afterwards.
	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health after model failure = %d, want 200", resp.StatusCode)
	}
}

func TestPredictAutoDegradesToDemo(t *testing.T) {
	env := newTestEnv(t, t.TempDir())

	payload := `{"city":"Delhi","date":"2024-07-01","time":"09:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/predict-auto", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 even with every upstream down", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["ok"] != true {
		t.Fatal("degraded pipeline must still answer ok:true")
	}
	if body["note"] != predict.NoteDemoNoModel {
		t.Fatalf("note = %v, want %q", body["note"], predict.NoteDemoNoModel)
	}
}

func TestPredictAutoValidation(t *testing.T) {
	env := newTestEnv(t, t.TempDir())

	for _, payload := range []string{
		`{"date":"2024-07-01","time":"09:00"}`,
		`{"city":"Delhi","date":"not-a-date","time":"09:00"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/predict-auto", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")

		resp, err := env.app.Test(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("payload %s: status = %d, want 400", payload, resp.StatusCode)
		}
	}
}

func TestAQIRequiresCity(t *testing.T) {
	env := newTestEnv(t, t.TempDir())

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/aqi", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestPredictionsEmptyHistory(t *testing.T) {
	env := newTestEnv(t, t.TempDir())

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/predictions", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["ok"] != true {
		t.Fatal("empty history is not an error")
	}
}

func TestWeatherFeaturesFallBackToDemo(t *testing.T) {
	env := newTestEnv(t, t.TempDir())

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/weather?city=Delhi&date=2024-07-01", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["ok"] != false {
		t.Fatal("degraded weather view reports ok:false alongside demo features")
	}
	feats, _ := body["features"].(map[string]any)
	if feats["Location"] != "Delhi" {
		t.Fatalf("demo features missing Location, got %v", feats["Location"])
	}
}
