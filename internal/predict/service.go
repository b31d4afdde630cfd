// Package predict wires fetchers, feature mapping and the model wrapper into
// the single prediction pipeline: resolve → fetch → aggregate → map → infer →
// respond. The pipeline prefers a degraded answer over an error: upstream
// failures substitute deterministic defaults, and a missing model degrades to
// a documented heuristic instead of failing the caller.
package predict

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"envirowatch/internal/airquality"
	"envirowatch/internal/features"
	"envirowatch/internal/fetch"
	"envirowatch/internal/metrics"
	"envirowatch/internal/model"
	"envirowatch/internal/weather"
)

// NoteDemoNoModel tags responses produced by the heuristic fallback so
// callers can distinguish real inference from the demo path.
const NoteDemoNoModel = "demo_prediction_no_model"

// Meta carries per-request diagnostics alongside the prediction.
type Meta struct {
	Weather     fetch.Result           `json:"weather"`
	AirQuality  fetch.Result           `json:"air_quality"`
	AQI         *airquality.Aggregated `json:"aqi,omitempty"`
	ModelSource string                 `json:"model_source,omitempty"`
	Degraded    bool                   `json:"degraded,omitempty"`
}

// Response is the serializable prediction result.
type Response struct {
	Ok            bool            `json:"ok"`
	Prediction    []int           `json:"prediction,omitempty"`
	Probabilities [][]float64     `json:"probabilities"`
	FeaturesUsed  features.Vector `json:"features_used,omitempty"`
	Note          string          `json:"note,omitempty"`
	Error         string          `json:"error,omitempty"`
	Meta          *Meta           `json:"_meta,omitempty"`
}

// Recorder persists completed predictions; failures are logged, never
// surfaced.
type Recorder interface {
	Record(ctx context.Context, city string, resp *Response)
}

// Service is the prediction orchestrator.
type Service struct {
	weather *weather.Service
	air     *airquality.Service
	handle  *ModelHandle
	rec     Recorder
	logger  *zap.Logger
}

func NewService(w *weather.Service, air *airquality.Service, handle *ModelHandle, rec Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{weather: w, air: air, handle: handle, rec: rec, logger: logger}
}

// PredictAuto runs the full pipeline for a city/date/time request. Fetch
// failures degrade to deterministic defaults; only invalid input or a total
// inference failure produce an error response.
func (s *Service) PredictAuto(ctx context.Context, city, date, timeOfDay string) *Response {
	if city == "" || date == "" || timeOfDay == "" {
		return &Response{Ok: false, Error: "city, date, time required"}
	}
	if _, _, err := features.ParseDate(date); err != nil {
		return &Response{Ok: false, Error: err.Error()}
	}

	snapshot, weatherRes := s.weather.Fetch(ctx, city)
	aggregate, airRes := s.air.Fetch(ctx, city)

	if !weatherRes.Ok {
		metrics.UpstreamFailuresTotal.WithLabelValues("weather").Inc()
	}
	if !airRes.Ok {
		metrics.UpstreamFailuresTotal.WithLabelValues("air_quality").Inc()
	}

	meta := &Meta{Weather: weatherRes, AirQuality: airRes, AQI: aggregate}

	var snap *weather.Snapshot
	if weatherRes.Ok {
		snap = &snapshot
	}

	var (
		vec features.Vector
		err error
	)
	if snap == nil && aggregate == nil {
		// Nothing usable upstream: fall back to the fixed demo feature set so
		// the response stays deterministic and complete.
		meta.Degraded = true
		vec, err = features.Demo(city, date)
	} else {
		meta.Degraded = !weatherRes.Ok || !airRes.Ok
		vec, err = features.Map(snap, aggregate, city, date, timeOfDay)
	}
	if err != nil {
		return &Response{Ok: false, Error: err.Error(), Meta: meta}
	}

	resp := s.infer(vec, meta)
	s.record(ctx, city, resp)
	return resp
}

// PredictManual runs inference over an already-validated feature payload.
// Unlike the auto pipeline there is no demo fallback here: a missing model
// is surfaced to the caller as an explicit error.
func (s *Service) PredictManual(ctx context.Context, vec features.Vector) *Response {
	wrapper, err := s.handle.Get()
	if err != nil {
		return &Response{Ok: false, Error: err.Error()}
	}

	resp := s.runModel(wrapper, vec, &Meta{ModelSource: wrapper.Source()})
	city, _ := vec["Location"].(string)
	s.record(ctx, city, resp)
	return resp
}

// infer runs the model if one is loaded, or the heuristic demo prediction
// when no artifact is available at all.
func (s *Service) infer(vec features.Vector, meta *Meta) *Response {
	wrapper, err := s.handle.Get()
	if err != nil {
		if !errors.Is(err, model.ErrModelNotFound) {
			return &Response{Ok: false, Error: err.Error(), Meta: meta}
		}
		s.logger.Warn("no model artifact; serving demo prediction", zap.Error(err))
		return demoPrediction(vec, meta)
	}
	meta.ModelSource = wrapper.Source()
	return s.runModel(wrapper, vec, meta)
}

func (s *Service) runModel(wrapper *model.Wrapper, vec features.Vector, meta *Meta) *Response {
	result, err := wrapper.Predict(map[string]any(vec))
	if err != nil {
		// PredictError is caught at the wrapper boundary; surface the detail.
		return &Response{Ok: false, Error: err.Error(), Meta: meta}
	}
	return &Response{
		Ok:            true,
		Prediction:    result.Prediction,
		Probabilities: result.Probabilities,
		FeaturesUsed:  vec,
		Meta:          meta,
	}
}

// demoPrediction derives a heuristic rain probability from the mapped
// features. The formula is documented, deterministic and intentionally
// simple:
//
//	p = clamp(0.15 + 0.5*Humidity3pm/100 + 0.25*[RainToday=Yes] + 0.1*min(Rainfall,10)/10, 0.05, 0.95)
func demoPrediction(vec features.Vector, meta *Meta) *Response {
	humidity, _ := vec["Humidity3pm"].(float64)
	rainfall, _ := vec["Rainfall"].(float64)

	p := 0.15 + 0.5*humidity/100
	if vec["RainToday"] == "Yes" {
		p += 0.25
	}
	if rainfall > 10 {
		rainfall = 10
	}
	p += 0.1 * rainfall / 10

	if p < 0.05 {
		p = 0.05
	}
	if p > 0.95 {
		p = 0.95
	}

	class := 0
	if p >= 0.5 {
		class = 1
	}

	return &Response{
		Ok:            true,
		Prediction:    []int{class},
		Probabilities: [][]float64{{1 - p, p}},
		FeaturesUsed:  vec,
		Note:          NoteDemoNoModel,
		Meta:          meta,
	}
}

func (s *Service) record(ctx context.Context, city string, resp *Response) {
	if s.rec == nil || !resp.Ok {
		return
	}
	s.rec.Record(ctx, city, resp)
}

// WeatherFeatures returns the model-ready feature view for a city, degrading
// to the demo feature set when providers or credentials are unavailable.
func (s *Service) WeatherFeatures(ctx context.Context, city, date, timeOfDay string) (features.Vector, fetch.Result, error) {
	snapshot, res := s.weather.Fetch(ctx, city)
	if !res.Ok {
		vec, err := features.Demo(city, date)
		return vec, res, err
	}
	vec, err := features.Map(&snapshot, nil, city, date, timeOfDay)
	if err != nil {
		return nil, res, fmt.Errorf("map weather features: %w", err)
	}
	return vec, res, nil
}
