package predict

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"envirowatch/internal/events"
	"envirowatch/internal/metrics"
	"envirowatch/internal/store"
)

// StoreRecorder persists predictions and emits events and metrics. All of it
// is best-effort side work off the response path.
type StoreRecorder struct {
	store     store.Store
	publisher *events.Publisher
	logger    *zap.Logger
}

func NewStoreRecorder(s store.Store, publisher *events.Publisher, logger *zap.Logger) *StoreRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreRecorder{store: s, publisher: publisher, logger: logger}
}

func (r *StoreRecorder) Record(ctx context.Context, city string, resp *Response) {
	outcome := "model"
	if resp.Note == NoteDemoNoModel {
		outcome = "demo"
	}
	metrics.PredictionsTotal.WithLabelValues(outcome).Inc()

	var probability float64
	if len(resp.Probabilities) > 0 && len(resp.Probabilities[0]) == 2 {
		probability = resp.Probabilities[0][1]
	}
	var class int
	if len(resp.Prediction) > 0 {
		class = resp.Prediction[0]
	}

	input, err := json.Marshal(resp.FeaturesUsed)
	if err != nil {
		input = nil
	}

	rec := store.Record{
		ID:              uuid.NewString(),
		City:            city,
		PredictedClass:  class,
		RainProbability: probability,
		Note:            resp.Note,
		InputJSON:       string(input),
		CreatedAt:       time.Now().UTC(),
	}

	if r.store != nil {
		if err := r.store.Save(ctx, rec); err != nil {
			r.logger.Warn("save prediction record", zap.Error(err))
		}
	}

	r.publisher.Publish(ctx, events.PredictionEvent{
		ID:              rec.ID,
		City:            rec.City,
		PredictedClass:  rec.PredictedClass,
		RainProbability: rec.RainProbability,
		Note:            rec.Note,
		CreatedAt:       rec.CreatedAt,
	})
}
