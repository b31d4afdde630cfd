// Package events publishes prediction events to Kafka when brokers are
// configured. Publishing is strictly best-effort: a broker outage never
// affects the prediction response.
package events

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// PredictionEvent is the message emitted for every completed prediction.
type PredictionEvent struct {
	ID              string    `json:"id"`
	City            string    `json:"city"`
	PredictedClass  int       `json:"predicted_class"`
	RainProbability float64   `json:"rain_probability"`
	Note            string    `json:"note,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Publisher wraps a kafka-go writer. A nil Publisher is valid and drops all
// events.
type Publisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewPublisher builds a publisher for the given brokers and topic.
func NewPublisher(brokers []string, topic string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			Async:        true,
		},
		logger: logger,
	}
}

// Publish emits one prediction event keyed by city.
func (p *Publisher) Publish(ctx context.Context, ev PredictionEvent) {
	if p == nil || p.writer == nil {
		return
	}
	value, err := json.Marshal(ev)
	if err != nil {
		p.logger.Warn("marshal prediction event", zap.Error(err))
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.City),
		Value: value,
	}); err != nil {
		p.logger.Warn("publish prediction event", zap.Error(err))
	}
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
