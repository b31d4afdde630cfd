// Package store persists completed predictions for the history endpoint.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no predictions have been recorded yet.
var ErrNotFound = errors.New("no predictions recorded")

// Record is one stored prediction.
type Record struct {
	ID              string    `json:"id"`
	City            string    `json:"city"`
	PredictedClass  int       `json:"predicted_class"`
	RainProbability float64   `json:"rain_probability"`
	Note            string    `json:"note,omitempty"`
	InputJSON       string    `json:"input,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Store is the contract both the in-memory and the Postgres implementation
// satisfy.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
}
