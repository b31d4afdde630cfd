package model

import (
	"errors"
	"fmt"
)

// ErrModelNotFound means no recognized artifact file exists at the configured
// location. It is fatal to the request that triggered it but never crashes
// the process.
var ErrModelNotFound = errors.New("model not found")

// PredictError wraps any inference-time failure. It is caught at the wrapper
// boundary and surfaced with detail instead of propagating.
type PredictError struct {
	Detail string
}

func (e *PredictError) Error() string {
	return fmt.Sprintf("model predict failed: %s", e.Detail)
}
