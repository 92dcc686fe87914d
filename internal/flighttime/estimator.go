// Package flighttime estimates per-leg flight durations, delegating to a
// remote flight-time service when one is configured and falling back to a
// distance over average category speed estimate otherwise.
package flighttime

import (
	"context"

	"github.com/charterquote/quoteengine/internal/models"
)

// Estimator returns one duration in seconds per leg, in leg order. It never
// fails: implementations substitute a geometric estimate on any error.
type Estimator interface {
	Estimate(ctx context.Context, legs []models.Leg, trip models.Trip) []float64
}

type EstimatorError struct {
	Upstream string
	Err      error
}

func (e *EstimatorError) Error() string {
	return e.Upstream + ": " + e.Err.Error()
}

func (e *EstimatorError) Unwrap() error {
	return e.Err
}

func NewEstimatorError(upstream string, err error) *EstimatorError {
	return &EstimatorError{
		Upstream: upstream,
		Err:      err,
	}
}
