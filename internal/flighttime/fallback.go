package flighttime

import (
	"context"
	"math"

	"github.com/charterquote/quoteengine/internal/geo"
	"github.com/charterquote/quoteengine/internal/models"
)

const defaultSpeedKnots = 430

var categorySpeedKnots = map[models.Category]float64{
	models.CAT1: 160,
	models.CAT2: 260,
	models.CAT3: 330,
	models.CAT4: 380,
	models.CAT5: 410,
	models.CAT6: 430,
	models.CAT7: 450,
	models.CAT8: 470,
}

// CategorySpeedKnots is the average block speed used by the fallback.
func CategorySpeedKnots(c models.Category) float64 {
	if s, ok := categorySpeedKnots[c]; ok {
		return s
	}
	return defaultSpeedKnots
}

// FallbackSeconds estimates a leg's duration from great-circle distance.
func FallbackSeconds(leg models.Leg, c models.Category) float64 {
	hours := geo.LegDistance(leg) / CategorySpeedKnots(c)
	return math.Max(0, math.Round(hours*3600))
}

// Fallback is the deterministic geometric estimator.
type Fallback struct{}

func (Fallback) Estimate(_ context.Context, legs []models.Leg, trip models.Trip) []float64 {
	out := make([]float64, len(legs))
	for i, leg := range legs {
		out[i] = FallbackSeconds(leg, trip.Category)
	}
	return out
}
