// Package timeadj turns estimated flight seconds into billable hours and
// enforces the configured time minimums and daily limits.
package timeadj

import (
	"fmt"

	"github.com/charterquote/quoteengine/internal/geo"
	"github.com/charterquote/quoteengine/internal/models"
	"github.com/charterquote/quoteengine/internal/timezone"
	"github.com/charterquote/quoteengine/pkg/currency"
)

const (
	CodeMinLegTime         = "MIN_LEG_TIME"
	CodeMinFirstOccupied   = "MIN_FIRST_OCCUPIED"
	CodeMinTotalTime       = "MIN_TOTAL_TIME"
	CodeMinOccupiedTotal   = "MIN_OCCUPIED_TOTAL"
	CodeDailyOccupiedLimit = "DAILY_OCCUPIED_LIMIT"
	CodeInvalidApplyTo     = "INVALID_TIME_APPLY_TO"
)

const (
	maxPerLegPadding = 10.0
	dailyLimitEps    = 1e-9
)

type Result struct {
	Legs          []models.Leg
	OccupiedHours float64
	RepoHours     float64
	TotalHours    float64
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

func pads(applyTo models.TimeApplyTo, kind models.LegKind) bool {
	switch applyTo {
	case models.ApplyToBoth:
		return true
	case models.ApplyToOccupied:
		return kind == models.LegOccupied
	case models.ApplyToRepo:
		return kind == models.LegRepo
	}
	return false
}

// Apply converts seconds (one entry per leg, same order) to hours, pads the
// selected legs with taxi and buffer time and validates the result. Zone repo
// legs take their configured zone time as both actual and adjusted hours.
func Apply(trip models.Trip, knobs models.Knobs, legs []models.Leg, seconds []float64) (Result, *models.Rejection) {
	tk := knobs.Time
	if !tk.ApplyTo.Valid() {
		return Result{}, models.Reject(CodeInvalidApplyTo,
			fmt.Sprintf("Unsupported time.apply_to %q.", tk.ApplyTo), "time.apply_to")
	}

	taxi := clamp(tk.TaxiHoursPerLeg, 0, maxPerLegPadding)
	buffer := clamp(tk.BufferHoursPerLeg, 0, maxPerLegPadding)
	mins := tk.Minimums
	if mins == nil {
		mins = &models.TimeMinimums{}
	}

	actual := make([]float64, len(legs))
	for i, l := range legs {
		if l.IsZoneRepo() {
			actual[i] = l.Meta.ZoneRepoTime
			continue
		}
		if i < len(seconds) {
			actual[i] = seconds[i] / 3600
		}
	}

	if m := mins.MinActualFlightHoursPerLeg; m != nil {
		for i, l := range legs {
			if l.IsOccupied() && actual[i] < *m {
				return Result{}, models.Reject(CodeMinLegTime,
					fmt.Sprintf("Occupied leg %s→%s actual %.2fh < min %gh", l.From.Code(), l.To.Code(), actual[i], *m),
					"time.minimums.min_actual_flight_hours_per_leg")
			}
		}
	}

	if m := mins.MinFirstOccupiedLegHours; m != nil {
		for i, l := range legs {
			if !l.IsOccupied() {
				continue
			}
			if actual[i] < *m {
				return Result{}, models.Reject(CodeMinFirstOccupied,
					fmt.Sprintf("First occupied leg actual %.2fh < min %gh", actual[i], *m),
					"time.minimums.min_first_occupied_leg_hours")
			}
			break
		}
	}

	timed := make([]models.Leg, len(legs))
	for i, l := range legs {
		adjusted := actual[i]
		if !l.IsZoneRepo() && pads(tk.ApplyTo, l.Kind) {
			adjusted += taxi + buffer
		}
		timed[i] = l.WithTimes(currency.RoundHours(actual[i]), currency.RoundHours(adjusted), geo.LegDistance(l))
	}

	occupied := currency.RoundHours(models.SumAdjustedHours(models.FilterLegs(timed, models.LegOccupied)))
	repo := currency.RoundHours(models.SumAdjustedHours(models.FilterLegs(timed, models.LegRepo)))
	total := currency.RoundHours(occupied + repo)

	if m := mins.MinTotalTripHours; m != nil && total < *m {
		return Result{}, models.Reject(CodeMinTotalTime,
			fmt.Sprintf("Total time %.2fh < min %gh", total, *m),
			"time.minimums.min_total_trip_hours")
	}
	if m := mins.MinOccupiedHoursTotal; m != nil && occupied < *m {
		return Result{}, models.Reject(CodeMinOccupiedTotal,
			fmt.Sprintf("Occupied time %.2fh < min %gh", occupied, *m),
			"time.minimums.min_occupied_hours_total")
	}

	if dl := tk.DailyLimits; dl != nil && dl.MaxOccupiedHoursPerDay != nil {
		days := timezone.TripCalendarDays(trip)
		avg := occupied
		if days > 0 {
			avg = occupied / float64(days)
		}
		if avg > *dl.MaxOccupiedHoursPerDay+dailyLimitEps {
			return Result{}, models.Reject(CodeDailyOccupiedLimit,
				fmt.Sprintf("Avg occupied hours/day %.2fh > max %gh", avg, *dl.MaxOccupiedHoursPerDay),
				"time.daily_limits.max_occupied_hours_per_day")
		}
	}

	return Result{Legs: timed, OccupiedHours: occupied, RepoHours: repo, TotalHours: total}, nil
}

// MatchScore rates how much of the flying is revenue time on a 0-10 scale.
// It is undefined when no time is flown.
func MatchScore(occupiedHours, repoHours float64) (float64, bool) {
	denom := occupiedHours + repoHours
	if denom <= 0 {
		return 0, false
	}
	return occupiedHours / denom * 10, true
}
