// Package engine sequences the quoting pipeline for one trip and pricing
// configuration.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/charterquote/quoteengine/internal/aggregator"
	"github.com/charterquote/quoteengine/internal/airports"
	"github.com/charterquote/quoteengine/internal/discounts"
	"github.com/charterquote/quoteengine/internal/eligibility"
	"github.com/charterquote/quoteengine/internal/fees"
	"github.com/charterquote/quoteengine/internal/flighttime"
	"github.com/charterquote/quoteengine/internal/models"
	"github.com/charterquote/quoteengine/internal/pricing"
	"github.com/charterquote/quoteengine/internal/reposition"
	"github.com/charterquote/quoteengine/internal/timeadj"
	"github.com/charterquote/quoteengine/internal/timezone"
)

const CodeMatchScoreTooLow = "MATCH_SCORE_TOO_LOW"

// Deps are the engine's collaborators. Every field is optional.
type Deps struct {
	Estimator flighttime.Estimator
	Registry  *airports.Registry
	Logger    *zap.Logger
	Now       func() time.Time
}

type Engine struct {
	estimator flighttime.Estimator
	registry  *airports.Registry
	logger    *zap.Logger
	now       func() time.Time
}

func New(deps Deps) *Engine {
	e := &Engine{
		estimator: deps.Estimator,
		registry:  deps.Registry,
		logger:    deps.Logger,
		now:       deps.Now,
	}
	if e.estimator == nil {
		e.estimator = flighttime.Fallback{}
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	e.logger = e.logger.Named("engine")
	return e
}

func (e *Engine) reject(r *models.Rejection, trip models.Trip) models.QuoteResult {
	e.logger.Debug("quote rejected",
		zap.String("code", r.Code),
		zap.String("field_path", r.FieldPath),
		zap.String("from", trip.From.Code()),
		zap.String("to", trip.To.Code()),
		zap.String("category", string(trip.Category)),
	)
	return models.Rejected(*r)
}

// SplitThreshold reports whether trip must be quoted as two one-ways and the
// threshold that triggered it.
func SplitThreshold(trip models.Trip, k models.Knobs) (int, bool) {
	if !trip.IsRoundTrip() || !trip.HasReturn() || k.Trip.MaxNightsBeforeSplit == nil {
		return 0, false
	}
	threshold := *k.Trip.MaxNightsBeforeSplit
	return threshold, timezone.TripOvernights(trip) > threshold
}

// Quote prices trip under knobs. Expected failures are returned as rejected
// results; the estimator never fails the quote.
func (e *Engine) Quote(ctx context.Context, trip models.Trip, knobs models.Knobs) models.QuoteResult {
	knobs = knobs.WithDefaults()

	trip, rej := e.registry.ResolveTrip(trip)
	if rej != nil {
		return e.reject(rej, trip)
	}
	knobs, rej = e.registry.ResolveKnobs(knobs)
	if rej != nil {
		return e.reject(rej, trip)
	}

	if rej := ValidateBasics(trip, knobs); rej != nil {
		return e.reject(rej, trip)
	}

	now := e.now()
	if threshold, split := SplitThreshold(trip, knobs); split {
		e.logger.Debug("splitting round trip",
			zap.Int("overnights", timezone.TripOvernights(trip)),
			zap.Int("threshold", threshold),
		)
		return aggregator.QuoteSplit(ctx, trip, threshold, func(ctx context.Context, half models.Trip) models.QuoteResult {
			return e.itinerary(ctx, half, knobs, now)
		})
	}
	return e.itinerary(ctx, trip, knobs, now)
}

func (e *Engine) itinerary(ctx context.Context, trip models.Trip, k models.Knobs, now time.Time) models.QuoteResult {
	occupied := trip.OccupiedLegs()

	if rej := eligibility.Check(trip, k, now); rej != nil {
		return e.reject(rej, trip)
	}

	var candidates []models.Airport
	if k.Repo.Mode == models.RepoVHBNetwork || discounts.HomeBaseActive(k) {
		candidates = reposition.Candidates(trip.Category, k)
	}

	plan, rej := reposition.Resolve(reposition.Input{
		Trip:       trip,
		Knobs:      k,
		Start:      trip.From,
		End:        occupied[len(occupied)-1].To,
		Candidates: candidates,
	})
	if rej != nil {
		return e.reject(rej, trip)
	}

	legs := plan.Legs(occupied)
	seconds := e.estimator.Estimate(ctx, legs, trip)

	timed, rej := timeadj.Apply(trip, k, legs, seconds)
	if rej != nil {
		return e.reject(rej, trip)
	}

	outHours, backHours := reposition.RepoHours(timed.Legs, len(plan.LegsOut))
	if rej := reposition.CheckLimits(k, outHours, backHours); rej != nil {
		return e.reject(rej, trip)
	}

	score, scored := timeadj.MatchScore(timed.OccupiedHours, timed.RepoHours)
	matchCfg := matchScoreConfig(k)
	if matchCfg != nil && scored && score < matchCfg.Threshold && matchCfg.Action == models.MatchActionReject {
		return e.reject(models.Reject(CodeMatchScoreTooLow,
			fmt.Sprintf("Match score %.2f < threshold %g", score, matchCfg.Threshold),
			"scoring.match_score.threshold"), trip)
	}

	if rej := eligibility.CheckOccupiedCeilings(trip, k, timed.Legs); rej != nil {
		return e.reject(rej, trip)
	}

	base, rej := pricing.Base(pricing.Input{
		Knobs:         k,
		Legs:          timed.Legs,
		OccupiedHours: timed.OccupiedHours,
		RepoHours:     timed.RepoHours,
		OutZone:       plan.OutZone,
		BackZone:      plan.BackZone,
		Peak:          plan.Peak,
	})
	if rej != nil {
		return e.reject(rej, trip)
	}

	items := append([]models.LineItem{}, base.Items...)
	if matchCfg != nil {
		info := models.LineItem{
			Code:  models.CodeInfoMatchScore,
			Label: "Match score",
			Meta: map[string]any{
				"threshold": matchCfg.Threshold,
				"action":    matchCfg.Action,
			},
		}
		if scored {
			info = info.WithMeta("match_score", score)
		}
		items = append(items, info)
	}

	items = append(items, fees.Compute(trip, k, base.Legs)...)

	if li, ok := discounts.HomeBase(trip, k, candidates, discounts.Of(items)); ok {
		items = append(items, li)
	}
	if li, ok := discounts.TimeQualified(k, base.Legs, discounts.Of(items)); ok {
		items = append(items, li)
	}
	items = append(items, discounts.ApplyConstraints(k, discounts.Of(items).Total, len(occupied))...)

	times := models.TimeSummary{
		OccupiedHours:       timed.OccupiedHours,
		RepoHours:           timed.RepoHours,
		TotalHours:          timed.TotalHours,
		Overnights:          timezone.TripOvernights(trip),
		CalendarDaysTouched: timezone.TripCalendarDays(trip),
	}
	if scored {
		times.MatchScore = &score
	}

	return models.Accepted(flownLegs(base.Legs), times, items, aggregator.Summarize(items), base.ZoneCalculation)
}

// flownLegs drops zone repo placeholders. Their time survives in the
// BASE_REPO_ZONE items and the zone calculation.
func flownLegs(legs []models.Leg) []models.Leg {
	out := make([]models.Leg, 0, len(legs))
	for _, l := range legs {
		if l.IsZoneRepo() && !l.IsFlown() {
			continue
		}
		out = append(out, l)
	}
	return out
}

func matchScoreConfig(k models.Knobs) *models.MatchScoreKnobs {
	if k.Scoring == nil || k.Scoring.MatchScore == nil || !k.Scoring.MatchScore.Enabled {
		return nil
	}
	return k.Scoring.MatchScore
}

// CategoryResult is the quote for one aircraft category.
type CategoryResult struct {
	Category models.Category
	Result   models.QuoteResult
}

// QuoteCategories quotes trip once per category concurrently. Results keep
// the order of categories.
func (e *Engine) QuoteCategories(ctx context.Context, trip models.Trip, categories []models.Category, knobs models.Knobs) []CategoryResult {
	results := make([]CategoryResult, len(categories))
	var wg sync.WaitGroup

	for i, c := range categories {
		wg.Add(1)
		go func(i int, category models.Category) {
			defer wg.Done()
			t := trip
			t.Category = category
			results[i] = CategoryResult{Category: category, Result: e.Quote(ctx, t, knobs)}
		}(i, c)
	}

	wg.Wait()
	return results
}
