package flighttime

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/charterquote/quoteengine/internal/cache"
	"github.com/charterquote/quoteengine/internal/models"
	"github.com/charterquote/quoteengine/internal/ratelimit"
	"github.com/charterquote/quoteengine/internal/timezone"
)

var errNoCompleteModel = errors.New("no model returned a complete leg set")

type Config struct {
	Timeout          time.Duration
	ModelsByCategory map[models.Category][]string
	Cache            cache.Cache
	RateLimiter      *ratelimit.UpstreamLimiter
	Logger           *zap.Logger
}

// Service estimates flight times through a Remote, averaging across the
// candidate aircraft models of a category.
type Service struct {
	remote Remote
	config Config
	logger *zap.Logger
}

// NewService builds a Service. A nil remote makes every estimate use the
// geometric fallback.
func NewService(remote Remote, config Config) *Service {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.Cache == nil {
		config.Cache = cache.NewNoOpCache()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{remote: remote, config: config, logger: logger.Named("flighttime")}
}

// CandidateModels returns the trip's explicit model or the configured models
// for its category, sorted and deduplicated.
func (s *Service) CandidateModels(trip models.Trip) []string {
	if id := strings.TrimSpace(trip.AircraftModelID); id != "" {
		return []string{id}
	}
	seen := map[string]struct{}{}
	var out []string
	for _, id := range s.config.ModelsByCategory[trip.Category] {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *Service) Estimate(ctx context.Context, legs []models.Leg, trip models.Trip) []float64 {
	out := make([]float64, len(legs))

	var flown []int
	for i, leg := range legs {
		if leg.IsFlown() {
			flown = append(flown, i)
		}
	}
	if len(flown) == 0 {
		return out
	}

	seconds, err := s.remoteEstimate(ctx, legs, flown, trip)
	if err != nil {
		s.logger.Warn("flight time estimate fell back to great-circle speed",
			zap.String("category", string(trip.Category)),
			zap.Int("legs", len(flown)),
			zap.Error(err),
		)
		for _, i := range flown {
			out[i] = FallbackSeconds(legs[i], trip.Category)
		}
		return out
	}

	for j, i := range flown {
		out[i] = seconds[j]
	}
	return out
}

func (s *Service) remoteEstimate(ctx context.Context, legs []models.Leg, flown []int, trip models.Trip) ([]float64, error) {
	if s.remote == nil {
		return nil, NewEstimatorError(Upstream, errors.New("no remote configured"))
	}
	modelIDs := s.CandidateModels(trip)
	if len(modelIDs) == 0 {
		return nil, NewEstimatorError(Upstream, errors.New("no aircraft model for category "+string(trip.Category)))
	}

	inputs := buildInputs(legs, flown, trip)
	key := cacheKey(modelIDs, inputs)

	if cached, ok := s.config.Cache.Get(ctx, key); ok {
		return cached, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	if s.config.RateLimiter != nil {
		if err := s.config.RateLimiter.Wait(callCtx, Upstream); err != nil {
			return nil, NewEstimatorError(Upstream, err)
		}
	}

	byModel, err := s.remote.FlightTimes(callCtx, inputs, modelIDs)
	if err != nil {
		return nil, err
	}

	seconds, err := average(byModel, modelIDs, len(inputs))
	if err != nil {
		return nil, NewEstimatorError(Upstream, err)
	}

	if err := s.config.Cache.Set(ctx, key, seconds); err != nil {
		s.logger.Debug("flight time cache write failed", zap.Error(err))
	}
	return seconds, nil
}

// average takes the per-leg mean across models that covered every leg.
func average(byModel map[string][]float64, modelIDs []string, n int) ([]float64, error) {
	sum := make([]float64, n)
	count := 0
	for _, id := range modelIDs {
		secs, ok := byModel[id]
		if !ok || len(secs) != n {
			continue
		}
		for i, v := range secs {
			sum[i] += v
		}
		count++
	}
	if count == 0 {
		return nil, errNoCompleteModel
	}
	for i := range sum {
		sum[i] = math.Round(sum[i] / float64(count))
	}
	return sum, nil
}

// buildInputs maps flown legs to request legs. Legs after the return
// occupied leg of a round trip depart on the return date.
func buildInputs(legs []models.Leg, flown []int, trip models.Trip) []LegInput {
	departDate, departTime := splitLocal(trip.DepartLocalISO)
	returnDate, returnTime := departDate, departTime
	if trip.IsRoundTrip() && trip.HasReturn() {
		returnDate, returnTime = splitLocal(trip.ReturnLocalISO)
	}

	dates := make([][2]string, len(legs))
	occupied := 0
	for i, leg := range legs {
		if leg.IsOccupied() {
			occupied++
		}
		if occupied >= 2 {
			dates[i] = [2]string{returnDate, returnTime}
		} else {
			dates[i] = [2]string{departDate, departTime}
		}
	}

	inputs := make([]LegInput, 0, len(flown))
	for _, i := range flown {
		leg := legs[i]
		inputs = append(inputs, LegInput{
			OriginICAO:      leg.From.Code(),
			DestinationICAO: leg.To.Code(),
			DepartDate:      dates[i][0],
			DepartTime:      dates[i][1],
			OriginLat:       leg.From.Lat,
			OriginLon:       leg.From.Lon,
			DestinationLat:  leg.To.Lat,
			DestinationLon:  leg.To.Lon,
		})
	}
	return inputs
}

func splitLocal(iso string) (date, clock string) {
	t, err := timezone.ParseLocal(iso, "")
	if err != nil {
		return "", ""
	}
	date = t.Format("2006-01-02")
	if len(strings.TrimSpace(iso)) > len("2006-01-02") {
		clock = t.Format("15:04")
	}
	return date, clock
}

func cacheKey(modelIDs []string, inputs []LegInput) cache.EstimateKey {
	key := cache.EstimateKey{Models: modelIDs, Legs: make([]cache.LegKey, len(inputs))}
	for i, in := range inputs {
		key.Legs[i] = cache.LegKey{
			Origin:      in.OriginICAO,
			Destination: in.DestinationICAO,
			DepartDate:  in.DepartDate,
		}
	}
	return key
}
