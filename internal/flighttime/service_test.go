package flighttime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/charterquote/quoteengine/internal/cache"
	"github.com/charterquote/quoteengine/internal/flighttime"
	"github.com/charterquote/quoteengine/internal/flighttime/mocks"
	"github.com/charterquote/quoteengine/internal/models"
	"github.com/charterquote/quoteengine/internal/ratelimit"
)

var (
	teb = models.Airport{ICAO: "KTEB", Lat: 40.8501, Lon: -74.0608, State: "NJ"}
	pbi = models.Airport{ICAO: "KPBI", Lat: 26.6832, Lon: -80.0956, State: "FL"}
	hpn = models.Airport{ICAO: "KHPN", Lat: 41.0670, Lon: -73.7076, State: "NY"}
)

func oneWay() models.Trip {
	return models.Trip{
		TripType:       models.TripOneWay,
		Category:       models.CAT5,
		From:           teb,
		To:             pbi,
		DepartLocalISO: "2026-03-01T09:00",
	}
}

func modelsConfig() map[models.Category][]string {
	return map[models.Category][]string{models.CAT5: {"cj4", "cj3", "cj3"}}
}

func TestFallbackEstimate(t *testing.T) {
	legs := []models.Leg{
		models.NewLeg(models.LegOccupied, teb, pbi),
		models.NewLeg(models.LegRepo, pbi, pbi),
	}
	got := flighttime.Fallback{}.Estimate(context.Background(), legs, oneWay())

	require.Len(t, got, 2)
	assert.InDelta(t, 7900, got[0], 400, "~900 NM at 410 kts")
	assert.Zero(t, got[1])

	assert.Equal(t, 430.0, flighttime.CategorySpeedKnots("CAT9"))
	assert.Equal(t, 160.0, flighttime.CategorySpeedKnots(models.CAT1))
}

func TestServiceAveragesModels(t *testing.T) {
	remote := new(mocks.MockRemote)
	remote.On("FlightTimes", mock.Anything, mock.MatchedBy(func(legs []flighttime.LegInput) bool {
		return len(legs) == 2 && legs[0].OriginICAO == "KHPN" && legs[1].DepartDate == "2026-03-01"
	}), []string{"cj3", "cj4"}).Return(map[string][]float64{
		"cj3": {1000, 9000},
		"cj4": {1200, 8000},
	}, nil).Once()

	svc := flighttime.NewService(remote, flighttime.Config{ModelsByCategory: modelsConfig()})
	legs := []models.Leg{
		models.NewLeg(models.LegRepo, hpn, teb),
		models.NewLeg(models.LegOccupied, teb, pbi),
	}

	got := svc.Estimate(context.Background(), legs, oneWay())
	assert.Equal(t, []float64{1100, 8500}, got)
	remote.AssertExpectations(t)
}

func TestServiceSkipsNonFlownLegs(t *testing.T) {
	remote := new(mocks.MockRemote)
	remote.On("FlightTimes", mock.Anything, mock.MatchedBy(func(legs []flighttime.LegInput) bool {
		return len(legs) == 1
	}), mock.Anything).Return(map[string][]float64{"cj3": {9000}, "cj4": {9000}}, nil)

	svc := flighttime.NewService(remote, flighttime.Config{ModelsByCategory: modelsConfig()})
	legs := []models.Leg{
		models.NewLeg(models.LegRepo, teb, teb),
		models.NewLeg(models.LegOccupied, teb, pbi),
		models.NewLeg(models.LegRepo, pbi, pbi),
	}
	assert.Equal(t, []float64{0, 9000, 0}, svc.Estimate(context.Background(), legs, oneWay()))

	none := svc.Estimate(context.Background(), []models.Leg{models.NewLeg(models.LegRepo, teb, teb)}, oneWay())
	assert.Equal(t, []float64{0}, none)
	remote.AssertNumberOfCalls(t, "FlightTimes", 1)
}

func TestServiceFallsBack(t *testing.T) {
	legs := []models.Leg{models.NewLeg(models.LegOccupied, teb, pbi)}
	want := flighttime.Fallback{}.Estimate(context.Background(), legs, oneWay())

	t.Run("transport error", func(t *testing.T) {
		remote := new(mocks.MockRemote)
		remote.On("FlightTimes", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, flighttime.NewEstimatorError("flight-time", errors.New("connection refused")))

		svc := flighttime.NewService(remote, flighttime.Config{ModelsByCategory: modelsConfig()})
		assert.Equal(t, want, svc.Estimate(context.Background(), legs, oneWay()))
	})

	t.Run("incomplete results", func(t *testing.T) {
		remote := new(mocks.MockRemote)
		remote.On("FlightTimes", mock.Anything, mock.Anything, mock.Anything).
			Return(map[string][]float64{"other": {1}}, nil)

		svc := flighttime.NewService(remote, flighttime.Config{ModelsByCategory: modelsConfig()})
		assert.Equal(t, want, svc.Estimate(context.Background(), legs, oneWay()))
	})

	t.Run("no models for category", func(t *testing.T) {
		remote := new(mocks.MockRemote)
		svc := flighttime.NewService(remote, flighttime.Config{})
		assert.Equal(t, want, svc.Estimate(context.Background(), legs, oneWay()))
		remote.AssertNotCalled(t, "FlightTimes", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no remote", func(t *testing.T) {
		svc := flighttime.NewService(nil, flighttime.Config{ModelsByCategory: modelsConfig()})
		assert.Equal(t, want, svc.Estimate(context.Background(), legs, oneWay()))
	})

	t.Run("rate limiter deadline", func(t *testing.T) {
		limiter := ratelimit.NewUpstreamLimiter(ratelimit.RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})
		require.NoError(t, limiter.Wait(context.Background(), "flight-time"))

		remote := new(mocks.MockRemote)
		svc := flighttime.NewService(remote, flighttime.Config{
			ModelsByCategory: modelsConfig(),
			RateLimiter:      limiter,
			Timeout:          20 * time.Millisecond,
		})
		assert.Equal(t, want, svc.Estimate(context.Background(), legs, oneWay()))
		remote.AssertNotCalled(t, "FlightTimes", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestServiceExplicitModel(t *testing.T) {
	svc := flighttime.NewService(nil, flighttime.Config{ModelsByCategory: modelsConfig()})

	trip := oneWay()
	assert.Equal(t, []string{"cj3", "cj4"}, svc.CandidateModels(trip))

	trip.AircraftModelID = "pc12"
	assert.Equal(t, []string{"pc12"}, svc.CandidateModels(trip))
}

func TestServiceUsesRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := cache.DefaultRedisConfig()
	cfg.Host, cfg.Port = mr.Host(), mr.Port()
	rc, err := cache.NewRedisCache(cfg)
	require.NoError(t, err)
	defer rc.Close()

	remote := new(mocks.MockRemote)
	remote.On("FlightTimes", mock.Anything, mock.Anything, mock.Anything).
		Return(map[string][]float64{"cj3": {7000}, "cj4": {7000}}, nil).Once()

	svc := flighttime.NewService(remote, flighttime.Config{ModelsByCategory: modelsConfig(), Cache: rc})
	legs := []models.Leg{models.NewLeg(models.LegOccupied, teb, pbi)}

	assert.Equal(t, []float64{7000}, svc.Estimate(context.Background(), legs, oneWay()))
	assert.Equal(t, []float64{7000}, svc.Estimate(context.Background(), legs, oneWay()))
	remote.AssertNumberOfCalls(t, "FlightTimes", 1)
}

func TestServiceReturnLegsUseReturnDate(t *testing.T) {
	remote := new(mocks.MockRemote)
	remote.On("FlightTimes", mock.Anything, mock.MatchedBy(func(legs []flighttime.LegInput) bool {
		return len(legs) == 3 &&
			legs[0].DepartDate == "2026-03-01" && legs[0].DepartTime == "09:00" &&
			legs[1].DepartDate == "2026-03-04" &&
			legs[2].DepartDate == "2026-03-04"
	}), mock.Anything).Return(map[string][]float64{"cj3": {1, 2, 3}, "cj4": {1, 2, 3}}, nil)

	trip := oneWay()
	trip.TripType = models.TripRoundTrip
	trip.ReturnLocalISO = "2026-03-04T15:00"

	legs := []models.Leg{
		models.NewLeg(models.LegOccupied, teb, pbi),
		models.NewLeg(models.LegOccupied, pbi, teb),
		models.NewLeg(models.LegRepo, teb, hpn),
	}
	svc := flighttime.NewService(remote, flighttime.Config{ModelsByCategory: modelsConfig()})
	assert.Equal(t, []float64{1, 2, 3}, svc.Estimate(context.Background(), legs, trip))
	remote.AssertExpectations(t)
}
