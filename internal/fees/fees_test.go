package fees

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charterquote/quoteengine/internal/models"
)

func ptr[T any](v T) *T { return &v }

var (
	teb = models.Airport{ICAO: "KTEB", Lat: 40.8501, Lon: -74.0608}
	hpn = models.Airport{ICAO: "KHPN", Lat: 41.0670, Lon: -73.7076}
	pbi = models.Airport{ICAO: "KPBI", Lat: 26.6832, Lon: -80.0956}
	jfk = models.Airport{ICAO: "KJFK", Lat: 40.6413, Lon: -73.7781}
)

func oneWay(from, to models.Airport) models.Trip {
	return models.Trip{TripType: models.TripOneWay, Category: models.CAT5, From: from, To: to, DepartLocalISO: "2026-03-01T09:00"}
}

func roundTrip(from, to models.Airport, ret string) models.Trip {
	t := oneWay(from, to)
	t.TripType = models.TripRoundTrip
	t.ReturnLocalISO = ret
	return t
}

func find(items []models.LineItem, code models.LineItemCode) (models.LineItem, bool) {
	for _, li := range items {
		if li.Code == code {
			return li, true
		}
	}
	return models.LineItem{}, false
}

func TestComputeEmpty(t *testing.T) {
	legs := []models.Leg{models.NewLeg(models.LegOccupied, teb, pbi)}
	assert.Empty(t, Compute(oneWay(teb, pbi), models.Knobs{}, legs))
}

func TestGroundHandling(t *testing.T) {
	legs := []models.Leg{
		models.NewLeg(models.LegRepo, hpn, teb),
		models.NewLeg(models.LegOccupied, teb, pbi),
		models.NewLeg(models.LegRepo, pbi, hpn),
	}

	k := models.Knobs{Fees: models.FeeKnobs{GroundHandling: &models.GroundHandlingFee{PerSegmentAmount: 250}}}.WithDefaults()
	li, ok := find(Compute(oneWay(teb, pbi), k, legs), models.CodeFeeGroundHandling)
	require.True(t, ok)
	assert.Equal(t, 250.0, li.Amount)

	k.Fees.GroundHandling.AppliesTo = models.GroundHandlingAllLegs
	li, ok = find(Compute(oneWay(teb, pbi), k, legs), models.CodeFeeGroundHandling)
	require.True(t, ok)
	assert.Equal(t, 750.0, li.Amount)
}

func TestGroundHandlingIgnoresZeroLengthLegs(t *testing.T) {
	legs := []models.Leg{
		models.NewLeg(models.LegRepo, teb, teb),
		models.NewLeg(models.LegOccupied, teb, pbi),
	}
	k := models.Knobs{Fees: models.FeeKnobs{GroundHandling: &models.GroundHandlingFee{PerSegmentAmount: 100, AppliesTo: models.GroundHandlingAllLegs}}}
	li, ok := find(Compute(oneWay(teb, pbi), k, legs), models.CodeFeeGroundHandling)
	require.True(t, ok)
	assert.Equal(t, 100.0, li.Amount)
}

func TestHighDensity(t *testing.T) {
	hd := []models.Airport{{ICAO: "kteb"}, {ICAO: "KJFK"}}
	rt := roundTrip(teb, jfk, "2026-03-03T17:00")
	legs := []models.Leg{
		models.NewLeg(models.LegRepo, hpn, teb),
		models.NewLeg(models.LegOccupied, teb, jfk),
		models.NewLeg(models.LegOccupied, jfk, teb),
		models.NewLeg(models.LegRepo, teb, hpn),
	}

	tests := []struct {
		name   string
		cfg    models.HighDensityFee
		trip   models.Trip
		legs   []models.Leg
		want   float64
		absent bool
	}{
		{
			name: "arrivals only single leg",
			cfg:  models.HighDensityFee{Airports: hd, FeePerVisit: 500, CountingMode: models.HDArrivalsOnly},
			trip: oneWay(pbi, teb),
			legs: []models.Leg{models.NewLeg(models.LegOccupied, pbi, teb)},
			want: 500,
		},
		{
			name: "segment endpoints",
			cfg:  models.HighDensityFee{Airports: hd, FeePerVisit: 100, CountingMode: models.HDSegmentEndpoints},
			trip: rt, legs: legs, want: 400,
		},
		{
			name: "landings include repo",
			cfg:  models.HighDensityFee{Airports: hd, FeePerVisit: 100, CountingMode: models.HDLandings},
			trip: rt, legs: legs, want: 300,
		},
		{
			name: "round trip origin double charge",
			cfg:  models.HighDensityFee{Airports: hd, FeePerVisit: 100, CountingMode: models.HDArrivalsOnly, RoundTripOriginDoubleCharge: true},
			trip: rt, legs: legs, want: 300,
		},
		{
			name: "trip cap",
			cfg:  models.HighDensityFee{Airports: hd, FeePerVisit: 100, CountingMode: models.HDLandings, TripCap: ptr(250.0)},
			trip: rt, legs: legs, want: 250,
		},
		{
			name:   "no visits",
			cfg:    models.HighDensityFee{Airports: hd, FeePerVisit: 500, CountingMode: models.HDArrivalsOnly},
			trip:   oneWay(teb, pbi),
			legs:   []models.Leg{models.NewLeg(models.LegOccupied, teb, pbi)},
			absent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			k := models.Knobs{Fees: models.FeeKnobs{HighDensity: &cfg}}
			li, ok := find(Compute(tt.trip, k, tt.legs), models.CodeFeeHighDensity)
			if tt.absent {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, li.Amount)
		})
	}
}

func TestLandingFees(t *testing.T) {
	legs := []models.Leg{
		models.NewLeg(models.LegRepo, hpn, teb),
		models.NewLeg(models.LegOccupied, teb, jfk),
		models.NewLeg(models.LegOccupied, jfk, teb),
		models.NewLeg(models.LegRepo, teb, hpn),
	}
	rt := roundTrip(teb, jfk, "2026-03-02T17:00")
	hdAirports := []models.Airport{jfk}

	tests := []struct {
		name     string
		cfg      models.LandingFee
		trip     models.Trip
		want     float64
		landings int
	}{
		{
			name: "standard all landings with hd override",
			cfg:  models.LandingFee{CountingMode: models.LandingAllLandings, DefaultAmount: 100, HDOverrideAmount: ptr(300.0), HDAirports: hdAirports, ConditionalLogic: models.LandingStandard},
			trip: rt, want: 600, landings: 4,
		},
		{
			name: "standard arrivals only",
			cfg:  models.LandingFee{CountingMode: models.LandingArrivalsOnly, DefaultAmount: 100, ConditionalLogic: models.LandingStandard},
			trip: rt, want: 200, landings: 2,
		},
		{
			name: "homebase origin charges occupied only",
			cfg:  models.LandingFee{CountingMode: models.LandingAllLandings, DefaultAmount: 100, ConditionalLogic: models.LandingHomebaseConditional, Homebase: &teb},
			trip: rt, want: 200, landings: 2,
		},
		{
			name: "homebase elsewhere charges three",
			cfg:  models.LandingFee{CountingMode: models.LandingAllLandings, DefaultAmount: 100, ConditionalLogic: models.LandingHomebaseConditional, Homebase: &hpn},
			trip: rt, want: 300, landings: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			k := models.Knobs{Fees: models.FeeKnobs{LandingFees: &cfg}}
			li, ok := find(Compute(tt.trip, k, legs), models.CodeFeeLanding)
			require.True(t, ok)
			assert.Equal(t, tt.want, li.Amount)
			assert.Equal(t, tt.landings, li.Meta["landings"])
		})
	}
}

func TestOvernight(t *testing.T) {
	legs := []models.Leg{models.NewLeg(models.LegOccupied, teb, pbi), models.NewLeg(models.LegOccupied, pbi, teb)}
	rt := roundTrip(teb, pbi, "2026-03-04T08:00")

	for _, tt := range []struct {
		trigger models.OvernightTrigger
		trip    models.Trip
		want    float64
	}{
		{models.OvernightRoundTripOnly, rt, 3000},
		{models.OvernightAlways, rt, 3000},
		{models.OvernightNever, rt, 0},
		{models.OvernightRoundTripOnly, oneWay(teb, pbi), 0},
	} {
		t.Run(string(tt.trigger), func(t *testing.T) {
			k := models.Knobs{Fees: models.FeeKnobs{Overnight: &models.OvernightFee{AmountPerNight: 1000, AppliesWhen: tt.trigger}}}
			li, ok := find(Compute(tt.trip, k, legs), models.CodeFeeOvernight)
			if tt.want == 0 {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, li.Amount)
			assert.Equal(t, 3, li.Meta["overnights"])
		})
	}
}

func TestDaily(t *testing.T) {
	legs := []models.Leg{models.NewLeg(models.LegOccupied, teb, pbi), models.NewLeg(models.LegOccupied, pbi, teb)}
	rt := roundTrip(teb, pbi, "2026-03-03T08:00")

	t.Run("per date touched", func(t *testing.T) {
		k := models.Knobs{Fees: models.FeeKnobs{Daily: &models.DailyFee{AmountPerCalendarDay: 200}}}.WithDefaults()
		li, ok := find(Compute(rt, k, legs), models.CodeFeeDaily)
		require.True(t, ok)
		assert.Equal(t, 600.0, li.Amount)
	})

	t.Run("first override wins", func(t *testing.T) {
		k := models.Knobs{Fees: models.FeeKnobs{Daily: &models.DailyFee{
			AmountPerCalendarDay: 200,
			DateOverrides: []models.DateOverride{
				{StartDate: "2026-03-02", EndDate: "2026-03-03", AmountPerDay: 500, Label: "Event"},
				{StartDate: "2026-03-01", EndDate: "2026-03-31", AmountPerDay: 50},
			},
		}}}
		li, ok := find(Compute(rt, k, legs), models.CodeFeeDaily)
		require.True(t, ok)
		assert.Equal(t, 1050.0, li.Amount)
		assert.Equal(t, 3, li.Meta["overridden_days"])
	})

	t.Run("nights plus one", func(t *testing.T) {
		k := models.Knobs{Fees: models.FeeKnobs{Daily: &models.DailyFee{AmountPerCalendarDay: 100, CalendarDayCounting: models.DayCountingNightsPlusOne}}}
		li, ok := find(Compute(rt, k, legs), models.CodeFeeDaily)
		require.True(t, ok)
		assert.Equal(t, 300.0, li.Amount)
	})

	t.Run("one way is one day", func(t *testing.T) {
		k := models.Knobs{Fees: models.FeeKnobs{Daily: &models.DailyFee{AmountPerCalendarDay: 100}}}
		li, ok := find(Compute(oneWay(teb, pbi), k, legs[:1]), models.CodeFeeDaily)
		require.True(t, ok)
		assert.Equal(t, 100.0, li.Amount)
	})
}

func TestComputeOrder(t *testing.T) {
	legs := []models.Leg{models.NewLeg(models.LegOccupied, teb, pbi), models.NewLeg(models.LegOccupied, pbi, teb)}
	k := models.Knobs{Fees: models.FeeKnobs{
		Daily:          &models.DailyFee{AmountPerCalendarDay: 100},
		Overnight:      &models.OvernightFee{AmountPerNight: 100, AppliesWhen: models.OvernightAlways},
		LandingFees:    &models.LandingFee{DefaultAmount: 100},
		GroundHandling: &models.GroundHandlingFee{PerSegmentAmount: 100},
	}}.WithDefaults()

	items := Compute(roundTrip(teb, pbi, "2026-03-02T08:00"), k, legs)
	var codes []models.LineItemCode
	for _, li := range items {
		codes = append(codes, li.Code)
		assert.True(t, li.Code.IsFee())
	}
	assert.Equal(t, []models.LineItemCode{
		models.CodeFeeGroundHandling, models.CodeFeeLanding, models.CodeFeeOvernight, models.CodeFeeDaily,
	}, codes)
}
