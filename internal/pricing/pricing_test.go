package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charterquote/quoteengine/internal/models"
	"github.com/charterquote/quoteengine/internal/zones"
)

func ptr[T any](v T) *T { return &v }

var (
	teb = models.Airport{ICAO: "KTEB", State: "NJ"}
	pbi = models.Airport{ICAO: "KPBI", State: "FL"}
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		pricing  models.PricingKnobs
		network  *models.ZoneNetwork
		wantCode string
		wantPath string
	}{
		{"hourly ok", models.PricingKnobs{RateModel: models.RateSingleHourly, HourlyRate: ptr(5000.0)}, nil, "", ""},
		{"hourly missing", models.PricingKnobs{RateModel: models.RateSingleHourly}, nil, CodeMissingRate, "pricing.hourly_rate"},
		{"hourly zero", models.PricingKnobs{RateModel: models.RateSingleHourly, HourlyRate: ptr(0.0)}, nil, CodeMissingRate, "pricing.hourly_rate"},
		{"dual missing repo", models.PricingKnobs{RateModel: models.RateDual, OccupiedRate: ptr(6000.0)}, nil, CodeMissingRate, "pricing.repo_rate"},
		{"dual missing occupied", models.PricingKnobs{RateModel: models.RateDual, RepoRate: ptr(4000.0)}, nil, CodeMissingRate, "pricing.occupied_rate"},
		{"zone without network", models.PricingKnobs{RateModel: models.RateZoneBased, OccupiedRate: ptr(1.0), RepoRate: ptr(1.0)}, nil, CodeMissingZoneConfig, "repo.zone_network"},
		{"zone ok", models.PricingKnobs{RateModel: models.RateZoneBased, OccupiedRate: ptr(1.0), RepoRate: ptr(1.0)}, &models.ZoneNetwork{}, "", ""},
		{"unknown", models.PricingKnobs{RateModel: "per_mile"}, nil, CodeInvalidRateModel, "pricing.rate_model"},
		{"empty", models.PricingKnobs{}, nil, CodeInvalidRateModel, "pricing.rate_model"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := models.Knobs{Pricing: tt.pricing}
			k.Repo.ZoneNetwork = tt.network
			rej := Validate(k)
			if tt.wantCode == "" {
				assert.Nil(t, rej)
				return
			}
			require.NotNil(t, rej)
			assert.Equal(t, tt.wantCode, rej.Code)
			assert.Equal(t, tt.wantPath, rej.FieldPath)
		})
	}
}

func TestBaseHourly(t *testing.T) {
	t.Run("single rate", func(t *testing.T) {
		k := models.Knobs{Pricing: models.PricingKnobs{RateModel: models.RateSingleHourly, HourlyRate: ptr(4750.0)}}
		b, rej := Base(Input{Knobs: k, OccupiedHours: 2.333, RepoHours: 1.111})
		require.Nil(t, rej)
		assert.Equal(t, 11081.75, b.BaseOccupied)
		assert.Equal(t, 5277.25, b.BaseRepo)
		require.Len(t, b.Items, 2)
		assert.Equal(t, models.CodeBaseOccupied, b.Items[0].Code)
		assert.Equal(t, models.CodeBaseRepo, b.Items[1].Code)
		assert.Nil(t, b.ZoneCalculation)
	})

	t.Run("dual rate", func(t *testing.T) {
		k := models.Knobs{Pricing: models.PricingKnobs{RateModel: models.RateDual, OccupiedRate: ptr(6500.0), RepoRate: ptr(4500.0)}}
		b, rej := Base(Input{Knobs: k, OccupiedHours: 3, RepoHours: 1.5})
		require.Nil(t, rej)
		assert.Equal(t, 19500.0, b.BaseOccupied)
		assert.Equal(t, 6750.0, b.BaseRepo)
	})

	t.Run("repo item present at zero", func(t *testing.T) {
		k := models.Knobs{Pricing: models.PricingKnobs{RateModel: models.RateSingleHourly, HourlyRate: ptr(5000.0)}}
		b, rej := Base(Input{Knobs: k, OccupiedHours: 2})
		require.Nil(t, rej)
		require.Len(t, b.Items, 2)
		assert.Zero(t, b.Items[1].Amount)
	})
}

func TestBaseZoneBased(t *testing.T) {
	network := &models.ZoneNetwork{
		Zones: []models.Zone{
			{ID: "ne", Name: "Northeast", States: []string{"NJ"}},
			{ID: "fl", Name: "Florida", States: []string{"FL"}},
		},
		ZoneRepoTimes: []models.ZoneRepoTime{
			{ZoneID: "ne", OriginRepoTime: 1.5, DestinationRepoTime: 1.0},
			{ZoneID: "fl", OriginRepoTime: 2.0, DestinationRepoTime: 2.5},
		},
	}
	k := models.Knobs{
		Repo:    models.RepoKnobs{Mode: models.RepoZoneNetwork, ZoneNetwork: network},
		Pricing: models.PricingKnobs{RateModel: models.RateZoneBased, OccupiedRate: ptr(6000.0), RepoRate: ptr(4000.0)},
	}

	build := func(peak *models.PeakPeriod) Input {
		out, rej := zones.ResolveSide(teb, models.RepoDirectionOrigin, *network, peak)
		require.Nil(t, rej)
		back, rej := zones.ResolveSide(pbi, models.RepoDirectionDestination, *network, peak)
		require.Nil(t, rej)

		legs := []models.Leg{
			models.NewLeg(models.LegRepo, teb, teb).WithZone(out.Attribution()),
			models.NewLeg(models.LegOccupied, teb, pbi).WithTimes(2.5, 2.5, 900),
			models.NewLeg(models.LegRepo, pbi, pbi).WithZone(back.Attribution()),
		}
		legs[0] = legs[0].WithTimes(out.AppliedRepoTime, out.AppliedRepoTime, 0)
		legs[2] = legs[2].WithTimes(back.AppliedRepoTime, back.AppliedRepoTime, 0)
		return Input{Knobs: k, Legs: legs, OccupiedHours: 2.5, RepoHours: out.AppliedRepoTime + back.AppliedRepoTime,
			OutZone: &out, BackZone: &back, Peak: peak}
	}

	t.Run("off peak", func(t *testing.T) {
		b, rej := Base(build(nil))
		require.Nil(t, rej)
		assert.Equal(t, 15000.0, b.BaseOccupied)
		assert.Equal(t, 16000.0, b.BaseRepo)

		require.Len(t, b.Items, 3)
		assert.Equal(t, "Repo: Northeast (outbound)", b.Items[1].Label)
		assert.Equal(t, 6000.0, b.Items[1].Amount)
		assert.Equal(t, "Repo: Florida (inbound)", b.Items[2].Label)
		assert.Equal(t, 10000.0, b.Items[2].Amount)

		require.NotNil(t, b.ZoneCalculation)
		assert.Equal(t, "ne", b.ZoneCalculation.OutboundZone.ZoneID)
		assert.Equal(t, "fl", b.ZoneCalculation.InboundZone.ZoneID)
		assert.Nil(t, b.ZoneCalculation.PeakPeriod)
		assert.Equal(t, 4000.0, b.Legs[0].Meta.AppliedRate)
		assert.Zero(t, b.Legs[0].Meta.PeakMultiplier)
	})

	t.Run("peak", func(t *testing.T) {
		peak := &models.PeakPeriod{
			ID: "xmas", Name: "Holidays", StartDate: "2026-12-20", EndDate: "2027-01-03",
			ZoneTimeOverrides:  []models.ZoneRepoTime{{ZoneID: "ne", OriginRepoTime: 2.0}},
			RepoRateMultiplier: ptr(1.5),
			OccupiedMultiplier: ptr(1.2),
		}
		b, rej := Base(build(peak))
		require.Nil(t, rej)
		assert.Equal(t, 18000.0, b.BaseOccupied)
		// (2.0 + 2.5) h at 6000
		assert.Equal(t, 27000.0, b.BaseRepo)
		assert.Equal(t, 1.5, b.Legs[0].Meta.PeakMultiplier)

		pd := b.ZoneCalculation.PeakPeriod
		require.NotNil(t, pd)
		assert.Equal(t, "Holidays", pd.Name)
		require.NotNil(t, pd.OutboundRepoTime)
		assert.Equal(t, 2.0, *pd.OutboundRepoTime)
		assert.Nil(t, pd.InboundRepoTime, "zero override means no override")
		assert.Equal(t, "Holidays", b.Items[1].Meta["peak_period"])
	})
}
