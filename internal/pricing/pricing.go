// Package pricing turns billable hours into base cost line items under the
// configured rate model.
package pricing

import (
	"fmt"

	"github.com/charterquote/quoteengine/internal/models"
	"github.com/charterquote/quoteengine/internal/zones"
	"github.com/charterquote/quoteengine/pkg/currency"
)

const (
	CodeMissingRate       = "MISSING_RATE"
	CodeInvalidRateModel  = "INVALID_RATE_MODEL"
	CodeMissingZoneConfig = "MISSING_ZONE_CONFIG"
)

type Input struct {
	Knobs         models.Knobs
	Legs          []models.Leg
	OccupiedHours float64
	RepoHours     float64

	// Zone sides and the peak period resolved for the itinerary. Only read
	// by the zone_based model.
	OutZone  *zones.Side
	BackZone *zones.Side
	Peak     *models.PeakPeriod
}

// Priced is the base cost of an itinerary: its line items and the legs
// annotated with applied rates.
type Priced struct {
	Items           []models.LineItem
	BaseOccupied    float64
	BaseRepo        float64
	Legs            []models.Leg
	ZoneCalculation *models.ZoneCalculation
}

func positive(v *float64) bool {
	return v != nil && *v > 0
}

func missingRate(field string, model models.RateModel) *models.Rejection {
	return models.Reject(CodeMissingRate,
		fmt.Sprintf("pricing.%s required when pricing.rate_model=%s", field, model),
		"pricing."+field)
}

// Validate checks that the fields required by the selected rate model are set.
func Validate(k models.Knobs) *models.Rejection {
	p := k.Pricing
	switch p.RateModel {
	case models.RateSingleHourly:
		if !positive(p.HourlyRate) {
			return missingRate("hourly_rate", p.RateModel)
		}
		return nil
	case models.RateDual:
		if !positive(p.RepoRate) {
			return missingRate("repo_rate", p.RateModel)
		}
		if !positive(p.OccupiedRate) {
			return missingRate("occupied_rate", p.RateModel)
		}
		return nil
	case models.RateZoneBased:
		if k.Repo.ZoneNetwork == nil {
			return models.Reject(CodeMissingZoneConfig,
				"repo.zone_network required for zone_based pricing", "repo.zone_network")
		}
		if !positive(p.OccupiedRate) {
			return missingRate("occupied_rate", p.RateModel)
		}
		if !positive(p.RepoRate) {
			return missingRate("repo_rate", p.RateModel)
		}
		return nil
	}
	return models.Reject(CodeInvalidRateModel,
		fmt.Sprintf("Unsupported rate model %q.", p.RateModel), "pricing.rate_model")
}

// Base prices the itinerary. Every amount is rounded when it is computed.
func Base(in Input) (Priced, *models.Rejection) {
	if rej := Validate(in.Knobs); rej != nil {
		return Priced{}, rej
	}

	p := in.Knobs.Pricing
	switch p.RateModel {
	case models.RateSingleHourly:
		return hourly(in, *p.HourlyRate, *p.HourlyRate), nil
	case models.RateDual:
		return hourly(in, *p.OccupiedRate, *p.RepoRate), nil
	case models.RateZoneBased:
		return zoneBased(in), nil
	}
	return Priced{}, models.Reject(CodeInvalidRateModel,
		fmt.Sprintf("Unsupported rate model %q.", p.RateModel), "pricing.rate_model")
}

func hourly(in Input, occupiedRate, repoRate float64) Priced {
	b := Priced{
		BaseOccupied: currency.RoundMoney(in.OccupiedHours * occupiedRate),
		BaseRepo:     currency.RoundMoney(in.RepoHours * repoRate),
		Legs:         in.Legs,
	}
	b.Items = []models.LineItem{
		{
			Code:   models.CodeBaseOccupied,
			Label:  "Base cost (occupied)",
			Amount: b.BaseOccupied,
			Meta:   map[string]any{"occupied_hours": in.OccupiedHours, "rate": occupiedRate},
		},
		{
			Code:   models.CodeBaseRepo,
			Label:  "Base cost (repo)",
			Amount: b.BaseRepo,
			Meta:   map[string]any{"repo_hours": in.RepoHours, "rate": repoRate},
		},
	}
	return b
}

// zoneBased bills occupied hours at the peak-multiplied occupied rate and each
// repo leg separately at the peak-multiplied repo rate.
func zoneBased(in Input) Priced {
	p := in.Knobs.Pricing
	occMult := zones.OccupiedMultiplier(in.Peak)
	repoMult := zones.RepoMultiplier(in.Peak)
	occRate := *p.OccupiedRate * occMult
	repoRate := *p.RepoRate * repoMult

	b := Priced{BaseOccupied: currency.RoundMoney(in.OccupiedHours * occRate)}
	b.Items = append(b.Items, models.LineItem{
		Code:   models.CodeBaseOccupied,
		Label:  "Base cost (occupied)",
		Amount: b.BaseOccupied,
		Meta: map[string]any{
			"occupied_hours":      in.OccupiedHours,
			"base_rate":           *p.OccupiedRate,
			"applied_rate":        occRate,
			"occupied_multiplier": occMult,
		},
	})

	repoTotal := 0.0
	b.Legs = make([]models.Leg, len(in.Legs))
	for i, leg := range in.Legs {
		if !leg.IsRepo() {
			b.Legs[i] = leg
			continue
		}

		hours := leg.Meta.AdjustedHours
		cost := currency.RoundMoney(hours * repoRate)
		repoTotal += cost

		peakMult := 0.0
		if repoMult != 1.0 {
			peakMult = repoMult
		}
		b.Legs[i] = leg.WithRate(repoRate, peakMult)

		direction := "inbound"
		if leg.Meta.RepoDirection == models.RepoDirectionOrigin {
			direction = "outbound"
		}
		name := leg.Meta.ZoneName
		if name == "" {
			name = "Unknown"
		}

		item := models.LineItem{
			Code:   models.CodeBaseRepoZone,
			Label:  fmt.Sprintf("Repo: %s (%s)", name, direction),
			Amount: cost,
			Meta: map[string]any{
				"zone_id":         leg.Meta.ZoneID,
				"zone_name":       leg.Meta.ZoneName,
				"direction":       leg.Meta.RepoDirection,
				"hours":           hours,
				"base_rate":       *p.RepoRate,
				"applied_rate":    repoRate,
				"peak_multiplier": repoMult,
				"from_icao":       leg.From.Code(),
				"to_icao":         leg.To.Code(),
			},
		}
		if leg.Meta.PeakPeriodName != "" {
			item = item.WithMeta("peak_period", leg.Meta.PeakPeriodName)
		}
		b.Items = append(b.Items, item)
	}
	b.BaseRepo = currency.RoundMoney(repoTotal)
	b.ZoneCalculation = zoneCalculation(in, occRate, repoRate)
	return b
}

func zoneCalculation(in Input, occRate, repoRate float64) *models.ZoneCalculation {
	p := in.Knobs.Pricing
	zc := &models.ZoneCalculation{
		RepoRate:     &models.RateDetail{BaseRate: *p.RepoRate, AppliedRate: repoRate},
		OccupiedRate: &models.RateDetail{BaseRate: *p.OccupiedRate, AppliedRate: occRate},
	}
	if in.OutZone != nil {
		zc.OutboundZone = in.OutZone.Detail()
	}
	if in.BackZone != nil {
		zc.InboundZone = in.BackZone.Detail()
	}

	if peak := in.Peak; peak != nil {
		detail := &models.PeakDetail{
			ID:                 peak.ID,
			Name:               peak.Name,
			RepoRateMultiplier: zones.RepoMultiplier(peak),
			OccupiedMultiplier: zones.OccupiedMultiplier(peak),
		}
		if in.OutZone != nil && in.OutZone.IsPeakOverride {
			t := in.OutZone.AppliedRepoTime
			detail.OutboundRepoTime = &t
		}
		if in.BackZone != nil && in.BackZone.IsPeakOverride {
			t := in.BackZone.AppliedRepoTime
			detail.InboundRepoTime = &t
		}
		zc.PeakPeriod = detail
	}
	return zc
}
