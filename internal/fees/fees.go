// Package fees computes itemized surcharges for a priced itinerary. Each fee
// is independent and omitted when its amount is zero.
package fees

import (
	"github.com/charterquote/quoteengine/internal/models"
	"github.com/charterquote/quoteengine/internal/timezone"
	"github.com/charterquote/quoteengine/pkg/currency"
)

// homebaseLandings is the number of chargeable landings when a
// homebase-conditional trip does not start at the home base.
const homebaseLandings = 3

// Compute returns the fee line items for legs, in a fixed order: ground
// handling, high density, landing, overnight, daily.
func Compute(trip models.Trip, k models.Knobs, legs []models.Leg) []models.LineItem {
	flown := make([]models.Leg, 0, len(legs))
	for _, l := range legs {
		if l.IsFlown() {
			flown = append(flown, l)
		}
	}

	var items []models.LineItem
	for _, fee := range []func() (models.LineItem, bool){
		func() (models.LineItem, bool) { return groundHandling(k.Fees.GroundHandling, flown) },
		func() (models.LineItem, bool) { return highDensity(trip, k.Fees.HighDensity, flown) },
		func() (models.LineItem, bool) { return landing(trip, k.Fees.LandingFees, flown) },
		func() (models.LineItem, bool) { return overnight(trip, k.Fees.Overnight) },
		func() (models.LineItem, bool) { return daily(trip, k.Fees.Daily) },
	} {
		if item, ok := fee(); ok {
			items = append(items, item)
		}
	}
	return items
}

func groundHandling(cfg *models.GroundHandlingFee, legs []models.Leg) (models.LineItem, bool) {
	if cfg == nil || cfg.PerSegmentAmount <= 0 {
		return models.LineItem{}, false
	}
	segments := len(models.FilterLegs(legs, models.LegOccupied))
	if cfg.AppliesTo == models.GroundHandlingAllLegs {
		segments = len(legs)
	}
	amount := currency.RoundMoney(float64(segments) * cfg.PerSegmentAmount)
	if amount <= 0 {
		return models.LineItem{}, false
	}
	return models.LineItem{
		Code:   models.CodeFeeGroundHandling,
		Label:  "Ground handling",
		Amount: amount,
		Meta:   map[string]any{"segments": segments, "applies_to": cfg.AppliesTo},
	}, true
}

// Visits counts high-density visits in legs under the given counting mode.
func Visits(mode models.HighDensityCounting, set models.AirportSet, legs []models.Leg) int {
	visits := 0
	switch mode {
	case models.HDSegmentEndpoints:
		for _, l := range models.FilterLegs(legs, models.LegOccupied) {
			if set.Contains(l.From) {
				visits++
			}
			if set.Contains(l.To) {
				visits++
			}
		}
	case models.HDArrivalsOnly:
		for _, l := range models.FilterLegs(legs, models.LegOccupied) {
			if set.Contains(l.To) {
				visits++
			}
		}
	case models.HDLandings:
		for _, l := range legs {
			if set.Contains(l.To) {
				visits++
			}
		}
	}
	return visits
}

func highDensity(trip models.Trip, cfg *models.HighDensityFee, legs []models.Leg) (models.LineItem, bool) {
	if cfg == nil || cfg.FeePerVisit <= 0 || len(cfg.Airports) == 0 {
		return models.LineItem{}, false
	}
	set := models.NewAirportSet(cfg.Airports)
	visits := Visits(cfg.CountingMode, set, legs)
	if trip.IsRoundTrip() && cfg.RoundTripOriginDoubleCharge && set.Contains(trip.From) {
		visits++
	}

	amount := float64(visits) * cfg.FeePerVisit
	if cfg.TripCap != nil {
		amount = min(amount, *cfg.TripCap)
	}
	amount = currency.RoundMoney(amount)
	if amount <= 0 {
		return models.LineItem{}, false
	}
	return models.LineItem{
		Code:   models.CodeFeeHighDensity,
		Label:  "High-density airport fees",
		Amount: amount,
		Meta:   map[string]any{"visits": visits, "counting_mode": cfg.CountingMode},
	}, true
}

// chargeableLandings selects the legs whose arrival is billed as a landing.
func chargeableLandings(trip models.Trip, cfg *models.LandingFee, legs []models.Leg) []models.Leg {
	if cfg.ConditionalLogic == models.LandingHomebaseConditional && cfg.Homebase != nil {
		if trip.From.SameAs(*cfg.Homebase) {
			return models.FilterLegs(legs, models.LegOccupied)
		}
		return legs[:min(len(legs), homebaseLandings)]
	}
	if cfg.CountingMode == models.LandingArrivalsOnly {
		return models.FilterLegs(legs, models.LegOccupied)
	}
	return legs
}

func landing(trip models.Trip, cfg *models.LandingFee, legs []models.Leg) (models.LineItem, bool) {
	if cfg == nil || cfg.DefaultAmount <= 0 {
		return models.LineItem{}, false
	}
	hd := models.NewAirportSet(cfg.HDAirports)
	charged := chargeableLandings(trip, cfg, legs)

	amount := 0.0
	for _, l := range charged {
		if cfg.HDOverrideAmount != nil && *cfg.HDOverrideAmount > 0 && hd.Contains(l.To) {
			amount += *cfg.HDOverrideAmount
			continue
		}
		amount += cfg.DefaultAmount
	}
	amount = currency.RoundMoney(amount)
	if amount <= 0 {
		return models.LineItem{}, false
	}
	return models.LineItem{
		Code:   models.CodeFeeLanding,
		Label:  "Landing fees",
		Amount: amount,
		Meta:   map[string]any{"landings": len(charged), "conditional_logic": cfg.ConditionalLogic},
	}, true
}

func overnight(trip models.Trip, cfg *models.OvernightFee) (models.LineItem, bool) {
	if cfg == nil || cfg.AmountPerNight <= 0 {
		return models.LineItem{}, false
	}
	switch cfg.AppliesWhen {
	case models.OvernightAlways:
	case models.OvernightRoundTripOnly:
		if !trip.IsRoundTrip() {
			return models.LineItem{}, false
		}
	default:
		return models.LineItem{}, false
	}

	nights := timezone.TripOvernights(trip)
	if nights <= 0 {
		return models.LineItem{}, false
	}
	return models.LineItem{
		Code:   models.CodeFeeOvernight,
		Label:  "Overnight fees",
		Amount: currency.RoundMoney(float64(nights) * cfg.AmountPerNight),
		Meta:   map[string]any{"overnights": nights},
	}, true
}

// chargeableDays lists the dates billed by the daily fee. Under
// nights_plus_one the count is overnights+1 consecutive dates from departure.
func chargeableDays(trip models.Trip, counting models.DayCounting) []string {
	dates := timezone.TripDatesTouched(trip)
	if counting != models.DayCountingNightsPlusOne || len(dates) == 0 {
		return dates
	}
	n := timezone.TripOvernights(trip) + 1
	if n <= len(dates) {
		return dates[:n]
	}
	return dates
}

func override(overrides []models.DateOverride, date string) (models.DateOverride, bool) {
	for _, o := range overrides {
		if timezone.InRange(date, o.StartDate, o.EndDate) {
			return o, true
		}
	}
	return models.DateOverride{}, false
}

func daily(trip models.Trip, cfg *models.DailyFee) (models.LineItem, bool) {
	if cfg == nil || cfg.AmountPerCalendarDay <= 0 {
		return models.LineItem{}, false
	}
	days := chargeableDays(trip, cfg.CalendarDayCounting)

	total := 0.0
	overridden := 0
	for _, date := range days {
		if o, ok := override(cfg.DateOverrides, date); ok {
			total += o.AmountPerDay
			overridden++
			continue
		}
		total += cfg.AmountPerCalendarDay
	}
	total = currency.RoundMoney(total)
	if total <= 0 {
		return models.LineItem{}, false
	}
	return models.LineItem{
		Code:   models.CodeFeeDaily,
		Label:  "Daily fees",
		Amount: total,
		Meta:   map[string]any{"days_touched": len(days), "overridden_days": overridden},
	}, true
}
