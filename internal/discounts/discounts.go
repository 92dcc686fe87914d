// Package discounts computes itemized reductions and enforces the configured
// price floors and ceilings.
package discounts

import (
	"fmt"
	"math"

	"github.com/charterquote/quoteengine/internal/models"
	"github.com/charterquote/quoteengine/pkg/currency"
)

const (
	CodeInvalidDiscountMode    = "INVALID_DISCOUNT_MODE"
	CodeInvalidDiscountBase    = "INVALID_DISCOUNT_BASE"
	CodeInvalidDiscountPercent = "INVALID_DISCOUNT_PERCENT"
)

// Subtotals are the running amounts a percentage discount can be based on.
type Subtotals struct {
	Base  float64
	Fees  float64
	Total float64
}

// Of derives subtotals from the line items accumulated so far.
func Of(items []models.LineItem) Subtotals {
	var s Subtotals
	for _, li := range items {
		switch {
		case li.Code == models.CodeBaseOccupied || li.Code.IsBaseRepo():
			s.Base += li.Amount
		case li.Code.IsFee():
			s.Fees += li.Amount
		}
		s.Total += li.Amount
	}
	return s
}

func (s Subtotals) amountFor(base models.DiscountBase) float64 {
	switch base {
	case models.DiscountBaseOnly:
		return s.Base
	case models.DiscountBaseWithFees:
		return s.Base + s.Fees
	case models.DiscountBaseTotal:
		return s.Total
	}
	return 0
}

// Validate rejects unknown discount variants.
func Validate(k models.Knobs) *models.Rejection {
	if d := k.Discounts.VHBDiscount; d != nil {
		if !d.Mode.Valid() {
			return models.Reject(CodeInvalidDiscountMode,
				fmt.Sprintf("Unsupported VHB discount mode %q.", d.Mode), "discounts.vhb_discount.mode")
		}
		if d.Mode != models.DiscountModeNone && !d.AppliesTo.Valid() {
			return models.Reject(CodeInvalidDiscountBase,
				fmt.Sprintf("Unsupported discount base %q.", d.AppliesTo), "discounts.vhb_discount.applies_to")
		}
		if d.Percent < 0 || d.Percent > 1 {
			return models.Reject(CodeInvalidDiscountPercent,
				fmt.Sprintf("VHB discount percent %g must be a fraction between 0 and 1 (0.10 = 10%%).", d.Percent),
				"discounts.vhb_discount.percent")
		}
	}
	if d := k.Discounts.TimeBasedDiscount; d != nil && d.Enabled && !d.AppliesTo.Valid() {
		return models.Reject(CodeInvalidDiscountBase,
			fmt.Sprintf("Unsupported discount base %q.", d.AppliesTo), "discounts.time_based_discount.applies_to")
	}
	return nil
}

// HomeBaseActive reports whether the home-base discount is configured at all.
func HomeBaseActive(k models.Knobs) bool {
	d := k.Discounts.VHBDiscount
	return d != nil && d.Mode != models.DiscountModeNone && d.Percent > 0
}

// HomeBase discounts trips whose origin and/or destination is one of the
// virtual home bases.
func HomeBase(trip models.Trip, k models.Knobs, bases []models.Airport, sub Subtotals) (models.LineItem, bool) {
	if !HomeBaseActive(k) {
		return models.LineItem{}, false
	}
	d := k.Discounts.VHBDiscount
	set := models.NewAirportSet(bases)
	originIsBase := set.Contains(trip.From)
	destIsBase := set.Contains(trip.To)

	var qualifies bool
	switch d.Mode {
	case models.DiscountModeOriginOrDestination:
		qualifies = originIsBase || destIsBase
	case models.DiscountModeBothRequired:
		qualifies = originIsBase && destIsBase
	case models.DiscountModeNone:
	}
	if !qualifies {
		return models.LineItem{}, false
	}

	against := sub.amountFor(d.AppliesTo)
	amount := currency.RoundMoney(-against * d.Percent)
	if amount == 0 {
		return models.LineItem{}, false
	}
	return models.LineItem{
		Code:   models.CodeDiscountVHB,
		Label:  fmt.Sprintf("VHB discount (%g%%)", math.Round(d.Percent*1e4)/100),
		Amount: amount,
		Meta: map[string]any{
			"mode":              d.Mode,
			"percent":           d.Percent,
			"applies_to":        d.AppliesTo,
			"origin_is_vhb":     originIsBase,
			"dest_is_vhb":       destIsBase,
			"base_for_discount": currency.RoundMoney(against),
		},
	}, true
}

// TimeQualified discounts itineraries where every occupied leg flies at least
// the configured number of actual hours.
func TimeQualified(k models.Knobs, legs []models.Leg, sub Subtotals) (models.LineItem, bool) {
	d := k.Discounts.TimeBasedDiscount
	if d == nil || !d.Enabled || d.DiscountPercent <= 0 {
		return models.LineItem{}, false
	}

	occupied := models.FilterLegs(legs, models.LegOccupied)
	for _, l := range occupied {
		if l.Meta.ActualHours < d.MinOccupiedHoursPerLeg {
			return models.LineItem{}, false
		}
	}

	against := sub.amountFor(d.AppliesTo)
	amount := currency.RoundMoney(-against * d.DiscountPercent / 100)
	if amount == 0 {
		return models.LineItem{}, false
	}
	return models.LineItem{
		Code:   models.CodeDiscountTimeBased,
		Label:  fmt.Sprintf("Time-based discount (%g%%)", d.DiscountPercent),
		Amount: amount,
		Meta: map[string]any{
			"min_occupied_hours_per_leg": d.MinOccupiedHoursPerLeg,
			"discount_percent":           d.DiscountPercent,
			"applies_to":                 d.AppliesTo,
			"base_for_discount":          currency.RoundMoney(against),
			"qualifying_legs":            len(occupied),
		},
	}, true
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// ApplyConstraints enforces, in order, the per-leg minimum, the trip minimum
// and the trip maximum against tentativeTotal. Each constraint that fires
// adds its own line item.
func ApplyConstraints(k models.Knobs, tentativeTotal float64, occupiedLegs int) []models.LineItem {
	c := k.Fees.PriceConstraints
	if c == nil {
		return nil
	}

	var items []models.LineItem
	current := tentativeTotal

	if c.MinPricePerLeg != nil && occupiedLegs > 0 {
		required := *c.MinPricePerLeg * float64(occupiedLegs)
		if current < required {
			adj := currency.RoundMoney(required - current)
			items = append(items, models.LineItem{
				Code:   models.CodeFeeMinPricePerLeg,
				Label:  fmt.Sprintf("Min price adjustment (%d leg%s)", occupiedLegs, plural(occupiedLegs)),
				Amount: adj,
				Meta:   map[string]any{"min_price_per_leg": *c.MinPricePerLeg, "occupied_leg_count": occupiedLegs},
			})
			current += adj
		}
	}

	if c.MinTripPrice != nil && current < *c.MinTripPrice {
		adj := currency.RoundMoney(*c.MinTripPrice - current)
		items = append(items, models.LineItem{
			Code:   models.CodeFeeMinTripPrice,
			Label:  "Min trip price adjustment",
			Amount: adj,
			Meta:   map[string]any{"min_trip_price": *c.MinTripPrice},
		})
		current += adj
	}

	if c.MaxTripPrice != nil && current > *c.MaxTripPrice {
		reduction := currency.RoundMoney(current - *c.MaxTripPrice)
		items = append(items, models.LineItem{
			Code:   models.CodeDiscountMaxTripCap,
			Label:  "Max trip price cap",
			Amount: -reduction,
			Meta:   map[string]any{"max_trip_price": *c.MaxTripPrice},
		})
	}
	return items
}
