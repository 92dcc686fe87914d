// Package eligibility gates trips on admission rules before and after leg
// times are known. Checks run in a fixed order and stop at the first failure.
package eligibility

import (
	"fmt"
	"strings"
	"time"

	"github.com/charterquote/quoteengine/internal/models"
	"github.com/charterquote/quoteengine/internal/timezone"
)

const (
	CodeDomesticOnly      = "DOMESTIC_ONLY"
	CodeStateExcluded     = "STATE_EXCLUDED"
	CodeAdvanceTooFar     = "ADVANCE_TOO_FAR"
	CodePaxLimit          = "PAX_LIMIT"
	CodeCountryNotAllowed = "COUNTRY_NOT_ALLOWED"
	CodeGeoRuleOneWay     = "GEO_RULE_ONE_WAY"
	CodeGeoRuleShort      = "GEO_RULE_RT_SHORT"
	CodeGeoRuleLong       = "GEO_RULE_RT_LONG"
	CodeInvalidGeoRule    = "INVALID_GEO_RULE"
	CodeMissingReturn     = "MISSING_RETURN"
	CodeLegHoursLimit     = "LEG_HOURS_LIMIT"
	CodeSameDayRTLimit    = "SAME_DAY_RT_LIMIT"
)

const epsilon = 1e-9

// Check runs the trip-level rules: domestic-only, excluded states, advance
// booking window, passenger cap, then geography rules in list order.
func Check(trip models.Trip, knobs models.Knobs, now time.Time) *models.Rejection {
	e := knobs.Eligibility

	if e.DomesticOnly {
		if countryOr(trip.From, "US") != "US" || countryOr(trip.To, "US") != "US" {
			return models.Reject(CodeDomesticOnly, "Trip is not US domestic.", "eligibility.domestic_only")
		}
	}

	if len(e.ExcludeStates) > 0 {
		excluded := make(map[string]struct{}, len(e.ExcludeStates))
		for _, s := range e.ExcludeStates {
			excluded[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
		}
		for _, a := range []models.Airport{trip.From, trip.To} {
			state := strings.ToUpper(strings.TrimSpace(a.State))
			if _, hit := excluded[state]; state != "" && hit {
				return models.Reject(CodeStateExcluded,
					fmt.Sprintf("Trip touches excluded state %s.", state), "eligibility.exclude_states")
			}
		}
	}

	if e.MaxAdvanceDays != nil {
		if depart, err := timezone.Departure(trip); err == nil {
			days := depart.Sub(now).Hours() / 24
			if days > *e.MaxAdvanceDays+epsilon {
				return models.Reject(CodeAdvanceTooFar,
					fmt.Sprintf("Departure is %.0f days away; max is %g.", days, *e.MaxAdvanceDays),
					"eligibility.max_advance_days")
			}
		}
	}

	if e.MaxPassengers != nil && trip.Passengers != nil && *trip.Passengers > *e.MaxPassengers {
		return models.Reject(CodePaxLimit,
			fmt.Sprintf("Passengers %d exceeds max %d.", *trip.Passengers, *e.MaxPassengers),
			"eligibility.max_passengers")
	}

	for i, rule := range e.GeoRules {
		if rej := checkGeoRule(trip, rule, fmt.Sprintf("eligibility.geo_rules[%d]", i)); rej != nil {
			return rej
		}
	}
	return nil
}

func checkGeoRule(trip models.Trip, rule models.GeoRule, path string) *models.Rejection {
	switch r := rule.(type) {
	case models.AllowedCountriesRule:
		allowed := make(map[string]struct{}, len(r.Countries))
		for _, c := range r.Countries {
			allowed[strings.ToUpper(strings.TrimSpace(c))] = struct{}{}
		}
		for _, a := range []models.Airport{trip.From, trip.To} {
			c := countryOr(a, "")
			if _, ok := allowed[c]; c != "" && !ok {
				return models.Reject(CodeCountryNotAllowed,
					fmt.Sprintf("Country %s is not in the allowed list.", c), path)
			}
		}
		return nil

	case models.MississippiRule:
		return checkMississippi(trip, r, path)

	case models.UnknownGeoRule:
		return models.Reject(CodeInvalidGeoRule,
			fmt.Sprintf("Unsupported geography rule type %q.", r.Type), path+".type")
	}
	return models.Reject(CodeInvalidGeoRule, "Unsupported geography rule.", path)
}

func checkMississippi(trip models.Trip, r models.MississippiRule, path string) *models.Rejection {
	from, to := trip.From.MississippiDirection, trip.To.MississippiDirection

	if !trip.IsRoundTrip() {
		if !r.OneWayRequires.Satisfied(from, to) {
			return models.Reject(CodeGeoRuleOneWay,
				fmt.Sprintf("One-way trip %s (%s) to %s (%s) fails the %s requirement.",
					trip.From.Code(), from, trip.To.Code(), to, r.OneWayRequires),
				path+".one_way_requires")
		}
		return nil
	}

	if !trip.HasReturn() {
		return models.Reject(CodeMissingReturn, "return_local_iso required for ROUND_TRIP", "trip.return_local_iso")
	}

	overnights := timezone.Overnights(trip.DepartLocalISO, trip.ReturnLocalISO)
	if overnights <= r.RoundTripUpToNightsRequiresOrigin {
		want, ok := r.ShortTripOriginSide()
		if !ok {
			return models.Reject(CodeInvalidGeoRule,
				fmt.Sprintf("Unknown Mississippi side %q; expected east or west.", r.RoundTripUpToNightsSide),
				path+".round_trip_up_to_nights_side")
		}
		if from != want {
			return models.Reject(CodeGeoRuleShort,
				fmt.Sprintf("Round trip of %d night(s) must originate %s of the Mississippi.", overnights, want),
				path+".round_trip_up_to_nights_side")
		}
		return nil
	}

	if !r.RoundTripBeyondNightsRequires.Satisfied(from, to) {
		return models.Reject(CodeGeoRuleLong,
			fmt.Sprintf("Round trip of %d nights fails the %s requirement.", overnights, r.RoundTripBeyondNightsRequires),
			path+".round_trip_beyond_nights_requires")
	}
	return nil
}

func countryOr(a models.Airport, fallback string) string {
	c := strings.ToUpper(strings.TrimSpace(a.Country))
	if c == "" {
		return fallback
	}
	return c
}

// CheckOccupiedCeilings runs once leg times are known: the per-leg occupied
// hour ceiling, then the same-day round trip ceiling.
func CheckOccupiedCeilings(trip models.Trip, knobs models.Knobs, legs []models.Leg) *models.Rejection {
	e := knobs.Eligibility

	if e.MaxOccupiedHoursPerLeg != nil {
		for _, leg := range legs {
			if !leg.IsOccupied() {
				continue
			}
			if leg.Meta.AdjustedHours > *e.MaxOccupiedHoursPerLeg+epsilon {
				return models.Reject(CodeLegHoursLimit,
					fmt.Sprintf("Occupied leg %s→%s is %.2fh; max is %gh.",
						leg.From.Code(), leg.To.Code(), leg.Meta.AdjustedHours, *e.MaxOccupiedHoursPerLeg),
					"eligibility.max_occupied_hours_per_leg")
			}
		}
	}

	if e.MaxSameDayRoundTripHours != nil && trip.IsRoundTrip() && trip.HasReturn() &&
		timezone.SameDate(trip.DepartLocalISO, trip.ReturnLocalISO) {
		occupied := models.SumAdjustedHours(models.FilterLegs(legs, models.LegOccupied))
		if occupied > *e.MaxSameDayRoundTripHours+epsilon {
			return models.Reject(CodeSameDayRTLimit,
				fmt.Sprintf("Same-day round trip occupied time %.2fh exceeds max %gh.", occupied, *e.MaxSameDayRoundTripHours),
				"eligibility.max_same_day_round_trip_hours")
		}
	}
	return nil
}
