package engine

import (
	"fmt"

	"github.com/charterquote/quoteengine/internal/discounts"
	"github.com/charterquote/quoteengine/internal/eligibility"
	"github.com/charterquote/quoteengine/internal/models"
	"github.com/charterquote/quoteengine/internal/pricing"
	"github.com/charterquote/quoteengine/internal/reposition"
	"github.com/charterquote/quoteengine/internal/timeadj"
	"github.com/charterquote/quoteengine/internal/timezone"
)

const (
	CodeInvalidDate        = "INVALID_DATE"
	CodeInvalidFeeMode     = "INVALID_FEE_MODE"
	CodeInvalidMatchAction = "INVALID_MATCH_ACTION"
	CodeInvalidTripType    = "INVALID_TRIP_TYPE"
)

type variant interface {
	~string
	Valid() bool
}

func checkVariant[T variant](v T, path string, code string) *models.Rejection {
	if v.Valid() {
		return nil
	}
	return models.Reject(code, fmt.Sprintf("Unsupported value %q for %s.", string(v), path), path)
}

// ValidateBasics checks everything an itinerary evaluation needs from the
// trip and configuration before any stage runs. Knobs are expected to have
// defaults applied.
func ValidateBasics(trip models.Trip, k models.Knobs) *models.Rejection {
	if rej := checkVariant(trip.TripType, "trip.trip_type", CodeInvalidTripType); rej != nil {
		return rej
	}
	if trip.IsRoundTrip() && !trip.HasReturn() {
		return models.Reject(eligibility.CodeMissingReturn,
			"return_local_iso required for ROUND_TRIP", "trip.return_local_iso")
	}
	if rej := checkTimestamp(trip.DepartLocalISO, trip.DepartTimezone, "trip.depart_local_iso"); rej != nil {
		return rej
	}
	if trip.HasReturn() {
		if rej := checkTimestamp(trip.ReturnLocalISO, trip.ReturnTimezone, "trip.return_local_iso"); rej != nil {
			return rej
		}
	}

	if rej := pricing.Validate(k); rej != nil {
		return rej
	}

	repo := k.Repo
	if rej := checkVariant(repo.Policy, "repo.policy", reposition.CodeInvalidRepoPolicy); rej != nil {
		return rej
	}
	switch repo.Mode {
	case models.RepoFixedBase:
		if repo.FixedBase == nil || repo.FixedBase.Code() == "" {
			return models.Reject(reposition.CodeMissingBase,
				"repo.fixed_base required when repo.mode=fixed_base", "repo.fixed_base")
		}
	case models.RepoVHBNetwork:
		if len(reposition.Candidates(trip.Category, k)) == 0 {
			return models.Reject(reposition.CodeMissingVHBList,
				"repo.vhb_sets must include at least 1 VHB airport when repo.mode=vhb_network", "repo.vhb_sets.default")
		}
	case models.RepoZoneNetwork:
		if repo.ZoneNetwork == nil || len(repo.ZoneNetwork.Zones) == 0 {
			return models.Reject(reposition.CodeMissingZoneConfig,
				"repo.zone_network with at least one zone required when repo.mode=zone_network", "repo.zone_network")
		}
	case models.RepoFloatingFleet:
	default:
		return models.Reject(reposition.CodeInvalidRepoMode,
			fmt.Sprintf("Unsupported repo mode %q.", repo.Mode), "repo.mode")
	}

	if rej := checkVariant(k.Time.ApplyTo, "time.apply_to", timeadj.CodeInvalidApplyTo); rej != nil {
		return rej
	}
	if rej := discounts.Validate(k); rej != nil {
		return rej
	}
	if s := k.Scoring; s != nil && s.MatchScore != nil && s.MatchScore.Enabled {
		if rej := checkVariant(s.MatchScore.Action, "scoring.match_score.action", CodeInvalidMatchAction); rej != nil {
			return rej
		}
	}
	return validateFees(k.Fees)
}

// checkTimestamp rejects timestamps that day counting and the advance window
// could not read.
func checkTimestamp(iso, tz, path string) *models.Rejection {
	if _, err := timezone.ParseLocal(iso, tz); err != nil {
		return models.Reject(CodeInvalidDate, fmt.Sprintf("Unparseable timestamp %q.", iso), path)
	}
	return nil
}

func validateFees(f models.FeeKnobs) *models.Rejection {
	if f.GroundHandling != nil {
		if rej := checkVariant(f.GroundHandling.AppliesTo, "fees.ground_handling.applies_to", CodeInvalidFeeMode); rej != nil {
			return rej
		}
	}
	if f.HighDensity != nil && f.HighDensity.FeePerVisit > 0 {
		if rej := checkVariant(f.HighDensity.CountingMode, "fees.high_density.counting_mode", CodeInvalidFeeMode); rej != nil {
			return rej
		}
	}
	if f.LandingFees != nil {
		if rej := checkVariant(f.LandingFees.CountingMode, "fees.landing_fees.counting_mode", CodeInvalidFeeMode); rej != nil {
			return rej
		}
		if rej := checkVariant(f.LandingFees.ConditionalLogic, "fees.landing_fees.conditional_logic", CodeInvalidFeeMode); rej != nil {
			return rej
		}
	}
	if f.Overnight != nil {
		if rej := checkVariant(f.Overnight.AppliesWhen, "fees.overnight.applies_when", CodeInvalidFeeMode); rej != nil {
			return rej
		}
	}
	if f.Daily != nil {
		if rej := checkVariant(f.Daily.CalendarDayCounting, "fees.daily.calendar_day_counting", CodeInvalidFeeMode); rej != nil {
			return rej
		}
	}
	return nil
}
