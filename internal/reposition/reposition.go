// Package reposition decides where the aircraft starts and ends relative to
// the passenger itinerary and builds the non-revenue legs.
package reposition

import (
	"fmt"

	"github.com/charterquote/quoteengine/internal/geo"
	"github.com/charterquote/quoteengine/internal/models"
	"github.com/charterquote/quoteengine/internal/zones"
)

const (
	CodeMissingBase       = "MISSING_BASE"
	CodeMissingVHBList    = "MISSING_VHB_LIST"
	CodeMissingZoneConfig = "MISSING_ZONE_CONFIG"
	CodeInvalidRepoMode   = "INVALID_REPO_MODE"
	CodeInvalidRepoPolicy = "INVALID_REPO_POLICY"
	CodeRepoOutTooLong    = "REPO_OUT_TOO_LONG"
	CodeRepoBackTooLong   = "REPO_BACK_TOO_LONG"
)

type Input struct {
	Trip       models.Trip
	Knobs      models.Knobs
	Start      models.Airport
	End        models.Airport
	Candidates []models.Airport
}

// Plan is the resolved repositioning for one itinerary. Zone sides and the
// peak period are set only under the zone network mode.
type Plan struct {
	LegsOut  []models.Leg
	LegsBack []models.Leg
	OutBase  *models.Airport
	BackBase *models.Airport
	OutZone  *zones.Side
	BackZone *zones.Side
	Peak     *models.PeakPeriod
}

// Legs returns outbound repo legs, the occupied legs, then inbound repo legs.
func (p Plan) Legs(occupied []models.Leg) []models.Leg {
	legs := make([]models.Leg, 0, len(p.LegsOut)+len(occupied)+len(p.LegsBack))
	legs = append(legs, p.LegsOut...)
	legs = append(legs, occupied...)
	return append(legs, p.LegsBack...)
}

// Candidates merges the default virtual-base set with the set for category,
// deduplicated by ICAO.
func Candidates(category models.Category, k models.Knobs) []models.Airport {
	sets := k.Repo.VHBSets
	if sets == nil {
		return nil
	}
	all := append([]models.Airport{}, sets.Default...)
	all = append(all, sets.ByCategory[category]...)
	return models.UniqueAirports(all)
}

func Resolve(in Input) (Plan, *models.Rejection) {
	repo := in.Knobs.Repo
	if !repo.Policy.Valid() {
		return Plan{}, models.Reject(CodeInvalidRepoPolicy,
			fmt.Sprintf("Unsupported repo policy %q.", repo.Policy), "repo.policy")
	}

	switch repo.Mode {
	case models.RepoFixedBase:
		if repo.FixedBase == nil {
			return Plan{}, models.Reject(CodeMissingBase,
				"repo.fixed_base required when repo.mode=fixed_base", "repo.fixed_base")
		}
		return anchored(in, *repo.FixedBase, *repo.FixedBase), nil

	case models.RepoVHBNetwork:
		out, ok1 := geo.Closest(in.Start, in.Candidates)
		back, ok2 := geo.Closest(in.End, in.Candidates)
		if !ok1 || !ok2 {
			return Plan{}, models.Reject(CodeMissingVHBList,
				"VHB candidate list is empty.", "repo.vhb_sets.default")
		}
		return anchored(in, out, back), nil

	case models.RepoZoneNetwork:
		return zoned(in)

	case models.RepoFloatingFleet:
		return Plan{}, nil
	}

	return Plan{}, models.Reject(CodeInvalidRepoMode,
		fmt.Sprintf("Unsupported repo mode %q.", repo.Mode), "repo.mode")
}

func anchored(in Input, outBase, backBase models.Airport) Plan {
	plan := Plan{OutBase: &outBase, BackBase: &backBase}
	policy := in.Knobs.Repo.Policy

	if policy.Outbound() && !outBase.SameAs(in.Start) {
		plan.LegsOut = append(plan.LegsOut,
			models.NewLeg(models.LegRepo, outBase, in.Start).WithBase(outBase.Code()))
	}
	if policy.Inbound() && !backBase.SameAs(in.End) {
		plan.LegsBack = append(plan.LegsBack,
			models.NewLeg(models.LegRepo, in.End, backBase).WithBase(backBase.Code()))
	}
	return plan
}

// zoned matches each materialized side to its zone. The endpoint is its own
// base, so each side yields a zero-length leg carrying the zone repo time.
func zoned(in Input) (Plan, *models.Rejection) {
	network := in.Knobs.Repo.ZoneNetwork
	if network == nil || len(network.Zones) == 0 {
		return Plan{}, models.Reject(CodeMissingZoneConfig,
			"repo.zone_network with at least one zone required when repo.mode=zone_network", "repo.zone_network")
	}

	peak := zones.PeakForTrip(in.Trip, network)
	plan := Plan{Peak: peak}
	policy := in.Knobs.Repo.Policy

	if policy.Outbound() {
		side, rej := zones.ResolveSide(in.Start, models.RepoDirectionOrigin, *network, peak)
		if rej != nil {
			return Plan{}, rej
		}
		plan.OutZone = &side
		plan.OutBase = &side.Airport
		plan.LegsOut = []models.Leg{
			models.NewLeg(models.LegRepo, side.Airport, in.Start).
				WithBase(side.Airport.Code()).
				WithZone(side.Attribution()),
		}
	}

	if policy.Inbound() {
		side, rej := zones.ResolveSide(in.End, models.RepoDirectionDestination, *network, peak)
		if rej != nil {
			return Plan{}, rej
		}
		plan.BackZone = &side
		plan.BackBase = &side.Airport
		plan.LegsBack = []models.Leg{
			models.NewLeg(models.LegRepo, in.End, side.Airport).
				WithBase(side.Airport.Code()).
				WithZone(side.Attribution()),
		}
	}

	return plan, nil
}

// RepoHours splits adjusted repo hours into the outbound and inbound sides.
// The first outCount repo legs are outbound.
func RepoHours(legs []models.Leg, outCount int) (out, back float64) {
	seen := 0
	for _, l := range legs {
		if !l.IsRepo() {
			continue
		}
		if seen < outCount {
			out += l.Meta.AdjustedHours
		} else {
			back += l.Meta.AdjustedHours
		}
		seen++
	}
	return out, back
}

// CheckLimits enforces repo.constraints when reject_if_exceeded is set.
func CheckLimits(k models.Knobs, outHours, backHours float64) *models.Rejection {
	c := k.Repo.Constraints
	if c == nil || !c.RejectIfExceeded {
		return nil
	}
	if c.MaxOriginRepoHours != nil && outHours > *c.MaxOriginRepoHours {
		return models.Reject(CodeRepoOutTooLong,
			fmt.Sprintf("Outbound repo %.2fh > max %gh", outHours, *c.MaxOriginRepoHours),
			"repo.constraints.max_origin_repo_hours")
	}
	if c.MaxDestinationRepoHours != nil && backHours > *c.MaxDestinationRepoHours {
		return models.Reject(CodeRepoBackTooLong,
			fmt.Sprintf("Inbound repo %.2fh > max %gh", backHours, *c.MaxDestinationRepoHours),
			"repo.constraints.max_destination_repo_hours")
	}
	return nil
}
