// Package zones resolves trip endpoints against a zone network and applies
// peak-period overrides.
package zones

import (
	"fmt"
	"strings"

	"github.com/charterquote/quoteengine/internal/models"
	"github.com/charterquote/quoteengine/internal/timezone"
)

const (
	CodeZoneNotFound     = "ZONE_NOT_FOUND"
	CodeMissingZoneTimes = "MISSING_ZONE_TIMES"
)

// FindZone returns the first zone whose state set contains state.
func FindZone(state string, zones []models.Zone) (models.Zone, bool) {
	state = strings.ToUpper(strings.TrimSpace(state))
	if state == "" {
		return models.Zone{}, false
	}
	for _, z := range zones {
		for _, s := range z.States {
			if strings.ToUpper(strings.TrimSpace(s)) == state {
				return z, true
			}
		}
	}
	return models.Zone{}, false
}

func findTimes(zoneID string, entries []models.ZoneRepoTime) (models.ZoneRepoTime, bool) {
	for _, t := range entries {
		if t.ZoneID == zoneID {
			return t, true
		}
	}
	return models.ZoneRepoTime{}, false
}

func RepoTimes(zoneID string, network models.ZoneNetwork) (models.ZoneRepoTime, bool) {
	return findTimes(zoneID, network.ZoneRepoTimes)
}

// FindPeak returns the first peak period covering date (YYYY-MM-DD).
func FindPeak(date string, periods []models.PeakPeriod) (*models.PeakPeriod, bool) {
	for i := range periods {
		if timezone.InRange(date, periods[i].StartDate, periods[i].EndDate) {
			p := periods[i]
			return &p, true
		}
	}
	return nil, false
}

// PeakForTrip finds the peak period active on the trip's local departure date.
func PeakForTrip(trip models.Trip, network *models.ZoneNetwork) *models.PeakPeriod {
	if network == nil {
		return nil
	}
	date, err := timezone.DateOf(trip.DepartLocalISO)
	if err != nil {
		return nil
	}
	peak, _ := FindPeak(date, network.PeakPeriods)
	return peak
}

func RepoMultiplier(peak *models.PeakPeriod) float64 {
	if peak == nil || peak.RepoRateMultiplier == nil {
		return 1.0
	}
	return *peak.RepoRateMultiplier
}

func OccupiedMultiplier(peak *models.PeakPeriod) float64 {
	if peak == nil || peak.OccupiedMultiplier == nil {
		return 1.0
	}
	return *peak.OccupiedMultiplier
}

// Side is one end of the itinerary matched to a zone.
type Side struct {
	Zone            models.Zone
	Airport         models.Airport
	Direction       models.RepoDirection
	BaseRepoTime    float64
	AppliedRepoTime float64
	Peak            *models.PeakPeriod
	IsPeakOverride  bool
}

func (s Side) Attribution() models.ZoneAttribution {
	a := models.ZoneAttribution{
		ZoneID:         s.Zone.ID,
		ZoneName:       s.Zone.Name,
		RepoTime:       s.AppliedRepoTime,
		Direction:      s.Direction,
		IsPeakOverride: s.IsPeakOverride,
	}
	if s.Peak != nil {
		a.PeakPeriodName = s.Peak.Name
	}
	return a
}

func (s Side) Detail() *models.ZoneSide {
	return &models.ZoneSide{
		ZoneID:          s.Zone.ID,
		ZoneName:        s.Zone.Name,
		SelectedAirport: s.Airport.Code(),
		BaseRepoTime:    s.BaseRepoTime,
		AppliedRepoTime: s.AppliedRepoTime,
		RepoDirection:   s.Direction,
	}
}

// ResolveSide matches endpoint to its zone and computes the repositioning
// time for the given direction. A peak override of zero means no override.
func ResolveSide(endpoint models.Airport, direction models.RepoDirection, network models.ZoneNetwork, peak *models.PeakPeriod) (Side, *models.Rejection) {
	zone, ok := FindZone(endpoint.State, network.Zones)
	if !ok {
		return Side{}, models.Reject(CodeZoneNotFound,
			fmt.Sprintf("No zone covers %s (state %q).", endpoint.Code(), endpoint.State),
			"repo.zone_network.zones")
	}

	times, ok := RepoTimes(zone.ID, network)
	if !ok {
		return Side{}, models.Reject(CodeMissingZoneTimes,
			fmt.Sprintf("Zone %q has no repositioning times configured.", zone.ID),
			"repo.zone_network.zone_repo_times")
	}

	side := Side{
		Zone:         zone,
		Airport:      endpoint,
		Direction:    direction,
		BaseRepoTime: pick(times, direction),
		Peak:         peak,
	}
	side.AppliedRepoTime = side.BaseRepoTime

	if peak != nil {
		if override, ok := findTimes(zone.ID, peak.ZoneTimeOverrides); ok {
			if t := pick(override, direction); t > 0 {
				side.AppliedRepoTime = t
				side.IsPeakOverride = true
			}
		}
	}
	return side, nil
}

func pick(t models.ZoneRepoTime, direction models.RepoDirection) float64 {
	if direction == models.RepoDirectionDestination {
		return t.DestinationRepoTime
	}
	return t.OriginRepoTime
}
