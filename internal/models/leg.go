package models

type LegKind string

const (
	LegOccupied LegKind = "OCCUPIED"
	LegRepo     LegKind = "REPO"
)

// RepoDirection tells which side of the itinerary a repositioning leg serves.
type RepoDirection string

const (
	RepoDirectionOrigin      RepoDirection = "origin"
	RepoDirectionDestination RepoDirection = "destination"
)

type LegMeta struct {
	ChosenBaseICAO string        `json:"chosen_base_icao,omitempty"`
	ActualHours    float64       `json:"actual_hours"`
	AdjustedHours  float64       `json:"adjusted_hours"`
	DistanceNM     float64       `json:"distance_nm"`
	ZoneID         string        `json:"zone_id,omitempty"`
	ZoneName       string        `json:"zone_name,omitempty"`
	ZoneRepoTime   float64       `json:"zone_repo_time,omitempty"`
	RepoDirection  RepoDirection `json:"repo_direction,omitempty"`
	PeakPeriodName string        `json:"peak_period_name,omitempty"`
	IsPeakOverride bool          `json:"is_peak_override,omitempty"`
	AppliedRate    float64       `json:"applied_rate,omitempty"`
	PeakMultiplier float64       `json:"peak_multiplier,omitempty"`
}

// Leg is a directed flight segment. Legs are values: every With* method
// returns an enriched copy and leaves the receiver untouched.
type Leg struct {
	Kind LegKind `json:"kind"`
	From Airport `json:"from"`
	To   Airport `json:"to"`
	Meta LegMeta `json:"meta"`
}

func NewLeg(kind LegKind, from, to Airport) Leg {
	return Leg{Kind: kind, From: from, To: to}
}

func (l Leg) IsOccupied() bool { return l.Kind == LegOccupied }

func (l Leg) IsRepo() bool { return l.Kind == LegRepo }

// IsZoneRepo reports whether the leg is a zone-network repositioning leg whose
// time comes from configuration rather than from flying.
func (l Leg) IsZoneRepo() bool {
	return l.Kind == LegRepo && l.Meta.ZoneID != ""
}

// IsFlown reports whether the leg moves the aircraft between two airports.
func (l Leg) IsFlown() bool {
	return !l.From.SameAs(l.To)
}

func (l Leg) WithBase(icao string) Leg {
	l.Meta.ChosenBaseICAO = icao
	return l
}

func (l Leg) WithTimes(actualHours, adjustedHours, distanceNM float64) Leg {
	l.Meta.ActualHours = actualHours
	l.Meta.AdjustedHours = adjustedHours
	l.Meta.DistanceNM = distanceNM
	return l
}

// ZoneAttribution is the zone-network context attached to a repositioning leg.
type ZoneAttribution struct {
	ZoneID         string
	ZoneName       string
	RepoTime       float64
	Direction      RepoDirection
	PeakPeriodName string
	IsPeakOverride bool
}

func (l Leg) WithZone(z ZoneAttribution) Leg {
	l.Meta.ZoneID = z.ZoneID
	l.Meta.ZoneName = z.ZoneName
	l.Meta.ZoneRepoTime = z.RepoTime
	l.Meta.RepoDirection = z.Direction
	l.Meta.PeakPeriodName = z.PeakPeriodName
	l.Meta.IsPeakOverride = z.IsPeakOverride
	return l
}

func (l Leg) WithRate(appliedRate, peakMultiplier float64) Leg {
	l.Meta.AppliedRate = appliedRate
	l.Meta.PeakMultiplier = peakMultiplier
	return l
}

// FilterLegs returns the legs of the given kind, preserving order.
func FilterLegs(legs []Leg, kind LegKind) []Leg {
	result := make([]Leg, 0, len(legs))
	for _, l := range legs {
		if l.Kind == kind {
			result = append(result, l)
		}
	}
	return result
}

// SumAdjustedHours sums adjusted hours without rounding.
func SumAdjustedHours(legs []Leg) float64 {
	total := 0.0
	for _, l := range legs {
		total += l.Meta.AdjustedHours
	}
	return total
}
