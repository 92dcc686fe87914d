package models

// Knobs is the operator pricing configuration. Most sections are optional;
// which fields are required depends on the selected variants and is checked
// once per quote before any pricing runs.
type Knobs struct {
	SchemaVersion int              `json:"schema_version,omitempty"`
	Repo          RepoKnobs        `json:"repo"`
	Time          TimeKnobs        `json:"time"`
	Pricing       PricingKnobs     `json:"pricing"`
	Discounts     DiscountKnobs    `json:"discounts"`
	Scoring       *ScoringKnobs    `json:"scoring,omitempty"`
	Fees          FeeKnobs         `json:"fees"`
	Eligibility   EligibilityKnobs `json:"eligibility"`
	Results       ResultKnobs      `json:"results"`
	Trip          TripKnobs        `json:"trip"`
}

// ---------------------------------------------------------------------------
// Repositioning
// ---------------------------------------------------------------------------

type RepoMode string

const (
	RepoFixedBase     RepoMode = "fixed_base"
	RepoVHBNetwork    RepoMode = "vhb_network"
	RepoZoneNetwork   RepoMode = "zone_network"
	RepoFloatingFleet RepoMode = "floating_fleet"
)

func (m RepoMode) Valid() bool {
	switch m {
	case RepoFixedBase, RepoVHBNetwork, RepoZoneNetwork, RepoFloatingFleet:
		return true
	}
	return false
}

type RepoPolicy string

const (
	RepoPolicyBoth         RepoPolicy = "both"
	RepoPolicyOutboundOnly RepoPolicy = "outbound_only"
	RepoPolicyInboundOnly  RepoPolicy = "inbound_only"
)

func (p RepoPolicy) Valid() bool {
	switch p {
	case RepoPolicyBoth, RepoPolicyOutboundOnly, RepoPolicyInboundOnly:
		return true
	}
	return false
}

func (p RepoPolicy) Outbound() bool {
	return p == RepoPolicyBoth || p == RepoPolicyOutboundOnly
}

func (p RepoPolicy) Inbound() bool {
	return p == RepoPolicyBoth || p == RepoPolicyInboundOnly
}

type RepoKnobs struct {
	Mode         RepoMode         `json:"mode"`
	Policy       RepoPolicy       `json:"policy"`
	FixedBase    *Airport         `json:"fixed_base,omitempty"`
	VHBSets      *VHBSets         `json:"vhb_sets,omitempty"`
	VHBSelection string           `json:"vhb_selection,omitempty"`
	Constraints  *RepoConstraints `json:"constraints,omitempty"`
	ZoneNetwork  *ZoneNetwork     `json:"zone_network,omitempty"`
}

type VHBSets struct {
	Default    []Airport              `json:"default,omitempty"`
	ByCategory map[Category][]Airport `json:"by_category,omitempty"`
}

type RepoConstraints struct {
	MaxOriginRepoHours      *float64 `json:"max_origin_repo_hours,omitempty"`
	MaxDestinationRepoHours *float64 `json:"max_destination_repo_hours,omitempty"`
	RejectIfExceeded        bool     `json:"reject_if_exceeded"`
}

// ZoneNetwork groups region codes (US states) into named zones with their own
// repositioning times.
type ZoneNetwork struct {
	Zones         []Zone         `json:"zones"`
	ZoneRepoTimes []ZoneRepoTime `json:"zone_repo_times"`
	PeakPeriods   []PeakPeriod   `json:"peak_periods,omitempty"`
}

type Zone struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	States []string `json:"states"`
}

// ZoneRepoTime holds repositioning hours for a zone. Origin applies to the
// outbound side (base to trip start), destination to the inbound side.
type ZoneRepoTime struct {
	ZoneID              string  `json:"zone_id"`
	OriginRepoTime      float64 `json:"origin_repo_time"`
	DestinationRepoTime float64 `json:"destination_repo_time"`
}

// PeakPeriod overrides zone repo times and multiplies rates between
// StartDate and EndDate inclusive (YYYY-MM-DD).
type PeakPeriod struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	StartDate          string         `json:"start_date"`
	EndDate            string         `json:"end_date"`
	ZoneTimeOverrides  []ZoneRepoTime `json:"zone_time_overrides,omitempty"`
	RepoRateMultiplier *float64       `json:"repo_rate_multiplier,omitempty"`
	OccupiedMultiplier *float64       `json:"occupied_multiplier,omitempty"`
}

// ---------------------------------------------------------------------------
// Time
// ---------------------------------------------------------------------------

type TimeApplyTo string

const (
	ApplyToOccupied TimeApplyTo = "occupied"
	ApplyToRepo     TimeApplyTo = "repo"
	ApplyToBoth     TimeApplyTo = "both"
)

func (a TimeApplyTo) Valid() bool {
	switch a {
	case ApplyToOccupied, ApplyToRepo, ApplyToBoth:
		return true
	}
	return false
}

type TimeKnobs struct {
	TaxiHoursPerLeg   float64       `json:"taxi_hours_per_leg"`
	BufferHoursPerLeg float64       `json:"buffer_hours_per_leg"`
	ApplyTo           TimeApplyTo   `json:"apply_to"`
	Minimums          *TimeMinimums `json:"minimums,omitempty"`
	DailyLimits       *DailyLimits  `json:"daily_limits,omitempty"`
}

type TimeMinimums struct {
	MinActualFlightHoursPerLeg *float64 `json:"min_actual_flight_hours_per_leg,omitempty"`
	MinFirstOccupiedLegHours   *float64 `json:"min_first_occupied_leg_hours,omitempty"`
	MinTotalTripHours          *float64 `json:"min_total_trip_hours,omitempty"`
	MinOccupiedHoursTotal      *float64 `json:"min_occupied_hours_total,omitempty"`
}

type DailyLimits struct {
	MaxOccupiedHoursPerDay *float64 `json:"max_occupied_hours_per_day,omitempty"`
}

// ---------------------------------------------------------------------------
// Pricing
// ---------------------------------------------------------------------------

type RateModel string

const (
	RateSingleHourly RateModel = "single_hourly"
	RateDual         RateModel = "dual_rate_repo_occupied"
	RateZoneBased    RateModel = "zone_based"
)

func (r RateModel) Valid() bool {
	switch r {
	case RateSingleHourly, RateDual, RateZoneBased:
		return true
	}
	return false
}

type PricingKnobs struct {
	Currency     string    `json:"currency,omitempty"`
	RateModel    RateModel `json:"rate_model"`
	HourlyRate   *float64  `json:"hourly_rate,omitempty"`
	RepoRate     *float64  `json:"repo_rate,omitempty"`
	OccupiedRate *float64  `json:"occupied_rate,omitempty"`
}

// ---------------------------------------------------------------------------
// Discounts and scoring
// ---------------------------------------------------------------------------

type DiscountMode string

const (
	DiscountModeNone                DiscountMode = "none"
	DiscountModeOriginOrDestination DiscountMode = "origin_or_destination"
	DiscountModeBothRequired        DiscountMode = "both_required"
)

func (m DiscountMode) Valid() bool {
	switch m {
	case DiscountModeNone, DiscountModeOriginOrDestination, DiscountModeBothRequired:
		return true
	}
	return false
}

// DiscountBase selects the amount a percentage discount is computed against.
type DiscountBase string

const (
	DiscountBaseOnly     DiscountBase = "base_only"
	DiscountBaseWithFees DiscountBase = "subtotal_before_fees"
	DiscountBaseTotal    DiscountBase = "total"
)

func (b DiscountBase) Valid() bool {
	switch b {
	case DiscountBaseOnly, DiscountBaseWithFees, DiscountBaseTotal:
		return true
	}
	return false
}

type DiscountKnobs struct {
	VHBDiscount       *VHBDiscount       `json:"vhb_discount,omitempty"`
	TimeBasedDiscount *TimeBasedDiscount `json:"time_based_discount,omitempty"`
}

// VHBDiscount is the home-base discount. Percent is a fraction (0.10 = 10%),
// unlike TimeBasedDiscount.DiscountPercent which is 0-100.
type VHBDiscount struct {
	Mode      DiscountMode `json:"mode"`
	Percent   float64      `json:"percent"`
	AppliesTo DiscountBase `json:"applies_to"`
}

type TimeBasedDiscount struct {
	Enabled                bool         `json:"enabled"`
	MinOccupiedHoursPerLeg float64      `json:"min_occupied_hours_per_leg"`
	DiscountPercent        float64      `json:"discount_percent"`
	AppliesTo              DiscountBase `json:"applies_to"`
}

type MatchAction string

const (
	MatchActionReject   MatchAction = "reject"
	MatchActionRankOnly MatchAction = "rank_only"
)

func (a MatchAction) Valid() bool {
	return a == MatchActionReject || a == MatchActionRankOnly
}

type ScoringKnobs struct {
	MatchScore *MatchScoreKnobs `json:"match_score,omitempty"`
}

type MatchScoreKnobs struct {
	Enabled   bool        `json:"enabled"`
	Threshold float64     `json:"threshold"`
	Action    MatchAction `json:"action"`
}

// ---------------------------------------------------------------------------
// Fees
// ---------------------------------------------------------------------------

type GroundHandlingScope string

const (
	GroundHandlingOccupiedOnly GroundHandlingScope = "occupied_only"
	GroundHandlingAllLegs      GroundHandlingScope = "all_legs"
)

func (s GroundHandlingScope) Valid() bool {
	return s == GroundHandlingOccupiedOnly || s == GroundHandlingAllLegs
}

type HighDensityCounting string

const (
	HDSegmentEndpoints HighDensityCounting = "segment_endpoints"
	HDArrivalsOnly     HighDensityCounting = "arrivals_only"
	HDLandings         HighDensityCounting = "landings"
)

func (c HighDensityCounting) Valid() bool {
	switch c {
	case HDSegmentEndpoints, HDArrivalsOnly, HDLandings:
		return true
	}
	return false
}

type LandingCounting string

const (
	LandingArrivalsOnly LandingCounting = "arrivals_only"
	LandingAllLandings  LandingCounting = "landings"
)

func (c LandingCounting) Valid() bool {
	return c == LandingArrivalsOnly || c == LandingAllLandings
}

type LandingLogic string

const (
	LandingStandard            LandingLogic = "standard"
	LandingHomebaseConditional LandingLogic = "homebase_conditional"
)

func (l LandingLogic) Valid() bool {
	return l == LandingStandard || l == LandingHomebaseConditional
}

type OvernightTrigger string

const (
	OvernightNever         OvernightTrigger = "none"
	OvernightRoundTripOnly OvernightTrigger = "round_trip_only"
	OvernightAlways        OvernightTrigger = "always"
)

func (t OvernightTrigger) Valid() bool {
	switch t {
	case OvernightNever, OvernightRoundTripOnly, OvernightAlways:
		return true
	}
	return false
}

type DayCounting string

const (
	DayCountingUniqueDates   DayCounting = "unique_dates_touched"
	DayCountingNightsPlusOne DayCounting = "nights_plus_one"
)

func (d DayCounting) Valid() bool {
	return d == DayCountingUniqueDates || d == DayCountingNightsPlusOne
}

type FeeKnobs struct {
	GroundHandling   *GroundHandlingFee `json:"ground_handling,omitempty"`
	HighDensity      *HighDensityFee    `json:"high_density,omitempty"`
	LandingFees      *LandingFee        `json:"landing_fees,omitempty"`
	Overnight        *OvernightFee      `json:"overnight,omitempty"`
	Daily            *DailyFee          `json:"daily,omitempty"`
	PriceConstraints *PriceConstraints  `json:"price_constraints,omitempty"`
}

type GroundHandlingFee struct {
	PerSegmentAmount float64             `json:"per_segment_amount"`
	AppliesTo        GroundHandlingScope `json:"applies_to"`
}

type HighDensityFee struct {
	Airports                    []Airport           `json:"airports"`
	FeePerVisit                 float64             `json:"fee_per_visit"`
	CountingMode                HighDensityCounting `json:"counting_mode"`
	RoundTripOriginDoubleCharge bool                `json:"round_trip_origin_double_charge,omitempty"`
	TripCap                     *float64            `json:"trip_cap,omitempty"`
}

type LandingFee struct {
	CountingMode     LandingCounting `json:"counting_mode"`
	DefaultAmount    float64         `json:"default_amount"`
	HDOverrideAmount *float64        `json:"hd_override_amount,omitempty"`
	HDAirports       []Airport       `json:"hd_airports,omitempty"`
	ConditionalLogic LandingLogic    `json:"conditional_logic,omitempty"`
	Homebase         *Airport        `json:"homebase,omitempty"`
}

type OvernightFee struct {
	AmountPerNight float64          `json:"amount_per_night"`
	AppliesWhen    OvernightTrigger `json:"applies_when"`
}

type DailyFee struct {
	AmountPerCalendarDay float64        `json:"amount_per_calendar_day"`
	CalendarDayCounting  DayCounting    `json:"calendar_day_counting"`
	DateOverrides        []DateOverride `json:"date_overrides,omitempty"`
}

type DateOverride struct {
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	AmountPerDay float64 `json:"amount_per_day"`
	Label        string  `json:"label,omitempty"`
}

type PriceConstraints struct {
	MinPricePerLeg *float64 `json:"min_price_per_leg,omitempty"`
	MinTripPrice   *float64 `json:"min_trip_price,omitempty"`
	MaxTripPrice   *float64 `json:"max_trip_price,omitempty"`
}

// ---------------------------------------------------------------------------
// Eligibility, results, trip
// ---------------------------------------------------------------------------

type EligibilityKnobs struct {
	DomesticOnly             bool     `json:"domestic_only"`
	MaxAdvanceDays           *float64 `json:"max_advance_days,omitempty"`
	MaxPassengers            *int     `json:"max_passengers,omitempty"`
	ExcludeStates            []string `json:"exclude_states,omitempty"`
	GeoRules                 GeoRules `json:"geo_rules,omitempty"`
	MaxOccupiedHoursPerLeg   *float64 `json:"max_occupied_hours_per_leg,omitempty"`
	MaxSameDayRoundTripHours *float64 `json:"max_same_day_round_trip_hours,omitempty"`
}

type Selection string

const (
	SelectLowest  Selection = "lowest"
	SelectHighest Selection = "highest"
	SelectAll     Selection = "all"
)

func (s Selection) Valid() bool {
	switch s {
	case SelectLowest, SelectHighest, SelectAll:
		return true
	}
	return false
}

type RankMetric string

const (
	RankByPrice      RankMetric = "price"
	RankByMatchScore RankMetric = "match_score"
)

func (m RankMetric) Valid() bool {
	return m == RankByPrice || m == RankByMatchScore
}

type ResultKnobs struct {
	Selection  Selection  `json:"selection"`
	RankMetric RankMetric `json:"rank_metric"`
}

type TripKnobs struct {
	MaxNightsBeforeSplit *int `json:"max_nights_before_split,omitempty"`
}

// WithDefaults returns a copy with optional variant selectors filled in.
// Required selectors (repo mode, rate model) are left untouched so that
// their absence is reported as a rejection.
func (k Knobs) WithDefaults() Knobs {
	if k.Repo.Policy == "" {
		k.Repo.Policy = RepoPolicyBoth
	}
	if k.Time.ApplyTo == "" {
		k.Time.ApplyTo = ApplyToBoth
	}
	if k.Pricing.Currency == "" {
		k.Pricing.Currency = "USD"
	}
	if k.Results.Selection == "" {
		k.Results.Selection = SelectLowest
	}
	if k.Results.RankMetric == "" {
		k.Results.RankMetric = RankByPrice
	}
	if gh := k.Fees.GroundHandling; gh != nil && gh.AppliesTo == "" {
		c := *gh
		c.AppliesTo = GroundHandlingOccupiedOnly
		k.Fees.GroundHandling = &c
	}
	if lf := k.Fees.LandingFees; lf != nil && (lf.ConditionalLogic == "" || lf.CountingMode == "") {
		c := *lf
		if c.ConditionalLogic == "" {
			c.ConditionalLogic = LandingStandard
		}
		if c.CountingMode == "" {
			c.CountingMode = LandingAllLandings
		}
		k.Fees.LandingFees = &c
	}
	if d := k.Fees.Daily; d != nil && d.CalendarDayCounting == "" {
		c := *d
		c.CalendarDayCounting = DayCountingUniqueDates
		k.Fees.Daily = &c
	}
	if o := k.Fees.Overnight; o != nil && o.AppliesWhen == "" {
		c := *o
		c.AppliesWhen = OvernightNever
		k.Fees.Overnight = &c
	}
	return k
}
