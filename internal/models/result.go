package models

import "strings"

type LineItemCode string

const (
	CodeBaseOccupied       LineItemCode = "BASE_OCCUPIED"
	CodeBaseRepo           LineItemCode = "BASE_REPO"
	CodeBaseRepoZone       LineItemCode = "BASE_REPO_ZONE"
	CodeDiscountVHB        LineItemCode = "DISCOUNT_VHB"
	CodeDiscountTimeBased  LineItemCode = "DISCOUNT_TIME_BASED"
	CodeDiscountMaxTripCap LineItemCode = "DISCOUNT_MAX_TRIP_PRICE_CAP"
	CodeFeeGroundHandling  LineItemCode = "FEE_GROUND_HANDLING"
	CodeFeeHighDensity     LineItemCode = "FEE_HIGH_DENSITY"
	CodeFeeLanding         LineItemCode = "FEE_LANDING"
	CodeFeeOvernight       LineItemCode = "FEE_OVERNIGHT"
	CodeFeeDaily           LineItemCode = "FEE_DAILY"
	CodeFeeMinPricePerLeg  LineItemCode = "FEE_MIN_PRICE_PER_LEG"
	CodeFeeMinTripPrice    LineItemCode = "FEE_MIN_TRIP_PRICE"
	CodeInfoMatchScore     LineItemCode = "INFO_MATCH_SCORE"
	CodeInfoSplit          LineItemCode = "INFO_SPLIT"
)

func (c LineItemCode) IsFee() bool {
	return strings.HasPrefix(string(c), "FEE_")
}

func (c LineItemCode) IsBaseRepo() bool {
	return strings.HasPrefix(string(c), string(CodeBaseRepo))
}

type LineItem struct {
	Code   LineItemCode   `json:"code"`
	Label  string         `json:"label"`
	Amount float64        `json:"amount"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// WithMeta returns a copy of the line item with key set in its metadata.
func (li LineItem) WithMeta(key string, value any) LineItem {
	meta := make(map[string]any, len(li.Meta)+1)
	for k, v := range li.Meta {
		meta[k] = v
	}
	meta[key] = value
	li.Meta = meta
	return li
}

// SumAmounts adds the amounts of all items.
func SumAmounts(items []LineItem) float64 {
	total := 0.0
	for _, li := range items {
		total += li.Amount
	}
	return total
}

type QuoteStatus string

const (
	StatusOK       QuoteStatus = "OK"
	StatusRejected QuoteStatus = "REJECTED"
)

// Rejection is an expected, user-facing reason a quote cannot be produced.
type Rejection struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	FieldPath string `json:"field_path,omitempty"`
}

func Reject(code, message, fieldPath string) *Rejection {
	return &Rejection{Code: code, Message: message, FieldPath: fieldPath}
}

type TimeSummary struct {
	OccupiedHours       float64  `json:"occupied_hours"`
	RepoHours           float64  `json:"repo_hours"`
	TotalHours          float64  `json:"total_hours"`
	MatchScore          *float64 `json:"match_score,omitempty"`
	Overnights          int      `json:"overnights"`
	CalendarDaysTouched int      `json:"calendar_days_touched"`
}

type Totals struct {
	BaseOccupied float64 `json:"base_occupied"`
	BaseRepo     float64 `json:"base_repo"`
	Discounts    float64 `json:"discounts"`
	Fees         float64 `json:"fees"`
	Total        float64 `json:"total"`
}

type ZoneSide struct {
	ZoneID          string        `json:"zone_id"`
	ZoneName        string        `json:"zone_name"`
	SelectedAirport string        `json:"selected_airport"`
	BaseRepoTime    float64       `json:"base_repo_time"`
	AppliedRepoTime float64       `json:"applied_repo_time"`
	RepoDirection   RepoDirection `json:"repo_direction"`
}

type RateDetail struct {
	BaseRate    float64 `json:"base_rate"`
	AppliedRate float64 `json:"applied_rate"`
}

type PeakDetail struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	OutboundRepoTime   *float64 `json:"outbound_repo_time,omitempty"`
	InboundRepoTime    *float64 `json:"inbound_repo_time,omitempty"`
	RepoRateMultiplier float64  `json:"repo_rate_multiplier"`
	OccupiedMultiplier float64  `json:"occupied_multiplier"`
}

type ZoneCalculation struct {
	OutboundZone *ZoneSide   `json:"outbound_zone,omitempty"`
	InboundZone  *ZoneSide   `json:"inbound_zone,omitempty"`
	RepoRate     *RateDetail `json:"repo_rate,omitempty"`
	OccupiedRate *RateDetail `json:"occupied_rate,omitempty"`
	PeakPeriod   *PeakDetail `json:"peak_period,omitempty"`
}

// QuoteResult is the terminal artifact of a quote. A rejected result carries
// only RejectReasons; an accepted one carries only the payload fields.
type QuoteResult struct {
	Status          QuoteStatus      `json:"status"`
	RejectReasons   []Rejection      `json:"reject_reasons,omitempty"`
	Legs            []Leg            `json:"legs,omitempty"`
	Times           *TimeSummary     `json:"times,omitempty"`
	LineItems       []LineItem       `json:"line_items,omitempty"`
	Totals          *Totals          `json:"totals,omitempty"`
	ZoneCalculation *ZoneCalculation `json:"zone_calculation,omitempty"`
}

func Rejected(r Rejection) QuoteResult {
	return QuoteResult{Status: StatusRejected, RejectReasons: []Rejection{r}}
}

func (q QuoteResult) IsOK() bool {
	return q.Status == StatusOK
}

// FirstRejection returns the leading rejection reason, if any.
func (q QuoteResult) FirstRejection() (Rejection, bool) {
	if len(q.RejectReasons) == 0 {
		return Rejection{}, false
	}
	return q.RejectReasons[0], true
}

// Accepted builds an OK result from a fully computed itinerary.
func Accepted(legs []Leg, times TimeSummary, items []LineItem, totals Totals, zone *ZoneCalculation) QuoteResult {
	return QuoteResult{
		Status:          StatusOK,
		Legs:            legs,
		Times:           &times,
		LineItems:       items,
		Totals:          &totals,
		ZoneCalculation: zone,
	}
}

// Total returns the grand total of an accepted result and false otherwise.
func (q QuoteResult) Total() (float64, bool) {
	if !q.IsOK() || q.Totals == nil {
		return 0, false
	}
	return q.Totals.Total, true
}
