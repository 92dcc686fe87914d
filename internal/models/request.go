package models

import "encoding/json"

// QuoteRequest is the HTTP body of a single quote. Knobs are kept raw so that
// schema migrations can run before decoding.
type QuoteRequest struct {
	Trip  Trip            `json:"trip"`
	Knobs json.RawMessage `json:"knobs,omitempty"`
}

func (r *QuoteRequest) Validate() error {
	return r.Trip.Validate()
}

// CompareRequest quotes the same trip for several aircraft categories.
type CompareRequest struct {
	Trip       Trip            `json:"trip"`
	Categories []Category      `json:"categories"`
	Knobs      json.RawMessage `json:"knobs,omitempty"`
}

func (r *CompareRequest) Validate() error {
	if len(r.Categories) == 0 {
		return ErrMissingCategories
	}
	for _, c := range r.Categories {
		if !c.Valid() {
			return ErrInvalidCategory
		}
	}
	if r.Trip.Category == "" {
		r.Trip.Category = r.Categories[0]
	}
	return r.Trip.Validate()
}

// Validate checks the structural fields of a trip. Business rules such as a
// missing return time on a round trip are reported as rejections instead.
func (t *Trip) Validate() error {
	if t.From.Code() == "" {
		return ErrMissingOrigin
	}
	if t.To.Code() == "" {
		return ErrMissingDestination
	}
	if t.DepartLocalISO == "" {
		return ErrMissingDepartureDate
	}
	if t.TripType == "" {
		t.TripType = TripOneWay
	}
	if !t.TripType.Valid() {
		return ErrInvalidTripType
	}
	if !t.Category.Valid() {
		return ErrInvalidCategory
	}
	if t.Passengers != nil && *t.Passengers <= 0 {
		return ErrInvalidPassengers
	}
	return nil
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingOrigin        ValidationError = "trip.from is required"
	ErrMissingDestination   ValidationError = "trip.to is required"
	ErrMissingDepartureDate ValidationError = "trip.depart_local_iso is required"
	ErrInvalidTripType      ValidationError = "trip.trip_type must be ONE_WAY or ROUND_TRIP"
	ErrInvalidCategory      ValidationError = "category must be one of CAT1..CAT8"
	ErrInvalidPassengers    ValidationError = "trip.passengers must be positive"
	ErrMissingCategories    ValidationError = "categories is required"
	ErrMissingKnobs         ValidationError = "knobs are required when no default configuration is loaded"
)
