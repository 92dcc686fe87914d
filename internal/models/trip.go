package models

type TripType string

const (
	TripOneWay    TripType = "ONE_WAY"
	TripRoundTrip TripType = "ROUND_TRIP"
)

func (t TripType) Valid() bool {
	switch t {
	case TripOneWay, TripRoundTrip:
		return true
	}
	return false
}

// Category is an aircraft size class, CAT1 (smallest) to CAT8.
type Category string

const (
	CAT1 Category = "CAT1"
	CAT2 Category = "CAT2"
	CAT3 Category = "CAT3"
	CAT4 Category = "CAT4"
	CAT5 Category = "CAT5"
	CAT6 Category = "CAT6"
	CAT7 Category = "CAT7"
	CAT8 Category = "CAT8"
)

var Categories = []Category{CAT1, CAT2, CAT3, CAT4, CAT5, CAT6, CAT7, CAT8}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Trip is the passenger itinerary being quoted. Trips are never mutated; the
// split helpers return derived copies.
type Trip struct {
	TripType        TripType `json:"trip_type"`
	Category        Category `json:"category"`
	AircraftModelID string   `json:"aircraft_model_id,omitempty"`
	From            Airport  `json:"from"`
	To              Airport  `json:"to"`
	DepartLocalISO  string   `json:"depart_local_iso"`
	DepartTimezone  string   `json:"depart_timezone,omitempty"`
	ReturnLocalISO  string   `json:"return_local_iso,omitempty"`
	ReturnTimezone  string   `json:"return_timezone,omitempty"`
	Passengers      *int     `json:"passengers,omitempty"`
}

func (t Trip) IsRoundTrip() bool {
	return t.TripType == TripRoundTrip
}

func (t Trip) HasReturn() bool {
	return t.ReturnLocalISO != ""
}

// SplitOutbound returns the first half of a split round trip.
func (t Trip) SplitOutbound() Trip {
	out := t
	out.TripType = TripOneWay
	out.ReturnLocalISO = ""
	out.ReturnTimezone = ""
	return out
}

// SplitReturn returns the second half of a split round trip: endpoints swapped and
// departing at the round trip's return time.
func (t Trip) SplitReturn() Trip {
	back := t
	back.TripType = TripOneWay
	back.From = t.To
	back.To = t.From
	back.DepartLocalISO = t.ReturnLocalISO
	back.DepartTimezone = t.ReturnTimezone
	back.ReturnLocalISO = ""
	back.ReturnTimezone = ""
	return back
}

// OccupiedLegs expands the trip into its revenue legs.
func (t Trip) OccupiedLegs() []Leg {
	if t.IsRoundTrip() {
		return []Leg{
			NewLeg(LegOccupied, t.From, t.To),
			NewLeg(LegOccupied, t.To, t.From),
		}
	}
	return []Leg{NewLeg(LegOccupied, t.From, t.To)}
}
