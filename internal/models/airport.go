package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Side is the position of an airport relative to the Mississippi river.
type Side string

const (
	SideEast Side = "EAST"
	SideWest Side = "WEST"
)

type Airport struct {
	ICAO                 string  `json:"icao"`
	Lat                  float64 `json:"lat"`
	Lon                  float64 `json:"lon"`
	Country              string  `json:"country,omitempty"`
	State                string  `json:"state,omitempty"`
	MississippiDirection Side    `json:"mississippi_direction,omitempty"`
	TimezoneID           string  `json:"timezone_id,omitempty"`
}

// Code returns the normalized ICAO identifier.
func (a Airport) Code() string {
	return strings.ToUpper(strings.TrimSpace(a.ICAO))
}

func (a Airport) SameAs(b Airport) bool {
	return a.Code() != "" && a.Code() == b.Code()
}

// IsCodeOnly reports whether the airport carries an identifier but no
// reference data, e.g. when it was supplied as a bare ICAO string.
func (a Airport) IsCodeOnly() bool {
	return a.Lat == 0 && a.Lon == 0 && a.MississippiDirection == "" && a.TimezoneID == ""
}

// UnmarshalJSON accepts either a full airport object or a bare ICAO code.
func (a *Airport) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var code string
		if err := json.Unmarshal(trimmed, &code); err != nil {
			return err
		}
		*a = Airport{ICAO: strings.ToUpper(strings.TrimSpace(code))}
		return nil
	}

	type airportAlias Airport
	var alias airportAlias
	if err := json.Unmarshal(trimmed, &alias); err != nil {
		return err
	}
	*a = Airport(alias)
	return nil
}

// AirportSet is a case-insensitive set of ICAO codes.
type AirportSet map[string]struct{}

func NewAirportSet(airports []Airport) AirportSet {
	set := make(AirportSet, len(airports))
	for _, a := range airports {
		if code := a.Code(); code != "" {
			set[code] = struct{}{}
		}
	}
	return set
}

func (s AirportSet) Contains(a Airport) bool {
	_, ok := s[a.Code()]
	return ok
}

// UniqueAirports removes duplicates by ICAO code, keeping the last occurrence
// of each code at the position of its first occurrence.
func UniqueAirports(list []Airport) []Airport {
	index := make(map[string]int, len(list))
	result := make([]Airport, 0, len(list))
	for _, a := range list {
		code := a.Code()
		if i, ok := index[code]; ok {
			result[i] = a
			continue
		}
		index[code] = len(result)
		result = append(result, a)
	}
	return result
}
