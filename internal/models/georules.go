package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

type GeoRuleType string

const (
	GeoRuleMississippi      GeoRuleType = "mississippi_rule"
	GeoRuleAllowedCountries GeoRuleType = "allowed_countries"
)

// GeoRule is a geography eligibility rule. The set of implementations is
// closed: MississippiRule, AllowedCountriesRule and UnknownGeoRule.
type GeoRule interface {
	RuleType() GeoRuleType
	geoRule()
}

// SideRequirement names the side both endpoints of a trip must be on.
type SideRequirement string

const (
	BothEast SideRequirement = "both_east"
	BothWest SideRequirement = "both_west"
)

// Satisfied reports whether both sides match the requirement.
func (r SideRequirement) Satisfied(from, to Side) bool {
	switch r {
	case BothEast:
		return from == SideEast && to == SideEast
	case BothWest:
		return from == SideWest && to == SideWest
	}
	return false
}

type MississippiRule struct {
	OneWayRequires                    SideRequirement `json:"one_way_requires"`
	RoundTripUpToNightsRequiresOrigin int             `json:"round_trip_up_to_nights_requires_origin"`
	RoundTripUpToNightsSide           string          `json:"round_trip_up_to_nights_side"`
	RoundTripBeyondNightsRequires     SideRequirement `json:"round_trip_beyond_nights_requires"`
}

func (MississippiRule) RuleType() GeoRuleType { return GeoRuleMississippi }
func (MississippiRule) geoRule()              {}

// ShortTripOriginSide maps the configured side name to a Side, ignoring case.
// ok is false for anything other than east or west.
func (r MississippiRule) ShortTripOriginSide() (side Side, ok bool) {
	switch strings.ToLower(strings.TrimSpace(r.RoundTripUpToNightsSide)) {
	case "east":
		return SideEast, true
	case "west":
		return SideWest, true
	}
	return "", false
}

type AllowedCountriesRule struct {
	Countries []string `json:"countries"`
}

func (AllowedCountriesRule) RuleType() GeoRuleType { return GeoRuleAllowedCountries }
func (AllowedCountriesRule) geoRule()              {}

// UnknownGeoRule preserves a rule whose type is not recognised so that it can
// be rejected explicitly instead of silently skipped.
type UnknownGeoRule struct {
	Type string
}

func (r UnknownGeoRule) RuleType() GeoRuleType { return GeoRuleType(r.Type) }
func (UnknownGeoRule) geoRule()                {}

// GeoRules is an ordered list of geography rules decoded by their "type" field.
type GeoRules []GeoRule

func (g *GeoRules) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("geo_rules: %w", err)
	}

	rules := make(GeoRules, 0, len(raw))
	for i, item := range raw {
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(item, &head); err != nil {
			return fmt.Errorf("geo_rules[%d]: %w", i, err)
		}

		switch GeoRuleType(head.Type) {
		case GeoRuleMississippi:
			var r MississippiRule
			if err := json.Unmarshal(item, &r); err != nil {
				return fmt.Errorf("geo_rules[%d]: %w", i, err)
			}
			rules = append(rules, r)
		case GeoRuleAllowedCountries:
			var r AllowedCountriesRule
			if err := json.Unmarshal(item, &r); err != nil {
				return fmt.Errorf("geo_rules[%d]: %w", i, err)
			}
			rules = append(rules, r)
		default:
			rules = append(rules, UnknownGeoRule{Type: head.Type})
		}
	}
	*g = rules
	return nil
}

func (g GeoRules) MarshalJSON() ([]byte, error) {
	out := make([]map[string]any, 0, len(g))
	for _, rule := range g {
		var fields map[string]any
		switch r := rule.(type) {
		case MississippiRule:
			fields = map[string]any{
				"one_way_requires":                        r.OneWayRequires,
				"round_trip_up_to_nights_requires_origin": r.RoundTripUpToNightsRequiresOrigin,
				"round_trip_up_to_nights_side":            r.RoundTripUpToNightsSide,
				"round_trip_beyond_nights_requires":       r.RoundTripBeyondNightsRequires,
			}
		case AllowedCountriesRule:
			fields = map[string]any{"countries": r.Countries}
		default:
			fields = map[string]any{}
		}
		fields["type"] = rule.RuleType()
		out = append(out, fields)
	}
	return json.Marshal(out)
}
