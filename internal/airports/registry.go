// Package airports resolves ICAO codes to airport reference data.
package airports

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charterquote/quoteengine/internal/airports/data"
	"github.com/charterquote/quoteengine/internal/models"
)

const CodeAirportNotFound = "AIRPORT_NOT_FOUND"

// Registry is an immutable index of airports by ICAO code. A nil Registry
// resolves nothing and returns its inputs unchanged.
type Registry struct {
	byCode map[string]models.Airport
}

func New(list []models.Airport) *Registry {
	r := &Registry{byCode: make(map[string]models.Airport, len(list))}
	for _, a := range list {
		a.ICAO = a.Code()
		r.byCode[a.ICAO] = a
	}
	return r
}

// Default loads the embedded reference data set.
func Default() (*Registry, error) {
	var list []models.Airport
	if err := json.Unmarshal(data.AirportsJSON, &list); err != nil {
		return nil, fmt.Errorf("decode embedded airports: %w", err)
	}
	return New(list), nil
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.byCode)
}

func (r *Registry) Lookup(code string) (models.Airport, bool) {
	if r == nil {
		return models.Airport{}, false
	}
	a, ok := r.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return a, ok
}

// Resolve fills in reference data for an airport given only by code.
// Airports that already carry coordinates are returned as-is.
func (r *Registry) Resolve(a models.Airport, fieldPath string) (models.Airport, *models.Rejection) {
	if r == nil || !a.IsCodeOnly() {
		return a, nil
	}
	found, ok := r.Lookup(a.Code())
	if !ok {
		return a, models.Reject(CodeAirportNotFound,
			fmt.Sprintf("Unknown airport %q.", a.Code()), fieldPath)
	}
	return found, nil
}

func (r *Registry) resolveList(list []models.Airport, fieldPath string) ([]models.Airport, *models.Rejection) {
	if len(list) == 0 {
		return list, nil
	}
	out := make([]models.Airport, len(list))
	for i, a := range list {
		resolved, rej := r.Resolve(a, fmt.Sprintf("%s[%d]", fieldPath, i))
		if rej != nil {
			return nil, rej
		}
		out[i] = resolved
	}
	return out, nil
}

func (r *Registry) ResolveTrip(trip models.Trip) (models.Trip, *models.Rejection) {
	from, rej := r.Resolve(trip.From, "trip.from")
	if rej != nil {
		return trip, rej
	}
	to, rej := r.Resolve(trip.To, "trip.to")
	if rej != nil {
		return trip, rej
	}
	trip.From = from
	trip.To = to
	return trip, nil
}

// ResolveKnobs resolves every airport reference in the configuration. The
// input is not modified.
func (r *Registry) ResolveKnobs(k models.Knobs) (models.Knobs, *models.Rejection) {
	if r == nil {
		return k, nil
	}

	if k.Repo.FixedBase != nil {
		base, rej := r.Resolve(*k.Repo.FixedBase, "repo.fixed_base")
		if rej != nil {
			return k, rej
		}
		k.Repo.FixedBase = &base
	}

	if sets := k.Repo.VHBSets; sets != nil {
		resolved := VHBSetsCopy(sets)
		var rej *models.Rejection
		if resolved.Default, rej = r.resolveList(sets.Default, "repo.vhb_sets.default"); rej != nil {
			return k, rej
		}
		for cat, list := range sets.ByCategory {
			if resolved.ByCategory[cat], rej = r.resolveList(list, "repo.vhb_sets.by_category."+string(cat)); rej != nil {
				return k, rej
			}
		}
		k.Repo.VHBSets = resolved
	}

	if hd := k.Fees.HighDensity; hd != nil {
		c := *hd
		var rej *models.Rejection
		if c.Airports, rej = r.resolveList(hd.Airports, "fees.high_density.airports"); rej != nil {
			return k, rej
		}
		k.Fees.HighDensity = &c
	}

	if lf := k.Fees.LandingFees; lf != nil {
		c := *lf
		var rej *models.Rejection
		if c.HDAirports, rej = r.resolveList(lf.HDAirports, "fees.landing_fees.hd_airports"); rej != nil {
			return k, rej
		}
		if lf.Homebase != nil {
			home, rej := r.Resolve(*lf.Homebase, "fees.landing_fees.homebase")
			if rej != nil {
				return k, rej
			}
			c.Homebase = &home
		}
		k.Fees.LandingFees = &c
	}

	return k, nil
}

// VHBSetsCopy returns a copy whose by-category map can be written safely.
func VHBSetsCopy(s *models.VHBSets) *models.VHBSets {
	c := &models.VHBSets{Default: s.Default}
	if s.ByCategory != nil {
		c.ByCategory = make(map[models.Category][]models.Airport, len(s.ByCategory))
		for k, v := range s.ByCategory {
			c.ByCategory[k] = v
		}
	}
	return c
}
