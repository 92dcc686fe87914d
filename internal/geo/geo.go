// Package geo provides great-circle distance helpers over airport coordinates.
package geo

import (
	"math"

	"github.com/charterquote/quoteengine/internal/models"
)

const (
	earthRadiusKm = 6371.0
	kmToNM        = 0.539956803
)

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// HaversineNM returns the great-circle distance in nautical miles.
func HaversineNM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Pow(math.Sin(dLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c * kmToNM
}

func Distance(a, b models.Airport) float64 {
	return HaversineNM(a.Lat, a.Lon, b.Lat, b.Lon)
}

// LegDistance is zero for legs that do not move the aircraft.
func LegDistance(leg models.Leg) float64 {
	if !leg.IsFlown() {
		return 0
	}
	return Distance(leg.From, leg.To)
}

// Closest returns the candidate nearest to ref. Ties keep the earlier
// candidate. The bool is false when candidates is empty.
func Closest(ref models.Airport, candidates []models.Airport) (models.Airport, bool) {
	if len(candidates) == 0 {
		return models.Airport{}, false
	}

	best := candidates[0]
	bestDist := Distance(ref, best)
	for _, c := range candidates[1:] {
		if d := Distance(ref, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, true
}
