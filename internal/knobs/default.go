package knobs

import "github.com/charterquote/quoteengine/internal/models"

func ptr[T any](v T) *T { return &v }

// Default is a minimal working configuration: floating fleet, one hourly
// rate and no fees.
func Default() models.Knobs {
	return models.Knobs{
		Repo: models.RepoKnobs{Mode: models.RepoFloatingFleet},
		Time: models.TimeKnobs{
			TaxiHoursPerLeg:   0.1,
			BufferHoursPerLeg: 0.1,
		},
		Pricing: models.PricingKnobs{
			RateModel:  models.RateSingleHourly,
			HourlyRate: ptr(5000.0),
		},
	}.WithDefaults()
}
