// Package ranking picks which category quotes to present when one trip is
// quoted for several aircraft categories.
package ranking

import (
	"sort"

	"github.com/charterquote/quoteengine/internal/models"
)

// Select splits quotes into accepted and rejected ones and applies the
// selection to the accepted ones. Lowest and highest keep a single quote by
// the metric's raw value. All keeps every accepted quote, best first: cheapest
// price or highest match score. Ties keep the input order.
func Select(quotes []models.CategoryQuote, selection models.Selection, metric models.RankMetric) (selected, rejected []models.CategoryQuote) {
	accepted := make([]models.CategoryQuote, 0, len(quotes))
	for _, q := range quotes {
		if q.Result.IsOK() {
			accepted = append(accepted, q)
			continue
		}
		rejected = append(rejected, q)
	}
	if len(accepted) == 0 {
		return accepted, rejected
	}

	switch selection {
	case models.SelectHighest:
		sorted := applySort(accepted, metric, false)
		return sorted[:1], rejected
	case models.SelectAll:
		return applySort(accepted, metric, metric != models.RankByMatchScore), rejected
	default:
		sorted := applySort(accepted, metric, true)
		return sorted[:1], rejected
	}
}

// Value returns the metric of an accepted quote. Quotes without a match score
// rank below every scored quote.
func Value(q models.CategoryQuote, metric models.RankMetric) float64 {
	if metric == models.RankByMatchScore {
		if q.Result.Times == nil || q.Result.Times.MatchScore == nil {
			return -1
		}
		return *q.Result.Times.MatchScore
	}
	total, _ := q.Result.Total()
	return total
}

func applySort(quotes []models.CategoryQuote, metric models.RankMetric, ascending bool) []models.CategoryQuote {
	sorted := make([]models.CategoryQuote, len(quotes))
	copy(sorted, quotes)

	sort.SliceStable(sorted, func(i, j int) bool {
		if ascending {
			return Value(sorted[i], metric) < Value(sorted[j], metric)
		}
		return Value(sorted[i], metric) > Value(sorted[j], metric)
	})
	return sorted
}
