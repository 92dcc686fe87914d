// Package aggregator sums line items into totals and evaluates split round
// trips as two concurrent one-way itineraries.
package aggregator

import (
	"context"
	"fmt"

	"github.com/charterquote/quoteengine/internal/models"
	"github.com/charterquote/quoteengine/internal/timeadj"
	"github.com/charterquote/quoteengine/internal/timezone"
	"github.com/charterquote/quoteengine/pkg/currency"
)

// Half tags a line item with the split itinerary it came from.
type Half string

const (
	HalfOutbound Half = "OUTBOUND"
	HalfReturn   Half = "RETURN"
)

// Summarize buckets line items by code and sums each bucket independently.
// Any negative amount counts as a discount.
func Summarize(items []models.LineItem) models.Totals {
	var t models.Totals
	for _, li := range items {
		switch {
		case li.Code == models.CodeBaseOccupied:
			t.BaseOccupied += li.Amount
		case li.Code.IsBaseRepo():
			t.BaseRepo += li.Amount
		case li.Code.IsFee():
			t.Fees += li.Amount
		}
		if li.Amount < 0 {
			t.Discounts += li.Amount
		}
		t.Total += li.Amount
	}
	return models.Totals{
		BaseOccupied: currency.RoundMoney(t.BaseOccupied),
		BaseRepo:     currency.RoundMoney(t.BaseRepo),
		Discounts:    currency.RoundMoney(t.Discounts),
		Fees:         currency.RoundMoney(t.Fees),
		Total:        currency.RoundMoney(t.Total),
	}
}

// SplitNote explains why a round trip was quoted as two one-ways.
func SplitNote(overnights, threshold int) string {
	return fmt.Sprintf("Split RT into 2 one-ways because overnights (%d) > %d.", overnights, threshold)
}

func tag(items []models.LineItem, half Half) []models.LineItem {
	tagged := make([]models.LineItem, len(items))
	for i, li := range items {
		tagged[i] = li.WithMeta("leg", string(half))
	}
	return tagged
}

// Merge combines two accepted one-way results of the split round trip.
// Items keep their order, outbound first, and an INFO_SPLIT item records the
// rationale.
func Merge(trip models.Trip, out, back models.QuoteResult, threshold int) models.QuoteResult {
	overnights := timezone.TripOvernights(trip)

	items := append(tag(out.LineItems, HalfOutbound), tag(back.LineItems, HalfReturn)...)
	items = append(items, models.LineItem{
		Code:   models.CodeInfoSplit,
		Label:  SplitNote(overnights, threshold),
		Amount: 0,
		Meta:   map[string]any{"overnights": overnights, "threshold": threshold},
	})

	legs := append(append([]models.Leg{}, out.Legs...), back.Legs...)

	var occupied, repo float64
	for _, r := range []models.QuoteResult{out, back} {
		if r.Times != nil {
			occupied += r.Times.OccupiedHours
			repo += r.Times.RepoHours
		}
	}
	times := models.TimeSummary{
		OccupiedHours:       currency.RoundHours(occupied),
		RepoHours:           currency.RoundHours(repo),
		TotalHours:          currency.RoundHours(occupied + repo),
		Overnights:          overnights,
		CalendarDaysTouched: timezone.TripCalendarDays(trip),
	}
	if score, ok := timeadj.MatchScore(times.OccupiedHours, times.RepoHours); ok {
		times.MatchScore = &score
	}

	return models.Accepted(legs, times, items, Summarize(items), nil)
}

// Evaluator quotes a single itinerary.
type Evaluator func(ctx context.Context, trip models.Trip) models.QuoteResult

// QuoteSplit evaluates both halves of trip concurrently and merges them. If
// either half is rejected that rejection is the result; the outbound
// rejection wins when both are rejected.
func QuoteSplit(ctx context.Context, trip models.Trip, threshold int, evaluate Evaluator) models.QuoteResult {
	type halfResult struct {
		result   models.QuoteResult
		isReturn bool
	}

	resultCh := make(chan halfResult, 2)

	go func() {
		resultCh <- halfResult{result: evaluate(ctx, trip.SplitOutbound()), isReturn: false}
	}()

	go func() {
		resultCh <- halfResult{result: evaluate(ctx, trip.SplitReturn()), isReturn: true}
	}()

	var out, back models.QuoteResult
	for i := 0; i < 2; i++ {
		hr := <-resultCh
		if hr.isReturn {
			back = hr.result
		} else {
			out = hr.result
		}
	}

	if !out.IsOK() {
		return out
	}
	if !back.IsOK() {
		return back
	}
	return Merge(trip, out, back, threshold)
}
