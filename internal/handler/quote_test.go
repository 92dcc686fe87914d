package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charterquote/quoteengine/internal/airports"
	"github.com/charterquote/quoteengine/internal/engine"
	"github.com/charterquote/quoteengine/internal/models"
)

type fakeQuoter struct {
	lastTrip  models.Trip
	lastKnobs models.Knobs
	result    models.QuoteResult
	byCat     map[models.Category]models.QuoteResult
}

func (f *fakeQuoter) Quote(_ context.Context, trip models.Trip, k models.Knobs) models.QuoteResult {
	f.lastTrip = trip
	f.lastKnobs = k
	return f.result
}

func (f *fakeQuoter) QuoteCategories(_ context.Context, trip models.Trip, cats []models.Category, k models.Knobs) []engine.CategoryResult {
	f.lastTrip = trip
	f.lastKnobs = k
	out := make([]engine.CategoryResult, len(cats))
	for i, c := range cats {
		out[i] = engine.CategoryResult{Category: c, Result: f.byCat[c]}
	}
	return out
}

func accepted(total float64) models.QuoteResult {
	return models.Accepted(nil, models.TimeSummary{}, []models.LineItem{
		{Code: models.CodeBaseOccupied, Amount: total},
	}, models.Totals{BaseOccupied: total, Total: total}, nil)
}

const tripJSON = `{"trip_type":"ONE_WAY","category":"CAT5","from":"KTEB","to":"KPBI","depart_local_iso":"2026-03-01T09:00"}`

func post(t *testing.T, h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func TestQuoteUsesRequestKnobs(t *testing.T) {
	q := &fakeQuoter{result: accepted(12345.678)}
	h := NewQuoteHandler(q, Config{})

	body := `{"trip":` + tripJSON + `,"knobs":{"repo":{"mode":"floating_fleet"},"pricing":{"rate_model":"single_hourly","hourly_rate":5000}}}`
	rec := post(t, h.Quote, body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.QuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.QuoteID)
	assert.Equal(t, models.StatusOK, resp.Result.Status)
	assert.Equal(t, "$12,345.68", resp.FormattedTotal)
	assert.Equal(t, "USD", resp.Metadata.Currency)
	assert.False(t, resp.Metadata.Split)

	assert.Equal(t, "KTEB", q.lastTrip.From.Code())
	assert.Equal(t, models.RepoFloatingFleet, q.lastKnobs.Repo.Mode)
	require.NotNil(t, q.lastKnobs.Pricing.HourlyRate)
	assert.Equal(t, 5000.0, *q.lastKnobs.Pricing.HourlyRate)
}

func TestQuoteFallsBackToDefaultKnobs(t *testing.T) {
	q := &fakeQuoter{result: accepted(100)}
	def := models.Knobs{Pricing: models.PricingKnobs{RateModel: models.RateDual}}
	h := NewQuoteHandler(q, Config{DefaultKnobs: &def})

	rec := post(t, h.Quote, `{"trip":`+tripJSON+`,"knobs":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RateDual, q.lastKnobs.Pricing.RateModel)
	assert.Equal(t, models.RepoPolicyBoth, q.lastKnobs.Repo.Policy)
}

func TestQuoteRejectionIsNotAnHTTPError(t *testing.T) {
	q := &fakeQuoter{result: models.Rejected(models.Rejection{Code: "PAX_LIMIT", Message: "too many"})}
	def := models.Knobs{}
	h := NewQuoteHandler(q, Config{DefaultKnobs: &def})

	rec := post(t, h.Quote, `{"trip":`+tripJSON+`}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.QuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusRejected, resp.Result.Status)
	assert.Empty(t, resp.FormattedTotal)
	require.Len(t, resp.Result.RejectReasons, 1)
	assert.Equal(t, "PAX_LIMIT", resp.Result.RejectReasons[0].Code)
}

func TestQuoteBadRequests(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		defaults bool
		wantErr  string
		wantMsg  string
	}{
		{"malformed json", `{"trip":`, true, "invalid_request", ""},
		{"missing origin", `{"trip":{"category":"CAT5","to":"KPBI","depart_local_iso":"2026-03-01T09:00"}}`, true,
			"validation_error", string(models.ErrMissingOrigin)},
		{"bad category", `{"trip":{"category":"CAT9","from":"KTEB","to":"KPBI","depart_local_iso":"2026-03-01T09:00"}}`, true,
			"validation_error", string(models.ErrInvalidCategory)},
		{"no knobs anywhere", `{"trip":` + tripJSON + `}`, false, "invalid_knobs", string(models.ErrMissingKnobs)},
		{"knobs of the wrong shape", `{"trip":` + tripJSON + `,"knobs":{"repo":[1,2]}}`, true, "invalid_knobs", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{}
			if tt.defaults {
				cfg.DefaultKnobs = &models.Knobs{}
			}
			h := NewQuoteHandler(&fakeQuoter{}, cfg)

			rec := post(t, h.Quote, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantErr, resp.Error)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, resp.Message)
			}
		})
	}
}

func TestCompareSelectsLowest(t *testing.T) {
	q := &fakeQuoter{byCat: map[models.Category]models.QuoteResult{
		models.CAT2: accepted(9000),
		models.CAT5: accepted(15000),
		models.CAT8: models.Rejected(models.Rejection{Code: "PAX_LIMIT"}),
	}}
	def := models.Knobs{}
	h := NewQuoteHandler(q, Config{DefaultKnobs: &def})

	body := `{"trip":{"from":"KTEB","to":"KPBI","depart_local_iso":"2026-03-01T09:00"},"categories":["CAT5","CAT2","CAT8"]}`
	rec := post(t, h.Compare, body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.CompareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.SelectLowest, resp.Selection)
	assert.Equal(t, models.RankByPrice, resp.RankMetric)
	require.Len(t, resp.Quotes, 1)
	assert.Equal(t, models.CAT2, resp.Quotes[0].Category)
	assert.Equal(t, "$9,000.00", resp.Quotes[0].FormattedTotal)
	require.Len(t, resp.Rejected, 1)
	assert.Equal(t, models.CAT8, resp.Rejected[0].Category)
	assert.Equal(t, models.CAT5, q.lastTrip.Category, "trip category defaults to the first requested")
}

func TestCompareRequiresCategories(t *testing.T) {
	h := NewQuoteHandler(&fakeQuoter{}, Config{DefaultKnobs: &models.Knobs{}})
	rec := post(t, h.Compare, `{"trip":`+tripJSON+`,"categories":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuoteEndToEnd(t *testing.T) {
	reg, err := airports.Default()
	require.NoError(t, err)
	h := NewQuoteHandler(engine.New(engine.Deps{Registry: reg}), Config{})

	body := `{"trip":{"trip_type":"ROUND_TRIP","category":"CAT5","from":"KTEB","to":"KPBI",` +
		`"depart_local_iso":"2030-03-01T09:00","return_local_iso":"2030-03-09T15:00"},` +
		`"knobs":{"repo":{"mode":"floating_fleet"},"pricing":{"rate_model":"single_hourly","hourly_rate":5000},` +
		`"fees":{"overnight":{"max_nights_before_split":3}}}}`
	rec := post(t, h.Quote, body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.QuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, models.StatusOK, resp.Result.Status, "%+v", resp.Result.RejectReasons)
	assert.True(t, resp.Metadata.Split, "legacy split threshold is migrated")
	assert.Len(t, resp.Result.Legs, 2)
	assert.True(t, strings.HasPrefix(resp.FormattedTotal, "$"))
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		pinger     Pinger
		wantStatus string
		wantCache  string
	}{
		{"no cache", nil, "ok", "disabled"},
		{"cache up", fakePinger{}, "ok", "ok"},
		{"cache down", fakePinger{err: errors.New("dial tcp: refused")}, "degraded", "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			require.NoError(t, HealthHandler(tt.pinger)(e.NewContext(req, rec)))
			require.Equal(t, http.StatusOK, rec.Code)

			var resp models.HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantCache, resp.Cache)
		})
	}
}
