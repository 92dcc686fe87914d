package handler

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/charterquote/quoteengine/internal/engine"
	"github.com/charterquote/quoteengine/internal/knobs"
	"github.com/charterquote/quoteengine/internal/models"
	"github.com/charterquote/quoteengine/internal/ranking"
	"github.com/charterquote/quoteengine/pkg/currency"
)

// Quoter prices trips. *engine.Engine satisfies it.
type Quoter interface {
	Quote(ctx context.Context, trip models.Trip, knobs models.Knobs) models.QuoteResult
	QuoteCategories(ctx context.Context, trip models.Trip, categories []models.Category, knobs models.Knobs) []engine.CategoryResult
}

type Config struct {
	// DefaultKnobs is used when a request carries no knobs. Nil means
	// requests must supply their own.
	DefaultKnobs *models.Knobs
	Timeout      time.Duration
	Logger       *zap.Logger
}

type QuoteHandler struct {
	quoter       Quoter
	defaultKnobs *models.Knobs
	timeout      time.Duration
	logger       *zap.Logger
}

func NewQuoteHandler(q Quoter, cfg Config) *QuoteHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteHandler{
		quoter:       q,
		defaultKnobs: cfg.DefaultKnobs,
		timeout:      cfg.Timeout,
		logger:       logger.Named("handler"),
	}
}

func (h *QuoteHandler) Quote(c echo.Context) error {
	startTime := time.Now()

	var req models.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid_request", "Failed to parse request body: "+err.Error())
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, "validation_error", err.Error())
	}

	k, err := h.resolveKnobs(req.Knobs)
	if err != nil {
		return badRequest(c, "invalid_knobs", err.Error())
	}

	ctx, cancel := h.context(c)
	defer cancel()

	result := h.quoter.Quote(ctx, req.Trip, k)
	h.logResult(req.Trip, result)

	return c.JSON(http.StatusOK, models.QuoteResponse{
		QuoteID:        uuid.NewString(),
		Result:         result,
		FormattedTotal: formattedTotal(result, k.Pricing.Currency),
		Metadata: models.QuoteMetadata{
			ComputedMs: time.Since(startTime).Milliseconds(),
			Split:      isSplit(result),
			Currency:   k.Pricing.Currency,
		},
	})
}

func (h *QuoteHandler) Compare(c echo.Context) error {
	startTime := time.Now()

	var req models.CompareRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid_request", "Failed to parse request body: "+err.Error())
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, "validation_error", err.Error())
	}

	k, err := h.resolveKnobs(req.Knobs)
	if err != nil {
		return badRequest(c, "invalid_knobs", err.Error())
	}

	ctx, cancel := h.context(c)
	defer cancel()

	results := h.quoter.QuoteCategories(ctx, req.Trip, req.Categories, k)
	quotes := make([]models.CategoryQuote, 0, len(results))
	for _, r := range results {
		quotes = append(quotes, models.CategoryQuote{
			Category:       r.Category,
			Result:         r.Result,
			FormattedTotal: formattedTotal(r.Result, k.Pricing.Currency),
		})
	}

	selected, rejected := ranking.Select(quotes, k.Results.Selection, k.Results.RankMetric)

	return c.JSON(http.StatusOK, models.CompareResponse{
		QuoteID:    uuid.NewString(),
		Selection:  k.Results.Selection,
		RankMetric: k.Results.RankMetric,
		Quotes:     selected,
		Rejected:   rejected,
		ComputedMs: time.Since(startTime).Milliseconds(),
	})
}

// resolveKnobs decodes request knobs through the migration pipeline, falling
// back to the server default.
func (h *QuoteHandler) resolveKnobs(raw []byte) (models.Knobs, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		if h.defaultKnobs == nil {
			return models.Knobs{}, models.ErrMissingKnobs
		}
		return h.defaultKnobs.WithDefaults(), nil
	}
	return knobs.Decode(trimmed)
}

func (h *QuoteHandler) context(c echo.Context) (context.Context, context.CancelFunc) {
	ctx := c.Request().Context()
	if h.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.timeout)
}

func (h *QuoteHandler) logResult(trip models.Trip, result models.QuoteResult) {
	if r, rejected := result.FirstRejection(); rejected {
		h.logger.Info("quote rejected",
			zap.String("code", r.Code),
			zap.String("from", trip.From.Code()),
			zap.String("to", trip.To.Code()),
		)
		return
	}
	total, _ := result.Total()
	h.logger.Info("quote computed",
		zap.String("from", trip.From.Code()),
		zap.String("to", trip.To.Code()),
		zap.String("category", string(trip.Category)),
		zap.Float64("total", total),
	)
}

func formattedTotal(result models.QuoteResult, code string) string {
	total, ok := result.Total()
	if !ok {
		return ""
	}
	return currency.Format(total, code)
}

func isSplit(result models.QuoteResult) bool {
	for _, li := range result.LineItems {
		if li.Code == models.CodeInfoSplit {
			return true
		}
	}
	return false
}

func badRequest(c echo.Context, kind, message string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   kind,
		Message: message,
		Code:    http.StatusBadRequest,
	})
}
