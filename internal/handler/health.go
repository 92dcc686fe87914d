package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/charterquote/quoteengine/internal/models"
)

// Pinger is implemented by caches that can report their connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness. A nil pinger reports the cache as disabled;
// an unreachable cache degrades the status without failing the check.
func HealthHandler(p Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		resp := models.HealthResponse{Status: "ok", Cache: "disabled"}
		if p != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				resp.Status = "degraded"
				resp.Cache = "unreachable"
			} else {
				resp.Cache = "ok"
			}
		}
		return c.JSON(http.StatusOK, resp)
	}
}
