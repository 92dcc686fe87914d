package observability

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request once the handler has finished.
// Server errors log at ERROR, client errors at WARN.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// let echo's error handler write the response so the status is final
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = res.Header().Get(echo.HeaderXRequestID)
			}
			route := c.Path()
			if route == "" {
				route = req.URL.Path
			}

			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.String("method", req.Method),
				zap.String("route", route),
				zap.Int("status", res.Status),
				zap.Duration("latency", time.Since(start)),
				zap.Int64("bytes", res.Size),
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}

			switch {
			case res.Status >= http.StatusInternalServerError:
				logger.Error("request completed", fields...)
			case res.Status >= http.StatusBadRequest:
				logger.Warn("request completed", fields...)
			default:
				logger.Info("request completed", fields...)
			}
			return nil
		}
	}
}
