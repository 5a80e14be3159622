package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request after the handler has run.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	sugar := logger.Sugar()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo write the error response so the status is final
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			fields := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"route", c.Path(),
				"status", res.Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
				"remote_ip", c.RealIP(),
			}
			switch {
			case res.Status >= 500:
				sugar.Errorw("request failed", append(fields, "error", errString(err))...)
			case res.Status >= 400:
				sugar.Warnw("request rejected", fields...)
			default:
				sugar.Infow("request handled", fields...)
			}
			return nil
		}
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
