package router

import (
	"errors"
	"fmt"
	"net/http"

	"rtm-portal/internal/api"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorHandler renders errors that escape handlers (auth middleware, unknown
// routes, panics) as api.ErrorResponse.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := http.StatusText(status)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			msg = fmt.Sprint(he.Message)
		} else {
			logger.Error("unhandled error", zap.Error(err), zap.String("path", c.Request().URL.Path))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, api.Fail(msg))
		}
		if err != nil {
			logger.Warn("write error response", zap.Error(err))
		}
	}
}
