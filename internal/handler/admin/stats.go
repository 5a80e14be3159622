package admin

import (
	"encoding/json"
	"net/http"
	"time"

	"rtm-portal/internal/api"
	"rtm-portal/internal/cache"
	"rtm-portal/internal/database"
	"rtm-portal/internal/model"
	"rtm-portal/internal/store"

	"github.com/labstack/echo/v4"
)

const (
	statsKey = "admin:stats"
	statsTTL = 60 * time.Second
)

var getStats = store.GetStats

// StatsHandler returns the dashboard counters, served from Redis for up to a
// minute. Cache failures fall through to the database.
// @Summary     Admin statistics
// @Tags        admin
// @Produce     json
// @Success     200 {object} api.StatsResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/stats [get]
func StatsHandler(db database.DB, c cache.Cache) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		reqCtx := ctx.Request().Context()

		if raw, err := c.Get(reqCtx, statsKey).Bytes(); err == nil {
			var stats model.Stats
			if json.Unmarshal(raw, &stats) == nil {
				return ctx.JSON(http.StatusOK, api.StatsResponse{Success: true, Stats: stats, Cached: true})
			}
		}

		stats, err := getStats(reqCtx, db)
		if err != nil {
			return ctx.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}
		if raw, err := json.Marshal(stats); err == nil {
			_ = c.Set(reqCtx, statsKey, raw, statsTTL).Err()
		}
		return ctx.JSON(http.StatusOK, api.StatsResponse{Success: true, Stats: *stats})
	}
}
