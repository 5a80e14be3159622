package handler

import (
	"net/http"
	"time"

	"rtm-portal/internal/api"
	"rtm-portal/internal/cache"
	"rtm-portal/internal/database"

	"github.com/labstack/echo/v4"
)

// PingResponse is the health check body.
// swagger:model PingResponse
type PingResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"pong"`
}

const pingKey = "health:ping"

// PingHandler reports whether Postgres and Redis are reachable.
// @Summary     Health Check
// @Description Returns pong after checking the database and Redis
// @Tags        health
// @Produce     json
// @Success     200 {object} PingResponse
// @Failure     503 {object} api.ErrorResponse
// @Router      /ping [get]
func PingHandler(db database.DB, c cache.Cache) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		reqCtx := ctx.Request().Context()
		if err := db.Ping(reqCtx); err != nil {
			return ctx.JSON(http.StatusServiceUnavailable, api.Fail("database unhealthy"))
		}
		if err := c.Set(reqCtx, pingKey, "pong", 10*time.Second).Err(); err != nil {
			return ctx.JSON(http.StatusServiceUnavailable, api.Fail("cache unhealthy"))
		}
		return ctx.JSON(http.StatusOK, PingResponse{Success: true, Message: "pong"})
	}
}
