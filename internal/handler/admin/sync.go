package admin

import (
	"context"
	"errors"
	"net/http"

	"rtm-portal/internal/api"
	"rtm-portal/internal/cache"
	"rtm-portal/internal/database"
	"rtm-portal/internal/model"
	"rtm-portal/internal/sharepoint"
	"rtm-portal/internal/store"
	"rtm-portal/internal/worker"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Syncer runs a SharePoint upload. *sharepoint.Syncer implements it.
type Syncer interface {
	Run(ctx context.Context) (*model.SyncRun, error)
	RunExclusive(ctx context.Context, c cache.Cache) (*model.SyncRun, error)
}

var (
	latestSyncRun = store.LatestSyncRun
	lock          = cache.Lock
)

// SyncHandler starts a SharePoint sync. By default the run is queued on the
// worker pool and the request returns 202; ?wait=true runs it inline.
// A nil syncer means SharePoint is not configured.
// @Summary     Sync to SharePoint
// @Tags        admin
// @Produce     json
// @Param       wait query    bool false "run synchronously"
// @Success     200  {object} api.SyncResponse
// @Success     202  {object} api.SyncResponse
// @Failure     409  {object} api.ErrorResponse
// @Failure     503  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/sharepoint/sync [post]
func SyncHandler(syncer Syncer, c cache.Cache, pool worker.Pool, logger *zap.Logger) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if syncer == nil {
			return ctx.JSON(http.StatusServiceUnavailable, api.Fail("sharepoint is not configured"))
		}
		reqCtx := ctx.Request().Context()

		if ctx.QueryParam("wait") == "true" {
			run, err := syncer.RunExclusive(reqCtx, c)
			if errors.Is(err, cache.ErrLocked) {
				return ctx.JSON(http.StatusConflict, api.Fail("a sync is already running"))
			}
			if err != nil && run == nil {
				return ctx.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
			}
			return ctx.JSON(http.StatusOK, api.SyncResponse{Success: err == nil, Message: "sync finished", Run: run})
		}

		unlock, err := lock(reqCtx, c, sharepoint.LockKey, sharepoint.LockTTL)
		if errors.Is(err, cache.ErrLocked) {
			return ctx.JSON(http.StatusConflict, api.Fail("a sync is already running"))
		}
		if err != nil {
			return ctx.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}

		err = pool.Submit(func(jobCtx context.Context) {
			defer func() {
				if err := unlock(context.WithoutCancel(jobCtx)); err != nil {
					logger.Warn("release sync lock", zap.Error(err))
				}
			}()
			if _, err := syncer.Run(jobCtx); err != nil {
				logger.Error("background sharepoint sync", zap.Error(err))
			}
		})
		if err != nil {
			_ = unlock(context.WithoutCancel(reqCtx))
			return ctx.JSON(http.StatusServiceUnavailable, api.Fail(err.Error()))
		}
		return ctx.JSON(http.StatusAccepted, api.SyncResponse{Success: true, Message: "sync started"})
	}
}

// @Summary     Latest SharePoint sync
// @Tags        admin
// @Produce     json
// @Success     200 {object} api.SyncResponse
// @Failure     404 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/sharepoint/sync [get]
func LatestSyncHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		run, err := latestSyncRun(c.Request().Context(), db)
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, api.Fail("no sync has run yet"))
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}
		return c.JSON(http.StatusOK, api.SyncResponse{Success: true, Run: run})
	}
}
