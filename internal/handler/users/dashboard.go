package users

import (
	"errors"
	"net/http"

	"rtm-portal/internal/api"
	"rtm-portal/internal/database"
	"rtm-portal/internal/middleware"
	"rtm-portal/internal/model"
	"rtm-portal/internal/store"

	"github.com/labstack/echo/v4"
)

var (
	getRegistrationByUserID      = store.GetRegistrationByUserID
	getBuilding                  = store.GetBuilding
	countRegistrationsByBuilding = store.CountRegistrationsByBuilding
	listCasesByBuilding          = store.ListCasesByBuilding
	listEligibilityChecksByUser  = store.ListEligibilityChecksByUser
)

// DashboardHandler gathers what a leaseholder sees after logging in. A user
// without a registration gets an empty registration and building.
// @Summary     User dashboard
// @Tags        users
// @Produce     json
// @Success     200 {object} api.DashboardResponse
// @Failure     401 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /dashboard [get]
func DashboardHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := middleware.Claims(c)
		if !ok {
			return unauthorized(c)
		}
		ctx := c.Request().Context()

		user, err := getUserByID(ctx, db, claims.UserID)
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, api.Fail("user not found"))
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}

		resp := api.DashboardResponse{
			Success: true,
			User:    api.NewUserResponse(*user),
			Cases:   []model.Case{},
		}

		resp.EligibilityChecks, err = listEligibilityChecksByUser(ctx, db, user.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}

		reg, err := getRegistrationByUserID(ctx, db, user.ID)
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusOK, resp)
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}
		resp.Registration = reg

		if resp.Building, err = getBuilding(ctx, db, reg.BuildingID); err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}
		n, err := countRegistrationsByBuilding(ctx, db, reg.BuildingID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}
		resp.Neighbours = max(n-1, 0)
		if resp.Cases, err = listCasesByBuilding(ctx, db, reg.BuildingID); err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}
		return c.JSON(http.StatusOK, resp)
	}
}
