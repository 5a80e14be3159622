package admin

import (
	"context"
	"net/http"

	"rtm-portal/internal/api"
	"rtm-portal/internal/database"
	"rtm-portal/internal/store"

	"github.com/labstack/echo/v4"
)

var (
	listRegistrations     = store.ListRegistrations
	listBuildings         = store.ListBuildings
	listCases             = store.ListCases
	listEligibilityChecks = store.ListEligibilityChecks
	listUsers             = store.ListUsers
)

// listParams reads the data table query string:
// ?page=2&page_size=50&q=high&sort=created_at&order=asc
func listParams(c echo.Context) (store.ListParams, error) {
	var p store.ListParams
	err := echo.QueryParamsBinder(c).
		Int("page", &p.Page).
		Int("page_size", &p.PageSize).
		String("q", &p.Query).
		String("sort", &p.Sort).
		String("order", &p.Order).
		BindError()
	return p, err
}

func table(list func(ctx context.Context, p store.ListParams) (any, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := listParams(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, api.Fail("invalid query parameters"))
		}
		page, err := list(c.Request().Context(), p)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}
		return c.JSON(http.StatusOK, page)
	}
}

// @Summary     Registrations table
// @Tags        admin
// @Produce     json
// @Param       page      query    int    false "page (1-based)"
// @Param       page_size query    int    false "rows per page"
// @Param       q         query    string false "search"
// @Param       sort      query    string false "sort column"
// @Param       order     query    string false "asc or desc"
// @Success     200 {object} store.Page[model.RegistrationRow]
// @Failure     400 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/registrations [get]
func ListRegistrationsHandler(db database.DB) echo.HandlerFunc {
	return table(func(ctx context.Context, p store.ListParams) (any, error) {
		return listRegistrations(ctx, db, p)
	})
}

// @Summary     Buildings table
// @Tags        admin
// @Produce     json
// @Success     200 {object} store.Page[store.BuildingRow]
// @Security    ApiKeyAuth
// @Router      /admin/buildings [get]
func ListBuildingsHandler(db database.DB) echo.HandlerFunc {
	return table(func(ctx context.Context, p store.ListParams) (any, error) {
		return listBuildings(ctx, db, p)
	})
}

// @Summary     Cases table
// @Tags        admin
// @Produce     json
// @Success     200 {object} store.Page[model.Case]
// @Security    ApiKeyAuth
// @Router      /admin/cases [get]
func ListCasesHandler(db database.DB) echo.HandlerFunc {
	return table(func(ctx context.Context, p store.ListParams) (any, error) {
		return listCases(ctx, db, p)
	})
}

// @Summary     Eligibility checks table
// @Tags        admin
// @Produce     json
// @Success     200 {object} store.Page[model.EligibilityCheck]
// @Security    ApiKeyAuth
// @Router      /admin/eligibility-checks [get]
func ListEligibilityChecksHandler(db database.DB) echo.HandlerFunc {
	return table(func(ctx context.Context, p store.ListParams) (any, error) {
		return listEligibilityChecks(ctx, db, p)
	})
}

// @Summary     Users table
// @Tags        admin
// @Produce     json
// @Success     200 {object} store.Page[model.User]
// @Security    ApiKeyAuth
// @Router      /admin/users [get]
func ListUsersHandler(db database.DB) echo.HandlerFunc {
	return table(func(ctx context.Context, p store.ListParams) (any, error) {
		return listUsers(ctx, db, p)
	})
}
