package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"rtm-portal/internal/api"
	"rtm-portal/internal/database"
	"rtm-portal/internal/export"
	"rtm-portal/internal/model"
	"rtm-portal/internal/store"

	"github.com/labstack/echo/v4"
)

var (
	listAllRegistrations = store.ListAllRegistrations
	listAllBuildings     = store.ListAllBuildings
)

// collect walks every page of a data table.
func collect[T any](ctx context.Context, list func(context.Context, store.ListParams) (*store.Page[T], error)) ([]T, error) {
	var all []T
	p := store.ListParams{Page: 1, PageSize: store.MaxPageSize, Order: "asc"}
	for {
		page, err := list(ctx, p)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if len(page.Items) == 0 || len(all) >= page.Total {
			return all, nil
		}
		p.Page++
	}
}

func exportTable(ctx context.Context, db database.DB, name string) ([]byte, error) {
	switch name {
	case "registrations":
		rows, err := listAllRegistrations(ctx, db)
		if err != nil {
			return nil, err
		}
		return export.Registrations(rows)
	case "buildings":
		rows, err := listAllBuildings(ctx, db)
		if err != nil {
			return nil, err
		}
		return export.Buildings(rows)
	case "cases":
		rows, err := collect(ctx, func(ctx context.Context, p store.ListParams) (*store.Page[model.Case], error) {
			return listCases(ctx, db, p)
		})
		if err != nil {
			return nil, err
		}
		return export.Cases(rows)
	case "eligibility-checks":
		rows, err := collect(ctx, func(ctx context.Context, p store.ListParams) (*store.Page[model.EligibilityCheck], error) {
			return listEligibilityChecks(ctx, db, p)
		})
		if err != nil {
			return nil, err
		}
		return export.EligibilityChecks(rows)
	case "users":
		rows, err := collect(ctx, func(ctx context.Context, p store.ListParams) (*store.Page[model.User], error) {
			return listUsers(ctx, db, p)
		})
		if err != nil {
			return nil, err
		}
		return export.Users(rows)
	}
	return nil, errUnknownTable
}

var errUnknownTable = fmt.Errorf("unknown table, expected one of %v", export.Tables)

// ExportHandler downloads a whole admin table as an XLSX workbook.
// @Summary     Export a table
// @Tags        admin
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param       table path string true "registrations, buildings, cases, eligibility-checks or users"
// @Success     200 {file}   file
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/export/{table} [get]
func ExportHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := c.Param("table")
		data, err := exportTable(c.Request().Context(), db, name)
		if errors.Is(err, errUnknownTable) {
			return c.JSON(http.StatusNotFound, api.Fail(err.Error()))
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf("attachment; filename=%q", export.FileName(name)))
		return c.Blob(http.StatusOK, export.ContentType, data)
	}
}
