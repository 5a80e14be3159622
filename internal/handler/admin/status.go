package admin

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"rtm-portal/internal/api"
	"rtm-portal/internal/database"
	"rtm-portal/internal/model"
	"rtm-portal/internal/store"

	"github.com/labstack/echo/v4"
)

var registrationStatuses = []string{model.RegistrationPending, model.RegistrationVerified, model.RegistrationRejected}

var (
	updateRegistrationStatus = store.UpdateRegistrationStatus
	getRegistration          = store.GetRegistration
	getBuilding              = store.GetBuilding
	createCase               = store.CreateCase
	getCase                  = store.GetCase
	updateCaseStatus         = store.UpdateCaseStatus
)

func pathID(c echo.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	return id, err == nil && id > 0
}

func bindStatus(c echo.Context, allowed []string) (api.UpdateStatusRequest, error) {
	var req api.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return req, errors.New("invalid form data")
	}
	if err := c.Validate(&req); err != nil {
		return req, err
	}
	if !slices.Contains(allowed, req.Status) {
		return req, fmt.Errorf("status must be one of %v", allowed)
	}
	return req, nil
}

// UpdateRegistrationStatusHandler moves a registration through review.
// @Summary     Set registration status
// @Tags        admin
// @Accept      json,application/x-www-form-urlencoded
// @Produce     json
// @Param       id   path     int                     true "registration id"
// @Param       body body     api.UpdateStatusRequest true "status"
// @Success     200  {object} model.RegistrationRow
// @Failure     400  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/registrations/{id}/status [patch]
func UpdateRegistrationStatusHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := pathID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, api.Fail("invalid registration id"))
		}
		req, err := bindStatus(c, registrationStatuses)
		if err != nil {
			return c.JSON(http.StatusBadRequest, api.Fail(err.Error()))
		}

		ctx := c.Request().Context()
		if err := updateRegistrationStatus(ctx, db, id, req.Status); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return c.JSON(http.StatusNotFound, api.Fail("registration not found"))
			}
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}
		reg, err := getRegistration(ctx, db, id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}
		return c.JSON(http.StatusOK, reg)
	}
}

// CreateCaseHandler opens an RTM or enfranchisement case for a building.
// @Summary     Open a case
// @Tags        admin
// @Accept      json,application/x-www-form-urlencoded
// @Produce     json
// @Param       body body     api.CreateCaseRequest true "case"
// @Success     201  {object} model.Case
// @Failure     400  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/cases [post]
func CreateCaseHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.CreateCaseRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Fail("invalid form data"))
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Fail(err.Error()))
		}

		ctx := c.Request().Context()
		if _, err := getBuilding(ctx, db, req.BuildingID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return c.JSON(http.StatusNotFound, api.Fail("building not found"))
			}
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}

		cs := &model.Case{BuildingID: req.BuildingID, Kind: req.Kind, Notes: req.Notes}
		if err := createCase(ctx, db, cs); err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}
		return c.JSON(http.StatusCreated, cs)
	}
}

// @Summary     Set case status
// @Tags        admin
// @Accept      json,application/x-www-form-urlencoded
// @Produce     json
// @Param       id   path     int                     true "case id"
// @Param       body body     api.UpdateStatusRequest true "status and notes"
// @Success     200  {object} model.Case
// @Failure     400  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/cases/{id}/status [patch]
func UpdateCaseStatusHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := pathID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, api.Fail("invalid case id"))
		}
		req, err := bindStatus(c, model.CaseStatuses)
		if err != nil {
			return c.JSON(http.StatusBadRequest, api.Fail(err.Error()))
		}

		cs, err := updateCaseStatus(c.Request().Context(), db, id, req.Status, req.Notes)
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, api.Fail("case not found"))
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}
		return c.JSON(http.StatusOK, cs)
	}
}

// @Summary     Get a case
// @Tags        admin
// @Produce     json
// @Param       id  path     int true "case id"
// @Success     200 {object} model.Case
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /admin/cases/{id} [get]
func GetCaseHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := pathID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, api.Fail("invalid case id"))
		}
		cs, err := getCase(c.Request().Context(), db, id)
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, api.Fail("case not found"))
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}
		return c.JSON(http.StatusOK, cs)
	}
}
