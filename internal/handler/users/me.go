package users

import (
	"errors"
	"net/http"
	"strings"

	"rtm-portal/internal/api"
	"rtm-portal/internal/database"
	"rtm-portal/internal/middleware"
	"rtm-portal/internal/model"
	"rtm-portal/internal/service"
	"rtm-portal/internal/store"

	"github.com/labstack/echo/v4"
)

var (
	hashPassword       = service.HashPassword
	authenticateUser   = service.AuthenticateUser
	getUserByID        = store.GetUserByID
	updateUser         = store.UpdateUser
	updateUserPassword = store.UpdateUserPassword
	deleteUser         = store.DeleteUser
)

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, api.Fail("invalid or missing token"))
}

// @Summary     Get current user info
// @Tags        users
// @Produce     json
// @Success     200 {object} api.UserResponse
// @Failure     401 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /users/me [get]
func GetMyUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := middleware.Claims(c)
		if !ok {
			return unauthorized(c)
		}
		user, err := getUserByID(c.Request().Context(), db, claims.UserID)
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, api.Fail("user not found"))
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}
		return c.JSON(http.StatusOK, api.NewUserResponse(*user))
	}
}

// @Summary     Update current user info
// @Description Changes the name and email of the logged-in user. Email is stored lowercase.
// @Tags        users
// @Accept      json,application/x-www-form-urlencoded
// @Produce     json
// @Param       body body     api.UpdateUserRequest true "profile"
// @Success     204  "No Content"
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     409  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /users/me [put]
func UpdateMyUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.UpdateUserRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Fail("invalid form data"))
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Fail(err.Error()))
		}

		claims, ok := middleware.Claims(c)
		if !ok {
			return unauthorized(c)
		}

		err := updateUser(c.Request().Context(), db, &model.User{
			ID:    claims.UserID,
			Name:  strings.TrimSpace(req.Name),
			Email: strings.ToLower(strings.TrimSpace(req.Email)),
		})
		switch {
		case errors.Is(err, store.ErrConflict):
			return c.JSON(http.StatusConflict, api.Fail("email already registered"))
		case errors.Is(err, store.ErrNotFound):
			return c.JSON(http.StatusNotFound, api.Fail("user not found"))
		case err != nil:
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// @Summary     Update own password
// @Description Verifies the current password and replaces it
// @Tags        users
// @Accept      json,application/x-www-form-urlencoded
// @Produce     json
// @Param       body body     api.UpdateMyPasswordRequest true "passwords"
// @Success     200  {object} api.Result
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /users/me/password [patch]
func UpdateMyUserPasswordHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.UpdateMyPasswordRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Fail("invalid form data"))
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Fail(err.Error()))
		}

		claims, ok := middleware.Claims(c)
		if !ok {
			return unauthorized(c)
		}

		user, err := getUserByID(c.Request().Context(), db, claims.UserID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}

		if err := authenticateUser(c.Request().Context(), *user, req.OldPassword); err != nil {
			return c.JSON(http.StatusUnauthorized, api.Fail("invalid current password"))
		}

		hash, err := hashPassword(req.NewPassword)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail("failed to hash new password"))
		}

		if err := updateUserPassword(c.Request().Context(), db, claims.UserID, hash); err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}

		return c.JSON(http.StatusOK, api.OK("password updated"))
	}
}

// @Summary     Delete current user
// @Description Deletes the account and, through the foreign key, its registration
// @Tags        users
// @Produce     json
// @Success     204
// @Failure     401 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /users/me [delete]
func DeleteMyUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := middleware.Claims(c)
		if !ok {
			return unauthorized(c)
		}
		if err := deleteUser(c.Request().Context(), db, claims.UserID); err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}
		return c.NoContent(http.StatusNoContent)
	}
}
