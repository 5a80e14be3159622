package auth

import (
	"errors"
	"net/http"
	"time"

	"rtm-portal/internal/api"
	"rtm-portal/internal/database"
	"rtm-portal/internal/service"
	"rtm-portal/internal/store"

	"github.com/labstack/echo/v4"
)

var (
	getUserByEmail   = store.GetUserByEmail
	authenticateUser = service.AuthenticateUser
	issueAccessToken = service.IssueAccessToken
)

// LoginHandler exchanges email and password for an access token.
// @Summary     Log in
// @Description Verifies email and password and returns a bearer token
// @Tags        auth
// @Accept      json,application/x-www-form-urlencoded
// @Produce     json
// @Param       body body     api.LoginRequest true "credentials"
// @Success     200  {object} api.LoginResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     401  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Router      /auth/login [post]
func LoginHandler(db database.DB, ttl time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.LoginRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Fail("invalid form data"))
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Fail(err.Error()))
		}

		user, err := getUserByEmail(c.Request().Context(), db, req.Email)
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, api.Fail("invalid credentials"))
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail("failed to load user"))
		}
		if err := authenticateUser(c.Request().Context(), *user, req.Password); err != nil {
			return c.JSON(http.StatusUnauthorized, api.Fail("invalid credentials"))
		}

		token, err := issueAccessToken(*user, ttl)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail("failed to issue token"))
		}

		return c.JSON(http.StatusOK, api.LoginResponse{
			Success:     true,
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int(ttl.Seconds()),
			User:        api.NewUserResponse(*user),
		})
	}
}
