package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"rtm-portal/internal/api"
	"rtm-portal/internal/database"
	"rtm-portal/internal/model"
	"rtm-portal/internal/service"
	"rtm-portal/internal/store"

	"github.com/labstack/echo/v4"
)

// SetupSecretHeader carries the shared secret for first-admin creation.
const SetupSecretHeader = "X-Setup-Secret"

var (
	createFirstAdmin = store.CreateFirstAdmin
	hashPassword     = service.HashPassword
)

// SetupAdminHandler creates the first administrator. It only works while no
// admin exists and the caller knows the setup secret.
// @Summary     Create the first admin
// @Description One-time bootstrap guarded by the X-Setup-Secret header
// @Tags        auth
// @Accept      json,application/x-www-form-urlencoded
// @Produce     json
// @Param       X-Setup-Secret header   string                true "setup secret"
// @Param       body           body     api.SetupAdminRequest true "admin account"
// @Success     201            {object} api.UserResponse
// @Failure     400            {object} api.ErrorResponse
// @Failure     403            {object} api.ErrorResponse
// @Failure     409            {object} api.ErrorResponse
// @Failure     500            {object} api.ErrorResponse
// @Router      /setup/admin [post]
func SetupAdminHandler(db database.DB, secret string) echo.HandlerFunc {
	return func(c echo.Context) error {
		given := c.Request().Header.Get(SetupSecretHeader)
		if secret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
			return c.JSON(http.StatusForbidden, api.Fail("invalid setup secret"))
		}

		var req api.SetupAdminRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Fail("invalid form data"))
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Fail(err.Error()))
		}

		hash, err := hashPassword(req.Password)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail("failed to hash password"))
		}
		user, err := createFirstAdmin(c.Request().Context(), db, &model.User{
			Name:         strings.TrimSpace(req.Name),
			Email:        strings.ToLower(strings.TrimSpace(req.Email)),
			PasswordHash: hash,
			IsAdmin:      true,
		})
		if errors.Is(err, store.ErrAdminExists) {
			return c.JSON(http.StatusConflict, api.Fail("an admin already exists"))
		}
		if errors.Is(err, store.ErrConflict) {
			return c.JSON(http.StatusConflict, api.Fail("email already registered"))
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail("failed to create admin"))
		}
		return c.JSON(http.StatusCreated, api.NewUserResponse(*user))
	}
}
