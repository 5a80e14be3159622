package registrations

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"rtm-portal/internal/api"
	"rtm-portal/internal/database"
	"rtm-portal/internal/model"
	"rtm-portal/internal/service"
	"rtm-portal/internal/store"

	"github.com/labstack/echo/v4"
)

// interestQuestion is the questionnaire step whose answer seeds
// Registration.InterestedIn when the form leaves it blank.
const interestQuestion = "interest"

var (
	getEligibilityCheck = store.GetEligibilityCheck
	registerLeaseholder = store.RegisterLeaseholder
	hashPassword        = service.HashPassword
	issueAccessToken    = service.IssueAccessToken
)

func interest(req api.RegisterRequest, check *model.EligibilityCheck) string {
	if req.InterestedIn != "" {
		return req.InterestedIn
	}
	for _, a := range check.Answers {
		if a.QuestionID != interestQuestion {
			continue
		}
		switch a.Value {
		case model.InterestRTM, model.InterestEnfranchisement, model.InterestBoth:
			return a.Value
		}
	}
	return model.InterestRTM
}

// RegisterHandler turns a completed eligibility check into an account, a
// building and a registration, and logs the new user in.
// @Summary     Register a leaseholder
// @Description Requires a completed eligibility check with an eligible outcome
// @Tags        registrations
// @Accept      json,application/x-www-form-urlencoded
// @Produce     json
// @Param       body body     api.RegisterRequest true "registration"
// @Success     201  {object} api.RegisterResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Failure     409  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Router      /registrations [post]
func RegisterHandler(db database.DB, ttl time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.RegisterRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Fail("invalid form data"))
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Fail(err.Error()))
		}

		buildingID, err := service.BuildingID(req.AddressLine, req.Postcode)
		if err != nil {
			return c.JSON(http.StatusBadRequest, api.Fail(err.Error()))
		}

		ctx := c.Request().Context()
		check, err := getEligibilityCheck(ctx, db, req.CheckID)
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, api.Fail("eligibility check not found"))
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}
		switch {
		case check.Status != model.CheckCompleted:
			return c.JSON(http.StatusBadRequest, api.Fail("eligibility check not completed"))
		case !check.Eligible:
			return c.JSON(http.StatusBadRequest, api.Fail("building is not eligible"))
		case check.UserID != nil:
			return c.JSON(http.StatusConflict, api.Fail("eligibility check already used"))
		}

		hash, err := hashPassword(req.Password)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail("failed to hash password"))
		}

		signup := &store.Signup{
			User: model.User{
				Email:        strings.ToLower(strings.TrimSpace(req.Email)),
				Name:         strings.TrimSpace(req.Name),
				PasswordHash: hash,
			},
			Building: model.Building{
				ID:                buildingID,
				AddressLine:       strings.TrimSpace(req.AddressLine),
				NormalizedAddress: service.NormalizeAddress(req.AddressLine),
				Postcode:          service.FormatPostcode(req.Postcode),
				City:              strings.TrimSpace(req.City),
				TotalFlats:        req.TotalFlats,
			},
			Registration: model.Registration{
				FlatNumber:      strings.TrimSpace(req.FlatNumber),
				Phone:           strings.TrimSpace(req.Phone),
				LeaseholderType: req.LeaseholderType,
				InterestedIn:    interest(req, check),
				Status:          model.RegistrationPending,
			},
			EligibilityCheckID: check.ID,
		}

		err = registerLeaseholder(ctx, db, signup)
		switch {
		case errors.Is(err, store.ErrConflict):
			return c.JSON(http.StatusConflict, api.Fail("email already registered"))
		case errors.Is(err, store.ErrNotFound):
			return c.JSON(http.StatusConflict, api.Fail("eligibility check already used"))
		case err != nil:
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}

		token, err := issueAccessToken(signup.User, ttl)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail("failed to issue token"))
		}

		return c.JSON(http.StatusCreated, api.RegisterResponse{
			Success:      true,
			Token:        token,
			Registration: signup.Registration,
			Building:     signup.Building,
		})
	}
}
