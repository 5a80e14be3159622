package eligibility

import (
	"errors"
	"net/http"

	"rtm-portal/internal/api"
	"rtm-portal/internal/database"
	"rtm-portal/internal/model"
	"rtm-portal/internal/questionnaire"
	"rtm-portal/internal/store"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var (
	newID                  = uuid.NewString
	createEligibilityCheck = store.CreateEligibilityCheck
	getEligibilityCheck    = store.GetEligibilityCheck
	updateEligibilityCheck = store.UpdateEligibilityCheck
)

func state(check *model.EligibilityCheck) questionnaire.State {
	return questionnaire.State{
		Current: check.CurrentQuestion,
		Answers: check.Answers,
		Outcome: check.Outcome,
	}
}

func apply(flow *questionnaire.Flow, check *model.EligibilityCheck, s questionnaire.State) {
	check.CurrentQuestion = s.Current
	check.Answers = s.Answers
	check.Outcome = s.Outcome
	check.Eligible = false
	check.Status = model.CheckInProgress
	if s.Done() {
		check.Status = model.CheckCompleted
		if o, ok := flow.Outcome(s.Outcome); ok {
			check.Eligible = o.Eligible
		}
	}
}

func response(flow *questionnaire.Flow, check *model.EligibilityCheck) api.CheckResponse {
	resp := api.CheckResponse{
		Success: true,
		CheckID: check.ID,
		Status:  check.Status,
		Answers: check.Answers,
	}
	if q, ok := flow.Question(check.CurrentQuestion); ok && check.Status == model.CheckInProgress {
		resp.Question = q
	}
	if o, ok := flow.Outcome(check.Outcome); ok {
		resp.Outcome = o
	}
	return resp
}

// load fetches the check named in the path and makes sure it was started on
// the flow being served.
func load(c echo.Context, db database.DB, flow *questionnaire.Flow) (*model.EligibilityCheck, error) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return nil, c.JSON(http.StatusBadRequest, api.Fail("invalid check id"))
	}
	check, err := getEligibilityCheck(c.Request().Context(), db, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, c.JSON(http.StatusNotFound, api.Fail("eligibility check not found"))
	}
	if err != nil {
		return nil, c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
	}
	if check.FlowID != flow.ID {
		return nil, c.JSON(http.StatusConflict, api.Fail("questionnaire has changed, please start again"))
	}
	return check, nil
}

// FlowHandler serves the questionnaire definition so the client can render it.
// @Summary     Eligibility questionnaire
// @Tags        eligibility
// @Produce     json
// @Success     200 {object} questionnaire.Flow
// @Router      /eligibility/flow [get]
func FlowHandler(flow *questionnaire.Flow) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, flow)
	}
}

// StartHandler opens a new anonymous eligibility check.
// @Summary     Start an eligibility check
// @Tags        eligibility
// @Produce     json
// @Success     201 {object} api.CheckResponse
// @Failure     500 {object} api.ErrorResponse
// @Router      /eligibility [post]
func StartHandler(db database.DB, flow *questionnaire.Flow) echo.HandlerFunc {
	return func(c echo.Context) error {
		check := &model.EligibilityCheck{ID: newID(), FlowID: flow.ID}
		apply(flow, check, flow.Start())
		if err := createEligibilityCheck(c.Request().Context(), db, check); err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}
		return c.JSON(http.StatusCreated, response(flow, check))
	}
}

// @Summary     Get an eligibility check
// @Tags        eligibility
// @Produce     json
// @Param       id  path     string true "check id"
// @Success     200 {object} api.CheckResponse
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     409 {object} api.ErrorResponse
// @Router      /eligibility/{id} [get]
func GetHandler(db database.DB, flow *questionnaire.Flow) echo.HandlerFunc {
	return func(c echo.Context) error {
		check, err := load(c, db, flow)
		if check == nil {
			return err
		}
		return c.JSON(http.StatusOK, response(flow, check))
	}
}

// AnswerHandler records the answer to the current question.
// @Summary     Answer a question
// @Tags        eligibility
// @Accept      json,application/x-www-form-urlencoded
// @Produce     json
// @Param       id   path     string            true "check id"
// @Param       body body     api.AnswerRequest true "answer"
// @Success     200  {object} api.CheckResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     404  {object} api.ErrorResponse
// @Failure     409  {object} api.ErrorResponse
// @Router      /eligibility/{id}/answers [post]
func AnswerHandler(db database.DB, flow *questionnaire.Flow) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.AnswerRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Fail("invalid form data"))
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.Fail(err.Error()))
		}

		check, err := load(c, db, flow)
		if check == nil {
			return err
		}

		next, err := flow.Answer(state(check), req.QuestionID, req.Answer)
		switch {
		case errors.Is(err, questionnaire.ErrFinished), errors.Is(err, questionnaire.ErrNotCurrent):
			return c.JSON(http.StatusConflict, api.Fail(err.Error()))
		case err != nil:
			return c.JSON(http.StatusBadRequest, api.Fail(err.Error()))
		}

		apply(flow, check, next)
		if err := updateEligibilityCheck(c.Request().Context(), db, check); err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}
		return c.JSON(http.StatusOK, response(flow, check))
	}
}

// BackHandler reopens the previously answered question.
// @Summary     Go back one question
// @Tags        eligibility
// @Produce     json
// @Param       id  path     string true "check id"
// @Success     200 {object} api.CheckResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     409 {object} api.ErrorResponse
// @Router      /eligibility/{id}/back [post]
func BackHandler(db database.DB, flow *questionnaire.Flow) echo.HandlerFunc {
	return func(c echo.Context) error {
		check, err := load(c, db, flow)
		if check == nil {
			return err
		}
		if check.UserID != nil {
			return c.JSON(http.StatusConflict, api.Fail("check already used for a registration"))
		}

		prev, err := flow.Back(state(check))
		if err != nil {
			return c.JSON(http.StatusConflict, api.Fail(err.Error()))
		}

		apply(flow, check, prev)
		if err := updateEligibilityCheck(c.Request().Context(), db, check); err != nil {
			return c.JSON(http.StatusInternalServerError, api.Fail(err.Error()))
		}
		return c.JSON(http.StatusOK, response(flow, check))
	}
}
