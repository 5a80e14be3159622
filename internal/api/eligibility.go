package api

import (
	"rtm-portal/internal/model"
	"rtm-portal/internal/questionnaire"
)

// swagger:model api.AnswerRequest
type AnswerRequest struct {
	QuestionID string `json:"question_id" form:"question_id" validate:"required" example:"total_flats"`
	Answer     string `json:"answer" form:"answer" example:"12"`
}

// CheckResponse describes where an eligibility check stands: either the
// next question or, once finished, the outcome.
// swagger:model api.CheckResponse
type CheckResponse struct {
	Success  bool                    `json:"success" example:"true"`
	CheckID  string                  `json:"check_id" example:"5b0c1f7e-8d4e-4c39-9a57-0f4f3c1f2a11"`
	Status   string                  `json:"status" example:"in_progress"`
	Question *questionnaire.Question `json:"question,omitempty"`
	Outcome  *questionnaire.Outcome  `json:"outcome,omitempty"`
	Answers  []model.Answer          `json:"answers"`
}
