package model

import "time"

const (
	CheckInProgress = "in_progress"
	CheckCompleted  = "completed"
)

// Answer is one step of a questionnaire walk.
type Answer struct {
	QuestionID string `json:"question_id"`
	Value      string `json:"value"`
}

type EligibilityCheck struct {
	ID              string    `db:"id" json:"id"`
	UserID          *int      `db:"user_id" json:"user_id,omitempty"`
	FlowID          string    `db:"flow_id" json:"flow_id"`
	CurrentQuestion string    `db:"current_question" json:"current_question"`
	Answers         []Answer  `db:"answers" json:"answers"`
	Outcome         string    `db:"outcome" json:"outcome"`
	Eligible        bool      `db:"eligible" json:"eligible"`
	Status          string    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
