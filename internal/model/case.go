package model

import "time"

const (
	CaseKindRTM             = "rtm"
	CaseKindEnfranchisement = "enfranchisement"
)

const (
	CaseOpen       = "open"
	CaseInProgress = "in_progress"
	CaseSubmitted  = "submitted"
	CaseCompleted  = "completed"
	CaseClosed     = "closed"
)

// CaseStatuses lists valid Case.Status values in lifecycle order.
var CaseStatuses = []string{CaseOpen, CaseInProgress, CaseSubmitted, CaseCompleted, CaseClosed}

type Case struct {
	ID         int       `db:"id" json:"id"`
	BuildingID string    `db:"building_id" json:"building_id"`
	Kind       string    `db:"kind" json:"kind"`
	Status     string    `db:"status" json:"status"`
	Notes      string    `db:"notes" json:"notes"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
