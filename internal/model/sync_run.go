package model

import "time"

type SyncRun struct {
	ID                    int        `db:"id" json:"id"`
	StartedAt             time.Time  `db:"started_at" json:"started_at"`
	FinishedAt            *time.Time `db:"finished_at" json:"finished_at,omitempty"`
	RegistrationsUploaded int        `db:"registrations_uploaded" json:"registrations_uploaded"`
	BuildingsUploaded     int        `db:"buildings_uploaded" json:"buildings_uploaded"`
	Errors                []string   `db:"errors" json:"errors"`
}
