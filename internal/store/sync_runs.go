package store

import (
	"context"

	"rtm-portal/internal/database"
	"rtm-portal/internal/model"
)

func CreateSyncRun(ctx context.Context, db database.Querier) (*model.SyncRun, error) {
	r := &model.SyncRun{Errors: []string{}}
	if err := db.QueryRow(ctx,
		`INSERT INTO sync_runs DEFAULT VALUES RETURNING id, started_at`,
	).Scan(&r.ID, &r.StartedAt); err != nil {
		return nil, wrap("CreateSyncRun", err)
	}
	return r, nil
}

func FinishSyncRun(ctx context.Context, db database.Querier, r *model.SyncRun) error {
	if r.Errors == nil {
		r.Errors = []string{}
	}
	if err := db.QueryRow(ctx,
		`UPDATE sync_runs SET
		     finished_at = now(),
		     registrations_uploaded = $1,
		     buildings_uploaded = $2,
		     errors = $3
		 WHERE id = $4
		 RETURNING finished_at`,
		r.RegistrationsUploaded, r.BuildingsUploaded, r.Errors, r.ID,
	).Scan(&r.FinishedAt); err != nil {
		return wrap("FinishSyncRun", err)
	}
	return nil
}

func LatestSyncRun(ctx context.Context, db database.Querier) (*model.SyncRun, error) {
	r := &model.SyncRun{}
	if err := db.QueryRow(ctx,
		`SELECT id, started_at, finished_at, registrations_uploaded, buildings_uploaded, errors
		 FROM sync_runs ORDER BY started_at DESC, id DESC LIMIT 1`,
	).Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.RegistrationsUploaded, &r.BuildingsUploaded, &r.Errors); err != nil {
		return nil, wrap("LatestSyncRun", err)
	}
	return r, nil
}
