package store

import (
	"context"

	"rtm-portal/internal/database"
	"rtm-portal/internal/model"
)

func GetStats(ctx context.Context, db database.Querier) (*model.Stats, error) {
	s := &model.Stats{}
	err := db.QueryRow(ctx, `
        SELECT
            (SELECT count(*) FROM users),
            (SELECT count(*) FROM registrations),
            (SELECT count(*) FROM registrations WHERE status = 'pending'),
            (SELECT count(*) FROM buildings),
            (SELECT count(*) FROM cases WHERE status NOT IN ('completed', 'closed')),
            (SELECT count(*) FROM eligibility_checks),
            (SELECT count(*) FROM eligibility_checks WHERE eligible),
            (SELECT count(*) FROM registrations WHERE sharepoint_item_id IS NULL)
    `).Scan(
		&s.Users,
		&s.Registrations,
		&s.PendingRegs,
		&s.Buildings,
		&s.OpenCases,
		&s.EligibilityChecks,
		&s.EligibleChecks,
		&s.UnsyncedRegs,
	)
	if err != nil {
		return nil, wrap("GetStats", err)
	}
	return s, nil
}
