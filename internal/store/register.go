package store

import (
	"context"
	"fmt"

	"rtm-portal/internal/database"
	"rtm-portal/internal/model"
)

// Signup is everything a new leaseholder submits at the end of the
// questionnaire.
type Signup struct {
	User               model.User
	Building           model.Building
	Registration       model.Registration
	EligibilityCheckID string
}

// RegisterLeaseholder creates the user, upserts the building and records the
// registration in one transaction, then claims the eligibility check.
// On success s holds the stored rows.
func RegisterLeaseholder(ctx context.Context, db database.DB, s *Signup) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return wrap("RegisterLeaseholder", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = CreateUser(ctx, tx, &s.User); err != nil {
		return fmt.Errorf("RegisterLeaseholder: %w", err)
	}
	if err = UpsertBuilding(ctx, tx, &s.Building); err != nil {
		return fmt.Errorf("RegisterLeaseholder: %w", err)
	}

	s.Registration.UserID = s.User.ID
	s.Registration.BuildingID = s.Building.ID
	if s.EligibilityCheckID != "" {
		id := s.EligibilityCheckID
		s.Registration.EligibilityCheckID = &id
	}
	if err = CreateRegistration(ctx, tx, &s.Registration); err != nil {
		return fmt.Errorf("RegisterLeaseholder: %w", err)
	}
	if s.EligibilityCheckID != "" {
		if err = AttachEligibilityCheck(ctx, tx, s.EligibilityCheckID, s.User.ID); err != nil {
			return fmt.Errorf("RegisterLeaseholder: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return wrap("RegisterLeaseholder", err)
	}
	return nil
}
