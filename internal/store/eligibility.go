package store

import (
	"context"

	"rtm-portal/internal/database"
	"rtm-portal/internal/model"

	"github.com/jackc/pgx/v5"
)

const checkColumns = `id, user_id, flow_id, current_question, answers, outcome, eligible, status, created_at, updated_at`

func scanCheck(row pgx.Row, extra ...any) (*model.EligibilityCheck, error) {
	c := &model.EligibilityCheck{}
	dest := []any{
		&c.ID,
		&c.UserID,
		&c.FlowID,
		&c.CurrentQuestion,
		&c.Answers,
		&c.Outcome,
		&c.Eligible,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if c.Answers == nil {
		c.Answers = []model.Answer{}
	}
	return c, nil
}

func CreateEligibilityCheck(ctx context.Context, db database.Querier, c *model.EligibilityCheck) error {
	if c.Answers == nil {
		c.Answers = []model.Answer{}
	}
	row := db.QueryRow(ctx,
		`INSERT INTO eligibility_checks (id, user_id, flow_id, current_question, answers, outcome, eligible, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		c.ID, c.UserID, c.FlowID, c.CurrentQuestion, c.Answers, c.Outcome, c.Eligible, c.Status,
	)
	if err := row.Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return wrap("CreateEligibilityCheck", err)
	}
	return nil
}

func GetEligibilityCheck(ctx context.Context, db database.Querier, id string) (*model.EligibilityCheck, error) {
	c, err := scanCheck(db.QueryRow(ctx,
		`SELECT `+checkColumns+` FROM eligibility_checks WHERE id = $1`, id,
	))
	if err != nil {
		return nil, wrap("GetEligibilityCheck", err)
	}
	return c, nil
}

// UpdateEligibilityCheck persists the questionnaire position, answers and outcome.
func UpdateEligibilityCheck(ctx context.Context, db database.Querier, c *model.EligibilityCheck) error {
	row := db.QueryRow(ctx,
		`UPDATE eligibility_checks SET
		     current_question = $1,
		     answers = $2,
		     outcome = $3,
		     eligible = $4,
		     status = $5,
		     updated_at = now()
		 WHERE id = $6
		 RETURNING updated_at`,
		c.CurrentQuestion, c.Answers, c.Outcome, c.Eligible, c.Status, c.ID,
	)
	if err := row.Scan(&c.UpdatedAt); err != nil {
		return wrap("UpdateEligibilityCheck", err)
	}
	return nil
}

// AttachEligibilityCheck claims an anonymous check for userID.
func AttachEligibilityCheck(ctx context.Context, db database.Querier, checkID string, userID int) error {
	tag, err := db.Exec(ctx,
		`UPDATE eligibility_checks SET user_id = $1, updated_at = now()
		 WHERE id = $2 AND (user_id IS NULL OR user_id = $1)`,
		userID, checkID,
	)
	if err != nil {
		return wrap("AttachEligibilityCheck", err)
	}
	if tag.RowsAffected() == 0 {
		return wrap("AttachEligibilityCheck", pgx.ErrNoRows)
	}
	return nil
}

func ListEligibilityChecksByUser(ctx context.Context, db database.Querier, userID int) ([]model.EligibilityCheck, error) {
	rows, err := db.Query(ctx,
		`SELECT `+checkColumns+` FROM eligibility_checks WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, wrap("ListEligibilityChecksByUser", err)
	}
	defer rows.Close()

	out := []model.EligibilityCheck{}
	for rows.Next() {
		c, err := scanCheck(rows)
		if err != nil {
			return nil, wrap("ListEligibilityChecksByUser", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("ListEligibilityChecksByUser", err)
	}
	return out, nil
}

var checkSortColumns = map[string]string{
	"created_at": "created_at",
	"status":     "status",
	"outcome":    "outcome",
}

func ListEligibilityChecks(ctx context.Context, db database.Querier, p ListParams) (*Page[model.EligibilityCheck], error) {
	p = p.normalized()
	rows, err := db.Query(ctx,
		`SELECT `+checkColumns+`, count(*) OVER ()
		 FROM eligibility_checks
		 WHERE $1 = '' OR outcome ILIKE $2 OR status ILIKE $2
		 `+p.orderBy(checkSortColumns, "created_at")+`
		 LIMIT $3 OFFSET $4`,
		p.Query, likePattern(p.Query), p.PageSize, p.offset(),
	)
	if err != nil {
		return nil, wrap("ListEligibilityChecks", err)
	}
	defer rows.Close()

	page := &Page[model.EligibilityCheck]{Items: []model.EligibilityCheck{}, Page: p.Page, PageSize: p.PageSize}
	for rows.Next() {
		c, err := scanCheck(rows, &page.Total)
		if err != nil {
			return nil, wrap("ListEligibilityChecks", err)
		}
		page.Items = append(page.Items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("ListEligibilityChecks", err)
	}
	return page, nil
}
