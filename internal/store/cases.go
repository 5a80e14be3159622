package store

import (
	"context"

	"rtm-portal/internal/database"
	"rtm-portal/internal/model"

	"github.com/jackc/pgx/v5"
)

const caseColumns = `id, building_id, kind, status, notes, created_at, updated_at`

func scanCase(row pgx.Row, extra ...any) (*model.Case, error) {
	c := &model.Case{}
	dest := []any{&c.ID, &c.BuildingID, &c.Kind, &c.Status, &c.Notes, &c.CreatedAt, &c.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return c, nil
}

func CreateCase(ctx context.Context, db database.Querier, c *model.Case) error {
	if c.Status == "" {
		c.Status = model.CaseOpen
	}
	row := db.QueryRow(ctx,
		`INSERT INTO cases (building_id, kind, status, notes)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		c.BuildingID, c.Kind, c.Status, c.Notes,
	)
	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return wrap("CreateCase", err)
	}
	return nil
}

func GetCase(ctx context.Context, db database.Querier, id int) (*model.Case, error) {
	c, err := scanCase(db.QueryRow(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = $1`, id))
	if err != nil {
		return nil, wrap("GetCase", err)
	}
	return c, nil
}

func ListCasesByBuilding(ctx context.Context, db database.Querier, buildingID string) ([]model.Case, error) {
	rows, err := db.Query(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE building_id = $1 ORDER BY created_at DESC`,
		buildingID,
	)
	if err != nil {
		return nil, wrap("ListCasesByBuilding", err)
	}
	defer rows.Close()

	out := []model.Case{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, wrap("ListCasesByBuilding", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("ListCasesByBuilding", err)
	}
	return out, nil
}

var caseSortColumns = map[string]string{
	"id":         "id",
	"kind":       "kind",
	"status":     "status",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

func ListCases(ctx context.Context, db database.Querier, p ListParams) (*Page[model.Case], error) {
	p = p.normalized()
	rows, err := db.Query(ctx,
		`SELECT `+caseColumns+`, count(*) OVER ()
		 FROM cases
		 WHERE $1 = '' OR kind ILIKE $2 OR status ILIKE $2 OR notes ILIKE $2 OR building_id ILIKE $2
		 `+p.orderBy(caseSortColumns, "created_at")+`
		 LIMIT $3 OFFSET $4`,
		p.Query, likePattern(p.Query), p.PageSize, p.offset(),
	)
	if err != nil {
		return nil, wrap("ListCases", err)
	}
	defer rows.Close()

	page := &Page[model.Case]{Items: []model.Case{}, Page: p.Page, PageSize: p.PageSize}
	for rows.Next() {
		c, err := scanCase(rows, &page.Total)
		if err != nil {
			return nil, wrap("ListCases", err)
		}
		page.Items = append(page.Items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("ListCases", err)
	}
	return page, nil
}

func UpdateCaseStatus(ctx context.Context, db database.Querier, id int, status, notes string) (*model.Case, error) {
	c, err := scanCase(db.QueryRow(ctx,
		`UPDATE cases SET status = $1, notes = CASE WHEN $2 = '' THEN notes ELSE $2 END, updated_at = now()
		 WHERE id = $3
		 RETURNING `+caseColumns,
		status, notes, id,
	))
	if err != nil {
		return nil, wrap("UpdateCaseStatus", err)
	}
	return c, nil
}
