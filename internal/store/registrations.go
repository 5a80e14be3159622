package store

import (
	"context"

	"rtm-portal/internal/database"
	"rtm-portal/internal/model"

	"github.com/jackc/pgx/v5"
)

const registrationColumns = `r.id, r.user_id, r.building_id, r.eligibility_check_id, r.flat_number, r.phone,
       r.leaseholder_type, r.interested_in, r.status, r.sharepoint_item_id, r.created_at, r.updated_at`

const registrationRowColumns = registrationColumns + `, u.name, u.email, b.address_line, b.postcode`

const registrationJoins = `FROM registrations r
 JOIN users u ON u.id = r.user_id
 JOIN buildings b ON b.id = r.building_id`

func registrationDest(r *model.Registration) []any {
	return []any{
		&r.ID,
		&r.UserID,
		&r.BuildingID,
		&r.EligibilityCheckID,
		&r.FlatNumber,
		&r.Phone,
		&r.LeaseholderType,
		&r.InterestedIn,
		&r.Status,
		&r.SharePointItemID,
		&r.CreatedAt,
		&r.UpdatedAt,
	}
}

func scanRegistrationRow(row pgx.Row, extra ...any) (*model.RegistrationRow, error) {
	rr := &model.RegistrationRow{}
	dest := append(registrationDest(&rr.Registration), &rr.UserName, &rr.UserEmail, &rr.BuildingAddress, &rr.Postcode)
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return rr, nil
}

func CreateRegistration(ctx context.Context, db database.Querier, r *model.Registration) error {
	if r.Status == "" {
		r.Status = model.RegistrationPending
	}
	row := db.QueryRow(ctx,
		`INSERT INTO registrations
		     (user_id, building_id, eligibility_check_id, flat_number, phone, leaseholder_type, interested_in, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		r.UserID, r.BuildingID, r.EligibilityCheckID, r.FlatNumber, r.Phone, r.LeaseholderType, r.InterestedIn, r.Status,
	)
	if err := row.Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return wrap("CreateRegistration", err)
	}
	return nil
}

func GetRegistration(ctx context.Context, db database.Querier, id int) (*model.RegistrationRow, error) {
	rr, err := scanRegistrationRow(db.QueryRow(ctx,
		`SELECT `+registrationRowColumns+` `+registrationJoins+` WHERE r.id = $1`, id,
	))
	if err != nil {
		return nil, wrap("GetRegistration", err)
	}
	return rr, nil
}

func GetRegistrationByUserID(ctx context.Context, db database.Querier, userID int) (*model.RegistrationRow, error) {
	rr, err := scanRegistrationRow(db.QueryRow(ctx,
		`SELECT `+registrationRowColumns+` `+registrationJoins+` WHERE r.user_id = $1`, userID,
	))
	if err != nil {
		return nil, wrap("GetRegistrationByUserID", err)
	}
	return rr, nil
}

func CountRegistrationsByBuilding(ctx context.Context, db database.Querier, buildingID string) (int, error) {
	var n int
	if err := db.QueryRow(ctx,
		`SELECT count(*) FROM registrations WHERE building_id = $1`, buildingID,
	).Scan(&n); err != nil {
		return 0, wrap("CountRegistrationsByBuilding", err)
	}
	return n, nil
}

var registrationSortColumns = map[string]string{
	"id":         "r.id",
	"name":       "u.name",
	"email":      "u.email",
	"postcode":   "b.postcode",
	"status":     "r.status",
	"created_at": "r.created_at",
}

func ListRegistrations(ctx context.Context, db database.Querier, p ListParams) (*Page[model.RegistrationRow], error) {
	p = p.normalized()
	rows, err := db.Query(ctx,
		`SELECT `+registrationRowColumns+`, count(*) OVER ()
		 `+registrationJoins+`
		 WHERE $1 = '' OR u.name ILIKE $2 OR u.email ILIKE $2 OR b.address_line ILIKE $2
		       OR b.postcode ILIKE $2 OR r.status ILIKE $2
		 `+p.orderBy(registrationSortColumns, "r.created_at")+`
		 LIMIT $3 OFFSET $4`,
		p.Query, likePattern(p.Query), p.PageSize, p.offset(),
	)
	if err != nil {
		return nil, wrap("ListRegistrations", err)
	}
	defer rows.Close()

	page := &Page[model.RegistrationRow]{Items: []model.RegistrationRow{}, Page: p.Page, PageSize: p.PageSize}
	for rows.Next() {
		rr, err := scanRegistrationRow(rows, &page.Total)
		if err != nil {
			return nil, wrap("ListRegistrations", err)
		}
		page.Items = append(page.Items, *rr)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("ListRegistrations", err)
	}
	return page, nil
}

// ListAllRegistrations returns every registration, oldest first.
func ListAllRegistrations(ctx context.Context, db database.Querier) ([]model.RegistrationRow, error) {
	rows, err := db.Query(ctx,
		`SELECT `+registrationRowColumns+` `+registrationJoins+` ORDER BY r.created_at`,
	)
	if err != nil {
		return nil, wrap("ListAllRegistrations", err)
	}
	defer rows.Close()

	out := []model.RegistrationRow{}
	for rows.Next() {
		rr, err := scanRegistrationRow(rows)
		if err != nil {
			return nil, wrap("ListAllRegistrations", err)
		}
		out = append(out, *rr)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("ListAllRegistrations", err)
	}
	return out, nil
}

func MarkRegistrationSynced(ctx context.Context, db database.Querier, id int, itemID string) error {
	_, err := db.Exec(ctx,
		`UPDATE registrations SET sharepoint_item_id = $1, updated_at = now() WHERE id = $2`,
		itemID, id,
	)
	if err != nil {
		return wrap("MarkRegistrationSynced", err)
	}
	return nil
}

func UpdateRegistrationStatus(ctx context.Context, db database.Querier, id int, status string) error {
	tag, err := db.Exec(ctx,
		`UPDATE registrations SET status = $1, updated_at = now() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return wrap("UpdateRegistrationStatus", err)
	}
	if tag.RowsAffected() == 0 {
		return wrap("UpdateRegistrationStatus", pgx.ErrNoRows)
	}
	return nil
}
