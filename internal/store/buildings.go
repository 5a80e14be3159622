package store

import (
	"context"

	"rtm-portal/internal/database"
	"rtm-portal/internal/model"

	"github.com/jackc/pgx/v5"
)

const buildingColumns = `id, address_line, normalized_address, postcode, city, total_flats, created_at, updated_at`

func scanBuilding(row pgx.Row, extra ...any) (*model.Building, error) {
	b := &model.Building{}
	dest := []any{
		&b.ID,
		&b.AddressLine,
		&b.NormalizedAddress,
		&b.Postcode,
		&b.City,
		&b.TotalFlats,
		&b.CreatedAt,
		&b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return b, nil
}

// UpsertBuilding inserts b or, when its id exists, keeps the stored address and
// raises total_flats if b reports more. b is refreshed from the stored row.
func UpsertBuilding(ctx context.Context, db database.Querier, b *model.Building) error {
	stored, err := scanBuilding(db.QueryRow(ctx,
		`INSERT INTO buildings (id, address_line, normalized_address, postcode, city, total_flats)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		     total_flats = GREATEST(buildings.total_flats, EXCLUDED.total_flats),
		     updated_at = now()
		 RETURNING `+buildingColumns,
		b.ID,
		b.AddressLine,
		b.NormalizedAddress,
		b.Postcode,
		b.City,
		b.TotalFlats,
	))
	if err != nil {
		return wrap("UpsertBuilding", err)
	}
	*b = *stored
	return nil
}

func GetBuilding(ctx context.Context, db database.Querier, id string) (*model.Building, error) {
	b, err := scanBuilding(db.QueryRow(ctx,
		`SELECT `+buildingColumns+` FROM buildings WHERE id = $1`, id,
	))
	if err != nil {
		return nil, wrap("GetBuilding", err)
	}
	return b, nil
}

// BuildingRow adds the registration count shown in the admin table.
type BuildingRow struct {
	model.Building
	Registrations int `json:"registrations"`
}

var buildingSortColumns = map[string]string{
	"address":       "b.address_line",
	"postcode":      "b.postcode",
	"registrations": "registrations",
	"created_at":    "b.created_at",
}

func ListBuildings(ctx context.Context, db database.Querier, p ListParams) (*Page[BuildingRow], error) {
	p = p.normalized()
	rows, err := db.Query(ctx,
		`SELECT b.id, b.address_line, b.normalized_address, b.postcode, b.city, b.total_flats,
		        b.created_at, b.updated_at,
		        (SELECT count(*) FROM registrations r WHERE r.building_id = b.id) AS registrations,
		        count(*) OVER ()
		 FROM buildings b
		 WHERE $1 = '' OR b.address_line ILIKE $2 OR b.postcode ILIKE $2
		 `+p.orderBy(buildingSortColumns, "b.created_at")+`
		 LIMIT $3 OFFSET $4`,
		p.Query, likePattern(p.Query), p.PageSize, p.offset(),
	)
	if err != nil {
		return nil, wrap("ListBuildings", err)
	}
	defer rows.Close()

	page := &Page[BuildingRow]{Items: []BuildingRow{}, Page: p.Page, PageSize: p.PageSize}
	for rows.Next() {
		var n int
		b, err := scanBuilding(rows, &n, &page.Total)
		if err != nil {
			return nil, wrap("ListBuildings", err)
		}
		page.Items = append(page.Items, BuildingRow{Building: *b, Registrations: n})
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("ListBuildings", err)
	}
	return page, nil
}

// ListAllBuildings returns every building that has at least one registration.
func ListAllBuildings(ctx context.Context, db database.Querier) ([]BuildingRow, error) {
	rows, err := db.Query(ctx,
		`SELECT b.id, b.address_line, b.normalized_address, b.postcode, b.city, b.total_flats,
		        b.created_at, b.updated_at, count(r.id)
		 FROM buildings b
		 JOIN registrations r ON r.building_id = b.id
		 GROUP BY b.id
		 ORDER BY b.created_at`,
	)
	if err != nil {
		return nil, wrap("ListAllBuildings", err)
	}
	defer rows.Close()

	out := []BuildingRow{}
	for rows.Next() {
		var n int
		b, err := scanBuilding(rows, &n)
		if err != nil {
			return nil, wrap("ListAllBuildings", err)
		}
		out = append(out, BuildingRow{Building: *b, Registrations: n})
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("ListAllBuildings", err)
	}
	return out, nil
}
