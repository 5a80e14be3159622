package store

import (
	"context"
	"fmt"

	"rtm-portal/internal/database"
	"rtm-portal/internal/model"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, name, password_hash, is_admin, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.IsAdmin,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return u, nil
}

func GetUserByID(ctx context.Context, db database.Querier, userID int) (*model.User, error) {
	u, err := scanUser(db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		userID,
	))
	if err != nil {
		return nil, wrap("GetUserByID", err)
	}
	return u, nil
}

func GetUserByEmail(ctx context.Context, db database.Querier, email string) (*model.User, error) {
	u, err := scanUser(db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = lower($1)`,
		email,
	))
	if err != nil {
		return nil, wrap("GetUserByEmail", err)
	}
	return u, nil
}

func CreateUser(ctx context.Context, db database.Querier, u *model.User) (*model.User, error) {
	row := db.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash, is_admin)
		 VALUES (lower($1), $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		u.Email,
		u.Name,
		u.PasswordHash,
		u.IsAdmin,
	)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, wrap("CreateUser", err)
	}
	return u, nil
}

func UpdateUser(ctx context.Context, db database.Querier, u *model.User) error {
	tag, err := db.Exec(ctx,
		`UPDATE users SET name = $1, email = lower($2), updated_at = now()
		 WHERE id = $3`,
		u.Name,
		u.Email,
		u.ID,
	)
	if err != nil {
		return wrap("UpdateUser", err)
	}
	if tag.RowsAffected() == 0 {
		return wrap("UpdateUser", pgx.ErrNoRows)
	}
	return nil
}

func UpdateUserPassword(ctx context.Context, db database.Querier, userID int, passwordHash string) error {
	_, err := db.Exec(ctx,
		`UPDATE users
		 SET password_hash = $1, updated_at = now()
		 WHERE id = $2`,
		passwordHash,
		userID,
	)
	if err != nil {
		return wrap("UpdateUserPassword", err)
	}
	return nil
}

func DeleteUser(ctx context.Context, db database.Querier, id int) error {
	_, err := db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return wrap("DeleteUser", err)
	}
	return nil
}

// CountAdmins is used by the one-time setup endpoint.
func CountAdmins(ctx context.Context, db database.Querier) (int, error) {
	var n int
	if err := db.QueryRow(ctx, `SELECT count(*) FROM users WHERE is_admin`).Scan(&n); err != nil {
		return 0, wrap("CountAdmins", err)
	}
	return n, nil
}

// adminSetupLockID keys the transaction-scoped advisory lock that serialises
// first-admin creation.
const adminSetupLockID = 0x72746d01

// CreateFirstAdmin stores u as an admin unless one already exists. Concurrent
// callers queue on an advisory lock, so at most one of them succeeds.
func CreateFirstAdmin(ctx context.Context, db database.DB, u *model.User) (_ *model.User, err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, wrap("CreateFirstAdmin", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, adminSetupLockID); err != nil {
		return nil, wrap("CreateFirstAdmin", err)
	}
	n, err := CountAdmins(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("CreateFirstAdmin: %w", err)
	}
	if n > 0 {
		err = ErrAdminExists
		return nil, err
	}
	u.IsAdmin = true
	if _, err = CreateUser(ctx, tx, u); err != nil {
		return nil, fmt.Errorf("CreateFirstAdmin: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, wrap("CreateFirstAdmin", err)
	}
	return u, nil
}

var userSortColumns = map[string]string{
	"id":         "id",
	"email":      "email",
	"name":       "name",
	"created_at": "created_at",
}

func ListUsers(ctx context.Context, db database.Querier, p ListParams) (*Page[model.User], error) {
	p = p.normalized()
	rows, err := db.Query(ctx,
		`SELECT `+userColumns+`, count(*) OVER ()
		 FROM users
		 WHERE $1 = '' OR email ILIKE $2 OR name ILIKE $2
		 `+p.orderBy(userSortColumns, "created_at")+`
		 LIMIT $3 OFFSET $4`,
		p.Query, likePattern(p.Query), p.PageSize, p.offset(),
	)
	if err != nil {
		return nil, wrap("ListUsers", err)
	}
	defer rows.Close()

	page := &Page[model.User]{Items: []model.User{}, Page: p.Page, PageSize: p.PageSize}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt, &page.Total,
		); err != nil {
			return nil, wrap("ListUsers", err)
		}
		page.Items = append(page.Items, u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("ListUsers", err)
	}
	return page, nil
}
