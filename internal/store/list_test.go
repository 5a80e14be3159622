package store

import (
	"errors"
	"math"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestListParamsNormalized(t *testing.T) {
	p := ListParams{Page: 0, PageSize: 0, Query: "  smith ", Order: "asc"}.normalized()
	require.Equal(t, 1, p.Page)
	require.Equal(t, DefaultPageSize, p.PageSize)
	require.Equal(t, "smith", p.Query)
	require.Equal(t, "ASC", p.Order)

	p = ListParams{Page: 3, PageSize: 5000, Order: "sideways"}.normalized()
	require.Equal(t, MaxPageSize, p.PageSize)
	require.Equal(t, "DESC", p.Order)
	require.Equal(t, 2*MaxPageSize, p.offset())

	p = ListParams{Page: math.MaxInt, PageSize: MaxPageSize}.normalized()
	require.Equal(t, MaxPage, p.Page)
	require.Positive(t, p.offset())
	require.LessOrEqual(t, p.offset(), math.MaxInt32)
}

func TestOrderByWhitelist(t *testing.T) {
	cols := map[string]string{"name": "u.name"}

	p := ListParams{Sort: "name", Order: "ASC"}
	require.Equal(t, "ORDER BY u.name ASC", p.orderBy(cols, "r.created_at"))

	p = ListParams{Sort: "name; DROP TABLE users", Order: "DESC"}
	require.Equal(t, "ORDER BY r.created_at DESC", p.orderBy(cols, "r.created_at"))
}

func TestLikePatternEscapes(t *testing.T) {
	require.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
	require.Equal(t, "%%", likePattern(""))
}

func TestWrap(t *testing.T) {
	err := wrap("GetThing", pgx.ErrNoRows)
	require.ErrorIs(t, err, ErrNotFound)
	require.EqualError(t, err, "GetThing: not found")

	err = wrap("CreateThing", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	require.ErrorIs(t, err, ErrConflict)
	require.Contains(t, err.Error(), "users_email_key")

	boom := errors.New("boom")
	err = wrap("Other", boom)
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrNotFound)
}
