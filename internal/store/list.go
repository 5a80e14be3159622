package store

import (
	"fmt"
	"math"
	"strings"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 200
	// MaxPage keeps OFFSET inside a Postgres integer for any page size.
	MaxPage = math.MaxInt32 / MaxPageSize
)

// ListParams drives the admin data tables.
type ListParams struct {
	Page     int
	PageSize int
	Query    string
	Sort     string
	Order    string
}

// Page is one page of a data table.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func (p ListParams) normalized() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	p.Query = strings.TrimSpace(p.Query)
	if strings.EqualFold(p.Order, "asc") {
		p.Order = "ASC"
	} else {
		p.Order = "DESC"
	}
	return p
}

func (p ListParams) offset() int {
	return (p.Page - 1) * p.PageSize
}

// orderBy maps the requested sort key onto a whitelisted column, falling back
// to def.
func (p ListParams) orderBy(columns map[string]string, def string) string {
	col, ok := columns[p.Sort]
	if !ok {
		col = def
	}
	return fmt.Sprintf("ORDER BY %s %s", col, p.Order)
}

func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}
