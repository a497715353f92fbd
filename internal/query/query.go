// Package query turns list filters into scoped, sorted, paginated gorm queries.
//
// Every sortable field is looked up in a per-entity allow-list; unknown fields
// fall back to the entity default instead of failing.
package query

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	ClientsPerPage = 10
	DefaultPerPage = 15
)

// Page is one page of results plus pagination metadata.
type Page[T any] struct {
	Data     []T   `json:"data"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	LastPage int   `json:"last_page"`
}

// Sort is the requested sort_field / sort_order pair.
type Sort struct {
	Field string
	Order string
}

// DateRange bounds created_at by whole days; both ends are inclusive.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

func (r DateRange) apply(q *gorm.DB, column string) *gorm.DB {
	if r.From != nil {
		q = q.Where(column+" >= ?", *r.From)
	}
	if r.To != nil {
		q = q.Where(column+" < ?", r.To.AddDate(0, 0, 1))
	}
	return q
}

// sortSpec is an entity's allow-list of sortable fields.
type sortSpec struct {
	columns      map[string]string
	joins        map[string]string
	defaultOrder string
	table        string
}

// order resolves the ORDER BY clause and the join it needs, if any.
func (s sortSpec) order(req Sort) (string, string) {
	key := strings.ToLower(strings.TrimSpace(req.Field))
	expr, ok := s.columns[key]
	if !ok {
		return s.defaultOrder, ""
	}
	dir := "DESC"
	if strings.EqualFold(strings.TrimSpace(req.Order), "asc") {
		dir = "ASC"
	}
	return expr + " " + dir + ", " + s.table + ".id " + dir, s.joins[key]
}

func (s sortSpec) apply(q *gorm.DB, req Sort) *gorm.DB {
	order, join := s.order(req)
	if join != "" {
		q = q.Joins(join).Select(s.table + ".*")
	}
	return q.Order(order)
}

// like builds a lowercase substring pattern; the column side is LOWER()ed so
// the match is case-insensitive on both postgres and sqlite.
func like(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// anyLike ORs a LIKE over columns.
func anyLike(q *gorm.DB, term string, columns ...string) *gorm.DB {
	parts := make([]string, len(columns))
	args := make([]any, len(columns))
	p := like(term)
	for i, c := range columns {
		parts[i] = "LOWER(" + c + ") LIKE ?"
		args[i] = p
	}
	return q.Where("("+strings.Join(parts, " OR ")+")", args...)
}

// clientMatch restricts rows to those whose client name, surname or company match term.
func clientMatch(q *gorm.DB, column, term string) *gorm.DB {
	p := like(term)
	return q.Where(column+" IN (SELECT id FROM clients WHERE LOWER(name) LIKE ? OR LOWER(surname) LIKE ? OR LOWER(company) LIKE ?)", p, p, p)
}

func clientJoin(table string) string {
	return "LEFT JOIN clients ON clients.id = " + table + ".client_id"
}

// paginate counts base, then loads the requested page with the allowed sort applied.
func paginate[T any](base *gorm.DB, spec sortSpec, req Sort, page, perPage int, preload ...string) (Page[T], error) {
	if page < 1 {
		page = 1
	}
	out := Page[T]{Page: page, PerPage: perPage, Data: []T{}}
	if err := base.Session(&gorm.Session{}).Count(&out.Total).Error; err != nil {
		return out, err
	}
	out.LastPage = int((out.Total + int64(perPage) - 1) / int64(perPage))
	if out.LastPage < 1 {
		out.LastPage = 1
	}
	q := spec.apply(base.Session(&gorm.Session{}), req)
	for _, p := range preload {
		q = q.Preload(p)
	}
	if err := q.Offset((page - 1) * perPage).Limit(perPage).Find(&out.Data).Error; err != nil {
		return out, err
	}
	return out, nil
}
