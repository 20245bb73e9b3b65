package postgres

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/salesdesk/crm-api/internal/core/domain"
)

// Predicate is one independent, composable filter fragment. Fragments are
// order-insensitive; applying N of them narrows the query with logical AND.
type Predicate func(*gorm.DB) *gorm.DB

func applyPredicates(q *gorm.DB, preds ...Predicate) *gorm.DB {
	for _, p := range preds {
		q = p(q)
	}
	return q
}

// searchAny matches term as a case-insensitive substring against any of the
// given columns. The OR group stays inside one WHERE clause so it ANDs
// cleanly with other predicates.
func searchAny(columns []string, term string) Predicate {
	return func(q *gorm.DB) *gorm.DB {
		pattern := "%" + term + "%"
		clauses := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			clauses[i] = col + " ILIKE ?"
			args[i] = pattern
		}
		return q.Where(strings.Join(clauses, " OR "), args...)
	}
}

func whereNull(column string) Predicate {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where(column + " IS NULL")
	}
}

func atLeast(column string, v int64) Predicate {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where(column+" >= ?", v)
	}
}

func atMost(column string, v int64) Predicate {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where(column+" <= ?", v)
	}
}

func before(column string, t time.Time) Predicate {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where(column+" <= ?", t)
	}
}

func after(column string, t time.Time) Predicate {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where(column+" >= ?", t)
	}
}

// between restricts column to the half-open window [from, to).
func between(column string, from, to time.Time) Predicate {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where(column+" >= ? AND "+column+" < ?", from, to)
	}
}

// dayWindow returns the [start, next-day) window containing t, in t's location.
func dayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// monthWindow returns the [start, next-month) window containing now.
func monthWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}

// applySort validates the logical sort field against the entity's column
// table and orders by the mapped physical column or expression. The lookup
// runs before anything reaches the ORDER BY clause, so arbitrary storage
// identifiers can never be sorted on. id ASC is appended as a stable
// tiebreaker to keep result order fully determined across backends.
func applySort(q *gorm.DB, columns map[string]string, sortBy, order string) (*gorm.DB, error) {
	col, ok := columns[strings.ToLower(strings.TrimSpace(sortBy))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidSort, sortBy)
	}
	dir := "ASC"
	if strings.EqualFold(order, "desc") {
		dir = "DESC"
	}
	return q.Order(col + " " + dir).Order("id ASC"), nil
}

// pageSkip normalizes the skip parameter: nil or negative means 0.
func pageSkip(skip *int) int {
	if skip == nil || *skip < 0 {
		return 0
	}
	return *skip
}

// pageLimit normalizes the limit parameter: nil or negative means unlimited.
func pageLimit(limit *int) (int, bool) {
	if limit == nil || *limit < 0 {
		return 0, false
	}
	return *limit, true
}

// paginate applies skip/limit to the query. A skip beyond the result size
// yields an empty page, never an error.
func paginate(q *gorm.DB, skip, limit *int) *gorm.DB {
	if s := pageSkip(skip); s > 0 {
		q = q.Offset(s)
	}
	if l, ok := pageLimit(limit); ok {
		q = q.Limit(l)
	}
	return q
}
