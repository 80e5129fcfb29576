package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// filterBuilder accumulates WHERE conditions with positional arguments.
type filterBuilder struct {
	conditions []string
	args       []interface{}
}

func (b *filterBuilder) bind(v interface{}) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *filterBuilder) eq(column string, v interface{}) {
	b.conditions = append(b.conditions, fmt.Sprintf("%s = %s", column, b.bind(v)))
}

func (b *filterBuilder) contains(column, term string) {
	if term == "" {
		return
	}
	b.conditions = append(b.conditions, fmt.Sprintf("%s ILIKE %s", column, b.bind(likePattern(term))))
}

func (b *filterBuilder) search(term string, columns ...string) {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return
	}
	placeholder := b.bind(likePattern(term))
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("%s ILIKE %s", col, placeholder)
	}
	b.conditions = append(b.conditions, "("+strings.Join(parts, " OR ")+")")
}

func (b *filterBuilder) between(column string, after, before *time.Time) {
	if after != nil {
		b.conditions = append(b.conditions, fmt.Sprintf("%s >= %s", column, b.bind(*after)))
	}
	if before != nil {
		b.conditions = append(b.conditions, fmt.Sprintf("%s <= %s", column, b.bind(*before)))
	}
}

func (b *filterBuilder) atLeast(column string, v *float64) {
	if v != nil {
		b.conditions = append(b.conditions, fmt.Sprintf("%s >= %s", column, b.bind(*v)))
	}
}

func (b *filterBuilder) atMost(column string, v *float64) {
	if v != nil {
		b.conditions = append(b.conditions, fmt.Sprintf("%s <= %s", column, b.bind(*v)))
	}
}

func (b *filterBuilder) overlaps(column string, values []string) {
	if len(values) == 0 {
		return
	}
	b.conditions = append(b.conditions, fmt.Sprintf("%s && %s", column, b.bind(pq.Array(values))))
}

func (b *filterBuilder) where() string {
	if len(b.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conditions, " AND ")
}

// orderAndPage renders ORDER BY, LIMIT and OFFSET. Unknown sort keys fall back to defaultColumn.
func orderAndPage(q models.ListQuery, sorts map[string]string, defaultColumn string) string {
	q.Normalize()
	column, ok := sorts[q.SortBy]
	if !ok {
		column = defaultColumn
	}
	return fmt.Sprintf(" ORDER BY %s %s LIMIT %d OFFSET %d", column, strings.ToUpper(q.SortOrder), q.Limit, q.Offset())
}

// selectPage runs the page query into dest followed by the matching count.
func selectPage(ctx context.Context, db *sqlx.DB, dest interface{}, columns, table string, b *filterBuilder, page string) (int, error) {
	where := b.where()
	query := fmt.Sprintf("SELECT %s FROM %s%s%s", columns, table, where, page)
	if err := db.SelectContext(ctx, dest, query, b.args...); err != nil {
		return 0, fmt.Errorf("list %s: %w", table, err)
	}
	var total int
	if err := db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM %s%s", table, where), b.args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return total, nil
}

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func stamp(createdAt *time.Time, updatedAt *time.Time) {
	now := time.Now().UTC()
	if createdAt != nil && createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt != nil {
		*updatedAt = now
	}
}

// requireAffected converts a zero-row mutation into sql.ErrNoRows.
func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, sql.ErrNoRows)
	}
	return nil
}
