package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique constraint failure, optionally
// on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") && (constraint == "" || strings.Contains(msg, constraint))
}

// whereBuilder accumulates AND-ed conditions with positional arguments.
type whereBuilder struct {
	conds []string
	args  []interface{}
}

func newWhere(companyCol string, companyID interface{}) *whereBuilder {
	w := &whereBuilder{}
	w.add(companyCol+" = $%d", companyID)
	return w
}

// add appends a condition; every %d in format is replaced with the argument's position.
func (w *whereBuilder) add(format string, arg interface{}) {
	w.args = append(w.args, arg)
	n := len(w.args)
	w.conds = append(w.conds, strings.ReplaceAll(format, "%d", fmt.Sprint(n)))
}

func (w *whereBuilder) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}

// page appends LIMIT and OFFSET placeholders and returns the suffix.
func (w *whereBuilder) page(offset, limit int) (string, []interface{}) {
	args := append(append([]interface{}{}, w.args...), limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

// orderBy maps a client sort key ("name" or "-name") onto a whitelisted column.
func orderBy(sort string, allowed map[string]string, fallback string) string {
	if sort == "" {
		return fallback
	}
	dir := "ASC"
	key := sort
	if strings.HasPrefix(sort, "-") {
		dir = "DESC"
		key = sort[1:]
	}
	col, ok := allowed[key]
	if !ok {
		return fallback
	}
	return col + " " + dir
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
