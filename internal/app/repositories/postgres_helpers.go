package repositories

import (
	"strings"

	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/alnet/mentorbridge/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
)

// likePattern wraps s for a case-insensitive substring ILIKE match, escaping wildcards
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}

// orderDir renders an ORDER BY direction
func orderDir(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}

// collectRows scans every row with scan, closing rows when done
func collectRows[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]*T, error) {
	defer rows.Close()

	var items []*T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// joinColumns renders a column list for RETURNING clauses
func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

// checkViolation turns a CHECK constraint failure into a validation error.
// It returns nil for any other error.
func checkViolation(err error) error {
	if !dberrors.IsCheckViolation(err) {
		return nil
	}
	verr := apperrors.NewValidationError("value out of range")
	if name := dberrors.ConstraintName(err); name != "" {
		verr = verr.WithDetails(map[string]interface{}{"constraint": name})
	}
	return verr
}
