package postgres

import (
	"database/sql"

	crerr "github.com/cockroachdb/errors"
	"github.com/lib/pq"
)

func isNotFound(err error) bool {
	return crerr.Is(err, sql.ErrNoRows)
}

// IsUndefinedTable reports whether err is postgres 42P01, raised when
// migrations have not been applied.
func IsUndefinedTable(err error) bool {
	var pqErr *pq.Error
	if crerr.As(err, &pqErr) {
		return pqErr.Code == "42P01"
	}
	return false
}
