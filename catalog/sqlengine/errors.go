package sqlengine

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// pgClassIntegrityConstraintViolation is the SQLSTATE class for unique, not null, foreign key and check violations.
const pgClassIntegrityConstraintViolation = "23"

// isConstraintViolation reports whether err was caused by the database rejecting a row because of a constraint.
// It understands the error types of all drivers the engine works with.
func isConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, pgClassIntegrityConstraintViolation)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code.Class()) == pgClassIntegrityConstraintViolation
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		// extended result codes keep the primary code in the lowest byte
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}

	return false
}
