package apiutil

import (
	"errors"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// IsSQLiteConstraintViolation reports whether err is a SQLite constraint
// failure, such as inserting a duplicate blackout date.
func IsSQLiteConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
