package sql

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // Cannot add or update a child row
	mysqlNotNullViolation       = 1048
	mysqlCheckConstraintViolate = 3819
)

// IsConstraintError reports if the backend error resulted from a
// constraint violation (unique, foreign key, not null or check).
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}

	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDuplicateEntry, mysqlForeignKeyParent, mysqlForeignKeyChild,
			mysqlNotNullViolation, mysqlCheckConstraintViolate:
			return true
		}
		return false
	}

	// Extended result codes keep the primary code in the low byte.
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}

	// Fallback to string matching for wrapped or foreign driver errors.
	return containsAny(err.Error(),
		"Error 1062",        // MySQL
		"Error 1451",        // MySQL
		"Error 1452",        // MySQL
		"Error 3819",        // MySQL
		"constraint failed", // SQLite
	)
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
