package database

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/choplin/medialedger/internal/media"
)

// IsUniqueViolation reports whether err is SQLite rejecting a duplicate key.
func IsUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	default:
		return false
	}
}

// translateInsertError maps a unique violation to media.ErrConflict and
// leaves every other error untouched.
func translateInsertError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	if IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %v", msg, media.ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
