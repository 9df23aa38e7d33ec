// Package repository defines the catalog data access layer and the error
// values it reports.  Handlers switch on these to pick a status code:
// ValidationError and DuplicateKeyError come back to the form that caused
// them, ReferenceNotFoundError names the foreign key whose target is
// missing, and ErrNotFound means the addressed row does not exist.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/film-catalog/internal/model"
)

// MySQL server error numbers we translate.
const (
	mysqlDuplicateEntry  = 1062
	mysqlNoReferencedRow = 1452 // child insert/update, parent missing
	mysqlNoReferencedOld = 1216
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError is re-exported so callers need a single import.
type ValidationError = model.ValidationError

// DuplicateKeyError is returned when an insert or update violates a
// unique or composite-unique constraint.  Nothing is written.
type DuplicateKeyError struct {
	Constraint string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key violates %s", e.Constraint)
}

// ReferenceNotFoundError is returned when a foreign key points at a row
// that does not exist.
type ReferenceNotFoundError struct {
	Constraint string
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("referenced row not found for %s", e.Constraint)
}

// translate maps driver errors onto the catalog error types.  Other errors
// pass through unchanged.
func translate(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case mysqlDuplicateEntry:
		return &DuplicateKeyError{Constraint: duplicateKeyName(me.Message)}
	case mysqlNoReferencedRow, mysqlNoReferencedOld:
		return &ReferenceNotFoundError{Constraint: foreignKeyName(me.Message)}
	}
	return err
}

// duplicateKeyName extracts the index from
// "Duplicate entry 'x' for key 'table.index_name'".
func duplicateKeyName(msg string) string {
	i := strings.LastIndex(msg, "for key '")
	if i < 0 {
		return "unknown"
	}
	key := strings.TrimSuffix(msg[i+len("for key '"):], "'")
	if dot := strings.LastIndex(key, "."); dot >= 0 {
		key = key[dot+1:]
	}
	return key
}

// foreignKeyName extracts the constraint from
// "... a foreign key constraint fails (`db`.`t`, CONSTRAINT `name` FOREIGN KEY ...".
func foreignKeyName(msg string) string {
	i := strings.Index(msg, "CONSTRAINT `")
	if i < 0 {
		return "unknown"
	}
	rest := msg[i+len("CONSTRAINT `"):]
	if j := strings.IndexByte(rest, '`'); j >= 0 {
		return rest[:j]
	}
	return "unknown"
}

// IsNotFound reports whether err means the addressed row is absent.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
