package repository

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestTranslateDuplicateEntry(t *testing.T) {
	err := translate(&mysql.MySQLError{
		Number:  1062,
		Message: "Duplicate entry '1-2-3' for key 'film_staff.film_staff_unique_key'",
	})
	var dup *DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("translate() = %T, want *DuplicateKeyError", err)
	}
	if dup.Constraint != "film_staff_unique_key" {
		t.Fatalf("constraint = %q", dup.Constraint)
	}
}

func TestTranslateDuplicateEntryWithoutTablePrefix(t *testing.T) {
	// MySQL 5.7 omits the table name.
	err := translate(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'France' for key 'countries_name_unique'"})
	var dup *DuplicateKeyError
	if !errors.As(err, &dup) || dup.Constraint != "countries_name_unique" {
		t.Fatalf("translate() = %v", err)
	}
}

func TestTranslateMissingReference(t *testing.T) {
	err := translate(&mysql.MySQLError{
		Number: 1452,
		Message: "Cannot add or update a child row: a foreign key constraint fails " +
			"(`kinosite`.`film_staff`, CONSTRAINT `film_staff_type_fk` FOREIGN KEY (`staff_type_id`) " +
			"REFERENCES `staff_types` (`id`) ON DELETE CASCADE)",
	})
	var ref *ReferenceNotFoundError
	if !errors.As(err, &ref) {
		t.Fatalf("translate() = %T, want *ReferenceNotFoundError", err)
	}
	if ref.Constraint != "film_staff_type_fk" {
		t.Fatalf("constraint = %q", ref.Constraint)
	}
}

func TestTranslatePassesOtherErrors(t *testing.T) {
	other := errors.New("connection reset")
	if got := translate(other); got != other {
		t.Fatalf("translate() = %v", got)
	}
	lock := &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}
	if got := translate(lock); got != error(lock) {
		t.Fatalf("translate() = %v", got)
	}
}
