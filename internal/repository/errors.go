// Package repository defines the sentinel errors shared by the storage
// implementations. Both the MySQL repositories in this package and the
// in-memory store return these values so the service layer can classify
// failures without knowing which backend produced them.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a user is created with an email that is
// already registered.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicate is returned when a unique key other than a slot claim is
// violated, for example a second invoice for the same booking or a second
// table with the same number.
var ErrDuplicate = errors.New("duplicate")

// ErrSlotTaken is returned when a booking cannot claim its table slot or
// room nights because another non-terminal booking already holds them.
var ErrSlotTaken = errors.New("slot already taken")

// ErrInUse is returned when a table or room cannot be deleted because a
// non-terminal booking still references it.
var ErrInUse = errors.New("resource in use")

// MySQL server error numbers translated by this package.
const (
	errDupEntry         = 1062
	errRowIsReferenced  = 1451
	errNoReferencedRow  = 1452
	errRowIsReferenced2 = 1217
	errNoReferencedRow2 = 1216
)

func mysqlCode(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// translate maps driver errors onto the package sentinels. dup is the
// sentinel used for duplicate-key violations at this call site.
func translate(err error, dup error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	}
	switch mysqlCode(err) {
	case errDupEntry:
		return dup
	case errRowIsReferenced, errRowIsReferenced2:
		return ErrInUse
	case errNoReferencedRow, errNoReferencedRow2:
		return ErrNotFound
	}
	return err
}
