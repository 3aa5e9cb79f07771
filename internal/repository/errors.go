// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and services to distinguish between different failure
// scenarios. ErrUnitConflict deserves a note: the pre-insert
// availability check in the service layer can race with a concurrent
// booking, so the unique key on reservation_units is the real
// arbiter. When MySQL rejects an insert with error 1062 on that key,
// the repository translates it into ErrUnitConflict so the caller
// sees the same "already booked" failure the pre-check would have
// produced.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrCafeNotFound is returned when a cafe lookup fails.
var ErrCafeNotFound = errors.New("cafe not found")

// ErrTableNotFound is returned when a table lookup fails.
var ErrTableNotFound = errors.New("table not found")

// ErrSlotNotFound is returned when a slot lookup fails.
var ErrSlotNotFound = errors.New("slot not found")

// ErrDishNotFound is returned when a dish lookup fails.
var ErrDishNotFound = errors.New("dish not found")

// ErrBookingNotFound is returned when a booking lookup fails.
var ErrBookingNotFound = errors.New("booking not found")

// ErrUnitConflict is returned when inserting reservation units hits
// the (table_id, slot_id, booking_date) unique key, i.e. another
// booking holds one of the requested atomic combinations.
var ErrUnitConflict = errors.New("table and slot already reserved for this date")

// ErrDuplicate is returned when an insert or update violates an
// entity-level unique key (cafe name/phone, table seat number per
// cafe, slot window per cafe, dish name per cafe).
var ErrDuplicate = errors.New("duplicate value")

// ErrEmailExists is returned by user creation when the email is taken.
var ErrEmailExists = errors.New("email already exists")

// isDuplicateKey reports whether err is a MySQL duplicate-entry
// error (1062), regardless of which unique key was violated.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
