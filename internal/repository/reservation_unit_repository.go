package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/avezov/cafe-booking/internal/model"
)

// UnitRepo reads reservation units, the atomic (table, slot, date)
// holds behind bookings.  Units are only ever written inside booking
// transactions (see BookingRepo); this repo serves the read side:
// availability pre-checks and schedule views.
type UnitRepo struct {
	db *sql.DB
}

// NewUnitRepo constructs a UnitRepo with the given DB handle.
func NewUnitRepo(db *sql.DB) *UnitRepo { return &UnitRepo{db: db} }

// HasConflict reports whether the (table, slot, date) combination is
// already held by a blocking booking, i.e. one that is active and not
// canceled.  Pass excludeBookingID to ignore a booking's own holds
// when it is being updated; uuid.Nil disables the exclusion.
//
// This is a best-effort pre-check: two concurrent requests can both
// see "free" here.  The unique key on reservation_units settles such
// races at insert time.
func (r *UnitRepo) HasConflict(ctx context.Context, tableID, slotID uuid.UUID, date time.Time, excludeBookingID uuid.UUID) (bool, error) {
	q := `SELECT EXISTS(
		SELECT 1 FROM reservation_units u
		JOIN bookings b ON b.id = u.booking_id
		WHERE u.table_id = ? AND u.slot_id = ? AND u.booking_date = ?
		  AND b.is_active = 1 AND b.status <> 'CANCELED'`
	args := []any{tableID, slotID, model.DateOnly(date)}
	if excludeBookingID != uuid.Nil {
		q += ` AND b.id <> ?`
		args = append(args, excludeBookingID)
	}
	q += `)`
	var held bool
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&held); err != nil {
		return false, err
	}
	return held, nil
}

// ListByBooking returns a booking's units.
func (r *UnitRepo) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.ReservationUnit, error) {
	const q = `SELECT id, booking_id, cafe_id, table_id, slot_id, booking_date
		FROM reservation_units WHERE booking_id = ?`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	units := make([]model.ReservationUnit, 0)
	for rows.Next() {
		var u model.ReservationUnit
		if err := rows.Scan(&u.ID, &u.BookingID, &u.CafeID, &u.TableID, &u.SlotID, &u.BookingDate); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// HeldTableIDs returns the IDs of tables held by blocking bookings at
// the given slot and date.  The availability endpoint subtracts these
// from the cafe's active tables.
func (r *UnitRepo) HeldTableIDs(ctx context.Context, cafeID, slotID uuid.UUID, date time.Time) ([]uuid.UUID, error) {
	const q = `SELECT DISTINCT u.table_id
		FROM reservation_units u
		JOIN bookings b ON b.id = u.booking_id
		WHERE u.cafe_id = ? AND u.slot_id = ? AND u.booking_date = ?
		  AND b.is_active = 1 AND b.status <> 'CANCELED'`
	rows, err := r.db.QueryContext(ctx, q, cafeID, slotID, model.DateOnly(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
