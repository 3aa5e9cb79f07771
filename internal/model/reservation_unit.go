package model

import (
	"time"

	"github.com/google/uuid"
)

// ReservationUnit is one atomic (table, slot, date) hold backing a
// booking.  A booking spanning several tables and slots owns one
// unit per pair in the cross product, and every pair must be free
// for the booking to exist.  The database enforces the final
// guarantee with a unique key over (table_id, slot_id, booking_date):
// when two concurrent requests pass the application-level overlap
// check, the second insert fails on that key instead of silently
// double-booking.  Composite foreign keys tie the table and slot to
// the same cafe as the unit.
//
// Units live and die with their booking: they are created when the
// booking is created, replaced when its table/slot selection
// changes, and cascade-deleted with the booking row.
type ReservationUnit struct {
	ID          uuid.UUID `json:"id"`           // reservation_units.id
	BookingID   uuid.UUID `json:"booking_id"`   // reservation_units.booking_id
	CafeID      uuid.UUID `json:"cafe_id"`      // reservation_units.cafe_id
	TableID     uuid.UUID `json:"table_id"`     // reservation_units.table_id
	SlotID      uuid.UUID `json:"slot_id"`      // reservation_units.slot_id
	BookingDate time.Time `json:"booking_date"` // reservation_units.booking_date (DATE)
}

// UnitsFor expands a booking's table and slot selections into the
// full cross product of reservation units.  The result always has
// exactly len(tableIDs) * len(slotIDs) entries.
func UnitsFor(b *Booking, tableIDs, slotIDs []uuid.UUID) []ReservationUnit {
	units := make([]ReservationUnit, 0, len(tableIDs)*len(slotIDs))
	for _, tid := range tableIDs {
		for _, sid := range slotIDs {
			units = append(units, ReservationUnit{
				ID:          uuid.New(),
				BookingID:   b.ID,
				CafeID:      b.CafeID,
				TableID:     tid,
				SlotID:      sid,
				BookingDate: DateOnly(b.BookingDate),
			})
		}
	}
	return units
}
