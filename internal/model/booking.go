package model

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus enumerates the lifecycle states of a booking.
// CONFIRMED is the initial state.  CANCELED and DONE are terminal,
// but only DONE freezes the record against further updates;
// CANCELED bookings simply stop holding their tables and slots.
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCanceled  BookingStatus = "CANCELED"
	StatusDone      BookingStatus = "DONE"
)

// Valid reports whether the status is one of the known states.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusConfirmed, StatusCanceled, StatusDone:
		return true
	}
	return false
}

// Booking records a user's reservation of one or more tables over
// one or more time slots in a cafe on a given date.  The associated
// tables and slots are not stored on the booking row itself; they
// are derived from the booking's reservation units, which are the
// atomic grain of conflict detection.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – user who made the booking.
//  CafeID      – cafe being booked.
//  BookingDate – calendar date of the visit (midnight UTC).
//  GuestNumber – how many guests the booking covers.
//  Status      – CONFIRMED, CANCELED or DONE.
//  Note        – optional free-form note from the customer.
//  IsActive    – soft-delete flag; inactive bookings do not block capacity.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Booking struct {
	ID          uuid.UUID     `json:"id"`           // bookings.id
	UserID      uuid.UUID     `json:"user_id"`      // bookings.user_id
	CafeID      uuid.UUID     `json:"cafe_id"`      // bookings.cafe_id
	BookingDate time.Time     `json:"booking_date"` // bookings.booking_date (DATE)
	GuestNumber int           `json:"guest_number"` // bookings.guest_number
	Status      BookingStatus `json:"status"`       // bookings.status
	Note        *string       `json:"note"`         // bookings.note (nullable)
	IsActive    bool          `json:"is_active"`    // bookings.is_active
	CreatedAt   time.Time     `json:"created_at"`   // bookings.created_at
	UpdatedAt   time.Time     `json:"updated_at"`   // bookings.updated_at
}

// IsPast reports whether the booking's date lies strictly before the
// given day.  Both values are compared at date granularity.
func (b *Booking) IsPast(today time.Time) bool {
	return DateOnly(b.BookingDate).Before(DateOnly(today))
}

// Editable reports whether the booking may still be modified: past
// bookings are frozen and DONE is an immutable terminal state.
func (b *Booking) Editable(today time.Time) bool {
	return !b.IsPast(today) && b.Status != StatusDone
}

// Blocking reports whether the booking's reservation units still
// hold their (table, slot, date) combinations.  Canceled and
// soft-deleted bookings release their capacity.
func (b *Booking) Blocking() bool {
	return b.IsActive && b.Status != StatusCanceled
}

// BookingDetail is a booking joined with the cafe name and the
// tables and slots its reservation units resolve to.  List and get
// endpoints return this shape.
type BookingDetail struct {
	Booking
	CafeName string  `json:"cafe_name"`
	Tables   []Table `json:"tables"`
	Slots    []Slot  `json:"slots"`
}

// DateOnly truncates a timestamp to midnight UTC of the same day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
