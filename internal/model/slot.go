package model

import (
	"time"

	"github.com/google/uuid"
)

// Slot is a cafe-defined time window that can be booked per day.
// Times are stored as "HH:MM:SS" strings, which compare correctly
// with plain string ordering.  A cafe's slots never overlap: the
// repository rejects a new or updated window that intersects an
// existing one, and the (cafe_id, start_time, end_time) unique key
// rejects exact duplicates.
//
// Fields:
//  ID          – primary key identifier.
//  CafeID      – cafe to which this slot belongs.
//  StartTime   – window start, inclusive ("09:00:00").
//  EndTime     – window end, exclusive ("10:00:00"); always after StartTime.
//  Description – label shown to customers.
//  IsActive    – whether the slot can be booked.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Slot struct {
	ID          uuid.UUID `json:"id"`          // slots.id
	CafeID      uuid.UUID `json:"cafe_id"`     // slots.cafe_id
	StartTime   string    `json:"start_time"`  // slots.start_time
	EndTime     string    `json:"end_time"`    // slots.end_time
	Description string    `json:"description"` // slots.description
	IsActive    bool      `json:"is_active"`   // slots.is_active
	CreatedAt   time.Time `json:"created_at"`  // slots.created_at
	UpdatedAt   time.Time `json:"updated_at"`  // slots.updated_at
}

// ValidInterval reports whether the slot's window is well formed,
// i.e. the start strictly precedes the end.
func (s *Slot) ValidInterval() bool {
	return s.StartTime < s.EndTime
}

// Overlaps reports whether two windows intersect.  Slots touching at
// a boundary ("09:00"–"10:00" and "10:00"–"11:00") do not overlap.
func (s *Slot) Overlaps(other *Slot) bool {
	return s.StartTime < other.EndTime && other.StartTime < s.EndTime
}
