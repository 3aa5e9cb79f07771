package model

import (
	"time"

	"github.com/google/uuid"
)

// Table describes a physical table inside a cafe.  Tables are
// uniquely identified by their cafe and seat number.  SeatNumber is
// the table's seating capacity and is what the capacity validator
// sums when checking a booking against its guest count.
//
// Fields:
//  ID          – primary key identifier.
//  CafeID      – cafe to which this table belongs.
//  SeatNumber  – number of seats at the table.
//  Description – optional free-form text.
//  IsActive    – whether the table can be booked.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Table struct {
	ID          uuid.UUID `json:"id"`          // cafe_tables.id
	CafeID      uuid.UUID `json:"cafe_id"`     // cafe_tables.cafe_id
	SeatNumber  int       `json:"seat_number"` // cafe_tables.seat_number
	Description *string   `json:"description"` // cafe_tables.description (nullable)
	IsActive    bool      `json:"is_active"`   // cafe_tables.is_active
	CreatedAt   time.Time `json:"created_at"`  // cafe_tables.created_at
	UpdatedAt   time.Time `json:"updated_at"`  // cafe_tables.updated_at
}

// TotalSeats sums the seating capacity over a set of tables.
func TotalSeats(tables []Table) int {
	total := 0
	for _, t := range tables {
		total += t.SeatNumber
	}
	return total
}
