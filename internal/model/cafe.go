package model

import (
	"time"

	"github.com/google/uuid"
)

// Cafe represents a venue that owns tables, slots and dishes and
// receives bookings.  Name, address and phone are unique across
// all cafes.  Inactive cafes are hidden from public browsing and
// cannot accept new bookings.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – unique human-friendly name of the cafe.
//  Address     – unique street address.
//  Phone       – unique contact phone.
//  Description – optional free-form text.
//  IsActive    – whether the cafe is open for booking.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Cafe struct {
	ID          uuid.UUID `json:"id"`          // cafes.id
	Name        string    `json:"name"`        // cafes.name
	Address     string    `json:"address"`     // cafes.address
	Phone       string    `json:"phone"`       // cafes.phone
	Description *string   `json:"description"` // cafes.description (nullable)
	IsActive    bool      `json:"is_active"`   // cafes.is_active
	CreatedAt   time.Time `json:"created_at"`  // cafes.created_at
	UpdatedAt   time.Time `json:"updated_at"`  // cafes.updated_at
}

// CafeManager links a manager user to a cafe.  A cafe can have many
// managers and a manager can run many cafes.
type CafeManager struct {
	CafeID uuid.UUID // cafe_managers.cafe_id
	UserID uuid.UUID // cafe_managers.user_id
}
