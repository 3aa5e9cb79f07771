package model

import (
	"time"

	"github.com/google/uuid"
)

// Dish is a menu item offered by a cafe.  Dishes take no part in
// reservation conflict detection; they exist for menu browsing.
type Dish struct {
	ID          uuid.UUID `json:"id"`          // dishes.id
	CafeID      uuid.UUID `json:"cafe_id"`     // dishes.cafe_id
	Name        string    `json:"name"`        // dishes.name
	Description *string   `json:"description"` // dishes.description (nullable)
	PriceCents  uint32    `json:"price_cents"` // dishes.price_cents
	IsActive    bool      `json:"is_active"`   // dishes.is_active
	CreatedAt   time.Time `json:"created_at"`  // dishes.created_at
	UpdatedAt   time.Time `json:"updated_at"`  // dishes.updated_at
}
