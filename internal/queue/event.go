// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used for booking lifecycle events.
const (
	BookingCreatedQueue = "booking.created"
	BookingUpdatedQueue = "booking.updated"
)

// BookingEvent is published when a booking is created or changes state.
// It carries enough information for downstream consumers to log, notify
// or trigger analytics without querying the primary database.
type BookingEvent struct {
	BookingID   string   `json:"booking_id"`
	UserID      string   `json:"user_id"`
	CafeID      string   `json:"cafe_id"`
	CafeName    string   `json:"cafe_name"`
	BookingDate string   `json:"booking_date"` // YYYY-MM-DD
	GuestNumber int      `json:"guest_number"`
	Status      string   `json:"status"`
	TableSeats  []int    `json:"table_seats"`  // seat numbers of the held tables
	SlotWindows []string `json:"slot_windows"` // "HH:MM:SS-HH:MM:SS" per held slot
	OccurredAt  string   `json:"occurred_at"`  // RFC 3339 UTC
}
