package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avezov/cafe-booking/internal/model"
	"github.com/avezov/cafe-booking/internal/queue"
	"github.com/avezov/cafe-booking/internal/repository"
)

// The store interfaces cover exactly the repository methods the
// booking logic needs.  *repository.CafeRepo and friends satisfy them;
// tests substitute in-memory fakes.

// CafeStore resolves cafes and manager assignments.
type CafeStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Cafe, error)
	IsManager(ctx context.Context, cafeID, userID uuid.UUID) (bool, error)
}

// TableStore resolves and validates table selections.
type TableStore interface {
	ByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Table, error)
	ActiveIDsForCafe(ctx context.Context, cafeID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
	ListByCafe(ctx context.Context, cafeID uuid.UUID, activeOnly bool) ([]model.Table, error)
}

// SlotStore resolves and validates slot selections.
type SlotStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Slot, error)
	ActiveIDsForCafe(ctx context.Context, cafeID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
}

// UnitStore answers availability questions about reservation units.
type UnitStore interface {
	HasConflict(ctx context.Context, tableID, slotID uuid.UUID, date time.Time, excludeBookingID uuid.UUID) (bool, error)
	HeldTableIDs(ctx context.Context, cafeID, slotID uuid.UUID, date time.Time) ([]uuid.UUID, error)
}

// BookingStore persists bookings and their units.
type BookingStore interface {
	CreateWithUnits(ctx context.Context, b *model.Booking, tableIDs, slotIDs []uuid.UUID) error
	UpdateWithUnits(ctx context.Context, b *model.Booking, replaceUnits bool, tableIDs, slotIDs []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*model.BookingDetail, error)
	List(ctx context.Context, f repository.ListFilter) ([]model.BookingDetail, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Notifier publishes booking lifecycle events.  Implementations must
// not block the request path on broker failures.
type Notifier interface {
	BookingCreated(ctx context.Context, ev queue.BookingEvent)
	BookingUpdated(ctx context.Context, ev queue.BookingEvent)
}
