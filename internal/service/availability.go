package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avezov/cafe-booking/internal/model"
	"github.com/avezov/cafe-booking/internal/repository"
)

// ValidateBookingDate rejects dates in the past.  Today is allowed.
func ValidateBookingDate(date, now time.Time) error {
	if model.DateOnly(date).Before(model.DateOnly(now)) {
		return Invalid("booking_date", "cannot book a past date")
	}
	return nil
}

// ValidateCapacity rejects a guest count exceeding the combined seats
// of the selected tables.
func ValidateCapacity(tables []model.Table, guests int) error {
	if guests < 1 {
		return Invalid("guest_number", "must be at least 1")
	}
	if total := model.TotalSeats(tables); guests > total {
		return Invalid("guest_number", "%d guests exceed the %d seats of the selected tables", guests, total)
	}
	return nil
}

// dedupe removes duplicate IDs while preserving order.
func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// checkAvailability runs the pair-wise pre-check: every (table, slot)
// combination must be free on the date, ignoring the booking named by
// exclude.  A hit returns repository.ErrUnitConflict, the same error
// the unique key produces, so callers see one failure mode regardless
// of which layer caught the clash.
func checkAvailability(ctx context.Context, units UnitStore, tableIDs, slotIDs []uuid.UUID, date time.Time, exclude uuid.UUID) error {
	for _, tid := range tableIDs {
		for _, sid := range slotIDs {
			held, err := units.HasConflict(ctx, tid, sid, date, exclude)
			if err != nil {
				return err
			}
			if held {
				return repository.ErrUnitConflict
			}
		}
	}
	return nil
}

// AvailabilityService answers "which tables are still free" queries
// for the public browsing endpoints.
type AvailabilityService struct {
	cafes  CafeStore
	tables TableStore
	slots  SlotStore
	units  UnitStore
}

// NewAvailabilityService wires the availability query service.
func NewAvailabilityService(cafes CafeStore, tables TableStore, slots SlotStore, units UnitStore) *AvailabilityService {
	return &AvailabilityService{cafes: cafes, tables: tables, slots: slots, units: units}
}

// FreeTables returns the cafe's active tables not held by a blocking
// booking at the given slot and date.
func (s *AvailabilityService) FreeTables(ctx context.Context, cafeID, slotID uuid.UUID, date time.Time) ([]model.Table, error) {
	if err := ValidateBookingDate(date, time.Now()); err != nil {
		return nil, err
	}
	if _, err := s.cafes.GetByID(ctx, cafeID); err != nil {
		return nil, err
	}
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.CafeID != cafeID {
		return nil, repository.ErrSlotNotFound
	}
	all, err := s.tables.ListByCafe(ctx, cafeID, true)
	if err != nil {
		return nil, err
	}
	heldIDs, err := s.units.HeldTableIDs(ctx, cafeID, slotID, date)
	if err != nil {
		return nil, err
	}
	held := make(map[uuid.UUID]struct{}, len(heldIDs))
	for _, id := range heldIDs {
		held[id] = struct{}{}
	}
	free := make([]model.Table, 0, len(all))
	for _, t := range all {
		if _, ok := held[t.ID]; !ok {
			free = append(free, t)
		}
	}
	return free, nil
}
