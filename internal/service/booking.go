package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/avezov/cafe-booking/internal/metrics"
	"github.com/avezov/cafe-booking/internal/model"
	"github.com/avezov/cafe-booking/internal/queue"
	"github.com/avezov/cafe-booking/internal/repository"
)

// BookingService implements the booking lifecycle: creation with the
// availability pre-check, updates with unit replacement, cancellation
// and completion.  The pre-check is advisory; the unique key on
// reservation_units makes the final call, and both paths surface as
// repository.ErrUnitConflict.
type BookingService struct {
	cafes    CafeStore
	tables   TableStore
	slots    SlotStore
	units    UnitStore
	bookings BookingStore
	notifier Notifier
	now      func() time.Time
}

// NewBookingService wires the booking service.  notifier may be nil
// when no broker is configured.
func NewBookingService(cafes CafeStore, tables TableStore, slots SlotStore, units UnitStore, bookings BookingStore, notifier Notifier) *BookingService {
	return &BookingService{
		cafes:    cafes,
		tables:   tables,
		slots:    slots,
		units:    units,
		bookings: bookings,
		notifier: notifier,
		now:      time.Now,
	}
}

// CreateBookingInput carries a new booking request.
type CreateBookingInput struct {
	CafeID      uuid.UUID
	BookingDate time.Time
	GuestNumber int
	Note        *string
	TableIDs    []uuid.UUID
	SlotIDs     []uuid.UUID
}

// UpdateBookingInput carries a partial booking update.  Nil fields
// keep their current value; nil ID slices keep the current selection.
type UpdateBookingInput struct {
	BookingDate *time.Time
	GuestNumber *int
	Note        *string
	Status      *model.BookingStatus
	TableIDs    []uuid.UUID
	SlotIDs     []uuid.UUID
}

// Create books the requested tables and slots for the user.  The
// sequence is: validate the request, pre-check every (table, slot)
// pair for the date, then insert the booking and its units in one
// transaction.  A clash at either stage returns
// repository.ErrUnitConflict.
func (s *BookingService) Create(ctx context.Context, userID uuid.UUID, in CreateBookingInput) (*model.BookingDetail, error) {
	tableIDs := dedupe(in.TableIDs)
	slotIDs := dedupe(in.SlotIDs)
	if len(tableIDs) == 0 {
		return nil, Invalid("table_ids", "at least one table is required")
	}
	if len(slotIDs) == 0 {
		return nil, Invalid("slot_ids", "at least one slot is required")
	}
	if err := ValidateBookingDate(in.BookingDate, s.now()); err != nil {
		return nil, err
	}

	cafe, err := s.cafes.GetByID(ctx, in.CafeID)
	if err != nil {
		return nil, err
	}
	if !cafe.IsActive {
		return nil, Invalid("cafe_id", "cafe is not accepting bookings")
	}
	if err := s.validateSelections(ctx, in.CafeID, tableIDs, slotIDs, in.GuestNumber); err != nil {
		return nil, err
	}

	if err := checkAvailability(ctx, s.units, tableIDs, slotIDs, in.BookingDate, uuid.Nil); err != nil {
		if errors.Is(err, repository.ErrUnitConflict) {
			metrics.IncBookingConflict("precheck")
		}
		return nil, err
	}

	b := &model.Booking{
		UserID:      userID,
		CafeID:      in.CafeID,
		BookingDate: in.BookingDate,
		GuestNumber: in.GuestNumber,
		Status:      model.StatusConfirmed,
		Note:        in.Note,
		IsActive:    true,
	}
	if err := s.bookings.CreateWithUnits(ctx, b, tableIDs, slotIDs); err != nil {
		if errors.Is(err, repository.ErrUnitConflict) {
			metrics.IncBookingConflict("constraint")
		}
		return nil, err
	}
	metrics.IncBookingCreated()

	d, err := s.bookings.GetDetail(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.BookingCreated(ctx, eventFrom(d))
	}
	return d, nil
}

// Get returns a booking's detail after an ownership check.
func (s *BookingService) Get(ctx context.Context, userID uuid.UUID, role string, id uuid.UUID) (*model.BookingDetail, error) {
	d, err := s.bookings.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, userID, role, &d.Booking); err != nil {
		return nil, err
	}
	return d, nil
}

// List returns bookings visible to the caller.  Regular users see
// their own; managers see their cafe's when cafeID is set; admins see
// everything the filter matches.
func (s *BookingService) List(ctx context.Context, userID uuid.UUID, role string, f repository.ListFilter) ([]model.BookingDetail, error) {
	switch role {
	case model.RoleAdmin:
	case model.RoleManager:
		if f.CafeID == uuid.Nil {
			f.UserID = userID
			break
		}
		ok, err := s.cafes.IsManager(ctx, f.CafeID, userID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, repository.ErrForbidden
		}
	default:
		f.UserID = userID
		f.CafeID = uuid.Nil
	}
	return s.bookings.List(ctx, f)
}

// Update applies a partial update to a booking.  Only CONFIRMED
// future bookings accept changes; the permitted status transitions
// are CONFIRMED to CANCELED and CONFIRMED to DONE.  Cancellation
// drops the booking's units so the combinations free up immediately;
// a date or selection change replaces them, re-running the
// availability pre-check with the booking's own holds excluded.
func (s *BookingService) Update(ctx context.Context, userID uuid.UUID, role string, id uuid.UUID, in UpdateBookingInput) (*model.BookingDetail, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, userID, role, b); err != nil {
		return nil, err
	}
	now := s.now()
	if b.IsPast(now) {
		return nil, Invalid("booking_date", "past bookings cannot be modified")
	}
	switch b.Status {
	case model.StatusDone:
		return nil, Invalid("status", "completed bookings are immutable")
	case model.StatusCanceled:
		return nil, Invalid("status", "canceled bookings cannot be modified")
	}

	if in.Status != nil && *in.Status != b.Status {
		if !in.Status.Valid() {
			return nil, Invalid("status", "unknown status %q", string(*in.Status))
		}
		if *in.Status == model.StatusConfirmed {
			return nil, Invalid("status", "booking is already confirmed")
		}
		b.Status = *in.Status
	}
	canceling := b.Status == model.StatusCanceled

	dateChanged := false
	if in.BookingDate != nil && !model.DateOnly(*in.BookingDate).Equal(model.DateOnly(b.BookingDate)) {
		if canceling {
			return nil, Invalid("booking_date", "cannot reschedule while canceling")
		}
		if err := ValidateBookingDate(*in.BookingDate, now); err != nil {
			return nil, err
		}
		b.BookingDate = *in.BookingDate
		dateChanged = true
	}
	if in.GuestNumber != nil {
		b.GuestNumber = *in.GuestNumber
	}
	if in.Note != nil {
		b.Note = in.Note
	}

	// Resolve the effective selection: the request's lists when given,
	// the current units' tables and slots otherwise.
	cur, err := s.bookings.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	tableIDs := dedupe(in.TableIDs)
	slotIDs := dedupe(in.SlotIDs)
	selectionChanged := in.TableIDs != nil || in.SlotIDs != nil
	if in.TableIDs == nil {
		for _, t := range cur.Tables {
			tableIDs = append(tableIDs, t.ID)
		}
	}
	if in.SlotIDs == nil {
		for _, sl := range cur.Slots {
			slotIDs = append(slotIDs, sl.ID)
		}
	}
	if selectionChanged && canceling {
		return nil, Invalid("table_ids", "cannot change the selection while canceling")
	}
	if len(tableIDs) == 0 || len(slotIDs) == 0 {
		return nil, Invalid("table_ids", "a booking must keep at least one table and one slot")
	}

	replace := dateChanged || selectionChanged
	if canceling {
		// Drop the units so the combinations free up; the row update
		// and the delete commit together.
		if err := s.bookings.UpdateWithUnits(ctx, b, true, nil, nil); err != nil {
			return nil, err
		}
	} else {
		if err := s.validateSelections(ctx, b.CafeID, tableIDs, slotIDs, b.GuestNumber); err != nil {
			return nil, err
		}
		if replace {
			if err := checkAvailability(ctx, s.units, tableIDs, slotIDs, b.BookingDate, b.ID); err != nil {
				if errors.Is(err, repository.ErrUnitConflict) {
					metrics.IncBookingConflict("precheck")
				}
				return nil, err
			}
		}
		if err := s.bookings.UpdateWithUnits(ctx, b, replace, tableIDs, slotIDs); err != nil {
			if errors.Is(err, repository.ErrUnitConflict) {
				metrics.IncBookingConflict("constraint")
			}
			return nil, err
		}
	}
	metrics.IncBookingUpdated(string(b.Status))

	d, err := s.bookings.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.BookingUpdated(ctx, eventFrom(d))
	}
	return d, nil
}

// Delete soft-deletes a booking, releasing its holds.  The same
// freeze rules as Update apply.
func (s *BookingService) Delete(ctx context.Context, userID uuid.UUID, role string, id uuid.UUID) error {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, userID, role, b); err != nil {
		return err
	}
	if b.IsPast(s.now()) {
		return Invalid("booking_date", "past bookings cannot be deleted")
	}
	if b.Status == model.StatusDone {
		return Invalid("status", "completed bookings are immutable")
	}
	return s.bookings.Delete(ctx, id)
}

// authorize permits the booking's owner, a manager of its cafe and
// admins.
func (s *BookingService) authorize(ctx context.Context, userID uuid.UUID, role string, b *model.Booking) error {
	if b.UserID == userID || role == model.RoleAdmin {
		return nil
	}
	if role == model.RoleManager {
		ok, err := s.cafes.IsManager(ctx, b.CafeID, userID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return repository.ErrForbidden
}

// validateSelections checks that every requested table and slot
// exists, is active and belongs to the cafe, and that the guest count
// fits the selected tables.
func (s *BookingService) validateSelections(ctx context.Context, cafeID uuid.UUID, tableIDs, slotIDs []uuid.UUID, guests int) error {
	okTables, err := s.tables.ActiveIDsForCafe(ctx, cafeID, tableIDs)
	if err != nil {
		return err
	}
	if len(okTables) != len(tableIDs) {
		return Invalid("table_ids", "one or more tables do not exist, are inactive or belong to another cafe")
	}
	okSlots, err := s.slots.ActiveIDsForCafe(ctx, cafeID, slotIDs)
	if err != nil {
		return err
	}
	if len(okSlots) != len(slotIDs) {
		return Invalid("slot_ids", "one or more slots do not exist, are inactive or belong to another cafe")
	}
	tbls, err := s.tables.ByIDs(ctx, tableIDs)
	if err != nil {
		return err
	}
	return ValidateCapacity(tbls, guests)
}

// eventFrom flattens a booking detail into the broker payload.
func eventFrom(d *model.BookingDetail) queue.BookingEvent {
	seats := make([]int, 0, len(d.Tables))
	for _, t := range d.Tables {
		seats = append(seats, t.SeatNumber)
	}
	windows := make([]string, 0, len(d.Slots))
	for _, sl := range d.Slots {
		windows = append(windows, sl.StartTime+"-"+sl.EndTime)
	}
	return queue.BookingEvent{
		BookingID:   d.ID.String(),
		UserID:      d.UserID.String(),
		CafeID:      d.CafeID.String(),
		CafeName:    d.CafeName,
		BookingDate: d.BookingDate.Format("2006-01-02"),
		GuestNumber: d.GuestNumber,
		Status:      string(d.Status),
		TableSeats:  seats,
		SlotWindows: windows,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	}
}
