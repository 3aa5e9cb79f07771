package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avezov/cafe-booking/internal/model"
	"github.com/avezov/cafe-booking/internal/repository"
)

var (
	testNow   = time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	tomorrow  = time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	yesterday = time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
)

// fixture builds a cafe with two four-seat tables and two slots.
type fixture struct {
	store  *fakeStore
	svc    *BookingService
	notif  *recordingNotifier
	cafeID uuid.UUID
	t1, t2 uuid.UUID
	s1, s2 uuid.UUID
	userID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFakeStore()
	cafeID := f.addCafe(true)
	fx := &fixture{
		store:  f,
		cafeID: cafeID,
		t1:     f.addTable(cafeID, 4, true),
		t2:     f.addTable(cafeID, 4, true),
		s1:     f.addSlot(cafeID, "09:00:00", "10:00:00", true),
		s2:     f.addSlot(cafeID, "10:00:00", "11:00:00", true),
		userID: uuid.New(),
	}
	fx.svc, fx.notif = newTestService(f, testNow)
	return fx
}

func (fx *fixture) createInput() CreateBookingInput {
	return CreateBookingInput{
		CafeID:      fx.cafeID,
		BookingDate: tomorrow,
		GuestNumber: 2,
		TableIDs:    []uuid.UUID{fx.t1},
		SlotIDs:     []uuid.UUID{fx.s1},
	}
}

func TestCreateBooking(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	d, err := fx.svc.Create(ctx, fx.userID, CreateBookingInput{
		CafeID:      fx.cafeID,
		BookingDate: tomorrow,
		GuestNumber: 5,
		TableIDs:    []uuid.UUID{fx.t1, fx.t2},
		SlotIDs:     []uuid.UUID{fx.s1, fx.s2},
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusConfirmed, d.Status)
	assert.Equal(t, fx.userID, d.UserID)
	assert.Len(t, d.Tables, 2)
	assert.Len(t, d.Slots, 2)
	assert.Len(t, fx.store.units, 4, "two tables x two slots")
	require.Len(t, fx.notif.created, 1)
	assert.Equal(t, d.ID.String(), fx.notif.created[0].BookingID)
}

func TestCreateBookingValidation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	otherCafe := fx.store.addCafe(true)
	foreignTable := fx.store.addTable(otherCafe, 4, true)
	inactiveSlot := fx.store.addSlot(fx.cafeID, "12:00:00", "13:00:00", false)
	closedCafe := fx.store.addCafe(false)

	tests := []struct {
		name   string
		mutate func(*CreateBookingInput)
	}{
		{"past date", func(in *CreateBookingInput) { in.BookingDate = yesterday }},
		{"no tables", func(in *CreateBookingInput) { in.TableIDs = nil }},
		{"no slots", func(in *CreateBookingInput) { in.SlotIDs = nil }},
		{"zero guests", func(in *CreateBookingInput) { in.GuestNumber = 0 }},
		{"over capacity", func(in *CreateBookingInput) { in.GuestNumber = 5 }},
		{"foreign table", func(in *CreateBookingInput) { in.TableIDs = []uuid.UUID{foreignTable} }},
		{"unknown table", func(in *CreateBookingInput) { in.TableIDs = []uuid.UUID{uuid.New()} }},
		{"inactive slot", func(in *CreateBookingInput) { in.SlotIDs = []uuid.UUID{inactiveSlot} }},
		{"inactive cafe", func(in *CreateBookingInput) { in.CafeID = closedCafe }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := fx.createInput()
			tt.mutate(&in)
			_, err := fx.svc.Create(ctx, fx.userID, in)
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
			assert.Empty(t, fx.store.bookings, "no booking may survive a rejected request")
		})
	}
}

func TestCreateBookingTodayAllowed(t *testing.T) {
	fx := newFixture(t)
	in := fx.createInput()
	in.BookingDate = time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	_, err := fx.svc.Create(context.Background(), fx.userID, in)
	assert.NoError(t, err)
}

func TestCreateBookingConflict(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, fx.userID, fx.createInput())
	require.NoError(t, err)

	// Same (table, slot, date) by another user is rejected.
	_, err = fx.svc.Create(ctx, uuid.New(), fx.createInput())
	assert.ErrorIs(t, err, repository.ErrUnitConflict)

	// A different slot for the same table is fine.
	in := fx.createInput()
	in.SlotIDs = []uuid.UUID{fx.s2}
	_, err = fx.svc.Create(ctx, uuid.New(), in)
	assert.NoError(t, err)

	// Same slot, different table is fine too.
	in = fx.createInput()
	in.TableIDs = []uuid.UUID{fx.t2}
	_, err = fx.svc.Create(ctx, uuid.New(), in)
	assert.NoError(t, err)
}

func TestCreateBookingPartialOverlapRejected(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, fx.userID, fx.createInput())
	require.NoError(t, err)

	// A multi-table, multi-slot request containing one taken pair
	// must fail entirely.
	in := CreateBookingInput{
		CafeID:      fx.cafeID,
		BookingDate: tomorrow,
		GuestNumber: 2,
		TableIDs:    []uuid.UUID{fx.t1, fx.t2},
		SlotIDs:     []uuid.UUID{fx.s1, fx.s2},
	}
	_, err = fx.svc.Create(ctx, uuid.New(), in)
	assert.ErrorIs(t, err, repository.ErrUnitConflict)
	assert.Len(t, fx.store.bookings, 1, "the losing request leaves nothing behind")
}

func TestConcurrentCreateExactlyOneWinner(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = fx.svc.Create(ctx, uuid.New(), fx.createInput())
		}(i)
	}
	close(start)
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, repository.ErrUnitConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, wins, "exactly one request may hold the unit")
	assert.Equal(t, attempts-1, conflicts)
	assert.Len(t, fx.store.bookings, 1)
}

func TestCancelFreesCapacity(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	d, err := fx.svc.Create(ctx, fx.userID, fx.createInput())
	require.NoError(t, err)

	canceled := model.StatusCanceled
	got, err := fx.svc.Update(ctx, fx.userID, model.RoleUser, d.ID, UpdateBookingInput{Status: &canceled})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCanceled, got.Status)
	assert.Empty(t, fx.store.units, "cancellation releases every hold")

	// The freed combination is immediately bookable by someone else.
	_, err = fx.svc.Create(ctx, uuid.New(), fx.createInput())
	assert.NoError(t, err)
	require.Len(t, fx.notif.updated, 1)
}

func TestCanceledBookingIsFrozen(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	d, err := fx.svc.Create(ctx, fx.userID, fx.createInput())
	require.NoError(t, err)
	canceled := model.StatusCanceled
	_, err = fx.svc.Update(ctx, fx.userID, model.RoleUser, d.ID, UpdateBookingInput{Status: &canceled})
	require.NoError(t, err)

	confirmed := model.StatusConfirmed
	_, err = fx.svc.Update(ctx, fx.userID, model.RoleUser, d.ID, UpdateBookingInput{Status: &confirmed})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve, "canceled bookings cannot be reactivated")

	three := 3
	_, err = fx.svc.Update(ctx, fx.userID, model.RoleUser, d.ID, UpdateBookingInput{GuestNumber: &three})
	assert.ErrorAs(t, err, &ve)
}

func TestDoneBookingIsImmutableButBlocks(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	d, err := fx.svc.Create(ctx, fx.userID, fx.createInput())
	require.NoError(t, err)

	done := model.StatusDone
	_, err = fx.svc.Update(ctx, fx.userID, model.RoleUser, d.ID, UpdateBookingInput{Status: &done})
	require.NoError(t, err)

	var ve *ValidationError
	three := 3
	_, err = fx.svc.Update(ctx, fx.userID, model.RoleUser, d.ID, UpdateBookingInput{GuestNumber: &three})
	assert.ErrorAs(t, err, &ve)

	err = fx.svc.Delete(ctx, fx.userID, model.RoleUser, d.ID)
	assert.ErrorAs(t, err, &ve)

	// Completed bookings keep their holds.
	_, err = fx.svc.Create(ctx, uuid.New(), fx.createInput())
	assert.ErrorIs(t, err, repository.ErrUnitConflict)
}

func TestUpdateReschedule(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	d, err := fx.svc.Create(ctx, fx.userID, fx.createInput())
	require.NoError(t, err)

	nextWeek := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	got, err := fx.svc.Update(ctx, fx.userID, model.RoleUser, d.ID, UpdateBookingInput{BookingDate: &nextWeek})
	require.NoError(t, err)
	assert.Equal(t, nextWeek, got.BookingDate)

	// The old date is free again, the new one is held.
	_, err = fx.svc.Create(ctx, uuid.New(), fx.createInput())
	assert.NoError(t, err)
	in := fx.createInput()
	in.BookingDate = nextWeek
	_, err = fx.svc.Create(ctx, uuid.New(), in)
	assert.ErrorIs(t, err, repository.ErrUnitConflict)
}

func TestUpdateSelectionExcludesOwnHolds(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	d, err := fx.svc.Create(ctx, fx.userID, fx.createInput())
	require.NoError(t, err)

	// Growing the selection while keeping the original pair must not
	// trip over the booking's own holds.
	got, err := fx.svc.Update(ctx, fx.userID, model.RoleUser, d.ID, UpdateBookingInput{
		TableIDs: []uuid.UUID{fx.t1, fx.t2},
	})
	require.NoError(t, err)
	assert.Len(t, got.Tables, 2)
	assert.Len(t, fx.store.units, 2)
}

func TestUpdateSelectionConflictKeepsOldHolds(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	d, err := fx.svc.Create(ctx, fx.userID, fx.createInput())
	require.NoError(t, err)
	in := fx.createInput()
	in.TableIDs = []uuid.UUID{fx.t2}
	_, err = fx.svc.Create(ctx, uuid.New(), in)
	require.NoError(t, err)

	// Moving onto the other user's table fails and changes nothing.
	_, err = fx.svc.Update(ctx, fx.userID, model.RoleUser, d.ID, UpdateBookingInput{
		TableIDs: []uuid.UUID{fx.t2},
	})
	assert.ErrorIs(t, err, repository.ErrUnitConflict)
}

func TestPastBookingFrozen(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	d, err := fx.svc.Create(ctx, fx.userID, fx.createInput())
	require.NoError(t, err)

	// Jump the clock past the booking date.
	fx.svc.now = func() time.Time { return testNow.AddDate(0, 0, 7) }

	var ve *ValidationError
	three := 3
	_, err = fx.svc.Update(ctx, fx.userID, model.RoleUser, d.ID, UpdateBookingInput{GuestNumber: &three})
	assert.ErrorAs(t, err, &ve)
	err = fx.svc.Delete(ctx, fx.userID, model.RoleUser, d.ID)
	assert.ErrorAs(t, err, &ve)
}

func TestBookingAuthorization(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	d, err := fx.svc.Create(ctx, fx.userID, fx.createInput())
	require.NoError(t, err)

	stranger := uuid.New()
	_, err = fx.svc.Get(ctx, stranger, model.RoleUser, d.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)
	err = fx.svc.Delete(ctx, stranger, model.RoleUser, d.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	manager := uuid.New()
	fx.store.addManager(fx.cafeID, manager)
	_, err = fx.svc.Get(ctx, manager, model.RoleManager, d.ID)
	assert.NoError(t, err)

	_, err = fx.svc.Get(ctx, uuid.New(), model.RoleAdmin, d.ID)
	assert.NoError(t, err)

	otherManager := uuid.New()
	fx.store.addManager(fx.store.addCafe(true), otherManager)
	_, err = fx.svc.Get(ctx, otherManager, model.RoleManager, d.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestListScoping(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Create(ctx, fx.userID, fx.createInput())
	require.NoError(t, err)
	in := fx.createInput()
	in.SlotIDs = []uuid.UUID{fx.s2}
	other := uuid.New()
	_, err = fx.svc.Create(ctx, other, in)
	require.NoError(t, err)

	// Users see only their own bookings, even with a cafe filter.
	ds, err := fx.svc.List(ctx, fx.userID, model.RoleUser, repository.ListFilter{CafeID: fx.cafeID})
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, fx.userID, ds[0].UserID)

	// Managers see the whole cafe.
	manager := uuid.New()
	fx.store.addManager(fx.cafeID, manager)
	ds, err = fx.svc.List(ctx, manager, model.RoleManager, repository.ListFilter{CafeID: fx.cafeID})
	require.NoError(t, err)
	assert.Len(t, ds, 2)

	// A manager of another cafe is rejected.
	outsider := uuid.New()
	_, err = fx.svc.List(ctx, outsider, model.RoleManager, repository.ListFilter{CafeID: fx.cafeID})
	assert.ErrorIs(t, err, repository.ErrForbidden)

	// Admins see everything.
	ds, err = fx.svc.List(ctx, uuid.New(), model.RoleAdmin, repository.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, ds, 2)
}

func TestDeleteFreesCapacity(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	d, err := fx.svc.Create(ctx, fx.userID, fx.createInput())
	require.NoError(t, err)

	require.NoError(t, fx.svc.Delete(ctx, fx.userID, model.RoleUser, d.ID))
	assert.Empty(t, fx.store.units)

	_, err = fx.svc.Create(ctx, uuid.New(), fx.createInput())
	assert.NoError(t, err)
}

func TestDuplicateIDsInSelectionCollapse(t *testing.T) {
	fx := newFixture(t)
	in := fx.createInput()
	in.TableIDs = []uuid.UUID{fx.t1, fx.t1, fx.t1}
	in.SlotIDs = []uuid.UUID{fx.s1, fx.s1}

	d, err := fx.svc.Create(context.Background(), fx.userID, in)
	require.NoError(t, err)
	assert.Len(t, d.Tables, 1)
	assert.Len(t, d.Slots, 1)
	assert.Len(t, fx.store.units, 1)
}
