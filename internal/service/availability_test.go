package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avezov/cafe-booking/internal/model"
	"github.com/avezov/cafe-booking/internal/repository"
)

func TestValidateBookingDate(t *testing.T) {
	now := time.Date(2026, 8, 26, 15, 30, 0, 0, time.UTC)
	assert.NoError(t, ValidateBookingDate(time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC), now))
	assert.NoError(t, ValidateBookingDate(time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC), now),
		"same-day bookings are allowed")
	var ve *ValidationError
	assert.ErrorAs(t, ValidateBookingDate(time.Date(2026, 8, 25, 23, 59, 0, 0, time.UTC), now), &ve)
}

func TestValidateCapacity(t *testing.T) {
	tables := []model.Table{{SeatNumber: 4}, {SeatNumber: 2}}
	assert.NoError(t, ValidateCapacity(tables, 6))
	var ve *ValidationError
	assert.ErrorAs(t, ValidateCapacity(tables, 7), &ve)
	assert.ErrorAs(t, ValidateCapacity(tables, 0), &ve)
}

func TestDedupe(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.Equal(t, []uuid.UUID{a, b}, dedupe([]uuid.UUID{a, b, a, b, a}))
	assert.Empty(t, dedupe(nil))
}

func TestFreeTables(t *testing.T) {
	f := newFakeStore()
	cafeID := f.addCafe(true)
	t1 := f.addTable(cafeID, 4, true)
	t2 := f.addTable(cafeID, 2, true)
	f.addTable(cafeID, 8, false) // inactive, never listed
	s1 := f.addSlot(cafeID, "09:00:00", "10:00:00", true)
	s2 := f.addSlot(cafeID, "10:00:00", "11:00:00", true)

	date := model.DateOnly(time.Now().UTC().Add(48 * time.Hour))
	ctx := context.Background()

	svc, _ := newTestService(f, time.Now().UTC())
	_, err := svc.Create(ctx, uuid.New(), CreateBookingInput{
		CafeID:      cafeID,
		BookingDate: date,
		GuestNumber: 2,
		TableIDs:    []uuid.UUID{t1},
		SlotIDs:     []uuid.UUID{s1},
	})
	require.NoError(t, err)

	avail := NewAvailabilityService(f, tableStore{f}, slotStore{f}, unitStore{f})

	free, err := avail.FreeTables(ctx, cafeID, s1, date)
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, t2, free[0].ID)

	// The other slot is untouched.
	free, err = avail.FreeTables(ctx, cafeID, s2, date)
	require.NoError(t, err)
	assert.Len(t, free, 2)

	// Another day is untouched too.
	free, err = avail.FreeTables(ctx, cafeID, s1, date.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, free, 2)
}

func TestFreeTablesValidation(t *testing.T) {
	f := newFakeStore()
	cafeID := f.addCafe(true)
	f.addTable(cafeID, 4, true)
	slotID := f.addSlot(cafeID, "09:00:00", "10:00:00", true)
	otherCafe := f.addCafe(true)
	foreignSlot := f.addSlot(otherCafe, "09:00:00", "10:00:00", true)

	avail := NewAvailabilityService(f, tableStore{f}, slotStore{f}, unitStore{f})
	ctx := context.Background()
	date := model.DateOnly(time.Now().UTC().Add(48 * time.Hour))

	var ve *ValidationError
	_, err := avail.FreeTables(ctx, cafeID, slotID, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorAs(t, err, &ve)

	_, err = avail.FreeTables(ctx, uuid.New(), slotID, date)
	assert.ErrorIs(t, err, repository.ErrCafeNotFound)

	_, err = avail.FreeTables(ctx, cafeID, uuid.New(), date)
	assert.ErrorIs(t, err, repository.ErrSlotNotFound)

	// A slot from another cafe reads as not found for this cafe.
	_, err = avail.FreeTables(ctx, cafeID, foreignSlot, date)
	assert.ErrorIs(t, err, repository.ErrSlotNotFound)
}
