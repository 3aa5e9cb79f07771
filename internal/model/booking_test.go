package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBookingStatusValid(t *testing.T) {
	assert.True(t, StatusConfirmed.Valid())
	assert.True(t, StatusCanceled.Valid())
	assert.True(t, StatusDone.Valid())
	assert.False(t, BookingStatus("PENDING").Valid())
	assert.False(t, BookingStatus("").Valid())
}

func TestBookingEditable(t *testing.T) {
	today := date(2026, 8, 26)
	tests := []struct {
		name     string
		booking  Booking
		editable bool
	}{
		{"future confirmed", Booking{BookingDate: date(2026, 9, 1), Status: StatusConfirmed}, true},
		{"today confirmed", Booking{BookingDate: today, Status: StatusConfirmed}, true},
		{"past confirmed", Booking{BookingDate: date(2026, 8, 25), Status: StatusConfirmed}, false},
		{"future done", Booking{BookingDate: date(2026, 9, 1), Status: StatusDone}, false},
		{"future canceled", Booking{BookingDate: date(2026, 9, 1), Status: StatusCanceled}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.editable, tt.booking.Editable(today))
		})
	}
}

func TestBookingIsPastIgnoresClockTime(t *testing.T) {
	b := Booking{BookingDate: date(2026, 8, 26)}
	lateToday := time.Date(2026, 8, 26, 23, 59, 0, 0, time.UTC)
	assert.False(t, b.IsPast(lateToday))
	assert.True(t, b.IsPast(date(2026, 8, 27)))
}

func TestBookingBlocking(t *testing.T) {
	assert.True(t, (&Booking{IsActive: true, Status: StatusConfirmed}).Blocking())
	assert.True(t, (&Booking{IsActive: true, Status: StatusDone}).Blocking(),
		"completed bookings keep their holds for the day")
	assert.False(t, (&Booking{IsActive: true, Status: StatusCanceled}).Blocking())
	assert.False(t, (&Booking{IsActive: false, Status: StatusConfirmed}).Blocking())
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2026, 8, 26, 17, 45, 12, 999, time.FixedZone("X", 3*3600))
	got := DateOnly(in)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 0, got.Hour())
	assert.Equal(t, 26, got.Day())
}

func TestUnitsForCrossProduct(t *testing.T) {
	b := &Booking{
		ID:          uuid.New(),
		CafeID:      uuid.New(),
		BookingDate: time.Date(2026, 9, 1, 13, 30, 0, 0, time.UTC),
	}
	tables := []uuid.UUID{uuid.New(), uuid.New()}
	slots := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	units := UnitsFor(b, tables, slots)
	require.Len(t, units, 6)

	seen := map[[2]uuid.UUID]bool{}
	for _, u := range units {
		assert.Equal(t, b.ID, u.BookingID)
		assert.Equal(t, b.CafeID, u.CafeID)
		assert.Equal(t, date(2026, 9, 1), u.BookingDate, "unit dates are truncated to midnight")
		assert.NotEqual(t, uuid.Nil, u.ID)
		seen[[2]uuid.UUID{u.TableID, u.SlotID}] = true
	}
	assert.Len(t, seen, 6, "every (table, slot) pair appears exactly once")
}

func TestUnitsForEmptySelection(t *testing.T) {
	b := &Booking{ID: uuid.New(), BookingDate: date(2026, 9, 1)}
	assert.Empty(t, UnitsFor(b, nil, []uuid.UUID{uuid.New()}))
	assert.Empty(t, UnitsFor(b, []uuid.UUID{uuid.New()}, nil))
}
