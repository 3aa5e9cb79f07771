package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avezov/cafe-booking/internal/model"
	"github.com/avezov/cafe-booking/internal/queue"
	"github.com/avezov/cafe-booking/internal/repository"
)

// fakeStore is an in-memory implementation of every store interface
// the booking logic uses.  It mirrors the database's behavior where
// it matters: CreateWithUnits and UpdateWithUnits hold a mutex and
// enforce the (table, slot, date) uniqueness atomically, so tests can
// race two bookings and still get exactly one winner.
type fakeStore struct {
	mu       sync.Mutex
	cafes    map[uuid.UUID]model.Cafe
	managers map[uuid.UUID]map[uuid.UUID]bool
	tables   map[uuid.UUID]model.Table
	slots    map[uuid.UUID]model.Slot
	bookings map[uuid.UUID]model.Booking
	units    map[string]model.ReservationUnit // keyed by table|slot|date
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		cafes:    map[uuid.UUID]model.Cafe{},
		managers: map[uuid.UUID]map[uuid.UUID]bool{},
		tables:   map[uuid.UUID]model.Table{},
		slots:    map[uuid.UUID]model.Slot{},
		bookings: map[uuid.UUID]model.Booking{},
		units:    map[string]model.ReservationUnit{},
	}
}

func unitKey(tableID, slotID uuid.UUID, date time.Time) string {
	return tableID.String() + "|" + slotID.String() + "|" + model.DateOnly(date).Format("2006-01-02")
}

// ----- seeding helpers -----

func (f *fakeStore) addCafe(active bool) uuid.UUID {
	id := uuid.New()
	f.cafes[id] = model.Cafe{ID: id, Name: "Cafe " + id.String()[:8], IsActive: active}
	return id
}

func (f *fakeStore) addManager(cafeID, userID uuid.UUID) {
	if f.managers[cafeID] == nil {
		f.managers[cafeID] = map[uuid.UUID]bool{}
	}
	f.managers[cafeID][userID] = true
}

func (f *fakeStore) addTable(cafeID uuid.UUID, seats int, active bool) uuid.UUID {
	id := uuid.New()
	f.tables[id] = model.Table{ID: id, CafeID: cafeID, SeatNumber: seats, IsActive: active}
	return id
}

func (f *fakeStore) addSlot(cafeID uuid.UUID, start, end string, active bool) uuid.UUID {
	id := uuid.New()
	f.slots[id] = model.Slot{ID: id, CafeID: cafeID, StartTime: start, EndTime: end, IsActive: active}
	return id
}

// ----- CafeStore -----

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*model.Cafe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cafes[id]
	if !ok {
		return nil, repository.ErrCafeNotFound
	}
	return &c, nil
}

func (f *fakeStore) IsManager(_ context.Context, cafeID, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.managers[cafeID][userID], nil
}

// ----- TableStore / SlotStore -----

// tableStore and slotStore expose the fake under distinct method sets
// where signatures collide (ActiveIDsForCafe, GetByID).
type tableStore struct{ *fakeStore }
type slotStore struct{ *fakeStore }

func (f tableStore) ByIDs(_ context.Context, ids []uuid.UUID) ([]model.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Table, 0, len(ids))
	for _, id := range ids {
		if t, ok := f.tables[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f tableStore) ActiveIDsForCafe(_ context.Context, cafeID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if t, ok := f.tables[id]; ok && t.IsActive && t.CafeID == cafeID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f tableStore) ListByCafe(_ context.Context, cafeID uuid.UUID, activeOnly bool) ([]model.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Table{}
	for _, t := range f.tables {
		if t.CafeID == cafeID && (!activeOnly || t.IsActive) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f slotStore) GetByID(_ context.Context, id uuid.UUID) (*model.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[id]
	if !ok {
		return nil, repository.ErrSlotNotFound
	}
	return &s, nil
}

func (f slotStore) ActiveIDsForCafe(_ context.Context, cafeID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if s, ok := f.slots[id]; ok && s.IsActive && s.CafeID == cafeID {
			out = append(out, id)
		}
	}
	return out, nil
}

// ----- UnitStore -----

type unitStore struct{ *fakeStore }

func (f unitStore) HasConflict(_ context.Context, tableID, slotID uuid.UUID, date time.Time, exclude uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.units[unitKey(tableID, slotID, date)]
	if !ok {
		return false, nil
	}
	return u.BookingID != exclude, nil
}

func (f unitStore) HeldTableIDs(_ context.Context, cafeID, slotID uuid.UUID, date time.Time) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []uuid.UUID{}
	for _, u := range f.units {
		if u.CafeID == cafeID && u.SlotID == slotID && u.BookingDate.Equal(model.DateOnly(date)) {
			out = append(out, u.TableID)
		}
	}
	return out, nil
}

// ----- BookingStore -----

type bookingStore struct{ *fakeStore }

func (f bookingStore) CreateWithUnits(_ context.Context, b *model.Booking, tableIDs, slotIDs []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.BookingDate = model.DateOnly(b.BookingDate)
	units := model.UnitsFor(b, tableIDs, slotIDs)
	for _, u := range units {
		if _, taken := f.units[unitKey(u.TableID, u.SlotID, u.BookingDate)]; taken {
			return repository.ErrUnitConflict
		}
	}
	for _, u := range units {
		f.units[unitKey(u.TableID, u.SlotID, u.BookingDate)] = u
	}
	f.bookings[b.ID] = *b
	return nil
}

func (f bookingStore) UpdateWithUnits(_ context.Context, b *model.Booking, replace bool, tableIDs, slotIDs []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bookings[b.ID]; !ok {
		return repository.ErrBookingNotFound
	}
	b.BookingDate = model.DateOnly(b.BookingDate)
	if replace {
		for k, u := range f.units {
			if u.BookingID == b.ID {
				delete(f.units, k)
			}
		}
		units := model.UnitsFor(b, tableIDs, slotIDs)
		for _, u := range units {
			if _, taken := f.units[unitKey(u.TableID, u.SlotID, u.BookingDate)]; taken {
				return repository.ErrUnitConflict
			}
		}
		for _, u := range units {
			f.units[unitKey(u.TableID, u.SlotID, u.BookingDate)] = u
		}
	}
	f.bookings[b.ID] = *b
	return nil
}

func (f bookingStore) GetByID(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return &b, nil
}

func (f bookingStore) GetDetail(_ context.Context, id uuid.UUID) (*model.BookingDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return f.detailLocked(b), nil
}

func (f *fakeStore) detailLocked(b model.Booking) *model.BookingDetail {
	d := &model.BookingDetail{Booking: b, CafeName: f.cafes[b.CafeID].Name, Tables: []model.Table{}, Slots: []model.Slot{}}
	seenT := map[uuid.UUID]bool{}
	seenS := map[uuid.UUID]bool{}
	for _, u := range f.units {
		if u.BookingID != b.ID {
			continue
		}
		if !seenT[u.TableID] {
			seenT[u.TableID] = true
			d.Tables = append(d.Tables, f.tables[u.TableID])
		}
		if !seenS[u.SlotID] {
			seenS[u.SlotID] = true
			d.Slots = append(d.Slots, f.slots[u.SlotID])
		}
	}
	return d
}

func (f bookingStore) List(_ context.Context, flt repository.ListFilter) ([]model.BookingDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.BookingDetail{}
	for _, b := range f.bookings {
		if !b.IsActive {
			continue
		}
		if flt.UserID != uuid.Nil && b.UserID != flt.UserID {
			continue
		}
		if flt.CafeID != uuid.Nil && b.CafeID != flt.CafeID {
			continue
		}
		if flt.Date != nil && !b.BookingDate.Equal(model.DateOnly(*flt.Date)) {
			continue
		}
		if flt.Status != "" && b.Status != flt.Status {
			continue
		}
		out = append(out, *f.detailLocked(b))
	}
	return out, nil
}

func (f bookingStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || !b.IsActive {
		return repository.ErrBookingNotFound
	}
	b.IsActive = false
	f.bookings[id] = b
	for k, u := range f.units {
		if u.BookingID == id {
			delete(f.units, k)
		}
	}
	return nil
}

// ----- Notifier -----

type recordingNotifier struct {
	mu      sync.Mutex
	created []queue.BookingEvent
	updated []queue.BookingEvent
}

func (n *recordingNotifier) BookingCreated(_ context.Context, ev queue.BookingEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, ev)
}

func (n *recordingNotifier) BookingUpdated(_ context.Context, ev queue.BookingEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updated = append(n.updated, ev)
}

// newTestService wires a BookingService over the fake with a frozen
// clock.
func newTestService(f *fakeStore, now time.Time) (*BookingService, *recordingNotifier) {
	n := &recordingNotifier{}
	svc := NewBookingService(f, tableStore{f}, slotStore{f}, unitStore{f}, bookingStore{f}, n)
	svc.now = func() time.Time { return now }
	return svc, n
}
