package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/avezov/cafe-booking/internal/model"
)

// SlotRepo provides persistence for cafe time slots.  Besides plain
// CRUD it owns the no-overlap rule: a cafe's slot windows must not
// intersect, which is validated here with a range query before every
// insert or window change.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo constructs a SlotRepo with the given DB handle.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// ErrSlotOverlap is returned when a slot's window would intersect an
// existing slot of the same cafe.
var ErrSlotOverlap = errors.New("slot overlaps an existing time window")

// ErrSlotInterval is returned when start_time is not strictly before
// end_time.
var ErrSlotInterval = errors.New("slot start time must be before end time")

const slotColumns = `id, cafe_id, TIME_FORMAT(start_time, '%H:%i:%s'), TIME_FORMAT(end_time, '%H:%i:%s'), description, is_active, created_at, updated_at`

func scanSlot(row interface{ Scan(...any) error }) (*model.Slot, error) {
	var s model.Slot
	if err := row.Scan(&s.ID, &s.CafeID, &s.StartTime, &s.EndTime, &s.Description, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new slot after validating the interval and
// checking for overlap with the cafe's existing windows.  Exact
// duplicates of (cafe_id, start_time, end_time) are additionally
// rejected by the unique key and mapped to ErrDuplicate.
func (r *SlotRepo) Create(ctx context.Context, s *model.Slot) error {
	if !s.ValidInterval() {
		return ErrSlotInterval
	}
	if err := r.ensureNoOverlap(ctx, s.CafeID, s.StartTime, s.EndTime, uuid.Nil); err != nil {
		return err
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	const q = `INSERT INTO slots (id, cafe_id, start_time, end_time, description) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, s.ID, s.CafeID, s.StartTime, s.EndTime, s.Description); err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	const sel = `SELECT ` + slotColumns + ` FROM slots WHERE id = ?`
	got, err := scanSlot(r.db.QueryRowContext(ctx, sel, s.ID))
	if err != nil {
		return err
	}
	*s = *got
	return nil
}

// GetByID fetches a slot by its ID.  It returns ErrSlotNotFound when
// no row is found.
func (r *SlotRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	const q = `SELECT ` + slotColumns + ` FROM slots WHERE id = ?`
	s, err := scanSlot(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return s, nil
}

// ListByCafe returns the cafe's slots ordered by start time.
func (r *SlotRepo) ListByCafe(ctx context.Context, cafeID uuid.UUID, activeOnly bool) ([]model.Slot, error) {
	q := `SELECT ` + slotColumns + ` FROM slots WHERE cafe_id = ?`
	if activeOnly {
		q += ` AND is_active = 1`
	}
	q += ` ORDER BY start_time`
	rows, err := r.db.QueryContext(ctx, q, cafeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]model.Slot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *s)
	}
	return slots, rows.Err()
}

// ActiveIDsForCafe filters the given slot IDs down to those that
// exist, are active and belong to the cafe.
func (r *SlotRepo) ActiveIDsForCafe(ctx context.Context, cafeID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return []uuid.UUID{}, nil
	}
	q := `SELECT id FROM slots WHERE cafe_id = ? AND is_active = 1 AND id IN (` + placeholders(len(ids)) + `)`
	args := append([]any{cafeID}, idArgs(ids)...)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	found := make([]uuid.UUID, 0, len(ids))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found = append(found, id)
	}
	return found, rows.Err()
}

// Update applies non-nil fields.  When the window changes, the
// interval and overlap rules are re-validated with the slot itself
// excluded from the overlap search.
func (r *SlotRepo) Update(ctx context.Context, id uuid.UUID, startTime, endTime, description *string, isActive *bool) (*model.Slot, error) {
	cur, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	windowChanged := false
	if startTime != nil {
		cur.StartTime = *startTime
		windowChanged = true
	}
	if endTime != nil {
		cur.EndTime = *endTime
		windowChanged = true
	}
	if description != nil {
		cur.Description = *description
	}
	if isActive != nil {
		cur.IsActive = *isActive
	}
	if windowChanged {
		if !cur.ValidInterval() {
			return nil, ErrSlotInterval
		}
		if err := r.ensureNoOverlap(ctx, cur.CafeID, cur.StartTime, cur.EndTime, id); err != nil {
			return nil, err
		}
	}
	const q = `UPDATE slots SET start_time = ?, end_time = ?, description = ?, is_active = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, cur.StartTime, cur.EndTime, cur.Description, cur.IsActive, id); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a slot.  Like tables, slots referenced by
// reservation units are protected by a RESTRICT foreign key.
func (r *SlotRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM slots WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSlotNotFound
	}
	return nil
}

// ensureNoOverlap rejects a window intersecting any sibling slot of
// the cafe.  Two windows [a, b) and [c, d) intersect when a < d and
// c < b; slots that merely touch at a boundary are allowed.
func (r *SlotRepo) ensureNoOverlap(ctx context.Context, cafeID uuid.UUID, start, end string, excludeID uuid.UUID) error {
	q := `SELECT EXISTS(SELECT 1 FROM slots WHERE cafe_id = ? AND start_time < ? AND end_time > ?`
	args := []any{cafeID, end, start}
	if excludeID != uuid.Nil {
		q += ` AND id <> ?`
		args = append(args, excludeID)
	}
	q += `)`
	var overlaps bool
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&overlaps); err != nil {
		return err
	}
	if overlaps {
		return ErrSlotOverlap
	}
	return nil
}
