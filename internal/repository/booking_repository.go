package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avezov/cafe-booking/internal/model"
)

// BookingRepo persists bookings together with their reservation
// units.  Creation and table/slot changes run in a single
// transaction: the booking row and every unit of the cross product
// commit together or not at all, and a duplicate-key rejection on
// uq_reservation_atom rolls the whole booking back as
// ErrUnitConflict.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, user_id, cafe_id, booking_date, guest_number, status, note, is_active, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	var note sql.NullString
	if err := row.Scan(&b.ID, &b.UserID, &b.CafeID, &b.BookingDate, &b.GuestNumber, &b.Status, &note, &b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if note.Valid {
		b.Note = &note.String
	}
	return &b, nil
}

// CreateWithUnits inserts a booking and the full cross product of its
// reservation units in one transaction.  When any unit collides with
// an existing hold, MySQL rejects the bulk insert with a duplicate
// key error, the transaction rolls back and ErrUnitConflict is
// returned; no partial booking survives.
func (r *BookingRepo) CreateWithUnits(ctx context.Context, b *model.Booking, tableIDs, slotIDs []uuid.UUID) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.BookingDate = model.DateOnly(b.BookingDate)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const ins = `INSERT INTO bookings (id, user_id, cafe_id, booking_date, guest_number, status, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, ins, b.ID, b.UserID, b.CafeID, b.BookingDate, b.GuestNumber, model.StatusConfirmed, b.Note); err != nil {
		return err
	}
	if err := insertUnitsTx(ctx, tx, model.UnitsFor(b, tableIDs, slotIDs)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	got, err := r.GetByID(ctx, b.ID)
	if err != nil {
		return err
	}
	*b = *got
	return nil
}

// UpdateWithUnits writes the booking row back and, when replaceUnits
// is set, swaps its reservation units for the cross product of the
// given table and slot selections.  The delete-then-insert runs in
// the same transaction as the row update, so a conflicting new
// selection rolls everything back with ErrUnitConflict and the old
// holds stay in place.
func (r *BookingRepo) UpdateWithUnits(ctx context.Context, b *model.Booking, replaceUnits bool, tableIDs, slotIDs []uuid.UUID) error {
	b.BookingDate = model.DateOnly(b.BookingDate)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const upd = `UPDATE bookings SET booking_date = ?, guest_number = ?, status = ?, note = ?, is_active = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, upd, b.BookingDate, b.GuestNumber, b.Status, b.Note, b.IsActive, b.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is also 0 for a no-change update, so confirm
		// absence before reporting not found.
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE id = ?)`, b.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrBookingNotFound
		}
	}

	if replaceUnits {
		if _, err := tx.ExecContext(ctx, `DELETE FROM reservation_units WHERE booking_id = ?`, b.ID); err != nil {
			return err
		}
		if err := insertUnitsTx(ctx, tx, model.UnitsFor(b, tableIDs, slotIDs)); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	got, err := r.GetByID(ctx, b.ID)
	if err != nil {
		return err
	}
	*b = *got
	return nil
}

// insertUnitsTx bulk-inserts reservation units inside tx.  A 1062 on
// uq_reservation_atom maps to ErrUnitConflict.
func insertUnitsTx(ctx context.Context, tx *sql.Tx, units []model.ReservationUnit) error {
	if len(units) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO reservation_units (id, booking_id, cafe_id, table_id, slot_id, booking_date) VALUES `)
	args := make([]any, 0, len(units)*6)
	for i, u := range units {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?)")
		args = append(args, u.ID, u.BookingID, u.CafeID, u.TableID, u.SlotID, u.BookingDate)
	}
	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		if isDuplicateKey(err) {
			return ErrUnitConflict
		}
		return err
	}
	return nil
}

// GetByID fetches the bare booking row.  It returns ErrBookingNotFound
// when no row exists.
func (r *BookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// GetDetail fetches a booking joined with its cafe name and the
// tables and slots its units resolve to.
func (r *BookingRepo) GetDetail(ctx context.Context, id uuid.UUID) (*model.BookingDetail, error) {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &model.BookingDetail{Booking: *b}
	if err := r.db.QueryRowContext(ctx, `SELECT name FROM cafes WHERE id = ?`, b.CafeID).Scan(&d.CafeName); err != nil {
		return nil, err
	}
	if err := r.fillSelections(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ListFilter narrows List results.  Zero values mean "no filter".
type ListFilter struct {
	UserID uuid.UUID
	CafeID uuid.UUID
	Date   *time.Time
	Status model.BookingStatus
}

// List returns booking details matching the filter, newest date
// first.  Soft-deleted bookings are always excluded.
func (r *BookingRepo) List(ctx context.Context, f ListFilter) ([]model.BookingDetail, error) {
	q := `SELECT b.` + strings.ReplaceAll(bookingColumns, ", ", ", b.") + `, c.name
		FROM bookings b JOIN cafes c ON c.id = b.cafe_id
		WHERE b.is_active = 1`
	args := []any{}
	if f.UserID != uuid.Nil {
		q += ` AND b.user_id = ?`
		args = append(args, f.UserID)
	}
	if f.CafeID != uuid.Nil {
		q += ` AND b.cafe_id = ?`
		args = append(args, f.CafeID)
	}
	if f.Date != nil {
		q += ` AND b.booking_date = ?`
		args = append(args, model.DateOnly(*f.Date))
	}
	if f.Status != "" {
		q += ` AND b.status = ?`
		args = append(args, f.Status)
	}
	q += ` ORDER BY b.booking_date DESC, b.created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]model.BookingDetail, 0)
	for rows.Next() {
		var d model.BookingDetail
		var note sql.NullString
		if err := rows.Scan(&d.ID, &d.UserID, &d.CafeID, &d.BookingDate, &d.GuestNumber, &d.Status, &note, &d.IsActive, &d.CreatedAt, &d.UpdatedAt, &d.CafeName); err != nil {
			return nil, err
		}
		if note.Valid {
			d.Note = &note.String
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range details {
		if err := r.fillSelections(ctx, &details[i]); err != nil {
			return nil, err
		}
	}
	return details, nil
}

// fillSelections resolves a booking's units to distinct tables and
// slots.
func (r *BookingRepo) fillSelections(ctx context.Context, d *model.BookingDetail) error {
	const tq = `SELECT DISTINCT t.id, t.cafe_id, t.seat_number, t.description, t.is_active, t.created_at, t.updated_at
		FROM reservation_units u JOIN cafe_tables t ON t.id = u.table_id
		WHERE u.booking_id = ? ORDER BY t.seat_number`
	rows, err := r.db.QueryContext(ctx, tq, d.ID)
	if err != nil {
		return err
	}
	d.Tables = make([]model.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			rows.Close()
			return err
		}
		d.Tables = append(d.Tables, *t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	const sq = `SELECT DISTINCT s.id, s.cafe_id, TIME_FORMAT(s.start_time, '%H:%i:%s'), TIME_FORMAT(s.end_time, '%H:%i:%s'), s.description, s.is_active, s.created_at, s.updated_at
		FROM reservation_units u JOIN slots s ON s.id = u.slot_id
		WHERE u.booking_id = ? ORDER BY s.start_time`
	rows, err = r.db.QueryContext(ctx, sq, d.ID)
	if err != nil {
		return err
	}
	d.Slots = make([]model.Slot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			rows.Close()
			return err
		}
		d.Slots = append(d.Slots, *s)
	}
	rows.Close()
	return rows.Err()
}

// Delete soft-deletes a booking and removes its reservation units in
// one transaction.  The units must go, not just stop matching the
// conflict queries: uq_reservation_atom knows nothing about booking
// state, so a lingering unit row would keep rejecting new holds for
// the freed combination.
func (r *BookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE bookings SET is_active = 0 WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM reservation_units WHERE booking_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}
