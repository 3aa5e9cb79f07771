package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/avezov/cafe-booking/internal/model"
)

// TableRepo provides persistence for cafe tables.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo constructs a TableRepo with the given DB handle.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

const tableColumns = `id, cafe_id, seat_number, description, is_active, created_at, updated_at`

func scanTable(row interface{ Scan(...any) error }) (*model.Table, error) {
	var t model.Table
	var desc sql.NullString
	if err := row.Scan(&t.ID, &t.CafeID, &t.SeatNumber, &desc, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		t.Description = &desc.String
	}
	return &t, nil
}

// Create inserts a new table for a cafe.  The (cafe_id, seat_number)
// unique key surfaces as ErrDuplicate.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	const q = `INSERT INTO cafe_tables (id, cafe_id, seat_number, description) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, t.ID, t.CafeID, t.SeatNumber, t.Description); err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	const sel = `SELECT ` + tableColumns + ` FROM cafe_tables WHERE id = ?`
	got, err := scanTable(r.db.QueryRowContext(ctx, sel, t.ID))
	if err != nil {
		return err
	}
	*t = *got
	return nil
}

// GetByID fetches a table by its ID regardless of cafe.  It returns
// ErrTableNotFound when no row is found.
func (r *TableRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Table, error) {
	const q = `SELECT ` + tableColumns + ` FROM cafe_tables WHERE id = ?`
	t, err := scanTable(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return t, nil
}

// ListByCafe returns the cafe's tables ordered by seat number.
func (r *TableRepo) ListByCafe(ctx context.Context, cafeID uuid.UUID, activeOnly bool) ([]model.Table, error) {
	q := `SELECT ` + tableColumns + ` FROM cafe_tables WHERE cafe_id = ?`
	if activeOnly {
		q += ` AND is_active = 1`
	}
	q += ` ORDER BY seat_number`
	rows, err := r.db.QueryContext(ctx, q, cafeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tables := make([]model.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, *t)
	}
	return tables, rows.Err()
}

// ByIDs loads the tables matching the given IDs.  IDs that resolve to
// nothing are simply absent from the result; callers compare lengths
// when they need full resolution.  Passing an empty slice returns an
// empty result without touching the database.
func (r *TableRepo) ByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Table, error) {
	if len(ids) == 0 {
		return []model.Table{}, nil
	}
	q := `SELECT ` + tableColumns + ` FROM cafe_tables WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := r.db.QueryContext(ctx, q, idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tables := make([]model.Table, 0, len(ids))
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, *t)
	}
	return tables, rows.Err()
}

// ActiveIDsForCafe filters the given table IDs down to those that
// exist, are active and belong to the cafe.  The booking service uses
// the result to detect tables that are missing, deactivated or owned
// by another cafe.
func (r *TableRepo) ActiveIDsForCafe(ctx context.Context, cafeID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return []uuid.UUID{}, nil
	}
	q := `SELECT id FROM cafe_tables WHERE cafe_id = ? AND is_active = 1 AND id IN (` + placeholders(len(ids)) + `)`
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

// Update applies non-nil fields and returns the refreshed record.
func (r *TableRepo) Update(ctx context.Context, id uuid.UUID, seatNumber *int, description *string, isActive *bool) (*model.Table, error) {
	cur, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if seatNumber != nil {
		cur.SeatNumber = *seatNumber
	}
	if description != nil {
		cur.Description = description
	}
	if isActive != nil {
		cur.IsActive = *isActive
	}
	const q = `UPDATE cafe_tables SET seat_number = ?, description = ?, is_active = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, cur.SeatNumber, cur.Description, cur.IsActive, id); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a table.  The RESTRICT foreign key on
// reservation_units rejects deletion while any booking still holds
// the table; that surfaces to the caller as a plain error.
func (r *TableRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cafe_tables WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTableNotFound
	}
	return nil
}

// placeholders builds a "?, ?, ?" list of the given length for IN clauses.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// idArgs converts UUIDs to the []any form ExecContext expects.
func idArgs(ids []uuid.UUID) []any {
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}
