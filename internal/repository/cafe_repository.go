package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/avezov/cafe-booking/internal/model"
)

// CafeRepo encapsulates all database queries related to cafes.  It
// depends on a sql.DB connection which should be configured elsewhere.
type CafeRepo struct {
	db *sql.DB
}

// NewCafeRepo constructs a CafeRepo with the provided DB handle.  This
// allows dependency injection of the database in tests and at startup.
func NewCafeRepo(db *sql.DB) *CafeRepo { return &CafeRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions.
func (r *CafeRepo) DB() *sql.DB { return r.db }

const cafeColumns = `id, name, address, phone, description, is_active, created_at, updated_at`

func scanCafe(row interface{ Scan(...any) error }) (*model.Cafe, error) {
	var c model.Cafe
	var desc sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &desc, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		c.Description = &desc.String
	}
	return &c, nil
}

// Create inserts a new cafe.  The caller supplies name, address and
// phone; the ID is generated here.  Violations of the unique keys on
// name/address/phone are reported as ErrDuplicate.
func (r *CafeRepo) Create(ctx context.Context, c *model.Cafe) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	const q = `INSERT INTO cafes (id, name, address, phone, description) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, c.ID, c.Name, c.Address, c.Phone, c.Description); err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	// Query back to populate defaults and timestamps.
	const sel = `SELECT ` + cafeColumns + ` FROM cafes WHERE id = ?`
	got, err := scanCafe(r.db.QueryRowContext(ctx, sel, c.ID))
	if err != nil {
		return err
	}
	*c = *got
	return nil
}

// GetByID fetches a cafe by its ID.  It returns ErrCafeNotFound when
// no row exists.
func (r *CafeRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Cafe, error) {
	const q = `SELECT ` + cafeColumns + ` FROM cafes WHERE id = ?`
	c, err := scanCafe(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCafeNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns cafes ordered by name.  When activeOnly is set,
// deactivated cafes are filtered out.
func (r *CafeRepo) List(ctx context.Context, activeOnly bool) ([]model.Cafe, error) {
	q := `SELECT ` + cafeColumns + ` FROM cafes`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cafes := make([]model.Cafe, 0)
	for rows.Next() {
		c, err := scanCafe(rows)
		if err != nil {
			return nil, err
		}
		cafes = append(cafes, *c)
	}
	return cafes, rows.Err()
}

// Update applies non-nil fields to the cafe row and returns the
// refreshed record.  ErrCafeNotFound is returned when the cafe does
// not exist.
func (r *CafeRepo) Update(ctx context.Context, id uuid.UUID, name, address, phone, description *string, isActive *bool) (*model.Cafe, error) {
	cur, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		cur.Name = *name
	}
	if address != nil {
		cur.Address = *address
	}
	if phone != nil {
		cur.Phone = *phone
	}
	if description != nil {
		cur.Description = description
	}
	if isActive != nil {
		cur.IsActive = *isActive
	}
	const q = `UPDATE cafes SET name = ?, address = ?, phone = ?, description = ?, is_active = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, cur.Name, cur.Address, cur.Phone, cur.Description, cur.IsActive, id); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// AddManager assigns a manager user to a cafe.  Re-assigning an
// existing manager is a no-op.
func (r *CafeRepo) AddManager(ctx context.Context, cafeID, userID uuid.UUID) error {
	const q = `INSERT INTO cafe_managers (cafe_id, user_id) VALUES (?, ?)`
	if _, err := r.db.ExecContext(ctx, q, cafeID, userID); err != nil {
		if isDuplicateKey(err) {
			return nil
		}
		return err
	}
	return nil
}

// IsManager reports whether the user manages the cafe.
func (r *CafeRepo) IsManager(ctx context.Context, cafeID, userID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM cafe_managers WHERE cafe_id = ? AND user_id = ?)`
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, cafeID, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
