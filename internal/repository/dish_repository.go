package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/avezov/cafe-booking/internal/model"
)

// DishRepo provides persistence for cafe menu items.
type DishRepo struct {
	db *sql.DB
}

// NewDishRepo constructs a DishRepo with the given DB handle.
func NewDishRepo(db *sql.DB) *DishRepo { return &DishRepo{db: db} }

const dishColumns = `id, cafe_id, name, description, price_cents, is_active, created_at, updated_at`

func scanDish(row interface{ Scan(...any) error }) (*model.Dish, error) {
	var d model.Dish
	var desc sql.NullString
	if err := row.Scan(&d.ID, &d.CafeID, &d.Name, &desc, &d.PriceCents, &d.IsActive, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		d.Description = &desc.String
	}
	return &d, nil
}

// Create inserts a new dish.  The (cafe_id, name) unique key surfaces
// as ErrDuplicate.
func (r *DishRepo) Create(ctx context.Context, d *model.Dish) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	const q = `INSERT INTO dishes (id, cafe_id, name, description, price_cents) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, d.ID, d.CafeID, d.Name, d.Description, d.PriceCents); err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	const sel = `SELECT ` + dishColumns + ` FROM dishes WHERE id = ?`
	got, err := scanDish(r.db.QueryRowContext(ctx, sel, d.ID))
	if err != nil {
		return err
	}
	*d = *got
	return nil
}

// GetByID fetches a dish by its ID.  It returns ErrDishNotFound when
// no row is found.
func (r *DishRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Dish, error) {
	const q = `SELECT ` + dishColumns + ` FROM dishes WHERE id = ?`
	d, err := scanDish(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDishNotFound
		}
		return nil, err
	}
	return d, nil
}

// ListByCafe returns the cafe's menu ordered by name.
func (r *DishRepo) ListByCafe(ctx context.Context, cafeID uuid.UUID, activeOnly bool) ([]model.Dish, error) {
	q := `SELECT ` + dishColumns + ` FROM dishes WHERE cafe_id = ?`
	if activeOnly {
		q += ` AND is_active = 1`
	}
	q += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, cafeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	dishes := make([]model.Dish, 0)
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			return nil, err
		}
		dishes = append(dishes, *d)
	}
	return dishes, rows.Err()
}

// Update applies non-nil fields and returns the refreshed record.
func (r *DishRepo) Update(ctx context.Context, id uuid.UUID, name, description *string, priceCents *uint32, isActive *bool) (*model.Dish, error) {
	cur, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		cur.Name = *name
	}
	if description != nil {
		cur.Description = description
	}
	if priceCents != nil {
		cur.PriceCents = *priceCents
	}
	if isActive != nil {
		cur.IsActive = *isActive
	}
	const q = `UPDATE dishes SET name = ?, description = ?, price_cents = ?, is_active = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, cur.Name, cur.Description, cur.PriceCents, cur.IsActive, id); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a dish.
func (r *DishRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dishes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDishNotFound
	}
	return nil
}
