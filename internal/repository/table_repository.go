package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/restaurant-order-system/internal/model"
)

// TableRepo provides CRUD access to restaurant_tables. Orders reference a
// table by id; the ledger validates the reference with ExistsInRestaurant
// before creating an order.
type TableRepo struct{ DB *sql.DB }

func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{DB: db} }

// Create inserts a table and populates the generated ID and timestamp.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO restaurant_tables (restaurant_id, table_number, capacity) VALUES (?,?,?)",
		t.RestaurantID, t.TableNumber, t.Capacity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at FROM restaurant_tables WHERE id=?", t.ID).Scan(&t.CreatedAt)
}

// GetByID fetches a table by id.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (model.Table, error) {
	var t model.Table
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,restaurant_id,table_number,capacity,created_at FROM restaurant_tables WHERE id=? LIMIT 1",
		id).Scan(&t.ID, &t.RestaurantID, &t.TableNumber, &t.Capacity, &t.CreatedAt)
	return t, err
}

// ListByRestaurant returns the seating plan of one restaurant ordered by
// table number.
func (r *TableRepo) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]model.Table, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,restaurant_id,table_number,capacity,created_at FROM restaurant_tables WHERE restaurant_id=? ORDER BY table_number",
		restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Table, 0)
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.RestaurantID, &t.TableNumber, &t.Capacity, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ExistsInRestaurant reports whether the table belongs to the restaurant.
// Orders must reference a table of the restaurant they are opened for.
func (r *TableRepo) ExistsInRestaurant(ctx context.Context, tableID, restaurantID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM restaurant_tables WHERE id=? AND restaurant_id=? LIMIT 1",
		tableID, restaurantID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes a table.
func (r *TableRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM restaurant_tables WHERE id=?", id)
	return err
}
