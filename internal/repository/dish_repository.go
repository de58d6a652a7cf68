package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/restaurant-order-system/internal/model"
)

// DishRepo provides CRUD access to the dishes table. The order ledger only
// consumes GetByIDTx, which resolves the current name and unit price for
// the line-item snapshot inside the batch transaction.
type DishRepo struct{ DB *sql.DB }

func NewDishRepo(db *sql.DB) *DishRepo { return &DishRepo{DB: db} }

// Create inserts a dish and populates the generated ID and timestamp.
func (r *DishRepo) Create(ctx context.Context, d *model.Dish) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO dishes (restaurant_id, name, description, suitable_diet, price_cents) VALUES (?,?,?,?,?)",
		d.RestaurantID, d.Name, d.Description, d.SuitableDiet, d.PriceCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at FROM dishes WHERE id=?", d.ID).Scan(&d.CreatedAt)
}

// GetByID fetches a dish by id.
func (r *DishRepo) GetByID(ctx context.Context, id uint64) (model.Dish, error) {
	var d model.Dish
	var desc, diet sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,restaurant_id,name,description,suitable_diet,price_cents,created_at FROM dishes WHERE id=? LIMIT 1",
		id).Scan(&d.ID, &d.RestaurantID, &d.Name, &desc, &diet, &d.PriceCents, &d.CreatedAt)
	if err != nil {
		return d, err
	}
	d.Description = desc.String
	d.SuitableDiet = diet.String
	return d, nil
}

// GetByIDTx resolves a dish's current name and price within the caller's
// transaction. The ledger snapshots these values into the line item, so
// reading them under the same transaction that inserts the items keeps the
// batch consistent with the catalog as of commit time. Returns
// sql.ErrNoRows when the dish does not exist.
func (r *DishRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Dish, error) {
	var d model.Dish
	err := tx.QueryRowContext(ctx,
		"SELECT id, restaurant_id, name, price_cents FROM dishes WHERE id=? LIMIT 1",
		id).Scan(&d.ID, &d.RestaurantID, &d.Name, &d.PriceCents)
	return d, err
}

// ListByRestaurant returns the menu of one restaurant.
func (r *DishRepo) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]model.Dish, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,restaurant_id,name,description,suitable_diet,price_cents,created_at FROM dishes WHERE restaurant_id=? ORDER BY id",
		restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Dish, 0)
	for rows.Next() {
		var d model.Dish
		var desc, diet sql.NullString
		if err := rows.Scan(&d.ID, &d.RestaurantID, &d.Name, &desc, &diet, &d.PriceCents, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Description = desc.String
		d.SuitableDiet = diet.String
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdatePrice changes the flat unit price of a dish. Existing order line
// items keep their snapshots; only future batches see the new price.
func (r *DishRepo) UpdatePrice(ctx context.Context, id uint64, priceCents uint32) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE dishes SET price_cents=? WHERE id=?", priceCents, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a dish. Line items that copied it remain untouched.
func (r *DishRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM dishes WHERE id=?", id)
	return err
}
