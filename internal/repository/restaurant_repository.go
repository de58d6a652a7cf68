package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/restaurant-order-system/internal/model"
)

// RestaurantRepo provides CRUD access to the restaurants table. The order
// ledger only consumes Exists; everything else backs the catalog surface.
type RestaurantRepo struct{ DB *sql.DB }

func NewRestaurantRepo(db *sql.DB) *RestaurantRepo { return &RestaurantRepo{DB: db} }

// Create inserts a restaurant for the given owner and populates the
// generated ID and creation timestamp on the model.
func (r *RestaurantRepo) Create(ctx context.Context, rest *model.Restaurant) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO restaurants (name, currency, location, phone, owner_id) VALUES (?,?,?,?,?)",
		rest.Name, rest.Currency, rest.Location, rest.Phone, rest.OwnerID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rest.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at FROM restaurants WHERE id=?", rest.ID).Scan(&rest.CreatedAt)
}

// GetByID fetches a restaurant by id. Returns sql.ErrNoRows when absent.
func (r *RestaurantRepo) GetByID(ctx context.Context, id uint64) (model.Restaurant, error) {
	var rest model.Restaurant
	var location, phone sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,currency,location,phone,owner_id,created_at FROM restaurants WHERE id=? LIMIT 1",
		id).Scan(&rest.ID, &rest.Name, &rest.Currency, &location, &phone, &rest.OwnerID, &rest.CreatedAt)
	if err != nil {
		return rest, err
	}
	rest.Location = location.String
	rest.Phone = phone.String
	return rest, nil
}

// ListByOwner returns all restaurants registered by the given owner.
func (r *RestaurantRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Restaurant, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,currency,location,phone,owner_id,created_at FROM restaurants WHERE owner_id=? ORDER BY id",
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Restaurant, 0)
	for rows.Next() {
		var rest model.Restaurant
		var location, phone sql.NullString
		if err := rows.Scan(&rest.ID, &rest.Name, &rest.Currency, &location, &phone, &rest.OwnerID, &rest.CreatedAt); err != nil {
			return nil, err
		}
		rest.Location = location.String
		rest.Phone = phone.String
		out = append(out, rest)
	}
	return out, rows.Err()
}

// Exists reports whether a restaurant row is present.
func (r *RestaurantRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM restaurants WHERE id=? LIMIT 1", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// OwnerID returns the owner of a restaurant so handlers can enforce that
// only the owner mutates its dishes and tables. Returns sql.ErrNoRows when
// the restaurant does not exist.
func (r *RestaurantRepo) OwnerID(ctx context.Context, id uint64) (uint64, error) {
	var ownerID uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT owner_id FROM restaurants WHERE id=? LIMIT 1", id).Scan(&ownerID)
	return ownerID, err
}

// Delete removes a restaurant; dishes and tables cascade via foreign keys.
func (r *RestaurantRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM restaurants WHERE id=?", id)
	return err
}
