package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/restaurant-order-system/internal/model"
)

// OrderRepo owns the orders and order_items tables. Mutations that touch
// the running total go through *Tx methods so the handler can wrap the
// read-modify-write in a single transaction: the order row is locked with
// SELECT ... FOR UPDATE, the line items are inserted, and the total is
// bumped by the batch delta before commit. Two concurrent batches on the
// same order serialize on the row lock; batches on different orders do not
// block each other.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// Create inserts a new open order with zero total and no line items,
// then reads the row back to populate the DB-assigned timestamps.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO orders (restaurant_id, table_id, customer_id, number_of_customers) VALUES (?,?,?,?)",
		o.RestaurantID, o.TableID, o.CustomerID, o.NumberOfCustomers)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	o.Completed = false
	o.TotalAmountCents = 0
	o.Items = []model.OrderLineItem{}
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM orders WHERE id=?", o.ID).Scan(&o.CreatedAt, &o.UpdatedAt)
}

// GetForUpdateTx loads an order's mutable fields under a row lock. Every
// mutation of an existing order starts here so that the completed flag it
// observes cannot change before commit. Returns sql.ErrNoRows when the
// order does not exist.
func (r *OrderRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Order, error) {
	var o model.Order
	err := tx.QueryRowContext(ctx,
		"SELECT id, restaurant_id, table_id, completed, total_amount_cents FROM orders WHERE id=? FOR UPDATE",
		id).Scan(&o.ID, &o.RestaurantID, &o.TableID, &o.Completed, &o.TotalAmountCents)
	return o, err
}

// InsertLineItemsTx bulk-inserts a batch of line items in input order
// within the caller's transaction. Passing an empty slice is a no-op.
func (r *OrderRepo) InsertLineItemsTx(ctx context.Context, tx *sql.Tx, items []model.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}
	query := "INSERT INTO order_items (order_id, dish_id, dish_name, price_cents, quantity) VALUES "
	args := make([]interface{}, 0, len(items)*5)
	for i, it := range items {
		if i > 0 {
			query += ","
		}
		query += "(?,?,?,?,?)"
		args = append(args, it.OrderID, it.DishID, it.DishName, it.PriceCents, it.Quantity)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// AddTotalTx accumulates a batch delta onto the persisted running total and
// refreshes the last-update timestamp, inside the caller's transaction.
func (r *OrderRepo) AddTotalTx(ctx context.Context, tx *sql.Tx, orderID, deltaCents uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE orders SET total_amount_cents = total_amount_cents + ?, updated_at = NOW() WHERE id=?",
		deltaCents, orderID)
	return err
}

// CompleteTx flips the completed flag inside the caller's transaction. The
// caller is expected to have observed completed=false under the row lock;
// completing an already-completed order is handled as a no-op one level up.
func (r *OrderRepo) CompleteTx(ctx context.Context, tx *sql.Tx, orderID uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE orders SET completed = 1, updated_at = NOW() WHERE id=?", orderID)
	return err
}

// GetByID returns the full order including its line items in insertion
// order. Returns sql.ErrNoRows when the order does not exist.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	var o model.Order
	var customerID sql.NullInt64
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, restaurant_id, table_id, customer_id, number_of_customers,
		        completed, total_amount_cents, created_at, updated_at
		 FROM orders WHERE id=? LIMIT 1`,
		id).Scan(&o.ID, &o.RestaurantID, &o.TableID, &customerID, &o.NumberOfCustomers,
		&o.Completed, &o.TotalAmountCents, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return o, err
	}
	if customerID.Valid {
		cid := uint64(customerID.Int64)
		o.CustomerID = &cid
	}
	o.Items, err = r.listItems(ctx, o.ID)
	return o, err
}

func (r *OrderRepo) listItems(ctx context.Context, orderID uint64) ([]model.OrderLineItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, order_id, dish_id, dish_name, price_cents, quantity, created_at FROM order_items WHERE order_id=? ORDER BY id",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.OrderLineItem, 0)
	for rows.Next() {
		var it model.OrderLineItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.DishID, &it.DishName, &it.PriceCents, &it.Quantity, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListByCustomer returns a user's orders filtered on the completed flag,
// newest first, each with its line items.
func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID uint64, completed bool) ([]model.Order, error) {
	return r.list(ctx,
		`SELECT id, restaurant_id, table_id, customer_id, number_of_customers,
		        completed, total_amount_cents, created_at, updated_at
		 FROM orders WHERE customer_id=? AND completed=? ORDER BY created_at DESC`,
		customerID, completed)
}

// ListByRestaurant returns a restaurant's orders filtered on the completed
// flag, newest first, each with its line items.
func (r *OrderRepo) ListByRestaurant(ctx context.Context, restaurantID uint64, completed bool) ([]model.Order, error) {
	return r.list(ctx,
		`SELECT id, restaurant_id, table_id, customer_id, number_of_customers,
		        completed, total_amount_cents, created_at, updated_at
		 FROM orders WHERE restaurant_id=? AND completed=? ORDER BY created_at DESC`,
		restaurantID, completed)
}

func (r *OrderRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := make([]model.Order, 0)
	for rows.Next() {
		var o model.Order
		var customerID sql.NullInt64
		if err := rows.Scan(&o.ID, &o.RestaurantID, &o.TableID, &customerID, &o.NumberOfCustomers,
			&o.Completed, &o.TotalAmountCents, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		if customerID.Valid {
			cid := uint64(customerID.Int64)
			o.CustomerID = &cid
		}
		o.Items = []model.OrderLineItem{}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		items, err := r.listItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}
