package model

import "time"

// Order represents one dine-in transaction at a table. TotalAmountCents is
// maintained as a running sum: every accepted line-item batch adds its own
// price*quantity delta inside the same transaction that inserts the items,
// so the stored total always equals the sum over Items. Completed orders
// are frozen; the flag never reverts.
type Order struct {
	ID                uint64          `json:"id"`
	RestaurantID      uint64          `json:"restaurant_id"`
	TableID           uint64          `json:"table_id"`
	CustomerID        *uint64         `json:"customer_id,omitempty"`
	NumberOfCustomers uint32          `json:"number_of_customers"`
	Completed         bool            `json:"completed"`
	TotalAmountCents  uint64          `json:"total_amount_cents"`
	Items             []OrderLineItem `json:"items"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// OrderLineItem is one ordered quantity of one dish. DishName and
// PriceCents are copies captured from the catalog when the item was added;
// they are immutable even if the source dish later changes or disappears,
// which is why order_items.dish_id carries no foreign key.
type OrderLineItem struct {
	ID         uint64    `json:"id"`
	OrderID    uint64    `json:"order_id"`
	DishID     uint64    `json:"dish_id"`
	DishName   string    `json:"dish_name"`
	PriceCents uint32    `json:"price_cents"`
	Quantity   uint32    `json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
}
