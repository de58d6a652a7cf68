package model

import "time"

// Restaurant mirrors the 'restaurants' table. A restaurant belongs to the
// owner account that registered it; dishes and tables hang off it by
// foreign key.
type Restaurant struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	Location  string    `json:"location,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	OwnerID   uint64    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Table mirrors the 'restaurant_tables' table. Capacity is always >= 1.
type Table struct {
	ID           uint64    `json:"id"`
	RestaurantID uint64    `json:"restaurant_id"`
	TableNumber  uint32    `json:"table_number"`
	Capacity     uint32    `json:"capacity"`
	CreatedAt    time.Time `json:"created_at"`
}

// Dish mirrors the 'dishes' table. PriceCents is the flat unit price in
// euro cents; orders copy it into line items at insertion time, so editing
// a dish never rewrites history.
type Dish struct {
	ID           uint64    `json:"id"`
	RestaurantID uint64    `json:"restaurant_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	SuitableDiet string    `json:"suitable_diet,omitempty"`
	PriceCents   uint32    `json:"price_cents"`
	CreatedAt    time.Time `json:"created_at"`
}
