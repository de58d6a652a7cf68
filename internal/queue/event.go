// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// OrderCompletedEvent is published when an order is marked finished. It
// carries enough information for downstream consumers to log or trigger
// analytics without querying the primary database.
type OrderCompletedEvent struct {
	OrderID           uint64 `json:"order_id"`
	RestaurantID      uint64 `json:"restaurant_id"`
	TableID           uint64 `json:"table_id"`
	CustomerID        uint64 `json:"customer_id,omitempty"`
	NumberOfCustomers uint32 `json:"number_of_customers"`
	LineItems         int    `json:"line_items"`
	TotalAmountCents  uint64 `json:"total_amount_cents"`
	CompletedAt       string `json:"completed_at"`
}
