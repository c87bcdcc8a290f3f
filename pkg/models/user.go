package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating is one explicit star rating a user gave to a catalog item.
type Rating struct {
	SKU       string    `json:"sku" db:"sku"`
	Stars     float64   `json:"stars" db:"stars"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// OrderItem is a single line of an order.
type OrderItem struct {
	SKU   string  `json:"sku" db:"sku"`
	Qty   int     `json:"qty" db:"qty"`
	Price float64 `json:"price" db:"price"`
}

// Order is a completed or pending purchase. The engine only reads line
// items; status and totals belong to the order store.
type Order struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	CustomerID uuid.UUID   `json:"customer_id" db:"customer_id"`
	Status     string      `json:"status" db:"status"`
	Items      []OrderItem `json:"items" db:"items"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
}
