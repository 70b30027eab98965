package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderCancelled = "cancelled"
)

// OrderRequest is the placement payload. Denormalized event fields are
// captured server-side at creation time, not taken from the client.
type OrderRequest struct {
	EventID  string `json:"event_id"`
	Quantity int    `json:"quantity"`
}

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	OrderID         string    `bun:"order_id,pk" json:"order_id"`
	EventID         string    `bun:"event_id,notnull" json:"event_id"`
	UserID          string    `bun:"user_id,notnull" json:"user_id"`
	UserEmail       string    `bun:"user_email" json:"user_email"`
	Quantity        int       `bun:"quantity,notnull" json:"quantity"`
	TotalPrice      float64   `bun:"total_price" json:"total_price"`
	Status          string    `bun:"status,notnull" json:"status"`
	EventName       string    `bun:"event_name" json:"event_name"`
	EventDate       time.Time `bun:"event_date" json:"event_date"`
	EventLocation   string    `bun:"event_location" json:"event_location"`
	PaymentIntentID string    `bun:"payment_intent_id,nullzero" json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time `bun:"created_at,notnull" json:"created_at"`
}

type OrderResponse struct {
	OrderID    string  `json:"order_id"`
	EventID    string  `json:"event_id"`
	UserID     string  `json:"user_id"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
	Status     string  `json:"status"`
}

// OrderWithTickets bundles an order with its issued tickets for the
// "my orders" listing.
type OrderWithTickets struct {
	Order   Order    `json:"order"`
	Tickets []Ticket `json:"tickets"`
}
