package models

import (
	"github.com/uptrace/bun"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusPreparing OrderStatus = "Preparing"
	StatusReady     OrderStatus = "Ready"
	StatusServed    OrderStatus = "Served"
	StatusCompleted OrderStatus = "Completed"
	StatusCancelled OrderStatus = "Cancelled"
)

type OrderItem struct {
	ID       string `json:"id"`
	ItemID   string `json:"itemId"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID           string      `bun:"id,pk" json:"id"`
	CustomerID   string      `bun:"customer_id,notnull" json:"customerId"`
	CustomerName string      `bun:"customer_name" json:"customerName"`
	EventID      string      `bun:"event_id,notnull" json:"eventId"`
	Items        []OrderItem `bun:"items" json:"items"`
	Status       OrderStatus `bun:"status,notnull" json:"status"`
	CustomerPaid bool        `bun:"customer_paid,notnull" json:"customerPaid"`
	CreatedAt    int64       `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt    int64       `bun:"updated_at,notnull" json:"updatedAt"`
}

// OrderLine is one requested line of a new order.
type OrderLine struct {
	ItemID   string `json:"itemId"`
	Quantity int64  `json:"quantity"`
}

type OrderRequest struct {
	Items []OrderLine `json:"items"`
}

type StatusUpdateRequest struct {
	Status OrderStatus `json:"status"`
}
