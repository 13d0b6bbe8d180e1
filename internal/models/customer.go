package models

import (
	"github.com/uptrace/bun"
)

type Note struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

type Customer struct {
	bun.BaseModel `bun:"table:customers"`

	ID         string `bun:"id,pk" json:"id"`
	Name       string `bun:"name,notnull" json:"name"`
	EventID    string `bun:"event_id,notnull" json:"eventId"`
	GuestCount int64  `bun:"guest_count,notnull" json:"guestCount"`
	OrderCount int64  `bun:"order_count,notnull" json:"orderCount"`
	Paid       bool   `bun:"paid,notnull" json:"paid"`
	PaidAt     *int64 `bun:"paid_at" json:"paidAt,omitempty"`
	Notes      []Note `bun:"notes" json:"notes"`
	CreatedAt  int64  `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt  int64  `bun:"updated_at,notnull" json:"updatedAt"`
}

// Guests returns the head count used for entry fees; absent or non-positive counts as one.
func (c Customer) Guests() int64 {
	if c.GuestCount <= 0 {
		return 1
	}
	return c.GuestCount
}

type CustomerRequest struct {
	Name       string `json:"name"`
	GuestCount *int64 `json:"guestCount"`
}

type GuestCountRequest struct {
	GuestCount int64 `json:"guestCount"`
}

type NoteRequest struct {
	Content string `json:"content"`
}

type CustomerDetail struct {
	Customer   Customer `json:"customer"`
	Orders     []Order  `json:"orders"`
	TotalPrice int64    `json:"totalPrice"`
}
