package models

import (
	"github.com/uptrace/bun"
)

type EventStatus string

const (
	EventActive    EventStatus = "active"
	EventCompleted EventStatus = "completed"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          string      `bun:"id,pk" json:"id"`
	Name        string      `bun:"name,notnull" json:"name"`
	Status      EventStatus `bun:"status,notnull" json:"status"`
	StartDate   int64       `bun:"start_date,notnull" json:"startDate"`
	EndDate     *int64      `bun:"end_date" json:"endDate,omitempty"`
	CompletedAt *int64      `bun:"completed_at" json:"completedAt,omitempty"`
	CreatedAt   int64       `bun:"created_at,notnull" json:"createdAt"`

	TotalCustomers     int64          `bun:"total_customers,notnull" json:"totalCustomers"`
	TotalOrders        int64          `bun:"total_orders,notnull" json:"totalOrders"`
	TotalDrinks        int64          `bun:"total_drinks,notnull" json:"totalDrinks"`
	AlcoholicDrinks    int64          `bun:"alcoholic_drinks,notnull" json:"alcoholicDrinks"`
	NonAlcoholicDrinks int64          `bun:"non_alcoholic_drinks,notnull" json:"nonAlcoholicDrinks"`
	ParticipantRevenue int64          `bun:"participant_revenue,notnull" json:"participantRevenue"`
	DrinkRevenue       int64          `bun:"drink_revenue,notnull" json:"drinkRevenue"`
	TotalRevenue       int64          `bun:"total_revenue,notnull" json:"totalRevenue"`
	DrinkBreakdown     DrinkBreakdown `bun:"drink_breakdown" json:"drinkBreakdown"`
}

// Freeze copies a stats snapshot onto the event. TotalOrders carries the drink count.
func (e *Event) Freeze(s EventStats) {
	e.TotalCustomers = s.TotalCustomers
	e.TotalOrders = s.TotalDrinks
	e.TotalDrinks = s.TotalDrinks
	e.AlcoholicDrinks = s.AlcoholicDrinks
	e.NonAlcoholicDrinks = s.NonAlcoholicDrinks
	e.ParticipantRevenue = s.ParticipantRevenue
	e.DrinkRevenue = s.DrinkRevenue
	e.TotalRevenue = s.TotalRevenue
	e.DrinkBreakdown = s.DrinkBreakdown.Clone()
}

// FrozenStats rebuilds the stats stored on a completed event.
func (e Event) FrozenStats() EventStats {
	return EventStats{
		TotalCustomers:     e.TotalCustomers,
		TotalDrinks:        e.TotalDrinks,
		AlcoholicDrinks:    e.AlcoholicDrinks,
		NonAlcoholicDrinks: e.NonAlcoholicDrinks,
		ParticipantRevenue: e.ParticipantRevenue,
		DrinkRevenue:       e.DrinkRevenue,
		TotalRevenue:       e.TotalRevenue,
		DrinkBreakdown:     e.DrinkBreakdown.Clone(),
	}
}

type EventRequest struct {
	Name string `json:"name"`
}
