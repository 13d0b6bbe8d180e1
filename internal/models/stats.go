package models

type DrinkBreakdownEntry struct {
	ItemName     string `json:"itemName"`
	Quantity     int64  `json:"quantity"`
	TotalRevenue int64  `json:"totalRevenue"`
}

type DrinkBreakdown map[string]DrinkBreakdownEntry

func (b DrinkBreakdown) Clone() DrinkBreakdown {
	out := make(DrinkBreakdown, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

type EventStats struct {
	TotalCustomers     int64          `json:"totalCustomers"`
	TotalDrinks        int64          `json:"totalDrinks"`
	AlcoholicDrinks    int64          `json:"alcoholicDrinks"`
	NonAlcoholicDrinks int64          `json:"nonAlcoholicDrinks"`
	ParticipantRevenue int64          `json:"participantRevenue"`
	DrinkRevenue       int64          `json:"drinkRevenue"`
	TotalRevenue       int64          `json:"totalRevenue"`
	DrinkBreakdown     DrinkBreakdown `json:"drinkBreakdown"`
}

// StatsUpdate is pushed to display surfaces whenever an event's stats are recomputed.
type StatsUpdate struct {
	EventID string     `json:"eventId"`
	Stats   EventStats `json:"stats"`
	Stale   bool       `json:"stale"`
	Error   string     `json:"error,omitempty"`
	At      int64      `json:"at"`
}
