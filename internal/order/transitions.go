package order

import "ms-barpos/internal/models"

// rank orders the forward path Pending → Preparing → Ready → Served → Completed.
var rank = map[models.OrderStatus]int{
	models.StatusPending:   0,
	models.StatusPreparing: 1,
	models.StatusReady:     2,
	models.StatusServed:    3,
	models.StatusCompleted: 4,
}

// OpenStatuses are the statuses shown on the bar board.
var OpenStatuses = []models.OrderStatus{models.StatusPending, models.StatusPreparing, models.StatusReady}

func IsTerminal(s models.OrderStatus) bool {
	return s == models.StatusCompleted || s == models.StatusCancelled
}

func ValidStatus(s models.OrderStatus) bool {
	_, ok := rank[s]
	return ok || s == models.StatusCancelled
}

// CanTransition allows any forward move and cancellation from a non-terminal
// status. Completed and Cancelled are final.
func CanTransition(from, to models.OrderStatus) bool {
	if !ValidStatus(from) || !ValidStatus(to) || IsTerminal(from) {
		return false
	}
	if to == models.StatusCancelled {
		return true
	}
	return rank[to] > rank[from]
}
