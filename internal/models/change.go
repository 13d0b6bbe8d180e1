package models

type ChangeKind string

const (
	ChangeOrderCreated       ChangeKind = "order.created"
	ChangeOrderStatusChanged ChangeKind = "order.status_changed"
	ChangeCustomerCreated    ChangeKind = "customer.created"
	ChangeCustomerUpdated    ChangeKind = "customer.updated"
	ChangeCustomerPaid       ChangeKind = "customer.paid"
	ChangeEventCreated       ChangeKind = "event.created"
	ChangeEventCompleted     ChangeKind = "event.completed"
	ChangeMenuChanged        ChangeKind = "menu.changed"
)

// Change notifies stats consumers that a record touching an event was written.
type Change struct {
	Kind       ChangeKind `json:"kind"`
	EventID    string     `json:"eventId,omitempty"`
	EntityID   string     `json:"entityId"`
	OccurredAt int64      `json:"occurredAt"`
}
