// Package queue carries domain events over RabbitMQ: a publisher used by
// the services and a background consumer that appends every event to a
// log file.
package queue

import "time"

// QueueName is the durable queue every domain event is published to.
const QueueName = "hospitality.events"

// Event types.
const (
	BookingCreated = "booking.created"
	BookingUpdated = "booking.updated"
	BookingDeleted = "booking.deleted"
	InvoiceCreated = "invoice.created"
	InvoiceUpdated = "invoice.updated"
)

// Event is the message published after a committed change. It carries
// enough context for a consumer to log or notify without querying the
// primary store.
//
// Fields:
//
//	ID         – unique event id.
//	Type       – one of the event type constants.
//	Kind       – "restaurant", "hotel" or "invoice".
//	EntityID   – id of the booking or order.
//	ActorID    – user who made the change, 0 for guests.
//	Resource   – table number or room id.
//	Status     – booking status or payment status after the change.
//	Amount     – total as a decimal string.
//	Reference  – bill number for invoice events.
//	OccurredAt – commit time.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Kind       string    `json:"kind"`
	EntityID   uint64    `json:"entity_id"`
	ActorID    uint64    `json:"actor_id,omitempty"`
	Resource   string    `json:"resource,omitempty"`
	Status     string    `json:"status,omitempty"`
	Amount     string    `json:"amount,omitempty"`
	Reference  string    `json:"reference,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
