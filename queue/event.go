// Package queue publishes waiter call domain events to RabbitMQ.
package queue

import (
	"time"

	"github.com/Yo-Self/menu-mestre-facil-sub001/models"
)

const (
	EventWaiterCallCreated   = "waiter_call.created"
	EventWaiterCallAttended  = "waiter_call.attended"
	EventWaiterCallCancelled = "waiter_call.cancelled"
)

// WaiterCallEvent carries enough of the call for downstream consumers
// (analytics, SMS to staff) without querying the database.
type WaiterCallEvent struct {
	Type         string  `json:"type"`
	CallID       string  `json:"call_id"`
	RestaurantID string  `json:"restaurant_id"`
	TableNumber  int     `json:"table_number"`
	Status       string  `json:"status"`
	Notes        *string `json:"notes,omitempty"`
	AttendedBy   *string `json:"attended_by,omitempty"`
	OccurredAt   string  `json:"occurred_at"`
}

func NewWaiterCallEvent(eventType string, call models.WaiterCall, at time.Time) WaiterCallEvent {
	return WaiterCallEvent{
		Type:         eventType,
		CallID:       call.ID,
		RestaurantID: call.RestaurantID,
		TableNumber:  call.TableNumber,
		Status:       call.Status,
		Notes:        call.Notes,
		AttendedBy:   call.AttendedBy,
		OccurredAt:   at.UTC().Format(time.RFC3339),
	}
}
