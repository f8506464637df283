package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType names an order lifecycle event published to the broker
type EventType string

const (
	EventOrderCreated  EventType = "created"
	EventOrderUpdated  EventType = "updated"
	EventStatusChanged EventType = "status_changed"
	EventOrderDeleted  EventType = "deleted"
)

// OrderEvent is the message published for every order mutation
type OrderEvent struct {
	Type         EventType       `json:"type"`
	OrderID      int64           `json:"order_id"`
	Token        string          `json:"token"`
	CustomerName string          `json:"customer_name"`
	TableNumber  int             `json:"table_number"`
	Total        decimal.Decimal `json:"total"`
	OldStatus    OrderStatus     `json:"old_status,omitempty"`
	NewStatus    OrderStatus     `json:"new_status,omitempty"`
	ChangedBy    string          `json:"changed_by"`
	Timestamp    time.Time       `json:"timestamp"`
}

// NewOrderEvent builds an event from the current state of an order
func NewOrderEvent(eventType EventType, order *Order, oldStatus OrderStatus, changedBy string) *OrderEvent {
	return &OrderEvent{
		Type:         eventType,
		OrderID:      order.ID,
		Token:        order.Token,
		CustomerName: order.CustomerName,
		TableNumber:  order.TableNumber,
		Total:        order.Total,
		OldStatus:    oldStatus,
		NewStatus:    order.Status,
		ChangedBy:    changedBy,
		Timestamp:    time.Now().UTC(),
	}
}

// RoutingKey returns the topic routing key for the event
func (e *OrderEvent) RoutingKey() string {
	return "order." + string(e.Type)
}
