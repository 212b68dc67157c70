package domain

import "time"

// OrderCreatedEventType names OrderCreatedEvent on the wire.
const OrderCreatedEventType = "order.created"

// OrderCreatedEvent is emitted once an order and its derived totals are
// committed.
type OrderCreatedEvent struct {
	OrderID    string     `json:"order_id"`
	CustomerID string     `json:"customer_id"`
	Items      []LineItem `json:"items"`
	Subtotal   int64      `json:"subtotal"`
	Timestamp  time.Time  `json:"timestamp"`
}
