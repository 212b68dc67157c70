package domain

import (
	"encoding/json"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// Valid reports whether s is a known status. Any known status may follow any
// other; there is no transition graph.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered,
		OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

type SelectedOption struct {
	ID            string `json:"id"`
	Label         string `json:"label,omitempty"`
	PriceModifier int64  `json:"price_modifier"`
}

type ComponentSelection struct {
	ComponentID    string         `json:"component_id"`
	SelectedOption SelectedOption `json:"selected_option"`
}

type AddOnSelection struct {
	AddOnID  string `json:"add_on_id"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

type PersonalizationSelection struct {
	OptionID        string          `json:"option_id"`
	Value           json.RawMessage `json:"value,omitempty"`
	AdditionalPrice int64           `json:"additional_price"`
}

type CustomPersonalization struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// LineItem prices are snapshots taken when the order is placed. Only
// ItemTotal is derived.
type LineItem struct {
	ProductID             string                     `json:"product_id"`
	Quantity              int                        `json:"quantity"`
	UnitPrice             int64                      `json:"unit_price"`
	SelectedComponents    []ComponentSelection       `json:"selected_components"`
	AddOns                []AddOnSelection           `json:"add_ons"`
	Personalization       []PersonalizationSelection `json:"personalization"`
	CustomPersonalization []CustomPersonalization    `json:"custom_personalization"`
	ItemTotal             int64                      `json:"item_total"`
}

type Order struct {
	ID         string      `json:"id"`
	CustomerID string      `json:"customer_id"`
	Items      []LineItem  `json:"items"`
	Subtotal   int64       `json:"subtotal"`
	Status     OrderStatus `json:"status"`
	Notes      string      `json:"notes,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}
