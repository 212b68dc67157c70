package domain

import "testing"

func TestOrderStatus_Valid(t *testing.T) {
	valid := []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCompleted,
		OrderStatusCancelled,
		OrderStatusRefunded,
	}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}

	for _, s := range []OrderStatus{"", "confirmed", "PENDING", "lost"} {
		if s.Valid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}
