// Package pricing computes line item totals and order subtotals in minor
// currency units and validates required add-ons before an order is committed.
package pricing

import (
	"fmt"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

// LineItemTotal returns the total for one line item. Component modifiers and
// personalization prices scale with the item quantity; add-ons scale with
// their own quantity. Custom personalization carries no price. A negative
// result is returned as is.
func LineItemTotal(item domain.LineItem) int64 {
	qty := int64(item.Quantity)
	total := item.UnitPrice * qty

	for _, c := range item.SelectedComponents {
		total += c.SelectedOption.PriceModifier * qty
	}
	for _, a := range item.AddOns {
		total += a.Price * int64(a.Quantity)
	}
	for _, p := range item.Personalization {
		total += p.AdditionalPrice * qty
	}

	return total
}

func OrderSubtotal(items []domain.LineItem) int64 {
	var subtotal int64
	for _, item := range items {
		subtotal += LineItemTotal(item)
	}
	return subtotal
}

// Price returns a copy of items with ItemTotal set on each, and the subtotal.
// The input slice is left untouched.
func Price(items []domain.LineItem) ([]domain.LineItem, int64) {
	priced := make([]domain.LineItem, len(items))
	var subtotal int64
	for i, item := range items {
		item.ItemTotal = LineItemTotal(item)
		subtotal += item.ItemTotal
		priced[i] = item
	}
	return priced, subtotal
}

// ValidateItems rejects line items or add-ons with a quantity below one and
// negative unit or add-on prices. Component and personalization modifiers
// may be negative.
func ValidateItems(items []domain.LineItem) error {
	for i, item := range items {
		if item.Quantity <= 0 {
			return fmt.Errorf("line item %d (product %s): %w", i, item.ProductID, ErrInvalidQuantity)
		}
		if item.UnitPrice < 0 {
			return fmt.Errorf("line item %d (product %s) unit price: %w", i, item.ProductID, ErrInvalidPrice)
		}
		for _, a := range item.AddOns {
			if a.Quantity <= 0 {
				return fmt.Errorf("line item %d add-on %s: %w", i, a.AddOnID, ErrInvalidQuantity)
			}
			if a.Price < 0 {
				return fmt.Errorf("line item %d add-on %s price: %w", i, a.AddOnID, ErrInvalidPrice)
			}
		}
	}
	return nil
}
