package pricing

import (
	"errors"
	"reflect"
	"testing"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

func modifiedItem() domain.LineItem {
	return domain.LineItem{
		ProductID: "mug",
		Quantity:  2,
		UnitPrice: 1000,
		SelectedComponents: []domain.ComponentSelection{
			{ComponentID: "handle", SelectedOption: domain.SelectedOption{ID: "gold", PriceModifier: 150}},
		},
		AddOns: []domain.AddOnSelection{
			{AddOnID: "gift-box", Quantity: 1, Price: 300},
		},
		Personalization: []domain.PersonalizationSelection{
			{OptionID: "engraving", Value: []byte(`"Ana"`), AdditionalPrice: 50},
		},
		CustomPersonalization: []domain.CustomPersonalization{
			{Label: "note", Value: "happy birthday"},
		},
	}
}

func TestLineItemTotal(t *testing.T) {
	tests := []struct {
		name string
		item domain.LineItem
		want int64
	}{
		{
			name: "base price only",
			item: domain.LineItem{ProductID: "p", Quantity: 3, UnitPrice: 499},
			want: 1497,
		},
		{
			name: "all modifiers",
			item: modifiedItem(),
			want: 2700,
		},
		{
			name: "add-on quantity independent of item quantity",
			item: domain.LineItem{
				ProductID: "p",
				Quantity:  5,
				UnitPrice: 100,
				AddOns:    []domain.AddOnSelection{{AddOnID: "a", Quantity: 2, Price: 250}},
			},
			want: 5*100 + 2*250,
		},
		{
			name: "negative modifier",
			item: domain.LineItem{
				ProductID: "p",
				Quantity:  2,
				UnitPrice: 1000,
				SelectedComponents: []domain.ComponentSelection{
					{ComponentID: "size", SelectedOption: domain.SelectedOption{ID: "small", PriceModifier: -200}},
				},
			},
			want: 1600,
		},
		{
			name: "negative result is not clamped",
			item: domain.LineItem{
				ProductID: "p",
				Quantity:  1,
				UnitPrice: 100,
				Personalization: []domain.PersonalizationSelection{
					{OptionID: "discount", AdditionalPrice: -500},
				},
			},
			want: -400,
		},
		{
			name: "custom personalization has no price impact",
			item: domain.LineItem{
				ProductID: "p",
				Quantity:  1,
				UnitPrice: 700,
				CustomPersonalization: []domain.CustomPersonalization{
					{Label: "a", Value: "b"},
					{Label: "c", Value: "d"},
				},
			},
			want: 700,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LineItemTotal(tt.item); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestLineItemTotal_IsPure(t *testing.T) {
	item := modifiedItem()
	first := LineItemTotal(item)
	second := LineItemTotal(item)
	if first != second {
		t.Fatalf("expected identical results, got %d and %d", first, second)
	}
	if !reflect.DeepEqual(item, modifiedItem()) {
		t.Fatal("expected item to be unchanged")
	}
}

func TestLineItemTotal_AddOnQuantityDelta(t *testing.T) {
	item := modifiedItem()
	before := LineItemTotal(item)

	item.AddOns = []domain.AddOnSelection{{AddOnID: "gift-box", Quantity: 3, Price: 300}}
	after := LineItemTotal(item)

	if after-before != 600 {
		t.Errorf("expected total to grow by 600, grew by %d", after-before)
	}
}

func TestOrderSubtotal(t *testing.T) {
	t.Run("empty order is zero", func(t *testing.T) {
		if got := OrderSubtotal(nil); got != 0 {
			t.Errorf("expected 0, got %d", got)
		}
		if got := OrderSubtotal([]domain.LineItem{}); got != 0 {
			t.Errorf("expected 0, got %d", got)
		}
	})

	items := []domain.LineItem{
		modifiedItem(),
		{ProductID: "a", Quantity: 1, UnitPrice: 10},
		{ProductID: "b", Quantity: 4, UnitPrice: 25, AddOns: []domain.AddOnSelection{{AddOnID: "x", Quantity: 2, Price: 5}}},
	}

	t.Run("sums line item totals", func(t *testing.T) {
		var want int64
		for _, item := range items {
			want += LineItemTotal(item)
		}
		if got := OrderSubtotal(items); got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	})

	t.Run("independent of item order", func(t *testing.T) {
		want := OrderSubtotal(items)
		permutations := [][]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
		for _, perm := range permutations {
			shuffled := make([]domain.LineItem, len(items))
			for i, idx := range perm {
				shuffled[i] = items[idx]
			}
			if got := OrderSubtotal(shuffled); got != want {
				t.Errorf("permutation %v: expected %d, got %d", perm, want, got)
			}
		}
	})
}

func TestPrice(t *testing.T) {
	items := []domain.LineItem{
		modifiedItem(),
		{ProductID: "a", Quantity: 2, UnitPrice: 10, ItemTotal: 999},
	}

	priced, subtotal := Price(items)

	if subtotal != 2720 {
		t.Errorf("expected subtotal 2720, got %d", subtotal)
	}
	if priced[0].ItemTotal != 2700 {
		t.Errorf("expected first item total 2700, got %d", priced[0].ItemTotal)
	}
	if priced[1].ItemTotal != 20 {
		t.Errorf("expected stale item total to be recomputed to 20, got %d", priced[1].ItemTotal)
	}

	if items[0].ItemTotal != 0 || items[1].ItemTotal != 999 {
		t.Error("expected input items to be left untouched")
	}
	for i := range items {
		if priced[i].UnitPrice != items[i].UnitPrice {
			t.Errorf("item %d: unit price changed from %d to %d", i, items[i].UnitPrice, priced[i].UnitPrice)
		}
	}
}

func TestValidateItems(t *testing.T) {
	tests := []struct {
		name    string
		items   []domain.LineItem
		wantErr error
	}{
		{name: "no items", items: nil},
		{name: "valid", items: []domain.LineItem{modifiedItem()}},
		{name: "zero unit price", items: []domain.LineItem{{ProductID: "p", Quantity: 1, UnitPrice: 0}}},
		{
			name: "negative modifiers are allowed",
			items: []domain.LineItem{{
				ProductID:          "p",
				Quantity:           1,
				UnitPrice:          100,
				SelectedComponents: []domain.ComponentSelection{{ComponentID: "c", SelectedOption: domain.SelectedOption{ID: "o", PriceModifier: -500}}},
				Personalization:    []domain.PersonalizationSelection{{OptionID: "x", AdditionalPrice: -50}},
			}},
		},
		{name: "zero quantity", items: []domain.LineItem{{ProductID: "p", Quantity: 0}}, wantErr: ErrInvalidQuantity},
		{name: "negative quantity", items: []domain.LineItem{{ProductID: "p", Quantity: -1}}, wantErr: ErrInvalidQuantity},
		{
			name: "zero add-on quantity",
			items: []domain.LineItem{{
				ProductID: "p",
				Quantity:  1,
				AddOns:    []domain.AddOnSelection{{AddOnID: "a", Quantity: 0, Price: 10}},
			}},
			wantErr: ErrInvalidQuantity,
		},
		{name: "negative unit price", items: []domain.LineItem{{ProductID: "p", Quantity: 1, UnitPrice: -5000}}, wantErr: ErrInvalidPrice},
		{
			name: "negative add-on price",
			items: []domain.LineItem{{
				ProductID: "p",
				Quantity:  1,
				UnitPrice: 1000,
				AddOns:    []domain.AddOnSelection{{AddOnID: "a", Quantity: 1, Price: -100}},
			}},
			wantErr: ErrInvalidPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItems(tt.items)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := map[int64]string{
		0:     "0.00",
		5:     "0.05",
		2700:  "27.00",
		12345: "123.45",
		-105:  "-1.05",
	}
	for in, want := range tests {
		if got := Format(in); got != want {
			t.Errorf("Format(%d): expected %q, got %q", in, want, got)
		}
	}
}
