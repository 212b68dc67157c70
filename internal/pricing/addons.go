package pricing

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

// ProductLookup resolves a product reference. A nil product with a nil error
// means the product does not exist.
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// ValidateRequiredAddOns checks every line item selects all add-ons its
// product requires. Each distinct product is fetched once; fetches run
// concurrently and are joined before any item is checked. Failures are
// reported for the first offending item in order.
func ValidateRequiredAddOns(ctx context.Context, items []domain.LineItem, lookup ProductLookup) error {
	products, err := fetchProducts(ctx, items, lookup)
	if err != nil {
		return err
	}

	for _, item := range items {
		product := products[item.ProductID]
		if product == nil {
			return fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
		}

		if missing := missingAddOns(product.RequiredAddOns, item.AddOns); len(missing) > 0 {
			return &MissingRequiredAddOnsError{
				ProductID:    product.ID,
				ProductTitle: product.Title,
				Missing:      missing,
			}
		}
	}

	return nil
}

func fetchProducts(ctx context.Context, items []domain.LineItem, lookup ProductLookup) (map[string]*domain.Product, error) {
	var (
		mu       sync.Mutex
		products = make(map[string]*domain.Product)
	)

	g, gctx := errgroup.WithContext(ctx)
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}

		id := item.ProductID
		g.Go(func() error {
			product, err := lookup.GetProduct(gctx, id)
			if err != nil {
				return fmt.Errorf("lookup product %s: %w", id, err)
			}
			mu.Lock()
			products[id] = product
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return products, nil
}

// missingAddOns returns required IDs absent from selected, in the order they
// are required. Duplicates in required are reported once.
func missingAddOns(required []string, selected []domain.AddOnSelection) []string {
	if len(required) == 0 {
		return nil
	}

	have := make(map[string]struct{}, len(selected))
	for _, a := range selected {
		have[a.AddOnID] = struct{}{}
	}

	var missing []string
	for _, id := range required {
		if _, ok := have[id]; ok {
			continue
		}
		have[id] = struct{}{}
		missing = append(missing, id)
	}
	return missing
}
