package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
	"github.com/joao-fontenele/storefront-orders/internal/pricing"
)

var tracer = otel.Tracer("orders")

// ErrStatusConflict is returned by conditional status updates when the order
// is no longer in the expected status.
var ErrStatusConflict = errors.New("order status changed")

var (
	errCatalogUnavailable = errors.New("catalog unavailable")
	errPersist            = errors.New("persist order")
)

// rejectionReason classifies commit errors for metrics. It returns "" for
// errors that are not caller rejections.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, pricing.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, pricing.ErrInvalidPrice):
		return "invalid_price"
	case errors.Is(err, pricing.ErrMissingRequiredAddOns):
		return "missing_required_add_ons"
	case errors.Is(err, pricing.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, errCatalogUnavailable):
		return "catalog_unavailable"
	}
	return ""
}

// commit runs the order-level pipeline: quantities, required add-ons,
// pricing, then a single atomic write. Nothing is written unless every step
// succeeds.
func (h *Handler) commit(ctx context.Context, customerID, notes string, items []domain.LineItem) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "commit order", trace.WithAttributes(
		attribute.String("order.customer_id", customerID),
		attribute.Int("order.items", len(items)),
	))
	defer span.End()

	order, err := h.pipeline(ctx, customerID, notes, items)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if reason := rejectionReason(err); reason != "" {
			h.metrics.recordRejection(ctx, reason)
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.String("order.id", order.ID),
		attribute.Int64("order.subtotal", order.Subtotal),
	)
	h.metrics.recordCommit(ctx, order.Subtotal)
	return order, nil
}

func (h *Handler) pipeline(ctx context.Context, customerID, notes string, items []domain.LineItem) (*domain.Order, error) {
	if err := pricing.ValidateItems(items); err != nil {
		return nil, err
	}

	if err := h.validateAddOns(ctx, items); err != nil {
		return nil, err
	}

	priced, subtotal := pricing.Price(items)

	order := &domain.Order{
		CustomerID: customerID,
		Items:      priced,
		Subtotal:   subtotal,
		Status:     domain.OrderStatusPending,
		Notes:      notes,
		CreatedAt:  time.Now().UTC(),
	}

	if err := h.store.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("%w: %w", errPersist, err)
	}

	return order, nil
}

func (h *Handler) validateAddOns(ctx context.Context, items []domain.LineItem) error {
	ctx, span := tracer.Start(ctx, "validate required add-ons")
	defer span.End()

	err := pricing.ValidateRequiredAddOns(ctx, items, h.catalog)
	if err == nil {
		return nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if errors.Is(err, pricing.ErrMissingRequiredAddOns) || errors.Is(err, pricing.ErrProductNotFound) {
		return err
	}
	return fmt.Errorf("%w: %w", errCatalogUnavailable, err)
}
