package orders

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type commitMetrics struct {
	committed metric.Int64Counter
	rejected  metric.Int64Counter
	subtotal  metric.Int64Histogram
}

func newCommitMetrics() (*commitMetrics, error) {
	meter := otel.Meter("orders")

	committed, err := meter.Int64Counter("orders.committed",
		metric.WithDescription("Orders persisted after pricing and validation"),
	)
	if err != nil {
		return nil, err
	}

	rejected, err := meter.Int64Counter("orders.rejected",
		metric.WithDescription("Orders rejected before commit, by reason"),
	)
	if err != nil {
		return nil, err
	}

	subtotal, err := meter.Int64Histogram("orders.subtotal",
		metric.WithDescription("Subtotal of committed orders"),
		metric.WithUnit("{minor_unit}"),
	)
	if err != nil {
		return nil, err
	}

	return &commitMetrics{committed: committed, rejected: rejected, subtotal: subtotal}, nil
}

func (m *commitMetrics) recordCommit(ctx context.Context, subtotal int64) {
	m.committed.Add(ctx, 1)
	m.subtotal.Record(ctx, subtotal)
}

func (m *commitMetrics) recordRejection(ctx context.Context, reason string) {
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
