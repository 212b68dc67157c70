package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func encodeSelections(item domain.LineItem) ([4][]byte, error) {
	var out [4][]byte
	values := []any{
		nonNil(item.SelectedComponents),
		nonNil(item.AddOns),
		nonNil(item.Personalization),
		nonNil(item.CustomPersonalization),
	}
	for i, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return out, err
		}
		out[i] = data
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// decodeSelections fills the selection lists of item from the four JSONB
// columns, in the order encodeSelections writes them.
func decodeSelections(item *domain.LineItem, raw [4][]byte) error {
	targets := []any{&item.SelectedComponents, &item.AddOns, &item.Personalization, &item.CustomPersonalization}
	for i, target := range targets {
		if err := json.Unmarshal(raw[i], target); err != nil {
			return err
		}
	}
	item.SelectedComponents = nonNil(item.SelectedComponents)
	item.AddOns = nonNil(item.AddOns)
	item.Personalization = nonNil(item.Personalization)
	item.CustomPersonalization = nonNil(item.CustomPersonalization)
	return nil
}

// Create writes the order and all of its items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	order.ID = uuid.New().String()
	order.UpdatedAt = order.CreatedAt

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, status, subtotal, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, order.ID, order.CustomerID, order.Status, order.Subtotal, order.Notes, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, item := range order.Items {
		raw, err := encodeSelections(item)
		if err != nil {
			return fmt.Errorf("encode selections for item %d: %w", i, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, position, product_id, quantity, unit_price, item_total,
				selected_components, add_ons, personalization, custom_personalization)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, uuid.New().String(), order.ID, i, item.ProductID, item.Quantity, item.UnitPrice, item.ItemTotal,
			string(raw[0]), string(raw[1]), string(raw[2]), string(raw[3]))
		if err != nil {
			return fmt.Errorf("insert order item %d: %w", i, err)
		}
	}

	return tx.Commit()
}

const itemColumns = `product_id, quantity, unit_price, item_total,
	selected_components, add_ons, personalization, custom_personalization`

func scanItem(scan func(dest ...any) error, prefix ...any) (domain.LineItem, error) {
	var (
		item domain.LineItem
		raw  [4][]byte
	)
	dest := append(prefix, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.ItemTotal,
		&raw[0], &raw[1], &raw[2], &raw[3])
	if err := scan(dest...); err != nil {
		return item, err
	}
	if err := decodeSelections(&item, raw); err != nil {
		return item, fmt.Errorf("decode selections: %w", err)
	}
	return item, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order := &domain.Order{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_id, status, subtotal, notes, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.CustomerID, &order.Status, &order.Subtotal, &order.Notes, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	order.Items = []domain.LineItem{}
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

// UpdateStatus touches only the status column. It returns nil, nil when the
// order does not exist.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	return r.updateColumn(ctx, id, "status", status)
}

// UpdateStatusFrom sets status to "to" only while the order is still in
// "from". It returns ErrStatusConflict when the order has moved on and nil,
// nil when it does not exist.
func (r *OrderRepository) UpdateStatusFrom(ctx context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	order, err := r.GetByID(ctx, id)
	if err != nil || order == nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return order, fmt.Errorf("%w: order %s is %s", ErrStatusConflict, id, order.Status)
	}
	return order, nil
}

func (r *OrderRepository) UpdateNotes(ctx context.Context, id string, notes string) (*domain.Order, error) {
	return r.updateColumn(ctx, id, "notes", notes)
}

func (r *OrderRepository) updateColumn(ctx context.Context, id, column string, value any) (*domain.Order, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET `+pq.QuoteIdentifier(column)+` = $1, updated_at = NOW()
		WHERE id = $2
	`, value, id)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, customer_id, status, subtotal, notes, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.CustomerID, &order.Status, &order.Subtotal, &order.Notes, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		order.Items = []domain.LineItem{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, `+itemColumns+`
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, position
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var orderID string
		item, err := scanItem(itemRows.Scan, &orderID)
		if err != nil {
			return nil, err
		}
		order := orderMap[orderID]
		order.Items = append(order.Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}
