package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, price, required_add_ons, allows_components, allows_custom_personalization
		FROM products
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Price, pq.Array(&p.RequiredAddOns), &p.AllowsComponents, &p.AllowsCustomPersonalization); err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

// GetProduct returns nil, nil when id is unknown.
func (r *ProductRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p := &domain.Product{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, price, required_add_ons, allows_components, allows_custom_personalization
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Title, &p.Price, pq.Array(&p.RequiredAddOns), &p.AllowsComponents, &p.AllowsCustomPersonalization)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return p, nil
}

func (r *ProductRepository) Upsert(ctx context.Context, p *domain.Product) error {
	if p.RequiredAddOns == nil {
		p.RequiredAddOns = []string{}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, title, price, required_add_ons, allows_components, allows_custom_personalization, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			price = EXCLUDED.price,
			required_add_ons = EXCLUDED.required_add_ons,
			allows_components = EXCLUDED.allows_components,
			allows_custom_personalization = EXCLUDED.allows_custom_personalization,
			updated_at = NOW()
	`, p.ID, p.Title, p.Price, pq.Array(p.RequiredAddOns), p.AllowsComponents, p.AllowsCustomPersonalization)
	return err
}
