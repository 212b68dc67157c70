package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
	"github.com/joao-fontenele/storefront-orders/internal/pricing"
)

// CachedLookup keeps products fetched from next in Redis for ttl. Unknown
// products are not cached. Redis failures fall through to next.
type CachedLookup struct {
	next   pricing.ProductLookup
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedLookup(next pricing.ProductLookup, rdb redis.Cmdable, ttl time.Duration, logger *slog.Logger) *CachedLookup {
	return &CachedLookup{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

func productKey(id string) string {
	return "catalog:product:" + id
}

func (c *CachedLookup) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	key := productKey(id)

	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var product domain.Product
		if err := json.Unmarshal(data, &product); err == nil {
			return &product, nil
		}
		c.logger.Warn("discarding corrupt cached product", "product_id", id)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("product cache read failed", "error", err, "product_id", id)
	}

	product, err := c.next.GetProduct(ctx, id)
	if err != nil || product == nil {
		return product, err
	}

	data, err = json.Marshal(product)
	if err != nil {
		return product, nil
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("product cache write failed", "error", err, "product_id", id)
	}

	return product, nil
}

// Invalidate drops the cached copy of id.
func (c *CachedLookup) Invalidate(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, productKey(id)).Err()
}
