package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

// fakeRedis serves Get, Set and Del from a map, or fails them all when err is set.
type fakeRedis struct {
	redis.Cmdable
	data map[string]string
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	for _, k := range keys {
		delete(f.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

type countingLookup struct {
	products map[string]*domain.Product
	calls    int
}

func (c *countingLookup) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	c.calls++
	return c.products[id], nil
}

func newOrigin() *countingLookup {
	return &countingLookup{products: map[string]*domain.Product{
		"mug": {ID: "mug", Title: "Ceramic Mug", Price: 1000},
	}}
}

func newCache(next *countingLookup, rdb redis.Cmdable) *CachedLookup {
	return NewCachedLookup(next, rdb, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCachedLookup_GetProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("second read is served from cache", func(t *testing.T) {
		origin := newOrigin()
		cache := newCache(origin, newFakeRedis())

		for range 2 {
			product, err := cache.GetProduct(ctx, "mug")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if product == nil || product.Title != "Ceramic Mug" {
				t.Fatalf("unexpected product: %+v", product)
			}
		}
		if origin.calls != 1 {
			t.Errorf("expected 1 origin call, got %d", origin.calls)
		}
	})

	t.Run("redis failure falls through to origin", func(t *testing.T) {
		origin := newOrigin()
		rdb := newFakeRedis()
		rdb.err = errors.New("connection refused")
		cache := newCache(origin, rdb)

		for range 2 {
			product, err := cache.GetProduct(ctx, "mug")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if product == nil || product.Price != 1000 {
				t.Fatalf("unexpected product: %+v", product)
			}
		}
		if origin.calls != 2 {
			t.Errorf("expected every read to reach origin, got %d calls", origin.calls)
		}
	})

	t.Run("corrupt entry is replaced from origin", func(t *testing.T) {
		origin := newOrigin()
		rdb := newFakeRedis()
		rdb.data[productKey("mug")] = "not json"
		cache := newCache(origin, rdb)

		product, err := cache.GetProduct(ctx, "mug")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if product == nil || product.ID != "mug" {
			t.Fatalf("unexpected product: %+v", product)
		}
		if origin.calls != 1 {
			t.Errorf("expected 1 origin call, got %d", origin.calls)
		}
		if rdb.data[productKey("mug")] == "not json" {
			t.Error("expected corrupt entry to be overwritten")
		}
	})

	t.Run("unknown product is not cached", func(t *testing.T) {
		origin := newOrigin()
		rdb := newFakeRedis()
		cache := newCache(origin, rdb)

		product, err := cache.GetProduct(ctx, "ghost")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if product != nil {
			t.Errorf("expected nil product, got %+v", product)
		}
		if len(rdb.data) != 0 {
			t.Errorf("expected empty cache, got %v", rdb.data)
		}
	})
}

func TestCachedLookup_Invalidate(t *testing.T) {
	ctx := context.Background()

	t.Run("drops cached entry", func(t *testing.T) {
		origin := newOrigin()
		rdb := newFakeRedis()
		cache := newCache(origin, rdb)

		if _, err := cache.GetProduct(ctx, "mug"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := cache.Invalidate(ctx, "mug"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := cache.GetProduct(ctx, "mug"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if origin.calls != 2 {
			t.Errorf("expected origin reread after invalidate, got %d calls", origin.calls)
		}
	})

	t.Run("reports redis failure", func(t *testing.T) {
		rdb := newFakeRedis()
		rdb.err = errors.New("connection refused")

		if err := newCache(newOrigin(), rdb).Invalidate(ctx, "mug"); err == nil {
			t.Error("expected error")
		}
	})
}
