package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

type fakeStore struct {
	products map[string]domain.Product
	err      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{products: map[string]domain.Product{
		"mug": {ID: "mug", Title: "Ceramic Mug", Price: 1000, RequiredAddOns: []string{"gift-box"}},
	}}
}

func (s *fakeStore) ListAll(context.Context) ([]domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []domain.Product{}
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *fakeStore) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *fakeStore) Upsert(_ context.Context, p *domain.Product) error {
	if s.err != nil {
		return s.err
	}
	s.products[p.ID] = *p
	return nil
}

type fakeInvalidator struct {
	ids []string
	err error
}

func (f *fakeInvalidator) Invalidate(_ context.Context, id string) error {
	f.ids = append(f.ids, id)
	return f.err
}

func newTestMux(store Store, opts ...HandlerOption) *http.ServeMux {
	h := NewHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil)), opts...)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", h.HandleList)
	mux.HandleFunc("GET /products/{id}", h.HandleGet)
	mux.HandleFunc("PUT /products/{id}", h.HandleUpsert)
	return mux
}

func TestHandler_HandleGet(t *testing.T) {
	t.Run("returns product", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newTestMux(newFakeStore()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/mug", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var p domain.Product
		if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if p.Title != "Ceramic Mug" || !reflect.DeepEqual(p.RequiredAddOns, []string{"gift-box"}) {
			t.Errorf("unexpected product: %+v", p)
		}
	})

	t.Run("unknown product is 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newTestMux(newFakeStore()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/ghost", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("store failure is 500", func(t *testing.T) {
		store := newFakeStore()
		store.err = errors.New("db down")
		rec := httptest.NewRecorder()
		newTestMux(store).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/mug", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleList(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestMux(newFakeStore()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var products []domain.Product
	if err := json.NewDecoder(rec.Body).Decode(&products); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(products) != 1 {
		t.Errorf("expected 1 product, got %d", len(products))
	}
}

func TestHandler_HandleUpsert(t *testing.T) {
	t.Run("saves product and dedupes required add-ons", func(t *testing.T) {
		store := newFakeStore()
		body := `{"title":"Frame","price":2500,"required_add_ons":["glass","hook","glass",""]}`
		rec := httptest.NewRecorder()
		newTestMux(store).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/products/frame", strings.NewReader(body)))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		saved, ok := store.products["frame"]
		if !ok {
			t.Fatal("expected product to be stored")
		}
		if !reflect.DeepEqual(saved.RequiredAddOns, []string{"glass", "hook"}) {
			t.Errorf("expected [glass hook], got %v", saved.RequiredAddOns)
		}
		if saved.Price != 2500 {
			t.Errorf("expected price 2500, got %d", saved.Price)
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{`},
		{name: "missing title", body: `{"price":100}`},
		{name: "negative price", body: `{"title":"x","price":-1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestMux(newFakeStore()).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/products/x", strings.NewReader(tt.body)))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestHandler_HandleUpsert_Invalidates(t *testing.T) {
	inv := &fakeInvalidator{err: errors.New("redis down")}
	mux := newTestMux(newFakeStore(), WithInvalidator(inv))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/products/mug", strings.NewReader(`{"title":"Mug","price":1200}`))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 even when invalidation fails, got %d", rec.Code)
	}
	if !reflect.DeepEqual(inv.ids, []string{"mug"}) {
		t.Errorf("expected mug to be invalidated, got %v", inv.ids)
	}
}
