package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

// productNotFoundMessage is the 404 body clients use to tell an unknown
// product apart from an unknown route.
const productNotFoundMessage = "product not found"

type Store interface {
	ListAll(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	Upsert(ctx context.Context, p *domain.Product) error
}

// Invalidator drops cached copies of a product after it changes.
type Invalidator interface {
	Invalidate(ctx context.Context, id string) error
}

type Handler struct {
	store       Store
	invalidator Invalidator
	logger      *slog.Logger
}

type HandlerOption func(*Handler)

func WithInvalidator(inv Invalidator) HandlerOption {
	return func(h *Handler) {
		h.invalidator = inv
	}
}

func NewHandler(store Store, logger *slog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		store:  store,
		logger: logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("products listed", "count", len(products))
	h.writeJSON(w, http.StatusOK, products)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get product", "error", err, "product_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if product == nil {
		h.writeError(w, http.StatusNotFound, productNotFoundMessage)
		return
	}

	h.writeJSON(w, http.StatusOK, product)
}

type upsertRequest struct {
	Title                       string   `json:"title"`
	Price                       int64    `json:"price"`
	RequiredAddOns              []string `json:"required_add_ons"`
	AllowsComponents            bool     `json:"allows_components"`
	AllowsCustomPersonalization bool     `json:"allows_custom_personalization"`
}

func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		h.writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Price < 0 {
		h.writeError(w, http.StatusBadRequest, "price must be >= 0")
		return
	}

	product := &domain.Product{
		ID:                          id,
		Title:                       req.Title,
		Price:                       req.Price,
		RequiredAddOns:              dedupe(req.RequiredAddOns),
		AllowsComponents:            req.AllowsComponents,
		AllowsCustomPersonalization: req.AllowsCustomPersonalization,
	}

	if err := h.store.Upsert(r.Context(), product); err != nil {
		h.logger.Error("failed to upsert product", "error", err, "product_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.invalidator != nil {
		if err := h.invalidator.Invalidate(r.Context(), id); err != nil {
			h.logger.Warn("failed to invalidate cached product", "error", err, "product_id", id)
		}
	}

	h.logger.Info("product saved", "product_id", id, "required_add_ons", len(product.RequiredAddOns))
	h.writeJSON(w, http.StatusOK, product)
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
