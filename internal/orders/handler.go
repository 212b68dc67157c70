package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
	"github.com/joao-fontenele/storefront-orders/internal/pricing"
)

type Store interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	UpdateStatusFrom(ctx context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error)
	UpdateNotes(ctx context.Context, id string, notes string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
}

type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Handler struct {
	store     Store
	catalog   pricing.ProductLookup
	publisher Publisher
	metrics   *commitMetrics
	logger    *slog.Logger
}

// NewHandler wires the commit pipeline. publisher may be nil, in which case
// no order events are emitted.
func NewHandler(store Store, catalog pricing.ProductLookup, publisher Publisher, logger *slog.Logger) (*Handler, error) {
	m, err := newCommitMetrics()
	if err != nil {
		return nil, err
	}

	return &Handler{
		store:     store,
		catalog:   catalog,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}, nil
}

type createOrderRequest struct {
	CustomerID string            `json:"customer_id"`
	Notes      string            `json:"notes"`
	Items      []domain.LineItem `json:"items"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CustomerID == "" {
		h.writeError(w, http.StatusBadRequest, "missing customer id")
		return
	}

	order, err := h.commit(r.Context(), req.CustomerID, req.Notes, normalizeItems(req.Items))
	if err != nil {
		h.writeCommitError(w, err)
		return
	}

	if h.publisher != nil {
		event := domain.OrderCreatedEvent{
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			Items:      order.Items,
			Subtotal:   order.Subtotal,
			Timestamp:  order.CreatedAt,
		}
		if err := h.publisher.Publish(r.Context(), order.ID, event); err != nil {
			h.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
		}
	}

	h.logger.Info("order created", "order_id", order.ID, "customer_id", order.CustomerID, "subtotal", order.Subtotal)
	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) writeCommitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pricing.ErrInvalidQuantity), errors.Is(err, pricing.ErrInvalidPrice):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pricing.ErrMissingRequiredAddOns), errors.Is(err, pricing.ErrProductNotFound):
		h.logger.Info("order rejected", "reason", err.Error())
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, errCatalogUnavailable):
		h.logger.Error("failed to validate order against catalog", "error", err)
		h.writeError(w, http.StatusBadGateway, "catalog unavailable")
	default:
		h.logger.Error("failed to create order", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

type quoteRequest struct {
	Items []domain.LineItem `json:"items"`
}

type quoteResponse struct {
	Items    []domain.LineItem `json:"items"`
	Subtotal int64             `json:"subtotal"`
}

// HandleQuote prices items without validating them against the catalog or
// persisting anything.
func (h *Handler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := normalizeItems(req.Items)
	if err := pricing.ValidateItems(items); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	priced, subtotal := pricing.Price(items)
	h.writeJSON(w, http.StatusOK, quoteResponse{Items: priced, Subtotal: subtotal})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	order, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.logger.Info("order retrieved", "order_id", order.ID)
	h.writeJSON(w, http.StatusOK, order)
}

// updateStatusRequest moves an order to Status. When From is set the update
// only applies while the order is still in From.
type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
	From   domain.OrderStatus `json:"from,omitempty"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !req.Status.Valid() || (req.From != "" && !req.From.Valid()) {
		h.writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	var (
		order *domain.Order
		err   error
	)
	if req.From != "" {
		order, err = h.store.UpdateStatusFrom(r.Context(), id, req.From, req.Status)
	} else {
		order, err = h.store.UpdateStatus(r.Context(), id, req.Status)
	}
	if errors.Is(err, ErrStatusConflict) {
		h.writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to update order status", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.logger.Info("order status updated", "order_id", order.ID, "status", order.Status)
	h.writeJSON(w, http.StatusOK, order)
}

type updateNotesRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) HandleUpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}

	var req updateNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.store.UpdateNotes(r.Context(), id, req.Notes)
	if err != nil {
		h.logger.Error("failed to update order notes", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.logger.Info("order notes updated", "order_id", order.ID)
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("orders listed", "count", len(orders))
	h.writeJSON(w, http.StatusOK, orders)
}

// orderID reads the {id} path value. Malformed IDs cannot exist, so they are
// answered with 404 without touching the store.
func (h *Handler) orderID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return "", false
	}
	if err := uuid.Validate(id); err != nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return "", false
	}
	return id, true
}

func normalizeItems(items []domain.LineItem) []domain.LineItem {
	out := make([]domain.LineItem, len(items))
	for i, item := range items {
		item.SelectedComponents = nonNil(item.SelectedComponents)
		item.AddOns = nonNil(item.AddOns)
		item.Personalization = nonNil(item.Personalization)
		item.CustomPersonalization = nonNil(item.CustomPersonalization)
		out[i] = item
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
