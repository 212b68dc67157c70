package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
	"github.com/joao-fontenele/storefront-orders/internal/messaging"
	"github.com/joao-fontenele/storefront-orders/internal/pricing"
)

var errStatusChanged = errors.New("order status changed")

// ReceiptHandler emails an itemized receipt for every new order and then
// moves the order to processing.
type ReceiptHandler struct {
	emailServiceURL  string
	ordersServiceURL string
	httpClient       *http.Client
	logger           *slog.Logger
}

func NewReceiptHandler(emailServiceURL, ordersServiceURL string, client *http.Client, logger *slog.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		emailServiceURL:  emailServiceURL,
		ordersServiceURL: ordersServiceURL,
		httpClient:       client,
		logger:           logger,
	}
}

func (h *ReceiptHandler) Handle(ctx context.Context, msg messaging.Message) error {
	if msg.EventType != "" && msg.EventType != domain.OrderCreatedEventType {
		h.logger.Debug("ignoring event", "event_type", msg.EventType, "key", msg.Key)
		return nil
	}

	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return messaging.Permanent(fmt.Errorf("unmarshal order created event: %w", err))
	}

	h.logger.Info("processing order created event", "order_id", event.OrderID, "customer_id", event.CustomerID)

	status, err := h.orderStatus(ctx, event.OrderID)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("get order: %w", err)
	}
	if status != domain.OrderStatusPending {
		h.logger.Info("order already moved on, skipping receipt", "order_id", event.OrderID, "status", status)
		return nil
	}

	if err := h.sendReceipt(ctx, event); err != nil {
		h.logger.Error("failed to send receipt", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send receipt: %w", err)
	}

	err = h.updateOrderStatus(ctx, event.OrderID, domain.OrderStatusPending, domain.OrderStatusProcessing)
	if errors.Is(err, errStatusChanged) {
		h.logger.Info("order status changed while sending receipt, leaving it", "order_id", event.OrderID)
		return nil
	}
	if err != nil {
		h.logger.Error("failed to update order status", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("update order status: %w", err)
	}

	h.logger.Info("order processing started", "order_id", event.OrderID)
	return nil
}

// Receipt renders the email body for an order. Amounts are the totals
// recorded at commit time.
func Receipt(event domain.OrderCreatedEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order %s.\n\n", event.OrderID)
	for _, item := range event.Items {
		fmt.Fprintf(&b, "%d x %s @ %s", item.Quantity, item.ProductID, pricing.Format(item.UnitPrice))
		for _, a := range item.AddOns {
			fmt.Fprintf(&b, " + %d x %s @ %s", a.Quantity, a.AddOnID, pricing.Format(a.Price))
		}
		fmt.Fprintf(&b, "  %s\n", pricing.Format(item.ItemTotal))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", pricing.Format(event.Subtotal))
	return b.String()
}

func (h *ReceiptHandler) sendReceipt(ctx context.Context, event domain.OrderCreatedEvent) error {
	body := map[string]string{
		"to":      event.CustomerID + "@example.com",
		"subject": "Your order " + event.OrderID,
		"body":    Receipt(event),
	}

	resp, err := h.do(ctx, http.MethodPost, h.emailServiceURL+"/send", body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	return nil
}

func (h *ReceiptHandler) orderStatus(ctx context.Context, orderID string) (domain.OrderStatus, error) {
	resp, err := h.do(ctx, http.MethodGet, fmt.Sprintf("%s/orders/%s", h.ordersServiceURL, orderID), nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", messaging.Permanent(fmt.Errorf("order %s not found", orderID))
	default:
		return "", fmt.Errorf("orders service returned status %d", resp.StatusCode)
	}

	var order struct {
		Status domain.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return "", fmt.Errorf("decode order %s: %w", orderID, err)
	}
	return order.Status, nil
}

// updateOrderStatus moves the order from "from" to "to". The orders service
// refuses with 409 if something else changed the status first.
func (h *ReceiptHandler) updateOrderStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error {
	url := fmt.Sprintf("%s/orders/%s/status", h.ordersServiceURL, orderID)
	resp, err := h.do(ctx, http.MethodPatch, url, map[string]string{"status": string(to), "from": string(from)})
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusConflict:
		return errStatusChanged
	case http.StatusNotFound:
		return messaging.Permanent(fmt.Errorf("order %s not found", orderID))
	default:
		return fmt.Errorf("orders service returned status %d", resp.StatusCode)
	}
}

func (h *ReceiptHandler) do(ctx context.Context, method, url string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return h.httpClient.Do(req)
}
