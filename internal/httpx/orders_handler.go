package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/quickshop/quickshop/internal/kafka"
	"github.com/quickshop/quickshop/internal/orders"
	"github.com/quickshop/quickshop/internal/redisx"
)

type OrderStore interface {
	PlaceOrder(ctx context.Context, items []orders.LineItem, buyer orders.Buyer) (*orders.Placement, error)
	AdvanceStatus(ctx context.Context, orderID int64, target orders.Status, actor orders.Actor) (*orders.Order, error)
	AcknowledgeReceipt(ctx context.Context, orderID, customerID int64) (*orders.Order, error)
	GetOrder(ctx context.Context, id int64) (*orders.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]orders.Order, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]orders.Order, error)
}

// EventPublisher is the producer surface the handler needs; nil
// publishers are skipped so the API runs without Kafka in tests.
type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type OrdersHandler struct {
	Orders         OrderStore
	Users          UserStore
	Carts          CartStore      // optional: clears the cart after checkout
	PlacedProducer EventPublisher // order.placed
	StatusProducer EventPublisher // order.status.changed
	Redis          *redis.Client  // optional status cache
	Service        string
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/api/orders", h.placeOrder)
	r.Get("/api/orders", h.listOrders)
	r.Get("/api/orders/{id}", h.getOrder)
	r.Patch("/api/orders/{id}/status", h.advanceStatus)
	r.Post("/api/orders/{id}/received", h.acknowledgeReceipt)
}

type placeOrderReq struct {
	Items   []orders.LineItem `json:"items"`
	Buyer   orders.Buyer      `json:"buyer"`
	CartKey string            `json:"cart_key,omitempty"`
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	placement, err := h.Orders.PlaceOrder(ctx, req.Items, req.Buyer)
	if err != nil {
		writeError(w, err)
		return
	}

	if req.CartKey != "" && h.Carts != nil {
		// best effort: a stale cart is harmless, the order is already placed
		_ = h.Carts.Clear(ctx, req.CartKey)
	}

	for _, o := range placement.CreatedOrders {
		h.cacheStatus(ctx, o.ID, o.Status)
		h.publishPlaced(r, o)
	}

	writeJSON(w, http.StatusCreated, placement)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	q := r.URL.Query()
	if raw := q.Get("customer_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid customer id supplied")
			return
		}
		out, err := h.Orders.ListByCustomer(ctx, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
		return
	}
	if raw := q.Get("seller_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid seller id supplied")
			return
		}
		out, err := h.Orders.ListBySeller(ctx, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
		return
	}
	writeMessage(w, http.StatusBadRequest, "customer_id or seller_id is required")
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid order id supplied")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Orders.GetOrder(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheStatus(ctx, o.ID, o.Status)
	writeJSON(w, http.StatusOK, o)
}

type advanceStatusReq struct {
	Status   string `json:"status"`
	SellerID int64  `json:"seller_id"`
}

func (h *OrdersHandler) advanceStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid order id supplied")
		return
	}
	var req advanceStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	target, err := orders.ParseStatus(req.Status)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	actor, err := h.resolveActor(ctx, req.SellerID)
	if err != nil {
		writeError(w, err)
		return
	}

	prev, err := h.Orders.GetOrder(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.Orders.AdvanceStatus(ctx, id, target, actor)
	if err != nil {
		writeError(w, err)
		return
	}

	h.cacheStatus(ctx, updated.ID, updated.Status)
	if updated.Status != prev.Status {
		h.publishStatusChanged(r, updated, prev.Status)
	}
	writeJSON(w, http.StatusOK, updated)
}

type acknowledgeReq struct {
	CustomerID int64 `json:"customer_id"`
}

func (h *OrdersHandler) acknowledgeReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid order id supplied")
		return
	}
	var req acknowledgeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.CustomerID <= 0 {
		writeMessage(w, http.StatusBadRequest, "customer_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	updated, err := h.Orders.AcknowledgeReceipt(ctx, id, req.CustomerID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.cacheStatus(ctx, updated.ID, updated.Status)
	h.publishStatusChanged(r, updated, orders.StatusShipped)
	writeJSON(w, http.StatusOK, updated)
}

// resolveActor loads the acting user for the role/ownership checks the
// repo performs.
func (h *OrdersHandler) resolveActor(ctx context.Context, userID int64) (orders.Actor, error) {
	if userID <= 0 {
		return orders.Actor{}, orders.ErrForbidden
	}
	u, err := h.Users.GetUser(ctx, userID)
	if err != nil {
		return orders.Actor{}, err
	}
	if u == nil {
		return orders.Actor{}, orders.ErrForbidden
	}
	return orders.Actor{ID: u.ID, Role: u.Role}, nil
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, orderID int64, status orders.Status) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	body, _ := json.Marshal(map[string]any{"status": status})
	_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) publishPlaced(r *http.Request, o orders.Order) {
	if h.PlacedProducer == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: strconv.FormatInt(o.ID, 10),
		Payload: kafkax.MustMarshal(orders.OrderPlacedPayload{
			OrderID:    o.ID,
			ProductID:  o.ProductID,
			SellerID:   o.SellerID,
			CustomerID: o.CustomerID,
			Quantity:   o.Quantity,
			PriceCents: o.PriceCents,
			BuyerName:  o.BuyerName,
		}),
	}
	h.PlacedProducer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) publishStatusChanged(r *http.Request, o *orders.Order, from orders.Status) {
	if h.StatusProducer == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: strconv.FormatInt(o.ID, 10),
		Payload: kafkax.MustMarshal(orders.OrderStatusChangedPayload{
			OrderID:  o.ID,
			SellerID: o.SellerID,
			From:     from,
			To:       o.Status,
		}),
	}
	h.StatusProducer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
