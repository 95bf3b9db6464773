package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/quickshop/quickshop/internal/accounts"
	"github.com/quickshop/quickshop/internal/catalog"
	"github.com/quickshop/quickshop/internal/orders"
)

type fakeOrderStore struct {
	placeFn   func(items []orders.LineItem, buyer orders.Buyer) (*orders.Placement, error)
	advanceFn func(orderID int64, target orders.Status, actor orders.Actor) (*orders.Order, error)
	ackFn     func(orderID, customerID int64) (*orders.Order, error)
	getFn     func(id int64) (*orders.Order, error)
}

func (f *fakeOrderStore) PlaceOrder(_ context.Context, items []orders.LineItem, buyer orders.Buyer) (*orders.Placement, error) {
	return f.placeFn(items, buyer)
}

func (f *fakeOrderStore) AdvanceStatus(_ context.Context, orderID int64, target orders.Status, actor orders.Actor) (*orders.Order, error) {
	return f.advanceFn(orderID, target, actor)
}

func (f *fakeOrderStore) AcknowledgeReceipt(_ context.Context, orderID, customerID int64) (*orders.Order, error) {
	return f.ackFn(orderID, customerID)
}

func (f *fakeOrderStore) GetOrder(_ context.Context, id int64) (*orders.Order, error) {
	return f.getFn(id)
}

func (f *fakeOrderStore) ListByCustomer(_ context.Context, _ int64) ([]orders.Order, error) {
	return nil, nil
}

func (f *fakeOrderStore) ListBySeller(_ context.Context, _ int64) ([]orders.Order, error) {
	return nil, nil
}

type fakeUserStore map[int64]*accounts.User

func (f fakeUserStore) GetUser(_ context.Context, id int64) (*accounts.User, error) {
	return f[id], nil
}

type fakePublisher struct {
	messages [][]byte
}

func (f *fakePublisher) Publish(_, value []byte, _ ...kafkago.Header) {
	f.messages = append(f.messages, value)
}

func sellerUsers() fakeUserStore {
	return fakeUserStore{
		7: {ID: 7, Username: "shopkeeper", Role: accounts.RoleSeller},
		9: {ID: 9, Username: "buyer", Role: accounts.RoleCustomer},
	}
}

func orderFixture(status orders.Status) *orders.Order {
	sellerID := int64(7)
	return &orders.Order{
		ID: 42, ProductID: 1, SellerID: &sellerID, Quantity: 3, Status: status,
		ProductName: "Classic Tee", PriceCents: 1000,
		BuyerName: "Ada", Address: "12 Analytical Way", Phone: "555", PaymentMethod: "cod",
	}
}

func doRequest(t *testing.T, h *OrdersHandler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter()
	h.Register(router)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestOrdersHandler_PlaceOrder(t *testing.T) {
	t.Run("creates orders and publishes one event per order", func(t *testing.T) {
		pub := &fakePublisher{}
		store := &fakeOrderStore{
			placeFn: func(items []orders.LineItem, buyer orders.Buyer) (*orders.Placement, error) {
				if len(items) != 1 || items[0].ProductID != 1 || items[0].Quantity != 3 {
					t.Errorf("unexpected items: %+v", items)
				}
				if buyer.FullName != "Ada" {
					t.Errorf("unexpected buyer: %+v", buyer)
				}
				return &orders.Placement{
					UpdatedProducts: []catalog.Product{{ID: 1, Stock: 2}},
					CreatedOrders:   []orders.Order{*orderFixture(orders.StatusPending)},
				}, nil
			},
		}
		h := &OrdersHandler{Orders: store, Users: sellerUsers(), PlacedProducer: pub, Service: "test"}

		rec := doRequest(t, h, http.MethodPost, "/api/orders",
			`{"items":[{"product_id":1,"quantity":3}],"buyer":{"full_name":"Ada","address":"12 Analytical Way","phone":"555","payment_method":"cod"}}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var placement orders.Placement
		if err := json.Unmarshal(rec.Body.Bytes(), &placement); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(placement.CreatedOrders) != 1 || placement.CreatedOrders[0].Status != orders.StatusPending {
			t.Errorf("unexpected placement: %+v", placement)
		}
		if placement.UpdatedProducts[0].Stock != 2 {
			t.Errorf("expected post-decrement stock 2, got %d", placement.UpdatedProducts[0].Stock)
		}
		if len(pub.messages) != 1 {
			t.Fatalf("expected 1 published event, got %d", len(pub.messages))
		}
		var env orders.Envelope
		if err := json.Unmarshal(pub.messages[0], &env); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if env.EventType != orders.EventOrderPlaced {
			t.Errorf("event type = %s", env.EventType)
		}
	})

	t.Run("insufficient stock maps to 400 naming the product", func(t *testing.T) {
		store := &fakeOrderStore{
			placeFn: func([]orders.LineItem, orders.Buyer) (*orders.Placement, error) {
				return nil, &orders.InsufficientStockError{ProductID: 2, Requested: 1, Available: 0}
			},
		}
		h := &OrdersHandler{Orders: store, Users: sellerUsers()}

		rec := doRequest(t, h, http.MethodPost, "/api/orders",
			`{"items":[{"product_id":2,"quantity":1}],"buyer":{"full_name":"Ada","address":"a","phone":"p","payment_method":"cod"}}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "product 2") {
			t.Errorf("error should name the product: %s", rec.Body.String())
		}
	})

	t.Run("unknown product maps to 404", func(t *testing.T) {
		store := &fakeOrderStore{
			placeFn: func([]orders.LineItem, orders.Buyer) (*orders.Placement, error) {
				return nil, &orders.NotFoundError{Kind: "product", ID: 99}
			},
		}
		h := &OrdersHandler{Orders: store, Users: sellerUsers()}

		rec := doRequest(t, h, http.MethodPost, "/api/orders",
			`{"items":[{"product_id":99,"quantity":1}],"buyer":{"full_name":"Ada","address":"a","phone":"p","payment_method":"cod"}}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("empty cart maps to 400", func(t *testing.T) {
		store := &fakeOrderStore{
			placeFn: func(items []orders.LineItem, buyer orders.Buyer) (*orders.Placement, error) {
				return nil, orders.ValidatePlacement(items, buyer)
			},
		}
		h := &OrdersHandler{Orders: store, Users: sellerUsers()}

		rec := doRequest(t, h, http.MethodPost, "/api/orders",
			`{"items":[],"buyer":{"full_name":"Ada","address":"a","phone":"p","payment_method":"cod"}}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestOrdersHandler_AdvanceStatus(t *testing.T) {
	t.Run("seller advances pending to packing and an event is published", func(t *testing.T) {
		pub := &fakePublisher{}
		store := &fakeOrderStore{
			getFn: func(int64) (*orders.Order, error) { return orderFixture(orders.StatusPending), nil },
			advanceFn: func(orderID int64, target orders.Status, actor orders.Actor) (*orders.Order, error) {
				if actor.ID != 7 || actor.Role != accounts.RoleSeller {
					t.Errorf("unexpected actor: %+v", actor)
				}
				if target != orders.StatusPacking {
					t.Errorf("unexpected target: %s", target)
				}
				return orderFixture(orders.StatusPacking), nil
			},
		}
		h := &OrdersHandler{Orders: store, Users: sellerUsers(), StatusProducer: pub, Service: "test"}

		rec := doRequest(t, h, http.MethodPatch, "/api/orders/42/status",
			`{"status":"packing","seller_id":7}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(pub.messages) != 1 {
			t.Fatalf("expected 1 event, got %d", len(pub.messages))
		}
		var env orders.Envelope
		_ = json.Unmarshal(pub.messages[0], &env)
		payload := orders.OrderStatusChangedPayload{}
		_ = json.Unmarshal(env.Payload, &payload)
		if payload.From != orders.StatusPending || payload.To != orders.StatusPacking {
			t.Errorf("payload = %+v", payload)
		}
	})

	t.Run("same-status request is a no-op without an event", func(t *testing.T) {
		pub := &fakePublisher{}
		store := &fakeOrderStore{
			getFn: func(int64) (*orders.Order, error) { return orderFixture(orders.StatusPacking), nil },
			advanceFn: func(int64, orders.Status, orders.Actor) (*orders.Order, error) {
				return orderFixture(orders.StatusPacking), nil
			},
		}
		h := &OrdersHandler{Orders: store, Users: sellerUsers(), StatusProducer: pub}

		rec := doRequest(t, h, http.MethodPatch, "/api/orders/42/status",
			`{"status":"packing","seller_id":7}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(pub.messages) != 0 {
			t.Errorf("no-op must not publish, got %d events", len(pub.messages))
		}
	})

	t.Run("skipping a step maps to 409", func(t *testing.T) {
		store := &fakeOrderStore{
			getFn: func(int64) (*orders.Order, error) { return orderFixture(orders.StatusPending), nil },
			advanceFn: func(int64, orders.Status, orders.Actor) (*orders.Order, error) {
				return nil, &orders.InvalidTransitionError{From: orders.StatusPending, To: orders.StatusShipped}
			},
		}
		h := &OrdersHandler{Orders: store, Users: sellerUsers()}

		rec := doRequest(t, h, http.MethodPatch, "/api/orders/42/status",
			`{"status":"shipped","seller_id":7}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("a customer cannot advance", func(t *testing.T) {
		store := &fakeOrderStore{
			getFn: func(int64) (*orders.Order, error) { return orderFixture(orders.StatusPending), nil },
			advanceFn: func(_ int64, _ orders.Status, actor orders.Actor) (*orders.Order, error) {
				if actor.Role != accounts.RoleSeller {
					return nil, orders.ErrForbidden
				}
				return orderFixture(orders.StatusPacking), nil
			},
		}
		h := &OrdersHandler{Orders: store, Users: sellerUsers()}

		rec := doRequest(t, h, http.MethodPatch, "/api/orders/42/status",
			`{"status":"packing","seller_id":9}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("unknown status maps to 400", func(t *testing.T) {
		h := &OrdersHandler{Orders: &fakeOrderStore{}, Users: sellerUsers()}

		rec := doRequest(t, h, http.MethodPatch, "/api/orders/42/status",
			`{"status":"teleported","seller_id":7}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestOrdersHandler_AcknowledgeReceipt(t *testing.T) {
	t.Run("completes a shipped order", func(t *testing.T) {
		pub := &fakePublisher{}
		store := &fakeOrderStore{
			ackFn: func(orderID, customerID int64) (*orders.Order, error) {
				if customerID != 9 {
					t.Errorf("customer id = %d", customerID)
				}
				return orderFixture(orders.StatusCompleted), nil
			},
		}
		h := &OrdersHandler{Orders: store, Users: sellerUsers(), StatusProducer: pub, Service: "test"}

		rec := doRequest(t, h, http.MethodPost, "/api/orders/42/received", `{"customer_id":9}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(pub.messages) != 1 {
			t.Errorf("expected 1 event, got %d", len(pub.messages))
		}
	})

	t.Run("non-shipped order maps to 412", func(t *testing.T) {
		store := &fakeOrderStore{
			ackFn: func(int64, int64) (*orders.Order, error) { return nil, orders.ErrNotShipped },
		}
		h := &OrdersHandler{Orders: store, Users: sellerUsers()}

		rec := doRequest(t, h, http.MethodPost, "/api/orders/42/received", `{"customer_id":9}`)

		if rec.Code != http.StatusPreconditionFailed {
			t.Fatalf("expected 412, got %d", rec.Code)
		}
	})

	t.Run("a different customer maps to 403", func(t *testing.T) {
		store := &fakeOrderStore{
			ackFn: func(int64, int64) (*orders.Order, error) { return nil, orders.ErrForbidden },
		}
		h := &OrdersHandler{Orders: store, Users: sellerUsers()}

		rec := doRequest(t, h, http.MethodPost, "/api/orders/42/received", `{"customer_id":5}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})
}
