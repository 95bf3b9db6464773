package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderID    int64  `json:"order_id"`
	ProductID  int64  `json:"product_id"`
	SellerID   *int64 `json:"seller_id,omitempty"`
	CustomerID *int64 `json:"customer_id,omitempty"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
	BuyerName  string `json:"buyer_name"`
}

type OrderStatusChangedPayload struct {
	OrderID  int64  `json:"order_id"`
	SellerID *int64 `json:"seller_id,omitempty"`
	From     Status `json:"from"`
	To       Status `json:"to"`
}
