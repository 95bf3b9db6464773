package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/quickshop/quickshop/internal/kafka"
	"github.com/quickshop/quickshop/internal/orders"
	"github.com/quickshop/quickshop/internal/redisx"
)

// Service reacts to order lifecycle events: it warms the order-status
// cache and surfaces "new work" notifications for sellers. It never
// touches stock; the placement transaction already settled that.
type Service struct {
	Redis       *redis.Client
	Log         *slog.Logger
	ServiceName string
}

// HandleOrderPlaced is the consumer handler for the order.placed topic.
func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil
	}
	if done, err := s.dedup(ctx, env.EventID); done || err != nil {
		return err
	}

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	s.cacheStatus(ctx, p.OrderID, orders.StatusPending)

	attrs := []any{"order_id", p.OrderID, "product_id", p.ProductID, "quantity", p.Quantity}
	if p.SellerID != nil {
		attrs = append(attrs, "seller_id", *p.SellerID)
	}
	s.Log.Info("order awaiting packing", attrs...)
	return nil
}

// HandleStatusChanged keeps the cached status in step with transitions.
func (s *Service) HandleStatusChanged(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderStatusChanged {
		return nil
	}
	if done, err := s.dedup(ctx, env.EventID); done || err != nil {
		return err
	}

	p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
	if err != nil {
		return err
	}

	s.cacheStatus(ctx, p.OrderID, p.To)
	s.Log.Info("order status changed", "order_id", p.OrderID, "from", p.From, "to", p.To)
	return nil
}

// dedup reports whether this event id was already processed.
func (s *Service) dedup(ctx context.Context, eventID string) (bool, error) {
	key := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, eventID)
	exists, err := redisx.Exists(ctx, s.Redis, key)
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}
	return false, s.Redis.Set(ctx, key, "1", redisx.TTLDedup).Err()
}

func (s *Service) cacheStatus(ctx context.Context, orderID int64, status orders.Status) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	body, _ := json.Marshal(map[string]any{"status": status})
	if err := s.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err(); err != nil {
		s.Log.Warn("status cache write failed", "order_id", orderID, "error", err)
	}
}
