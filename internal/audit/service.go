// Package audit follows the order event stream and writes every lifecycle
// event to the structured log. Failed stock compensations are logged at
// error level; they are the events an operator has to act on.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	kafkax "github.com/ariefcatur/go-shop-orders/internal/kafka"
	"github.com/ariefcatur/go-shop-orders/internal/orders"
	"github.com/ariefcatur/go-shop-orders/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Service struct {
	Redis       *redis.Client // nil = tanpa dedup
	Log         *zap.Logger
	ServiceName string
}

// HandleEvent: dipasang sebagai handler consumer.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	// 1) decode envelope
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// pesan rusak tidak akan pernah bisa diproses; log lalu commit
		s.Log.Error("undecodable event", zap.ByteString("key", m.Key), zap.Error(err))
		return nil
	}

	// 2) dedup via Redis (pakai event_id)
	if s.Redis != nil && env.EventID != "" {
		first, err := redisx.MarkSeen(ctx, s.Redis, s.ServiceName, env.EventID)
		if err != nil {
			return fmt.Errorf("dedup %s: %w", env.EventID, err)
		}
		if !first {
			return nil
		}
	}

	l := s.Log.With(
		zap.String("event_id", env.EventID),
		zap.String("event_type", env.EventType),
		zap.String("order_id", env.CorrelationID),
		zap.String("producer", env.Producer),
		zap.Time("occurred_at", env.OccurredAt),
	)
	if h := kafkax.HeaderValue(m, "x-event-type"); h != "" && h != env.EventType {
		l.Warn("header/envelope event type mismatch", zap.String("header", h))
	}

	// 3) decode payload per type
	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			return s.bad(l, err)
		}
		l.Info("order created", zap.String("user_id", p.UserID), zap.String("product_id", p.ProductID),
			zap.Int("qty", p.Quantity), zap.String("total_price", p.TotalPrice.String()))
	case orders.EventOrderConfirmed:
		p, err := kafkax.UnwrapPayload[orders.OrderConfirmedPayload](env.Payload)
		if err != nil {
			return s.bad(l, err)
		}
		l.Info("order confirmed", zap.String("product_id", p.ProductID), zap.Int("reserved", p.Reserved))
	case orders.EventStockReservationFailed:
		p, err := kafkax.UnwrapPayload[orders.StockReservationFailedPayload](env.Payload)
		if err != nil {
			return s.bad(l, err)
		}
		l.Warn("stock reservation failed, order pending", zap.String("product_id", p.ProductID),
			zap.Int("qty", p.Quantity), zap.String("reason", p.Reason), zap.String("detail", p.Detail))
	case orders.EventOrderCancelled:
		p, err := kafkax.UnwrapPayload[orders.OrderCancelledPayload](env.Payload)
		if err != nil {
			return s.bad(l, err)
		}
		l.Info("order cancelled", zap.String("from", string(p.FromStatus)), zap.Int("released", p.Released))
	case orders.EventStockCompensationFailed:
		p, err := kafkax.UnwrapPayload[orders.StockCompensationFailedPayload](env.Payload)
		if err != nil {
			return s.bad(l, err)
		}
		l.Error("stock compensation failed, manual release needed", zap.String("product_id", p.ProductID),
			zap.Int("qty", p.Quantity), zap.String("detail", p.Detail))
	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return s.bad(l, err)
		}
		l.Info("order status changed", zap.String("from", string(p.From)), zap.String("to", string(p.To)))
	default:
		l.Debug("ignored event")
	}
	return nil
}

func (s *Service) bad(l *zap.Logger, err error) error {
	l.Error("undecodable payload", zap.Error(err))
	return nil
}
