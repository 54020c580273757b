package listener

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/dairydock/catalog-service/internal/product"
	"github.com/dairydock/catalog-service/pkg/broker"
	"github.com/dairydock/catalog-service/pkg/logger"
)

// OrderPlacedEvent is the shape of order events on the bus. Only the fields
// the catalog cares about are decoded.
type OrderPlacedEvent struct {
	OrderID string          `json:"orderId"`
	Items   []OrderLineItem `json:"items"`
}

type OrderLineItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderListener consumes order events and applies each line against product
// stock and sales counters.
type OrderListener struct {
	consumer *broker.KafkaConsumer
	uc       product.UseCase
	logger   logger.ZapLogger
}

func NewOrderListener(consumer *broker.KafkaConsumer, uc product.UseCase, log logger.ZapLogger) *OrderListener {
	return &OrderListener{
		consumer: consumer,
		uc:       uc,
		logger:   log,
	}
}

// Start blocks consuming messages until ctx is cancelled.
func (l *OrderListener) Start(ctx context.Context) {
	l.logger.Info("order listener started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("order listener stopped")
			return
		default:
		}

		msg, err := l.consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				l.logger.Info("order listener stopped")
				return
			}
			l.logger.Error("failed to read order event", zap.Error(err))
			time.Sleep(1 * time.Second)
			continue
		}

		l.processMessage(ctx, msg.Value)
	}
}

func (l *OrderListener) processMessage(ctx context.Context, value []byte) {
	var event OrderPlacedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("failed to decode order event", zap.Error(err))
		return
	}

	for _, item := range event.Items {
		if err := l.uc.RecordSale(ctx, item.ProductID, item.Quantity); err != nil {
			// A bad line must not stop the rest of the order.
			l.logger.Error("failed to apply order line",
				zap.String("order_id", event.OrderID),
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
			continue
		}
		l.logger.Info("order line applied",
			zap.String("order_id", event.OrderID),
			zap.String("product_id", item.ProductID),
			zap.Int("quantity", item.Quantity))
	}
}
