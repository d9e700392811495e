package orders

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/fashionmart/storefront/internal/checkout"
)

// MessageReader is the subset of kafka.Reader the consumer uses.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer materializes orders from checkout.finalized events. Creation is
// idempotent: the unique checkout_id index swallows replays, so at-least-once
// delivery from the outbox never yields a duplicate order.
type Consumer struct {
	repo   Repository
	reader MessageReader
	log    *zap.Logger
}

func NewConsumer(repo Repository, reader MessageReader, log *zap.Logger) *Consumer {
	return &Consumer{repo: repo, reader: reader, log: log}
}

// NewKafkaReader builds the reader the consumer drains.
func NewKafkaReader(topic, groupID string, brokers ...string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.Error("failed to close kafka reader", zap.Error(err))
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.log.Error("failed to read message", zap.Error(err))
		return
	}

	var event checkout.FinalizedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		c.log.Error("failed to parse finalized event", zap.Error(err))
		return
	}
	if event.CheckoutID == "" || event.UserID == "" {
		c.log.Error("finalized event missing identifiers",
			zap.String("checkout_id", event.CheckoutID))
		return
	}

	if err := c.repo.Insert(ctx, orderFromEvent(&event)); err != nil {
		if errors.Is(err, ErrDuplicateCheckout) {
			c.log.Info("order already exists, skipping",
				zap.String("checkout_id", event.CheckoutID))
			return
		}
		c.log.Error("failed to create order",
			zap.String("checkout_id", event.CheckoutID), zap.Error(err))
		return
	}

	c.log.Info("order created",
		zap.String("checkout_id", event.CheckoutID),
		zap.String("user_id", event.UserID))
}

func orderFromEvent(event *checkout.FinalizedEvent) *Order {
	items := make([]Item, len(event.Items))
	for i, it := range event.Items {
		items[i] = Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			ImageURL:  it.ImageURL,
			UnitPrice: it.UnitPrice,
			Size:      it.Size,
			Color:     it.Color,
			Quantity:  it.Quantity,
		}
	}

	return &Order{
		ID:              uuid.NewString(),
		CheckoutID:      event.CheckoutID,
		UserID:          event.UserID,
		Items:           items,
		ShippingAddress: event.ShippingAddress,
		PaymentMethod:   event.PaymentMethod,
		TotalPrice:      event.TotalPrice,
		Status:          StatusProcessing,
	}
}
