package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"giftcode-market/internal/domain/codepool"
	"giftcode-market/internal/infra/cache"
	"giftcode-market/internal/pkg/errs"
	"giftcode-market/internal/usecase/commands"
)

// FulfillmentConsumer listens for order events that make an order
// eligible for code allocation and runs the allocator. Delivery is
// at-least-once; the allocator itself is idempotent.
type FulfillmentConsumer struct {
	url          string
	fulfillment  commands.FulfillmentCommands
	availability *cache.AvailabilityCache
}

func NewFulfillmentConsumer(url string, fulfillment commands.FulfillmentCommands, availability *cache.AvailabilityCache) *FulfillmentConsumer {
	return &FulfillmentConsumer{
		url:          url,
		fulfillment:  fulfillment,
		availability: availability,
	}
}

// Run blocks until ctx is cancelled, reconnecting with backoff when the
// broker connection drops.
func (c *FulfillmentConsumer) Run(ctx context.Context) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := amqp.Dial(c.url)
		if err != nil {
			slog.Warn("fulfillment consumer dial failed", "error", err.Error(), "retry_in", backoff.String())
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consumeLoop(ctx, conn); err != nil {
			slog.Warn("fulfillment consume loop ended", "error", err.Error())
		}
		_ = conn.Close()
	}
}

func (c *FulfillmentConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return errs.Wrap(err, "channel open")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		slog.Warn("fulfillment consumer qos failed", "error", err.Error())
	}

	deliveries := make(chan amqp.Delivery)
	for _, topic := range []string{TopicOrderPlaced, TopicOrderPaymentVerified} {
		if _, err := ch.QueueDeclare(topic, true, false, false, false, nil); err != nil {
			return errs.Wrap(err, "queue declare")
		}
		msgs, err := ch.Consume(topic, "", false, false, false, false, nil)
		if err != nil {
			return errs.Wrap(err, "queue consume")
		}
		go func() {
			for d := range msgs {
				deliveries <- d
			}
		}()
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case <-ctx.Done():
			return nil
		case amqpErr := <-closed:
			if amqpErr != nil {
				return errs.Wrap(amqpErr, "connection closed")
			}
			return errors.New("connection closed")
		case d := <-deliveries:
			c.handle(ctx, d)
		}
	}
}

func (c *FulfillmentConsumer) handle(ctx context.Context, d amqp.Delivery) {
	var event OrderEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		slog.Error("fulfillment event unmarshal failed", "error", err.Error())
		_ = d.Nack(false, false)
		return
	}

	result, err := c.fulfillment.AllocateOrder(ctx, event.OrderID)
	if err != nil {
		var stockErr *codepool.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			// Nothing was consumed; the order waits for a restock and a
			// later event. Requeueing would spin on the same shortfall.
			slog.Warn("allocation short on stock",
				"order_id", event.OrderID,
				"product_id", stockErr.ProductID,
				"shortfall", stockErr.Shortfall())
			_ = d.Ack(false)
		case errors.Is(err, commands.ErrOrderNotAllocatable), errors.Is(err, commands.ErrOrderNotFound):
			// Event for an order this worker has nothing to do for
			_ = d.Ack(false)
		default:
			slog.Error("allocation failed", "order_id", event.OrderID, "error", err.Error())
			_ = d.Nack(false, true)
		}
		return
	}

	if len(result.AffectedProducts) > 0 {
		c.availability.Invalidate(ctx, result.AffectedProducts...)
	}
	if result.DeliveredCodes > 0 {
		slog.Info("order codes delivered",
			"order_id", event.OrderID,
			"codes", result.DeliveredCodes)
	}
	_ = d.Ack(false)
}
