package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"marketplace-service/config"
	"marketplace-service/mailer"
	"marketplace-service/middlewares"
	"marketplace-service/models"
)

// OrderConsumer turns order events into buyer notifications.
type OrderConsumer struct {
	mailer mailer.Mailer
}

func NewOrderConsumer(m mailer.Mailer) *OrderConsumer {
	return &OrderConsumer{mailer: m}
}

// Start consumes the order queue and its dead-letter queue until ctx is done
// or the channel closes.
func (c *OrderConsumer) Start(ctx context.Context, ch *amqp.Channel, cfg *config.Config) error {
	msgs, err := ch.Consume(
		cfg.OrderQueue,
		"marketplace-service", // consumer tag
		false,                 // auto-ack
		false,                 // exclusive
		false,                 // no-local
		false,                 // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register order consumer: %w", err)
	}

	dlqMsgs, err := ch.Consume(
		cfg.DeadLetterQueue,
		"marketplace-service-dlq",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register dead-letter consumer: %w", err)
	}

	go consume(ctx, msgs, func(msg amqp.Delivery) { c.processOrderMessage(ctx, msg) })
	go consume(ctx, dlqMsgs, processDeadLetterMessage)
	return nil
}

func consume(ctx context.Context, msgs <-chan amqp.Delivery, handle func(amqp.Delivery)) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			handle(msg)
		}
	}
}

func (c *OrderConsumer) processOrderMessage(ctx context.Context, msg amqp.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Recovered from panic in message processing", "panic", r)
			_ = msg.Nack(false, false)
		}
	}()

	var event models.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		slog.Warn("Invalid order event", "body", string(msg.Body), "err", err)
		_ = msg.Nack(false, false)
		middlewares.RecordOperation("consume_order_event", false)
		return
	}

	slog.Info("Processing order event", "order_id", event.OrderID, "type", event.Type, "status", event.Status)

	if err := c.handle(ctx, event); err != nil {
		slog.Error("Failed to handle order event", "order_id", event.OrderID, "type", event.Type, "err", err)
		_ = msg.Nack(false, false)
		middlewares.RecordOperation("consume_order_event", false)
		return
	}

	if err := msg.Ack(false); err != nil {
		slog.Warn("Failed to ack order event", "order_id", event.OrderID, "err", err)
	}
	middlewares.RecordOperation("consume_order_event", true)
}

func (c *OrderConsumer) handle(ctx context.Context, event models.OrderEvent) error {
	if event.BuyerEmail == "" {
		slog.Warn("Order event has no buyer email, skipping notification", "order_id", event.OrderID)
		return nil
	}

	var subject, body string
	switch event.Type {
	case models.EventOrderCreated:
		subject = fmt.Sprintf("Order %s placed", event.OrderID)
		body = fmt.Sprintf("Thank you for your order.\n\nOrder: %s\nTotal: %s\nStatus: %s\n",
			event.OrderID, event.Total.StringFixed(2), event.Status)
	case models.EventOrderStatusUpdated:
		subject = fmt.Sprintf("Order %s is now %s", event.OrderID, event.Status)
		body = fmt.Sprintf("Your order %s has been updated.\n\nStatus: %s\n", event.OrderID, event.Status)
	default:
		slog.Warn("Unknown order event type", "type", event.Type)
		return nil
	}
	return c.mailer.Send(ctx, event.BuyerEmail, subject, body)
}

func processDeadLetterMessage(msg amqp.Delivery) {
	slog.Warn("Received dead letter", "message_id", msg.MessageId, "type", msg.Type, "body", string(msg.Body))
	middlewares.RecordOperation("dead_letter", true)
	if err := msg.Ack(false); err != nil {
		slog.Warn("Failed to ack dead letter", "err", err)
	}
}
