package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/config"
	"marketplace-service/models"
)

type capturedPublish struct {
	exchange string
	msg      amqp.Publishing
}

type fakeChannel struct {
	published []capturedPublish
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, _ string, _, _ bool, msg amqp.Publishing) error {
	c.published = append(c.published, capturedPublish{exchange: exchange, msg: msg})
	return nil
}

func TestPriority(t *testing.T) {
	assert.Equal(t, PriorityLarge, Priority(models.OrderEvent{Total: decimal.RequireFromString("1000.01")}))
	assert.Equal(t, PriorityDefault, Priority(models.OrderEvent{Total: decimal.NewFromInt(1000)}))
	assert.Equal(t, PriorityCancelled, Priority(models.OrderEvent{Status: models.OrderCancelled, Total: decimal.NewFromInt(10)}))
	assert.Equal(t, PriorityDefault, Priority(models.OrderEvent{Status: models.OrderShipped, Total: decimal.NewFromInt(10)}))
}

func TestPublishOrderEvent(t *testing.T) {
	ch := &fakeChannel{}
	r := &RabbitMQ{Cfg: &config.Config{OrderExchange: "orders_exchange"}, publisher: ch}

	event := models.OrderEvent{
		OrderID: "8d6f0c1e-0000-4000-8000-000000000000",
		BuyerID: 7,
		Type:    models.EventOrderCreated,
		Status:  models.OrderPending,
		Total:   decimal.RequireFromString("1500.00"),
	}
	require.NoError(t, r.PublishOrderEvent(context.Background(), event))

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, "orders_exchange", got.exchange)
	assert.Equal(t, PriorityLarge, got.msg.Priority)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, models.EventOrderCreated, got.msg.Type)

	var decoded models.OrderEvent
	require.NoError(t, json.Unmarshal(got.msg.Body, &decoded))
	assert.Equal(t, event.OrderID, decoded.OrderID)
	assert.True(t, event.Total.Equal(decoded.Total))
}
