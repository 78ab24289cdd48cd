package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/models"
)

type fakeAcknowledger struct {
	acked, nacked, requeued bool
}

func (a *fakeAcknowledger) Ack(uint64, bool) error { a.acked = true; return nil }

func (a *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked, a.requeued = true, requeue
	return nil
}

func (a *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	a.nacked, a.requeued = true, requeue
	return nil
}

type fakeMailer struct {
	to, subject string
	err         error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, _ string) error {
	m.to, m.subject = to, subject
	return m.err
}

func delivery(t *testing.T, ack *fakeAcknowledger, event any) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, Body: body}
}

func TestOrderCreatedSendsMailAndAcks(t *testing.T) {
	m := &fakeMailer{}
	ack := &fakeAcknowledger{}
	c := NewOrderConsumer(m)

	c.processOrderMessage(context.Background(), delivery(t, ack, models.OrderEvent{
		OrderID:    "abc",
		BuyerEmail: "alice@example.com",
		Type:       models.EventOrderCreated,
		Status:     models.OrderPending,
		Total:      decimal.NewFromInt(20),
	}))

	assert.True(t, ack.acked)
	assert.Equal(t, "alice@example.com", m.to)
	assert.Equal(t, "Order abc placed", m.subject)
}

func TestMailFailureDeadLetters(t *testing.T) {
	ack := &fakeAcknowledger{}
	c := NewOrderConsumer(&fakeMailer{err: errors.New("smtp down")})

	c.processOrderMessage(context.Background(), delivery(t, ack, models.OrderEvent{
		OrderID: "abc", BuyerEmail: "alice@example.com", Type: models.EventOrderStatusUpdated, Status: models.OrderShipped,
	}))

	assert.False(t, ack.acked)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)
}

func TestMalformedMessageRejected(t *testing.T) {
	ack := &fakeAcknowledger{}
	NewOrderConsumer(&fakeMailer{}).processOrderMessage(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("7|created")})

	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)
}

func TestUnknownTypeAndMissingEmailAreAcked(t *testing.T) {
	m := &fakeMailer{}
	c := NewOrderConsumer(m)

	ack := &fakeAcknowledger{}
	c.processOrderMessage(context.Background(), delivery(t, ack, models.OrderEvent{OrderID: "abc", BuyerEmail: "a@example.com", Type: "order.refunded"}))
	assert.True(t, ack.acked)

	ack = &fakeAcknowledger{}
	c.processOrderMessage(context.Background(), delivery(t, ack, models.OrderEvent{OrderID: "abc", Type: models.EventOrderCreated}))
	assert.True(t, ack.acked)
	assert.Empty(t, m.to)
}

func TestConsumeStopsWhenChannelCloses(t *testing.T) {
	msgs := make(chan amqp.Delivery, 1)
	ack := &fakeAcknowledger{}
	msgs <- amqp.Delivery{Acknowledger: ack}
	close(msgs)

	consume(context.Background(), msgs, processDeadLetterMessage)
	assert.True(t, ack.acked)
}
