package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeChannel struct {
	acks     chan amqp.Confirmation
	ack      bool
	tag      uint64
	err      error
	exchange string
	key      string
	msg      amqp.Publishing
	closed   bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.exchange, f.key, f.msg = exchange, key, msg
	f.tag++
	if f.acks != nil {
		f.acks <- amqp.Confirmation{DeliveryTag: f.tag, Ack: f.ack}
	}
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestEventRoutingKey(t *testing.T) {
	e := New(TypeRouted, "sales", map[string]int{"confidence": 2})
	assert.Equal(t, "erp.routed.sales", e.RoutingKey())
	assert.NotEmpty(t, e.ID)
	assert.WithinDuration(t, time.Now(), e.Time, time.Minute)

	assert.Equal(t, "erp.report.financial", New(TypeReport, "financial", nil).RoutingKey())
}

func TestAMQPPublisher_PublishesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{acks: make(chan amqp.Confirmation, 1), ack: true}
	p := newAMQPPublisher(ch, ch.acks, "erp_events")

	e := New(TypeReport, "sales", map[string]string{"outcome": "ok"})
	require.NoError(t, p.Publish(context.Background(), e))

	assert.Equal(t, "erp_events", ch.exchange)
	assert.Equal(t, "erp.report.sales", ch.key)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, e.ID, ch.msg.MessageId)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, "report", decoded["type"])
	assert.Equal(t, "sales", decoded["subject"])

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestAMQPPublisher_Nack(t *testing.T) {
	ch := &fakeChannel{acks: make(chan amqp.Confirmation, 1), ack: false}
	p := newAMQPPublisher(ch, ch.acks, "erp_events")

	err := p.Publish(context.Background(), New(TypeRouted, "finance", nil))
	assert.ErrorIs(t, err, ErrNack)
}

func TestAMQPPublisher_ChannelError(t *testing.T) {
	boom := errors.New("channel/connection is not open")
	ch := &fakeChannel{err: boom}
	p := newAMQPPublisher(ch, nil, "erp_events")

	err := p.Publish(context.Background(), New(TypeRouted, "finance", nil))
	assert.ErrorIs(t, err, boom)
}

func TestAMQPPublisher_ContextCancelledWhileWaiting(t *testing.T) {
	// No confirm ever arrives
	ch := &fakeChannel{}
	p := newAMQPPublisher(ch, make(chan amqp.Confirmation), "erp_events")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Publish(ctx, New(TypeRouted, "sales", nil))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAMQPPublisher_LateConfirmIsNotReused(t *testing.T) {
	acks := make(chan amqp.Confirmation, 2)
	ch := &fakeChannel{}
	p := newAMQPPublisher(ch, acks, "erp_events")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, p.Publish(ctx, New(TypeRouted, "sales", nil)), context.DeadlineExceeded)

	// The broker acks the abandoned message, then nacks the next one
	acks <- amqp.Confirmation{DeliveryTag: 1, Ack: true}
	acks <- amqp.Confirmation{DeliveryTag: 2, Ack: false}

	err := p.Publish(context.Background(), New(TypeRouted, "finance", nil))
	assert.ErrorIs(t, err, ErrNack)
	assert.Empty(t, acks)
}

func TestAMQPPublisher_ConsecutivePublishes(t *testing.T) {
	ch := &fakeChannel{acks: make(chan amqp.Confirmation, 1), ack: true}
	p := newAMQPPublisher(ch, ch.acks, "erp_events")

	for i := 0; i < 3; i++ {
		require.NoError(t, p.Publish(context.Background(), New(TypeReport, "sales", nil)))
	}
	assert.Equal(t, uint64(3), p.tag)
}

type failingPublisher struct{ Nop }

func (failingPublisher) Publish(context.Context, Event) error { return errors.New("broker down") }

func TestSafeSwallowsErrors(t *testing.T) {
	assert.NoError(t, Safe(failingPublisher{}).Publish(context.Background(), New(TypeRouted, "sales", nil)))
}

func TestRecorder(t *testing.T) {
	var r Recorder
	require.NoError(t, r.Publish(context.Background(), New(TypeRouted, "sales", nil)))
	require.NoError(t, r.Publish(context.Background(), New(TypeReport, "product", nil)))

	got := r.Events()
	require.Len(t, got, 2)
	assert.Equal(t, "erp.report.product", got[1].RoutingKey())

	var n Nop
	assert.NoError(t, n.Publish(context.Background(), Event{}))
	assert.NoError(t, n.Close())
}
