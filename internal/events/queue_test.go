package events

import (
	"context"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedPublisher records events once release is closed and reports each
// delivery attempt on started.
type gatedPublisher struct {
	Recorder
	started chan struct{}
	release chan struct{}
	closed  bool
}

func (g *gatedPublisher) Publish(ctx context.Context, e Event) error {
	g.started <- struct{}{}
	<-g.release
	return g.Recorder.Publish(ctx, e)
}

func (g *gatedPublisher) Close() error {
	g.closed = true
	return nil
}

func TestQueue_DeliversInOrderAndFlushesOnClose(t *testing.T) {
	var rec Recorder
	q := NewQueue(&rec, 8, time.Second)

	for _, subject := range []string{"sales", "finance", "inventory"} {
		require.NoError(t, q.Publish(context.Background(), New(TypeRouted, subject, nil)))
	}
	require.NoError(t, q.Close())

	got := rec.Events()
	require.Len(t, got, 3)
	assert.Equal(t, "erp.routed.sales", got[0].RoutingKey())
	assert.Equal(t, "erp.routed.inventory", got[2].RoutingKey())
}

func TestQueue_DropsWhenFull(t *testing.T) {
	g := &gatedPublisher{started: make(chan struct{}, 4), release: make(chan struct{})}
	q := NewQueue(g, 1, time.Second)

	require.NoError(t, q.Publish(context.Background(), New(TypeRouted, "sales", nil)))
	<-g.started // worker holds the first event

	require.NoError(t, q.Publish(context.Background(), New(TypeRouted, "finance", nil)))
	assert.ErrorIs(t, q.Publish(context.Background(), New(TypeRouted, "analytics", nil)), ErrQueueFull)

	close(g.release)
	require.NoError(t, q.Close())
	assert.True(t, g.closed)

	got := g.Events()
	require.Len(t, got, 2)
	assert.Equal(t, "erp.routed.finance", got[1].RoutingKey())
}

func TestQueue_PublishAfterClose(t *testing.T) {
	q := NewQueue(Nop{}, 0, 0)
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())

	assert.ErrorIs(t, q.Publish(context.Background(), New(TypeReport, "sales", nil)), ErrQueueClosed)
}

func TestQueue_DeliveryTimeout(t *testing.T) {
	// Without a confirm every delivery gives up after the timeout
	ch := &fakeChannel{}
	p := newAMQPPublisher(ch, make(chan amqp.Confirmation), "erp_events")
	q := NewQueue(Safe(p), 4, 10*time.Millisecond)

	require.NoError(t, q.Publish(context.Background(), New(TypeRouted, "sales", nil)))
	require.NoError(t, q.Publish(context.Background(), New(TypeRouted, "finance", nil)))

	require.NoError(t, q.Close())
	assert.Equal(t, uint64(2), p.tag)
	assert.True(t, ch.closed)
}
