package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"agenticerp/internal/logging"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrNack is returned when the broker rejects a message.
var ErrNack = errors.New("publish NACK from broker")

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes persistent JSON events to a topic exchange and
// waits for the broker confirm of each one.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       channel
	acks     <-chan amqp.Confirmation
	exchange string

	// mu serialises publishes; tag is the delivery tag of the last one
	mu  sync.Mutex
	tag uint64
}

// Dial connects to the broker, declares the exchange and enables confirms.
func Dial(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable confirms: %w", err)
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	logging.Events("Publishing to exchange %s", exchange)
	return &AMQPPublisher{conn: conn, ch: ch, acks: acks, exchange: exchange}, nil
}

func newAMQPPublisher(ch channel, acks <-chan amqp.Confirmation, exchange string) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, acks: acks, exchange: exchange}
}

// Publish sends e and blocks until the broker acks it or ctx is done.
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, p.exchange, e.RoutingKey(), false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    e.ID,
		Type:         e.Type,
		Timestamp:    time.Now(),
		Body:         body,
	}); err != nil {
		return fmt.Errorf("publish %s: %w", e.RoutingKey(), err)
	}
	p.tag++
	want := p.tag

	for {
		select {
		case conf, ok := <-p.acks:
			if !ok {
				return errors.New("confirm channel closed")
			}
			if conf.DeliveryTag < want {
				// late confirm of a publish that gave up waiting
				logging.EventsDebug("Discarding stale confirm %d", conf.DeliveryTag)
				continue
			}
			if !conf.Ack {
				return ErrNack
			}
			logging.EventsDebug("Published %s (%s)", e.RoutingKey(), e.ID)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *AMQPPublisher) Close() error {
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

// Safe wraps a publisher so failures are logged and never returned.
func Safe(p Publisher) Publisher {
	return safePublisher{p}
}

type safePublisher struct{ Publisher }

func (s safePublisher) Publish(ctx context.Context, e Event) error {
	if err := s.Publisher.Publish(ctx, e); err != nil {
		logging.EventsWarn("Dropping event %s: %v", e.RoutingKey(), err)
	}
	return nil
}
