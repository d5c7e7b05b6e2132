// Package events publishes domain events (routing decisions, report builds)
// to a message broker.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeRouted = "routed"
	TypeReport = "report"
)

// Event is a domain event. It is published as JSON.
type Event struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Subject string    `json:"subject"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload,omitempty"`
}

// New stamps a fresh event.
func New(typ, subject string, payload any) Event {
	return Event{
		ID:      uuid.NewString(),
		Type:    typ,
		Subject: subject,
		Time:    time.Now().UTC(),
		Payload: payload,
	}
}

// RoutingKey is "erp.<type>.<subject>", e.g. "erp.routed.sales".
func (e Event) RoutingKey() string {
	return "erp." + e.Type + "." + e.Subject
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
