/*
Package memory provides in-process implementations of the transport, event
bus and channel ports.

They back unit tests and single-process embeddings the same way: deliveries
are recorded per terminal and subscribe events are injected programmatically.
No goroutines, no network.
*/
package memory

import (
	"context"
	"sync"

	"github.com/tillgrid/tillgrid/pkg/domain"
	"github.com/tillgrid/tillgrid/pkg/ports"
)

// Transport is an in-process ports.Transport. Deliveries are appended per
// terminal; Subscribe injects a subscribe event into the feed.
type Transport struct {
	mu        sync.Mutex
	delivered map[domain.TerminalID][]domain.Message
	failWith  error

	subs   chan ports.SubscribeEvent
	closed bool
}

// NewTransport creates a transport with a buffered subscription feed.
func NewTransport() *Transport {
	return &Transport{
		delivered: make(map[domain.TerminalID][]domain.Message),
		subs:      make(chan ports.SubscribeEvent, 64),
	}
}

// Subscribe injects a subscribe notification for the given topic.
func (t *Transport) Subscribe(topic string) {
	t.subs <- ports.SubscribeEvent{Topic: topic}
}

// Subscriptions implements ports.Transport.
func (t *Transport) Subscriptions() <-chan ports.SubscribeEvent {
	return t.subs
}

// Deliver implements ports.Transport.
func (t *Transport) Deliver(ctx context.Context, terminal domain.TerminalID, msg domain.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failWith != nil {
		return t.failWith
	}
	t.delivered[terminal] = append(t.delivered[terminal], msg)
	return nil
}

// Close implements ports.Transport.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.closed = true
		close(t.subs)
	}
	return nil
}

// Delivered returns a copy of everything delivered to a terminal, in order.
func (t *Transport) Delivered(terminal domain.TerminalID) []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Message, len(t.delivered[terminal]))
	copy(out, t.delivered[terminal])
	return out
}

// FailWith makes subsequent deliveries return err; nil restores normal
// operation.
func (t *Transport) FailWith(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failWith = err
}
