package memory

import (
	"context"
	"sync"

	"github.com/tillgrid/tillgrid/pkg/domain"
)

// EventBus collects published error events in order.
type EventBus struct {
	mu     sync.Mutex
	events []domain.ErrorEvent
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// PublishError implements ports.EventBus.
func (b *EventBus) PublishError(ctx context.Context, event domain.ErrorEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

// Events returns a copy of all published events.
func (b *EventBus) Events() []domain.ErrorEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.ErrorEvent, len(b.events))
	copy(out, b.events)
	return out
}

// GenericMessage records one device-addressed payload.
type GenericMessage struct {
	DeviceID string
	Payload  any
}

// GenericChannel records device-addressed generic messages.
type GenericChannel struct {
	mu       sync.Mutex
	messages []GenericMessage
	failWith error
}

// NewGenericChannel creates an empty channel.
func NewGenericChannel() *GenericChannel {
	return &GenericChannel{}
}

// SendMessage implements ports.GenericChannel.
func (c *GenericChannel) SendMessage(ctx context.Context, deviceID string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return c.failWith
	}
	c.messages = append(c.messages, GenericMessage{DeviceID: deviceID, Payload: payload})
	return nil
}

// Messages returns a copy of everything sent.
func (c *GenericChannel) Messages() []GenericMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]GenericMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// FailWith makes subsequent sends return err.
func (c *GenericChannel) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failWith = err
}

// LiveChannel buffers pushed status reports.
type LiveChannel struct {
	mu      sync.Mutex
	reports []domain.StatusReport
}

// NewLiveChannel creates an empty live channel.
func NewLiveChannel() *LiveChannel {
	return &LiveChannel{}
}

// Push implements ports.LiveChannel.
func (c *LiveChannel) Push(report domain.StatusReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, report)
}

// Reports returns a copy of all pushed reports.
func (c *LiveChannel) Reports() []domain.StatusReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.StatusReport, len(c.reports))
	copy(out, c.reports)
	return out
}
