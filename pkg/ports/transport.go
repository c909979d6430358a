package ports

import (
	"context"

	"github.com/tillgrid/tillgrid/pkg/domain"
)

// SubscribeEvent is a transport-level notification that a terminal subscribed
// (or resubscribed) to its topic. Topic carries the raw topic string; identity
// extraction is the bridge's job.
type SubscribeEvent struct {
	Topic string
}

// Transport is the pub/sub layer terminals connect through. Deliver is a
// fire-and-forget handoff: the transport reports handoff failures
// synchronously but never retries on behalf of the core.
type Transport interface {
	// Subscriptions returns the feed of subscribe notifications. The channel
	// is closed when the transport shuts down.
	Subscriptions() <-chan SubscribeEvent

	// Deliver sends a message to the given terminal's channel.
	Deliver(ctx context.Context, terminal domain.TerminalID, msg domain.Message) error

	// Close tears down the transport connection.
	Close() error
}

// GenericChannel sends non-screen, non-toast payloads to a device-addressed
// channel outside the screen pipeline.
type GenericChannel interface {
	SendMessage(ctx context.Context, deviceID string, payload any) error
}

// EventBus receives process-wide error events for external observers
// (incident logging, alerting).
type EventBus interface {
	PublishError(ctx context.Context, event domain.ErrorEvent)
}
