/*
Package bridge reconciles transport-level subscribe events with the session
registry.

A subscribe notification carries only a topic string; the bridge derives the
terminal identity from it and either attaches a fresh session (first contact)
or refreshes the existing one so a reconnecting terminal sees its last-known
screen instead of a blank display. Multiple subscribe events for a live
session only ever refresh, never duplicate.
*/
package bridge

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tillgrid/tillgrid/internal/logging"
	"github.com/tillgrid/tillgrid/internal/metrics"
	"github.com/tillgrid/tillgrid/pkg/domain"
	"github.com/tillgrid/tillgrid/pkg/ports"
	"github.com/tillgrid/tillgrid/pkg/session"
)

// Bridge consumes subscribe notifications and keeps the registry in step.
type Bridge struct {
	registry *session.Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the bridge logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) { b.logger = logger }
}

// WithMetrics sets the metrics bundle.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bridge) { b.metrics = m }
}

// New creates a bridge over the given registry.
func New(registry *session.Registry, opts ...Option) *Bridge {
	b := &Bridge{
		registry: registry,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// HandleSubscribe processes one subscribe notification. A malformed topic is
// fatal to that single event only: the error is returned (and logged) and the
// bridge keeps serving other terminals. For a known identity the existing
// session is refreshed; otherwise a session is attached atomically.
func (b *Bridge) HandleSubscribe(ctx context.Context, topic string) error {
	terminal, err := ParseTopic(topic)
	if err != nil {
		if b.metrics != nil {
			b.metrics.MalformedTopics.Inc()
		}
		b.logger.Error("subscribe event dropped", "topic", topic, "error", err)
		return err
	}

	if existing, ok := b.registry.Retrieve(terminal.ApplicationID, terminal.NodeID); ok {
		if b.metrics != nil {
			b.metrics.Resubscribes.Inc()
		}
		b.logger.Debug("terminal resubscribed", "terminal", terminal.String())
		if err := existing.RefreshScreen(ctx); err != nil {
			return err
		}
		return nil
	}

	b.registry.CreateIfAbsent(terminal.ApplicationID, terminal.NodeID)
	return nil
}

// Run consumes the transport's subscription feed until the context is done
// or the feed closes. Per-event failures are logged and do not stop the loop;
// delivery errors on refresh are surfaced the same way since there is no
// caller to hand them to.
func (b *Bridge) Run(ctx context.Context, transport ports.Transport) {
	feed := transport.Subscriptions()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-feed:
			if !ok {
				return
			}
			if err := b.HandleSubscribe(ctx, event.Topic); err != nil && !errors.Is(err, domain.ErrMalformedTopic) {
				b.logger.Warn("subscribe handling failed", "topic", event.Topic, "error", err)
			}
		}
	}
}
