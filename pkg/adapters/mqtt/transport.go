/*
Package mqtt implements the pub/sub transport over an MQTT broker.

Terminals announce themselves by publishing to the presence topic
"{prefix}/presence/app/{applicationID}/node/{nodeID}"; the adapter surfaces
each announcement as a subscribe event carrying the raw topic. Outbound
messages are published as JSON envelopes on the terminal's own topic tree
"{prefix}/app/{applicationID}/node/{nodeID}/{screen|toast|message}".

The client keeps a persistent session and resubscribes to the presence
wildcard on every (re)connect, so terminal announcements survive broker
reconnects.
*/
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/tillgrid/tillgrid/internal/logging"
	"github.com/tillgrid/tillgrid/pkg/domain"
	"github.com/tillgrid/tillgrid/pkg/ports"
)

// Config holds broker connection settings.
type Config struct {
	BrokerURL   string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
}

// Transport is the MQTT-backed ports.Transport.
type Transport struct {
	client paho.Client
	prefix string
	qos    byte
	logger *slog.Logger

	mu        sync.Mutex
	closed    bool
	subs      chan ports.SubscribeEvent
	closeOnce sync.Once
}

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the transport logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transport) { t.logger = logger }
}

// New builds a transport for the given broker. Connect must be called before
// use.
func New(cfg Config, opts ...Option) *Transport {
	t := &Transport{
		prefix: cfg.TopicPrefix,
		qos:    cfg.QoS,
		logger: logging.NewNop(),
		subs:   make(chan ports.SubscribeEvent, 256),
	}
	for _, opt := range opts {
		opt(t)
	}

	clientOpts := paho.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetOrderMatters(false).
		SetCleanSession(false).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(10 * time.Second).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)
	if cfg.Username != "" {
		clientOpts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		clientOpts.SetPassword(cfg.Password)
	}

	presenceFilter := fmt.Sprintf("%s/presence/app/+/node/+", t.prefix)
	clientOpts.OnConnect = func(c paho.Client) {
		t.logger.Info("connected to broker", "broker", cfg.BrokerURL)
		token := c.Subscribe(presenceFilter, t.qos, t.onPresence)
		if token.Wait() && token.Error() != nil {
			t.logger.Error("presence subscribe failed", "filter", presenceFilter, "error", token.Error())
			return
		}
		t.logger.Info("watching presence topic", "filter", presenceFilter, "qos", t.qos)
	}
	clientOpts.OnConnectionLost = func(c paho.Client, err error) {
		t.logger.Warn("broker connection lost", "error", err)
	}

	t.client = paho.NewClient(clientOpts)
	return t
}

// Connect dials the broker, retrying with exponential backoff until success
// or context cancellation.
func (t *Transport) Connect(ctx context.Context) error {
	backoff := time.Second
	const maxBackoff = 30 * time.Second
	for {
		token := t.client.Connect()
		if token.Wait() && token.Error() == nil {
			return nil
		}
		t.logger.Warn("broker connect failed", "error", token.Error(), "retry_in", backoff)
		select {
		case <-time.After(backoff):
			if backoff < maxBackoff {
				backoff *= 2
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// onPresence surfaces a terminal announcement as a subscribe event. Drops
// the event when the feed is full rather than blocking the paho router. The
// mutex orders callbacks against Close: paho may still route messages while
// Disconnect drains, and a send on the closed feed would panic.
func (t *Transport) onPresence(_ paho.Client, msg paho.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	select {
	case t.subs <- ports.SubscribeEvent{Topic: msg.Topic()}:
	default:
		t.logger.Warn("subscription feed full, presence event dropped", "topic", msg.Topic())
	}
}

// Subscriptions implements ports.Transport.
func (t *Transport) Subscriptions() <-chan ports.SubscribeEvent {
	return t.subs
}

// envelope is the wire form of an outbound message.
type envelope struct {
	Kind    string `json:"kind"`
	Payload any    `json:"payload"`
}

// Deliver implements ports.Transport. The message variant picks the leaf
// topic; handoff failures surface synchronously, there is no retry here.
func (t *Transport) Deliver(ctx context.Context, terminal domain.TerminalID, msg domain.Message) error {
	var leaf string
	var env envelope
	switch m := msg.(type) {
	case *domain.Screen:
		leaf, env = "screen", envelope{Kind: "screen", Payload: m}
	case *domain.Toast:
		leaf, env = "toast", envelope{Kind: "toast", Payload: m}
	case *domain.Generic:
		leaf, env = "message", envelope{Kind: "message", Payload: m}
	default:
		return fmt.Errorf("deliver to %s: unknown message variant %T", terminal, msg)
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s for %s: %w", leaf, terminal, err)
	}

	topic := fmt.Sprintf("%s/app/%s/node/%s/%s", t.prefix, terminal.ApplicationID, terminal.NodeID, leaf)
	token := t.client.Publish(topic, t.qos, false, data)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("publish %s to %s: %w", leaf, terminal, domain.ErrNoChannel)
	}
	if token.Error() != nil {
		return fmt.Errorf("publish %s to %s: %w", leaf, terminal, token.Error())
	}
	return nil
}

// Close implements ports.Transport.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		t.client.Disconnect(250)
		t.mu.Lock()
		t.closed = true
		close(t.subs)
		t.mu.Unlock()
	})
	return nil
}
