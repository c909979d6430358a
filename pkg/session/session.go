package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tillgrid/tillgrid/internal/logging"
	"github.com/tillgrid/tillgrid/internal/metrics"
	"github.com/tillgrid/tillgrid/pkg/domain"
	"github.com/tillgrid/tillgrid/pkg/ports"
)

// Transformer runs the outbound transformation pipeline against a screen
// before delivery. Implemented by transform.Pipeline; nil-safe via NopTransformer.
type Transformer interface {
	Run(ctx context.Context, terminal domain.TerminalID, screen *domain.Screen, scope *Scope) error
}

// NopTransformer leaves screens untouched.
type NopTransformer struct{}

// Run implements Transformer.
func (NopTransformer) Run(context.Context, domain.TerminalID, *domain.Screen, *Scope) error {
	return nil
}

// Session is the live state machine for one terminal: its identity, device
// record, current screen and scoped state. A session starts uninitialized
// (no screen) and becomes active on the first ShowScreen; there is no closed
// state — session life equals registry entry life.
//
// All screen mutations go through the session's own mutex; operations are
// only ever addressed to the session's own terminal, so no global lock is
// involved in steady-state transitions.
type Session struct {
	terminal domain.TerminalID
	device   domain.DeviceDescriptor
	scope    *Scope

	mu      sync.Mutex
	current *domain.Screen // untransformed; nil while uninitialized

	transport   ports.Transport
	transformer Transformer
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDevice attaches the device descriptor resolved from inventory.
func WithDevice(device domain.DeviceDescriptor) SessionOption {
	return func(s *Session) { s.device = device }
}

// WithTransformer sets the outbound transformation pipeline.
func WithTransformer(t Transformer) SessionOption {
	return func(s *Session) { s.transformer = t }
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// WithSessionMetrics sets the metrics bundle.
func WithSessionMetrics(m *metrics.Metrics) SessionOption {
	return func(s *Session) { s.metrics = m }
}

// New creates an uninitialized session for a terminal, delivering over the
// given transport.
func New(terminal domain.TerminalID, transport ports.Transport, opts ...SessionOption) *Session {
	s := &Session{
		terminal:    terminal,
		scope:       NewScope(),
		transport:   transport,
		transformer: NopTransformer{},
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Terminal returns the session's identity.
func (s *Session) Terminal() domain.TerminalID { return s.terminal }

// Device returns the device descriptor attached at creation.
func (s *Session) Device() domain.DeviceDescriptor { return s.device }

// Scope returns the session's scoped state store.
func (s *Session) Scope() *Scope { return s.scope }

// ScopeValue returns the scoped value for key, or (nil, false) if unset.
func (s *Session) ScopeValue(key string) (any, bool) { return s.scope.Get(key) }

// SetScopeValue stores a scoped value under key.
func (s *Session) SetScopeValue(key string, value any) { s.scope.Set(key, value) }

// CurrentScreenID returns the id of the current screen, or "" while the
// session is uninitialized.
func (s *Session) CurrentScreenID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.ID
}

// ShowScreen replaces the current screen, runs the outbound pipeline against
// a fresh copy, and delivers it. Errors are never swallowed here: a failed
// transformation (strict mode) or delivery propagates to the caller, which
// is expected to route it through the error translator. The current-screen
// reference is updated before delivery so a later refresh replays the
// requested screen even if this delivery failed.
func (s *Session) ShowScreen(ctx context.Context, screen *domain.Screen) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = screen
	return s.deliverScreen(ctx, screen)
}

// RefreshScreen re-delivers the current screen. The pipeline is re-run
// against a clean copy: locale or keymap state may have changed since the
// last delivery. A refresh on an uninitialized session is a no-op.
func (s *Session) RefreshScreen(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	return s.deliverScreen(ctx, s.current)
}

// deliverScreen transforms a copy of screen and hands it to the transport.
// Caller holds s.mu.
func (s *Session) deliverScreen(ctx context.Context, screen *domain.Screen) error {
	out := screen.Clone()
	if err := s.transformer.Run(ctx, s.terminal, out, s.scope); err != nil {
		return fmt.Errorf("transform screen %s: %w", screen.ID, err)
	}
	if err := s.transport.Deliver(ctx, s.terminal, out); err != nil {
		s.count(func(m *metrics.Metrics) { m.DeliveryFailures.Inc() })
		return fmt.Errorf("deliver screen %s to %s: %w", screen.ID, s.terminal, err)
	}
	s.count(func(m *metrics.Metrics) { m.ScreensDelivered.Inc() })
	s.logger.Debug("screen delivered", "terminal", s.terminal.String(), "screen", screen.ID)
	return nil
}

// ShowToast delivers a transient toast without altering the current screen.
func (s *Session) ShowToast(ctx context.Context, toast *domain.Toast) error {
	if err := s.transport.Deliver(ctx, s.terminal, toast); err != nil {
		s.count(func(m *metrics.Metrics) { m.DeliveryFailures.Inc() })
		return fmt.Errorf("deliver toast to %s: %w", s.terminal, err)
	}
	s.count(func(m *metrics.Metrics) { m.ToastsDelivered.Inc() })
	return nil
}

func (s *Session) count(fn func(*metrics.Metrics)) {
	if s.metrics != nil {
		fn(s.metrics)
	}
}
