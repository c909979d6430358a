package transform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tillgrid/tillgrid/internal/logging"
	"github.com/tillgrid/tillgrid/internal/metrics"
	"github.com/tillgrid/tillgrid/pkg/domain"
	"github.com/tillgrid/tillgrid/pkg/session"
)

// Capability declares which kind of screen property a strategy handles.
// The pipeline walks a fixed schema of transformable properties per message
// shape instead of reflecting over arbitrary graphs.
type Capability string

const (
	// CapActionItem matches every *domain.ActionItem in a screen.
	CapActionItem Capability = "action_item"
	// CapField matches every entry of a screen's Fields map (string values).
	CapField Capability = "field"
)

// Target is the unit of work handed to a strategy: one property of the
// outgoing screen plus the context it is rendered in.
type Target struct {
	Terminal domain.TerminalID
	Value    any
	FieldKey string // set for CapField targets
	Root     *domain.Screen
	Scope    *session.Scope
}

// Strategy transforms one property of an outgoing screen. Apply returns the
// replacement value, which may be the same (mutated) instance. A strategy
// whose preconditions are not met returns its input unchanged.
type Strategy interface {
	Capability() Capability
	Apply(ctx context.Context, target Target) (any, error)
}

// Pipeline applies registered strategies to an outgoing screen's properties
// in registration order. Safe for concurrent use once built; Register is not
// safe to interleave with Run.
type Pipeline struct {
	strategies []Strategy
	strict     bool
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStrictMode makes a strategy error fail the whole delivery instead of
// skipping the strategy for that property.
func WithStrictMode() Option {
	return func(p *Pipeline) { p.strict = true }
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithMetrics sets the metrics bundle.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// NewPipeline creates an empty pipeline.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register appends a strategy. Execution order is registration order.
func (p *Pipeline) Register(s Strategy) {
	p.strategies = append(p.strategies, s)
}

// Run walks the screen's transformable properties and applies every matching
// strategy in order. Implements session.Transformer.
func (p *Pipeline) Run(ctx context.Context, terminal domain.TerminalID, screen *domain.Screen, scope *session.Scope) error {
	if screen == nil || len(p.strategies) == 0 {
		return nil
	}

	for i, item := range screen.Items {
		replaced, err := p.apply(ctx, CapActionItem, Target{
			Terminal: terminal,
			Value:    item,
			Root:     screen,
			Scope:    scope,
		})
		if err != nil {
			return err
		}
		if next, ok := replaced.(*domain.ActionItem); ok {
			screen.Items[i] = next
		}
	}

	for key, value := range screen.Fields {
		replaced, err := p.apply(ctx, CapField, Target{
			Terminal: terminal,
			Value:    value,
			FieldKey: key,
			Root:     screen,
			Scope:    scope,
		})
		if err != nil {
			return err
		}
		if next, ok := replaced.(string); ok {
			screen.Fields[key] = next
		}
	}

	return nil
}

// apply chains all strategies matching cap over one property value.
func (p *Pipeline) apply(ctx context.Context, capability Capability, target Target) (any, error) {
	for _, s := range p.strategies {
		if s.Capability() != capability {
			continue
		}
		replaced, err := s.Apply(ctx, target)
		if err != nil {
			if p.strict {
				return nil, fmt.Errorf("strategy %T on screen %s: %w", s, target.Root.ID, err)
			}
			if p.metrics != nil {
				p.metrics.StrategyFailures.Inc()
			}
			p.logger.Warn("strategy skipped",
				"strategy", fmt.Sprintf("%T", s),
				"screen", target.Root.ID,
				"terminal", target.Terminal.String(),
				"error", err)
			continue
		}
		target.Value = replaced
	}
	return target.Value, nil
}
