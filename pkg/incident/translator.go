/*
Package incident converts caught failures into addressed, channel-appropriate
UI messages.

The Translator is the terminal handler for failures that reach it: it asks
the incident collaborator for a user-visible rendering, dispatches the result
over the right channel for its variant, plays any configured error sounds,
and publishes exactly one error event per handled failure. It never re-throws.
*/
package incident

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tillgrid/tillgrid/internal/logging"
	"github.com/tillgrid/tillgrid/internal/metrics"
	"github.com/tillgrid/tillgrid/pkg/domain"
	"github.com/tillgrid/tillgrid/pkg/ports"
	"github.com/tillgrid/tillgrid/pkg/session"
)

// FallbackToastText is presented when the incident collaborator itself fails.
// The terminal is never left silent.
const FallbackToastText = "An internal error occurred. Please contact support."

// Translator routes caught failures to terminals.
type Translator struct {
	incidents ports.IncidentService
	generic   ports.GenericChannel
	bus       ports.EventBus

	errorSounds []string
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// Option configures a Translator.
type Option func(*Translator)

// WithErrorSounds sets the sound ids played on every handled failure when the
// session carries an audio handle.
func WithErrorSounds(soundIDs ...string) Option {
	return func(t *Translator) { t.errorSounds = soundIDs }
}

// WithLogger sets the translator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Translator) { t.logger = logger }
}

// WithMetrics sets the metrics bundle.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Translator) { t.metrics = m }
}

// NewTranslator wires the translator to its collaborators.
func NewTranslator(incidents ports.IncidentService, generic ports.GenericChannel, bus ports.EventBus, opts ...Option) *Translator {
	t := &Translator{
		incidents: incidents,
		generic:   generic,
		bus:       bus,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Handle presents a caught failure on the session's terminal and publishes
// the error event. It never returns an error and never panics outward: a
// presentation failure is logged, the event is published regardless.
//
// Dispatch is exhaustive over the message union: a full screen goes through
// ShowScreen (and becomes the current screen), a toast through ShowToast, and
// anything generic through the device-addressed channel outside the screen
// pipeline.
func (t *Translator) Handle(ctx context.Context, sess *session.Session, failure error) {
	deviceID := sess.Device().DeviceID
	terminal := sess.Terminal()

	msg, err := t.incidents.CreateIncident(ctx, failure, deviceID)
	if err != nil {
		// No further fallback exists beyond a hardcoded toast.
		t.logger.Error("incident service failed",
			"terminal", terminal.String(), "device", deviceID,
			"error", fmt.Errorf("%w: %v", domain.ErrIncidentService, err))
		msg = &domain.Toast{DeviceID: deviceID, Text: FallbackToastText, Severity: domain.ToastError}
	}

	switch m := msg.(type) {
	case *domain.Screen:
		if err := sess.ShowScreen(ctx, m); err != nil {
			t.logger.Error("incident screen delivery failed",
				"terminal", terminal.String(), "screen", m.ID, "error", err)
		}
	case *domain.Toast:
		if err := sess.ShowToast(ctx, m); err != nil {
			t.logger.Error("incident toast delivery failed",
				"terminal", terminal.String(), "error", err)
		}
	case *domain.Generic:
		if err := t.generic.SendMessage(ctx, m.DeviceID, m.Payload); err != nil {
			t.logger.Error("incident message delivery failed",
				"device", m.DeviceID, "error", err)
		}
	default:
		t.logger.Error("incident service returned unknown message variant",
			"terminal", terminal.String(), "device", deviceID)
	}

	t.playErrorSounds(sess)

	t.bus.PublishError(ctx, domain.ErrorEvent{
		ApplicationID: terminal.ApplicationID,
		DeviceID:      deviceID,
		Failure:       failure,
	})
	if t.metrics != nil {
		t.metrics.ErrorsHandled.Inc()
	}
	t.logger.Warn("failure routed to terminal",
		"terminal", terminal.String(), "device", deviceID, "error", failure)
}

// playErrorSounds triggers every configured error sound when the session
// scope carries an audio handle. The device's own sound list (seeded into
// scope from inventory parameters) takes precedence over the server-wide
// list. Best-effort.
func (t *Translator) playErrorSounds(sess *session.Session) {
	sounds := t.errorSounds
	if v, ok := sess.ScopeValue(domain.ScopeKeyErrorSounds); ok {
		if perDevice, ok := v.([]string); ok && len(perDevice) > 0 {
			sounds = perDevice
		}
	}
	if len(sounds) == 0 {
		return
	}
	v, ok := sess.ScopeValue(domain.ScopeKeyAudio)
	if !ok {
		return
	}
	player, ok := v.(ports.AudioPlayer)
	if !ok {
		return
	}
	for _, soundID := range sounds {
		player.Play(soundID)
	}
}
