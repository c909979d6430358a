package ports

import (
	"context"

	"github.com/tillgrid/tillgrid/pkg/domain"
)

// Inventory resolves a terminal identity to its full device descriptor.
// Descriptors are read-only to the core.
type Inventory interface {
	Describe(ctx context.Context, terminal domain.TerminalID) (domain.DeviceDescriptor, error)
}

// IncidentService renders a caught failure into exactly one UI message
// variant for presentation on the originating device.
type IncidentService interface {
	CreateIncident(ctx context.Context, failure error, deviceID string) (domain.Message, error)
}

// Keymap resolves keybindings for screen actions. Optional: a nil Keymap
// leaves action items untouched.
type Keymap interface {
	// KeyMapping returns the binding for an action on a screen, or ("", false)
	// when no mapping exists.
	KeyMapping(ctx context.Context, screenID, action, locale string) (string, bool)

	// DisplayName returns the localized label for a key binding.
	DisplayName(ctx context.Context, locale, screenID, keyMapping string) string
}

// AudioPlayer triggers terminal-side sound playback. Best-effort; playback
// failures are not part of delivery guarantees.
type AudioPlayer interface {
	Play(soundID string)
}
