package transform

import (
	"context"

	"github.com/tillgrid/tillgrid/pkg/domain"
	"github.com/tillgrid/tillgrid/pkg/ports"
)

// KeyBindStrategy assigns keybindings to action items with auto-assign
// enabled, resolving the binding and its localized display label from the
// keymap collaborator. Items are left untouched when no keymap is configured,
// auto-assign is off, or no mapping exists for the action.
type KeyBindStrategy struct {
	keymap ports.Keymap
}

// NewKeyBindStrategy builds the strategy. A nil keymap yields a permanent no-op.
func NewKeyBindStrategy(keymap ports.Keymap) *KeyBindStrategy {
	return &KeyBindStrategy{keymap: keymap}
}

// Capability implements Strategy.
func (*KeyBindStrategy) Capability() Capability { return CapActionItem }

// Apply implements Strategy.
func (k *KeyBindStrategy) Apply(ctx context.Context, target Target) (any, error) {
	item, ok := target.Value.(*domain.ActionItem)
	if !ok || item == nil {
		return target.Value, nil
	}
	if k.keymap == nil || !item.AutoAssignKey {
		return item, nil
	}

	locale := scopeLocale(target.Scope)
	binding, ok := k.keymap.KeyMapping(ctx, target.Root.ID, item.Action, locale)
	if !ok {
		return item, nil
	}
	item.KeyBind = binding
	item.KeyBindLabel = k.keymap.DisplayName(ctx, locale, target.Root.ID, binding)
	return item, nil
}
