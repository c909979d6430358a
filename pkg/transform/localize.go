package transform

import (
	"context"
	"strings"

	"github.com/tillgrid/tillgrid/pkg/domain"
	"github.com/tillgrid/tillgrid/pkg/ports"
	"github.com/tillgrid/tillgrid/pkg/session"
)

// messagePrefix marks a field value as a message key to be localized.
const messagePrefix = "msg:"

// LocalizeStrategy resolves screen field values of the form "msg:<key>"
// through the keymap collaborator's display-name lookup for the session
// locale. Register it before KeyBindStrategy so binding labels see localized
// text.
type LocalizeStrategy struct {
	keymap ports.Keymap
}

// NewLocalizeStrategy builds the strategy. A nil keymap yields a permanent no-op.
func NewLocalizeStrategy(keymap ports.Keymap) *LocalizeStrategy {
	return &LocalizeStrategy{keymap: keymap}
}

// Capability implements Strategy.
func (*LocalizeStrategy) Capability() Capability { return CapField }

// Apply implements Strategy.
func (l *LocalizeStrategy) Apply(ctx context.Context, target Target) (any, error) {
	value, ok := target.Value.(string)
	if !ok || l.keymap == nil || !strings.HasPrefix(value, messagePrefix) {
		return target.Value, nil
	}
	key := strings.TrimPrefix(value, messagePrefix)
	localized := l.keymap.DisplayName(ctx, scopeLocale(target.Scope), target.Root.ID, key)
	if localized == "" {
		return value, nil
	}
	return localized, nil
}

// scopeLocale reads the session locale from scope, defaulting to "".
func scopeLocale(scope *session.Scope) string {
	if scope == nil {
		return ""
	}
	if v, ok := scope.Get(domain.ScopeKeyLocale); ok {
		if locale, ok := v.(string); ok {
			return locale
		}
	}
	return ""
}
