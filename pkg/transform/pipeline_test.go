package transform_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillgrid/tillgrid/pkg/domain"
	"github.com/tillgrid/tillgrid/pkg/session"
	"github.com/tillgrid/tillgrid/pkg/transform"
)

// fakeKeymap resolves bindings from a fixed table.
type fakeKeymap struct {
	mappings map[string]string // screenID/action -> binding
	names    map[string]string // binding or message key -> display text
}

func (f *fakeKeymap) KeyMapping(_ context.Context, screenID, action, _ string) (string, bool) {
	binding, ok := f.mappings[screenID+"/"+action]
	return binding, ok
}

func (f *fakeKeymap) DisplayName(_ context.Context, _, _, key string) string {
	return f.names[key]
}

// upperStrategy rewrites field values to provoke ordering-sensitive output.
type upperStrategy struct{ suffix string }

func (u *upperStrategy) Capability() transform.Capability { return transform.CapField }

func (u *upperStrategy) Apply(_ context.Context, target transform.Target) (any, error) {
	return target.Value.(string) + u.suffix, nil
}

// failingStrategy always errors.
type failingStrategy struct{}

func (*failingStrategy) Capability() transform.Capability { return transform.CapActionItem }

func (*failingStrategy) Apply(_ context.Context, _ transform.Target) (any, error) {
	return nil, errors.New("boom")
}

func TestKeyBindStrategy_AssignsBindingAndLabel(t *testing.T) {
	keymap := &fakeKeymap{
		mappings: map[string]string{"S1/PAY": "F2"},
		names:    map[string]string{"F2": "Function 2"},
	}
	p := transform.NewPipeline()
	p.Register(transform.NewKeyBindStrategy(keymap))

	screen := &domain.Screen{
		ID:    "S1",
		Items: []*domain.ActionItem{{Action: "PAY", AutoAssignKey: true}},
	}
	err := p.Run(context.Background(), domain.NewTerminalID("A1", "N7"), screen, session.NewScope())
	require.NoError(t, err)

	assert.Equal(t, "F2", screen.Items[0].KeyBind)
	assert.Equal(t, "Function 2", screen.Items[0].KeyBindLabel)
}

func TestKeyBindStrategy_AutoAssignDisabledIsNoop(t *testing.T) {
	keymap := &fakeKeymap{mappings: map[string]string{"S1/PAY": "F2"}}
	p := transform.NewPipeline()
	p.Register(transform.NewKeyBindStrategy(keymap))

	item := &domain.ActionItem{Action: "PAY", AutoAssignKey: false}
	screen := &domain.Screen{ID: "S1", Items: []*domain.ActionItem{item}}
	require.NoError(t, p.Run(context.Background(), domain.NewTerminalID("A1", "N7"), screen, session.NewScope()))

	assert.Empty(t, item.KeyBind)
	assert.Empty(t, item.KeyBindLabel)
}

func TestKeyBindStrategy_NoKeymapConfigured(t *testing.T) {
	p := transform.NewPipeline()
	p.Register(transform.NewKeyBindStrategy(nil))

	item := &domain.ActionItem{Action: "PAY", AutoAssignKey: true}
	screen := &domain.Screen{ID: "S1", Items: []*domain.ActionItem{item}}
	require.NoError(t, p.Run(context.Background(), domain.NewTerminalID("A1", "N7"), screen, session.NewScope()))

	assert.Empty(t, item.KeyBind)
}

func TestKeyBindStrategy_NoMappingLeavesItemUntouched(t *testing.T) {
	keymap := &fakeKeymap{mappings: map[string]string{}}
	p := transform.NewPipeline()
	p.Register(transform.NewKeyBindStrategy(keymap))

	item := &domain.ActionItem{Action: "VOID", AutoAssignKey: true}
	screen := &domain.Screen{ID: "S1", Items: []*domain.ActionItem{item}}
	require.NoError(t, p.Run(context.Background(), domain.NewTerminalID("A1", "N7"), screen, session.NewScope()))

	assert.Empty(t, item.KeyBind)
}

func TestLocalizeStrategy_ResolvesMessageKeys(t *testing.T) {
	keymap := &fakeKeymap{names: map[string]string{"greeting": "Bem-vindo"}}
	p := transform.NewPipeline()
	p.Register(transform.NewLocalizeStrategy(keymap))

	scope := session.NewScope()
	scope.Set(domain.ScopeKeyLocale, "pt-BR")
	screen := &domain.Screen{
		ID:     "S1",
		Fields: map[string]string{"title": "msg:greeting", "raw": "unchanged"},
	}
	require.NoError(t, p.Run(context.Background(), domain.NewTerminalID("A1", "N7"), screen, scope))

	assert.Equal(t, "Bem-vindo", screen.Fields["title"])
	assert.Equal(t, "unchanged", screen.Fields["raw"])
}

func TestPipeline_RegistrationOrderIsExecutionOrder(t *testing.T) {
	p := transform.NewPipeline()
	p.Register(&upperStrategy{suffix: "-a"})
	p.Register(&upperStrategy{suffix: "-b"})

	screen := &domain.Screen{ID: "S1", Fields: map[string]string{"f": "x"}}
	require.NoError(t, p.Run(context.Background(), domain.NewTerminalID("A1", "N7"), screen, session.NewScope()))

	// Later strategies see earlier mutations.
	assert.Equal(t, "x-a-b", screen.Fields["f"])
}

func TestPipeline_Deterministic(t *testing.T) {
	keymap := &fakeKeymap{
		mappings: map[string]string{"S1/PAY": "F2"},
		names:    map[string]string{"F2": "F2"},
	}

	run := func() *domain.Screen {
		p := transform.NewPipeline()
		p.Register(transform.NewLocalizeStrategy(keymap))
		p.Register(transform.NewKeyBindStrategy(keymap))
		screen := &domain.Screen{
			ID:     "S1",
			Items:  []*domain.ActionItem{{Action: "PAY", AutoAssignKey: true}},
			Fields: map[string]string{"a": "1", "b": "2"},
		}
		require.NoError(t, p.Run(context.Background(), domain.NewTerminalID("A1", "N7"), screen, session.NewScope()))
		return screen
	}

	first, second := run(), run()
	assert.Equal(t, first, second)
}

func TestPipeline_StrategyFailureSkipsByDefault(t *testing.T) {
	keymap := &fakeKeymap{mappings: map[string]string{"S1/PAY": "F2"}, names: map[string]string{}}
	p := transform.NewPipeline()
	p.Register(&failingStrategy{})
	p.Register(transform.NewKeyBindStrategy(keymap))

	screen := &domain.Screen{
		ID:    "S1",
		Items: []*domain.ActionItem{{Action: "PAY", AutoAssignKey: true}},
	}
	err := p.Run(context.Background(), domain.NewTerminalID("A1", "N7"), screen, session.NewScope())
	require.NoError(t, err)

	// The failing strategy was skipped; the rest of the pipeline still ran.
	assert.Equal(t, "F2", screen.Items[0].KeyBind)
}

func TestPipeline_StrictModeFailsDelivery(t *testing.T) {
	p := transform.NewPipeline(transform.WithStrictMode())
	p.Register(&failingStrategy{})

	screen := &domain.Screen{
		ID:    "S1",
		Items: []*domain.ActionItem{{Action: "PAY"}},
	}
	err := p.Run(context.Background(), domain.NewTerminalID("A1", "N7"), screen, session.NewScope())
	assert.Error(t, err)
}

func TestPipeline_EmptyPipelineIsNoop(t *testing.T) {
	p := transform.NewPipeline()
	screen := &domain.Screen{ID: "S1", Fields: map[string]string{"f": "x"}}
	require.NoError(t, p.Run(context.Background(), domain.NewTerminalID("A1", "N7"), screen, session.NewScope()))
	assert.Equal(t, "x", screen.Fields["f"])
}
