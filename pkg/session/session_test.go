package session_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillgrid/tillgrid/pkg/adapters/memory"
	"github.com/tillgrid/tillgrid/pkg/domain"
	"github.com/tillgrid/tillgrid/pkg/session"
)

// countingTransformer stamps each delivery with a run counter, so tests can
// tell whether the pipeline ran again and whether it saw clean input.
type countingTransformer struct {
	runs int
	fail error
}

func (c *countingTransformer) Run(_ context.Context, _ domain.TerminalID, screen *domain.Screen, _ *session.Scope) error {
	if c.fail != nil {
		return c.fail
	}
	c.runs++
	if screen.Fields == nil {
		screen.Fields = make(map[string]string)
	}
	screen.Fields["run"] = fmt.Sprintf("%d", c.runs)
	return nil
}

func TestSession_ShowScreenDeliversTransformedCopy(t *testing.T) {
	transport := memory.NewTransport()
	tf := &countingTransformer{}
	terminal := domain.NewTerminalID("A1", "N7")
	sess := session.New(terminal, transport, session.WithTransformer(tf))

	original := &domain.Screen{ID: "S1"}
	require.NoError(t, sess.ShowScreen(context.Background(), original))

	assert.Equal(t, "S1", sess.CurrentScreenID())
	// The stored original stays untransformed; only the delivered copy mutates.
	assert.Nil(t, original.Fields)

	delivered := transport.Delivered(terminal)
	require.Len(t, delivered, 1)
	screen := delivered[0].(*domain.Screen)
	assert.Equal(t, "1", screen.Fields["run"])
}

func TestSession_RefreshRerunsPipeline(t *testing.T) {
	transport := memory.NewTransport()
	tf := &countingTransformer{}
	terminal := domain.NewTerminalID("A1", "N7")
	sess := session.New(terminal, transport, session.WithTransformer(tf))
	ctx := context.Background()

	require.NoError(t, sess.ShowScreen(ctx, &domain.Screen{ID: "S1"}))
	require.NoError(t, sess.RefreshScreen(ctx))

	delivered := transport.Delivered(terminal)
	require.Len(t, delivered, 2)
	assert.Equal(t, "1", delivered[0].(*domain.Screen).Fields["run"])
	assert.Equal(t, "2", delivered[1].(*domain.Screen).Fields["run"])
	// The pipeline saw clean input both times, not its own output.
	assert.Equal(t, "S1", sess.CurrentScreenID())
}

func TestSession_RefreshUninitializedIsNoop(t *testing.T) {
	transport := memory.NewTransport()
	terminal := domain.NewTerminalID("A1", "N7")
	sess := session.New(terminal, transport)

	require.NoError(t, sess.RefreshScreen(context.Background()))
	assert.Empty(t, transport.Delivered(terminal))
	assert.Equal(t, "", sess.CurrentScreenID())
}

func TestSession_ToastDoesNotAlterCurrentScreen(t *testing.T) {
	transport := memory.NewTransport()
	terminal := domain.NewTerminalID("A1", "N7")
	sess := session.New(terminal, transport)
	ctx := context.Background()

	require.NoError(t, sess.ShowScreen(ctx, &domain.Screen{ID: "S1"}))
	require.NoError(t, sess.ShowToast(ctx, &domain.Toast{Text: "saved"}))

	assert.Equal(t, "S1", sess.CurrentScreenID())
	delivered := transport.Delivered(terminal)
	require.Len(t, delivered, 2)
	_, isToast := delivered[1].(*domain.Toast)
	assert.True(t, isToast)
}

func TestSession_DeliveryFailurePropagates(t *testing.T) {
	transport := memory.NewTransport()
	boom := errors.New("channel closed")
	transport.FailWith(boom)
	terminal := domain.NewTerminalID("A1", "N7")
	sess := session.New(terminal, transport)

	err := sess.ShowScreen(context.Background(), &domain.Screen{ID: "S1"})
	assert.ErrorIs(t, err, boom)

	// The transition was still requested: the failed screen is current and a
	// later refresh replays it once the channel recovers.
	transport.FailWith(nil)
	require.NoError(t, sess.RefreshScreen(context.Background()))
	delivered := transport.Delivered(terminal)
	require.Len(t, delivered, 1)
	assert.Equal(t, "S1", delivered[0].(*domain.Screen).ID)
}

func TestSession_TransformFailurePropagates(t *testing.T) {
	transport := memory.NewTransport()
	boom := errors.New("strategy exploded")
	sess := session.New(domain.NewTerminalID("A1", "N7"), transport,
		session.WithTransformer(&countingTransformer{fail: boom}))

	err := sess.ShowScreen(context.Background(), &domain.Screen{ID: "S1"})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, transport.Delivered(domain.NewTerminalID("A1", "N7")))
}

func TestScope_SetGetDelete(t *testing.T) {
	scope := session.NewScope()

	_, ok := scope.Get("missing")
	assert.False(t, ok)

	scope.Set("audio", "handle")
	v, ok := scope.Get("audio")
	require.True(t, ok)
	assert.Equal(t, "handle", v)

	scope.Set("audio", 42)
	v, _ = scope.Get("audio")
	assert.Equal(t, 42, v)

	scope.Delete("audio")
	_, ok = scope.Get("audio")
	assert.False(t, ok)
}

func TestSession_ScopeDelegation(t *testing.T) {
	sess := session.New(domain.NewTerminalID("A1", "N7"), memory.NewTransport())

	sess.SetScopeValue(domain.ScopeKeyLocale, "pt-BR")
	v, ok := sess.ScopeValue(domain.ScopeKeyLocale)
	require.True(t, ok)
	assert.Equal(t, "pt-BR", v)
}
