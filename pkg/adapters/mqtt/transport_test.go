package mqtt

import (
	"sync"
	"testing"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// presenceMsg is a minimal paho.Message carrying only a topic.
type presenceMsg struct {
	topic string
}

func (presenceMsg) Duplicate() bool   { return false }
func (presenceMsg) Qos() byte         { return 0 }
func (presenceMsg) Retained() bool    { return false }
func (m presenceMsg) Topic() string   { return m.topic }
func (presenceMsg) MessageID() uint16 { return 0 }
func (presenceMsg) Payload() []byte   { return nil }
func (presenceMsg) Ack()              {}

var _ paho.Message = presenceMsg{}

func TestOnPresence_SurfacesTopicOnFeed(t *testing.T) {
	transport := New(Config{BrokerURL: "tcp://localhost:1883", ClientID: "test", TopicPrefix: "pos"})

	transport.onPresence(nil, presenceMsg{topic: "pos/presence/app/A1/node/N7"})

	select {
	case event := <-transport.Subscriptions():
		assert.Equal(t, "pos/presence/app/A1/node/N7", event.Topic)
	default:
		t.Fatal("presence event did not reach the feed")
	}
}

func TestOnPresence_AfterCloseIsDropped(t *testing.T) {
	transport := New(Config{BrokerURL: "tcp://localhost:1883", ClientID: "test", TopicPrefix: "pos"})
	require.NoError(t, transport.Close())

	// Must not panic on the closed feed.
	transport.onPresence(nil, presenceMsg{topic: "pos/presence/app/A1/node/N7"})

	_, open := <-transport.Subscriptions()
	assert.False(t, open, "feed must be closed after Close")
}

// Callbacks racing Close must never send on the closed feed.
func TestClose_ConcurrentWithPresenceCallbacks(t *testing.T) {
	transport := New(Config{BrokerURL: "tcp://localhost:1883", ClientID: "test", TopicPrefix: "pos"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				transport.onPresence(nil, presenceMsg{topic: "pos/presence/app/A1/node/N7"})
			}
		}()
	}
	require.NoError(t, transport.Close())
	wg.Wait()

	// Drain whatever landed before the close; the feed must end closed.
	for range transport.Subscriptions() {
	}
}
