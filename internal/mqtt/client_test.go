package mqtt

import (
	"errors"
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srg/ryse/pkg/config"
)

type fakeToken struct {
	err     error
	timeout bool
}

func (t *fakeToken) Wait() bool                     { return !t.timeout }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t *fakeToken) Error() error                   { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 1 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 1 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

// mockPaho mocks the paho client; unused methods panic through the nil embed.
type mockPaho struct {
	pahomqtt.Client
	mock.Mock

	mu       sync.Mutex
	handlers map[string]pahomqtt.MessageHandler
}

func (m *mockPaho) IsConnected() bool {
	return m.Called().Bool(0)
}

func (m *mockPaho) Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token {
	return m.Called(topic, qos, retained, payload).Get(0).(pahomqtt.Token)
}

func (m *mockPaho) Subscribe(topic string, qos byte, callback pahomqtt.MessageHandler) pahomqtt.Token {
	m.mu.Lock()
	if m.handlers == nil {
		m.handlers = map[string]pahomqtt.MessageHandler{}
	}
	m.handlers[topic] = callback
	m.mu.Unlock()
	return m.Called(topic, qos).Get(0).(pahomqtt.Token)
}

func (m *mockPaho) Connect() pahomqtt.Token {
	return m.Called().Get(0).(pahomqtt.Token)
}

func (m *mockPaho) Disconnect(quiesce uint) {
	m.Called(quiesce)
}

func (m *mockPaho) deliver(topic string, payload []byte) {
	m.mu.Lock()
	h := m.handlers[topic]
	m.mu.Unlock()
	h(m, &fakeMessage{topic: topic, payload: payload})
}

func newConnectedClient(t *testing.T) (*Client, *mockPaho, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	pc := &mockPaho{}
	pc.On("IsConnected").Return(true).Maybe()
	c := newClient(pc, Topics{Prefix: "ryse", Device: "cover"}, 1, logger)
	c.setConnected(true)
	return c, pc, hook
}

func subscribed(c *Client, topic string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	_, ok := c.subscriptions[topic]
	return ok
}

func TestTopics(t *testing.T) {
	topics := Topics{Prefix: "ryse", Device: "living-room"}

	assert.Equal(t, "ryse/living-room/state", topics.State())
	assert.Equal(t, "ryse/living-room/availability", topics.Availability())
	assert.Equal(t, "ryse/living-room/command", topics.Command())
}

func TestBuildClientOptions(t *testing.T) {
	cfg := config.Default().MQTT
	cfg.Host = "broker.local"
	cfg.Username = "user"
	cfg.Password = "secret"

	opts := buildClientOptions(cfg)
	configureLWT(opts, Topics{Prefix: "ryse", Device: "cover"}, 1)

	require.Len(t, opts.Servers, 1)
	assert.Equal(t, "tcp://broker.local:1883", opts.Servers[0].String())
	assert.Equal(t, "ryse", opts.ClientID)
	assert.Equal(t, "user", opts.Username)
	assert.Equal(t, "secret", opts.Password)
	assert.True(t, opts.AutoReconnect)
	assert.True(t, opts.CleanSession)

	assert.True(t, opts.WillEnabled)
	assert.Equal(t, "ryse/cover/availability", opts.WillTopic)
	assert.Equal(t, []byte(PayloadOffline), opts.WillPayload)
	assert.True(t, opts.WillRetained)
}

func TestConnectRejectsInvalidQoS(t *testing.T) {
	cfg := config.Default().MQTT
	cfg.QoS = 3

	_, err := Connect(cfg, "cover", nil)
	assert.ErrorIs(t, err, ErrInvalidQoS)
}

func TestConnectStopsRetryingOnFailure(t *testing.T) {
	original := pahoFactory
	t.Cleanup(func() { pahoFactory = original })

	tests := []struct {
		name  string
		token *fakeToken
	}{
		{"timeout", &fakeToken{timeout: true}},
		{"refused", &fakeToken{err: errors.New("connection refused")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := &mockPaho{}
			pc.On("Connect").Return(tt.token).Once()
			pc.On("Disconnect", uint(0)).Once()
			pahoFactory = func(*pahomqtt.ClientOptions) pahomqtt.Client { return pc }

			c, err := Connect(config.Default().MQTT, "cover", nil)

			assert.Nil(t, c)
			assert.ErrorIs(t, err, ErrConnectionFailed)
			pc.AssertExpectations(t)
		})
	}
}

func TestClientPublish(t *testing.T) {
	t.Run("publishes with configured qos", func(t *testing.T) {
		c, pc, _ := newConnectedClient(t)
		pc.On("Publish", "ryse/cover/state", byte(1), true, []byte("{}")).Return(&fakeToken{}).Once()

		require.NoError(t, c.Publish("ryse/cover/state", []byte("{}"), true))
		pc.AssertExpectations(t)
	})

	t.Run("rejects empty topic", func(t *testing.T) {
		c, _, _ := newConnectedClient(t)
		assert.ErrorIs(t, c.Publish("", nil, false), ErrInvalidTopic)
	})

	t.Run("fails when disconnected", func(t *testing.T) {
		c, _, _ := newConnectedClient(t)
		c.setConnected(false)
		assert.ErrorIs(t, c.Publish("x", nil, false), ErrNotConnected)
	})

	t.Run("wraps broker error", func(t *testing.T) {
		c, pc, _ := newConnectedClient(t)
		pc.On("Publish", "x", byte(1), false, mock.Anything).Return(&fakeToken{err: errors.New("denied")})

		err := c.Publish("x", []byte("a"), false)
		assert.ErrorIs(t, err, ErrPublishFailed)
		assert.Contains(t, err.Error(), "denied")
	})

	t.Run("reports timeout", func(t *testing.T) {
		c, pc, _ := newConnectedClient(t)
		pc.On("Publish", "x", byte(1), false, mock.Anything).Return(&fakeToken{timeout: true})

		assert.ErrorIs(t, c.Publish("x", []byte("a"), false), ErrPublishFailed)
	})
}

func TestClientSubscribe(t *testing.T) {
	t.Run("tracks subscription and delivers messages", func(t *testing.T) {
		c, pc, _ := newConnectedClient(t)
		pc.On("Subscribe", "ryse/cover/command", byte(1)).Return(&fakeToken{})

		var got []byte
		require.NoError(t, c.Subscribe("ryse/cover/command", func(_ string, payload []byte) error {
			got = payload
			return nil
		}))

		assert.True(t, subscribed(c, "ryse/cover/command"))
		pc.deliver("ryse/cover/command", []byte("f5"))
		assert.Equal(t, []byte("f5"), got)
	})

	t.Run("forgets failed subscription", func(t *testing.T) {
		c, pc, _ := newConnectedClient(t)
		pc.On("Subscribe", "t", byte(1)).Return(&fakeToken{err: errors.New("not authorized")})

		err := c.Subscribe("t", func(string, []byte) error { return nil })
		assert.ErrorIs(t, err, ErrSubscribeFailed)
		assert.False(t, subscribed(c, "t"))
	})

	t.Run("rejects nil handler", func(t *testing.T) {
		c, _, _ := newConnectedClient(t)
		assert.ErrorIs(t, c.Subscribe("t", nil), ErrSubscribeFailed)
	})

	t.Run("handler errors and panics are logged", func(t *testing.T) {
		c, pc, hook := newConnectedClient(t)
		pc.On("Subscribe", mock.Anything, byte(1)).Return(&fakeToken{})

		require.NoError(t, c.Subscribe("err", func(string, []byte) error { return errors.New("bad") }))
		require.NoError(t, c.Subscribe("panic", func(string, []byte) error { panic("boom") }))

		pc.deliver("err", nil)
		assert.NotPanics(t, func() { pc.deliver("panic", nil) })

		var messages []string
		for _, e := range hook.AllEntries() {
			messages = append(messages, e.Message)
		}
		assert.Contains(t, messages, "MQTT handler returned error")
		assert.Contains(t, messages, "MQTT handler panic recovered")
	})
}

func TestReconnectRestoresState(t *testing.T) {
	c, pc, _ := newConnectedClient(t)
	pc.On("Subscribe", "ryse/cover/command", byte(1)).Return(&fakeToken{})
	require.NoError(t, c.Subscribe("ryse/cover/command", func(string, []byte) error { return nil }))

	c.handleDisconnect(errors.New("eof"))
	assert.False(t, c.IsConnected())

	pc.On("Publish", "ryse/cover/availability", byte(1), true, PayloadOnline).Return(&fakeToken{}).Once()
	c.handleConnect()

	assert.True(t, c.IsConnected())
	pc.AssertNumberOfCalls(t, "Subscribe", 2)
	pc.AssertExpectations(t)
}

func TestClientClose(t *testing.T) {
	c, pc, _ := newConnectedClient(t)
	pc.On("Publish", "ryse/cover/availability", byte(1), true, PayloadOffline).Return(&fakeToken{}).Once()
	pc.On("Disconnect", uint(defaultDisconnectQuiesce)).Once()

	require.NoError(t, c.Close())

	assert.False(t, c.IsConnected())
	pc.AssertExpectations(t)
}
