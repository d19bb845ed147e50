package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/srg/ryse/internal/device"
	"github.com/stretchr/testify/mock"
)

// MockTransport mocks device.Transport.
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Discover(ctx context.Context) ([]device.Advertisement, error) {
	args := m.Called(ctx)
	ads, _ := args.Get(0).([]device.Advertisement)
	return ads, args.Error(1)
}

func (m *MockTransport) Connect(ctx context.Context, address string, timeout time.Duration) (device.Link, error) {
	args := m.Called(ctx, address, timeout)
	link, _ := args.Get(0).(device.Link)
	return link, args.Error(1)
}

// MockLink mocks device.Link. Subscribe captures the handler so tests can
// push notifications with Notify; Drop simulates a link loss.
type MockLink struct {
	mock.Mock

	mu        sync.Mutex
	handler   func([]byte)
	dropped   chan struct{}
	closeOnce sync.Once
}

// NewMockLink creates a link whose Disconnected channel is open.
func NewMockLink() *MockLink {
	return &MockLink{dropped: make(chan struct{})}
}

func (m *MockLink) Subscribe(ctx context.Context, uuid string, handler func(data []byte)) error {
	args := m.Called(ctx, uuid, handler)
	if args.Error(0) == nil {
		m.mu.Lock()
		m.handler = handler
		m.mu.Unlock()
	}
	return args.Error(0)
}

func (m *MockLink) Read(ctx context.Context, uuid string) ([]byte, error) {
	args := m.Called(ctx, uuid)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockLink) Write(ctx context.Context, uuid string, data []byte) error {
	args := m.Called(ctx, uuid, data)
	return args.Error(0)
}

func (m *MockLink) Services() (*device.ServiceInfo, error) {
	args := m.Called()
	info, _ := args.Get(0).(*device.ServiceInfo)
	return info, args.Error(1)
}

func (m *MockLink) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockLink) Disconnected() <-chan struct{} {
	return m.dropped
}

func (m *MockLink) Disconnect() error {
	args := m.Called()
	m.Drop()
	return args.Error(0)
}

// Notify delivers data to the subscribed handler, if any.
func (m *MockLink) Notify(data []byte) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h(data)
	}
}

// Subscribed reports whether a handler has been registered.
func (m *MockLink) Subscribed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handler != nil
}

// Drop closes the Disconnected channel.
func (m *MockLink) Drop() {
	m.closeOnce.Do(func() { close(m.dropped) })
}
