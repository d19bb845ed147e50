// Package mocks provides testify mocks for the go-ble interfaces used by the transport.
// Each mock embeds the interface it fakes, so methods the driver never calls
// panic instead of silently returning zero values.
package mocks

import (
	"context"

	blelib "github.com/go-ble/ble"
	"github.com/stretchr/testify/mock"
)

// MockDevice mocks ble.Device.
type MockDevice struct {
	blelib.Device
	mock.Mock
}

func (m *MockDevice) Scan(ctx context.Context, allowDup bool, h blelib.AdvHandler) error {
	args := m.Called(ctx, allowDup, h)
	return args.Error(0)
}

func (m *MockDevice) Dial(ctx context.Context, a blelib.Addr) (blelib.Client, error) {
	args := m.Called(ctx, a)
	client, _ := args.Get(0).(blelib.Client)
	return client, args.Error(1)
}

// MockClient mocks ble.Client.
type MockClient struct {
	blelib.Client
	mock.Mock

	// DisconnectedCh is returned by Disconnected; nil means the stack never reports drops.
	DisconnectedCh chan struct{}
}

func (m *MockClient) DiscoverProfile(force bool) (*blelib.Profile, error) {
	args := m.Called(force)
	profile, _ := args.Get(0).(*blelib.Profile)
	return profile, args.Error(1)
}

func (m *MockClient) ReadCharacteristic(c *blelib.Characteristic) ([]byte, error) {
	args := m.Called(c)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockClient) WriteCharacteristic(c *blelib.Characteristic, value []byte, noRsp bool) error {
	args := m.Called(c, append([]byte(nil), value...), noRsp)
	return args.Error(0)
}

func (m *MockClient) Subscribe(c *blelib.Characteristic, ind bool, h blelib.NotificationHandler) error {
	args := m.Called(c, ind, h)
	return args.Error(0)
}

func (m *MockClient) CancelConnection() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockClient) Disconnected() <-chan struct{} {
	if m.DisconnectedCh == nil {
		return nil
	}
	return m.DisconnectedCh
}

// MockAdvertisement mocks ble.Advertisement.
type MockAdvertisement struct {
	blelib.Advertisement

	Name          string
	Address       string
	SignalRSSI    int
	IsConnectable bool
}

func (a *MockAdvertisement) LocalName() string { return a.Name }
func (a *MockAdvertisement) Addr() blelib.Addr { return blelib.NewAddr(a.Address) }
func (a *MockAdvertisement) RSSI() int         { return a.SignalRSSI }
func (a *MockAdvertisement) Connectable() bool { return a.IsConnectable }
