package goble

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/ryse/internal/device"
	"github.com/srg/ryse/internal/groutine"
)

const (
	// DefaultBLEWriteChunkSize is the maximum number of bytes to write in a single BLE operation.
	// BLE 4.0/4.1 spec defines ATT_MTU of 23 bytes (20 bytes payload after ATT header overhead).
	DefaultBLEWriteChunkSize = 20

	// DefaultBLEWriteDelay is the delay between consecutive write chunks.
	DefaultBLEWriteDelay = 10 * time.Millisecond
)

// Connection is a live go-ble client with its discovered profile. It implements device.Link.
type Connection struct {
	address string
	client  ble.Client
	profile *ble.Profile
	logger  logrus.FieldLogger

	writeMutex sync.Mutex
	connMutex  sync.RWMutex
	connected  bool

	disconnected chan struct{}
	closeOnce    sync.Once
}

func newConnection(address string, client ble.Client, profile *ble.Profile, logger logrus.FieldLogger) *Connection {
	c := &Connection{
		address:      address,
		client:       client,
		profile:      profile,
		logger:       logger.WithField("address", address),
		connected:    true,
		disconnected: make(chan struct{}),
	}
	c.monitor()
	return c
}

// monitor watches the go-ble client for a link drop reported by the stack.
func (c *Connection) monitor() {
	dropped := c.client.Disconnected()
	if dropped == nil {
		return
	}
	groutine.Go(context.Background(), "ble-connection-monitor", c.logger, func(ctx context.Context) {
		select {
		case <-dropped:
			c.logger.WithField("goroutine", groutine.GetName(ctx)).Warn("BLE stack reported disconnection")
			c.markDisconnected()
		case <-c.disconnected:
		}
	})
}

func (c *Connection) markDisconnected() {
	c.connMutex.Lock()
	c.connected = false
	c.connMutex.Unlock()
	c.closeOnce.Do(func() { close(c.disconnected) })
}

// findCharacteristic resolves uuid against the discovered profile.
func (c *Connection) findCharacteristic(uuid string) (*ble.Characteristic, error) {
	want := device.NormalizeUUID(uuid)
	for _, svc := range c.profile.Services {
		for _, char := range svc.Characteristics {
			if device.NormalizeUUID(char.UUID.String()) == want {
				return char, nil
			}
		}
	}
	return nil, &device.NotFoundError{Resource: "characteristic", UUIDs: []string{uuid}}
}

// snapshot returns the client if the link is still up.
func (c *Connection) snapshot() (ble.Client, error) {
	c.connMutex.RLock()
	defer c.connMutex.RUnlock()
	if !c.connected {
		return nil, device.ErrNotConnected
	}
	return c.client, nil
}

// Subscribe enables notifications (or indications) on uuid and routes each payload to handler.
func (c *Connection) Subscribe(_ context.Context, uuid string, handler func(data []byte)) error {
	client, err := c.snapshot()
	if err != nil {
		return err
	}
	char, err := c.findCharacteristic(uuid)
	if err != nil {
		return err
	}
	if !canNotify(char.Property) {
		return fmt.Errorf("characteristic %s does not support notifications", uuid)
	}

	indicate := char.Property&ble.CharNotify == 0
	if err := client.Subscribe(char, indicate, func(data []byte) {
		// go-ble reuses its receive buffer
		handler(append([]byte(nil), data...))
	}); err != nil {
		return fmt.Errorf("failed to subscribe to characteristic %s: %w", uuid, NormalizeError(err))
	}

	c.logger.WithFields(logrus.Fields{
		"uuid":     uuid,
		"indicate": indicate,
	}).Info("Subscribed to characteristic notifications")
	return nil
}

// Read reads uuid. The go-ble read itself cannot be cancelled; ctx only bounds the wait.
func (c *Connection) Read(ctx context.Context, uuid string) ([]byte, error) {
	client, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	char, err := c.findCharacteristic(uuid)
	if err != nil {
		return nil, err
	}

	type readResult struct {
		data []byte
		err  error
	}
	resultCh := make(chan readResult, 1)
	go func() {
		data, err := client.ReadCharacteristic(char)
		resultCh <- readResult{data: data, err: err}
	}()

	select {
	case result := <-resultCh:
		if result.err != nil {
			return nil, fmt.Errorf("failed to read characteristic %s: %w", uuid, NormalizeError(result.err))
		}
		return result.data, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("reading characteristic %s: %w", uuid, NormalizeError(ctx.Err()))
	}
}

// Write writes data to uuid in DefaultBLEWriteChunkSize chunks.
// Writes on the same connection are serialized.
func (c *Connection) Write(ctx context.Context, uuid string, data []byte) error {
	client, err := c.snapshot()
	if err != nil {
		return err
	}
	char, err := c.findCharacteristic(uuid)
	if err != nil {
		return err
	}

	noRsp := char.Property&ble.CharWrite == 0 && char.Property&ble.CharWriteNR != 0

	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()

	for len(data) > 0 {
		if err := ctx.Err(); err != nil {
			return NormalizeError(err)
		}
		n := min(len(data), DefaultBLEWriteChunkSize)
		if err := client.WriteCharacteristic(char, data[:n], noRsp); err != nil {
			return fmt.Errorf("failed to write to characteristic %s: %w", uuid, NormalizeError(err))
		}
		data = data[n:]
		if len(data) > 0 {
			time.Sleep(DefaultBLEWriteDelay)
		}
	}
	return nil
}

// Services describes the discovered GATT profile.
func (c *Connection) Services() (*device.ServiceInfo, error) {
	if _, err := c.snapshot(); err != nil {
		return nil, err
	}
	if c.profile == nil {
		return nil, &device.NotFoundError{Resource: "service"}
	}

	info := &device.ServiceInfo{Address: c.address}
	for _, svc := range c.profile.Services {
		meta := device.ServiceMeta{UUID: device.NormalizeUUID(svc.UUID.String())}
		for _, char := range svc.Characteristics {
			meta.Characteristics = append(meta.Characteristics, device.CharacteristicMeta{
				UUID:       device.NormalizeUUID(char.UUID.String()),
				Properties: PropertyNames(char.Property),
			})
		}
		info.Services = append(info.Services, meta)
	}
	info.Sort()
	return info, nil
}

func (c *Connection) IsConnected() bool {
	c.connMutex.RLock()
	defer c.connMutex.RUnlock()
	return c.connected
}

func (c *Connection) Disconnected() <-chan struct{} {
	return c.disconnected
}

// Disconnect closes the link. Calling it on a closed link is a no-op.
func (c *Connection) Disconnect() error {
	c.connMutex.Lock()
	if !c.connected {
		c.connMutex.Unlock()
		c.logger.Debug("Disconnect called but already disconnected")
		return nil
	}
	c.connected = false
	client := c.client
	c.connMutex.Unlock()

	c.closeOnce.Do(func() { close(c.disconnected) })

	if err := client.CancelConnection(); err != nil {
		c.logger.WithField("error", err).Warn("BLE device disconnected with errors")
		return NormalizeError(err)
	}
	c.logger.Info("BLE device disconnected successfully")
	return nil
}
