package goble

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/ryse/internal/device"
)

// Transport implements device.Transport on top of go-ble.
// The underlying HCI/CoreBluetooth device is created lazily and shared by
// scans and connections.
type Transport struct {
	logger      logrus.FieldLogger
	scanTimeout time.Duration

	mu  sync.Mutex
	dev ble.Device
}

// NewTransport creates a go-ble transport. scanTimeout <= 0 selects DefaultScanTimeout.
func NewTransport(scanTimeout time.Duration, logger logrus.FieldLogger) *Transport {
	if logger == nil {
		logger = logrus.New()
	}
	if scanTimeout <= 0 {
		scanTimeout = DefaultScanTimeout
	}
	return &Transport{logger: logger, scanTimeout: scanTimeout}
}

func (t *Transport) bleDevice() (ble.Device, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.dev != nil {
		return t.dev, nil
	}
	dev, err := DeviceFactory()
	if err != nil {
		t.logger.WithField("error", err).Error("Failed to create BLE device")
		return nil, fmt.Errorf("failed to create BLE device: %w", NormalizeError(err))
	}
	t.dev = dev
	return dev, nil
}

// Connect dials address, discovers its GATT profile and returns the live link.
func (t *Transport) Connect(ctx context.Context, address string, timeout time.Duration) (device.Link, error) {
	if strings.TrimSpace(address) == "" {
		return nil, device.ErrEmptyAddress
	}

	dev, err := t.bleDevice()
	if err != nil {
		return nil, err
	}

	connCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		connCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	log := t.logger.WithField("address", address)
	log.WithField("timeout", timeout).Debug("Dialing BLE device...")

	client, err := dev.Dial(connCtx, ble.NewAddr(address))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to device with address %q: %w", address, NormalizeError(err))
	}

	profile, err := discoverProfile(connCtx, client)
	if err != nil {
		if cancelErr := client.CancelConnection(); cancelErr != nil {
			log.WithField("cancel_error", cancelErr).Warn("Failed to cancel connection during profile discovery failure")
		}
		return nil, fmt.Errorf("failed to discover profile: %w", NormalizeError(err))
	}

	log.WithField("services", len(profile.Services)).Debug("Profile discovered successfully")
	return newConnection(address, client, profile, t.logger), nil
}

// discoverProfile runs profile discovery under ctx. go-ble discovery cannot be
// cancelled, so on expiry the caller must tear the connection down.
func discoverProfile(ctx context.Context, client ble.Client) (*ble.Profile, error) {
	type discoveryResult struct {
		profile *ble.Profile
		err     error
	}
	resultCh := make(chan discoveryResult, 1)
	go func() {
		profile, err := client.DiscoverProfile(true)
		resultCh <- discoveryResult{profile: profile, err: err}
	}()

	select {
	case result := <-resultCh:
		return result.profile, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
