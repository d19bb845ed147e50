package goble

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/ryse/internal/device"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultScanTimeout bounds discovery when the transport is created without one.
const DefaultScanTimeout = 10 * time.Second

// discoverySet keeps the first advertisement seen per address, in arrival order.
// Later advertisements from the same address refresh the entry in place.
type discoverySet struct {
	mu  sync.Mutex
	ads *orderedmap.OrderedMap[string, device.Advertisement]
}

func newDiscoverySet() *discoverySet {
	return &discoverySet{ads: orderedmap.New[string, device.Advertisement]()}
}

func (s *discoverySet) add(adv device.Advertisement) (isNew bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, seen := s.ads.Get(adv.Addr())
	if seen && adv.LocalName() == "" && prev.LocalName() != "" {
		// scan responses without a name must not hide the name seen earlier
		return false
	}
	s.ads.Set(adv.Addr(), adv)
	return !seen
}

func (s *discoverySet) list() []device.Advertisement {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]device.Advertisement, 0, s.ads.Len())
	for pair := s.ads.Oldest(); pair != nil; pair = pair.Next() {
		result = append(result, pair.Value)
	}
	return result
}

// Discover scans for the configured duration and returns every peripheral
// seen, deduplicated by address, in first-seen order.
func (t *Transport) Discover(ctx context.Context) ([]device.Advertisement, error) {
	dev, err := t.bleDevice()
	if err != nil {
		return nil, err
	}

	scanCtx := ctx
	if t.scanTimeout > 0 {
		var cancel context.CancelFunc
		scanCtx, cancel = context.WithTimeout(ctx, t.scanTimeout)
		defer cancel()
	}

	t.logger.WithField("timeout", t.scanTimeout).Debug("Starting BLE scan")

	found := newDiscoverySet()
	err = dev.Scan(scanCtx, false, func(adv ble.Advertisement) {
		wrapped := NewBLEAdvertisement(adv)
		if found.add(wrapped) {
			t.logger.WithFields(logrus.Fields{
				"name":    wrapped.LocalName(),
				"address": wrapped.Addr(),
				"rssi":    wrapped.RSSI(),
			}).Debug("Discovered BLE device")
		}
	})

	// The scan ends when its context expires; that is the normal outcome.
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("scan failed: %w", NormalizeError(err))
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	devices := found.list()
	t.logger.WithField("device_count", len(devices)).Info("BLE scan completed")
	return devices, nil
}
