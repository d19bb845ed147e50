// Package session manages the connection to a single cover motor: pairing,
// notification handling, raw characteristic I/O and teardown.
//
// Every operation reports failure through a sentinel (false or nil) and a log
// entry; transport errors never reach the caller. A lost connection is not
// re-established automatically; the caller decides whether to pair again.
package session

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/ryse/internal/device"
	"github.com/srg/ryse/internal/frame"
	"github.com/srg/ryse/internal/groutine"
)

const (
	// DefaultConnectTimeout bounds a single connection attempt in Pair.
	DefaultConnectTimeout = 30 * time.Second

	// DefaultNameMatch is the advertised-name fragment ScanAndPair looks for.
	DefaultNameMatch = "target-device-name"
)

// PositionCallback receives the raw position (0-255) of every position report.
type PositionCallback func(position uint8)

// Options tunes a Session. Zero values select the defaults.
type Options struct {
	ConnectTimeout time.Duration
	NameMatch      string
}

// Session owns the connection to one peripheral.
//
// The link handle is only ever swapped under mu, never mutated, so a
// notification being processed always sees a consistent handle.
type Session struct {
	transport      device.Transport
	decoder        *frame.Decoder
	logger         logrus.FieldLogger
	connectTimeout time.Duration
	nameMatch      string

	mu       sync.RWMutex
	identity device.Identity
	link     device.Link

	cbMu       sync.RWMutex
	onPosition PositionCallback
}

// New creates an unpaired session. identity.Address may be empty when the
// device is to be found with ScanAndPair.
func New(transport device.Transport, identity device.Identity, logger logrus.FieldLogger, opts *Options) *Session {
	if logger == nil {
		logger = logrus.New()
	}
	if opts == nil {
		opts = &Options{}
	}

	s := &Session{
		transport:      transport,
		decoder:        frame.NewDecoder(logger),
		logger:         logger,
		identity:       identity,
		connectTimeout: opts.ConnectTimeout,
		nameMatch:      opts.NameMatch,
	}
	if s.connectTimeout <= 0 {
		s.connectTimeout = DefaultConnectTimeout
	}
	if s.nameMatch == "" {
		s.nameMatch = DefaultNameMatch
	}
	return s
}

// OnPositionUpdate registers cb for position reports; nil removes it.
func (s *Session) OnPositionUpdate(cb PositionCallback) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.onPosition = cb
}

// Identity returns the current device identity.
func (s *Session) Identity() device.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// IsConnected reports whether the session holds a live link.
func (s *Session) IsConnected() bool {
	link := s.currentLink()
	return link != nil && link.IsConnected()
}

func (s *Session) currentLink() device.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.link
}

// Pair connects to the configured address and subscribes to notifications.
// It returns false if no address is set or the transport fails.
func (s *Session) Pair(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pairLocked(ctx)
}

func (s *Session) pairLocked(ctx context.Context) bool {
	address := s.identity.Address
	if address == "" {
		s.logger.Error("No device address provided for pairing")
		return false
	}

	log := s.logger.WithField("address", address)
	if s.link != nil && s.link.IsConnected() {
		log.Debug("Already paired, keeping existing connection")
		return true
	}

	log.Info("Pairing with device")
	link, err := s.transport.Connect(ctx, address, s.connectTimeout)
	if err != nil {
		log.WithFields(logrus.Fields{
			"timeout": s.connectTimeout,
			"error":   err,
		}).Error("Error pairing with device")
		return false
	}
	if !link.IsConnected() {
		log.Error("Transport returned a link that is not connected")
		s.closeLink(link, log)
		return false
	}

	if err := link.Subscribe(ctx, s.identity.NotifyUUID, s.HandleNotification); err != nil {
		log.WithFields(logrus.Fields{
			"uuid":  s.identity.NotifyUUID,
			"error": err,
		}).Error("Error subscribing to device notifications")
		s.closeLink(link, log)
		return false
	}

	s.link = link
	s.watch(link)
	log.Info("Successfully paired with device")
	return true
}

// watch clears the handle once the transport reports the link as dropped.
func (s *Session) watch(link device.Link) {
	dropped := link.Disconnected()
	if dropped == nil {
		return
	}
	groutine.Go(context.Background(), "session-link-watch", s.logger, func(ctx context.Context) {
		<-dropped

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.link == link {
			s.link = nil
			s.logger.WithFields(logrus.Fields{
				"address":   s.identity.Address,
				"goroutine": groutine.GetName(ctx),
			}).Warn("Connection to device lost")
		}
	})
}

func (s *Session) closeLink(link device.Link, log logrus.FieldLogger) {
	if err := link.Disconnect(); err != nil {
		log.WithField("error", err).Warn("Failed to close connection")
	}
}

// ScanAndPair discovers peripherals and pairs with the first one whose
// advertised name contains the configured name fragment, ignoring case.
// It returns false if the scan fails or nothing matches.
func (s *Session) ScanAndPair(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("Scanning for BLE devices...")
	ads, err := s.transport.Discover(ctx)
	if err != nil {
		s.logger.WithField("error", err).Error("Scan for BLE devices failed")
		return false
	}

	for _, adv := range ads {
		log := s.logger.WithFields(logrus.Fields{
			"name":    adv.LocalName(),
			"address": adv.Addr(),
		})
		log.Info("Found device")

		if device.NameMatches(adv.LocalName(), s.nameMatch) {
			log.Info("Attempting to pair with device")
			s.identity.Address = adv.Addr()
			return s.pairLocked(ctx)
		}
	}

	s.logger.WithField("name_match", s.nameMatch).Warn("No suitable devices found to pair")
	return false
}

// Unpair disconnects the session. It is a no-op when not connected.
func (s *Session) Unpair() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.link == nil {
		return
	}
	link := s.link
	s.link = nil

	log := s.logger.WithField("address", s.identity.Address)
	if err := link.Disconnect(); err != nil {
		log.WithField("error", err).Error("Error disconnecting device")
		return
	}
	log.Info("Device disconnected")
}

// ReadData reads the inbound characteristic. It returns nil when not
// connected or when the read fails.
func (s *Session) ReadData(ctx context.Context) []byte {
	link := s.currentLink()
	if link == nil {
		return nil
	}

	data, err := link.Read(ctx, s.identity.NotifyUUID)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"uuid":  s.identity.NotifyUUID,
			"error": err,
		}).Error("Failed to read from device")
		return nil
	}

	if !frame.IsTargetReport(data) {
		s.logger.WithField("data", hex.EncodeToString(data)).Info("Received")
	}
	return data
}

// WriteData writes payload to the outbound characteristic. It does nothing
// when not connected; failures are logged.
func (s *Session) WriteData(ctx context.Context, payload []byte) {
	_ = s.Write(ctx, payload)
}

// Write is WriteData for callers that need the outcome. Without a link it
// returns device.ErrNotConnected and logs nothing.
func (s *Session) Write(ctx context.Context, payload []byte) error {
	link := s.currentLink()
	if link == nil {
		return device.ErrNotConnected
	}

	log := s.logger.WithFields(logrus.Fields{
		"uuid": s.identity.WriteUUID,
		"data": hex.EncodeToString(payload),
	})
	if err := link.Write(ctx, s.identity.WriteUUID, payload); err != nil {
		log.WithField("error", err).Error("Failed to write to device")
		return err
	}
	log.Info("Sent")
	return nil
}

// HandleNotification is the subscription callback. Position reports are
// forwarded to the registered callback; everything else is only logged.
func (s *Session) HandleNotification(data []byte) {
	res := s.decoder.Classify(data)
	if res.Kind != frame.PositionUpdate {
		return
	}

	s.cbMu.RLock()
	cb := s.onPosition
	s.cbMu.RUnlock()

	if cb != nil {
		cb(res.Position)
	}
}

// DeviceInfo returns the peripheral's GATT metadata, or nil when not
// connected or when the transport cannot provide it.
func (s *Session) DeviceInfo(_ context.Context) *device.ServiceInfo {
	link := s.currentLink()
	if link == nil {
		return nil
	}

	info, err := link.Services()
	if err != nil {
		s.logger.WithField("error", err).Error("Failed to get device info")
		return nil
	}
	s.logger.WithField("services", len(info.Services)).Info("Retrieved device info")
	return info
}
