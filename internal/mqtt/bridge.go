package mqtt

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srg/ryse/internal/cover"
	"github.com/srg/ryse/internal/frame"
)

const listenerID = "mqtt-bridge"

// Broker is the subset of Client used by Bridge.
type Broker interface {
	Topics() Topics
	Publish(topic string, payload []byte, retained bool) error
	Subscribe(topic string, handler MessageHandler) error
}

// Writer sends a raw frame to the device; *session.Session satisfies it.
type Writer interface {
	WriteData(ctx context.Context, payload []byte)
}

// StatePayload is the JSON document published on the state topic.
type StatePayload struct {
	Position  uint8  `json:"position"`
	State     string `json:"state"`
	UpdatedAt string `json:"updated_at"`
}

// Bridge publishes cover state changes and forwards command frames.
type Bridge struct {
	broker Broker
	cover  *cover.Cover
	writer Writer
	logger logrus.FieldLogger
}

// NewBridge creates a bridge; call Start to begin forwarding.
func NewBridge(broker Broker, c *cover.Cover, writer Writer, logger logrus.FieldLogger) *Bridge {
	if logger == nil {
		logger = logrus.New()
	}
	return &Bridge{broker: broker, cover: c, writer: writer, logger: logger}
}

// Start announces availability, follows cover updates (publishing the current
// state if known) and subscribes to the command topic.
func (b *Bridge) Start() error {
	topics := b.broker.Topics()

	if err := b.broker.Publish(topics.Availability(), []byte(PayloadOnline), true); err != nil {
		return err
	}
	b.cover.Subscribe(listenerID, b.publishState)
	if st := b.cover.Snapshot(); st.HasPosition {
		b.publishState(st)
	}

	if err := b.broker.Subscribe(topics.Command(), b.handleCommand); err != nil {
		b.cover.Unsubscribe(listenerID)
		return err
	}

	b.logger.WithField("topic", topics.State()).Info("MQTT bridge started")
	return nil
}

// Stop detaches from the cover and announces the device offline.
func (b *Bridge) Stop() {
	b.cover.Unsubscribe(listenerID)
	if err := b.broker.Publish(b.broker.Topics().Availability(), []byte(PayloadOffline), true); err != nil {
		b.logger.WithField("error", err).Warn("Failed to publish offline availability")
	}
}

// EncodeState renders a cover snapshot as the state topic payload.
func EncodeState(st cover.State) ([]byte, error) {
	p := StatePayload{
		Position: st.Position,
		State:    string(st.Condition),
	}
	if !st.UpdatedAt.IsZero() {
		p.UpdatedAt = st.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return json.Marshal(p)
}

func (b *Bridge) publishState(st cover.State) {
	payload, err := EncodeState(st)
	if err != nil {
		b.logger.WithField("error", err).Error("Failed to encode cover state")
		return
	}
	if err := b.broker.Publish(b.broker.Topics().State(), payload, true); err != nil {
		b.logger.WithFields(logrus.Fields{
			"position": st.Position,
			"error":    err,
		}).Warn("Failed to publish cover state")
	}
}

// DecodeCommand parses a command payload as a hex frame.
func DecodeCommand(payload []byte) ([]byte, error) {
	data, err := frame.ParseHex(string(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return data, nil
}

func (b *Bridge) handleCommand(topic string, payload []byte) error {
	data, err := DecodeCommand(payload)
	if err != nil {
		return err
	}
	b.logger.WithFields(logrus.Fields{
		"topic": topic,
		"data":  hex.EncodeToString(data),
	}).Info("Forwarding command to device")
	b.writer.WriteData(context.Background(), data)
	return nil
}
