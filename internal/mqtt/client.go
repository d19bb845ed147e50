package mqtt

import (
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/srg/ryse/pkg/config"
)

// pahoFactory builds the underlying paho client. Tests replace it.
var pahoFactory = pahomqtt.NewClient

// MessageHandler is the callback signature for received messages.
// Returned errors are logged and do not affect acknowledgment.
type MessageHandler func(topic string, payload []byte) error

type subscription struct {
	topic   string
	qos     byte
	handler MessageHandler
}

// Client wraps paho.mqtt.golang with connection tracking, availability
// publishing and subscription restoration on reconnect.
//
// All methods are safe for concurrent use.
type Client struct {
	client pahomqtt.Client
	topics Topics
	qos    byte
	logger logrus.FieldLogger

	subscriptions map[string]subscription
	subMu         sync.RWMutex

	connected bool
	connMu    sync.RWMutex
}

// Connect establishes a connection to the broker described by cfg.
// The availability topic of device gets a retained "offline" Last Will and
// a retained "online" on every (re)connect.
func Connect(cfg config.MQTTConfig, device string, logger logrus.FieldLogger) (*Client, error) {
	if cfg.QoS < 0 || cfg.QoS > maxQoS {
		return nil, ErrInvalidQoS
	}

	topics := Topics{Prefix: cfg.TopicPrefix, Device: device}
	opts := buildClientOptions(cfg)
	configureLWT(opts, topics, byte(cfg.QoS))

	c := newClient(nil, topics, byte(cfg.QoS), logger)

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleDisconnect(err)
	})
	opts.SetReconnectingHandler(func(_ pahomqtt.Client, _ *pahomqtt.ClientOptions) {
		c.logger.Info("Reconnecting to MQTT broker")
	})

	c.client = pahoFactory(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		// stop the background connect retry loop
		c.client.Disconnect(0)
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		c.client.Disconnect(0)
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnect callback runs asynchronously and may not have fired yet.
	c.setConnected(true)

	c.logger.WithFields(logrus.Fields{
		"host": cfg.Host,
		"port": cfg.Port,
	}).Info("Connected to MQTT broker")
	return c, nil
}

func newClient(pc pahomqtt.Client, topics Topics, qos byte, logger logrus.FieldLogger) *Client {
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{
		client:        pc,
		topics:        topics,
		qos:           qos,
		logger:        logger,
		subscriptions: make(map[string]subscription),
	}
}

// Topics returns the device topics this client publishes to.
func (c *Client) Topics() Topics { return c.topics }

func (c *Client) setConnected(v bool) {
	c.connMu.Lock()
	c.connected = v
	c.connMu.Unlock()
}

func (c *Client) handleConnect() {
	c.setConnected(true)
	c.restoreSubscriptions()
	c.client.Publish(c.topics.Availability(), c.qos, true, PayloadOnline)
}

func (c *Client) handleDisconnect(err error) {
	c.setConnected(false)
	c.logger.WithField("error", err).Warn("Lost connection to MQTT broker")
}

func (c *Client) restoreSubscriptions() {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	for _, sub := range c.subscriptions {
		c.client.Subscribe(sub.topic, sub.qos, c.wrapHandler(sub.handler))
	}
}

// IsConnected returns the last known connection state.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client != nil && c.client.IsConnected()
}

// Publish sends payload to topic and waits for the broker acknowledgment.
func (c *Client) Publish(topic string, payload []byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, c.qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Subscribe registers handler for topic. Subscriptions are restored on reconnect.
func (c *Client) Subscribe(topic string, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.subMu.Lock()
	c.subscriptions[topic] = subscription{topic: topic, qos: c.qos, handler: handler}
	c.subMu.Unlock()

	token := c.client.Subscribe(topic, c.qos, c.wrapHandler(handler))
	if !token.WaitTimeout(defaultPublishTimeout) {
		c.forget(topic)
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		c.forget(topic)
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}
	return nil
}

func (c *Client) forget(topic string) {
	c.subMu.Lock()
	delete(c.subscriptions, topic)
	c.subMu.Unlock()
}

// Close publishes a retained "offline" and disconnects.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	if c.IsConnected() {
		token := c.client.Publish(c.topics.Availability(), c.qos, true, PayloadOffline)
		token.WaitTimeout(defaultPublishTimeout)
	}

	c.client.Disconnect(defaultDisconnectQuiesce)
	c.setConnected(false)
	return nil
}

// wrapHandler adds panic recovery and error logging to handler.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		log := c.logger.WithField("topic", msg.Topic())
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("MQTT handler panic recovered")
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			log.WithField("error", err).Warn("MQTT handler returned error")
		}
	}
}
