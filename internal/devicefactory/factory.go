package devicefactory

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/ryse/internal/device"
	goble "github.com/srg/ryse/internal/device/go-ble"
)

// TransportFactory creates the device.Transport used by sessions and commands.
// This is a variable so that it can be overridden in tests.
var TransportFactory = func(scanTimeout time.Duration, logger logrus.FieldLogger) device.Transport {
	return goble.NewTransport(scanTimeout, logger)
}

// NewTransport creates a transport through TransportFactory.
func NewTransport(scanTimeout time.Duration, logger logrus.FieldLogger) device.Transport {
	return TransportFactory(scanTimeout, logger)
}
