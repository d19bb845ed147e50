package testutils

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/ryse/internal/device"
	"github.com/srg/ryse/internal/devicefactory"
	"github.com/srg/ryse/internal/testutils/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockTransportSuite provides a reusable test suite with a mocked BLE transport.
//
// Each test starts with a fresh MockTransport installed as
// devicefactory.TransportFactory and a fresh MockLink that the transport
// hands out on Connect once ExpectConnect is called:
//
//	type PairSuite struct {
//	    testutils.MockTransportSuite
//	}
//
//	func (s *PairSuite) TestPair() {
//	    s.ExpectConnect("AA:BB:CC:DD:EE:FF")
//	    ...
//	}
type MockTransportSuite struct {
	suite.Suite

	Helper *TestHelper
	Logger *logrus.Logger

	Transport *mocks.MockTransport
	Link      *mocks.MockLink

	originalFactory func(time.Duration, logrus.FieldLogger) device.Transport
}

// SetupSuite saves the production transport factory.
func (s *MockTransportSuite) SetupSuite() {
	s.originalFactory = devicefactory.TransportFactory
}

// SetupTest installs fresh mocks before each test.
func (s *MockTransportSuite) SetupTest() {
	s.Helper = NewTestHelper(s.T())
	s.Logger = s.Helper.Logger
	s.Transport = &mocks.MockTransport{}
	s.Link = mocks.NewMockLink()

	devicefactory.TransportFactory = func(time.Duration, logrus.FieldLogger) device.Transport {
		return s.Transport
	}
}

// TearDownTest restores the production factory.
func (s *MockTransportSuite) TearDownTest() {
	devicefactory.TransportFactory = s.originalFactory
}

// ExpectConnect makes Connect to address succeed with s.Link, which accepts any
// subscription and reports itself connected until it is disconnected.
func (s *MockTransportSuite) ExpectConnect(address string) {
	s.Transport.On("Connect", mock.Anything, address, mock.Anything).Return(s.Link, nil)
	s.Link.On("IsConnected").Return(true).Maybe()
	s.Link.On("Subscribe", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	s.Link.On("Disconnect").Return(nil).Maybe()
}
