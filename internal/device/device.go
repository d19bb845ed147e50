package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// NotFoundError represents an error when a BLE resource is not found
type NotFoundError struct {
	Resource string   // "service", "characteristic"
	UUIDs    []string // One or more UUIDs
}

func (e *NotFoundError) Error() string {
	if len(e.UUIDs) == 0 {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	if len(e.UUIDs) == 1 {
		return fmt.Sprintf("%s %q not found", e.Resource, e.UUIDs[0])
	}
	return fmt.Sprintf("%s %q not found in service %q", e.Resource, e.UUIDs[len(e.UUIDs)-1], e.UUIDs[0])
}

// ConnectionState represents the specific kind of connection state failure
type ConnectionState string

const (
	NotConnected     ConnectionState = "not_connected"
	AlreadyConnected ConnectionState = "already_connected"
	BluetoothOff     ConnectionState = "bluetooth_off"
)

// ConnectionError represents any connection-related problem
type ConnectionError struct {
	State ConnectionState
	Msg   string
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg != "" {
		return e.Msg
	}
	return string(e.State)
}

// Is allows errors.Is to compare ConnectionError values by State
func (e *ConnectionError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*ConnectionError)
	if !ok {
		return false
	}
	return e.State == t.State
}

// Predefined sentinel errors for connection states
var (
	ErrNotConnected     = &ConnectionError{State: NotConnected}
	ErrAlreadyConnected = &ConnectionError{State: AlreadyConnected}
	ErrBluetoothOff     = &ConnectionError{State: BluetoothOff, Msg: "bluetooth is turned off"}
)

// Operation errors
var (
	ErrTimeout      = errors.New("timeout")
	ErrEmptyAddress = errors.New("device address is empty")
)

// IsConnectionState reports whether err is a ConnectionError with the given state
func IsConnectionState(err error, state ConnectionState) bool {
	var cerr *ConnectionError
	if errors.As(err, &cerr) {
		return cerr.State == state
	}
	return false
}

// containsIgnoreCase checks substring case-insensitively
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// NameMatches reports whether an advertised name contains pattern, ignoring case.
// An empty name never matches.
func NameMatches(name, pattern string) bool {
	if name == "" {
		return false
	}
	return containsIgnoreCase(name, pattern)
}

// Identity addresses one peripheral and its two characteristics.
type Identity struct {
	Address    string
	NotifyUUID string // inbound: notifications and reads
	WriteUUID  string // outbound: commands
}

// Advertisement is a discovered peripheral as seen during a scan.
type Advertisement interface {
	LocalName() string
	Addr() string
	RSSI() int
	Connectable() bool
}

// Transport discovers peripherals and opens connections to them.
type Transport interface {
	// Discover scans for peripherals and returns them in first-seen order.
	// The scan duration is owned by the transport.
	Discover(ctx context.Context) ([]Advertisement, error)
	// Connect dials address, failing once timeout elapses.
	Connect(ctx context.Context, address string, timeout time.Duration) (Link, error)
}

// Link is a live connection handle to one peripheral.
type Link interface {
	Subscribe(ctx context.Context, uuid string, handler func(data []byte)) error
	Read(ctx context.Context, uuid string) ([]byte, error)
	Write(ctx context.Context, uuid string, data []byte) error
	Services() (*ServiceInfo, error)
	IsConnected() bool
	// Disconnected is closed once the peripheral drops the link for any reason.
	Disconnected() <-chan struct{}
	Disconnect() error
}
