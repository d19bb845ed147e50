package main

import (
	"errors"
	"strings"

	"github.com/srg/ryse/internal/device"
	"github.com/srg/ryse/internal/mqtt"
)

// Command-level errors
var (
	// ErrConnectionLost indicates the BLE connection dropped while monitoring.
	ErrConnectionLost = errors.New("connection lost")

	// ErrPairFailed is returned when neither pairing by address nor by name succeeded.
	ErrPairFailed = errors.New("could not pair with device")

	ErrReadFailed = errors.New("read failed")
	ErrNoInfo     = errors.New("device info unavailable")
)

// FormatUserError turns an error chain into a one-line message with a hint
// for the failures a user can fix.
func FormatUserError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	var hint string
	switch {
	case device.IsConnectionState(err, device.BluetoothOff):
		hint = "turn Bluetooth on and try again"
	case errors.Is(err, ErrPairFailed):
		hint = "check that the cover is powered and in range, or pass --address"
	case errors.Is(err, ErrConnectionLost):
		hint = "the cover went out of range or was powered off"
	case errors.Is(err, mqtt.ErrConnectionFailed):
		hint = "check mqtt.host and mqtt.port in the configuration"
	}

	if hint == "" {
		return msg
	}
	return strings.TrimSpace(msg) + " (" + hint + ")"
}
