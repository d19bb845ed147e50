// Package frame decodes the notification frames emitted by the cover motor.
//
// Every notification or read delivers exactly one complete frame:
//
//	byte 0  sync marker (0xF5)
//	byte 1  reserved
//	byte 2  message class (0x01)
//	byte 3  subtype (0x07 position report, 0x18 target report)
//	byte 4  position value, 0x07 only
//
// Frames are classified independently; nothing is buffered or reassembled.
package frame

import (
	"encoding/hex"

	"github.com/sirupsen/logrus"
)

const (
	SyncMarker      byte = 0xF5
	ClassReport     byte = 0x01
	SubtypePosition byte = 0x07
	SubtypeTarget   byte = 0x18

	// MinLength is the shortest buffer that can carry a frame header plus value.
	MinLength = 5
)

// Kind is the classification outcome of a single buffer.
type Kind int

const (
	Unrecognized Kind = iota
	Ignored
	PositionUpdate
)

func (k Kind) String() string {
	switch k {
	case Ignored:
		return "ignored"
	case PositionUpdate:
		return "position"
	default:
		return "unrecognized"
	}
}

// Result is returned by Classify. Position is meaningful only for PositionUpdate.
type Result struct {
	Kind     Kind
	Position uint8
}

// Classify inspects buf and reports what kind of frame it carries.
// It never fails; short, empty or malformed input is Unrecognized.
func Classify(buf []byte) Result {
	if !hasHeader(buf) {
		return Result{Kind: Unrecognized}
	}
	switch buf[3] {
	case SubtypeTarget:
		return Result{Kind: Ignored}
	case SubtypePosition:
		return Result{Kind: PositionUpdate, Position: buf[4]}
	default:
		return Result{Kind: Unrecognized}
	}
}

// IsTargetReport reports whether buf is a well-formed target report frame.
func IsTargetReport(buf []byte) bool {
	return hasHeader(buf) && buf[3] == SubtypeTarget
}

func hasHeader(buf []byte) bool {
	return len(buf) >= MinLength && buf[0] == SyncMarker && buf[2] == ClassReport
}

// Decoder is Classify plus diagnostic logging.
type Decoder struct {
	logger logrus.FieldLogger
}

// NewDecoder creates a decoder logging to logger. A nil logger gets a default one.
func NewDecoder(logger logrus.FieldLogger) *Decoder {
	if logger == nil {
		logger = logrus.New()
	}
	return &Decoder{logger: logger}
}

// Classify classifies buf exactly like the package-level Classify and logs the outcome.
// Target reports are only visible at debug level.
func (d *Decoder) Classify(buf []byte) Result {
	res := Classify(buf)
	entry := d.logger.WithField("data", hex.EncodeToString(buf))

	switch res.Kind {
	case Ignored:
		entry.Debug("Ignoring target report frame")
	case PositionUpdate:
		entry.WithField("position", res.Position).Info("Received position report")
	default:
		entry.WithField("length", len(buf)).Info("Received unrecognized frame")
	}
	return res
}
