package frame

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		buf      []byte
		expected Result
	}{
		{name: "nil buffer", buf: nil, expected: Result{Kind: Unrecognized}},
		{name: "empty buffer", buf: []byte{}, expected: Result{Kind: Unrecognized}},
		{name: "four bytes with valid header", buf: []byte{0xF5, 0x00, 0x01, 0x07}, expected: Result{Kind: Unrecognized}},
		{name: "wrong sync marker", buf: []byte{0xF4, 0x00, 0x01, 0x07, 0x2A}, expected: Result{Kind: Unrecognized}},
		{name: "wrong message class", buf: []byte{0xF5, 0x00, 0x02, 0x07, 0x2A}, expected: Result{Kind: Unrecognized}},
		{name: "target report", buf: []byte{0xF5, 0x00, 0x01, 0x18, 0xFF}, expected: Result{Kind: Ignored}},
		{name: "position report", buf: []byte{0xF5, 0x00, 0x01, 0x07, 0x2A}, expected: Result{Kind: PositionUpdate, Position: 42}},
		{name: "position report with trailing bytes", buf: []byte{0xF5, 0x09, 0x01, 0x07, 0x64, 0xAA, 0xBB}, expected: Result{Kind: PositionUpdate, Position: 100}},
		{name: "unknown subtype", buf: []byte{0xF5, 0x00, 0x01, 0x33, 0x01}, expected: Result{Kind: Unrecognized}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.buf))
		})
	}
}

func TestClassify_ShortBuffersAreUnrecognized(t *testing.T) {
	full := []byte{0xF5, 0x00, 0x01, 0x07, 0x2A}
	for n := 0; n < MinLength; n++ {
		assert.Equal(t, Unrecognized, Classify(full[:n]).Kind, "length %d", n)
	}
}

func TestClassify_HeaderMismatchIgnoresOtherBytes(t *testing.T) {
	for _, subtype := range []byte{SubtypePosition, SubtypeTarget, 0x00, 0xFF} {
		for b := 0; b < 256; b++ {
			if byte(b) != SyncMarker {
				assert.Equal(t, Unrecognized, Classify([]byte{byte(b), 0x00, ClassReport, subtype, 0x10}).Kind)
			}
			if byte(b) != ClassReport {
				assert.Equal(t, Unrecognized, Classify([]byte{SyncMarker, 0x00, byte(b), subtype, 0x10}).Kind)
			}
		}
	}
}

func TestClassify_EveryValue(t *testing.T) {
	for v := 0; v < 256; v++ {
		pos := Classify([]byte{SyncMarker, 0x00, ClassReport, SubtypePosition, byte(v)})
		assert.Equal(t, Result{Kind: PositionUpdate, Position: uint8(v)}, pos)

		target := Classify([]byte{SyncMarker, 0x00, ClassReport, SubtypeTarget, byte(v)})
		assert.Equal(t, Result{Kind: Ignored}, target)
	}
}

func TestClassify_IsPure(t *testing.T) {
	buf := []byte{0xF5, 0x00, 0x01, 0x07, 0x2A}
	orig := append([]byte(nil), buf...)

	first := Classify(buf)
	second := Classify(buf)

	assert.Equal(t, first, second)
	assert.Equal(t, orig, buf, "input must not be mutated")
}

func TestIsTargetReport(t *testing.T) {
	assert.True(t, IsTargetReport([]byte{0xF5, 0x00, 0x01, 0x18, 0x00}))
	assert.False(t, IsTargetReport([]byte{0xF5, 0x00, 0x01, 0x07, 0x00}))
	assert.False(t, IsTargetReport([]byte{0xF5, 0x00, 0x01, 0x18}))
	assert.False(t, IsTargetReport(nil))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "unrecognized", Unrecognized.String())
	assert.Equal(t, "ignored", Ignored.String())
	assert.Equal(t, "position", PositionUpdate.String())
}

func TestDecoder_Logging(t *testing.T) {
	tests := []struct {
		name      string
		buf       []byte
		kind      Kind
		level     logrus.Level
		message   string
		hasFields []string
	}{
		{
			name:      "position report logs at info",
			buf:       []byte{0xF5, 0x00, 0x01, 0x07, 0x2A},
			kind:      PositionUpdate,
			level:     logrus.InfoLevel,
			message:   "Received position report",
			hasFields: []string{"data", "position"},
		},
		{
			name:      "target report logs at debug",
			buf:       []byte{0xF5, 0x00, 0x01, 0x18, 0xFF},
			kind:      Ignored,
			level:     logrus.DebugLevel,
			message:   "Ignoring target report frame",
			hasFields: []string{"data"},
		},
		{
			name:      "garbage logs at info",
			buf:       []byte{0x01, 0x02},
			kind:      Unrecognized,
			level:     logrus.InfoLevel,
			message:   "Received unrecognized frame",
			hasFields: []string{"data", "length"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, hook := test.NewNullLogger()
			logger.SetLevel(logrus.DebugLevel)

			res := NewDecoder(logger).Classify(tt.buf)

			assert.Equal(t, tt.kind, res.Kind)
			require.Len(t, hook.AllEntries(), 1)
			entry := hook.LastEntry()
			assert.Equal(t, tt.level, entry.Level)
			assert.Equal(t, tt.message, entry.Message)
			for _, f := range tt.hasFields {
				assert.Contains(t, entry.Data, f)
			}
		})
	}
}

func TestNewDecoder_NilLogger(t *testing.T) {
	d := NewDecoder(nil)
	require.NotNil(t, d)
	assert.Equal(t, PositionUpdate, d.Classify([]byte{0xF5, 0x00, 0x01, 0x07, 0x01}).Kind)
}
