package frame

import (
	"encoding/hex"
	"fmt"
	"strings"
)

var hexSeparators = strings.NewReplacer(" ", "", "\t", "", "\n", "", "\r", "", ":", "", "-", "")

// ParseHex decodes a hex frame as typed by a user, e.g. "f5 03 01", "F5:03:01" or "0xf50301".
func ParseHex(s string) ([]byte, error) {
	cleaned := hexSeparators.Replace(s)
	cleaned = strings.TrimPrefix(strings.TrimPrefix(cleaned, "0x"), "0X")
	if cleaned == "" {
		return nil, fmt.Errorf("empty hex data")
	}

	data, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid hex data: %w", err)
	}
	return data, nil
}
