package device

import (
	"fmt"
	"strings"
)

const bluetoothBaseSuffix = "00001000800000805f9b34fb"

// NormalizeUUID converts a UUID string to the internal BLE library format
// (lowercase, no dashes). Strips a 0x prefix if present (e.g., "0x2902" -> "2902").
// For full 128-bit UUIDs in Bluetooth SIG base format (0000xxxx-0000-1000-8000-00805f9b34fb),
// extracts the 16-bit short form (xxxx).
func NormalizeUUID(uuid string) string {
	s := strings.ToLower(strings.TrimSpace(uuid))
	s = strings.TrimPrefix(s, "0x")
	s = strings.ReplaceAll(s, "-", "")

	if len(s) == 32 && strings.HasPrefix(s, "0000") && strings.HasSuffix(s, bluetoothBaseSuffix) {
		return s[4:8]
	}
	return s
}

// ValidateUUID validates that UUID strings are non-empty and well-formed
// (4, 8 or 32 hex digits once normalized).
// Returns normalized UUID strings or an error.
func ValidateUUID(uuids ...string) ([]string, error) {
	if len(uuids) == 0 {
		return nil, fmt.Errorf("at least one UUID is required")
	}

	result := make([]string, 0, len(uuids))
	for i, uuid := range uuids {
		if uuid == "" {
			return nil, fmt.Errorf("UUID at index %d cannot be empty", i)
		}
		normalized := NormalizeUUID(uuid)
		if !isHexUUID(normalized) {
			return nil, fmt.Errorf("invalid UUID format at index %d: %s", i, uuid)
		}
		result = append(result, normalized)
	}
	return result, nil
}

func isHexUUID(s string) bool {
	switch len(s) {
	case 4, 8, 32:
	default:
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}
