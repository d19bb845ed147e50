package mqtt

import "fmt"

// Availability payloads.
const (
	PayloadOnline  = "online"
	PayloadOffline = "offline"
)

// Topics builds the per-device topic names under a prefix.
//
//	topics := mqtt.Topics{Prefix: "ryse", Device: "living-room"}
//	topics.State() // "ryse/living-room/state"
type Topics struct {
	Prefix string
	Device string
}

// State is the retained JSON cover state topic.
func (t Topics) State() string {
	return fmt.Sprintf("%s/%s/state", t.Prefix, t.Device)
}

// Availability carries "online" or "offline".
func (t Topics) Availability() string {
	return fmt.Sprintf("%s/%s/availability", t.Prefix, t.Device)
}

// Command accepts hex-encoded frames to write to the device.
func (t Topics) Command() string {
	return fmt.Sprintf("%s/%s/command", t.Prefix, t.Device)
}
