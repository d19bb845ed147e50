// Package mqtt bridges a cover to an MQTT broker.
//
// The cover state is published retained on <prefix>/<device>/state as JSON,
// broker-visible liveness on <prefix>/<device>/availability (with a Last Will
// of "offline"), and hex-encoded raw frames received on
// <prefix>/<device>/command are written to the device unchanged.
//
// Only the broker connection reconnects automatically. The BLE link is never
// re-established by this package.
package mqtt
