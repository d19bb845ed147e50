// Package device defines the transport-neutral view of a BLE peripheral used by
// the cover driver: discovery, connection handles, characteristic I/O and the
// error taxonomy shared by all transport implementations.
//
// The concrete go-ble backed transport lives in the go-ble subpackage; tests
// substitute their own Transport through the devicefactory package.
package device
