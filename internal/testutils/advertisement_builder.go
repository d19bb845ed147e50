package testutils

import (
	"strings"

	blelib "github.com/go-ble/ble"
	"github.com/srg/ryse/internal/device"
	"github.com/srg/ryse/internal/testutils/mocks"
)

// Advertisement is a static device.Advertisement for tests.
type Advertisement struct {
	name        string
	address     string
	rssi        int
	connectable bool
}

func (a *Advertisement) LocalName() string { return a.name }
func (a *Advertisement) Addr() string      { return a.address }
func (a *Advertisement) RSSI() int         { return a.rssi }
func (a *Advertisement) Connectable() bool { return a.connectable }

// AdvertisementBuilder builds advertisements for scan tests with a fluent API.
type AdvertisementBuilder struct {
	adv Advertisement
}

// NewAdvertisementBuilder creates a builder for a connectable advertisement.
func NewAdvertisementBuilder() *AdvertisementBuilder {
	return &AdvertisementBuilder{adv: Advertisement{connectable: true, rssi: -60}}
}

// WithName sets the local name for the advertisement.
func (b *AdvertisementBuilder) WithName(name string) *AdvertisementBuilder {
	b.adv.name = name
	return b
}

// WithAddress sets the device address for the advertisement.
func (b *AdvertisementBuilder) WithAddress(addr string) *AdvertisementBuilder {
	b.adv.address = addr
	return b
}

// WithRSSI sets the signal strength for the advertisement.
func (b *AdvertisementBuilder) WithRSSI(rssi int) *AdvertisementBuilder {
	b.adv.rssi = rssi
	return b
}

// WithConnectable sets whether the advertisement is connectable.
func (b *AdvertisementBuilder) WithConnectable(connectable bool) *AdvertisementBuilder {
	b.adv.connectable = connectable
	return b
}

// Build returns the advertisement as a device.Advertisement.
func (b *AdvertisementBuilder) Build() device.Advertisement {
	adv := b.adv
	return &adv
}

// BuildBLE returns the advertisement as a go-ble advertisement. go-ble
// lowercases addresses, so the address is lowercased here as well.
func (b *AdvertisementBuilder) BuildBLE() blelib.Advertisement {
	return &mocks.MockAdvertisement{
		Name:          b.adv.name,
		Address:       strings.ToLower(b.adv.address),
		SignalRSSI:    b.adv.rssi,
		IsConnectable: b.adv.connectable,
	}
}

// Advertisements builds one advertisement per name, with sequential addresses.
func Advertisements(names ...string) []device.Advertisement {
	result := make([]device.Advertisement, 0, len(names))
	for i, name := range names {
		result = append(result, NewAdvertisementBuilder().
			WithName(name).
			WithAddress(sequentialAddress(i)).
			Build())
	}
	return result
}

func sequentialAddress(i int) string {
	const hexDigits = "0123456789ABCDEF"
	b := byte(i + 1)
	octet := string([]byte{hexDigits[b>>4], hexDigits[b&0x0f]})
	return "AA:BB:CC:DD:EE:" + octet
}
