package goble

import "github.com/go-ble/ble"

var propertyNames = []struct {
	flag ble.Property
	name string
}{
	{ble.CharBroadcast, "broadcast"},
	{ble.CharRead, "read"},
	{ble.CharWriteNR, "write-without-response"},
	{ble.CharWrite, "write"},
	{ble.CharNotify, "notify"},
	{ble.CharIndicate, "indicate"},
	{ble.CharSignedWrite, "authenticated-signed-writes"},
	{ble.CharExtended, "extended-properties"},
}

// PropertyNames lists the human-readable names of the bits set in p, in bit order.
func PropertyNames(p ble.Property) []string {
	var names []string
	for _, pn := range propertyNames {
		if p&pn.flag != 0 {
			names = append(names, pn.name)
		}
	}
	return names
}

// canNotify reports whether a characteristic supports notify or indicate.
func canNotify(p ble.Property) bool {
	return p&ble.CharNotify != 0 || p&ble.CharIndicate != 0
}
