package device

import "sort"

// ServiceInfo is the GATT metadata exposed by a connected peripheral.
// Its content is defined by the transport; callers treat it as opaque.
type ServiceInfo struct {
	Address  string        `json:"address" yaml:"address"`
	Services []ServiceMeta `json:"services" yaml:"services"`
}

// ServiceMeta describes one GATT service.
type ServiceMeta struct {
	UUID            string               `json:"uuid" yaml:"uuid"`
	Characteristics []CharacteristicMeta `json:"characteristics" yaml:"characteristics"`
}

// CharacteristicMeta describes one GATT characteristic.
type CharacteristicMeta struct {
	UUID       string   `json:"uuid" yaml:"uuid"`
	Properties []string `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Sort orders services and characteristics by UUID for stable output.
func (s *ServiceInfo) Sort() {
	sort.Slice(s.Services, func(i, j int) bool {
		return s.Services[i].UUID < s.Services[j].UUID
	})
	for _, svc := range s.Services {
		sort.Slice(svc.Characteristics, func(i, j int) bool {
			return svc.Characteristics[i].UUID < svc.Characteristics[j].UUID
		})
	}
}
