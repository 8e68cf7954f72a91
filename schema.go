package tsfile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
)

// MeasurementSchema describes one series' on-disk encoding, grounded on schema.rs's
// MeasurementSchema (the fluent TsFileSchemaBuilder/DeviceBuilder builder API is
// deliberately not replicated; callers build a Schema directly).
type MeasurementSchema struct {
	MeasurementID string
	DataType      format.TSDataType
	Encoding      format.TSEncoding
	Compression   format.CompressionType
}

// DeviceSchema lists the measurements recorded under one device.
type DeviceSchema struct {
	Device       string
	Measurements []MeasurementSchema
}

// Schema is the full set of devices and measurements a Writer will accept. Devices and
// measurements are kept sorted by id so file layout is reproducible, matching the
// layout-stability contract (spec §5, §9).
type Schema struct {
	devices []DeviceSchema
}

// validateIdentifier enforces spec §3: device and measurement identifiers are non-empty
// strings without the "." path separator inside a single component.
func validateIdentifier(id string) error {
	if id == "" || strings.Contains(id, ".") {
		return fmt.Errorf("%w: %q", errs.ErrEmptyIdentifier, id)
	}
	return nil
}

// NewSchema builds a Schema from a complete set of devices in one call, sorting devices
// by id and each device's measurements by id. Returns an error if any identifier is
// empty or contains ".".
func NewSchema(devices ...DeviceSchema) (*Schema, error) {
	s := &Schema{}
	for _, d := range devices {
		if err := s.AddDevice(d.Device); err != nil {
			return nil, err
		}
		for _, m := range d.Measurements {
			if err := s.AddMeasurement(d.Device, m); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// AddDevice registers device, keeping the device list sorted. It is a no-op if device is
// already present.
func (s *Schema) AddDevice(device string) error {
	if err := validateIdentifier(device); err != nil {
		return err
	}
	i := sort.Search(len(s.devices), func(i int) bool { return s.devices[i].Device >= device })
	if i < len(s.devices) && s.devices[i].Device == device {
		return nil
	}
	s.devices = append(s.devices, DeviceSchema{})
	copy(s.devices[i+1:], s.devices[i:])
	s.devices[i] = DeviceSchema{Device: device}
	return nil
}

// AddMeasurement registers one measurement under device, auto-creating the device if it
// does not already exist, and keeps the device's measurement list sorted by id.
func (s *Schema) AddMeasurement(device string, m MeasurementSchema) error {
	if err := validateIdentifier(m.MeasurementID); err != nil {
		return err
	}
	i := sort.Search(len(s.devices), func(i int) bool { return s.devices[i].Device >= device })
	if i >= len(s.devices) || s.devices[i].Device != device {
		if err := s.AddDevice(device); err != nil {
			return err
		}
		i = sort.Search(len(s.devices), func(i int) bool { return s.devices[i].Device >= device })
	}

	dev := &s.devices[i]
	j := sort.Search(len(dev.Measurements), func(j int) bool {
		return dev.Measurements[j].MeasurementID >= m.MeasurementID
	})
	if j < len(dev.Measurements) && dev.Measurements[j].MeasurementID == m.MeasurementID {
		dev.Measurements[j] = m
		return nil
	}
	dev.Measurements = append(dev.Measurements, MeasurementSchema{})
	copy(dev.Measurements[j+1:], dev.Measurements[j:])
	dev.Measurements[j] = m
	return nil
}

// Devices returns the schema's devices in sorted order.
func (s *Schema) Devices() []DeviceSchema { return s.devices }
