package tsfile

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
)

func TestNewSchemaSortsDevicesAndMeasurements(t *testing.T) {
	s, err := NewSchema(
		DeviceSchema{Device: "d2", Measurements: []MeasurementSchema{
			{MeasurementID: "sb", DataType: format.INT32, Encoding: format.PLAIN},
			{MeasurementID: "sa", DataType: format.INT32, Encoding: format.PLAIN},
		}},
		DeviceSchema{Device: "d1"},
	)
	require.NoError(t, err)

	devices := s.Devices()
	require.Len(t, devices, 2)
	require.Equal(t, "d1", devices[0].Device)
	require.Equal(t, "d2", devices[1].Device)
	require.Equal(t, []string{"sa", "sb"}, []string{devices[1].Measurements[0].MeasurementID, devices[1].Measurements[1].MeasurementID})
}

func TestNewSchemaRejectsEmptyIdentifier(t *testing.T) {
	_, err := NewSchema(DeviceSchema{Device: ""})
	require.ErrorIs(t, err, errs.ErrEmptyIdentifier)
}

func TestNewSchemaRejectsDotInIdentifier(t *testing.T) {
	_, err := NewSchema(DeviceSchema{Device: "root.d1"})
	require.ErrorIs(t, err, errs.ErrEmptyIdentifier)

	_, err = NewSchema(DeviceSchema{
		Device: "d1",
		Measurements: []MeasurementSchema{
			{MeasurementID: "s.1", DataType: format.INT32, Encoding: format.PLAIN},
		},
	})
	require.ErrorIs(t, err, errs.ErrEmptyIdentifier)
}

func TestAddDeviceIsIdempotent(t *testing.T) {
	s := &Schema{}
	require.NoError(t, s.AddDevice("d1"))
	require.NoError(t, s.AddDevice("d1"))
	require.Len(t, s.Devices(), 1)
}

func TestAddMeasurementAutoCreatesDevice(t *testing.T) {
	s := &Schema{}
	require.NoError(t, s.AddMeasurement("d1", MeasurementSchema{
		MeasurementID: "s1", DataType: format.INT64, Encoding: format.TS2DIFF,
	}))

	devices := s.Devices()
	require.Len(t, devices, 1)
	require.Equal(t, "d1", devices[0].Device)
	require.Equal(t, "s1", devices[0].Measurements[0].MeasurementID)
}

func TestAddMeasurementReplacesExisting(t *testing.T) {
	s := &Schema{}
	require.NoError(t, s.AddMeasurement("d1", MeasurementSchema{
		MeasurementID: "s1", DataType: format.INT32, Encoding: format.PLAIN,
	}))
	require.NoError(t, s.AddMeasurement("d1", MeasurementSchema{
		MeasurementID: "s1", DataType: format.INT64, Encoding: format.TS2DIFF,
	}))

	devices := s.Devices()
	require.Len(t, devices[0].Measurements, 1)
	require.Equal(t, format.INT64, devices[0].Measurements[0].DataType)
}
