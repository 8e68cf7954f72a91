package metaindex

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsfile-go/tsfile/chunk"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/stats"
)

type recordingWriter struct {
	pos int64
	buf []byte
}

func (r *recordingWriter) Position() int64 { return r.pos }

func (r *recordingWriter) Write(p []byte) (int, error) {
	r.buf = append(r.buf, p...)
	r.pos += int64(len(p))
	return len(p), nil
}

func oneChunkSeries(measurementID string) SeriesMetadata {
	box := stats.NewBox(format.INT32)
	_ = box.Update(1, format.Int32Value(13))
	_ = box.Update(100, format.Int32Value(15))
	return SeriesMetadata{
		MeasurementID: measurementID,
		DataType:      format.INT32,
		Statistics:    box,
	}
}

func TestConstructSingleDeviceSingleSeries(t *testing.T) {
	w := &recordingWriter{}
	devices := []DeviceSeries{
		{Device: "d1", Series: []SeriesMetadata{oneChunkSeries("s1")}},
	}

	root, err := Construct(devices, w, MaxDegree)
	require.NoError(t, err)
	require.NotNil(t, root)
	require.Equal(t, format.LeafDevice, root.Type)
	require.Len(t, root.Children, 1)
	require.Equal(t, "d1", root.Children[0].Name)
	require.NotEmpty(t, w.buf)
}

func TestConstructEmptyDevicesReturnsNilRoot(t *testing.T) {
	w := &recordingWriter{}
	root, err := Construct(nil, w, MaxDegree)
	require.NoError(t, err)
	require.Nil(t, root)
}

func TestConstructKeepsCallerDeviceOrder(t *testing.T) {
	w := &recordingWriter{}
	devices := []DeviceSeries{
		{Device: "d2", Series: []SeriesMetadata{oneChunkSeries("s1")}},
		{Device: "d1", Series: []SeriesMetadata{oneChunkSeries("s1")}},
	}

	root, err := Construct(devices, w, MaxDegree)
	require.NoError(t, err)
	require.Len(t, root.Children, 2)
	require.Equal(t, "d2", root.Children[0].Name)
	require.Equal(t, "d1", root.Children[1].Name)
}

func TestSortDevicesOrdersDevicesAndSeries(t *testing.T) {
	devices := []DeviceSeries{
		{Device: "zeta", Series: []SeriesMetadata{oneChunkSeries("b"), oneChunkSeries("a")}},
		{Device: "alpha", Series: []SeriesMetadata{oneChunkSeries("y"), oneChunkSeries("x")}},
	}

	sorted := SortDevices(devices)
	require.Equal(t, "alpha", sorted[0].Device)
	require.Equal(t, "zeta", sorted[1].Device)
	require.Equal(t, "x", sorted[0].Series[0].MeasurementID)
	require.Equal(t, "y", sorted[0].Series[1].MeasurementID)
}

func TestWriteTimeseriesMetadataHasMultipleChunksBit(t *testing.T) {
	w := &recordingWriter{}
	s := oneChunkSeries("s1")
	s.HasMultipleChunks = true
	s.Chunks = []chunk.Metadata{
		{MeasurementID: "s1", DataType: format.INT32, OffsetChunkHeader: 0, Statistics: s.Statistics},
		{MeasurementID: "s1", DataType: format.INT32, OffsetChunkHeader: 42, Statistics: s.Statistics},
	}

	err := WriteTimeseriesMetadata(w, s)
	require.NoError(t, err)
	require.NotEmpty(t, w.buf)
	require.Equal(t, byte(0x01), w.buf[0]&0x01)
}
