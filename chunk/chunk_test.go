package chunk

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/stats"
)

type fakeFileWriter struct {
	pos          int64
	flushed      bool
	ended        bool
	lastStats    *stats.Box
	lastDataSize uint32
	lastNumPages uint32
	written      []byte
}

func (f *fakeFileWriter) Position() int64 { return f.pos }

func (f *fakeFileWriter) Write(p []byte) (int, error) {
	f.written = append(f.written, p...)
	f.pos += int64(len(p))
	return len(p), nil
}

func (f *fakeFileWriter) StartFlushChunk(measurementID string, compression format.CompressionType, dataType format.TSDataType, enc format.TSEncoding, statistics *stats.Box, dataSize uint32, numPages uint32, mask byte) error {
	f.flushed = true
	f.lastStats = statistics
	f.lastDataSize = dataSize
	f.lastNumPages = numPages
	return nil
}

func (f *fakeFileWriter) EndCurrentChunk() error {
	f.ended = true
	return nil
}

func TestWriterSinglePageRoundTrip(t *testing.T) {
	w := NewWriter("s1", format.INT32, format.UNCOMPRESSED, format.PLAIN)
	require.NoError(t, w.Write(1, format.Int32Value(13)))
	require.NoError(t, w.Write(10, format.Int32Value(14)))
	require.NoError(t, w.Write(100, format.Int32Value(15)))

	fw := &fakeFileWriter{}
	require.NoError(t, w.FlushTo(fw))

	require.True(t, fw.flushed)
	require.True(t, fw.ended)
	require.EqualValues(t, 1, fw.lastNumPages)
	require.Equal(t, uint32(3), fw.lastStats.Count())
	require.NotEmpty(t, fw.written)
}

func TestWriterEmptyChunkDoesNotFlush(t *testing.T) {
	w := NewWriter("s1", format.INT32, format.UNCOMPRESSED, format.PLAIN)
	fw := &fakeFileWriter{}
	require.NoError(t, w.FlushTo(fw))
	require.False(t, fw.flushed)
}

func TestWriterMultiPageSplicesFirstPageStatistics(t *testing.T) {
	w := NewWriter("s1", format.INT32, format.UNCOMPRESSED, format.PLAIN)
	w.valueCountForNextCheck = 1 // run the first size check on the first write; later checks follow the recomputed threshold

	for i := int64(0); i < 20000; i++ {
		require.NoError(t, w.Write(i, format.Int32Value(int32(i))))
	}

	fw := &fakeFileWriter{}
	require.NoError(t, w.FlushTo(fw))
	require.True(t, fw.lastNumPages >= 2)
	require.Equal(t, uint32(20000), fw.lastStats.Count())
}

func TestWriterSerializedChunkSize(t *testing.T) {
	w := NewWriter("s1", format.INT32, format.UNCOMPRESSED, format.PLAIN)
	require.Zero(t, w.SerializedChunkSize())

	require.NoError(t, w.Write(1, format.Int32Value(1)))
	require.NoError(t, w.SealCurrentPage())
	require.NotZero(t, w.SerializedChunkSize())
}

func TestWriterSnappyCompressesPagePayload(t *testing.T) {
	// Highly repetitive values compress well, so the SNAPPY-tagged chunk's written
	// payload should end up smaller than the UNCOMPRESSED one for the same samples.
	samples := func(w *Writer) {
		for i := int64(0); i < 500; i++ {
			require.NoError(t, w.Write(i, format.Int64Value(42)))
		}
	}

	plain := NewWriter("s1", format.INT64, format.UNCOMPRESSED, format.PLAIN)
	samples(plain)
	plainFW := &fakeFileWriter{}
	require.NoError(t, plain.FlushTo(plainFW))

	snappy := NewWriter("s1", format.INT64, format.SNAPPY, format.PLAIN)
	samples(snappy)
	snappyFW := &fakeFileWriter{}
	require.NoError(t, snappy.FlushTo(snappyFW))

	require.Less(t, len(snappyFW.written), len(plainFW.written))
}
