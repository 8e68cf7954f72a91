// Package page implements PageWriter, the innermost unit of a chunk: one time
// column, one value column and a running Statistics over a bounded run of points
// (spec §4.4).
package page

import (
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/internal/encoding"
	"github.com/tsfile-go/tsfile/internal/pool"
	"github.com/tsfile-go/tsfile/internal/varint"
	"github.com/tsfile-go/tsfile/stats"
)

// Writer accumulates one page's worth of (timestamp, value) samples.
type Writer struct {
	dataType     format.TSDataType
	timeEncoder  *encoding.TimeEncoder
	valueEncoder encoding.ValueEncoder
	statistics   *stats.Box
	pointNumber  uint32

	buf *pool.ByteBuffer
}

// NewWriter creates a page writer for dataType encoded with enc.
func NewWriter(dataType format.TSDataType, enc format.TSEncoding) (*Writer, error) {
	valueEncoder, err := encoding.NewValueEncoder(dataType, enc)
	if err != nil {
		return nil, err
	}
	return &Writer{
		dataType:     dataType,
		timeEncoder:  encoding.NewTimeEncoder(),
		valueEncoder: valueEncoder,
		statistics:   stats.NewBox(dataType),
		buf:          pool.NewByteBuffer(pool.PageBufferDefaultSize),
	}, nil
}

// Reset clears statistics, encoders and point count for reuse by the next page.
func (w *Writer) Reset() {
	w.statistics = stats.NewBox(w.dataType)
	w.timeEncoder.Reset()
	w.valueEncoder.Reset()
	w.pointNumber = 0
}

// Write appends one sample.
func (w *Writer) Write(t int64, v format.Value) error {
	if err := w.timeEncoder.WriteTime(t); err != nil {
		return err
	}
	if err := w.valueEncoder.Write(v); err != nil {
		return err
	}
	if err := w.statistics.Update(t, v); err != nil {
		return err
	}
	w.pointNumber++
	return nil
}

// PointNumber reports how many samples have been written to this page.
func (w *Writer) PointNumber() uint32 { return w.pointNumber }

// Statistics returns the page's running Statistics.
func (w *Writer) Statistics() *stats.Box { return w.statistics }

// EstimateMaxMemSize returns a conservative upper bound on the page's encoded size:
// the sum of each encoder's current size and its conservative upper bound on further
// growth.
func (w *Writer) EstimateMaxMemSize() uint32 {
	size := w.timeEncoder.Size() + w.valueEncoder.Size() +
		w.timeEncoder.MaxByteSize() + w.valueEncoder.MaxByteSize()
	return uint32(size)
}

// PrepareBuffer flushes both encoders into the page's buffer: a var-int length prefix
// followed by the time column, then the value column with no length prefix (its end is
// implicit from the chunk's outer data-length field).
func (w *Writer) PrepareBuffer() {
	w.buf.Reset()

	timeBytes := w.timeEncoder.Serialize(nil)
	w.buf.B = varint.AppendU32(w.buf.B, uint32(len(timeBytes)))
	w.buf.MustWrite(timeBytes)
	w.buf.B = w.valueEncoder.Serialize(w.buf.B)
}

// Buffer returns the page's prepared payload; PrepareBuffer must be called first.
func (w *Writer) Buffer() []byte { return w.buf.Bytes() }
