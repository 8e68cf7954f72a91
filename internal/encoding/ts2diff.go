package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/internal/bitpack"
	"github.com/tsfile-go/tsfile/internal/pool"
)

// blockSize is the number of deltas accumulated before a TS2DIFF block is flushed
// (spec §4.2): a full block therefore covers one first_value plus blockSize deltas.
const blockSize = 128

// TS2Int is the set of integer types TS2DIFF can encode (spec §4.2: TS2DIFF is
// unsupported for FLOAT/DOUBLE).
type TS2Int interface {
	~int32 | ~int64
}

// TS2DiffEncoder implements the delta-of-delta block encoding: within a block of up to
// 128 values, each delta is rebased against the block's minimum delta and bit-packed at
// the block's required width.
//
// TimeEncoder is TS2DiffEncoder[int64], reused directly for timestamp columns since the
// algorithm is identical regardless of whether the series is a time column or an
// INT64 value column.
type TS2DiffEncoder[T TS2Int] struct {
	dataType format.TSDataType
	width    int // byte width of T: 4 for int32, 8 for int64

	hasFirst      bool
	firstValue    int64
	previousValue int64
	minDelta      int64
	values        []int64 // pending deltas in the current block

	buf *pool.ByteBuffer
}

// NewTS2DiffEncoder creates a TS2DIFF encoder for dataType, which must be INT32 or
// INT64.
func NewTS2DiffEncoder[T TS2Int](dataType format.TSDataType) *TS2DiffEncoder[T] {
	return &TS2DiffEncoder[T]{
		dataType: dataType,
		width:    dataType.ValueWidth(),
		buf:      pool.NewByteBuffer(pool.PageBufferDefaultSize),
	}
}

func (e *TS2DiffEncoder[T]) valueOf(v format.Value) (int64, error) {
	switch e.dataType {
	case format.INT32:
		if v.Kind != format.INT32 {
			return 0, fmt.Errorf("%w: ts2diff encoder for INT32 received %s", errs.ErrWrongTypeForSeries, v.Kind)
		}
		return int64(v.I32), nil
	case format.INT64:
		if v.Kind != format.INT64 {
			return 0, fmt.Errorf("%w: ts2diff encoder for INT64 received %s", errs.ErrWrongTypeForSeries, v.Kind)
		}
		return v.I64, nil
	default:
		return 0, fmt.Errorf("encoding: ts2diff does not support %s", e.dataType)
	}
}

// Write appends one sample.
func (e *TS2DiffEncoder[T]) Write(v format.Value) error {
	val, err := e.valueOf(v)
	if err != nil {
		return err
	}
	return e.WriteInt64(val)
}

// WriteTime appends one raw int64 sample. Used directly by the time column, which has
// no format.Value wrapper.
func (e *TS2DiffEncoder[T]) WriteTime(v int64) error { return e.WriteInt64(v) }

// WriteInt64 is the shared append path for both Write and WriteTime.
func (e *TS2DiffEncoder[T]) WriteInt64(v int64) error {
	if !e.hasFirst {
		e.hasFirst = true
		e.firstValue = v
		e.previousValue = v
		return nil
	}

	delta := v - e.previousValue
	e.previousValue = v
	if len(e.values) == 0 || delta < e.minDelta {
		e.minDelta = delta
	}
	e.values = append(e.values, delta)

	if len(e.values) == blockSize {
		e.flush()
	}
	return nil
}

// flush encodes the current block (first_value + pending deltas) and appends it to buf,
// then clears the per-block working state (not buf) so the next block starts clean.
func (e *TS2DiffEncoder[T]) flush() {
	if !e.hasFirst {
		return
	}

	count := len(e.values)
	adjusted := make([]uint64, count)
	writeWidth := 0
	for i, d := range e.values {
		a := uint64(d - e.minDelta)
		adjusted[i] = a
		if w := bitpack.BitWidth(a); w > writeWidth {
			writeWidth = w
		}
	}

	header := make([]byte, 0, 8+2*e.width)
	header = binary.BigEndian.AppendUint32(header, uint32(count))
	header = binary.BigEndian.AppendUint32(header, uint32(writeWidth))
	header = e.appendWidth(header, e.minDelta)
	header = e.appendWidth(header, e.firstValue)

	e.buf.MustWrite(header)
	e.buf.MustWrite(bitpack.Pack(adjusted, writeWidth))

	e.resetBlock()
}

func (e *TS2DiffEncoder[T]) appendWidth(dst []byte, v int64) []byte {
	if e.width == 4 {
		return binary.BigEndian.AppendUint32(dst, uint32(int32(v)))
	}
	return binary.BigEndian.AppendUint64(dst, uint64(v))
}

// resetBlock clears only the per-block accumulation state, mirroring the original
// encoder's reset(): the output buffer is untouched so multiple blocks concatenate.
func (e *TS2DiffEncoder[T]) resetBlock() {
	e.hasFirst = false
	e.firstValue = 0
	e.previousValue = 0
	e.minDelta = 0
	e.values = e.values[:0]
}

func (e *TS2DiffEncoder[T]) Size() int { return e.buf.Len() }

// MaxByteSize is a conservative upper bound: the header plus at most width bytes per
// pending delta (a delta's bit-packed width can never exceed its type's full width).
func (e *TS2DiffEncoder[T]) MaxByteSize() int {
	return e.buf.Len() + 8 + 2*e.width + len(e.values)*e.width
}

// Serialize flushes any pending block and appends the full encoding to dst.
func (e *TS2DiffEncoder[T]) Serialize(dst []byte) []byte {
	e.flush()
	return append(dst, e.buf.B...)
}

// Reset fully clears the encoder, including its output buffer, for reuse by a new page
// (spec §4.4: "reset() clears statistics, encoders, and point count").
func (e *TS2DiffEncoder[T]) Reset() {
	e.resetBlock()
	e.buf.Reset()
}
