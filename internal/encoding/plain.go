package encoding

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/internal/pool"
	"github.com/tsfile-go/tsfile/internal/varint"
)

// PlainEncoder writes INT32 as zig-zag var-int and INT64/FLOAT/DOUBLE as fixed-width
// big-endian, with no further transformation (spec §4.2).
type PlainEncoder struct {
	dataType format.TSDataType
	buf      *pool.ByteBuffer
}

// NewPlainEncoder creates a PLAIN encoder for dataType.
func NewPlainEncoder(dataType format.TSDataType) *PlainEncoder {
	return &PlainEncoder{
		dataType: dataType,
		buf:      pool.NewByteBuffer(pool.PageBufferDefaultSize),
	}
}

func (e *PlainEncoder) Write(v format.Value) error {
	if v.Kind != e.dataType {
		return fmt.Errorf("%w: plain encoder for %s received %s", errs.ErrWrongTypeForSeries, e.dataType, v.Kind)
	}
	switch e.dataType {
	case format.INT32:
		e.buf.B = varint.AppendI32(e.buf.B, v.I32)
	case format.INT64:
		e.buf.B = binary.BigEndian.AppendUint64(e.buf.B, uint64(v.I64))
	case format.FLOAT:
		e.buf.B = binary.BigEndian.AppendUint32(e.buf.B, math.Float32bits(v.F32))
	case format.DOUBLE:
		e.buf.B = binary.BigEndian.AppendUint64(e.buf.B, math.Float64bits(v.F64))
	default:
		return fmt.Errorf("encoding: plain encoder does not support %s", e.dataType)
	}
	return nil
}

func (e *PlainEncoder) Size() int { return e.buf.Len() }

// MaxByteSize returns a conservative upper bound for the buffer's further growth.
//
// The original source's get_max_byte_size returns 0 for INT64/FLOAT and only computes
// 24+len(buffer) for INT32 (see DESIGN.md): since estimate_max_mem_size sums this value
// across every series' encoder, a 0 there would silently under-count memory for every
// non-INT32 PLAIN series. This port applies the INT32 formula uniformly.
func (e *PlainEncoder) MaxByteSize() int { return 24 + e.buf.Len() }

func (e *PlainEncoder) Serialize(dst []byte) []byte { return append(dst, e.buf.B...) }

func (e *PlainEncoder) Reset() { e.buf.Reset() }
