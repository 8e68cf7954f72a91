// Package encoding implements the per-type value encoders used by a chunk's pages:
// PLAIN (fixed-width or zig-zag var-int) and TS2DIFF (delta-of-delta with bit-packing),
// plus the TS2DIFF-i64 time encoder shared by every page (spec §4.2).
package encoding

import (
	"fmt"

	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
)

// ValueEncoder buffers one series' values within a page.
//
// Write accepts one sample; Size reports currently buffered bytes; MaxByteSize is a
// conservative upper bound on how much larger the buffer could grow before the next
// memory check; Serialize appends the fully-flushed encoding to dst; Reset clears all
// state for reuse.
type ValueEncoder interface {
	Write(v format.Value) error
	Size() int
	MaxByteSize() int
	Serialize(dst []byte) []byte
	Reset()
}

// NewValueEncoder builds the encoder for a (data type, encoding) combination, matching
// the factory in the original Encoder::new: PLAIN supports every type; TS2DIFF supports
// only INT32 and INT64.
func NewValueEncoder(dataType format.TSDataType, enc format.TSEncoding) (ValueEncoder, error) {
	switch enc {
	case format.PLAIN:
		return NewPlainEncoder(dataType), nil
	case format.TS2DIFF:
		switch dataType {
		case format.INT32:
			return NewTS2DiffEncoder[int32](format.INT32), nil
		case format.INT64:
			return NewTS2DiffEncoder[int64](format.INT64), nil
		default:
			return nil, fmt.Errorf("%w: TS2DIFF does not support %s", errs.ErrUnsupportedEncoding, dataType)
		}
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedEncoding, enc)
	}
}
