package stats

import (
	"fmt"
	"io"

	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
)

// Box is a runtime-dispatched Statistics, one per TSDataType, mirroring the original
// source's `enum Statistics { INT32(...), INT64(...), FLOAT(...) }`: pages, chunks and
// series all hold a data type only known at runtime, so they cannot hold a
// Statistics[T] directly and need this non-generic wrapper instead.
type Box struct {
	dataType format.TSDataType

	i32 *Statistics[int32]
	i64 *Statistics[int64]
	f32 *Statistics[float32]
	f64 *Statistics[float64]
}

// NewBox creates an empty Box for dataType.
func NewBox(dataType format.TSDataType) *Box {
	b := &Box{dataType: dataType}
	switch dataType {
	case format.INT32:
		b.i32 = New[int32](dataType)
	case format.INT64:
		b.i64 = New[int64](dataType)
	case format.FLOAT:
		b.f32 = New[float32](dataType)
	case format.DOUBLE:
		b.f64 = New[float64](dataType)
	}
	return b
}

// DataType reports the value type this Box accumulates.
func (b *Box) DataType() format.TSDataType { return b.dataType }

// Update folds one (timestamp, value) sample into the box, returning an error if
// value's type does not match the box's.
func (b *Box) Update(t int64, v format.Value) error {
	if v.Kind != b.dataType {
		return fmt.Errorf("%w: stats box for %s received %s", errs.ErrWrongTypeForSeries, b.dataType, v.Kind)
	}
	switch b.dataType {
	case format.INT32:
		b.i32.Update(t, v.I32)
	case format.INT64:
		b.i64.Update(t, v.I64)
	case format.FLOAT:
		b.f32.Update(t, v.F32)
	case format.DOUBLE:
		b.f64.Update(t, v.F64)
	default:
		return fmt.Errorf("stats: unsupported data type %s", b.dataType)
	}
	return nil
}

// Merge folds other into b. Both boxes must hold the same data type.
func (b *Box) Merge(other *Box) error {
	if other.dataType != b.dataType {
		return fmt.Errorf("stats: cannot merge %s statistics into %s", other.dataType, b.dataType)
	}
	switch b.dataType {
	case format.INT32:
		b.i32.Merge(other.i32)
	case format.INT64:
		b.i64.Merge(other.i64)
	case format.FLOAT:
		b.f32.Merge(other.f32)
	case format.DOUBLE:
		b.f64.Merge(other.f64)
	default:
		return fmt.Errorf("stats: unsupported data type %s", b.dataType)
	}
	return nil
}

// Clone returns an independent copy.
func (b *Box) Clone() *Box {
	cp := &Box{dataType: b.dataType}
	switch b.dataType {
	case format.INT32:
		cp.i32 = b.i32.Clone()
	case format.INT64:
		cp.i64 = b.i64.Clone()
	case format.FLOAT:
		cp.f32 = b.f32.Clone()
	case format.DOUBLE:
		cp.f64 = b.f64.Clone()
	}
	return cp
}

// Count returns the number of samples folded into the box.
func (b *Box) Count() uint32 {
	switch b.dataType {
	case format.INT32:
		return b.i32.Count()
	case format.INT64:
		return b.i64.Count()
	case format.FLOAT:
		return b.f32.Count()
	case format.DOUBLE:
		return b.f64.Count()
	default:
		return 0
	}
}

// TsFirst returns the earliest timestamp seen, or math.MaxInt64 if empty.
func (b *Box) TsFirst() int64 {
	switch b.dataType {
	case format.INT32:
		return b.i32.TsFirst()
	case format.INT64:
		return b.i64.TsFirst()
	case format.FLOAT:
		return b.f32.TsFirst()
	case format.DOUBLE:
		return b.f64.TsFirst()
	default:
		return 0
	}
}

// TsLast returns the latest timestamp seen, or math.MinInt64 if empty.
func (b *Box) TsLast() int64 {
	switch b.dataType {
	case format.INT32:
		return b.i32.TsLast()
	case format.INT64:
		return b.i64.TsLast()
	case format.FLOAT:
		return b.f32.TsLast()
	case format.DOUBLE:
		return b.f64.TsLast()
	default:
		return 0
	}
}

// SerializedSize returns the number of bytes Serialize would write.
func (b *Box) SerializedSize() int {
	switch b.dataType {
	case format.INT32:
		return b.i32.SerializedSize()
	case format.INT64:
		return b.i64.SerializedSize()
	case format.FLOAT:
		return b.f32.SerializedSize()
	case format.DOUBLE:
		return b.f64.SerializedSize()
	default:
		return 0
	}
}

// Serialize writes the wire-format statistics block to w.
func (b *Box) Serialize(w io.Writer) (int, error) {
	switch b.dataType {
	case format.INT32:
		return b.i32.Serialize(w)
	case format.INT64:
		return b.i64.Serialize(w)
	case format.FLOAT:
		return b.f32.Serialize(w)
	case format.DOUBLE:
		return b.f64.Serialize(w)
	default:
		return 0, fmt.Errorf("stats: unsupported data type %s", b.dataType)
	}
}
