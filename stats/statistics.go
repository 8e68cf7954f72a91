// Package stats implements the per-type running Statistics accumulated by pages,
// chunks and series (spec §4.3): min/max/first/last/sum/count with an associative
// merge, independent of insertion order for min/max/sum/count and ordered by absolute
// timestamp for first/last.
package stats

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/internal/varint"
)

// Number is the set of value types TsFile statistics can be computed over.
type Number interface {
	~int32 | ~int64 | ~float32 | ~float64
}

// Statistics is a running summary over one page, chunk or series. T is the series'
// native value type (int32, int64, float32 or float64).
type Statistics[T Number] struct {
	dataType format.TSDataType

	tsFirst int64
	tsLast  int64

	min, max, first, last T
	count                 uint32
	sum                   float64
}

// New creates an empty Statistics for dataType, with bounds initialized per spec §4.3:
// ts_first = MaxInt64, ts_last = MinInt64, min = type-max, max = type-min.
func New[T Number](dataType format.TSDataType) *Statistics[T] {
	typeMin, typeMax := typeBounds[T]()
	min, max := typeMax, typeMin
	return &Statistics[T]{
		dataType: dataType,
		tsFirst:  math.MaxInt64,
		tsLast:   math.MinInt64,
		min:      min,
		max:      max,
	}
}

func typeBounds[T Number]() (minV, maxV T) {
	// The bounds go through typed variables: a constant converted to a type parameter
	// must fit every type in its set, which these bounds do not.
	var zero T
	switch any(zero).(type) {
	case int32:
		var lo, hi int32 = math.MinInt32, math.MaxInt32
		return T(lo), T(hi)
	case int64:
		var lo, hi int64 = math.MinInt64, math.MaxInt64
		return T(lo), T(hi)
	case float32:
		var lo, hi float32 = -math.MaxFloat32, math.MaxFloat32
		return T(lo), T(hi)
	case float64:
		var lo, hi float64 = -math.MaxFloat64, math.MaxFloat64
		return T(lo), T(hi)
	default:
		return zero, zero
	}
}

// Update folds one (timestamp, value) sample into the running statistics.
func (s *Statistics[T]) Update(t int64, v T) {
	if t < s.tsFirst {
		s.tsFirst = t
		s.first = v
	}
	if t > s.tsLast {
		s.tsLast = t
		s.last = v
	}
	if v < s.min {
		s.min = v
	}
	if v > s.max {
		s.max = v
	}
	s.count++
	s.sum += float64(v)
}

// Merge folds other's summary into s. The result does not depend on merge order for
// min, max, sum and count; first/last are resolved by absolute timestamp.
func (s *Statistics[T]) Merge(other *Statistics[T]) {
	if other.count == 0 {
		return
	}
	if s.count == 0 {
		*s = *other
		return
	}

	if other.tsFirst < s.tsFirst {
		s.tsFirst = other.tsFirst
		s.first = other.first
	}
	if other.tsLast > s.tsLast {
		s.tsLast = other.tsLast
		s.last = other.last
	}
	if other.min < s.min {
		s.min = other.min
	}
	if other.max > s.max {
		s.max = other.max
	}
	s.count += other.count
	s.sum += other.sum
}

// Clone returns an independent copy, matching spec §3's "value-copied into chunk
// metadata at flush — never shared by reference" ownership rule.
func (s *Statistics[T]) Clone() *Statistics[T] {
	cp := *s
	return &cp
}

func (s *Statistics[T]) Count() uint32   { return s.count }
func (s *Statistics[T]) TsFirst() int64  { return s.tsFirst }
func (s *Statistics[T]) TsLast() int64   { return s.tsLast }
func (s *Statistics[T]) Min() T          { return s.min }
func (s *Statistics[T]) Max() T          { return s.max }
func (s *Statistics[T]) First() T        { return s.first }
func (s *Statistics[T]) Last() T         { return s.last }
func (s *Statistics[T]) Sum() float64    { return s.sum }

// SerializedSize returns sizeof_varu32(count) + 16 + type_stats_size, where
// type_stats_size = 4*ValueWidth(T) + 8 (see SPEC_FULL.md for the resolution of the
// spec's "24 for INT32, 40 for INT64/FLOAT/DOUBLE" prose against its own wire grammar).
func (s *Statistics[T]) SerializedSize() int {
	return varint.SizeU32(s.count) + 16 + 4*s.dataType.ValueWidth() + 8
}

// Serialize writes var_u32(count) | i64 ts_first | i64 ts_last | T min | T max | T first
// | T last | i64|f64 sum, all big-endian, to w.
func (s *Statistics[T]) Serialize(w io.Writer) (int, error) {
	buf := make([]byte, 0, s.SerializedSize())
	buf = varint.AppendU32(buf, s.count)
	buf = binary.BigEndian.AppendUint64(buf, uint64(s.tsFirst))
	buf = binary.BigEndian.AppendUint64(buf, uint64(s.tsLast))

	var err error
	buf, err = s.appendTypedValue(buf, s.min)
	if err != nil {
		return 0, err
	}
	buf, err = s.appendTypedValue(buf, s.max)
	if err != nil {
		return 0, err
	}
	buf, err = s.appendTypedValue(buf, s.first)
	if err != nil {
		return 0, err
	}
	buf, err = s.appendTypedValue(buf, s.last)
	if err != nil {
		return 0, err
	}

	switch s.dataType {
	case format.INT32, format.INT64:
		buf = binary.BigEndian.AppendUint64(buf, uint64(int64(s.sum)))
	default:
		buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(s.sum))
	}

	return w.Write(buf)
}

func (s *Statistics[T]) appendTypedValue(buf []byte, v T) ([]byte, error) {
	switch s.dataType {
	case format.INT32:
		return binary.BigEndian.AppendUint32(buf, uint32(int32(v))), nil
	case format.INT64:
		return binary.BigEndian.AppendUint64(buf, uint64(int64(v))), nil
	case format.FLOAT:
		return binary.BigEndian.AppendUint32(buf, math.Float32bits(float32(v))), nil
	case format.DOUBLE:
		return binary.BigEndian.AppendUint64(buf, math.Float64bits(float64(v))), nil
	default:
		return nil, fmt.Errorf("stats: unsupported data type %s", s.dataType)
	}
}
