package encoding

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/internal/varint"
)

func TestPlainEncoderInt32(t *testing.T) {
	e := NewPlainEncoder(format.INT32)
	require.NoError(t, e.Write(format.Int32Value(-1)))
	require.NoError(t, e.Write(format.Int32Value(128)))

	want := varint.AppendI32(nil, -1)
	want = varint.AppendI32(want, 128)

	require.Equal(t, len(want), e.Size())
	require.Equal(t, want, e.Serialize(nil))
}

func TestPlainEncoderInt64BigEndian(t *testing.T) {
	e := NewPlainEncoder(format.INT64)
	require.NoError(t, e.Write(format.Int64Value(42)))

	got := e.Serialize(nil)
	require.Equal(t, int64(42), int64(binary.BigEndian.Uint64(got)))
}

func TestPlainEncoderDoubleBigEndian(t *testing.T) {
	e := NewPlainEncoder(format.DOUBLE)
	require.NoError(t, e.Write(format.DoubleValue(3.5)))

	got := e.Serialize(nil)
	require.Equal(t, 3.5, math.Float64frombits(binary.BigEndian.Uint64(got)))
}

func TestPlainEncoderRejectsWrongType(t *testing.T) {
	e := NewPlainEncoder(format.INT32)
	require.Error(t, e.Write(format.Int64Value(1)))
}

func TestPlainEncoderMaxByteSizeUniform(t *testing.T) {
	for _, dt := range []format.TSDataType{format.INT32, format.INT64, format.FLOAT, format.DOUBLE} {
		e := NewPlainEncoder(dt)
		require.Equal(t, 24, e.MaxByteSize())
	}
}

func TestPlainEncoderReset(t *testing.T) {
	e := NewPlainEncoder(format.INT64)
	require.NoError(t, e.Write(format.Int64Value(1)))
	require.NotZero(t, e.Size())

	e.Reset()
	require.Zero(t, e.Size())
}
