package stats

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsfile-go/tsfile/format"
)

func TestBoxUpdateAndSerialize(t *testing.T) {
	b := NewBox(format.INT32)
	require.NoError(t, b.Update(1, format.Int32Value(13)))
	require.NoError(t, b.Update(100, format.Int32Value(15)))

	require.Equal(t, uint32(2), b.Count())
	require.Equal(t, int64(1), b.TsFirst())
	require.Equal(t, int64(100), b.TsLast())

	var buf bytes.Buffer
	n, err := b.Serialize(&buf)
	require.NoError(t, err)
	require.Equal(t, b.SerializedSize(), n)
}

func TestBoxRejectsWrongValueType(t *testing.T) {
	b := NewBox(format.INT32)
	require.Error(t, b.Update(1, format.Int64Value(1)))
}

func TestBoxMerge(t *testing.T) {
	a := NewBox(format.INT64)
	require.NoError(t, a.Update(0, format.Int64Value(10)))

	other := NewBox(format.INT64)
	require.NoError(t, other.Update(5, format.Int64Value(20)))

	require.NoError(t, a.Merge(other))
	require.Equal(t, uint32(2), a.Count())
}

func TestBoxMergeRejectsMismatchedType(t *testing.T) {
	a := NewBox(format.INT32)
	b := NewBox(format.INT64)
	require.Error(t, a.Merge(b))
}

func TestBoxCloneIsIndependent(t *testing.T) {
	a := NewBox(format.INT32)
	require.NoError(t, a.Update(1, format.Int32Value(5)))

	clone := a.Clone()
	require.NoError(t, a.Update(2, format.Int32Value(9)))

	require.Equal(t, uint32(1), clone.Count())
	require.Equal(t, uint32(2), a.Count())
}
