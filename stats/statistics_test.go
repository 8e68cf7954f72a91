package stats

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsfile-go/tsfile/format"
)

func TestStatisticsUpdate(t *testing.T) {
	s := New[int32](format.INT32)
	s.Update(1, 13)
	s.Update(10, 14)
	s.Update(100, 15)

	require.Equal(t, uint32(3), s.Count())
	require.Equal(t, int64(1), s.TsFirst())
	require.Equal(t, int64(100), s.TsLast())
	require.Equal(t, int32(13), s.Min())
	require.Equal(t, int32(15), s.Max())
	require.Equal(t, int32(13), s.First())
	require.Equal(t, int32(15), s.Last())
	require.Equal(t, float64(42), s.Sum())
}

func TestStatisticsMergeOrderIndependent(t *testing.T) {
	a := New[int64](format.INT64)
	a.Update(0, 10)
	a.Update(5, 20)

	b := New[int64](format.INT64)
	b.Update(10, 30)
	b.Update(15, -5)

	merged1 := a.Clone()
	merged1.Merge(b)

	merged2 := b.Clone()
	merged2.Merge(a)

	require.Equal(t, merged1.Count(), merged2.Count())
	require.Equal(t, merged1.Min(), merged2.Min())
	require.Equal(t, merged1.Max(), merged2.Max())
	require.Equal(t, merged1.Sum(), merged2.Sum())
	require.Equal(t, merged1.TsFirst(), merged2.TsFirst())
	require.Equal(t, merged1.TsLast(), merged2.TsLast())
	require.Equal(t, merged1.First(), merged2.First())
	require.Equal(t, merged1.Last(), merged2.Last())

	require.Equal(t, int64(10), merged1.First())
	require.Equal(t, int64(-5), merged1.Last())
	require.Equal(t, int64(-5), merged1.Min())
	require.Equal(t, int64(30), merged1.Max())
}

func TestStatisticsSerializedSize(t *testing.T) {
	require.Equal(t, 1+16+24, New[int32](format.INT32).SerializedSize())
	require.Equal(t, 1+16+40, New[int64](format.INT64).SerializedSize())
	require.Equal(t, 1+16+24, New[float32](format.FLOAT).SerializedSize())
	require.Equal(t, 1+16+40, New[float64](format.DOUBLE).SerializedSize())
}

func TestStatisticsSerialize(t *testing.T) {
	s := New[int32](format.INT32)
	s.Update(1, 13)
	s.Update(10, 14)
	s.Update(100, 15)

	var buf bytes.Buffer
	n, err := s.Serialize(&buf)
	require.NoError(t, err)
	require.Equal(t, s.SerializedSize(), n)
	require.Equal(t, n, buf.Len())
}
