package bitpack

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackReferenceVectors(t *testing.T) {
	t.Run("width 4, values 1,1,1", func(t *testing.T) {
		got := Pack([]uint64{1, 1, 1}, 4)
		require.Equal(t, []byte{0x11, 0x10}, got)
	})

	t.Run("width 7, values 1,1,1", func(t *testing.T) {
		got := Pack([]uint64{1, 1, 1}, 7)
		require.Equal(t, []byte{0x02, 0x04, 0x08}, got)
	})

	t.Run("width 7, values 0,81", func(t *testing.T) {
		got := Pack([]uint64{0, 81}, 7)
		require.Equal(t, []byte{0x01, 0x44}, got)
	})
}

func TestPackUnpackRoundTrip(t *testing.T) {
	for _, width := range []int{1, 3, 4, 7, 8, 13, 17, 31, 32, 63, 64} {
		max := uint64(1)<<uint(width) - 1
		if width == 64 {
			max = ^uint64(0)
		}
		values := []uint64{0, 1, max / 2, max}
		packed := Pack(values, width)
		got := Unpack(packed, len(values), width)
		require.Equal(t, values, got)
	}
}

func TestBitWidth(t *testing.T) {
	require.Equal(t, 0, BitWidth(0))
	require.Equal(t, 1, BitWidth(1))
	require.Equal(t, 7, BitWidth(81))
	require.Equal(t, 4, BitWidth(15))
	require.Equal(t, 5, BitWidth(16))
}
