package encoding

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
)

func TestNewValueEncoderDispatch(t *testing.T) {
	t.Run("plain supports every type", func(t *testing.T) {
		for _, dt := range []format.TSDataType{format.INT32, format.INT64, format.FLOAT, format.DOUBLE} {
			enc, err := NewValueEncoder(dt, format.PLAIN)
			require.NoError(t, err)
			require.NotNil(t, enc)
		}
	})

	t.Run("ts2diff supports only int32 and int64", func(t *testing.T) {
		enc, err := NewValueEncoder(format.INT32, format.TS2DIFF)
		require.NoError(t, err)
		require.NotNil(t, enc)

		enc, err = NewValueEncoder(format.INT64, format.TS2DIFF)
		require.NoError(t, err)
		require.NotNil(t, enc)
	})

	t.Run("ts2diff rejects float and double", func(t *testing.T) {
		_, err := NewValueEncoder(format.FLOAT, format.TS2DIFF)
		require.Error(t, err)
		require.True(t, errors.Is(err, errs.ErrUnsupportedEncoding))

		_, err = NewValueEncoder(format.DOUBLE, format.TS2DIFF)
		require.Error(t, err)
		require.True(t, errors.Is(err, errs.ErrUnsupportedEncoding))
	})
}
