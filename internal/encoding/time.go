package encoding

import "github.com/tsfile-go/tsfile/format"

// TimeEncoder is the TS2DIFF-i64 encoder every page uses for its time column. The
// original source duplicates the delta-of-delta algorithm into a dedicated
// time_encoder.rs; Go generics let the same TS2DiffEncoder[int64] serve both the time
// column and INT64 value columns, so no separate type is needed here.
type TimeEncoder = TS2DiffEncoder[int64]

// NewTimeEncoder creates the TS2DIFF-i64 encoder every page uses for its time column.
func NewTimeEncoder() *TimeEncoder {
	return NewTS2DiffEncoder[int64](format.INT64)
}
