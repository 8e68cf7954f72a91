package format

import "fmt"

// Value is a tagged union over the four TsFile value types (spec §3). Exactly the
// field matching Kind is meaningful.
type Value struct {
	Kind TSDataType
	I32  int32
	I64  int64
	F32  float32
	F64  float64
}

// Int32Value constructs an INT32 Value.
func Int32Value(v int32) Value { return Value{Kind: INT32, I32: v} }

// Int64Value constructs an INT64 Value.
func Int64Value(v int64) Value { return Value{Kind: INT64, I64: v} }

// FloatValue constructs a FLOAT Value.
func FloatValue(v float32) Value { return Value{Kind: FLOAT, F32: v} }

// DoubleValue constructs a DOUBLE Value.
func DoubleValue(v float64) Value { return Value{Kind: DOUBLE, F64: v} }

func (v Value) String() string {
	switch v.Kind {
	case INT32:
		return fmt.Sprintf("INT(%d)", v.I32)
	case INT64:
		return fmt.Sprintf("LONG(%d)", v.I64)
	case FLOAT:
		return fmt.Sprintf("FLOAT(%v)", v.F32)
	case DOUBLE:
		return fmt.Sprintf("DOUBLE(%v)", v.F64)
	default:
		return "Value(invalid)"
	}
}
