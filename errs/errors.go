// Package errs defines the sentinel errors surfaced by the tsfile writer pipeline,
// matching the taxonomy of spec §7: out-of-order timestamps, type mismatches, illegal
// writer state, unsupported (type, encoding) combinations and compression failures.
// Callers should use errors.Is against these sentinels.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfOrderData is returned when a sample's timestamp does not strictly
	// increase relative to the previous sample written to the same series.
	ErrOutOfOrderData = errors.New("tsfile: out-of-order data")

	// ErrWrongTypeForSeries is returned when a value's runtime type does not match
	// the series' declared TSDataType.
	ErrWrongTypeForSeries = errors.New("tsfile: wrong type for series")

	// ErrIllegalState is returned for invariant violations: unknown device/measurement,
	// writing after close, or internal bookkeeping mismatches.
	ErrIllegalState = errors.New("tsfile: illegal state")

	// ErrUnsupportedEncoding is returned when a (TSDataType, TSEncoding) combination
	// has no encoder implementation.
	ErrUnsupportedEncoding = errors.New("tsfile: unsupported type/encoding combination")

	// ErrCompressionFailed wraps a failure from a compression codec.
	ErrCompressionFailed = errors.New("tsfile: compression failed")

	// ErrUnknownMeasurement is returned when writing to a measurement absent from the
	// schema. It wraps ErrIllegalState.
	ErrUnknownMeasurement = fmt.Errorf("tsfile: unknown measurement: %w", ErrIllegalState)

	// ErrUnknownDevice is returned when writing to a device absent from the schema. It
	// wraps ErrIllegalState.
	ErrUnknownDevice = fmt.Errorf("tsfile: unknown device: %w", ErrIllegalState)

	// ErrEmptyIdentifier is returned when a device or measurement id is empty or
	// contains the "." path separator.
	ErrEmptyIdentifier = errors.New("tsfile: empty or invalid identifier")

	// ErrWriterClosed is returned when Write or Close is called on an already-closed
	// writer. It wraps ErrIllegalState.
	ErrWriterClosed = fmt.Errorf("tsfile: writer already closed: %w", ErrIllegalState)
)
