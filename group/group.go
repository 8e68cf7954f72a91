// Package group implements GroupWriter, which owns one chunk writer per measurement of
// a single device and enforces per-series timestamp monotonicity (spec §4.6).
package group

import (
	"fmt"
	"sort"

	"github.com/tsfile-go/tsfile/chunk"
	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
)

// DataPoint pairs a measurement with the value to write to it in a single call to
// WriteMany, mirroring the original source's `DataPoint`.
type DataPoint struct {
	MeasurementID string
	Value         format.Value
}

// Writer accumulates chunk writers for every measurement of one device.
type Writer struct {
	path string

	measurements []string // sorted measurement ids, for deterministic flush order
	chunkWriters map[string]*chunk.Writer
	lastTime     map[string]int64
}

// NewWriter creates a group writer for the device identified by path. initialLastTime
// seeds the per-measurement monotonicity cursors (e.g. carried over from a prior flush
// epoch for the same device); it may be nil for a brand-new device.
func NewWriter(path string, initialLastTime map[string]int64) *Writer {
	lastTime := make(map[string]int64, len(initialLastTime))
	for k, v := range initialLastTime {
		lastTime[k] = v
	}
	return &Writer{
		path:         path,
		chunkWriters: make(map[string]*chunk.Writer),
		lastTime:     lastTime,
	}
}

// Path returns the device identifier this group writer accumulates chunks for.
func (g *Writer) Path() string { return g.path }

// AddMeasurement registers a new series, keeping the measurement list sorted so flush
// order is deterministic.
func (g *Writer) AddMeasurement(measurementID string, dataType format.TSDataType, compression format.CompressionType, enc format.TSEncoding) {
	if _, exists := g.chunkWriters[measurementID]; exists {
		return
	}
	g.chunkWriters[measurementID] = chunk.NewWriter(measurementID, dataType, compression, enc)

	i := sort.SearchStrings(g.measurements, measurementID)
	g.measurements = append(g.measurements, "")
	copy(g.measurements[i+1:], g.measurements[i:])
	g.measurements[i] = measurementID
}

// Write appends one sample to measurementID's chunk writer, rejecting out-of-order
// timestamps and unknown measurements.
func (g *Writer) Write(measurementID string, timestamp int64, value format.Value) error {
	if err := g.checkMonotonic(measurementID, timestamp); err != nil {
		return err
	}

	cw, ok := g.chunkWriters[measurementID]
	if !ok {
		return fmt.Errorf("%w: unknown measurement %q", errs.ErrUnknownMeasurement, measurementID)
	}
	if err := cw.Write(timestamp, value); err != nil {
		return err
	}
	g.lastTime[measurementID] = timestamp
	return nil
}

// WriteMany writes several measurements at the same timestamp, matching the original
// source's `write_many`.
func (g *Writer) WriteMany(timestamp int64, points []DataPoint) error {
	for _, dp := range points {
		if err := g.Write(dp.MeasurementID, timestamp, dp.Value); err != nil {
			return err
		}
	}
	return nil
}

func (g *Writer) checkMonotonic(measurementID string, timestamp int64) error {
	last, ok := g.lastTime[measurementID]
	if !ok {
		last = -1
	}
	if timestamp <= last {
		return errs.ErrOutOfOrderData
	}
	return nil
}

// LastTimeMap returns a copy of the most recent timestamp written to each measurement.
func (g *Writer) LastTimeMap() map[string]int64 {
	cp := make(map[string]int64, len(g.lastTime))
	for k, v := range g.lastTime {
		cp[k] = v
	}
	return cp
}

// SealAllChunks flushes every chunk writer's in-progress page without finalizing the
// chunk itself, used before computing the group's current serialized size.
func (g *Writer) SealAllChunks() error {
	for _, m := range g.measurements {
		if err := g.chunkWriters[m].SealCurrentPage(); err != nil {
			return err
		}
	}
	return nil
}

// CurrentChunkGroupSize sums every chunk's SerializedChunkSize.
func (g *Writer) CurrentChunkGroupSize() uint64 {
	var size uint64
	for _, m := range g.measurements {
		size += g.chunkWriters[m].SerializedChunkSize()
	}
	return size
}

// UpdateMaxGroupMemSize sums every chunk writer's EstimateMaxSeriesMemSize, used by the
// file-level memory-driven flush scheduler (spec §4.10).
func (g *Writer) UpdateMaxGroupMemSize() uint32 {
	var total uint32
	for _, m := range g.measurements {
		total += g.chunkWriters[m].EstimateMaxSeriesMemSize()
	}
	return total
}

// FlushTo seals and writes every measurement's chunk, in sorted measurement order, to
// fw, returning the chunk group's serialized size as measured before the flush.
func (g *Writer) FlushTo(fw chunk.FileWriter) (uint64, error) {
	if err := g.SealAllChunks(); err != nil {
		return 0, err
	}
	size := g.CurrentChunkGroupSize()

	for _, m := range g.measurements {
		if err := g.chunkWriters[m].FlushTo(fw); err != nil {
			return 0, err
		}
	}
	return size, nil
}
