// Package tsfile implements a write-only TsFile v3 writer: a binary time-series file
// format with a chunk-group/chunk/page hierarchy, running statistics, a two-level
// metadata index, a bloom filter over series paths, and a memory-driven flush
// scheduler (spec §4.10). Grounded on tsfile_writer.rs's TsFileWriter for the
// orchestration algorithm (write/write_many/check_memory_size_and_may_flush_chunks/
// flush_all_chunk_groups/reset/close) and mebo.go's functional-options constructor
// style for Config/Option.
package tsfile

import (
	"fmt"
	"io"

	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/fileio"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/group"
	"github.com/tsfile-go/tsfile/internal/options"
)

// Value re-exports format.Value so callers do not need to import the format package
// for basic writer usage.
type Value = format.Value

// DataPoint pairs a measurement with a value for a single WriteMany call.
type DataPoint = group.DataPoint

// Writer is the top-level orchestrator: one GroupWriter per device, a positional
// fileio.Writer sink, and the amortized memory-driven flush scheduler.
type Writer struct {
	schema *Schema
	config Config

	io *fileio.Writer

	groupWriters map[string]*group.Writer
	groupOrder   []string // devices, sorted

	recordCount                uint32
	recordCountForNextMemCheck uint32

	lastTimeMaps map[string]map[string]int64

	closed bool
}

// NewWriter creates a Writer over schema, flushing into out, configured by opts.
func NewWriter(out io.Writer, schema *Schema, opts ...Option) (*Writer, error) {
	cfg := DefaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	w := &Writer{
		schema:                      schema,
		config:                      cfg,
		io:                          fileio.NewWriter(out),
		lastTimeMaps:                make(map[string]map[string]int64),
		recordCountForNextMemCheck: recordCountForNextMemCheckInit,
	}
	w.buildGroupWriters()

	if err := w.io.StartFile(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) buildGroupWriters() {
	w.groupWriters = make(map[string]*group.Writer, len(w.schema.devices))
	w.groupOrder = w.groupOrder[:0]
	for _, d := range w.schema.devices {
		gw := group.NewWriter(d.Device, w.lastTimeMaps[d.Device])
		for _, m := range d.Measurements {
			gw.AddMeasurement(m.MeasurementID, m.DataType, m.Compression, m.Encoding)
		}
		w.groupWriters[d.Device] = gw
		w.groupOrder = append(w.groupOrder, d.Device)
	}
}

// Write appends one sample to (device, measurementID), then runs the amortized
// memory-driven flush check.
func (w *Writer) Write(device, measurementID string, timestamp int64, value format.Value) error {
	if w.closed {
		return errs.ErrWriterClosed
	}
	gw, ok := w.groupWriters[device]
	if !ok {
		return fmt.Errorf("%w: unknown device %q", errs.ErrUnknownDevice, device)
	}
	if err := gw.Write(measurementID, timestamp, value); err != nil {
		return err
	}
	w.recordCount++
	return w.maybeFlush()
}

// WriteMany writes several measurements of one device at the same timestamp.
func (w *Writer) WriteMany(device string, timestamp int64, points []DataPoint) error {
	if w.closed {
		return errs.ErrWriterClosed
	}
	gw, ok := w.groupWriters[device]
	if !ok {
		return fmt.Errorf("%w: unknown device %q", errs.ErrUnknownDevice, device)
	}
	if err := gw.WriteMany(timestamp, points); err != nil {
		return err
	}
	w.recordCount += uint32(len(points))
	return w.maybeFlush()
}

// maybeFlush implements the amortized memory check of spec §4.10: only every
// recordCountForNextMemCheck records does it actually sum up every group's estimated
// memory size.
func (w *Writer) maybeFlush() error {
	if w.recordCount < w.recordCountForNextMemCheck {
		return nil
	}

	mem := w.calculateMemSizeForAllGroups()
	if mem == 0 {
		return nil
	}

	threshold := w.config.ChunkGroupSizeThreshold
	w.recordCountForNextMemCheck = uint32(uint64(w.recordCountForNextMemCheck) * threshold / uint64(mem))

	if uint64(mem) > threshold {
		return w.flushAllChunkGroups()
	}
	return nil
}

func (w *Writer) calculateMemSizeForAllGroups() uint32 {
	var total uint32
	for _, device := range w.groupOrder {
		total += w.groupWriters[device].UpdateMaxGroupMemSize()
	}
	return total
}

// flushAllChunkGroups writes every device's chunk group to the file sink in sorted
// device order, then resets group writers for the next flush epoch.
func (w *Writer) flushAllChunkGroups() error {
	if w.recordCount == 0 {
		return nil
	}

	for _, device := range w.groupOrder {
		gw := w.groupWriters[device]

		if err := w.io.StartChunkGroup(device); err != nil {
			return err
		}
		pos := w.io.Position()
		dataSize, err := gw.FlushTo(w.io)
		if err != nil {
			return err
		}
		if uint64(w.io.Position()-pos) != dataSize {
			return fmt.Errorf("%w: bytes written inconsistent with expected chunk group size", errs.ErrIllegalState)
		}
		if err := w.io.EndChunkGroup(); err != nil {
			return err
		}

		w.lastTimeMaps[device] = gw.LastTimeMap()
	}

	w.reset()
	return nil
}

// reset clears record bookkeeping and rebuilds group writers with fresh chunk writers,
// matching tsfile_writer.rs's reset().
func (w *Writer) reset() {
	w.recordCount = 0
	w.buildGroupWriters()
}

// LastTimeMaps returns, per device, the most recent timestamp written to each
// measurement as of the last completed flush.
func (w *Writer) LastTimeMaps() map[string]map[string]int64 {
	return w.lastTimeMaps
}

// Close flushes all pending chunk groups and writes the file's trailing metadata
// index, bloom filter and footer.
func (w *Writer) Close() error {
	if w.closed {
		return errs.ErrWriterClosed
	}
	if err := w.flushAllChunkGroups(); err != nil {
		return err
	}
	if _, err := w.io.EndFile(w.config.MaxIndexDegree, w.config.BloomFilterErrorRate); err != nil {
		return err
	}
	w.closed = true
	return nil
}
