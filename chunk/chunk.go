// Package chunk implements ChunkWriter: the sequence of pages for one measurement
// within one chunk group, including the amortized page-size check and the
// first-page-statistics splice trick for chunks that grow past a single page
// (spec §4.5).
package chunk

import (
	"fmt"

	"github.com/tsfile-go/tsfile/compress"
	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/internal/pool"
	"github.com/tsfile-go/tsfile/internal/varint"
	"github.com/tsfile-go/tsfile/page"
	"github.com/tsfile-go/tsfile/stats"
)

// Page-size check tuning constants (spec §4.5), grounded on chunk_writer.rs.
const (
	MaxPointsPerPage            = 1048576
	ValueCountForNextCheckInit  = 7989
	PageSizeThreshold           = 65536
	MinRecordCountForCheck      = 1500
	statisticsHeaderOverhead    = 2 * (4 + 1) // 2x (uncompressed size + compressed size) var-int upper bound
)

// Header describes a chunk's on-disk header fields (spec §6).
type Header struct {
	MeasurementID string
	DataSize      uint32
	DataType      format.TSDataType
	Compression   format.CompressionType
	Encoding      format.TSEncoding
	NumPages      uint32
	Mask          byte
}

// Metadata describes one chunk's entry in the metadata index (spec §4.7).
type Metadata struct {
	MeasurementID    string
	DataType         format.TSDataType
	OffsetChunkHeader int64
	Statistics       *stats.Box
}

// FileWriter is the subset of the file-level writer a ChunkWriter needs to flush a
// completed chunk. fileio.Writer satisfies this interface structurally.
type FileWriter interface {
	Position() int64
	Write(p []byte) (int, error)
	StartFlushChunk(measurementID string, compression format.CompressionType, dataType format.TSDataType, enc format.TSEncoding, statistics *stats.Box, dataSize uint32, numPages uint32, mask byte) error
	EndCurrentChunk() error
}

// Writer accumulates pages for a single measurement until flushed to a FileWriter.
type Writer struct {
	measurementID string
	dataType      format.TSDataType
	compression   format.CompressionType
	encoding      format.TSEncoding

	statistics *stats.Box
	codec      compress.Codec

	currentPage *page.Writer
	pageBuffer  *pool.ByteBuffer
	numPages    uint32

	firstPageStatistics *stats.Box
	// sizeWithoutStatistics is the byte offset within pageBuffer just past page 0's
	// uncompressed/compressed size fields, i.e. where its statistics must be spliced in
	// if a second page arrives (spec §4.5's single-page-chunk elision).
	sizeWithoutStatistics int

	valueCountForNextCheck uint32
}

// NewWriter creates a chunk writer for one measurement. An unrecognized compression tag
// falls back to Identity (UNCOMPRESSED) rather than failing construction, matching
// spec §9's treatment of the tag as advisory.
func NewWriter(measurementID string, dataType format.TSDataType, compression format.CompressionType, enc format.TSEncoding) *Writer {
	codec, err := compress.New(compression)
	if err != nil {
		codec = compress.Identity{}
	}
	return &Writer{
		measurementID:          measurementID,
		dataType:               dataType,
		compression:            compression,
		encoding:               enc,
		statistics:             stats.NewBox(dataType),
		codec:                  codec,
		pageBuffer:             pool.NewByteBuffer(pool.ChunkBufferDefaultSize),
		valueCountForNextCheck: ValueCountForNextCheckInit,
	}
}

// MeasurementID reports the chunk's series name within its device.
func (w *Writer) MeasurementID() string { return w.measurementID }

// DataType reports the chunk's value type.
func (w *Writer) DataType() format.TSDataType { return w.dataType }

// Statistics returns the chunk's running Statistics, merged across all flushed pages.
func (w *Writer) Statistics() *stats.Box { return w.statistics }

// Write appends one sample, opening a page lazily and flushing it once the amortized
// size check decides it is full.
func (w *Writer) Write(t int64, v format.Value) error {
	if w.currentPage == nil {
		p, err := page.NewWriter(w.dataType, w.encoding)
		if err != nil {
			return err
		}
		w.currentPage = p
	}
	if err := w.currentPage.Write(t, v); err != nil {
		return err
	}
	return w.checkPageSizeAndMayOpenNewPage()
}

// checkPageSizeAndMayOpenNewPage implements the amortized memory check: only every
// valueCountForNextCheck points is the page's estimated size actually computed.
func (w *Writer) checkPageSizeAndMayOpenNewPage() error {
	p := w.currentPage
	if p == nil {
		return nil
	}

	switch {
	case p.PointNumber() > MaxPointsPerPage:
		return w.writePageToBuffer()
	case p.PointNumber() >= w.valueCountForNextCheck:
		currentSize := p.EstimateMaxMemSize()
		if currentSize > PageSizeThreshold {
			if err := w.writePageToBuffer(); err != nil {
				return err
			}
			w.valueCountForNextCheck = MinRecordCountForCheck
		} else {
			w.valueCountForNextCheck = uint32(float64(PageSizeThreshold) / float64(currentSize) * float64(p.PointNumber()))
		}
	}
	return nil
}

// SealCurrentPage flushes the in-progress page, if any, so the chunk can be finalized.
func (w *Writer) SealCurrentPage() error {
	if w.currentPage != nil && w.currentPage.PointNumber() > 0 {
		return w.writePageToBuffer()
	}
	return nil
}

// writePageToBuffer appends the current page's prepared payload to pageBuffer.
//
// Single-page chunks elide per-page statistics (spec §4.5's ONLY_ONE_PAGE_CHUNK
// marker): page 0 is written without them. If a second page arrives, the already
// written page-0 header/payload must be re-split so page 0's statistics can be spliced
// in between its header and payload, matching chunk_writer.rs's write_page_to_buffer.
func (w *Writer) writePageToBuffer() error {
	p := w.currentPage
	if p == nil {
		return nil
	}
	p.PrepareBuffer()
	uncompressed := p.Buffer()
	payload, err := w.codec.Compress(uncompressed)
	if err != nil {
		return fmt.Errorf("%w: %s", errs.ErrCompressionFailed, err)
	}

	switch w.numPages {
	case 0:
		sizeLen := varint.SizeU32(uint32(len(uncompressed))) + varint.SizeU32(uint32(len(payload)))
		w.pageBuffer.B = varint.AppendU32(w.pageBuffer.B, uint32(len(uncompressed)))
		w.pageBuffer.B = varint.AppendU32(w.pageBuffer.B, uint32(len(payload)))
		w.sizeWithoutStatistics = sizeLen
		w.pageBuffer.MustWrite(payload)
		w.firstPageStatistics = p.Statistics().Clone()

	case 1:
		prior := append([]byte(nil), w.pageBuffer.Bytes()...)
		w.pageBuffer.Reset()

		header := prior[:w.sizeWithoutStatistics]
		remainder := prior[w.sizeWithoutStatistics:]

		w.pageBuffer.MustWrite(header)
		if w.firstPageStatistics == nil {
			return fmt.Errorf("%w: first page statistics missing when promoting to multi-page", errs.ErrIllegalState)
		}
		if _, err := w.firstPageStatistics.Serialize(w.pageBuffer); err != nil {
			return err
		}
		w.pageBuffer.MustWrite(remainder)

		w.pageBuffer.B = varint.AppendU32(w.pageBuffer.B, uint32(len(uncompressed)))
		w.pageBuffer.B = varint.AppendU32(w.pageBuffer.B, uint32(len(payload)))
		if _, err := p.Statistics().Serialize(w.pageBuffer); err != nil {
			return err
		}
		w.pageBuffer.MustWrite(payload)
		w.firstPageStatistics = nil

	default:
		w.pageBuffer.B = varint.AppendU32(w.pageBuffer.B, uint32(len(uncompressed)))
		w.pageBuffer.B = varint.AppendU32(w.pageBuffer.B, uint32(len(payload)))
		if _, err := p.Statistics().Serialize(w.pageBuffer); err != nil {
			return err
		}
		w.pageBuffer.MustWrite(payload)
	}

	w.numPages++
	if err := w.statistics.Merge(p.Statistics()); err != nil {
		return err
	}
	p.Reset()
	return nil
}

// EstimateMaxSeriesMemSize returns a conservative upper bound on the chunk's total
// encoded size so far, including its in-progress page and per-page statistics header
// overhead.
func (w *Writer) EstimateMaxSeriesMemSize() uint32 {
	if w.currentPage == nil {
		return 0
	}
	return uint32(w.pageBuffer.Len()) +
		w.currentPage.EstimateMaxMemSize() +
		statisticsHeaderOverhead +
		uint32(w.currentPage.Statistics().SerializedSize())
}

// SerializedChunkSize returns the byte size a full chunk header + payload would occupy
// if flushed now; 0 if nothing has been written.
func (w *Writer) SerializedChunkSize() uint64 {
	if w.pageBuffer.Len() == 0 {
		return 0
	}
	measurementLen := len(w.measurementID)
	return 1 + // chunk type marker
		uint64(varint.SizeI32(int32(measurementLen))) +
		uint64(measurementLen) +
		uint64(varint.SizeU32(uint32(w.pageBuffer.Len()))) +
		1 + 1 + 1 + // data type, compression, encoding
		uint64(w.pageBuffer.Len())
}

// FlushTo seals the current page and writes the full chunk (header + page payload) to
// fw, then resets the writer for a new chunk of the same series.
func (w *Writer) FlushTo(fw FileWriter) error {
	if err := w.SealCurrentPage(); err != nil {
		return err
	}
	if w.statistics.Count() == 0 {
		return nil
	}

	if err := fw.StartFlushChunk(w.measurementID, w.compression, w.dataType, w.encoding, w.statistics, uint32(w.pageBuffer.Len()), w.numPages, 0); err != nil {
		return err
	}
	if _, err := fw.Write(w.pageBuffer.Bytes()); err != nil {
		return err
	}
	if err := fw.EndCurrentChunk(); err != nil {
		return err
	}

	w.pageBuffer.Reset()
	w.numPages = 0
	w.firstPageStatistics = nil
	w.statistics = stats.NewBox(w.dataType)
	return nil
}
