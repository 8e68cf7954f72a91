// Package fileio implements the positional file-level writer that chunk groups and
// chunks flush into: header/footer framing, chunk-group and chunk bookkeeping, and the
// final metadata/index/bloom-filter footer (spec §4.9, §6). Grounded on
// original_source/src/tsfile_io_writer.rs (start_file/start_chunk_group/end_chunk_group
// and its chunk_metadata_list/chunk_group_metadata_list bookkeeping) combined with
// tsfile-writer/src/chunk_writer.rs's call-site usage of start_flush_chunk/
// end_current_chunk, whose own implementation lives in a newer-generation
// TsFileIoWriter not present in the retrieved pack; start_flush_chunk/end_current_chunk
// below are synthesized from that call pattern plus the ChunkHeader/ChunkMetadata
// serialization shown in chunk_writer.rs. The position-tracking writer wrapper itself
// follows foxglove-mcap's countingCRCWriter idiom (minus CRC, which TsFile has no use
// for), an enrichment from the rest of the pack since mebo buffers entirely in memory
// and has no streaming positional writer.
package fileio

import (
	"encoding/binary"
	"io"

	"github.com/tsfile-go/tsfile/bloom"
	"github.com/tsfile-go/tsfile/chunk"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/internal/pool"
	"github.com/tsfile-go/tsfile/internal/varint"
	"github.com/tsfile-go/tsfile/metaindex"
	"github.com/tsfile-go/tsfile/stats"
)

// inProgressChunk mirrors the Rust ChunkMetadata captured at start_flush_chunk and
// completed at end_current_chunk.
type inProgressChunk struct {
	measurementID     string
	dataType          format.TSDataType
	offsetChunkHeader int64
	statistics        *stats.Box
	mask              byte
}

// ChunkGroupMetadata records one flushed chunk group's device id and chunk list, for
// use when building the timeseries metadata / index footer at EndFile.
type ChunkGroupMetadata struct {
	Device string
	Chunks []chunk.Metadata
}

// Writer is the positional sink chunk.Writer and group.Writer flush into. It tracks its
// own write offset (required by the two-pass offset-recording contract, spec §9) and
// accumulates chunk/chunk-group metadata until EndFile builds the footer.
type Writer struct {
	out      io.Writer
	position int64

	currentDevice          string
	hasCurrentDevice       bool
	chunkMetadataList      []chunk.Metadata
	chunkGroupMetadataList []ChunkGroupMetadata

	inProgress *inProgressChunk

	paths []string // fully-qualified device.measurement paths seen, for the bloom filter
}

// NewWriter wraps out as a positional TsFile sink. It does not write the file header;
// call StartFile for that.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Position reports the number of bytes written so far.
func (w *Writer) Position() int64 { return w.position }

// Write implements io.Writer, tracking position as a side effect.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.out.Write(p)
	w.position += int64(n)
	return n, err
}

func (w *Writer) writeString(s string) error {
	_, err := w.Write(varint.AppendString(nil, s))
	return err
}

// StartFile writes the magic head and version byte (spec §6).
func (w *Writer) StartFile() error {
	if _, err := w.Write([]byte(format.MagicHead)); err != nil {
		return err
	}
	_, err := w.Write([]byte{format.Version})
	return err
}

// StartChunkGroup writes the chunk-group marker and device id, and resets the
// per-group chunk metadata list.
func (w *Writer) StartChunkGroup(device string) error {
	if _, err := w.Write([]byte{format.ChunkGroupHeaderMarker}); err != nil {
		return err
	}
	if err := w.writeString(device); err != nil {
		return err
	}
	w.currentDevice = device
	w.hasCurrentDevice = true
	w.chunkMetadataList = w.chunkMetadataList[:0]
	return nil
}

// EndChunkGroup finalizes the current chunk group: if no chunks were flushed into it,
// no metadata is recorded for it (matching tsfile_io_writer.rs's empty-group guard).
// The marker and device id already written by StartChunkGroup remain in the output.
func (w *Writer) EndChunkGroup() error {
	if !w.hasCurrentDevice || len(w.chunkMetadataList) == 0 {
		w.hasCurrentDevice = false
		return nil
	}
	chunks := make([]chunk.Metadata, len(w.chunkMetadataList))
	copy(chunks, w.chunkMetadataList)
	w.chunkGroupMetadataList = append(w.chunkGroupMetadataList, ChunkGroupMetadata{
		Device: w.currentDevice,
		Chunks: chunks,
	})
	w.hasCurrentDevice = false
	w.chunkMetadataList = nil
	return nil
}

// StartFlushChunk writes a chunk header and captures the in-progress ChunkMetadata that
// EndCurrentChunk will commit; it satisfies chunk.FileWriter.
func (w *Writer) StartFlushChunk(measurementID string, compression format.CompressionType, dataType format.TSDataType, enc format.TSEncoding, statistics *stats.Box, dataSize uint32, numPages uint32, mask byte) error {
	offset := w.Position()

	marker := format.ChunkHeaderMarker
	if numPages <= 1 {
		marker = format.OnlyOnePageChunkMarker
	}
	marker |= mask

	if _, err := w.Write([]byte{marker}); err != nil {
		return err
	}
	if err := w.writeString(measurementID); err != nil {
		return err
	}
	if _, err := w.Write(varint.AppendU32(nil, dataSize)); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(dataType), byte(compression), byte(enc)}); err != nil {
		return err
	}

	w.inProgress = &inProgressChunk{
		measurementID:     measurementID,
		dataType:          dataType,
		offsetChunkHeader: offset,
		statistics:        statistics,
		mask:              mask,
	}
	w.paths = append(w.paths, w.currentDevice+"."+measurementID)
	return nil
}

// EndCurrentChunk commits the in-progress chunk's metadata into the current chunk
// group's list.
func (w *Writer) EndCurrentChunk() error {
	if w.inProgress == nil {
		return nil
	}
	w.chunkMetadataList = append(w.chunkMetadataList, chunk.Metadata{
		MeasurementID:     w.inProgress.measurementID,
		DataType:          w.inProgress.dataType,
		OffsetChunkHeader: w.inProgress.offsetChunkHeader,
		Statistics:        w.inProgress.statistics,
	})
	w.inProgress = nil
	return nil
}

// Footer is the parsed TsFileMetadata written just before the bloom filter and file
// length (spec §6).
type Footer struct {
	MetaOffset int64
	Root       *metaindex.Node
}

// EndFile writes the trailing metadata/index/bloom-filter/footer-size/magic-tail
// section and returns the written Footer, per spec §4.9's end_file algorithm.
func (w *Writer) EndFile(maxIndexDegree int, bloomErrorRate float64) (*Footer, error) {
	byPath := groupByPath(w.chunkGroupMetadataList)

	metaOffset := w.Position()
	if _, err := w.Write([]byte{format.TimeseriesMetadataMarker}); err != nil {
		return nil, err
	}

	devices := buildDeviceSeries(byPath)

	root, err := metaindex.Construct(devices, w, maxIndexDegree)
	if err != nil {
		return nil, err
	}

	// footerIndex is recorded just before TsFileMetadata (root node + meta_offset) is
	// written, per spec §4.9 step 6 — the trailing u32 footer-size field measures from
	// here, not from the start of the timeseries-metadata section (metaOffset above).
	footerIndex := w.Position()

	if root != nil {
		if err := root.Serialize(w); err != nil {
			return nil, err
		}
	} else {
		if _, err := w.Write(make([]byte, 4)); err != nil {
			return nil, err
		}
	}
	if _, err := w.Write(binary.BigEndian.AppendUint64(nil, uint64(metaOffset))); err != nil {
		return nil, err
	}

	filter := bloom.NewFilter(len(w.paths), bloomErrorRate)
	for _, p := range w.paths {
		filter.Add(p)
	}
	filterBuf := pool.NewByteBuffer(64)
	filter.Serialize(filterBuf)
	if _, err := w.Write(filterBuf.Bytes()); err != nil {
		return nil, err
	}

	footerSize := w.Position() - footerIndex
	if _, err := w.Write(binary.BigEndian.AppendUint32(nil, uint32(footerSize))); err != nil {
		return nil, err
	}
	if _, err := w.Write([]byte(format.MagicTail)); err != nil {
		return nil, err
	}

	return &Footer{MetaOffset: metaOffset, Root: root}, nil
}

// pathChunks is one (device, measurement) path's accumulated chunk metadata across all
// flushed chunk groups, in encounter order.
type pathChunks struct {
	device        string
	measurementID string
	chunks        []chunk.Metadata
}

func groupByPath(groups []ChunkGroupMetadata) map[string]*pathChunks {
	byPath := make(map[string]*pathChunks)
	for _, g := range groups {
		for _, c := range g.Chunks {
			key := g.Device + "." + c.MeasurementID
			pc, ok := byPath[key]
			if !ok {
				pc = &pathChunks{device: g.Device, measurementID: c.MeasurementID}
				byPath[key] = pc
			}
			pc.chunks = append(pc.chunks, c)
		}
	}
	return byPath
}

func buildDeviceSeries(byPath map[string]*pathChunks) []metaindex.DeviceSeries {
	byDevice := make(map[string][]metaindex.SeriesMetadata)

	for _, pc := range byPath {
		union := stats.NewBox(pc.chunks[0].DataType)
		for _, c := range pc.chunks {
			_ = union.Merge(c.Statistics)
		}
		byDevice[pc.device] = append(byDevice[pc.device], metaindex.SeriesMetadata{
			MeasurementID:     pc.measurementID,
			DataType:          pc.chunks[0].DataType,
			HasMultipleChunks: len(pc.chunks) > 1,
			Chunks:            pc.chunks,
			Statistics:        union,
		})
	}

	devices := make([]metaindex.DeviceSeries, 0, len(byDevice))
	for d, series := range byDevice {
		devices = append(devices, metaindex.DeviceSeries{Device: d, Series: series})
	}
	return metaindex.SortDevices(devices)
}
