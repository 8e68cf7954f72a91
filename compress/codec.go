// Package compress implements the page-payload codec behind TsFile's advisory SNAPPY
// compression tag (spec §9 Open Questions: "either implement compression or document
// that the tag is advisory"). This is a writer: a chunk constructed with
// format.UNCOMPRESSED uses Identity; one constructed with format.SNAPPY runs its page
// payloads through S2, a wire-compatible, faster Snappy variant. Decompression is kept
// on the Codec interface for symmetry and test round-tripping, since a writer-only
// library otherwise never reads its own compressed output back.
package compress

import (
	"fmt"

	"github.com/tsfile-go/tsfile/format"
)

// Compressor compresses one page payload.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor's output.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions; every format.CompressionType this package supports has
// exactly one Codec implementation.
type Codec interface {
	Compressor
	Decompressor
}

// New returns the Codec for compressionType: Identity for UNCOMPRESSED, Snappy (S2) for
// SNAPPY. Any other tag value is an error — spec §6 closes the CompressionType wire-tag
// space to these two.
func New(compressionType format.CompressionType) (Codec, error) {
	switch compressionType {
	case format.UNCOMPRESSED:
		return Identity{}, nil
	case format.SNAPPY:
		return Snappy{}, nil
	default:
		return nil, fmt.Errorf("compress: unsupported compression type %s", compressionType)
	}
}
