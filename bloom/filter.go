// Package bloom implements the bloom filter over `device.measurement` series paths
// written into a TsFile's footer (spec §4.8). Sizing and hash-count formulas are
// grounded on ts_file_config.rs's TsFileConfig defaults (error-rate bounds, minimal
// size, maximal hash-function count, fixed seeds); the bit-vector and Add/Test/
// Serialize methods were not present in the retrieved original_source pack (the
// BloomFilter struct itself lives in a top-level lib.rs not captured for this crate
// generation) and are built directly from spec §4.8's formulas instead.
package bloom

import (
	"math"

	"github.com/tsfile-go/tsfile/internal/pool"
	"github.com/tsfile-go/tsfile/internal/varint"
)

// Seeds are the 8 fixed Murmur128 seeds used by every bloom filter, matching
// TsFileConfig's default `seeds` field.
var Seeds = [8]int32{5, 7, 11, 19, 31, 37, 43, 59}

const (
	defaultErrorRate    = 0.05
	minErrorRate        = 0.01
	maxErrorRate        = 0.1
	minimalSize         = 256
	maximalHashFunctions = 8
)

// Filter is a fixed-size bit vector bloom filter over series paths, hashed with
// Murmur128 under up to 8 distinct seeds.
type Filter struct {
	bits []byte
	size uint32
	k    int
}

// clampErrorRate bounds p to TsFileConfig's [min_bloom_filter_error_rate,
// max_bloom_filter_error_rate] range.
func clampErrorRate(p float64) float64 {
	if p < minErrorRate {
		return minErrorRate
	}
	if p > maxErrorRate {
		return maxErrorRate
	}
	return p
}

// NewFilter builds an empty filter sized for expectedCount items at the given false
// positive error rate (spec §4.8). errorRate is clamped to [0.01, 0.1]; pass <= 0 to
// use the default 0.05.
func NewFilter(expectedCount int, errorRate float64) *Filter {
	if errorRate <= 0 {
		errorRate = defaultErrorRate
	}
	p := clampErrorRate(errorRate)

	n := float64(expectedCount)
	ln2 := math.Ln2
	size := uint32(math.Ceil(-n * math.Log(p) / (ln2 * ln2)))
	if size < minimalSize {
		size = minimalSize
	}

	k := int(math.Floor(-math.Log(p)/ln2)) + 1
	if k > maximalHashFunctions {
		k = maximalHashFunctions
	}
	if k < 1 {
		k = 1
	}

	return &Filter{
		bits: make([]byte, (size+7)/8),
		size: size,
		k:    k,
	}
}

// Add sets the k bits derived from hashing path under the first k seeds.
func (f *Filter) Add(path string) {
	for i := 0; i < f.k; i++ {
		idx := f.bitIndex(path, Seeds[i])
		f.bits[idx/8] |= 1 << (idx % 8)
	}
}

// Test reports whether path might be present (false positives possible, false
// negatives are not).
func (f *Filter) Test(path string) bool {
	for i := 0; i < f.k; i++ {
		idx := f.bitIndex(path, Seeds[i])
		if f.bits[idx/8]&(1<<(idx%8)) == 0 {
			return false
		}
	}
	return true
}

// bitIndex derives a bit position from hashing path under seed. Per spec §9, i32::MIN
// has no positive absolute value in two's-complement 32-bit arithmetic; that edge case
// (a 1-in-2^32 hash outcome) is treated as absolute value 0 rather than promoted to a
// wider type, matching the reference implementation's Math.abs(Integer.MIN_VALUE) quirk.
func (f *Filter) bitIndex(path string, seed int32) uint32 {
	h := Hash(path, seed)
	var abs int32
	switch {
	case h == math.MinInt32:
		abs = 0
	case h < 0:
		abs = -h
	default:
		abs = h
	}
	return uint32(abs) % f.size
}

// Size reports the bit vector's bit count.
func (f *Filter) Size() uint32 { return f.size }

// K reports the number of hash functions in use.
func (f *Filter) K() int { return f.k }

// Serialize writes the filter as var-u32 byte length, the packed bit vector
// (LSB-first within each byte), var-u32 size, var-u32 k (spec §4.8).
func (f *Filter) Serialize(buf *pool.ByteBuffer) {
	buf.B = varint.AppendU32(buf.B, uint32(len(f.bits)))
	buf.MustWrite(f.bits)
	buf.B = varint.AppendU32(buf.B, f.size)
	buf.B = varint.AppendU32(buf.B, uint32(f.k))
}
