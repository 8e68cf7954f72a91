package tsfile

import "github.com/tsfile-go/tsfile/internal/options"

// Chunk-group memory threshold (spec §4.10, §6).
const ChunkGroupSizeThresholdByte = 128 * 1024 * 1024

const recordCountForNextMemCheckInit = 100

// Config holds the process-wide defaults TsFileConfig exposes, overridable per writer
// via functional options (grounded on ts_file_config.rs's TsFileConfig).
type Config struct {
	MaxIndexDegree          int
	BloomFilterErrorRate    float64
	ChunkGroupSizeThreshold uint64
}

// DefaultConfig returns TsFile's documented defaults (spec §6).
func DefaultConfig() Config {
	return Config{
		MaxIndexDegree:          256,
		BloomFilterErrorRate:    0.05,
		ChunkGroupSizeThreshold: ChunkGroupSizeThresholdByte,
	}
}

// Option configures a Config.
type Option = options.Option[*Config]

// WithMaxIndexDegree overrides the metadata index node fanout cap.
func WithMaxIndexDegree(degree int) Option {
	return options.NoError(func(c *Config) { c.MaxIndexDegree = degree })
}

// WithBloomFilterErrorRate overrides the bloom filter's target false-positive rate,
// clamped to [0.01, 0.1] by the bloom package itself.
func WithBloomFilterErrorRate(rate float64) Option {
	return options.NoError(func(c *Config) { c.BloomFilterErrorRate = rate })
}

// WithChunkGroupThreshold overrides the memory-driven flush scheduler's chunk-group
// size threshold, in bytes.
func WithChunkGroupThreshold(bytes uint64) Option {
	return options.NoError(func(c *Config) { c.ChunkGroupSizeThreshold = bytes })
}
