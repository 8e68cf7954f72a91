package compress

// Identity is the UNCOMPRESSED codec: page payloads pass through unchanged, so a
// chunk's "compressed size" field equals its "uncompressed size" field (spec §3).
type Identity struct{}

var _ Codec = Identity{}

func (Identity) Compress(data []byte) ([]byte, error) { return data, nil }

func (Identity) Decompress(data []byte) ([]byte, error) { return data, nil }
