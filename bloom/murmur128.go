// Package bloom implements the bloom filter over `device.measurement` series paths
// written into a TsFile's footer (spec §4.8), backed by a Murmur128 hash with 8 fixed
// seeds, grounded on murmur128.rs.
package bloom

const (
	c1 = 0x87c37b91114253d5
	c2 = 0x4cf5ad432745937f
)

func rotl64(v uint64, n uint) uint64 {
	return (v << n) | (v >> (64 - n))
}

func fmix(k uint64) uint64 {
	k ^= k >> 33
	k *= 0xff51afd7ed558ccd
	k ^= k >> 33
	k *= 0xc4ceb9fe1a85ec53
	k ^= k >> 33
	return k
}

func getBlock(key []byte, offset int, index int) uint64 {
	o := offset + index*8
	return uint64(key[o]) |
		uint64(key[o+1])<<8 |
		uint64(key[o+2])<<16 |
		uint64(key[o+3])<<24 |
		uint64(key[o+4])<<32 |
		uint64(key[o+5])<<40 |
		uint64(key[o+6])<<48 |
		uint64(key[o+7])<<56
}

// innerHash is a direct, wraparound-faithful port of Murmur128's inner_hash: Go's
// unsigned 64-bit arithmetic overflows the same way the original's i128-then-truncate
// multiplications do.
func innerHash(key []byte, seed int64) int64 {
	length := len(key)
	nblocks := length >> 4
	h1 := uint64(seed)
	h2 := uint64(seed)

	offset := 0
	for i := 0; i < nblocks; i++ {
		k1 := getBlock(key, offset, i*2)
		k2 := getBlock(key, offset, i*2+1)

		k1 *= c1
		k1 = rotl64(k1, 31)
		k1 *= c2
		h1 ^= k1
		h1 = rotl64(h1, 27)
		h1 += h2
		h1 = h1*5 + 0x52dce729

		k2 *= c2
		k2 = rotl64(k2, 33)
		k2 *= c1
		h2 ^= k2
		h2 = rotl64(h2, 31)
		h2 += h1
		h2 = h2*5 + 0x38495ab5
	}

	offset += nblocks * 16
	var k1, k2 uint64
	tailLen := length & 15
	switch {
	case tailLen >= 15:
		k2 ^= uint64(key[offset+14]) << 48
		fallthrough
	case tailLen >= 14:
		k2 ^= uint64(key[offset+13]) << 40
		fallthrough
	case tailLen >= 13:
		k2 ^= uint64(key[offset+12]) << 32
		fallthrough
	case tailLen >= 12:
		k2 ^= uint64(key[offset+11]) << 24
		fallthrough
	case tailLen >= 11:
		k2 ^= uint64(key[offset+10]) << 16
		fallthrough
	case tailLen >= 10:
		k2 ^= uint64(key[offset+9]) << 8
		fallthrough
	case tailLen >= 9:
		k2 ^= uint64(key[offset+8])
		k2 *= c2
		k2 = rotl64(k2, 33)
		k2 *= c1
		h2 ^= k2
	}
	switch {
	case tailLen >= 8:
		k1 ^= uint64(key[offset+7]) << 56
		fallthrough
	case tailLen >= 7:
		k1 ^= uint64(key[offset+6]) << 48
		fallthrough
	case tailLen >= 6:
		k1 ^= uint64(key[offset+5]) << 40
		fallthrough
	case tailLen >= 5:
		k1 ^= uint64(key[offset+4]) << 32
		fallthrough
	case tailLen >= 4:
		k1 ^= uint64(key[offset+3]) << 24
		fallthrough
	case tailLen >= 3:
		k1 ^= uint64(key[offset+2]) << 16
		fallthrough
	case tailLen >= 2:
		k1 ^= uint64(key[offset+1]) << 8
		fallthrough
	case tailLen >= 1:
		k1 ^= uint64(key[offset])
		k1 *= c1
		k1 = rotl64(k1, 31)
		k1 *= c2
		h1 ^= k1
	}

	h1 ^= uint64(length)
	h2 ^= uint64(length)
	h1 += h2
	h2 += h1
	h1 = fmix(h1)
	h2 = fmix(h2)
	h1 += h2
	h2 += h1

	return int64(h1 + h2)
}

// Hash returns the Murmur128-derived hashcode of value for the given seed, truncated
// to 32 bits like the original's `as i32`.
func Hash(value string, seed int32) int32 {
	return int32(innerHash([]byte(value), int64(seed)))
}
