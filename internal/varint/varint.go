// Package varint implements the unsigned and zig-zag signed LEB128 variable-length
// integer codec used throughout the TsFile wire format (spec §4.1), plus the format's
// var_str length-prefix quirk (len(s)+2, not a plain length).
package varint

import "encoding/binary"

// AppendU32 appends the unsigned LEB128 encoding of v to dst and returns the result.
func AppendU32(dst []byte, v uint32) []byte {
	return binary.AppendUvarint(dst, uint64(v))
}

// SizeU32 returns the number of bytes AppendU32 would produce for v, without writing.
func SizeU32(v uint32) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// ZigZag32 maps a signed 32-bit integer to an unsigned one so that small-magnitude
// values (positive or negative) encode to few bytes.
func ZigZag32(n int32) uint32 {
	return uint32((n << 1) ^ (n >> 31))
}

// UnZigZag32 reverses ZigZag32.
func UnZigZag32(u uint32) int32 {
	return int32(u>>1) ^ -int32(u&1)
}

// AppendI32 appends the zig-zag LEB128 encoding of n to dst.
func AppendI32(dst []byte, n int32) []byte {
	return AppendU32(dst, ZigZag32(n))
}

// SizeI32 returns the number of bytes AppendI32 would produce for n.
func SizeI32(n int32) int {
	return SizeU32(ZigZag32(n))
}

// ReadU32 decodes an unsigned LEB128 value from data starting at offset, returning the
// value, the offset just past it, and whether decoding succeeded.
func ReadU32(data []byte, offset int) (uint32, int, bool) {
	if offset < 0 || offset > len(data) {
		return 0, offset, false
	}
	v, n := binary.Uvarint(data[offset:])
	if n <= 0 {
		return 0, offset, false
	}
	return uint32(v), offset + n, true
}

// ReadI32 decodes a zig-zag LEB128 value from data starting at offset.
func ReadI32(data []byte, offset int) (int32, int, bool) {
	u, next, ok := ReadU32(data, offset)
	if !ok {
		return 0, offset, false
	}
	return UnZigZag32(u), next, true
}

// VarStringLen returns the wire length-prefix byte for a string of length n: the
// format encodes len(s)+2 instead of a plain length (spec §6 var_str grammar).
func VarStringLen(n int) byte {
	return byte(n + 2)
}

// AppendString appends a TsFile var_str: a single length byte (len(s)+2) followed by
// the raw bytes of s.
func AppendString(dst []byte, s string) []byte {
	dst = append(dst, VarStringLen(len(s)))
	return append(dst, s...)
}

// SizeString returns the number of bytes AppendString would produce for s.
func SizeString(s string) int {
	return 1 + len(s)
}
