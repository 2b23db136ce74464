package common

import (
	"encoding/binary"
	"math"
)

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// PutFloat32s writes each value as a little-endian IEEE 754 float32 into buf
// starting at offset, and returns the offset following the last written value.
//
// Parameters:
//   - buf: destination buffer
//   - offset: byte offset of the first value
//   - values: the values to write
//
// Returns:
//   - int: the byte offset after the last written value
func PutFloat32s(buf []byte, offset int, values ...float32) int {
	for _, v := range values {
		binary.LittleEndian.PutUint32(buf[offset:offset+4], math.Float32bits(v))
		offset += 4
	}
	return offset
}

// PutUint32s writes each value as a little-endian uint32 into buf starting at
// offset, and returns the offset following the last written value.
//
// Parameters:
//   - buf: destination buffer
//   - offset: byte offset of the first value
//   - values: the values to write
//
// Returns:
//   - int: the byte offset after the last written value
func PutUint32s(buf []byte, offset int, values ...uint32) int {
	for _, v := range values {
		binary.LittleEndian.PutUint32(buf[offset:offset+4], v)
		offset += 4
	}
	return offset
}

// Float32At reads the little-endian float32 stored at offset.
func Float32At(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset : offset+4]))
}
