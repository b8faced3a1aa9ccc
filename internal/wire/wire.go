// Package wire provides the little-endian, zero-padding fixed-width encoding
// primitives that back blockfs's on-media structs (Header, FileRecord, Entry).
// There is no variable-length data in the on-media layout, so no varint
// machinery here, just fixed-width integers and zero-padded name fields.
package wire

import "encoding/binary"

// PutUint16 writes v as little-endian into dst[0:2].
func PutUint16(dst []byte, v uint16) {
	binary.LittleEndian.PutUint16(dst, v)
}

// Uint16 reads a little-endian uint16 from src[0:2].
func Uint16(src []byte) uint16 {
	return binary.LittleEndian.Uint16(src)
}

// PutUint32 writes v as little-endian into dst[0:4].
func PutUint32(dst []byte, v uint32) {
	binary.LittleEndian.PutUint32(dst, v)
}

// Uint32 reads a little-endian uint32 from src[0:4].
func Uint32(src []byte) uint32 {
	return binary.LittleEndian.Uint32(src)
}

// PutName copies s into dst, zero-padding or truncating to len(dst).
// Mirrors the firmware's strncpy-into-fixed-buffer semantics: a name shorter
// than the field is zero terminated, a name as long as the field has no
// trailing zero terminator guaranteed.
func PutName(dst []byte, s string) {
	clear(dst)
	n := copy(dst, s)
	_ = n
}

// Name returns the zero-terminated ASCII string stored in src.
func Name(src []byte) string {
	for i, b := range src {
		if b == 0 {
			return string(src[:i])
		}
	}
	return string(src)
}
