// Package header implements blockfs's dual-slot superblock: the FileRecord
// and Header on-media structs, their little-endian packed encoding, and the
// mount-time slot selection that gives the filesystem crash-safety.
package header

import (
	"github.com/fieldkit/blockfs/internal/crc16"
	"github.com/fieldkit/blockfs/internal/wire"
)

// FilesMax is the compile-time capacity of the filesystem: the number of
// named file slots carried in every header. It is a capacity parameter of
// the format, not a runtime list, so two header copies always fit in one
// 512-byte block.
const FilesMax = 4

// FileNameMax is the size in bytes of a FileRecord's name field, including
// its zero terminator budget.
const FileNameMax = 12

// fileRecordSize is the packed on-media size of one FileRecord:
// name(12) + version(2) + startBlock(4) + startOffset(2) + endBlock(4) +
// endOffset(2) + size(4) = 30 bytes.
const fileRecordSize = FileNameMax + 2 + 4 + 2 + 4 + 2 + 4

// Size is the packed on-media size of a Header: version(1) + generation(4) +
// block(4) + offset(2) + time(4) + files(FilesMax*fileRecordSize) + crc(2).
const Size = 1 + 4 + 4 + 2 + 4 + FilesMax*fileRecordSize + 2

// sizeMinusCRC is the number of leading bytes the header CRC is computed
// over — everything except the trailing CRC field.
const sizeMinusCRC = Size - 2

func init() {
	// A 512-byte block must hold both header slots.
	if 2*Size > 512 {
		panic("header: two header slots do not fit in one 512-byte block")
	}
}

// FileRecord is the persisted per-file extent and version bookkeeping
// carried inside the Header.
type FileRecord struct {
	Name        string
	Version     uint16
	StartBlock  uint32
	StartOffset uint16
	EndBlock    uint32
	EndOffset   uint16
	Size        uint32
}

// Header is the decoded form of blockfs's superblock, persisted twice over
// in block 0.
type Header struct {
	FormatVersion uint8
	Generation    uint32
	Block         uint32
	Offset        uint16
	Time          uint32
	Files         [FilesMax]FileRecord
	CRC           uint16
}

// ComputeCRC returns the header's CRC-16 over every field but CRC itself,
// seeded with crc16.HeaderSeed.
func (h *Header) ComputeCRC() uint16 {
	var buf [Size]byte
	h.encode(buf[:])
	return crc16.Update(crc16.HeaderSeed, buf[:sizeMinusCRC])
}

// UpdateCRC recomputes and stores the header's CRC field.
func (h *Header) UpdateCRC() {
	h.CRC = h.ComputeCRC()
}

// Valid reports whether the header's stored CRC matches its contents.
func (h *Header) Valid() bool {
	return h.CRC == h.ComputeCRC()
}

// encode writes every field except it does not recompute CRC; it encodes
// whatever is currently in h.CRC. Callers that need a fresh CRC must call
// UpdateCRC first.
func (h *Header) encode(dst []byte) {
	dst[0] = h.FormatVersion
	wire.PutUint32(dst[1:5], h.Generation)
	wire.PutUint32(dst[5:9], h.Block)
	wire.PutUint16(dst[9:11], h.Offset)
	wire.PutUint32(dst[11:15], h.Time)

	off := 15
	for i := range h.Files {
		f := &h.Files[i]
		wire.PutName(dst[off:off+FileNameMax], f.Name)
		off += FileNameMax
		wire.PutUint16(dst[off:off+2], f.Version)
		off += 2
		wire.PutUint32(dst[off:off+4], f.StartBlock)
		off += 4
		wire.PutUint16(dst[off:off+2], f.StartOffset)
		off += 2
		wire.PutUint32(dst[off:off+4], f.EndBlock)
		off += 4
		wire.PutUint16(dst[off:off+2], f.EndOffset)
		off += 2
		wire.PutUint32(dst[off:off+4], f.Size)
		off += 4
	}

	wire.PutUint16(dst[off:off+2], h.CRC)
}

// Encode writes the header, including a freshly computed CRC, into
// dst[0:Size].
func (h *Header) Encode(dst []byte) {
	h.UpdateCRC()
	h.encode(dst)
}

// Decode reads a Header from src[0:Size].
func Decode(src []byte) Header {
	var h Header
	h.FormatVersion = src[0]
	h.Generation = wire.Uint32(src[1:5])
	h.Block = wire.Uint32(src[5:9])
	h.Offset = wire.Uint16(src[9:11])
	h.Time = wire.Uint32(src[11:15])

	off := 15
	for i := range h.Files {
		f := &h.Files[i]
		f.Name = wire.Name(src[off : off+FileNameMax])
		off += FileNameMax
		f.Version = wire.Uint16(src[off : off+2])
		off += 2
		f.StartBlock = wire.Uint32(src[off : off+4])
		off += 4
		f.StartOffset = wire.Uint16(src[off : off+2])
		off += 2
		f.EndBlock = wire.Uint32(src[off : off+4])
		off += 4
		f.EndOffset = wire.Uint16(src[off : off+2])
		off += 2
		f.Size = wire.Uint32(src[off : off+4])
		off += 4
	}

	h.CRC = wire.Uint16(src[off : off+2])
	return h
}

// SlotOffset returns the byte offset of header slot idx (0 or 1) within
// block 0.
func SlotOffset(idx int) int {
	return idx * Size
}

// DecodeSlots reads both header slots out of a decoded block 0.
func DecodeSlots(block0 []byte) (slot0, slot1 Header) {
	slot0 = Decode(block0[SlotOffset(0):])
	slot1 = Decode(block0[SlotOffset(1):])
	return
}

// WriteSlot encodes h into slot idx of block0, leaving the other slot's
// bytes untouched.
func WriteSlot(block0 []byte, idx int, h *Header) {
	off := SlotOffset(idx)
	h.Encode(block0[off : off+Size])
}

// Select picks the slot to trust at mount time: the valid slot with the
// greatest generation, ties going to slot 1 so round-robin writes keep
// alternating. Returns the selected header, its slot index, and whether at
// least one slot validated (false means the device looks blank or both
// slots are corrupt, in which case the caller must initialize fresh state).
func Select(slot0, slot1 Header) (selected Header, idx int, ok bool) {
	v0, v1 := slot0.Valid(), slot1.Valid()
	switch {
	case v0 && v1:
		if slot0.Generation > slot1.Generation {
			return slot0, 0, true
		}
		// Ties go to slot 1 — canonical tie-break preserves round-robin.
		return slot1, 1, true
	case v0:
		return slot0, 0, true
	case v1:
		return slot1, 1, true
	default:
		return Header{}, 0, false
	}
}
