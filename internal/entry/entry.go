// Package entry implements the on-media record header that precedes every
// payload in a data block, and the CRC chain used to validate it.
package entry

import (
	"github.com/fieldkit/blockfs/internal/crc16"
	"github.com/fieldkit/blockfs/internal/wire"
)

// Size is the on-media byte size of an Entry header: file(1) + size(2) +
// available(2) + crc(2).
const Size = 7

// sizeMinusCRC is the number of leading bytes covered by the CRC (everything
// but the trailing CRC field itself).
const sizeMinusCRC = Size - 2

// Entry is the decoded form of an on-media record header.
type Entry struct {
	File      uint8
	Size      uint16
	Available uint16
	CRC       uint16
}

// Encode writes e into dst[0:Size].
func (e Entry) Encode(dst []byte) {
	dst[0] = e.File
	wire.PutUint16(dst[1:3], e.Size)
	wire.PutUint16(dst[3:5], e.Available)
	wire.PutUint16(dst[5:7], e.CRC)
}

// Decode reads an Entry from src[0:Size].
func Decode(src []byte) Entry {
	return Entry{
		File:      src[0],
		Size:      wire.Uint16(src[1:3]),
		Available: wire.Uint16(src[3:5]),
		CRC:       wire.Uint16(src[5:7]),
	}
}

// RecordCRC computes the CRC-16 of an entry's header bytes (excluding the CRC
// field) and its payload, chained from the owning file's current version.
// The version seed is what makes a truncate (which bumps the version)
// invalidate every previously written record for that file without
// rewriting a single byte.
func RecordCRC(version uint16, entryBuf []byte, payload []byte) uint16 {
	crc := crc16.Update(version, entryBuf[:sizeMinusCRC])
	crc = crc16.Update(crc, payload)
	return crc
}

// Status classifies an entry found while scanning a block; the allocator
// and iterator share these status codes when deciding what to do with the
// entry they just read.
type Status int

const (
	// StatusGood means the entry and its CRC are both valid.
	StatusGood Status = iota
	// StatusSize means the entry's file/size/available fields are out of
	// range — the region from here on is treated as uninitialized.
	StatusSize
	// StatusCRC means the entry's fields are in range but its CRC does not
	// match — the region is corrupt or stale and safe to overwrite/skip.
	StatusCRC
)

// Check classifies the entry at the front of buf against filesMax and the
// owning file's current version, without regard to priority. Callers that
// care about overwrite eligibility layer that decision on top of a
// StatusGood result.
func Check(buf []byte, filesMax int, fileVersion func(file uint8) uint16, blockSize int) (Entry, Status) {
	e := Decode(buf)

	if int(e.File) >= filesMax {
		return e, StatusSize
	}
	if e.Size == 0 || int(e.Size) >= blockSize || e.Available == 0 || int(e.Available) >= blockSize {
		return e, StatusSize
	}

	payloadStart := Size
	payloadEnd := payloadStart + int(e.Size)
	if payloadEnd > len(buf) {
		return e, StatusSize
	}

	version := fileVersion(e.File)
	expected := RecordCRC(version, buf[:Size], buf[payloadStart:payloadEnd])
	if e.CRC != expected {
		return e, StatusCRC
	}

	return e, StatusGood
}
