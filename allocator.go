package blockfs

import (
	"fmt"

	"github.com/fieldkit/blockfs/internal/entry"
)

// Append writes data as a new record for file id, finding a slot via
// allocateSlot (possibly overwriting a lower-priority resident record),
// and flushing afterward if the file's Sync option is set.
func (fs *Filesystem) Append(id uint8, data []byte) error {
	if !fs.mounted {
		return ErrNotMounted
	}
	if err := fs.checkFile(id); err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("blockfs: append file %d: empty payload: %w", id, ErrInvalidArgument)
	}
	required := entry.Size + len(data)
	if required > 512 {
		return fmt.Errorf("blockfs: append file %d: %d bytes too large for a block: %w", id, len(data), ErrInvalidArgument)
	}

	if err := fs.allocateSlot(id, required); err != nil {
		return err
	}

	offset := int(fs.header.Offset)
	version := fs.header.Files[id].Version

	var entryBuf [entry.Size]byte
	e := entry.Entry{File: id, Size: uint16(len(data)), Available: uint16(len(data))}
	e.Encode(entryBuf[:])
	e.CRC = entry.RecordCRC(version, entryBuf[:], data)
	e.Encode(entryBuf[:])

	copy(fs.cache[offset:offset+entry.Size], entryBuf[:])
	copy(fs.cache[offset+entry.Size:offset+required], data)
	fs.cacheDirty = true

	fs.header.Offset += uint16(required)
	fr := &fs.header.Files[id]
	fr.EndBlock = fs.header.Block
	fr.EndOffset = fs.header.Offset
	fr.Size += uint32(len(data))

	if fs.fileOpts[id].Sync {
		return fs.Flush()
	}
	return nil
}

// allocateSlot finds a block and offset able to hold required bytes,
// advancing through at most SeekBlocksMax blocks before giving up with
// ErrNoSpace.
func (fs *Filesystem) allocateSlot(id uint8, required int) error {
	newOffset := int(fs.header.Offset)
	visited := 0

	for {
		if newOffset+required > 512 {
			if fs.cacheDirty {
				if err := fs.Flush(); err != nil {
					return err
				}
			}
			fs.header.Block++
			fs.header.Offset = 0
			visited++

			tail := fs.dev.BlockCount() - fs.opts.ReservedTailBlocks
			if fs.header.Block >= tail {
				fs.header.Block = fs.opts.FirstBlock
			}
			newOffset = 0

			if visited > SeekBlocksMax {
				return fmt.Errorf("blockfs: append file %d: %w", id, ErrNoSpace)
			}
		}

		if err := fs.ensureBlock(fs.header.Block); err != nil {
			return err
		}

		offset, ok, err := fs.scanForSlot(id, required, newOffset)
		if err != nil {
			return err
		}
		if ok {
			fs.header.Offset = uint16(offset)
			return nil
		}

		newOffset = 512
	}
}

// scanForSlot walks entries in the cached block from "from" looking for a
// usable offset, skipping past intact, higher-or-equal-priority records.
func (fs *Filesystem) scanForSlot(id uint8, required, from int) (offset int, ok bool, err error) {
	requestingPriority := fs.fileOpts[id].Priority
	offset = from

	for offset+required < 512 {
		e, status := entry.Check(fs.cache[offset:], FilesMax, fs.fileVersion, 512)

		switch status {
		case entry.StatusSize, entry.StatusCRC:
			return offset, true, nil
		case entry.StatusGood:
			residentPriority := fs.fileOpts[e.File].Priority
			// Lower numeric priority value means higher priority. The
			// comparison is against e.Available directly, not required
			// minus the entry header — the resident slot's reserved
			// payload capacity alone gates the overwrite.
			if residentPriority > requestingPriority && e.Available >= uint16(required) {
				return offset, true, nil
			}
			offset += entry.Size + int(e.Available)
		}
	}

	return offset, false, nil
}
