package blockfs

// options.go implements filesystem configuration options.

import (
	"github.com/fieldkit/blockfs/internal/header"
	"github.com/fieldkit/blockfs/internal/logging"
)

// Logger is an alias for the logging.Logger interface.
// This allows callers to pass their own logger implementation.
type Logger = logging.Logger

// FilesMax is the compile-time capacity of the filesystem: the number of
// named file slots carried in every header, not a runtime list, so the
// header's footprint stays static.
const FilesMax = header.FilesMax

// FileNameMax is the maximum length, in bytes, of a file's name.
const FileNameMax = header.FileNameMax

// EntrySize is the on-media byte size of an Entry header.
const EntrySize = 7

// HeaderSize is the on-media byte size of one superblock slot. Block 0
// holds two slots back to back, at byte offsets 0 and HeaderSize.
const HeaderSize = header.Size

// SeekBlocksMax bounds how many block advances allocateSlot will attempt
// before giving up with ErrNoSpace.
const SeekBlocksMax = 5

// Options holds mount-time configuration for a Filesystem.
type Options struct {
	// FirstBlock is the first block number used for data; block 0 is
	// reserved for the dual header and blocks below FirstBlock are left
	// untouched for unrelated partition data. Deployed loggers commonly
	// reserve blocks 6000-8000 this way.
	FirstBlock uint32

	// ReservedTailBlocks is the number of blocks at the end of the device
	// the allocator and iterator treat as unusable, wrapping back to
	// FirstBlock instead of writing into them. Made an explicit, documented
	// configuration value (default 2) rather than a hardcoded
	// "block_count-2" so a caller can tune it to their device's actual
	// bad-block or wear-leveling reserve.
	ReservedTailBlocks uint32

	// Logger receives diagnostic messages. If nil, logging.Discard is used.
	Logger Logger
}

// DefaultOptions returns Options with this package's field-tested defaults.
func DefaultOptions() *Options {
	return &Options{
		FirstBlock:         6000,
		ReservedTailBlocks: 2,
		Logger:             nil,
	}
}

// FileOptions are the per-file runtime settings supplied to InitializeFile.
// They are not persisted; a caller must supply the same priority/sync
// configuration on every mount.
type FileOptions struct {
	// Priority ranks this file's records against every other file's when
	// the allocator must decide whether to overwrite a resident record.
	// 0 is highest priority, 255 is lowest.
	Priority uint8

	// Sync, if true, makes every Append on this file flush before
	// returning.
	Sync bool
}

// DefaultFileOptions returns the lowest-priority, unsynced FileOptions.
func DefaultFileOptions() FileOptions {
	return FileOptions{Priority: 255, Sync: false}
}
