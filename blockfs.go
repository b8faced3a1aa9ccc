package blockfs

import (
	"fmt"

	"github.com/fieldkit/blockfs/device"
	"github.com/fieldkit/blockfs/internal/header"
	"github.com/fieldkit/blockfs/internal/logging"
)

// Filesystem is the single aggregate value that owns the mounted header,
// the one cached data block, and the per-file runtime settings. The
// cached-block pattern is a field of this aggregate, never a package-level
// global, so multiple Filesystems can mount distinct devices concurrently.
type Filesystem struct {
	dev   device.BlockDevice
	clock device.Clock
	rng   device.RNG
	opts  Options

	header      header.Header
	headerIndex int

	names        [FilesMax]string
	fileOpts     [FilesMax]FileOptions
	fileRegistered [FilesMax]bool

	mounted bool

	cacheValid bool
	cacheBlock uint32
	cacheDirty bool
	cache      [device.BlockSize]byte
}

// New creates a Filesystem bound to dev, clock, and rng, with zeroed
// runtime state. Mounting happens later via InitializeFile and Initialize.
func New(dev device.BlockDevice, clock device.Clock, rng device.RNG, opts *Options) *Filesystem {
	if opts == nil {
		opts = DefaultOptions()
	}
	fs := &Filesystem{
		dev:   dev,
		clock: clock,
		rng:   rng,
		opts:  *opts,
	}
	for i := range fs.fileOpts {
		fs.fileOpts[i] = DefaultFileOptions()
	}
	return fs
}

func (fs *Filesystem) logger() Logger {
	return logging.OrDefault(fs.opts.Logger)
}

// InitializeFile registers file slot id with a name and runtime settings
// before mount. Names are static configuration, not persisted identity:
// Initialize re-projects them over whatever was loaded from media.
func (fs *Filesystem) InitializeFile(id uint8, name string, fo FileOptions) error {
	if int(id) >= FilesMax {
		return fmt.Errorf("blockfs: file id %d: %w", id, ErrInvalidArgument)
	}
	fs.names[id] = name
	fs.fileOpts[id] = fo
	fs.fileRegistered[id] = true
	return nil
}

// Initialize mounts the filesystem: it reads block 0, selects a valid
// header slot (or initializes a fresh one if wipe is set or the device
// looks blank), and makes the Filesystem ready for Append/Iterate.
func (fs *Filesystem) Initialize(wipe bool) error {
	var buf [device.BlockSize]byte
	if err := fs.dev.ReadBlock(0, buf[:]); err != nil {
		return fmt.Errorf("blockfs: read header block: %w: %v", ErrIoError, err)
	}

	slot0, slot1 := header.DecodeSlots(buf[:])
	_, _, ok := header.Select(slot0, slot1)

	if wipe || !ok {
		if wipe {
			if er, isEraser := fs.dev.(device.Eraser); isEraser {
				last := fs.dev.BlockCount() - fs.opts.ReservedTailBlocks - 1
				if err := er.EraseRange(fs.opts.FirstBlock, last); err != nil {
					fs.logger().Warnf("%serase blocks %d-%d: %v", logging.NSMount, fs.opts.FirstBlock, last, err)
				}
			}
		}
		return fs.initializeFresh(buf[:])
	}

	selected, idx, _ := header.Select(slot0, slot1)
	for i := uint8(0); i < FilesMax; i++ {
		if fs.fileRegistered[i] {
			selected.Files[i].Name = fs.names[i]
		}
	}

	fs.header = selected
	fs.headerIndex = idx
	fs.mounted = true
	fs.cacheValid = false
	fs.cacheDirty = false

	fs.logger().Infof("%smounted generation=%d headerIndex=%d block=%d offset=%d",
		logging.NSMount, fs.header.Generation, fs.headerIndex, fs.header.Block, fs.header.Offset)
	return nil
}

// initializeFresh builds a brand-new header and writes both slots, giving
// the final mounted state generation=1, headerIndex=1, so a later reader
// finds a CRC-valid slot with a known generation ordering.
func (fs *Filesystem) initializeFresh(buf []byte) error {
	h := header.Header{
		FormatVersion: 1,
		Generation:    0,
		Block:         fs.opts.FirstBlock,
		Offset:        0,
		Time:          fs.clock.Millis(),
	}
	for i := uint8(0); i < FilesMax; i++ {
		if !fs.fileRegistered[i] {
			continue
		}
		h.Files[i] = header.FileRecord{
			Name:        fs.names[i],
			Version:     fs.rng.Uint16n(0xFFFF),
			StartBlock:  fs.opts.FirstBlock,
			StartOffset: 0,
			EndBlock:    fs.opts.FirstBlock,
			EndOffset:   0,
			Size:        0,
		}
	}

	header.WriteSlot(buf, 0, &h)
	if err := fs.dev.WriteBlock(0, buf); err != nil {
		return fmt.Errorf("blockfs: write header slot 0: %w: %v", ErrIoError, err)
	}

	h.Generation = 1
	header.WriteSlot(buf, 1, &h)
	if err := fs.dev.WriteBlock(0, buf); err != nil {
		return fmt.Errorf("blockfs: write header slot 1: %w: %v", ErrIoError, err)
	}

	fs.header = h
	fs.headerIndex = 1
	fs.mounted = true
	fs.cacheValid = false
	fs.cacheDirty = false

	fs.logger().Infof("%sinitialized fresh header at block=%d", logging.NSMount, fs.opts.FirstBlock)
	return nil
}

// Touch updates the header's timestamp field and writes only the header —
// the cached data block is left untouched.
func (fs *Filesystem) Touch(timeVal uint32) error {
	if !fs.mounted {
		return ErrNotMounted
	}
	fs.header.Time = timeVal
	return fs.writeHeaderSlot(fs.headerIndex)
}

// writeHeaderSlot reads block 0 so the untouched slot is preserved, updates
// the CRC, copies the in-memory header into slot idx, and writes block 0
// back.
func (fs *Filesystem) writeHeaderSlot(idx int) error {
	var buf [device.BlockSize]byte
	if err := fs.dev.ReadBlock(0, buf[:]); err != nil {
		return fmt.Errorf("blockfs: read header block: %w: %v", ErrIoError, err)
	}
	header.WriteSlot(buf[:], idx, &fs.header)
	if err := fs.dev.WriteBlock(0, buf[:]); err != nil {
		return fmt.Errorf("blockfs: write header block: %w: %v", ErrIoError, err)
	}
	return nil
}

// Flush is the public sync operation. If the cache is clean, Flush returns
// success without touching the device or advancing generation — burning a
// generation on a no-op flush would make the dual-header protocol's
// ordering signal noisy.
func (fs *Filesystem) Flush() error {
	if !fs.mounted {
		return ErrNotMounted
	}
	if !fs.cacheDirty {
		return nil
	}

	if err := fs.dev.WriteBlock(fs.cacheBlock, fs.cache[:]); err != nil {
		return fmt.Errorf("blockfs: write data block %d: %w: %v", fs.cacheBlock, ErrIoError, err)
	}
	fs.cacheDirty = false
	fs.cacheValid = false

	fs.header.Generation++
	newIdx := 1 - fs.headerIndex
	if err := fs.writeHeaderSlot(newIdx); err != nil {
		return err
	}
	fs.headerIndex = newIdx

	fs.logger().Debugf("%sflushed generation=%d headerIndex=%d", logging.NSSync, fs.header.Generation, fs.headerIndex)
	return nil
}

// ensureBlock loads block n into the cache if it is not already there,
// flushing a dirty cache of a DIFFERENT block first so a dirty block is
// never silently evicted. The iterator may load blocks into the cache too,
// and relies on this same flush-before-evict rule.
func (fs *Filesystem) ensureBlock(n uint32) error {
	if fs.cacheValid && fs.cacheBlock == n {
		return nil
	}
	if fs.cacheValid && fs.cacheDirty {
		if err := fs.Flush(); err != nil {
			return err
		}
	}
	if err := fs.dev.ReadBlock(n, fs.cache[:]); err != nil {
		return fmt.Errorf("blockfs: read data block %d: %w: %v", n, ErrIoError, err)
	}
	fs.cacheValid = true
	fs.cacheBlock = n
	fs.cacheDirty = false
	return nil
}

// fileVersion returns file's current version, for use as the CRC chain
// seed by internal/entry.Check.
func (fs *Filesystem) fileVersion(file uint8) uint16 {
	if int(file) >= FilesMax {
		return 0
	}
	return fs.header.Files[file].Version
}

func (fs *Filesystem) checkFile(id uint8) error {
	if int(id) >= FilesMax || !fs.fileRegistered[id] {
		return fmt.Errorf("blockfs: file id %d: %w", id, ErrUnknownFile)
	}
	return nil
}
