package device

import (
	"fmt"
	"os"
)

// FileDevice is a BlockDevice backed by a regular OS file, standing in for
// a raw SD card block range when blockfs runs on a host OS (development,
// golden-image inspection, or a Linux-hosted gateway instead of bare-metal
// firmware).
type FileDevice struct {
	f          *os.File
	blockCount uint32
}

// OpenFileDevice opens (creating if necessary) path as a block device with
// the given total block count, growing the file to blockCount*BlockSize if
// it is smaller.
func OpenFileDevice(path string, blockCount uint32) (*FileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("device: open %s: %w", path, err)
	}

	size := int64(blockCount) * BlockSize
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("device: stat %s: %w", path, err)
	}
	if info.Size() < size {
		if err := f.Truncate(size); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("device: grow %s: %w", path, err)
		}
	}

	return &FileDevice{f: f, blockCount: blockCount}, nil
}

// ReadBlock implements BlockDevice.
func (d *FileDevice) ReadBlock(n uint32, buf []byte) error {
	if n >= d.blockCount {
		return ErrOutOfRange
	}
	_, err := d.f.ReadAt(buf[:BlockSize], int64(n)*BlockSize)
	return err
}

// WriteBlock implements BlockDevice.
func (d *FileDevice) WriteBlock(n uint32, buf []byte) error {
	if n >= d.blockCount {
		return ErrOutOfRange
	}
	_, err := d.f.WriteAt(buf[:BlockSize], int64(n)*BlockSize)
	return err
}

// BlockCount implements BlockDevice.
func (d *FileDevice) BlockCount() uint32 {
	return d.blockCount
}

// EraseRange implements Eraser by zero-filling the range.
func (d *FileDevice) EraseRange(first, last uint32) error {
	var zero [BlockSize]byte
	for n := first; n <= last && n < d.blockCount; n++ {
		if _, err := d.f.WriteAt(zero[:], int64(n)*BlockSize); err != nil {
			return err
		}
	}
	return nil
}

// Sync flushes the underlying file to stable storage.
func (d *FileDevice) Sync() error {
	return d.f.Sync()
}

// Close closes the underlying file.
func (d *FileDevice) Close() error {
	return d.f.Close()
}
