package device

import "github.com/zeebo/xxh3"

// HashingDevice wraps a BlockDevice and maintains a running XXH3-64 digest
// per block as it is written, independent of blockfs's own CRC-16 record
// checksums. It exists so an out-of-band integrity sampler (cmd/blockfsck's
// -verify-writes mode) can flag a block whose bytes changed through some
// path other than blockfs itself — a raw `dd` overwrite, a bad sector
// remap, a test harness poking at the backing file directly — which a
// purely in-band CRC-16 over the same bytes could never distinguish from
// "blockfs wrote this."
type HashingDevice struct {
	base    BlockDevice
	digests map[uint32]uint64
}

// NewHashingDevice wraps base.
func NewHashingDevice(base BlockDevice) *HashingDevice {
	return &HashingDevice{base: base, digests: make(map[uint32]uint64)}
}

// ReadBlock implements BlockDevice.
func (d *HashingDevice) ReadBlock(n uint32, buf []byte) error {
	return d.base.ReadBlock(n, buf)
}

// WriteBlock implements BlockDevice and records the block's digest at the
// time of writing.
func (d *HashingDevice) WriteBlock(n uint32, buf []byte) error {
	if err := d.base.WriteBlock(n, buf); err != nil {
		return err
	}
	d.digests[n] = xxh3.Hash(buf)
	return nil
}

// BlockCount implements BlockDevice.
func (d *HashingDevice) BlockCount() uint32 {
	return d.base.BlockCount()
}

// VerifyBlock re-reads block n and reports whether its digest still matches
// the one recorded at the last WriteBlock. A block never written through
// this device returns ok=false, tracked=false.
func (d *HashingDevice) VerifyBlock(n uint32) (ok bool, tracked bool, err error) {
	want, tracked := d.digests[n]
	if !tracked {
		return false, false, nil
	}

	buf := make([]byte, BlockSize)
	if err := d.base.ReadBlock(n, buf); err != nil {
		return false, true, err
	}
	return xxh3.Hash(buf) == want, true, nil
}
