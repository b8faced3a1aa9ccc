package device

import (
	"errors"
	"slices"
)

// ErrInjectedWriteError is returned by FaultInjectingDevice when a write has
// been configured to fail outright.
var ErrInjectedWriteError = errors.New("device: injected write error")

// ErrInjectedReadError is returned by FaultInjectingDevice when a read has
// been configured to fail outright.
var ErrInjectedReadError = errors.New("device: injected read error")

// FaultInjectingDevice wraps a BlockDevice and lets tests simulate torn
// writes and power loss: writes are buffered into a shadow copy until
// Persist is called, so a test can write several blocks, "crash" by calling
// Crash, and observe that the underlying device only reflects the last
// persisted state.
type FaultInjectingDevice struct {
	base BlockDevice

	// pending holds blocks written since the last Persist, keyed by block
	// number, not yet visible to ReadBlock.
	pending map[uint32][]byte

	// tornAfter, if non-negative, truncates the NEXT WriteBlock's payload to
	// this many bytes before it reaches base, simulating a torn write that
	// stopped partway through a block. One-shot: reset to -1 after firing.
	tornAfter int

	failReads  bool
	failWrites bool
}

// NewFaultInjectingDevice wraps base.
func NewFaultInjectingDevice(base BlockDevice) *FaultInjectingDevice {
	return &FaultInjectingDevice{base: base, pending: make(map[uint32][]byte), tornAfter: -1}
}

// ReadBlock reads from the pending buffer if present, otherwise from base.
func (d *FaultInjectingDevice) ReadBlock(n uint32, buf []byte) error {
	if d.failReads {
		return ErrInjectedReadError
	}
	if p, ok := d.pending[n]; ok {
		copy(buf, p)
		return nil
	}
	return d.base.ReadBlock(n, buf)
}

// WriteBlock buffers the write in memory; it is not visible to readers of
// base until Persist, and is discarded entirely by Crash.
func (d *FaultInjectingDevice) WriteBlock(n uint32, buf []byte) error {
	if d.failWrites {
		return ErrInjectedWriteError
	}

	cp := make([]byte, len(buf))
	copy(cp, buf)
	if d.tornAfter >= 0 {
		for i := d.tornAfter; i < len(cp); i++ {
			cp[i] = 0
		}
		d.tornAfter = -1
	}

	d.pending[n] = cp
	return nil
}

// BlockCount implements BlockDevice.
func (d *FaultInjectingDevice) BlockCount() uint32 {
	return d.base.BlockCount()
}

// Persist commits every pending write to base, in ascending block order,
// then clears the pending set. Call this to simulate writes landing
// successfully.
func (d *FaultInjectingDevice) Persist() error {
	blocks := make([]uint32, 0, len(d.pending))
	for n := range d.pending {
		blocks = append(blocks, n)
	}
	slices.Sort(blocks)
	for _, n := range blocks {
		if err := d.base.WriteBlock(n, d.pending[n]); err != nil {
			return err
		}
	}
	d.pending = make(map[uint32][]byte)
	return nil
}

// Crash discards every pending write, simulating power loss before those
// blocks ever reached stable storage.
func (d *FaultInjectingDevice) Crash() {
	d.pending = make(map[uint32][]byte)
}

// TearNextWrite arranges for the next WriteBlock to be truncated to n bytes
// (the rest zero-filled) before it is buffered, simulating a torn write.
func (d *FaultInjectingDevice) TearNextWrite(n int) {
	d.tornAfter = n
}

// FailReads makes every subsequent ReadBlock return ErrInjectedReadError.
func (d *FaultInjectingDevice) FailReads(fail bool) {
	d.failReads = fail
}

// FailWrites makes every subsequent WriteBlock return ErrInjectedWriteError.
func (d *FaultInjectingDevice) FailWrites(fail bool) {
	d.failWrites = fail
}
