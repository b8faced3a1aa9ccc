// Package textlog implements the line-buffered printf-style helper that
// packs free-form text into a blockfs file, and a compressing variant
// that batches lines through Zstandard before each Append.
package textlog

import (
	"fmt"

	"github.com/fieldkit/blockfs"
)

// maxPayload is the most text a single record can hold. The allocator only
// places a record that ends before the last byte of a block, so this is one
// block minus one Entry header minus one byte.
const maxPayload = 512 - blockfs.EntrySize - 1

// Writer accumulates text in a block-sized buffer and flushes it to a
// blockfs file as a single record, splitting longer writes across
// records as needed.
type Writer struct {
	fs   *blockfs.Filesystem
	file uint8
	buf  []byte
}

// New returns a Writer appending to file through fs.
func New(fs *blockfs.Filesystem, file uint8) *Writer {
	return &Writer{fs: fs, file: file, buf: make([]byte, 0, maxPayload)}
}

// Flush appends whatever is buffered as one record and clears the buffer.
// A call with nothing buffered is a no-op.
func (w *Writer) Flush() error {
	if len(w.buf) == 0 {
		return nil
	}
	data := w.buf
	w.buf = w.buf[:0]
	return w.fs.Append(w.file, data)
}

// AppendBinary appends p to the buffer, flushing as needed. If canSplit is
// false, p is kept whole in a single record — flushing first if p would
// not otherwise fit in what remains of the current buffer.
func (w *Writer) AppendBinary(p []byte, canSplit bool) error {
	if !canSplit && maxPayload-len(w.buf) < len(p) {
		if len(p) > maxPayload {
			return fmt.Errorf("textlog: %d bytes exceeds one record", len(p))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	for len(p) > 0 {
		available := maxPayload - len(w.buf)
		n := len(p)
		if n > available {
			n = available
		}
		w.buf = append(w.buf, p[:n]...)
		p = p[n:]

		if len(w.buf) >= maxPayload {
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Append appends s, allowed to split across records.
func (w *Writer) Append(s string) error {
	return w.AppendBinary([]byte(s), true)
}

// Printf formats and appends a message, allowed to split across records.
func (w *Writer) Printf(format string, args ...any) error {
	return w.Append(fmt.Sprintf(format, args...))
}
