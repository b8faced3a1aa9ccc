package textlog

import (
	"bytes"
	"fmt"

	"github.com/fieldkit/blockfs"
	"github.com/fieldkit/blockfs/internal/compression"
)

// CompressWriter batches printf-style text in memory and, on Flush,
// compresses the whole batch with Zstandard before handing it to the
// underlying Writer as a single record. Useful for a verbose diagnostic
// stream where raw text would otherwise burn many low-priority records.
type CompressWriter struct {
	w   *Writer
	raw bytes.Buffer
}

// NewCompressWriter returns a CompressWriter appending to file through fs.
func NewCompressWriter(fs *blockfs.Filesystem, file uint8) *CompressWriter {
	return &CompressWriter{w: New(fs, file)}
}

// Printf formats args into the in-memory batch without touching the
// device; call Flush to compress and persist.
func (c *CompressWriter) Printf(format string, args ...any) {
	fmt.Fprintf(&c.raw, format, args...)
}

// Flush compresses the accumulated batch and appends it as one record.
// A call with nothing batched is a no-op.
func (c *CompressWriter) Flush() error {
	if c.raw.Len() == 0 {
		return nil
	}
	compressed, err := compression.Compress(compression.ZstdCompression, c.raw.Bytes())
	if err != nil {
		return err
	}
	c.raw.Reset()
	if err := c.w.AppendBinary(compressed, false); err != nil {
		return err
	}
	return c.w.Flush()
}
