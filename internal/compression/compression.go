// Package compression wraps the compression algorithms blockfs's own
// ambient tooling uses: textlog's on-device text log compression and
// cmd/blockfsdump's payload-preview decompression. The core block stream
// itself is never compressed.
//
// Only the codecs actually exercised by those two call sites are wired
// in: Snappy and Zstd (both self-describing, used by blockfsdump's
// format sniff) and LZ4/LZ4HC (the raw block format, likewise sniffed).
// A generic Type enumeration that also carried BZip2 and Xpress branches
// existed upstream of this package's ancestry; neither had a Go library
// in reach of anything blockfs does, so there was no payload either could
// ever actually decode here — they're not reproduced.
package compression

import (
	"fmt"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type identifies a wire-compatible compression codec.
type Type uint8

const (
	// NoCompression passes data through unchanged.
	NoCompression Type = 0x0

	// SnappyCompression uses Google Snappy.
	SnappyCompression Type = 0x1

	// LZ4Compression uses LZ4's raw block format at default speed.
	LZ4Compression Type = 0x4

	// LZ4HCCompression uses LZ4's raw block format at high-compression
	// mode. Decompression is identical to LZ4Compression; only Compress
	// picks a different (slower, denser) encoder.
	LZ4HCCompression Type = 0x5

	// ZstdCompression uses Zstandard.
	ZstdCompression Type = 0x7
)

// String returns the codec's human-readable name.
func (t Type) String() string {
	switch t {
	case NoCompression:
		return "NoCompression"
	case SnappyCompression:
		return "Snappy"
	case LZ4Compression:
		return "LZ4"
	case LZ4HCCompression:
		return "LZ4HC"
	case ZstdCompression:
		return "ZSTD"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// IsSupported reports whether Compress/Decompress implement t.
func (t Type) IsSupported() bool {
	switch t {
	case NoCompression, SnappyCompression, LZ4Compression, LZ4HCCompression, ZstdCompression:
		return true
	default:
		return false
	}
}

// Compress encodes data with codec t.
func Compress(t Type, data []byte) ([]byte, error) {
	switch t {
	case NoCompression:
		return data, nil
	case SnappyCompression:
		return snappy.Encode(nil, data), nil
	case LZ4Compression:
		return compressLZ4(data, false)
	case LZ4HCCompression:
		return compressLZ4(data, true)
	case ZstdCompression:
		return compressZstd(data, zstd.SpeedDefault)
	default:
		return nil, fmt.Errorf("unsupported compression type: %s", t)
	}
}

// compressLZ4 encodes data in LZ4's raw block format (not the LZ4 frame
// format, which carries its own magic bytes and headers blockfs doesn't
// need). highCompression selects LZ4HC, which trades encode speed for a
// denser block; the block format it produces decodes the same way.
func compressLZ4(data []byte, highCompression bool) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	var ht [1 << 16]int

	var n int
	var err error
	if highCompression {
		n, err = lz4.CompressBlockHC(data, dst, lz4.CompressionLevel(9), ht[:], nil)
	} else {
		n, err = lz4.CompressBlock(data, dst, ht[:])
	}
	if err != nil {
		return nil, fmt.Errorf("lz4 compress block: %w", err)
	}
	if n == 0 {
		// Incompressible input: LZ4 reports this rather than emitting an
		// expanded block.
		return nil, nil
	}
	return dst[:n], nil
}

func compressZstd(data []byte, level zstd.EncoderLevel) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	return encoder.EncodeAll(data, nil), nil
}

// Decompress decodes data with codec t. For LZ4/LZ4HC, prefer
// DecompressWithSize when the uncompressed size is known, since the raw
// block format carries no length prefix to recover it from.
func Decompress(t Type, data []byte) ([]byte, error) {
	return DecompressWithSize(t, data, 0)
}

// DecompressWithSize decodes data with codec t, given an expected
// uncompressed size (ignored by every codec except LZ4/LZ4HC, where 0
// falls back to a slower grow-and-retry probe).
func DecompressWithSize(t Type, data []byte, expectedSize int) ([]byte, error) {
	switch t {
	case NoCompression:
		return data, nil
	case SnappyCompression:
		return snappy.Decode(nil, data)
	case LZ4Compression, LZ4HCCompression:
		return decompressLZ4(data, expectedSize)
	case ZstdCompression:
		return decompressZstd(data)
	default:
		return nil, fmt.Errorf("unsupported compression type: %s", t)
	}
}

// decompressLZ4 decodes LZ4 raw block data. Without a known size it
// probes with progressively larger buffers, since the raw block format
// has no length prefix to read one from up front.
func decompressLZ4(data []byte, expectedSize int) ([]byte, error) {
	if expectedSize > 0 {
		dst := make([]byte, expectedSize)
		n, err := lz4.UncompressBlock(data, dst)
		if err != nil {
			return nil, fmt.Errorf("lz4 uncompress block: %w", err)
		}
		return dst[:n], nil
	}

	bufSize := max(len(data)*4, 256)
	for range 10 {
		dst := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, dst)
		if err == nil {
			return dst[:n], nil
		}
		bufSize *= 2
	}
	return nil, fmt.Errorf("lz4 uncompress block: buffer too small after retries")
}

func decompressZstd(data []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	defer decoder.Close()
	return decoder.DecodeAll(data, nil)
}
