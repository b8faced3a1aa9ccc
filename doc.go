/*
Package blockfs implements a small, crash-tolerant, append-mostly
log-structured filesystem for embedded data loggers writing to a raw block
device — typically an SD card accessed without a conventional filesystem.

It stores a fixed, small number of named "files" as interleaved records in
a single block stream, where each record carries its own length and
checksum. The design favors single-writer embedded use with one
block-sized RAM buffer, frequent power loss, and a mix of write streams of
different importance (a low-priority text log and high-priority sensor
data, say) sharing the same physical media.

# Usage

A caller constructs a Filesystem, registers its file slots with
InitializeFile, then calls Initialize to mount:

	fs := blockfs.New(dev, clock, rng, blockfs.DefaultOptions())
	fs.InitializeFile(0, "sensors", blockfs.FileOptions{Priority: 0, Sync: true})
	fs.InitializeFile(1, "log", blockfs.FileOptions{Priority: 255, Sync: false})
	if err := fs.Initialize(false); err != nil {
		log.Fatal(err)
	}
	if err := fs.Append(0, payload); err != nil {
		log.Fatal(err)
	}

# Concurrency

A Filesystem is single-threaded and cooperative: exactly one writer and
one iterator are expected at a time, driven from the same goroutine.
There is no internal locking.

# Compatibility

The on-media layout — dual-header superblock, CRC-16 nibble table, packed
little-endian structs — is bit-compatible with the C firmware that writes
these same devices in the field, so a card can move between a logger and
this package's tools without reformatting.
*/
package blockfs
