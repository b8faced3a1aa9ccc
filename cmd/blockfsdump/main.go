// Command blockfsdump inspects a blockfs device image: it decodes the
// header slots in block 0 and walks the data blocks, printing each entry
// it finds and the classification (good/size/crc) of anything it can't
// validate.
//
// Usage:
//
//	blockfsdump -file=<path> -blocks=<n> [options]
//
// Commands (-command):
//
//	header    Show both header slots and which one mount would select
//	scan      Walk blocks and print every entry found (default)
//	payload   Print one record's payload, sniffing common compression
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/fieldkit/blockfs"
	"github.com/fieldkit/blockfs/device"
	"github.com/fieldkit/blockfs/internal/compression"
	"github.com/fieldkit/blockfs/internal/entry"
	"github.com/fieldkit/blockfs/internal/header"
)

var (
	filePath   = flag.String("file", "", "Path to the device image (required)")
	blockCount = flag.Uint64("blocks", 16384, "Total block count of the image")
	command    = flag.String("command", "scan", "Command: header, scan, payload")
	firstBlock = flag.Uint64("first-block", 6000, "First data block (matches the mounted Options.FirstBlock)")
	tailBlocks = flag.Uint64("tail-blocks", 2, "Reserved tail block count (matches Options.ReservedTailBlocks)")
	maxBlocks  = flag.Int("max-blocks", 0, "Stop scanning after this many blocks (0 = unbounded)")
	atBlock    = flag.Uint64("at-block", 0, "Block number for -command=payload")
	atOffset   = flag.Uint64("at-offset", 0, "Byte offset within -at-block for -command=payload")
)

func main() {
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "Error: -file flag is required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	dev, err := device.OpenFileDevice(*filePath, uint32(*blockCount))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer dev.Close()

	var cmdErr error
	switch *command {
	case "header":
		cmdErr = cmdHeader(dev)
	case "scan":
		cmdErr = cmdScan(dev)
	case "payload":
		cmdErr = cmdPayload(dev)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", *command)
		os.Exit(1)
	}

	if cmdErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", cmdErr)
		os.Exit(1)
	}
}

func cmdHeader(dev *device.FileDevice) error {
	var buf [device.BlockSize]byte
	if err := dev.ReadBlock(0, buf[:]); err != nil {
		return fmt.Errorf("read block 0: %w", err)
	}

	slot0, slot1 := header.DecodeSlots(buf[:])
	printSlot(0, slot0)
	printSlot(1, slot1)

	selected, idx, ok := header.Select(slot0, slot1)
	if !ok {
		fmt.Println("no valid slot; a mount would initialize fresh state")
		return nil
	}
	fmt.Printf("mount would select slot %d: generation=%d block=%d offset=%d\n",
		idx, selected.Generation, selected.Block, selected.Offset)
	return nil
}

func printSlot(idx int, h header.Header) {
	fmt.Printf("slot %d: valid=%v generation=%d block=%d offset=%d time=%d\n",
		idx, h.Valid(), h.Generation, h.Block, h.Offset, h.Time)
	for i, f := range h.Files {
		if f.Name == "" {
			continue
		}
		fmt.Printf("  file %d %q: version=%d start=%d:%d end=%d:%d size=%d\n",
			i, f.Name, f.Version, f.StartBlock, f.StartOffset, f.EndBlock, f.EndOffset, f.Size)
	}
}

func cmdScan(dev *device.FileDevice) error {
	var hbuf [device.BlockSize]byte
	if err := dev.ReadBlock(0, hbuf[:]); err != nil {
		return fmt.Errorf("read block 0: %w", err)
	}
	slot0, slot1 := header.DecodeSlots(hbuf[:])
	selected, _, ok := header.Select(slot0, slot1)
	if !ok {
		return fmt.Errorf("no valid header slot")
	}

	versions := func(file uint8) uint16 {
		if int(file) >= len(selected.Files) {
			return 0
		}
		return selected.Files[file].Version
	}

	tail := uint32(*blockCount) - uint32(*tailBlocks)
	block := uint32(*firstBlock)
	visited := 0

	var buf [device.BlockSize]byte
	for block > 0 && block <= selected.Block {
		if *maxBlocks > 0 && visited >= *maxBlocks {
			break
		}
		if err := dev.ReadBlock(block, buf[:]); err != nil {
			return fmt.Errorf("read block %d: %w", block, err)
		}

		offset := 0
		for offset+entry.Size < 512 {
			e, status := entry.Check(buf[offset:], blockfs.FilesMax, versions, 512)
			switch status {
			case entry.StatusGood:
				fmt.Printf("block=%d offset=%d file=%d size=%d good\n", block, offset, e.File, e.Size)
				offset += entry.Size + int(e.Available)
			case entry.StatusCRC:
				fmt.Printf("block=%d offset=%d file=%d size=%d crc-mismatch\n", block, offset, e.File, e.Size)
				offset += entry.Size + int(e.Available)
			case entry.StatusSize:
				fmt.Printf("block=%d offset=%d end-of-block\n", block, offset)
				offset = 512
			}
		}

		block++
		visited++
		if block >= tail {
			block = uint32(*firstBlock)
		}
	}
	return nil
}

func cmdPayload(dev *device.FileDevice) error {
	var buf [device.BlockSize]byte
	if err := dev.ReadBlock(uint32(*atBlock), buf[:]); err != nil {
		return fmt.Errorf("read block %d: %w", *atBlock, err)
	}

	offset := int(*atOffset)
	e := entry.Decode(buf[offset:])
	payload := buf[offset+entry.Size : offset+entry.Size+int(e.Size)]

	fmt.Printf("file=%d size=%d available=%d\n", e.File, e.Size, e.Available)

	// Try each codec textlog is known to batch records with, in the order
	// a magic-byte sniff would: Snappy and Zstd both self-describe their
	// frames, so a wrong guess fails fast; LZ4's raw block format has no
	// header at all, so it's tried last and can spuriously succeed on
	// plain text, which is why it's the fallback rather than the first
	// guess.
	for _, typ := range []compression.Type{compression.SnappyCompression, compression.ZstdCompression, compression.LZ4Compression} {
		if out, err := compression.DecompressWithSize(typ, payload, len(payload)*8+256); err == nil {
			fmt.Printf("%s-decoded:\n", typ)
			fmt.Println(hex.Dump(out))
			return nil
		}
	}

	fmt.Println("raw:")
	fmt.Println(hex.Dump(payload))
	return nil
}
