package blockfs

import (
	"fmt"

	"github.com/fieldkit/blockfs/internal/entry"
)

// IteratorToken is the resumable position of an Iterator: a caller can
// save it, persist it elsewhere, and later hand it to Resume to continue
// exactly where it left off.
type IteratorToken struct {
	File       uint8
	Block      uint32
	Offset     uint16
	LastBlock  uint32
	LastOffset uint16
	Size       uint32
}

// IterateConfig bounds a single Iterate call.
type IterateConfig struct {
	// MaxBlocks, if non-zero, stops iteration after this many block
	// advances even if more data remains.
	MaxBlocks int

	// MaxTimeMillis, if non-zero, stops iteration once this many
	// milliseconds have elapsed since the Iterate call began.
	MaxTimeMillis uint32

	// ManualNext, if true, leaves the iterator positioned exactly on a
	// delivered entry instead of advancing past it; the caller must call
	// Move to advance before the next Iterate call repeats the same entry.
	ManualNext bool
}

// Iterator streams the records of one file in physical order, tolerating
// gaps and invalid regions.
type Iterator struct {
	fs    *Filesystem
	token IteratorToken
}

// IteratorCreate opens an iterator over file id, seeded at the file's
// current start and end extents.
func (fs *Filesystem) IteratorCreate(id uint8) (*Iterator, error) {
	if !fs.mounted {
		return nil, ErrNotMounted
	}
	if err := fs.checkFile(id); err != nil {
		return nil, err
	}
	fr := fs.header.Files[id]
	return &Iterator{
		fs: fs,
		token: IteratorToken{
			File:       id,
			Block:      fr.StartBlock,
			Offset:     0,
			LastBlock:  fr.EndBlock,
			LastOffset: fr.EndOffset,
			Size:       fr.Size,
		},
	}, nil
}

// Token returns the iterator's current, resumable position.
func (it *Iterator) Token() IteratorToken {
	return it.token
}

// Reopen rebinds the iterator to the file's current endBlock/endOffset/
// size. If the file's current size is smaller than the token's remembered
// size — meaning a truncate happened in between — the iterator resets to
// the file's new start instead of trying to resume mid-stream.
func (it *Iterator) Reopen() {
	fr := it.fs.header.Files[it.token.File]
	if fr.Size < it.token.Size {
		it.token.Block = fr.StartBlock
		it.token.Offset = 0
	}
	it.token.LastBlock = fr.EndBlock
	it.token.LastOffset = fr.EndOffset
	it.token.Size = fr.Size
}

// Resume restores a previously saved token exactly, including its stop
// boundary.
func (it *Iterator) Resume(tok IteratorToken) {
	it.token = tok
}

// Valid reports whether the iterator's token still denotes a position the
// iterator can read from.
func (it *Iterator) Valid() bool {
	t := it.token
	if t.Block == 0 {
		return false
	}
	if t.Block > it.fs.header.Block {
		return false
	}
	if t.Block > t.LastBlock {
		return false
	}
	if t.Block == t.LastBlock && t.Offset > t.LastOffset {
		return false
	}
	return true
}

// Done is the negation of Valid.
func (it *Iterator) Done() bool {
	return !it.Valid()
}

// MoveEnd positions the iterator at its stop boundary, past the last
// delivered record.
func (it *Iterator) MoveEnd() {
	it.token.Block = it.token.LastBlock
	it.token.Offset = it.token.LastOffset
}

// Move advances the iterator past the entry currently under the token,
// without delivering it. Used after an Iterate call made with
// ManualNext, once the caller has decided not to re-deliver the entry.
func (it *Iterator) Move() error {
	if it.token.Block == 0 {
		return ErrUninitialized
	}
	if err := it.fs.ensureBlock(it.token.Block); err != nil {
		return err
	}
	e := entry.Decode(it.fs.cache[it.token.Offset:])
	it.token.Offset += uint16(entry.Size) + e.Available
	return nil
}

// Iterate walks forward from the iterator's current position and returns
// the next record belonging to this iterator's file, or ok=false when the
// iterator is done, invalid, or the budget in cfg is exhausted.
func (it *Iterator) Iterate(cfg IterateConfig) (data []byte, ok bool, err error) {
	fs := it.fs
	startMillis := fs.clock.Millis()
	blocksVisited := 0

	for {
		if !it.Valid() {
			return nil, false, nil
		}

		if int(it.token.Offset)+entry.Size > 512 {
			if advanced := it.advanceBlock(); !advanced {
				return nil, false, nil
			}
			blocksVisited++
			if budgetExhausted(cfg, blocksVisited, fs, startMillis) {
				return nil, false, nil
			}
			continue
		}

		if err := fs.ensureBlock(it.token.Block); err != nil {
			return nil, false, err
		}

		e, status := entry.Check(fs.cache[it.token.Offset:], FilesMax, fs.fileVersion, 512)

		switch status {
		case entry.StatusGood:
			if e.File == it.token.File {
				payloadStart := int(it.token.Offset) + entry.Size
				payloadEnd := payloadStart + int(e.Size)
				slice := make([]byte, e.Size)
				copy(slice, fs.cache[payloadStart:payloadEnd])
				if !cfg.ManualNext {
					it.token.Offset += uint16(entry.Size) + e.Available
				}
				return slice, true, nil
			}
			it.token.Offset += uint16(entry.Size) + e.Available

		case entry.StatusCRC:
			it.token.Offset += uint16(entry.Size) + e.Available

		case entry.StatusSize:
			if advanced := it.advanceBlock(); !advanced {
				return nil, false, nil
			}
			blocksVisited++
			if budgetExhausted(cfg, blocksVisited, fs, startMillis) {
				return nil, false, nil
			}

		default:
			return nil, false, fmt.Errorf("blockfs: iterate file %d: unreachable entry status", it.token.File)
		}
	}
}

// advanceBlock moves the token to the next block, applying the same
// wrap-around the allocator uses, and reports whether the result is still
// a valid position.
func (it *Iterator) advanceBlock() bool {
	it.token.Block++
	it.token.Offset = 0

	tail := it.fs.dev.BlockCount() - it.fs.opts.ReservedTailBlocks
	if it.token.Block >= tail {
		it.token.Block = it.fs.opts.FirstBlock
	}
	return it.Valid()
}

func budgetExhausted(cfg IterateConfig, blocksVisited int, fs *Filesystem, startMillis uint32) bool {
	if cfg.MaxBlocks > 0 && blocksVisited >= cfg.MaxBlocks {
		return true
	}
	if cfg.MaxTimeMillis > 0 && fs.clock.Millis()-startMillis >= cfg.MaxTimeMillis {
		return true
	}
	return false
}
