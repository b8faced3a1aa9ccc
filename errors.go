package blockfs

import "errors"

// Error kinds returned by the public API. Wrap with
// fmt.Errorf("blockfs: ...: %w", ErrX) at the call site and unwrap with
// errors.Is.
var (
	// ErrIoError means the underlying device rejected a read or write.
	ErrIoError = errors.New("blockfs: device i/o error")

	// ErrInvalidArgument means a zero-size append, or a record whose Entry
	// header plus payload exceeds one block, was requested.
	ErrInvalidArgument = errors.New("blockfs: invalid argument")

	// ErrNoSpace means allocateSlot visited SeekBlocksMax blocks without
	// finding a usable slot.
	ErrNoSpace = errors.New("blockfs: no space")

	// ErrUninitialized means an iterator operation was attempted before
	// IteratorCreate (or Reopen/Resume) produced a valid token.
	ErrUninitialized = errors.New("blockfs: uninitialized")

	// ErrUnknownFile means the file id passed to an API call was never
	// registered with InitializeFile.
	ErrUnknownFile = errors.New("blockfs: unknown file")

	// ErrNotMounted means an operation other than Initialize was called
	// before mount succeeded.
	ErrNotMounted = errors.New("blockfs: not mounted")
)
