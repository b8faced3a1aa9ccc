package blockfs

// Truncate logically resets file id: its version is bumped, invalidating
// every previously written record for that file by CRC, without rewriting
// a single block. The extent reset is a hint for where iteration should
// begin.
func (fs *Filesystem) Truncate(id uint8) error {
	if !fs.mounted {
		return ErrNotMounted
	}
	if err := fs.checkFile(id); err != nil {
		return err
	}

	fr := &fs.header.Files[id]
	fr.Version++
	fr.StartBlock = fs.header.Block
	fr.StartOffset = 0
	fr.EndBlock = fr.StartBlock
	fr.EndOffset = 0
	fr.Size = 0
	return nil
}

// TruncateAll applies Truncate to every registered file.
func (fs *Filesystem) TruncateAll() error {
	if !fs.mounted {
		return ErrNotMounted
	}
	for id := uint8(0); id < FilesMax; id++ {
		if !fs.fileRegistered[id] {
			continue
		}
		if err := fs.Truncate(id); err != nil {
			return err
		}
	}
	return nil
}

// TruncateAt trims everything before the iterator's current block by moving
// the file's startBlock there, then recomputes size by iterating what
// remains.
func (fs *Filesystem) TruncateAt(it *Iterator) error {
	if !fs.mounted {
		return ErrNotMounted
	}
	id := it.token.File
	if err := fs.checkFile(id); err != nil {
		return err
	}

	fr := &fs.header.Files[id]
	fr.StartBlock = it.token.Block
	fr.StartOffset = 0

	scan, err := fs.IteratorCreate(id)
	if err != nil {
		return err
	}

	var total uint32
	for {
		data, ok, err := scan.Iterate(IterateConfig{})
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		total += uint32(len(data))
	}
	fr.Size = total
	return nil
}
