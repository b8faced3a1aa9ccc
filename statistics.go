package blockfs

import "github.com/fieldkit/blockfs/internal/logging"

// FileInfo is the snapshot of one file's configuration and persisted
// extents returned by GetFile.
type FileInfo struct {
	Name        string
	Priority    uint8
	Sync        bool
	Version     uint16
	StartBlock  uint32
	StartOffset uint16
	EndBlock    uint32
	EndOffset   uint16
	Size        uint32
}

// GetFile returns the current configuration and extents of file id.
func (fs *Filesystem) GetFile(id uint8) (FileInfo, error) {
	if err := fs.checkFile(id); err != nil {
		return FileInfo{}, err
	}
	fr := fs.header.Files[id]
	fo := fs.fileOpts[id]
	return FileInfo{
		Name:        fr.Name,
		Priority:    fo.Priority,
		Sync:        fo.Sync,
		Version:     fr.Version,
		StartBlock:  fr.StartBlock,
		StartOffset: fr.StartOffset,
		EndBlock:    fr.EndBlock,
		EndOffset:   fr.EndOffset,
		Size:        fr.Size,
	}, nil
}

// NumberOfFiles returns the number of file slots registered via
// InitializeFile.
func (fs *Filesystem) NumberOfFiles() uint8 {
	var n uint8
	for _, registered := range fs.fileRegistered {
		if registered {
			n++
		}
	}
	return n
}

// Statistics is a point-in-time snapshot of the mounted header and every
// registered file's extents, for diagnostics and LogStatistics.
type Statistics struct {
	Generation  uint32
	HeaderIndex int
	Block       uint32
	Offset      uint16
	Files       []FileInfo
}

// Statistics returns a snapshot of the current header and file state.
func (fs *Filesystem) Statistics() Statistics {
	st := Statistics{
		Generation:  fs.header.Generation,
		HeaderIndex: fs.headerIndex,
		Block:       fs.header.Block,
		Offset:      fs.header.Offset,
	}
	for id := uint8(0); id < FilesMax; id++ {
		if !fs.fileRegistered[id] {
			continue
		}
		fi, _ := fs.GetFile(id)
		st.Files = append(st.Files, fi)
	}
	return st
}

// LogStatistics writes the current Statistics snapshot through the
// configured Logger at info level.
func (fs *Filesystem) LogStatistics() {
	st := fs.Statistics()
	log := fs.logger()
	log.Infof("%sgeneration=%d headerIndex=%d block=%d offset=%d",
		logging.NSSync, st.Generation, st.HeaderIndex, st.Block, st.Offset)
	for _, f := range st.Files {
		log.Infof("%sfile=%q version=%d size=%d start=%d:%d end=%d:%d",
			logging.NSMount, f.Name, f.Version, f.Size, f.StartBlock, f.StartOffset, f.EndBlock, f.EndOffset)
	}
}
