package tyfs

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/dargueta/tydos"
	"github.com/dargueta/tydos/errors"
	c "github.com/dargueta/tydos/file_systems/common"
	"github.com/dargueta/tydos/memory"
)

// Entry is a used directory slot.
type Entry struct {
	// Index is the slot number, which is also the number of the program slot
	// the file is stored in.
	Index uint
	Name  string
}

// Walker looks up programs in the directory of a TyFS volume.
//
// Every lookup reloads the directory from disk into the scratch region, and
// the scratch region's contents are only meaningful until the next call that
// reloads it.
type Walker struct {
	disk     tydos.SectorReader
	geometry Geometry
	scratch  memory.Region
	logger   *slog.Logger
}

// NewWalker creates a walker that reads the directory of the volume with the
// given geometry through `disk`, using `scratch` as its buffer. If `logger` is
// nil, [slog.Default] is used.
func NewWalker(
	disk tydos.SectorReader,
	geometry Geometry,
	scratch memory.Region,
	logger *slog.Logger,
) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{
		disk:     disk,
		geometry: geometry,
		scratch:  scratch,
		logger:   logger,
	}
}

// Geometry returns the layout of the volume the walker reads.
func (w *Walker) Geometry() Geometry {
	return w.geometry
}

// Load reads the directory into the scratch region and returns the part of the
// scratch region it occupies, which is always a whole number of sectors.
func (w *Walker) Load() (memory.Region, error) {
	start := w.geometry.DirectoryStart
	count := w.geometry.DirectorySectors
	if count == 0 {
		return w.scratch.Sub(0, 0)
	}

	size := count * c.BytesPerSector
	if size > w.scratch.Len() {
		return memory.Region{}, errors.ErrGeometryViolation.WithMessage(
			fmt.Sprintf(
				"%d-sector directory doesn't fit in %d-byte scratch region %s",
				count,
				w.scratch.Len(),
				w.scratch,
			),
		)
	}
	if start+count-1 > w.geometry.TotalSectors {
		return memory.Region{}, errors.ErrGeometryViolation.WithMessage(
			fmt.Sprintf(
				"directory sectors [%d, %d] extend past the end of the %d-sector volume",
				start,
				start+count-1,
				w.geometry.TotalSectors,
			),
		)
	}

	w.logger.Debug(
		"loading directory",
		slog.Uint64("sector", uint64(start)),
		slog.Uint64("count", uint64(count)),
		slog.String("scratch", w.scratch.String()),
	)

	err := w.disk.ReadSectors(start, count, w.scratch.Base())
	if err != nil {
		return memory.Region{}, err
	}
	return w.scratch.Sub(0, size)
}

// load is Load for lookups. A failure to load the directory is reported as
// [errors.ErrDirectoryUnavailable], so that a broken directory is never
// mistaken for a missing file.
func (w *Walker) load() (memory.Region, uint, error) {
	directory, err := w.Load()
	if err != nil {
		w.logger.Warn("directory unavailable", slog.Any("error", err))
		return memory.Region{}, 0, errors.ErrDirectoryUnavailable.Wrap(err)
	}

	slots := directory.Len() / DirEntrySize
	if w.geometry.FileEntries < slots {
		slots = w.geometry.FileEntries
	}
	return directory, slots, nil
}

// readSlot decodes slot `index` of the loaded directory. `ok` is false if the
// slot is empty.
func readSlot(directory memory.Region, index uint) (name string, ok bool, err error) {
	var raw [DirEntrySize]byte
	_, err = directory.ReadAt(raw[:], int64(index*DirEntrySize))
	if err != nil {
		return "", false, err
	}
	if raw[0] == 0 {
		return "", false, nil
	}

	terminator := bytes.IndexByte(raw[:], 0)
	if terminator < 0 {
		terminator = DirEntrySize
	}
	return string(raw[:terminator]), true, nil
}

// Find returns the slot number of the first directory entry named exactly
// `name`. `found` is false if there's no such entry. The empty name never
// matches anything.
func (w *Walker) Find(name string) (index uint, found bool, err error) {
	directory, slots, err := w.load()
	if err != nil {
		return 0, false, err
	}
	if name == "" {
		return 0, false, nil
	}

	for i := uint(0); i < slots; i++ {
		entryName, used, err := readSlot(directory, i)
		if err != nil {
			return 0, false, errors.ErrDirectoryUnavailable.Wrap(err)
		}
		if used && entryName == name {
			return i, true, nil
		}
	}
	return 0, false, nil
}

// List returns a cursor over the used directory slots, in slot order.
func (w *Walker) List() (*Listing, error) {
	directory, slots, err := w.load()
	if err != nil {
		return nil, err
	}
	return &Listing{directory: directory, slots: slots}, nil
}

// Listing iterates over the used slots of a loaded directory. Entries are
// decoded as they're requested, so the listing is only valid until the
// directory's scratch region is reused.
type Listing struct {
	directory memory.Region
	slots     uint
	next      uint
	err       error
}

// Next returns the next used entry. `ok` is false once the listing is
// exhausted or an error occurred; check [Listing.Err] to tell the two apart.
func (l *Listing) Next() (entry Entry, ok bool) {
	for l.err == nil && l.next < l.slots {
		index := l.next
		l.next++

		name, used, err := readSlot(l.directory, index)
		if err != nil {
			l.err = errors.ErrDirectoryUnavailable.Wrap(err)
			return Entry{}, false
		}
		if used {
			return Entry{Index: index, Name: name}, true
		}
	}
	return Entry{}, false
}

// Err returns the error that stopped iteration early, if any.
func (l *Listing) Err() error {
	return l.err
}

// Reset rewinds the listing to the first slot.
func (l *Listing) Reset() {
	l.next = 0
	l.err = nil
}

// All rewinds the listing and returns every remaining entry.
func (l *Listing) All() ([]Entry, error) {
	l.Reset()
	entries := []Entry{}
	for {
		entry, ok := l.Next()
		if !ok {
			break
		}
		entries = append(entries, entry)
	}
	return entries, l.Err()
}
