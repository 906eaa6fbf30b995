package tyfs

import (
	"fmt"
	"math"

	"github.com/dargueta/tydos/errors"
	c "github.com/dargueta/tydos/file_systems/common"
	"github.com/dargueta/tydos/memory"
)

// DirEntrySize is the size of one directory slot, in bytes.
const DirEntrySize = 32

// Geometry is the layout of a volume, derived from its header. All sector
// numbers are 1-based.
type Geometry struct {
	TotalSectors uint
	BootSectors  uint
	FileEntries  uint
	MaxFileSize  uint
	// DirectoryStart is the first sector of the directory.
	DirectoryStart uint
	// DirectorySectors is the number of sectors the directory occupies. A
	// partial trailing sector counts as a whole one.
	DirectorySectors uint
}

// DirectorySectorsFor gives the number of sectors needed to hold `entries`
// directory slots.
func DirectorySectorsFor(entries uint) uint {
	return (entries*DirEntrySize + c.BytesPerSector - 1) / c.BytesPerSector
}

// NewGeometry computes the layout of the volume described by `h`.
func NewGeometry(h Header) Geometry {
	return Geometry{
		TotalSectors:     uint(h.TotalSectors),
		BootSectors:      uint(h.BootSectors),
		FileEntries:      uint(h.FileEntries),
		MaxFileSize:      uint(h.MaxFileSize),
		DirectoryStart:   uint(h.BootSectors) + 1,
		DirectorySectors: DirectorySectorsFor(uint(h.FileEntries)),
	}
}

// DirectoryBytes gives the size of the directory, in bytes, not counting the
// unused tail of its last sector.
func (g Geometry) DirectoryBytes() uint {
	return g.FileEntries * DirEntrySize
}

// ProgramsStart is the first sector of program slot 0.
func (g Geometry) ProgramsStart() uint {
	return g.DirectoryStart + g.DirectorySectors
}

// LastSector gives the number of the last sector the layout uses, which is the
// last sector of the last program slot.
func (g Geometry) LastSector() uint {
	return g.ProgramsStart() + g.MaxFileSize*g.FileEntries - 1
}

// ProgramSector gives the first sector of program slot `index`. It fails with
// [errors.ErrGeometryViolation] if the slot doesn't exist or doesn't fit
// entirely within the volume.
func (g Geometry) ProgramSector(index uint) (uint, error) {
	if index >= g.FileEntries {
		return 0, errors.ErrGeometryViolation.WithMessage(
			fmt.Sprintf("program slot %d not in range [0, %d)", index, g.FileEntries))
	}

	start := g.ProgramsStart() + g.MaxFileSize*index
	last := start + g.MaxFileSize - 1
	if last > g.TotalSectors {
		return 0, errors.ErrGeometryViolation.WithMessage(
			fmt.Sprintf(
				"program slot %d occupies sectors [%d, %d], past the end of the"+
					" %d-sector volume",
				index,
				start,
				last,
				g.TotalSectors,
			),
		)
	}
	return start, nil
}

// LoadAddress gives the physical address a program is loaded to, given the
// address `base` of the entry stub.
//
// The load address is `base` moved down by the part of the directory that
// spills into its last sector, so that the program ends up at the same
// position relative to `base` regardless of directory size.
func (g Geometry) LoadAddress(base memory.Address) (memory.Address, error) {
	offset := int64(g.DirectoryBytes()) -
		(int64(g.DirectorySectors)-1)*int64(c.BytesPerSector)
	address := int64(base) - offset

	if address < 0 || address > math.MaxUint32 {
		return 0, errors.ErrGeometryViolation.WithMessage(
			fmt.Sprintf(
				"load address %#x - %d is outside the address space", base, offset),
		)
	}
	return memory.Address(address), nil
}
