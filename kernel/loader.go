package kernel

import (
	"fmt"
	"log/slog"

	"github.com/dargueta/tydos"
	"github.com/dargueta/tydos/errors"
	c "github.com/dargueta/tydos/file_systems/common"
	"github.com/dargueta/tydos/file_systems/tyfs"
	"github.com/dargueta/tydos/memory"
)

// Placement is where a program lives on disk and where it goes in memory.
type Placement struct {
	// Index is the program's directory slot.
	Index uint
	// Sector is the first sector of the program slot.
	Sector uint
	// Count is the number of sectors to read, which is always the full size of
	// a program slot.
	Count uint
	// Destination is where the program is loaded. Its base is the entry point.
	Destination memory.Region
}

// Loader reads programs into memory and transfers control to them.
type Loader struct {
	walker      *tyfs.Walker
	disk        tydos.SectorReader
	mem         *memory.Memory
	machine     tydos.Machine
	display     tydos.Display
	programBase memory.Address
	reserved    []memory.Region
	logger      *slog.Logger
}

// NewLoader creates a loader. Programs will never be placed over any of the
// `reserved` regions. If `logger` is nil, [slog.Default] is used.
func NewLoader(
	walker *tyfs.Walker,
	disk tydos.SectorReader,
	mem *memory.Memory,
	machine tydos.Machine,
	display tydos.Display,
	programBase memory.Address,
	reserved []memory.Region,
	logger *slog.Logger,
) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		walker:      walker,
		disk:        disk,
		mem:         mem,
		machine:     machine,
		display:     display,
		programBase: programBase,
		reserved:    reserved,
		logger:      logger,
	}
}

// Locate finds the program named `name` and computes where it would be loaded,
// without reading it. Every bounds check the loader makes is done here.
func (l *Loader) Locate(name string) (Placement, error) {
	index, found, err := l.walker.Find(name)
	if err != nil {
		return Placement{}, err
	}
	if !found {
		return Placement{}, errors.ErrNotFound.WithMessage(name)
	}

	geometry := l.walker.Geometry()
	sector, err := geometry.ProgramSector(index)
	if err != nil {
		return Placement{}, err
	}

	address, err := geometry.LoadAddress(l.programBase)
	if err != nil {
		return Placement{}, err
	}

	destination, err := l.mem.Region(address, geometry.MaxFileSize*c.BytesPerSector)
	if err != nil {
		return Placement{}, err
	}

	for _, reserved := range l.reserved {
		if destination.Overlaps(reserved) {
			return Placement{}, errors.ErrGeometryViolation.WithMessage(
				fmt.Sprintf(
					"program %q would be loaded to %s, overlapping reserved region %s",
					name,
					destination,
					reserved,
				),
			)
		}
	}

	return Placement{
		Index:       index,
		Sector:      sector,
		Count:       geometry.MaxFileSize,
		Destination: destination,
	}, nil
}

// LoadAndRun loads the program named `name` and jumps to it. It only returns
// if loading failed, or if the program returned control, in which case the
// machine has already been halted and the error is
// [errors.ErrProgramReturned].
func (l *Loader) LoadAndRun(name string) error {
	placement, err := l.Locate(name)
	if err != nil {
		return err
	}

	err = l.disk.ReadSectors(placement.Sector, placement.Count, placement.Destination.Base())
	if err != nil {
		l.logger.Error(
			"failed to load program",
			slog.String("name", name),
			slog.Uint64("sector", uint64(placement.Sector)),
			slog.Uint64("count", uint64(placement.Count)),
			slog.String("error", err.Error()),
		)
		if errors.Is(err, errors.ErrIOFailed) || errors.Is(err, errors.ErrGeometryViolation) {
			return err
		}
		return errors.ErrIOFailed.Wrap(err)
	}

	l.logger.Info(
		"starting program",
		slog.String("name", name),
		slog.Uint64("slot", uint64(placement.Index)),
		slog.String("entry", fmt.Sprintf("%#05x", placement.Destination.Base())),
	)
	l.machine.Jump(placement.Destination.Base())

	err = errors.ErrProgramReturned.WithMessage(name)
	Panic(l.display, l.machine, "loader", err)
	return err
}
