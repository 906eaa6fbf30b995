package kernel

import (
	"fmt"

	"github.com/dargueta/tydos/disks"
	"github.com/dargueta/tydos/errors"
	"github.com/dargueta/tydos/file_systems/tyfs"
	"github.com/dargueta/tydos/memory"
)

// DefaultProgramBase is the address of the entry stub programs are aligned
// against. See [tyfs.Geometry.LoadAddress].
const DefaultProgramBase = memory.Address(0xfe00)

// DefaultScratchSectors is the default size of the directory scratch region,
// in sectors.
const DefaultScratchSectors = 8

// Config holds the machine and memory-layout settings of the kernel.
type Config struct {
	// BootStart is where the boot sectors are loaded, and where the header is
	// read from.
	BootStart memory.Address
	// ProgramBase is the entry stub address programs are loaded relative to.
	ProgramBase memory.Address
	// ScratchSectors is the size of the directory scratch region, which begins
	// right after the kernel image.
	ScratchSectors uint
	// MemorySize is the amount of physical memory, in bytes.
	MemorySize uint
	// Signature is the volume signature the kernel accepts. The zero value
	// accepts any signature.
	Signature [tyfs.SignatureLength]byte
	// Drive is the slug of the boot drive's geometry. See [disks.Slugs].
	Drive string
}

// DefaultConfig returns the layout of a stock TinyDOS boot disk.
func DefaultConfig() Config {
	return Config{
		BootStart:      tyfs.BootStart,
		ProgramBase:    DefaultProgramBase,
		ScratchSectors: DefaultScratchSectors,
		MemorySize:     memory.RealModeSize,
		Signature:      tyfs.DefaultSignature,
		Drive:          disks.DefaultSlug,
	}
}

// Validate checks the settings that don't depend on the boot volume.
func (cfg Config) Validate() error {
	if cfg.ScratchSectors == 0 {
		return errors.ErrInvalidArgument.WithMessage("scratch region can't be empty")
	}
	if cfg.ScratchSectors > 255 {
		return errors.ErrArgumentOutOfRange.WithMessage(
			fmt.Sprintf(
				"scratch region of %d sectors is larger than one disk transfer",
				cfg.ScratchSectors,
			),
		)
	}
	if uint64(cfg.BootStart)+tyfs.HeaderSize > uint64(cfg.MemorySize) {
		return errors.ErrArgumentOutOfRange.WithMessage(
			fmt.Sprintf(
				"boot address %#05x is outside %d bytes of memory",
				cfg.BootStart,
				cfg.MemorySize,
			),
		)
	}
	if cfg.Drive != "" {
		_, err := disks.GetPredefinedDiskGeometry(cfg.Drive)
		if err != nil {
			return err
		}
	}
	return nil
}

// AcceptsSignature reports whether the kernel accepts a volume with the header
// `header`.
func (cfg Config) AcceptsSignature(header tyfs.Header) bool {
	if cfg.Signature == [tyfs.SignatureLength]byte{} {
		return true
	}
	return header.HasSignature(cfg.Signature)
}
