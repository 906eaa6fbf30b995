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

// Boot does what the boot sector does before jumping to the kernel: it reads
// the first sector to find the header, then loads all boot sectors to
// cfg.BootStart and checks that the header describes a usable volume.
func Boot(
	disk tydos.SectorReader,
	mem *memory.Memory,
	cfg Config,
	logger *slog.Logger,
) (tyfs.Header, error) {
	if logger == nil {
		logger = slog.Default()
	}

	err := disk.ReadSectors(1, 1, cfg.BootStart)
	if err != nil {
		return tyfs.Header{}, err
	}

	header, err := tyfs.ReadHeader(mem, cfg.BootStart)
	if err != nil {
		return header, err
	}

	if !cfg.AcceptsSignature(header) {
		return header, errors.ErrInvalidFileSystem.WithMessage(
			fmt.Sprintf(
				"expected volume signature %q, got %s",
				cfg.Signature[:],
				header.SignatureString(),
			),
		)
	}

	err = header.Validate()
	if err != nil {
		return header, err
	}

	if header.BootSectors > 1 {
		err = disk.ReadSectors(1, uint(header.BootSectors), cfg.BootStart)
		if err != nil {
			return header, err
		}
	}

	logger.Info(
		"booted",
		slog.String("signature", header.SignatureString()),
		slog.Uint64("total_sectors", uint64(header.TotalSectors)),
		slog.Uint64("boot_sectors", uint64(header.BootSectors)),
		slog.Uint64("file_entries", uint64(header.FileEntries)),
		slog.Uint64("max_file_size", uint64(header.MaxFileSize)),
	)
	return header, nil
}

// Layout is the kernel's use of physical memory.
type Layout struct {
	// Kernel holds the boot sectors, header included.
	Kernel memory.Region
	// Scratch is the directory buffer. It begins where the kernel image ends.
	Scratch memory.Region
}

// NewLayout places the kernel image and scratch region for a volume with the
// header `header`.
func NewLayout(mem *memory.Memory, cfg Config, header tyfs.Header) (Layout, error) {
	kernelImage, err := mem.Region(
		cfg.BootStart, uint(header.BootSectors)*c.BytesPerSector)
	if err != nil {
		return Layout{}, err
	}

	scratch, err := mem.Region(kernelImage.End(), cfg.ScratchSectors*c.BytesPerSector)
	if err != nil {
		return Layout{}, err
	}
	return Layout{Kernel: kernelImage, Scratch: scratch}, nil
}

// Reserved returns the regions programs must not be loaded over.
func (layout Layout) Reserved() []memory.Region {
	return []memory.Region{layout.Kernel, layout.Scratch}
}
