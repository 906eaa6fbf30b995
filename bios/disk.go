// Package bios implements the machine services the kernel consumes: the disk
// read service on top of a disk image, and a line-oriented text console.
package bios

import (
	"fmt"
	"log/slog"

	"github.com/dargueta/tydos/disks"
	"github.com/dargueta/tydos/errors"
	c "github.com/dargueta/tydos/file_systems/common"
	"github.com/dargueta/tydos/file_systems/common/blockcache"
	"github.com/dargueta/tydos/memory"
)

// MaxSectorsPerTransfer is the most sectors a single read can ask for. The
// count is passed to the BIOS in an 8-bit register.
const MaxSectorsPerTransfer = 255

// Disk emulates the BIOS "read sectors" service (int 0x13, AH=0x02) for the
// boot drive.
//
// Like the kernel's real-mode driver it always addresses cylinder 0, head 0,
// so only sectors on the first track of the drive are reachable. Sector
// numbers begin at 1. A read that would cross the end of the first track fails
// with [errors.ErrGeometryViolation] rather than wrapping to the next head.
type Disk struct {
	image    *blockcache.BlockCache
	geometry disks.DiskGeometry
	mem      *memory.Memory
	logger   *slog.Logger
}

// NewDisk creates a Disk reading from `image` into `mem`. `geometry` gives the
// number of sectors per track. If `logger` is nil, [slog.Default] is used.
func NewDisk(
	image *blockcache.BlockCache,
	geometry disks.DiskGeometry,
	mem *memory.Memory,
	logger *slog.Logger,
) (*Disk, error) {
	if image.BytesPerBlock() != c.BytesPerSector {
		return nil, errors.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"image must have %d-byte sectors, got %d",
				c.BytesPerSector,
				image.BytesPerBlock(),
			),
		)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Disk{image: image, geometry: geometry, mem: mem, logger: logger}, nil
}

// Geometry returns the geometry of the drive.
func (disk *Disk) Geometry() disks.DiskGeometry {
	return disk.geometry
}

// checkRequest validates a read request against the track, the image, and
// physical memory, in that order.
func (disk *Disk) checkRequest(sector, count uint, dest memory.Address) (memory.Region, error) {
	if sector == 0 {
		return memory.Region{}, errors.ErrGeometryViolation.WithMessage(
			"sector numbers begin at 1")
	}
	if count == 0 || count > MaxSectorsPerTransfer {
		return memory.Region{}, errors.ErrGeometryViolation.WithMessage(
			fmt.Sprintf(
				"sector count must be in [1, %d], got %d", MaxSectorsPerTransfer, count),
		)
	}

	lastSector := sector + count - 1
	if lastSector > disk.geometry.SectorsPerTrack {
		return memory.Region{}, errors.ErrGeometryViolation.WithMessage(
			fmt.Sprintf(
				"sectors [%d, %d] cross the end of track 0 (%d sectors per track)",
				sector,
				lastSector,
				disk.geometry.SectorsPerTrack,
			),
		)
	}
	if lastSector > disk.image.TotalBlocks() {
		return memory.Region{}, errors.ErrGeometryViolation.WithMessage(
			fmt.Sprintf(
				"sectors [%d, %d] extend past the end of the %d-sector image",
				sector,
				lastSector,
				disk.image.TotalBlocks(),
			),
		)
	}

	return disk.mem.Region(dest, count*c.BytesPerSector)
}

// ReadSectors implements [tydos.SectorReader].
//
// The data is staged before it is copied into memory, so on failure the
// destination is left exactly as it was.
func (disk *Disk) ReadSectors(sector uint, count uint, dest memory.Address) error {
	target, err := disk.checkRequest(sector, count, dest)
	if err != nil {
		disk.logger.Warn(
			"rejected disk read",
			slog.Uint64("sector", uint64(sector)),
			slog.Uint64("count", uint64(count)),
			slog.String("dest", fmt.Sprintf("%#05x", dest)),
			slog.String("error", err.Error()),
		)
		return err
	}

	staging := make([]byte, target.Len())
	_, err = disk.image.ReadAt(staging, c.LogicalBlock(sector-1))
	if err != nil {
		disk.logger.Error(
			"disk read failed",
			slog.Uint64("sector", uint64(sector)),
			slog.Uint64("count", uint64(count)),
			slog.String("error", err.Error()),
		)
		if errors.Is(err, errors.ErrIOFailed) {
			return err
		}
		return errors.ErrIOFailed.Wrap(err)
	}

	_, err = target.WriteAt(staging, 0)
	if err != nil {
		return err
	}

	disk.logger.Debug(
		"read sectors",
		slog.Uint64("sector", uint64(sector)),
		slog.Uint64("count", uint64(count)),
		slog.String("dest", target.String()),
	)
	return nil
}
