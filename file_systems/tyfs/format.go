package tyfs

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dargueta/tydos/errors"
	c "github.com/dargueta/tydos/file_systems/common"
	"github.com/noxer/bytewriter"
)

// MaxNameLength is the longest program name [Format] accepts. The reader also
// accepts names of exactly [DirEntrySize] bytes, but the builder always leaves
// room for the null terminator.
const MaxNameLength = DirEntrySize - 1

// Program is a file to store in an image.
type Program struct {
	// Name is the directory name. An empty name leaves the slot unused; Data
	// must then be empty too.
	Name string
	// Data is the program's machine code. It's padded with null bytes to fill
	// the whole program slot.
	Data []byte
}

// FormatOptions describes the layout of an image to build.
type FormatOptions struct {
	// Signature is written to the header. The zero value means
	// [DefaultSignature].
	Signature [SignatureLength]byte
	// BootSectors is the number of sectors reserved for the boot code and
	// kernel. It must be at least 1, since the header lives in the first one.
	BootSectors uint
	// FileEntries is the number of directory slots.
	FileEntries uint
	// MaxFileSize is the size of each program slot, in sectors.
	MaxFileSize uint
	// TotalSectors is the size of the image. 0 means the smallest size that
	// holds the whole layout. Anything between the last program slot and the
	// end of the image is unused and recorded in the header's reserved field.
	TotalSectors uint
	// BootCode is stored right after the header, and must fit in the boot
	// sectors.
	BootCode []byte
}

// Header returns the header an image built with these options would have. It
// fails if the options describe an impossible layout.
func (opts FormatOptions) Header() (Header, error) {
	if opts.BootSectors == 0 || opts.FileEntries == 0 || opts.MaxFileSize == 0 {
		return Header{}, errors.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"boot sectors, file entries, and max file size must be nonzero, got"+
					" %d, %d, and %d",
				opts.BootSectors,
				opts.FileEntries,
				opts.MaxFileSize,
			),
		)
	}

	geometry := Geometry{
		BootSectors:      opts.BootSectors,
		FileEntries:      opts.FileEntries,
		MaxFileSize:      opts.MaxFileSize,
		DirectoryStart:   opts.BootSectors + 1,
		DirectorySectors: DirectorySectorsFor(opts.FileEntries),
	}
	minSectors := geometry.LastSector()

	totalSectors := opts.TotalSectors
	if totalSectors == 0 {
		totalSectors = minSectors
	} else if totalSectors < minSectors {
		return Header{}, errors.ErrNoSpaceOnDevice.WithMessage(
			fmt.Sprintf(
				"layout needs %d sectors, image only has %d", minSectors, totalSectors),
		)
	}

	// The header stores every count in 16 bits.
	if totalSectors > math.MaxUint16 || opts.FileEntries > math.MaxUint16 {
		return Header{}, errors.ErrFileTooLarge.WithMessage(
			fmt.Sprintf(
				"image of %d sectors with %d entries can't be described in a header",
				totalSectors,
				opts.FileEntries,
			),
		)
	}

	signature := opts.Signature
	if signature == [SignatureLength]byte{} {
		signature = DefaultSignature
	}

	return Header{
		Signature:    signature,
		TotalSectors: uint16(totalSectors),
		BootSectors:  uint16(opts.BootSectors),
		FileEntries:  uint16(opts.FileEntries),
		MaxFileSize:  uint16(opts.MaxFileSize),
		Reserved:     uint32((totalSectors - minSectors) * c.BytesPerSector),
	}, nil
}

// checkPrograms validates the program list against the layout.
func checkPrograms(opts FormatOptions, programs []Program) error {
	if uint(len(programs)) > opts.FileEntries {
		return errors.ErrNoSpaceOnDevice.WithMessage(
			fmt.Sprintf(
				"%d programs given but the directory only has %d slots",
				len(programs),
				opts.FileEntries,
			),
		)
	}

	slotSize := opts.MaxFileSize * c.BytesPerSector
	seen := make(map[string]int, len(programs))

	for i, program := range programs {
		if program.Name == "" {
			if len(program.Data) != 0 {
				return errors.ErrInvalidArgument.WithMessage(
					fmt.Sprintf("program %d has data but no name", i))
			}
			continue
		}

		if len(program.Name) > MaxNameLength {
			return errors.ErrNameTooLong.WithMessage(
				fmt.Sprintf(
					"%q is %d bytes long, limit is %d",
					program.Name,
					len(program.Name),
					MaxNameLength,
				),
			)
		}
		for _, char := range []byte(program.Name) {
			if char == 0 {
				return errors.ErrInvalidArgument.WithMessage(
					fmt.Sprintf("%q contains a null byte", program.Name))
			}
		}

		previous, exists := seen[program.Name]
		if exists {
			return errors.ErrInvalidArgument.WithMessage(
				fmt.Sprintf(
					"programs %d and %d are both named %q", previous, i, program.Name),
			)
		}
		seen[program.Name] = i

		if uint(len(program.Data)) > slotSize {
			return errors.ErrFileTooLarge.WithMessage(
				fmt.Sprintf(
					"%q is %d bytes, program slots only hold %d",
					program.Name,
					len(program.Data),
					slotSize,
				),
			)
		}
	}
	return nil
}

// Format builds a TyFS image. Program i goes into slot i; slots past the end
// of `programs` are left empty.
func Format(opts FormatOptions, programs []Program) ([]byte, error) {
	header, err := opts.Header()
	if err != nil {
		return nil, err
	}

	bootCapacity := opts.BootSectors*c.BytesPerSector - HeaderSize
	if uint(len(opts.BootCode)) > bootCapacity {
		return nil, errors.ErrFileTooLarge.WithMessage(
			fmt.Sprintf(
				"%d bytes of boot code don't fit in %d boot sectors (limit %d bytes)",
				len(opts.BootCode),
				opts.BootSectors,
				bootCapacity,
			),
		)
	}

	err = checkPrograms(opts, programs)
	if err != nil {
		return nil, err
	}

	geometry := header.Geometry()
	image := make([]byte, geometry.TotalSectors*c.BytesPerSector)

	// Boot sectors: the header, then the boot code.
	writer := bytewriter.New(image[:opts.BootSectors*c.BytesPerSector])
	err = binary.Write(writer, binary.LittleEndian, &header)
	if err != nil {
		return nil, errors.ErrIOFailed.Wrap(err)
	}
	_, err = writer.Write(opts.BootCode)
	if err != nil {
		return nil, errors.ErrIOFailed.Wrap(err)
	}

	// Directory. Empty slots are all null bytes, which the image already is.
	directoryOffset := (geometry.DirectoryStart - 1) * c.BytesPerSector
	writer = bytewriter.New(
		image[directoryOffset : directoryOffset+geometry.DirectoryBytes()])
	for _, program := range programs {
		var slot [DirEntrySize]byte
		copy(slot[:], program.Name)
		_, err = writer.Write(slot[:])
		if err != nil {
			return nil, errors.ErrIOFailed.Wrap(err)
		}
	}

	// Program slots.
	for i, program := range programs {
		sector, err := geometry.ProgramSector(uint(i))
		if err != nil {
			return nil, err
		}
		offset := (sector - 1) * c.BytesPerSector
		copy(image[offset:offset+geometry.MaxFileSize*c.BytesPerSector], program.Data)
	}

	return image, nil
}
