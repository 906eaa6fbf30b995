package tyfs

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/dargueta/tydos/errors"
	"github.com/dargueta/tydos/memory"
)

// SignatureLength is the size of the volume signature, in bytes.
const SignatureLength = 4

// HeaderSize is the size of the on-disk header, in bytes.
const HeaderSize = 16

// BootStart is the physical address the boot sectors are loaded to, and where
// the kernel finds the volume header.
const BootStart = memory.Address(0x7c00)

// DefaultSignature is the signature written by [Format] when none is given.
var DefaultSignature = [SignatureLength]byte{'T', 'y', 'F', 'S'}

// Header is the on-disk representation of the volume header. It's stored at the
// beginning of the first sector, little-endian with no padding.
type Header struct {
	// Signature identifies the volume format.
	Signature [SignatureLength]byte
	// TotalSectors is the number of 512-byte sectors in the image.
	TotalSectors uint16
	// BootSectors is the number of sectors occupied by the boot code and
	// kernel, including the sector the header is in.
	BootSectors uint16
	// FileEntries is the number of slots in the directory.
	FileEntries uint16
	// MaxFileSize is the size of a program slot, in sectors.
	MaxFileSize uint16
	// Reserved is the size of the unused space at the end of the image, in
	// bytes. The kernel ignores it.
	Reserved uint32
}

// DecodeHeader decodes a header from the first [HeaderSize] bytes of `data`.
// No validation is performed.
func DecodeHeader(data []byte) (Header, error) {
	var header Header
	if len(data) < HeaderSize {
		return header, errors.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("header needs %d bytes, got %d", HeaderSize, len(data)))
	}

	err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, &header)
	if err != nil {
		return header, errors.ErrIOFailed.Wrap(err)
	}
	return header, nil
}

// ReadHeader decodes the header stored in physical memory at `at`, which is
// normally [BootStart]. The only check performed is that the header lies within
// physical memory; callers must call [Header.Validate] before trusting any of
// the fields.
func ReadHeader(mem *memory.Memory, at memory.Address) (Header, error) {
	region, err := mem.Region(at, HeaderSize)
	if err != nil {
		return Header{}, err
	}

	var header Header
	err = binary.Read(region.Reader(), binary.LittleEndian, &header)
	if err != nil {
		return header, errors.ErrIOFailed.Wrap(err)
	}
	return header, nil
}

// Encode returns the on-disk representation of the header.
func (h Header) Encode() []byte {
	buffer := new(bytes.Buffer)
	// Writing a fixed-size struct to a bytes.Buffer can't fail.
	_ = binary.Write(buffer, binary.LittleEndian, &h)
	return buffer.Bytes()
}

// HasSignature reports whether the header carries the signature `sig`.
func (h Header) HasSignature(sig [SignatureLength]byte) bool {
	return h.Signature == sig
}

// SignatureString returns the signature as printable text, with nonprintable
// bytes escaped.
func (h Header) SignatureString() string {
	return fmt.Sprintf("%q", h.Signature[:])
}

// Geometry returns the derived layout of the volume.
func (h Header) Geometry() Geometry {
	return NewGeometry(h)
}

// Validate checks that the geometry described by the header is usable: every
// count is nonzero, and the directory and every program slot fit inside the
// image.
func (h Header) Validate() error {
	if h.BootSectors == 0 {
		return errors.ErrFileSystemCorrupted.WithMessage("volume has no boot sectors")
	}
	if h.FileEntries == 0 {
		return errors.ErrFileSystemCorrupted.WithMessage("volume has no directory entries")
	}
	if h.MaxFileSize == 0 {
		return errors.ErrFileSystemCorrupted.WithMessage("maximum file size is 0 sectors")
	}

	geometry := h.Geometry()
	lastSector := geometry.LastSector()
	if lastSector > geometry.TotalSectors {
		return errors.ErrGeometryViolation.WithMessage(
			fmt.Sprintf(
				"layout needs %d sectors, volume only has %d",
				lastSector,
				geometry.TotalSectors,
			),
		)
	}
	return nil
}
