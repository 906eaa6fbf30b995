package memory

import (
	"fmt"
	"io"

	"github.com/dargueta/tydos/errors"
)

// Region is a bounds-checked handle to a contiguous range of physical memory.
// The zero value is an empty region that can't be read from or written to.
//
// Region implements [io.ReaderAt] and [io.WriterAt]. Unlike most
// implementations of those interfaces, an access that would run past the end
// of the region fails without transferring anything.
type Region struct {
	mem    *Memory
	base   Address
	length uint
}

// Base returns the physical address of the first byte of the region.
func (r Region) Base() Address {
	return r.base
}

// Len returns the size of the region, in bytes.
func (r Region) Len() uint {
	return r.length
}

// End returns the physical address one past the last byte of the region.
func (r Region) End() Address {
	return r.base + Address(r.length)
}

// Overlaps reports whether any byte of `other` is also in `r`. Empty regions
// overlap nothing.
func (r Region) Overlaps(other Region) bool {
	if r.length == 0 || other.length == 0 {
		return false
	}
	return r.base < other.End() && other.base < r.End()
}

func (r Region) String() string {
	return fmt.Sprintf("[%#05x, %#05x)", r.base, r.End())
}

func (r Region) checkAccess(offset int64, size int) error {
	if r.mem == nil {
		return errors.ErrGeometryViolation.WithMessage("access through an unmapped region")
	}
	if offset < 0 || uint64(offset)+uint64(size) > uint64(r.length) {
		return errors.ErrGeometryViolation.WithMessage(
			fmt.Sprintf(
				"can't access %d bytes at offset %d of %d-byte region %s",
				size,
				offset,
				r.length,
				r,
			),
		)
	}
	return nil
}

// ReadAt copies len(buffer) bytes starting at `offset` within the region into
// `buffer`.
func (r Region) ReadAt(buffer []byte, offset int64) (int, error) {
	err := r.checkAccess(offset, len(buffer))
	if err != nil {
		return 0, err
	}

	start := uint(r.base) + uint(offset)
	return copy(buffer, r.mem.data[start:start+uint(len(buffer))]), nil
}

// WriteAt copies `buffer` into the region starting at `offset`. Every paragraph
// written to is marked as touched.
func (r Region) WriteAt(buffer []byte, offset int64) (int, error) {
	err := r.checkAccess(offset, len(buffer))
	if err != nil {
		return 0, err
	}

	start := uint(r.base) + uint(offset)
	n := copy(r.mem.data[start:start+uint(len(buffer))], buffer)
	r.mem.markTouched(r.base+Address(offset), uint(n))
	return n, nil
}

// Sub returns the region `length` bytes long, starting at `offset` bytes into
// `r`. It fails if the result wouldn't be entirely inside `r`.
func (r Region) Sub(offset, length uint) (Region, error) {
	err := r.checkAccess(int64(offset), int(length))
	if err != nil {
		return Region{}, err
	}
	return Region{mem: r.mem, base: r.base + Address(offset), length: length}, nil
}

// Bytes returns a copy of the entire contents of the region.
func (r Region) Bytes() []byte {
	buffer := make([]byte, r.length)
	if r.mem != nil {
		copy(buffer, r.mem.data[r.base:r.End()])
	}
	return buffer
}

// Reader returns a stream over the current contents of the region, for use
// with decoders such as [encoding/binary.Read].
func (r Region) Reader() *io.SectionReader {
	return io.NewSectionReader(r, 0, int64(r.length))
}
