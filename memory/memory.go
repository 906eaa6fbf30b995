// Package memory models the physical address space of a real-mode machine.
//
// Nothing outside this package touches the backing bytes directly. All access
// goes through a [Region], a bounds-checked handle to a contiguous run of
// physical memory, so a miscomputed address fails with an error instead of
// silently corrupting whatever happens to live there.

package memory

import (
	"fmt"

	"github.com/boljen/go-bitmap"
	"github.com/dargueta/tydos/errors"
)

// Address is a linear physical address.
type Address uint32

// RealModeSize is the size of the address space reachable in real mode.
const RealModeSize = 1 << 20

// ParagraphSize is the granularity of write tracking, in bytes. It's the same
// as the x86 real-mode paragraph.
const ParagraphSize = 16

// Memory is the machine's physical memory.
type Memory struct {
	data []byte
	// touched has one bit per paragraph, set whenever any byte in the paragraph
	// is written through a Region. It's only ever cleared by ResetTouched().
	touched bitmap.Bitmap
}

// New allocates `size` bytes of zeroed physical memory. `size` is rounded up to
// a whole number of paragraphs.
func New(size uint) *Memory {
	paragraphs := (size + ParagraphSize - 1) / ParagraphSize
	return &Memory{
		data:    make([]byte, paragraphs*ParagraphSize),
		touched: bitmap.New(int(paragraphs)),
	}
}

// Size returns the number of bytes of physical memory.
func (mem *Memory) Size() uint {
	return uint(len(mem.data))
}

// checkBounds verifies that [base, base+length) lies within physical memory.
func (mem *Memory) checkBounds(base Address, length uint) error {
	end := uint64(base) + uint64(length)
	if end > uint64(len(mem.data)) {
		return errors.ErrGeometryViolation.WithMessage(
			fmt.Sprintf(
				"range [%#05x, %#05x) not in physical memory [0, %#05x)",
				base,
				end,
				len(mem.data),
			),
		)
	}
	return nil
}

// Region returns a handle to `length` bytes of memory starting at `base`. It
// fails with [errors.ErrGeometryViolation] if any part of the range is outside
// physical memory.
func (mem *Memory) Region(base Address, length uint) (Region, error) {
	err := mem.checkBounds(base, length)
	if err != nil {
		return Region{}, err
	}
	return Region{mem: mem, base: base, length: length}, nil
}

// Touched reports whether any paragraph overlapping [base, base+length) was
// written to since the last call to ResetTouched(). Ranges outside of memory
// are never touched.
func (mem *Memory) Touched(base Address, length uint) bool {
	if length == 0 || mem.checkBounds(base, length) != nil {
		return false
	}

	first := int(uint(base) / ParagraphSize)
	last := int((uint(base) + length - 1) / ParagraphSize)
	for i := first; i <= last; i++ {
		if mem.touched.Get(i) {
			return true
		}
	}
	return false
}

// ResetTouched clears the write-tracking information for all of memory.
func (mem *Memory) ResetTouched() {
	for i := range mem.touched {
		mem.touched[i] = 0
	}
}

func (mem *Memory) markTouched(base Address, length uint) {
	if length == 0 {
		return
	}
	first := int(uint(base) / ParagraphSize)
	last := int((uint(base) + length - 1) / ParagraphSize)
	for i := first; i <= last; i++ {
		mem.touched.Set(i, true)
	}
}
