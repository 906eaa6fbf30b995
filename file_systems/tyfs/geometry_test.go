package tyfs_test

import (
	"fmt"
	"testing"

	"github.com/dargueta/tydos/errors"
	"github.com/dargueta/tydos/file_systems/tyfs"
	"github.com/dargueta/tydos/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectorySectorsFor(t *testing.T) {
	assert.EqualValues(t, 0, tyfs.DirectorySectorsFor(0))
	assert.EqualValues(t, 1, tyfs.DirectorySectorsFor(1))
	assert.EqualValues(t, 1, tyfs.DirectorySectorsFor(16))
	assert.EqualValues(t, 2, tyfs.DirectorySectorsFor(17))
	assert.EqualValues(t, 2, tyfs.DirectorySectorsFor(32))
}

// The directory always gets the fewest whole sectors that hold every slot.
func TestDirectorySectorsFor__RoundsUp(t *testing.T) {
	for entries := uint(1); entries <= 600; entries++ {
		sectors := tyfs.DirectorySectorsFor(entries)
		need := entries * tyfs.DirEntrySize

		assert.GreaterOrEqual(t, sectors*512, need, "%d entries don't fit", entries)
		assert.Less(t, (sectors-1)*512, need, "%d entries got a spare sector", entries)
	}
}

func newGeometry(bootSectors, entries, maxSize, total uint16) tyfs.Geometry {
	return tyfs.Header{
		TotalSectors: total,
		BootSectors:  bootSectors,
		FileEntries:  entries,
		MaxFileSize:  maxSize,
	}.Geometry()
}

func TestGeometry__Layout(t *testing.T) {
	geometry := newGeometry(3, 20, 4, 200)

	assert.EqualValues(t, 4, geometry.DirectoryStart)
	assert.EqualValues(t, 2, geometry.DirectorySectors)
	assert.EqualValues(t, 640, geometry.DirectoryBytes())
	assert.EqualValues(t, 6, geometry.ProgramsStart())
	assert.EqualValues(t, 6+20*4-1, geometry.LastSector())

	sector, err := geometry.ProgramSector(0)
	require.NoError(t, err)
	assert.EqualValues(t, 6, sector)

	sector, err = geometry.ProgramSector(7)
	require.NoError(t, err)
	assert.EqualValues(t, 6+4*7, sector)
}

// Different slots never share a sector, and every slot starts after the
// directory.
func TestGeometry__ProgramSlotsAreDisjoint(t *testing.T) {
	geometry := newGeometry(2, 40, 3, 1000)

	for i := uint(0); i < geometry.FileEntries; i++ {
		first, err := geometry.ProgramSector(i)
		require.NoError(t, err)
		assert.Greater(
			t, first, geometry.DirectoryStart+geometry.DirectorySectors-1)

		for j := i + 1; j < geometry.FileEntries; j++ {
			second, err := geometry.ProgramSector(j)
			require.NoError(t, err)
			assert.GreaterOrEqual(
				t,
				second,
				first+geometry.MaxFileSize,
				"slots %d and %d overlap",
				i,
				j,
			)
		}
	}
}

func TestGeometry__ProgramSector__OutOfRange(t *testing.T) {
	geometry := newGeometry(1, 4, 2, 10)

	_, err := geometry.ProgramSector(3)
	assert.NoError(t, err)

	_, err = geometry.ProgramSector(4)
	assert.ErrorIs(t, err, errors.ErrGeometryViolation)

	// Header claims more slots than the volume holds.
	truncated := newGeometry(1, 4, 2, 9)
	_, err = truncated.ProgramSector(3)
	assert.ErrorIs(t, err, errors.ErrGeometryViolation)
}

func TestGeometry__LoadAddress(t *testing.T) {
	tests := []struct {
		entries uint16
		want    memory.Address
	}{
		{1, 0xfe00 - 32},
		{4, 0xfe00 - 128},
		{16, 0xfe00 - 512},
		{17, 0xfe00 - 32},
		{40, 0xfe00 - 256},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d entries", tc.entries), func(t *testing.T) {
			geometry := newGeometry(1, tc.entries, 1, 1000)
			address, err := geometry.LoadAddress(0xfe00)
			require.NoError(t, err)
			assert.Equal(t, tc.want, address)
		})
	}
}

func TestGeometry__LoadAddress__Underflow(t *testing.T) {
	geometry := newGeometry(1, 4, 1, 100)
	_, err := geometry.LoadAddress(64)
	assert.ErrorIs(t, err, errors.ErrGeometryViolation)
}
