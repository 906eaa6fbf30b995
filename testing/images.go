package testing

import (
	"bytes"
	"testing"

	"github.com/dargueta/tydos/bios"
	"github.com/dargueta/tydos/disks"
	c "github.com/dargueta/tydos/file_systems/common"
	"github.com/dargueta/tydos/file_systems/common/blockcache"
	"github.com/dargueta/tydos/file_systems/tyfs"
	"github.com/dargueta/tydos/memory"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// ProgramData returns `size` bytes of recognizable program contents: the name
// followed by a repeating byte pattern derived from `seed`.
func ProgramData(name string, seed byte, size int) []byte {
	data := bytes.Repeat([]byte{seed, ^seed}, (size+1)/2)[:size]
	copy(data, name)
	return data
}

// CreateImage builds a TyFS image, failing the test if the options are
// invalid.
func CreateImage(
	t *testing.T, opts tyfs.FormatOptions, programs []tyfs.Program,
) []byte {
	image, err := tyfs.Format(opts, programs)
	require.NoError(t, err, "failed to build image")
	require.Zero(t, len(image)%c.BytesPerSector, "image isn't a whole number of sectors")
	return image
}

// CreateDisk creates a BIOS disk over `image` that reads into `mem`, using the
// drive geometry named by `slug`.
//
// The image is accessed through a stream, so later changes to `image` are only
// seen by the disk for sectors it hasn't read yet.
func CreateDisk(
	t *testing.T, image []byte, slug string, mem *memory.Memory,
) *bios.Disk {
	geometry, err := disks.GetPredefinedDiskGeometry(slug)
	require.NoError(t, err, "bad drive geometry slug %q", slug)

	cache, err := blockcache.WrapStreamWithInferredSize(
		bytesextra.NewReadWriteSeeker(image), c.BytesPerSector)
	require.NoError(t, err)

	disk, err := bios.NewDisk(cache, geometry, mem, nil)
	require.NoError(t, err)
	return disk
}

// WriteImageHeader overwrites the header at the start of `image` with
// `header`.
func WriteImageHeader(image []byte, header tyfs.Header) {
	copy(image, header.Encode())
}
