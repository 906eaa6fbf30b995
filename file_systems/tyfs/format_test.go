package tyfs_test

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/dargueta/tydos/errors"
	"github.com/dargueta/tydos/file_systems/tyfs"
	diskotest "github.com/dargueta/tydos/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat__Layout(t *testing.T) {
	opts := tyfs.FormatOptions{
		BootSectors: 2,
		FileEntries: 4,
		MaxFileSize: 2,
		BootCode:    []byte{0xeb, 0xfe},
	}
	image := diskotest.CreateImage(t, opts, defaultTestPrograms)

	// 2 boot + 1 directory + 4*2 program sectors
	require.Len(t, image, 11*512)

	assert.Equal(t, []byte("TyFS"), image[:4])
	assert.EqualValues(t, 11, binary.LittleEndian.Uint16(image[4:6]))
	assert.EqualValues(t, 2, binary.LittleEndian.Uint16(image[6:8]))
	assert.EqualValues(t, 4, binary.LittleEndian.Uint16(image[8:10]))
	assert.EqualValues(t, 2, binary.LittleEndian.Uint16(image[10:12]))
	assert.EqualValues(t, 0, binary.LittleEndian.Uint32(image[12:16]))
	assert.Equal(t, []byte{0xeb, 0xfe}, image[16:18])

	directory := image[1024:1536]
	assert.Equal(t, []byte("hello\x00"), directory[0:6])
	assert.Equal(t, make([]byte, 32), directory[32:64], "slot 1 must be empty")
	assert.Equal(t, []byte("world\x00"), directory[64:70])
	assert.Equal(t, make([]byte, 512-128), directory[128:])

	// Program slot i starts at sector 4 + 2*i, i.e. byte offset (3 + 2*i)*512.
	hello := defaultTestPrograms[0].Data
	assert.Equal(t, hello, image[1536:1536+len(hello)])
	assert.Equal(t, make([]byte, 1024-len(hello)), image[1536+len(hello):2560])

	world := defaultTestPrograms[2].Data
	assert.Equal(t, world, image[3584:3584+len(world)])

	header, err := tyfs.DecodeHeader(image)
	require.NoError(t, err)
	assert.NoError(t, header.Validate())
}

func TestFormat__ExplicitSize(t *testing.T) {
	opts := defaultTestOptions
	opts.TotalSectors = 16
	opts.Signature = [4]byte{'T', 'E', 'S', 'T'}

	image := diskotest.CreateImage(t, opts, nil)
	require.Len(t, image, 16*512)

	header, err := tyfs.DecodeHeader(image)
	require.NoError(t, err)
	assert.True(t, header.HasSignature([4]byte{'T', 'E', 'S', 'T'}))
	assert.EqualValues(t, 16, header.TotalSectors)
	assert.EqualValues(t, 6*512, header.Reserved)
	assert.NoError(t, header.Validate())
}

func TestFormat__Errors(t *testing.T) {
	tests := []struct {
		name     string
		opts     tyfs.FormatOptions
		programs []tyfs.Program
		wantErr  error
	}{
		{
			name:    "no boot sectors",
			opts:    tyfs.FormatOptions{FileEntries: 1, MaxFileSize: 1},
			wantErr: errors.ErrInvalidArgument,
		},
		{
			name:    "no entries",
			opts:    tyfs.FormatOptions{BootSectors: 1, MaxFileSize: 1},
			wantErr: errors.ErrInvalidArgument,
		},
		{
			name: "image too small",
			opts: tyfs.FormatOptions{
				BootSectors: 1, FileEntries: 4, MaxFileSize: 2, TotalSectors: 9,
			},
			wantErr: errors.ErrNoSpaceOnDevice,
		},
		{
			name:    "image too big for header",
			opts:    tyfs.FormatOptions{BootSectors: 1, FileEntries: 1000, MaxFileSize: 100},
			wantErr: errors.ErrFileTooLarge,
		},
		{
			name: "boot code too big",
			opts: tyfs.FormatOptions{
				BootSectors: 1, FileEntries: 1, MaxFileSize: 1, BootCode: make([]byte, 497),
			},
			wantErr: errors.ErrFileTooLarge,
		},
		{
			name:     "too many programs",
			opts:     tyfs.FormatOptions{BootSectors: 1, FileEntries: 1, MaxFileSize: 1},
			programs: []tyfs.Program{{Name: "a"}, {Name: "b"}},
			wantErr:  errors.ErrNoSpaceOnDevice,
		},
		{
			name:     "name too long",
			opts:     defaultTestOptions,
			programs: []tyfs.Program{{Name: strings.Repeat("x", 32)}},
			wantErr:  errors.ErrNameTooLong,
		},
		{
			name:     "name has null",
			opts:     defaultTestOptions,
			programs: []tyfs.Program{{Name: "a\x00b"}},
			wantErr:  errors.ErrInvalidArgument,
		},
		{
			name:     "duplicate names",
			opts:     defaultTestOptions,
			programs: []tyfs.Program{{Name: "a"}, {Name: "a"}},
			wantErr:  errors.ErrInvalidArgument,
		},
		{
			name:     "data without a name",
			opts:     defaultTestOptions,
			programs: []tyfs.Program{{Data: []byte{1}}},
			wantErr:  errors.ErrInvalidArgument,
		},
		{
			name:     "program too big",
			opts:     defaultTestOptions,
			programs: []tyfs.Program{{Name: "big", Data: make([]byte, 1025)}},
			wantErr:  errors.ErrFileTooLarge,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			image, err := tyfs.Format(tc.opts, tc.programs)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, image)
		})
	}
}

// The longest name the builder accepts round-trips through the walker.
func TestFormat__MaxLengthName(t *testing.T) {
	name := strings.Repeat("n", tyfs.MaxNameLength)
	fixture := newWalkerFixture(
		t, defaultTestOptions, []tyfs.Program{{}, {}, {}, {Name: name}}, 1, nil)

	index, found, err := fixture.Walker.Find(name)
	require.NoError(t, err)
	assert.True(t, found)
	assert.EqualValues(t, 3, index)
}
