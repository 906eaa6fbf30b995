package kernel_test

import (
	"testing"

	"github.com/dargueta/tydos/disks"
	"github.com/dargueta/tydos/errors"
	"github.com/dargueta/tydos/file_systems/tyfs"
	"github.com/dargueta/tydos/kernel"
	"github.com/dargueta/tydos/memory"
	diskotest "github.com/dargueta/tydos/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Volume used by most tests: the directory is sector 2, program slot i is
// sector 3+i, and programs load to 0xfe00 - 4*32.
var smallVolume = tyfs.FormatOptions{
	BootSectors: 1,
	FileEntries: 4,
	MaxFileSize: 1,
}

const (
	smallVolumeScratch     = memory.Address(0x7e00)
	smallVolumeLoadAddress = memory.Address(0xfd80)
)

var helloProgram = tyfs.Program{
	Name: "hello.bin",
	Data: diskotest.ProgramData("hello.bin", 0x90, 512),
}

type fixture struct {
	Config  kernel.Config
	Image   []byte
	Memory  *memory.Memory
	Disk    *diskotest.RecordingDisk
	Console *diskotest.ScriptedConsole
	Machine *diskotest.RecordingMachine
}

func newFixture(
	t *testing.T, opts tyfs.FormatOptions, programs []tyfs.Program, input ...string,
) *fixture {
	return newFixtureFromImage(
		t, kernel.DefaultConfig(), diskotest.CreateImage(t, opts, programs), input...)
}

func newFixtureFromImage(
	t *testing.T, cfg kernel.Config, image []byte, input ...string,
) *fixture {
	mem := memory.New(cfg.MemorySize)
	return &fixture{
		Config: cfg,
		Image:  image,
		Memory: mem,
		Disk: &diskotest.RecordingDisk{
			Disk: diskotest.CreateDisk(t, image, disks.DefaultSlug, mem),
		},
		Console: diskotest.NewScriptedConsole(input...),
		Machine: &diskotest.RecordingMachine{},
	}
}

// boot creates the kernel, then clears everything the boot process recorded so
// tests only see what happens afterwards.
func (f *fixture) boot(t *testing.T) *kernel.Kernel {
	k, err := kernel.New(f.Config, f.Memory, f.Disk, f.Console, f.Machine, nil)
	require.NoError(t, err, "kernel failed to boot")

	f.Disk.Reset()
	f.Memory.ResetTouched()
	f.Console.ResetOutput()
	return k
}

func TestKernelNew__Layout(t *testing.T) {
	f := newFixture(t, smallVolume, []tyfs.Program{helloProgram})
	k := f.boot(t)

	assert.EqualValues(t, 0x7c00, k.Layout().Kernel.Base())
	assert.EqualValues(t, 512, k.Layout().Kernel.Len())
	assert.Equal(t, smallVolumeScratch, k.Layout().Scratch.Base())
	assert.EqualValues(t, kernel.DefaultScratchSectors*512, k.Layout().Scratch.Len())
	assert.EqualValues(t, 4, k.Header().FileEntries)
	assert.Empty(t, f.Console.Output(), "booting must not write to the console")
}

func TestKernelRun(t *testing.T) {
	f := newFixture(t, smallVolume, []tyfs.Program{helloProgram}, "quit")
	k := f.boot(t)

	err := k.Run()
	require.NoError(t, err)
	assert.Equal(t, "TinyDOS 1.0\n$ Program halted. Bye.\n", f.Console.Output())
	assert.Equal(t, 1, f.Machine.Halts)
	assert.Empty(t, f.Machine.Jumps)
}

func TestStart(t *testing.T) {
	f := newFixture(t, smallVolume, []tyfs.Program{helloProgram}, "list")

	err := kernel.Start(f.Config, f.Memory, f.Disk, f.Console, f.Machine, nil)
	require.NoError(t, err)
	assert.Equal(t, "TinyDOS 1.0\n$ hello.bin\n$ ", f.Console.Output())
	assert.Equal(t, 1, f.Machine.Halts)
}

// A volume the kernel can't use is a kernel panic.
func TestStart__BadVolumePanics(t *testing.T) {
	image := diskotest.CreateImage(t, smallVolume, nil)
	copy(image, "NOPE")
	f := newFixtureFromImage(t, kernel.DefaultConfig(), image, "help")

	err := kernel.Start(f.Config, f.Memory, f.Disk, f.Console, f.Machine, nil)
	assert.ErrorIs(t, err, errors.ErrInvalidFileSystem)
	assert.Equal(t, 1, f.Machine.Halts)
	assert.NotContains(t, f.Console.Output(), kernel.Banner)
	assert.Contains(t, f.Console.Output(), "[boot] unrecoverable error: ")
	assert.Contains(t, f.Console.Output(), "*** kernel panic: system halted ***")
	assert.Equal(t, []string{"help"}, f.Console.Input, "no input may be read")
}

func TestKernelNew__BadConfig(t *testing.T) {
	cfg := kernel.DefaultConfig()
	cfg.ScratchSectors = 0
	f := newFixtureFromImage(t, cfg, diskotest.CreateImage(t, smallVolume, nil))

	_, err := kernel.New(f.Config, f.Memory, f.Disk, f.Console, f.Machine, nil)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
	assert.Empty(t, f.Disk.Requests)
}
