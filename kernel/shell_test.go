package kernel_test

import (
	"strings"
	"testing"

	"github.com/dargueta/tydos/errors"
	"github.com/dargueta/tydos/file_systems/tyfs"
	"github.com/dargueta/tydos/kernel"
	diskotest "github.com/dargueta/tydos/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shellPrograms = []tyfs.Program{
	helloProgram,
	{},
	{Name: "edit", Data: []byte{0xc3}},
}

func runShell(t *testing.T, input ...string) (*fixture, *kernel.Shell) {
	f := newFixture(t, smallVolume, shellPrograms, input...)
	k := f.boot(t)
	err := k.Shell().Run()
	require.NoError(t, err)
	return f, k.Shell()
}

// Empty lines only get a new prompt.
func TestShell__EmptyLines(t *testing.T) {
	f, shell := runShell(t, "", "", "")

	assert.Equal(t, "$ $ $ $ ", f.Console.Output())
	assert.NotContains(t, f.Console.Output(), kernel.MessageCommandNotFound)
	assert.Empty(t, f.Disk.Requests, "nothing may be dispatched")
	assert.False(t, shell.Running())
}

// Quitting stops the shell before the next line is read.
func TestShell__Quit(t *testing.T) {
	f, shell := runShell(t, "quit", "list")

	assert.Equal(t, "$ Program halted. Bye.\n", f.Console.Output())
	assert.Equal(t, []string{"list"}, f.Console.Input)
	assert.False(t, shell.Running())
	assert.Empty(t, f.Disk.Requests)
}

func TestShell__CommandNotFound(t *testing.T) {
	f, _ := runShell(t, "frobnicate", "HELP", "quit")

	assert.Equal(
		t,
		[]string{
			"$ Command not found",
			"$ Command not found",
			"$ Program halted. Bye.",
		},
		f.Console.OutputLines(),
	)
	assert.Empty(t, f.Machine.Jumps)
}

func TestShell__Help(t *testing.T) {
	f, _ := runShell(t, "help")

	output := f.Console.Output()
	for _, command := range []string{"help", "list", "info", "exec", "quit"} {
		assert.Contains(t, output, "   "+command+" ")
	}
	assert.True(t, strings.HasSuffix(output, "\n$ "))
}

func TestShell__List(t *testing.T) {
	f, _ := runShell(t, "list", "list")

	assert.Equal(
		t,
		[]string{"$ hello.bin", "edit", "$ hello.bin", "edit", "$ "},
		f.Console.OutputLines(),
	)
}

func TestShell__ListEmpty(t *testing.T) {
	f := newFixture(t, smallVolume, nil, "list")
	k := f.boot(t)
	require.NoError(t, k.Shell().Run())

	assert.Equal(t, "$ $ ", f.Console.Output())
}

func TestShell__Info(t *testing.T) {
	f, _ := runShell(t, "info")

	assert.Equal(
		t,
		[]string{
			`$ Signature:      "TyFS"`,
			"Total sectors:  6",
			"Boot sectors:   1",
			"Directory:      sectors 2-2, 4 entries",
			"Programs:       sectors 3-6, 1 sectors each",
			"$ ",
		},
		f.Console.OutputLines(),
	)
}

// A line naming a program runs it.
func TestShell__RunByName(t *testing.T) {
	f := newFixture(t, smallVolume, shellPrograms, "edit", "quit")
	k := f.boot(t)
	f.Machine.PanicOnJump = true

	trap, jumped := diskotest.CatchJump(func() { _ = k.Shell().Run() })
	require.True(t, jumped)
	assert.Equal(t, smallVolumeLoadAddress, trap.Entry)
	assert.Equal(
		t,
		diskotest.ReadRequest{Sector: 5, Count: 1, Dest: smallVolumeLoadAddress},
		f.Disk.Requests[len(f.Disk.Requests)-1],
	)
}

func TestShell__Exec(t *testing.T) {
	f := newFixture(t, smallVolume, shellPrograms, "exec")
	k := f.boot(t)
	f.Machine.PanicOnJump = true

	trap, jumped := diskotest.CatchJump(func() { _ = k.Shell().Run() })
	require.True(t, jumped)
	assert.Equal(t, smallVolumeLoadAddress, trap.Entry)

	loaded, err := f.Memory.Region(smallVolumeLoadAddress, 512)
	require.NoError(t, err)
	assert.Equal(t, helloProgram.Data, loaded.Bytes())
}

func TestShell__ExecEmptyDisk(t *testing.T) {
	f := newFixture(t, smallVolume, nil, "exec")
	k := f.boot(t)
	require.NoError(t, k.Shell().Run())

	assert.Equal(t, "$ No programs on disk\n$ ", f.Console.Output())
	assert.Empty(t, f.Machine.Jumps)
}

// A program handing control back halts the system; the shell doesn't continue.
func TestShell__ProgramReturns(t *testing.T) {
	f := newFixture(t, smallVolume, shellPrograms, "hello.bin", "list")
	k := f.boot(t)

	err := k.Run()
	require.NoError(t, err)
	assert.True(t, k.Shell().Trapped())
	assert.Equal(t, 1, f.Machine.Halts, "machine must be halted exactly once")
	assert.Equal(t, []string{"list"}, f.Console.Input)
	assert.Contains(t, f.Console.Output(), "*** kernel panic: system halted ***")
}

// Disk errors are reported and the shell keeps going.
func TestShell__DiskErrors(t *testing.T) {
	f := newFixture(t, smallVolume, shellPrograms, "list", "missing", "hello.bin", "quit")
	k := f.boot(t)
	f.Disk.Fail = func(request diskotest.ReadRequest) error {
		return errors.ErrIOFailed.WithMessage("injected failure")
	}

	require.NoError(t, k.Shell().Run())
	lines := f.Console.OutputLines()
	require.Len(t, lines, 4)
	for _, line := range lines[:3] {
		assert.Contains(t, line, "directory unavailable")
		assert.NotContains(t, line, kernel.MessageCommandNotFound)
	}
	assert.Equal(t, "$ Program halted. Bye.", lines[3])
	assert.Empty(t, f.Machine.Jumps)
}

func TestShell__ProgramReadError(t *testing.T) {
	f := newFixture(t, smallVolume, shellPrograms, "hello.bin")
	k := f.boot(t)
	f.Disk.Fail = func(request diskotest.ReadRequest) error {
		if request.Dest == smallVolumeLoadAddress {
			return errors.ErrIOFailed.WithMessage("injected failure")
		}
		return nil
	}

	require.NoError(t, k.Shell().Run())
	lines := f.Console.OutputLines()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "injected failure")
	assert.Equal(t, "$ ", lines[1])
	assert.False(t, f.Memory.Touched(smallVolumeLoadAddress, 512))
}
