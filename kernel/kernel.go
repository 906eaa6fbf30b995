// Package kernel implements the TyDOS kernel: boot bring-up, the program
// loader, and the command shell.
package kernel

import (
	"log/slog"

	"github.com/dargueta/tydos"
	"github.com/dargueta/tydos/file_systems/tyfs"
	"github.com/dargueta/tydos/memory"
)

// Banner is written when the kernel starts.
const Banner = "TinyDOS 1.0"

// Kernel is a booted kernel, ready to run the shell.
type Kernel struct {
	config  Config
	mem     *memory.Memory
	console tydos.Console
	machine tydos.Machine
	header  tyfs.Header
	layout  Layout
	walker  *tyfs.Walker
	loader  *Loader
	shell   *Shell
	logger  *slog.Logger
}

// New boots from `disk` and sets up the kernel's components. It doesn't write
// anything to the console. If `logger` is nil, [slog.Default] is used.
func New(
	cfg Config,
	mem *memory.Memory,
	disk tydos.SectorReader,
	console tydos.Console,
	machine tydos.Machine,
	logger *slog.Logger,
) (*Kernel, error) {
	if logger == nil {
		logger = slog.Default()
	}

	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	header, err := Boot(disk, mem, cfg, logger)
	if err != nil {
		return nil, err
	}

	layout, err := NewLayout(mem, cfg, header)
	if err != nil {
		return nil, err
	}
	logger.Debug(
		"memory layout",
		slog.String("kernel", layout.Kernel.String()),
		slog.String("scratch", layout.Scratch.String()),
	)

	walker := tyfs.NewWalker(disk, header.Geometry(), layout.Scratch, logger)
	loader := NewLoader(
		walker,
		disk,
		mem,
		machine,
		console,
		cfg.ProgramBase,
		layout.Reserved(),
		logger,
	)

	return &Kernel{
		config:  cfg,
		mem:     mem,
		console: console,
		machine: machine,
		header:  header,
		layout:  layout,
		walker:  walker,
		loader:  loader,
		shell:   NewShell(console, walker, loader, header, logger),
		logger:  logger,
	}, nil
}

// Header returns the volume header read at boot.
func (k *Kernel) Header() tyfs.Header {
	return k.header
}

// Layout returns where the kernel image and scratch region live.
func (k *Kernel) Layout() Layout {
	return k.layout
}

// Walker returns the directory walker for the boot volume.
func (k *Kernel) Walker() *tyfs.Walker {
	return k.walker
}

// Loader returns the program loader.
func (k *Kernel) Loader() *Loader {
	return k.loader
}

// Shell returns the command shell.
func (k *Kernel) Shell() *Shell {
	return k.shell
}

// Run writes the banner, runs the shell until it stops, and halts the machine.
// If the shell stopped because a program returned, the machine was already
// halted.
func (k *Kernel) Run() error {
	k.console.WriteLine(Banner)
	err := k.shell.Run()
	if err != nil {
		k.logger.Error("shell stopped", slog.String("error", err.Error()))
	}
	if !k.shell.Trapped() {
		k.machine.Halt()
	}
	return err
}

// Start boots the kernel and runs it. If booting fails, the failure is
// reported on the console as a kernel panic and the machine is halted.
func Start(
	cfg Config,
	mem *memory.Memory,
	disk tydos.SectorReader,
	console tydos.Console,
	machine tydos.Machine,
	logger *slog.Logger,
) error {
	k, err := New(cfg, mem, disk, console, machine, logger)
	if err != nil {
		Panic(console, machine, "boot", err)
		return err
	}
	return k.Run()
}
