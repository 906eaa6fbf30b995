// Package tydos defines the interfaces between the TyDOS kernel core and the
// machine it runs on.
//
// The core itself (the directory walker, program loader and shell) lives in the
// file_systems/tyfs and kernel packages. Everything it needs from the outside
// world comes through the interfaces here, so the same kernel runs against a
// disk image on the host or against fakes in tests.
package tydos

import (
	"github.com/dargueta/tydos/memory"
)

// SectorReader is the boot drive's read service.
type SectorReader interface {
	// ReadSectors copies `count` sectors starting at the 1-based sector number
	// `sector` into physical memory at `dest`. It blocks until the transfer has
	// completed or failed. There is no partial success: on error, the contents
	// of the destination must not be trusted.
	ReadSectors(sector uint, count uint, dest memory.Address) error
}

// Display is the text output device.
type Display interface {
	// Write writes `text` at the cursor without a line break.
	Write(text string)
	// WriteLine writes `text` followed by a line break.
	WriteLine(text string)
}

// LineReader is the keyboard line input device.
type LineReader interface {
	// ReadLine blocks until a full line has been typed and returns it without
	// the line terminator. It returns [io.EOF] when no more input will arrive.
	ReadLine() (string, error)
}

// Console combines the display and keyboard.
type Console interface {
	Display
	LineReader
}

// Machine is the CPU's control-transfer capability.
type Machine interface {
	// Jump transfers control to code at `entry`. It doesn't return to its
	// caller; an implementation that does is reporting that the program
	// handed control back, which the kernel treats as a fatal trap.
	Jump(entry memory.Address)
	// Halt stops the CPU.
	Halt()
}
