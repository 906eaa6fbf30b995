package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/dargueta/tydos/memory"
)

// programStarted is how hostMachine.Jump unwinds out of the kernel.
type programStarted struct {
	entry memory.Address
}

// hostMachine stands in for the CPU. It can't execute the loaded program, so a
// jump dumps the program's memory instead and stops the kernel.
type hostMachine struct {
	mem         *memory.Memory
	output      io.Writer
	programSize uint
	halted      bool
}

func (m *hostMachine) Jump(entry memory.Address) {
	fmt.Fprintf(m.output, "jumping to %#05x\n", entry)

	region, err := m.mem.Region(entry, m.programSize)
	if err == nil {
		fmt.Fprint(m.output, hex.Dump(region.Bytes()))
	} else {
		fmt.Fprintf(m.output, "can't dump program: %s\n", err)
	}
	panic(programStarted{entry: entry})
}

func (m *hostMachine) Halt() {
	m.halted = true
}

// run calls `f`, returning normally if `f` ended by jumping to a program.
func (m *hostMachine) run(f func() error) (err error) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		if _, ok := recovered.(programStarted); !ok {
			panic(recovered)
		}
		err = nil
	}()
	return f()
}
