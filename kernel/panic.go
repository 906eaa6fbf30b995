package kernel

import (
	"fmt"

	"github.com/dargueta/tydos"
)

const panicRule = "-----------------------------------"

// Panic writes a diagnostic for an unrecoverable error to `display` and halts
// the machine. `module` names the part of the kernel the error came from.
//
// On real hardware Panic never returns. With an emulated machine whose Halt
// does return, the caller must stop whatever it was doing.
func Panic(display tydos.Display, machine tydos.Machine, module string, err error) {
	display.WriteLine("")
	display.WriteLine(panicRule)
	if err != nil {
		display.WriteLine(fmt.Sprintf("[%s] unrecoverable error: %s", module, err))
	}
	display.WriteLine("*** kernel panic: system halted ***")
	display.WriteLine(panicRule)
	machine.Halt()
}
