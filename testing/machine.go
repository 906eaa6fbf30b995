package testing

import (
	"fmt"

	"github.com/dargueta/tydos/memory"
)

// JumpTrap is the value a [RecordingMachine] panics with when PanicOnJump is
// set.
type JumpTrap struct {
	Entry memory.Address
}

func (trap JumpTrap) String() string {
	return fmt.Sprintf("jump to %#05x", trap.Entry)
}

// RecordingMachine is a [tydos.Machine] that records control transfers instead
// of performing them.
//
// By default Jump returns to its caller, which the kernel sees as a program
// handing control back. Set PanicOnJump to model a jump that never returns;
// recover the [JumpTrap] in the test.
type RecordingMachine struct {
	Jumps       []memory.Address
	Halts       int
	PanicOnJump bool
}

func (m *RecordingMachine) Jump(entry memory.Address) {
	m.Jumps = append(m.Jumps, entry)
	if m.PanicOnJump {
		panic(JumpTrap{Entry: entry})
	}
}

func (m *RecordingMachine) Halt() {
	m.Halts++
}

// CatchJump calls `f` and returns the trap it panicked with. `ok` is false if
// `f` returned normally. Panics other than a [JumpTrap] are propagated.
func CatchJump(f func()) (trap JumpTrap, ok bool) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		trap, ok = recovered.(JumpTrap)
		if !ok {
			panic(recovered)
		}
	}()

	f()
	return JumpTrap{}, false
}
