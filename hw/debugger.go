package hw

// A Debugger controls and monitors a CPU.
type Debugger interface {
	// Trace is called before each step with the address of the next
	// instruction. Returning false stops the CPU before it executes it,
	// without consuming any cycle.
	Trace(pc uint16) bool

	// Interrupt is called when an interrupt has been serviced. prevpc is
	// the address of the instruction that was about to be executed, curpc is
	// the address of the interrupt handler, and isNMI is true if the interrupt
	// is a non-maskable interrupt.
	Interrupt(prevpc, curpc uint16, isNMI bool)

	// Reset is called after the CPU has been reset.
	Reset()
}

// HookFunc adapts an execution predicate into a Debugger.
type HookFunc func(pc uint16) bool

func (f HookFunc) Trace(pc uint16) bool                     { return f(pc) }
func (HookFunc) Interrupt(prevpc, curpc uint16, isNMI bool) {}
func (HookFunc) Reset()                                     {}

type nopDebugger struct{}

func (nopDebugger) Trace(pc uint16) bool                       { return true }
func (nopDebugger) Interrupt(prevpc, curpc uint16, isNMI bool) {}
func (nopDebugger) Reset()                                     {}
