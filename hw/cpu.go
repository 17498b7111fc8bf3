package hw

import (
	"io"

	"emu65/emu/log"
)

// Locations reserved for vector pointers.
const (
	NMIVector   = uint16(0xFFFA) // Non-Maskable Interrupt
	ResetVector = uint16(0xFFFC) // Reset
	IRQVector   = uint16(0xFFFE) // Interrupt Request
)

// StackBase is the fixed page holding the stack.
const StackBase = uint16(0x0100)

// Bus is the view the CPU has of the address space.
type Bus interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, val uint8)

	// Peek8 reads without side effects (disassembly, inspection).
	Peek8(addr uint16) uint8
}

type CPU struct {
	Bus Bus

	// cpu registers
	A, X, Y, S uint8
	PC         uint16

	// Status flags, each one is 0 or 1. They're kept as integers since
	// some instructions use them as arithmetic operands.
	N, Z, C, V, I, D uint8

	Cycles int64 // CPU cycles

	// execution state of the current instruction
	opcode  uint8
	addr    uint16 // effective operand address
	cross   bool   // operand address crossed a page
	tmp     uint8  // read-modify-write result
	operand uint8  // read-modify-write input
	cycles  int    // cycles of the current step

	// last bus transaction
	address uint16
	data    uint8

	// interrupt handling
	irq, nmi               bool // lines
	pendingIRQ, pendingNMI bool

	halted bool

	cycleAccurate bool
	profiling     bool
	prof          profile

	// Non-nil when execution tracing is enabled.
	tracer *tracer
	dbg    Debugger
}

// NewCPU creates a new CPU connected to bus. Reset must be called before
// running it.
func NewCPU(bus Bus) *CPU {
	return &CPU{
		Bus: bus,
		dbg: nopDebugger{},
	}
}

// Reset puts the CPU in its power-on state and loads PC from the reset
// vector.
func (c *CPU) Reset() {
	c.A = 0x00
	c.X = 0x00
	c.Y = 0x00
	c.S = 0x00
	c.N, c.V, c.D, c.C = 0, 0, 0, 0
	c.Z, c.I = 1, 1

	// The interrupt lines keep their level, only the latches are cleared.
	c.pendingNMI = false
	c.pendingIRQ = c.irq && c.I == 0
	c.halted = false

	// Directly read from the bus to avoid recording the accesses.
	lo := c.Bus.Read8(ResetVector)
	hi := c.Bus.Read8(ResetVector + 1)
	c.PC = uint16(hi)<<8 | uint16(lo)
	c.dbg.Reset()
}

// Step executes one instruction, or services a pending interrupt, and
// returns the number of cycles it took. If the debugger refuses to let the
// CPU execute the instruction at PC, Step returns 0 and nothing happens.
func (c *CPU) Step() int {
	if !c.dbg.Trace(c.PC) {
		return 0
	}

	c.cycles = 0
	switch {
	case c.pendingNMI:
		c.pendingNMI = false
		c.interrupt(NMIVector, true)
	case c.pendingIRQ:
		c.interrupt(IRQVector, false)
	default:
		c.execute()
	}

	c.Cycles += int64(c.cycles)
	c.pendingIRQ = c.irq && c.I == 0
	return c.cycles
}

func (c *CPU) execute() {
	if c.tracer != nil {
		c.tracer.write(c.traceState())
	}

	c.opcode = c.fetch8()
	op := &ops[c.opcode]
	c.cross = false

	modes[op.mode](c)
	op.exec(c)
	if op.rmw {
		c.commit()
	}
	c.cycles += int(op.extra)

	if c.profiling {
		c.prof.counts[c.opcode]++
	}
}

// Run executes instructions as long as the cycles consumed don't exceed
// budget, the last instruction may thus overshoot it. It stops early when
// a step doesn't consume any cycle, and returns the consumed cycles.
func (c *CPU) Run(budget int64) int64 {
	var consumed int64
	for consumed <= budget {
		n := c.Step()
		if n == 0 {
			break
		}
		consumed += int64(n)
	}
	return consumed
}

// Halted reports whether the CPU is jammed.
func (c *CPU) Halted() bool {
	return c.halted
}

func (c *CPU) read(addr uint16) uint8 {
	val := c.Bus.Read8(addr)
	c.address, c.data = addr, val
	if c.cycleAccurate {
		c.prof.record(addr, val, false, c.Cycles+int64(c.cycles))
	}
	return val
}

func (c *CPU) write(addr uint16, val uint8) {
	c.Bus.Write8(addr, val)
	c.address, c.data = addr, val
	if c.cycleAccurate {
		c.prof.record(addr, val, true, c.Cycles+int64(c.cycles))
	}
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := c.read(addr)
	hi := c.read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// commit writes back the result of a read-modify-write instruction. The
// real CPU writes the unmodified value first, which is only reproduced in
// cycle accurate mode. Both paths take the same number of cycles.
func (c *CPU) commit() {
	if c.cycleAccurate {
		c.write(c.addr, c.operand)
	}
	c.write(c.addr, c.tmp)
	c.cycles += 2
}

/* stack operations */

func (c *CPU) push8(val uint8) {
	c.write(StackBase|uint16(c.S), val)
	c.S--
}

func (c *CPU) push16(val uint16) {
	c.push8(uint8(val >> 8))
	c.push8(uint8(val & 0xff))
}

func (c *CPU) pull8() uint8 {
	c.S++
	return c.read(StackBase | uint16(c.S))
}

func (c *CPU) pull16() uint16 {
	lo := c.pull8()
	hi := c.pull8()
	return uint16(hi)<<8 | uint16(lo)
}

/* interrupt handling */

// SetIRQ sets the level of the IRQ line. An IRQ is pending as long as the
// line is active and interrupts are enabled.
func (c *CPU) SetIRQ(active bool) {
	c.irq = active
	c.pendingIRQ = c.irq && c.I == 0
}

// SetNMI sets the level of the NMI line. An NMI is only latched when the
// line becomes active.
func (c *CPU) SetNMI(active bool) {
	if active && !c.nmi {
		c.pendingNMI = true
	}
	c.nmi = active
}

func (c *CPU) PendingIRQ() bool { return c.pendingIRQ }
func (c *CPU) PendingNMI() bool { return c.pendingNMI }

// interrupt pushes PC and the status (with B clear) and jumps to the
// handler found at vector.
func (c *CPU) interrupt(vector uint16, isNMI bool) {
	prevpc := c.PC
	c.push16(c.PC)
	c.push8(uint8(c.P() &^ Break))
	c.I = 1
	c.PC = c.read16(vector)
	c.cycles += 7

	c.dbg.Interrupt(prevpc, c.PC, isNMI)
}

/* tracing / debugging */

func (c *CPU) SetTraceOutput(w io.Writer) {
	if w == nil {
		c.tracer = nil
		return
	}
	c.tracer = &tracer{w: w, d: c}
}

func (c *CPU) SetDebugger(dbg Debugger) {
	if dbg == nil {
		dbg = nopDebugger{}
	}
	c.dbg = dbg
}

// SetCycleAccurate enables the dummy bus accesses performed by the real
// CPU, and the recording of bus accesses.
func (c *CPU) SetCycleAccurate(enabled bool) {
	c.cycleAccurate = enabled
}

func (c *CPU) CycleAccurate() bool { return c.cycleAccurate }

func (c *CPU) jam() {
	c.PC--
	if !c.halted {
		log.ModCPU.WarnZ("CPU jammed").
			Hex16("PC", c.PC).
			Hex8("opcode", c.opcode).
			End()
	}
	c.halted = true
}
