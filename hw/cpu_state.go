package hw

import (
	"emu65/emu/log"
	"emu65/hw/snapshot"
)

func (c *CPU) Snapshot() snapshot.CPU {
	return snapshot.CPU{
		Version:    snapshot.CPUVersion,
		PC:         int(c.PC),
		A:          int(c.A),
		X:          int(c.X),
		Y:          int(c.Y),
		S:          int(c.S),
		N:          int(c.N),
		Z:          int(c.Z),
		C:          int(c.C),
		V:          int(c.V),
		I:          int(c.I),
		D:          int(c.D),
		Cycles:     c.Cycles,
		Opcode:     int(c.opcode),
		IRQ:        c.irq,
		NMI:        c.nmi,
		PendingIRQ: c.pendingIRQ,
		PendingNMI: c.pendingNMI,
	}
}

// Restore migrates and validates s before applying it. On error, the CPU
// is left untouched.
func (c *CPU) Restore(s snapshot.CPU) error {
	s, err := snapshot.MigrateCPU(s)
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}

	c.PC = uint16(s.PC)
	c.A = uint8(s.A)
	c.X = uint8(s.X)
	c.Y = uint8(s.Y)
	c.S = uint8(s.S)
	c.N = uint8(s.N)
	c.Z = uint8(s.Z)
	c.C = uint8(s.C)
	c.V = uint8(s.V)
	c.I = uint8(s.I)
	c.D = uint8(s.D)
	c.Cycles = s.Cycles
	c.opcode = uint8(s.Opcode)
	c.irq = s.IRQ
	c.nmi = s.NMI
	c.pendingIRQ = s.PendingIRQ
	c.pendingNMI = s.PendingNMI
	c.halted = false

	log.ModState.DebugZ("cpu state restored").
		Hex16("PC", c.PC).
		Int64("cycles", c.Cycles).
		End()
	return nil
}
