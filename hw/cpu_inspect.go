package hw

import (
	"fmt"
	"strconv"

	"emu65/hw/inspect"
)

// Number of instructions disassembled by Inspect.
const inspectDisasm = 5

// Inspect returns a report with the registers, the stack content and the
// next instructions.
func (c *CPU) Inspect() inspect.Report {
	return c.InspectN(inspectDisasm)
}

// InspectN is like Inspect but disassembles ndis instructions.
func (c *CPU) InspectN(ndis int) inspect.Report {
	r := inspect.Report{
		ID:   "cpu",
		Type: "cpu",
		Name: "6502",
		Registers: []inspect.Field{
			{Name: "PC", Value: inspect.Hex16(c.PC)},
			{Name: "A", Value: inspect.Hex8(c.A)},
			{Name: "X", Value: inspect.Hex8(c.X)},
			{Name: "Y", Value: inspect.Hex8(c.Y)},
			{Name: "S", Value: inspect.Hex8(c.S)},
			{Name: "P", Value: inspect.Hex8(uint8(c.P()))},
			{Name: "flags", Value: c.P().String()},
		},
		Stats: []inspect.Field{
			{Name: "cycles", Value: strconv.FormatInt(c.Cycles, 10)},
			{Name: "irq", Value: strconv.FormatBool(c.irq)},
			{Name: "nmi", Value: strconv.FormatBool(c.nmi)},
			{Name: "halted", Value: strconv.FormatBool(c.halted)},
		},
	}
	if c.profiling {
		for _, op := range c.TopOpcodes(3) {
			r.Stats = append(r.Stats, inspect.Field{
				Name:  fmt.Sprintf("op$%02X", op.Opcode),
				Value: op.Name + ":" + strconv.FormatUint(op.Count, 10),
			})
		}
	}

	// Stack content, from the top.
	for sp := int(c.S) + 1; sp <= 0xFF && len(r.Stack) < 8; sp++ {
		r.Stack = append(r.Stack, inspect.Hex8(c.Bus.Peek8(StackBase|uint16(sp))))
	}

	for _, op := range c.DisasmN(c.PC, ndis) {
		r.Disasm = append(r.Disasm, op.String())
	}
	return r
}
