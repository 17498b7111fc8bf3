package hw

import (
	"fmt"
	"strings"
)

type DisasmOp struct {
	Opcode string
	Oper   string
	Buf    []byte
	PC     uint16
}

func (d DisasmOp) String() string {
	return strings.TrimRight(string(d.Bytes()), " ")
}

// Next returns the address of the instruction following d.
func (d DisasmOp) Next() uint16 {
	return d.PC + uint16(len(d.Buf))
}

// Disasm disassembles the instruction at pc, without side effects.
func (c *CPU) Disasm(pc uint16) DisasmOp {
	return disasm(c.Bus, pc)
}

// DisasmN disassembles n consecutive instructions starting at pc.
func (c *CPU) DisasmN(pc uint16, n int) []DisasmOp {
	dis := make([]DisasmOp, 0, n)
	for range n {
		op := c.Disasm(pc)
		dis = append(dis, op)
		pc = op.Next()
	}
	return dis
}

func disasm(bus Bus, pc uint16) DisasmOp {
	opcode := bus.Peek8(pc)
	op := &ops[opcode]

	d := DisasmOp{
		Opcode: op.name,
		PC:     pc,
		Buf:    []byte{opcode},
	}
	for i := range uint16(operandSize[op.mode]) {
		d.Buf = append(d.Buf, bus.Peek8(pc+1+i))
	}

	var oper8 uint8
	var oper16 uint16
	if len(d.Buf) > 1 {
		oper8 = d.Buf[1]
		oper16 = uint16(oper8)
	}
	if len(d.Buf) > 2 {
		oper16 |= uint16(d.Buf[2]) << 8
	}

	switch op.mode {
	case Imp:
	case Acc:
		d.Oper = "A"
	case Imm:
		d.Oper = fmt.Sprintf("#$%02X", oper8)
	case Zpg:
		d.Oper = fmt.Sprintf("$%02X", oper8)
	case Zpx:
		d.Oper = fmt.Sprintf("$%02X,X", oper8)
	case Zpy:
		d.Oper = fmt.Sprintf("$%02X,Y", oper8)
	case Abs:
		d.Oper = formatAddr(oper16)
	case Abx, Abxw:
		d.Oper = formatAddr(oper16) + ",X"
	case Aby, Abyw:
		d.Oper = formatAddr(oper16) + ",Y"
	case Ind:
		d.Oper = "(" + formatAddr(oper16) + ")"
	case Izx:
		d.Oper = fmt.Sprintf("($%02X,X)", oper8)
	case Izy, Izyw:
		d.Oper = fmt.Sprintf("($%02X),Y", oper8)
	case Rel:
		d.Oper = formatAddr(pc + 2 + uint16(int8(oper8)))
	}
	return d
}

var addressLabels = map[uint16]string{
	NMIVector:   "NmiVector_FFFA",
	ResetVector: "ResetVector_FFFC",
	IRQVector:   "IrqVector_FFFE",
}

func formatAddr(addr uint16) string {
	if label, ok := addressLabels[addr]; ok {
		return label
	}
	return fmt.Sprintf("$%04X", addr)
}
