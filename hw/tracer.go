package hw

import (
	"fmt"
	"io"
)

// cpuState stores the CPU state for the execution trace.
type cpuState struct {
	A, X, Y uint8
	P       P
	SP      uint8
	PC      uint16

	Clock int64
}

type disasmer interface {
	Disasm(pc uint16) DisasmOp
}

type tracer struct {
	d disasmer
	w io.Writer
}

func (c *CPU) traceState() cpuState {
	return cpuState{
		A:     c.A,
		X:     c.X,
		Y:     c.Y,
		P:     c.P(),
		SP:    c.S,
		PC:    c.PC,
		Clock: c.Cycles,
	}
}

func hexEncode(dst []byte, v byte) {
	const hextable = "0123456789ABCDEF"
	dst[0] = hextable[v>>4]
	dst[1] = hextable[v&0x0f]
}

func appendReg(buf []byte, name byte, v uint8) []byte {
	buf = append(buf, name, ':', 0, 0, ' ')
	hexEncode(buf[len(buf)-3:], v)
	return buf
}

// write the execution trace line of the instruction about to be executed.
func (t *tracer) write(state cpuState) {
	const opLen = 48

	dis := t.d.Disasm(state.PC)
	buf := dis.Bytes()
	for len(buf) < opLen {
		buf = append(buf, ' ')
	}

	buf = appendReg(buf, 'A', state.A)
	buf = appendReg(buf, 'X', state.X)
	buf = appendReg(buf, 'Y', state.Y)
	buf = appendReg(buf, 'P', uint8(state.P))
	buf = append(buf, 'S')
	buf = appendReg(buf, 'P', state.SP)

	buf = fmt.Appendf(buf, "CYC:%d\n", state.Clock)
	t.w.Write(buf)
}

// Bytes returns the string representation of a DisasmOp, this is optimized
// version, suitable for the execution tracer.
func (d DisasmOp) Bytes() []byte {
	const totalLen = 48
	buf := make([]byte, totalLen)

	hexEncode(buf[0:], byte(d.PC>>8))
	hexEncode(buf[2:], byte(d.PC))
	buf[4] = ' '
	buf[5] = ' '

	off := 6
	for i := range d.Buf {
		hexEncode(buf[off:], d.Buf[i])
		buf[off+2] = ' '
		off += 3
	}

	for ; off < 16; off++ {
		buf[off] = ' '
	}

	off += copy(buf[off:], []byte(d.Opcode))
	buf[off] = ' '
	off++

	buf = append(buf[:off], d.Oper...)
	off += len(d.Oper)
	if len(buf) > totalLen {
		buf = append(buf, ' ')
	} else {
		buf = buf[:totalLen]
		for i := off; i < totalLen; i++ {
			buf[i] = ' '
		}
	}

	return buf
}
