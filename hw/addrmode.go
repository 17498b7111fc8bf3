package hw

//go:generate go tool stringer -type=AddrMode

// AddrMode identifies how an instruction computes its operand address.
type AddrMode uint8

const (
	Imp AddrMode = iota // implied
	Acc                 // accumulator
	Imm                 // #$nn
	Zpg                 // $nn
	Zpx                 // $nn,X
	Zpy                 // $nn,Y
	Abs                 // $nnnn
	Abx                 // $nnnn,X
	Aby                 // $nnnn,Y
	Ind                 // ($nnnn)
	Izx                 // ($nn,X)
	Izy                 // ($nn),Y
	Rel                 // branch offset

	// Same as Abx, Aby and Izy for stores and read-modify-write
	// instructions, which always pay for the high byte fix-up.
	Abxw
	Abyw
	Izyw
)

// Number of operand bytes following the opcode.
var operandSize = [...]uint8{
	Imp: 0, Acc: 0, Imm: 1, Zpg: 1, Zpx: 1, Zpy: 1,
	Abs: 2, Abx: 2, Aby: 2, Ind: 2, Izx: 1, Izy: 1, Rel: 1,
	Abxw: 2, Abyw: 2, Izyw: 1,
}

var modes = [...]func(*CPU){
	Imp:  (*CPU).imp,
	Acc:  (*CPU).imp,
	Imm:  (*CPU).imm,
	Zpg:  (*CPU).zpg,
	Zpx:  (*CPU).zpx,
	Zpy:  (*CPU).zpy,
	Abs:  (*CPU).abs,
	Abx:  (*CPU).abx,
	Aby:  (*CPU).aby,
	Ind:  (*CPU).ind,
	Izx:  (*CPU).izx,
	Izy:  (*CPU).izy,
	Rel:  (*CPU).rel,
	Abxw: (*CPU).abxw,
	Abyw: (*CPU).abyw,
	Izyw: (*CPU).izyw,
}

func (c *CPU) fetch8() uint8 {
	v := c.read(c.PC)
	c.PC++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) imp() {
	c.cycles += 2
}

func (c *CPU) imm() {
	c.addr = c.PC
	c.PC++
	c.cycles += 2
}

func (c *CPU) zpg() {
	c.addr = uint16(c.fetch8())
	c.cycles += 3
}

// Indexed zero page addressing never leaves the zero page.
func (c *CPU) zpx() {
	c.addr = uint16(c.fetch8() + c.X)
	c.cycles += 4
}

func (c *CPU) zpy() {
	c.addr = uint16(c.fetch8() + c.Y)
	c.cycles += 4
}

func (c *CPU) abs() {
	c.addr = c.fetch16()
	c.cycles += 4
}

// indexed adds idx to base and accounts for the extra cycle taken when the
// high byte needs fixing, that is when a page is crossed or always for
// writes. In cycle accurate mode, the CPU also performs the dummy read at
// the unfixed address.
func (c *CPU) indexed(base uint16, idx uint8, write bool) {
	c.addr = base + uint16(idx)
	c.cross = base&0xFF00 != c.addr&0xFF00
	if !write && !c.cross {
		return
	}
	c.cycles++
	if c.cycleAccurate {
		c.read(base&0xFF00 | c.addr&0x00FF)
	}
}

func (c *CPU) abx() {
	c.indexed(c.fetch16(), c.X, false)
	c.cycles += 4
}

func (c *CPU) aby() {
	c.indexed(c.fetch16(), c.Y, false)
	c.cycles += 4
}

func (c *CPU) abxw() {
	c.indexed(c.fetch16(), c.X, true)
	c.cycles += 4
}

func (c *CPU) abyw() {
	c.indexed(c.fetch16(), c.Y, true)
	c.cycles += 4
}

// The pointer high byte is read from the same page as the low byte: JMP
// ($10FF) reads its target from $10FF and $1000.
func (c *CPU) ind() {
	ptr := c.fetch16()
	lo := c.read(ptr)
	hi := c.read(ptr&0xFF00 | (ptr+1)&0x00FF)
	c.addr = uint16(hi)<<8 | uint16(lo)
	c.cycles += 5
}

func (c *CPU) izx() {
	zp := c.fetch8() + c.X
	lo := c.read(uint16(zp))
	hi := c.read(uint16(zp + 1))
	c.addr = uint16(hi)<<8 | uint16(lo)
	c.cycles += 6
}

func (c *CPU) zpPointer() uint16 {
	zp := c.fetch8()
	lo := c.read(uint16(zp))
	hi := c.read(uint16(zp + 1))
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) izy() {
	c.indexed(c.zpPointer(), c.Y, false)
	c.cycles += 5
}

func (c *CPU) izyw() {
	c.indexed(c.zpPointer(), c.Y, true)
	c.cycles += 5
}

func (c *CPU) rel() {
	off := int8(c.fetch8())
	c.addr = c.PC + uint16(off)
	c.cycles += 2
}
