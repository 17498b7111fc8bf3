package hw

// Undocumented opcodes of the NMOS 6502.

/* read-modify-write combos */

// ASL then ORA.
func (c *CPU) slo() {
	c.tmp = c.shl(c.rmwRead(), 0)
	c.A |= c.tmp
	c.setNZ(c.A)
}

// ROL then AND.
func (c *CPU) rla() {
	c.tmp = c.shl(c.rmwRead(), c.C)
	c.A &= c.tmp
	c.setNZ(c.A)
}

// LSR then EOR.
func (c *CPU) sre() {
	c.tmp = c.shr(c.rmwRead(), 0)
	c.A ^= c.tmp
	c.setNZ(c.A)
}

// ROR then ADC.
func (c *CPU) rra() {
	c.tmp = c.shr(c.rmwRead(), c.C)
	c.adc(c.tmp)
}

// DEC then CMP.
func (c *CPU) dcp() {
	c.tmp = c.rmwRead() - 1
	c.compare(c.A, c.tmp)
}

// INC then SBC.
func (c *CPU) isc() {
	c.tmp = c.rmwRead() + 1
	c.sbc(c.tmp)
}

/* combined loads and stores */

func (c *CPU) lax() {
	c.A = c.read(c.addr)
	c.X = c.A
	c.setNZ(c.A)
}

func (c *CPU) sax() { c.write(c.addr, c.A&c.X) }

func (c *CPU) las() {
	val := c.read(c.addr) & c.S
	c.A, c.X, c.S = val, val, val
	c.setNZ(val)
}

/* immediate combos */

func (c *CPU) anc() {
	c.A &= c.read(c.addr)
	c.setNZ(c.A)
	c.C = c.N
}

func (c *CPU) alr() {
	c.A &= c.read(c.addr)
	c.A = c.shr(c.A, 0)
}

// arr is AND then ROR, with flags of its own. In decimal mode, the result
// gets a BCD fix-up of each nibble.
func (c *CPU) arr() {
	val := c.A & c.read(c.addr)
	c.A = val>>1 | c.C<<7

	if c.D == 0 {
		c.setNZ(c.A)
		c.C = (c.A >> 6) & 1
		c.V = c.C ^ (c.A>>5)&1
		return
	}

	c.N = c.C
	c.Z = flag(c.A == 0)
	c.V = ((val ^ c.A) >> 6) & 1
	hi, lo := val>>4, val&0x0F
	if lo+lo&1 > 5 {
		c.A = c.A&0xF0 | (c.A+6)&0x0F
	}
	c.C = flag(hi+hi&1 > 5)
	if c.C != 0 {
		c.A += 0x60
	}
}

// Unstable opcode, the constant depends on the chip. 0xEE is the usual
// choice.
func (c *CPU) ane() {
	c.A = (c.A | 0xEE) & c.X & c.read(c.addr)
	c.setNZ(c.A)
}

func (c *CPU) lxa() {
	val := (c.A | 0xFF) & c.read(c.addr)
	c.A, c.X = val, val
	c.setNZ(val)
}

func (c *CPU) sbx() {
	val := c.read(c.addr)
	ax := c.A & c.X
	c.C = flag(ax >= val)
	c.X = ax - val
	c.setNZ(c.X)
}

/* unstable stores */

// sh stores val ANDed with the high byte of the base address plus one. When
// the indexing crosses a page, the stored value also replaces the high byte
// of the target address.
func (c *CPU) sh(val, index uint8) {
	base := c.addr - uint16(index)
	val &= uint8(base>>8) + 1
	addr := c.addr
	if c.cross {
		addr = uint16(val)<<8 | addr&0x00FF
	}
	c.write(addr, val)
}

func (c *CPU) sha() { c.sh(c.A&c.X, c.Y) }
func (c *CPU) shx() { c.sh(c.X, c.Y) }
func (c *CPU) shy() { c.sh(c.Y, c.X) }

func (c *CPU) tas() {
	c.S = c.A & c.X
	c.sh(c.S, c.Y)
}
