package hw

/* loads and stores */

func (c *CPU) lda() {
	c.A = c.read(c.addr)
	c.setNZ(c.A)
}

func (c *CPU) ldx() {
	c.X = c.read(c.addr)
	c.setNZ(c.X)
}

func (c *CPU) ldy() {
	c.Y = c.read(c.addr)
	c.setNZ(c.Y)
}

func (c *CPU) sta() { c.write(c.addr, c.A) }
func (c *CPU) stx() { c.write(c.addr, c.X) }
func (c *CPU) sty() { c.write(c.addr, c.Y) }

/* transfers */

func (c *CPU) tax() { c.X = c.A; c.setNZ(c.X) }
func (c *CPU) tay() { c.Y = c.A; c.setNZ(c.Y) }
func (c *CPU) txa() { c.A = c.X; c.setNZ(c.A) }
func (c *CPU) tya() { c.A = c.Y; c.setNZ(c.A) }
func (c *CPU) tsx() { c.X = c.S; c.setNZ(c.X) }
func (c *CPU) txs() { c.S = c.X }

/* stack */

func (c *CPU) pha() { c.push8(c.A) }

// PHP and BRK push the status with the break flag set.
func (c *CPU) php() { c.push8(uint8(c.P() | Break)) }

func (c *CPU) pla() {
	c.A = c.pull8()
	c.setNZ(c.A)
}

func (c *CPU) plp() { c.SetP(P(c.pull8())) }

/* logical */

func (c *CPU) and() {
	c.A &= c.read(c.addr)
	c.setNZ(c.A)
}

func (c *CPU) ora() {
	c.A |= c.read(c.addr)
	c.setNZ(c.A)
}

func (c *CPU) eor() {
	c.A ^= c.read(c.addr)
	c.setNZ(c.A)
}

func (c *CPU) bit() {
	val := c.read(c.addr)
	c.Z = flag(c.A&val == 0)
	c.N = val >> 7
	c.V = (val >> 6) & 1
}

/* arithmetic */

// adc adds val and carry to A. In decimal mode, invalid BCD digits are
// handled like the NMOS 6502: N and V come from the intermediate result
// once the low digit is adjusted, Z from the binary sum.
func (c *CPU) adc(val uint8) {
	sum := uint(c.A) + uint(val) + uint(c.C)
	c.Z = flag(uint8(sum) == 0)
	if c.D == 0 {
		c.N = uint8(sum>>7) & 1
		c.V = flag((c.A^val)&0x80 == 0 && (uint(c.A)^sum)&0x80 != 0)
		c.C = flag(sum > 0xFF)
		c.A = uint8(sum)
		return
	}

	lo := int(c.A&0x0F) + int(val&0x0F) + int(c.C)
	if lo >= 0x0A {
		lo = ((lo + 0x06) & 0x0F) + 0x10
	}
	signed := int(int8(c.A&0xF0)) + int(int8(val&0xF0)) + lo
	c.N = uint8(signed) >> 7
	c.V = flag(signed < -128 || signed > 127)

	res := int(c.A&0xF0) + int(val&0xF0) + lo
	if res >= 0xA0 {
		res += 0x60
	}
	c.C = flag(res >= 0x100)
	c.A = uint8(res)
}

// sbc subtracts val and borrow from A. Flags are always computed from the
// binary result, decimal mode only adjusts A.
func (c *CPU) sbc(val uint8) {
	borrow := int(1 - c.C)
	diff := int(c.A) - int(val) - borrow
	c.setNZ(uint8(diff))
	c.V = flag((c.A^uint8(diff))&0x80 != 0 && (c.A^val)&0x80 != 0)
	c.C = flag(diff >= 0)
	if c.D != 0 {
		lo := int(c.A&0x0F) - int(val&0x0F) - borrow
		if lo < 0 {
			lo = ((lo - 0x06) & 0x0F) - 0x10
		}
		diff = int(c.A&0xF0) - int(val&0xF0) + lo
		if diff < 0 {
			diff -= 0x60
		}
	}
	c.A = uint8(diff)
}

func (c *CPU) adcm() { c.adc(c.read(c.addr)) }
func (c *CPU) sbcm() { c.sbc(c.read(c.addr)) }

func (c *CPU) compare(reg, val uint8) {
	c.C = flag(reg >= val)
	c.setNZ(reg - val)
}

func (c *CPU) cmp() { c.compare(c.A, c.read(c.addr)) }
func (c *CPU) cpx() { c.compare(c.X, c.read(c.addr)) }
func (c *CPU) cpy() { c.compare(c.Y, c.read(c.addr)) }

/* increments and decrements */

// rmwRead reads the operand of a read-modify-write instruction. Its result
// must be stored into tmp, commit writes it back.
func (c *CPU) rmwRead() uint8 {
	c.operand = c.read(c.addr)
	return c.operand
}

func (c *CPU) inc() {
	c.tmp = c.rmwRead() + 1
	c.setNZ(c.tmp)
}

func (c *CPU) dec() {
	c.tmp = c.rmwRead() - 1
	c.setNZ(c.tmp)
}

func (c *CPU) inx() { c.X++; c.setNZ(c.X) }
func (c *CPU) iny() { c.Y++; c.setNZ(c.Y) }
func (c *CPU) dex() { c.X--; c.setNZ(c.X) }
func (c *CPU) dey() { c.Y--; c.setNZ(c.Y) }

/* shifts and rotates */

func (c *CPU) shl(val, in uint8) uint8 {
	c.C = val >> 7
	val = val<<1 | in
	c.setNZ(val)
	return val
}

func (c *CPU) shr(val, in uint8) uint8 {
	c.C = val & 1
	val = val>>1 | in<<7
	c.setNZ(val)
	return val
}

func (c *CPU) asl() { c.tmp = c.shl(c.rmwRead(), 0) }
func (c *CPU) lsr() { c.tmp = c.shr(c.rmwRead(), 0) }
func (c *CPU) rol() { c.tmp = c.shl(c.rmwRead(), c.C) }
func (c *CPU) ror() { c.tmp = c.shr(c.rmwRead(), c.C) }

func (c *CPU) asla() { c.A = c.shl(c.A, 0) }
func (c *CPU) lsra() { c.A = c.shr(c.A, 0) }
func (c *CPU) rola() { c.A = c.shl(c.A, c.C) }
func (c *CPU) rora() { c.A = c.shr(c.A, c.C) }

/* jumps and subroutines */

func (c *CPU) jmp() { c.PC = c.addr }

func (c *CPU) jsr() {
	c.push16(c.PC - 1)
	c.PC = c.addr
}

func (c *CPU) rts() { c.PC = c.pull16() + 1 }

func (c *CPU) rti() {
	c.SetP(P(c.pull8()))
	c.PC = c.pull16()
}

func (c *CPU) brk() {
	c.PC++ // padding byte
	c.push16(c.PC)
	c.php()
	c.I = 1
	c.PC = c.read16(IRQVector)
}

/* branches */

// branch takes one more cycle when the branch is taken, and another one if
// the target is on a different page than the next instruction.
func (c *CPU) branch(cond bool) {
	if !cond {
		return
	}
	c.cycles++
	if c.PC&0xFF00 != c.addr&0xFF00 {
		c.cycles++
	}
	c.PC = c.addr
}

func (c *CPU) bpl() { c.branch(c.N == 0) }
func (c *CPU) bmi() { c.branch(c.N != 0) }
func (c *CPU) bvc() { c.branch(c.V == 0) }
func (c *CPU) bvs() { c.branch(c.V != 0) }
func (c *CPU) bcc() { c.branch(c.C == 0) }
func (c *CPU) bcs() { c.branch(c.C != 0) }
func (c *CPU) bne() { c.branch(c.Z == 0) }
func (c *CPU) beq() { c.branch(c.Z != 0) }

/* flags */

func (c *CPU) clc() { c.C = 0 }
func (c *CPU) sec() { c.C = 1 }
func (c *CPU) cli() { c.I = 0 }
func (c *CPU) sei() { c.I = 1 }
func (c *CPU) cld() { c.D = 0 }
func (c *CPU) sed() { c.D = 1 }
func (c *CPU) clv() { c.V = 0 }

func (c *CPU) nop() {}

// nopm is a NOP that still reads its operand.
func (c *CPU) nopm() { c.read(c.addr) }
