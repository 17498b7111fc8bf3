package hw

import "emu65/hw/hwio"

// P is the packed processor status register.
type P uint8

const (
	Carry = 1 << iota
	Zero
	Interrupt
	Decimal
	Break
	Reserved
	Overflow
	Negative
)

func (p P) String() string {
	const bits = "nvubdizcNVUBDIZC"

	s := make([]byte, 8)
	for i := 0; i < 8; i++ {
		ibit := (uint8(p) & (1 << (7 - i))) >> (7 - i)
		s[i] = bits[i+int(8*ibit)]
	}
	return string(s)
}

// P packs the flags into the status register. The reserved bit is always
// set, the break flag only exists on the stack and is always clear.
func (c *CPU) P() P {
	return P(c.N<<7 | c.V<<6 | Reserved | c.D<<3 | c.I<<2 | c.Z<<1 | c.C)
}

// SetP unpacks the status register into the flags. The break and reserved
// bits are ignored.
func (c *CPU) SetP(p P) {
	c.N = hwio.GetBiti8(uint8(p), 7)
	c.V = hwio.GetBiti8(uint8(p), 6)
	c.D = hwio.GetBiti8(uint8(p), 3)
	c.I = hwio.GetBiti8(uint8(p), 2)
	c.Z = hwio.GetBiti8(uint8(p), 1)
	c.C = hwio.GetBiti8(uint8(p), 0)
}

func flag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func (c *CPU) setNZ(val uint8) {
	c.N = val >> 7
	c.Z = flag(val == 0)
}
