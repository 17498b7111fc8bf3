package hw

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"emu65/hw/hwerr"
	"emu65/hw/hwio"
	"emu65/hw/snapshot"
)

func TestResetVectorFromROM(t *testing.T) {
	ram, err := hwio.NewRAM("ram", 0x0000, 0x1000)
	if err != nil {
		t.Fatal(err)
	}
	rom, err := hwio.NewROM("rom", 0xFF00, 0x100)
	if err != nil {
		t.Fatal(err)
	}
	if err := rom.Flash([]byte{0xFC, 0xFF, 0x00, 0xFF}); err != nil {
		t.Fatal(err)
	}
	bus, err := hwio.NewTable("cpu", []hwio.Mapping{ram.Mapping(), rom.Mapping()})
	if err != nil {
		t.Fatal(err)
	}

	cpu := NewCPU(bus)
	cpu.A, cpu.X, cpu.Y, cpu.S = 1, 2, 3, 4
	cpu.SetP(0xFF)
	cpu.SetIRQ(true)
	cpu.SetNMI(true)
	cpu.Reset()

	runAndCheckState(t, cpu, 0,
		"PC", uint16(0xFF00),
		"A", uint8(0),
		"X", uint8(0),
		"Y", uint8(0),
		"S", uint8(0),
		"P", uint8(0x26),
	)
	if cpu.PendingIRQ() || cpu.PendingNMI() {
		t.Errorf("interrupt latches not cleared by reset")
	}
}

func TestTAS(t *testing.T) {
	cpu := loadCPUWith(t, `
0200: a9 f0 a2 0f 9b 10 00
0010: ff
fffc: 00 02
`)
	runAndCheckState(t, cpu, 3,
		"A", uint8(0xF0),
		"X", uint8(0x0F),
		"S", uint8(0x00),
		"mem", "0010: 00",
		"cycles", 9,
	)
}

func TestSHXPageCross(t *testing.T) {
	// SHX $10FF,Y with Y=1 crosses a page: the stored value X & $11
	// replaces the high byte of the address.
	cpu := loadCPUWith(t, `
0200: a2 03 a0 01 9e ff 10
fffc: 00 02
`)
	runAndCheckState(t, cpu, 3,
		"mem", "0100: 01",
		"cycles", 9,
	)
	wantMem8(t, cpu, 0x1100, 0x00)
}

const interruptDump = `
0200: 58 ea ea ea
0300: ea
0400: 40
fffa: 00 04 00 02 00 03
`

func TestIRQ(t *testing.T) {
	cpu := loadCPUWith(t, interruptDump)

	// Interrupts are disabled after reset.
	cpu.SetIRQ(true)
	if cpu.PendingIRQ() {
		t.Fatalf("IRQ pending while interrupts are disabled")
	}
	// CLI, the IRQ is only serviced at the next instruction boundary.
	runAndCheckState(t, cpu, 1, "PC", uint16(0x0201), "Pi", uint8(0), "cycles", 2)
	if !cpu.PendingIRQ() {
		t.Fatalf("IRQ should be pending after CLI")
	}

	runAndCheckState(t, cpu, 1,
		"PC", uint16(0x0300),
		"Pi", uint8(1),
		"S", uint8(0xFD),
		"cycles", 7,
		// PC high byte pushed first, then status with B clear.
		"mem", "0100: 02\n01fe: 22 01",
	)

	// The line is still active, but the handler runs with I set.
	runAndCheckState(t, cpu, 1, "PC", uint16(0x0301), "cycles", 2)
}

func TestResetKeepsInterruptLines(t *testing.T) {
	cpu := loadCPUWith(t, interruptDump)
	cpu.SetIRQ(true)
	cpu.SetNMI(true)
	cpu.Reset()

	if cpu.PendingIRQ() || cpu.PendingNMI() {
		t.Fatalf("interrupt latches not cleared by reset")
	}
	// The NMI line is still held active, there's no new edge.
	cpu.SetNMI(true)
	if cpu.PendingNMI() {
		t.Fatalf("NMI latched without an edge after reset")
	}

	// The IRQ line is still active, CLI makes it pending.
	runAndCheckState(t, cpu, 1, "PC", uint16(0x0201), "Pi", uint8(0), "cycles", 2)
	if !cpu.PendingIRQ() {
		t.Fatalf("IRQ should be pending after CLI")
	}
	runAndCheckState(t, cpu, 1, "PC", uint16(0x0300), "Pi", uint8(1), "cycles", 7)
}

func TestNMIPriority(t *testing.T) {
	cpu := loadCPUWith(t, interruptDump)
	runAndCheckState(t, cpu, 1, "PC", uint16(0x0201))

	cpu.SetIRQ(true)
	cpu.SetNMI(true)
	runAndCheckState(t, cpu, 1, "PC", uint16(0x0400), "Pi", uint8(1), "cycles", 7)

	// RTI restores I=0, the IRQ is serviced right after.
	runAndCheckState(t, cpu, 1, "PC", uint16(0x0201), "Pi", uint8(0), "cycles", 6)
	runAndCheckState(t, cpu, 1, "PC", uint16(0x0300), "cycles", 7)
}

func TestNMIEdge(t *testing.T) {
	cpu := loadCPUWith(t, interruptDump)

	cpu.SetNMI(true)
	runAndCheckState(t, cpu, 1, "PC", uint16(0x0400))
	runAndCheckState(t, cpu, 1, "PC", uint16(0x0200))

	// The line is still active, no new edge.
	cpu.SetNMI(true)
	if cpu.PendingNMI() {
		t.Fatalf("NMI latched without an edge")
	}
	cpu.SetNMI(false)
	cpu.SetNMI(true)
	if !cpu.PendingNMI() {
		t.Fatalf("NMI not latched")
	}
	runAndCheckState(t, cpu, 1, "PC", uint16(0x0400))
}

func TestBRK(t *testing.T) {
	cpu := loadCPUWith(t, `
0200: 00 ff ea
0300: 40
fffc: 00 02 00 03
`)
	runAndCheckState(t, cpu, 1,
		"PC", uint16(0x0300),
		"Pi", uint8(1),
		"cycles", 7,
		// status pushed with B set
		"mem", "0100: 02\n01fe: 36 02",
	)
	runAndCheckState(t, cpu, 1, "PC", uint16(0x0202), "S", uint8(0), "cycles", 6)
}

func TestJSRRTS(t *testing.T) {
	cpu := loadCPUWith(t, `
0200: 20 00 03 ea
0300: 60
fffc: 00 02
`)
	runAndCheckState(t, cpu, 1,
		"PC", uint16(0x0300),
		"S", uint8(0xFE),
		"cycles", 6,
		"mem", "0100: 02\n01ff: 02",
	)
	runAndCheckState(t, cpu, 1, "PC", uint16(0x0203), "S", uint8(0), "cycles", 6)
}

func TestJMPIndirectPageWrap(t *testing.T) {
	cpu := loadCPUWith(t, `
0200: 6c ff 10
10ff: 34
1000: 12
1100: 99
fffc: 00 02
`)
	runAndCheckState(t, cpu, 1, "PC", uint16(0x1234), "cycles", 5)
}

func TestStackOps(t *testing.T) {
	cpu := loadCPUWith(t, `
0200: a9 80 48 a9 00 68 08 28
fffc: 00 02
`)
	runAndCheckState(t, cpu, 2, "S", uint8(0xFF), "mem", "0100: 80", "cycles", 5)
	runAndCheckState(t, cpu, 2, "A", uint8(0x80), "Pn", uint8(1), "S", uint8(0), "cycles", 6)
	runAndCheckState(t, cpu, 1, "mem", "0100: b4", "cycles", 3)
	runAndCheckState(t, cpu, 1, "P", uint8(0xA4), "cycles", 4)
}

func TestJAM(t *testing.T) {
	cpu := loadCPUWith(t, `
0200: 02
fffc: 00 02
`)
	runAndCheckState(t, cpu, 1, "PC", uint16(0x0200), "cycles", 2)
	if !cpu.Halted() {
		t.Fatalf("CPU should be halted")
	}
	runAndCheckState(t, cpu, 3, "PC", uint16(0x0200), "cycles", 6)
}

func TestRunBudget(t *testing.T) {
	cpu := loadCPUWith(t, `
0200: ea ea ea ea ea ea ea ea
fffc: 00 02
`)
	if got := cpu.Run(10); got != 12 {
		t.Errorf("Run(10) = %d, want 12", got)
	}
	if cpu.PC != 0x0206 || cpu.Cycles != 12 {
		t.Errorf("PC=$%04X cycles=%d, want PC=$0206 cycles=12", cpu.PC, cpu.Cycles)
	}
}

func TestExecutionHook(t *testing.T) {
	cpu := loadCPUWith(t, `
0200: a9 01 a9 02
fffc: 00 02
`)
	cpu.SetDebugger(HookFunc(func(pc uint16) bool { return pc != 0x0202 }))

	if got := cpu.Run(100); got != 2 {
		t.Errorf("Run(100) = %d, want 2", got)
	}
	runAndCheckState(t, cpu, 1, "PC", uint16(0x0202), "A", uint8(1), "cycles", 0)
	if cpu.Cycles != 2 {
		t.Errorf("cycles = %d, want 2", cpu.Cycles)
	}
}

func TestPageCross(t *testing.T) {
	tests := []struct {
		name   string
		dump   string
		cycles int // for the 2 instructions
	}{
		{"LDA abs,X", "0200: a2 0f bd f0 02", 6},
		{"LDA abs,X cross", "0200: a2 10 bd f0 02", 7},
		{"LDA abs,Y", "0200: a0 0f b9 f0 02", 6},
		{"LDA abs,Y cross", "0200: a0 10 b9 f0 02", 7},
		{"LDA (zp),Y", "0200: a0 0f b1 10\n0010: f0 02", 7},
		{"LDA (zp),Y cross", "0200: a0 10 b1 10\n0010: f0 02", 8},
		{"NOP abs,X", "0200: a2 0f 1c f0 02", 6},
		{"NOP abs,X cross", "0200: a2 10 1c f0 02", 7},
		{"STA abs,X", "0200: a2 0f 9d f0 02", 7},
		{"STA abs,X cross", "0200: a2 10 9d f0 02", 7},
		{"STA (zp),Y", "0200: a0 0f 91 10\n0010: f0 02", 8},
		{"BNE not taken", "0200: a9 00 d0 02", 4},
		{"BNE taken", "0200: a9 01 d0 02", 5},
		{"BNE taken cross", "0200: a9 01 d0 80", 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu := loadCPUWith(t, tt.dump+"\nfffc: 00 02")
			runAndCheckState(t, cpu, 2, "cycles", tt.cycles)
		})
	}
}

func TestRMWCycles(t *testing.T) {
	tests := []struct {
		name   string
		dump   string
		cycles int
	}{
		{"INC zp", "0200: e6 10", 5},
		{"INC zp,X", "0200: f6 10", 6},
		{"INC abs", "0200: ee 10 00", 6},
		{"INC abs,X", "0200: fe 10 00", 7},
		{"SLO (zp,X)", "0200: 03 20\n0020: 10 00", 8},
		{"SLO (zp),Y", "0200: 13 20\n0020: 10 00", 8},
		{"DCP abs,Y", "0200: db 10 00", 7},
	}
	for _, tt := range tests {
		for _, accurate := range []bool{false, true} {
			name := tt.name
			if accurate {
				name += " accurate"
			}
			t.Run(name, func(t *testing.T) {
				cpu := loadCPUWith(t, tt.dump+"\n0010: 41\nfffc: 00 02")
				cpu.SetCycleAccurate(accurate)
				runAndCheckState(t, cpu, 1, "cycles", tt.cycles)

				if !accurate {
					if accs := cpu.RecentAccesses(); len(accs) != 0 {
						t.Errorf("recorded %d accesses in simplified mode", len(accs))
					}
					return
				}

				// The unmodified value is written back before the result.
				accs := cpu.RecentAccesses()
				if len(accs) < 2 {
					t.Fatalf("got %d accesses", len(accs))
				}
				last := accs[len(accs)-2:]
				if !last[0].Write || !last[1].Write || last[0].Addr != 0x10 || last[1].Addr != 0x10 || last[0].Val != 0x41 {
					t.Errorf("unexpected write-back sequence: %+v", last)
				}
			})
		}
	}
}

func TestCompareCarry(t *testing.T) {
	cpu := loadCPUWith(t, "fffc: 00 02")
	for _, opcode := range []uint8{0xC9, 0xE0, 0xC0} {
		for reg := range 256 {
			for val := range 256 {
				cpu.PC = 0x0200
				cpu.Bus.Write8(0x0200, opcode)
				cpu.Bus.Write8(0x0201, uint8(val))
				cpu.A, cpu.X, cpu.Y = uint8(reg), uint8(reg), uint8(reg)
				cpu.Step()

				if want := flag(val <= reg); cpu.C != want {
					t.Fatalf("opcode $%02X reg=$%02X val=$%02X: C=%d, want %d", opcode, reg, val, cpu.C, want)
				}
				diff := uint8(reg) - uint8(val)
				if cpu.Z != flag(diff == 0) || cpu.N != diff>>7 {
					t.Fatalf("opcode $%02X reg=$%02X val=$%02X: N=%d Z=%d", opcode, reg, val, cpu.N, cpu.Z)
				}
			}
		}
	}
}

func TestNZInvariant(t *testing.T) {
	cpu := loadCPUWith(t, "fffc: 00 02")
	// LDA ORA AND EOR ADC SBC ANC, all immediate
	for _, opcode := range []uint8{0xA9, 0x09, 0x29, 0x49, 0x69, 0xE9, 0x0B} {
		for a := 0; a < 256; a += 3 {
			for val := 0; val < 256; val += 5 {
				cpu.PC = 0x0200
				cpu.Bus.Write8(0x0200, opcode)
				cpu.Bus.Write8(0x0201, uint8(val))
				cpu.A = uint8(a)
				cpu.D = 0
				cpu.Step()

				if cpu.N != cpu.A>>7 || cpu.Z != flag(cpu.A == 0) {
					t.Fatalf("opcode $%02X a=$%02X val=$%02X: A=$%02X N=%d Z=%d", opcode, a, val, cpu.A, cpu.N, cpu.Z)
				}
			}
		}
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name       string
		opcode     uint8
		a, val     uint8
		c, d       uint8
		want       uint8
		n, v, z, C uint8
	}{
		{"ADC", 0x69, 0x50, 0x10, 0, 0, 0x60, 0, 0, 0, 0},
		{"ADC overflow", 0x69, 0x50, 0x50, 0, 0, 0xA0, 1, 1, 0, 0},
		{"ADC carry", 0x69, 0xFF, 0x01, 0, 0, 0x00, 0, 0, 1, 1},
		{"ADC carry overflow", 0x69, 0x80, 0xFF, 0, 0, 0x7F, 0, 1, 0, 1},
		{"ADC carry in", 0x69, 0x01, 0x01, 1, 0, 0x03, 0, 0, 0, 0},
		{"SBC", 0xE9, 0x50, 0x10, 1, 0, 0x40, 0, 0, 0, 1},
		{"SBC borrow", 0xE9, 0x50, 0xF0, 1, 0, 0x60, 0, 0, 0, 0},
		{"SBC overflow", 0xE9, 0x50, 0xB0, 1, 0, 0xA0, 1, 1, 0, 0},
		{"SBC borrow in", 0xE9, 0x05, 0x05, 0, 0, 0xFF, 1, 0, 0, 0},
		{"ADC BCD", 0x69, 0x09, 0x01, 0, 1, 0x10, 0, 0, 0, 0},
		{"ADC BCD carry", 0x69, 0x58, 0x46, 1, 1, 0x05, 1, 1, 0, 1},
		{"ADC BCD wrap", 0x69, 0x99, 0x01, 0, 1, 0x00, 1, 0, 0, 1},
		{"SBC BCD", 0xE9, 0x46, 0x12, 1, 1, 0x34, 0, 0, 0, 1},
		{"SBC BCD half borrow", 0xE9, 0x40, 0x13, 1, 1, 0x27, 0, 0, 0, 1},
		{"SBC BCD borrow", 0xE9, 0x00, 0x01, 1, 1, 0x99, 1, 0, 0, 0},
		{"SBC BCD nibble", 0xE9, 0x10, 0x01, 1, 1, 0x09, 0, 0, 0, 1},
		{"SBC illegal", 0xEB, 0x10, 0x01, 1, 0, 0x0F, 0, 0, 0, 1},
		{"ADC BCD invalid low digit", 0x69, 0x04, 0x8F, 1, 1, 0x9A, 1, 0, 0, 0},
		{"ADC BCD invalid digits", 0x69, 0x0F, 0x0F, 0, 1, 0x14, 0, 0, 0, 0},
		{"ADC BCD invalid high digit", 0x69, 0x9A, 0x00, 0, 1, 0x00, 1, 0, 0, 1},
		{"SBC BCD invalid low digit", 0xE9, 0x00, 0x0A, 0, 1, 0x9F, 1, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu := loadCPUWith(t, "fffc: 00 02")
			cpu.Bus.Write8(0x0200, tt.opcode)
			cpu.Bus.Write8(0x0201, tt.val)
			cpu.A, cpu.C, cpu.D = tt.a, tt.c, tt.d
			runAndCheckState(t, cpu, 1,
				"A", tt.want,
				"Pn", tt.n,
				"Pv", tt.v,
				"Pz", tt.z,
				"Pc", tt.C,
				"cycles", 2,
			)
		})
	}
}

// bcdAdd and bcdSub compute the decimal mode results of ADC and SBC for
// any operands, valid BCD or not, as an NMOS 6502 does.
func bcdAdd(a, b, c uint8) (res, n, v, z, carry uint8) {
	b2u := func(x bool) uint8 {
		if x {
			return 1
		}
		return 0
	}

	al := int(a&0x0F) + int(b&0x0F) + int(c)
	if al >= 0x0A {
		al = ((al + 0x06) & 0x0F) + 0x10
	}
	sum := int(a&0xF0) + int(b&0xF0) + al
	n = uint8(sum>>7) & 1
	signed := int(int8(a&0xF0)) + int(int8(b&0xF0)) + al
	v = b2u(signed < -128 || signed > 127)
	if sum >= 0xA0 {
		sum += 0x60
	}
	z = b2u((int(a)+int(b)+int(c))&0xFF == 0)
	return uint8(sum), n, v, z, b2u(sum >= 0x100)
}

func bcdSub(a, b, c uint8) uint8 {
	al := int(a&0x0F) - int(b&0x0F) + int(c) - 1
	if al < 0 {
		al = ((al - 0x06) & 0x0F) - 0x10
	}
	diff := int(a&0xF0) - int(b&0xF0) + al
	if diff < 0 {
		diff -= 0x60
	}
	return uint8(diff)
}

func TestDecimalMode(t *testing.T) {
	cpu := loadCPUWith(t, "fffc: 00 02")

	run := func(opcode, a, b, c, d uint8) {
		cpu.PC = 0x0200
		cpu.Bus.Write8(0x0200, opcode)
		cpu.Bus.Write8(0x0201, b)
		cpu.A, cpu.C, cpu.D = a, c, d
		cpu.Step()
	}

	for a := 0; a < 0x100; a++ {
		for b := 0; b < 0x100; b++ {
			for c := uint8(0); c < 2; c++ {
				a, b := uint8(a), uint8(b)

				run(0x69, a, b, c, 1)
				res, n, v, z, carry := bcdAdd(a, b, c)
				if cpu.A != res || cpu.N != n || cpu.V != v || cpu.Z != z || cpu.C != carry {
					t.Fatalf("ADC $%02X+$%02X C=%d: got A=$%02X N=%d V=%d Z=%d C=%d, want A=$%02X N=%d V=%d Z=%d C=%d",
						a, b, c, cpu.A, cpu.N, cpu.V, cpu.Z, cpu.C, res, n, v, z, carry)
				}

				// Flags of SBC don't depend on the decimal flag.
				run(0xE9, a, b, c, 0)
				binFlags := [4]uint8{cpu.N, cpu.V, cpu.Z, cpu.C}
				run(0xE9, a, b, c, 1)
				if want := bcdSub(a, b, c); cpu.A != want {
					t.Fatalf("SBC $%02X-$%02X C=%d: got A=$%02X, want $%02X", a, b, c, cpu.A, want)
				}
				if got := [4]uint8{cpu.N, cpu.V, cpu.Z, cpu.C}; got != binFlags {
					t.Fatalf("SBC $%02X-$%02X C=%d: decimal flags NVZC=%v, binary flags NVZC=%v", a, b, c, got, binFlags)
				}
			}
		}
	}
}

func TestIllegalOpcodes(t *testing.T) {
	tests := []struct {
		name   string
		dump   string
		setup  func(*CPU)
		states []any
	}{
		{
			name:   "LAX zp",
			dump:   "0200: a7 10\n0010: 8e",
			states: []any{"A", uint8(0x8E), "X", uint8(0x8E), "Pn", uint8(1), "cycles", 3},
		},
		{
			name:   "SAX zp",
			dump:   "0200: 87 10",
			setup:  func(c *CPU) { c.A, c.X = 0xF0, 0x3C },
			states: []any{"mem", "0010: 30", "cycles", 3},
		},
		{
			name:   "DCP zp",
			dump:   "0200: c7 10\n0010: 05",
			setup:  func(c *CPU) { c.A = 0x04 },
			states: []any{"mem", "0010: 04", "Pzc", uint8(1), "cycles", 5},
		},
		{
			name:   "ISC zp",
			dump:   "0200: e7 10\n0010: 0f",
			setup:  func(c *CPU) { c.A, c.C = 0x20, 1 },
			states: []any{"mem", "0010: 10", "A", uint8(0x10), "Pc", uint8(1)},
		},
		{
			name:   "SLO zp",
			dump:   "0200: 07 10\n0010: 81",
			setup:  func(c *CPU) { c.A = 0x04 },
			states: []any{"mem", "0010: 02", "A", uint8(0x06), "Pc", uint8(1)},
		},
		{
			name:   "RLA zp",
			dump:   "0200: 27 10\n0010: 81",
			setup:  func(c *CPU) { c.A, c.C = 0xFF, 0 },
			states: []any{"mem", "0010: 02", "A", uint8(0x02), "Pc", uint8(1)},
		},
		{
			name:   "SRE zp",
			dump:   "0200: 47 10\n0010: 03",
			setup:  func(c *CPU) { c.A = 0x01 },
			states: []any{"mem", "0010: 01", "A", uint8(0x00), "Pzc", uint8(1)},
		},
		{
			name:   "RRA zp",
			dump:   "0200: 67 10\n0010: 02",
			setup:  func(c *CPU) { c.A, c.C = 0x10, 1 },
			states: []any{"mem", "0010: 81", "A", uint8(0x91), "Pc", uint8(0)},
		},
		{
			name:   "ANC",
			dump:   "0200: 0b ff",
			setup:  func(c *CPU) { c.A = 0x80 },
			states: []any{"A", uint8(0x80), "Pnc", uint8(1)},
		},
		{
			name:   "ALR",
			dump:   "0200: 4b ff",
			setup:  func(c *CPU) { c.A = 0x03 },
			states: []any{"A", uint8(0x01), "Pc", uint8(1), "Pz", uint8(0)},
		},
		{
			name:   "ARR",
			dump:   "0200: 6b ff",
			setup:  func(c *CPU) { c.A, c.C = 0xFF, 1 },
			states: []any{"A", uint8(0xFF), "Pnc", uint8(1), "Pvz", uint8(0)},
		},
		{
			name:   "ARR no carry",
			dump:   "0200: 6b 40",
			setup:  func(c *CPU) { c.A, c.C = 0xFF, 0 },
			states: []any{"A", uint8(0x20), "Pnzc", uint8(0), "Pv", uint8(1)},
		},
		{
			name:   "SBX",
			dump:   "0200: cb 10",
			setup:  func(c *CPU) { c.A, c.X = 0xF0, 0x3C },
			states: []any{"X", uint8(0x20), "A", uint8(0xF0), "Pc", uint8(1)},
		},
		{
			name:   "LXA",
			dump:   "0200: ab 34",
			setup:  func(c *CPU) { c.A = 0x12 },
			states: []any{"A", uint8(0x34), "X", uint8(0x34)},
		},
		{
			name:   "ANE",
			dump:   "0200: 8b ff",
			setup:  func(c *CPU) { c.A, c.X = 0x00, 0xFF },
			states: []any{"A", uint8(0xEE), "Pn", uint8(1)},
		},
		{
			name:   "LAS",
			dump:   "0200: bb 00 03\n0300: 3c",
			setup:  func(c *CPU) { c.S = 0xF0 },
			states: []any{"A", uint8(0x30), "X", uint8(0x30), "S", uint8(0x30), "cycles", 4},
		},
		{
			name:   "NOP zp,X",
			dump:   "0200: 14 10",
			states: []any{"PC", uint16(0x0202), "cycles", 4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu := loadCPUWith(t, tt.dump+"\nfffc: 00 02")
			if tt.setup != nil {
				tt.setup(cpu)
			}
			runAndCheckState(t, cpu, 1, tt.states...)
		})
	}
}

func TestOpcodeTable(t *testing.T) {
	for opcode, op := range ops {
		if op.name == "" || op.exec == nil {
			t.Errorf("opcode $%02X not implemented", opcode)
		}
		if op.rmw {
			switch op.mode {
			case Zpg, Zpx, Abs, Abxw, Abyw, Izx, Izyw:
			default:
				t.Errorf("opcode $%02X (%s): read-modify-write with mode %s", opcode, op.name, op.mode)
			}
		}
	}
}

func TestProfiling(t *testing.T) {
	cpu := loadCPUWith(t, `
0200: ea ea a9 01 ea
fffc: 00 02
`)
	cpu.SetProfiling(true)
	runAndCheckState(t, cpu, 4)

	counts := cpu.OpcodeCounts()
	if counts[0xEA] != 3 || counts[0xA9] != 1 {
		t.Errorf("counts[NOP]=%d counts[LDA]=%d, want 3 and 1", counts[0xEA], counts[0xA9])
	}
	want := []OpcodeCount{{0xEA, "NOP", 3}, {0xA9, "LDA", 1}}
	if diff := cmp.Diff(want, cpu.TopOpcodes(5)); diff != "" {
		t.Errorf("TopOpcodes mismatch (-want +got):\n%s", diff)
	}

	cpu.ResetProfile()
	if cpu.OpcodeCounts()[0xEA] != 0 {
		t.Errorf("profile not reset")
	}
}

func TestRecentAccessesRing(t *testing.T) {
	cpu := loadCPUWith(t, `
0200: ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea ea
fffc: 00 02
`)
	cpu.SetCycleAccurate(true)
	runAndCheckState(t, cpu, 40)

	accs := cpu.RecentAccesses()
	if len(accs) != accessRingSize {
		t.Fatalf("got %d accesses, want %d", len(accs), accessRingSize)
	}
	// Only opcode fetches, oldest first.
	for i, acc := range accs {
		if want := uint16(0x0200 + 8 + i); acc.Addr != want || acc.Write {
			t.Errorf("access %d = %+v, want read at $%04X", i, acc, want)
		}
	}
}

func TestCPUSnapshot(t *testing.T) {
	cpu := loadCPUWith(t, interruptDump)
	runAndCheckState(t, cpu, 2)
	cpu.SetIRQ(true)
	cpu.SetNMI(true)

	s := cpu.Snapshot()
	cpu2 := loadCPUWith(t, interruptDump)
	if err := cpu2.Restore(s); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(s, cpu2.Snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	// Both execute the NMI the same way.
	if c1, c2 := cpu.Step(), cpu2.Step(); c1 != c2 || cpu.PC != cpu2.PC {
		t.Errorf("diverging CPUs: %d/$%04X vs %d/$%04X", c1, cpu.PC, c2, cpu2.PC)
	}
}

func TestCPURestoreInvalid(t *testing.T) {
	cpu := loadCPUWith(t, interruptDump)
	before := cpu.Snapshot()

	tests := []snapshot.CPU{
		{Version: "2", A: 300},
		{Version: "2", PC: 0x10000},
		{Version: "2", C: 2},
		{Version: "2", Cycles: -1},
	}
	for _, s := range tests {
		if err := cpu.Restore(s); !hwerr.Is(err, hwerr.KindState) {
			t.Errorf("Restore(%+v) error = %v, want state error", s, err)
		}
	}
	if err := cpu.Restore(snapshot.CPU{Version: "0"}); !hwerr.Is(err, hwerr.KindMigration) {
		t.Errorf("Restore(v0) error = %v, want migration error", err)
	}
	if diff := cmp.Diff(before, cpu.Snapshot()); diff != "" {
		t.Errorf("failed restores modified the CPU (-want +got):\n%s", diff)
	}
}

func TestCPURestoreV1(t *testing.T) {
	cpu := loadCPUWith(t, interruptDump)
	err := cpu.Restore(snapshot.CPU{Version: "1", PC: 0x0300, A: 0x42, S: 0xFD, P: 0xE3, Cycles: 100})
	if err != nil {
		t.Fatal(err)
	}
	runAndCheckState(t, cpu, 0,
		"PC", uint16(0x0300),
		"A", uint8(0x42),
		"S", uint8(0xFD),
		"P", uint8(0xE3),
	)
}

func TestPString(t *testing.T) {
	p := P(0b00110100)
	if got := p.String(); got != "nvUBdIzc" {
		t.Errorf("got P = %s, want %s", got, "nvUBdIzc")
	}
	p = P(0b00000100)
	if p.String() != "nvubdIzc" {
		t.Errorf("got P = %s, want %s", p.String(), "nvubdIzc")
	}
}

func TestPackFlags(t *testing.T) {
	var cpu CPU
	for p := range 256 {
		cpu.SetP(P(p))
		// B is never stored, U is always set.
		want := P(p)&^Break | Reserved
		if got := cpu.P(); got != want {
			t.Fatalf("SetP($%02X); P() = $%02X, want $%02X", p, uint8(got), uint8(want))
		}
	}
}
