package hw

// An opcode describes how the CPU executes one of the 256 opcodes: the
// addressing mode computing the operand address, the instruction body, and
// for read-modify-write instructions, the commit of the result. extra is
// the number of cycles the instruction takes on top of its addressing mode.
type opcode struct {
	name  string
	mode  AddrMode
	exec  func(*CPU)
	rmw   bool
	extra int8
}

const rmw = true

var ops = [256]opcode{
	0x00: {"BRK", Imp, (*CPU).brk, false, 5},
	0x01: {"ORA", Izx, (*CPU).ora, false, 0},
	0x02: {"JAM", Imp, (*CPU).jam, false, 0},
	0x03: {"SLO", Izx, (*CPU).slo, rmw, 0},
	0x04: {"NOP", Zpg, (*CPU).nopm, false, 0},
	0x05: {"ORA", Zpg, (*CPU).ora, false, 0},
	0x06: {"ASL", Zpg, (*CPU).asl, rmw, 0},
	0x07: {"SLO", Zpg, (*CPU).slo, rmw, 0},
	0x08: {"PHP", Imp, (*CPU).php, false, 1},
	0x09: {"ORA", Imm, (*CPU).ora, false, 0},
	0x0A: {"ASL", Acc, (*CPU).asla, false, 0},
	0x0B: {"ANC", Imm, (*CPU).anc, false, 0},
	0x0C: {"NOP", Abs, (*CPU).nopm, false, 0},
	0x0D: {"ORA", Abs, (*CPU).ora, false, 0},
	0x0E: {"ASL", Abs, (*CPU).asl, rmw, 0},
	0x0F: {"SLO", Abs, (*CPU).slo, rmw, 0},

	0x10: {"BPL", Rel, (*CPU).bpl, false, 0},
	0x11: {"ORA", Izy, (*CPU).ora, false, 0},
	0x12: {"JAM", Imp, (*CPU).jam, false, 0},
	0x13: {"SLO", Izyw, (*CPU).slo, rmw, 0},
	0x14: {"NOP", Zpx, (*CPU).nopm, false, 0},
	0x15: {"ORA", Zpx, (*CPU).ora, false, 0},
	0x16: {"ASL", Zpx, (*CPU).asl, rmw, 0},
	0x17: {"SLO", Zpx, (*CPU).slo, rmw, 0},
	0x18: {"CLC", Imp, (*CPU).clc, false, 0},
	0x19: {"ORA", Aby, (*CPU).ora, false, 0},
	0x1A: {"NOP", Imp, (*CPU).nop, false, 0},
	0x1B: {"SLO", Abyw, (*CPU).slo, rmw, 0},
	0x1C: {"NOP", Abx, (*CPU).nopm, false, 0},
	0x1D: {"ORA", Abx, (*CPU).ora, false, 0},
	0x1E: {"ASL", Abxw, (*CPU).asl, rmw, 0},
	0x1F: {"SLO", Abxw, (*CPU).slo, rmw, 0},

	0x20: {"JSR", Abs, (*CPU).jsr, false, 2},
	0x21: {"AND", Izx, (*CPU).and, false, 0},
	0x22: {"JAM", Imp, (*CPU).jam, false, 0},
	0x23: {"RLA", Izx, (*CPU).rla, rmw, 0},
	0x24: {"BIT", Zpg, (*CPU).bit, false, 0},
	0x25: {"AND", Zpg, (*CPU).and, false, 0},
	0x26: {"ROL", Zpg, (*CPU).rol, rmw, 0},
	0x27: {"RLA", Zpg, (*CPU).rla, rmw, 0},
	0x28: {"PLP", Imp, (*CPU).plp, false, 2},
	0x29: {"AND", Imm, (*CPU).and, false, 0},
	0x2A: {"ROL", Acc, (*CPU).rola, false, 0},
	0x2B: {"ANC", Imm, (*CPU).anc, false, 0},
	0x2C: {"BIT", Abs, (*CPU).bit, false, 0},
	0x2D: {"AND", Abs, (*CPU).and, false, 0},
	0x2E: {"ROL", Abs, (*CPU).rol, rmw, 0},
	0x2F: {"RLA", Abs, (*CPU).rla, rmw, 0},

	0x30: {"BMI", Rel, (*CPU).bmi, false, 0},
	0x31: {"AND", Izy, (*CPU).and, false, 0},
	0x32: {"JAM", Imp, (*CPU).jam, false, 0},
	0x33: {"RLA", Izyw, (*CPU).rla, rmw, 0},
	0x34: {"NOP", Zpx, (*CPU).nopm, false, 0},
	0x35: {"AND", Zpx, (*CPU).and, false, 0},
	0x36: {"ROL", Zpx, (*CPU).rol, rmw, 0},
	0x37: {"RLA", Zpx, (*CPU).rla, rmw, 0},
	0x38: {"SEC", Imp, (*CPU).sec, false, 0},
	0x39: {"AND", Aby, (*CPU).and, false, 0},
	0x3A: {"NOP", Imp, (*CPU).nop, false, 0},
	0x3B: {"RLA", Abyw, (*CPU).rla, rmw, 0},
	0x3C: {"NOP", Abx, (*CPU).nopm, false, 0},
	0x3D: {"AND", Abx, (*CPU).and, false, 0},
	0x3E: {"ROL", Abxw, (*CPU).rol, rmw, 0},
	0x3F: {"RLA", Abxw, (*CPU).rla, rmw, 0},

	0x40: {"RTI", Imp, (*CPU).rti, false, 4},
	0x41: {"EOR", Izx, (*CPU).eor, false, 0},
	0x42: {"JAM", Imp, (*CPU).jam, false, 0},
	0x43: {"SRE", Izx, (*CPU).sre, rmw, 0},
	0x44: {"NOP", Zpg, (*CPU).nopm, false, 0},
	0x45: {"EOR", Zpg, (*CPU).eor, false, 0},
	0x46: {"LSR", Zpg, (*CPU).lsr, rmw, 0},
	0x47: {"SRE", Zpg, (*CPU).sre, rmw, 0},
	0x48: {"PHA", Imp, (*CPU).pha, false, 1},
	0x49: {"EOR", Imm, (*CPU).eor, false, 0},
	0x4A: {"LSR", Acc, (*CPU).lsra, false, 0},
	0x4B: {"ALR", Imm, (*CPU).alr, false, 0},
	0x4C: {"JMP", Abs, (*CPU).jmp, false, -1},
	0x4D: {"EOR", Abs, (*CPU).eor, false, 0},
	0x4E: {"LSR", Abs, (*CPU).lsr, rmw, 0},
	0x4F: {"SRE", Abs, (*CPU).sre, rmw, 0},

	0x50: {"BVC", Rel, (*CPU).bvc, false, 0},
	0x51: {"EOR", Izy, (*CPU).eor, false, 0},
	0x52: {"JAM", Imp, (*CPU).jam, false, 0},
	0x53: {"SRE", Izyw, (*CPU).sre, rmw, 0},
	0x54: {"NOP", Zpx, (*CPU).nopm, false, 0},
	0x55: {"EOR", Zpx, (*CPU).eor, false, 0},
	0x56: {"LSR", Zpx, (*CPU).lsr, rmw, 0},
	0x57: {"SRE", Zpx, (*CPU).sre, rmw, 0},
	0x58: {"CLI", Imp, (*CPU).cli, false, 0},
	0x59: {"EOR", Aby, (*CPU).eor, false, 0},
	0x5A: {"NOP", Imp, (*CPU).nop, false, 0},
	0x5B: {"SRE", Abyw, (*CPU).sre, rmw, 0},
	0x5C: {"NOP", Abx, (*CPU).nopm, false, 0},
	0x5D: {"EOR", Abx, (*CPU).eor, false, 0},
	0x5E: {"LSR", Abxw, (*CPU).lsr, rmw, 0},
	0x5F: {"SRE", Abxw, (*CPU).sre, rmw, 0},

	0x60: {"RTS", Imp, (*CPU).rts, false, 4},
	0x61: {"ADC", Izx, (*CPU).adcm, false, 0},
	0x62: {"JAM", Imp, (*CPU).jam, false, 0},
	0x63: {"RRA", Izx, (*CPU).rra, rmw, 0},
	0x64: {"NOP", Zpg, (*CPU).nopm, false, 0},
	0x65: {"ADC", Zpg, (*CPU).adcm, false, 0},
	0x66: {"ROR", Zpg, (*CPU).ror, rmw, 0},
	0x67: {"RRA", Zpg, (*CPU).rra, rmw, 0},
	0x68: {"PLA", Imp, (*CPU).pla, false, 2},
	0x69: {"ADC", Imm, (*CPU).adcm, false, 0},
	0x6A: {"ROR", Acc, (*CPU).rora, false, 0},
	0x6B: {"ARR", Imm, (*CPU).arr, false, 0},
	0x6C: {"JMP", Ind, (*CPU).jmp, false, 0},
	0x6D: {"ADC", Abs, (*CPU).adcm, false, 0},
	0x6E: {"ROR", Abs, (*CPU).ror, rmw, 0},
	0x6F: {"RRA", Abs, (*CPU).rra, rmw, 0},

	0x70: {"BVS", Rel, (*CPU).bvs, false, 0},
	0x71: {"ADC", Izy, (*CPU).adcm, false, 0},
	0x72: {"JAM", Imp, (*CPU).jam, false, 0},
	0x73: {"RRA", Izyw, (*CPU).rra, rmw, 0},
	0x74: {"NOP", Zpx, (*CPU).nopm, false, 0},
	0x75: {"ADC", Zpx, (*CPU).adcm, false, 0},
	0x76: {"ROR", Zpx, (*CPU).ror, rmw, 0},
	0x77: {"RRA", Zpx, (*CPU).rra, rmw, 0},
	0x78: {"SEI", Imp, (*CPU).sei, false, 0},
	0x79: {"ADC", Aby, (*CPU).adcm, false, 0},
	0x7A: {"NOP", Imp, (*CPU).nop, false, 0},
	0x7B: {"RRA", Abyw, (*CPU).rra, rmw, 0},
	0x7C: {"NOP", Abx, (*CPU).nopm, false, 0},
	0x7D: {"ADC", Abx, (*CPU).adcm, false, 0},
	0x7E: {"ROR", Abxw, (*CPU).ror, rmw, 0},
	0x7F: {"RRA", Abxw, (*CPU).rra, rmw, 0},

	0x80: {"NOP", Imm, (*CPU).nopm, false, 0},
	0x81: {"STA", Izx, (*CPU).sta, false, 0},
	0x82: {"NOP", Imm, (*CPU).nopm, false, 0},
	0x83: {"SAX", Izx, (*CPU).sax, false, 0},
	0x84: {"STY", Zpg, (*CPU).sty, false, 0},
	0x85: {"STA", Zpg, (*CPU).sta, false, 0},
	0x86: {"STX", Zpg, (*CPU).stx, false, 0},
	0x87: {"SAX", Zpg, (*CPU).sax, false, 0},
	0x88: {"DEY", Imp, (*CPU).dey, false, 0},
	0x89: {"NOP", Imm, (*CPU).nopm, false, 0},
	0x8A: {"TXA", Imp, (*CPU).txa, false, 0},
	0x8B: {"ANE", Imm, (*CPU).ane, false, 0},
	0x8C: {"STY", Abs, (*CPU).sty, false, 0},
	0x8D: {"STA", Abs, (*CPU).sta, false, 0},
	0x8E: {"STX", Abs, (*CPU).stx, false, 0},
	0x8F: {"SAX", Abs, (*CPU).sax, false, 0},

	0x90: {"BCC", Rel, (*CPU).bcc, false, 0},
	0x91: {"STA", Izyw, (*CPU).sta, false, 0},
	0x92: {"JAM", Imp, (*CPU).jam, false, 0},
	0x93: {"SHA", Izyw, (*CPU).sha, false, 0},
	0x94: {"STY", Zpx, (*CPU).sty, false, 0},
	0x95: {"STA", Zpx, (*CPU).sta, false, 0},
	0x96: {"STX", Zpy, (*CPU).stx, false, 0},
	0x97: {"SAX", Zpy, (*CPU).sax, false, 0},
	0x98: {"TYA", Imp, (*CPU).tya, false, 0},
	0x99: {"STA", Abyw, (*CPU).sta, false, 0},
	0x9A: {"TXS", Imp, (*CPU).txs, false, 0},
	0x9B: {"TAS", Abyw, (*CPU).tas, false, 0},
	0x9C: {"SHY", Abxw, (*CPU).shy, false, 0},
	0x9D: {"STA", Abxw, (*CPU).sta, false, 0},
	0x9E: {"SHX", Abyw, (*CPU).shx, false, 0},
	0x9F: {"SHA", Abyw, (*CPU).sha, false, 0},

	0xA0: {"LDY", Imm, (*CPU).ldy, false, 0},
	0xA1: {"LDA", Izx, (*CPU).lda, false, 0},
	0xA2: {"LDX", Imm, (*CPU).ldx, false, 0},
	0xA3: {"LAX", Izx, (*CPU).lax, false, 0},
	0xA4: {"LDY", Zpg, (*CPU).ldy, false, 0},
	0xA5: {"LDA", Zpg, (*CPU).lda, false, 0},
	0xA6: {"LDX", Zpg, (*CPU).ldx, false, 0},
	0xA7: {"LAX", Zpg, (*CPU).lax, false, 0},
	0xA8: {"TAY", Imp, (*CPU).tay, false, 0},
	0xA9: {"LDA", Imm, (*CPU).lda, false, 0},
	0xAA: {"TAX", Imp, (*CPU).tax, false, 0},
	0xAB: {"LXA", Imm, (*CPU).lxa, false, 0},
	0xAC: {"LDY", Abs, (*CPU).ldy, false, 0},
	0xAD: {"LDA", Abs, (*CPU).lda, false, 0},
	0xAE: {"LDX", Abs, (*CPU).ldx, false, 0},
	0xAF: {"LAX", Abs, (*CPU).lax, false, 0},

	0xB0: {"BCS", Rel, (*CPU).bcs, false, 0},
	0xB1: {"LDA", Izy, (*CPU).lda, false, 0},
	0xB2: {"JAM", Imp, (*CPU).jam, false, 0},
	0xB3: {"LAX", Izy, (*CPU).lax, false, 0},
	0xB4: {"LDY", Zpx, (*CPU).ldy, false, 0},
	0xB5: {"LDA", Zpx, (*CPU).lda, false, 0},
	0xB6: {"LDX", Zpy, (*CPU).ldx, false, 0},
	0xB7: {"LAX", Zpy, (*CPU).lax, false, 0},
	0xB8: {"CLV", Imp, (*CPU).clv, false, 0},
	0xB9: {"LDA", Aby, (*CPU).lda, false, 0},
	0xBA: {"TSX", Imp, (*CPU).tsx, false, 0},
	0xBB: {"LAS", Aby, (*CPU).las, false, 0},
	0xBC: {"LDY", Abx, (*CPU).ldy, false, 0},
	0xBD: {"LDA", Abx, (*CPU).lda, false, 0},
	0xBE: {"LDX", Aby, (*CPU).ldx, false, 0},
	0xBF: {"LAX", Aby, (*CPU).lax, false, 0},

	0xC0: {"CPY", Imm, (*CPU).cpy, false, 0},
	0xC1: {"CMP", Izx, (*CPU).cmp, false, 0},
	0xC2: {"NOP", Imm, (*CPU).nopm, false, 0},
	0xC3: {"DCP", Izx, (*CPU).dcp, rmw, 0},
	0xC4: {"CPY", Zpg, (*CPU).cpy, false, 0},
	0xC5: {"CMP", Zpg, (*CPU).cmp, false, 0},
	0xC6: {"DEC", Zpg, (*CPU).dec, rmw, 0},
	0xC7: {"DCP", Zpg, (*CPU).dcp, rmw, 0},
	0xC8: {"INY", Imp, (*CPU).iny, false, 0},
	0xC9: {"CMP", Imm, (*CPU).cmp, false, 0},
	0xCA: {"DEX", Imp, (*CPU).dex, false, 0},
	0xCB: {"SBX", Imm, (*CPU).sbx, false, 0},
	0xCC: {"CPY", Abs, (*CPU).cpy, false, 0},
	0xCD: {"CMP", Abs, (*CPU).cmp, false, 0},
	0xCE: {"DEC", Abs, (*CPU).dec, rmw, 0},
	0xCF: {"DCP", Abs, (*CPU).dcp, rmw, 0},

	0xD0: {"BNE", Rel, (*CPU).bne, false, 0},
	0xD1: {"CMP", Izy, (*CPU).cmp, false, 0},
	0xD2: {"JAM", Imp, (*CPU).jam, false, 0},
	0xD3: {"DCP", Izyw, (*CPU).dcp, rmw, 0},
	0xD4: {"NOP", Zpx, (*CPU).nopm, false, 0},
	0xD5: {"CMP", Zpx, (*CPU).cmp, false, 0},
	0xD6: {"DEC", Zpx, (*CPU).dec, rmw, 0},
	0xD7: {"DCP", Zpx, (*CPU).dcp, rmw, 0},
	0xD8: {"CLD", Imp, (*CPU).cld, false, 0},
	0xD9: {"CMP", Aby, (*CPU).cmp, false, 0},
	0xDA: {"NOP", Imp, (*CPU).nop, false, 0},
	0xDB: {"DCP", Abyw, (*CPU).dcp, rmw, 0},
	0xDC: {"NOP", Abx, (*CPU).nopm, false, 0},
	0xDD: {"CMP", Abx, (*CPU).cmp, false, 0},
	0xDE: {"DEC", Abxw, (*CPU).dec, rmw, 0},
	0xDF: {"DCP", Abxw, (*CPU).dcp, rmw, 0},

	0xE0: {"CPX", Imm, (*CPU).cpx, false, 0},
	0xE1: {"SBC", Izx, (*CPU).sbcm, false, 0},
	0xE2: {"NOP", Imm, (*CPU).nopm, false, 0},
	0xE3: {"ISC", Izx, (*CPU).isc, rmw, 0},
	0xE4: {"CPX", Zpg, (*CPU).cpx, false, 0},
	0xE5: {"SBC", Zpg, (*CPU).sbcm, false, 0},
	0xE6: {"INC", Zpg, (*CPU).inc, rmw, 0},
	0xE7: {"ISC", Zpg, (*CPU).isc, rmw, 0},
	0xE8: {"INX", Imp, (*CPU).inx, false, 0},
	0xE9: {"SBC", Imm, (*CPU).sbcm, false, 0},
	0xEA: {"NOP", Imp, (*CPU).nop, false, 0},
	0xEB: {"SBC", Imm, (*CPU).sbcm, false, 0},
	0xEC: {"CPX", Abs, (*CPU).cpx, false, 0},
	0xED: {"SBC", Abs, (*CPU).sbcm, false, 0},
	0xEE: {"INC", Abs, (*CPU).inc, rmw, 0},
	0xEF: {"ISC", Abs, (*CPU).isc, rmw, 0},

	0xF0: {"BEQ", Rel, (*CPU).beq, false, 0},
	0xF1: {"SBC", Izy, (*CPU).sbcm, false, 0},
	0xF2: {"JAM", Imp, (*CPU).jam, false, 0},
	0xF3: {"ISC", Izyw, (*CPU).isc, rmw, 0},
	0xF4: {"NOP", Zpx, (*CPU).nopm, false, 0},
	0xF5: {"SBC", Zpx, (*CPU).sbcm, false, 0},
	0xF6: {"INC", Zpx, (*CPU).inc, rmw, 0},
	0xF7: {"ISC", Zpx, (*CPU).isc, rmw, 0},
	0xF8: {"SED", Imp, (*CPU).sed, false, 0},
	0xF9: {"SBC", Aby, (*CPU).sbcm, false, 0},
	0xFA: {"NOP", Imp, (*CPU).nop, false, 0},
	0xFB: {"ISC", Abyw, (*CPU).isc, rmw, 0},
	0xFC: {"NOP", Abx, (*CPU).nopm, false, 0},
	0xFD: {"SBC", Abx, (*CPU).sbcm, false, 0},
	0xFE: {"INC", Abxw, (*CPU).inc, rmw, 0},
	0xFF: {"ISC", Abxw, (*CPU).isc, rmw, 0},
}
