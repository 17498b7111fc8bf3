package hw

import (
	"cmp"
	"slices"
)

// Access is a bus access recorded in cycle accurate mode.
type Access struct {
	Cycle int64
	Addr  uint16
	Val   uint8
	Write bool
}

const accessRingSize = 32

type profile struct {
	counts [256]uint64

	ring [accessRingSize]Access
	pos  int // next slot
	n    int // number of valid entries
}

func (p *profile) record(addr uint16, val uint8, write bool, cycle int64) {
	p.ring[p.pos] = Access{Cycle: cycle, Addr: addr, Val: val, Write: write}
	p.pos = (p.pos + 1) % accessRingSize
	p.n = min(p.n+1, accessRingSize)
}

// SetProfiling enables counting the executions of each opcode.
func (c *CPU) SetProfiling(enabled bool) {
	c.profiling = enabled
}

// OpcodeCounts returns the number of times each opcode has been executed
// since profiling was enabled.
func (c *CPU) OpcodeCounts() [256]uint64 {
	return c.prof.counts
}

// OpcodeCount is the execution count of an opcode.
type OpcodeCount struct {
	Opcode uint8
	Name   string
	Count  uint64
}

// TopOpcodes returns the n most executed opcodes, most executed first.
func (c *CPU) TopOpcodes(n int) []OpcodeCount {
	var top []OpcodeCount
	for op, cnt := range c.prof.counts {
		if cnt == 0 {
			continue
		}
		top = append(top, OpcodeCount{Opcode: uint8(op), Name: ops[op].name, Count: cnt})
	}
	slices.SortStableFunc(top, func(a, b OpcodeCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return top[:min(n, len(top))]
}

// RecentAccesses returns the last bus accesses, oldest first. Accesses are
// only recorded in cycle accurate mode.
func (c *CPU) RecentAccesses() []Access {
	p := &c.prof
	accs := make([]Access, 0, p.n)
	start := (p.pos - p.n + accessRingSize) % accessRingSize
	for i := range p.n {
		accs = append(accs, p.ring[(start+i)%accessRingSize])
	}
	return accs
}

// ResetProfile clears the opcode counters and the recorded accesses.
func (c *CPU) ResetProfile() {
	c.prof = profile{}
}
