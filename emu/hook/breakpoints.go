package hook

import (
	"maps"
	"slices"
	"sync"

	"emu65/emu/log"
)

// Breakpoints stops the CPU before it executes the instruction at one of its
// addresses. The CPU stays stopped on a breakpoint until Continue is called.
type Breakpoints struct {
	mu    sync.Mutex
	addrs map[uint16]struct{}

	hit     uint16
	stopped bool
	pass    bool // let the CPU execute the instruction at hit
}

func NewBreakpoints(addrs ...uint16) *Breakpoints {
	b := &Breakpoints{addrs: make(map[uint16]struct{})}
	for _, addr := range addrs {
		b.addrs[addr] = struct{}{}
	}
	return b
}

func (b *Breakpoints) Add(addr uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addrs[addr] = struct{}{}
}

func (b *Breakpoints) Remove(addr uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.addrs, addr)
}

// List returns the breakpoint addresses, sorted.
func (b *Breakpoints) List() []uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Sorted(maps.Keys(b.addrs))
}

// Hit returns the address of the breakpoint the CPU is stopped on.
func (b *Breakpoints) Hit() (uint16, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hit, b.stopped
}

// Continue lets the CPU execute the instruction it's stopped on.
func (b *Breakpoints) Continue() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		b.stopped = false
		b.pass = true
	}
}

func (b *Breakpoints) Trace(pc uint16) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pass {
		b.pass = false
		if pc == b.hit {
			return true
		}
	}
	if _, ok := b.addrs[pc]; !ok {
		return true
	}
	if !b.stopped {
		log.ModHook.InfoZ("Breakpoint hit").Hex16("PC", pc).End()
	}
	b.hit = pc
	b.stopped = true
	return false
}

func (b *Breakpoints) Interrupt(prevpc, curpc uint16, isNMI bool) {}

func (b *Breakpoints) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped, b.pass = false, false
}
