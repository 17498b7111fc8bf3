// Package hook provides execution hooks for the CPU: breakpoints, Lua
// scripts and a call stack tracker.
package hook

import (
	"emu65/hw"
)

// Chain combines multiple debuggers. Trace calls all of them and lets the
// CPU execute only if all agree.
type Chain []hw.Debugger

func (c Chain) Trace(pc uint16) bool {
	ok := true
	for _, d := range c {
		ok = d.Trace(pc) && ok
	}
	return ok
}

func (c Chain) Interrupt(prevpc, curpc uint16, isNMI bool) {
	for _, d := range c {
		d.Interrupt(prevpc, curpc, isNMI)
	}
}

func (c Chain) Reset() {
	for _, d := range c {
		d.Reset()
	}
}
