package hook

import (
	"fmt"
	"slices"
	"sync"
)

type frameKind uint8

const (
	frameCall frameKind = iota
	frameNMI
	frameIRQ
)

type stackFrame struct {
	src    uint16
	target uint16
	ret    uint16
	kind   frameKind
}

// CallStack tracks subroutine calls and interrupts. It never stops the CPU.
type CallStack struct {
	mu  sync.Mutex
	mem Peeker

	frames     []stackFrame
	prevPC     uint16
	prevOpcode uint8
}

func NewCallStack(mem Peeker) *CallStack {
	return &CallStack{mem: mem, prevOpcode: 0xFF}
}

func (cs *CallStack) Trace(pc uint16) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.update(pc)
	cs.prevPC = pc
	cs.prevOpcode = cs.mem.Peek8(pc)
	return true
}

// update pushes or pops a frame depending on the previously executed
// instruction.
func (cs *CallStack) update(pc uint16) {
	switch cs.prevOpcode {
	case 0x20: // JSR
		cs.push(cs.prevPC, pc, cs.prevPC+3, frameCall)
	case 0x40, 0x60: // RTI RTS
		cs.pop()
	}
}

func (cs *CallStack) Interrupt(prevpc, curpc uint16, isNMI bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	kind := frameIRQ
	if isNMI {
		kind = frameNMI
	}
	// Trace has been called for prevpc but the instruction there hasn't
	// been executed.
	cs.prevOpcode = 0xFF
	cs.push(prevpc, curpc, prevpc, kind)
}

func (cs *CallStack) Reset() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.frames = cs.frames[:0]
	cs.prevOpcode = 0xFF
}

func (cs *CallStack) push(src, dst, ret uint16, kind frameKind) {
	cs.frames = append(cs.frames, stackFrame{
		src:    src,
		target: dst,
		ret:    ret,
		kind:   kind,
	})
}

func (cs *CallStack) pop() {
	if len(cs.frames) == 0 {
		return
	}
	cs.frames = cs.frames[:len(cs.frames)-1]
}

func (cs *CallStack) Depth() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.frames)
}

// Frame describes a call stack entry: the entry point of the routine and
// the current location in it.
type Frame [2]string

// Frames returns the call stack, innermost frame first. pc is the current
// location.
func (cs *CallStack) Frames(pc uint16) []Frame {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	frames := make([]Frame, 0, len(cs.frames)+1)
	var cur *stackFrame
	for i, f := range cs.frames {
		if i > 0 {
			cur = &cs.frames[i-1]
		}
		frames = slices.Insert(frames, 0, Frame{entryPoint(cur), fmt.Sprintf("$%04X", f.src)})
	}

	// Current frame
	cur = nil
	if len(cs.frames) > 0 {
		cur = &cs.frames[len(cs.frames)-1]
	}
	return slices.Insert(frames, 0, Frame{entryPoint(cur), fmt.Sprintf("$%04X", pc)})
}

func entryPoint(f *stackFrame) string {
	if f == nil {
		return "[bottom of stack]"
	}

	str := fmt.Sprintf("%04X", f.target)
	switch f.kind {
	case frameNMI:
		return "[nmi] $" + str
	case frameIRQ:
		return "[irq] $" + str
	default:
		return str
	}
}
