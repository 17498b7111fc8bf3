package hook

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"emu65/emu/log"
)

// Peeker reads memory without side effects.
type Peeker interface {
	Peek8(addr uint16) uint8
}

// Script is an execution hook written in Lua. The script must define
//
//	function exec(pc) ... end
//
// which is called before each instruction and returns true to let the CPU
// execute it. It may also define interrupt(prevpc, curpc, nmi) and reset(). The
// peek(addr) builtin reads memory.
//
// A runtime error in the script stops the CPU.
type Script struct {
	mu sync.Mutex
	L  *lua.LState

	exec      *lua.LFunction
	interrupt *lua.LFunction
	reset     *lua.LFunction

	err error
}

// NewScript compiles and runs src, which defines the hook functions.
func NewScript(src string, mem Peeker) (*Script, error) {
	return newScript(mem, func(L *lua.LState) error { return L.DoString(src) })
}

// LoadScript is like NewScript but reads the script from a file.
func LoadScript(path string, mem Peeker) (*Script, error) {
	return newScript(mem, func(L *lua.LState) error { return L.DoFile(path) })
}

func newScript(mem Peeker, load func(*lua.LState) error) (*Script, error) {
	L := lua.NewState()
	L.SetGlobal("peek", L.NewFunction(func(L *lua.LState) int {
		addr := L.CheckInt(1)
		L.Push(lua.LNumber(mem.Peek8(uint16(addr))))
		return 1
	}))

	if err := load(L); err != nil {
		L.Close()
		return nil, fmt.Errorf("hook script: %w", err)
	}

	s := &Script{L: L}
	fn, ok := L.GetGlobal("exec").(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("hook script: missing exec function")
	}
	s.exec = fn
	s.interrupt, _ = L.GetGlobal("interrupt").(*lua.LFunction)
	s.reset, _ = L.GetGlobal("reset").(*lua.LFunction)
	return s, nil
}

func (s *Script) call(fn *lua.LFunction, nret int, args ...lua.LValue) (lua.LValue, error) {
	err := s.L.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true}, args...)
	if err != nil {
		return lua.LNil, err
	}
	if nret == 0 {
		return lua.LNil, nil
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)
	return ret, nil
}

func (s *Script) fail(err error) {
	if s.err == nil {
		log.ModHook.ErrorZ("Hook script failed").Error("err", err).End()
	}
	s.err = err
}

func (s *Script) Trace(pc uint16) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return false
	}
	ret, err := s.call(s.exec, 1, lua.LNumber(pc))
	if err != nil {
		s.fail(err)
		return false
	}
	return lua.LVAsBool(ret)
}

func (s *Script) Interrupt(prevpc, curpc uint16, isNMI bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.interrupt == nil || s.err != nil {
		return
	}
	if _, err := s.call(s.interrupt, 0, lua.LNumber(prevpc), lua.LNumber(curpc), lua.LBool(isNMI)); err != nil {
		s.fail(err)
	}
}

func (s *Script) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reset == nil || s.err != nil {
		return
	}
	if _, err := s.call(s.reset, 0); err != nil {
		s.fail(err)
	}
}

// Err returns the runtime error that stopped the script, if any.
func (s *Script) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Script) Close() {
	s.L.Close()
}
