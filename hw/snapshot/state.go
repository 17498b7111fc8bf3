// Package snapshot holds the plain-data save states of the machine
// components.
//
// Each snapshot carries a version string. Older versions are migrated on
// load, and every snapshot is validated before a component applies it, so
// that a bad file can never leave a component half restored. Integer fields
// are wider than the registers they hold so that out of range values reach
// the validator instead of being silently truncated.
package snapshot

import (
	"time"

	"emu65/hw/hwerr"
)

// Current versions.
const (
	CPUVersion     = "2"
	ClockVersion   = "2"
	BusVersion     = "1"
	MemVersion     = "1"
	MachineVersion = "1"
)

type CPU struct {
	Version string

	PC int
	A  int
	X  int
	Y  int
	S  int

	// Flags, 0 or 1.
	N, Z, C, V, I, D int

	// Packed status register, only used by version 1.
	P int

	Cycles int64
	Opcode int

	// Interrupt lines and latches.
	IRQ        bool
	NMI        bool
	PendingIRQ bool
	PendingNMI bool
}

type Clock struct {
	Version string

	FrequencyMHz float64
	StepNanos    int64

	Running     bool
	Paused      bool
	ElapsedNano int64 // active running time
	PausedNano  int64 // accumulated paused time

	TotalCycles int64
	Iterations  int64
	ClampCount  int64
	Budget      int64
	Fraction    float64

	// Drift tracking, added in version 2.
	Samples           []int64 // recent frame durations, in nanoseconds
	DriftCompensation float64
	WaitNanos         int64
	Drift             float64 // last measured relative drift
}

type Mapping struct {
	Name  string
	Start int
	End   int
}

type Bus struct {
	Version  string
	Name     string
	Mappings []Mapping
	Accesses int64
	Hits     int64
}

type Mem struct {
	Version  string
	Name     string
	Base     int
	ReadOnly bool
	Data     []byte
}

type Machine struct {
	Version string
	CPU     CPU
	Clock   Clock
	Bus     *Bus // optional
	Memory  []Mem
}

func checkRange(component, field string, v, max int) error {
	if v < 0 || v > max {
		return hwerr.Statef(component, "validate", "%s = %d out of range [0, %d]", field, v, max)
	}
	return nil
}

// Validate checks that all fields are within their hardware range.
func (s *CPU) Validate() error {
	if s.Version != CPUVersion {
		return hwerr.Statef("cpu", "validate", "unexpected version %q", s.Version)
	}
	if err := checkRange("cpu", "PC", s.PC, 0xFFFF); err != nil {
		return err
	}
	regs := []struct {
		name string
		val  int
		max  int
	}{
		{"A", s.A, 0xFF}, {"X", s.X, 0xFF}, {"Y", s.Y, 0xFF}, {"S", s.S, 0xFF},
		{"opcode", s.Opcode, 0xFF},
		{"N", s.N, 1}, {"Z", s.Z, 1}, {"C", s.C, 1},
		{"V", s.V, 1}, {"I", s.I, 1}, {"D", s.D, 1},
	}
	for _, r := range regs {
		if err := checkRange("cpu", r.name, r.val, r.max); err != nil {
			return err
		}
	}
	if s.Cycles < 0 {
		return hwerr.Statef("cpu", "validate", "negative cycle count %d", s.Cycles)
	}
	return nil
}

const maxClockSamples = 4096

// Validate checks that the timing state is usable.
func (s *Clock) Validate() error {
	if s.Version != ClockVersion {
		return hwerr.Statef("clock", "validate", "unexpected version %q", s.Version)
	}
	if s.FrequencyMHz <= 0 {
		return hwerr.Statef("clock", "validate", "frequency %gMHz must be positive", s.FrequencyMHz)
	}
	if s.StepNanos <= 0 {
		return hwerr.Statef("clock", "validate", "step %s must be positive", time.Duration(s.StepNanos))
	}
	counters := []struct {
		name string
		val  int64
	}{
		{"elapsed", s.ElapsedNano}, {"paused", s.PausedNano},
		{"totalCycles", s.TotalCycles}, {"iterations", s.Iterations},
		{"clampCount", s.ClampCount}, {"budget", s.Budget}, {"wait", s.WaitNanos},
	}
	for _, c := range counters {
		if c.val < 0 {
			return hwerr.Statef("clock", "validate", "%s = %d must not be negative", c.name, c.val)
		}
	}
	if s.Fraction < 0 || s.Fraction >= 1 {
		return hwerr.Statef("clock", "validate", "fraction %g out of range [0, 1)", s.Fraction)
	}
	if s.DriftCompensation <= 0 || s.DriftCompensation > 10 {
		return hwerr.Statef("clock", "validate", "drift compensation %g out of range (0, 10]", s.DriftCompensation)
	}
	if len(s.Samples) > maxClockSamples {
		return hwerr.Statef("clock", "validate", "too many samples (%d)", len(s.Samples))
	}
	for i, d := range s.Samples {
		if d < 0 {
			return hwerr.Statef("clock", "validate", "sample %d is negative", i)
		}
	}
	return nil
}

func validateRange(component, name string, start, end int) error {
	if err := checkRange(component, name+".start", start, 0xFFFF); err != nil {
		return err
	}
	if err := checkRange(component, name+".end", end, 0xFFFF); err != nil {
		return err
	}
	if start > end {
		return hwerr.Statef(component, "validate", "%s: start $%04X > end $%04X", name, start, end)
	}
	return nil
}

func (s *Bus) Validate() error {
	if s.Version != BusVersion {
		return hwerr.Statef("bus", "validate", "unexpected version %q", s.Version)
	}
	for _, m := range s.Mappings {
		if err := validateRange("bus", m.Name, m.Start, m.End); err != nil {
			return err
		}
	}
	if s.Accesses < 0 || s.Hits < 0 || s.Hits > s.Accesses {
		return hwerr.Statef("bus", "validate", "inconsistent counters: %d hits for %d accesses", s.Hits, s.Accesses)
	}
	return nil
}

func (s *Mem) Validate() error {
	if s.Version != MemVersion {
		return hwerr.Statef("mem", "validate", "unexpected version %q", s.Version)
	}
	if len(s.Data) == 0 {
		return hwerr.Statef("mem", "validate", "%s: empty memory", s.Name)
	}
	if err := validateRange("mem", s.Name, s.Base, s.Base+len(s.Data)-1); err != nil {
		return err
	}
	return nil
}

func (s *Machine) Validate() error {
	if s.Version != MachineVersion {
		return hwerr.Statef("machine", "validate", "unexpected version %q", s.Version)
	}
	if err := s.CPU.Validate(); err != nil {
		return err
	}
	if err := s.Clock.Validate(); err != nil {
		return err
	}
	if s.Bus != nil {
		if err := s.Bus.Validate(); err != nil {
			return err
		}
	}
	for i := range s.Memory {
		if err := s.Memory[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
