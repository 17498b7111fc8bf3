package snapshot

import (
	"time"

	"emu65/hw/hwerr"
)

// Migrations are keyed by source version, each one produces the next version.
var (
	cpuMigrations = map[string]func(CPU) CPU{
		"1": cpuV1toV2,
	}
	clockMigrations = map[string]func(Clock) Clock{
		"1": clockV1toV2,
	}
)

// Version 1 stored the status register packed, and had no interrupt latches.
func cpuV1toV2(s CPU) CPU {
	p := s.P
	s.N = (p >> 7) & 1
	s.V = (p >> 6) & 1
	s.D = (p >> 3) & 1
	s.I = (p >> 2) & 1
	s.Z = (p >> 1) & 1
	s.C = p & 1
	s.P = 0
	s.IRQ, s.NMI = false, false
	s.PendingIRQ, s.PendingNMI = false, false
	s.Version = "2"
	return s
}

// DefaultClockWait is used as wait time when migrating snapshots that didn't
// record it and don't have a usable step either.
const DefaultClockWait = 10 * time.Millisecond

// Version 1 had no drift tracking: no samples, neutral compensation, and
// the wait time equals the step.
func clockV1toV2(s Clock) Clock {
	s.Samples = []int64{}
	s.DriftCompensation = 1
	s.WaitNanos = s.StepNanos
	if s.WaitNanos <= 0 {
		s.WaitNanos = int64(DefaultClockWait)
	}
	s.Version = "2"
	return s
}

func migrate[T any](component string, s T, version func(*T) *string, current string, migrations map[string]func(T) T) (T, error) {
	for *version(&s) != current {
		from := *version(&s)
		mig, ok := migrations[from]
		if !ok {
			var zero T
			return zero, hwerr.Migrationf(component, "migrate", "no migration from version %q to %q", from, current)
		}
		s = mig(s)
	}
	return s, nil
}

// MigrateCPU brings s to CPUVersion.
func MigrateCPU(s CPU) (CPU, error) {
	return migrate("cpu", s, func(s *CPU) *string { return &s.Version }, CPUVersion, cpuMigrations)
}

// MigrateClock brings s to ClockVersion.
func MigrateClock(s Clock) (Clock, error) {
	return migrate("clock", s, func(s *Clock) *string { return &s.Version }, ClockVersion, clockMigrations)
}

// MigrateBus only accepts the current version, there's no older one.
func MigrateBus(s Bus) (Bus, error) {
	return migrate("bus", s, func(s *Bus) *string { return &s.Version }, BusVersion, nil)
}

// MigrateMem only accepts the current version, there's no older one.
func MigrateMem(s Mem) (Mem, error) {
	return migrate("mem", s, func(s *Mem) *string { return &s.Version }, MemVersion, nil)
}
