package emu

import (
	"io"

	"emu65/emu/log"
	"emu65/hw/hwerr"
	"emu65/hw/hwio"
	"emu65/hw/snapshot"
)

// Snapshot captures the state of all the machine components.
func (m *Machine) Snapshot() *snapshot.Machine {
	m.mu.Lock()
	defer m.mu.Unlock()

	bus := m.Bus.Snapshot()
	s := &snapshot.Machine{
		Version: snapshot.MachineVersion,
		CPU:     m.CPU.Snapshot(),
		Clock:   m.Clock.Snapshot(),
		Bus:     &bus,
	}
	for _, mem := range m.Mems {
		s.Memory = append(s.Memory, mem.Snapshot())
	}
	return s
}

// SaveState writes the machine state to w, as JSON.
func (m *Machine) SaveState(w io.Writer) error {
	buf := snapshot.Marshal(m.Snapshot())
	if _, err := w.Write(buf); err != nil {
		return err
	}
	log.ModState.InfoZ("State saved").Int("size", len(buf)).End()
	return nil
}

// LoadState reads a machine state from r and applies it. The state is fully
// validated first: on error, the machine is left untouched.
func (m *Machine) LoadState(r io.Reader) error {
	buf, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s, err := snapshot.Unmarshal(buf)
	if err != nil {
		return err
	}
	return m.Restore(s)
}

// Restore applies a decoded snapshot. Memories are matched by name, those
// absent from the snapshot keep their content.
func (m *Machine) Restore(s *snapshot.Machine) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Everything is migrated and checked before the first modification.
	mems := make([]*hwio.Mem, len(s.Memory))
	memSnaps := make([]snapshot.Mem, len(s.Memory))
	for i, sm := range s.Memory {
		mem := m.findMem(sm.Name)
		if mem == nil {
			return hwerr.Statef("machine", "restore", "no memory named %q", sm.Name)
		}
		ms, err := mem.CheckSnapshot(sm)
		if err != nil {
			return err
		}
		mems[i], memSnaps[i] = mem, ms
	}
	var bus *snapshot.Bus
	if s.Bus != nil {
		bs, err := m.Bus.CheckSnapshot(*s.Bus)
		if err != nil {
			return err
		}
		bus = &bs
	}
	cpu, err := snapshot.MigrateCPU(s.CPU)
	if err != nil {
		return err
	}
	if err := cpu.Validate(); err != nil {
		return err
	}
	clk, err := snapshot.MigrateClock(s.Clock)
	if err != nil {
		return err
	}
	if err := clk.Validate(); err != nil {
		return err
	}

	if bus != nil {
		if err := m.Bus.Restore(*bus); err != nil {
			return err
		}
	}
	for i, mem := range mems {
		if err := mem.Restore(memSnaps[i]); err != nil {
			return err
		}
	}
	if err := m.CPU.Restore(cpu); err != nil {
		return err
	}
	if err := m.Clock.Restore(clk); err != nil {
		return err
	}
	m.debt = 0
	m.hooked = false

	log.ModState.InfoZ("State restored").
		Hex16("PC", m.CPU.PC).
		Int64("cycles", m.CPU.Cycles).
		End()
	return nil
}

func (m *Machine) findMem(name string) *hwio.Mem {
	for _, mem := range m.Mems {
		if mem.Name == name {
			return mem
		}
	}
	return nil
}
