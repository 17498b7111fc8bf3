package emu

import (
	"context"
	"io"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"emu65/emu/log"
	"emu65/hw"
	"emu65/hw/clock"
	"emu65/hw/hwerr"
	"emu65/hw/hwio"
	"emu65/hw/inspect"
)

// Machine ties the CPU to the bus and its devices, and to the clock that
// paces it.
type Machine struct {
	CPU   *hw.CPU
	Bus   *hwio.Table
	Clock *clock.Clock
	Mems  []*hwio.Mem

	mu     sync.Mutex // serializes CPU execution
	debt   int64      // cycles consumed ahead of the clock
	hooked bool       // the execution hook stopped the CPU
	unsub  func()

	stopReason string
}

// PowerUp builds a machine as described by cfg, flashes the images and
// resets the CPU. Devices images are loaded concurrently.
func PowerUp(cfg Config) (*Machine, error) {
	cfg.Check()

	m := &Machine{}
	var maps []hwio.Mapping
	var images []string
	for _, mcfg := range cfg.Memory {
		switch mcfg.Kind {
		case KindRAM, KindROM:
			if mcfg.End < mcfg.Start {
				return nil, hwerr.Constructionf("machine", "powerup", "memory %q: start $%04X > end $%04X", mcfg.Name, mcfg.Start, mcfg.End)
			}
			newMem := hwio.NewRAM
			if mcfg.Kind == KindROM {
				newMem = hwio.NewROM
			}
			mem, err := newMem(mcfg.Name, mcfg.Start, int(mcfg.End)-int(mcfg.Start)+1)
			if err != nil {
				return nil, err
			}
			m.Mems = append(m.Mems, mem)
			images = append(images, mcfg.Image)
			maps = append(maps, mem.Mapping())
		case KindOut:
			maps = append(maps, hwio.Mapping{
				Start: mcfg.Start,
				End:   mcfg.End,
				Name:  mcfg.Name,
				Dev:   outputDevice(mcfg.Name, cfg.Output),
			})
		default:
			return nil, hwerr.Constructionf("machine", "powerup", "memory %q: unknown kind %q", mcfg.Name, mcfg.Kind)
		}
	}

	if err := flashImages(m.Mems, images); err != nil {
		return nil, err
	}

	bus, err := hwio.NewTable("cpu", maps, hwio.WithCacheSize(cfg.Bus.cacheSize()))
	if err != nil {
		return nil, err
	}
	m.Bus = bus

	m.CPU = hw.NewCPU(bus)
	m.CPU.SetCycleAccurate(cfg.CPU.CycleAccurate)
	m.CPU.SetProfiling(cfg.CPU.Profiling)
	if cfg.TraceOut != nil {
		m.CPU.SetTraceOutput(cfg.TraceOut)
	}
	m.CPU.Reset()

	m.Clock = clock.New(cfg.Clock.clockConfig())
	m.unsub = m.Clock.Subscribe(m.drive)

	log.ModEmu.InfoZ("Machine powered up").
		Int("devices", len(maps)).
		Hex16("PC", m.CPU.PC).
		End()
	return m, nil
}

// flashImages loads the image files concurrently and flashes them into the
// memory of the same index. Empty paths are skipped.
func flashImages(mems []*hwio.Mem, images []string) error {
	var g errgroup.Group
	for i, path := range images {
		if path == "" {
			continue
		}
		g.Go(func() error {
			buf, err := os.ReadFile(path)
			if err != nil {
				return hwerr.Wrap(hwerr.KindConstruction, "machine", "flash", err, mems[i].Name)
			}
			return mems[i].Flash(buf)
		})
	}
	return g.Wait()
}

// outputDevice creates a write-only device that writes the bytes it
// receives to w.
func outputDevice(name string, w io.Writer) *hwio.Device {
	if w == nil {
		w = io.Discard
	}
	return &hwio.Device{
		Name:  name,
		Flags: hwio.WriteOnlyFlag,
		WriteCb: func(addr uint16, val uint8) {
			if _, err := w.Write([]byte{val}); err != nil {
				log.ModEmu.WarnZ("Output device write failed").
					String("name", name).
					Error("err", err).
					End()
			}
		},
	}
}

// drive is called by the clock with each budget.
func (m *Machine) drive(budget int64) {
	if budget <= 0 {
		return
	}

	m.mu.Lock()
	m.runCycles(budget)
	halted, hooked, pc := m.CPU.Halted(), m.hooked, m.CPU.PC
	m.mu.Unlock()

	switch {
	case halted:
		m.stop("cpu jammed", pc)
	case hooked:
		m.stop("execution hook", pc)
	}
}

// runCycles runs the CPU for budget cycles minus the debt accumulated by
// the previous runs. The CPU always overshoots a little, the overshoot is
// carried as debt so that, in the long run, the CPU consumes as many cycles
// as the budgets sum up to. m.mu must be held.
func (m *Machine) runCycles(budget int64) int64 {
	target := budget - m.debt
	if target <= 0 {
		m.debt -= budget
		return 0
	}

	consumed := m.CPU.Run(target)
	m.debt = consumed - target

	// Run only stops before exceeding the target when the execution hook
	// stops the CPU.
	m.hooked = consumed <= target
	if m.hooked {
		m.debt = 0
	}
	return consumed
}

// RunCycles runs the CPU for n cycles without the clock, and returns the
// number of consumed cycles.
func (m *Machine) RunCycles(n int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runCycles(n)
}

func (m *Machine) stop(reason string, pc uint16) {
	m.mu.Lock()
	m.stopReason = reason
	m.mu.Unlock()

	log.ModEmu.InfoZ("Machine stopped").
		String("reason", reason).
		Hex16("PC", pc).
		End()
	m.Clock.Stop()
}

// StopReason returns why the machine stopped by itself, if it did.
func (m *Machine) StopReason() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopReason
}

// Run runs the machine at the clock pace until Stop is called, the CPU
// jams, an execution hook stops it, or ctx is done.
func (m *Machine) Run(ctx context.Context) error {
	m.mu.Lock()
	m.stopReason = ""
	m.mu.Unlock()

	err := m.Clock.Run(ctx)
	log.ModEmu.InfoZ("Emulation loop exited").End()
	return err
}

// Stop, Pause and Resume allow to control the machine loop in a
// concurrent-safe way.

func (m *Machine) Stop()   { m.Clock.Stop() }
func (m *Machine) Pause()  { m.Clock.Pause() }
func (m *Machine) Resume() { m.Clock.Resume() }

// SetDebugger installs an execution hook on the CPU.
func (m *Machine) SetDebugger(dbg hw.Debugger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CPU.SetDebugger(dbg)
}

// Inspect returns the reports of all components.
func (m *Machine) Inspect() []inspect.Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	reports := []inspect.Report{
		m.CPU.Inspect(),
		m.Bus.Inspect(),
		m.Clock.Inspect(),
	}
	for _, mem := range m.Mems {
		reports = append(reports, mem.Inspect())
	}
	return reports
}

// Close releases the machine resources.
func (m *Machine) Close() {
	m.Clock.Stop()
	m.unsub()
}
