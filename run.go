package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"emu65/emu"
	"emu65/emu/hook"
	"emu65/emu/rpc"
	"emu65/hw"
)

const statusRefresh = 500 * time.Millisecond

// runMain powers up the machine described by the configuration and runs it
// until it stops by itself, the duration elapses or the process receives
// an interrupt signal.
func runMain(args Run) error {
	cfg, err := emu.LoadConfig(args.ConfigPath)
	if err != nil {
		return err
	}

	if args.Trace != nil {
		cfg.TraceOut = args.Trace
		defer args.Trace.Close()
	}
	cfg.Output = os.Stdout

	m, err := emu.PowerUp(cfg)
	if err != nil {
		return fmt.Errorf("failed to start machine: %w", err)
	}
	defer m.Close()

	if args.LoadState != "" {
		if err := loadState(m, args.LoadState); err != nil {
			return err
		}
	}

	var hooks hook.Chain
	if len(args.Break) > 0 {
		hooks = append(hooks, hook.NewBreakpoints(args.Break...))
	}
	if args.HookScript != "" {
		script, err := hook.LoadScript(args.HookScript, m.Bus)
		if err != nil {
			return err
		}
		defer script.Close()
		hooks = append(hooks, script)
	}
	if len(hooks) > 0 {
		m.SetDebugger(hooks)
	}

	if args.CPUProfile != "" {
		f, err := os.Create(args.CPUProfile)
		checkf(err, "failed to create cpu profile file")
		checkf(pprof.StartCPUProfile(f), "failed to start cpu profile")
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
			fmt.Println("CPU profile written to", args.CPUProfile)
		}()
	}

	if args.RPCPort != 0 {
		server, err := rpc.NewServer(args.RPCPort, m)
		if err != nil {
			return fmt.Errorf("rpc server: %w", err)
		}
		defer server.Close()
	}

	if args.Statsview {
		stop := launchStatsview(os.Stderr)
		defer stop()
	}

	if args.Cycles > 0 {
		n := m.RunCycles(args.Cycles)
		fmt.Fprintf(os.Stderr, "ran %d cycles, PC=$%04X\n", n, m.CPU.PC)
		if args.SaveState != "" {
			if err := saveState(m, args.SaveState); err != nil {
				return err
			}
		}
	} else if err := runClocked(m, args); err != nil {
		return err
	}

	if args.Inspect {
		for _, r := range m.Inspect() {
			if _, err := r.WriteTo(os.Stdout); err != nil {
				return err
			}
		}
	}
	return nil
}

// runClocked runs the machine at its clock pace. When it's interrupted,
// the machine is paused while its state is saved so that the clock
// statistics are saved too.
func runClocked(m *emu.Machine, args Run) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if args.Duration > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, args.Duration)
		defer cancelTimeout()
	}

	done := make(chan struct{})
	var g errgroup.Group
	g.Go(func() error {
		defer close(done)
		return m.Run(context.Background())
	})
	g.Go(func() error {
		select {
		case <-done:
			return nil
		case <-ctx.Done():
		}

		m.Pause()
		defer m.Stop()
		if args.SaveState != "" {
			return saveState(m, args.SaveState)
		}
		return nil
	})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		g.Go(func() error {
			statusLine(os.Stderr, m, done)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if reason := m.StopReason(); reason != "" {
		fmt.Fprintf(os.Stderr, "machine stopped: %s (PC=$%04X)\n", reason, m.CPU.PC)
		if args.SaveState != "" {
			return saveState(m, args.SaveState)
		}
	}
	return nil
}

// statusLine periodically rewrites a line showing the measured frequency,
// until done is closed.
func statusLine(w io.Writer, m *emu.Machine, done <-chan struct{}) {
	ticker := time.NewTicker(statusRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			fmt.Fprintln(w)
			return
		case <-ticker.C:
			st := m.Clock.Stats()
			fmt.Fprintf(w, "\r%-8s %8.4f MHz  drift %+6.2f%%  cycles %d",
				st.State, st.ActualMHz, st.Drift*100, st.TotalCycles)
		}
	}
}

func loadState(m *emu.Machine, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := m.LoadState(f); err != nil {
		return fmt.Errorf("failed to load state %s: %w", path, err)
	}
	return nil
}

func saveState(m *emu.Machine, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.SaveState(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to save state %s: %w", path, err)
	}
	return f.Close()
}

// disasmMain disassembles an image, as it would be laid out in memory.
func disasmMain(args Disasm, w io.Writer) error {
	buf, err := os.ReadFile(args.ImagePath)
	if err != nil {
		return err
	}
	cpu, start, err := imageCPU(buf)
	if err != nil {
		return err
	}
	if args.Start != nil {
		start = uint16(*args.Start)
	}

	for _, op := range cpu.DisasmN(start, args.Count) {
		if _, err := fmt.Fprintln(w, op); err != nil {
			return err
		}
	}
	return nil
}

// imageCPU flashes an image into a 64KB RAM and returns a CPU attached to
// it, along with the image load address.
func imageCPU(buf []byte) (*hw.CPU, uint16, error) {
	cfg := emu.Config{
		Memory: []emu.MemoryConfig{
			{Name: "image", Kind: emu.KindRAM, Start: 0x0000, End: 0xFFFF},
		},
	}
	m, err := emu.PowerUp(cfg)
	if err != nil {
		return nil, 0, err
	}
	defer m.Close()

	if err := m.Mems[0].Flash(buf); err != nil {
		return nil, 0, err
	}
	return m.CPU, uint16(buf[0]) | uint16(buf[1])<<8, nil
}
