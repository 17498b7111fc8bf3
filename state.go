package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bradleyjkemp/memviz"

	"emu65/hw/snapshot"
)

// stateMain decodes a save state and prints a summary of it or, with --dot,
// a Graphviz graph of the decoded structure.
func stateMain(args State, w io.Writer) error {
	buf, err := os.ReadFile(args.StatePath)
	if err != nil {
		return err
	}
	s, err := snapshot.Unmarshal(buf)
	if err != nil {
		return err
	}

	if args.Dot {
		// Memory contents would turn the graph into a wall of bytes.
		for i := range s.Memory {
			s.Memory[i].Data = nil
		}
		memviz.Map(w, s)
		return nil
	}

	writeStateSummary(w, s)
	return nil
}

func writeStateSummary(w io.Writer, s *snapshot.Machine) {
	fmt.Fprintf(w, "machine state v%s\n", s.Version)

	cpu := s.CPU
	fmt.Fprintf(w, "cpu   v%s  PC=$%04X A=$%02X X=$%02X Y=$%02X S=$%02X  cycles=%d\n",
		cpu.Version, cpu.PC, cpu.A, cpu.X, cpu.Y, cpu.S, cpu.Cycles)

	clk := s.Clock
	state := "stopped"
	switch {
	case clk.Paused:
		state = "paused"
	case clk.Running:
		state = "running"
	}
	fmt.Fprintf(w, "clock v%s  %gMHz step=%s %s  cycles=%d iterations=%d active=%s\n",
		clk.Version, clk.FrequencyMHz, time.Duration(clk.StepNanos), state,
		clk.TotalCycles, clk.Iterations, time.Duration(clk.ElapsedNano))

	if s.Bus != nil {
		fmt.Fprintf(w, "bus   v%s  %s\n", s.Bus.Version, s.Bus.Name)
		for _, m := range s.Bus.Mappings {
			fmt.Fprintf(w, "      $%04X-$%04X %s\n", m.Start, m.End, m.Name)
		}
	}
	for _, m := range s.Memory {
		kind := "ram"
		if m.ReadOnly {
			kind = "rom"
		}
		fmt.Fprintf(w, "%-5s v%s  %s $%04X (%d bytes)\n", kind, m.Version, m.Name, m.Base, len(m.Data))
	}
}
