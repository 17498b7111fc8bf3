// Package inspect defines the read-only reports that the machine components
// expose to debuggers and user interfaces.
package inspect

import (
	"fmt"
	"io"
	"strings"
)

// A Field is a named, already formatted, value.
type Field struct {
	Name  string
	Value string
}

// Report is a point in time view of a component.
type Report struct {
	ID   string // unique id within a machine
	Type string // cpu, bus, clock, ram, rom...
	Name string // human readable name

	Registers []Field // register and flag values, formatted as hex
	Stats     []Field // cache and performance statistics

	Stack  []string // cpu only: stack dump, top first
	Disasm []string // cpu only: next instructions
}

// An Inspector provides reports about itself.
type Inspector interface {
	Inspect() Report
}

// Hex8 formats v the way reports show 8-bit values.
func Hex8(v uint8) string { return fmt.Sprintf("$%02X", v) }

// Hex16 formats v the way reports show 16-bit values.
func Hex16(v uint16) string { return fmt.Sprintf("$%04X", v) }

// Field returns the value of the register or stat with the given name.
func (r Report) Field(name string) (string, bool) {
	for _, f := range r.Registers {
		if f.Name == name {
			return f.Value, true
		}
	}
	for _, f := range r.Stats {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// WriteTo writes a human readable version of the report to w.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s (%s)\n", r.ID, r.Name, r.Type)
	writeFields(&sb, "registers", r.Registers)
	writeFields(&sb, "stats", r.Stats)
	if len(r.Stack) > 0 {
		fmt.Fprintf(&sb, "  stack: %s\n", strings.Join(r.Stack, " "))
	}
	for _, line := range r.Disasm {
		fmt.Fprintf(&sb, "  %s\n", line)
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

func writeFields(sb *strings.Builder, title string, fields []Field) {
	if len(fields) == 0 {
		return
	}
	fmt.Fprintf(sb, "  %s:", title)
	for _, f := range fields {
		fmt.Fprintf(sb, " %s=%s", f.Name, f.Value)
	}
	sb.WriteByte('\n')
}
