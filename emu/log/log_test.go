package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

type pcContext uint16

func (pc pcContext) AddLogContext(z *EntryZ) { z.Hex16("pc", uint16(pc)) }

func TestWarnf(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	AddContext(pcContext(0xC000))
	defer ResetContexts()

	ModEmu.Warnf("fallback to %gMHz", 1.0)

	out := buf.String()
	for _, want := range []string{"level=warning", "fallback to 1MHz", "_mod=emu", "pc=c000"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q doesn't contain %q", out, want)
		}
	}
}
