package main

import (
	"fmt"
	"os"
	"runtime/debug"
)

func main() {
	cfg := parseArgs(os.Args[1:])

	switch cfg.mode {
	case runMode:
		checkf(runMain(cfg.Run), "run failed")
	case disasmMode:
		checkf(disasmMain(cfg.Disasm, os.Stdout), "disassembly failed")
	case stateMode:
		checkf(stateMain(cfg.State, os.Stdout), "failed to show state")
	case versionMode:
		fmt.Println("emu65", version())
	}
}

func version() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" {
		return "(devel)"
	}
	return bi.Main.Version
}
