package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"emu65/emu/log"
)

type mode byte

const (
	runMode     mode = iota // Run a machine
	disasmMode              // Disassemble an image
	stateMode               // Show a save state
	versionMode             // Show emu65 version
)

type (
	CLI struct {
		Run     Run     `cmd:"" help:"Run a machine." default:"withargs"`
		Disasm  Disasm  `cmd:"" help:"Disassemble a memory image."`
		State   State   `cmd:"" help:"Show the content of a save state."`
		Version Version `cmd:"" help:"Show emu65 version."`

		Log logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`

		mode mode
	}

	Run struct {
		ConfigPath string `arg:"" name:"/path/to/config" help:"${config_help}" optional:"" type:"path"`

		Trace      *outfile      `name:"trace" help:"Write CPU trace log." placeholder:"FILE|stdout|stderr"`
		Cycles     int64         `name:"cycles" help:"Run that many cycles as fast as possible, without the clock."`
		Duration   time.Duration `name:"duration" help:"Stop the machine after that duration."`
		LoadState  string        `name:"load-state" help:"Load the machine state from file before running." type:"existingfile"`
		SaveState  string        `name:"save-state" help:"Save the machine state to file when it stops." type:"path"`
		Break      addrList      `name:"break" help:"Stop before executing the instruction at ADDR (repeatable)." placeholder:"ADDR"`
		HookScript string        `name:"hook-script" help:"${hookscript_help}" type:"existingfile"`
		Inspect    bool          `name:"inspect" help:"Print the components reports when the machine stops."`
		Statsview  bool          `name:"statsview" help:"Serve runtime statistics at ${statsview_addr}."`
		CPUProfile string        `name:"cpuprofile" help:"Write CPU profile to file." type:"path"`
		RPCPort    int           `name:"rpc-port" help:"Serve the machine controls over RPC on that local port."`
	}

	Disasm struct {
		ImagePath string `arg:"" name:"/path/to/image" type:"existingfile"`
		Count     int    `name:"count" short:"n" help:"Number of instructions to disassemble." default:"32"`
		Start     *addr  `name:"start" help:"Start address. (default: load address)" placeholder:"ADDR"`
	}

	State struct {
		StatePath string `arg:"" name:"/path/to/state" type:"existingfile"`
		Dot       bool   `name:"dot" help:"Output a Graphviz representation of the decoded state."`
	}

	Version struct{}
)

var vars = kong.Vars{
	"config_help":     "Machine configuration. (default: emu65.toml in the user config directory)",
	"hookscript_help": "Lua script defining exec(pc), called before each instruction.",
	"log_help":        "Enable logging for specified modules.",
	"statsview_addr":  statsviewAddr,
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("emu65"),
		kong.Description("6502 machine emulator."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	switch {
	case strings.HasPrefix(ctx.Command(), "disasm"):
		cfg.mode = disasmMode
	case strings.HasPrefix(ctx.Command(), "state"):
		cfg.mode = stateMode
	case ctx.Command() == "version":
		cfg.mode = versionMode
	default:
		cfg.mode = runMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if strings.HasPrefix(ctx.Command(), "run") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.

Addresses:
  ADDR accepts hexadecimal values, written $C000, 0xC000 or C000.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			lm |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if lm != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		lm = logModMask(log.ModuleMaskAll)
	}

	log.EnableDebugModules(log.ModuleMask(lm))
	return nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

// addr is a 16-bit address given in hexadecimal.
type addr uint16

func parseAddr(s string) (uint16, error) {
	hex := strings.TrimPrefix(s, "$")
	hex = strings.TrimPrefix(strings.TrimPrefix(hex, "0x"), "0X")
	v, err := strconv.ParseUint(hex, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint16(v), nil
}

// Decode implements kong.MapperValue interface.
func (a *addr) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	v, err := parseAddr(fmt.Sprint(tok.Value))
	if err != nil {
		return err
	}
	*a = addr(v)
	return nil
}

// addrList accumulates the addresses of a repeated flag. Each occurrence may
// also hold a comma-separated list.
type addrList []uint16

// Decode implements kong.MapperValue interface.
func (l *addrList) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	for _, s := range strings.Split(fmt.Sprint(tok.Value), ",") {
		v, err := parseAddr(s)
		if err != nil {
			return err
		}
		*l = append(*l, v)
	}
	return nil
}

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
