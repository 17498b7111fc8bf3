package emu

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"

	"emu65/emu/log"
	"emu65/hw/clock"
	"emu65/hw/hwio"
)

// Config describes a machine: its clock, its CPU and the devices mapped on
// the bus.
type Config struct {
	Clock  ClockConfig    `toml:"clock"`
	CPU    CPUConfig      `toml:"cpu"`
	Bus    BusConfig      `toml:"bus"`
	Memory []MemoryConfig `toml:"memory"`

	TraceOut io.WriteCloser `toml:"-"`
	Output   io.Writer      `toml:"-"` // written to by "out" devices
}

type ClockConfig struct {
	FrequencyMHz     float64 `toml:"frequency_mhz"`
	StepMS           int     `toml:"step_ms"`
	MaxCyclesPerStep int64   `toml:"max_cycles_per_step"`
	DriftCheckEvery  int     `toml:"drift_check_every"`
	DriftThreshold   float64 `toml:"drift_threshold"`
	SampleWindow     int     `toml:"sample_window"`
}

func (ccfg ClockConfig) clockConfig() clock.Config {
	return clock.Config{
		FrequencyMHz:     ccfg.FrequencyMHz,
		Step:             time.Duration(ccfg.StepMS) * time.Millisecond,
		MaxCyclesPerStep: ccfg.MaxCyclesPerStep,
		DriftCheckEvery:  ccfg.DriftCheckEvery,
		DriftThreshold:   ccfg.DriftThreshold,
		SampleWindow:     ccfg.SampleWindow,
	}
}

type CPUConfig struct {
	CycleAccurate bool `toml:"cycle_accurate"`
	Profiling     bool `toml:"profiling"`
}

type BusConfig struct {
	// Number of cached addresses, 0 for the default, negative to disable.
	CacheSize int `toml:"cache_size"`
}

func (bcfg BusConfig) cacheSize() int {
	switch {
	case bcfg.CacheSize == 0:
		return hwio.DefaultCacheSize
	case bcfg.CacheSize < 0:
		return 0
	}
	return bcfg.CacheSize
}

// Kinds of memory.
const (
	KindRAM = "ram"
	KindROM = "rom"
	KindOut = "out" // write-only output port
)

type MemoryConfig struct {
	Name  string `toml:"name"`
	Kind  string `toml:"kind"`
	Start uint16 `toml:"start"`
	End   uint16 `toml:"end"`

	// Image flashed at power up, its first 2 bytes are the load address.
	Image string `toml:"image"`
}

// DefaultConfig describes a 1MHz machine with 4KB of RAM at $0000 and
// 256 bytes of ROM at $FF00.
func DefaultConfig() Config {
	return Config{
		Clock: ClockConfig{
			FrequencyMHz:    clock.DefaultFrequencyMHz,
			StepMS:          int(clock.DefaultStep / time.Millisecond),
			DriftCheckEvery: clock.DefaultDriftCheckEvery,
			DriftThreshold:  clock.DefaultDriftThreshold,
			SampleWindow:    clock.DefaultSampleWindow,
		},
		Bus: BusConfig{CacheSize: hwio.DefaultCacheSize},
		Memory: []MemoryConfig{
			{Name: "ram", Kind: KindRAM, Start: 0x0000, End: 0x0FFF},
			{Name: "rom", Kind: KindROM, Start: 0xFF00, End: 0xFFFF},
		},
	}
}

// Check replaces invalid values with defaults.
func (cfg *Config) Check() {
	def := DefaultConfig()
	if cfg.Clock.FrequencyMHz <= 0 {
		log.ModEmu.Warnf("Invalid clock frequency %gMHz, fallback to %gMHz", cfg.Clock.FrequencyMHz, def.Clock.FrequencyMHz)
		cfg.Clock.FrequencyMHz = def.Clock.FrequencyMHz
	}
	if cfg.Clock.StepMS <= 0 {
		log.ModEmu.Warnf("Invalid clock step %dms, fallback to %dms", cfg.Clock.StepMS, def.Clock.StepMS)
		cfg.Clock.StepMS = def.Clock.StepMS
	}
	if len(cfg.Memory) == 0 {
		log.ModEmu.Warnf("No memory configured, using default layout")
		cfg.Memory = def.Memory
	}
	for i := range cfg.Memory {
		if cfg.Memory[i].Kind == "" {
			cfg.Memory[i].Kind = KindRAM
		}
	}
}

var ConfigDir = sync.OnceValues(func() (string, error) {
	dir := configdir.LocalConfig("emu65")
	if err := configdir.MakePath(dir); err != nil {
		return "", err
	}
	return dir, nil
})

const cfgFilename = "config.toml"

// DefaultConfigPath is the path of the configuration file in the emu65
// config directory.
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, cfgFilename), nil
}

// LoadConfig loads the configuration at path. An empty path designates the
// configuration in the emu65 config directory, which defaults to
// DefaultConfig when it doesn't exist.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	cfg.Check()

	// Image paths are relative to the configuration file.
	for i, m := range cfg.Memory {
		if m.Image != "" && !filepath.IsAbs(m.Image) {
			cfg.Memory[i].Image = filepath.Join(filepath.Dir(path), m.Image)
		}
	}
	return cfg, nil
}

// SaveConfig writes cfg at path.
func SaveConfig(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, buf, 0644)
}
