// Package clock implements the real-time scheduler that drives the emulation.
//
// On each iteration the clock converts the wall time elapsed since the
// previous one into a number of CPU cycles, the budget, and publishes it to
// its subscribers. A feedback loop, the drift compensation, keeps the
// measured frequency close to the target one.
package clock

import (
	"cmp"
	"context"
	"math"
	"sync"
	"time"

	"emu65/emu/log"
)

//go:generate go tool stringer -type=State

// State of the clock: stopped → running → (paused ⇄ running) → stopped.
type State uint8

const (
	Stopped State = iota
	Running
	Paused
)

const (
	DefaultFrequencyMHz    = 1.0
	DefaultStep            = 10 * time.Millisecond
	DefaultDriftCheckEvery = 10
	DefaultDriftThreshold  = 0.01
	DefaultSampleWindow    = 64
	DefaultMinCompensation = 0.5
	DefaultMaxCompensation = 2.0

	// Wait between 2 iterations while paused.
	pausedWait = 100 * time.Millisecond
)

type Config struct {
	FrequencyMHz float64       // target frequency
	Step         time.Duration // wait between 2 iterations

	// Maximum budget of a single iteration. Defaults to 4 steps worth of
	// cycles.
	MaxCyclesPerStep int64

	DriftCheckEvery int     // iterations between 2 drift checks
	DriftThreshold  float64 // relative drift triggering a correction

	// Number of frame durations kept for statistics.
	SampleWindow int

	MinCompensation float64
	MaxCompensation float64

	// Time source, tests replace them.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

func (cfg *Config) setDefaults() {
	if cfg.FrequencyMHz <= 0 {
		cfg.FrequencyMHz = DefaultFrequencyMHz
	}
	if cfg.Step <= 0 {
		cfg.Step = DefaultStep
	}
	if cfg.MaxCyclesPerStep <= 0 {
		cfg.MaxCyclesPerStep = int64(4 * float64(cfg.Step.Nanoseconds()) * cfg.FrequencyMHz / 1e3)
	}
	if cfg.DriftCheckEvery <= 0 {
		cfg.DriftCheckEvery = DefaultDriftCheckEvery
	}
	if cfg.DriftThreshold <= 0 {
		cfg.DriftThreshold = DefaultDriftThreshold
	}
	if cfg.SampleWindow <= 0 {
		cfg.SampleWindow = DefaultSampleWindow
	}
	if cfg.MinCompensation <= 0 {
		cfg.MinCompensation = DefaultMinCompensation
	}
	if cfg.MaxCompensation < cfg.MinCompensation {
		cfg.MaxCompensation = max(DefaultMaxCompensation, cfg.MinCompensation)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleep
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type subscriber struct {
	id int
	fn func(cycles int64)
}

// A Clock is safe for concurrent use. Subscribers are called synchronously
// from the goroutine calling Tick (or Run), which must be unique.
type Clock struct {
	cfg Config

	mu    sync.Mutex
	state State

	last     time.Time // previous iteration
	pausedAt time.Time
	active   time.Duration // running time, pauses excluded
	paused   time.Duration // accumulated paused time

	total      int64 // cycles published since start
	iterations int64
	clamps     int64
	budget     int64   // last published budget
	fraction   float64 // cycle fraction carried to the next iteration

	samples []time.Duration // ring of recent frame durations
	spos    int

	comp  float64 // drift compensation
	drift float64 // last measured drift
	wait  time.Duration

	subs   []subscriber
	nextID int
}

// New creates a stopped clock. Zero values in cfg are replaced by defaults.
func New(cfg Config) *Clock {
	cfg.setDefaults()
	c := &Clock{cfg: cfg}
	c.reset()
	return c
}

func (c *Clock) Config() Config { return c.cfg }

// reset clears all accumulators. c.mu must be held.
func (c *Clock) reset() {
	c.active, c.paused = 0, 0
	c.total, c.iterations, c.clamps, c.budget = 0, 0, 0, 0
	c.fraction = 0
	c.samples = c.samples[:0]
	c.spos = 0
	c.comp = 1
	c.drift = 0
	c.wait = c.cfg.Step
}

// Subscribe registers fn to be called with each published budget. fn is
// called immediately with the last published budget (0 before the first
// iteration). The returned function unsubscribes fn.
func (c *Clock) Subscribe(fn func(cycles int64)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	budget := c.budget
	c.mu.Unlock()

	fn(budget)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

func (c *Clock) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start resets the accumulators and puts a stopped clock into the running
// state. A clock restored in the running or paused state keeps its
// accumulators.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Stopped {
		return
	}
	c.reset()
	c.state = Running
	c.last = c.cfg.Now()

	log.ModClock.InfoZ("clock started").
		Float("MHz", c.cfg.FrequencyMHz).
		Duration("step", c.cfg.Step).
		End()
}

// Run starts the clock and runs its loop until Stop is called or ctx is
// done. Stop is observed at the next iteration boundary.
func (c *Clock) Run(ctx context.Context) error {
	c.Start()
	for {
		c.mu.Lock()
		state, wait := c.state, c.wait
		c.mu.Unlock()

		switch state {
		case Stopped:
			return nil
		case Paused:
			wait = pausedWait
		}
		if err := c.cfg.Sleep(ctx, wait); err != nil {
			c.Stop()
			return err
		}
		c.Tick()
	}
}

// Tick performs one iteration: it computes the budget owed for the time
// elapsed since the previous iteration and publishes it. A clock that is
// not running publishes nothing and returns 0.
func (c *Clock) Tick() int64 {
	c.mu.Lock()
	if c.state != Running {
		c.mu.Unlock()
		return 0
	}

	now := c.cfg.Now()
	delta := max(now.Sub(c.last), 0)
	c.last = now
	c.active += delta
	c.iterations++
	c.addSample(delta)

	exact := float64(delta.Nanoseconds())*c.cfg.FrequencyMHz/1e3*c.comp + c.fraction
	cycles := int64(exact)
	c.fraction = exact - float64(cycles)
	if cycles > c.cfg.MaxCyclesPerStep {
		cycles = c.cfg.MaxCyclesPerStep
		c.fraction = 0
		c.clamps++
		log.ModClock.DebugZ("budget clamped").
			Duration("delta", delta).
			Int64("clamps", c.clamps).
			End()
	}
	c.total += cycles
	c.budget = cycles

	if c.iterations%int64(c.cfg.DriftCheckEvery) == 0 {
		c.correctDrift()
	}

	subs := make([]func(int64), len(c.subs))
	for i, s := range c.subs {
		subs[i] = s.fn
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(cycles)
	}
	return cycles
}

func (c *Clock) addSample(d time.Duration) {
	if len(c.samples) < c.cfg.SampleWindow {
		c.samples = append(c.samples, d)
		return
	}
	c.samples[c.spos] = d
	c.spos = (c.spos + 1) % len(c.samples)
}

// correctDrift compares the measured frequency, over the active time, with
// the target one. Past the threshold, the compensation and the wait time are
// nudged toward the target, otherwise they relax toward their neutral value.
// c.mu must be held.
func (c *Clock) correctDrift() {
	active := c.active.Seconds()
	if active <= 0 {
		return
	}
	target := c.cfg.FrequencyMHz * 1e6
	actual := float64(c.total) / active
	c.drift = (actual - target) / target

	if math.Abs(c.drift) <= c.cfg.DriftThreshold {
		c.comp += (1 - c.comp) / 10
		c.wait += (c.cfg.Step - c.wait) / 10
		return
	}

	c.comp = clamp(c.comp*(1-c.drift/2), c.cfg.MinCompensation, c.cfg.MaxCompensation)
	wait := time.Duration(float64(c.wait) * (1 + c.drift))
	c.wait = clamp(wait, c.cfg.Step/4, c.cfg.Step*2)

	log.ModClock.DebugZ("drift correction").
		Float("drift", c.drift).
		Float("compensation", c.comp).
		Duration("wait", c.wait).
		End()
}

func clamp[T cmp.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

// Pause freezes the time accounting of a running clock.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Running {
		return
	}
	c.state = Paused
	c.pausedAt = c.cfg.Now()
	log.ModClock.InfoZ("clock paused").End()
}

// Resume restarts a paused clock. The paused duration is excluded from the
// active time.
func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Paused {
		return
	}
	now := c.cfg.Now()
	c.paused += max(now.Sub(c.pausedAt), 0)
	c.last = now
	c.state = Running
	log.ModClock.InfoZ("clock resumed").Duration("paused", c.paused).End()
}

// Stop stops the clock and resets its accumulators.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Stopped {
		return
	}
	log.ModClock.InfoZ("clock stopped").
		Int64("iterations", c.iterations).
		Int64("cycles", c.total).
		End()
	c.state = Stopped
	c.reset()
}

type Stats struct {
	State State

	Iterations  int64
	TotalCycles int64
	ClampCount  int64
	Budget      int64 // last published budget

	Active time.Duration // running time
	Paused time.Duration // accumulated paused time

	ActualMHz    float64 // measured over the active time
	Drift        float64 // relative drift at the last check
	Compensation float64
	Wait         time.Duration
	AvgFrame     time.Duration // average duration of recent iterations
}

func (c *Clock) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Stats{
		State:        c.state,
		Iterations:   c.iterations,
		TotalCycles:  c.total,
		ClampCount:   c.clamps,
		Budget:       c.budget,
		Active:       c.active,
		Paused:       c.paused,
		Drift:        c.drift,
		Compensation: c.comp,
		Wait:         c.wait,
	}
	if secs := c.active.Seconds(); secs > 0 {
		st.ActualMHz = float64(c.total) / secs / 1e6
	}
	if len(c.samples) > 0 {
		var sum time.Duration
		for _, d := range c.samples {
			sum += d
		}
		st.AvgFrame = sum / time.Duration(len(c.samples))
	}
	return st
}
