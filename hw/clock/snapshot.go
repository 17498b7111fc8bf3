package clock

import (
	"time"

	"emu65/emu/log"
	"emu65/hw/snapshot"
)

func (c *Clock) Snapshot() snapshot.Clock {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := snapshot.Clock{
		Version:           snapshot.ClockVersion,
		FrequencyMHz:      c.cfg.FrequencyMHz,
		StepNanos:         int64(c.cfg.Step),
		Running:           c.state != Stopped,
		Paused:            c.state == Paused,
		ElapsedNano:       int64(c.active),
		PausedNano:        int64(c.paused),
		TotalCycles:       c.total,
		Iterations:        c.iterations,
		ClampCount:        c.clamps,
		Budget:            c.budget,
		Fraction:          c.fraction,
		Samples:           make([]int64, 0, len(c.samples)),
		DriftCompensation: c.comp,
		WaitNanos:         int64(c.wait),
		Drift:             c.drift,
	}
	// Oldest first.
	for i := range c.samples {
		d := c.samples[(c.spos+i)%len(c.samples)]
		s.Samples = append(s.Samples, int64(d))
	}
	return s
}

// Restore migrates and validates s before applying it. A clock saved while
// running (or paused) is restored in that state and its time accounting
// continues from now. On error, the clock is left untouched.
func (c *Clock) Restore(s snapshot.Clock) error {
	s, err := snapshot.MigrateClock(s)
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cfg.FrequencyMHz = s.FrequencyMHz
	c.cfg.Step = time.Duration(s.StepNanos)

	c.active = time.Duration(s.ElapsedNano)
	c.paused = time.Duration(s.PausedNano)
	c.total = s.TotalCycles
	c.iterations = s.Iterations
	c.clamps = s.ClampCount
	c.budget = s.Budget
	c.fraction = s.Fraction
	c.comp = s.DriftCompensation
	c.drift = s.Drift
	c.wait = time.Duration(s.WaitNanos)

	samples := s.Samples
	if len(samples) > c.cfg.SampleWindow {
		samples = samples[len(samples)-c.cfg.SampleWindow:]
	}
	c.samples = c.samples[:0]
	for _, d := range samples {
		c.samples = append(c.samples, time.Duration(d))
	}
	c.spos = 0

	now := c.cfg.Now()
	switch {
	case s.Paused:
		c.state = Paused
		c.pausedAt = now
	case s.Running:
		c.state = Running
	default:
		c.state = Stopped
	}
	c.last = now

	log.ModState.DebugZ("clock state restored").
		Stringer("state", c.state).
		Int64("cycles", c.total).
		Float("compensation", c.comp).
		End()
	return nil
}
