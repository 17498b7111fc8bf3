package clock

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"emu65/hw/hwerr"
	"emu65/hw/snapshot"
)

type fakeTime struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeTime) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeTime) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fakeTime) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.Advance(d)
	return nil
}

func newTestClock(cfg Config) (*Clock, *fakeTime) {
	ft := &fakeTime{now: time.Unix(1_000_000, 0)}
	cfg.Now = ft.Now
	cfg.Sleep = ft.Sleep
	return New(cfg), ft
}

type recorder struct {
	mu      sync.Mutex
	budgets []int64
}

func (r *recorder) record(cycles int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.budgets = append(r.budgets, cycles)
}

func (r *recorder) get() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.budgets...)
}

func TestBudget(t *testing.T) {
	c, ft := newTestClock(Config{FrequencyMHz: 1, Step: 10 * time.Millisecond})

	var rec recorder
	c.Subscribe(rec.record)
	c.Start()

	ft.Advance(10 * time.Millisecond)
	if got := c.Tick(); got != 10_000 {
		t.Errorf("Tick() = %d, want 10000", got)
	}
	if diff := cmp.Diff([]int64{0, 10_000}, rec.get()); diff != "" {
		t.Errorf("published budgets mismatch (-want +got):\n%s", diff)
	}
}

func TestFractionCarry(t *testing.T) {
	c, ft := newTestClock(Config{FrequencyMHz: 1})
	c.Start()

	var total int64
	for range 10 {
		ft.Advance(1500 * time.Nanosecond)
		total += c.Tick()
	}
	if total != 15 {
		t.Errorf("total budget = %d, want 15", total)
	}
	if st := c.Stats(); st.TotalCycles != 15 || st.Iterations != 10 {
		t.Errorf("stats: cycles=%d iterations=%d", st.TotalCycles, st.Iterations)
	}
}

func TestClamp(t *testing.T) {
	c, ft := newTestClock(Config{FrequencyMHz: 1, MaxCyclesPerStep: 5000})
	c.Start()

	ft.Advance(10 * time.Millisecond)
	if got := c.Tick(); got != 5000 {
		t.Errorf("Tick() = %d, want 5000", got)
	}
	ft.Advance(time.Millisecond)
	if got := c.Tick(); got != 1000 {
		t.Errorf("Tick() = %d, want 1000", got)
	}
	if st := c.Stats(); st.ClampCount != 1 {
		t.Errorf("clamp count = %d, want 1", st.ClampCount)
	}
}

func TestDefaultMaxCycles(t *testing.T) {
	c := New(Config{FrequencyMHz: 2, Step: 5 * time.Millisecond})
	if got := c.Config().MaxCyclesPerStep; got != 40_000 {
		t.Errorf("MaxCyclesPerStep = %d, want 40000", got)
	}
}

func TestPause(t *testing.T) {
	c, ft := newTestClock(Config{FrequencyMHz: 1})

	var rec recorder
	c.Subscribe(rec.record)

	c.Pause() // no-op while stopped
	if c.State() != Stopped {
		t.Fatalf("state = %s, want Stopped", c.State())
	}

	c.Start()
	ft.Advance(10 * time.Millisecond)
	c.Tick()

	c.Pause()
	if c.State() != Paused {
		t.Fatalf("state = %s, want Paused", c.State())
	}
	ft.Advance(50 * time.Millisecond)
	if got := c.Tick(); got != 0 {
		t.Errorf("Tick() while paused = %d, want 0", got)
	}

	c.Resume()
	ft.Advance(10 * time.Millisecond)
	if got := c.Tick(); got != 10_000 {
		t.Errorf("Tick() after resume = %d, want 10000", got)
	}

	if diff := cmp.Diff([]int64{0, 10_000, 10_000}, rec.get()); diff != "" {
		t.Errorf("published budgets mismatch (-want +got):\n%s", diff)
	}

	st := c.Stats()
	if st.Active != 20*time.Millisecond || st.Paused != 50*time.Millisecond {
		t.Errorf("active=%s paused=%s, want 20ms and 50ms", st.Active, st.Paused)
	}
	if math.Abs(st.ActualMHz-1) > 1e-9 {
		t.Errorf("actual frequency = %gMHz, want 1MHz", st.ActualMHz)
	}
	if st.AvgFrame != 10*time.Millisecond {
		t.Errorf("average frame = %s, want 10ms", st.AvgFrame)
	}
}

func TestSubscribe(t *testing.T) {
	c, ft := newTestClock(Config{FrequencyMHz: 1})
	c.Start()

	var rec1, rec2 recorder
	unsub := c.Subscribe(rec1.record)

	ft.Advance(time.Millisecond)
	c.Tick()
	unsub()
	unsub()

	// Late subscribers get the last budget.
	c.Subscribe(rec2.record)
	ft.Advance(2 * time.Millisecond)
	c.Tick()

	if diff := cmp.Diff([]int64{0, 1000}, rec1.get()); diff != "" {
		t.Errorf("first subscriber (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{1000, 2000}, rec2.get()); diff != "" {
		t.Errorf("second subscriber (-want +got):\n%s", diff)
	}
}

func TestStartKeepsRunningClock(t *testing.T) {
	c, ft := newTestClock(Config{FrequencyMHz: 1})
	c.Start()
	ft.Advance(time.Millisecond)
	c.Tick()

	c.Start()
	if st := c.Stats(); st.TotalCycles != 1000 {
		t.Errorf("second Start reset the clock: total=%d", st.TotalCycles)
	}

	c.Stop()
	if st := c.Stats(); st.State != Stopped || st.TotalCycles != 0 || st.Iterations != 0 {
		t.Errorf("Stop didn't reset the clock: %+v", st)
	}
}

func TestDriftConvergence(t *testing.T) {
	c, ft := newTestClock(Config{FrequencyMHz: 1, Step: 10 * time.Millisecond})

	// A clock saved while running too fast.
	err := c.Restore(snapshot.Clock{
		Version:           snapshot.ClockVersion,
		FrequencyMHz:      1,
		StepNanos:         int64(10 * time.Millisecond),
		Running:           true,
		DriftCompensation: 1.3,
		WaitNanos:         int64(10 * time.Millisecond),
	})
	if err != nil {
		t.Fatal(err)
	}

	for range DefaultDriftCheckEvery {
		ft.Advance(10 * time.Millisecond)
		c.Tick()
	}
	st := c.Stats()
	if math.Abs(st.Drift-0.3) > 1e-9 {
		t.Errorf("drift = %g, want 0.3", st.Drift)
	}
	if st.Compensation >= 1.3 {
		t.Errorf("compensation = %g, should have decreased", st.Compensation)
	}
	if st.Wait <= 10*time.Millisecond {
		t.Errorf("wait = %s, should have increased", st.Wait)
	}

	for range 1000 {
		ft.Advance(10 * time.Millisecond)
		c.Tick()
	}
	st = c.Stats()
	if math.Abs(st.Drift) > DefaultDriftThreshold {
		t.Errorf("drift = %g, want within %g", st.Drift, DefaultDriftThreshold)
	}
	if math.Abs(st.Compensation-1) > 0.01 {
		t.Errorf("compensation = %g, want close to 1", st.Compensation)
	}
	if math.Abs(st.ActualMHz-1) > DefaultDriftThreshold {
		t.Errorf("actual frequency = %gMHz", st.ActualMHz)
	}
}

func TestCompensationBounds(t *testing.T) {
	// Budgets are clamped so the clock can't keep up, compensation stays
	// within bounds.
	c, ft := newTestClock(Config{FrequencyMHz: 1, MaxCyclesPerStep: 100, MaxCompensation: 1.5})
	c.Start()
	for range 500 {
		ft.Advance(time.Millisecond)
		c.Tick()
	}
	st := c.Stats()
	if st.Compensation != 1.5 {
		t.Errorf("compensation = %g, want 1.5", st.Compensation)
	}
	if st.Wait != DefaultStep/4 {
		t.Errorf("wait = %s, want %s", st.Wait, DefaultStep/4)
	}
}

func TestRun(t *testing.T) {
	c, _ := newTestClock(Config{FrequencyMHz: 1, Step: 10 * time.Millisecond})

	var rec recorder
	c.Subscribe(func(cycles int64) {
		rec.record(cycles)
		if len(rec.get()) == 6 {
			c.Stop()
		}
	})

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	want := []int64{0, 10_000, 10_000, 10_000, 10_000, 10_000}
	if diff := cmp.Diff(want, rec.get()); diff != "" {
		t.Errorf("published budgets mismatch (-want +got):\n%s", diff)
	}
	if c.State() != Stopped {
		t.Errorf("state = %s, want Stopped", c.State())
	}
}

func TestRunCancel(t *testing.T) {
	c, _ := newTestClock(Config{FrequencyMHz: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c.Subscribe(func(cycles int64) {
		if cycles > 0 {
			cancel()
		}
	})
	if err := c.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want context.Canceled", err)
	}
	if c.State() != Stopped {
		t.Errorf("state = %s, want Stopped", c.State())
	}
}

func TestRunPaused(t *testing.T) {
	c, ft := newTestClock(Config{FrequencyMHz: 1})

	var sleeps []time.Duration
	c.cfg.Sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		switch len(sleeps) {
		case 1:
			c.Pause()
		case 3:
			c.Stop()
		}
		return ft.Sleep(ctx, d)
	}
	if err := c.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := []time.Duration{DefaultStep, pausedWait, pausedWait}
	if diff := cmp.Diff(want, sleeps); diff != "" {
		t.Errorf("sleeps mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	cfg := Config{FrequencyMHz: 1.5, SampleWindow: 4, DriftCheckEvery: 3}
	c, ft := newTestClock(cfg)
	c.Start()
	for i := range 7 {
		ft.Advance(time.Duration(i+1) * 333 * time.Microsecond)
		c.Tick()
	}

	s := c.Snapshot()
	if diff := cmp.Diff([]int64{1332000, 1665000, 1998000, 2331000}, s.Samples); diff != "" {
		t.Fatalf("samples mismatch (-want +got):\n%s", diff)
	}

	c2, ft2 := newTestClock(cfg)
	if err := c2.Restore(s); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(s, c2.Snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if got, want := c2.Stats().Drift, c.Stats().Drift; got != want {
		t.Fatalf("restored drift = %g, want %g", got, want)
	}

	// Both clocks continue identically.
	for range 5 {
		ft.Advance(777 * time.Microsecond)
		ft2.Advance(777 * time.Microsecond)
		if b1, b2 := c.Tick(), c2.Tick(); b1 != b2 {
			t.Fatalf("budgets differ: %d != %d", b1, b2)
		}
	}
}

func TestRestorePaused(t *testing.T) {
	c, ft := newTestClock(Config{})
	c.Start()
	ft.Advance(time.Millisecond)
	c.Tick()
	c.Pause()

	c2, _ := newTestClock(Config{})
	if err := c2.Restore(c.Snapshot()); err != nil {
		t.Fatal(err)
	}
	if c2.State() != Paused {
		t.Errorf("state = %s, want Paused", c2.State())
	}
}

func TestRestoreDrift(t *testing.T) {
	c, _ := newTestClock(Config{})
	s := c.Snapshot()
	s.Drift = 0.25
	if err := c.Restore(s); err != nil {
		t.Fatal(err)
	}
	if got := c.Stats().Drift; got != 0.25 {
		t.Errorf("drift = %g, want 0.25", got)
	}
	if got := c.Snapshot().Drift; got != 0.25 {
		t.Errorf("snapshot drift = %g, want 0.25", got)
	}
}

func TestRestoreV1(t *testing.T) {
	c, _ := newTestClock(Config{})
	err := c.Restore(snapshot.Clock{
		Version:      "1",
		FrequencyMHz: 2,
		StepNanos:    int64(20 * time.Millisecond),
		TotalCycles:  1234,
	})
	if err != nil {
		t.Fatal(err)
	}

	s := c.Snapshot()
	if len(s.Samples) != 0 || s.DriftCompensation != 1 || s.WaitNanos != int64(20*time.Millisecond) {
		t.Errorf("unexpected migrated state: %+v", s)
	}
	if s.FrequencyMHz != 2 || s.TotalCycles != 1234 {
		t.Errorf("unexpected migrated state: %+v", s)
	}
}

func TestRestoreInvalid(t *testing.T) {
	c, ft := newTestClock(Config{})
	c.Start()
	ft.Advance(time.Millisecond)
	c.Tick()
	before := c.Snapshot()

	bad := before
	bad.DriftCompensation = 0
	if err := c.Restore(bad); !hwerr.Is(err, hwerr.KindState) {
		t.Errorf("Restore() error = %v, want state error", err)
	}
	bad = before
	bad.Version = "99"
	if err := c.Restore(bad); !hwerr.Is(err, hwerr.KindMigration) {
		t.Errorf("Restore() error = %v, want migration error", err)
	}

	if diff := cmp.Diff(before, c.Snapshot()); diff != "" {
		t.Errorf("failed restores modified the clock (-want +got):\n%s", diff)
	}
}

func TestInspect(t *testing.T) {
	c, ft := newTestClock(Config{FrequencyMHz: 1})
	c.Start()
	ft.Advance(10 * time.Millisecond)
	c.Tick()

	r := c.Inspect()
	fields := map[string]string{
		"state":  "Running",
		"budget": "10000",
		"cycles": "10000",
		"actual": "1.0000MHz",
		"wait":   "10ms",
	}
	for name, want := range fields {
		if got, ok := r.Field(name); !ok || got != want {
			t.Errorf("field %s = %q (found: %t), want %q", name, got, ok, want)
		}
	}
}
