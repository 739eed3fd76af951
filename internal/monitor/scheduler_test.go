package monitor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingCycler struct{ n atomic.Int32 }

func (c *countingCycler) RunCycle(context.Context) CycleSummary {
	c.n.Add(1)
	return CycleSummary{}
}

func TestScheduler_RunsImmediatelyAndOnTick(t *testing.T) {
	c := &countingCycler{}
	s := NewScheduler(c, 20*time.Millisecond, nil)
	s.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for c.n.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !s.running() {
		t.Error("running() = false while started")
	}
	s.Stop()

	if got := c.n.Load(); got < 3 {
		t.Errorf("cycles = %d, want >= 3", got)
	}
	if s.running() {
		t.Error("running() = true after Stop")
	}

	after := c.n.Load()
	time.Sleep(50 * time.Millisecond)
	if c.n.Load() != after {
		t.Error("cycles continued after Stop")
	}
}

func TestScheduler_FirstCycleWithoutWaiting(t *testing.T) {
	c := &countingCycler{}
	s := NewScheduler(c, time.Hour, nil)
	s.Start(context.Background())
	defer s.Stop()

	deadline := time.Now().Add(time.Second)
	for c.n.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if c.n.Load() != 1 {
		t.Errorf("cycles = %d, want 1", c.n.Load())
	}
}

func TestScheduler_StopBeforeStart(t *testing.T) {
	s := NewScheduler(&countingCycler{}, time.Second, nil)
	s.Stop()
	if s.running() {
		t.Error("running() = true for never-started scheduler")
	}
}

type recordingPurger struct {
	cutoff time.Time
	calls  int
}

func (p *recordingPurger) DeleteAcknowledgedBefore(_ context.Context, before time.Time) (int64, error) {
	p.calls++
	p.cutoff = before
	return 2, nil
}

func TestMaintenance_RunOnce(t *testing.T) {
	p := &recordingPurger{}
	cfg := DefaultConfig()
	cfg.AlertRetention = 24 * time.Hour
	m := NewMaintenance(p, cfg, nil)

	m.RunOnce(context.Background())

	if p.calls != 1 {
		t.Fatalf("calls = %d, want 1", p.calls)
	}
	want := time.Now().Add(-24 * time.Hour)
	if d := want.Sub(p.cutoff); d < 0 || d > time.Minute {
		t.Errorf("cutoff = %v, want about %v", p.cutoff, want)
	}
}

func TestMaintenance_DisabledWithZeroRetention(t *testing.T) {
	p := &recordingPurger{}
	cfg := DefaultConfig()
	cfg.AlertRetention = 0
	cfg.MaintenanceInterval = time.Millisecond
	m := NewMaintenance(p, cfg, nil)

	m.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	m.Stop()

	if p.calls != 0 {
		t.Errorf("calls = %d, want 0", p.calls)
	}
}
