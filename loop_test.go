package strata

import (
	"testing"
	"time"
)

func TestFixedStepAdvance(t *testing.T) {
	f := FixedStep{Step: 10 * time.Millisecond, MaxSteps: 3}
	var got []time.Duration
	n := f.Advance(25*time.Millisecond, func(dt time.Duration) { got = append(got, dt) })
	if n != 2 || len(got) != 2 || got[0] != 10*time.Millisecond {
		t.Errorf("Advance = %d, steps %v", n, got)
	}
	if a := f.Alpha(); a < 0.499 || a > 0.501 {
		t.Errorf("Alpha = %v, want 0.5", a)
	}
	// The remainder carries into the next frame.
	if n := f.Advance(5*time.Millisecond, func(time.Duration) {}); n != 1 {
		t.Errorf("carry Advance = %d, want 1", n)
	}
	if f.Alpha() != 0 {
		t.Errorf("Alpha = %v, want 0", f.Alpha())
	}
}

func TestFixedStepCap(t *testing.T) {
	f := FixedStep{Step: 10 * time.Millisecond, MaxSteps: 3}
	calls := 0
	n := f.Advance(105*time.Millisecond, func(time.Duration) { calls++ })
	if n != 3 || calls != 3 {
		t.Errorf("Advance = %d (calls %d), want 3", n, calls)
	}
	if f.Dropped() != 75*time.Millisecond {
		t.Errorf("Dropped = %v, want 75ms", f.Dropped())
	}
	if f.Alpha() != 0 {
		t.Errorf("Alpha after drop = %v, want 0", f.Alpha())
	}
}

func TestFixedStepUncapped(t *testing.T) {
	f := FixedStep{Step: 10 * time.Millisecond}
	if n := f.Advance(100*time.Millisecond, func(time.Duration) {}); n != 10 {
		t.Errorf("Advance = %d, want 10", n)
	}
}

func TestFixedStepZeroStep(t *testing.T) {
	var f FixedStep
	if n := f.Advance(time.Second, func(time.Duration) { t.Error("callback ran") }); n != 0 {
		t.Errorf("Advance = %d, want 0", n)
	}
	if f.Alpha() != 0 {
		t.Errorf("Alpha = %v", f.Alpha())
	}
}
