package strata

import "time"

// FixedStep accumulates frame time and runs a simulation callback once per
// whole Step. At most MaxSteps run per Advance; time beyond that is dropped
// so a slow frame cannot snowball into an ever longer catch-up.
type FixedStep struct {
	Step     time.Duration
	MaxSteps int

	acc     time.Duration
	dropped time.Duration
}

// Advance adds elapsed and calls fn for each whole step. It returns the
// number of steps run.
func (f *FixedStep) Advance(elapsed time.Duration, fn func(dt time.Duration)) int {
	if f.Step <= 0 {
		return 0
	}
	f.acc += elapsed
	n := 0
	for f.acc >= f.Step {
		if f.MaxSteps > 0 && n == f.MaxSteps {
			f.dropped += f.acc
			f.acc = 0
			break
		}
		fn(f.Step)
		f.acc -= f.Step
		n++
	}
	return n
}

// Alpha returns the fraction of a step left in the accumulator, for
// interpolating between simulation states.
func (f *FixedStep) Alpha() float64 {
	if f.Step <= 0 {
		return 0
	}
	return float64(f.acc) / float64(f.Step)
}

// Dropped returns the total time discarded by the MaxSteps cap.
func (f *FixedStep) Dropped() time.Duration { return f.dropped }
