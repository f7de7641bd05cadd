package light

import (
	"time"
)

// Rainbow advances a State's hue by a time-proportional increment on each scheduling tick.
//
// The rainbow speed setting (0..100, dimensionless) maps linearly onto a full-circle cycle duration between MaxCycle
// (at 0, the slowest) and MinCycle (at 100, the fastest). The per-tick increment is derived from the cycle duration
// and StepDuration, so changing the tick interval changes smoothness but not the perceived rotation speed. The stepper
// carries no backlog: a tick that fires late advances the hue by the same single increment as one that fires on time.
type Rainbow struct {
	// StepDuration is the scheduling tick interval.
	StepDuration time.Duration

	// MaxCycle is the duration of one full hue rotation at speed 0.
	MaxCycle time.Duration
	// MinCycle is the duration of one full hue rotation at speed 100.
	MinCycle time.Duration
}

// CycleDuration maps the provided speed setting onto the duration of one full 360 degree hue rotation.
func (r Rainbow) CycleDuration(speed float64) time.Duration {
	speed = clamp(speed, 0, 100)

	return r.MaxCycle - time.Duration(float64(r.MaxCycle-r.MinCycle)*speed/100)
}

// StepSize returns the hue increment in degrees for a single tick at the provided speed setting.
func (r Rainbow) StepSize(speed float64) float64 {
	cycle := r.CycleDuration(speed)
	if cycle <= 0 {
		return 0
	}

	return 360 * r.StepDuration.Seconds() / cycle.Seconds()
}

// Step advances the hue of the provided State by one tick's worth of rotation at the State's configured rainbow speed.
// Callers are responsible for gating: Step is only meaningful while the light is on and in ModeRainbow.
func (r Rainbow) Step(s *State) {
	s.Color.Hue = wrapHue(s.Color.Hue + r.StepSize(s.RainbowSpeed))
}
