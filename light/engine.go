package light

import (
	"log/slog"
	"math"
	"time"

	"github.com/nlowe/moodlight/hass"
	"github.com/nlowe/moodlight/log"
)

// Renderer pushes one fully-resolved frame to the fixture driver. Implementations perform a single synchronous write
// and propagate any write error unchanged; they never retry.
type Renderer interface {
	Render(c Color, brightness uint8, power hass.PowerState) error
}

// Engine turns logical State changes into rendered frames. Apply renders the current state once, or drives a
// multi-frame brightness ramp when the state just flipped power. The ramp blocks the caller for its full duration;
// the event loop treats transitions as atomic.
type Engine struct {
	renderer Renderer

	stepDuration       time.Duration
	transitionDuration time.Duration

	sleep func(time.Duration)
	log   *slog.Logger
}

// NewEngine constructs an Engine that renders through r, pausing step between ramp frames and targeting transition as
// the total ramp length when power flips.
func NewEngine(r Renderer, step, transition time.Duration) *Engine {
	return &Engine{
		renderer: r,

		stepDuration:       step,
		transitionDuration: transition,

		sleep: time.Sleep,
		log:   log.ForComponent("light.engine"),
	}
}

// Apply renders the provided State. If the State is mid power-flip (State.Transitioning), Apply consumes the flag and
// ramps brightness between zero and the configured level over the transition duration, rendering each intermediate
// frame with a pause of one step duration in between. Otherwise the state is rendered once as-is.
//
// A renderer error aborts any ramp immediately and is returned; the fixture is left at whatever intensity was last
// successfully rendered.
func (e *Engine) Apply(s *State) error {
	if !s.Transitioning {
		return e.renderer.Render(s.Color, s.Brightness, s.Power)
	}

	s.Transitioning = false
	return e.transition(s)
}

func (e *Engine) transition(s *State) error {
	frames := e.transitionDuration.Seconds() / e.stepDuration.Seconds()
	if frames < 1 {
		frames = 1
	}

	top := float64(s.Brightness)
	step := top / frames
	if step <= 0 {
		// Nothing to ramp through when the configured brightness is zero.
		return e.renderer.Render(s.Color, s.Brightness, s.Power)
	}

	e.log.With(slog.Any("state", *s), slog.Float64("frames", frames)).Debug("Ramping brightness")

	level, dir := top, -step
	if s.Power.On() {
		level, dir = 0, step
	}

	for {
		level += dir
		if level <= 0 || level >= top {
			break
		}

		if err := e.renderer.Render(s.Color, uint8(math.Round(level)), hass.PowerStateOn); err != nil {
			return err
		}

		e.sleep(e.stepDuration)
	}

	// Land exactly on the target rather than within a step of it.
	return e.renderer.Render(s.Color, s.Brightness, s.Power)
}
