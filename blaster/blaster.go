// Package blaster renders resolved light frames to a pi-blaster style PWM driver. The driver accepts newline
// terminated lines of the form "<channel>=<value>" on its input pipe, where value is a duty cycle in [0.0, 1.0].
package blaster

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nlowe/moodlight/hass"
	"github.com/nlowe/moodlight/light"
	"github.com/nlowe/moodlight/log"
)

// Pins assigns PWM channel numbers to the red, green, and blue outputs of the fixture. It implements slog.LogValuer.
type Pins struct {
	R, G, B uint8
}

func (p Pins) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("r", uint64(p.R)),
		slog.Uint64("g", uint64(p.G)),
		slog.Uint64("b", uint64(p.B)),
	)
}

// Blaster writes frames to the driver's input pipe. It implements light.Renderer. The pipe is opened and closed once
// per frame; the driver reads no acknowledgement back, so a successful write is the only confirmation.
type Blaster struct {
	path string
	pins Pins

	log *slog.Logger
}

var _ light.Renderer = &Blaster{}

// New constructs a Blaster that drives the given pin assignments through the driver pipe at path.
func New(path string, pins Pins) *Blaster {
	return &Blaster{
		path: path,
		pins: pins,

		log: log.ForComponent("blaster").With(slog.String("path", path), slog.Any("pins", pins)),
	}
}

// Render resolves the provided colour view to channel intensities and writes a single update line to the driver. Write
// errors (including the driver pipe being unavailable) propagate unchanged.
func (b *Blaster) Render(c light.Color, brightness uint8, power hass.PowerState) error {
	r, g, bl := c.RGB(brightness, power)
	line := fmt.Sprintf("%d=%v %d=%v %d=%v\n", b.pins.R, r, b.pins.G, g, b.pins.B, bl)

	b.log.With(slog.String("frame", line[:len(line)-1])).Debug("Writing frame")

	f, err := os.OpenFile(b.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("blaster: open %s: %w", b.path, err)
	}

	if _, err = f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("blaster: write to %s: %w", b.path, err)
	}

	if err = f.Close(); err != nil {
		return fmt.Errorf("blaster: close %s: %w", b.path, err)
	}

	return nil
}
