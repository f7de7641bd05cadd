package light

import (
	"log/slog"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/nlowe/moodlight/hass"
)

// Color is the operator-facing portion of the fixture colour: a hue in degrees [0,360) and a saturation percentage
// [0,100]. Brightness and power are tracked separately on State; a Color only resolves to channel intensities when
// paired with both (see Color.RGB). It implements slog.LogValuer.
type Color struct {
	Hue        float64 `json:"h"`
	Saturation float64 `json:"s"`
}

func (c Color) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("hue", c.Hue),
		slog.Float64("sat", c.Saturation),
	)
}

// RGB resolves this Color against the provided brightness and power into red, green, and blue channel intensities in
// [0.0, 1.0] using a standard HSV conversion. A light that is off is always fully dark, regardless of colour or
// brightness.
func (c Color) RGB(brightness uint8, power hass.PowerState) (r, g, b float64) {
	if !power.On() {
		return 0, 0, 0
	}

	v := colorful.Hsv(wrapHue(c.Hue), c.Saturation/100, float64(brightness)/255)
	return v.R, v.G, v.B
}

// wrapHue maps any hue angle onto [0,360).
func wrapHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}

	return h
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
