package light

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nlowe/moodlight/hass"
)

// Mode governs whether the fixture colour is operator-controlled (ModeStatic) or driven by the rainbow stepper
// (ModeRainbow).
type Mode string

const (
	ModeStatic  Mode = "static"
	ModeRainbow Mode = "rainbow"
)

// State is the canonical fixture state. There is exactly one live State per process, owned by the event loop and
// passed by pointer into each component call. It implements slog.LogValuer and round-trips through JSON in the wire
// format shared with Home Assistant and the persisted state file.
type State struct {
	Color        Color
	Brightness   uint8
	RainbowSpeed float64
	Mode         Mode
	Power        hass.PowerState

	// Transitioning is transient and never serialized. Edit sets it when a control message flips power; Engine.Apply
	// consumes it to select the brightness ramp over an immediate render.
	Transitioning bool
}

// DefaultState is the state used when no persisted or retained snapshot is available: full-brightness red, static,
// off.
func DefaultState() State {
	return State{
		Color:        Color{Hue: 0, Saturation: 100},
		Brightness:   255,
		RainbowSpeed: 50,
		Mode:         ModeStatic,
		Power:        hass.PowerStateOff,
	}
}

func (s State) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("color", s.Color),
		slog.Uint64("brightness", uint64(s.Brightness)),
		slog.Float64("rainbow_speed", s.RainbowSpeed),
		slog.String("mode", string(s.Mode)),
		slog.String("power", string(s.Power)),
	)
}

// ControlMessage is a partial update to a State. Every field is optional; absent fields leave the corresponding State
// field unchanged.
type ControlMessage struct {
	Color        *Color           `json:"color,omitempty"`
	Brightness   *int             `json:"brightness,omitempty"`
	RainbowSpeed *float64         `json:"rainbow_speed,omitempty"`
	Power        *hass.PowerState `json:"state,omitempty"`
	Mode         *Mode            `json:"mode,omitempty"`
}

// Edit folds the provided ControlMessage into this State. The colour is only applied when the current mode is
// ModeStatic or the message itself switches to ModeStatic, so a running rainbow cycle is never clobbered by a stray
// colour command. Numeric fields are clamped rather than rejected. Edit never fails.
//
// Transitioning is set exactly when the message flips power; the next Engine.Apply consumes it.
func (s *State) Edit(msg ControlMessage) {
	settingStatic := msg.Mode != nil && *msg.Mode == ModeStatic

	if msg.Color != nil && (s.Mode == ModeStatic || settingStatic) {
		s.Color = Color{
			Hue:        wrapHue(msg.Color.Hue),
			Saturation: clamp(msg.Color.Saturation, 0, 100),
		}
	}

	if msg.Brightness != nil {
		s.Brightness = uint8(min(max(*msg.Brightness, 0), 255))
	}

	if msg.RainbowSpeed != nil {
		s.RainbowSpeed = clamp(*msg.RainbowSpeed, 0, 100)
	}

	s.Transitioning = msg.Power != nil && *msg.Power != s.Power

	if msg.Power != nil {
		s.Power = *msg.Power
	}

	if msg.Mode != nil {
		s.Mode = *msg.Mode
	}
}

// stateJSON is the wire form of State: the shape published to the retained state topic and written to the state file.
// ColorMode is a constant tag for the Home Assistant discovery consumer and is always hass.ColorModeHueSat.
type stateJSON struct {
	Color        Color           `json:"color"`
	Brightness   uint8           `json:"brightness"`
	RainbowSpeed float64         `json:"rainbow_speed"`
	Mode         Mode            `json:"mode"`
	Power        hass.PowerState `json:"state"`
	ColorMode    hass.ColorMode  `json:"color_mode"`
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		Color:        s.Color,
		Brightness:   s.Brightness,
		RainbowSpeed: s.RainbowSpeed,
		Mode:         s.Mode,
		Power:        s.Power,
		ColorMode:    hass.ColorModeHueSat,
	})
}

func (s *State) UnmarshalJSON(data []byte) error {
	var wire stateJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	if wire.ColorMode != hass.ColorModeHueSat {
		return fmt.Errorf("state: unsupported color mode %q", wire.ColorMode)
	}

	*s = State{
		Color:        wire.Color,
		Brightness:   wire.Brightness,
		RainbowSpeed: wire.RainbowSpeed,
		Mode:         wire.Mode,
		Power:        wire.Power,
	}

	return nil
}
