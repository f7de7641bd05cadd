package light

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlowe/moodlight/hass"
)

func ptr[T any](v T) *T {
	return &v
}

func TestEdit(t *testing.T) {
	t.Run("Empty Message Is Identity", func(t *testing.T) {
		sut := State{
			Color:        Color{Hue: 120, Saturation: 75},
			Brightness:   42,
			RainbowSpeed: 13,
			Mode:         ModeRainbow,
			Power:        hass.PowerStateOn,
		}

		want := sut
		sut.Edit(ControlMessage{})

		require.Equal(t, want, sut)
	})

	t.Run("Static Mode Accepts Color", func(t *testing.T) {
		sut := DefaultState()
		sut.Edit(ControlMessage{Color: &Color{Hue: 90, Saturation: 50}})

		require.Equal(t, Color{Hue: 90, Saturation: 50}, sut.Color)
	})

	t.Run("Rainbow Mode Protects Color", func(t *testing.T) {
		for name, msg := range map[string]ControlMessage{
			"no mode":      {Color: &Color{Hue: 90, Saturation: 50}},
			"rainbow mode": {Color: &Color{Hue: 90, Saturation: 50}, Mode: ptr(ModeRainbow)},
		} {
			t.Run(name, func(t *testing.T) {
				sut := State{
					Color: Color{Hue: 200, Saturation: 100},
					Mode:  ModeRainbow,
					Power: hass.PowerStateOn,
				}

				sut.Edit(msg)

				require.Equal(t, Color{Hue: 200, Saturation: 100}, sut.Color)
			})
		}
	})

	t.Run("Switching To Static Applies Color", func(t *testing.T) {
		sut := State{
			Color: Color{Hue: 200, Saturation: 100},
			Mode:  ModeRainbow,
		}

		sut.Edit(ControlMessage{Color: &Color{Hue: 90, Saturation: 50}, Mode: ptr(ModeStatic)})

		assert.Equal(t, ModeStatic, sut.Mode)
		assert.Equal(t, Color{Hue: 90, Saturation: 50}, sut.Color)
	})

	t.Run("Switching To Static Without Color Preserves Color", func(t *testing.T) {
		// The colour captured at the moment of the switch stays under manual control.
		sut := State{
			Color: Color{Hue: 200, Saturation: 100},
			Mode:  ModeRainbow,
		}

		sut.Edit(ControlMessage{Mode: ptr(ModeStatic)})

		assert.Equal(t, ModeStatic, sut.Mode)
		assert.Equal(t, Color{Hue: 200, Saturation: 100}, sut.Color)

		sut.Edit(ControlMessage{Color: &Color{Hue: 10, Saturation: 20}})
		assert.Equal(t, Color{Hue: 10, Saturation: 20}, sut.Color)
	})

	t.Run("Clamps", func(t *testing.T) {
		for _, tt := range []struct {
			name string
			msg  ControlMessage

			wantBrightness uint8
			wantSpeed      float64
			wantColor      Color
		}{
			{name: "brightness negative", msg: ControlMessage{Brightness: ptr(-5)}, wantBrightness: 0, wantSpeed: 50, wantColor: Color{Saturation: 100}},
			{name: "brightness too large", msg: ControlMessage{Brightness: ptr(300)}, wantBrightness: 255, wantSpeed: 50, wantColor: Color{Saturation: 100}},
			{name: "speed negative", msg: ControlMessage{RainbowSpeed: ptr(-1.0)}, wantBrightness: 255, wantSpeed: 0, wantColor: Color{Saturation: 100}},
			{name: "speed too large", msg: ControlMessage{RainbowSpeed: ptr(150.0)}, wantBrightness: 255, wantSpeed: 100, wantColor: Color{Saturation: 100}},
			{name: "saturation too large", msg: ControlMessage{Color: &Color{Hue: 10, Saturation: 150}}, wantBrightness: 255, wantSpeed: 50, wantColor: Color{Hue: 10, Saturation: 100}},
			{name: "hue wraps", msg: ControlMessage{Color: &Color{Hue: 540, Saturation: 50}}, wantBrightness: 255, wantSpeed: 50, wantColor: Color{Hue: 180, Saturation: 50}},
			{name: "hue wraps negative", msg: ControlMessage{Color: &Color{Hue: -30, Saturation: 50}}, wantBrightness: 255, wantSpeed: 50, wantColor: Color{Hue: 330, Saturation: 50}},
		} {
			t.Run(tt.name, func(t *testing.T) {
				sut := DefaultState()
				sut.Edit(tt.msg)

				assert.Equal(t, tt.wantBrightness, sut.Brightness)
				assert.InDelta(t, tt.wantSpeed, sut.RainbowSpeed, 1e-9)
				assert.Equal(t, tt.wantColor, sut.Color)
			})
		}
	})

	t.Run("Transitioning", func(t *testing.T) {
		t.Run("Set On Power Flip", func(t *testing.T) {
			sut := DefaultState()
			sut.Edit(ControlMessage{Power: ptr(hass.PowerStateOn)})

			assert.True(t, sut.Transitioning)
			assert.Equal(t, hass.PowerStateOn, sut.Power)
		})

		t.Run("Not Set For Same Power", func(t *testing.T) {
			sut := DefaultState()
			sut.Edit(ControlMessage{Power: ptr(hass.PowerStateOff)})

			assert.False(t, sut.Transitioning)
		})

		t.Run("Reset When Power Absent", func(t *testing.T) {
			sut := DefaultState()
			sut.Transitioning = true
			sut.Edit(ControlMessage{Brightness: ptr(10)})

			assert.False(t, sut.Transitioning)
		})
	})
}

func TestControlMessageDecode(t *testing.T) {
	t.Run("All Fields", func(t *testing.T) {
		var msg ControlMessage
		require.NoError(t, json.Unmarshal([]byte(
			`{"color":{"h":90,"s":50},"brightness":128,"rainbow_speed":25,"state":"ON","mode":"rainbow"}`,
		), &msg))

		require.NotNil(t, msg.Color)
		assert.Equal(t, Color{Hue: 90, Saturation: 50}, *msg.Color)
		require.NotNil(t, msg.Brightness)
		assert.Equal(t, 128, *msg.Brightness)
		require.NotNil(t, msg.RainbowSpeed)
		assert.InDelta(t, 25, *msg.RainbowSpeed, 1e-9)
		require.NotNil(t, msg.Power)
		assert.Equal(t, hass.PowerStateOn, *msg.Power)
		require.NotNil(t, msg.Mode)
		assert.Equal(t, ModeRainbow, *msg.Mode)
	})

	t.Run("Absent Fields Stay Nil", func(t *testing.T) {
		var msg ControlMessage
		require.NoError(t, json.Unmarshal([]byte(`{"state":"OFF"}`), &msg))

		assert.Nil(t, msg.Color)
		assert.Nil(t, msg.Brightness)
		assert.Nil(t, msg.RainbowSpeed)
		assert.Nil(t, msg.Mode)
		require.NotNil(t, msg.Power)
		assert.Equal(t, hass.PowerStateOff, *msg.Power)
	})
}

func TestStateJSON(t *testing.T) {
	t.Run("Round Trip", func(t *testing.T) {
		want := State{
			Color:        Color{Hue: 123.5, Saturation: 67},
			Brightness:   200,
			RainbowSpeed: 42.5,
			Mode:         ModeRainbow,
			Power:        hass.PowerStateOn,
		}

		data, err := json.Marshal(want)
		require.NoError(t, err)

		var got State
		require.NoError(t, json.Unmarshal(data, &got))

		require.Equal(t, want, got)
	})

	t.Run("Transitioning Is Not Persisted", func(t *testing.T) {
		sut := DefaultState()
		sut.Transitioning = true

		data, err := json.Marshal(sut)
		require.NoError(t, err)

		assert.NotContains(t, string(data), "transitioning")

		var got State
		require.NoError(t, json.Unmarshal(data, &got))
		assert.False(t, got.Transitioning)
	})

	t.Run("Wire Shape", func(t *testing.T) {
		data, err := json.Marshal(DefaultState())
		require.NoError(t, err)

		require.JSONEq(
			t,
			`{"color":{"h":0,"s":100},"brightness":255,"rainbow_speed":50,"mode":"static","state":"OFF","color_mode":"hs"}`,
			string(data),
		)
	})

	t.Run("Rejects Unknown Color Mode", func(t *testing.T) {
		var got State
		err := json.Unmarshal([]byte(
			`{"color":{"h":0,"s":100},"brightness":255,"rainbow_speed":50,"mode":"static","state":"OFF","color_mode":"xy"}`,
		), &got)

		require.ErrorContains(t, err, "unsupported color mode")
	})
}
