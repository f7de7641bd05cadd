package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlowe/moodlight/hass"
	"github.com/nlowe/moodlight/light"
)

func TestFileLoad(t *testing.T) {
	t.Run("Missing File Yields Default State", func(t *testing.T) {
		sut := NewFile(filepath.Join(t.TempDir(), "missing"))

		got, err := sut.Load(context.Background())

		require.NoError(t, err)
		assert.Equal(t, light.DefaultState(), got)
	})

	t.Run("Malformed File Yields Default State", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		sut := NewFile(path)
		got, err := sut.Load(context.Background())

		require.NoError(t, err)
		assert.Equal(t, light.DefaultState(), got)
	})

	t.Run("Unsupported Color Mode Yields Default State", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state")
		require.NoError(t, os.WriteFile(path, []byte(
			`{"color":{"h":0,"s":100},"brightness":255,"rainbow_speed":50,"mode":"static","state":"OFF","color_mode":"rgb"}`,
		), 0o644))

		sut := NewFile(path)
		got, err := sut.Load(context.Background())

		require.NoError(t, err)
		assert.Equal(t, light.DefaultState(), got)
	})
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	sut := NewFile(path)

	want := light.State{
		Color:        light.Color{Hue: 42, Saturation: 77},
		Brightness:   128,
		RainbowSpeed: 13,
		Mode:         light.ModeRainbow,
		Power:        hass.PowerStateOn,
	}

	require.NoError(t, sut.Save(context.Background(), want))

	got, err := sut.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestFileSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	sut := NewFile(path)

	require.NoError(t, sut.Save(context.Background(), light.DefaultState()))

	want := light.DefaultState()
	want.Brightness = 7
	require.NoError(t, sut.Save(context.Background(), want))

	got, err := sut.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)
}
