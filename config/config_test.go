package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()

	t.Setenv("MOODLIGHT_BROKER_URL", "mqtt://broker.local:1883")
	t.Setenv("MOODLIGHT_PIN_R", "17")
	t.Setenv("MOODLIGHT_PIN_G", "22")
	t.Setenv("MOODLIGHT_PIN_B", "24")
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		setRequired(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "mqtt://broker.local:1883", cfg.BrokerURL)
		assert.EqualValues(t, 17, cfg.PinR)
		assert.EqualValues(t, 22, cfg.PinG)
		assert.EqualValues(t, 24, cfg.PinB)

		assert.Equal(t, "/dev/pi-blaster", cfg.Blaster)
		assert.Equal(t, "/var/moodlight_state", cfg.StateFile)
		assert.Equal(t, 20*time.Millisecond, cfg.StepDuration)
		assert.Equal(t, 500*time.Millisecond, cfg.TransitionDuration)
		assert.Equal(t, 60*time.Second, cfg.RainbowMaxCycle)
		assert.Equal(t, time.Second, cfg.RainbowMinCycle)
		assert.Equal(t, "info", cfg.LogLevel)

		assert.NotEmpty(t, cfg.DeviceName, "device name falls back to the hostname")
		assert.NotEmpty(t, cfg.ClientID)
	})

	t.Run("Missing Broker URL", func(t *testing.T) {
		t.Setenv("MOODLIGHT_PIN_R", "17")
		t.Setenv("MOODLIGHT_PIN_G", "22")
		t.Setenv("MOODLIGHT_PIN_B", "24")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("Invalid Rainbow Bounds", func(t *testing.T) {
		setRequired(t)
		t.Setenv("MOODLIGHT_RAINBOW_MAX_CYCLE", "1s")
		t.Setenv("MOODLIGHT_RAINBOW_MIN_CYCLE", "60s")

		_, err := Load()
		require.ErrorContains(t, err, "rainbow cycle bounds")
	})

	t.Run("Invalid Step Duration", func(t *testing.T) {
		setRequired(t)
		t.Setenv("MOODLIGHT_STEP_DURATION", "0s")

		_, err := Load()
		require.ErrorContains(t, err, "step duration")
	})
}

func TestTopics(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "moodlight", cfg.CommandTopic())
	assert.Equal(t, "moodlight/state", cfg.StateTopic())

	t.Run("Custom Prefix", func(t *testing.T) {
		cfg.TopicPrefix = "lights/den"

		assert.Equal(t, "lights/den", cfg.CommandTopic())
		assert.Equal(t, "lights/den/state", cfg.StateTopic())
	})
}

func TestUniqueID(t *testing.T) {
	for _, tt := range []struct {
		name string
		want string
	}{
		{name: "den", want: "moodlight_den"},
		{name: "Living Room", want: "moodlight_living_room"},
		{name: "attic/strip:1", want: "moodlight_attic_strip_1"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{DeviceName: tt.name}

			require.Equal(t, tt.want, cfg.UniqueID())
		})
	}
}
