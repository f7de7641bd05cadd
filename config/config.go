// Package config loads daemon configuration from MOODLIGHT_ prefixed environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/nlowe/moodlight/mqtt"
)

const envPrefix = "moodlight"

// Config holds all daemon configuration. Every field maps to a MOODLIGHT_ prefixed environment variable; only the
// broker URL and the three pin assignments are required.
type Config struct {
	// Broker connection
	BrokerURL      string `envconfig:"BROKER_URL" required:"true"`
	BrokerUsername string `envconfig:"BROKER_USERNAME"`
	BrokerPassword string `envconfig:"BROKER_PASSWORD"`
	ClientID       string `envconfig:"CLIENT_ID"`

	// PWM channel assignments for the fixture and the driver input pipe
	PinR    uint8  `envconfig:"PIN_R" required:"true"`
	PinG    uint8  `envconfig:"PIN_G" required:"true"`
	PinB    uint8  `envconfig:"PIN_B" required:"true"`
	Blaster string `envconfig:"BLASTER" default:"/dev/pi-blaster"`

	// StateFile persists state locally for crash recovery. Set it to the empty string to rely on the retained state
	// message alone.
	StateFile string `envconfig:"STATE_FILE" default:"/var/moodlight_state"`

	// Topics
	TopicPrefix     string `envconfig:"TOPIC_PREFIX" default:"moodlight"`
	DiscoveryPrefix string `envconfig:"DISCOVERY_PREFIX" default:"homeassistant"`
	DeviceName      string `envconfig:"DEVICE_NAME"`

	// Timing calibration
	StepDuration       time.Duration `envconfig:"STEP_DURATION" default:"20ms"`
	TransitionDuration time.Duration `envconfig:"TRANSITION_DURATION" default:"500ms"`
	RainbowMaxCycle    time.Duration `envconfig:"RAINBOW_MAX_CYCLE" default:"60s"`
	RainbowMinCycle    time.Duration `envconfig:"RAINBOW_MIN_CYCLE" default:"1s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads configuration from the environment. The device name and client id fall back to the hostname.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process(envPrefix, &c); err != nil {
		return c, fmt.Errorf("config: %w", err)
	}

	if _, err := url.Parse(c.BrokerURL); err != nil {
		return c, fmt.Errorf("config: broker url: %w", err)
	}

	if c.DeviceName == "" || c.ClientID == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return c, fmt.Errorf("config: hostname: %w", err)
		}

		if c.DeviceName == "" {
			c.DeviceName = hostname
		}
		if c.ClientID == "" {
			c.ClientID = fmt.Sprintf("moodlight:%s", hostname)
		}
	}

	if c.StepDuration <= 0 {
		return c, fmt.Errorf("config: step duration must be positive, got %s", c.StepDuration)
	}

	if c.RainbowMinCycle <= 0 || c.RainbowMaxCycle < c.RainbowMinCycle {
		return c, fmt.Errorf(
			"config: rainbow cycle bounds must satisfy 0 < min <= max, got min=%s max=%s",
			c.RainbowMinCycle, c.RainbowMaxCycle,
		)
	}

	return c, nil
}

// CommandTopic is the topic control messages arrive on.
func (c Config) CommandTopic() string {
	return mqtt.JoinTopic(c.TopicPrefix)
}

// StateTopic is the topic the retained state document is published to.
func (c Config) StateTopic() string {
	return mqtt.JoinTopic(c.TopicPrefix, "state")
}

// UniqueID derives a stable identifier for discovery from the device name.
func (c Config) UniqueID() string {
	name := strings.ToLower(c.DeviceName)
	name = strings.NewReplacer(" ", "_", mqtt.TopicSeparator, "_", ":", "_", ".", "_").Replace(name)

	return fmt.Sprintf("moodlight_%s", name)
}
