// Package discovery constructs Home Assistant MQTT Discovery payloads for the moodlight fixture: a json-schema light,
// a select for the animation mode, and a number for the rainbow speed. All three entities share one device and one
// command/state topic pair; the select and number use templates to address their fields inside the shared state
// document.
//
// See https://www.home-assistant.io/integrations/mqtt/#mqtt-discovery
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nlowe/moodlight/light"
	"github.com/nlowe/moodlight/log"
	"github.com/nlowe/moodlight/mqtt"
)

const (
	// DefaultPrefix is the MQTT Topic Prefix that Home Assistant looks for discovery payloads under
	DefaultPrefix = "homeassistant"
	// StatusTopic is the MQTT Topic that Home Assistant publishes hass.Availability state to for itself.
	StatusTopic = "status"
)

// HomeAssistantStatusTopic returns the topic Home Assistant announces its own availability on under the provided
// discovery prefix. Watch it to re-announce discovery when Home Assistant restarts.
func HomeAssistantStatusTopic(prefix string) string {
	return mqtt.JoinTopic(prefix, StatusTopic)
}

// Device is the device block shared by every entity config, which lets Home Assistant group the three entities under
// one fixture.
type Device struct {
	Name        string `json:"name"`
	Identifiers string `json:"identifiers"`
}

// LightConfig announces the fixture as a json-schema MQTT light with brightness and hue/saturation colour support.
type LightConfig struct {
	Name         string `json:"name"`
	UniqueID     string `json:"unique_id"`
	CommandTopic string `json:"command_topic"`
	StateTopic   string `json:"state_topic"`
	Device       Device `json:"device"`

	Schema              string   `json:"schema"`
	ColorMode           bool     `json:"color_mode"`
	Brightness          bool     `json:"brightness"`
	SupportedColorModes []string `json:"supported_color_modes"`
}

// SelectConfig announces the animation mode chooser. The command template wraps the chosen option into a partial
// control message; the value template picks the mode back out of the retained state document.
type SelectConfig struct {
	Name         string `json:"name"`
	UniqueID     string `json:"unique_id"`
	CommandTopic string `json:"command_topic"`
	StateTopic   string `json:"state_topic"`
	Device       Device `json:"device"`

	Options         []string `json:"options"`
	CommandTemplate string   `json:"command_template"`
	ValueTemplate   string   `json:"value_template"`
}

// NumberConfig announces the rainbow speed slider.
type NumberConfig struct {
	Name         string `json:"name"`
	UniqueID     string `json:"unique_id"`
	CommandTopic string `json:"command_topic"`
	StateTopic   string `json:"state_topic"`
	Device       Device `json:"device"`

	Min             float64 `json:"min"`
	Max             float64 `json:"max"`
	Mode            string  `json:"mode"`
	CommandTemplate string  `json:"command_template"`
	ValueTemplate   string  `json:"value_template"`
}

// Announcer publishes the discovery configs for one moodlight fixture.
type Announcer struct {
	// Prefix is the discovery prefix Home Assistant watches, usually DefaultPrefix.
	Prefix string

	// Name is the human-readable fixture name; UniqueID must be stable across restarts.
	Name     string
	UniqueID string

	// CommandTopic receives control messages; StateTopic carries the retained state document.
	CommandTopic string
	StateTopic   string

	log *slog.Logger
}

// NewAnnouncer constructs an Announcer for the provided fixture identity and topics.
func NewAnnouncer(prefix, name, uniqueID, commandTopic, stateTopic string) *Announcer {
	return &Announcer{
		Prefix: prefix,

		Name:     name,
		UniqueID: uniqueID,

		CommandTopic: commandTopic,
		StateTopic:   stateTopic,

		log: log.ForComponent("discovery").With(slog.String("unique_id", uniqueID)),
	}
}

func (a *Announcer) device() Device {
	return Device{
		Name:        fmt.Sprintf("%s moodlight", a.Name),
		Identifiers: a.UniqueID,
	}
}

// Light returns the discovery config for the light entity.
func (a *Announcer) Light() LightConfig {
	return LightConfig{
		Name:         fmt.Sprintf("%s moodlight", a.Name),
		UniqueID:     a.UniqueID,
		CommandTopic: a.CommandTopic,
		StateTopic:   a.StateTopic,
		Device:       a.device(),

		Schema:              "json",
		ColorMode:           true,
		Brightness:          true,
		SupportedColorModes: []string{"hs"},
	}
}

// ModeSelect returns the discovery config for the animation mode select entity.
func (a *Announcer) ModeSelect() SelectConfig {
	return SelectConfig{
		Name:         fmt.Sprintf("%s moodlight mode", a.Name),
		UniqueID:     fmt.Sprintf("%s_mode", a.UniqueID),
		CommandTopic: a.CommandTopic,
		StateTopic:   a.StateTopic,
		Device:       a.device(),

		Options:         []string{string(light.ModeStatic), string(light.ModeRainbow)},
		CommandTemplate: `{"mode": "{{ value }}"}`,
		ValueTemplate:   `{{ value_json.mode }}`,
	}
}

// RainbowSpeedNumber returns the discovery config for the rainbow speed slider entity.
func (a *Announcer) RainbowSpeedNumber() NumberConfig {
	return NumberConfig{
		Name:         fmt.Sprintf("%s moodlight rainbow speed", a.Name),
		UniqueID:     fmt.Sprintf("%s_rainbow_speed", a.UniqueID),
		CommandTopic: a.CommandTopic,
		StateTopic:   a.StateTopic,
		Device:       a.device(),

		Min:             0,
		Max:             100,
		Mode:            "slider",
		CommandTemplate: `{"rainbow_speed": {{ value }}}`,
		ValueTemplate:   `{{ value_json.rainbow_speed }}`,
	}
}

// ConfigTopic returns the discovery config topic for the provided component and object id.
func (a *Announcer) ConfigTopic(component, objectID string) string {
	return mqtt.JoinTopic(a.Prefix, component, objectID, "config")
}

// Announce publishes the retained discovery configs for all three entities. Home Assistant picks them up immediately
// if it is running, or on its next start via the retained copies.
func (a *Announcer) Announce(ctx context.Context, w mqtt.Writer) error {
	a.log.Info("Publishing discovery configs")

	for _, entity := range []struct {
		component string
		objectID  string
		config    any
	}{
		{component: "light", objectID: a.UniqueID, config: a.Light()},
		{component: "select", objectID: fmt.Sprintf("%s_mode", a.UniqueID), config: a.ModeSelect()},
		{component: "number", objectID: fmt.Sprintf("%s_rainbow_speed", a.UniqueID), config: a.RainbowSpeedNumber()},
	} {
		data, err := json.Marshal(entity.config)
		if err != nil {
			return fmt.Errorf("discovery: marshal %s config: %w", entity.component, err)
		}

		topic := a.ConfigTopic(entity.component, entity.objectID)
		opts := mqtt.WriteOptions{QoS: mqtt.QOSAtLeastOnce, Retain: true}
		if err = w.WriteTopic(ctx, topic, opts, data); err != nil {
			return fmt.Errorf("discovery: publish %s config: %w", entity.component, err)
		}
	}

	return nil
}
