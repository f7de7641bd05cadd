package hass

// Availability exposes whether Home Assistant should consider a device or entity as "available" (aka it is online).
// Home Assistant publishes its own Availability to the status topic under the discovery prefix when it starts and
// stops.
type Availability string

const (
	// Available is the Availability value for online/available devices.
	Available Availability = "online"
	// Unavailable is the Availability value for offline/unavailable devices.
	Unavailable Availability = "offline"
)
