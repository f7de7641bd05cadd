package hass

// PowerState represents generic on/off state for devices. This may or may not refer to physical power depending on the
// underlying entity.
type PowerState string

const (
	PowerStateOn  PowerState = "ON"
	PowerStateOff PowerState = "OFF"
)

// On reports whether this PowerState is PowerStateOn.
func (p PowerState) On() bool {
	return p == PowerStateOn
}
