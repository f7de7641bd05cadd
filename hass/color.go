package hass

// ColorMode represents constants that Home Assistant uses to determine what mode a given color represents
type ColorMode string

const (
	ColorModeOnOff       ColorMode = "onoff"
	ColorModeBrightness  ColorMode = "brightness"
	ColorModeTemperature ColorMode = "color_temp"
	ColorModeHueSat      ColorMode = "hs"
	ColorModeXY          ColorMode = "xy"
	ColorModeRGB         ColorMode = "rgb"
	ColorModeRGBW        ColorMode = "rgbw"
	ColorModeRGBWW       ColorMode = "rgbww"
	ColorModeWhite       ColorMode = "white"
)
