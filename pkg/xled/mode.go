package xled

import "fmt"

// DeviceMode is the device's top-level operating mode.
type DeviceMode string

const (
	ModeMovie    DeviceMode = "movie"
	ModePlaylist DeviceMode = "playlist"
	ModeRealTime DeviceMode = "rt"
	ModeDemo     DeviceMode = "demo"
	ModeEffect   DeviceMode = "effect"
	ModeColor    DeviceMode = "color"
	ModeOff      DeviceMode = "off"
)

// ParseDeviceMode parses the wire name of a mode.
func ParseDeviceMode(s string) (DeviceMode, error) {
	switch DeviceMode(s) {
	case ModeMovie, ModePlaylist, ModeRealTime, ModeDemo, ModeEffect, ModeColor, ModeOff:
		return DeviceMode(s), nil
	}
	return "", fmt.Errorf("invalid device mode %q", s)
}
