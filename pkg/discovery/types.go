package discovery

import (
	"fmt"
	"net/netip"
)

// Response is one decoded discovery reply: where the device is and the
// ephemeral id it chose for this boot.
type Response struct {
	IP       netip.Addr
	DeviceID string
}

// Key identifies a device within and across scans. Two responses with the
// same key are the same device retransmitting.
type Key struct {
	IP       netip.Addr
	DeviceID string
}

// DeviceIdentifier is the complete identity record of a discovered device.
// Token is a volatile credential and takes no part in identity; Key()
// excludes it.
type DeviceIdentifier struct {
	IP         netip.Addr
	DeviceID   string
	MAC        string
	DeviceName string
	LEDCount   int

	// Token is the session token obtained during the discovery handshake,
	// reusable until the device invalidates it. May be empty.
	Token string
}

// Key returns the identity key for deduplication.
func (d DeviceIdentifier) Key() Key {
	return Key{IP: d.IP, DeviceID: d.DeviceID}
}

func (d DeviceIdentifier) String() string {
	return fmt.Sprintf("%s (%s, %s, %d LEDs)", d.DeviceName, d.IP, d.MAC, d.LEDCount)
}
