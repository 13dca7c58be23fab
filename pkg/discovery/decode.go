package discovery

import "net/netip"

// Discovery wire constants.
const (
	// Port is the device's discovery UDP port.
	Port = 5555

	// probeMarker precedes the probe keyword in the broadcast datagram.
	probeMarker = 0x01

	probeKeyword = "discover"
)

// ProbeMessage returns the discovery broadcast payload.
func ProbeMessage() []byte {
	return append([]byte{probeMarker}, probeKeyword...)
}

// DecodeResponse parses a discovery reply datagram. A valid reply is at
// least 8 bytes, carries "OK" at bytes 4..6 and a trailing zero; the IP is
// the first 4 bytes in reverse order and the device id is the ASCII text
// between the status and the trailing zero. Invalid datagrams report ok ==
// false and are silently ignored by the scan loop.
func DecodeResponse(data []byte) (Response, bool) {
	if len(data) < 8 || data[len(data)-1] != 0 {
		return Response{}, false
	}
	if data[4] != 'O' || data[5] != 'K' {
		return Response{}, false
	}
	ip := netip.AddrFrom4([4]byte{data[3], data[2], data[1], data[0]})
	return Response{
		IP:       ip,
		DeviceID: string(data[6 : len(data)-1]),
	}, true
}
