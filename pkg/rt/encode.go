package rt

import (
	"errors"
	"fmt"
)

// Version identifies the realtime wire format, selected by the negotiated
// hardware generation rather than per-call payload size.
type Version uint8

const (
	// V1 is the original single-datagram layout with a one-byte LED count.
	V1 Version = 1

	// V2 is the single-datagram layout with a placeholder byte instead of
	// the LED count.
	V2 Version = 2

	// V3 is the chunked layout used by current hardware. Frames are split
	// into chunks of at most ChunkSize bytes, each an independent datagram
	// tagged with a one-byte ascending index.
	V3 Version = 3
)

// ChunkSize is the maximum payload bytes per V3 datagram.
const ChunkSize = 900

// Encoding errors.
var (
	// ErrUnknownVersion indicates an unsupported wire version.
	ErrUnknownVersion = errors.New("unknown realtime protocol version")

	// ErrFrameTooLarge indicates the frame cannot be represented in the
	// selected wire version.
	ErrFrameTooLarge = errors.New("frame too large for protocol version")
)

// EncodeFrame encodes a flattened RGB frame into the datagrams for the given
// wire version. token is the raw (base64-decoded) session token; ledCount is
// the device's LED count. V1 and V2 produce exactly one datagram; V3
// produces ceil(len(frame)/ChunkSize) datagrams with strictly ascending
// chunk indices.
func EncodeFrame(version Version, token []byte, ledCount int, frame []byte) ([][]byte, error) {
	switch version {
	case V1:
		if ledCount > 0xFF {
			return nil, fmt.Errorf("%w: %d LEDs do not fit a one-byte count", ErrFrameTooLarge, ledCount)
		}
		packet := make([]byte, 0, 2+len(token)+len(frame))
		packet = append(packet, byte(V1))
		packet = append(packet, token...)
		packet = append(packet, byte(ledCount))
		packet = append(packet, frame...)
		return [][]byte{packet}, nil

	case V2:
		packet := make([]byte, 0, 2+len(token)+len(frame))
		packet = append(packet, byte(V2))
		packet = append(packet, token...)
		packet = append(packet, 0x00)
		packet = append(packet, frame...)
		return [][]byte{packet}, nil

	case V3:
		var packets [][]byte
		for i := 0; len(frame) > 0; i++ {
			n := len(frame)
			if n > ChunkSize {
				n = ChunkSize
			}
			packet := make([]byte, 0, 4+len(token)+n)
			packet = append(packet, byte(V3))
			packet = append(packet, token...)
			packet = append(packet, 0x00, 0x00)
			packet = append(packet, byte(i))
			packet = append(packet, frame[:n]...)
			packets = append(packets, packet)
			frame = frame[n:]
		}
		return packets, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownVersion, version)
}
