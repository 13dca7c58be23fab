package rt

import (
	"fmt"
	"net"
)

// Port is the device's realtime streaming UDP port.
const Port = 7777

// Sender streams frames to one device over a single connected UDP socket.
// The socket is opened once and reused for the sender's lifetime. Sender is
// not safe for concurrent use; the control loop design guarantees two frame
// sends for the same session never overlap.
type Sender struct {
	conn    *net.UDPConn
	version Version
}

// NewSender opens a UDP socket connected to the device's realtime port.
func NewSender(host string, version Version) (*Sender, error) {
	addr, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", host, Port))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve realtime address: %w", err)
	}
	conn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to open realtime socket: %w", err)
	}
	return &Sender{conn: conn, version: version}, nil
}

// Version returns the wire version this sender encodes.
func (s *Sender) Version() Version {
	return s.version
}

// SendFrame encodes and sends one frame, returning the total bytes written
// across all datagrams. Remaining chunks are aborted on the first socket
// error, which is propagated; the frame self-heals on the next tick.
func (s *Sender) SendFrame(token []byte, ledCount int, frame []byte) (int, error) {
	packets, err := EncodeFrame(s.version, token, ledCount, frame)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, packet := range packets {
		n, err := s.conn.Write(packet)
		total += n
		if err != nil {
			return total, fmt.Errorf("failed to send frame datagram: %w", err)
		}
	}
	return total, nil
}

// Close releases the socket.
func (s *Sender) Close() error {
	return s.conn.Close()
}
