package rt

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLoopbackSender wires a Sender to a local UDP listener so SendFrame can
// be observed without a device.
func newLoopbackSender(t *testing.T, version Version) (*Sender, *net.UDPConn) {
	t.Helper()

	listener, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	conn, err := net.DialUDP("udp4", nil, listener.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)

	sender := &Sender{conn: conn, version: version}
	t.Cleanup(func() { sender.Close() })
	return sender, listener
}

func TestSenderSendFrame(t *testing.T) {
	sender, listener := newLoopbackSender(t, V3)
	assert.Equal(t, V3, sender.Version())

	frame := make([]byte, ChunkSize+10)
	for i := range frame {
		frame[i] = byte(i)
	}
	total, err := sender.SendFrame(testToken, len(frame)/3, frame)
	require.NoError(t, err)

	// Two datagrams: a full chunk and the 10-byte tail, each with the
	// 8-byte header for a 4-byte token.
	header := 1 + len(testToken) + 3
	assert.Equal(t, 2*header+len(frame), total)

	buf := make([]byte, 2048)
	listener.SetReadDeadline(time.Now().Add(2 * time.Second))

	n, _, err := listener.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, header+ChunkSize, n)
	assert.Equal(t, byte(0x03), buf[0])
	assert.Equal(t, byte(0x00), buf[header-1])

	n, _, err = listener.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, header+10, n)
	assert.Equal(t, byte(0x01), buf[header-1])
}

func TestSenderSendFrameEncodeError(t *testing.T) {
	sender, _ := newLoopbackSender(t, V1)

	frame := make([]byte, 3*300)
	_, err := sender.SendFrame(testToken, 300, frame)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}
