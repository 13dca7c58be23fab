package xled

import (
	"context"
	"encoding/base64"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glow-control/glow-go/pkg/color"
	"github.com/glow-control/glow-go/pkg/rt"
)

func TestHostOnly(t *testing.T) {
	assert.Equal(t, "192.168.1.50", hostOnly("192.168.1.50:8080"))
	assert.Equal(t, "192.168.1.50", hostOnly("192.168.1.50"))
}

func TestSendRealTimeFrameLengthCheck(t *testing.T) {
	ci, _ := newTestClient(t)

	_, err := ci.SendRealTimeFrame(make([]byte, 10))
	assert.Error(t, err)
}

// listenRealtimePort binds the fixed realtime port on loopback. The port
// cannot be chosen, so the test is skipped when something else holds it.
func listenRealtimePort(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: rt.Port})
	if err != nil {
		t.Skipf("realtime port unavailable: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestShowRealTimeFrameEndToEnd(t *testing.T) {
	listener := listenRealtimePort(t)
	ci, device := newTestClient(t)

	// Paint the whole 250-LED strip red and verify the device both switched
	// to realtime mode and received the full frame in order.
	frame := color.Flatten(func() []color.RGB {
		out := make([]color.RGB, 250)
		for i := range out {
			out[i] = color.RGB{R: 255}
		}
		return out
	}())
	require.NoError(t, ci.ShowRealTimeFrame(context.Background(), frame))
	assert.Equal(t, "rt", device.mode)

	rawToken, err := base64.StdEncoding.DecodeString(testToken)
	require.NoError(t, err)
	header := 1 + len(rawToken) + 3

	// 750 frame bytes fit a single V3 chunk.
	listener.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 2048)
	n, _, err := listener.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, byte(rt.V3), buf[0])
	assert.Equal(t, rawToken, buf[1:1+len(rawToken)])
	assert.Equal(t, byte(0), buf[header-1])
	assert.Equal(t, frame, buf[header:n])
}

func TestFramePeriod(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, framePeriod(10))
	assert.Equal(t, 50*time.Millisecond, framePeriod(20))
	// Nonsense rates fall back to 10 fps.
	assert.Equal(t, 100*time.Millisecond, framePeriod(0))
	assert.Equal(t, 100*time.Millisecond, framePeriod(-3))
}
