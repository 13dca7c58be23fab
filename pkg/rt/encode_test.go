package rt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToken = []byte{0xDE, 0xAD, 0xBE, 0xEF}

func TestEncodeFrameV1(t *testing.T) {
	frame := []byte{1, 2, 3, 4, 5, 6}
	packets, err := EncodeFrame(V1, testToken, 2, frame)
	require.NoError(t, err)
	require.Len(t, packets, 1)

	want := append([]byte{0x01}, testToken...)
	want = append(want, 0x02)
	want = append(want, frame...)
	assert.Equal(t, want, packets[0])
}

func TestEncodeFrameV1TooManyLEDs(t *testing.T) {
	frame := make([]byte, 3*300)
	_, err := EncodeFrame(V1, testToken, 300, frame)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestEncodeFrameV2(t *testing.T) {
	frame := make([]byte, 3*300)
	packets, err := EncodeFrame(V2, testToken, 300, frame)
	require.NoError(t, err)
	require.Len(t, packets, 1)

	packet := packets[0]
	assert.Equal(t, byte(0x02), packet[0])
	assert.Equal(t, testToken, packet[1:1+len(testToken)])
	assert.Equal(t, byte(0x00), packet[1+len(testToken)])
	assert.Equal(t, frame, packet[2+len(testToken):])
}

func TestEncodeFrameV3Chunking(t *testing.T) {
	tests := []struct {
		name       string
		frameLen   int
		wantChunks int
		lastLen    int
	}{
		{name: "single partial chunk", frameLen: 30, wantChunks: 1, lastLen: 30},
		{name: "exactly one chunk", frameLen: ChunkSize, wantChunks: 1, lastLen: ChunkSize},
		{name: "one byte over", frameLen: ChunkSize + 1, wantChunks: 2, lastLen: 1},
		{name: "600 LEDs", frameLen: 1800, wantChunks: 2, lastLen: 900},
		{name: "1000 LEDs", frameLen: 3000, wantChunks: 4, lastLen: 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := bytes.Repeat([]byte{0xAB}, tt.frameLen)
			packets, err := EncodeFrame(V3, testToken, tt.frameLen/3, frame)
			require.NoError(t, err)
			require.Len(t, packets, tt.wantChunks)

			header := 1 + len(testToken) + 3
			var reassembled []byte
			for i, packet := range packets {
				assert.Equal(t, byte(0x03), packet[0])
				assert.Equal(t, testToken, packet[1:1+len(testToken)])
				assert.Equal(t, []byte{0x00, 0x00}, packet[1+len(testToken):3+len(testToken)])
				assert.Equal(t, byte(i), packet[header-1], "chunk index")
				if i < len(packets)-1 {
					assert.Len(t, packet[header:], ChunkSize)
				} else {
					assert.Len(t, packet[header:], tt.lastLen)
				}
				reassembled = append(reassembled, packet[header:]...)
			}
			assert.Equal(t, frame, reassembled)
		})
	}
}

func TestEncodeFrameUnknownVersion(t *testing.T) {
	_, err := EncodeFrame(Version(9), testToken, 1, []byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrUnknownVersion)
}
