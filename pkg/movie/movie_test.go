package movie

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glow-control/glow-go/pkg/color"
)

func TestProfileBytesPerLED(t *testing.T) {
	assert.Equal(t, 3, ProfileRGB.BytesPerLED())
	assert.Equal(t, 4, ProfileRGBW.BytesPerLED())
}

func TestEncodeRGB(t *testing.T) {
	frames := [][]color.RGB{
		{{R: 1, G: 2, B: 3}, {R: 4, G: 5, B: 6}},
		{{R: 7, G: 8, B: 9}, {R: 10, G: 11, B: 12}},
	}
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	assert.Equal(t, want, Encode(frames, ProfileRGB))
}

func TestEncodeRGBWExtractsWhite(t *testing.T) {
	frames := [][]color.RGB{{
		{R: 100, G: 150, B: 120}, // white = 100
		{R: 50, G: 50, B: 50},    // pure white
		{R: 255, G: 0, B: 10},    // no white
	}}
	want := []byte{
		0, 50, 20, 100,
		0, 0, 0, 50,
		255, 0, 10, 0,
	}
	assert.Equal(t, want, Encode(frames, ProfileRGBW))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := &Movie{
		Frames: [][]color.RGB{
			{{R: 255, G: 0, B: 0}, {R: 0, G: 255, B: 0}},
			{{R: 0, G: 0, B: 255}, {R: 10, G: 20, B: 30}},
			{{R: 0, G: 0, B: 0}, {R: 255, G: 255, B: 255}},
		},
		FPS: 12.5,
	}

	for _, profile := range []Profile{ProfileRGB, ProfileRGBW} {
		path := filepath.Join(t.TempDir(), "movie.txt")
		require.NoError(t, m.Save(path, profile))

		got, err := Load(path, profile)
		require.NoError(t, err, "profile %s", profile)
		assert.Equal(t, m.Frames, got.Frames, "profile %s", profile)
		assert.Equal(t, m.FPS, got.FPS, "profile %s", profile)
	}
}

func TestSaveHeaderFormat(t *testing.T) {
	m := &Movie{
		Frames: [][]color.RGB{{{R: 0xAB, G: 0xCD, B: 0xEF}}},
		FPS:    25,
	}
	path := filepath.Join(t.TempDir(), "movie.txt")
	require.NoError(t, m.Save(path, ProfileRGB))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1 1 3 25", lines[0])
	assert.Equal(t, "ABCDEF", lines[1])
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	tests := []struct {
		name    string
		content string
	}{
		{name: "empty file", content: ""},
		{name: "short header", content: "1 2 3\n"},
		{name: "non-numeric header", content: "one 2 3 4\n"},
		{name: "missing frames", content: "2 1 3 10\nFF0000\n"},
		{name: "bad hex", content: "1 1 3 10\nZZ0000\n"},
		{name: "wrong frame length", content: "1 2 3 10\nFF0000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(write(strings.ReplaceAll(tt.name, " ", "_"), tt.content), ProfileRGB)
			assert.Error(t, err)
		})
	}
}
