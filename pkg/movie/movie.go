// Package movie implements the device movie container: a text format for
// on-disk storage (a header line followed by one hex-encoded frame per
// line) and the raw binary frame body the upload endpoint expects.
package movie

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/glow-control/glow-go/pkg/color"
)

// Profile is the device's color channel profile.
type Profile string

const (
	// ProfileRGB stores three bytes per LED.
	ProfileRGB Profile = "RGB"

	// ProfileRGBW stores four bytes per LED; the white channel is the
	// minimum of r, g and b, subtracted from each color channel.
	ProfileRGBW Profile = "RGBW"
)

// BytesPerLED returns the stored bytes per LED for the profile.
func (p Profile) BytesPerLED() int {
	if p == ProfileRGBW {
		return 4
	}
	return 3
}

// ErrBadHeader indicates a movie file whose header line is not
// "frames leds bytes-per-led fps".
var ErrBadHeader = errors.New("movie: invalid header format")

// Movie is a sequence of full-strip frames with a playback rate.
type Movie struct {
	Frames [][]color.RGB
	FPS    float64
}

// Encode serializes frames into the binary body the upload endpoint
// expects: concatenated per-frame, per-LED channel groups.
func Encode(frames [][]color.RGB, profile Profile) []byte {
	var out []byte
	for _, frame := range frames {
		for _, c := range frame {
			if profile == ProfileRGBW {
				w := min(c.R, min(c.G, c.B))
				out = append(out, c.R-w, c.G-w, c.B-w, w)
			} else {
				out = append(out, c.R, c.G, c.B)
			}
		}
	}
	return out
}

// Load reads a movie from the text container at path.
func Load(path string, profile Profile) (*Movie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	if !scanner.Scan() {
		return nil, ErrBadHeader
	}
	parts := strings.Fields(scanner.Text())
	if len(parts) != 4 {
		return nil, ErrBadHeader
	}
	numFrames, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	numLEDs, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	bytesPerLED, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	fps, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}

	frames := make([][]color.RGB, 0, numFrames)
	for i := 0; i < numFrames; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("movie: expected %d frames, file ends after %d", numFrames, i)
		}
		raw, err := hex.DecodeString(strings.TrimSpace(scanner.Text()))
		if err != nil {
			return nil, fmt.Errorf("movie: frame %d: %w", i, err)
		}
		if len(raw) != numLEDs*bytesPerLED {
			return nil, fmt.Errorf("movie: frame %d has %d bytes, want %d", i, len(raw), numLEDs*bytesPerLED)
		}

		frame := make([]color.RGB, 0, numLEDs)
		for off := 0; off < len(raw); off += bytesPerLED {
			if profile == ProfileRGBW && bytesPerLED == 4 {
				w := raw[off+3]
				frame = append(frame, color.RGB{
					R: raw[off] + w,
					G: raw[off+1] + w,
					B: raw[off+2] + w,
				})
			} else {
				frame = append(frame, color.RGB{R: raw[off], G: raw[off+1], B: raw[off+2]})
			}
		}
		frames = append(frames, frame)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &Movie{Frames: frames, FPS: fps}, nil
}

// Save writes the movie to the text container at path.
func (m *Movie) Save(path string, profile Profile) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	numLEDs := 0
	if len(m.Frames) > 0 {
		numLEDs = len(m.Frames[0])
	}
	fmt.Fprintf(w, "%d %d %d %g\n", len(m.Frames), numLEDs, profile.BytesPerLED(), m.FPS)

	for _, frame := range m.Frames {
		for _, c := range frame {
			if profile == ProfileRGBW {
				white := min(c.R, min(c.G, c.B))
				fmt.Fprintf(w, "%02X%02X%02X%02X", c.R-white, c.G-white, c.B-white, white)
			} else {
				fmt.Fprintf(w, "%02X%02X%02X", c.R, c.G, c.B)
			}
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
