package color

import "math"

// RGB is a single LED color as raw device channel bytes.
type RGB struct {
	R, G, B uint8
}

// Flatten serializes a frame of per-LED colors into the wire byte order
// expected by the realtime protocol and the movie container.
func Flatten(frame []RGB) []byte {
	out := make([]byte, 0, len(frame)*3)
	for _, c := range frame {
		out = append(out, c.R, c.G, c.B)
	}
	return out
}

// Dim scales all channels of c by prop, clamped to the byte range.
func Dim(c RGB, prop float64) RGB {
	return RGB{
		R: clampByte(float64(c.R) * prop),
		G: clampByte(float64(c.G) * prop),
		B: clampByte(float64(c.B) * prop),
	}
}

// Blend mixes a and b per channel; prop 0 yields a, prop 1 yields b.
func Blend(a, b RGB, prop float64) RGB {
	blend := func(c1, c2 uint8) uint8 {
		return clampByte(float64(c1)*(1.0-prop) + float64(c2)*prop)
	}
	return RGB{R: blend(a.R, b.R), G: blend(a.G, b.G), B: blend(a.B, b.B)}
}

func clampByte(v float64) uint8 {
	return uint8(math.Min(math.Max(v, 0), 255))
}
