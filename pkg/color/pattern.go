package color

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// Pattern helpers build whole frames from colors or the model. They take an
// explicit randomness source where randomness is involved.

// ErrEmptyPalette indicates a pattern was requested from no colors.
var ErrEmptyPalette = errors.New("color palette is empty")

const probTolerance = 1e-5

// RandomDiscrete draws an index according to the discrete distribution
// probs, which must sum to 1 within a small tolerance.
func RandomDiscrete(rng *rand.Rand, probs []float64) (int, error) {
	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	if math.Abs(sum-1.0) > probTolerance {
		return 0, fmt.Errorf("probabilities sum to %v, not 1", sum)
	}

	r := rng.Float64()
	acc := 0.0
	for i, p := range probs {
		acc += p
		if acc >= r {
			return i, nil
		}
	}
	return 0, errors.New("invalid probability distribution")
}

// Alternating cycles through palette across leds positions.
func Alternating(leds int, palette []RGB) ([]RGB, error) {
	if len(palette) == 0 {
		return nil, ErrEmptyPalette
	}
	frame := make([]RGB, leds)
	for i := range frame {
		frame[i] = palette[i%len(palette)]
	}
	return frame, nil
}

// Spectrum lays the full hue circle across leds positions at full
// saturation, rotated by offset positions.
func Spectrum(leds, offset int, lightness float64, model *Model) []RGB {
	frame := make([]RGB, leds)
	for i := range frame {
		hue := float64((i+offset)%leds) / float64(leds)
		frame[i] = model.HSLColor(hue, 1.0, lightness)
	}
	return frame
}

// RandomSelect picks each LED's color independently from palette, uniformly
// or according to probs when given.
func RandomSelect(rng *rand.Rand, leds int, palette []RGB, probs []float64) ([]RGB, error) {
	if len(palette) == 0 {
		return nil, ErrEmptyPalette
	}
	frame := make([]RGB, leds)
	for i := range frame {
		if probs != nil {
			ind, err := RandomDiscrete(rng, probs)
			if err != nil {
				return nil, err
			}
			frame[i] = palette[ind]
		} else {
			frame[i] = palette[rng.Intn(len(palette))]
		}
	}
	return frame, nil
}

// RandomBlend fills each LED with a random mix of the two colors.
func RandomBlend(rng *rand.Rand, leds int, a, b RGB) []RGB {
	frame := make([]RGB, leds)
	for i := range frame {
		frame[i] = Blend(a, b, rng.Float64())
	}
	return frame
}

// RandomHues fills each LED with a random fully saturated hue at the given
// lightness.
func RandomHues(rng *rand.Rand, leds int, lightness float64, model *Model) []RGB {
	frame := make([]RGB, leds)
	for i := range frame {
		frame[i] = model.HSLColor(rng.Float64(), 1.0, lightness)
	}
	return frame
}
