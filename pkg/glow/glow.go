// Package glow implements the multi-LED glow animation: every LED runs
// independent rise-then-fade cycles, with new cycles started in randomized
// batches at a configurable interval.
package glow

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/glow-control/glow-go/pkg/color"
)

// Configuration errors, raised before any network activity.
var (
	// ErrEmptyPalette indicates no colors were configured.
	ErrEmptyPalette = errors.New("glow: color palette is empty")

	// ErrBadSimultaneous indicates NumStartSimultaneous is outside
	// [1, led count].
	ErrBadSimultaneous = errors.New("glow: num start simultaneous out of range")
)

// Config holds the animation parameters.
type Config struct {
	// TimeBetweenGlowStart is the minimum interval between start batches.
	TimeBetweenGlowStart time.Duration

	// RiseTime is the 0 -> 1 brightness ramp duration of a cycle.
	RiseTime time.Duration

	// FadeTime is the 1 -> 0 brightness ramp duration of a cycle.
	FadeTime time.Duration

	// Colors is the palette new cycles draw from uniformly at random.
	Colors []color.RGB

	// NumStartSimultaneous is the maximum number of cycles started per
	// batch. Must be in [1, led count].
	NumStartSimultaneous int
}

// Engine holds the per-LED animation state. Each tick produces a flattened
// RGB frame for the frame transport. Randomness comes from an injected
// source so runs can be reproduced in tests.
type Engine struct {
	cfg      Config
	ledCount int
	rng      *rand.Rand

	startTimes []time.Time
	colors     []color.RGB
	sinceBatch time.Duration
	frame      []byte
}

// NewEngine validates the configuration and builds an engine whose LEDs are
// all initially fully faded, so every LED is eligible for the first batch.
func NewEngine(ledCount int, cfg Config, rng *rand.Rand, now time.Time) (*Engine, error) {
	if len(cfg.Colors) == 0 {
		return nil, ErrEmptyPalette
	}
	if cfg.NumStartSimultaneous < 1 || cfg.NumStartSimultaneous > ledCount {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrBadSimultaneous, cfg.NumStartSimultaneous, ledCount)
	}

	cycle := cfg.RiseTime + cfg.FadeTime
	startTimes := make([]time.Time, ledCount)
	for i := range startTimes {
		startTimes[i] = now.Add(-2 * cycle)
	}

	return &Engine{
		cfg:        cfg,
		ledCount:   ledCount,
		rng:        rng,
		startTimes: startTimes,
		colors:     make([]color.RGB, ledCount),
		sinceBatch: cfg.TimeBetweenGlowStart,
		frame:      make([]byte, ledCount*3),
	}, nil
}

// LEDCount returns the number of LEDs the engine animates.
func (e *Engine) LEDCount() int {
	return e.ledCount
}

// Tick advances the animation to now and returns the flattened frame. The
// returned slice is reused between ticks; callers must not retain it.
// framePeriod is the tick duration used to advance the batch timer.
func (e *Engine) Tick(now time.Time, framePeriod time.Duration) []byte {
	cycle := e.cfg.RiseTime + e.cfg.FadeTime

	if e.sinceBatch >= e.cfg.TimeBetweenGlowStart {
		idle := make([]int, 0, e.ledCount)
		for i := range e.startTimes {
			if now.Sub(e.startTimes[i]) >= cycle {
				idle = append(idle, i)
			}
		}
		e.rng.Shuffle(len(idle), func(i, j int) {
			idle[i], idle[j] = idle[j], idle[i]
		})
		n := e.cfg.NumStartSimultaneous
		if n > len(idle) {
			n = len(idle)
		}
		for _, led := range idle[:n] {
			e.startTimes[led] = now
			e.colors[led] = e.cfg.Colors[e.rng.Intn(len(e.cfg.Colors))]
		}
		e.sinceBatch = 0
	} else {
		e.sinceBatch += framePeriod
	}

	for i := 0; i < e.ledCount; i++ {
		b := e.brightnessAt(now.Sub(e.startTimes[i]))
		c := e.colors[i]
		e.frame[i*3] = scale(c.R, b)
		e.frame[i*3+1] = scale(c.G, b)
		e.frame[i*3+2] = scale(c.B, b)
	}
	return e.frame
}

// brightnessAt maps elapsed time within a cycle to brightness: a linear
// 0 -> 1 ramp during rise, a linear 1 -> 0 ramp during fade, 0 afterwards.
func (e *Engine) brightnessAt(elapsed time.Duration) float64 {
	switch {
	case elapsed < e.cfg.RiseTime:
		return elapsed.Seconds() / e.cfg.RiseTime.Seconds()
	case elapsed < e.cfg.RiseTime+e.cfg.FadeTime:
		return 1.0 - (elapsed-e.cfg.RiseTime).Seconds()/e.cfg.FadeTime.Seconds()
	default:
		return 0
	}
}

func scale(c uint8, brightness float64) uint8 {
	return uint8(math.Round(float64(c) * brightness))
}
