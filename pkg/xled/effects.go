package xled

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/rand"
	"time"

	"github.com/glow-control/glow-go/pkg/color"
	"github.com/glow-control/glow-go/pkg/glow"
	"github.com/glow-control/glow-go/pkg/rt"
)

// Effect loops run a single cooperative cycle per tick: compute the frame,
// perform one blocking send, sleep whatever remains of the tick budget.
// There is no compensation for accumulated jitter and no automatic token
// refresh; a failed send surfaces to the caller, who may Reauthenticate and
// re-invoke.

// realtimeSender returns the session's realtime socket, opening it on first
// use. The socket lives for the rest of the session.
func (ci *ControlInterface) realtimeSender() (*rt.Sender, error) {
	ci.rtMu.Lock()
	defer ci.rtMu.Unlock()
	if ci.sender == nil {
		sender, err := rt.NewSender(hostOnly(ci.host), ci.rtVersion)
		if err != nil {
			return nil, err
		}
		ci.sender = sender
	}
	return ci.sender, nil
}

// hostOnly strips a port suffix so the realtime port can be applied.
func hostOnly(host string) string {
	for i := len(host) - 1; i >= 0; i-- {
		if host[i] == ':' {
			return host[:i]
		}
	}
	return host
}

// SendRealTimeFrame sends one frame without touching the device mode. The
// frame must be exactly 3 bytes per LED.
func (ci *ControlInterface) SendRealTimeFrame(frame []byte) (int, error) {
	if len(frame) != ci.info.NumberOfLED*3 {
		return 0, fmt.Errorf("frame is %d bytes, want %d for %d LEDs",
			len(frame), ci.info.NumberOfLED*3, ci.info.NumberOfLED)
	}
	sender, err := ci.realtimeSender()
	if err != nil {
		return 0, err
	}
	token, err := base64.StdEncoding.DecodeString(ci.Token())
	if err != nil {
		return 0, fmt.Errorf("failed to decode session token: %w", err)
	}
	return sender.SendFrame(token, ci.info.NumberOfLED, frame)
}

// ShowRealTimeFrame switches the device to realtime mode if needed and
// sends one frame.
func (ci *ControlInterface) ShowRealTimeFrame(ctx context.Context, frame []byte) error {
	mode, err := ci.GetMode(ctx)
	if err != nil {
		return err
	}
	if mode != ModeRealTime {
		if err := ci.SetMode(ctx, ModeRealTime); err != nil {
			return err
		}
	}
	_, err = ci.SendRealTimeFrame(frame)
	return err
}

// ShowSolidColor holds the whole strip at one color until ctx is done.
func (ci *ControlInterface) ShowSolidColor(ctx context.Context, c color.RGB) error {
	frame := make([]color.RGB, ci.info.NumberOfLED)
	for i := range frame {
		frame[i] = c
	}
	flat := color.Flatten(frame)

	if err := ci.SetMode(ctx, ModeRealTime); err != nil {
		return err
	}
	for {
		if _, err := ci.SendRealTimeFrame(flat); err != nil {
			return err
		}
		if err := sleepCtx(ctx, 100*time.Millisecond); err != nil {
			return err
		}
	}
}

// ShineLeds runs the glow animation at the target frame rate until ctx is
// done. Configuration is validated before any network activity.
func (ci *ControlInterface) ShineLeds(ctx context.Context, cfg glow.Config, frameRate float64, rng *rand.Rand) error {
	period := framePeriod(frameRate)
	engine, err := glow.NewEngine(ci.info.NumberOfLED, cfg, rng, time.Now())
	if err != nil {
		return err
	}
	if err := ci.SetMode(ctx, ModeRealTime); err != nil {
		return err
	}

	for {
		tickStart := time.Now()
		frame := engine.Tick(tickStart, period)
		if _, err := ci.SendRealTimeFrame(frame); err != nil {
			return err
		}
		if err := sleepRemainder(ctx, tickStart, period); err != nil {
			return err
		}
	}
}

// ShowColorWheel rotates the full hue spectrum across the strip. step is
// the fraction of the strip the pattern advances per frame.
func (ci *ControlInterface) ShowColorWheel(ctx context.Context, step, frameRate, lightness float64, model *color.Model) error {
	period := framePeriod(frameRate)
	leds := ci.info.NumberOfLED
	if err := ci.SetMode(ctx, ModeRealTime); err != nil {
		return err
	}

	offset := 0.0
	for {
		tickStart := time.Now()
		frame := color.Spectrum(leds, int(offset*float64(leds)), lightness, model)
		if _, err := ci.SendRealTimeFrame(color.Flatten(frame)); err != nil {
			return err
		}
		offset += step
		for offset >= 1.0 {
			offset -= 1.0
		}
		if err := sleepRemainder(ctx, tickStart, period); err != nil {
			return err
		}
	}
}

// RunMeander drifts the whole strip through a continuously changing
// ambient color until ctx is done.
func (ci *ControlInterface) RunMeander(ctx context.Context, m *color.Meander, model *color.Model, frameRate float64) error {
	period := framePeriod(frameRate)
	leds := ci.info.NumberOfLED
	frame := make([]color.RGB, leds)

	if err := ci.SetMode(ctx, ModeRealTime); err != nil {
		return err
	}
	for {
		tickStart := time.Now()
		m.Step()
		c := m.Color(model)
		for i := range frame {
			frame[i] = c
		}
		if _, err := ci.SendRealTimeFrame(color.Flatten(frame)); err != nil {
			return err
		}
		if err := sleepRemainder(ctx, tickStart, period); err != nil {
			return err
		}
	}
}

func framePeriod(frameRate float64) time.Duration {
	if frameRate <= 0 {
		frameRate = 10
	}
	return time.Duration(float64(time.Second) / frameRate)
}

// sleepRemainder sleeps whatever is left of the tick budget, best effort.
func sleepRemainder(ctx context.Context, tickStart time.Time, period time.Duration) error {
	remaining := period - time.Since(tickStart)
	if remaining <= 0 {
		return ctx.Err()
	}
	return sleepCtx(ctx, remaining)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
