// Package interactive provides the interactive command-line console for
// glow-control.
package interactive

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/glow-control/glow-go/internal/config"
	"github.com/glow-control/glow-go/pkg/color"
	"github.com/glow-control/glow-go/pkg/glow"
	"github.com/glow-control/glow-go/pkg/xled"
)

// Console handles the interactive mode: a readline loop where each effect
// command runs until the next ^C, then returns to the prompt.
type Console struct {
	ci    *xled.ControlInterface
	model *color.Model
	cfg   *config.Config
	rng   *rand.Rand
	rl    *readline.Instance
}

// New creates a console bound to an authenticated session.
func New(ci *xled.ControlInterface, model *color.Model, cfg *config.Config) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "glow> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Console{
		ci:    ci,
		model: model,
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		rl:    rl,
	}, nil
}

// Stdout returns a writer that coordinates with the readline prompt. Use it
// for log output to avoid interfering with input.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Run starts the interactive command loop and blocks until exit or ctx is
// done.
func (c *Console) Run(ctx context.Context) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "info":
			c.cmdInfo()

		case "mode":
			c.cmdMode(ctx, args)

		case "on":
			c.report(c.ci.TurnOn(ctx))

		case "off":
			c.report(c.ci.TurnOff(ctx))

		case "brightness", "bri":
			c.cmdBrightness(ctx, args)

		case "timer":
			c.cmdTimer(ctx, args)

		case "solid":
			c.runEffect(ctx, func(ctx context.Context) error {
				return c.cmdSolid(ctx, args)
			})

		case "glow":
			c.runEffect(ctx, func(ctx context.Context) error {
				return c.cmdGlow(ctx, args)
			})

		case "wheel":
			c.runEffect(ctx, func(ctx context.Context) error {
				leds := c.ci.Info().NumberOfLED
				return c.ci.ShowColorWheel(ctx, 1.0/float64(leds), c.cfg.Realtime.FrameRate, 0, c.model)
			})

		case "meander":
			c.runEffect(ctx, func(ctx context.Context) error {
				return c.cmdMeander(ctx, args)
			})

		case "reauth":
			if c.ci.Reauthenticate(ctx) {
				fmt.Fprintln(c.rl.Stdout(), "Session renewed.")
			} else {
				fmt.Fprintln(c.rl.Stdout(), "Reauthentication failed.")
			}

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command %q. Type 'help' for commands.\n", cmd)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `Commands:
  info                          - Show the device's self-description
  mode [name]                   - Show or set the operating mode
  on | off                      - Turn the device on or off
  brightness [0-100]            - Show or set the output brightness
  timer <on> <off>              - Program the on/off timer (HH:MM[:SS])
  solid <r> <g> <b>             - Hold a solid color (^C stops)
  glow [<r,g,b> ...]            - Run the glow animation (^C stops)
  wheel                         - Rotate the hue spectrum (^C stops)
  meander [sphere|cylinder|surface] - Drift ambient colors (^C stops)
  reauth                        - Renew the session token
  quit                          - Exit`)
}

func (c *Console) report(err error) {
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
	}
}

// runEffect runs a blocking effect until the user interrupts it with ^C.
// Lines typed while the effect runs are discarded.
func (c *Console) runEffect(ctx context.Context, effect func(context.Context) error) {
	effectCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- effect(effectCtx) }()

	fmt.Fprintln(c.rl.Stdout(), "Running, press ^C to stop.")
	for {
		_, err := c.rl.Readline()
		if err != nil { // interrupt or EOF stops the effect
			cancel()
			break
		}
		select {
		case err := <-done:
			// The effect ended on its own, typically a send failure.
			if err != nil {
				fmt.Fprintf(c.rl.Stdout(), "Effect failed: %v\n", err)
			}
			return
		default:
		}
	}

	if err := <-done; err != nil && effectCtx.Err() == nil {
		fmt.Fprintf(c.rl.Stdout(), "Effect failed: %v\n", err)
		return
	}
	fmt.Fprintln(c.rl.Stdout(), "Stopped.")
}

func (c *Console) cmdInfo() {
	info := c.ci.Info()
	out := c.rl.Stdout()
	fmt.Fprintf(out, "Product:  %s (%s)\n", info.ProductName, info.ProductCode)
	fmt.Fprintf(out, "Name:     %s\n", info.DeviceName)
	fmt.Fprintf(out, "MAC:      %s\n", info.MAC)
	fmt.Fprintf(out, "LEDs:     %d (%s)\n", info.NumberOfLED, info.LEDProfile)
	fmt.Fprintf(out, "Uptime:   %s\n", info.Uptime.Duration())
}

func (c *Console) cmdMode(ctx context.Context, args []string) {
	if len(args) == 0 {
		mode, err := c.ci.GetMode(ctx)
		if err != nil {
			c.report(err)
			return
		}
		fmt.Fprintln(c.rl.Stdout(), mode)
		return
	}
	mode, err := xled.ParseDeviceMode(args[0])
	if err != nil {
		c.report(err)
		return
	}
	c.report(c.ci.SetMode(ctx, mode))
}

func (c *Console) cmdBrightness(ctx context.Context, args []string) {
	if len(args) == 0 {
		resp, err := c.ci.GetBrightness(ctx)
		if err != nil {
			c.report(err)
			return
		}
		fmt.Fprintf(c.rl.Stdout(), "%d%% (%s)\n", resp.Value, resp.Mode)
		return
	}
	value, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid brightness %q\n", args[0])
		return
	}
	c.report(c.ci.SetBrightness(ctx, value))
}

func (c *Console) cmdTimer(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: timer <on HH:MM> <off HH:MM>")
		return
	}
	c.report(c.ci.SetFormattedTimer(ctx, args[0], args[1]))
}

func (c *Console) cmdSolid(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: solid <r> <g> <b>")
	}
	rgb, err := parseRGB(strings.Join(args, ","))
	if err != nil {
		return err
	}
	return c.ci.ShowSolidColor(ctx, rgb)
}

func (c *Console) cmdGlow(ctx context.Context, args []string) error {
	palette := make([]color.RGB, 0, len(args))
	for _, arg := range args {
		rgb, err := parseRGB(arg)
		if err != nil {
			return err
		}
		palette = append(palette, rgb)
	}
	if len(palette) == 0 {
		palette = []color.RGB{{R: 255, G: 120, B: 20}}
	}
	return c.ci.ShineLeds(ctx, glow.Config{
		TimeBetweenGlowStart: c.cfg.Glow.TimeBetweenStart.Duration(),
		RiseTime:             c.cfg.Glow.RiseTime.Duration(),
		FadeTime:             c.cfg.Glow.FadeTime.Duration(),
		Colors:               palette,
		NumStartSimultaneous: c.cfg.Glow.Simultaneous,
	}, c.cfg.Realtime.FrameRate, c.rng)
}

func (c *Console) cmdMeander(ctx context.Context, args []string) error {
	style := color.MeanderCylinder
	if len(args) > 0 {
		switch args[0] {
		case "sphere":
			style = color.MeanderSphere
		case "cylinder":
			style = color.MeanderCylinder
		case "surface":
			style = color.MeanderSurface
		default:
			return fmt.Errorf("unknown meander style %q", args[0])
		}
	}
	m := color.NewMeander(style, 0.01, 0.3, [3]float64{0.5, 0, 0}, c.rng)
	return c.ci.RunMeander(ctx, m, c.model, c.cfg.Realtime.FrameRate)
}

// parseRGB parses "r,g,b" with each component in 0..255.
func parseRGB(s string) (color.RGB, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return color.RGB{}, fmt.Errorf("invalid color %q, want r,g,b", s)
	}
	var out [3]uint8
	for i, part := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
		if err != nil {
			return color.RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		out[i] = uint8(v)
	}
	return color.RGB{R: out[0], G: out[1], B: out[2]}, nil
}
