// Command glow-control drives network-attached addressable LED light
// strings: discovery, authentication, realtime effects and movie upload.
//
// Usage:
//
//	glow-control [flags] <command> [args]
//
// Flags:
//
//	-config string     Configuration file path
//	-host string       Device address (skips discovery)
//	-mac string        Device MAC address, required with -host
//	-log-level string  Log level: debug, info, warn, error (default "info")
//	-pretty            Human-readable log output
//	-interactive       Start the interactive console after connecting
//
// Commands:
//
//	discover                     - Scan the network for devices
//	info                         - Print the device's self-description
//	mode [name]                  - Show or set the operating mode
//	on | off                     - Turn the device on or off
//	brightness [0-100]           - Show or set the output brightness
//	timer <on> <off>             - Program the on/off timer (HH:MM[:SS])
//	solid <r> <g> <b>            - Hold a solid color via realtime frames
//	glow <r,g,b> [<r,g,b> ...]   - Run the glow animation with a palette
//	wheel                        - Rotate the hue spectrum across the strip
//	meander [sphere|cylinder|surface] - Drift through ambient colors
//	upload <movie.txt>           - Upload a movie file and play it
//
// Examples:
//
//	# Find devices on the local network
//	glow-control discover
//
//	# Paint a known device red
//	glow-control -host 192.168.1.50 -mac 5c:cf:7f:12:34:56 solid 255 0 0
//
//	# Run the glow animation with a two-color palette
//	glow-control -host 192.168.1.50 -mac 5c:cf:7f:12:34:56 glow 255,0,0 0,0,255
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/glow-control/glow-go/cmd/glow-control/interactive"
	"github.com/glow-control/glow-go/internal/config"
	"github.com/glow-control/glow-go/pkg/color"
	"github.com/glow-control/glow-go/pkg/discovery"
	"github.com/glow-control/glow-go/pkg/glow"
	"github.com/glow-control/glow-go/pkg/movie"
	"github.com/glow-control/glow-go/pkg/rt"
	"github.com/glow-control/glow-go/pkg/xled"
)

type options struct {
	ConfigFile  string
	Host        string
	MAC         string
	LogLevel    string
	Pretty      bool
	Interactive bool
}

var opts options

var xledHTTPClient = http.Client{Timeout: xled.DefaultHTTPTimeout}

func init() {
	flag.StringVar(&opts.ConfigFile, "config", "", "Configuration file path")
	flag.StringVar(&opts.Host, "host", "", "Device address (skips discovery)")
	flag.StringVar(&opts.MAC, "mac", "", "Device MAC address, required with -host")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&opts.Pretty, "pretty", false, "Human-readable log output")
	flag.BoolVar(&opts.Interactive, "interactive", false, "Start the interactive console after connecting")
}

func main() {
	flag.Parse()

	cfg := config.Default()
	if opts.ConfigFile != "" {
		loaded, err := config.Load(opts.ConfigFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if opts.Host != "" {
		cfg.Device.Host = opts.Host
	}
	if opts.MAC != "" {
		cfg.Device.MAC = opts.MAC
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Pretty {
		cfg.Log.Pretty = true
	}

	setupLogging(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, flag.Args()); err != nil {
		if ctx.Err() != nil {
			log.Info().Msg("interrupted")
			return
		}
		log.Fatal().Err(err).Msg("command failed")
	}
}

func setupLogging(cfg config.LogConfig) {
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05.000",
		})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	switch cfg.Level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 && !opts.Interactive {
		flag.Usage()
		return fmt.Errorf("no command given")
	}

	if len(args) > 0 && args[0] == "discover" {
		return cmdDiscover(ctx, cfg)
	}

	ci, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer ci.Close()

	model, err := buildModel(cfg)
	if err != nil {
		return err
	}

	if opts.Interactive {
		console, err := interactive.New(ci, model, cfg)
		if err != nil {
			return err
		}
		log.Logger = log.Output(console.Stdout())
		console.Run(ctx)
		return nil
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	switch args[0] {
	case "info":
		return cmdInfo(ci)
	case "mode":
		return cmdMode(ctx, ci, args[1:])
	case "on":
		return ci.TurnOn(ctx)
	case "off":
		return ci.TurnOff(ctx)
	case "brightness":
		return cmdBrightness(ctx, ci, args[1:])
	case "timer":
		return cmdTimer(ctx, ci, args[1:])
	case "solid":
		return cmdSolid(ctx, ci, args[1:])
	case "glow":
		return cmdGlow(ctx, ci, cfg, rng, args[1:])
	case "wheel":
		return ci.ShowColorWheel(ctx, 1.0/float64(ci.Info().NumberOfLED), cfg.Realtime.FrameRate, 0, model)
	case "meander":
		return cmdMeander(ctx, ci, model, cfg, rng, args[1:])
	case "upload":
		return cmdUpload(ctx, ci, args[1:])
	}
	return fmt.Errorf("unknown command %q", args[0])
}

// connect resolves the target device, via configuration or a network scan,
// and opens an authenticated session.
func connect(ctx context.Context, cfg *config.Config) (*xled.ControlInterface, error) {
	host, mac := cfg.Device.Host, cfg.Device.MAC

	if host == "" {
		log.Info().Msg("no device configured, scanning the network")
		devices, err := scan(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if len(devices) == 0 {
			return nil, fmt.Errorf("no devices found")
		}
		host = devices[0].IP.String()
		mac = devices[0].MAC
		log.Info().Stringer("device", devices[0]).Msg("using first discovered device")
	} else if mac == "" {
		// The MAC seeds the handshake; read it from the device itself.
		probe, err := xled.FetchGestalt(ctx, &xledHTTPClient, host)
		if err != nil {
			return nil, fmt.Errorf("failed to probe %s for its MAC: %w", host, err)
		}
		mac = probe.MAC
	}

	ci, err := xled.New(ctx, host, mac, log.Logger)
	if err != nil {
		return nil, err
	}
	if cfg.Realtime.Version >= 1 && cfg.Realtime.Version <= 3 {
		ci.SetRealtimeVersion(rt.Version(cfg.Realtime.Version))
	}
	return ci, nil
}

func scan(ctx context.Context, cfg *config.Config) ([]discovery.DeviceIdentifier, error) {
	finder := discovery.NewFinder(discovery.Config{
		Timeout: cfg.Discovery.Timeout.Duration(),
		Logger:  &log.Logger,
	})
	return finder.Scan(ctx)
}

func buildModel(cfg *config.Config) (*color.Model, error) {
	params, err := cfg.Color.ModelParams()
	if err != nil {
		return nil, err
	}
	return color.NewModel(params)
}

func cmdDiscover(ctx context.Context, cfg *config.Config) error {
	devices, err := scan(ctx, cfg)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		fmt.Println("No devices found.")
		return nil
	}
	for _, d := range devices {
		fmt.Println(d)
	}
	return nil
}

func cmdInfo(ci *xled.ControlInterface) error {
	info := ci.Info()
	fmt.Printf("Product:   %s (%s)\n", info.ProductName, info.ProductCode)
	fmt.Printf("Name:      %s\n", info.DeviceName)
	fmt.Printf("MAC:       %s\n", info.MAC)
	fmt.Printf("LEDs:      %d (%s)\n", info.NumberOfLED, info.LEDProfile)
	fmt.Printf("Firmware:  %s\n", info.FirmwareFamily)
	fmt.Printf("Uptime:    %s\n", info.Uptime.Duration())
	return nil
}

func cmdMode(ctx context.Context, ci *xled.ControlInterface, args []string) error {
	if len(args) == 0 {
		mode, err := ci.GetMode(ctx)
		if err != nil {
			return err
		}
		fmt.Println(mode)
		return nil
	}
	mode, err := xled.ParseDeviceMode(args[0])
	if err != nil {
		return err
	}
	return ci.SetMode(ctx, mode)
}

func cmdBrightness(ctx context.Context, ci *xled.ControlInterface, args []string) error {
	if len(args) == 0 {
		resp, err := ci.GetBrightness(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%d%% (%s)\n", resp.Value, resp.Mode)
		return nil
	}
	value, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid brightness %q", args[0])
	}
	return ci.SetBrightness(ctx, value)
}

func cmdTimer(ctx context.Context, ci *xled.ControlInterface, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: timer <on HH:MM> <off HH:MM>")
	}
	return ci.SetFormattedTimer(ctx, args[0], args[1])
}

func cmdSolid(ctx context.Context, ci *xled.ControlInterface, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: solid <r> <g> <b>")
	}
	c, err := parseRGB(strings.Join(args, ","))
	if err != nil {
		return err
	}
	log.Info().Uint8("r", c.R).Uint8("g", c.G).Uint8("b", c.B).Msg("holding solid color, ^C to stop")
	return ci.ShowSolidColor(ctx, c)
}

func cmdGlow(ctx context.Context, ci *xled.ControlInterface, cfg *config.Config, rng *rand.Rand, args []string) error {
	palette := make([]color.RGB, 0, len(args))
	for _, arg := range args {
		c, err := parseRGB(arg)
		if err != nil {
			return err
		}
		palette = append(palette, c)
	}
	if len(palette) == 0 {
		palette = []color.RGB{{R: 255, G: 120, B: 20}} // warm candle default
	}

	glowCfg := glow.Config{
		TimeBetweenGlowStart: cfg.Glow.TimeBetweenStart.Duration(),
		RiseTime:             cfg.Glow.RiseTime.Duration(),
		FadeTime:             cfg.Glow.FadeTime.Duration(),
		Colors:               palette,
		NumStartSimultaneous: cfg.Glow.Simultaneous,
	}
	log.Info().Int("colors", len(palette)).Msg("running glow animation, ^C to stop")
	return ci.ShineLeds(ctx, glowCfg, cfg.Realtime.FrameRate, rng)
}

func cmdMeander(ctx context.Context, ci *xled.ControlInterface, model *color.Model, cfg *config.Config, rng *rand.Rand, args []string) error {
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
	m := color.NewMeander(style, 0.01, 0.3, [3]float64{0.5, 0, 0}, rng)
	log.Info().Msg("running color meander, ^C to stop")
	return ci.RunMeander(ctx, m, model, cfg.Realtime.FrameRate)
}

func cmdUpload(ctx context.Context, ci *xled.ControlInterface, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: upload <movie.txt>")
	}
	profile := ci.Info().LEDProfile
	if profile == "" {
		profile = movie.ProfileRGB
	}
	m, err := movie.Load(args[0], profile)
	if err != nil {
		return err
	}
	id, err := ci.UploadMovie(ctx, m, profile, true)
	if err != nil {
		return err
	}
	fmt.Printf("Uploaded movie %d (%d frames at %g fps)\n", id, len(m.Frames), m.FPS)
	return ci.SetMode(ctx, xled.ModeMovie)
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
