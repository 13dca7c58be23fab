package discovery

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/glow-control/glow-go/pkg/xled"
)

const (
	// DefaultTimeout bounds a scan when the caller does not choose one.
	DefaultTimeout = 5 * time.Second

	maxDatagram = 1024
)

// IdentifyFunc completes the identity of a freshly discovered device:
// fetch its self-description and authenticate. The default implementation
// talks to the device's REST interface; tests substitute their own.
type IdentifyFunc func(ctx context.Context, resp Response) (DeviceIdentifier, error)

// Config carries scan parameters. The zero value scans with defaults.
type Config struct {
	// Timeout is how long the scan listens for replies after broadcasting
	// the probe. Defaults to DefaultTimeout.
	Timeout time.Duration

	// Port is the device discovery port. Defaults to the protocol port.
	Port int

	// Broadcast is the probe destination. Defaults to 255.255.255.255.
	Broadcast netip.Addr

	// Identify resolves a reply into a full identity record. Defaults to
	// querying the device's REST interface and authenticating.
	Identify IdentifyFunc

	Logger *zerolog.Logger
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.Port == 0 {
		out.Port = Port
	}
	if !out.Broadcast.IsValid() {
		out.Broadcast = netip.AddrFrom4([4]byte{255, 255, 255, 255})
	}
	if out.Identify == nil {
		out.Identify = identifyViaREST
	}
	if out.Logger == nil {
		logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		out.Logger = &logger
	}
	return out
}

// Finder runs repeated scans and remembers which devices it has already
// seen, so long-running callers can tell new devices from retransmissions
// across scans.
type Finder struct {
	cfg   Config
	log   zerolog.Logger
	known map[Key]DeviceIdentifier
}

// NewFinder builds a Finder. cfg may be the zero value.
func NewFinder(cfg Config) *Finder {
	cfg = cfg.withDefaults()
	return &Finder{
		cfg:   cfg,
		log:   cfg.Logger.With().Str("component", "discovery").Logger(),
		known: make(map[Key]DeviceIdentifier),
	}
}

// Known returns the devices seen across all scans so far.
func (f *Finder) Known() []DeviceIdentifier {
	out := make([]DeviceIdentifier, 0, len(f.known))
	for _, d := range f.known {
		out = append(out, d)
	}
	return out
}

// Scan broadcasts one probe and collects replies until the deadline. It
// returns the devices newly identified during this scan; devices already
// known from earlier scans are logged and skipped. A device that replies
// but fails identification is dropped from the result, not fatal to the
// scan.
func (f *Finder) Scan(ctx context.Context) ([]DeviceIdentifier, error) {
	log := f.log.With().Str("scan_id", uuid.NewString()).Logger()

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, fmt.Errorf("failed to open discovery socket: %w", err)
	}
	defer conn.Close()

	dest := &net.UDPAddr{IP: f.cfg.Broadcast.AsSlice(), Port: f.cfg.Port}
	if _, err := conn.WriteToUDP(ProbeMessage(), dest); err != nil {
		return nil, fmt.Errorf("failed to broadcast discovery probe: %w", err)
	}
	log.Debug().Stringer("dest", dest).Msg("probe broadcast")

	deadline := time.Now().Add(f.cfg.Timeout)
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	var found []DeviceIdentifier
	seen := make(map[Key]struct{})
	buf := make([]byte, maxDatagram)
	for time.Now().Before(deadline) {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				break
			}
			log.Warn().Err(err).Msg("discovery receive failed, ending scan")
			break
		}
		resp, ok := DecodeResponse(buf[:n])
		if !ok {
			continue
		}
		key := Key{IP: resp.IP, DeviceID: resp.DeviceID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if _, rediscovered := f.known[key]; rediscovered {
			log.Debug().Stringer("ip", resp.IP).Str("device_id", resp.DeviceID).
				Msg("rediscovered known device")
			continue
		}

		device, err := f.cfg.Identify(ctx, resp)
		if err != nil {
			log.Warn().Err(err).Stringer("ip", resp.IP).Str("device_id", resp.DeviceID).
				Msg("device replied but identification failed")
			continue
		}
		log.Info().Stringer("device", device).Msg("device discovered")
		f.known[key] = device
		found = append(found, device)
	}
	return found, nil
}

// identifyViaREST reads the device's unauthenticated gestalt for the MAC,
// then runs the full handshake to obtain a reusable token and LED count.
func identifyViaREST(ctx context.Context, resp Response) (DeviceIdentifier, error) {
	host := resp.IP.String()
	client := &http.Client{Timeout: xled.DefaultHTTPTimeout}

	probe, err := xled.FetchGestalt(ctx, client, host)
	if err != nil {
		return DeviceIdentifier{}, fmt.Errorf("gestalt probe of %s failed: %w", host, err)
	}

	ci, err := xled.New(ctx, host, probe.MAC, zerolog.Nop())
	if err != nil {
		return DeviceIdentifier{}, fmt.Errorf("handshake with %s failed: %w", host, err)
	}
	defer ci.Close()

	return DeviceIdentifier{
		IP:         resp.IP,
		DeviceID:   resp.DeviceID,
		MAC:        probe.MAC,
		DeviceName: ci.Info().DeviceName,
		LEDCount:   ci.Info().NumberOfLED,
		Token:      ci.Token(),
	}, nil
}
