package xled

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/glow-control/glow-go/pkg/auth"
	"github.com/glow-control/glow-go/pkg/movie"
	"github.com/glow-control/glow-go/pkg/rt"
)

// Client errors.
var (
	// ErrUnexpectedStatus indicates a non-2xx HTTP response.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrDeviceRejected indicates a 2xx response whose device code was not
	// success.
	ErrDeviceRejected = errors.New("device rejected request")

	// ErrInsufficientCapacity indicates the device cannot store the movie.
	ErrInsufficientCapacity = errors.New("not enough capacity for the movie")
)

// DefaultHTTPTimeout bounds every REST call against the device.
const DefaultHTTPTimeout = 10 * time.Second

// ControlInterface is one authenticated session with a device. The token is
// guarded by a read/write lock: frame sends and REST calls read it,
// Reauthenticate replaces it wholesale. Callers streaming frames while
// reauthenticating are responsible for serializing the two.
type ControlInterface struct {
	host   string
	mac    string
	client *http.Client
	log    zerolog.Logger

	mu    sync.RWMutex
	token string

	info DeviceInfo

	rtMu      sync.Mutex
	sender    *rt.Sender
	rtVersion rt.Version
}

// New authenticates against the device at host and fetches its
// self-description. host is "ip" or "ip:port".
func New(ctx context.Context, host, mac string, logger zerolog.Logger) (*ControlInterface, error) {
	ci := &ControlInterface{
		host:      host,
		mac:       mac,
		client:    &http.Client{Timeout: DefaultHTTPTimeout},
		log:       logger.With().Str("device", host).Str("session_id", uuid.NewString()).Logger(),
		rtVersion: rt.V3,
	}

	token, err := auth.Handshake(ctx, ci.client, host, mac)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	ci.token = token

	info, err := ci.fetchDeviceInfo(ctx)
	if err != nil {
		return nil, err
	}
	ci.info = *info

	ci.log.Debug().
		Str("product", ci.info.ProductName).
		Int("leds", ci.info.NumberOfLED).
		Msg("session established")
	return ci, nil
}

// Host returns the device's network address.
func (ci *ControlInterface) Host() string {
	return ci.host
}

// MAC returns the device's hardware address.
func (ci *ControlInterface) MAC() string {
	return ci.mac
}

// Info returns the device's self-description fetched at session start.
func (ci *ControlInterface) Info() DeviceInfo {
	return ci.info
}

// Token returns the current session token.
func (ci *ControlInterface) Token() string {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	return ci.token
}

// Reauthenticate re-runs the full handshake and atomically replaces the
// stored token on success. It reports success rather than propagating the
// error so callers can retry independently of an in-flight stream.
func (ci *ControlInterface) Reauthenticate(ctx context.Context) bool {
	token, err := auth.Handshake(ctx, ci.client, ci.host, ci.mac)
	if err != nil {
		ci.log.Warn().Err(err).Msg("reauthentication failed")
		return false
	}
	ci.mu.Lock()
	ci.token = token
	ci.mu.Unlock()
	return true
}

// SetRealtimeVersion selects the realtime wire version before streaming
// starts. The default is V3.
func (ci *ControlInterface) SetRealtimeVersion(v rt.Version) {
	ci.rtMu.Lock()
	defer ci.rtMu.Unlock()
	ci.rtVersion = v
}

// Close releases the realtime socket if one was opened.
func (ci *ControlInterface) Close() error {
	ci.rtMu.Lock()
	defer ci.rtMu.Unlock()
	if ci.sender != nil {
		err := ci.sender.Close()
		ci.sender = nil
		return err
	}
	return nil
}

func (ci *ControlInterface) url(path string) string {
	return fmt.Sprintf("http://%s%s", ci.host, path)
}

// do performs an authenticated request and decodes the JSON body into out
// when out is non-nil. Non-2xx statuses are protocol errors.
func (ci *ControlInterface) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, ci.url(path), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set(auth.TokenHeader, ci.Token())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ci.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s returned %s", ErrUnexpectedStatus, method, path, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", path, err)
		}
	}
	return nil
}

func checkCode(path string, code ResponseCode) error {
	if !code.IsOK() {
		return fmt.Errorf("%w: %s returned %d (%s)", ErrDeviceRejected, path, int(code), code)
	}
	return nil
}

func (ci *ControlInterface) fetchDeviceInfo(ctx context.Context) (*DeviceInfo, error) {
	var info DeviceInfo
	if err := ci.do(ctx, http.MethodGet, gestaltPath, nil, &info); err != nil {
		return nil, fmt.Errorf("failed to fetch device info: %w", err)
	}
	return &info, nil
}

// GetMode returns the device's current operating mode.
func (ci *ControlInterface) GetMode(ctx context.Context) (DeviceMode, error) {
	var resp ModeResponse
	if err := ci.do(ctx, http.MethodGet, modePath, nil, &resp); err != nil {
		return "", err
	}
	if err := checkCode(modePath, resp.Code); err != nil {
		return "", err
	}
	return ParseDeviceMode(resp.Mode)
}

// SetMode switches the device's operating mode.
func (ci *ControlInterface) SetMode(ctx context.Context, mode DeviceMode) error {
	body, err := json.Marshal(map[string]string{"mode": string(mode)})
	if err != nil {
		return err
	}
	var resp struct {
		Code ResponseCode `json:"code"`
	}
	if err := ci.do(ctx, http.MethodPost, modePath, body, &resp); err != nil {
		return err
	}
	return checkCode(modePath, resp.Code)
}

// TurnOn switches the device out of off mode, defaulting to movie playback.
func (ci *ControlInterface) TurnOn(ctx context.Context) error {
	mode, err := ci.GetMode(ctx)
	if err != nil {
		return err
	}
	if mode != ModeOff {
		return nil
	}
	return ci.SetMode(ctx, ModeMovie)
}

// TurnOff switches the device off.
func (ci *ControlInterface) TurnOff(ctx context.Context) error {
	return ci.SetMode(ctx, ModeOff)
}

// GetTimer returns the device's on/off timer.
func (ci *ControlInterface) GetTimer(ctx context.Context) (*TimerResponse, error) {
	var resp TimerResponse
	if err := ci.do(ctx, http.MethodGet, timerPath, nil, &resp); err != nil {
		return nil, err
	}
	if err := checkCode(timerPath, resp.Code); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetTimer programs the on/off timer with seconds after midnight.
func (ci *ControlInterface) SetTimer(ctx context.Context, timeOn, timeOff int) error {
	body, err := json.Marshal(map[string]int{"time_on": timeOn, "time_off": timeOff})
	if err != nil {
		return err
	}
	var resp struct {
		Code ResponseCode `json:"code"`
	}
	if err := ci.do(ctx, http.MethodPost, timerPath, body, &resp); err != nil {
		return err
	}
	return checkCode(timerPath, resp.Code)
}

// SetFormattedTimer programs the timer from "HH:MM" or "HH:MM:SS" strings.
func (ci *ControlInterface) SetFormattedTimer(ctx context.Context, timeOn, timeOff string) error {
	on, err := parseClockTime(timeOn)
	if err != nil {
		return fmt.Errorf("invalid time_on: %w", err)
	}
	off, err := parseClockTime(timeOff)
	if err != nil {
		return fmt.Errorf("invalid time_off: %w", err)
	}
	return ci.SetTimer(ctx, on, off)
}

// parseClockTime converts "HH:MM[:SS]" into seconds after midnight.
func parseClockTime(s string) (int, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		t, err = time.Parse("15:04", s)
		if err != nil {
			return 0, err
		}
	}
	return t.Hour()*3600 + t.Minute()*60 + t.Second(), nil
}

// GetPlaylist returns the device's playlist.
func (ci *ControlInterface) GetPlaylist(ctx context.Context) (*PlaylistResponse, error) {
	var resp PlaylistResponse
	if err := ci.do(ctx, http.MethodGet, playlistPath, nil, &resp); err != nil {
		return nil, err
	}
	if err := checkCode(playlistPath, resp.Code); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchLayout returns the physical LED coordinates.
func (ci *ControlInterface) FetchLayout(ctx context.Context) (*LayoutResponse, error) {
	var resp LayoutResponse
	if err := ci.do(ctx, http.MethodGet, layoutPath, nil, &resp); err != nil {
		return nil, err
	}
	if err := checkCode(layoutPath, resp.Code); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetBrightness returns the output brightness setting.
func (ci *ControlInterface) GetBrightness(ctx context.Context) (*BrightnessResponse, error) {
	var resp BrightnessResponse
	if err := ci.do(ctx, http.MethodGet, brightnessPath, nil, &resp); err != nil {
		return nil, err
	}
	if err := checkCode(brightnessPath, resp.Code); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetBrightness sets the output brightness as a percentage in [0, 100].
func (ci *ControlInterface) SetBrightness(ctx context.Context, value int) error {
	if value < 0 || value > 100 {
		return fmt.Errorf("brightness %d out of range [0, 100]", value)
	}
	body, err := json.Marshal(map[string]any{"mode": "enabled", "type": "A", "value": value})
	if err != nil {
		return err
	}
	var resp struct {
		Code ResponseCode `json:"code"`
	}
	if err := ci.do(ctx, http.MethodPost, brightnessPath, body, &resp); err != nil {
		return err
	}
	return checkCode(brightnessPath, resp.Code)
}

// MovieCapacity returns how many frames the device can still store.
func (ci *ControlInterface) MovieCapacity(ctx context.Context) (int, error) {
	var resp moviesResponse
	if err := ci.do(ctx, http.MethodGet, moviesPath, nil, &resp); err != nil {
		return 0, err
	}
	if err := checkCode(moviesPath, resp.Code); err != nil {
		return 0, err
	}
	return resp.AvailableFrames, nil
}

// ClearMovies deletes all uploaded movies.
func (ci *ControlInterface) ClearMovies(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, ci.url(moviesPath), nil)
	if err != nil {
		return err
	}
	req.Header.Set(auth.TokenHeader, ci.Token())

	resp, err := ci.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to clear movies: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: DELETE %s returned %s", ErrUnexpectedStatus, moviesPath, resp.Status)
	}
	return nil
}

// UploadMovie pushes a movie to the device and returns its assigned id.
// When force is set, existing movies are cleared first; otherwise the
// upload is refused if the movie exceeds the remaining capacity.
func (ci *ControlInterface) UploadMovie(ctx context.Context, m *movie.Movie, profile movie.Profile, force bool) (int, error) {
	capacity, err := ci.MovieCapacity(ctx)
	if err != nil {
		return 0, err
	}
	if len(m.Frames) > capacity && !force {
		return 0, fmt.Errorf("%w: %d frames, %d available", ErrInsufficientCapacity, len(m.Frames), capacity)
	}
	if force {
		if err := ci.ClearMovies(ctx); err != nil {
			return 0, err
		}
	}

	body := movie.Encode(m.Frames, profile)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ci.url(movieUploadPath), bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set(auth.TokenHeader, ci.Token())
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := ci.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("movie upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: POST %s returned %s", ErrUnexpectedStatus, movieUploadPath, resp.Status)
	}
	var upload uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&upload); err != nil {
		return 0, fmt.Errorf("failed to decode upload response: %w", err)
	}
	if err := checkCode(movieUploadPath, upload.Code); err != nil {
		return 0, err
	}
	ci.log.Info().Int("movie_id", upload.ID).Int("frames", len(m.Frames)).Msg("movie uploaded")
	return upload.ID, nil
}
