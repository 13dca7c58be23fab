package xled

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Device REST paths.
const (
	gestaltPath     = "/xled/v1/gestalt"
	modePath        = "/xled/v1/led/mode"
	timerPath       = "/xled/v1/timer"
	playlistPath    = "/xled/v1/playlist"
	layoutPath      = "/xled/v1/led/layout/full"
	brightnessPath  = "/xled/v1/led/out/brightness"
	moviesPath      = "/xled/v1/led/movies"
	movieUploadPath = "/xled/v1/led/movie/full"
)

// GestaltProbe is the identity subset of the gestalt endpoint readable
// without authentication. Discovery uses it to learn the MAC needed for the
// handshake.
type GestaltProbe struct {
	MAC        string
	DeviceName string
}

// FetchGestalt queries a device's gestalt endpoint without a session.
func FetchGestalt(ctx context.Context, client *http.Client, host string) (*GestaltProbe, error) {
	url := fmt.Sprintf("http://%s%s", host, gestaltPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gestalt request to %s failed: %w", host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s returned %s", ErrUnexpectedStatus, gestaltPath, resp.Status)
	}

	var probe gestaltProbe
	if err := json.NewDecoder(resp.Body).Decode(&probe); err != nil {
		return nil, fmt.Errorf("failed to decode gestalt response: %w", err)
	}
	return &GestaltProbe{MAC: probe.MAC, DeviceName: probe.DeviceName}, nil
}
