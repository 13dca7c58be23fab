package xled

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/glow-control/glow-go/pkg/movie"
)

// DeviceInfo is the device's self-description from the gestalt endpoint.
// Some fields are static identity (MAC, hardware id, LED count), some are
// volatile measurements (uptime, measured frame rate); SameDevice ignores
// the volatile ones.
type DeviceInfo struct {
	ProductName       string        `json:"product_name"`
	HardwareVersion   string        `json:"hardware_version"`
	BytesPerLED       int           `json:"bytes_per_led"`
	HardwareID        string        `json:"hw_id"`
	FlashSize         int           `json:"flash_size"`
	LEDType           int           `json:"led_type"`
	ProductCode       string        `json:"product_code"`
	FirmwareFamily    string        `json:"fw_family"`
	DeviceName        string        `json:"device_name"`
	Uptime            Milliseconds  `json:"uptime"`
	MAC               string        `json:"mac"`
	UUID              string        `json:"uuid"`
	MaxSupportedLED   int           `json:"max_supported_led"`
	NumberOfLED       int           `json:"number_of_led"`
	LEDProfile        movie.Profile `json:"led_profile"`
	FrameRate         float64       `json:"frame_rate"`
	MeasuredFrameRate float64       `json:"measured_frame_rate"`
	MovieCapacity     int           `json:"movie_capacity"`
	MaxMovies         int           `json:"max_movies"`
	WireType          int           `json:"wire_type"`
	Copyright         string        `json:"copyright"`
	Code              ResponseCode  `json:"code"`
}

// SameDevice reports whether other describes the same physical device,
// ignoring volatile fields (uptime, measured frame rate).
func (d *DeviceInfo) SameDevice(other *DeviceInfo) bool {
	return d.MAC == other.MAC &&
		d.UUID == other.UUID &&
		d.HardwareID == other.HardwareID &&
		d.ProductCode == other.ProductCode &&
		d.NumberOfLED == other.NumberOfLED &&
		d.LEDProfile == other.LEDProfile
}

// Milliseconds decodes the firmware's string-encoded millisecond durations.
type Milliseconds time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (m *Milliseconds) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	ms, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid millisecond duration %q: %w", s, err)
	}
	*m = Milliseconds(time.Duration(ms) * time.Millisecond)
	return nil
}

// Duration returns the underlying time.Duration.
func (m Milliseconds) Duration() time.Duration {
	return time.Duration(m)
}

// ModeResponse is the body of the mode endpoint.
type ModeResponse struct {
	Mode string       `json:"mode"`
	Code ResponseCode `json:"code"`
}

// TimerResponse is the body of the timer endpoint. Times are seconds after
// midnight; -1 disables.
type TimerResponse struct {
	TimeNow int          `json:"time_now"`
	TimeOff int          `json:"time_off"`
	TimeOn  int          `json:"time_on"`
	Code    ResponseCode `json:"code"`
}

// PlaylistEntry is one movie reference inside a playlist.
type PlaylistEntry struct {
	ID       int    `json:"id"`
	UniqueID string `json:"unique_id"`
	Name     string `json:"name"`
	Duration int    `json:"duration"`
	Handle   int    `json:"handle"`
}

// PlaylistResponse is the body of the playlist endpoint.
type PlaylistResponse struct {
	Entries  []PlaylistEntry `json:"entries"`
	UniqueID string          `json:"unique_id"`
	Name     string          `json:"name"`
	Code     ResponseCode    `json:"code"`
}

// LEDCoordinate is one LED's physical position from the layout endpoint.
type LEDCoordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// LayoutResponse is the body of the layout endpoint.
type LayoutResponse struct {
	Source      string          `json:"source"`
	Synthesized bool            `json:"synthesized"`
	UUID        string          `json:"uuid"`
	Coordinates []LEDCoordinate `json:"coordinates"`
	Code        ResponseCode    `json:"code"`
}

// BrightnessResponse is the body of the brightness endpoint.
type BrightnessResponse struct {
	Mode  string       `json:"mode"`
	Value int          `json:"value"`
	Code  ResponseCode `json:"code"`
}

// moviesResponse is the body of the movies endpoint; only capacity is
// consumed here.
type moviesResponse struct {
	AvailableFrames int          `json:"available_frames"`
	Code            ResponseCode `json:"code"`
}

// uploadResponse is the body returned by the full-movie upload endpoint.
type uploadResponse struct {
	ID   int          `json:"id"`
	Code ResponseCode `json:"code"`
}

// gestaltProbe is the unauthenticated subset of DeviceInfo discovery needs
// before a session exists.
type gestaltProbe struct {
	MAC        string `json:"mac"`
	DeviceName string `json:"device_name"`
}
