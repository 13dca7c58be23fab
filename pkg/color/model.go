package color

import (
	"errors"
	"fmt"
	"math"
)

// RampStyle selects how many anchor colors the hue ramp interpolates
// between. More anchors spread the perceptually distinct hues more evenly
// around the circle.
type RampStyle int

// Hue ramp styles.
const (
	Ramp3 RampStyle = iota
	Ramp4
	Ramp6
	Ramp8
	Ramp10
)

// LightnessPolicy selects how the lightness input maps to channel weights.
type LightnessPolicy int

const (
	// Linear splits lightness into hue and gray weights with a plain
	// two-branch linear rule, without brightness correction.
	Linear LightnessPolicy = iota

	// Equilight solves the weights so perceived brightness tracks the
	// requested lightness linearly despite channel imbalance.
	Equilight
)

// ParseRampStyle parses the user-facing ramp style names ("3col".."10col").
func ParseRampStyle(s string) (RampStyle, error) {
	switch s {
	case "3col":
		return Ramp3, nil
	case "4col":
		return Ramp4, nil
	case "6col":
		return Ramp6, nil
	case "8col":
		return Ramp8, nil
	case "10col":
		return Ramp10, nil
	}
	return 0, fmt.Errorf("invalid ramp style %q", s)
}

// ParseLightnessPolicy parses "linear" or "equilight".
func ParseLightnessPolicy(s string) (LightnessPolicy, error) {
	switch s {
	case "linear":
		return Linear, nil
	case "equilight":
		return Equilight, nil
	}
	return 0, fmt.Errorf("invalid lightness policy %q", s)
}

// ModelParams holds the device calibration parameters for a Model.
type ModelParams struct {
	// Gamma is the device gamma exponent. 1 disables gamma correction.
	Gamma float64

	// Brightness is the perceptual luminance contribution per channel.
	Brightness [3]float64

	// Balance is the physical channel scaling of the device.
	Balance [3]float64

	Style  RampStyle
	Policy LightnessPolicy
}

// DefaultParams returns the calibration for the common warm-white-biased
// RGB string hardware.
func DefaultParams() ModelParams {
	return ModelParams{
		Gamma:      1.0,
		Brightness: [3]float64{0.35, 0.50, 0.15},
		Balance:    [3]float64{0.9, 1.0, 0.6},
		Style:      Ramp8,
		Policy:     Equilight,
	}
}

// Model converts abstract colors into device channel bytes. A Model is
// immutable after construction and safe for concurrent use.
type Model struct {
	gamma      float64
	brightness [3]float64
	balance    [3]float64
	style      RampStyle
	policy     LightnessPolicy
}

// NewModel validates params and builds a Model.
func NewModel(p ModelParams) (*Model, error) {
	if p.Gamma <= 0 {
		return nil, errors.New("gamma must be positive")
	}
	for i, b := range p.Balance {
		if b <= 0 || b > 1 {
			return nil, fmt.Errorf("balance[%d] = %v out of range (0, 1]", i, b)
		}
	}
	for i, b := range p.Brightness {
		if b < 0 {
			return nil, fmt.Errorf("brightness[%d] = %v must not be negative", i, b)
		}
	}
	return &Model{
		gamma:      p.Gamma,
		brightness: p.Brightness,
		balance:    p.Balance,
		style:      p.Style,
		policy:     p.Policy,
	}, nil
}

// DefaultModel returns a Model with DefaultParams.
func DefaultModel() *Model {
	m, err := NewModel(DefaultParams())
	if err != nil {
		panic(err)
	}
	return m
}

// Gamma applies the device gamma transfer to a normalized channel value.
func (m *Model) Gamma(x float64) float64 {
	if m.gamma == 1.0 {
		return x
	}
	return math.Pow(x, m.gamma)
}

// InvGamma applies the inverse device gamma transfer.
func (m *Model) InvGamma(x float64) float64 {
	if m.gamma == 1.0 {
		return x
	}
	return math.Pow(x, 1.0/m.gamma)
}

// SRGBEncode applies the standard sRGB encoding transfer function to a
// linear channel value. It is independent of the device gamma and exists to
// move generic 8-bit image colors into and out of the device's native space.
func SRGBEncode(x float64) float64 {
	if x > 0.0031308 {
		return math.Pow(x, 1.0/2.4)*1.055 - 0.055
	}
	return x * 12.92
}

// SRGBDecode inverts SRGBEncode.
func SRGBDecode(x float64) float64 {
	if x > 0.04045 {
		return math.Pow((x+0.055)/1.055, 2.4)
	}
	return x / 12.92
}

// Brightness returns the perceived brightness of a normalized linear color,
// the weighted channel sum using the brightness-weight vector.
func (m *Model) Brightness(r, g, b float64) float64 {
	return r*m.brightness[0] + g*m.brightness[1] + b*m.brightness[2]
}

// RGBColor encodes normalized linear channel values (0..1) into device
// bytes, applying balance scaling and gamma.
func (m *Model) RGBColor(r, g, b float64) RGB {
	enc := func(c, bal float64) uint8 {
		return clampByte(math.Round(255.0 * bal * m.Gamma(c)))
	}
	return RGB{
		R: enc(r, m.balance[0]),
		G: enc(g, m.balance[1]),
		B: enc(b, m.balance[2]),
	}
}

// ImageToLED converts an 8-bit sRGB image color to device bytes.
func (m *Model) ImageToLED(c RGB) RGB {
	enc := func(v uint8, bal float64) uint8 {
		return clampByte(math.Round(255.0 * bal * m.Gamma(SRGBDecode(float64(v)/255.0))))
	}
	return RGB{
		R: enc(c.R, m.balance[0]),
		G: enc(c.G, m.balance[1]),
		B: enc(c.B, m.balance[2]),
	}
}

// LEDToImage converts device bytes back to an 8-bit sRGB image color.
func (m *Model) LEDToImage(c RGB) RGB {
	enc := func(v uint8, bal float64) uint8 {
		return clampByte(math.Round(255.0 * SRGBEncode(m.InvGamma(float64(v)/(bal*255.0)))))
	}
	return RGB{
		R: enc(c.R, m.balance[0]),
		G: enc(c.G, m.balance[1]),
		B: enc(c.B, m.balance[2]),
	}
}

// hueRamp returns the N+1 anchor positions in [0, 1] for the model's ramp
// style. The positions are uneven on purpose: they compress hue regions the
// hardware renders poorly and stretch the ones it renders well.
func (m *Model) hueRamp() [7]float64 {
	switch m.style {
	case Ramp3:
		return [7]float64{0, 1.0 / 6, 2.0 / 6, 3.0 / 6, 4.0 / 6, 5.0 / 6, 1}
	case Ramp4:
		return [7]float64{0, 1.0 / 8, 1.0 / 4, 2.0 / 4, 3.0 / 4, 7.0 / 8, 1}
	case Ramp6:
		return [7]float64{0, 1.0 / 12, 1.0 / 6, 1.0 / 3, 2.0 / 3, 3.0 / 4, 1}
	case Ramp10:
		return [7]float64{0, 2.0 / 10, 3.0 / 10, 4.0 / 10, 7.0 / 10, 8.0 / 10, 1}
	default: // Ramp8
		return [7]float64{0, 1.0 / 8, 2.0 / 8, 3.0 / 8, 5.0 / 8, 6.0 / 8, 1}
	}
}

// HSLColor converts hue h in [0, 1), saturation s in [0, 1] and lightness l
// in [-1, 1] into device bytes.
//
// The anchor channel vectors are built from the balance reciprocals, so
// every anchor saturates the weakest channel fully once balance compensation
// is applied. Saturation 0 yields a hue-independent gray; lightness -1
// yields black regardless of hue, saturation or policy.
func (m *Model) HSLColor(h, s, l float64) RGB {
	ir := 1.0 / m.balance[0]
	ig := 1.0 / m.balance[1]
	ib := 1.0 / m.balance[2]
	irg := math.Min(ir, ig)
	irb := math.Min(ir, ib)
	igb := math.Min(ig, ib)

	// Ideal unnormalized channel vectors at the anchors: blue, cyan, green,
	// yellow, red, magenta, blue again to close the circle.
	anchors := [7][3]float64{
		{0, 0, ib},
		{0, igb / 2, igb / 2},
		{0, ig, 0},
		{irg / 2, irg / 2, 0},
		{ir, 0, 0},
		{irb / 2, 0, irb / 2},
		{0, 0, ib},
	}

	ramp := m.hueRamp()
	i := 0
	for i < 6 && h > ramp[i+1] {
		i++
	}
	p := (h - ramp[i]) / (ramp[i+1] - ramp[i])

	r := p*(anchors[i+1][0]-anchors[i][0]) + anchors[i][0]
	g := p*(anchors[i+1][1]-anchors[i][1]) + anchors[i][1]
	b := p*(anchors[i+1][2]-anchors[i][2]) + anchors[i][2]

	// Normalize so the largest balance-scaled channel is exactly 1.
	nrm := math.Max(r/ir, math.Max(g/ig, b/ib))
	r /= nrm
	g /= nrm
	b /= nrm

	ll := (l + 1.0) * 0.5

	var t1, t2 float64
	switch m.policy {
	case Linear:
		if ll < 0.5 {
			t1, t2 = l+1.0, 0.0
		} else {
			t1, t2 = 1.0-l, l
		}
	default: // Equilight
		br := m.Brightness(r, g, b)
		e := math.Max(r, math.Max(g, b))
		p := math.Min(1.0, math.Min(
			(1.0-ll/e)/(1.0-br),
			(1.0-ll*m.balance[1])/(1.0-m.brightness[1]),
		))
		t1 = ll * p / ((br-e)*p + e)
		t2 = math.Max(0.0, ll-t1*br)
	}

	t1 = s * t1
	t2 = s*t2 + ll*(1.0-s)
	return m.RGBColor(r*t1+t2, g*t1+t2, b*t1+t2)
}
