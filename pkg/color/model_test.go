package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModelValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ModelParams)
		ok     bool
	}{
		{name: "defaults", mutate: func(p *ModelParams) {}, ok: true},
		{name: "zero gamma", mutate: func(p *ModelParams) { p.Gamma = 0 }, ok: false},
		{name: "negative gamma", mutate: func(p *ModelParams) { p.Gamma = -2 }, ok: false},
		{name: "zero balance", mutate: func(p *ModelParams) { p.Balance[2] = 0 }, ok: false},
		{name: "balance above one", mutate: func(p *ModelParams) { p.Balance[0] = 1.5 }, ok: false},
		{name: "negative brightness", mutate: func(p *ModelParams) { p.Brightness[1] = -0.1 }, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := DefaultParams()
			tt.mutate(&params)
			_, err := NewModel(params)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestParseRampStyle(t *testing.T) {
	for name, want := range map[string]RampStyle{
		"3col": Ramp3, "4col": Ramp4, "6col": Ramp6, "8col": Ramp8, "10col": Ramp10,
	} {
		got, err := ParseRampStyle(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseRampStyle("5col")
	assert.Error(t, err)
}

func TestParseLightnessPolicy(t *testing.T) {
	got, err := ParseLightnessPolicy("linear")
	require.NoError(t, err)
	assert.Equal(t, Linear, got)

	got, err = ParseLightnessPolicy("equilight")
	require.NoError(t, err)
	assert.Equal(t, Equilight, got)

	_, err = ParseLightnessPolicy("banana")
	assert.Error(t, err)
}

func TestRGBColorKnownValues(t *testing.T) {
	model := DefaultModel()

	// Half drive on each channel under default balance {0.9, 1.0, 0.6}.
	assert.Equal(t, RGB{R: 115, G: 128, B: 77}, model.RGBColor(0.5, 0.5, 0.5))
	// Full drive shows the raw balance ceiling.
	assert.Equal(t, RGB{R: 230, G: 255, B: 153}, model.RGBColor(1, 1, 1))
	assert.Equal(t, RGB{}, model.RGBColor(0, 0, 0))
}

func TestGammaTransfer(t *testing.T) {
	params := DefaultParams()
	params.Gamma = 2.2
	model, err := NewModel(params)
	require.NoError(t, err)

	for _, x := range []float64{0, 0.1, 0.5, 0.9, 1} {
		assert.InDelta(t, x, model.InvGamma(model.Gamma(x)), 1e-12)
	}
	// Gamma > 1 darkens midtones.
	assert.Less(t, model.Gamma(0.5), 0.5)

	// Gamma 1 is the identity without any float work.
	unity := DefaultModel()
	assert.Equal(t, 0.37, unity.Gamma(0.37))
}

func TestSRGBTransferRoundTrip(t *testing.T) {
	for _, x := range []float64{0, 0.001, 0.0031308, 0.04, 0.2, 0.5, 1} {
		assert.InDelta(t, x, SRGBDecode(SRGBEncode(x)), 1e-9, "x=%v", x)
	}
	// Spot values of the standard curve.
	assert.InDelta(t, 0.0129, SRGBEncode(0.001), 1e-4)
	assert.InDelta(t, 0.7354, SRGBEncode(0.5), 1e-4)
}

func TestImageLEDRoundTrip(t *testing.T) {
	model := DefaultModel()

	led := model.ImageToLED(RGB{R: 128, G: 128, B: 128})
	back := model.LEDToImage(led)
	assert.InDelta(t, 128, float64(back.R), 1)
	assert.InDelta(t, 128, float64(back.G), 1)
	assert.InDelta(t, 128, float64(back.B), 1)

	// White maps to the balance ceiling.
	assert.Equal(t, RGB{R: 230, G: 255, B: 153}, model.ImageToLED(RGB{R: 255, G: 255, B: 255}))
}

func TestBrightnessWeights(t *testing.T) {
	model := DefaultModel()
	assert.InDelta(t, 1.0, model.Brightness(1, 1, 1), 1e-12)
	assert.InDelta(t, 0.5, model.Brightness(0, 1, 0), 1e-12)
}

func TestHSLColorGrayAtZeroSaturation(t *testing.T) {
	model := DefaultModel()

	// With saturation zero the hue must not matter.
	ref := model.HSLColor(0, 0, 0.25)
	for _, h := range []float64{0.1, 0.33, 0.5, 0.77, 0.99} {
		assert.Equal(t, ref, model.HSLColor(h, 0, 0.25), "h=%v", h)
	}
}

func TestHSLColorBlackAtMinLightness(t *testing.T) {
	for _, policy := range []LightnessPolicy{Linear, Equilight} {
		params := DefaultParams()
		params.Policy = policy
		model, err := NewModel(params)
		require.NoError(t, err)

		for _, h := range []float64{0, 0.25, 0.5, 0.75} {
			for _, s := range []float64{0, 0.5, 1} {
				assert.Equal(t, RGB{}, model.HSLColor(h, s, -1), "policy=%d h=%v s=%v", policy, h, s)
			}
		}
	}
}

func TestHSLColorAnchorsSaturateOneChannel(t *testing.T) {
	model := DefaultModel()

	// Full saturation at moderate lightness: the red anchor has no green or
	// blue, and analogously around the circle. Ramp8 puts red at h=5/8.
	red := model.HSLColor(5.0/8.0, 1, -0.5)
	assert.Zero(t, red.G)
	assert.Zero(t, red.B)
	assert.Positive(t, red.R)

	green := model.HSLColor(2.0/8.0, 1, -0.5)
	assert.Zero(t, green.R)
	assert.Zero(t, green.B)
	assert.Positive(t, green.G)

	blue := model.HSLColor(0, 1, -0.5)
	assert.Zero(t, blue.R)
	assert.Zero(t, blue.G)
	assert.Positive(t, blue.B)
}

func TestHSLColorEquilightTracksLightness(t *testing.T) {
	model := DefaultModel()

	// Perceived brightness after balance compensation should grow
	// monotonically with lightness at fixed hue and saturation.
	prev := -1.0
	for l := -1.0; l <= 1.0; l += 0.125 {
		c := model.HSLColor(0.4, 1, l)
		params := DefaultParams()
		br := float64(c.R)/params.Balance[0]*params.Brightness[0] +
			float64(c.G)/params.Balance[1]*params.Brightness[1] +
			float64(c.B)/params.Balance[2]*params.Brightness[2]
		assert.GreaterOrEqual(t, br+1e-9, prev, "l=%v", l)
		prev = br
	}
}

func TestHSLColorLightnessExtremes(t *testing.T) {
	model := DefaultModel()

	// Lightness 1 is full white regardless of hue and saturation.
	want := model.RGBColor(1, 1, 1)
	for _, h := range []float64{0, 0.3, 0.6} {
		assert.Equal(t, want, model.HSLColor(h, 0, 1), "h=%v", h)
	}
}
