// Package color implements the device-accurate color model for addressable
// LED strings: gamma and channel-balance aware RGB encoding, an HSL
// conversion tuned to the physical channel strengths of the device, pattern
// generators, and a random-walk ambient color generator.
//
// The device does not render sRGB. Each channel has its own physical
// strength (the balance vector) and its own contribution to perceived
// brightness (the brightness-weight vector). The Model type folds both into
// every conversion so that a requested hue and lightness come out looking
// right on the actual hardware.
package color
