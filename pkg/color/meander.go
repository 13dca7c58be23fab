package color

import (
	"math"
	"math/rand"
)

// MeanderStyle selects the geometric manifold a Meander trajectory is
// constrained to. The manifold determines how positions map to HSL and how
// much of the lightness range the drift can visit.
type MeanderStyle int

const (
	// MeanderSphere keeps the particle inside the unit ball with soft
	// radial damping beyond unit radius.
	MeanderSphere MeanderStyle = iota

	// MeanderCylinder keeps the particle inside the capped unit cylinder.
	MeanderCylinder

	// MeanderSurface projects the particle onto the unit sphere surface
	// every step, so saturation stays maximal.
	MeanderSurface
)

// Meander produces a continuously drifting ambient color by integrating a
// random walk on a geometric manifold. Randomness is drawn from an injected
// source so trajectories can be reproduced in tests.
type Meander struct {
	style      MeanderStyle
	stepLength float64
	noiseLevel float64
	pos        [3]float64
	dir        [3]float64
	rng        *rand.Rand
}

// NewMeander creates a meander starting at the given position with a random
// initial direction. speed is the per-step integration length and noise the
// per-axis uniform perturbation bound applied to the direction each step.
func NewMeander(style MeanderStyle, speed, noise float64, start [3]float64, rng *rand.Rand) *Meander {
	dir := [3]float64{
		rng.Float64() - 0.5,
		rng.Float64() - 0.5,
		rng.Float64() - 0.5 - start[2],
	}
	return &Meander{
		style:      style,
		stepLength: speed,
		noiseLevel: noise,
		pos:        start,
		dir:        dir,
		rng:        rng,
	}
}

// XYZ returns the current position on the manifold.
func (m *Meander) XYZ() (x, y, z float64) {
	return m.pos[0], m.pos[1], m.pos[2]
}

// HSL returns the current position mapped to hue, saturation and lightness.
func (m *Meander) HSL() (h, s, l float64) {
	return m.toHSL(m.pos[0], m.pos[1], m.pos[2])
}

// Color returns the current color through the given model.
func (m *Meander) Color(model *Model) RGB {
	return m.colorAt(m.pos[0], m.pos[1], m.pos[2], model)
}

// Complement returns the color diametrically opposite in hue at the same
// lightness, useful for two-tone effects driven by one trajectory.
func (m *Meander) Complement(model *Model) RGB {
	return m.colorAt(-m.pos[0], -m.pos[1], m.pos[2], model)
}

func (m *Meander) colorAt(x, y, z float64, model *Model) RGB {
	h, s, l := m.toHSL(x, y, z)
	return model.HSLColor(h, s, l)
}

func (m *Meander) toHSL(x, y, z float64) (h, s, l float64) {
	h = math.Atan2(y, x)/(2*math.Pi) + 0.5
	if m.style == MeanderCylinder {
		s = math.Min(math.Sqrt(x*x+y*y), 1.0)
		l = z
		return h, s, l
	}
	l = math.Asin(z) * 2 / math.Pi
	r := math.Sqrt(x*x + y*y)
	r0 := math.Sqrt(1.0 - z*z)
	if r0 > 0 {
		s = math.Min(r/r0, 1.0)
	}
	return h, s, l
}

// Step advances the particle: integrate position along the direction,
// apply the manifold constraint, then perturb and renormalize the direction.
func (m *Meander) Step() {
	nx := m.pos[0] + m.dir[0]*m.stepLength
	ny := m.pos[1] + m.dir[1]*m.stepLength
	nz := m.pos[2] + m.dir[2]*m.stepLength

	switch m.style {
	case MeanderCylinder:
		nz = math.Max(-1.0, math.Min(1.0, nz))
		if nrm := math.Sqrt(nx*nx + ny*ny); nrm > 1.0 {
			nx /= nrm
			ny /= nrm
			m.dir = normalize3(nx-m.pos[0], ny-m.pos[1], nz-m.pos[2])
		}
	case MeanderSurface:
		nrm := math.Sqrt(nx*nx + ny*ny + nz*nz)
		nx /= nrm
		ny /= nrm
		nz /= nrm
		m.dir = normalize3(nx-m.pos[0], ny-m.pos[1], nz-m.pos[2])
	default: // MeanderSphere
		if nrm := math.Sqrt(nx*nx + ny*ny + nz*nz); nrm > 1.0 {
			// Soft damping: overshoot is pulled back inside with 1/r^2.
			nx /= nrm * nrm
			ny /= nrm * nrm
			nz /= nrm * nrm
			m.dir = normalize3(nx-m.pos[0], ny-m.pos[1], nz-m.pos[2])
		}
	}

	dx := m.dir[0] + m.noise()
	dy := m.dir[1] + m.noise()
	dz := m.dir[2] + m.noise()

	if m.style == MeanderCylinder && math.Abs(nz+dz) > 1.0 {
		// The next step would overshoot a cap: aim the direction at the rim
		// instead, preserving its in-plane heading.
		sgn := 1.0
		if nz+dz < 0 {
			sgn = -1.0
		}
		delta := math.Sqrt(1.0 - (sgn-nz)*(sgn-nz))
		if nrm := math.Sqrt(dx*dx + dy*dy); nrm > 0 {
			dx = dx * delta / nrm
			dy = dy * delta / nrm
		}
		dz = sgn - nz
	}

	if nrm := math.Sqrt(dx*dx + dy*dy + dz*dz); nrm != 0 {
		m.dir = [3]float64{dx / nrm, dy / nrm, dz / nrm}
	}
	m.pos = [3]float64{nx, ny, nz}
}

func (m *Meander) noise() float64 {
	return (m.rng.Float64()*2 - 1) * m.noiseLevel
}

func normalize3(x, y, z float64) [3]float64 {
	nrm := math.Sqrt(x*x + y*y + z*z)
	if nrm == 0 {
		return [3]float64{}
	}
	return [3]float64{x / nrm, y / nrm, z / nrm}
}
