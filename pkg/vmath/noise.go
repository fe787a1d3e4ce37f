// SPDX-License-Identifier: MIT
package vmath

import "math"

// splitmix64 is a fast, high-quality 64-bit mixer.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	z := x
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Noise is a seeded pseudo-noise generator producing smooth value noise over
// a 2D domain. Identical seeds yield identical fields, which keeps effect
// geometry reproducible across Reset cycles and frame-stepped test runs.
type Noise struct {
	seed uint64
}

// NewNoise creates a noise generator. A zero seed is remapped to 1 so the
// hash never degenerates.
func NewNoise(seed uint64) *Noise {
	if seed == 0 {
		seed = 1
	}
	return &Noise{seed: seed}
}

// hash2D returns a deterministic 64-bit hash for the lattice point (x, y).
func (n *Noise) hash2D(x, y int) uint64 {
	h := n.seed
	h ^= uint64(uint32(x)) * 0x9E3779B185EBCA87
	h ^= uint64(uint32(y)) * 0xC2B2AE3D27D4EB4F
	return splitmix64(h)
}

// lattice returns the noise value in [0,1) at an integer lattice point.
func (n *Noise) lattice(x, y int) float64 {
	return float64(n.hash2D(x, y)>>11) / float64(1<<53)
}

// At returns smooth value noise in [0,1) at continuous coordinates (x, y).
// Lattice values are blended with a smoothstep weight to avoid grid artifacts.
func (n *Noise) At(x, y float64) float64 {
	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	fx, fy := x-math.Floor(x), y-math.Floor(y)

	// Smoothstep fade.
	fx = fx * fx * (3 - 2*fx)
	fy = fy * fy * (3 - 2*fy)

	v00 := n.lattice(x0, y0)
	v10 := n.lattice(x0+1, y0)
	v01 := n.lattice(x0, y0+1)
	v11 := n.lattice(x0+1, y0+1)

	return Lerp(Lerp(v00, v10, fx), Lerp(v01, v11, fx), fy)
}

// Octaves sums layered noise at doubling frequencies and halving amplitudes.
// The result is normalized back to [0,1).
func (n *Noise) Octaves(x, y float64, count int) float64 {
	sum, amp, norm := 0.0, 1.0, 0.0
	for i := 0; i < count; i++ {
		sum += n.At(x, y) * amp
		norm += amp
		amp *= 0.5
		x *= 2
		y *= 2
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// Rand is a small deterministic PRNG for effect geometry. It is not
// cryptographic and is not safe for concurrent use; each effect instance
// owns its own Rand.
type Rand struct {
	state uint64
}

// NewRand creates a PRNG seeded with seed (zero remaps to 1).
func NewRand(seed uint64) *Rand {
	if seed == 0 {
		seed = 1
	}
	return &Rand{state: seed}
}

// Next returns the next raw 64-bit value.
func (r *Rand) Next() uint64 {
	r.state += 0x9E3779B97F4A7C15
	return splitmix64(r.state)
}

// Float returns a uniform value in [0,1).
func (r *Rand) Float() float64 {
	return float64(r.Next()>>11) / float64(1<<53)
}

// Range returns a uniform value in [lo, hi).
func (r *Rand) Range(lo, hi float64) float64 {
	return lo + r.Float()*(hi-lo)
}

// Angle returns a uniform angle in [0, 2*pi).
func (r *Rand) Angle() float64 {
	return r.Float() * 2 * math.Pi
}
