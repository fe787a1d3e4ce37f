// SPDX-License-Identifier: MIT
package vmath

// Body is a minimal physics body integrated with semi-implicit Euler.
// Effects embed bodies in their pooled value objects (particles, fragments,
// glyph carriers) and advance them once per frame with the authoritative
// frame delta, never with wall-clock time.
type Body struct {
	Pos      Vec2
	Vel      Vec2
	Acc      Vec2
	Rotation float64 // radians
	Spin     float64 // radians per second
	Damping  float64 // fraction of velocity lost per second, 0 disables
}

// Step advances the body by dt seconds and consumes the accumulated
// forces. Acceleration is applied to velocity first so a constant force
// behaves stably at variable frame rates. Callers re-apply continuous
// forces like gravity every frame.
func (b *Body) Step(dt float64) {
	b.Vel = b.Vel.Add(b.Acc.Scale(dt))
	b.Acc = Vec2{}
	if b.Damping > 0 {
		drag := 1 - b.Damping*dt
		if drag < 0 {
			drag = 0
		}
		b.Vel = b.Vel.Scale(drag)
	}
	b.Pos = b.Pos.Add(b.Vel.Scale(dt))
	b.Rotation += b.Spin * dt
}

// ApplyForce accumulates an acceleration for the next Step.
func (b *Body) ApplyForce(f Vec2) {
	b.Acc = b.Acc.Add(f)
}

// Impulse changes velocity immediately without touching acceleration.
func (b *Body) Impulse(v Vec2) {
	b.Vel = b.Vel.Add(v)
}

// Zero resets the body to rest at the origin.
func (b *Body) Zero() {
	*b = Body{}
}
