// SPDX-License-Identifier: MIT
/*
Package vmath provides the math primitives shared by every visual effect:
easing curves, 2D vector operations, a seeded pseudo-noise generator and a
minimal physics body integrator.

Design Principles:
- Zero Allocations: all operations use stack memory only
- Deterministic: identical seeds and inputs always produce identical output
- Real-Time Safe: no locks, syscalls, or blocking operations
*/
package vmath

import "math"

// Easing maps a normalized progress value t in [0,1] to an eased value.
type Easing func(t float64) float64

// Linear returns t unchanged.
func Linear(t float64) float64 { return t }

// EaseInQuad accelerates from zero velocity.
func EaseInQuad(t float64) float64 { return t * t }

// EaseOutQuad decelerates to zero velocity.
func EaseOutQuad(t float64) float64 { return t * (2 - t) }

// EaseInOutQuad accelerates until halfway, then decelerates.
func EaseInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

// EaseInCubic accelerates sharply from zero velocity.
func EaseInCubic(t float64) float64 { return t * t * t }

// EaseOutCubic decelerates sharply to zero velocity.
func EaseOutCubic(t float64) float64 {
	u := t - 1
	return u*u*u + 1
}

// EaseOutElastic overshoots the target and settles with a damped oscillation.
func EaseOutElastic(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	const p = 0.3
	return math.Pow(2, -10*t)*math.Sin((t-p/4)*(2*math.Pi)/p) + 1
}

// EaseOutBounce simulates a ball settling after a few bounces.
func EaseOutBounce(t float64) float64 {
	const n, d = 7.5625, 2.75
	switch {
	case t < 1/d:
		return n * t * t
	case t < 2/d:
		t -= 1.5 / d
		return n*t*t + 0.75
	case t < 2.5/d:
		t -= 2.25 / d
		return n*t*t + 0.9375
	default:
		t -= 2.625 / d
		return n*t*t + 0.984375
	}
}

// Clamp limits v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to the unit interval.
func Clamp01(v float64) float64 { return Clamp(v, 0, 1) }

// Lerp interpolates linearly between a and b by factor t.
func Lerp(a, b, t float64) float64 { return a + (b-a)*t }

// Approach moves cur toward target by at most maxDelta, without overshoot.
func Approach(cur, target, maxDelta float64) float64 {
	if cur < target {
		cur += maxDelta
		if cur > target {
			cur = target
		}
		return cur
	}
	if cur > target {
		cur -= maxDelta
		if cur < target {
			cur = target
		}
	}
	return cur
}

// Frac returns the fractional part of v in [0,1).
func Frac(v float64) float64 {
	return v - math.Floor(v)
}
