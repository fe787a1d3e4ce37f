// SPDX-License-Identifier: MIT
package timing

import (
	"math"
	"testing"
)

// fakeClocks simulates a media clock that only updates every updateEvery
// seconds (coarse cadence) while the monotonic clock is continuous.
type fakeClocks struct {
	now         float64 // true playback time
	mediaOffset float64 // desync injected into the media clock
	updateEvery float64 // media clock quantization step, 0 = continuous
}

func (f *fakeClocks) media() float64 {
	t := f.now + f.mediaOffset
	if f.updateEvery > 0 {
		return math.Floor(t/f.updateEvery) * f.updateEvery
	}
	return t
}

func (f *fakeClocks) mono() float64 { return f.now }

func newTestClock(f *fakeClocks, maxDrift float64) *PrecisionClock {
	return NewPrecisionClock(f.media, f.mono, maxDrift)
}

func TestLockstepClocksMatchExactly(t *testing.T) {
	f := &fakeClocks{}
	c := newTestClock(f, 0.1)
	c.Start()

	for i := 0; i < 1000; i++ {
		f.now += 1.0 / 60
		got := c.PreciseTime()
		if math.Abs(got-f.now) > 1e-9 {
			t.Fatalf("sample %d: predicted %v, actual %v", i, got, f.now)
		}
	}
	if c.Reanchors() != 0 {
		t.Errorf("reanchors = %d in lockstep, want 0", c.Reanchors())
	}
}

func TestSmoothsCoarseMediaUpdates(t *testing.T) {
	// Media clock quantized to 250ms steps; prediction must stay continuous
	// and never disagree with true time by more than the drift bound.
	f := &fakeClocks{updateEvery: 0.25}
	c := newTestClock(f, 0.3)
	c.Start()

	prev := c.PreciseTime()
	for i := 0; i < 600; i++ {
		f.now += 1.0 / 60
		got := c.PreciseTime()
		if got < prev {
			t.Fatalf("sample %d: time went backwards: %v -> %v", i, prev, got)
		}
		if math.Abs(got-f.now) > 0.3 {
			t.Fatalf("sample %d: prediction %v strayed from truth %v", i, got, f.now)
		}
		prev = got
	}
}

func TestDesyncTriggersExactlyOneReanchor(t *testing.T) {
	f := &fakeClocks{}
	c := newTestClock(f, 0.1)
	c.Start()

	f.now += 1.0 / 60
	if got := c.PreciseTime(); math.Abs(got-f.now) > 1e-9 {
		t.Fatalf("pre-desync prediction off: %v vs %v", got, f.now)
	}

	// Jump the media clock by more than the 100ms bound (a seek).
	f.mediaOffset = 0.5

	got := c.PreciseTime()
	if c.Reanchors() != 1 {
		t.Fatalf("reanchors = %d after desync, want 1", c.Reanchors())
	}
	if math.Abs(got-f.media()) > 1e-9 {
		t.Errorf("re-anchored read = %v, want media position %v", got, f.media())
	}

	// Prediction tracks the new reference with no further corrections.
	for i := 0; i < 600; i++ {
		f.now += 1.0 / 60
		got := c.PreciseTime()
		if math.Abs(got-f.media()) > 1e-9 {
			t.Fatalf("sample %d: post-reanchor prediction off: %v vs %v", i, got, f.media())
		}
	}
	if c.Reanchors() != 1 {
		t.Errorf("reanchors = %d after recovery, want still 1", c.Reanchors())
	}
}

func TestDriftWithinBoundIsTolerated(t *testing.T) {
	f := &fakeClocks{}
	c := newTestClock(f, 0.1)
	c.Start()

	f.now += 0.5
	f.mediaOffset = 0.05 // inside the bound

	got := c.PreciseTime()
	if c.Reanchors() != 0 {
		t.Errorf("reanchors = %d for sub-bound drift, want 0", c.Reanchors())
	}
	// Prediction trusts the monotonic delta, not the drifted media value.
	if math.Abs(got-f.now) > 1e-9 {
		t.Errorf("prediction = %v, want monotonic-projected %v", got, f.now)
	}
}

func TestFirstReadAnchorsImplicitly(t *testing.T) {
	f := &fakeClocks{now: 12.5}
	c := newTestClock(f, 0.1)

	if got := c.PreciseTime(); math.Abs(got-12.5) > 1e-9 {
		t.Errorf("implicit anchor read = %v, want 12.5", got)
	}
}

func TestNonPositiveDriftUsesDefault(t *testing.T) {
	f := &fakeClocks{}
	c := newTestClock(f, 0)
	c.Start()

	f.now += 1
	f.mediaOffset = DefaultMaxDrift * 2
	c.PreciseTime()
	if c.Reanchors() != 1 {
		t.Errorf("default drift bound not applied: reanchors = %d", c.Reanchors())
	}
}
