// SPDX-License-Identifier: MIT
package pool

import "testing"

type spark struct {
	x, y  float64
	alive bool
}

func newSparkPool(initial, max int) *Pool[spark] {
	return New(Config[spark]{
		InitialSize:  initial,
		MaxSize:      max,
		GrowthFactor: 1.5,
		New:          func() *spark { return &spark{} },
		Reset:        func(s *spark) { *s = spark{} },
	})
}

func TestAcquireNeverReturnsActiveSlot(t *testing.T) {
	p := newSparkPool(4, 8)
	seen := make(map[*spark]bool)

	for i := 0; i < 8; i++ {
		obj, ok := p.Acquire()
		if !ok {
			t.Fatalf("acquire %d failed below max size", i)
		}
		if seen[obj] {
			t.Fatalf("acquire %d returned a slot already in the active set", i)
		}
		seen[obj] = true
	}
}

func TestExhaustionReturnsNothing(t *testing.T) {
	const max = 5
	p := newSparkPool(2, max)

	for i := 0; i < max; i++ {
		if _, ok := p.Acquire(); !ok {
			t.Fatalf("acquire %d failed before reaching max", i)
		}
	}

	obj, ok := p.Acquire()
	if ok || obj != nil {
		t.Errorf("acquire past max: got (%v, %v), want (nil, false)", obj, ok)
	}

	if s := p.Stats(); s.Exhaustions != 1 {
		t.Errorf("exhaustion counter = %d, want 1", s.Exhaustions)
	}
}

func TestReleaseThenAcquireReuses(t *testing.T) {
	p := newSparkPool(3, 3)

	held := make([]*spark, 0, 3)
	for i := 0; i < 3; i++ {
		obj, _ := p.Acquire()
		obj.alive = true
		held = append(held, obj)
	}

	p.Release(held[1])

	obj, ok := p.Acquire()
	if !ok {
		t.Fatal("acquire after release failed at capacity")
	}
	if obj != held[1] {
		t.Error("expected the previously released slot, got a different one")
	}
	if obj.alive {
		t.Error("reset function did not run on release")
	}
}

func TestReleaseKeepsNeighborIdentity(t *testing.T) {
	p := newSparkPool(4, 4)

	a, _ := p.Acquire()
	b, _ := p.Acquire()
	c, _ := p.Acquire()
	b.x = 42

	p.Release(a)
	p.Release(c)

	// b must be untouched and still active.
	if b.x != 42 {
		t.Errorf("neighbor slot mutated on release: x=%v", b.x)
	}
	if s := p.Stats(); s.Active != 1 {
		t.Errorf("active = %d, want 1", s.Active)
	}
}

func TestDoubleReleaseIsNoOp(t *testing.T) {
	p := newSparkPool(2, 2)
	obj, _ := p.Acquire()
	p.Release(obj)
	p.Release(obj)
	p.Release(nil)

	if s := p.Stats(); s.Active != 0 {
		t.Errorf("active = %d after double release, want 0", s.Active)
	}
}

func TestReleaseAll(t *testing.T) {
	p := newSparkPool(4, 8)
	for i := 0; i < 6; i++ {
		obj, _ := p.Acquire()
		obj.alive = true
	}

	p.ReleaseAll()

	if s := p.Stats(); s.Active != 0 {
		t.Errorf("active = %d after ReleaseAll, want 0", s.Active)
	}
	p.Each(func(s *spark) {
		t.Error("Each visited an object after ReleaseAll")
	})

	// All slots must have been reset.
	obj, _ := p.Acquire()
	if obj.alive {
		t.Error("slot not reset by ReleaseAll")
	}
}

func TestGrowthBoundedByMax(t *testing.T) {
	p := newSparkPool(2, 3)
	for i := 0; i < 3; i++ {
		if _, ok := p.Acquire(); !ok {
			t.Fatalf("acquire %d failed", i)
		}
	}
	s := p.Stats()
	if s.Size != 3 {
		t.Errorf("size = %d, want 3 (growth clamped at max)", s.Size)
	}
	if s.Grows != 1 {
		t.Errorf("grows = %d, want 1", s.Grows)
	}
}

func TestEachVisitsActiveOnly(t *testing.T) {
	p := newSparkPool(4, 4)
	a, _ := p.Acquire()
	b, _ := p.Acquire()
	p.Release(a)

	count := 0
	p.Each(func(s *spark) {
		count++
		if s != b {
			t.Error("Each visited an inactive slot")
		}
	})
	if count != 1 {
		t.Errorf("Each visited %d objects, want 1", count)
	}
}

func TestBufferPoolReuse(t *testing.T) {
	bp := NewBufferPool()

	a := bp.Get(64)
	if len(a) != 64 {
		t.Fatalf("Get length = %d, want 64", len(a))
	}
	a[0] = 1.5
	bp.Put(a)

	b := bp.Get(64)
	if &b[0] != &a[0] {
		t.Error("expected buffer reuse for matching length")
	}
	if b[0] != 0 {
		t.Error("reused buffer not zeroed")
	}

	// A different length is a different bucket.
	c := bp.Get(128)
	if len(c) != 128 {
		t.Fatalf("Get length = %d, want 128", len(c))
	}

	s := bp.Stats()
	if s.Hits != 1 || s.Misses != 2 {
		t.Errorf("stats = %+v, want 1 hit / 2 misses", s)
	}
}

func TestBufferPoolIgnoresEmpty(t *testing.T) {
	bp := NewBufferPool()
	bp.Put(nil)
	bp.Put([]float64{})
	if got := bp.Get(0); got != nil {
		t.Errorf("Get(0) = %v, want nil", got)
	}
	if s := bp.Stats(); s.Pooled != 0 {
		t.Errorf("pooled = %d, want 0", s.Pooled)
	}
}

func BenchmarkAcquireReleaseHotPath(b *testing.B) {
	p := newSparkPool(64, 256)
	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		obj, ok := p.Acquire()
		if ok {
			p.Release(obj)
		}
	}
}

func BenchmarkBufferPoolHotPath(b *testing.B) {
	bp := NewBufferPool()
	bp.Put(make([]float64, 512))
	b.ReportAllocs()
	b.ResetTimer()

	for b.Loop() {
		buf := bp.Get(512)
		bp.Put(buf)
	}
}
