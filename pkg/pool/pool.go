// SPDX-License-Identifier: MIT
/*
Package pool provides object pooling for short-lived per-frame value objects
(particles, fragments, trail points, sparks) and reusable numeric buffers.

The render loop runs at ~16ms per frame; a single spawn-heavy effect can
otherwise churn thousands of tiny allocations per second and trigger GC
pauses long enough to drop frames. The pool trades an O(active) linear scan
on Acquire for guaranteed zero mid-frame allocation, which is the right
trade at the tens-to-low-hundreds sizes effects use.

Slot identity: the backing array never shrinks or reorders. Active
membership is tracked in a separate set, so releasing one object keeps every
unreleased neighbor's pointer stable.
*/
package pool

import "math"

// Config describes a pool before construction.
type Config[T any] struct {
	InitialSize  int          // slots allocated up front
	MaxSize      int          // hard cap; Acquire fails beyond this
	GrowthFactor float64      // growth step, e.g. 1.5 grows by half
	New          func() *T    // allocates one slot, required
	Reset        func(obj *T) // clears a slot on release, optional
}

// Stats is a snapshot of pool occupancy and lifetime counters.
type Stats struct {
	Size        int    // current backing array length
	Active      int    // slots currently acquired
	MaxSize     int    // configured cap
	Grows       uint64 // number of growth events
	Exhaustions uint64 // Acquire calls that returned nothing
}

// Pool is a fixed-identity object pool. It is not safe for concurrent use;
// each effect owns its pools exclusively and touches them only from the
// render loop.
type Pool[T any] struct {
	slots  []*T
	active map[*T]struct{}
	cfg    Config[T]

	grows       uint64
	exhaustions uint64
}

// New constructs a pool and eagerly allocates InitialSize slots so the first
// frames of an effect never allocate. Invalid sizes are normalized rather
// than rejected.
func New[T any](cfg Config[T]) *Pool[T] {
	if cfg.New == nil {
		panic("pool: Config.New is required")
	}
	if cfg.InitialSize < 1 {
		cfg.InitialSize = 1
	}
	if cfg.MaxSize < cfg.InitialSize {
		cfg.MaxSize = cfg.InitialSize
	}
	if cfg.GrowthFactor <= 1 {
		cfg.GrowthFactor = 1.5
	}

	p := &Pool[T]{
		slots:  make([]*T, 0, cfg.InitialSize),
		active: make(map[*T]struct{}, cfg.MaxSize),
		cfg:    cfg,
	}
	for i := 0; i < cfg.InitialSize; i++ {
		p.slots = append(p.slots, cfg.New())
	}
	return p
}

// Acquire returns a free slot, growing the backing array if permitted.
// It returns (nil, false) when the pool is exhausted; callers must treat
// that as "skip this spawn", never as fatal.
func (p *Pool[T]) Acquire() (*T, bool) {
	for _, obj := range p.slots {
		if _, busy := p.active[obj]; !busy {
			p.active[obj] = struct{}{}
			return obj, true
		}
	}

	if len(p.slots) >= p.cfg.MaxSize {
		p.exhaustions++
		return nil, false
	}

	// Grow by ceil(size * (factor-1)), bounded by MaxSize.
	step := int(math.Ceil(float64(len(p.slots)) * (p.cfg.GrowthFactor - 1)))
	if step < 1 {
		step = 1
	}
	if len(p.slots)+step > p.cfg.MaxSize {
		step = p.cfg.MaxSize - len(p.slots)
	}
	for i := 0; i < step; i++ {
		p.slots = append(p.slots, p.cfg.New())
	}
	p.grows++

	obj := p.slots[len(p.slots)-step]
	p.active[obj] = struct{}{}
	return obj, true
}

// Release returns obj to the pool, invoking the configured reset function.
// Releasing an object the pool does not own, or releasing twice, is a no-op.
func (p *Pool[T]) Release(obj *T) {
	if obj == nil {
		return
	}
	if _, busy := p.active[obj]; !busy {
		return
	}
	if p.cfg.Reset != nil {
		p.cfg.Reset(obj)
	}
	delete(p.active, obj)
}

// ReleaseAll returns every active object to the pool.
func (p *Pool[T]) ReleaseAll() {
	for obj := range p.active {
		if p.cfg.Reset != nil {
			p.cfg.Reset(obj)
		}
		delete(p.active, obj)
	}
}

// Each calls fn for every currently active object. The visit order is the
// stable slot order, not acquisition order.
func (p *Pool[T]) Each(fn func(obj *T)) {
	for _, obj := range p.slots {
		if _, busy := p.active[obj]; busy {
			fn(obj)
		}
	}
}

// Stats returns a snapshot of occupancy and lifetime counters.
func (p *Pool[T]) Stats() Stats {
	return Stats{
		Size:        len(p.slots),
		Active:      len(p.active),
		MaxSize:     p.cfg.MaxSize,
		Grows:       p.grows,
		Exhaustions: p.exhaustions,
	}
}
